package model

import (
	"fmt"
	"strings"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/MrWong99/colliderkit/pkg/scene"
	"github.com/MrWong99/colliderkit/pkg/ui"
)

const keyCollisionEnabled = "collisionEnabled"

// autoField is one numeric auto-collider parameter.
type autoField struct {
	key    string
	label  string
	lo, hi float32
	ptr    func(p *scene.AutoParams) *float32
}

var (
	fieldAutoLengthBuffer = autoField{"autoLengthBuffer", "Auto Length Buffer", -0.25, 0.25,
		func(p *scene.AutoParams) *float32 { return &p.AutoLengthBuffer }}
	fieldColliderLength = autoField{"colliderLength", "Length", 0, 0.25,
		func(p *scene.AutoParams) *float32 { return &p.ColliderLength }}
	fieldAutoRadiusBuffer = autoField{"autoRadiusBuffer", "Auto Radius Buffer", -0.025, 0.025,
		func(p *scene.AutoParams) *float32 { return &p.AutoRadiusBuffer }}
	fieldAutoRadiusMultiplier = autoField{"autoRadiusMultiplier", "Auto Radius Multiplier", 0.001, 2,
		func(p *scene.AutoParams) *float32 { return &p.AutoRadiusMultiplier }}
	fieldColliderRadius = autoField{"colliderRadius", "Radius", 0, 0.25,
		func(p *scene.AutoParams) *float32 { return &p.ColliderRadius }}
	fieldHardColliderBuffer = autoField{"hardColliderBuffer", "Hard Collider Buffer", 0, 0.25,
		func(p *scene.AutoParams) *float32 { return &p.HardColliderBuffer }}
	offsetAutoFields = []autoField{
		{"colliderLookOffset", "Look Offset", -0.25, 0.25, func(p *scene.AutoParams) *float32 { return &p.LookOffset }},
		{"colliderUpOffset", "Up Offset", -0.25, 0.25, func(p *scene.AutoParams) *float32 { return &p.UpOffset }},
		{"colliderRightOffset", "Right Offset", -0.25, 0.25, func(p *scene.AutoParams) *float32 { return &p.RightOffset }},
	}
)

// activeAutoFields returns the numeric fields exposed for the given static
// flags, in control order.
func activeAutoFields(autoLength, autoRadius bool) []autoField {
	var out []autoField
	if autoLength {
		out = append(out, fieldAutoLengthBuffer)
	} else {
		out = append(out, fieldColliderLength)
	}
	if autoRadius {
		out = append(out, fieldAutoRadiusBuffer, fieldAutoRadiusMultiplier)
	} else {
		out = append(out, fieldColliderRadius, fieldHardColliderBuffer)
	}
	return append(out, offsetAutoFields...)
}

// labelPrefixes are stripped from auto-collider names, longest first.
var labelPrefixes = []string{
	"AutoColliderAutoColliders",
	"AutoColliderFemaleAutoColliders",
	"AutoCollider",
}

// SimplifyName strips the redundant prefixes hosts put on auto-collider
// node names.
func SimplifyName(name string) string {
	for _, p := range labelPrefixes {
		if rest, ok := strings.CutPrefix(name, p); ok {
			return rest
		}
	}
	return name
}

// AutoLabel returns the display label of an auto-collider named name.
func AutoLabel(name string) string { return "[au] " + SimplifyName(name) }

// AutoCollider is the editable model of an auto-collider composite. Its hard
// and joint colliders are owned models: they are previewed but never edited
// or persisted directly, since their geometry is derived.
type AutoCollider struct {
	id     string
	label  string
	group  string
	ac     scene.AutoCollider
	env    *Env
	fields []autoField

	initial scene.AutoParams

	// lastMultiplier is the radius multiplier most recently written by this
	// model. SyncToScene re-applies it if the host overwrote it.
	lastMultiplier float32
	modified       bool

	owned []*Collider

	selected bool
	controls ui.Set
	sliders  map[string]ui.Slider
	enabled  ui.Toggle
}

// NewAutoCollider builds the model. owned are the models of the hard and
// joint colliders, in that order, when present.
func NewAutoCollider(id string, ac scene.AutoCollider, owned []*Collider, env *Env) *AutoCollider {
	initial := ac.Params()
	return &AutoCollider{
		id:             id,
		label:          AutoLabel(ac.Name()),
		ac:             ac,
		env:            env,
		fields:         activeAutoFields(ac.UseAutoLength(), ac.UseAutoRadius()),
		initial:        initial,
		lastMultiplier: initial.AutoRadiusMultiplier,
		owned:          owned,
	}
}

func (a *AutoCollider) ID() string    { return a.id }
func (a *AutoCollider) Label() string { return a.label }

// Group returns the optional auto-collider group name.
func (a *AutoCollider) Group() string { return a.group }

// SetGroup sets the auto-collider group name.
func (a *AutoCollider) SetGroup(name string) { a.group = name }

// Owned returns the models of the owned colliders.
func (a *AutoCollider) Owned() []*Collider { return a.owned }

// Params returns the live parameters.
func (a *AutoCollider) Params() scene.AutoParams { return a.ac.Params() }

// Initial returns the parameters captured at construction.
func (a *AutoCollider) Initial() scene.AutoParams { return a.initial }

// Modified reports whether the model wrote parameters since construction or
// the last reset.
func (a *AutoCollider) Modified() bool { return a.modified }

// FieldKeys returns the numeric document keys exposed by this composite.
func (a *AutoCollider) FieldKeys() []string {
	keys := make([]string, len(a.fields))
	for i, f := range a.fields {
		keys[i] = f.key
	}
	return keys
}

func (a *AutoCollider) field(key string) (autoField, bool) {
	for _, f := range a.fields {
		if f.key == key {
			return f, true
		}
	}
	return autoField{}, false
}

// SetField writes one numeric parameter and refreshes the derived geometry.
func (a *AutoCollider) SetField(key string, v float32) error {
	f, ok := a.field(key)
	if !ok {
		return fmt.Errorf("%w: auto collider %q has no %q", ErrUnknownField, a.id, key)
	}
	p := a.ac.Params()
	*f.ptr(&p) = v
	if key == fieldAutoRadiusMultiplier.key {
		a.lastMultiplier = v
	}
	a.write(p)
	return nil
}

// SetCollisionEnabled writes the collision flag and refreshes.
func (a *AutoCollider) SetCollisionEnabled(v bool) {
	p := a.ac.Params()
	p.CollisionEnabled = v
	a.write(p)
}

func (a *AutoCollider) write(p scene.AutoParams) {
	a.ac.SetParams(p)
	a.modified = true
	a.Refresh()
}

// Refresh forces a synchronous recompute of the derived geometry: the resize
// trigger is switched to always for one Resize call and then restored to the
// value observed on entry. Nested calls each restore their own observation,
// so the outermost call leaves the original trigger in place.
func (a *AutoCollider) Refresh() {
	prev := a.ac.ResizeTrigger()
	a.ac.SetResizeTrigger(scene.ResizeAlways)
	a.ac.Resize()
	a.ac.SetResizeTrigger(prev)
	for _, c := range a.owned {
		c.UpdatePreview()
	}
}

// SyncToScene re-applies the last written radius multiplier when the host
// replaced it while the model is modified.
func (a *AutoCollider) SyncToScene() {
	if !a.modified {
		return
	}
	p := a.ac.Params()
	if p.AutoRadiusMultiplier != a.lastMultiplier {
		p.AutoRadiusMultiplier = a.lastMultiplier
		a.ac.SetParams(p)
	}
}

// ToDocument implements [Entity].
func (a *AutoCollider) ToDocument() Fields {
	p := a.ac.Params()
	out := make(Fields, len(a.fields)+1)
	out[keyCollisionEnabled] = p.CollisionEnabled
	for _, f := range a.fields {
		out[f.key] = *f.ptr(&p)
	}
	return out
}

// FromDocument implements [Entity].
func (a *AutoCollider) FromDocument(doc Fields) error {
	p := a.ac.Params()
	applied, multiplier := false, false

	enabled, ok, err := doc.Bool(keyCollisionEnabled)
	if err != nil {
		return fmt.Errorf("model: auto collider %q: %w", a.id, err)
	}
	if ok {
		p.CollisionEnabled = enabled
		applied = true
	}
	for _, f := range a.fields {
		v, ok, err := doc.Float(f.key)
		if err != nil {
			return fmt.Errorf("model: auto collider %q: %w", a.id, err)
		}
		if ok {
			*f.ptr(&p) = v
			applied = true
			if f.key == fieldAutoRadiusMultiplier.key {
				multiplier = true
			}
		}
	}

	if multiplier {
		a.lastMultiplier = p.AutoRadiusMultiplier
	}
	if applied {
		a.write(p)
	}
	a.rebuildControls()
	return nil
}

// ResetToInitial implements [Entity].
func (a *AutoCollider) ResetToInitial() {
	p := a.ac.Params()
	p.CollisionEnabled = a.initial.CollisionEnabled
	initial := a.initial
	for _, f := range a.fields {
		*f.ptr(&p) = *f.ptr(&initial)
	}
	a.ac.SetParams(p)
	a.lastMultiplier = p.AutoRadiusMultiplier
	a.modified = false
	a.Refresh()
	a.rebuildControls()
}

// DeviatesFromInitial implements [Entity].
func (a *AutoCollider) DeviatesFromInitial() bool {
	p := a.ac.Params()
	if p.CollisionEnabled != a.initial.CollisionEnabled {
		return true
	}
	initial := a.initial
	for _, f := range a.fields {
		if !mgl32.FloatEqual(*f.ptr(&p), *f.ptr(&initial)) {
			return true
		}
	}
	return false
}

func (a *AutoCollider) Selected() bool { return a.selected }

// SetSelected implements [Entity].
func (a *AutoCollider) SetSelected(selected bool) {
	if a.selected == selected {
		return
	}
	a.selected = selected
	for _, c := range a.owned {
		c.setHighlighted(selected)
	}
	if selected {
		a.createControls()
	} else {
		a.destroyControls()
	}
}

// ControlCount returns the number of live edit controls.
func (a *AutoCollider) ControlCount() int { return len(a.controls) }

func (a *AutoCollider) rebuildControls() {
	if a.selected {
		a.createControls()
	}
}

func (a *AutoCollider) createControls() {
	a.destroyControls()

	host := a.env.UI
	p := a.ac.Params()
	a.enabled = host.CreateToggle("Collision Enabled", p.CollisionEnabled, a.SetCollisionEnabled)
	a.controls = ui.Set{host.CreateButton("Reset AutoCollider", a.ResetToInitial), a.enabled}

	a.sliders = make(map[string]ui.Slider, len(a.fields))
	initial := a.initial
	for _, f := range a.fields {
		s := host.CreateSlider(f.label, *f.ptr(&p), f.lo, f.hi, *f.ptr(&initial), func(v float32) {
			if err := a.SetField(f.key, v); err != nil {
				a.env.logger().Warn("model: slider write failed", "id", a.id, "field", f.key, "err", err)
			}
		})
		a.sliders[f.key] = s
		a.controls = append(a.controls, s)
	}
}

func (a *AutoCollider) destroyControls() {
	a.controls.Destroy()
	a.controls = nil
	a.sliders = nil
	a.enabled = nil
}

// UpdateControls pushes live parameters into the controls without callbacks.
func (a *AutoCollider) UpdateControls() {
	if a.enabled == nil {
		return
	}
	p := a.ac.Params()
	a.enabled.SetValueNoCallback(p.CollisionEnabled)
	for _, f := range a.fields {
		if s, ok := a.sliders[f.key]; ok {
			s.SetValueNoCallback(*f.ptr(&p))
		}
	}
}

// Destroy implements [Entity]. Owned collider models are destroyed too.
func (a *AutoCollider) Destroy() {
	a.destroyControls()
	for _, c := range a.owned {
		c.Destroy()
	}
}
