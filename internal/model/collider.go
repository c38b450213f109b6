package model

import (
	"errors"
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/MrWong99/colliderkit/pkg/render"
	"github.com/MrWong99/colliderkit/pkg/scene"
	"github.com/MrWong99/colliderkit/pkg/ui"
)

// ErrUnsupportedGeometry is returned for collider shapes that have no model.
var ErrUnsupportedGeometry = errors.New("model: unsupported geometry")

// Kind tags the collider variant.
type Kind int

const (
	KindSphere Kind = iota
	KindBox
	KindCapsule
)

// String returns the lower-case kind name.
func (k Kind) String() string {
	switch k {
	case KindSphere:
		return "sphere"
	case KindBox:
		return "box"
	case KindCapsule:
		return "capsule"
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Geometry is the editable state of a collider. Fields a kind does not have
// stay zero.
type Geometry struct {
	Radius float32
	Height float32
	Size   mgl32.Vec3
	Center mgl32.Vec3
}

// Classify returns the kind of c. Capsules are tested first because they also
// satisfy the sphere method set.
func Classify(c scene.Collider) (Kind, error) {
	switch c.(type) {
	case scene.CapsuleCollider:
		return KindCapsule, nil
	case scene.BoxCollider:
		return KindBox, nil
	case scene.SphereCollider:
		return KindSphere, nil
	}
	return 0, fmt.Errorf("%w: %T", ErrUnsupportedGeometry, c)
}

// ─────────────────────────────────────────────────────────────────────────────
// Per-kind operation table
// ─────────────────────────────────────────────────────────────────────────────

type field struct {
	key   string
	label string
	ptr   func(g *Geometry) *float32

	// bounds returns the slider range given the initial geometry.
	bounds func(initial Geometry) (lo, hi float32)
}

type shape struct {
	preview render.Shape
	fields  []field
	read    func(c scene.Collider) Geometry
	write   func(c scene.Collider, g Geometry)
	layout  func(p render.Preview, c scene.Collider, g Geometry)
	equal   func(a, b Geometry) bool
}

func offsetBounds(Geometry) (float32, float32) { return -0.25, 0.25 }

var (
	radiusField = field{"radius", "Radius", func(g *Geometry) *float32 { return &g.Radius },
		func(i Geometry) (float32, float32) { return 0, i.Radius * 4 }}
	heightField = field{"height", "Height", func(g *Geometry) *float32 { return &g.Height },
		func(i Geometry) (float32, float32) { return 0, i.Height * 4 }}
	centerFields = []field{
		{"centerX", "Center.X", func(g *Geometry) *float32 { return &g.Center[0] }, offsetBounds},
		{"centerY", "Center.Y", func(g *Geometry) *float32 { return &g.Center[1] }, offsetBounds},
		{"centerZ", "Center.Z", func(g *Geometry) *float32 { return &g.Center[2] }, offsetBounds},
	}
	sizeFields = []field{
		{"sizeX", "Size.X", func(g *Geometry) *float32 { return &g.Size[0] }, offsetBounds},
		{"sizeY", "Size.Y", func(g *Geometry) *float32 { return &g.Size[1] }, offsetBounds},
		{"sizeZ", "Size.Z", func(g *Geometry) *float32 { return &g.Size[2] }, offsetBounds},
	}
)

var (
	forward = mgl32.Vec3{0, 0, 1}
	right   = mgl32.Vec3{1, 0, 0}
)

var shapes = [...]shape{
	KindSphere: {
		preview: render.ShapeSphere,
		fields:  append([]field{radiusField}, centerFields...),
		read: func(c scene.Collider) Geometry {
			s := c.(scene.SphereCollider)
			return Geometry{Radius: s.Radius(), Center: s.Center()}
		},
		write: func(c scene.Collider, g Geometry) {
			s := c.(scene.SphereCollider)
			s.SetRadius(g.Radius)
			s.SetCenter(g.Center)
		},
		layout: func(p render.Preview, _ scene.Collider, g Geometry) {
			d := g.Radius * 2
			p.SetLocalScale(mgl32.Vec3{d, d, d})
			p.SetLocalPosition(g.Center)
		},
		equal: func(a, b Geometry) bool {
			return mgl32.FloatEqual(a.Radius, b.Radius) && a.Center.ApproxEqual(b.Center)
		},
	},
	KindBox: {
		preview: render.ShapeCube,
		fields:  append(append([]field{}, sizeFields...), centerFields...),
		read: func(c scene.Collider) Geometry {
			b := c.(scene.BoxCollider)
			return Geometry{Size: b.Size(), Center: b.Center()}
		},
		write: func(c scene.Collider, g Geometry) {
			b := c.(scene.BoxCollider)
			b.SetSize(g.Size)
			b.SetCenter(g.Center)
		},
		layout: func(p render.Preview, _ scene.Collider, g Geometry) {
			p.SetLocalScale(g.Size)
			p.SetLocalPosition(g.Center)
		},
		equal: func(a, b Geometry) bool {
			return a.Size.ApproxEqual(b.Size) && a.Center.ApproxEqual(b.Center)
		},
	},
	KindCapsule: {
		preview: render.ShapeCapsule,
		fields:  append([]field{radiusField, heightField}, centerFields...),
		read: func(c scene.Collider) Geometry {
			s := c.(scene.CapsuleCollider)
			return Geometry{Radius: s.Radius(), Height: s.Height(), Center: s.Center()}
		},
		write: func(c scene.Collider, g Geometry) {
			s := c.(scene.CapsuleCollider)
			s.SetRadius(g.Radius)
			s.SetHeight(g.Height)
			s.SetCenter(g.Center)
		},
		layout: func(p render.Preview, c scene.Collider, g Geometry) {
			d := g.Radius * 2
			p.SetLocalScale(mgl32.Vec3{d, g.Height / 2, d})
			switch c.(scene.CapsuleCollider).Direction() {
			case scene.AxisX:
				p.SetLocalRotation(mgl32.QuatRotate(math.Pi/2, forward))
			case scene.AxisZ:
				p.SetLocalRotation(mgl32.QuatRotate(math.Pi/2, right))
			}
			p.SetLocalPosition(g.Center)
		},
		equal: func(a, b Geometry) bool {
			return mgl32.FloatEqual(a.Radius, b.Radius) &&
				mgl32.FloatEqual(a.Height, b.Height) &&
				a.Center.ApproxEqual(b.Center)
		},
	},
}

// FieldKeys returns the document keys of kind k in control order.
func FieldKeys(k Kind) []string {
	fields := shapes[k].fields
	keys := make([]string, len(fields))
	for i, f := range fields {
		keys[i] = f.key
	}
	return keys
}

// ─────────────────────────────────────────────────────────────────────────────
// Collider
// ─────────────────────────────────────────────────────────────────────────────

// Collider is the editable model of one sphere, box or capsule collider.
type Collider struct {
	id    string
	label string
	kind  Kind
	ops   *shape
	prim  scene.Collider
	env   *Env

	initial Geometry

	rigidbodyID string

	selected        bool
	highlighted     bool
	showPreview     bool
	xray            bool
	opacity         float32
	selectedOpacity float32

	preview  render.Preview
	controls ui.Set
	sliders  map[string]ui.Slider
	xrayCtl  ui.Toggle
}

// NewCollider builds the model for prim and captures its initial geometry.
// It returns an error wrapping [ErrUnsupportedGeometry] for shapes without a
// model.
func NewCollider(id, label string, prim scene.Collider, env *Env) (*Collider, error) {
	kind, err := Classify(prim)
	if err != nil {
		return nil, err
	}
	c := &Collider{
		id:    id,
		label: label,
		kind:  kind,
		ops:   &shapes[kind],
		prim:  prim,
		env:   env,
		xray:  true,
	}
	c.initial = c.ops.read(prim)
	return c, nil
}

func (c *Collider) ID() string    { return c.id }
func (c *Collider) Label() string { return c.label }
func (c *Collider) Kind() Kind    { return c.kind }

// Primitive returns the underlying scene collider.
func (c *Collider) Primitive() scene.Collider { return c.prim }

// RigidbodyID returns the id of the owning rigidbody model, or "" when the
// collider is not linked.
func (c *Collider) RigidbodyID() string { return c.rigidbodyID }

// Geometry returns the live geometry.
func (c *Collider) Geometry() Geometry { return c.ops.read(c.prim) }

// Initial returns the geometry captured at construction.
func (c *Collider) Initial() Geometry { return c.initial }

// SetGeometry writes g to the primitive and refreshes the preview.
func (c *Collider) SetGeometry(g Geometry) {
	c.ops.write(c.prim, g)
	c.UpdatePreview()
}

// Field returns the live value of key.
func (c *Collider) Field(key string) (float32, error) {
	f, ok := c.field(key)
	if !ok {
		return 0, fmt.Errorf("%w: %s has no %q", ErrUnknownField, c.kind, key)
	}
	g := c.Geometry()
	return *f.ptr(&g), nil
}

// SetField writes one field and refreshes the preview.
func (c *Collider) SetField(key string, v float32) error {
	f, ok := c.field(key)
	if !ok {
		return fmt.Errorf("%w: %s has no %q", ErrUnknownField, c.kind, key)
	}
	g := c.Geometry()
	*f.ptr(&g) = v
	c.SetGeometry(g)
	return nil
}

func (c *Collider) field(key string) (field, bool) {
	for _, f := range c.ops.fields {
		if f.key == key {
			return f, true
		}
	}
	return field{}, false
}

// ToDocument implements [Entity].
func (c *Collider) ToDocument() Fields {
	g := c.Geometry()
	out := make(Fields, len(c.ops.fields))
	for _, f := range c.ops.fields {
		out[f.key] = *f.ptr(&g)
	}
	return out
}

// FromDocument implements [Entity].
func (c *Collider) FromDocument(doc Fields) error {
	g := c.Geometry()
	for _, f := range c.ops.fields {
		v, ok, err := doc.Float(f.key)
		if err != nil {
			return fmt.Errorf("model: collider %q: %w", c.id, err)
		}
		if ok {
			*f.ptr(&g) = v
		}
	}
	c.ops.write(c.prim, g)
	c.UpdatePreview()
	c.rebuildControls()
	return nil
}

// ResetToInitial implements [Entity].
func (c *Collider) ResetToInitial() {
	c.ops.write(c.prim, c.initial)
	c.UpdatePreview()
	c.rebuildControls()
}

// DeviatesFromInitial implements [Entity].
func (c *Collider) DeviatesFromInitial() bool {
	return !c.ops.equal(c.initial, c.Geometry())
}

// ─────────────────────────────────────────────────────────────────────────────
// Selection and controls
// ─────────────────────────────────────────────────────────────────────────────

func (c *Collider) Selected() bool { return c.selected }

// SetSelected implements [Entity]. Selecting creates a fresh control set and
// highlights the preview; deselecting destroys the controls.
func (c *Collider) SetSelected(selected bool) {
	if c.selected == selected {
		return
	}
	c.selected = selected
	c.applyOpacity()
	if selected {
		c.createControls()
	} else {
		c.destroyControls()
	}
}

// ControlCount returns the number of live edit controls.
func (c *Collider) ControlCount() int { return len(c.controls) }

func (c *Collider) rebuildControls() {
	if c.selected {
		c.createControls()
	}
}

func (c *Collider) createControls() {
	c.destroyControls()

	host := c.env.UI
	c.xrayCtl = host.CreateToggle("XRay Preview", c.xray, c.SetXRay)
	c.controls = append(c.controls, c.xrayCtl, host.CreateButton("Reset Collider", c.ResetToInitial))

	g := c.Geometry()
	c.sliders = make(map[string]ui.Slider, len(c.ops.fields))
	for _, f := range c.ops.fields {
		lo, hi := f.bounds(c.initial)
		initial := c.initial
		s := host.CreateSlider(f.label, *f.ptr(&g), lo, hi, *f.ptr(&initial), func(v float32) {
			if err := c.SetField(f.key, v); err != nil {
				c.env.logger().Warn("model: slider write failed", "id", c.id, "field", f.key, "err", err)
			}
		})
		c.sliders[f.key] = s
		c.controls = append(c.controls, s)
	}
}

func (c *Collider) destroyControls() {
	c.controls.Destroy()
	c.controls = nil
	c.sliders = nil
	c.xrayCtl = nil
}

// UpdateControls pushes live values into the sliders without callbacks.
func (c *Collider) UpdateControls() {
	if len(c.sliders) == 0 {
		return
	}
	g := c.Geometry()
	for _, f := range c.ops.fields {
		if s, ok := c.sliders[f.key]; ok {
			s.SetValueNoCallback(*f.ptr(&g))
		}
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Preview
// ─────────────────────────────────────────────────────────────────────────────

// ShowPreview reports whether a preview is shown.
func (c *Collider) ShowPreview() bool { return c.showPreview }

// SetShowPreview creates or destroys the preview primitive.
func (c *Collider) SetShowPreview(show bool) {
	c.showPreview = show
	if !show {
		c.destroyPreview()
		return
	}
	if c.preview != nil {
		return
	}
	p := c.env.Render.CreatePrimitive(c.ops.preview, c.prim.Transform())
	p.SetColor(c.env.palette().Next())
	p.DisableColliders()
	p.SetXRay(c.xray)
	c.preview = p
	c.env.previewDelta(1)
	c.UpdatePreview()
	c.applyOpacity()
}

func (c *Collider) destroyPreview() {
	if c.preview == nil {
		return
	}
	c.preview.Destroy()
	c.preview = nil
	c.env.previewDelta(-1)
}

// UpdatePreview re-lays out the preview from live geometry if one is shown.
func (c *Collider) UpdatePreview() {
	if !c.showPreview || c.preview == nil {
		return
	}
	c.ops.layout(c.preview, c.prim, c.Geometry())
}

// XRay reports whether the preview renders in x-ray mode.
func (c *Collider) XRay() bool { return c.xray }

// SetXRay switches x-ray rendering of the preview.
func (c *Collider) SetXRay(enabled bool) {
	c.xray = enabled
	if c.preview != nil {
		c.preview.SetXRay(enabled)
	}
	if c.xrayCtl != nil {
		c.xrayCtl.SetValueNoCallback(enabled)
	}
}

func (c *Collider) PreviewOpacity() float32         { return c.opacity }
func (c *Collider) SelectedPreviewOpacity() float32 { return c.selectedOpacity }

// SetPreviewOpacity sets the opacity used while not selected.
func (c *Collider) SetPreviewOpacity(a float32) {
	if mgl32.FloatEqual(a, c.opacity) {
		return
	}
	c.opacity = a
	c.applyOpacity()
}

// SetSelectedPreviewOpacity sets the opacity used while selected.
func (c *Collider) SetSelectedPreviewOpacity(a float32) {
	if mgl32.FloatEqual(a, c.selectedOpacity) {
		return
	}
	c.selectedOpacity = a
	c.applyOpacity()
}

// setHighlighted shows the selected opacity while the owning composite is
// selected.
func (c *Collider) setHighlighted(v bool) {
	c.highlighted = v
	c.applyOpacity()
}

func (c *Collider) applyOpacity() {
	if c.preview == nil {
		return
	}
	if c.selected || c.highlighted {
		c.preview.SetOpacity(c.selectedOpacity)
	} else {
		c.preview.SetOpacity(c.opacity)
	}
}

// Destroy implements [Entity].
func (c *Collider) Destroy() {
	c.destroyControls()
	c.showPreview = false
	c.destroyPreview()
}
