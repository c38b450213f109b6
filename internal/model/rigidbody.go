package model

import (
	"fmt"
	"slices"

	"github.com/MrWong99/colliderkit/internal/group"
	"github.com/MrWong99/colliderkit/pkg/scene"
	"github.com/MrWong99/colliderkit/pkg/ui"
)

const keyDetectCollisions = "detectCollisions"

// Rigidbody is the editable model of one physics body.
type Rigidbody struct {
	id     string
	name   string
	label  string
	groups []*group.Group
	body   scene.Rigidbody
	env    *Env

	colliders []*Collider

	initialDetect bool

	selected bool
	controls ui.Set
}

// NewRigidbody builds the model for body. Its groups are every group in
// groups whose pattern matches the body name.
func NewRigidbody(id string, body scene.Rigidbody, groups []*group.Group, env *Env) *Rigidbody {
	return &Rigidbody{
		id:            id,
		name:          body.Name(),
		label:         body.Name(),
		groups:        group.Matching(body.Name(), groups),
		body:          body,
		env:           env,
		initialDetect: body.DetectCollisions(),
	}
}

func (r *Rigidbody) ID() string    { return r.id }
func (r *Rigidbody) Name() string  { return r.name }
func (r *Rigidbody) Label() string { return r.label }

// Groups returns the groups the body belongs to.
func (r *Rigidbody) Groups() []*group.Group { return r.groups }

// InGroup reports membership in the group with id.
func (r *Rigidbody) InGroup(id string) bool {
	return slices.ContainsFunc(r.groups, func(g *group.Group) bool { return g.ID == id })
}

// Colliders returns the linked colliders in link order.
func (r *Rigidbody) Colliders() []*Collider { return r.colliders }

// Link attaches c to r in both directions. Linking the same collider twice is a
// no-op.
func Link(r *Rigidbody, c *Collider) {
	if c.rigidbodyID == r.id {
		return
	}
	c.rigidbodyID = r.id
	r.colliders = append(r.colliders, c)
}

// DetectCollisions reports the live flag.
func (r *Rigidbody) DetectCollisions() bool { return r.body.DetectCollisions() }

// SetDetectCollisions writes the live flag.
func (r *Rigidbody) SetDetectCollisions(v bool) { r.body.SetDetectCollisions(v) }

// ToDocument implements [Entity].
func (r *Rigidbody) ToDocument() Fields {
	return Fields{keyDetectCollisions: r.body.DetectCollisions()}
}

// FromDocument implements [Entity].
func (r *Rigidbody) FromDocument(doc Fields) error {
	v, ok, err := doc.Bool(keyDetectCollisions)
	if err != nil {
		return fmt.Errorf("model: rigidbody %q: %w", r.id, err)
	}
	if ok {
		r.body.SetDetectCollisions(v)
	}
	r.rebuildControls()
	return nil
}

// ResetToInitial implements [Entity].
func (r *Rigidbody) ResetToInitial() {
	r.body.SetDetectCollisions(r.initialDetect)
	r.rebuildControls()
}

// DeviatesFromInitial implements [Entity].
func (r *Rigidbody) DeviatesFromInitial() bool {
	return r.body.DetectCollisions() != r.initialDetect
}

func (r *Rigidbody) Selected() bool { return r.selected }

// SetSelected implements [Entity].
func (r *Rigidbody) SetSelected(selected bool) {
	if r.selected == selected {
		return
	}
	r.selected = selected
	if selected {
		r.createControls()
	} else {
		r.destroyControls()
	}
}

// ControlCount returns the number of live edit controls.
func (r *Rigidbody) ControlCount() int { return len(r.controls) }

func (r *Rigidbody) rebuildControls() {
	if r.selected {
		r.createControls()
	}
}

func (r *Rigidbody) createControls() {
	r.destroyControls()
	host := r.env.UI
	r.controls = ui.Set{
		host.CreateButton("Reset Rigidbody", r.ResetToInitial),
		host.CreateToggle("Detect Collisions", r.body.DetectCollisions(), r.body.SetDetectCollisions),
	}
}

func (r *Rigidbody) destroyControls() {
	r.controls.Destroy()
	r.controls = nil
}

// Destroy implements [Entity].
func (r *Rigidbody) Destroy() {
	r.destroyControls()
}
