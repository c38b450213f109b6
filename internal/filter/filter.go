// Package filter implements the cascading selection lists of the editor:
// group, rigidbody, collider and auto-collider.
//
// [Next] is a pure function from the current [State] and one selection
// [Event] to the next state and the choice lists to display. It never
// touches models; [Selector] applies a [Result] to them. Running [Next] again
// on its own output with [Refresh] yields the same result, and applying the
// same result twice creates no controls.
package filter

import (
	"github.com/MrWong99/colliderkit/internal/group"
	"github.com/MrWong99/colliderkit/internal/model"
)

// View is the catalog surface the filter reads.
type View interface {
	Groups() []*group.Group
	Rigidbodies() []*model.Rigidbody
	Colliders() []*model.Collider
	AutoColliders() []*model.AutoCollider

	Group(id string) *group.Group
	Rigidbody(id string) *model.Rigidbody
	Collider(id string) *model.Collider
	AutoCollider(id string) *model.AutoCollider
}

// State is the current selection. An empty id means nothing is selected;
// the group and rigidbody lists then display [group.AllID].
type State struct {
	Group        string
	Rigidbody    string
	Collider     string
	AutoCollider string
}

// Category names one of the four lists.
type Category int

const (
	// Refresh changes nothing and only re-runs the cascade.
	Refresh Category = iota
	CategoryGroup
	CategoryRigidbody
	CategoryCollider
	CategoryAutoCollider
)

// String returns the category name used in logs and metrics.
func (c Category) String() string {
	switch c {
	case Refresh:
		return "refresh"
	case CategoryGroup:
		return "group"
	case CategoryRigidbody:
		return "rigidbody"
	case CategoryCollider:
		return "collider"
	case CategoryAutoCollider:
		return "auto_collider"
	}
	return "unknown"
}

// Event is one selection change. ID is the chosen id; ids unknown to the
// [View] (including [group.AllID] for rigidbodies) clear the selection.
type Event struct {
	Category Category
	ID       string
}

// Choice is one entry of a choice list.
type Choice struct {
	ID    string
	Label string
}

// Result is the outcome of [Next].
type Result struct {
	State State

	Groups        []Choice
	Rigidbodies   []Choice
	Colliders     []Choice
	AutoColliders []Choice
}

// GroupValue is the id the group list displays.
func (r Result) GroupValue() string { return orAll(r.State.Group) }

// RigidbodyValue is the id the rigidbody list displays.
func (r Result) RigidbodyValue() string { return orAll(r.State.Rigidbody) }

func orAll(id string) string {
	if id == "" {
		return group.AllID
	}
	return id
}

// Next applies ev to state and runs the cascade:
//
//  1. an unknown group is cleared;
//  2. rigidbody candidates are all rigidbodies, or those in the selected group;
//  3. collider candidates are all colliders, or those whose rigidbody is in
//     the selected group;
//  4. a rigidbody outside the candidates is cleared, otherwise the collider
//     candidates narrow to that rigidbody's colliders;
//  5. a collider outside the candidates falls back to the first candidate,
//     or to none;
//  6. an unknown auto-collider is cleared.
func Next(v View, state State, ev Event) Result {
	switch ev.Category {
	case CategoryGroup:
		state.Group = ev.ID
	case CategoryRigidbody:
		state.Rigidbody = ev.ID
	case CategoryCollider:
		state.Collider = ev.ID
	case CategoryAutoCollider:
		state.AutoCollider = ev.ID
	}

	if state.Group != "" && v.Group(state.Group) == nil {
		state.Group = ""
	}

	var rbs []*model.Rigidbody
	inGroup := make(map[string]bool)
	for _, rb := range v.Rigidbodies() {
		if state.Group == "" || rb.InGroup(state.Group) {
			rbs = append(rbs, rb)
			inGroup[rb.ID()] = true
		}
	}

	var cols []*model.Collider
	for _, c := range v.Colliders() {
		if state.Group == "" || inGroup[c.RigidbodyID()] {
			cols = append(cols, c)
		}
	}

	if state.Rigidbody != "" && !inGroup[state.Rigidbody] {
		state.Rigidbody = ""
	}
	if state.Rigidbody != "" {
		cols = nil
		for _, c := range v.Colliders() {
			if c.RigidbodyID() == state.Rigidbody {
				cols = append(cols, c)
			}
		}
	}

	if !containsCollider(cols, state.Collider) {
		state.Collider = ""
		if len(cols) > 0 {
			state.Collider = cols[0].ID()
		}
	}

	if state.AutoCollider != "" && v.AutoCollider(state.AutoCollider) == nil {
		state.AutoCollider = ""
	}

	r := Result{State: state}
	r.Groups = groupChoices(v.Groups())
	r.Rigidbodies = make([]Choice, 0, len(rbs)+1)
	r.Rigidbodies = append(r.Rigidbodies, Choice{ID: group.AllID, Label: group.AllID})
	for _, rb := range rbs {
		r.Rigidbodies = append(r.Rigidbodies, Choice{ID: rb.ID(), Label: rb.Label()})
	}
	r.Colliders = make([]Choice, len(cols))
	for i, c := range cols {
		r.Colliders[i] = Choice{ID: c.ID(), Label: c.Label()}
	}
	autos := v.AutoColliders()
	r.AutoColliders = make([]Choice, len(autos))
	for i, a := range autos {
		r.AutoColliders[i] = Choice{ID: a.ID(), Label: a.Label()}
	}
	return r
}

func containsCollider(cols []*model.Collider, id string) bool {
	if id == "" {
		return false
	}
	for _, c := range cols {
		if c.ID() == id {
			return true
		}
	}
	return false
}

// groupChoices lists groups with [group.AllID] first.
func groupChoices(groups []*group.Group) []Choice {
	out := make([]Choice, 0, len(groups)+1)
	out = append(out, Choice{ID: group.AllID, Label: group.AllID})
	for _, g := range groups {
		if g.ID != group.AllID {
			out = append(out, Choice{ID: g.ID, Label: g.ID})
		}
	}
	return out
}

// IDs returns the ids of choices.
func IDs(choices []Choice) []string {
	out := make([]string, len(choices))
	for i, c := range choices {
		out[i] = c.ID
	}
	return out
}

// Labels returns the labels of choices.
func Labels(choices []Choice) []string {
	out := make([]string, len(choices))
	for i, c := range choices {
		out[i] = c.Label
	}
	return out
}
