// Package ui defines the widget toolkit colliderkit drives.
//
// The editor only ever creates controls, updates their values and destroys
// them. Layout is entirely up to the host. The [memui] package records
// controls in memory and is used by the headless CLI and by tests.
//
// [memui]: github.com/MrWong99/colliderkit/pkg/ui/memui
package ui

// Control is a created widget.
type Control interface {
	// Destroy removes the control from the host. Destroying twice is a no-op.
	Destroy()
}

// Slider is a numeric control.
type Slider interface {
	Control

	// SetValueNoCallback updates the displayed value without invoking the
	// change callback.
	SetValueNoCallback(v float32)
}

// Toggle is a boolean control.
type Toggle interface {
	Control

	// SetValueNoCallback updates the displayed value without invoking the
	// change callback.
	SetValueNoCallback(v bool)
}

// Chooser is a single-choice list. An empty id selects nothing.
type Chooser interface {
	Control

	// SetChoices replaces the list. ids and labels have the same length.
	SetChoices(ids, labels []string)

	// SetValueNoCallback selects id without invoking the change callback.
	SetValueNoCallback(id string)

	// Refresh forces the host to redraw the list.
	Refresh()
}

// Host creates controls.
type Host interface {
	CreateToggle(label string, value bool, onChange func(bool)) Toggle

	// CreateSlider creates a slider constrained to [min, max]. def is the
	// value restored by the host's own reset affordance, if it has one.
	CreateSlider(label string, value, min, max, def float32, onChange func(float32)) Slider

	CreateButton(label string, onClick func()) Control

	CreateChooser(label string, onChange func(id string)) Chooser
}

// Set is a group of controls destroyed together.
type Set []Control

// Destroy destroys every control in the set.
func (s Set) Destroy() {
	for _, c := range s {
		c.Destroy()
	}
}
