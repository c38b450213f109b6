// Package memui provides an in-memory [ui.Host] that records every control it
// creates.
//
// Tests use it to assert the control lifecycle (how many controls exist,
// which were destroyed) and to simulate operator input through [Slider.Set],
// [Toggle.Set], [Button.Click] and [Chooser.Choose], which invoke the change
// callbacks exactly like a real toolkit would.
//
// Example:
//
//	host := memui.New()
//	ed, _ := editor.New(scn, editor.Deps{UI: host, ...}, cfg)
//	host.Chooser("Group").Choose("Left arm")
//	fmt.Println(host.Live())
package memui

import (
	"sync"

	"github.com/MrWong99/colliderkit/pkg/ui"
)

// Compile-time interface assertions.
var (
	_ ui.Host    = (*Host)(nil)
	_ ui.Toggle  = (*Toggle)(nil)
	_ ui.Slider  = (*Slider)(nil)
	_ ui.Control = (*Button)(nil)
	_ ui.Chooser = (*Chooser)(nil)
)

// Kind identifies the control type of a [Record].
type Kind int

const (
	KindToggle Kind = iota
	KindSlider
	KindButton
	KindChooser
)

// Record is the part shared by every recorded control.
type Record struct {
	Kind  Kind
	Label string

	destroyed bool
}

// Destroy implements [ui.Control].
func (r *Record) Destroy() { r.destroyed = true }

// Destroyed reports whether Destroy was called.
func (r *Record) Destroyed() bool { return r.destroyed }

func (r *Record) record() *Record { return r }

type recorded interface {
	record() *Record
}

// Toggle is a recorded boolean control.
type Toggle struct {
	Record
	Value    bool
	onChange func(bool)
}

// SetValueNoCallback implements [ui.Toggle].
func (t *Toggle) SetValueNoCallback(v bool) { t.Value = v }

// Set simulates operator input.
func (t *Toggle) Set(v bool) {
	t.Value = v
	if t.onChange != nil {
		t.onChange(v)
	}
}

// Slider is a recorded numeric control.
type Slider struct {
	Record
	Value    float32
	Min      float32
	Max      float32
	Default  float32
	onChange func(float32)
}

// SetValueNoCallback implements [ui.Slider].
func (s *Slider) SetValueNoCallback(v float32) { s.Value = v }

// Set simulates operator input. The value is clamped to [Min, Max].
func (s *Slider) Set(v float32) {
	v = min(max(v, s.Min), s.Max)
	s.Value = v
	if s.onChange != nil {
		s.onChange(v)
	}
}

// Button is a recorded button.
type Button struct {
	Record
	onClick func()
}

// Click simulates operator input.
func (b *Button) Click() {
	if b.onClick != nil {
		b.onClick()
	}
}

// Chooser is a recorded single-choice list.
type Chooser struct {
	Record
	IDs       []string
	Labels    []string
	Value     string
	Refreshes int
	onChange  func(string)
}

// SetChoices implements [ui.Chooser].
func (c *Chooser) SetChoices(ids, labels []string) {
	c.IDs = append([]string(nil), ids...)
	c.Labels = append([]string(nil), labels...)
}

// SetValueNoCallback implements [ui.Chooser].
func (c *Chooser) SetValueNoCallback(id string) { c.Value = id }

// Refresh implements [ui.Chooser].
func (c *Chooser) Refresh() { c.Refreshes++ }

// Choose simulates operator input.
func (c *Chooser) Choose(id string) {
	c.Value = id
	if c.onChange != nil {
		c.onChange(id)
	}
}

// Host is an in-memory [ui.Host]. Control creation is safe for concurrent
// use; the returned controls are not.
type Host struct {
	mu       sync.Mutex
	controls []recorded
}

// New returns an empty host.
func New() *Host { return &Host{} }

func (h *Host) add(c recorded) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.controls = append(h.controls, c)
}

// CreateToggle implements [ui.Host].
func (h *Host) CreateToggle(label string, value bool, onChange func(bool)) ui.Toggle {
	t := &Toggle{Record: Record{Kind: KindToggle, Label: label}, Value: value, onChange: onChange}
	h.add(t)
	return t
}

// CreateSlider implements [ui.Host].
func (h *Host) CreateSlider(label string, value, lo, hi, def float32, onChange func(float32)) ui.Slider {
	s := &Slider{
		Record:   Record{Kind: KindSlider, Label: label},
		Value:    value,
		Min:      lo,
		Max:      hi,
		Default:  def,
		onChange: onChange,
	}
	h.add(s)
	return s
}

// CreateButton implements [ui.Host].
func (h *Host) CreateButton(label string, onClick func()) ui.Control {
	b := &Button{Record: Record{Kind: KindButton, Label: label}, onClick: onClick}
	h.add(b)
	return b
}

// CreateChooser implements [ui.Host].
func (h *Host) CreateChooser(label string, onChange func(string)) ui.Chooser {
	c := &Chooser{Record: Record{Kind: KindChooser, Label: label}, onChange: onChange}
	h.add(c)
	return c
}

// Created returns the number of controls ever created.
func (h *Host) Created() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.controls)
}

// Live returns the number of controls not yet destroyed.
func (h *Host) Live() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	n := 0
	for _, c := range h.controls {
		if !c.record().destroyed {
			n++
		}
	}
	return n
}

// LiveLabels returns the labels of all live controls in creation order.
func (h *Host) LiveLabels() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	var out []string
	for _, c := range h.controls {
		if r := c.record(); !r.destroyed {
			out = append(out, r.Label)
		}
	}
	return out
}

// find returns the most recently created live control with label.
func (h *Host) find(label string) recorded {
	h.mu.Lock()
	defer h.mu.Unlock()
	for i := len(h.controls) - 1; i >= 0; i-- {
		if r := h.controls[i].record(); !r.destroyed && r.Label == label {
			return h.controls[i]
		}
	}
	return nil
}

// Slider returns the newest live slider labelled label, or nil.
func (h *Host) Slider(label string) *Slider {
	s, _ := h.find(label).(*Slider)
	return s
}

// Toggle returns the newest live toggle labelled label, or nil.
func (h *Host) Toggle(label string) *Toggle {
	t, _ := h.find(label).(*Toggle)
	return t
}

// Button returns the newest live button labelled label, or nil.
func (h *Host) Button(label string) *Button {
	b, _ := h.find(label).(*Button)
	return b
}

// Chooser returns the newest live chooser labelled label, or nil.
func (h *Host) Chooser(label string) *Chooser {
	c, _ := h.find(label).(*Chooser)
	return c
}
