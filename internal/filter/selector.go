package filter

import (
	"context"

	"github.com/MrWong99/colliderkit/internal/model"
	"github.com/MrWong99/colliderkit/internal/observe"
)

// Selector applies [Result] values to the models of a [View]. It remembers
// what it selected last, so only changed selections are touched.
type Selector struct {
	view      View
	applied   State
	onRefresh func(Result)
	metrics   *observe.Metrics
}

// SelectorOption configures a [Selector].
type SelectorOption func(*Selector)

// WithRefresh sets a callback run after every [Selector.Apply], typically to
// push the choice lists into list widgets.
func WithRefresh(fn func(Result)) SelectorOption {
	return func(s *Selector) { s.onRefresh = fn }
}

// WithMetrics records applied selection changes.
func WithMetrics(m *observe.Metrics) SelectorOption {
	return func(s *Selector) { s.metrics = m }
}

// NewSelector returns a selector with nothing selected.
func NewSelector(v View, opts ...SelectorOption) *Selector {
	s := &Selector{view: v}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Applied returns the last applied state.
func (s *Selector) Applied() State { return s.applied }

// Apply deselects every changed selection and selects its replacement:
// collider, then rigidbody, then auto-collider. The refresh callback runs
// last.
func (s *Selector) Apply(r Result) {
	s.apply(r.State)
	if s.onRefresh != nil {
		s.onRefresh(r)
	}
}

// Clear deselects everything without running the refresh callback.
func (s *Selector) Clear() { s.apply(State{}) }

func (s *Selector) apply(next State) {
	prev := s.applied
	v := s.view

	if prev.Collider != next.Collider {
		var old, cur model.Entity
		if c := v.Collider(prev.Collider); c != nil {
			old = c
		}
		if c := v.Collider(next.Collider); c != nil {
			cur = c
		}
		s.swap(CategoryCollider, old, cur)
	}
	if prev.Rigidbody != next.Rigidbody {
		var old, cur model.Entity
		if rb := v.Rigidbody(prev.Rigidbody); rb != nil {
			old = rb
		}
		if rb := v.Rigidbody(next.Rigidbody); rb != nil {
			cur = rb
		}
		s.swap(CategoryRigidbody, old, cur)
	}
	if prev.AutoCollider != next.AutoCollider {
		var old, cur model.Entity
		if a := v.AutoCollider(prev.AutoCollider); a != nil {
			old = a
		}
		if a := v.AutoCollider(next.AutoCollider); a != nil {
			cur = a
		}
		s.swap(CategoryAutoCollider, old, cur)
	}
	s.applied = next
}

func (s *Selector) swap(cat Category, old, cur model.Entity) {
	if old != nil {
		old.SetSelected(false)
	}
	if cur != nil {
		cur.SetSelected(true)
	}
	if s.metrics != nil {
		s.metrics.RecordSelection(context.Background(), cat.String())
	}
}
