// Package model implements the editable entity models: colliders, rigidbodies
// and auto-colliders.
//
// Every model captures the initial values of its editable fields exactly once
// at construction. Those values back [Entity.ResetToInitial] and
// [Entity.DeviatesFromInitial] and are never mutated afterwards.
//
// A model reads and writes the live fields of its scene primitive directly:
// there is no shadow copy of the geometry, so edits made by the host between
// ticks are observed on the next read. Selecting a model creates its edit
// controls through the [ui.Host] in [Env]; deselecting destroys them.
//
// Models are not safe for concurrent use.
package model

import (
	"context"
	"log/slog"

	"github.com/MrWong99/colliderkit/internal/observe"
	"github.com/MrWong99/colliderkit/internal/palette"
	"github.com/MrWong99/colliderkit/pkg/render"
	"github.com/MrWong99/colliderkit/pkg/ui"
)

// Env carries the collaborators shared by all models of one catalog.
type Env struct {
	// UI creates edit controls. Required.
	UI ui.Host

	// Render creates previews. Required.
	Render render.Factory

	// Palette colours previews. Defaults to [palette.Default].
	Palette palette.Allocator

	// Metrics is optional.
	Metrics *observe.Metrics

	// Logger defaults to [slog.Default].
	Logger *slog.Logger
}

func (e *Env) palette() palette.Allocator {
	if e.Palette == nil {
		return palette.Default()
	}
	return e.Palette
}

func (e *Env) logger() *slog.Logger {
	if e.Logger == nil {
		return slog.Default()
	}
	return e.Logger
}

func (e *Env) previewDelta(n int64) {
	if e.Metrics != nil {
		e.Metrics.PreviewsActive.Add(context.Background(), n)
	}
}

// Entity is the contract shared by every model kind.
type Entity interface {
	ID() string
	Label() string

	// ToDocument encodes the editable fields.
	ToDocument() Fields

	// FromDocument applies the keys present in f and leaves the others
	// untouched. An invalid value aborts the decode before anything is
	// written and the error wraps [ErrInvalidField].
	FromDocument(f Fields) error

	ResetToInitial()
	DeviatesFromInitial() bool

	Selected() bool
	SetSelected(selected bool)

	// Destroy releases controls and previews.
	Destroy()
}

// Compile-time interface assertions.
var (
	_ Entity = (*Collider)(nil)
	_ Entity = (*Rigidbody)(nil)
	_ Entity = (*AutoCollider)(nil)
)
