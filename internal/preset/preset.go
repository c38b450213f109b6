// Package preset persists the edits of a catalog as a sparse document keyed
// by entity identity.
//
// A [Document] holds one flat field map per entity under the "colliders",
// "rigidbodies" and "autoColliders" keys. [Load] merges a document into a
// live catalog: only ids present in both are touched, and within one entity
// only the fields present in the document are written. Colliders owned by
// auto-colliders are never persisted; their geometry is derived from the
// auto-collider parameters.
package preset

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/MrWong99/colliderkit/internal/catalog"
	"github.com/MrWong99/colliderkit/internal/model"
)

// Suffix is the file name suffix of saved documents.
const Suffix = ".colliders"

var (
	// ErrInvalidField is returned when a document field has the wrong type.
	ErrInvalidField = model.ErrInvalidField

	// ErrNotDocument is returned when input is not a preset document.
	ErrNotDocument = errors.New("preset: not a preset document")
)

// Document is the persisted form of a catalog.
type Document struct {
	Colliders     map[string]model.Fields `json:"colliders"`
	Rigidbodies   map[string]model.Fields `json:"rigidbodies"`
	AutoColliders map[string]model.Fields `json:"autoColliders,omitempty"`
}

// Len returns the number of entities in the document.
func (d Document) Len() int {
	return len(d.Colliders) + len(d.Rigidbodies) + len(d.AutoColliders)
}

// SaveOptions configures [Save].
type SaveOptions struct {
	// IncludeAutoColliders adds the "autoColliders" section.
	IncludeAutoColliders bool

	// OnlyModified keeps only entities that deviate from their initial
	// values.
	OnlyModified bool
}

// DefaultSaveOptions returns the options used when none are configured.
func DefaultSaveOptions() SaveOptions {
	return SaveOptions{IncludeAutoColliders: true}
}

// Save encodes cat. The returned maps are never nil.
func Save(cat *catalog.Catalog, opts SaveOptions) Document {
	doc := Document{
		Colliders:   make(map[string]model.Fields),
		Rigidbodies: make(map[string]model.Fields),
	}
	for _, c := range cat.Colliders() {
		if !opts.OnlyModified || c.DeviatesFromInitial() {
			doc.Colliders[c.ID()] = c.ToDocument()
		}
	}
	for _, rb := range cat.Rigidbodies() {
		if !opts.OnlyModified || rb.DeviatesFromInitial() {
			doc.Rigidbodies[rb.ID()] = rb.ToDocument()
		}
	}
	if opts.IncludeAutoColliders {
		doc.AutoColliders = make(map[string]model.Fields)
		for _, a := range cat.AutoColliders() {
			if !opts.OnlyModified || a.DeviatesFromInitial() {
				doc.AutoColliders[a.ID()] = a.ToDocument()
			}
		}
	}
	return doc
}

// LoadReport counts what [Load] did.
type LoadReport struct {
	Applied int
	Skipped int
}

func (r LoadReport) String() string {
	return fmt.Sprintf("%d applied, %d skipped", r.Applied, r.Skipped)
}

// Load merges doc into cat. Sections are applied in order colliders,
// rigidbodies, auto-colliders, each in sorted id order. Ids unknown to cat
// are skipped. Load stops at the first entity that fails to decode; entities
// applied before it keep their new values.
func Load(doc Document, cat *catalog.Catalog) (LoadReport, error) {
	var rep LoadReport
	sections := []struct {
		kind   string
		fields map[string]model.Fields
		lookup func(id string) model.Entity
	}{
		{catalog.KindCollider, doc.Colliders, func(id string) model.Entity {
			if c := cat.Collider(id); c != nil {
				return c
			}
			return nil
		}},
		{catalog.KindRigidbody, doc.Rigidbodies, func(id string) model.Entity {
			if rb := cat.Rigidbody(id); rb != nil {
				return rb
			}
			return nil
		}},
		{catalog.KindAutoCollider, doc.AutoColliders, func(id string) model.Entity {
			if a := cat.AutoCollider(id); a != nil {
				return a
			}
			return nil
		}},
	}

	for _, s := range sections {
		for _, id := range sortedIDs(s.fields) {
			e := s.lookup(id)
			if e == nil {
				rep.Skipped++
				continue
			}
			if err := e.FromDocument(s.fields[id]); err != nil {
				return rep, fmt.Errorf("preset: load %s %q: %w", s.kind, id, err)
			}
			rep.Applied++
		}
	}
	return rep, nil
}

func sortedIDs(m map[string]model.Fields) []string {
	ids := make([]string, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// WithSuffix returns path with [Suffix] appended unless it already ends in
// it, compared case-insensitively.
func WithSuffix(path string) string {
	if strings.HasSuffix(strings.ToLower(path), Suffix) {
		return path
	}
	return path + Suffix
}
