// Package catalog discovers the editable entities of one body and owns them
// for the lifetime of an editor session.
//
// [Build] walks a [scene.Scene] once: auto-colliders first, so that the hard
// and joint colliders and the joint and kinematic rigidbodies they own can be
// left out of the plain lists; then rigidbodies; then colliders. Every entity
// is keyed by the identity its [scene.Resolver] derives. Problems with single
// entities never fail the build: they are logged and collected in
// [Catalog.Issues].
package catalog

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"github.com/MrWong99/colliderkit/internal/group"
	"github.com/MrWong99/colliderkit/internal/model"
	"github.com/MrWong99/colliderkit/internal/observe"
	"github.com/MrWong99/colliderkit/pkg/scene"
)

// ErrDuplicateIdentity is reported when two entities of the same kind
// resolve to the same identity. The later one is skipped.
var ErrDuplicateIdentity = errors.New("catalog: duplicate identity")

// Entity kinds used in metrics and search results.
const (
	KindCollider     = "collider"
	KindRigidbody    = "rigidbody"
	KindAutoCollider = "auto_collider"
)

// Options configures [Build].
type Options struct {
	// Resolver derives entity identities. Required.
	Resolver scene.Resolver

	// Env is shared by every model. Required.
	Env *model.Env

	// Groups classifies rigidbodies. Defaults to [group.ForArchetype] of the
	// scene archetype.
	Groups []*group.Group

	// ExcludeRigidbody and ExcludeCollider default to the package functions
	// of the same name.
	ExcludeRigidbody func(scene.Rigidbody) bool
	ExcludeCollider  func(scene.Collider) bool
}

// Catalog holds every entity of one body. It is not safe for concurrent use.
type Catalog struct {
	groups []*group.Group

	rigidbodies   map[string]*model.Rigidbody
	colliders     map[string]*model.Collider
	autoColliders map[string]*model.AutoCollider

	// Insertion order, for deterministic listing.
	rbOrder       []*model.Rigidbody
	colliderOrder []*model.Collider

	issues []error
	log    *slog.Logger
	met    *observe.Metrics
}

// Build constructs the catalog of scn. It only fails when scn or a required
// option is missing.
func Build(scn scene.Scene, opts Options) (*Catalog, error) {
	if scn == nil {
		return nil, errors.New("catalog: scene is required")
	}
	if opts.Resolver == nil {
		return nil, errors.New("catalog: resolver is required")
	}
	if opts.Env == nil || opts.Env.UI == nil || opts.Env.Render == nil {
		return nil, errors.New("catalog: env with UI and render hosts is required")
	}
	if opts.Groups == nil {
		opts.Groups = group.ForArchetype(scn.Archetype())
	}
	if opts.ExcludeRigidbody == nil {
		opts.ExcludeRigidbody = ExcludeRigidbody
	}
	if opts.ExcludeCollider == nil {
		opts.ExcludeCollider = ExcludeCollider
	}

	c := &Catalog{
		groups:        opts.Groups,
		rigidbodies:   make(map[string]*model.Rigidbody),
		colliders:     make(map[string]*model.Collider),
		autoColliders: make(map[string]*model.AutoCollider),
		log:           opts.Env.Logger,
		met:           opts.Env.Metrics,
	}
	if c.log == nil {
		c.log = slog.Default()
	}

	ownedColliders := make(map[scene.Collider]bool)
	ownedBodies := make(map[scene.Rigidbody]bool)
	droppedBodies := make(map[scene.Rigidbody]bool)

	for _, ac := range scn.AutoColliders() {
		var owned []*model.Collider
		for _, prim := range []scene.Collider{ac.HardCollider(), ac.JointCollider()} {
			if prim == nil {
				continue
			}
			ownedColliders[prim] = true
			m, err := model.NewCollider(opts.Resolver.Identity(prim), prim.Name(), prim, opts.Env)
			if err != nil {
				c.report("unsupported", KindCollider, prim.Name(), err)
				continue
			}
			owned = append(owned, m)
		}
		for _, rb := range []scene.Rigidbody{ac.JointRigidbody(), ac.KinematicRigidbody()} {
			if rb != nil {
				ownedBodies[rb] = true
			}
		}

		id := opts.Resolver.Identity(ac)
		if _, dup := c.autoColliders[id]; dup {
			c.report("duplicate", KindAutoCollider, id, ErrDuplicateIdentity)
			for _, m := range owned {
				m.Destroy()
			}
			continue
		}
		c.autoColliders[id] = model.NewAutoCollider(id, ac, owned, opts.Env)
		c.record(KindAutoCollider)
	}

	for _, rb := range scn.Rigidbodies() {
		if ownedBodies[rb] || opts.ExcludeRigidbody(rb) {
			continue
		}
		id := opts.Resolver.Identity(rb)
		if _, dup := c.rigidbodies[id]; dup {
			c.report("duplicate", KindRigidbody, id, ErrDuplicateIdentity)
			droppedBodies[rb] = true
			continue
		}
		m := model.NewRigidbody(id, rb, c.groups, opts.Env)
		c.rigidbodies[id] = m
		c.rbOrder = append(c.rbOrder, m)
		c.record(KindRigidbody)
	}

	for _, prim := range scn.Colliders() {
		if ownedColliders[prim] || opts.ExcludeCollider(prim) {
			continue
		}
		id := opts.Resolver.Identity(prim)
		if _, dup := c.colliders[id]; dup {
			c.report("duplicate", KindCollider, id, ErrDuplicateIdentity)
			continue
		}
		m, err := model.NewCollider(id, prim.Name(), prim, opts.Env)
		if err != nil {
			c.report("unsupported", KindCollider, id, err)
			continue
		}
		// Colliders on a dropped duplicate body stay unattached rather than
		// being linked to the surviving body of the same identity.
		if body := prim.AttachedRigidbody(); body != nil && !droppedBodies[body] {
			if rb, ok := c.rigidbodies[opts.Resolver.Identity(body)]; ok {
				model.Link(rb, m)
			}
		}
		c.colliders[id] = m
		c.colliderOrder = append(c.colliderOrder, m)
		c.record(KindCollider)
	}

	c.log.Debug("catalog: built",
		"rigidbodies", len(c.rigidbodies),
		"colliders", len(c.colliders),
		"auto_colliders", len(c.autoColliders),
		"issues", len(c.issues),
	)
	return c, nil
}

func (c *Catalog) record(kind string) {
	if c.met != nil {
		c.met.RecordEntity(context.Background(), kind)
	}
}

func (c *Catalog) report(reason, kind, id string, err error) {
	err = fmt.Errorf("%s %q: %w", kind, id, err)
	c.issues = append(c.issues, err)
	c.log.Error("catalog: entity skipped", "kind", kind, "id", id, "err", err)
	if c.met != nil {
		c.met.RecordIssue(context.Background(), reason)
	}
}

// Groups returns the rigidbody groups in display order.
func (c *Catalog) Groups() []*group.Group { return c.groups }

// Group returns the group with id, or nil.
func (c *Catalog) Group(id string) *group.Group { return group.ByID(c.groups, id) }

// Rigidbodies returns the rigidbodies in discovery order.
func (c *Catalog) Rigidbodies() []*model.Rigidbody { return c.rbOrder }

// Colliders returns the colliders in discovery order. Colliders owned by
// auto-colliders are not included.
func (c *Catalog) Colliders() []*model.Collider { return c.colliderOrder }

// AutoColliders returns the auto-colliders sorted by id.
func (c *Catalog) AutoColliders() []*model.AutoCollider {
	out := make([]*model.AutoCollider, 0, len(c.autoColliders))
	for _, a := range c.autoColliders {
		out = append(out, a)
	}
	slices.SortFunc(out, func(a, b *model.AutoCollider) int { return cmp.Compare(a.ID(), b.ID()) })
	return out
}

// Rigidbody returns the rigidbody with id, or nil.
func (c *Catalog) Rigidbody(id string) *model.Rigidbody { return c.rigidbodies[id] }

// Collider returns the collider with id, or nil.
func (c *Catalog) Collider(id string) *model.Collider { return c.colliders[id] }

// AutoCollider returns the auto-collider with id, or nil.
func (c *Catalog) AutoCollider(id string) *model.AutoCollider { return c.autoColliders[id] }

// Issues joins the per-entity problems found during the build. It returns
// nil for a clean build.
func (c *Catalog) Issues() error { return errors.Join(c.issues...) }

// Len returns the number of entities of each kind.
func (c *Catalog) Len() (rigidbodies, colliders, autoColliders int) {
	return len(c.rigidbodies), len(c.colliders), len(c.autoColliders)
}

// Previewable returns every collider that can show a preview: the plain
// colliders followed by the owned colliders of each auto-collider.
func (c *Catalog) Previewable() []*model.Collider {
	out := slices.Clone(c.colliderOrder)
	for _, a := range c.AutoColliders() {
		out = append(out, a.Owned()...)
	}
	return out
}

// Destroy releases the previews and controls of every entity.
func (c *Catalog) Destroy() {
	for _, m := range c.colliderOrder {
		m.Destroy()
	}
	for _, m := range c.rbOrder {
		m.Destroy()
	}
	for _, a := range c.autoColliders {
		a.Destroy()
	}
}
