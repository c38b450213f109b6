// Package editor runs one collider editing session over a body.
//
// An [Editor] owns the catalog of the body, the four cascading selection
// lists and the global preview and preset controls. It is driven by the
// host: selection callbacks from the lists, a fixed-step [Editor.Tick], and
// the preset and snapshot operations. [Loop] provides that driver for
// headless sessions.
//
// Operations that cross the host boundary never panic: failures, including
// recovered panics, are logged with the operation name and returned, and the
// editor stays usable.
package editor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/MrWong99/colliderkit/internal/catalog"
	"github.com/MrWong99/colliderkit/internal/config"
	"github.com/MrWong99/colliderkit/internal/filter"
	"github.com/MrWong99/colliderkit/internal/group"
	"github.com/MrWong99/colliderkit/internal/model"
	"github.com/MrWong99/colliderkit/internal/observe"
	"github.com/MrWong99/colliderkit/internal/palette"
	"github.com/MrWong99/colliderkit/pkg/render"
	"github.com/MrWong99/colliderkit/pkg/scene"
	"github.com/MrWong99/colliderkit/pkg/ui"
)

// ErrPanic wraps a panic recovered inside an editor operation.
var ErrPanic = errors.New("editor: recovered panic")

// ErrDestroyed is returned by operations on a destroyed editor.
var ErrDestroyed = errors.New("editor: destroyed")

// Labels of the controls an editor creates.
const (
	LabelShowPreviews           = "Show Previews"
	LabelXRayPreviews           = "Use XRay Previews"
	LabelPreviewOpacity         = "Preview Opacity"
	LabelSelectedPreviewOpacity = "Selected Preview Opacity"
	LabelLoadPreset             = "Load Preset"
	LabelSavePreset             = "Save Preset"
	LabelResetAll               = "Reset All"

	LabelGroups        = "Rigidbody Groups"
	LabelRigidbodies   = "Rigidbodies"
	LabelColliders     = "Colliders"
	LabelAutoColliders = "Auto Colliders"
)

// Deps are the host collaborators of an editor.
type Deps struct {
	// UI and Render are required.
	UI     ui.Host
	Render render.Factory

	// Palette defaults to [palette.Default].
	Palette palette.Allocator

	// Metrics is optional.
	Metrics *observe.Metrics

	// Logger defaults to [slog.Default].
	Logger *slog.Logger

	// PickLoadPath and PickSavePath back the preset buttons. They return the
	// chosen path, or "" when the operator cancels. A nil picker disables its
	// button.
	PickLoadPath func() string
	PickSavePath func(suggested string) string

	// Now defaults to [time.Now].
	Now func() time.Time
}

// Editor is one editing session. It is not safe for concurrent use; see
// [Loop].
type Editor struct {
	cfg  *config.Config
	deps Deps
	log  *slog.Logger

	cat *catalog.Catalog
	sel *filter.Selector
	cur filter.Result

	groups, rigidbodies, colliders, autoColliders ui.Chooser

	showToggle, xrayToggle        ui.Toggle
	opacitySlider, selectedSlider ui.Slider
	globals                       ui.Set

	preview config.PreviewConfig

	destroyed bool
}

// New builds the catalog of scn and the session controls. A nil cfg uses
// [config.Default].
func New(scn scene.Scene, deps Deps, cfg *config.Config) (ed *Editor, err error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	e := &Editor{cfg: cfg, deps: deps, log: deps.Logger, preview: cfg.Preview}

	err = e.guard("new", func() error {
		if deps.UI == nil || deps.Render == nil {
			return errors.New("ui and render hosts are required")
		}
		opts := catalog.Options{
			Resolver: resolverFor(cfg.Identity),
			Env: &model.Env{
				UI:      deps.UI,
				Render:  deps.Render,
				Palette: deps.Palette,
				Metrics: deps.Metrics,
				Logger:  deps.Logger,
			},
		}
		if len(cfg.Editor.Groups) > 0 {
			groups, err := group.Compile(cfg.Editor.GroupSpecs())
			if err != nil {
				return err
			}
			opts.Groups = groups
		}
		cat, err := catalog.Build(scn, opts)
		if err != nil {
			return err
		}
		e.cat = cat
		e.sel = filter.NewSelector(cat, filter.WithRefresh(e.pushChoices), filter.WithMetrics(deps.Metrics))

		e.buildControls()
		e.applyPreview(cfg.Preview, true)

		initial := cfg.Editor.InitialGroup
		if cat.Group(initial) == nil {
			initial = group.AllID
		}
		e.apply(filter.Event{Category: filter.CategoryGroup, ID: initial})
		return nil
	})
	if err != nil {
		if e.cat != nil {
			e.teardown()
		}
		return nil, err
	}
	return e, nil
}

func resolverFor(id config.Identity) scene.Resolver {
	if id == config.IdentityUUID {
		return scene.UUIDResolver{}
	}
	return scene.HierarchyResolver{}
}

// guard runs fn as the boundary operation op.
func (e *Editor) guard(op string, fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrPanic, r)
		}
		if err != nil {
			err = fmt.Errorf("editor: %s: %w", op, err)
			e.log.Error("editor: operation failed", "op", op, "err", err)
		}
	}()
	if e.destroyed {
		return ErrDestroyed
	}
	return fn()
}

// ── Controls ────────────────────────────────────────────────────────────────

func (e *Editor) buildControls() {
	host := e.deps.UI
	p := e.preview

	e.showToggle = host.CreateToggle(LabelShowPreviews, p.Show, func(v bool) { e.SetShowPreviews(v) })
	e.xrayToggle = host.CreateToggle(LabelXRayPreviews, p.XRay, func(v bool) { e.SetXRayPreviews(v) })
	e.opacitySlider = host.CreateSlider(LabelPreviewOpacity, p.Opacity, 0, 1, 0.001,
		func(v float32) { e.SetPreviewOpacity(v) })
	e.selectedSlider = host.CreateSlider(LabelSelectedPreviewOpacity, p.SelectedOpacity, 0, 1, 0.3,
		func(v float32) { e.SetSelectedPreviewOpacity(v) })

	e.globals = ui.Set{e.showToggle, e.xrayToggle, e.opacitySlider, e.selectedSlider}
	if pick := e.deps.PickLoadPath; pick != nil {
		e.globals = append(e.globals, host.CreateButton(LabelLoadPreset, func() {
			if path := pick(); path != "" {
				_, _ = e.LoadPreset(context.Background(), path)
			}
		}))
	}
	if pick := e.deps.PickSavePath; pick != nil {
		e.globals = append(e.globals, host.CreateButton(LabelSavePreset, func() {
			if path := pick(e.DefaultPresetPath()); path != "" {
				_, _ = e.SavePreset(context.Background(), path)
			}
		}))
	}
	e.globals = append(e.globals, host.CreateButton(LabelResetAll, func() { e.ResetAll() }))

	e.groups = host.CreateChooser(LabelGroups, func(id string) { _ = e.SelectGroup(id) })
	e.rigidbodies = host.CreateChooser(LabelRigidbodies, func(id string) { _ = e.SelectRigidbody(id) })
	e.colliders = host.CreateChooser(LabelColliders, func(id string) { _ = e.SelectCollider(id) })
	e.autoColliders = host.CreateChooser(LabelAutoColliders, func(id string) { _ = e.SelectAutoCollider(id) })
	e.globals = append(e.globals, e.groups, e.rigidbodies, e.colliders, e.autoColliders)
}

// pushChoices mirrors a filter result in the four lists.
func (e *Editor) pushChoices(r filter.Result) {
	e.cur = r
	set := func(c ui.Chooser, choices []filter.Choice, value string) {
		c.SetChoices(filter.IDs(choices), filter.Labels(choices))
		c.SetValueNoCallback(value)
		c.Refresh()
	}
	set(e.groups, r.Groups, r.GroupValue())
	set(e.rigidbodies, r.Rigidbodies, r.RigidbodyValue())
	set(e.colliders, r.Colliders, r.State.Collider)
	set(e.autoColliders, r.AutoColliders, r.State.AutoCollider)
}

// ── Selection ───────────────────────────────────────────────────────────────

func (e *Editor) apply(ev filter.Event) {
	e.sel.Apply(filter.Next(e.cat, e.sel.Applied(), ev))
}

func (e *Editor) selectEvent(op string, ev filter.Event) error {
	return e.guard(op, func() error {
		e.apply(ev)
		e.log.Debug("editor: selection changed", "category", ev.Category.String(), "id", ev.ID)
		return nil
	})
}

// SelectGroup selects a group. An unknown id selects no group.
func (e *Editor) SelectGroup(id string) error {
	return e.selectEvent("select_group", filter.Event{Category: filter.CategoryGroup, ID: id})
}

// SelectRigidbody selects a rigidbody. [group.AllID] or an id outside the
// current group clears the rigidbody selection.
func (e *Editor) SelectRigidbody(id string) error {
	return e.selectEvent("select_rigidbody", filter.Event{Category: filter.CategoryRigidbody, ID: id})
}

// SelectCollider selects a collider. An id outside the current candidates
// falls back to the first candidate.
func (e *Editor) SelectCollider(id string) error {
	return e.selectEvent("select_collider", filter.Event{Category: filter.CategoryCollider, ID: id})
}

// SelectAutoCollider selects an auto-collider. An unknown id clears it.
func (e *Editor) SelectAutoCollider(id string) error {
	return e.selectEvent("select_auto_collider", filter.Event{Category: filter.CategoryAutoCollider, ID: id})
}

// State returns the applied selection.
func (e *Editor) State() filter.State { return e.cur.State }

// Choices returns the current filter result, including the choice lists.
func (e *Editor) Choices() filter.Result { return e.cur }

// Catalog returns the catalog of the session.
func (e *Editor) Catalog() *catalog.Catalog { return e.cat }

// Config returns the configuration in effect.
func (e *Editor) Config() *config.Config { return e.cfg }

// ── Lifecycle ───────────────────────────────────────────────────────────────

// Destroy deselects everything and releases every control and preview.
// Destroying twice is a no-op; other operations return [ErrDestroyed].
func (e *Editor) Destroy() error {
	if e.destroyed {
		return nil
	}
	err := e.guard("destroy", func() error {
		e.teardown()
		return nil
	})
	e.destroyed = true
	return err
}

func (e *Editor) teardown() {
	if e.sel != nil {
		e.sel.Clear()
	}
	e.globals.Destroy()
	e.globals = nil
	e.cat.Destroy()
}
