package editor

import (
	"context"
	"path/filepath"

	"github.com/MrWong99/colliderkit/internal/preset"
)

func (e *Editor) saveOptions() preset.SaveOptions {
	return preset.SaveOptions{
		IncludeAutoColliders: e.cfg.Presets.IncludeAutoColliders,
		OnlyModified:         e.cfg.Presets.OnlyModified,
	}
}

func (e *Editor) fileOptions() []preset.FileOption {
	if e.deps.Metrics == nil {
		return nil
	}
	return []preset.FileOption{preset.WithMetrics(e.deps.Metrics)}
}

// DefaultPresetPath is the path suggested when saving: the unix timestamp
// file name inside the configured preset directory.
func (e *Editor) DefaultPresetPath() string {
	return filepath.Join(e.cfg.Presets.Dir, preset.DefaultFileName(e.deps.Now()))
}

// SavePreset writes the current edits to path, or to
// [Editor.DefaultPresetPath] when path is empty. The preset suffix is
// appended when missing. It returns the path written.
func (e *Editor) SavePreset(ctx context.Context, path string) (written string, err error) {
	err = e.guard("save_preset", func() error {
		if path == "" {
			path = e.DefaultPresetPath()
		}
		doc := preset.Save(e.cat, e.saveOptions())
		w, err := preset.SaveFile(ctx, path, doc, e.fileOptions()...)
		written = w
		return err
	})
	return written, err
}

// LoadPreset reads the preset at path verbatim and merges it into the
// catalog.
func (e *Editor) LoadPreset(ctx context.Context, path string) (preset.LoadReport, error) {
	var rep preset.LoadReport
	err := e.guard("load_preset", func() error {
		doc, err := preset.LoadFile(ctx, path, e.fileOptions()...)
		if err != nil {
			return err
		}
		rep, err = preset.Load(doc, e.cat)
		if err != nil {
			return err
		}
		e.log.Info("editor: preset loaded", "path", path, "applied", rep.Applied, "skipped", rep.Skipped)
		return nil
	})
	return rep, err
}

// Snapshot returns the full state of the catalog, for embedding in the
// host's own saved scene.
func (e *Editor) Snapshot() preset.Document {
	return preset.Save(e.cat, preset.SaveOptions{IncludeAutoColliders: e.cfg.Presets.IncludeAutoColliders})
}

// Restore merges a document previously produced by [Editor.Snapshot].
func (e *Editor) Restore(doc preset.Document) (preset.LoadReport, error) {
	var rep preset.LoadReport
	err := e.guard("restore", func() error {
		var err error
		rep, err = preset.Load(doc, e.cat)
		return err
	})
	return rep, err
}

// ResetAll restores every entity to its initial values.
func (e *Editor) ResetAll() {
	if e.destroyed {
		return
	}
	for _, c := range e.cat.Colliders() {
		c.ResetToInitial()
	}
	for _, rb := range e.cat.Rigidbodies() {
		rb.ResetToInitial()
	}
	for _, a := range e.cat.AutoColliders() {
		a.ResetToInitial()
	}
	e.log.Info("editor: reset all")
}
