package editor

import (
	"context"
	"time"
)

// Tick runs one fixed step: selected controls and previews are refreshed
// from the live scene values, and auto-colliders re-apply a radius
// multiplier the host replaced.
func (e *Editor) Tick() {
	if e.destroyed {
		return
	}
	start := time.Now()

	for _, a := range e.cat.AutoColliders() {
		a.SyncToScene()
		a.UpdateControls()
	}
	for _, c := range e.cat.Previewable() {
		c.UpdateControls()
		c.UpdatePreview()
	}

	if m := e.deps.Metrics; m != nil {
		m.TickDuration.Record(context.Background(), time.Since(start).Seconds())
	}
}
