package editor

import (
	"math"

	"github.com/MrWong99/colliderkit/internal/config"
)

// Midpoint and maximum of the opacity slider curve.
const (
	opacityMid = 0.2
	opacityMax = 1
)

// ExponentialScale maps v in [0, 1] onto [0, max] along an exponential curve
// through (0.5, mid). Small slider values give fine control over nearly
// transparent previews.
func ExponentialScale(v, mid, max float32) float32 {
	m := float64(max) / float64(mid)
	c := math.Log((m - 1) * (m - 1))
	b := float64(max) / (math.Exp(c) - 1)
	return float32(-b + b*math.Exp(c*float64(v)))
}

// SetShowPreviews shows or hides the preview of every collider, including
// the colliders owned by auto-colliders.
func (e *Editor) SetShowPreviews(show bool) {
	if e.destroyed {
		return
	}
	e.preview.Show = show
	for _, c := range e.cat.Previewable() {
		c.SetShowPreview(show)
	}
	e.showToggle.SetValueNoCallback(show)
}

// SetXRayPreviews switches every preview between xray and normal rendering.
func (e *Editor) SetXRayPreviews(xray bool) {
	if e.destroyed {
		return
	}
	e.preview.XRay = xray
	for _, c := range e.cat.Previewable() {
		c.SetXRay(xray)
	}
	e.xrayToggle.SetValueNoCallback(xray)
}

// SetPreviewOpacity sets the slider value of the unselected preview opacity.
// Previews receive the value mapped through [ExponentialScale].
func (e *Editor) SetPreviewOpacity(v float32) {
	if e.destroyed {
		return
	}
	e.preview.Opacity = v
	alpha := ExponentialScale(v, opacityMid, opacityMax)
	for _, c := range e.cat.Previewable() {
		c.SetPreviewOpacity(alpha)
	}
	e.opacitySlider.SetValueNoCallback(v)
}

// SetSelectedPreviewOpacity is [Editor.SetPreviewOpacity] for the selected
// collider.
func (e *Editor) SetSelectedPreviewOpacity(v float32) {
	if e.destroyed {
		return
	}
	e.preview.SelectedOpacity = v
	alpha := ExponentialScale(v, opacityMid, opacityMax)
	for _, c := range e.cat.Previewable() {
		c.SetSelectedPreviewOpacity(alpha)
	}
	e.selectedSlider.SetValueNoCallback(v)
}

// Preview returns the preview settings in effect.
func (e *Editor) Preview() config.PreviewConfig { return e.preview }

// applyPreview applies the settings of p that differ from the current ones,
// or all of them when force is set.
func (e *Editor) applyPreview(p config.PreviewConfig, force bool) {
	cur := e.preview
	if force || p.Opacity != cur.Opacity {
		e.SetPreviewOpacity(p.Opacity)
	}
	if force || p.SelectedOpacity != cur.SelectedOpacity {
		e.SetSelectedPreviewOpacity(p.SelectedOpacity)
	}
	if force || p.XRay != cur.XRay {
		e.SetXRayPreviews(p.XRay)
	}
	if force || p.Show != cur.Show {
		e.SetShowPreviews(p.Show)
	}
}

// ApplyConfig applies the hot-reloadable part of a changed configuration:
// preview settings and preset options. Keys listed in
// [config.ConfigDiff.RestartRequired] are logged and left alone. The log
// level is owned by the process and is not applied here.
func (e *Editor) ApplyConfig(diff config.ConfigDiff, cfg *config.Config) error {
	return e.guard("apply_config", func() error {
		if diff.PreviewChanged() {
			e.applyPreview(cfg.Preview, false)
		}
		next := *e.cfg
		next.LogLevel = cfg.LogLevel
		next.Preview = cfg.Preview
		next.Presets = cfg.Presets
		e.cfg = &next

		if len(diff.RestartRequired) > 0 {
			e.log.Warn("editor: config changes need a new session", "keys", diff.RestartRequired)
		}
		e.log.Info("editor: config applied",
			"preview_changed", diff.PreviewChanged(),
			"presets_changed", diff.PresetsChanged,
		)
		return nil
	})
}
