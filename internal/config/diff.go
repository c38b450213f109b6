package config

// ConfigDiff describes what changed between two configs.
// Only fields that can be safely hot-reloaded are applied; the rest are
// listed in RestartRequired.
type ConfigDiff struct {
	LogLevelChanged bool
	NewLogLevel     LogLevel

	ShowChanged            bool
	XRayChanged            bool
	OpacityChanged         bool
	SelectedOpacityChanged bool
	PresetsChanged         bool

	// RestartRequired names the top-level keys whose changes only take
	// effect in a new session.
	RestartRequired []string
}

// Empty reports whether the diff carries nothing to apply or report.
func (d ConfigDiff) Empty() bool {
	return !d.LogLevelChanged && !d.PreviewChanged() && !d.PresetsChanged && len(d.RestartRequired) == 0
}

// PreviewChanged reports whether any preview setting changed.
func (d ConfigDiff) PreviewChanged() bool {
	return d.ShowChanged || d.XRayChanged || d.OpacityChanged || d.SelectedOpacityChanged
}

// Diff compares old and new configs and returns what changed.
func Diff(old, new *Config) ConfigDiff {
	d := ConfigDiff{}

	if old.LogLevel != new.LogLevel {
		d.LogLevelChanged = true
		d.NewLogLevel = new.LogLevel
	}

	d.ShowChanged = old.Preview.Show != new.Preview.Show
	d.XRayChanged = old.Preview.XRay != new.Preview.XRay
	d.OpacityChanged = old.Preview.Opacity != new.Preview.Opacity
	d.SelectedOpacityChanged = old.Preview.SelectedOpacity != new.Preview.SelectedOpacity
	d.PresetsChanged = old.Presets != new.Presets

	if old.Identity != new.Identity {
		d.RestartRequired = append(d.RestartRequired, "identity")
	}
	if !editorEqual(old.Editor, new.Editor) {
		d.RestartRequired = append(d.RestartRequired, "editor")
	}
	if old.Session != new.Session {
		d.RestartRequired = append(d.RestartRequired, "session")
	}

	return d
}

func editorEqual(a, b EditorConfig) bool {
	if a.InitialGroup != b.InitialGroup || len(a.Groups) != len(b.Groups) {
		return false
	}
	for i := range a.Groups {
		if a.Groups[i] != b.Groups[i] {
			return false
		}
	}
	return true
}
