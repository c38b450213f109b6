package config_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/MrWong99/colliderkit/internal/config"
)

const watchedYAML = `
log_level: info
preview:
  opacity: 0.1
`

// rewrite replaces the file and pushes its mtime forward so coarse
// filesystem timestamps still register.
func rewrite(t *testing.T, path, content string, step int) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	touch(t, path, step)
}

func touch(t *testing.T, path string, step int) {
	t.Helper()
	at := time.Now().Add(time.Duration(step) * time.Second)
	if err := os.Chtimes(path, at, at); err != nil {
		t.Fatal(err)
	}
}

func watched(t *testing.T, onChange func(config.Change)) (*config.Watcher, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(watchedYAML), 0o644); err != nil {
		t.Fatal(err)
	}
	w, err := config.NewWatcher(path, onChange)
	if err != nil {
		t.Fatalf("NewWatcher: %v", err)
	}
	return w, path
}

func TestWatcher_InitialLoad(t *testing.T) {
	t.Parallel()

	w, path := watched(t, nil)
	if cfg := w.Current(); cfg.LogLevel != config.LogInfo || cfg.Preview.Opacity != 0.1 {
		t.Errorf("Current() = %+v", cfg)
	}
	if w.Path() != path {
		t.Errorf("Path() = %q, want %q", w.Path(), path)
	}
}

func TestWatcher_InitialLoadFails(t *testing.T) {
	t.Parallel()

	if _, err := config.NewWatcher(filepath.Join(t.TempDir(), "missing.yaml"), nil); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestWatcher_DeliversDiff(t *testing.T) {
	t.Parallel()

	var got []config.Change
	w, path := watched(t, func(c config.Change) { got = append(got, c) })

	rewrite(t, path, "log_level: debug\npreview:\n  opacity: 0.4\n", 2)
	changed, err := w.Check()
	if err != nil || !changed {
		t.Fatalf("Check() = %v, %v; want true, nil", changed, err)
	}
	if len(got) != 1 {
		t.Fatalf("callbacks = %d, want 1", len(got))
	}
	c := got[0]
	if c.Old.LogLevel != config.LogInfo || c.New.LogLevel != config.LogDebug {
		t.Errorf("old/new log level = %q/%q", c.Old.LogLevel, c.New.LogLevel)
	}
	if !c.Diff.LogLevelChanged || !c.Diff.OpacityChanged || c.Diff.XRayChanged {
		t.Errorf("diff = %+v", c.Diff)
	}
	if w.Current() != c.New {
		t.Error("Current() is not the delivered config")
	}
}

func TestWatcher_NoDelivery(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		edit    func(t *testing.T, path string)
		wantErr bool
		level   config.LogLevel
	}{
		{
			name: "untouched",
			edit: func(*testing.T, string) {},
		},
		{
			name: "touch only",
			edit: func(t *testing.T, path string) { touch(t, path, 2) },
		},
		{
			name: "comment only",
			edit: func(t *testing.T, path string) { rewrite(t, path, watchedYAML+"# note\n", 2) },
		},
		{
			name:    "invalid",
			edit:    func(t *testing.T, path string) { rewrite(t, path, "log_level: bananas\n", 2) },
			wantErr: true,
		},
		{
			name:    "removed",
			edit:    func(t *testing.T, path string) { _ = os.Remove(path) },
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			calls := 0
			w, path := watched(t, func(config.Change) { calls++ })

			tt.edit(t, path)
			changed, err := w.Check()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Check() err = %v, wantErr %v", err, tt.wantErr)
			}
			if changed || calls != 0 {
				t.Errorf("changed = %v, calls = %d; want no delivery", changed, calls)
			}
			if w.Current().LogLevel != config.LogInfo {
				t.Errorf("Current() log level = %q, want info", w.Current().LogLevel)
			}
		})
	}
}

func TestWatcher_RestartOnlyChangeIsDelivered(t *testing.T) {
	t.Parallel()

	var diff config.ConfigDiff
	w, path := watched(t, func(c config.Change) { diff = c.Diff })

	rewrite(t, path, watchedYAML+"identity: uuid\n", 2)
	if changed, err := w.Check(); err != nil || !changed {
		t.Fatalf("Check() = %v, %v", changed, err)
	}
	if len(diff.RestartRequired) != 1 || diff.RestartRequired[0] != "identity" {
		t.Errorf("RestartRequired = %v, want [identity]", diff.RestartRequired)
	}
}

func TestWatcher_RunPollsUntilCancelled(t *testing.T) {
	t.Parallel()

	delivered := make(chan config.Change, 1)
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(watchedYAML), 0o644); err != nil {
		t.Fatal(err)
	}
	w, err := config.NewWatcher(path, func(c config.Change) { delivered <- c }, config.WithInterval(10*time.Millisecond))
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	rewrite(t, path, "preview:\n  xray: false\n", 2)
	select {
	case c := <-delivered:
		if !c.Diff.XRayChanged {
			t.Errorf("diff = %+v, want xray change", c.Diff)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("no change delivered")
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Run = %v, want nil", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return")
	}
}
