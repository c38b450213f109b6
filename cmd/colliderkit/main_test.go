package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/MrWong99/colliderkit/internal/config"
	"github.com/MrWong99/colliderkit/internal/editor"
)

const toyScene = `archetype: Toy
root:
  name: geometry
  children:
    - name: head
      rigidbody: {detect_collisions: true}
      colliders:
        - sphere: {radius: 0.1, center: [0, 0.05, 0]}
    - name: neck
      rigidbody: {detect_collisions: true}
      colliders:
        - capsule: {radius: 0.05, height: 0.2, direction: y}
`

func writeScene(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "toy.yaml")
	if err := os.WriteFile(path, []byte(toyScene), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := rootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestVersion(t *testing.T) {
	out, err := run(t, "version")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, Version) {
		t.Errorf("output %q lacks version %q", out, Version)
	}
}

func TestInvalidLogLevel(t *testing.T) {
	if _, err := run(t, "--log-level", "loud", "version"); err == nil {
		t.Fatal("expected error for invalid --log-level")
	}
}

func TestMissingConfig(t *testing.T) {
	_, err := run(t, "--config", filepath.Join(t.TempDir(), "nope.yaml"), "version")
	if err == nil || !strings.Contains(err.Error(), "not found") {
		t.Fatalf("err = %v, want not found", err)
	}
}

func TestCatalog(t *testing.T) {
	out, err := run(t, "catalog", writeScene(t))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "Toy: 2 rigidbodies, 2 colliders, 0 auto colliders") {
		t.Errorf("missing summary line:\n%s", out)
	}
	for _, want := range []string{"Rigidbody Groups (1)", "Rigidbodies (3)", "Colliders (2)", "Auto Colliders (0)"} {
		if !strings.Contains(out, want) {
			t.Errorf("output lacks %q:\n%s", want, out)
		}
	}
}

func TestFind(t *testing.T) {
	out, err := run(t, "find", writeScene(t), "neck", "-n", "1")
	if err != nil {
		t.Fatal(err)
	}
	if lines := strings.Split(strings.TrimSpace(out), "\n"); len(lines) != 1 || !strings.Contains(lines[0], "neck") {
		t.Errorf("find output = %q", out)
	}
}

func TestSaveLoadPresets(t *testing.T) {
	scenePath := writeScene(t)
	dir := t.TempDir()

	out, err := run(t, "save", scenePath, filepath.Join(dir, "toy"))
	if err != nil {
		t.Fatal(err)
	}
	saved := filepath.Join(dir, "toy.colliders")
	if !strings.Contains(out, "saved "+saved) {
		t.Fatalf("save output = %q", out)
	}

	edited := filepath.Join(dir, "edited.yaml")
	out, err = run(t, "load", scenePath, saved, "--write", edited)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "4 applied, 0 skipped") {
		t.Errorf("load output = %q", out)
	}
	if _, err := os.Stat(edited); err != nil {
		t.Errorf("edited scene not written: %v", err)
	}

	out, err = run(t, "presets", dir)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "toy.colliders\t2 colliders, 2 rigidbodies, 0 auto colliders") {
		t.Errorf("presets output = %q", out)
	}
}

func TestPresets_Empty(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "missing")
	out, err := run(t, "presets", dir)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "no presets") {
		t.Errorf("output = %q", out)
	}
}

func TestSession_Duration(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.yaml")
	cfg := "presets:\n  dir: " + filepath.Join(dir, "presets") + "\nsession:\n  tick: 5ms\n"
	if err := os.WriteFile(cfgPath, []byte(cfg), 0o644); err != nil {
		t.Fatal(err)
	}

	out, err := run(t, "--config", cfgPath, "session", writeScene(t), "--duration", "50ms", "--save-on-exit")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "saved "+filepath.Join(dir, "presets")) {
		t.Errorf("session output = %q", out)
	}
}

func TestSaveOnExit(t *testing.T) {
	tests := []struct {
		name      string
		loopFirst bool
		wantSaved bool
	}{
		{name: "session ends", wantSaved: true},
		{name: "loop exits first", loopFirst: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := config.Default()
			cfg.Presets.Dir = t.TempDir()
			h, err := openScene(writeScene(t), cfg, nil)
			if err != nil {
				t.Fatal(err)
			}
			loop := editor.NewLoop(h.ed, 5*time.Millisecond)

			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()
			runCtx, cancelRun := context.WithCancel(context.Background())
			defer cancelRun()
			loopDone := make(chan struct{})
			go func() {
				defer close(loopDone)
				_ = loop.Run(runCtx)
			}()

			if tt.loopFirst {
				cancelRun()
				<-loopDone
			} else {
				cancel()
			}

			var out bytes.Buffer
			done := make(chan error, 1)
			go func() { done <- saveOnExit(ctx, runCtx, loop, &out) }()
			select {
			case err := <-done:
				if err != nil {
					t.Fatalf("saveOnExit: %v", err)
				}
			case <-time.After(2 * time.Second):
				t.Fatal("saveOnExit did not return")
			}
			cancelRun()
			<-loopDone

			if saved := strings.Contains(out.String(), "saved "+cfg.Presets.Dir); saved != tt.wantSaved {
				t.Errorf("output = %q, want saved = %v", out.String(), tt.wantSaved)
			}
		})
	}
}
