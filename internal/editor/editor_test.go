package editor_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/MrWong99/colliderkit/internal/config"
	"github.com/MrWong99/colliderkit/internal/editor"
	"github.com/MrWong99/colliderkit/internal/group"
	"github.com/MrWong99/colliderkit/internal/model"
	"github.com/MrWong99/colliderkit/internal/observe"
	"github.com/MrWong99/colliderkit/pkg/render"
	"github.com/MrWong99/colliderkit/pkg/render/memrender"
	"github.com/MrWong99/colliderkit/pkg/scene"
	"github.com/MrWong99/colliderkit/pkg/scene/memscene"
	"github.com/MrWong99/colliderkit/pkg/ui"
	"github.com/MrWong99/colliderkit/pkg/ui/memui"
)

type fixedPalette struct{}

func (fixedPalette) Next() render.Color { return render.Color{R: 1, G: 1, A: 1} }

var fixedNow = time.Unix(1700000000, 0)

type session struct {
	ed    *editor.Editor
	host  *memui.Host
	rf    *memrender.Factory
	head  *memscene.Sphere
	thigh *memscene.Capsule
	neck  *memscene.Rigidbody
}

// person builds:
//
//	head    rigidbody, sphere
//	neck    rigidbody, sphere
//	lThigh  rigidbody, capsule
//	AutoColliderlShin auto-collider
func person(t *testing.T, cfg *config.Config, mutate ...func(*editor.Deps)) *session {
	t.Helper()
	s := memscene.New(group.PersonArchetype)
	root := s.Root()

	sess := &session{host: memui.New(), rf: memrender.New()}

	head := root.AddChild("head")
	head.AddRigidbody(false, true)
	sess.head = head.AddSphere(0.1, scene.Vec3{})

	neck := root.AddChild("neck")
	sess.neck = neck.AddRigidbody(false, true)
	neck.AddSphere(0.05, scene.Vec3{})

	thigh := root.AddChild("lThigh")
	thigh.AddRigidbody(false, true)
	sess.thigh = thigh.AddCapsule(0.06, 0.4, scene.AxisY, scene.Vec3{})

	root.AddChild("AutoColliderlShin").AddAutoCollider(memscene.AutoSpec{
		BaseLength: 0.3,
		BaseRadius: 0.05,
		Params: scene.AutoParams{
			CollisionEnabled:     true,
			ColliderLength:       0.3,
			ColliderRadius:       0.05,
			AutoRadiusMultiplier: 1,
		},
	})

	deps := editor.Deps{
		UI:      sess.host,
		Render:  sess.rf,
		Palette: fixedPalette{},
		Now:     func() time.Time { return fixedNow },
	}
	for _, m := range mutate {
		m(&deps)
	}
	ed, err := editor.New(s, deps, cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { _ = ed.Destroy() })
	sess.ed = ed
	return sess
}

func (s *session) rigidbodyID(t *testing.T, name string) string {
	t.Helper()
	for _, rb := range s.ed.Catalog().Rigidbodies() {
		if rb.Name() == name {
			return rb.ID()
		}
	}
	t.Fatalf("rigidbody %q not found", name)
	return ""
}

func TestNew_InitialGroupAndControls(t *testing.T) {
	t.Parallel()
	s := person(t, nil)

	groups := s.host.Chooser(editor.LabelGroups)
	if groups == nil || groups.Value != group.DefaultInitialID {
		t.Fatalf("group chooser = %+v", groups)
	}
	if got := s.host.Chooser(editor.LabelRigidbodies).Labels; !slices.Equal(got, []string{"All", "head", "neck"}) {
		t.Errorf("rigidbody labels = %v", got)
	}
	cols := s.host.Chooser(editor.LabelColliders)
	if !slices.Equal(cols.Labels, []string{"head", "neck"}) {
		t.Errorf("collider labels = %v", cols.Labels)
	}
	if cols.Value != s.ed.State().Collider || cols.Value == "" {
		t.Errorf("collider value = %q, state = %q", cols.Value, s.ed.State().Collider)
	}
	if got := s.host.Chooser(editor.LabelAutoColliders).Labels; !slices.Equal(got, []string{"[au] lShin"}) {
		t.Errorf("auto labels = %v", got)
	}

	live := s.host.LiveLabels()
	for _, label := range []string{
		editor.LabelShowPreviews, editor.LabelXRayPreviews, editor.LabelPreviewOpacity,
		editor.LabelSelectedPreviewOpacity, editor.LabelResetAll,
		editor.LabelGroups, editor.LabelRigidbodies, editor.LabelColliders, editor.LabelAutoColliders,
		"Radius",
	} {
		if !slices.Contains(live, label) {
			t.Errorf("missing control %q in %v", label, live)
		}
	}
	if slices.Contains(live, editor.LabelLoadPreset) {
		t.Error("load button created without a picker")
	}
}

func TestNew_UnknownInitialGroupFallsBackToAll(t *testing.T) {
	t.Parallel()
	cfg := config.Default()
	cfg.Editor.InitialGroup = "Tail"
	s := person(t, cfg)

	if got := s.ed.Choices().GroupValue(); got != group.AllID {
		t.Errorf("group = %q, want All", got)
	}
	if got := len(s.ed.Choices().Colliders); got != 3 {
		t.Errorf("colliders = %d, want 3", got)
	}
}

func TestNew_CustomGroups(t *testing.T) {
	t.Parallel()
	cfg := config.Default()
	cfg.Editor.InitialGroup = "Upper"
	cfg.Editor.Groups = []config.GroupConfig{{ID: "Upper", Pattern: `^(head|neck)$`}}
	s := person(t, cfg)

	if got := s.host.Chooser(editor.LabelGroups).IDs; !slices.Equal(got, []string{"All", "Upper"}) {
		t.Errorf("groups = %v", got)
	}
	if got := s.host.Chooser(editor.LabelGroups).Value; got != "Upper" {
		t.Errorf("group value = %q", got)
	}

	_ = s.ed.SelectGroup(group.AllID)
	if s.ed.State().Group != "" || len(s.ed.Choices().Colliders) != 3 {
		t.Errorf("All without a real All group: state=%+v", s.ed.State())
	}
}

func TestNew_Errors(t *testing.T) {
	t.Parallel()
	scn := memscene.New(group.PersonArchetype)

	if _, err := editor.New(scn, editor.Deps{}, nil); err == nil {
		t.Error("want error without hosts")
	}

	cfg := config.Default()
	cfg.Editor.Groups = []config.GroupConfig{{ID: "bad", Pattern: "("}}
	host := memui.New()
	if _, err := editor.New(scn, editor.Deps{UI: host, Render: memrender.New()}, cfg); err == nil {
		t.Error("want error for invalid group pattern")
	}
	if host.Live() != 0 {
		t.Errorf("failed New left controls: %v", host.LiveLabels())
	}
}

func TestSelect_ThroughChoosers(t *testing.T) {
	t.Parallel()
	s := person(t, nil)
	neck := s.rigidbodyID(t, "neck")

	s.host.Chooser(editor.LabelRigidbodies).Choose(neck)
	if got := s.ed.State().Rigidbody; got != neck {
		t.Fatalf("rigidbody = %q, want %q", got, neck)
	}
	if got := s.host.Chooser(editor.LabelColliders).Labels; !slices.Equal(got, []string{"neck"}) {
		t.Errorf("collider labels = %v", got)
	}
	if !s.ed.Catalog().Rigidbody(neck).Selected() {
		t.Error("rigidbody not selected")
	}

	s.host.Chooser(editor.LabelRigidbodies).Choose(group.AllID)
	if s.ed.State().Rigidbody != "" || s.ed.Catalog().Rigidbody(neck).Selected() {
		t.Error("All did not clear the rigidbody")
	}

	s.host.Chooser(editor.LabelGroups).Choose("Left leg")
	if got := s.host.Chooser(editor.LabelColliders).Labels; !slices.Equal(got, []string{"lThigh"}) {
		t.Errorf("left leg colliders = %v", got)
	}

	auto := s.ed.Catalog().AutoColliders()[0]
	s.host.Chooser(editor.LabelAutoColliders).Choose(auto.ID())
	if !auto.Selected() || s.ed.State().AutoCollider != auto.ID() {
		t.Error("auto-collider not selected")
	}
}

func TestSelect_SameStateNoChurn(t *testing.T) {
	t.Parallel()
	s := person(t, nil)

	created := s.host.Created()
	refreshes := s.host.Chooser(editor.LabelColliders).Refreshes
	if err := s.ed.SelectCollider(s.ed.State().Collider); err != nil {
		t.Fatal(err)
	}
	if s.host.Created() != created {
		t.Errorf("re-selecting created %d controls", s.host.Created()-created)
	}
	if s.host.Chooser(editor.LabelColliders).Refreshes != refreshes+1 {
		t.Error("lists not refreshed")
	}
}

func TestPreviews(t *testing.T) {
	t.Parallel()
	s := person(t, nil)
	previewable := len(s.ed.Catalog().Previewable())

	s.host.Toggle(editor.LabelShowPreviews).Set(true)
	if got := len(s.rf.Live()); got != previewable {
		t.Fatalf("live previews = %d, want %d", got, previewable)
	}

	s.ed.SetPreviewOpacity(0.5)
	if got := s.host.Slider(editor.LabelPreviewOpacity).Value; got != 0.5 {
		t.Errorf("slider = %v, want 0.5", got)
	}
	neck := s.ed.Catalog().Rigidbody(s.rigidbodyID(t, "neck")).Colliders()[0]
	p := s.rf.For(neck.Primitive().Transform())
	if p == nil {
		t.Fatal("no preview for the neck collider")
	}
	if !mgl32.FloatEqualThreshold(p.Opacity, 0.2, 1e-5) {
		t.Errorf("unselected preview opacity = %v, want 0.2", p.Opacity)
	}

	s.ed.SetXRayPreviews(false)
	if p.XRay || s.host.Toggle(editor.LabelXRayPreviews).Value {
		t.Error("xray still on")
	}

	s.ed.SetShowPreviews(false)
	if got := len(s.rf.Live()); got != 0 {
		t.Errorf("live previews = %d after hide", got)
	}
}

func TestExponentialScale(t *testing.T) {
	t.Parallel()
	tests := []struct{ in, want float32 }{
		{0, 0},
		{0.5, 0.2},
		{1, 1},
	}
	for _, tc := range tests {
		if got := editor.ExponentialScale(tc.in, 0.2, 1); !mgl32.FloatEqualThreshold(got, tc.want, 1e-5) {
			t.Errorf("ExponentialScale(%v) = %v, want %v", tc.in, got, tc.want)
		}
	}
	if a, b := editor.ExponentialScale(0.1, 0.2, 1), editor.ExponentialScale(0.2, 0.2, 1); a >= b {
		t.Errorf("not increasing: %v >= %v", a, b)
	}
}

func TestTick_PushesLiveValues(t *testing.T) {
	t.Parallel()
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = mp.Shutdown(context.Background()) })
	met, err := observe.NewMetrics(mp)
	if err != nil {
		t.Fatal(err)
	}
	s := person(t, nil, func(d *editor.Deps) { d.Metrics = met })

	s.head.SetRadius(0.17)
	s.ed.Tick()
	if got := s.host.Slider("Radius").Value; got != 0.17 {
		t.Errorf("radius slider = %v, want 0.17", got)
	}

	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatal(err)
	}
	var ticks uint64
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name == "colliderkit.tick.duration" {
				for _, dp := range m.Data.(metricdata.Histogram[float64]).DataPoints {
					ticks += dp.Count
				}
			}
		}
	}
	if ticks != 1 {
		t.Errorf("tick samples = %d, want 1", ticks)
	}
}

func TestSaveLoadPreset(t *testing.T) {
	t.Parallel()
	cfg := config.Default()
	cfg.Presets.Dir = t.TempDir()
	s := person(t, cfg)
	ctx := context.Background()

	s.head.SetRadius(0.12)
	path, err := s.ed.SavePreset(ctx, "")
	if err != nil {
		t.Fatalf("SavePreset: %v", err)
	}
	if want := filepath.Join(cfg.Presets.Dir, "1700000000.colliders"); path != want {
		t.Errorf("path = %q, want %q", path, want)
	}

	s.head.SetRadius(0.5)
	s.thigh.SetHeight(0.9)
	rep, err := s.ed.LoadPreset(ctx, path)
	if err != nil {
		t.Fatalf("LoadPreset: %v", err)
	}
	if s.head.Radius() != 0.12 || s.thigh.Height() != 0.4 {
		t.Errorf("radius=%v height=%v", s.head.Radius(), s.thigh.Height())
	}
	if rep.Applied == 0 || rep.Skipped != 0 {
		t.Errorf("report = %v", rep)
	}

	if _, err := s.ed.LoadPreset(ctx, filepath.Join(cfg.Presets.Dir, "missing.colliders")); err == nil {
		t.Error("want error for missing preset")
	}
	// The editor stays usable after a failed load.
	if err := s.ed.SelectGroup(group.AllID); err != nil {
		t.Errorf("SelectGroup after failed load: %v", err)
	}
}

func TestLoadPreset_DecodeFailureNotLoggedAsLoaded(t *testing.T) {
	t.Parallel()
	var logs bytes.Buffer
	s := person(t, nil, func(d *editor.Deps) {
		d.Logger = slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug}))
	})

	var headID string
	for _, c := range s.ed.Catalog().Colliders() {
		if c.Primitive().Name() == "head" {
			headID = c.ID()
		}
	}
	if headID == "" {
		t.Fatal("head collider not found")
	}

	tests := []struct {
		name    string
		content string
	}{
		{"non-numeric string", `{"colliders": {"` + headID + `": {"radius": "abc"}}}`},
		{"wrong type", `{"colliders": {"` + headID + `": {"radius": true}}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logs.Reset()
			path := filepath.Join(t.TempDir(), "bad.colliders")
			if err := os.WriteFile(path, []byte(tt.content), 0o644); err != nil {
				t.Fatal(err)
			}
			if _, err := s.ed.LoadPreset(context.Background(), path); !errors.Is(err, model.ErrInvalidField) {
				t.Fatalf("LoadPreset err = %v, want ErrInvalidField", err)
			}
			if strings.Contains(logs.String(), "preset loaded") {
				t.Errorf("failed load logged as loaded:\n%s", logs.String())
			}
			if s.head.Radius() != 0.1 {
				t.Errorf("radius = %v, want untouched 0.1", s.head.Radius())
			}
		})
	}
}

func TestPresetButtons(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	var suggested, saved string
	s := person(t, nil, func(d *editor.Deps) {
		d.PickSavePath = func(s string) string {
			suggested = s
			saved = filepath.Join(dir, "body")
			return saved
		}
		d.PickLoadPath = func() string { return saved + ".colliders" }
	})

	s.host.Button(editor.LabelSavePreset).Click()
	if filepath.Base(suggested) != "1700000000.colliders" {
		t.Errorf("suggested = %q", suggested)
	}

	s.head.SetRadius(0.3)
	s.host.Button(editor.LabelLoadPreset).Click()
	if got := s.head.Radius(); got != 0.1 {
		t.Errorf("radius = %v, want 0.1", got)
	}
}

func TestResetAll(t *testing.T) {
	t.Parallel()
	s := person(t, nil)
	s.head.SetRadius(0.4)
	s.neck.SetDetectCollisions(false)

	s.host.Button(editor.LabelResetAll).Click()
	if s.head.Radius() != 0.1 || !s.neck.DetectCollisions() {
		t.Errorf("radius=%v detect=%v", s.head.Radius(), s.neck.DetectCollisions())
	}
	if got := s.host.Slider("Radius").Value; got != 0.1 {
		t.Errorf("selected slider = %v after reset", got)
	}
}

func TestSnapshotRestore(t *testing.T) {
	t.Parallel()
	s := person(t, nil)
	s.thigh.SetRadius(0.08)

	snap := s.ed.Snapshot()
	if len(snap.AutoColliders) != 1 || len(snap.Colliders) != 3 {
		t.Errorf("snapshot = %d colliders, %d autos", len(snap.Colliders), len(snap.AutoColliders))
	}

	s.thigh.SetRadius(0.01)
	if _, err := s.ed.Restore(snap); err != nil {
		t.Fatalf("Restore: %v", err)
	}
	if got := s.thigh.Radius(); got != 0.08 {
		t.Errorf("radius = %v, want 0.08", got)
	}
}

func TestApplyConfig(t *testing.T) {
	t.Parallel()
	old := config.Default()
	s := person(t, old)

	next := *old
	next.Preview.Show = true
	next.Preview.SelectedOpacity = 1
	next.Presets.OnlyModified = true
	next.Session.Tick = time.Second

	diff := config.Diff(old, &next)
	if err := s.ed.ApplyConfig(diff, &next); err != nil {
		t.Fatalf("ApplyConfig: %v", err)
	}
	if !s.ed.Preview().Show || len(s.rf.Live()) == 0 {
		t.Error("previews not shown")
	}
	if !s.host.Toggle(editor.LabelShowPreviews).Value {
		t.Error("toggle not updated")
	}
	if !s.ed.Config().Presets.OnlyModified {
		t.Error("preset options not applied")
	}
	if s.ed.Config().Session.Tick != old.Session.Tick {
		t.Error("session settings applied without restart")
	}
	if got := s.ed.Snapshot(); len(got.Colliders) != 3 {
		t.Errorf("snapshot is sparse: %d colliders", len(got.Colliders))
	}
}

func TestDestroy(t *testing.T) {
	t.Parallel()
	s := person(t, nil)
	s.ed.SetShowPreviews(true)

	if err := s.ed.Destroy(); err != nil {
		t.Fatalf("Destroy: %v", err)
	}
	if s.host.Live() != 0 {
		t.Errorf("live controls = %v", s.host.LiveLabels())
	}
	if len(s.rf.Live()) != 0 {
		t.Errorf("live previews = %d", len(s.rf.Live()))
	}
	if err := s.ed.Destroy(); err != nil {
		t.Errorf("second Destroy: %v", err)
	}
	if err := s.ed.SelectGroup(group.AllID); !errors.Is(err, editor.ErrDestroyed) {
		t.Errorf("SelectGroup after Destroy = %v", err)
	}
	s.ed.Tick()
}

// panicHost hands out choosers that panic on SetChoices while armed.
type panicHost struct {
	*memui.Host
	armed *bool
}

type panicChooser struct {
	ui.Chooser
	armed *bool
}

func (c panicChooser) SetChoices(ids, labels []string) {
	if *c.armed {
		panic("list widget gone")
	}
	c.Chooser.SetChoices(ids, labels)
}

func (h panicHost) CreateChooser(label string, onChange func(string)) ui.Chooser {
	return panicChooser{Chooser: h.Host.CreateChooser(label, onChange), armed: h.armed}
}

func TestBoundary_RecoversPanic(t *testing.T) {
	t.Parallel()
	armed := false
	s := person(t, nil, func(d *editor.Deps) {
		d.UI = panicHost{Host: d.UI.(*memui.Host), armed: &armed}
	})

	armed = true
	err := s.ed.SelectGroup("Left leg")
	if !errors.Is(err, editor.ErrPanic) {
		t.Fatalf("err = %v, want ErrPanic", err)
	}

	armed = false
	if err := s.ed.SelectGroup("Left leg"); err != nil {
		t.Fatalf("SelectGroup after recovery: %v", err)
	}
	if got := s.host.Chooser(editor.LabelColliders).Labels; !slices.Equal(got, []string{"lThigh"}) {
		t.Errorf("collider labels = %v", got)
	}
}

func TestUUIDIdentity(t *testing.T) {
	t.Parallel()
	cfg := config.Default()
	cfg.Identity = config.IdentityUUID
	s := person(t, cfg)

	for _, c := range s.ed.Catalog().Colliders() {
		if len(c.ID()) != 36 {
			t.Errorf("id %q is not a uuid", c.ID())
		}
	}
}
