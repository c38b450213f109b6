package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/MrWong99/colliderkit/internal/config"
	"github.com/MrWong99/colliderkit/internal/editor"
	"github.com/MrWong99/colliderkit/internal/filter"
	"github.com/MrWong99/colliderkit/internal/health"
	"github.com/MrWong99/colliderkit/internal/observe"
)

type sessionFlags struct {
	duration   time.Duration
	saveOnExit bool
	preset     string
}

func sessionCmd(g *globals) *cobra.Command {
	f := &sessionFlags{}

	cmd := &cobra.Command{
		Use:   "session <scene.yaml>",
		Short: "Run a headless editor session",
		Long: `Runs the editor loop over a scene until interrupted. Metrics are served
on session.metrics_addr. When started with --config, the file is watched
and preview, preset and log level changes apply without a restart.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSession(cmd.Context(), cmd, g, f, args[0])
		},
	}

	cmd.Flags().DurationVar(&f.duration, "duration", 0, "stop after this long (0 runs until interrupted)")
	cmd.Flags().BoolVar(&f.saveOnExit, "save-on-exit", false, "save a preset when the session ends")
	cmd.Flags().StringVar(&f.preset, "preset", "", "load this preset before the loop starts")
	return cmd
}

func runSession(ctx context.Context, cmd *cobra.Command, g *globals, f *sessionFlags, scenePath string) error {
	cfg := g.cfg

	prov, err := observe.NewProvider(ctx, observe.ProviderConfig{
		ServiceName:    appName,
		ServiceVersion: Version,
		Global:         true,
	})
	if err != nil {
		return fmt.Errorf("init telemetry: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := prov.Shutdown(shutdownCtx); err != nil {
			slog.Warn("colliderkit: telemetry shutdown", "err", err)
		}
	}()
	met, err := prov.Metrics()
	if err != nil {
		return fmt.Errorf("init metrics: %w", err)
	}

	h, err := openScene(scenePath, cfg, met)
	if err != nil {
		return err
	}
	if f.preset != "" {
		rep, err := h.ed.LoadPreset(ctx, f.preset)
		if err != nil {
			h.close()
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", f.preset, rep)
	}

	if f.duration > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.duration)
		defer cancel()
	}

	loop := editor.NewLoop(h.ed, cfg.Session.Tick)

	if cfg.Session.MetricsAddr != "" {
		stop, err := serveMetrics(cfg.Session.MetricsAddr, prov.Handler(), met, sessionHealth(loop))
		if err != nil {
			h.close()
			return err
		}
		defer stop()
	}

	var watcher *config.Watcher
	if g.configPath != "" {
		watcher, err = config.NewWatcher(g.configPath, func(c config.Change) {
			if c.Diff.LogLevelChanged {
				logLevel.Set(c.Diff.NewLogLevel.Level())
				slog.Info("colliderkit: log level changed", "level", c.Diff.NewLogLevel)
			}
			err := loop.Do(ctx, func(ed *editor.Editor) {
				if err := ed.ApplyConfig(c.Diff, c.New); err != nil {
					slog.Error("colliderkit: apply config", "err", err)
				}
			})
			if err != nil && !errors.Is(err, editor.ErrLoopStopped) {
				slog.Warn("colliderkit: config change dropped", "err", err)
			}
		})
		if err != nil {
			h.close()
			return err
		}
	}

	// The loop runs on its own context so a preset can still be saved
	// through it after ctx ends and before the editor is destroyed.
	var saveErr error
	runCtx := ctx
	if f.saveOnExit {
		var cancelRun context.CancelFunc
		runCtx, cancelRun = context.WithCancel(context.WithoutCancel(ctx))
		defer cancelRun()
		go func() {
			defer cancelRun()
			saveErr = saveOnExit(ctx, runCtx, loop, cmd.OutOrStdout())
		}()
	}

	slog.Info("colliderkit: session started", "scene", scenePath, "tick", cfg.Session.Tick)
	eg, egCtx := errgroup.WithContext(runCtx)
	eg.Go(func() error { return loop.Run(egCtx) })
	if watcher != nil {
		eg.Go(func() error { return watcher.Run(ctx) })
	}
	if err := eg.Wait(); err != nil {
		return err
	}
	return saveErr
}

// saveOnExit waits for ctx to end and then saves a preset through loop. It
// returns without saving when runCtx ends first, which happens when the loop
// exits on its own.
func saveOnExit(ctx, runCtx context.Context, loop *editor.Loop, out io.Writer) error {
	select {
	case <-ctx.Done():
	case <-runCtx.Done():
		return nil
	}
	var saveErr error
	_ = loop.Do(runCtx, func(ed *editor.Editor) {
		written, err := ed.SavePreset(runCtx, "")
		if err != nil {
			saveErr = err
			return
		}
		fmt.Fprintf(out, "saved %s\n", written)
	})
	return saveErr
}

// sessionStatus is the /status document.
type sessionStatus struct {
	Selection filter.State         `json:"selection"`
	Preview   config.PreviewConfig `json:"preview"`
	Entities  map[string]int       `json:"entities"`
}

// sessionHealth reads the editor through the loop goroutine only.
func sessionHealth(loop *editor.Loop) *health.Handler {
	return health.New(
		[]health.Checker{{
			Name:  "loop",
			Check: func(ctx context.Context) error { return loop.Do(ctx, func(*editor.Editor) {}) },
		}},
		health.WithStatus(func(ctx context.Context) (any, error) {
			var st sessionStatus
			err := loop.Do(ctx, func(ed *editor.Editor) {
				rbs, cols, autos := ed.Catalog().Len()
				st = sessionStatus{
					Selection: ed.State(),
					Preview:   ed.Preview(),
					Entities:  map[string]int{"rigidbodies": rbs, "colliders": cols, "autoColliders": autos},
				}
			})
			return st, err
		}),
	)
}

// serveMetrics serves the Prometheus registry and the session health endpoints on addr
// and returns a stop function that shuts the server down.
func serveMetrics(addr string, metrics http.Handler, met *observe.Metrics, checks *health.Handler) (stop func(), err error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("metrics listen %s: %w", addr, err)
	}

	mux := http.NewServeMux()
	mux.Handle("GET /metrics", metrics)
	checks.Register(mux)

	srv := &http.Server{
		Handler:           observe.Middleware(met)(mux),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("colliderkit: metrics server", "err", err)
		}
	}()
	slog.Info("colliderkit: serving metrics", "addr", ln.Addr().String())

	return func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}, nil
}
