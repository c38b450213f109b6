// Command colliderkit inspects and edits the collision setup of bodies
// described as YAML scenes, and manages collider presets.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/MrWong99/colliderkit/internal/config"
	"github.com/MrWong99/colliderkit/internal/editor"
	"github.com/MrWong99/colliderkit/internal/observe"
	"github.com/MrWong99/colliderkit/pkg/render/memrender"
	"github.com/MrWong99/colliderkit/pkg/scene/memscene"
	"github.com/MrWong99/colliderkit/pkg/ui/memui"
)

const (
	Version = "0.1.0"
	appName = "colliderkit"
)

// logLevel backs the default logger so that config reloads can change the
// level of a running session.
var logLevel = new(slog.LevelVar)

func main() {
	defer func() {
		if r := recover(); r != nil {
			buf := make([]byte, 4096)
			n := runtime.Stack(buf, false)
			_, _ = fmt.Fprintf(os.Stderr, "PANIC: %v\nStack trace:\n%s\n", r, string(buf[:n]))
			os.Exit(2)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err := rootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", appName, err)
		os.Exit(1)
	}
}

// globals are the persistent flags shared by every subcommand.
type globals struct {
	configPath string
	logLevel   string

	cfg *config.Config
}

func rootCmd() *cobra.Command {
	g := &globals{}

	cmd := &cobra.Command{
		Use:           appName,
		Short:         "Collider editor toolkit",
		SilenceUsage:  true,
		SilenceErrors: true,
		Long: `colliderkit discovers the colliders, rigidbodies and auto-colliders of a
body, filters them by anatomical group, and saves or applies sparse
collider presets keyed by stable identity.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return g.init(cmd)
		},
	}

	cmd.PersistentFlags().StringVarP(&g.configPath, "config", "c", "", "config file path (YAML)")
	cmd.PersistentFlags().StringVar(&g.logLevel, "log-level", "", "override the configured log level (debug, info, warn, error)")

	cmd.AddCommand(
		catalogCmd(g),
		findCmd(g),
		saveCmd(g),
		loadCmd(g),
		presetsCmd(g),
		sessionCmd(g),
		&cobra.Command{
			Use:   "version",
			Short: "Print version information",
			Run: func(cmd *cobra.Command, args []string) {
				fmt.Fprintf(cmd.OutOrStdout(), "%s version %s\n", appName, Version)
			},
		},
	)
	return cmd
}

// init loads the configuration and installs the default logger.
func (g *globals) init(cmd *cobra.Command) error {
	cfg := config.Default()
	if g.configPath != "" {
		loaded, err := config.Load(g.configPath)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				return fmt.Errorf("config file %q not found", g.configPath)
			}
			return err
		}
		cfg = loaded
	}
	if g.logLevel != "" {
		lvl := config.LogLevel(g.logLevel)
		if !lvl.IsValid() {
			return fmt.Errorf("invalid --log-level %q; valid values: debug, info, warn, error", g.logLevel)
		}
		cfg.LogLevel = lvl
	}
	g.cfg = cfg

	slog.SetDefault(newLogger(cfg.LogLevel))
	slog.Debug("colliderkit: config loaded", "path", g.configPath, "log_level", cfg.LogLevel, "command", cmd.Name())
	return nil
}

// newLogger returns a text logger on stderr whose level follows logLevel.
func newLogger(level config.LogLevel) *slog.Logger {
	logLevel.Set(level.Level())
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))
}

// headless is an editor over a YAML scene with in-memory hosts.
type headless struct {
	scene *memscene.Scene
	ui    *memui.Host
	ed    *editor.Editor
}

func openScene(path string, cfg *config.Config, met *observe.Metrics) (*headless, error) {
	scn, err := memscene.LoadFile(path)
	if err != nil {
		return nil, err
	}
	h := &headless{scene: scn, ui: memui.New()}
	h.ed, err = editor.New(scn, editor.Deps{
		UI:      h.ui,
		Render:  memrender.New(),
		Metrics: met,
	}, cfg)
	if err != nil {
		return nil, err
	}
	if issues := h.ed.Catalog().Issues(); issues != nil {
		slog.Warn("colliderkit: some entities were skipped", "err", issues)
	}
	return h, nil
}

func (h *headless) close() { _ = h.ed.Destroy() }
