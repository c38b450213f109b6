package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/MrWong99/colliderkit/internal/preset"
	"github.com/MrWong99/colliderkit/pkg/scene/memscene"
)

func saveCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "save <scene.yaml> [preset]",
		Short: "Save the collider values of a scene as a preset",
		Long: `Writes a preset holding the current values of every entity in the scene.
Without a preset path the file is named after the current unix time inside
the configured preset directory.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			h, err := openScene(args[0], g.cfg, nil)
			if err != nil {
				return err
			}
			defer h.close()

			var path string
			if len(args) == 2 {
				path = args[1]
			}
			written, err := h.ed.SavePreset(cmd.Context(), path)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "saved %s\n", written)
			return nil
		},
	}
}

func loadCmd(g *globals) *cobra.Command {
	var writePath string

	cmd := &cobra.Command{
		Use:   "load <scene.yaml> <preset>",
		Short: "Apply a preset to a scene",
		Long: `Merges a preset into the scene. Entities the preset does not name keep
their values; ids the scene does not have are skipped. With --write the
edited scene is saved as YAML.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			h, err := openScene(args[0], g.cfg, nil)
			if err != nil {
				return err
			}
			defer h.close()

			rep, err := h.ed.LoadPreset(cmd.Context(), args[1])
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", args[1], rep)
			if err != nil {
				return err
			}
			if writePath == "" {
				return nil
			}
			// Auto-colliders write their parameters through on tick.
			h.ed.Tick()
			if err := memscene.SaveFile(writePath, h.scene); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", writePath)
			return nil
		},
	}

	cmd.Flags().StringVarP(&writePath, "write", "w", "", "save the edited scene to this YAML file")
	return cmd
}

func presetsCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "presets [dir]",
		Short: "List preset files",
		Long:  `Lists every preset under dir (default: the configured preset directory) with its entity count.`,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := g.cfg.Presets.Dir
			if len(args) == 1 {
				dir = args[0]
			}
			paths, err := preset.List(dir)
			if err != nil {
				return err
			}
			if len(paths) == 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "no presets in %s\n", dir)
				return nil
			}
			entries, err := preset.ReadAll(cmd.Context(), paths)
			if err != nil {
				return err
			}
			for _, e := range entries {
				if e.Err != nil {
					fmt.Fprintf(cmd.OutOrStdout(), "%s\terror: %v\n", e.Path, e.Err)
					continue
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%d colliders, %d rigidbodies, %d auto colliders\n",
					e.Path, len(e.Doc.Colliders), len(e.Doc.Rigidbodies), len(e.Doc.AutoColliders))
			}
			return nil
		},
	}
}
