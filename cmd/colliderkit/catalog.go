package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/MrWong99/colliderkit/internal/filter"
)

func catalogCmd(g *globals) *cobra.Command {
	var groupID, rigidbodyID string

	cmd := &cobra.Command{
		Use:   "catalog <scene.yaml>",
		Short: "List the choice lists of a scene",
		Long: `Builds the catalog of a scene and prints the four filter lists as an
editor would display them. --group and --rigidbody narrow the lists the
same way the choosers do.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			h, err := openScene(args[0], g.cfg, nil)
			if err != nil {
				return err
			}
			defer h.close()

			if groupID != "" {
				if err := h.ed.SelectGroup(groupID); err != nil {
					return err
				}
			}
			if rigidbodyID != "" {
				if err := h.ed.SelectRigidbody(rigidbodyID); err != nil {
					return err
				}
			}

			out := cmd.OutOrStdout()
			rbs, cols, autos := h.ed.Catalog().Len()
			fmt.Fprintf(out, "%s: %d rigidbodies, %d colliders, %d auto colliders\n",
				h.scene.Archetype(), rbs, cols, autos)

			r := h.ed.Choices()
			printChoices(out, "Rigidbody Groups", r.Groups, r.GroupValue())
			printChoices(out, "Rigidbodies", r.Rigidbodies, r.RigidbodyValue())
			printChoices(out, "Colliders", r.Colliders, r.State.Collider)
			printChoices(out, "Auto Colliders", r.AutoColliders, r.State.AutoCollider)
			return nil
		},
	}

	cmd.Flags().StringVar(&groupID, "group", "", "select this group before listing")
	cmd.Flags().StringVar(&rigidbodyID, "rigidbody", "", "select this rigidbody before listing")
	return cmd
}

func printChoices(w io.Writer, title string, choices []filter.Choice, selected string) {
	fmt.Fprintf(w, "\n%s (%d)\n", title, len(choices))
	for _, c := range choices {
		mark := " "
		if c.ID == selected {
			mark = "*"
		}
		if c.Label == c.ID {
			fmt.Fprintf(w, " %s %s\n", mark, c.Label)
			continue
		}
		fmt.Fprintf(w, " %s %s\t%s\n", mark, c.Label, c.ID)
	}
}

func findCmd(g *globals) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "find <scene.yaml> <query>",
		Short: "Fuzzy search entity labels",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			h, err := openScene(args[0], g.cfg, nil)
			if err != nil {
				return err
			}
			defer h.close()

			matches := h.ed.Catalog().Find(args[1], limit)
			if len(matches) == 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "no match for %q\n", args[1])
				return nil
			}
			for _, m := range matches {
				fmt.Fprintf(cmd.OutOrStdout(), "%.2f  %-13s %s\t%s\n", m.Score, m.Kind, m.Label, m.ID)
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 10, "maximum number of matches")
	return cmd
}
