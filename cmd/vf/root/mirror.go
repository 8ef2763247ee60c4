package root

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"vaultfire/internal/insight"
	"vaultfire/internal/ui"
)

func newAuditCmd() *cobra.Command {
	var window int

	cmd := &cobra.Command{
		Use:   "audit <user>",
		Short: "Compare recent reflections for drift in traits and integrity",
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 1 {
				return errors.New("user is required")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, cleanup, err := openApp(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			notes, err := a.svc.Audit(ctx, args[0], window)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, ui.Heading(ui.IconMirror, "Self-audit"))
			if len(notes) == 0 {
				fmt.Fprintln(out, ui.Muted.Render("No drift detected."))
				return nil
			}
			for _, n := range notes {
				fmt.Fprintf(out, "- %s\n", n)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&window, "window", insight.DefaultAuditWindow, "Number of recent reflections to compare")

	return cmd
}

func newRecallCmd() *cobra.Command {
	var n int

	cmd := &cobra.Command{
		Use:   "recall <user> <prompt...>",
		Short: "Find past reflections similar to a prompt",
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) < 2 {
				return errors.New("user and prompt are required")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, cleanup, err := openApp(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			matches, err := a.svc.Recall(ctx, args[0], strings.Join(args[1:], " "), n)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, ui.Heading(ui.IconMirror, "Recall"))
			if len(matches) == 0 {
				fmt.Fprintln(out, ui.Muted.Render("Nothing to recall yet."))
				return nil
			}
			for _, m := range matches {
				fmt.Fprintf(out, "%s %s\n", ui.Muted.Render(fmt.Sprintf("[%.2f]", m.Similarity)), m.Echo())
				fmt.Fprintf(out, "  %s  %s\n", ui.LabelValue("xp then", m.XPThen), ui.LabelValue("xp since", fmt.Sprintf("%+d", m.XPDiff)))
				if drift := formatDrift(m.TraitDrift); drift != "" {
					fmt.Fprintf(out, "  %s\n", ui.LabelValue("trait drift", drift))
				}
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&n, "n", "n", 3, "Number of matches")

	return cmd
}

func formatDrift(drift map[string]int) string {
	traits := make([]string, 0, len(drift))
	for t := range drift {
		traits = append(traits, t)
	}
	sort.Strings(traits)
	parts := make([]string, 0, len(traits))
	for _, t := range traits {
		parts = append(parts, fmt.Sprintf("%s %+d", t, drift[t]))
	}
	return strings.Join(parts, ", ")
}
