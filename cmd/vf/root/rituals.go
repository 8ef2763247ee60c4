package root

import (
	"errors"
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"vaultfire/internal/engine"
	"vaultfire/internal/ui"
)

func newRitualsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rituals <user>",
		Short: "List rituals and which ones the user has unlocked",
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

			u, err := a.svc.User(ctx, args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, ui.Heading(ui.IconScroll, "Rituals"))
			for _, r := range engine.Rituals(u) {
				name := r.Name
				if r.Unlocked {
					name = ui.Good.Render(name)
				} else {
					name = ui.Muted.Render(name)
				}
				fmt.Fprintf(out, "%s %s %s\n", ui.RitualIcon(r.Icon, r.Unlocked), name, ui.Muted.Render("("+r.Description+")"))
			}
			return nil
		},
	}

	return cmd
}

func newChainCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "chain",
		Short: "Evaluate chain rituals over recent public reflections",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, cleanup, err := openApp(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			participants, err := a.svc.EvaluateChainRituals(ctx, nowUTC())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(participants) == 0 {
				fmt.Fprintln(out, ui.Muted.Render("No chain ritual right now."))
				return nil
			}
			fmt.Fprintf(out, "%s %s\n", ui.Gold.Render(ui.IconChain+" Chain ritual:"), strings.Join(participants, ", "))
			fmt.Fprintln(out, ui.Muted.Render(fmt.Sprintf("+%d XP each", engine.ChainRitualXP)))

			log, err := a.svc.RitualLog(ctx)
			if err != nil {
				return err
			}
			if n := len(log); n > 0 {
				fmt.Fprintln(out, ui.Muted.Render("Logged "+humanize.Time(log[n-1].Timestamp)))
			}
			return nil
		},
	}

	return cmd
}
