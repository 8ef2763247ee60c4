package root

import (
	"errors"
	"fmt"
	"sort"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"vaultfire/internal/engine"
	"vaultfire/internal/ui"
)

func newStatusCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status <user>",
		Short: "Show a user's rank, streak and badges",
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
			if u == nil {
				return fmt.Errorf("user %s has no reflections yet", args[0])
			}
			out := cmd.OutOrStdout()
			cur, next := engine.RankInfo(u.XP)

			fmt.Fprintln(out, ui.Heading(ui.IconFire, args[0]))
			fmt.Fprintln(out, ui.LabelValue("Rank", cur.Badge+" "+cur.Label))
			fmt.Fprintln(out, ui.LabelValue("XP", humanize.Comma(int64(u.XP))))
			if next != nil {
				fmt.Fprintf(out, "%s %s\n", ui.ProgressBar(engine.ProgressWithinRank(u.XP), 24),
					ui.Muted.Render(fmt.Sprintf("%s XP to %s", humanize.Comma(int64(next.Min-u.XP)), next.Label)))
			} else {
				fmt.Fprintln(out, ui.Gold.Render("Top rank reached"))
			}
			fmt.Fprintln(out, ui.LabelValue("Streak", fmt.Sprintf("%d day(s)", u.Streak)))
			if !u.Timestamp.IsZero() {
				fmt.Fprintln(out, ui.LabelValue("Last active", humanize.Time(u.Timestamp)))
			}
			if u.Title != "" {
				fmt.Fprintln(out, ui.LabelValue("Title", u.Title))
			}
			if u.ChainRituals > 0 {
				fmt.Fprintln(out, ui.LabelValue("Chain rituals", u.ChainRituals))
			}
			if u.VaultRevealed {
				fmt.Fprintln(out, ui.Gold.Render(ui.IconVault+" Vault revealed"))
			}
			fmt.Fprintln(out, "")

			if len(u.Badges) > 0 {
				fmt.Fprintln(out, ui.H2.Render(ui.IconTrophy+" Badges"))
				for _, b := range u.Badges {
					fmt.Fprintf(out, "- %s\n", b)
				}
				fmt.Fprintln(out, "")
			}

			if len(u.TraitStreaks) > 0 {
				fmt.Fprintln(out, ui.H2.Render(ui.IconBolt+" Trait streaks"))
				traits := make([]string, 0, len(u.TraitStreaks))
				for t := range u.TraitStreaks {
					traits = append(traits, t)
				}
				sort.Strings(traits)
				for _, t := range traits {
					fmt.Fprintf(out, "- %s: %d\n", t, u.TraitStreaks[t])
				}
			}
			return nil
		},
	}

	return cmd
}
