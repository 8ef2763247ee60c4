package root

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"vaultfire/internal/engine"
	"vaultfire/internal/ui"
)

func newReflectCmd() *cobra.Command {
	var public bool
	var color string
	var at string

	cmd := &cobra.Command{
		Use:   "reflect <user> <text...>",
		Short: "Submit a reflection and collect XP",
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) < 2 {
				return errors.New("user and text are required")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			now := time.Now()
			if at != "" {
				parsed, err := time.Parse(time.RFC3339, at)
				if err != nil {
					return fmt.Errorf("--at: %w", err)
				}
				now = parsed
			}

			a, cleanup, err := openApp(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			sub, err := a.svc.Submit(ctx, engine.ReflectionInput{
				User:   args[0],
				Text:   strings.Join(args[1:], " "),
				Public: public,
				Color:  color,
				Now:    now,
			})
			if err != nil {
				return err
			}
			printSubmission(cmd, sub)
			return nil
		},
	}

	cmd.Flags().BoolVar(&public, "public", false, "Share the reflection publicly")
	cmd.Flags().StringVar(&color, "color", "", "Display color for the reflection")
	cmd.Flags().StringVar(&at, "at", "", "Submission time (RFC3339), defaults to now")

	return cmd
}

func printSubmission(cmd *cobra.Command, sub *engine.Submission) {
	out := cmd.OutOrStdout()
	res := sub.Reflection

	fmt.Fprintf(out, "%s %s\n",
		ui.Good.Render(fmt.Sprintf("%s +%d XP", ui.IconFire, res.XPGained)),
		ui.Muted.Render(fmt.Sprintf("(base %d, keyword %d, streak %d)", res.BaseGain, res.KeywordGain, res.StreakBonus)))
	if res.Backdated {
		fmt.Fprintln(out, ui.Warn.Render(ui.IconWarn+" Backdated reflection: streak unchanged"))
	}
	fmt.Fprintln(out, ui.LabelValue("Streak", fmt.Sprintf("%d day(s) (%s)", res.Streak, res.Step)))

	rank := fmt.Sprintf("%s %s (%d XP)", res.RankAfter.Badge, res.RankAfter.Label, res.TotalXP)
	if res.RankUp {
		rank += fmt.Sprintf(" %s %s → %s", ui.BadgeRankUp, res.RankBefore.Label, res.RankAfter.Label)
	}
	fmt.Fprintln(out, ui.LabelValue("Rank", rank))
	fmt.Fprintln(out, ui.LabelValue("Sentiment", ui.SentimentText(string(res.Analysis.Sentiment))))
	if len(res.Analysis.Traits) > 0 {
		fmt.Fprintln(out, ui.LabelValue("Traits", strings.Join(res.Analysis.Traits, ", ")))
	}
	for _, b := range res.NewBadges {
		fmt.Fprintln(out, ui.Gold.Render(ui.IconTrophy+" Badge earned: "+b))
	}
	for _, r := range sub.Unlock.Unlocked {
		fmt.Fprintln(out, ui.Gold.Render(ui.IconSparkle+" Ritual unlocked: "+r))
	}
	if sub.Unlock.VaultRevealed {
		fmt.Fprintln(out, ui.Gold.Render(ui.IconVault+" The vault is revealed"))
	}
	if len(sub.Chain) > 0 {
		fmt.Fprintln(out, ui.Gold.Render(ui.IconChain+" Chain ritual: "+strings.Join(sub.Chain, ", ")))
	}
	fmt.Fprintln(out, ui.LabelValue("Signal", formatSignal(res.Signal.RewardMultiplier, res.Signal.Yield, res.Signal.Growth)))
}

func formatSignal(multiplier, yield float64, growth string) string {
	s := fmt.Sprintf("x%.2f yield %.2f", multiplier, yield)
	if growth != "" {
		s += " (" + growth + ")"
	}
	return s
}
