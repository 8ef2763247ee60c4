package root

import (
	"errors"
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"vaultfire/internal/ui"
)

func newLeaderboardCmd() *cobra.Command {
	var n int

	cmd := &cobra.Command{
		Use:   "leaderboard",
		Short: "Rank users by XP",
		RunE: func(cmd *cobra.Command, args []string) error {
			if n < 0 {
				return errors.New("-n must be non-negative")
			}
			ctx := cmd.Context()
			a, cleanup, err := openApp(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			board, err := a.svc.Leaderboard(ctx, n)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, ui.Heading(ui.IconTrophy, "Leaderboard"))
			if len(board) == 0 {
				fmt.Fprintln(out, ui.Muted.Render("(empty)"))
				return nil
			}
			for _, st := range board {
				fmt.Fprintf(out, "%3d. %-16s %s %s %s\n",
					st.Position, st.User, st.Badge, st.Rank, ui.Muted.Render(humanize.Comma(int64(st.XP))+" XP"))
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&n, "n", "n", 10, "Number of rows (0 for all)")

	return cmd
}
