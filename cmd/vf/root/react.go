package root

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"vaultfire/internal/ui"
)

func newReactCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "react <timestamp> <emoji>",
		Short: "React to a reflection by its timestamp",
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 2 {
				return errors.New("timestamp and emoji are required")
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

			count, err := a.svc.AddReaction(ctx, args[0], args[1])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", args[1], ui.Muted.Render(fmt.Sprintf("x%d on %s", count, args[0])))
			return nil
		},
	}

	return cmd
}
