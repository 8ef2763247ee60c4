package root

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"vaultfire/internal/ui"
)

func newSignalCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "signal <user>",
		Short: "Show the user's last reward signal",
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

			sig, err := a.svc.LastSignal(ctx, args[0])
			if err != nil {
				return err
			}
			if sig == nil {
				return fmt.Errorf("no reward signal for %s", args[0])
			}
			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(sig)
			}

			fmt.Fprintln(out, ui.Heading(ui.IconSignal, "Reward signal"))
			fmt.Fprintln(out, ui.LabelValue("Emitted", humanize.Time(sig.Timestamp)))
			fmt.Fprintln(out, ui.LabelValue("Multiplier", fmt.Sprintf("x%.2f", sig.RewardMultiplier)))
			fmt.Fprintln(out, ui.LabelValue("Yield", fmt.Sprintf("%.2f", sig.Yield)))
			fmt.Fprintln(out, ui.LabelValue("Streak", sig.Streak))
			if len(sig.TopTraits) > 0 {
				fmt.Fprintln(out, ui.LabelValue("Traits", strings.Join(sig.TopTraits, ", ")))
			}
			if sig.Growth != "" {
				fmt.Fprintln(out, ui.LabelValue("Growth", sig.Growth))
			}
			if len(sig.TraitStreaks) > 0 {
				keys := make([]string, 0, len(sig.TraitStreaks))
				for k := range sig.TraitStreaks {
					keys = append(keys, k)
				}
				sort.Strings(keys)
				parts := make([]string, 0, len(keys))
				for _, k := range keys {
					parts = append(parts, fmt.Sprintf("%s=%d", k, sig.TraitStreaks[k]))
				}
				fmt.Fprintln(out, ui.LabelValue("Trait streaks", strings.Join(parts, " ")))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the raw signal as JSON")

	return cmd
}
