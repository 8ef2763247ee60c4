package root

import (
	"fmt"

	"github.com/spf13/cobra"

	"vaultfire/internal/config"
	"vaultfire/internal/ui"
)

func newInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init-config",
		Short: "Write the default config file if none exists",
		RunE: func(cmd *cobra.Command, args []string) error {
			path := configPath
			if path == "" {
				path = config.DefaultPath()
			}
			written, err := config.WriteDefault(path)
			if err != nil {
				return err
			}
			if !written {
				fmt.Fprintln(cmd.OutOrStdout(), ui.Muted.Render("Config already exists at "+path))
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), ui.Good.Render(ui.IconSparkle+" Wrote "+path))
			return nil
		},
	}

	return cmd
}
