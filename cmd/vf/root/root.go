package root

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"vaultfire/internal/ui"
)

const Version = "0.1.0"

// configPath is bound to the persistent --config flag.
var configPath string

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "vf",
		Short:         "Vaultfire: reflection journaling with XP, streaks and rituals",
		Long:          "Vaultfire turns short written reflections into XP, daily streaks, ranks, badges and rituals.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.Version = Version
	rootCmd.SetVersionTemplate("{{.Name}} v{{.Version}}\n")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default ~/.vaultfire/config.yaml or $VF_CONFIG)")

	rootCmd.AddCommand(
		newReflectCmd(),
		newStatusCmd(),
		newRitualsCmd(),
		newChainCmd(),
		newLeaderboardCmd(),
		newReactCmd(),
		newSignalCmd(),
		newAuditCmd(),
		newRecallCmd(),
		newCertificateCmd(),
		newSchemaCmd(),
		newBoardCmd(),
		newServeCmd(),
		newInitCmd(),
	)
	return rootCmd
}

func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, ui.Bad.Render(ui.IconError+" "+err.Error()))
		os.Exit(1)
	}
}
