package root

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"vaultfire/internal/engine"
	"vaultfire/internal/ui"
)

func newCertificateCmd() *cobra.Command {
	var anchors engine.Anchors
	var outDir string

	cmd := &cobra.Command{
		Use:   "certificate <user>",
		Short: "Export a belief certificate for a user",
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

			cert, err := a.svc.GenerateCertificate(ctx, args[0], anchors, nowUTC())
			if err != nil {
				return err
			}
			dir := outDir
			if dir == "" {
				dir = a.cfg.Export.Dir
			}
			path, err := engine.ExportCertificate(dir, cert)
			if err != nil {
				return err
			}
			a.log.Info("certificate_exported", "user", cert.User, "id", cert.ID, "path", path)

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, ui.Good.Render(ui.IconScroll+" Certificate "+cert.ID))
			fmt.Fprintln(out, ui.LabelValue("Integrity", fmt.Sprintf("%d (%s)", cert.IntegrityScore, cert.IntegrityLevel)))
			fmt.Fprintln(out, ui.LabelValue("Signal", cert.RewardSignal))
			fmt.Fprintln(out, ui.LabelValue("Saved", path))
			return nil
		},
	}

	cmd.Flags().StringVar(&anchors.ENS, "ens", "", "ENS name (required)")
	cmd.Flags().StringVar(&anchors.CBID, "cb-id", "", "Coinbase ID (required)")
	cmd.Flags().StringVar(&anchors.BiometricHash, "biometric", "", "Biometric hash")
	cmd.Flags().StringVar(&outDir, "out", "", "Output directory (default export.dir)")
	_ = cmd.MarkFlagRequired("ens")
	_ = cmd.MarkFlagRequired("cb-id")

	return cmd
}
