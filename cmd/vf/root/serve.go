package root

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"vaultfire/internal/dashboard"
	"vaultfire/internal/scheduler"
	"vaultfire/internal/ui"
)

func newServeCmd() *cobra.Command {
	var addr string
	var noScheduler bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the dashboard and the chain-ritual scheduler",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			a, cleanup, err := openApp(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			if addr != "" {
				a.cfg.Dashboard.Addr = addr
			}
			srv := dashboard.New(dashboard.Config{
				Addr:  a.cfg.Dashboard.Addr,
				RPS:   a.cfg.Dashboard.RateLimit.RPS,
				Burst: a.cfg.Dashboard.RateLimit.Burst,
			}, a.svc, a.metrics, a.log)

			ctx, cancel := context.WithCancel(ctx)
			defer cancel()

			schedDone := make(chan error, 1)
			if noScheduler {
				schedDone <- nil
			} else {
				sched, err := scheduler.New(a.cfg.Chain.Cron, a.svc, a.log)
				if err != nil {
					return err
				}
				go func() { schedDone <- sched.Run(ctx) }()
			}

			fmt.Fprintln(cmd.OutOrStdout(), ui.Heading(ui.IconFire, "Vaultfire dashboard on http://"+a.cfg.Dashboard.Addr))
			srvErr := srv.Start(ctx)
			cancel()
			if err := <-schedDone; err != nil && !errors.Is(err, context.Canceled) {
				return fmt.Errorf("scheduler: %w", err)
			}
			return srvErr
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (default dashboard.addr)")
	cmd.Flags().BoolVar(&noScheduler, "no-scheduler", false, "Do not run chain-ritual evaluation on a schedule")

	return cmd
}
