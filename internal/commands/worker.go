package commands

import (
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
)

func newWorkerCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "worker",
		Short: "Run the scheduled-payment sweep on an interval until interrupted",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			a, err := newApp(ctx)
			if err != nil {
				return err
			}
			defer a.close()

			a.logger.Info("sweep worker started", "interval", a.cfg.Sweep.Interval)

			ticker := time.NewTicker(a.cfg.Sweep.Interval)
			defer ticker.Stop()

			quit := make(chan os.Signal, 1)
			signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

			for {
				select {
				case <-ticker.C:
					attempted, err := a.sweep.Run(ctx)
					if err != nil {
						a.logger.Error("sweep run failed", "error", err)
						continue
					}
					if attempted > 0 {
						a.logger.Info("sweep complete", "attempted", attempted)
					}
				case <-quit:
					a.logger.Info("sweep worker stopping")
					return nil
				case <-ctx.Done():
					return ctx.Err()
				}
			}
		},
	}
}
