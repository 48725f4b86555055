package commands

import (
	"github.com/spf13/cobra"
)

func newSweepCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "sweep",
		Short: "Execute due scheduled payments once and exit",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			a, err := newApp(ctx)
			if err != nil {
				return err
			}
			defer a.close()

			attempted, err := a.sweep.Run(ctx)
			if err != nil {
				return err
			}

			a.logger.Info("sweep complete", "attempted", attempted)
			return nil
		},
	}
}
