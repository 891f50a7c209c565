package cmd

import (
	"os/signal"
	"syscall"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

func cmdRun() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Process the configured organization or repositories once",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			rt, err := setup(ctx, cmd.OutOrStdout())
			if err != nil {
				return errors.Wrap(err, "failed to setup run")
			}

			logger.Info("run starting...")
			_, err = rt.Run(ctx)
			return err
		},
	}

	return cmd
}
