package cmd

import (
	"github.com/spf13/cobra"

	"dtokit/src/app/server"
)

func newServeCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a.log.Info("starting application",
				"port", a.cfg.Server.Port,
				"log_level", a.cfg.Log.Level,
				"driver", a.cfg.Database.Driver,
			)

			store, closeStore, err := a.openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer closeStore()

			// blocks until ctx ends or a signal arrives
			return server.New(a.cfg, a.log, store).Run(cmd.Context())
		},
	}
}
