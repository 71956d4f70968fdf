// Package cmd holds the dtokit command line: serve runs the HTTP API and
// seed loads YAML fixtures through the same request DTOs the API uses.
package cmd

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"dtokit/src/core/dto"
	"dtokit/src/core/ports"
	"dtokit/src/infra/config"
	"dtokit/src/infra/db"
	"dtokit/src/infra/logger"
	"dtokit/src/infra/repo"
)

type app struct {
	cfg *config.Config
	log *slog.Logger

	logLevel string
}

// NewRootCommand builds the dtokit command tree. Without a subcommand it
// serves the API.
func NewRootCommand() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:           "dtokit",
		Short:         "Jokes API built on validated data transfer objects",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.init(cmd)
		},
	}
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "override APP_LOG_LEVEL")

	serve := newServeCommand(a)
	root.RunE = serve.RunE
	root.AddCommand(serve, newSeedCommand(a))
	return root
}

// Execute runs the root command.
func Execute(ctx context.Context) error {
	return NewRootCommand().ExecuteContext(ctx)
}

func (a *app) init(cmd *cobra.Command) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if a.logLevel != "" {
		cfg.Log.Level = a.logLevel
	}
	a.cfg = cfg
	a.log = logger.NewWithWriter(cfg.Log, cmd.ErrOrStderr())
	dto.SetLogger(a.log)
	return nil
}

// openStore returns the configured joke store and a function releasing it.
func (a *app) openStore(ctx context.Context) (ports.JokeRepository, func(), error) {
	if a.cfg.Database.Driver == config.DriverMemory {
		a.log.Warn("using in-memory storage, data is lost on exit")
		return repo.NewMemoryRepository(), func() {}, nil
	}

	pg, err := db.New(ctx, a.cfg.Database, a.log)
	if err != nil {
		return nil, nil, err
	}
	if a.cfg.Database.AutoMigrate {
		if err := pg.EnsureSchema(ctx); err != nil {
			pg.Close()
			return nil, nil, fmt.Errorf("migrate: %w", err)
		}
	}
	return repo.NewPostgresRepository(pg, a.log), pg.Close, nil
}
