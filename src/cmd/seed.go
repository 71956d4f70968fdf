package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	httpdto "dtokit/src/app/http/dto"
	"dtokit/src/core/domain"
	"dtokit/src/core/dto"
	"dtokit/src/core/ports"
	"dtokit/src/core/usecase"
	"dtokit/src/infra/fixtures"
	"dtokit/src/infra/logger"
	"dtokit/src/infra/repo"
)

func newSeedCommand(a *app) *cobra.Command {
	var (
		file   string
		dryRun bool
	)
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load jokes from a YAML file",
		Long: "Load jokes from a YAML file. Every record is checked like a POST /v1/jokes\n" +
			"body; nothing is stored unless all records are valid.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			records, err := fixtures.LoadFile(file)
			if err != nil {
				return err
			}
			inputs, err := httpdto.CreateJokeInputs(records)
			if err != nil {
				return describeSeedError(err)
			}

			var store ports.JokeRepository
			if dryRun {
				store = repo.NewMemoryRepository()
			} else {
				s, closeStore, err := a.openStore(cmd.Context())
				if err != nil {
					return err
				}
				defer closeStore()
				store = s
			}

			svc := usecase.NewJokeService(store, logger.WithComponent(a.log, "seed"))
			stored := 0
			for start := 0; start < len(inputs); start += domain.MaxBatchSize {
				end := min(start+domain.MaxBatchSize, len(inputs))
				jokes, err := svc.CreateMany(cmd.Context(), inputs[start:end])
				if err != nil {
					return fmt.Errorf("records %d-%d: %w", start, end-1, err)
				}
				stored += len(jokes)
			}

			verb := "seeded"
			if dryRun {
				verb = "validated"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %d jokes from %s\n", verb, stored, file)
			return nil
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "YAML file with joke records")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "check the records without storing them")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

// describeSeedError lists the failing fields of the first invalid record.
func describeSeedError(err error) error {
	var item *dto.ItemError
	if !errors.As(err, &item) {
		return err
	}
	msgs := dto.FieldMessages(err)
	if len(msgs) == 0 {
		return err
	}
	return fmt.Errorf("record %d is invalid: %v", item.Index, msgs)
}
