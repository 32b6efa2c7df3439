package cli

import (
	"context"
	"fmt"

	"github.com/samber/lo"
	"github.com/urfave/cli/v3"

	"github.com/m-mizutani/trek/pkg/model"
)

const historyTimeFormat = "02-01-2006 15:04:05"

func historyCommand() *cli.Command {
	var (
		cfg        config
		user       string
		limit      int64
		recordType string
	)

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "user",
			Aliases:     []string{"u"},
			Usage:       "Account email whose history to show",
			Sources:     cli.EnvVars("TREK_USER"),
			Required:    true,
			Destination: &user,
		},
		&cli.IntFlag{
			Name:        "limit",
			Aliases:     []string{"n"},
			Usage:       "Maximum number of entries to show",
			Value:       5,
			Destination: &limit,
		},
		&cli.StringFlag{
			Name:        "type",
			Aliases:     []string{"t"},
			Usage:       "Only show records of this type (llm or chat)",
			Destination: &recordType,
		},
	}
	flags = append(flags, globalFlags(&cfg)...)

	return &cli.Command{
		Name:  "history",
		Usage: "Show recent generation history",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			ctx = cfg.loggerContext(ctx)

			repo, err := cfg.newRepository(ctx)
			if err != nil {
				return err
			}
			defer repo.Close()

			records, err := repo.ListRecords(ctx, user, int(limit))
			if err != nil {
				return err
			}

			if recordType != "" {
				records = lo.Filter(records, func(record *model.HistoryRecord, _ int) bool {
					return record.Type == model.RecordType(recordType)
				})
			}

			if len(records) == 0 {
				fmt.Fprintf(c.Root().Writer, "No history found\n")
				return nil
			}

			for _, record := range records {
				fmt.Fprintf(c.Root().Writer, "[%s] %s (%s)\n%s\n\n",
					record.Timestamp.Format(historyTimeFormat),
					record.ID, record.Type, record.Response)
			}

			return nil
		},
	}
}
