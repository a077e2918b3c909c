package cli

import (
	"context"
	"os"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/techinsights/pkg/utils/metrics"
	"github.com/urfave/cli/v3"
)

func cmdIngest() *cli.Command {
	var p pipeline

	return &cli.Command{
		Name:    "ingest",
		Aliases: []string{"i"},
		Usage:   "Fetch recent articles, store new ones and print a summary",
		Flags:   p.flags(true),
		Action: func(ctx context.Context, c *cli.Command) error {
			uc, cleanup, err := p.build(ctx, true, metrics.New())
			defer cleanup()
			if err != nil {
				return err
			}

			result, err := uc.Ingest.Run(ctx)
			if err != nil {
				return goerr.Wrap(err, "ingestion failed")
			}

			printIngestion(os.Stdout, result)
			return nil
		},
	}
}
