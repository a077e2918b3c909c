package cli

import (
	"context"
	"os"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
)

func cmdSearch() *cli.Command {
	var p pipeline

	return &cli.Command{
		Name:      "search",
		Aliases:   []string{"q"},
		Usage:     "Search stored insights by meaning",
		ArgsUsage: "<query>",
		Flags:     p.flags(false),
		Action: func(ctx context.Context, c *cli.Command) error {
			query := strings.TrimSpace(strings.Join(c.Args().Slice(), " "))
			if query == "" {
				return goerr.New("query is required")
			}

			uc, cleanup, err := p.build(ctx, false, nil)
			defer cleanup()
			if err != nil {
				return err
			}

			insights, err := uc.Search.Search(ctx, query)
			if err != nil {
				return goerr.Wrap(err, "search failed", goerr.V("query", query))
			}

			printInsights(os.Stdout, query, insights)
			return nil
		},
	}
}
