package cli

import (
	"context"

	"github.com/secmon-lab/techinsights/pkg/cli/config"
	"github.com/secmon-lab/techinsights/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

// dotEnvFiles are loaded before flags are parsed so that their values reach env sources
var dotEnvFiles = []string{".env"}

func Run(ctx context.Context, args []string, version string) error {
	var loggerCfg config.Logger
	var sentryCfg config.Sentry
	var closers []func()

	if err := config.LoadDotEnv(dotEnvFiles...); err != nil {
		logging.Default().Error("failed to load .env", "error", err)
		return err
	}

	var flags []cli.Flag
	flags = append(flags, loggerCfg.Flags()...)
	flags = append(flags, sentryCfg.Flags()...)

	app := &cli.Command{
		Name:    "techinsights",
		Usage:   "Technology news ingestion and semantic search",
		Version: version,
		Flags:   flags,
		Before: func(ctx context.Context, c *cli.Command) (context.Context, error) {
			f, err := loggerCfg.Configure()
			if err != nil {
				return ctx, err
			}
			closers = append(closers, f)

			flush, err := sentryCfg.Configure(version)
			if err != nil {
				return ctx, err
			}
			closers = append(closers, flush)

			logging.Default().Info("Starting techinsights", "logger", loggerCfg, "sentry", sentryCfg)
			return ctx, nil
		},
		After: func(ctx context.Context, c *cli.Command) error {
			for i := len(closers) - 1; i >= 0; i-- {
				closers[i]()
			}
			return nil
		},
		Commands: []*cli.Command{
			cmdIngest(),
			cmdSearch(),
			cmdServe(),
			cmdMigrate(),
		},
	}

	if err := app.Run(ctx, args); err != nil {
		logging.Default().Error("failed to run app", "error", err)
		return err
	}

	return nil
}
