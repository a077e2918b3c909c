package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/m-mizutani/fireconf"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/techinsights/pkg/cli/config"
	"github.com/secmon-lab/techinsights/pkg/domain/model"
	"github.com/secmon-lab/techinsights/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

func cmdMigrate() *cli.Command {
	var repoCfg config.Repository
	var dryRun bool

	flags := []cli.Flag{
		&cli.BoolFlag{
			Name:        "dry-run",
			Usage:       "Preview changes without applying",
			Destination: &dryRun,
		},
	}
	flags = append(flags, repoCfg.Flags()...)

	return &cli.Command{
		Name:    "migrate",
		Aliases: []string{"m"},
		Usage:   "Create Firestore indexes or the PostgreSQL schema",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			if err := config.Validate(&repoCfg); err != nil {
				return err
			}

			switch repoCfg.Backend() {
			case config.BackendFirestore:
				return migrateFirestore(ctx, repoCfg.ProjectID(), repoCfg.DatabaseID(), dryRun)
			case config.BackendPostgres:
				return migratePostgres(ctx, &repoCfg, dryRun)
			default:
				logging.Default().Info("Nothing to migrate", "backend", repoCfg.Backend())
				return nil
			}
		},
	}
}

func migrateFirestore(ctx context.Context, projectID, databaseID string, dryRun bool) error {
	logger := logging.Default()
	logger.Info("Migrate configuration",
		"projectID", projectID,
		"databaseID", databaseID,
		"dryRun", dryRun)

	indexConfig := getIndexConfig()

	client, err := fireconf.NewClient(ctx, projectID, databaseID)
	if err != nil {
		return goerr.Wrap(err, "failed to create fireconf client")
	}
	defer func() {
		if err := client.Close(); err != nil {
			logger.Error("failed to close fireconf client", "error", err.Error())
		}
	}()

	if dryRun {
		logger.Info("Dry run mode - previewing changes")
		plan, err := client.GetMigrationPlan(ctx, indexConfig)
		if err != nil {
			return goerr.Wrap(err, "failed to create migration plan")
		}

		if len(plan.Steps) == 0 {
			logger.Info("No changes required")
			return nil
		}

		for _, step := range plan.Steps {
			logger.Info("Migration step",
				"collection", step.Collection,
				"operation", step.Operation,
				"description", step.Description,
				"destructive", step.Destructive)
		}
		return nil
	}

	logger.Info("Applying migrations")
	if err := client.Migrate(ctx, indexConfig); err != nil {
		return goerr.Wrap(err, "failed to apply migrations")
	}
	logger.Info("Migrations applied successfully")
	return nil
}

func migratePostgres(ctx context.Context, repoCfg *config.Repository, dryRun bool) error {
	pg, err := repoCfg.ConfigurePostgres(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if err := pg.Close(); err != nil {
			logging.Default().Error("failed to close postgres", "error", err.Error())
		}
	}()

	if dryRun {
		for _, stmt := range pg.SchemaStatements() {
			fmt.Fprintf(os.Stdout, "%s;\n", stmt)
		}
		return nil
	}

	if err := pg.Migrate(ctx); err != nil {
		return goerr.Wrap(err, "failed to migrate postgres schema")
	}
	logging.Default().Info("PostgreSQL schema is up to date")
	return nil
}

// getIndexConfig returns the Firestore index configuration
func getIndexConfig() *fireconf.Config {
	return &fireconf.Config{
		Collections: []fireconf.Collection{
			{
				Name: "tech_insights",
				Indexes: []fireconf.Index{
					// Vector search index for FindNearest on Embedding
					{
						Fields: []fireconf.IndexField{
							{
								Path: "Embedding",
								Vector: &fireconf.VectorConfig{
									Dimension: model.EmbeddingDimension,
								},
							},
						},
					},
				},
			},
		},
	}
}
