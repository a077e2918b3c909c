package config

import (
	"context"
	"log/slog"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/techinsights/pkg/domain/interfaces"
	"github.com/secmon-lab/techinsights/pkg/repository/firestore"
	"github.com/secmon-lab/techinsights/pkg/repository/memory"
	"github.com/secmon-lab/techinsights/pkg/repository/postgres"
	"github.com/secmon-lab/techinsights/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

// Repository backends
const (
	BackendMemory    = "memory"
	BackendFirestore = "firestore"
	BackendPostgres  = "postgres"
)

// Repository holds CLI flags for repository backend configuration
type Repository struct {
	backend     string
	projectID   string
	databaseID  string
	postgresDSN string
	tableName   string
}

// Flags returns CLI flags for repository configuration
func (r *Repository) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "repository-backend",
			Usage:       "Repository backend type [firestore|postgres|memory]",
			Category:    "Repository",
			Value:       BackendFirestore,
			Sources:     cli.EnvVars("TECHINSIGHTS_REPOSITORY_BACKEND"),
			Destination: &r.backend,
		},
		&cli.StringFlag{
			Name:        "firestore-project-id",
			Usage:       "Firestore Project ID (required when using firestore backend)",
			Category:    "Repository",
			Sources:     cli.EnvVars("TECHINSIGHTS_FIRESTORE_PROJECT_ID"),
			Destination: &r.projectID,
		},
		&cli.StringFlag{
			Name:        "firestore-database-id",
			Usage:       "Firestore Database ID",
			Category:    "Repository",
			Sources:     cli.EnvVars("TECHINSIGHTS_FIRESTORE_DATABASE_ID"),
			Destination: &r.databaseID,
		},
		&cli.StringFlag{
			Name:        "postgres-dsn",
			Usage:       "PostgreSQL connection string with pgvector (required when using postgres backend)",
			Category:    "Repository",
			Sources:     cli.EnvVars("TECHINSIGHTS_POSTGRES_DSN"),
			Destination: &r.postgresDSN,
		},
		&cli.StringFlag{
			Name:        "postgres-table",
			Usage:       "PostgreSQL table name",
			Category:    "Repository",
			Value:       "tech_insights",
			Sources:     cli.EnvVars("TECHINSIGHTS_POSTGRES_TABLE"),
			Destination: &r.tableName,
		},
	}
}

func (r *Repository) LogAttrs() []slog.Attr {
	return []slog.Attr{
		slog.String("backend", r.backend),
		slog.String("firestore_project_id", r.projectID),
		slog.String("firestore_database_id", r.databaseID),
		slog.Int("postgres_dsn.len", len(r.postgresDSN)),
		slog.String("postgres_table", r.tableName),
	}
}

// Backend returns the configured backend type
func (r *Repository) Backend() string {
	return r.backend
}

// ProjectID returns the Firestore project ID
func (r *Repository) ProjectID() string {
	return r.projectID
}

// DatabaseID returns the Firestore database ID
func (r *Repository) DatabaseID() string {
	return r.databaseID
}

// Missing implements Requirement
func (r *Repository) Missing() []string {
	switch r.backend {
	case BackendFirestore:
		if r.projectID == "" {
			return []string{"firestore-project-id"}
		}
	case BackendPostgres:
		if r.postgresDSN == "" {
			return []string{"postgres-dsn"}
		}
	case BackendMemory:
	default:
		return []string{"repository-backend"}
	}
	return nil
}

// Configure initializes and returns a repository based on the configured backend.
// The caller is responsible for calling Close() on the returned repository.
func (r *Repository) Configure(ctx context.Context) (interfaces.Repository, error) {
	switch r.backend {
	case BackendFirestore:
		if r.projectID == "" {
			return nil, goerr.Wrap(ErrConfiguration, "firestore-project-id is required when using firestore backend")
		}
		repo, err := firestore.New(ctx, r.projectID, r.databaseID)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to initialize firestore repository")
		}
		logging.Default().Info("Using Firestore repository",
			"project_id", r.projectID,
			"database_id", r.databaseID,
		)
		return repo, nil

	case BackendPostgres:
		pg, err := r.configurePostgres(ctx)
		if err != nil {
			return nil, err
		}
		logging.Default().Info("Using PostgreSQL repository", "table", r.tableName)
		return pg, nil

	case BackendMemory:
		logging.Default().Info("Using in-memory repository (development mode)")
		return memory.New(), nil

	default:
		return nil, goerr.Wrap(ErrConfiguration, "invalid repository backend", goerr.V("backend", r.backend))
	}
}

// ConfigurePostgres opens the PostgreSQL backend directly, for schema migration
func (r *Repository) ConfigurePostgres(ctx context.Context) (*postgres.Postgres, error) {
	return r.configurePostgres(ctx)
}

func (r *Repository) configurePostgres(ctx context.Context) (*postgres.Postgres, error) {
	if r.postgresDSN == "" {
		return nil, goerr.Wrap(ErrConfiguration, "postgres-dsn is required when using postgres backend")
	}

	var opts []postgres.Option
	if r.tableName != "" {
		opts = append(opts, postgres.WithTableName(r.tableName))
	}

	pg, err := postgres.New(ctx, r.postgresDSN, opts...)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to initialize postgres repository")
	}
	return pg, nil
}
