package postgres

import (
	"context"
	"database/sql"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/lib/pq"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/techinsights/pkg/domain/interfaces"
	"github.com/secmon-lab/techinsights/pkg/domain/model"
)

const defaultTableName = "tech_insights"

// Postgres stores insights in a pgvector enabled PostgreSQL database
type Postgres struct {
	db      *sql.DB
	table   string
	insight *insightRepository
}

var _ interfaces.Repository = &Postgres{}

type Option func(*Postgres)

// WithTableName overrides the insight table name. Tests use it to isolate runs.
func WithTableName(name string) Option {
	return func(p *Postgres) {
		p.table = name
	}
}

func New(ctx context.Context, dsn string, opts ...Option) (*Postgres, error) {
	connector, err := pq.NewConnector(dsn)
	if err != nil {
		return nil, goerr.Wrap(err, "invalid postgres dsn")
	}

	db := sql.OpenDB(connector)
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, goerr.Wrap(err, "failed to connect to postgres")
	}

	p := &Postgres{
		db:    db,
		table: defaultTableName,
	}
	for _, opt := range opts {
		opt(p)
	}
	p.insight = newInsightRepository(db, p.table)

	return p, nil
}

func (p *Postgres) Insight() interfaces.InsightRepository {
	return p.insight
}

func (p *Postgres) Close() error {
	if p.db != nil {
		return p.db.Close()
	}
	return nil
}

// SchemaStatements returns the DDL that Migrate applies, in order
func (p *Postgres) SchemaStatements() []string {
	return schemaStatements(p.table)
}

// Migrate creates the vector extension, the insight table and its indexes when missing
func (p *Postgres) Migrate(ctx context.Context) error {
	for _, stmt := range p.SchemaStatements() {
		if _, err := p.db.ExecContext(ctx, stmt); err != nil {
			return goerr.Wrap(err, "failed to apply schema", goerr.V("statement", stmt))
		}
	}
	return nil
}

func schemaStatements(table string) []string {
	ident := pq.QuoteIdentifier(table)
	return []string{
		`CREATE EXTENSION IF NOT EXISTS vector`,
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
	id BIGSERIAL PRIMARY KEY,
	title TEXT NOT NULL,
	content TEXT NOT NULL,
	category TEXT NOT NULL DEFAULT '',
	url TEXT UNIQUE,
	embedding vector(%d),
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`, ident, model.EmbeddingDimension),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS %s ON %s USING hnsw (embedding vector_cosine_ops)`,
			pq.QuoteIdentifier(table+"_embedding_idx"), ident),
	}
}

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)
