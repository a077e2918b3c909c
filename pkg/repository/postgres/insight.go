package postgres

import (
	"context"
	"database/sql"
	"strconv"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/lib/pq"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/techinsights/pkg/domain/model"
	"github.com/secmon-lab/techinsights/pkg/utils/logging"
)

type insightRepository struct {
	db    *sql.DB
	table string
}

func newInsightRepository(db *sql.DB, table string) *insightRepository {
	return &insightRepository{
		db:    db,
		table: pq.QuoteIdentifier(table),
	}
}

// vectorLiteral renders v in the pgvector text format, e.g. [0.1,0.2]
func vectorLiteral(v []float32) string {
	var b strings.Builder
	b.WriteByte('[')
	for i, f := range v {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.FormatFloat(float64(f), 'f', -1, 32))
	}
	b.WriteByte(']')
	return b.String()
}

func parseVector(s string) ([]float32, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "[")
	s = strings.TrimSuffix(s, "]")
	if s == "" {
		return nil, nil
	}

	parts := strings.Split(s, ",")
	v := make([]float32, len(parts))
	for i, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 32)
		if err != nil {
			return nil, goerr.Wrap(err, "invalid vector element", goerr.V("index", i))
		}
		v[i] = float32(f)
	}
	return v, nil
}

func nullableURL(url string) sql.NullString {
	return sql.NullString{String: url, Valid: url != ""}
}

func nullableVector(v []float32) sql.NullString {
	if len(v) == 0 {
		return sql.NullString{}
	}
	return sql.NullString{String: vectorLiteral(v), Valid: true}
}

func (r *insightRepository) Insert(ctx context.Context, insights []*model.Insight) error {
	if len(insights) == 0 {
		return nil
	}

	builder := psql.Insert(r.table).
		Columns("title", "content", "category", "url", "embedding")
	for _, x := range insights {
		builder = builder.Values(
			x.Title,
			x.Content,
			x.Category,
			nullableURL(x.URL),
			sq.Expr("?::vector", nullableVector(x.Embedding)),
		)
	}
	builder = builder.Suffix("ON CONFLICT (url) DO NOTHING")

	query, args, err := builder.ToSql()
	if err != nil {
		return goerr.Wrap(model.ErrPersistence, "failed to build insert query", goerr.V("cause", err.Error()))
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return goerr.Wrap(model.ErrPersistence, "failed to insert insights",
			goerr.V("cause", err.Error()),
			goerr.V("count", len(insights)))
	}

	return nil
}

func (r *insightRepository) Search(ctx context.Context, query []float32, threshold float64, limit int) ([]*model.Insight, error) {
	if limit <= 0 || len(query) == 0 {
		return []*model.Insight{}, nil
	}

	vec := vectorLiteral(query)
	sqlQuery, args, err := psql.
		Select("id", "title", "content", "category", "url", "embedding::text", "created_at").
		Column(sq.Expr("1 - (embedding <=> ?::vector) AS score", vec)).
		From(r.table).
		Where("embedding IS NOT NULL").
		Where(sq.Expr("1 - (embedding <=> ?::vector) >= ?", vec, threshold)).
		OrderByClause("embedding <=> ?::vector", vec).
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return nil, goerr.Wrap(err, "failed to build search query")
	}

	rows, err := r.db.QueryContext(ctx, sqlQuery, args...)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to search insights")
	}
	defer func() { _ = rows.Close() }()

	results := make([]*model.Insight, 0, limit)
	for rows.Next() {
		var (
			x         model.Insight
			url       sql.NullString
			embedding sql.NullString
		)
		if err := rows.Scan(&x.ID, &x.Title, &x.Content, &x.Category, &url, &embedding, &x.CreatedAt, &x.Score); err != nil {
			return nil, goerr.Wrap(err, "failed to scan insight")
		}
		x.URL = url.String
		if embedding.Valid {
			v, err := parseVector(embedding.String)
			if err != nil {
				return nil, goerr.Wrap(err, "failed to parse embedding", goerr.V("id", x.ID))
			}
			x.Embedding = v
		}
		results = append(results, &x)
	}
	if err := rows.Err(); err != nil {
		return nil, goerr.Wrap(err, "failed to iterate search results")
	}

	return results, nil
}

func (r *insightRepository) ExistingURLs(ctx context.Context, urls []string) map[string]struct{} {
	existing := make(map[string]struct{})
	if len(urls) == 0 {
		return existing
	}

	found, err := r.existingURLs(ctx, urls)
	if err != nil {
		logging.From(ctx).Warn("dedup check degraded, treating all items as new",
			"error", err.Error(),
			"urls", len(urls))
		return existing
	}
	for _, u := range found {
		existing[u] = struct{}{}
	}
	return existing
}

func (r *insightRepository) existingURLs(ctx context.Context, urls []string) ([]string, error) {
	query, args, err := psql.
		Select("url").
		From(r.table).
		Where("url = ANY(?)", pq.Array(urls)).
		ToSql()
	if err != nil {
		return nil, goerr.Wrap(err, "failed to build dedup query")
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to query existing urls")
	}
	defer func() { _ = rows.Close() }()

	var found []string
	for rows.Next() {
		var u string
		if err := rows.Scan(&u); err != nil {
			return nil, goerr.Wrap(err, "failed to scan url")
		}
		found = append(found, u)
	}
	if err := rows.Err(); err != nil {
		return nil, goerr.Wrap(err, "failed to iterate existing urls")
	}

	return found, nil
}
