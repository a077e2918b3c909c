package interfaces

import (
	"context"

	"github.com/secmon-lab/techinsights/pkg/domain/model"
	"github.com/secmon-lab/techinsights/pkg/domain/types"
)

// EmbeddingProvider turns text into a fixed-dimension vector for the given intent
type EmbeddingProvider interface {
	Embed(ctx context.Context, text string, intent types.EmbeddingIntent) ([]float32, error)
}

// Summarizer produces narrative summaries and per-result explanations with an LLM
type Summarizer interface {
	// Summarize never fails; degraded results are returned as text
	Summarize(ctx context.Context, texts []string) string

	// Explain returns exactly one explanation per insight
	Explain(ctx context.Context, query string, insights []*model.Insight) ([]string, error)
}

// ArticleSource delivers recent news articles. Errors are absorbed and logged by implementations.
type ArticleSource interface {
	Fetch(ctx context.Context) []*model.Article
}

// Notifier publishes a finished ingestion run
type Notifier interface {
	NotifyIngestion(ctx context.Context, result *model.IngestionResult) error
}

// ReportStore archives a finished ingestion run
type ReportStore interface {
	SaveIngestion(ctx context.Context, result *model.IngestionResult) error
}
