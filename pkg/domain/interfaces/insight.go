package interfaces

import (
	"context"

	"github.com/secmon-lab/techinsights/pkg/domain/model"
)

// InsightRepository is the vector store holding embedded insights
type InsightRepository interface {
	// Insert persists a batch in one call. Insights whose URL is already stored are skipped.
	// Errors wrap model.ErrPersistence.
	Insert(ctx context.Context, insights []*model.Insight) error

	// Search returns insights with cosine similarity >= threshold ordered by descending similarity,
	// at most limit. Each result carries Score.
	Search(ctx context.Context, query []float32, threshold float64, limit int) ([]*model.Insight, error)

	// ExistingURLs returns the subset of urls already persisted. Backend failures yield an empty set.
	ExistingURLs(ctx context.Context, urls []string) map[string]struct{}
}
