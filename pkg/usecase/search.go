package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/techinsights/pkg/domain/interfaces"
	"github.com/secmon-lab/techinsights/pkg/domain/model"
	"github.com/secmon-lab/techinsights/pkg/domain/types"
	"github.com/secmon-lab/techinsights/pkg/utils/logging"
	"github.com/secmon-lab/techinsights/pkg/utils/metrics"
)

const (
	// DefaultSearchThreshold is the minimum cosine similarity of a search result
	DefaultSearchThreshold = 0.4
	// DefaultSearchLimit is the maximum number of search results
	DefaultSearchLimit = 5
)

// SearchUseCase answers free text queries with stored insights and relevance explanations
type SearchUseCase struct {
	repo       interfaces.Repository
	embedder   interfaces.EmbeddingProvider
	summarizer interfaces.Summarizer
	metrics    *metrics.Recorder
	threshold  float64
	limit      int
}

// NewSearchUseCase creates a new SearchUseCase. summarizer and opts may be nil.
func NewSearchUseCase(
	repo interfaces.Repository,
	embedder interfaces.EmbeddingProvider,
	summarizer interfaces.Summarizer,
	opts *options,
) *SearchUseCase {
	uc := &SearchUseCase{
		repo:       repo,
		embedder:   embedder,
		summarizer: summarizer,
		threshold:  DefaultSearchThreshold,
		limit:      DefaultSearchLimit,
	}
	if opts != nil {
		uc.metrics = opts.metrics
		if opts.thresholdSet {
			uc.threshold = opts.searchThreshold
		}
		if opts.searchLimit > 0 {
			uc.limit = opts.searchLimit
		}
	}
	return uc
}

// Search returns insights similar to query, best match first. Explanation failures leave
// Relevance unset instead of failing the search.
func (uc *SearchUseCase) Search(ctx context.Context, query string) ([]*model.Insight, error) {
	results, err := uc.search(ctx, query)
	uc.metrics.ObserveSearch(len(results), err)
	return results, err
}

func (uc *SearchUseCase) search(ctx context.Context, query string) ([]*model.Insight, error) {
	if strings.TrimSpace(query) == "" {
		return nil, goerr.Wrap(ErrEmptyQuery, "cannot search")
	}

	stageStart := time.Now()
	vec, err := uc.embedder.Embed(ctx, query, types.EmbeddingIntentQuery)
	uc.metrics.ObserveStage(metrics.StageEmbed, stageStart, err)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to embed query", goerr.V("query", query))
	}

	stageStart = time.Now()
	results, err := uc.repo.Insight().Search(ctx, vec, uc.threshold, uc.limit)
	uc.metrics.ObserveStage(metrics.StageSearch, stageStart, err)
	if err != nil {
		logging.From(ctx).Warn("vector search degraded, returning no results",
			"error", err.Error(),
			"query", query)
		return []*model.Insight{}, nil
	}

	if len(results) == 0 || uc.summarizer == nil {
		return results, nil
	}

	stageStart = time.Now()
	explanations, err := uc.summarizer.Explain(ctx, query, results)
	uc.metrics.ObserveStage(metrics.StageExplain, stageStart, err)
	if err != nil {
		logging.From(ctx).Warn("explanation degraded, returning results without relevance",
			"error", err.Error(),
			"results", len(results))
		return results, nil
	}

	for i, x := range results {
		if i >= len(explanations) {
			break
		}
		x.Relevance = explanations[i]
	}

	return results, nil
}
