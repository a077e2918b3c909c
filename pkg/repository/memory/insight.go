package memory

import (
	"context"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/secmon-lab/techinsights/pkg/domain/model"
)

type insightRepository struct {
	mu       sync.RWMutex
	nextID   int64
	insights map[int64]*model.Insight
	byURL    map[string]int64
}

func newInsightRepository() *insightRepository {
	return &insightRepository{
		insights: make(map[int64]*model.Insight),
		byURL:    make(map[string]int64),
	}
}

func (r *insightRepository) Insert(ctx context.Context, insights []*model.Insight) error {
	if len(insights) == 0 {
		return nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now().UTC()
	for _, insight := range insights {
		if insight.HasURL() {
			if _, exists := r.byURL[insight.URL]; exists {
				continue
			}
		}

		r.nextID++
		stored := insight.Copy()
		stored.ID = r.nextID
		stored.CreatedAt = now
		stored.Score = 0
		stored.Relevance = ""

		r.insights[stored.ID] = stored
		if stored.HasURL() {
			r.byURL[stored.URL] = stored.ID
		}
	}

	return nil
}

func (r *insightRepository) Search(ctx context.Context, query []float32, threshold float64, limit int) ([]*model.Insight, error) {
	if limit <= 0 || len(query) == 0 {
		return []*model.Insight{}, nil
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	var candidates []*model.Insight
	for _, insight := range r.insights {
		if len(insight.Embedding) == 0 {
			continue
		}
		score := cosineSimilarity(query, insight.Embedding)
		if score < threshold {
			continue
		}
		found := insight.Copy()
		found.Score = score
		candidates = append(candidates, found)
	}

	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].Score == candidates[j].Score {
			return candidates[i].ID < candidates[j].ID
		}
		return candidates[i].Score > candidates[j].Score
	})

	if limit < len(candidates) {
		candidates = candidates[:limit]
	}
	if candidates == nil {
		candidates = []*model.Insight{}
	}

	return candidates, nil
}

func (r *insightRepository) ExistingURLs(ctx context.Context, urls []string) map[string]struct{} {
	existing := make(map[string]struct{})
	if len(urls) == 0 {
		return existing
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, url := range urls {
		if _, ok := r.byURL[url]; ok {
			existing[url] = struct{}{}
		}
	}
	return existing
}

func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	denom := math.Sqrt(normA) * math.Sqrt(normB)
	if denom == 0 {
		return 0
	}

	return dot / denom
}
