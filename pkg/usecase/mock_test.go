package usecase_test

import (
	"context"
	"hash/fnv"
	"sync"

	"github.com/secmon-lab/techinsights/pkg/domain/interfaces"
	"github.com/secmon-lab/techinsights/pkg/domain/model"
	"github.com/secmon-lab/techinsights/pkg/domain/types"
	"github.com/secmon-lab/techinsights/pkg/repository/memory"
)

// mockSource returns a fixed article list
type mockSource struct {
	articles []*model.Article
	calls    int
}

func (m *mockSource) Fetch(ctx context.Context) []*model.Article {
	m.calls++
	return m.articles
}

// mockEmbedder derives a deterministic vector from the text and records calls
type mockEmbedder struct {
	mu      sync.Mutex
	texts   []string
	intents []types.EmbeddingIntent
	vectors map[string][]float32
	failOn  string
	err     error
}

func (m *mockEmbedder) Embed(ctx context.Context, text string, intent types.EmbeddingIntent) ([]float32, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.texts = append(m.texts, text)
	m.intents = append(m.intents, intent)

	if m.err != nil && (m.failOn == "" || m.failOn == text) {
		return nil, m.err
	}
	if v, ok := m.vectors[text]; ok {
		return v, nil
	}

	h := fnv.New32a()
	_, _ = h.Write([]byte(text))
	seed := h.Sum32()
	v := make([]float32, 8)
	for i := range v {
		v[i] = float32((seed>>uint(i*4))&0xf) + 1
	}
	return v, nil
}

func (m *mockEmbedder) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.texts)
}

// mockSummarizer records inputs and returns canned outputs
type mockSummarizer struct {
	summaryTexts [][]string
	summary      string

	explainCalls int
	explanations []string
	explainErr   error
}

func (m *mockSummarizer) Summarize(ctx context.Context, texts []string) string {
	m.summaryTexts = append(m.summaryTexts, texts)
	return m.summary
}

func (m *mockSummarizer) Explain(ctx context.Context, query string, insights []*model.Insight) ([]string, error) {
	m.explainCalls++
	if m.explainErr != nil {
		return nil, m.explainErr
	}
	return m.explanations, nil
}

// countingRepository wraps the memory repository and counts calls
type countingRepository struct {
	*memory.Memory
	insight *countingInsightRepository
}

type countingInsightRepository struct {
	interfaces.InsightRepository
	insertCalls   int
	insertedItems int
	existingCalls int
	searchCalls   int
	insertErr     error
	searchErr     error
	// dedupDegraded makes ExistingURLs behave like a failed lookup
	dedupDegraded bool
}

func newCountingRepository() *countingRepository {
	mem := memory.New()
	return &countingRepository{
		Memory:  mem,
		insight: &countingInsightRepository{InsightRepository: mem.Insight()},
	}
}

func (r *countingRepository) Insight() interfaces.InsightRepository {
	return r.insight
}

func (r *countingInsightRepository) Insert(ctx context.Context, insights []*model.Insight) error {
	r.insertCalls++
	r.insertedItems += len(insights)
	if r.insertErr != nil {
		return r.insertErr
	}
	return r.InsightRepository.Insert(ctx, insights)
}

func (r *countingInsightRepository) ExistingURLs(ctx context.Context, urls []string) map[string]struct{} {
	r.existingCalls++
	if r.dedupDegraded {
		return map[string]struct{}{}
	}
	return r.InsightRepository.ExistingURLs(ctx, urls)
}

func (r *countingInsightRepository) Search(ctx context.Context, query []float32, threshold float64, limit int) ([]*model.Insight, error) {
	r.searchCalls++
	if r.searchErr != nil {
		return nil, r.searchErr
	}
	return r.InsightRepository.Search(ctx, query, threshold, limit)
}

// failingNotifier always fails
type failingNotifier struct {
	calls int
}

func (n *failingNotifier) NotifyIngestion(ctx context.Context, result *model.IngestionResult) error {
	n.calls++
	return context.DeadlineExceeded
}

type recordingReportStore struct {
	saved []*model.IngestionResult
}

func (s *recordingReportStore) SaveIngestion(ctx context.Context, result *model.IngestionResult) error {
	s.saved = append(s.saved, result)
	return nil
}
