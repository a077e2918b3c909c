package usecase_test

import (
	"errors"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/techinsights/pkg/domain/model"
	"github.com/secmon-lab/techinsights/pkg/domain/types"
	"github.com/secmon-lab/techinsights/pkg/usecase"
	"github.com/secmon-lab/techinsights/pkg/utils/metrics"
)

func TestIngestUseCase_Run(t *testing.T) {
	t.Run("empty fetch returns fixed summary without any other call", func(t *testing.T) {
		repo := newCountingRepository()
		embedder := &mockEmbedder{}
		summarizer := &mockSummarizer{summary: "unused"}
		uc := usecase.New(repo, embedder, &mockSource{}, summarizer)

		result, err := uc.Ingest.Run(t.Context())
		gt.NoError(t, err).Required()
		gt.Value(t, result.Summary).Equal("No se encontraron noticias recientes.")
		gt.Array(t, result.Articles).Length(0)
		gt.Value(t, embedder.callCount()).Equal(0)
		gt.Value(t, repo.insight.insertCalls).Equal(0)
		gt.Value(t, repo.insight.existingCalls).Equal(0)
		gt.Array(t, summarizer.summaryTexts).Length(0)
	})

	t.Run("only new articles are embedded and inserted but all are summarized", func(t *testing.T) {
		repo := newCountingRepository()
		gt.NoError(t, repo.Memory.Insight().Insert(t.Context(), []*model.Insight{
			{Title: "A", Content: "a", URL: "u1", Embedding: []float32{1, 0}},
		})).Required()

		embedder := &mockEmbedder{}
		summarizer := &mockSummarizer{summary: "S"}
		source := &mockSource{articles: []*model.Article{
			{Title: "A", Content: "a", Category: "technology", URL: "u1"},
			{Title: "B", Content: "b", Category: "business", URL: "u2"},
		}}
		uc := usecase.New(repo, embedder, source, summarizer)

		result, err := uc.Ingest.Run(t.Context())
		gt.NoError(t, err).Required()

		gt.Value(t, embedder.callCount()).Equal(1)
		gt.Value(t, embedder.texts[0]).Equal("b")
		gt.Value(t, embedder.intents[0]).Equal(types.EmbeddingIntentDocument)
		gt.Value(t, repo.insight.insertCalls).Equal(1)
		gt.Value(t, repo.insight.insertedItems).Equal(1)

		gt.Array(t, summarizer.summaryTexts).Length(1).Required()
		gt.Value(t, summarizer.summaryTexts[0]).Equal([]string{"a", "b"})

		gt.Value(t, result.Summary).Equal("S")
		gt.Array(t, result.Articles).Length(2)
		gt.Value(t, result.NewCount).Equal(1)
		gt.Value(t, result.ExistingCount).Equal(1)
	})

	t.Run("second run over the same items inserts nothing", func(t *testing.T) {
		repo := newCountingRepository()
		embedder := &mockEmbedder{}
		source := &mockSource{articles: []*model.Article{
			{Title: "A", Content: "a", URL: "u1"},
			{Title: "B", Content: "b", URL: "u2"},
		}}
		uc := usecase.New(repo, embedder, source, &mockSummarizer{summary: "S"})

		first, err := uc.Ingest.Run(t.Context())
		gt.NoError(t, err).Required()
		gt.Value(t, first.NewCount).Equal(2)
		gt.Value(t, repo.insight.insertCalls).Equal(1)

		second, err := uc.Ingest.Run(t.Context())
		gt.NoError(t, err).Required()
		gt.Value(t, second.NewCount).Equal(0)
		gt.Value(t, second.ExistingCount).Equal(2)
		gt.Value(t, repo.insight.insertCalls).Equal(1)
		gt.Value(t, embedder.callCount()).Equal(2)
	})

	t.Run("degraded dedup check treats every item as new", func(t *testing.T) {
		repo := newCountingRepository()
		gt.NoError(t, repo.Memory.Insight().Insert(t.Context(), []*model.Insight{
			{Title: "A", Content: "a", URL: "u1", Embedding: []float32{1, 0}},
			{Title: "B", Content: "b", URL: "u2", Embedding: []float32{0, 1}},
		})).Required()
		repo.insight.dedupDegraded = true

		embedder := &mockEmbedder{}
		source := &mockSource{articles: []*model.Article{
			{Title: "A", Content: "a", URL: "u1"},
			{Title: "B", Content: "b", URL: "u2"},
			{Title: "C", Content: "c", URL: "u3"},
		}}
		uc := usecase.New(repo, embedder, source, &mockSummarizer{summary: "S"})

		result, err := uc.Ingest.Run(t.Context())
		gt.NoError(t, err).Required()

		gt.Value(t, repo.insight.existingCalls).Equal(1)
		gt.Value(t, embedder.callCount()).Equal(3)
		gt.Value(t, repo.insight.insertCalls).Equal(1)
		gt.Value(t, repo.insight.insertedItems).Equal(3)
		gt.Value(t, result.NewCount).Equal(3)
		gt.Value(t, result.ExistingCount).Equal(0)
		gt.Array(t, result.Articles).Length(3)
	})

	t.Run("partition covers every fetched item", func(t *testing.T) {
		repo := newCountingRepository()
		gt.NoError(t, repo.Memory.Insight().Insert(t.Context(), []*model.Insight{
			{Title: "old", Content: "old", URL: "u-old", Embedding: []float32{1}},
		})).Required()

		source := &mockSource{articles: []*model.Article{
			{Title: "old", Content: "old", URL: "u-old"},
			{Title: "no url", Content: "anon"},
			{Title: "dup 1", Content: "dup first", URL: "u-dup"},
			{Title: "dup 2", Content: "dup second", URL: "u-dup"},
			{Title: "fresh", Content: "fresh", URL: "u-new"},
		}}
		embedder := &mockEmbedder{}
		uc := usecase.New(repo, embedder, source, &mockSummarizer{summary: "S"})

		result, err := uc.Ingest.Run(t.Context())
		gt.NoError(t, err).Required()
		gt.Value(t, result.NewCount+result.ExistingCount).Equal(len(source.articles))
		gt.Value(t, result.NewCount).Equal(3)
		gt.Value(t, result.ExistingCount).Equal(2)
		gt.Value(t, embedder.callCount()).Equal(3)
		gt.Value(t, repo.insight.existingCalls).Equal(1)
	})

	t.Run("embedding failure aborts the run", func(t *testing.T) {
		repo := newCountingRepository()
		embedder := &mockEmbedder{err: errors.New("quota"), failOn: "b"}
		summarizer := &mockSummarizer{summary: "S"}
		source := &mockSource{articles: []*model.Article{
			{Title: "A", Content: "a", URL: "u1"},
			{Title: "B", Content: "b", URL: "u2"},
		}}
		uc := usecase.New(repo, embedder, source, summarizer, usecase.WithEmbedConcurrency(1))

		_, err := uc.Ingest.Run(t.Context())
		gt.Error(t, err)
		gt.Value(t, repo.insight.insertCalls).Equal(0)
		gt.Array(t, summarizer.summaryTexts).Length(0)
	})

	t.Run("persistence failure aborts the run", func(t *testing.T) {
		repo := newCountingRepository()
		repo.insight.insertErr = model.ErrPersistence
		summarizer := &mockSummarizer{summary: "S"}
		source := &mockSource{articles: []*model.Article{{Title: "A", Content: "a", URL: "u1"}}}
		uc := usecase.New(repo, &mockEmbedder{}, source, summarizer)

		_, err := uc.Ingest.Run(t.Context())
		gt.Error(t, err).Is(model.ErrPersistence)
		gt.Array(t, summarizer.summaryTexts).Length(0)
	})

	t.Run("embeds many articles concurrently and keeps every result", func(t *testing.T) {
		repo := newCountingRepository()
		var articles []*model.Article
		for i := range 20 {
			articles = append(articles, &model.Article{
				Title:   "T",
				Content: string(rune('a' + i)),
				URL:     "u-" + string(rune('a'+i)),
			})
		}
		embedder := &mockEmbedder{}
		uc := usecase.New(repo, embedder, &mockSource{articles: articles}, &mockSummarizer{summary: "S"})

		result, err := uc.Ingest.Run(t.Context())
		gt.NoError(t, err).Required()
		gt.Value(t, result.NewCount).Equal(20)
		gt.Value(t, repo.insight.insertedItems).Equal(20)
		gt.Value(t, len(repo.Memory.Insight().ExistingURLs(t.Context(), []string{"u-a", "u-t"}))).Equal(2)
	})

	t.Run("publishing failures do not change the result", func(t *testing.T) {
		repo := newCountingRepository()
		notifier := &failingNotifier{}
		store := &recordingReportStore{}
		source := &mockSource{articles: []*model.Article{{Title: "A", Content: "a", URL: "u1"}}}
		uc := usecase.New(repo, &mockEmbedder{}, source, &mockSummarizer{summary: "S"},
			usecase.WithNotifier(notifier),
			usecase.WithReportStore(store),
			usecase.WithMetrics(metrics.New()),
		)

		result, err := uc.Ingest.Run(t.Context())
		gt.NoError(t, err).Required()
		gt.Value(t, result.Summary).Equal("S")
		gt.Value(t, notifier.calls).Equal(1)
		gt.Array(t, store.saved).Length(1)
	})

	t.Run("degraded summary is still a successful run", func(t *testing.T) {
		repo := newCountingRepository()
		source := &mockSource{articles: []*model.Article{{Title: "A", Content: "a", URL: "u1"}}}
		uc := usecase.New(repo, &mockEmbedder{}, source,
			&mockSummarizer{summary: "Error al generar el resumen de insights: quota"})

		result, err := uc.Ingest.Run(t.Context())
		gt.NoError(t, err).Required()
		gt.String(t, result.Summary).Contains("Error")
		gt.Value(t, repo.insight.insertCalls).Equal(1)
	})
}
