package usecase

import (
	"context"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/techinsights/pkg/domain/interfaces"
	"github.com/secmon-lab/techinsights/pkg/domain/model"
	"github.com/secmon-lab/techinsights/pkg/domain/types"
	"github.com/secmon-lab/techinsights/pkg/utils/errutil"
	"github.com/secmon-lab/techinsights/pkg/utils/logging"
	"github.com/secmon-lab/techinsights/pkg/utils/metrics"
	"golang.org/x/sync/errgroup"
)

// IngestUseCase fetches news, stores the new ones with embeddings and summarizes the batch
type IngestUseCase struct {
	repo        interfaces.Repository
	embedder    interfaces.EmbeddingProvider
	source      interfaces.ArticleSource
	summarizer  interfaces.Summarizer
	notifier    interfaces.Notifier
	reportStore interfaces.ReportStore
	metrics     *metrics.Recorder
	concurrency int
}

// NewIngestUseCase creates a new IngestUseCase. opts may be nil.
func NewIngestUseCase(
	repo interfaces.Repository,
	embedder interfaces.EmbeddingProvider,
	source interfaces.ArticleSource,
	summarizer interfaces.Summarizer,
	opts *options,
) *IngestUseCase {
	if opts == nil {
		opts = &options{}
	}
	concurrency := opts.embedConcurrency
	if concurrency <= 0 {
		concurrency = DefaultEmbedConcurrency
	}

	return &IngestUseCase{
		repo:        repo,
		embedder:    embedder,
		source:      source,
		summarizer:  summarizer,
		notifier:    opts.notifier,
		reportStore: opts.reportStore,
		metrics:     opts.metrics,
		concurrency: concurrency,
	}
}

// Run executes one ingestion cycle. Only embedding and persistence failures are returned;
// every other failure degrades into the result.
func (uc *IngestUseCase) Run(ctx context.Context) (*model.IngestionResult, error) {
	result, err := uc.run(ctx)
	if err != nil {
		uc.metrics.ObserveIngest(0, 0, err)
		return nil, err
	}
	uc.metrics.ObserveIngest(result.NewCount, result.ExistingCount, nil)

	uc.publish(ctx, result)
	return result, nil
}

func (uc *IngestUseCase) run(ctx context.Context) (*model.IngestionResult, error) {
	logger := logging.From(ctx)
	startedAt := time.Now().UTC()

	stageStart := time.Now()
	articles := uc.source.Fetch(ctx)
	uc.metrics.ObserveStage(metrics.StageFetch, stageStart, nil)

	if len(articles) == 0 {
		logger.Info("no articles fetched")
		return &model.IngestionResult{
			Summary:    model.NoNewsSummary,
			Articles:   []*model.Article{},
			StartedAt:  startedAt,
			FinishedAt: time.Now().UTC(),
		}, nil
	}

	stageStart = time.Now()
	fresh, present := uc.partition(ctx, articles)
	uc.metrics.ObserveStage(metrics.StageDedup, stageStart, nil)
	logger.Info("partitioned articles",
		"fetched", len(articles),
		"new", len(fresh),
		"existing", len(present))

	if len(fresh) > 0 {
		stageStart = time.Now()
		insights, err := uc.embedAll(ctx, fresh)
		uc.metrics.ObserveStage(metrics.StageEmbed, stageStart, err)
		if err != nil {
			return nil, err
		}

		stageStart = time.Now()
		err = uc.repo.Insight().Insert(ctx, insights)
		uc.metrics.ObserveStage(metrics.StagePersist, stageStart, err)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to persist insights", goerr.V("count", len(insights)))
		}
		logger.Info("persisted new insights", "count", len(insights))
	} else {
		logger.Info("nothing new to persist")
	}

	texts := make([]string, len(articles))
	for i, a := range articles {
		texts[i] = a.Content
	}

	stageStart = time.Now()
	summary := uc.summarizer.Summarize(ctx, texts)
	uc.metrics.ObserveStage(metrics.StageSummarize, stageStart, nil)

	return &model.IngestionResult{
		Summary:       summary,
		Articles:      articles,
		NewCount:      len(fresh),
		ExistingCount: len(present),
		StartedAt:     startedAt,
		FinishedAt:    time.Now().UTC(),
	}, nil
}

// partition splits articles into new and already stored. Articles without URL are always new and
// a URL repeated inside the batch is new only on its first occurrence.
func (uc *IngestUseCase) partition(ctx context.Context, articles []*model.Article) (fresh, present []*model.Article) {
	var urls []string
	unique := make(map[string]struct{}, len(articles))
	for _, a := range articles {
		if a.URL == "" {
			continue
		}
		if _, ok := unique[a.URL]; ok {
			continue
		}
		unique[a.URL] = struct{}{}
		urls = append(urls, a.URL)
	}

	existing := map[string]struct{}{}
	if len(urls) > 0 {
		existing = uc.repo.Insight().ExistingURLs(ctx, urls)
	}

	seen := make(map[string]struct{}, len(urls))
	for _, a := range articles {
		if a.URL == "" {
			fresh = append(fresh, a)
			continue
		}
		if _, ok := existing[a.URL]; ok {
			present = append(present, a)
			continue
		}
		if _, ok := seen[a.URL]; ok {
			present = append(present, a)
			continue
		}
		seen[a.URL] = struct{}{}
		fresh = append(fresh, a)
	}

	return fresh, present
}

func (uc *IngestUseCase) embedAll(ctx context.Context, articles []*model.Article) ([]*model.Insight, error) {
	insights := make([]*model.Insight, len(articles))

	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(uc.concurrency)
	for i, a := range articles {
		eg.Go(func() error {
			vec, err := uc.embedder.Embed(egCtx, a.Content, types.EmbeddingIntentDocument)
			if err != nil {
				return goerr.Wrap(err, "failed to embed article",
					goerr.V("title", a.Title),
					goerr.V("url", a.URL))
			}
			insights[i] = a.ToInsight(vec)
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return insights, nil
}

// publish delivers the result to the optional notifier and report store. Failures are only logged.
func (uc *IngestUseCase) publish(ctx context.Context, result *model.IngestionResult) {
	if uc.notifier != nil {
		if err := uc.notifier.NotifyIngestion(ctx, result); err != nil {
			_ = errutil.Handle(ctx, err, "failed to notify ingestion result")
		}
	}
	if uc.reportStore != nil {
		if err := uc.reportStore.SaveIngestion(ctx, result); err != nil {
			_ = errutil.Handle(ctx, err, "failed to archive ingestion result")
		}
	}
}
