package usecase

import (
	"github.com/secmon-lab/techinsights/pkg/domain/interfaces"
	"github.com/secmon-lab/techinsights/pkg/utils/metrics"
)

// DefaultEmbedConcurrency bounds parallel embedding calls during ingestion
const DefaultEmbedConcurrency = 4

type UseCases struct {
	Ingest *IngestUseCase
	Search *SearchUseCase
}

type options struct {
	notifier         interfaces.Notifier
	reportStore      interfaces.ReportStore
	metrics          *metrics.Recorder
	embedConcurrency int
	searchThreshold  float64
	thresholdSet     bool
	searchLimit      int
}

type Option func(*options)

// WithNotifier publishes every successful ingestion run
func WithNotifier(n interfaces.Notifier) Option {
	return func(o *options) {
		o.notifier = n
	}
}

// WithReportStore archives every successful ingestion run
func WithReportStore(s interfaces.ReportStore) Option {
	return func(o *options) {
		o.reportStore = s
	}
}

func WithMetrics(m *metrics.Recorder) Option {
	return func(o *options) {
		o.metrics = m
	}
}

func WithEmbedConcurrency(n int) Option {
	return func(o *options) {
		o.embedConcurrency = n
	}
}

func WithSearchThreshold(threshold float64) Option {
	return func(o *options) {
		o.searchThreshold = threshold
		o.thresholdSet = true
	}
}

func WithSearchLimit(limit int) Option {
	return func(o *options) {
		o.searchLimit = limit
	}
}

func New(
	repo interfaces.Repository,
	embedder interfaces.EmbeddingProvider,
	source interfaces.ArticleSource,
	summarizer interfaces.Summarizer,
	opts ...Option,
) *UseCases {
	o := options{
		embedConcurrency: DefaultEmbedConcurrency,
		searchThreshold:  DefaultSearchThreshold,
		searchLimit:      DefaultSearchLimit,
	}
	for _, opt := range opts {
		opt(&o)
	}

	return &UseCases{
		Ingest: NewIngestUseCase(repo, embedder, source, summarizer, &o),
		Search: NewSearchUseCase(repo, embedder, summarizer, &o),
	}
}
