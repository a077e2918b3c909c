package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Pipeline stages observed by Recorder
const (
	StageFetch     = "fetch"
	StageDedup     = "dedup"
	StageEmbed     = "embed"
	StagePersist   = "persist"
	StageSummarize = "summarize"
	StageSearch    = "search"
	StageExplain   = "explain"
)

// Recorder collects pipeline metrics on its own registry. A nil *Recorder is valid and records nothing.
type Recorder struct {
	registry      *prometheus.Registry
	stageLatency  *prometheus.HistogramVec
	ingestRuns    *prometheus.CounterVec
	articles      *prometheus.CounterVec
	searches      *prometheus.CounterVec
	searchResults prometheus.Histogram
}

// New creates a Recorder with Go runtime and process collectors registered
func New() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		stageLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "techinsights_stage_latency_seconds",
			Help:    "Latency of pipeline stages",
			Buckets: prometheus.DefBuckets,
		}, []string{"stage", "status"}),
		ingestRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "techinsights_ingest_runs_total",
			Help: "Total ingestion runs",
		}, []string{"status"}),
		articles: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "techinsights_ingested_articles_total",
			Help: "Fetched articles partitioned into new and already stored",
		}, []string{"state"}),
		searches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "techinsights_searches_total",
			Help: "Total search requests",
		}, []string{"status"}),
		searchResults: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "techinsights_search_results",
			Help:    "Number of results returned per search",
			Buckets: []float64{0, 1, 2, 3, 4, 5, 10},
		}),
	}

	r.registry.MustRegister(
		r.stageLatency,
		r.ingestRuns,
		r.articles,
		r.searches,
		r.searchResults,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return r
}

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}

// ObserveStage records the latency of one stage started at start
func (r *Recorder) ObserveStage(stage string, start time.Time, err error) {
	if r == nil {
		return
	}
	r.stageLatency.WithLabelValues(stage, status(err)).Observe(time.Since(start).Seconds())
}

// ObserveIngest records the outcome of one ingestion run
func (r *Recorder) ObserveIngest(newCount, existingCount int, err error) {
	if r == nil {
		return
	}
	r.ingestRuns.WithLabelValues(status(err)).Inc()
	if err != nil {
		return
	}
	r.articles.WithLabelValues("new").Add(float64(newCount))
	r.articles.WithLabelValues("existing").Add(float64(existingCount))
}

// ObserveSearch records the outcome of one search
func (r *Recorder) ObserveSearch(results int, err error) {
	if r == nil {
		return
	}
	r.searches.WithLabelValues(status(err)).Inc()
	if err == nil {
		r.searchResults.Observe(float64(results))
	}
}

// Registry exposes the underlying registry
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// Handler serves the metrics in the Prometheus exposition format
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}
