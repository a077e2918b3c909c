package cli

import (
	"context"
	"log/slog"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/techinsights/pkg/cli/config"
	"github.com/secmon-lab/techinsights/pkg/domain/interfaces"
	"github.com/secmon-lab/techinsights/pkg/service/summary"
	"github.com/secmon-lab/techinsights/pkg/usecase"
	"github.com/secmon-lab/techinsights/pkg/utils/logging"
	"github.com/secmon-lab/techinsights/pkg/utils/metrics"
	"github.com/secmon-lab/techinsights/pkg/utils/safe"
	"github.com/urfave/cli/v3"
)

// pipeline gathers the configuration shared by commands that build use cases
type pipeline struct {
	appConfigPath    string
	embedConcurrency int
	threshold        float64
	thresholdSet     bool
	limit            int

	llm      config.LLM
	embed    config.Embedding
	repo     config.Repository
	guardian config.Guardian
	slack    config.Slack
	report   config.Report
}

// flags returns the flags for the command. Source flags are included only for commands that ingest.
func (p *pipeline) flags(withSource bool) []cli.Flag {
	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "config",
			Aliases:     []string{"c"},
			Usage:       "Path to TOML configuration file",
			Sources:     cli.EnvVars("TECHINSIGHTS_CONFIG"),
			Destination: &p.appConfigPath,
		},
		&cli.Float64Flag{
			Name:        "threshold",
			Usage:       "Minimum cosine similarity for search results (overrides config file)",
			Category:    "Search",
			Sources:     cli.EnvVars("TECHINSIGHTS_SEARCH_THRESHOLD"),
			Destination: &p.threshold,
			Action: func(_ context.Context, _ *cli.Command, v float64) error {
				if v < 0 || v > 1 {
					return goerr.Wrap(config.ErrInvalidConfig, "threshold must be between 0 and 1", goerr.V("value", v))
				}
				p.thresholdSet = true
				return nil
			},
		},
		&cli.IntFlag{
			Name:        "limit",
			Usage:       "Maximum number of search results (overrides config file)",
			Category:    "Search",
			Sources:     cli.EnvVars("TECHINSIGHTS_SEARCH_LIMIT"),
			Destination: &p.limit,
		},
	}
	flags = append(flags, p.llm.Flags()...)
	flags = append(flags, p.embed.Flags()...)
	flags = append(flags, p.repo.Flags()...)

	if withSource {
		flags = append(flags, &cli.IntFlag{
			Name:        "embed-concurrency",
			Usage:       "Number of articles embedded in parallel",
			Category:    "Embedding",
			Value:       usecase.DefaultEmbedConcurrency,
			Sources:     cli.EnvVars("TECHINSIGHTS_EMBED_CONCURRENCY"),
			Destination: &p.embedConcurrency,
		})
		flags = append(flags, p.guardian.Flags()...)
		flags = append(flags, p.slack.Flags()...)
		flags = append(flags, p.report.Flags()...)
	}
	return flags
}

// validate reports every missing value at once before any client is created
func (p *pipeline) validate(withSource bool) error {
	reqs := []config.Requirement{&p.llm, &p.embed, &p.repo}
	if withSource {
		reqs = append(reqs, &p.guardian, &p.slack)
	}
	return config.Validate(reqs...)
}

// build creates the use cases. The returned function releases every opened resource.
func (p *pipeline) build(ctx context.Context, withSource bool, recorder *metrics.Recorder) (*usecase.UseCases, func(), error) {
	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}
	logger := logging.From(ctx)

	if err := p.validate(withSource); err != nil {
		return nil, cleanup, err
	}

	appCfg, err := config.LoadAppConfiguration(p.appConfigPath)
	if err != nil {
		return nil, cleanup, goerr.Wrap(err, "failed to load configuration file")
	}

	logger.Info("Pipeline configuration",
		slog.GroupAttrs("llm", p.llm.LogAttrs()...),
		slog.GroupAttrs("embedding", p.embed.LogAttrs()...),
		slog.GroupAttrs("repository", p.repo.LogAttrs()...),
	)

	repo, err := p.repo.Configure(ctx)
	if err != nil {
		return nil, cleanup, goerr.Wrap(err, "failed to initialize repository")
	}
	closers = append(closers, func() { safe.Close(ctx, repo) })

	embedder, err := p.embed.Configure(ctx)
	if err != nil {
		return nil, cleanup, goerr.Wrap(err, "failed to initialize embedding provider")
	}

	llmClient, err := p.llm.Configure(ctx)
	if err != nil {
		return nil, cleanup, goerr.Wrap(err, "failed to initialize LLM client")
	}
	summarizer, err := summary.New(llmClient)
	if err != nil {
		return nil, cleanup, goerr.Wrap(err, "failed to initialize summarizer")
	}

	opts := []usecase.Option{
		usecase.WithMetrics(recorder),
		usecase.WithSearchLimit(int(firstPositive(float64(p.limit), float64(appCfg.Search.Limit)))),
	}
	if threshold, ok := p.searchThreshold(appCfg.Search); ok {
		opts = append(opts, usecase.WithSearchThreshold(threshold))
	}

	var source interfaces.ArticleSource
	if withSource {
		logger.Info("Source configuration",
			slog.GroupAttrs("guardian", p.guardian.LogAttrs()...),
			"slack", p.slack,
			slog.GroupAttrs("report", p.report.LogAttrs()...),
		)

		client, err := p.guardian.Configure(appCfg.Source)
		if err != nil {
			return nil, cleanup, goerr.Wrap(err, "failed to initialize article source")
		}
		source = client

		notifier, err := p.slack.Configure()
		if err != nil {
			return nil, cleanup, goerr.Wrap(err, "failed to initialize notifier")
		}
		if notifier != nil {
			opts = append(opts, usecase.WithNotifier(notifier))
		}

		store, err := p.report.Configure(ctx)
		if err != nil {
			return nil, cleanup, goerr.Wrap(err, "failed to initialize report store")
		}
		if store != nil {
			opts = append(opts, usecase.WithReportStore(store))
			closers = append(closers, func() { safe.Close(ctx, store) })
		}

		opts = append(opts, usecase.WithEmbedConcurrency(p.embedConcurrency))
	}

	return usecase.New(repo, embedder, source, summarizer, opts...), cleanup, nil
}

// searchThreshold prefers the flag over the config file. ok is false when neither sets a value.
func (p *pipeline) searchThreshold(cfg config.SearchConfig) (float64, bool) {
	if p.thresholdSet {
		return p.threshold, true
	}
	if cfg.Threshold != nil {
		return *cfg.Threshold, true
	}
	return 0, false
}

func firstPositive(values ...float64) float64 {
	for _, v := range values {
		if v > 0 {
			return v
		}
	}
	return 0
}
