package config

import (
	"log/slog"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/techinsights/pkg/service/guardian"
	"github.com/urfave/cli/v3"
)

// Guardian holds configuration for the Guardian Content API article source
type Guardian struct {
	apiKey    string
	baseURL   string
	rateLimit time.Duration
}

func (x *Guardian) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "guardian-api-key",
			Usage:       "Guardian Content API key",
			Category:    "Source",
			Sources:     cli.EnvVars("TECHINSIGHTS_GUARDIAN_API_KEY"),
			Destination: &x.apiKey,
		},
		&cli.StringFlag{
			Name:        "guardian-base-url",
			Usage:       "Guardian Content API base URL",
			Category:    "Source",
			Value:       guardian.DefaultBaseURL,
			Sources:     cli.EnvVars("TECHINSIGHTS_GUARDIAN_BASE_URL"),
			Destination: &x.baseURL,
		},
		&cli.DurationFlag{
			Name:        "guardian-rate-limit",
			Usage:       "Minimum interval between Guardian API requests",
			Category:    "Source",
			Value:       time.Second,
			Sources:     cli.EnvVars("TECHINSIGHTS_GUARDIAN_RATE_LIMIT"),
			Destination: &x.rateLimit,
		},
	}
}

func (x *Guardian) LogAttrs() []slog.Attr {
	return []slog.Attr{
		slog.Int("api_key.len", len(x.apiKey)),
		slog.String("base_url", x.baseURL),
		slog.Duration("rate_limit", x.rateLimit),
	}
}

// Missing implements Requirement
func (x *Guardian) Missing() []string {
	if x.apiKey == "" {
		return []string{"guardian-api-key"}
	}
	return nil
}

// Configure creates the article source. Zero values in src keep the client defaults.
func (x *Guardian) Configure(src SourceConfig) (*guardian.Client, error) {
	if x.apiKey == "" {
		return nil, goerr.Wrap(ErrConfiguration, "guardian-api-key is required")
	}

	opts := []guardian.Option{
		guardian.WithRateLimit(x.rateLimit),
	}
	if x.baseURL != "" {
		opts = append(opts, guardian.WithBaseURL(x.baseURL))
	}
	if src.Sections != "" {
		opts = append(opts, guardian.WithSections(src.Sections))
	}
	if src.Query != "" {
		opts = append(opts, guardian.WithQuery(src.Query))
	}
	if src.LookbackDays > 0 {
		opts = append(opts, guardian.WithLookback(src.Lookback()))
	}
	if src.PageSize > 0 {
		opts = append(opts, guardian.WithPageSize(src.PageSize))
	}
	if src.MaxPages > 0 {
		opts = append(opts, guardian.WithMaxPages(src.MaxPages))
	}

	client, err := guardian.New(x.apiKey, opts...)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create Guardian client")
	}
	return client, nil
}
