package config

import (
	"context"
	"log/slog"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/techinsights/pkg/service/report"
	"github.com/urfave/cli/v3"
)

// Report holds configuration for archiving ingestion results to Cloud Storage
type Report struct {
	bucket string
	prefix string
}

func (x *Report) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "report-bucket",
			Usage:       "Cloud Storage bucket for ingestion reports (disabled when empty)",
			Category:    "Report",
			Destination: &x.bucket,
			Sources:     cli.EnvVars("TECHINSIGHTS_REPORT_BUCKET"),
		},
		&cli.StringFlag{
			Name:        "report-prefix",
			Usage:       "Object prefix for ingestion reports",
			Category:    "Report",
			Value:       "reports",
			Destination: &x.prefix,
			Sources:     cli.EnvVars("TECHINSIGHTS_REPORT_PREFIX"),
		},
	}
}

func (x *Report) LogAttrs() []slog.Attr {
	return []slog.Attr{
		slog.String("bucket", x.bucket),
		slog.String("prefix", x.prefix),
	}
}

// Configure creates the report store, or returns nil when no bucket is set.
// The caller closes the returned store.
func (x *Report) Configure(ctx context.Context) (*report.Store, error) {
	if x.bucket == "" {
		return nil, nil
	}

	store, err := report.NewGCS(ctx, x.bucket, report.WithPrefix(x.prefix))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create report store", goerr.V("bucket", x.bucket))
	}
	return store, nil
}
