package cli

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/m-mizutani/goerr/v2"
	httpctrl "github.com/secmon-lab/techinsights/pkg/controller/http"
	"github.com/secmon-lab/techinsights/pkg/service/worker"
	"github.com/secmon-lab/techinsights/pkg/utils/logging"
	"github.com/secmon-lab/techinsights/pkg/utils/metrics"
	"github.com/urfave/cli/v3"
)

func cmdServe() *cli.Command {
	var addr string
	var ingestInterval time.Duration
	var ingestTimeout time.Duration
	var p pipeline

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "addr",
			Usage:       "HTTP server address",
			Value:       ":8080",
			Sources:     cli.EnvVars("TECHINSIGHTS_ADDR"),
			Destination: &addr,
		},
		&cli.DurationFlag{
			Name:        "ingest-interval",
			Usage:       "Run ingestion periodically in the background (disabled when zero)",
			Sources:     cli.EnvVars("TECHINSIGHTS_INGEST_INTERVAL"),
			Destination: &ingestInterval,
		},
		&cli.DurationFlag{
			Name:        "ingest-timeout",
			Usage:       "Timeout of an ingestion triggered by POST /api/ingest",
			Value:       10 * time.Minute,
			Sources:     cli.EnvVars("TECHINSIGHTS_INGEST_TIMEOUT"),
			Destination: &ingestTimeout,
		},
	}
	flags = append(flags, p.flags(true)...)

	return &cli.Command{
		Name:    "serve",
		Aliases: []string{"s"},
		Usage:   "Start HTTP server",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			recorder := metrics.New()

			uc, cleanup, err := p.build(ctx, true, recorder)
			defer cleanup()
			if err != nil {
				return err
			}

			var ingestWorker *worker.IngestWorker
			if ingestInterval > 0 {
				ingestWorker = worker.NewIngestWorker(uc.Ingest, ingestInterval)
				ingestWorker.Start(ctx)
			}

			server := &http.Server{
				Addr: addr,
				Handler: httpctrl.New(uc.Search,
					httpctrl.WithIngest(uc.Ingest),
					httpctrl.WithIngestTimeout(ingestTimeout),
					httpctrl.WithMetricsHandler(recorder.Handler()),
				),
				ReadHeaderTimeout: 30 * time.Second,
			}

			// Setup signal handling for graceful shutdown
			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

			errCh := make(chan error, 1)
			go func() {
				logging.Default().Info("Starting HTTP server", "addr", addr, "ingest_interval", ingestInterval.String())
				if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					errCh <- goerr.Wrap(err, "failed to start server")
				}
			}()

			select {
			case err := <-errCh:
				if ingestWorker != nil {
					ingestWorker.Stop()
				}
				return err
			case sig := <-sigCh:
				logging.Default().Info("Received shutdown signal", "signal", sig)

				if ingestWorker != nil {
					ingestWorker.Stop()
				}

				shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()

				if err := server.Shutdown(shutdownCtx); err != nil {
					return goerr.Wrap(err, "failed to shutdown server")
				}
				logging.Default().Info("Server shutdown completed")
			}

			return nil
		},
	}
}
