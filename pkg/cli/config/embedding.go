package config

import (
	"context"
	"log/slog"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/techinsights/pkg/domain/model"
	"github.com/secmon-lab/techinsights/pkg/service/embedding"
	"github.com/urfave/cli/v3"
)

// Embedding holds configuration for the embedding provider. An API key selects the
// Gemini Developer API, otherwise a Vertex AI project is used.
type Embedding struct {
	apiKey    string
	projectID string
	location  string
	model     string
	dimension int
}

func (x *Embedding) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "gemini-api-key",
			Usage:       "Gemini API key for embeddings",
			Category:    "Embedding",
			Sources:     cli.EnvVars("TECHINSIGHTS_GEMINI_API_KEY"),
			Destination: &x.apiKey,
		},
		&cli.StringFlag{
			Name:        "embedding-project",
			Usage:       "Google Cloud project ID for Vertex AI embeddings (used when no API key is set)",
			Category:    "Embedding",
			Sources:     cli.EnvVars("TECHINSIGHTS_EMBEDDING_PROJECT"),
			Destination: &x.projectID,
		},
		&cli.StringFlag{
			Name:        "embedding-location",
			Usage:       "Google Cloud location for Vertex AI embeddings",
			Category:    "Embedding",
			Value:       "us-central1",
			Sources:     cli.EnvVars("TECHINSIGHTS_EMBEDDING_LOCATION"),
			Destination: &x.location,
		},
		&cli.StringFlag{
			Name:        "embedding-model",
			Usage:       "Embedding model name",
			Category:    "Embedding",
			Value:       embedding.DefaultModel,
			Sources:     cli.EnvVars("TECHINSIGHTS_EMBEDDING_MODEL"),
			Destination: &x.model,
		},
		&cli.IntFlag{
			Name:        "embedding-dimension",
			Usage:       "Embedding vector dimension",
			Category:    "Embedding",
			Value:       model.EmbeddingDimension,
			Sources:     cli.EnvVars("TECHINSIGHTS_EMBEDDING_DIMENSION"),
			Destination: &x.dimension,
		},
	}
}

func (x *Embedding) LogAttrs() []slog.Attr {
	return []slog.Attr{
		slog.Int("api_key.len", len(x.apiKey)),
		slog.String("project_id", x.projectID),
		slog.String("location", x.location),
		slog.String("model", x.model),
		slog.Int("dimension", x.dimension),
	}
}

// Missing implements Requirement
func (x *Embedding) Missing() []string {
	if x.apiKey == "" && x.projectID == "" {
		return []string{"gemini-api-key"}
	}
	return nil
}

// Configure creates the embedding client
func (x *Embedding) Configure(ctx context.Context) (*embedding.Client, error) {
	if len(x.Missing()) > 0 {
		return nil, goerr.Wrap(ErrConfiguration, "embedding provider is not configured")
	}

	opts := []embedding.Option{
		embedding.WithModel(x.model),
		embedding.WithDimension(x.dimension),
	}

	if x.apiKey != "" {
		client, err := embedding.NewGemini(ctx, x.apiKey, opts...)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to create Gemini embedding client")
		}
		return client, nil
	}

	client, err := embedding.NewVertex(ctx, x.projectID, x.location, opts...)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create Vertex AI embedding client", goerr.V("project_id", x.projectID))
	}
	return client, nil
}
