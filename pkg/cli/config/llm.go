package config

import (
	"context"
	"log/slog"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gollem"
	"github.com/m-mizutani/gollem/llm/claude"
	"github.com/m-mizutani/gollem/llm/gemini"
	"github.com/m-mizutani/gollem/llm/openai"
	"github.com/urfave/cli/v3"
)

// LLM providers
const (
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"
	ProviderClaude = "claude"
)

// LLM holds configuration for the text generation client used for summaries and explanations
type LLM struct {
	provider        string
	model           string
	geminiProjectID string
	geminiLocation  string
	openaiAPIKey    string
	claudeAPIKey    string
}

func (x *LLM) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "llm-provider",
			Usage:       "LLM provider [gemini|openai|claude]",
			Category:    "LLM",
			Value:       ProviderGemini,
			Sources:     cli.EnvVars("TECHINSIGHTS_LLM_PROVIDER"),
			Destination: &x.provider,
		},
		&cli.StringFlag{
			Name:        "llm-model",
			Usage:       "Model name (provider default when empty)",
			Category:    "LLM",
			Sources:     cli.EnvVars("TECHINSIGHTS_LLM_MODEL"),
			Destination: &x.model,
		},
		&cli.StringFlag{
			Name:        "gemini-project",
			Usage:       "Google Cloud project ID for Gemini API",
			Category:    "LLM",
			Sources:     cli.EnvVars("TECHINSIGHTS_GEMINI_PROJECT"),
			Destination: &x.geminiProjectID,
		},
		&cli.StringFlag{
			Name:        "gemini-location",
			Usage:       "Google Cloud location for Gemini API",
			Category:    "LLM",
			Value:       "us-central1",
			Sources:     cli.EnvVars("TECHINSIGHTS_GEMINI_LOCATION"),
			Destination: &x.geminiLocation,
		},
		&cli.StringFlag{
			Name:        "openai-api-key",
			Usage:       "OpenAI API key",
			Category:    "LLM",
			Sources:     cli.EnvVars("TECHINSIGHTS_OPENAI_API_KEY"),
			Destination: &x.openaiAPIKey,
		},
		&cli.StringFlag{
			Name:        "claude-api-key",
			Usage:       "Anthropic API key",
			Category:    "LLM",
			Sources:     cli.EnvVars("TECHINSIGHTS_CLAUDE_API_KEY"),
			Destination: &x.claudeAPIKey,
		},
	}
}

func (x *LLM) LogAttrs() []slog.Attr {
	return []slog.Attr{
		slog.String("provider", x.provider),
		slog.String("model", x.model),
		slog.String("gemini_project", x.geminiProjectID),
		slog.String("gemini_location", x.geminiLocation),
		slog.Int("openai_api_key.len", len(x.openaiAPIKey)),
		slog.Int("claude_api_key.len", len(x.claudeAPIKey)),
	}
}

// Missing implements Requirement
func (x *LLM) Missing() []string {
	switch x.provider {
	case ProviderGemini:
		if x.geminiProjectID == "" {
			return []string{"gemini-project"}
		}
	case ProviderOpenAI:
		if x.openaiAPIKey == "" {
			return []string{"openai-api-key"}
		}
	case ProviderClaude:
		if x.claudeAPIKey == "" {
			return []string{"claude-api-key"}
		}
	default:
		return []string{"llm-provider"}
	}
	return nil
}

// Configure creates the LLM client for the configured provider
func (x *LLM) Configure(ctx context.Context) (gollem.LLMClient, error) {
	if missing := x.Missing(); len(missing) > 0 {
		return nil, goerr.Wrap(ErrConfiguration, "LLM is not configured",
			goerr.V("provider", x.provider), goerr.V(MissingKey, missing))
	}

	switch x.provider {
	case ProviderGemini:
		var opts []gemini.Option
		if x.model != "" {
			opts = append(opts, gemini.WithModel(x.model))
		}
		client, err := gemini.New(ctx, x.geminiProjectID, x.geminiLocation, opts...)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to create Gemini client")
		}
		return client, nil

	case ProviderOpenAI:
		var opts []openai.Option
		if x.model != "" {
			opts = append(opts, openai.WithModel(x.model))
		}
		client, err := openai.New(ctx, x.openaiAPIKey, opts...)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to create OpenAI client")
		}
		return client, nil

	default:
		var opts []claude.Option
		if x.model != "" {
			opts = append(opts, claude.WithModel(x.model))
		}
		client, err := claude.New(ctx, x.claudeAPIKey, opts...)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to create Claude client")
		}
		return client, nil
	}
}
