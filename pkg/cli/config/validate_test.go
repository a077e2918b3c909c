package config_test

import (
	"testing"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/techinsights/pkg/cli/config"
)

func TestValidate(t *testing.T) {
	t.Run("aggregates every missing value", func(t *testing.T) {
		err := config.Validate(
			config.NewLLMForTest(config.ProviderGemini, "", "", ""),
			config.NewEmbeddingForTest("", ""),
			config.NewGuardianForTest("", ""),
			config.NewRepositoryForTest(config.BackendPostgres, "", ""),
		)
		gt.Error(t, err).Is(config.ErrConfiguration)
		gt.String(t, err.Error()).Contains("gemini-project")
		gt.String(t, err.Error()).Contains("gemini-api-key")
		gt.String(t, err.Error()).Contains("guardian-api-key")
		gt.String(t, err.Error()).Contains("postgres-dsn")

		ge := goerr.Unwrap(err)
		gt.Value(t, ge).NotNil().Required()
		values := ge.Values()
		gt.Map(t, values).HasKey(config.MissingKey)
		missing, ok := values[config.MissingKey].([]string)
		gt.Bool(t, ok).True()
		gt.Array(t, missing).Length(4)
	})

	t.Run("passes when everything is set", func(t *testing.T) {
		err := config.Validate(
			config.NewLLMForTest(config.ProviderClaude, "", "", "key"),
			config.NewEmbeddingForTest("key", ""),
			config.NewGuardianForTest("key", ""),
			config.NewRepositoryForTest(config.BackendMemory, "", ""),
			config.NewSlackForTest("", ""),
		)
		gt.NoError(t, err)
	})

	t.Run("slack token without channel", func(t *testing.T) {
		err := config.Validate(config.NewSlackForTest("xoxb-token", ""))
		gt.Error(t, err).Is(config.ErrConfiguration)
		gt.String(t, err.Error()).Contains("slack-channel-id")
	})
}

func TestLLM_Missing(t *testing.T) {
	tests := []struct {
		name string
		cfg  *config.LLM
		want int
	}{
		{name: "gemini with project", cfg: config.NewLLMForTest(config.ProviderGemini, "proj", "", ""), want: 0},
		{name: "gemini without project", cfg: config.NewLLMForTest(config.ProviderGemini, "", "", ""), want: 1},
		{name: "openai with key", cfg: config.NewLLMForTest(config.ProviderOpenAI, "", "sk", ""), want: 0},
		{name: "openai without key", cfg: config.NewLLMForTest(config.ProviderOpenAI, "proj", "", "key"), want: 1},
		{name: "claude without key", cfg: config.NewLLMForTest(config.ProviderClaude, "", "sk", ""), want: 1},
		{name: "unknown provider", cfg: config.NewLLMForTest("bard", "proj", "sk", "key"), want: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gt.Array(t, tt.cfg.Missing()).Length(tt.want)
		})
	}
}

func TestLLM_Configure(t *testing.T) {
	t.Run("fails with configuration error when key is missing", func(t *testing.T) {
		client, err := config.NewLLMForTest(config.ProviderOpenAI, "", "", "").Configure(t.Context())
		gt.Error(t, err).Is(config.ErrConfiguration)
		gt.Value(t, client).Nil()
	})

	t.Run("returns flags", func(t *testing.T) {
		var cfg config.LLM
		gt.Array(t, cfg.Flags()).Length(6)
	})
}

func TestEmbedding_Configure(t *testing.T) {
	t.Run("requires API key or project", func(t *testing.T) {
		_, err := config.NewEmbeddingForTest("", "").Configure(t.Context())
		gt.Error(t, err).Is(config.ErrConfiguration)
	})

	t.Run("project alone satisfies requirement", func(t *testing.T) {
		gt.Array(t, config.NewEmbeddingForTest("", "proj").Missing()).Length(0)
	})
}
