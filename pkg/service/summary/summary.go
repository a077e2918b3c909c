package summary

import (
	"context"
	"fmt"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gollem"
	"github.com/secmon-lab/techinsights/pkg/domain/interfaces"
	"github.com/secmon-lab/techinsights/pkg/domain/model"
	"github.com/secmon-lab/techinsights/pkg/utils/logging"
	"github.com/secmon-lab/techinsights/pkg/utils/retry"
)

const (
	// NotEnoughTextsMessage is returned by Summarize when there is nothing to summarize
	NotEnoughTextsMessage = "No hay textos suficientes para generar un resumen."

	// FallbackExplanation is used for every result the model did not explain
	FallbackExplanation = "Relacionado semánticamente con su búsqueda."

	summaryErrorFormat = "Error al generar el resumen de insights: %v"
)

// Client implements interfaces.Summarizer with a gollem LLM client
type Client struct {
	llmClient gollem.LLMClient
	policy    retry.Policy
}

var _ interfaces.Summarizer = &Client{}

// Option is a functional option for Client configuration
type Option func(*Client)

// WithRetryPolicy replaces the retry policy applied to every model call
func WithRetryPolicy(p retry.Policy) Option {
	return func(c *Client) {
		c.policy = p
	}
}

// New creates a summarization service with the provided LLM client
func New(llmClient gollem.LLMClient, opts ...Option) (*Client, error) {
	if llmClient == nil {
		return nil, goerr.New("LLM client is required")
	}

	c := &Client{
		llmClient: llmClient,
		policy:    retry.DefaultPolicy(),
	}
	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// Summarize produces a Markdown executive summary of texts. Failures are reported inside the
// returned text after all retry attempts are exhausted.
func (c *Client) Summarize(ctx context.Context, texts []string) string {
	if len(texts) == 0 {
		return NotEnoughTextsMessage
	}

	prompt := buildSummaryPrompt(texts)
	text, err := retry.Do(ctx, c.policy, func(ctx context.Context, attempt int) (string, error) {
		return c.generate(ctx, prompt)
	})
	if err != nil {
		logging.From(ctx).Error("summary generation degraded",
			"error", err.Error(),
			"texts", len(texts))
		return fmt.Sprintf(summaryErrorFormat, err)
	}

	return text
}

// Explain returns one short relevance explanation per insight, in the same order
func (c *Client) Explain(ctx context.Context, query string, insights []*model.Insight) ([]string, error) {
	if len(insights) == 0 {
		return []string{}, nil
	}

	prompt := buildExplainPrompt(query, insights)
	text, err := retry.Do(ctx, c.policy, func(ctx context.Context, attempt int) (string, error) {
		return c.generate(ctx, prompt)
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to generate explanations",
			goerr.V("query", query),
			goerr.V("items", len(insights)))
	}

	return parseExplanations(text, len(insights)), nil
}

func (c *Client) generate(ctx context.Context, prompt string) (string, error) {
	session, err := c.llmClient.NewSession(ctx)
	if err != nil {
		return "", goerr.Wrap(err, "failed to create LLM session")
	}

	resp, err := session.GenerateContent(ctx, gollem.Text(prompt))
	if err != nil {
		return "", goerr.Wrap(err, "failed to generate content from LLM")
	}
	if resp == nil || len(resp.Texts) == 0 {
		return "", goerr.New("empty response from LLM")
	}

	return resp.Texts[0], nil
}
