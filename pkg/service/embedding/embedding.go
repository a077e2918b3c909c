package embedding

import (
	"context"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/techinsights/pkg/domain/interfaces"
	"github.com/secmon-lab/techinsights/pkg/domain/model"
	"github.com/secmon-lab/techinsights/pkg/domain/types"
	"google.golang.org/genai"
)

const (
	// DefaultModel is the Gemini embedding model producing model.EmbeddingDimension vectors
	DefaultModel = "text-embedding-004"

	// DefaultTimeout bounds a single embedding call
	DefaultTimeout = 30 * time.Second
)

// ContentEmbedder is the subset of the genai Models service used by Client
type ContentEmbedder interface {
	EmbedContent(ctx context.Context, model string, contents []*genai.Content, config *genai.EmbedContentConfig) (*genai.EmbedContentResponse, error)
}

// Client implements interfaces.EmbeddingProvider on top of the Gemini embedding API
type Client struct {
	embedder  ContentEmbedder
	model     string
	dimension int
	timeout   time.Duration
}

var _ interfaces.EmbeddingProvider = &Client{}

// Option is a functional option for Client configuration
type Option func(*Client)

// WithModel sets the embedding model name
func WithModel(name string) Option {
	return func(c *Client) {
		c.model = name
	}
}

// WithDimension sets the output dimensionality requested from the model
func WithDimension(dim int) Option {
	return func(c *Client) {
		c.dimension = dim
	}
}

// WithTimeout sets the per-call timeout
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.timeout = d
	}
}

// New creates an embedding client backed by embedder
func New(embedder ContentEmbedder, opts ...Option) (*Client, error) {
	if embedder == nil {
		return nil, goerr.New("embedder is required")
	}

	c := &Client{
		embedder:  embedder,
		model:     DefaultModel,
		dimension: model.EmbeddingDimension,
		timeout:   DefaultTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// NewGemini creates an embedding client using the Gemini API key backend
func NewGemini(ctx context.Context, apiKey string, opts ...Option) (*Client, error) {
	gc, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create genai client")
	}
	return New(gc.Models, opts...)
}

// NewVertex creates an embedding client using the Vertex AI backend and default credentials
func NewVertex(ctx context.Context, projectID, location string, opts ...Option) (*Client, error) {
	gc, err := genai.NewClient(ctx, &genai.ClientConfig{
		Project:  projectID,
		Location: location,
		Backend:  genai.BackendVertexAI,
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create genai client",
			goerr.V("project", projectID),
			goerr.V("location", location))
	}
	return New(gc.Models, opts...)
}

// Embed returns the embedding of text for the given intent
func (c *Client) Embed(ctx context.Context, text string, intent types.EmbeddingIntent) ([]float32, error) {
	if strings.TrimSpace(text) == "" {
		return nil, goerr.Wrap(model.ErrEmbedding, "text is empty")
	}
	if err := intent.Validate(); err != nil {
		return nil, goerr.Wrap(model.ErrEmbedding, "invalid intent", goerr.V("cause", err.Error()))
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	dim := int32(c.dimension)
	resp, err := c.embedder.EmbedContent(ctx, c.model, genai.Text(text), &genai.EmbedContentConfig{
		TaskType:             intent.String(),
		OutputDimensionality: &dim,
	})
	if err != nil {
		return nil, goerr.Wrap(model.ErrEmbedding, "embedding request failed",
			goerr.V("cause", err.Error()),
			goerr.V("model", c.model),
			goerr.V("intent", intent))
	}

	if resp == nil || len(resp.Embeddings) == 0 || resp.Embeddings[0] == nil || len(resp.Embeddings[0].Values) == 0 {
		return nil, goerr.Wrap(model.ErrEmbedding, "empty embedding response",
			goerr.V("model", c.model),
			goerr.V("intent", intent))
	}

	values := resp.Embeddings[0].Values
	if len(values) != c.dimension {
		return nil, goerr.Wrap(model.ErrEmbedding, "unexpected embedding dimension",
			goerr.V("expected", c.dimension),
			goerr.V("actual", len(values)))
	}

	return values, nil
}
