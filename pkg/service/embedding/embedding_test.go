package embedding_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/techinsights/pkg/domain/model"
	"github.com/secmon-lab/techinsights/pkg/domain/types"
	"github.com/secmon-lab/techinsights/pkg/service/embedding"
	"google.golang.org/genai"
)

type mockEmbedder struct {
	calls    []*genai.EmbedContentConfig
	models   []string
	texts    []string
	deadline bool
	values   []float32
	err      error
}

func (m *mockEmbedder) EmbedContent(ctx context.Context, name string, contents []*genai.Content, config *genai.EmbedContentConfig) (*genai.EmbedContentResponse, error) {
	m.calls = append(m.calls, config)
	m.models = append(m.models, name)
	if len(contents) > 0 && len(contents[0].Parts) > 0 {
		m.texts = append(m.texts, contents[0].Parts[0].Text)
	}
	_, m.deadline = ctx.Deadline()

	if m.err != nil {
		return nil, m.err
	}
	if m.values == nil {
		return &genai.EmbedContentResponse{}, nil
	}
	return &genai.EmbedContentResponse{
		Embeddings: []*genai.ContentEmbedding{{Values: m.values}},
	}, nil
}

func TestEmbed(t *testing.T) {
	t.Run("passes intent as task type and returns values", func(t *testing.T) {
		mock := &mockEmbedder{values: []float32{0.1, 0.2, 0.3}}
		client, err := embedding.New(mock, embedding.WithDimension(3), embedding.WithTimeout(time.Second))
		gt.NoError(t, err).Required()

		v, err := client.Embed(t.Context(), "AI chips", types.EmbeddingIntentQuery)
		gt.NoError(t, err).Required()
		gt.Value(t, v).Equal([]float32{0.1, 0.2, 0.3})

		gt.Array(t, mock.calls).Length(1).Required()
		gt.Value(t, mock.calls[0].TaskType).Equal("RETRIEVAL_QUERY")
		gt.Value(t, *mock.calls[0].OutputDimensionality).Equal(int32(3))
		gt.Value(t, mock.models[0]).Equal(embedding.DefaultModel)
		gt.Value(t, mock.texts[0]).Equal("AI chips")
		gt.Bool(t, mock.deadline).True()
	})

	t.Run("document intent", func(t *testing.T) {
		mock := &mockEmbedder{values: []float32{1, 0}}
		client, err := embedding.New(mock, embedding.WithDimension(2), embedding.WithModel("custom-model"))
		gt.NoError(t, err).Required()

		_, err = client.Embed(t.Context(), "body", types.EmbeddingIntentDocument)
		gt.NoError(t, err).Required()
		gt.Value(t, mock.calls[0].TaskType).Equal("RETRIEVAL_DOCUMENT")
		gt.Value(t, mock.models[0]).Equal("custom-model")
	})

	t.Run("empty text fails without calling the provider", func(t *testing.T) {
		mock := &mockEmbedder{values: []float32{1}}
		client, err := embedding.New(mock)
		gt.NoError(t, err).Required()

		_, err = client.Embed(t.Context(), "  ", types.EmbeddingIntentDocument)
		gt.Error(t, err).Is(model.ErrEmbedding)
		gt.Array(t, mock.calls).Length(0)
	})

	t.Run("provider error wraps ErrEmbedding", func(t *testing.T) {
		mock := &mockEmbedder{err: errors.New("Error 429, RESOURCE_EXHAUSTED")}
		client, err := embedding.New(mock)
		gt.NoError(t, err).Required()

		_, err = client.Embed(t.Context(), "text", types.EmbeddingIntentDocument)
		gt.Error(t, err).Is(model.ErrEmbedding)
	})

	t.Run("empty response wraps ErrEmbedding", func(t *testing.T) {
		mock := &mockEmbedder{}
		client, err := embedding.New(mock)
		gt.NoError(t, err).Required()

		_, err = client.Embed(t.Context(), "text", types.EmbeddingIntentDocument)
		gt.Error(t, err).Is(model.ErrEmbedding)
	})

	t.Run("dimension mismatch wraps ErrEmbedding", func(t *testing.T) {
		mock := &mockEmbedder{values: []float32{1, 2}}
		client, err := embedding.New(mock)
		gt.NoError(t, err).Required()

		_, err = client.Embed(t.Context(), "text", types.EmbeddingIntentDocument)
		gt.Error(t, err).Is(model.ErrEmbedding)
	})

	t.Run("unknown intent is rejected", func(t *testing.T) {
		mock := &mockEmbedder{values: []float32{1}}
		client, err := embedding.New(mock, embedding.WithDimension(1))
		gt.NoError(t, err).Required()

		_, err = client.Embed(t.Context(), "text", types.EmbeddingIntent("CLASSIFICATION"))
		gt.Error(t, err).Is(model.ErrEmbedding)
		gt.Array(t, mock.calls).Length(0)
	})
}

func TestNew(t *testing.T) {
	_, err := embedding.New(nil)
	gt.Error(t, err)
}
