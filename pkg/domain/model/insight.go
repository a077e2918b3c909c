package model

import (
	"time"
)

// EmbeddingDimension is the dimension of the embedding vector
// Gemini text-embedding-004 uses 768 dimensions
const EmbeddingDimension = 768

// Insight is the canonical record of one article with its optional embedding and relevance annotation.
type Insight struct {
	ID       int64 // Assigned by the store on insert. 0 means not persisted yet
	Title    string
	Content  string
	Category string
	URL      string // Dedup key. Empty means the insight can never be matched and is always new

	Embedding []float32 // nil until computed; stores may omit it on search results

	// Ephemeral fields set on search results and never persisted
	Score     float64
	Relevance string

	CreatedAt time.Time
}

// IsPersisted reports whether the insight has been stored
func (x *Insight) IsPersisted() bool {
	return x.ID != 0
}

// HasURL reports whether the insight can take part in URL based deduplication
func (x *Insight) HasURL() bool {
	return x.URL != ""
}

// HasRelevance reports whether search enrichment attached an explanation
func (x *Insight) HasRelevance() bool {
	return x.Relevance != ""
}

// Copy returns a deep copy of the insight
func (x *Insight) Copy() *Insight {
	copied := *x
	if x.Embedding != nil {
		copied.Embedding = make([]float32, len(x.Embedding))
		copy(copied.Embedding, x.Embedding)
	}
	return &copied
}
