package types

import (
	"github.com/m-mizutani/goerr/v2"
)

// EmbeddingIntent selects how text is embedded. Some models place indexed documents and
// search queries in asymmetric vector spaces, so the two must not be mixed.
type EmbeddingIntent string

const (
	// EmbeddingIntentDocument is used for content that is stored in the vector store
	EmbeddingIntentDocument EmbeddingIntent = "RETRIEVAL_DOCUMENT"
	// EmbeddingIntentQuery is used for search queries compared against stored documents
	EmbeddingIntentQuery EmbeddingIntent = "RETRIEVAL_QUERY"
)

// Validate checks if the EmbeddingIntent is one of the known values
func (e EmbeddingIntent) Validate() error {
	switch e {
	case EmbeddingIntentDocument, EmbeddingIntentQuery:
		return nil
	case "":
		return goerr.New("embedding intent cannot be empty")
	default:
		return goerr.New("unknown embedding intent", goerr.V("intent", e))
	}
}

// String returns the string representation of EmbeddingIntent
func (e EmbeddingIntent) String() string {
	return string(e)
}
