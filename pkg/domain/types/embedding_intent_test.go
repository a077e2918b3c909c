package types_test

import (
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/techinsights/pkg/domain/types"
)

func TestEmbeddingIntent_Validate(t *testing.T) {
	tests := []struct {
		name    string
		intent  types.EmbeddingIntent
		wantErr bool
	}{
		{"document", types.EmbeddingIntentDocument, false},
		{"query", types.EmbeddingIntentQuery, false},
		{"empty", "", true},
		{"unknown", "CLUSTERING", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.intent.Validate()
			gt.Value(t, err != nil).Equal(tt.wantErr)
		})
	}
}

func TestEmbeddingIntent_String(t *testing.T) {
	gt.Value(t, types.EmbeddingIntentQuery.String()).Equal("RETRIEVAL_QUERY")
}
