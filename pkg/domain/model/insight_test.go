package model_test

import (
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/techinsights/pkg/domain/model"
)

func TestInsight_Copy(t *testing.T) {
	orig := &model.Insight{ID: 3, Title: "t", URL: "https://example.com", Embedding: []float32{0.1, 0.2}}
	copied := orig.Copy()

	copied.Embedding[0] = 9
	copied.Title = "changed"

	gt.Value(t, orig.Embedding[0]).Equal(float32(0.1))
	gt.Value(t, orig.Title).Equal("t")
	gt.Value(t, copied.ID).Equal(int64(3))
	gt.Bool(t, copied.IsPersisted()).True()
}

func TestArticle_ToInsight(t *testing.T) {
	a := &model.Article{Title: "Chips", Content: "body", Category: "technology"}
	x := a.ToInsight([]float32{1, 0})

	gt.Value(t, x.Title).Equal("Chips")
	gt.Value(t, x.Content).Equal("body")
	gt.Array(t, x.Embedding).Length(2)
	gt.Bool(t, x.IsPersisted()).False()
	gt.Bool(t, x.HasURL()).False()
	gt.Bool(t, x.HasRelevance()).False()
}
