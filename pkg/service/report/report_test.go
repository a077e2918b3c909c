package report_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/techinsights/pkg/domain/model"
	"github.com/secmon-lab/techinsights/pkg/service/report"
)

type memObject struct {
	bytes.Buffer
	closeErr error
	closed   bool
}

func (o *memObject) Close() error {
	o.closed = true
	return o.closeErr
}

type memBucket struct {
	objects  map[string]*memObject
	closeErr error
}

func (b *memBucket) NewWriter(_ context.Context, object string) io.WriteCloser {
	if b.objects == nil {
		b.objects = map[string]*memObject{}
	}
	o := &memObject{closeErr: b.closeErr}
	b.objects[object] = o
	return o
}

func newStore(b *memBucket) *report.Store {
	return report.New(b,
		report.WithClock(func() time.Time { return time.Date(2026, 5, 1, 8, 30, 0, 0, time.UTC) }),
		report.WithIDGenerator(func() string { return "fixed-id" }),
	)
}

func TestSaveIngestion(t *testing.T) {
	t.Run("writes JSON report with timestamped name", func(t *testing.T) {
		b := &memBucket{}
		s := newStore(b)

		err := s.SaveIngestion(t.Context(), &model.IngestionResult{
			Summary:       "resumen",
			NewCount:      1,
			ExistingCount: 1,
			Articles:      []*model.Article{{Title: "A", Content: "a", URL: "https://g.example/a"}},
		})
		gt.NoError(t, err).Required()

		obj, ok := b.objects["reports/20260501T083000Z-fixed-id.json"]
		gt.Bool(t, ok).True()
		gt.Bool(t, obj.closed).True()

		var got map[string]any
		gt.NoError(t, json.Unmarshal(obj.Bytes(), &got)).Required()
		gt.Value(t, got["summary"]).Equal("resumen")
		gt.Value(t, got["new_count"]).Equal(float64(1))
	})

	t.Run("close error is returned", func(t *testing.T) {
		b := &memBucket{closeErr: errors.New("permission denied")}
		err := newStore(b).SaveIngestion(t.Context(), &model.IngestionResult{})
		gt.Error(t, err)
	})
}

func TestObjectName(t *testing.T) {
	s := report.New(&memBucket{}, report.WithPrefix("archive"), report.WithIDGenerator(func() string { return "x" }))
	gt.Value(t, s.ObjectName(time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC))).Equal("archive/20260102T030405Z-x.json")
}
