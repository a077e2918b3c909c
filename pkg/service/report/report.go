package report

import (
	"context"
	"encoding/json"
	"io"
	"path"
	"time"

	"cloud.google.com/go/storage"
	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/techinsights/pkg/domain/interfaces"
	"github.com/secmon-lab/techinsights/pkg/domain/model"
	"github.com/secmon-lab/techinsights/pkg/utils/logging"
)

const defaultPrefix = "reports"

// Bucket opens object writers. It is satisfied by the GCS adapter and by test fakes.
type Bucket interface {
	NewWriter(ctx context.Context, object string) io.WriteCloser
}

// Store archives ingestion results as JSON objects
type Store struct {
	bucket Bucket
	prefix string
	now    func() time.Time
	newID  func() string
	closer io.Closer
}

var _ interfaces.ReportStore = &Store{}

type Option func(*Store)

// WithPrefix sets the object name prefix, "reports" by default
func WithPrefix(prefix string) Option {
	return func(s *Store) { s.prefix = prefix }
}

func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

func WithIDGenerator(fn func() string) Option {
	return func(s *Store) { s.newID = fn }
}

// New creates a report store writing to bucket
func New(bucket Bucket, opts ...Option) *Store {
	s := &Store{
		bucket: bucket,
		prefix: defaultPrefix,
		now:    time.Now,
		newID:  uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type gcsBucket struct {
	handle *storage.BucketHandle
}

func (b *gcsBucket) NewWriter(ctx context.Context, object string) io.WriteCloser {
	w := b.handle.Object(object).NewWriter(ctx)
	w.ContentType = "application/json"
	return w
}

// NewGCS creates a report store on a Cloud Storage bucket using default credentials
func NewGCS(ctx context.Context, bucketName string, opts ...Option) (*Store, error) {
	if bucketName == "" {
		return nil, goerr.New("report bucket is required")
	}

	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create storage client", goerr.V("bucket", bucketName))
	}

	s := New(&gcsBucket{handle: client.Bucket(bucketName)}, opts...)
	s.closer = client
	return s, nil
}

// Close releases the underlying storage client
func (s *Store) Close() error {
	if s.closer != nil {
		return s.closer.Close()
	}
	return nil
}

type reportDoc struct {
	Summary       string           `json:"summary"`
	NewCount      int              `json:"new_count"`
	ExistingCount int              `json:"existing_count"`
	StartedAt     time.Time        `json:"started_at"`
	FinishedAt    time.Time        `json:"finished_at"`
	Articles      []*model.Article `json:"articles"`
}

// ObjectName returns the object name for a report created at t
func (s *Store) ObjectName(t time.Time) string {
	return path.Join(s.prefix, t.UTC().Format("20060102T150405Z")+"-"+s.newID()+".json")
}

// SaveIngestion writes result as reports/<timestamp>-<uuid>.json
func (s *Store) SaveIngestion(ctx context.Context, result *model.IngestionResult) error {
	name := s.ObjectName(s.now())

	doc := reportDoc{
		Summary:       result.Summary,
		NewCount:      result.NewCount,
		ExistingCount: result.ExistingCount,
		StartedAt:     result.StartedAt,
		FinishedAt:    result.FinishedAt,
		Articles:      result.Articles,
	}
	if doc.Articles == nil {
		doc.Articles = []*model.Article{}
	}

	w := s.bucket.NewWriter(ctx, name)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		_ = w.Close()
		return goerr.Wrap(err, "failed to write report", goerr.V("object", name))
	}
	if err := w.Close(); err != nil {
		return goerr.Wrap(err, "failed to finalize report", goerr.V("object", name))
	}

	logging.From(ctx).Info("saved ingestion report", "object", name)
	return nil
}
