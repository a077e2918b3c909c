package firestore

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/techinsights/pkg/domain/model"
	"github.com/secmon-lab/techinsights/pkg/utils/logging"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const (
	// insightsCollectionName matches the table name used by the SQL backend
	insightsCollectionName = "tech_insights"
	countersCollectionName = "counters"
	insightCounterDoc      = "insight_counter"

	// distanceField receives the cosine distance computed by FindNearest
	distanceField = "VectorDistance"

	// Firestore allows 500 writes per transaction; one is taken by the counter
	insertChunkSize = 400

	// Firestore "in" filters accept at most 30 values
	inQueryChunkSize = 30
)

// insightDoc is the Firestore document representation of model.Insight.
// Embedding is stored as firestore.Vector32 so that FindNearest vector search works.
type insightDoc struct {
	ID        int64              `firestore:"ID"`
	Title     string             `firestore:"Title"`
	Content   string             `firestore:"Content"`
	Category  string             `firestore:"Category"`
	URL       string             `firestore:"URL"`
	Embedding firestore.Vector32 `firestore:"Embedding,omitempty"`
	CreatedAt time.Time          `firestore:"CreatedAt"`
}

func toInsightDoc(x *model.Insight) *insightDoc {
	doc := &insightDoc{
		ID:        x.ID,
		Title:     x.Title,
		Content:   x.Content,
		Category:  x.Category,
		URL:       x.URL,
		CreatedAt: x.CreatedAt,
	}
	if len(x.Embedding) > 0 {
		doc.Embedding = firestore.Vector32(x.Embedding)
	}
	return doc
}

func docToInsight(doc *firestore.DocumentSnapshot) (*model.Insight, error) {
	var d insightDoc
	if err := doc.DataTo(&d); err != nil {
		return nil, err
	}

	x := &model.Insight{
		ID:        d.ID,
		Title:     d.Title,
		Content:   d.Content,
		Category:  d.Category,
		URL:       d.URL,
		CreatedAt: d.CreatedAt,
	}
	if len(d.Embedding) > 0 {
		x.Embedding = []float32(d.Embedding)
	}
	return x, nil
}

// insightDocID derives the document ID from the URL so that a URL can be stored only once.
// Insights without URL get a random ID and are never deduplicated.
func insightDocID(x *model.Insight) string {
	if !x.HasURL() {
		return uuid.NewString()
	}
	sum := sha256.Sum256([]byte(x.URL))
	return hex.EncodeToString(sum[:])
}

type insightRepository struct {
	client           *firestore.Client
	collectionPrefix string
}

func newInsightRepository(client *firestore.Client) *insightRepository {
	return &insightRepository{
		client: client,
	}
}

func (r *insightRepository) insightsCollection() *firestore.CollectionRef {
	return r.client.Collection(r.collectionPrefix + insightsCollectionName)
}

func (r *insightRepository) counterRef() *firestore.DocumentRef {
	return r.client.Collection(r.collectionPrefix + countersCollectionName).Doc(insightCounterDoc)
}

func (r *insightRepository) Insert(ctx context.Context, insights []*model.Insight) error {
	for start := 0; start < len(insights); start += insertChunkSize {
		end := min(start+insertChunkSize, len(insights))
		if err := r.insertChunk(ctx, insights[start:end]); err != nil {
			return goerr.Wrap(model.ErrPersistence, "failed to insert insights",
				goerr.V("cause", err.Error()),
				goerr.V("count", len(insights)))
		}
	}
	return nil
}

// insertChunk reads the counter and every target document before writing, as
// transactions require all reads to precede writes.
func (r *insightRepository) insertChunk(ctx context.Context, insights []*model.Insight) error {
	refs := make([]*firestore.DocumentRef, 0, len(insights))
	seen := make(map[string]struct{}, len(insights))
	targets := make([]*model.Insight, 0, len(insights))
	for _, x := range insights {
		id := insightDocID(x)
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		refs = append(refs, r.insightsCollection().Doc(id))
		targets = append(targets, x)
	}

	return r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		var current int64
		counter, err := tx.Get(r.counterRef())
		if err != nil && status.Code(err) != codes.NotFound {
			return goerr.Wrap(err, "failed to get counter")
		}
		if err == nil {
			v, err := counter.DataAt("value")
			if err != nil {
				return goerr.Wrap(err, "failed to get counter value")
			}
			val, ok := v.(int64)
			if !ok {
				return goerr.New("counter value is not of type int64", goerr.V("value", v))
			}
			current = val
		}

		snapshots, err := tx.GetAll(refs)
		if err != nil {
			return goerr.Wrap(err, "failed to read insight documents")
		}

		now := time.Now().UTC()
		next := current
		for i, snap := range snapshots {
			if snap.Exists() {
				continue
			}
			next++
			stored := targets[i].Copy()
			stored.ID = next
			stored.CreatedAt = now
			if err := tx.Create(refs[i], toInsightDoc(stored)); err != nil {
				return goerr.Wrap(err, "failed to create insight", goerr.V("url", stored.URL))
			}
		}

		if next == current {
			return nil
		}
		return tx.Set(r.counterRef(), map[string]any{"value": next})
	})
}

func (r *insightRepository) Search(ctx context.Context, query []float32, threshold float64, limit int) ([]*model.Insight, error) {
	if limit <= 0 || len(query) == 0 {
		return []*model.Insight{}, nil
	}

	// similarity >= threshold is distance <= 1 - threshold for cosine
	maxDistance := 1 - threshold
	vq := r.insightsCollection().FindNearest("Embedding", firestore.Vector32(query), limit,
		firestore.DistanceMeasureCosine, &firestore.FindNearestOptions{
			DistanceThreshold:   &maxDistance,
			DistanceResultField: distanceField,
		})

	iter := vq.Documents(ctx)
	defer iter.Stop()

	results := make([]*model.Insight, 0, limit)
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate vector search results")
		}

		x, err := docToInsight(doc)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to unmarshal insight from vector search", goerr.V("doc", doc.Ref.ID))
		}

		distance, err := doc.DataAt(distanceField)
		if err != nil {
			return nil, goerr.Wrap(err, "vector distance missing from search result", goerr.V("doc", doc.Ref.ID))
		}
		if d, ok := distance.(float64); ok {
			x.Score = 1 - d
		}

		results = append(results, x)
	}

	return results, nil
}

func (r *insightRepository) ExistingURLs(ctx context.Context, urls []string) map[string]struct{} {
	existing := make(map[string]struct{})
	if len(urls) == 0 {
		return existing
	}

	for start := 0; start < len(urls); start += inQueryChunkSize {
		end := min(start+inQueryChunkSize, len(urls))
		found, err := r.existingURLsChunk(ctx, urls[start:end])
		if err != nil {
			logging.From(ctx).Warn("dedup check degraded, treating all items as new",
				"error", err.Error(),
				"urls", len(urls))
			return make(map[string]struct{})
		}
		for _, u := range found {
			existing[u] = struct{}{}
		}
	}

	return existing
}

func (r *insightRepository) existingURLsChunk(ctx context.Context, urls []string) ([]string, error) {
	iter := r.insightsCollection().
		Where("URL", "in", urls).
		Select("URL").
		Documents(ctx)
	defer iter.Stop()

	var found []string
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to query existing urls")
		}

		v, err := doc.DataAt("URL")
		if err != nil {
			return nil, goerr.Wrap(err, "failed to read url field", goerr.V("doc", doc.Ref.ID))
		}
		if u, ok := v.(string); ok {
			found = append(found, u)
		}
	}

	return found, nil
}
