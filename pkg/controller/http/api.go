package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/techinsights/pkg/domain/model"
	"github.com/secmon-lab/techinsights/pkg/usecase"
	"github.com/secmon-lab/techinsights/pkg/utils/async"
	"github.com/secmon-lab/techinsights/pkg/utils/errutil"
	"github.com/secmon-lab/techinsights/pkg/utils/safe"
)

type insightResponse struct {
	ID        int64   `json:"id"`
	Title     string  `json:"title"`
	Content   string  `json:"content"`
	Category  string  `json:"category"`
	URL       string  `json:"url,omitempty"`
	Score     float64 `json:"score"`
	Relevance string  `json:"relevance,omitempty"`
}

type searchResponse struct {
	Query   string            `json:"query"`
	Results []insightResponse `json:"results"`
}

type ingestResponse struct {
	Summary       string           `json:"summary"`
	NewCount      int              `json:"new_count"`
	ExistingCount int              `json:"existing_count"`
	Articles      []*model.Article `json:"articles"`
}

func writeJSON(ctx context.Context, w http.ResponseWriter, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		errutil.HandleHTTP(ctx, w, goerr.Wrap(err, "failed to marshal response"), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	safe.Write(ctx, w, data)
}

func searchHandler(uc SearchUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		query := r.URL.Query().Get("q")

		results, err := uc.Search(ctx, query)
		if err != nil {
			status := http.StatusInternalServerError
			if errors.Is(err, usecase.ErrEmptyQuery) {
				status = http.StatusBadRequest
			}
			errutil.HandleHTTP(ctx, w, err, status)
			return
		}

		resp := searchResponse{
			Query:   query,
			Results: make([]insightResponse, len(results)),
		}
		for i, x := range results {
			resp.Results[i] = insightResponse{
				ID:        x.ID,
				Title:     x.Title,
				Content:   x.Content,
				Category:  x.Category,
				URL:       x.URL,
				Score:     x.Score,
				Relevance: x.Relevance,
			}
		}

		writeJSON(ctx, w, resp)
	}
}

// ingestHandler runs one ingestion. With ?async=true the run continues in the background
// and the handler answers 202 immediately.
func ingestHandler(uc IngestUseCase, timeout time.Duration) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("async") == "true" {
			async.Dispatch(r.Context(), func(ctx context.Context) error {
				ctx, cancel := context.WithTimeout(ctx, timeout)
				defer cancel()
				_, err := uc.Run(ctx)
				return err
			})
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusAccepted)
			safe.Write(r.Context(), w, []byte(`{"status":"accepted"}`))
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), timeout)
		defer cancel()

		result, err := uc.Run(ctx)
		if err != nil {
			errutil.HandleHTTP(ctx, w, err, http.StatusInternalServerError)
			return
		}

		articles := result.Articles
		if articles == nil {
			articles = []*model.Article{}
		}
		writeJSON(ctx, w, ingestResponse{
			Summary:       result.Summary,
			NewCount:      result.NewCount,
			ExistingCount: result.ExistingCount,
			Articles:      articles,
		})
	}
}
