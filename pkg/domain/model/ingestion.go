package model

import "time"

// NoNewsSummary is returned by the ingestion pipeline when the source yields nothing
const NoNewsSummary = "No se encontraron noticias recientes."

// IngestionResult is the outcome of one ingestion run
type IngestionResult struct {
	Summary       string     `json:"summary"`
	Articles      []*Article `json:"articles"` // Raw fetched items, new and already present alike
	NewCount      int        `json:"new_count"`
	ExistingCount int        `json:"existing_count"`
	StartedAt     time.Time  `json:"started_at"`
	FinishedAt    time.Time  `json:"finished_at"`
}
