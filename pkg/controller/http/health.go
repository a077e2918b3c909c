package http

import (
	"net/http"

	"github.com/secmon-lab/techinsights/pkg/utils/safe"
)

// healthHandler reports liveness
func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	safe.Write(r.Context(), w, []byte(`{"status":"ok"}`))
}
