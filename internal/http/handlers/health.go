package handlers

import (
	"context"
	"net/http"
	"time"
)

// pinger is anything with a connectivity probe, e.g. *pgxpool.Pool.
type pinger interface {
	Ping(ctx context.Context) error
}

// Health reports process liveness and, when a database handle is given,
// storage reachability.
func Health(db pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		response := map[string]string{"status": "ok"}
		if db != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if err := db.Ping(ctx); err != nil {
				response["status"] = "degraded"
				response["database"] = "unreachable"
				writeJSON(w, http.StatusServiceUnavailable, response)
				return
			}
			response["database"] = "ok"
		}
		writeJSON(w, http.StatusOK, response)
	}
}
