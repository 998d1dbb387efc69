package handler

import (
	"net/http"
	"time"
)

type readiness interface {
	Err() error
}

type HealthHandler struct {
	ledger  readiness
	version string
}

func NewHealthHandler(ledger readiness, version string) *HealthHandler {
	return &HealthHandler{ledger: ledger, version: version}
}

func (h *HealthHandler) Liveness(w http.ResponseWriter, r *http.Request) {
	RespondJSON(w, http.StatusOK, map[string]string{
		"status":    "ok",
		"version":   h.version,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// Readiness reports 503 until the ledger snapshot has loaded, and keeps
// reporting it with the load error if loading failed.
func (h *HealthHandler) Readiness(w http.ResponseWriter, r *http.Request) {
	check := map[string]string{"ledger": "ok"}
	status := http.StatusOK

	if err := h.ledger.Err(); err != nil {
		check["ledger"] = appErrorFor(err).Code
		check["error"] = err.Error()
		status = http.StatusServiceUnavailable
	}

	overall := "ok"
	if status != http.StatusOK {
		overall = "down"
	}

	RespondJSON(w, status, map[string]any{
		"status":    overall,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"checks":    check,
	})
}
