package rest

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/heartmarshall/inflective/internal/domain"
)

const probeTimeout = 3 * time.Second

// Component states reported by the health endpoints.
const (
	statusOK    = "ok"
	statusDown  = "down"
	statusEmpty = "empty"
)

type dbPinger interface {
	Ping(ctx context.Context) error
}

type installedLister interface {
	ListInstalled(ctx context.Context) ([]domain.LanguageRecord, error)
}

// HealthHandler serves health check endpoints.
type HealthHandler struct {
	db      dbPinger
	langs   installedLister
	version string
	log     *slog.Logger
}

// NewHealthHandler creates a HealthHandler.
func NewHealthHandler(db dbPinger, langs installedLister, version string, logger *slog.Logger) *HealthHandler {
	return &HealthHandler{
		db:      db,
		langs:   langs,
		version: version,
		log:     logger.With("handler", "health"),
	}
}

// HealthResponse is the JSON response for /health, /ready and /live.
type HealthResponse struct {
	Status     string                `json:"status"`
	Version    string                `json:"version,omitempty"`
	Components map[string]CompStatus `json:"components,omitempty"`
	Timestamp  time.Time             `json:"timestamp"`
}

// CompStatus is the status of an individual component.
type CompStatus struct {
	Status    string   `json:"status"`
	Latency   string   `json:"latency,omitempty"`
	Installed []string `json:"installed,omitempty"`
}

// Live is the liveness probe. Always returns 200.
func (h *HealthHandler) Live(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{Status: statusOK, Timestamp: time.Now()})
}

// Ready is the readiness probe: 200 when the database answers, 503 otherwise.
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), probeTimeout)
	defer cancel()

	if err := h.db.Ping(ctx); err != nil {
		h.log.WarnContext(ctx, "readiness ping failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusServiceUnavailable, HealthResponse{Status: statusDown, Timestamp: time.Now()})
		return
	}
	writeJSON(w, http.StatusOK, HealthResponse{Status: statusOK, Timestamp: time.Now()})
}

// Health is the full check: database latency plus the installed dictionaries.
// A server with nothing installed is healthy but reports the dictionary
// component as empty.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), probeTimeout)
	defer cancel()

	components := map[string]CompStatus{
		"database":   h.database(ctx),
		"dictionary": h.dictionary(ctx),
	}

	overall, status := statusOK, http.StatusOK
	for _, c := range components {
		if c.Status == statusDown {
			overall, status = statusDown, http.StatusServiceUnavailable
		}
	}

	writeJSON(w, status, HealthResponse{
		Status:     overall,
		Version:    h.version,
		Components: components,
		Timestamp:  time.Now(),
	})
}

func (h *HealthHandler) database(ctx context.Context) CompStatus {
	start := time.Now()
	if err := h.db.Ping(ctx); err != nil {
		return CompStatus{Status: statusDown}
	}
	return CompStatus{Status: statusOK, Latency: time.Since(start).String()}
}

func (h *HealthHandler) dictionary(ctx context.Context) CompStatus {
	recs, err := h.langs.ListInstalled(ctx)
	if err != nil {
		h.log.WarnContext(ctx, "list installed languages", slog.String("error", err.Error()))
		return CompStatus{Status: statusDown}
	}
	if len(recs) == 0 {
		return CompStatus{Status: statusEmpty}
	}
	codes := make([]string, len(recs))
	for i, rec := range recs {
		codes[i] = rec.Code
	}
	return CompStatus{Status: statusOK, Installed: codes}
}
