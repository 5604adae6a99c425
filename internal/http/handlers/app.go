// Package handlers exposes the dashboard's HTTP surface over the batch
// pipeline, trend discovery and CSV export.
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"

	"stockstudio/internal/analytics"
	"stockstudio/internal/batch"
	"stockstudio/internal/domain"
	"stockstudio/internal/infra"
	"stockstudio/internal/middleware"
	"stockstudio/internal/providers/insight"
)

// AssetStager stages uploaded asset bytes and returns the absolute path of
// the staged file.
type AssetStager interface {
	Write(ctx context.Context, key string, data []byte) (string, error)
}

// App is the handler container. Files and Usage are optional; Scout falls
// back to nil-guarded 503s when trend discovery is not wired.
type App struct {
	Log       infra.Logger
	Queue     *batch.Store
	Processor *batch.Processor
	Files     AssetStager
	Scout     insight.Scout
	Usage     *analytics.Recorder
	Provider  string

	// DefaultDelayMS seeds the inter-item delay when a start request leaves
	// it unset.
	DefaultDelayMS int

	mu           sync.Mutex
	lastPlatform domain.Platform
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (a *App) error(w http.ResponseWriter, code int, slug, message string) {
	a.json(w, code, map[string]any{"error": slug, "message": message})
}

// queueError maps store and processor sentinels onto HTTP responses.
func (a *App) queueError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		a.error(w, http.StatusNotFound, "not_found", "item not found")
	case errors.Is(err, domain.ErrItemProcessing):
		a.error(w, http.StatusConflict, "item_processing", "item is currently processing")
	case errors.Is(err, domain.ErrItemNotErrored):
		a.error(w, http.StatusConflict, "not_errored", "only errored items can be retried")
	case errors.Is(err, domain.ErrRunActive):
		a.error(w, http.StatusConflict, "run_active", "a batch run is already active")
	case errors.Is(err, domain.ErrNoPendingItems):
		a.error(w, http.StatusConflict, "no_pending_items", "queue has no pending items")
	case errors.Is(err, domain.ErrNoGenerator):
		a.error(w, http.StatusServiceUnavailable, "no_generator", "no metadata provider configured")
	case errors.Is(err, domain.ErrInvalidConfig):
		a.error(w, http.StatusBadRequest, "invalid_config", err.Error())
	default:
		a.error(w, http.StatusInternalServerError, "internal", "unexpected error")
	}
}

func (a *App) recordUsage(r *http.Request, eventType string, success bool, props map[string]any) {
	if !a.Usage.Enabled() {
		return
	}
	if props == nil {
		props = map[string]any{}
	}
	if country := middleware.CountryFromContext(r.Context()); country != "" {
		props["country"] = country
	}
	a.Usage.Record(r.Context(), analytics.Event{
		RequestID:  middleware.RequestIDFromContext(r.Context()),
		Type:       eventType,
		Success:    success,
		Properties: props,
	})
}

func (a *App) setLastPlatform(p domain.Platform) {
	a.mu.Lock()
	a.lastPlatform = p
	a.mu.Unlock()
}

func (a *App) exportPlatform() domain.Platform {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.lastPlatform == "" {
		return domain.PlatformAll
	}
	return a.lastPlatform
}
