package handlers

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"stockstudio/internal/analytics"
	"stockstudio/internal/batch"
	"stockstudio/internal/domain"
)

const maxUploadBytes = 32 << 20

type enqueueRequest struct {
	Filenames []string `json:"filenames"`
}

// EnqueueItems accepts either a multipart upload (staged to the file store)
// or a JSON list of filenames for name-only generation.
func (a *App) EnqueueItems(w http.ResponseWriter, r *http.Request) {
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		a.enqueueUploads(w, r)
		return
	}
	var req enqueueRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	var items []domain.WorkItem
	for _, name := range req.Filenames {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		items = append(items, a.Queue.Enqueue(name, "", ""))
	}
	if len(items) == 0 {
		a.error(w, http.StatusBadRequest, "bad_request", "no filenames provided")
		return
	}
	a.json(w, http.StatusCreated, map[string]any{"items": items})
}

func (a *App) enqueueUploads(w http.ResponseWriter, r *http.Request) {
	if a.Files == nil {
		a.error(w, http.StatusServiceUnavailable, "no_storage", "upload staging is not configured")
		return
	}
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid multipart payload")
		return
	}
	files := r.MultipartForm.File["files"]
	if len(files) == 0 {
		a.error(w, http.StatusBadRequest, "bad_request", "no files provided")
		return
	}
	var items []domain.WorkItem
	for _, header := range files {
		file, err := header.Open()
		if err != nil {
			a.error(w, http.StatusBadRequest, "bad_request", "unreadable upload")
			return
		}
		data, err := io.ReadAll(file)
		_ = file.Close()
		if err != nil {
			a.error(w, http.StatusBadRequest, "bad_request", "unreadable upload")
			return
		}
		name := filepath.Base(header.Filename)
		key := fmt.Sprintf("uploads/%s-%s", uuid.NewString(), name)
		if _, err := a.Files.Write(r.Context(), key, data); err != nil {
			a.Log.Error().Err(err).Str("filename", name).Msg("stage upload")
			a.error(w, http.StatusInternalServerError, "internal", "failed to stage upload")
			return
		}
		mime := header.Header.Get("Content-Type")
		items = append(items, a.Queue.Enqueue(name, key, mime))
	}
	a.json(w, http.StatusCreated, map[string]any{"items": items})
}

// BatchState reports the queue snapshot, run flag and per-status counts.
func (a *App) BatchState(w http.ResponseWriter, r *http.Request) {
	counts := a.Queue.Counts()
	a.json(w, http.StatusOK, map[string]any{
		"running": a.Processor.Running(),
		"items":   a.Queue.Snapshot(),
		"counts": map[string]int{
			"pending":    counts[domain.StatusPending],
			"processing": counts[domain.StatusProcessing],
			"completed":  counts[domain.StatusCompleted],
			"error":      counts[domain.StatusError],
		},
	})
}

func (a *App) RemoveItem(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	item, err := a.Queue.Remove(id)
	if err != nil {
		a.queueError(w, err)
		return
	}
	a.json(w, http.StatusOK, map[string]any{"removed": item.ID})
}

func (a *App) RetryItem(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	item, err := a.Queue.Retry(id)
	if err != nil {
		a.queueError(w, err)
		return
	}
	a.json(w, http.StatusOK, map[string]any{"item": item})
}

func (a *App) ClearItems(w http.ResponseWriter, r *http.Request) {
	removed, err := a.Queue.ClearAll()
	if err != nil {
		a.queueError(w, err)
		return
	}
	a.json(w, http.StatusOK, map[string]any{"removed": len(removed)})
}

// StartBatch validates the run configuration and launches a run.
func (a *App) StartBatch(w http.ResponseWriter, r *http.Request) {
	var cfg domain.BatchConfig
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&cfg); err != nil {
			a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
			return
		}
	}
	if cfg.ItemDelayMS == 0 && a.DefaultDelayMS > 0 {
		cfg.ItemDelayMS = a.DefaultDelayMS
	}
	if err := cfg.Normalize(); err != nil {
		a.queueError(w, err)
		return
	}
	if err := a.Processor.Start(cfg); err != nil {
		a.queueError(w, err)
		return
	}
	a.setLastPlatform(cfg.Platform)
	a.recordUsage(r, analytics.EventBatchStart, true, map[string]any{
		"platform": string(cfg.Platform),
		"pending":  a.Queue.PendingCount(),
	})
	a.json(w, http.StatusAccepted, map[string]any{
		"running": true,
		"config":  cfg,
	})
}

func (a *App) StopBatch(w http.ResponseWriter, r *http.Request) {
	a.Processor.Stop()
	a.json(w, http.StatusAccepted, map[string]any{"stopping": true})
}

// ExportCSV streams the completed results as a CSV attachment. The export
// reads queue state without mutating it.
func (a *App) ExportCSV(w http.ResponseWriter, r *http.Request) {
	if a.Queue.CompletedCount() == 0 {
		a.error(w, http.StatusConflict, "nothing_to_export", "no completed items to export")
		return
	}
	csv := batch.ExportCSV(a.Queue.Snapshot())
	filename := batch.ExportFilename(a.exportPlatform(), time.Now())
	a.recordUsage(r, analytics.EventCSVExport, true, map[string]any{
		"rows": a.Queue.CompletedCount(),
	})
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(csv))
}
