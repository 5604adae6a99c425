// Package analytics persists usage events when Postgres is configured. The
// recorder is fire-and-forget: a failed insert is logged and never surfaces
// to the request that triggered it.
package analytics

import (
	"context"
	"encoding/json"
	"time"

	"stockstudio/internal/infra"
	"stockstudio/internal/sqlinline"
)

const (
	EventBatchStart = "BATCH_START"
	EventCSVExport  = "CSV_EXPORT"
	EventTrendFetch = "TREND_FETCH"
)

// Event is one usage record.
type Event struct {
	RequestID  string
	Type       string
	Success    bool
	Latency    time.Duration
	Properties map[string]any
}

// Recorder inserts usage events through the shared SQL runner. A nil Recorder
// or a Recorder without an executor drops events silently, which is the
// behavior for deployments running without a database.
type Recorder struct {
	sql infra.SQLExecutor
	log infra.Logger
}

func NewRecorder(sql infra.SQLExecutor, log infra.Logger) *Recorder {
	return &Recorder{sql: sql, log: log}
}

// Enabled reports whether events actually reach storage.
func (r *Recorder) Enabled() bool {
	return r != nil && r.sql != nil
}

// Record inserts one event.
func (r *Recorder) Record(ctx context.Context, ev Event) {
	if !r.Enabled() {
		return
	}
	props := ev.Properties
	if props == nil {
		props = map[string]any{}
	}
	raw, err := json.Marshal(props)
	if err != nil {
		r.log.Warn().Err(err).Str("event_type", ev.Type).Msg("encode usage event properties")
		return
	}
	_, err = r.sql.Exec(ctx, sqlinline.QInsertUsageEvent,
		ev.RequestID,
		ev.Type,
		ev.Success,
		ev.Latency.Milliseconds(),
		string(raw),
	)
	if err != nil {
		r.log.Warn().Err(err).Str("event_type", ev.Type).Msg("insert usage event")
	}
}
