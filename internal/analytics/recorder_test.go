package analytics

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rs/zerolog"
)

type stubExecutor struct {
	err  error
	exec struct {
		query string
		args  []any
	}
}

func (s *stubExecutor) Exec(ctx context.Context, query string, args ...any) (pgconn.CommandTag, error) {
	s.exec.query = query
	s.exec.args = args
	return pgconn.CommandTag{}, s.err
}

func (s *stubExecutor) QueryRow(ctx context.Context, query string, args ...any) pgx.Row {
	return nil
}

func (s *stubExecutor) Query(ctx context.Context, query string, args ...any) (pgx.Rows, error) {
	return nil, errors.New("not implemented")
}

func TestRecordInsertsEvent(t *testing.T) {
	exec := &stubExecutor{}
	rec := NewRecorder(exec, zerolog.Nop())
	rec.Record(context.Background(), Event{
		RequestID: "req-1",
		Type:      EventBatchStart,
		Success:   true,
		Latency:   1500 * time.Millisecond,
		Properties: map[string]any{
			"pending": 3,
		},
	})
	if !strings.Contains(exec.exec.query, "usage_events") {
		t.Fatalf("query = %q, want usage_events insert", exec.exec.query)
	}
	if len(exec.exec.args) != 5 {
		t.Fatalf("got %d args, want 5", len(exec.exec.args))
	}
	if exec.exec.args[1] != EventBatchStart {
		t.Fatalf("event type = %v, want %q", exec.exec.args[1], EventBatchStart)
	}
	if v, ok := exec.exec.args[3].(int64); !ok || v != 1500 {
		t.Fatalf("latency arg = %T %v, want int64 1500", exec.exec.args[3], exec.exec.args[3])
	}
	if props, ok := exec.exec.args[4].(string); !ok || !strings.Contains(props, `"pending":3`) {
		t.Fatalf("properties arg = %v, want pending field", exec.exec.args[4])
	}
}

func TestRecordDisabledWithoutExecutor(t *testing.T) {
	rec := NewRecorder(nil, zerolog.Nop())
	if rec.Enabled() {
		t.Fatalf("Enabled() = true without executor")
	}
	rec.Record(context.Background(), Event{Type: EventCSVExport})

	var nilRec *Recorder
	if nilRec.Enabled() {
		t.Fatalf("nil recorder reports enabled")
	}
	nilRec.Record(context.Background(), Event{Type: EventCSVExport})
}

func TestRecordSwallowsInsertFailure(t *testing.T) {
	rec := NewRecorder(&stubExecutor{err: errors.New("down")}, zerolog.Nop())
	rec.Record(context.Background(), Event{Type: EventTrendFetch})
}
