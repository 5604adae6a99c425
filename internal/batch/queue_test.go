package batch

import (
	"errors"
	"testing"

	"stockstudio/internal/domain"
)

func TestEnqueueKeepsInsertionOrder(t *testing.T) {
	store := NewStore()
	names := []string{"a.jpg", "b.jpg", "c.jpg"}
	for _, n := range names {
		store.Enqueue(n, "", "image/jpeg")
	}
	items := store.Snapshot()
	if len(items) != 3 {
		t.Fatalf("len(items) = %d, want 3", len(items))
	}
	for i, item := range items {
		if item.Filename != names[i] {
			t.Fatalf("items[%d].Filename = %q, want %q", i, item.Filename, names[i])
		}
		if item.Status != domain.StatusPending {
			t.Fatalf("items[%d].Status = %q, want pending", i, item.Status)
		}
		if item.ID == "" {
			t.Fatalf("items[%d] has no ID", i)
		}
	}
}

func TestNextPendingIsFIFO(t *testing.T) {
	store := NewStore()
	first := store.Enqueue("first.jpg", "", "")
	store.Enqueue("second.jpg", "", "")

	next, ok := store.NextPending()
	if !ok || next.ID != first.ID {
		t.Fatalf("NextPending = %+v, want first item", next)
	}
	if err := store.MarkProcessing(first.ID); err != nil {
		t.Fatalf("MarkProcessing returned error: %v", err)
	}
	if err := store.Complete(first.ID, &domain.Metadata{Title: "t"}); err != nil {
		t.Fatalf("Complete returned error: %v", err)
	}
	next, ok = store.NextPending()
	if !ok || next.Filename != "second.jpg" {
		t.Fatalf("NextPending = %+v, want second item", next)
	}
}

func TestMarkProcessingEnforcesSingleInFlight(t *testing.T) {
	store := NewStore()
	a := store.Enqueue("a.jpg", "", "")
	b := store.Enqueue("b.jpg", "", "")
	if err := store.MarkProcessing(a.ID); err != nil {
		t.Fatalf("MarkProcessing(a) returned error: %v", err)
	}
	if err := store.MarkProcessing(b.ID); !errors.Is(err, domain.ErrItemProcessing) {
		t.Fatalf("MarkProcessing(b) = %v, want ErrItemProcessing", err)
	}
	if err := store.Complete(a.ID, &domain.Metadata{Title: "t"}); err != nil {
		t.Fatalf("Complete returned error: %v", err)
	}
	if err := store.MarkProcessing(b.ID); err != nil {
		t.Fatalf("MarkProcessing(b) after settle returned error: %v", err)
	}
}

func TestResultAndErrorAreExclusive(t *testing.T) {
	store := NewStore()
	item := store.Enqueue("a.jpg", "", "")

	if err := store.Fail(item.ID, domain.NewErrorDetail(domain.KindRateLimited, "slow down")); err != nil {
		t.Fatalf("Fail returned error: %v", err)
	}
	got, err := store.Get(item.ID)
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if got.Result != nil || got.ErrorDetail == nil {
		t.Fatalf("after Fail: Result=%v ErrorDetail=%v, want nil/set", got.Result, got.ErrorDetail)
	}

	if err := store.Complete(item.ID, &domain.Metadata{Title: "t", Description: "d", Keywords: []string{"k"}}); err != nil {
		t.Fatalf("Complete returned error: %v", err)
	}
	got, _ = store.Get(item.ID)
	if got.Result == nil || got.ErrorDetail != nil {
		t.Fatalf("after Complete: Result=%v ErrorDetail=%v, want set/nil", got.Result, got.ErrorDetail)
	}
	if got.Status != domain.StatusCompleted {
		t.Fatalf("Status = %q, want completed", got.Status)
	}
}

func TestRetryOnlyFromError(t *testing.T) {
	store := NewStore()
	item := store.Enqueue("a.jpg", "", "")

	if _, err := store.Retry(item.ID); !errors.Is(err, domain.ErrItemNotErrored) {
		t.Fatalf("Retry(pending) = %v, want ErrItemNotErrored", err)
	}
	if err := store.Fail(item.ID, domain.NewErrorDetail(domain.KindNetworkFailure, "boom")); err != nil {
		t.Fatalf("Fail returned error: %v", err)
	}
	retried, err := store.Retry(item.ID)
	if err != nil {
		t.Fatalf("Retry returned error: %v", err)
	}
	if retried.Status != domain.StatusPending || retried.ErrorDetail != nil {
		t.Fatalf("after Retry: Status=%q ErrorDetail=%v, want pending/nil", retried.Status, retried.ErrorDetail)
	}
	if _, err := store.Retry("missing"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("Retry(missing) = %v, want ErrNotFound", err)
	}
}

func TestRetryKeepsQueuePosition(t *testing.T) {
	store := NewStore()
	a := store.Enqueue("a.jpg", "", "")
	store.Enqueue("b.jpg", "", "")
	if err := store.Fail(a.ID, domain.NewErrorDetail(domain.KindNetworkFailure, "boom")); err != nil {
		t.Fatalf("Fail returned error: %v", err)
	}
	if _, err := store.Retry(a.ID); err != nil {
		t.Fatalf("Retry returned error: %v", err)
	}
	next, ok := store.NextPending()
	if !ok || next.ID != a.ID {
		t.Fatalf("NextPending = %+v, want retried item first", next)
	}
}

func TestRemoveGuardsInFlight(t *testing.T) {
	store := NewStore()
	a := store.Enqueue("a.jpg", "", "")
	b := store.Enqueue("b.jpg", "", "")
	if err := store.MarkProcessing(a.ID); err != nil {
		t.Fatalf("MarkProcessing returned error: %v", err)
	}
	if _, err := store.Remove(a.ID); !errors.Is(err, domain.ErrItemProcessing) {
		t.Fatalf("Remove(processing) = %v, want ErrItemProcessing", err)
	}
	if _, err := store.ClearAll(); !errors.Is(err, domain.ErrItemProcessing) {
		t.Fatalf("ClearAll with in-flight = %v, want ErrItemProcessing", err)
	}
	if _, err := store.Remove(b.ID); err != nil {
		t.Fatalf("Remove(pending) returned error: %v", err)
	}
	if store.Len() != 1 {
		t.Fatalf("Len = %d, want 1", store.Len())
	}
	if err := store.Complete(a.ID, &domain.Metadata{Title: "t"}); err != nil {
		t.Fatalf("Complete returned error: %v", err)
	}
	removed, err := store.ClearAll()
	if err != nil {
		t.Fatalf("ClearAll returned error: %v", err)
	}
	if len(removed) != 1 || store.Len() != 0 {
		t.Fatalf("ClearAll removed %d, Len = %d, want 1 and 0", len(removed), store.Len())
	}
}

func TestSnapshotIsDeepCopy(t *testing.T) {
	store := NewStore()
	item := store.Enqueue("a.jpg", "", "")
	if err := store.Complete(item.ID, &domain.Metadata{Title: "t", Keywords: []string{"k1", "k2"}}); err != nil {
		t.Fatalf("Complete returned error: %v", err)
	}
	snap := store.Snapshot()
	snap[0].Result.Title = "mutated"
	snap[0].Result.Keywords[0] = "mutated"

	got, _ := store.Get(item.ID)
	if got.Result.Title != "t" || got.Result.Keywords[0] != "k1" {
		t.Fatalf("stored item leaked through snapshot: %+v", got.Result)
	}
}

func TestCounts(t *testing.T) {
	store := NewStore()
	a := store.Enqueue("a.jpg", "", "")
	b := store.Enqueue("b.jpg", "", "")
	store.Enqueue("c.jpg", "", "")
	if err := store.Complete(a.ID, &domain.Metadata{Title: "t"}); err != nil {
		t.Fatalf("Complete returned error: %v", err)
	}
	if err := store.Fail(b.ID, domain.NewErrorDetail(domain.KindAuthFailure, "bad key")); err != nil {
		t.Fatalf("Fail returned error: %v", err)
	}
	counts := store.Counts()
	if counts[domain.StatusCompleted] != 1 || counts[domain.StatusError] != 1 || counts[domain.StatusPending] != 1 {
		t.Fatalf("Counts = %v, want one of each", counts)
	}
	if store.CompletedCount() != 1 || store.PendingCount() != 1 {
		t.Fatalf("CompletedCount/PendingCount = %d/%d, want 1/1", store.CompletedCount(), store.PendingCount())
	}
}
