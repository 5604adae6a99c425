// Package batch implements the metadata pipeline core: an in-memory FIFO
// queue of work items, a sequential processor driving a completion provider,
// and CSV export of the finished results.
package batch

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"stockstudio/internal/domain"
)

// Store is the in-memory work queue. Items keep their insertion order for the
// whole session; processing, retry and completion mutate items in place and
// never reorder. All methods are safe for concurrent use.
type Store struct {
	mu    sync.RWMutex
	items []*domain.WorkItem
	index map[string]*domain.WorkItem
	now   func() time.Time
}

func NewStore() *Store {
	return &Store{
		index: make(map[string]*domain.WorkItem),
		now:   time.Now,
	}
}

// Enqueue appends a new pending item and returns its snapshot.
func (s *Store) Enqueue(filename, storageKey, mimeType string) domain.WorkItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	item := &domain.WorkItem{
		ID:         uuid.NewString(),
		Filename:   filename,
		StorageKey: storageKey,
		MimeType:   mimeType,
		Status:     domain.StatusPending,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	s.items = append(s.items, item)
	s.index[item.ID] = item
	return item.Clone()
}

// Get returns a snapshot of one item.
func (s *Store) Get(id string) (domain.WorkItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	item, ok := s.index[id]
	if !ok {
		return domain.WorkItem{}, domain.ErrNotFound
	}
	return item.Clone(), nil
}

// Snapshot returns deep copies of all items in insertion order.
func (s *Store) Snapshot() []domain.WorkItem {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.WorkItem, 0, len(s.items))
	for _, item := range s.items {
		out = append(out, item.Clone())
	}
	return out
}

// Remove deletes one item. The in-flight item cannot be removed.
func (s *Store) Remove(id string) (domain.WorkItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	item, ok := s.index[id]
	if !ok {
		return domain.WorkItem{}, domain.ErrNotFound
	}
	if item.Status == domain.StatusProcessing {
		return domain.WorkItem{}, domain.ErrItemProcessing
	}
	delete(s.index, id)
	for i, it := range s.items {
		if it.ID == id {
			s.items = append(s.items[:i], s.items[i+1:]...)
			break
		}
	}
	return item.Clone(), nil
}

// ClearAll empties the queue and returns the removed items. It refuses while
// any item is processing.
func (s *Store) ClearAll() ([]domain.WorkItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, item := range s.items {
		if item.Status == domain.StatusProcessing {
			return nil, domain.ErrItemProcessing
		}
	}
	removed := make([]domain.WorkItem, 0, len(s.items))
	for _, item := range s.items {
		removed = append(removed, item.Clone())
	}
	s.items = nil
	s.index = make(map[string]*domain.WorkItem)
	return removed, nil
}

// Retry moves an errored item back to pending, clearing its error detail. The
// item keeps its queue position.
func (s *Store) Retry(id string) (domain.WorkItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	item, ok := s.index[id]
	if !ok {
		return domain.WorkItem{}, domain.ErrNotFound
	}
	if item.Status != domain.StatusError {
		return domain.WorkItem{}, domain.ErrItemNotErrored
	}
	item.Status = domain.StatusPending
	item.ErrorDetail = nil
	item.UpdatedAt = s.now()
	return item.Clone(), nil
}

// NextPending returns a snapshot of the first pending item in queue order.
func (s *Store) NextPending() (domain.WorkItem, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, item := range s.items {
		if item.Status == domain.StatusPending {
			return item.Clone(), true
		}
	}
	return domain.WorkItem{}, false
}

// MarkProcessing transitions a pending item to processing. It enforces the
// single in-flight rule: at most one item may be processing at any moment.
func (s *Store) MarkProcessing(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, item := range s.items {
		if item.Status == domain.StatusProcessing {
			return domain.ErrItemProcessing
		}
	}
	item, ok := s.index[id]
	if !ok {
		return domain.ErrNotFound
	}
	if item.Status != domain.StatusPending {
		return domain.ErrItemNotPending
	}
	item.Status = domain.StatusProcessing
	item.UpdatedAt = s.now()
	return nil
}

// Complete stores a successful result, clearing any prior error detail.
func (s *Store) Complete(id string, result *domain.Metadata) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	item, ok := s.index[id]
	if !ok {
		return domain.ErrNotFound
	}
	item.Status = domain.StatusCompleted
	item.Result = result.Clone()
	item.ErrorDetail = nil
	item.UpdatedAt = s.now()
	return nil
}

// Fail stores a categorized error, clearing any prior result.
func (s *Store) Fail(id string, detail domain.ErrorDetail) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	item, ok := s.index[id]
	if !ok {
		return domain.ErrNotFound
	}
	item.Status = domain.StatusError
	item.Result = nil
	item.ErrorDetail = &detail
	item.UpdatedAt = s.now()
	return nil
}

// ResetInFlight returns the processing item, if any, to pending. Called when
// a run stops between dispatch and settlement.
func (s *Store) ResetInFlight() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, item := range s.items {
		if item.Status == domain.StatusProcessing {
			item.Status = domain.StatusPending
			item.UpdatedAt = s.now()
		}
	}
}

// Counts reports how many items sit in each status.
func (s *Store) Counts() map[domain.ItemStatus]int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	counts := make(map[domain.ItemStatus]int, 4)
	for _, item := range s.items {
		counts[item.Status]++
	}
	return counts
}

// Len returns the total number of queued items.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

// PendingCount returns the number of items still awaiting processing.
func (s *Store) PendingCount() int {
	return s.Counts()[domain.StatusPending]
}

// CompletedCount returns the number of items holding a result.
func (s *Store) CompletedCount() int {
	return s.Counts()[domain.StatusCompleted]
}
