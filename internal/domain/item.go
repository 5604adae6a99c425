package domain

import "time"

// ItemStatus enumerates work item lifecycle states.
type ItemStatus string

const (
	StatusPending    ItemStatus = "pending"
	StatusProcessing ItemStatus = "processing"
	StatusCompleted  ItemStatus = "completed"
	StatusError      ItemStatus = "error"
)

// Metadata is the structured result returned by a completion provider for one
// asset. Keywords are ordered by relevance and intentionally not deduplicated.
type Metadata struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Keywords    []string `json:"keywords"`
}

// Clone returns a deep copy so callers can hand out snapshots without
// aliasing the keyword slice.
func (m *Metadata) Clone() *Metadata {
	if m == nil {
		return nil
	}
	out := &Metadata{Title: m.Title, Description: m.Description}
	if len(m.Keywords) > 0 {
		out.Keywords = append([]string(nil), m.Keywords...)
	}
	return out
}

// WorkItem is one queued asset awaiting metadata generation.
//
// Exactly one of Result/ErrorDetail is set, and only while Status is
// StatusCompleted/StatusError respectively. Status transitions beyond
// enqueue and retry are driven by the processor only.
type WorkItem struct {
	ID          string       `json:"id"`
	Filename    string       `json:"filename"`
	StorageKey  string       `json:"storage_key,omitempty"`
	MimeType    string       `json:"mime_type,omitempty"`
	Status      ItemStatus   `json:"status"`
	Result      *Metadata    `json:"result,omitempty"`
	ErrorDetail *ErrorDetail `json:"error,omitempty"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

// Clone returns a deep copy of the item.
func (w WorkItem) Clone() WorkItem {
	out := w
	out.Result = w.Result.Clone()
	if w.ErrorDetail != nil {
		detail := *w.ErrorDetail
		out.ErrorDetail = &detail
	}
	return out
}
