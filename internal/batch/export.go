package batch

import (
	"fmt"
	"strings"
	"time"

	"stockstudio/internal/domain"
)

// ExportCSV renders every completed item in queue order. Pending, processing
// and errored items are skipped; exporting mutates nothing, so repeated calls
// over the same queue state yield identical bytes.
//
// The format matches what marketplace upload tools ingest: a fixed four-column
// header, metadata fields always quoted with embedded quotes doubled, and the
// filename quoted only when it needs to be.
func ExportCSV(items []domain.WorkItem) string {
	var sb strings.Builder
	sb.WriteString("Filename,Title,Description,Keywords\n")
	for _, item := range items {
		if item.Status != domain.StatusCompleted || item.Result == nil {
			continue
		}
		m := item.Result
		sb.WriteString(csvField(item.Filename))
		sb.WriteByte(',')
		sb.WriteString(quote(m.Title))
		sb.WriteByte(',')
		sb.WriteString(quote(m.Description))
		sb.WriteByte(',')
		sb.WriteString(quote(strings.Join(m.Keywords, ", ")))
		sb.WriteByte('\n')
	}
	return sb.String()
}

// ExportFilename names the attachment after the platform profile and the
// export date.
func ExportFilename(platform domain.Platform, now time.Time) string {
	return fmt.Sprintf("metadata_%s_%s.csv", platform, now.Format("2006-01-02"))
}

// quote wraps a value in double quotes, doubling embedded quotes.
func quote(value string) string {
	return `"` + strings.ReplaceAll(value, `"`, `""`) + `"`
}

// csvField quotes only when the value contains a delimiter, quote or newline.
func csvField(value string) string {
	if strings.ContainsAny(value, "\",\n\r") {
		return quote(value)
	}
	return value
}
