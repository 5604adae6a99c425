package metadata

import (
	"context"

	"stockstudio/internal/domain"
)

// Request carries one asset plus the run configuration snapshot to a
// provider. Data is nil when only the filename is known; providers then
// infer metadata from the name alone.
type Request struct {
	Filename string
	MimeType string
	Data     []byte
	Config   domain.BatchConfig
}

// Generator produces commercial microstock metadata for a single asset. It is
// the pipeline's only external dependency and is treated as an opaque call
// that either returns structured metadata or fails with a categorized error.
type Generator interface {
	Generate(ctx context.Context, req Request) (*domain.Metadata, error)
	Name() string
}
