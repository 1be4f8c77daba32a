package scraper

import (
	"context"
	"time"
)

// Fetcher retrieves one page over HTTP.
type Fetcher interface {
	Fetch(ctx context.Context, rawURL string) (Page, error)
}

// Renderer produces a DOM snapshot of a page with JavaScript executed.
type Renderer interface {
	Render(ctx context.Context, rawURL string) (Page, error)
}

// Archiver persists raw page bodies. Implementations must treat the store as
// write-only; archived pages are never read back by the pipeline.
type Archiver interface {
	Save(ctx context.Context, objectName string, data []byte) error
}

// Hasher computes digests used to key archived page bodies.
type Hasher interface {
	Hash(data []byte) (string, error)
}

// Clock returns the current time (useful for testing).
type Clock interface {
	Now() time.Time
}
