// Package archive defines blob stores for raw listing HTML. Implementations
// exist for Google Cloud Storage, the local filesystem, and process memory;
// this abstraction keeps the scraper independent of where snapshots land.
package archive

import "context"

// NoOpStore discards every snapshot. It is useful for dry runs where pages
// are fetched and parsed but raw HTML is not retained.
type NoOpStore struct{}

// Save for NoOpStore does nothing and always returns nil.
func (n *NoOpStore) Save(_ context.Context, _ string, _ []byte) error {
	return nil
}
