// Package catalog integrates the external book catalog used for search
// and import. Handlers depend on the Client interface so the external
// service can be swapped or mocked; the production implementation talks
// to the Google Books API.
package catalog

import (
	"context"
	"errors"
)

// ErrVolumeNotFound signals that the catalog has no record for the
// requested volume ID.
var ErrVolumeNotFound = errors.New("volume not found")

// SearchResult is one catalog entry returned by a search query.
type SearchResult struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Authors     []string `json:"authors"`
	Description string   `json:"description"`
	CoverURL    string   `json:"coverUrl"`
}

// Volume is the detail record for a single catalog entry.
type Volume struct {
	ID          string
	Title       string
	Authors     []string
	Description string
	CoverURL    string
}

// Client searches the external catalog and fetches single volumes.
type Client interface {
	Search(ctx context.Context, query string) ([]SearchResult, error)
	FetchVolume(ctx context.Context, id string) (*Volume, error)
}
