package omdb

import (
	"context"
)

// API defines the interface for OMDb operations
type API interface {
	// Search runs a title search and returns one page of matches
	Search(ctx context.Context, params SearchParams) (*SearchResult, error)

	// GetDetails retrieves the full record for a single IMDb id
	GetDetails(ctx context.Context, id string) (*Details, error)
}
