package search

import (
	"context"
	"sync"

	"github.com/s0up4200/reelscout/omdb"
)

// fakeAPI implements omdb.API for testing
type fakeAPI struct {
	mu          sync.Mutex
	searchCalls []omdb.SearchParams
	detailCalls []string

	search  func(ctx context.Context, params omdb.SearchParams) (*omdb.SearchResult, error)
	details func(ctx context.Context, id string) (*omdb.Details, error)
}

func (f *fakeAPI) Search(ctx context.Context, params omdb.SearchParams) (*omdb.SearchResult, error) {
	f.mu.Lock()
	f.searchCalls = append(f.searchCalls, params)
	fn := f.search
	f.mu.Unlock()

	if fn == nil {
		return &omdb.SearchResult{}, nil
	}
	return fn(ctx, params)
}

func (f *fakeAPI) GetDetails(ctx context.Context, id string) (*omdb.Details, error) {
	f.mu.Lock()
	f.detailCalls = append(f.detailCalls, id)
	fn := f.details
	f.mu.Unlock()

	if fn == nil {
		return &omdb.Details{Item: omdb.Item{ID: id}}, nil
	}
	return fn(ctx, id)
}

func (f *fakeAPI) searchCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.searchCalls)
}

func (f *fakeAPI) lastSearch() omdb.SearchParams {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.searchCalls[len(f.searchCalls)-1]
}

func (f *fakeAPI) detailCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.detailCalls)
}

// items builds n search matches with ids prefixed by prefix
func items(prefix string, n int) []omdb.Item {
	out := make([]omdb.Item, n)
	for i := range out {
		out[i] = omdb.Item{
			ID:    prefix + string(rune('a'+i)),
			Title: prefix,
			Year:  "2000",
			Kind:  omdb.MediaTypeMovie,
		}
	}
	return out
}
