package session

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/s0up4200/reelscout/filter"
	"github.com/s0up4200/reelscout/omdb"
	"github.com/s0up4200/reelscout/search"
)

// fakeAPI serves a fixed catalogue of pages and details
type fakeAPI struct {
	mu          sync.Mutex
	searchCalls []omdb.SearchParams
	detailCalls []string

	total      int
	searchErr  error
	detailErrs []error
}

func (f *fakeAPI) Search(_ context.Context, params omdb.SearchParams) (*omdb.SearchResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.searchCalls = append(f.searchCalls, params)

	if f.searchErr != nil {
		return nil, f.searchErr
	}

	var matches []omdb.Item
	first := (params.Page - 1) * omdb.PageSize
	for i := first; i < first+omdb.PageSize && i < f.total; i++ {
		kind := omdb.MediaTypeMovie
		if i%2 == 1 {
			kind = omdb.MediaTypeSeries
		}
		matches = append(matches, omdb.Item{
			ID:    fmt.Sprintf("tt%07d", i+1),
			Title: fmt.Sprintf("%s %d", params.Query, i+1),
			Year:  "2005",
			Kind:  kind,
		})
	}
	return &omdb.SearchResult{Items: matches, TotalResults: f.total}, nil
}

func (f *fakeAPI) GetDetails(_ context.Context, id string) (*omdb.Details, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.detailCalls = append(f.detailCalls, id)

	if len(f.detailErrs) > 0 {
		err := f.detailErrs[0]
		f.detailErrs = f.detailErrs[1:]
		if err != nil {
			return nil, err
		}
	}
	return &omdb.Details{
		Item:     omdb.Item{ID: id, Title: "Batman Begins", Year: "2005", Kind: omdb.MediaTypeMovie},
		Director: "Christopher Nolan",
	}, nil
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

func newTestSession(api omdb.API, opts ...Option) (*Session, *bytes.Buffer) {
	out := &bytes.Buffer{}
	opts = append([]Option{WithOutput(out), WithInput(strings.NewReader(""))}, opts...)
	return New(api, zerolog.Nop(), opts...), out
}

func TestSearchCommand(t *testing.T) {
	api := &fakeAPI{total: 58}
	s, out := newTestSession(api)
	ctx := context.Background()

	quit := s.Execute(ctx, "search Batman")
	assert.False(t, quit)

	state := s.State()
	assert.Equal(t, search.StatusSuccess, state.Status)
	assert.Len(t, state.Items, 10)
	assert.Equal(t, 6, state.Pagination.TotalPages)

	text := out.String()
	assert.Contains(t, text, `Searching for "Batman" (page 1)...`)
	assert.Contains(t, text, "Batman 1")
	assert.Contains(t, text, "Showing page 1 of 6 (58 results)")
}

func TestSearchCommandRequiresQuery(t *testing.T) {
	api := &fakeAPI{total: 5}
	s, out := newTestSession(api)

	s.Execute(context.Background(), "search   ")

	assert.Zero(t, api.searchCount())
	assert.Contains(t, out.String(), "Please enter a search term")
}

func TestFilterCommands(t *testing.T) {
	t.Run("without query only stores filters", func(t *testing.T) {
		api := &fakeAPI{total: 5}
		s, out := newTestSession(api)

		s.Execute(context.Background(), "type series")
		s.Execute(context.Background(), "year 1999")

		assert.Zero(t, api.searchCount())
		assert.Equal(t, omdb.MediaTypeSeries, s.State().Filters.Type)
		assert.Equal(t, "1999", s.State().Filters.Year)
		assert.Contains(t, out.String(), "Filters updated")
	})

	t.Run("with query searches from page one", func(t *testing.T) {
		api := &fakeAPI{total: 58}
		s, _ := newTestSession(api)
		ctx := context.Background()

		s.Execute(ctx, "search Batman")
		s.Execute(ctx, "page 3")
		s.Execute(ctx, "type movie")

		params := api.lastSearch()
		assert.Equal(t, omdb.MediaTypeMovie, params.Type)
		assert.Equal(t, 1, params.Page)

		s.Execute(ctx, "year -")
		assert.Empty(t, api.lastSearch().Year)
	})

	t.Run("rejects bad input", func(t *testing.T) {
		api := &fakeAPI{total: 5}
		s, out := newTestSession(api)

		for _, line := range []string{"type documentary", "year 99", "year -123", "year +123", "year 19a9"} {
			s.Execute(context.Background(), line)
		}

		assert.Zero(t, api.searchCount())
		assert.Empty(t, s.State().Filters.Year)
		assert.Contains(t, out.String(), `Unknown type "documentary"`)
		assert.Contains(t, out.String(), `Invalid year "99"`)
		assert.Contains(t, out.String(), `Invalid year "-123"`)
		assert.Contains(t, out.String(), `Invalid year "+123"`)
		assert.Contains(t, out.String(), `Invalid year "19a9"`)
	})
}

func TestNavigation(t *testing.T) {
	api := &fakeAPI{total: 25}
	s, out := newTestSession(api)
	ctx := context.Background()

	s.Execute(ctx, "search Batman")
	s.Execute(ctx, "prev")
	assert.Equal(t, 1, api.searchCount())
	assert.Contains(t, out.String(), "No page 0 (1-3)")

	s.Execute(ctx, "next")
	assert.Equal(t, 2, api.lastSearch().Page)
	assert.Equal(t, 2, s.State().Pagination.CurrentPage)

	s.Execute(ctx, "page 3")
	assert.Equal(t, 3, api.lastSearch().Page)
	assert.Len(t, s.State().Items, 5)

	s.Execute(ctx, "next")
	s.Execute(ctx, "page 9")
	s.Execute(ctx, "page x")
	assert.Equal(t, 3, api.searchCount())
	assert.Contains(t, out.String(), `Invalid page "x"`)

	s.Execute(ctx, "p")
	assert.Equal(t, 2, api.lastSearch().Page)
}

func TestOpenAndClose(t *testing.T) {
	api := &fakeAPI{total: 12}
	s, out := newTestSession(api)
	ctx := context.Background()

	s.Execute(ctx, "search Batman")
	s.Execute(ctx, "open 2")

	detail := s.Detail()
	assert.Equal(t, search.DetailLoaded, detail.Status)
	assert.Equal(t, "tt0000002", detail.ID)
	assert.Contains(t, out.String(), "Loading details for tt0000002...")
	assert.Contains(t, out.String(), "Christopher Nolan")

	s.Execute(ctx, "open 11")
	assert.Contains(t, out.String(), "No result 11 on this page")

	s.Execute(ctx, "open tt0372784")
	assert.Equal(t, "tt0372784", s.Detail().ID)

	s.Execute(ctx, "close")
	assert.False(t, s.Detail().Open())
}

func TestRetry(t *testing.T) {
	t.Run("detail failure", func(t *testing.T) {
		api := &fakeAPI{
			total:      3,
			detailErrs: []error{&omdb.APIError{Kind: omdb.KindTransport, Message: "HTTP error! status: 502"}},
		}
		s, out := newTestSession(api)
		ctx := context.Background()

		s.Execute(ctx, "search Batman")
		s.Execute(ctx, "open 1")
		assert.Equal(t, search.DetailFailed, s.Detail().Status)
		assert.Contains(t, out.String(), "✗ Failed to load movie details")

		s.Execute(ctx, "retry")
		assert.Equal(t, search.DetailLoaded, s.Detail().Status)
		assert.Equal(t, "tt0000001", s.Detail().ID)
	})

	t.Run("search failure", func(t *testing.T) {
		api := &fakeAPI{total: 3, searchErr: &omdb.APIError{Kind: omdb.KindTransport, Message: "HTTP error! status: 500"}}
		s, out := newTestSession(api)
		ctx := context.Background()

		s.Execute(ctx, "search Batman")
		assert.True(t, s.State().Failed())
		assert.Contains(t, out.String(), "✗ HTTP error! status: 500")

		api.mu.Lock()
		api.searchErr = nil
		api.mu.Unlock()

		s.Execute(ctx, "retry")
		assert.Equal(t, search.StatusSuccess, s.State().Status)
		assert.Equal(t, 2, api.searchCount())
	})

	t.Run("nothing to retry", func(t *testing.T) {
		s, out := newTestSession(&fakeAPI{})
		s.Execute(context.Background(), "retry")
		assert.Contains(t, out.String(), "Nothing to retry.")
	})
}

func TestWhere(t *testing.T) {
	manager := filter.NewManager(filter.WithPresets(map[string]string{
		"shows": "isSeries()",
	}))
	api := &fakeAPI{total: 10}
	s, out := newTestSession(api, WithFilterManager(manager))
	ctx := context.Background()

	s.Execute(ctx, "search Batman")

	out.Reset()
	s.Execute(ctx, "where isMovie()")
	text := out.String()
	assert.Contains(t, text, "matching isMovie() (5 of 10 on this page)")
	assert.Contains(t, text, "Batman 1 ")
	assert.NotContains(t, text, "Batman 2 ")

	out.Reset()
	s.Execute(ctx, "where shows")
	assert.Contains(t, out.String(), "matching isSeries() (5 of 10 on this page)")

	out.Reset()
	s.Execute(ctx, "where Title +")
	assert.Contains(t, out.String(), "✗")
	s.Execute(ctx, "where")
	assert.Contains(t, out.String(), "Filter: isSeries()")

	out.Reset()
	s.Execute(ctx, "where -")
	assert.Contains(t, out.String(), "Results for \"Batman\" (10 of 10)")

	// refinement never triggers a request
	assert.Equal(t, 1, api.searchCount())
}

func TestPresetsAndHelp(t *testing.T) {
	manager := filter.NewManager(filter.WithPresets(map[string]string{"recent": "StartYear >= 2020"}))
	s, out := newTestSession(&fakeAPI{}, WithFilterManager(manager))

	s.Execute(context.Background(), "presets")
	s.Execute(context.Background(), "help")
	s.Execute(context.Background(), "dance")

	text := out.String()
	assert.Contains(t, text, "recent: StartYear >= 2020")
	assert.Contains(t, text, "Commands:")
	assert.Contains(t, text, `Unknown command "dance"`)
}

func TestReset(t *testing.T) {
	api := &fakeAPI{total: 30}
	s, out := newTestSession(api)
	ctx := context.Background()

	s.Execute(ctx, "search Batman")
	s.Execute(ctx, "open 1")
	s.Execute(ctx, "reset")

	assert.Equal(t, search.StatusIdle, s.State().Status)
	assert.Empty(t, s.State().Items)
	assert.False(t, s.Detail().Open())
	assert.Contains(t, out.String(), "Enter a search term to begin.")
}

func TestRun(t *testing.T) {
	t.Run("reads until quit", func(t *testing.T) {
		api := &fakeAPI{total: 20}
		out := &bytes.Buffer{}
		s := New(api, zerolog.Nop(),
			WithInput(strings.NewReader("next\nquit\nnext\n")),
			WithOutput(out),
		)

		err := s.Run(context.Background(), "Batman")
		require.NoError(t, err)

		assert.Equal(t, 2, api.searchCount())
		assert.Equal(t, 2, s.State().Pagination.CurrentPage)
		assert.Contains(t, out.String(), Prompt)
	})

	t.Run("stops at end of input", func(t *testing.T) {
		out := &bytes.Buffer{}
		s := New(&fakeAPI{}, zerolog.Nop(), WithInput(strings.NewReader("help\n")), WithOutput(out))

		require.NoError(t, s.Run(context.Background(), ""))
		assert.Contains(t, out.String(), "Enter a search term to begin.")
	})

	t.Run("honours cancellation", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		s := New(&fakeAPI{}, zerolog.Nop(), WithInput(strings.NewReader("help\n")), WithOutput(&bytes.Buffer{}))
		assert.ErrorIs(t, s.Run(ctx, ""), context.Canceled)
	})

	t.Run("cancellation interrupts a blocked read", func(t *testing.T) {
		reader, writer := io.Pipe()
		t.Cleanup(func() { writer.Close() })

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		s := New(&fakeAPI{}, zerolog.Nop(), WithInput(reader), WithOutput(io.Discard))

		result := make(chan error, 1)
		go func() { result <- s.Run(ctx, "") }()

		time.Sleep(50 * time.Millisecond)
		cancel()

		select {
		case err := <-result:
			assert.ErrorIs(t, err, context.Canceled)
		case <-time.After(2 * time.Second):
			t.Fatal("Run did not return after the context was cancelled")
		}
	})
}
