// Package search owns the view state of the search results and the detail
// overlay and drives the OMDb client in response to user intent.
package search

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/s0up4200/reelscout/omdb"
	"github.com/s0up4200/reelscout/pagination"
)

// DefaultErrorMessage is shown when a failure carries no message of its own
const DefaultErrorMessage = "An error occurred while searching"

// Observer receives a snapshot after every state transition.
// Snapshots are delivered in transition order. Observers run while the
// controller serializes notifications and must not call back into it.
type Observer func(State)

// Option configures a Controller
type Option func(*Controller)

// WithObserver registers a callback for state transitions
func WithObserver(observer Observer) Option {
	return func(c *Controller) {
		if observer != nil {
			c.observers = append(c.observers, observer)
		}
	}
}

// Controller owns the search state and runs searches against the API.
//
// Methods are safe for concurrent use. Every search is tagged with a
// sequence number and only the latest one may change the state.
type Controller struct {
	api       omdb.API
	logger    zerolog.Logger
	observers []Observer

	mu    sync.Mutex
	seq   uint64
	state State

	// notifyMu is taken before mu is released so observers see
	// transitions in the order they were applied
	notifyMu sync.Mutex
}

// NewController creates a controller in the idle state
func NewController(api omdb.API, logger zerolog.Logger, opts ...Option) *Controller {
	c := &Controller{
		api:    api,
		logger: logger,
		state:  idleState(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

func idleState() State {
	return State{
		Status:     StatusIdle,
		Filters:    Filters{Page: 1},
		Pagination: pagination.Empty(),
	}
}

// Snapshot returns a copy of the current state
func (c *Controller) Snapshot() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.clone()
}

// UpdateFilters merges opts into the current filters and, when the query
// is non-blank, searches with the result. The page is never reset
// implicitly: pass WithPage(1) along with other filter changes.
//
// The returned snapshot reflects this search unless a newer one
// superseded it while the request was in flight.
func (c *Controller) UpdateFilters(ctx context.Context, opts ...FilterOption) State {
	c.mu.Lock()
	filters := c.state.Filters
	for _, opt := range opts {
		opt(&filters)
	}
	if filters.Page < 1 {
		filters.Page = 1
	}
	c.state.Filters = filters

	if !filters.HasQuery() {
		snapshot := c.state.clone()
		c.mu.Unlock()
		return snapshot
	}

	c.seq++
	seq := c.seq
	c.state.Status = StatusSearching
	c.state.Error = ""
	c.state.ErrorKind = 0
	c.publish()

	return c.run(ctx, seq, filters)
}

// GoToPage requests page n of the current result set.
// Pages outside 1..TotalPages are ignored.
func (c *Controller) GoToPage(ctx context.Context, page int) State {
	c.mu.Lock()
	valid := c.state.Pagination.Contains(page)
	snapshot := c.state.clone()
	c.mu.Unlock()

	if !valid {
		c.logger.Debug().
			Int("page", page).
			Int("total_pages", snapshot.Pagination.TotalPages).
			Msg("Ignoring page outside result range")
		return snapshot
	}

	return c.UpdateFilters(ctx, WithPage(page))
}

// NextPage moves one page forward when possible
func (c *Controller) NextPage(ctx context.Context) State {
	return c.GoToPage(ctx, c.Snapshot().Pagination.CurrentPage+1)
}

// PrevPage moves one page back when possible
func (c *Controller) PrevPage(ctx context.Context) State {
	return c.GoToPage(ctx, c.Snapshot().Pagination.CurrentPage-1)
}

// Refresh repeats the search for the current filters
func (c *Controller) Refresh(ctx context.Context) State {
	return c.UpdateFilters(ctx)
}

// Reset returns to the idle state and drops any in-flight result
func (c *Controller) Reset() State {
	c.mu.Lock()
	c.seq++
	c.state = idleState()
	return c.publish()
}

// run performs the request for seq and applies its outcome if still current
func (c *Controller) run(ctx context.Context, seq uint64, filters Filters) State {
	res, err := c.api.Search(ctx, filters.params())

	c.mu.Lock()
	if seq != c.seq {
		latest := c.seq
		snapshot := c.state.clone()
		c.mu.Unlock()

		c.logger.Debug().
			Uint64("seq", seq).
			Uint64("latest", latest).
			Str("query", filters.Query).
			Msg("Discarding superseded search response")
		return snapshot
	}

	if err != nil {
		c.state.Status = StatusFailed
		c.state.Items = nil
		c.state.Pagination = pagination.Empty()
		c.state.Error = omdb.MessageOf(err, DefaultErrorMessage)
		c.state.ErrorKind = omdb.KindOf(err)
	} else {
		c.state.Status = StatusSuccess
		c.state.Items = append([]omdb.Item(nil), res.Items...)
		c.state.Pagination = pagination.Compute(filters.Page, res.TotalResults)
		c.state.Error = ""
		c.state.ErrorKind = 0
	}
	snapshot := c.publish()

	c.logResult(filters, snapshot, err)
	return snapshot
}

func (c *Controller) logResult(filters Filters, snapshot State, err error) {
	if err != nil {
		event := c.logger.Warn()
		if omdb.KindOf(err) == omdb.KindNoResults {
			event = c.logger.Info()
		}
		event.Err(err).
			Str("query", filters.Query).
			Int("page", filters.Page).
			Msg("Search failed")
		return
	}

	c.logger.Debug().
		Str("query", filters.Query).
		Int("page", filters.Page).
		Int("count", len(snapshot.Items)).
		Int("total_results", snapshot.Pagination.TotalResults).
		Msg("Search completed")
}

// publish delivers the current state to observers and returns it.
// It must be called with mu held and releases it.
func (c *Controller) publish() State {
	snapshot := c.state.clone()
	c.notifyMu.Lock()
	defer c.notifyMu.Unlock()
	c.mu.Unlock()

	for _, observer := range c.observers {
		observer(snapshot.clone())
	}
	return snapshot
}
