package search

import (
	"context"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/s0up4200/reelscout/omdb"
)

// DetailNotFoundMessage is shown when the upstream does not know the id
const DetailNotFoundMessage = "Movie details not found"

// DetailErrorMessage is shown when the lookup fails without a message
const DetailErrorMessage = "Failed to load movie details"

// DetailObserver receives a snapshot after every overlay transition.
// Like Observer it must not call back into the controller.
type DetailObserver func(DetailState)

// DetailController owns the state of the detail overlay.
//
// Each fetch is tagged with the id it was issued for and a sequence
// number; results are applied only while both are still current, so
// closing or reopening the overlay discards late responses.
type DetailController struct {
	api       omdb.API
	logger    zerolog.Logger
	observers []DetailObserver

	mu    sync.Mutex
	seq   uint64
	state DetailState

	notifyMu sync.Mutex
}

// NewDetailController creates a closed overlay controller
func NewDetailController(api omdb.API, logger zerolog.Logger, observers ...DetailObserver) *DetailController {
	d := &DetailController{
		api:    api,
		logger: logger,
	}
	for _, observer := range observers {
		if observer != nil {
			d.observers = append(d.observers, observer)
		}
	}
	return d
}

// Snapshot returns a copy of the current overlay state
func (d *DetailController) Snapshot() DetailState {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.state.clone()
}

// Open shows the overlay for id and fetches its record
func (d *DetailController) Open(ctx context.Context, id string) DetailState {
	id = strings.TrimSpace(id)
	if id == "" {
		return d.Snapshot()
	}

	d.mu.Lock()
	d.seq++
	seq := d.seq
	d.state = DetailState{Status: DetailLoading, ID: id}
	d.publish()

	return d.fetch(ctx, seq, id)
}

// Retry re-issues the request for the active id
func (d *DetailController) Retry(ctx context.Context) DetailState {
	d.mu.Lock()
	if d.state.Status == DetailClosed {
		snapshot := d.state.clone()
		d.mu.Unlock()
		return snapshot
	}
	d.seq++
	seq := d.seq
	id := d.state.ID
	d.state = DetailState{Status: DetailLoading, ID: id}
	d.publish()

	return d.fetch(ctx, seq, id)
}

// Close hides the overlay and discards its record
func (d *DetailController) Close() DetailState {
	d.mu.Lock()
	d.seq++
	d.state = DetailState{}
	return d.publish()
}

func (d *DetailController) fetch(ctx context.Context, seq uint64, id string) DetailState {
	record, err := d.api.GetDetails(ctx, id)

	d.mu.Lock()
	if seq != d.seq || id != d.state.ID {
		snapshot := d.state.clone()
		d.mu.Unlock()

		d.logger.Debug().
			Str("id", id).
			Uint64("seq", seq).
			Msg("Discarding stale detail response")
		return snapshot
	}

	if err != nil {
		d.state = DetailState{
			Status:    DetailFailed,
			ID:        id,
			Error:     detailMessage(err),
			ErrorKind: omdb.KindOf(err),
		}
		d.logger.Warn().Err(err).Str("id", id).Msg("Failed to load details")
	} else {
		d.state = DetailState{Status: DetailLoaded, ID: id, Record: record}
	}
	return d.publish()
}

func detailMessage(err error) string {
	switch omdb.KindOf(err) {
	case omdb.KindNotFound:
		return DetailNotFoundMessage
	case omdb.KindMissingCredential:
		return omdb.MessageOf(err, DetailErrorMessage)
	default:
		return DetailErrorMessage
	}
}

// publish delivers the current state to observers and returns it.
// It must be called with mu held and releases it.
func (d *DetailController) publish() DetailState {
	snapshot := d.state.clone()
	d.notifyMu.Lock()
	defer d.notifyMu.Unlock()
	d.mu.Unlock()

	for _, observer := range d.observers {
		observer(snapshot.clone())
	}
	return snapshot
}
