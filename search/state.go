package search

import (
	"strings"

	"github.com/s0up4200/reelscout/omdb"
	"github.com/s0up4200/reelscout/pagination"
)

// Status represents the phase of the search flow
type Status int

const (
	// StatusIdle means no search has been started since the last reset
	StatusIdle Status = iota
	// StatusSearching means a request is in flight
	StatusSearching
	// StatusSuccess means the last request returned results
	StatusSuccess
	// StatusFailed means the last request failed or matched nothing
	StatusFailed
)

// String returns the string representation of a Status
func (s Status) String() string {
	switch s {
	case StatusSearching:
		return "SEARCHING"
	case StatusSuccess:
		return "SUCCESS"
	case StatusFailed:
		return "FAILED"
	default:
		return "IDLE"
	}
}

// Filters are the user inputs of a search
type Filters struct {
	Query string
	Type  omdb.MediaType
	Year  string
	Page  int
}

// HasQuery reports whether the query is non-blank
func (f Filters) HasQuery() bool {
	return strings.TrimSpace(f.Query) != ""
}

// params converts the filters to client parameters
func (f Filters) params() omdb.SearchParams {
	return omdb.SearchParams{
		Query: strings.TrimSpace(f.Query),
		Type:  f.Type,
		Year:  strings.TrimSpace(f.Year),
		Page:  f.Page,
	}
}

// FilterOption changes one field of the current filters
type FilterOption func(*Filters)

// WithQuery sets the search term
func WithQuery(query string) FilterOption {
	return func(f *Filters) {
		f.Query = query
	}
}

// WithType sets the media type filter
func WithType(mediaType omdb.MediaType) FilterOption {
	return func(f *Filters) {
		f.Type = mediaType
	}
}

// WithYear sets the release year filter; empty clears it
func WithYear(year string) FilterOption {
	return func(f *Filters) {
		f.Year = year
	}
}

// WithPage sets the requested page
func WithPage(page int) FilterOption {
	return func(f *Filters) {
		f.Page = page
	}
}

// State is a snapshot of the search flow.
// Error and ErrorKind are only meaningful when Status is StatusFailed.
type State struct {
	Status     Status
	Filters    Filters
	Items      []omdb.Item
	Pagination pagination.State
	Error      string
	ErrorKind  omdb.ErrorKind
}

// Loading reports whether a request is in flight
func (s State) Loading() bool {
	return s.Status == StatusSearching
}

// Failed reports whether the last search ended in an error
func (s State) Failed() bool {
	return s.Status == StatusFailed
}

func (s State) clone() State {
	if s.Items != nil {
		s.Items = append([]omdb.Item(nil), s.Items...)
	}
	return s
}

// DetailStatus represents the phase of the detail overlay
type DetailStatus int

const (
	// DetailClosed means no item is selected
	DetailClosed DetailStatus = iota
	// DetailLoading means the record is being fetched
	DetailLoading
	// DetailLoaded means the record is available
	DetailLoaded
	// DetailFailed means the fetch failed and can be retried
	DetailFailed
)

// String returns the string representation of a DetailStatus
func (s DetailStatus) String() string {
	switch s {
	case DetailLoading:
		return "LOADING"
	case DetailLoaded:
		return "LOADED"
	case DetailFailed:
		return "FAILED"
	default:
		return "CLOSED"
	}
}

// DetailState is a snapshot of the detail overlay
type DetailState struct {
	Status    DetailStatus
	ID        string
	Record    *omdb.Details
	Error     string
	ErrorKind omdb.ErrorKind
}

// Open reports whether the overlay is showing
func (s DetailState) Open() bool {
	return s.Status != DetailClosed
}

// CanRetry reports whether a retry action should be offered
func (s DetailState) CanRetry() bool {
	return s.Status == DetailFailed
}

func (s DetailState) clone() DetailState {
	if s.Record != nil {
		record := *s.Record
		record.Ratings = append([]omdb.Rating(nil), s.Record.Ratings...)
		s.Record = &record
	}
	return s
}
