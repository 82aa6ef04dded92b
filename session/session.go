// Package session runs the interactive browse loop. Each input line is a
// command that is turned into filter, page, selection or overlay intents
// for the search controllers.
package session

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/s0up4200/reelscout/filter"
	"github.com/s0up4200/reelscout/omdb"
	"github.com/s0up4200/reelscout/render"
	"github.com/s0up4200/reelscout/search"
)

// Prompt is printed before every command
const Prompt = "reelscout> "

const helpText = `Commands:
  search <query>      search titles (alias: s)
  type <kind>         movie, series, episode or any
  year <yyyy|->       filter by release year, "-" clears
  next | prev         move one page (aliases: n, p)
  page <n>            jump to page n
  open <n|imdbID>     show details for result n or an IMDb id (alias: o)
  retry               repeat the failed request
  close               close the detail view
  where <expr|preset> refine the current page, "-" clears
  presets             list configured filter presets
  reset               clear the search
  help                show this help
  quit                leave (aliases: exit, q)
`

// Option configures a Session
type Option func(*Session)

// WithInput sets the command source
func WithInput(r io.Reader) Option {
	return func(s *Session) {
		s.in = r
	}
}

// WithOutput sets where results are written
func WithOutput(w io.Writer) Option {
	return func(s *Session) {
		s.out = w
	}
}

// WithFormatter replaces the default formatter
func WithFormatter(f *render.ConsoleFormatter) Option {
	return func(s *Session) {
		s.formatter = f
	}
}

// WithFilterManager sets the manager used by the where command
func WithFilterManager(m *filter.Manager) Option {
	return func(s *Session) {
		s.filters = m
	}
}

// Session is an interactive search over an input stream.
// It is not safe for concurrent use.
type Session struct {
	in        io.Reader
	out       io.Writer
	logger    zerolog.Logger
	formatter *render.ConsoleFormatter
	filters   *filter.Manager

	search *search.Controller
	detail *search.DetailController

	refine *filter.Filter
}

// New creates a session driving api
func New(api omdb.API, logger zerolog.Logger, opts ...Option) *Session {
	s := &Session{
		in:     os.Stdin,
		out:    os.Stdout,
		logger: logger,
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.formatter == nil {
		s.formatter = render.NewConsoleFormatter(render.FormatOptions{})
	}
	if s.filters == nil {
		s.filters = filter.NewManager()
	}

	s.search = search.NewController(api, logger, search.WithObserver(s.onSearch))
	s.detail = search.NewDetailController(api, logger, s.onDetail)

	return s
}

// State returns the current search snapshot
func (s *Session) State() search.State {
	return s.search.Snapshot()
}

// Detail returns the current overlay snapshot
func (s *Session) Detail() search.DetailState {
	return s.detail.Snapshot()
}

// Run reads commands until quit, end of input or context cancellation.
// A non-blank initialQuery is searched before the first prompt.
func (s *Session) Run(ctx context.Context, initialQuery string) error {
	if strings.TrimSpace(initialQuery) != "" {
		s.Execute(ctx, "search "+initialQuery)
	} else {
		s.println(s.formatter.FormatStatus(s.search.Snapshot()))
		s.println(`Type "help" for a list of commands.`)
	}

	done := make(chan struct{})
	defer close(done)
	lines, readErr := s.readLines(done)

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		fmt.Fprint(s.out, Prompt)
		select {
		case <-ctx.Done():
			fmt.Fprintln(s.out)
			return ctx.Err()
		case line, ok := <-lines:
			if !ok {
				if err := <-readErr; err != nil {
					return fmt.Errorf("failed to read input: %w", err)
				}
				fmt.Fprintln(s.out)
				return nil
			}
			if quit := s.Execute(ctx, line); quit {
				return nil
			}
		}
	}
}

// readLines scans the input on its own goroutine so a blocked read
// never holds up cancellation. The reader may stay blocked until the
// input is closed; it stops forwarding once done is closed.
func (s *Session) readLines(done <-chan struct{}) (<-chan string, <-chan error) {
	lines := make(chan string)
	readErr := make(chan error, 1)

	go func() {
		defer close(lines)

		scanner := bufio.NewScanner(s.in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-done:
				readErr <- nil
				return
			}
		}
		readErr <- scanner.Err()
	}()

	return lines, readErr
}

// Execute runs a single command line and reports whether the session should end
func (s *Session) Execute(ctx context.Context, line string) bool {
	command, arg, _ := strings.Cut(strings.TrimSpace(line), " ")
	command = strings.ToLower(command)
	arg = strings.TrimSpace(arg)

	s.logger.Debug().Str("command", command).Str("arg", arg).Msg("Executing command")

	switch command {
	case "":
		return false
	case "quit", "exit", "q":
		return true
	case "help", "?":
		fmt.Fprint(s.out, helpText)
	case "search", "s":
		s.runSearch(ctx, arg)
	case "type":
		s.runType(ctx, arg)
	case "year":
		s.runYear(ctx, arg)
	case "next", "n":
		s.navigate(ctx, s.search.Snapshot().Pagination.CurrentPage+1)
	case "prev", "p":
		s.navigate(ctx, s.search.Snapshot().Pagination.CurrentPage-1)
	case "page":
		s.runPage(ctx, arg)
	case "open", "o":
		s.runOpen(ctx, arg)
	case "retry":
		s.runRetry(ctx)
	case "close":
		if s.detail.Snapshot().Open() {
			s.detail.Close()
			s.print(s.formatter.FormatResults(s.search.Snapshot()))
		}
	case "where", "filter":
		s.runWhere(arg)
	case "presets":
		s.runPresets()
	case "reset":
		s.refine = nil
		s.detail.Close()
		s.println(s.formatter.FormatStatus(s.search.Reset()))
	default:
		s.println(fmt.Sprintf("Unknown command %q. Type \"help\" for a list of commands.", command))
	}

	return false
}

func (s *Session) runSearch(ctx context.Context, query string) {
	if query == "" {
		s.println("Please enter a search term")
		return
	}
	s.detail.Close()
	s.showResults(s.search.UpdateFilters(ctx, search.WithQuery(query), search.WithPage(1)))
}

func (s *Session) runType(ctx context.Context, arg string) {
	mediaType, ok := omdb.ParseMediaType(arg)
	if !ok {
		s.println(fmt.Sprintf("Unknown type %q: use movie, series, episode or any", arg))
		return
	}
	s.applyFilters(ctx, search.WithType(mediaType), search.WithPage(1))
}

func (s *Session) runYear(ctx context.Context, arg string) {
	if arg == "-" {
		arg = ""
	}
	if arg != "" && !isYear(arg) {
		s.println(fmt.Sprintf("Invalid year %q: expected four digits", arg))
		return
	}
	s.applyFilters(ctx, search.WithYear(arg), search.WithPage(1))
}

// isYear reports whether s is exactly four ASCII digits
func isYear(s string) bool {
	if len(s) != 4 {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// applyFilters stores filter changes and searches when a query is set
func (s *Session) applyFilters(ctx context.Context, opts ...search.FilterOption) {
	state := s.search.UpdateFilters(ctx, opts...)
	if !state.Filters.HasQuery() {
		s.println("Filters updated. Enter a search term to begin.")
		return
	}
	s.detail.Close()
	s.showResults(state)
}

func (s *Session) runPage(ctx context.Context, arg string) {
	page, err := strconv.Atoi(arg)
	if err != nil {
		s.println(fmt.Sprintf("Invalid page %q", arg))
		return
	}
	s.navigate(ctx, page)
}

// navigate moves to page when it exists in the current result set
func (s *Session) navigate(ctx context.Context, page int) {
	current := s.search.Snapshot()
	if current.Loading() || !current.Pagination.Contains(page) {
		s.println(fmt.Sprintf("No page %d (1-%d)", page, current.Pagination.TotalPages))
		return
	}
	s.detail.Close()
	s.showResults(s.search.GoToPage(ctx, page))
}

func (s *Session) runOpen(ctx context.Context, arg string) {
	if arg == "" {
		s.println("Usage: open <n|imdbID>")
		return
	}

	id := arg
	if n, err := strconv.Atoi(arg); err == nil {
		items := s.search.Snapshot().Items
		if n < 1 || n > len(items) {
			s.println(fmt.Sprintf("No result %d on this page", n))
			return
		}
		id = items[n-1].ID
	}

	s.print(s.formatter.FormatDetailState(s.detail.Open(ctx, id)))
}

func (s *Session) runRetry(ctx context.Context) {
	if s.detail.Snapshot().CanRetry() {
		s.print(s.formatter.FormatDetailState(s.detail.Retry(ctx)))
		return
	}

	state := s.search.Snapshot()
	if state.Failed() && state.Filters.HasQuery() {
		s.showResults(s.search.Refresh(ctx))
		return
	}

	s.println("Nothing to retry.")
}

func (s *Session) runWhere(arg string) {
	switch arg {
	case "":
		if s.refine == nil {
			s.println("No filter set.")
		} else {
			s.println("Filter: " + s.refine.String())
		}
		return
	case "-":
		s.refine = nil
		s.showResults(s.search.Snapshot())
		return
	}

	var (
		f   *filter.Filter
		err error
	)
	if _, presetErr := s.filters.Preset(arg); presetErr == nil {
		f, err = s.filters.Resolve("", arg)
	} else {
		f, err = s.filters.Resolve(arg, "")
	}
	if err != nil {
		s.logger.Debug().Err(err).Str("expression", arg).Msg("Rejected filter")
		s.println(fmt.Sprintf("✗ %v", err))
		return
	}

	s.refine = f
	s.showResults(s.search.Snapshot())
}

func (s *Session) runPresets() {
	names := s.filters.Presets()
	if len(names) == 0 {
		s.println("No presets configured.")
		return
	}
	for _, name := range names {
		expression, _ := s.filters.Preset(name)
		s.println(fmt.Sprintf("  %s: %s", name, expression))
	}
}

// showResults prints a search outcome, narrowed by the active filter
func (s *Session) showResults(state search.State) {
	if s.refine == nil || state.Status != search.StatusSuccess {
		s.print(s.formatter.FormatResults(state))
		return
	}

	items, err := s.refine.Apply(state.Items)
	if err != nil {
		s.logger.Warn().Err(err).Msg("Filter evaluation failed, showing all results")
		s.println(fmt.Sprintf("✗ %v", err))
		s.print(s.formatter.FormatResults(state))
		return
	}

	s.print(s.formatter.FormatRefined(state, items, s.refine.String()))
}

func (s *Session) onSearch(state search.State) {
	if state.Loading() {
		s.println(s.formatter.FormatStatus(state))
	}
}

func (s *Session) onDetail(state search.DetailState) {
	if state.Status == search.DetailLoading {
		s.print(s.formatter.FormatDetailState(state))
	}
}

func (s *Session) print(text string) {
	fmt.Fprint(s.out, text)
}

func (s *Session) println(text string) {
	fmt.Fprintln(s.out, text)
}
