// Package render turns search and detail state into console output.
package render

import (
	"fmt"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/s0up4200/reelscout/omdb"
	"github.com/s0up4200/reelscout/pagination"
	"github.com/s0up4200/reelscout/search"
)

const (
	ansiBold  = "\033[1m"
	ansiDim   = "\033[2m"
	ansiReset = "\033[0m"
)

// FormatOptions contains options for formatting output
type FormatOptions struct {
	Color       bool
	ShowDetails bool
}

// ConsoleFormatter provides console output formatting for search results
type ConsoleFormatter struct {
	options FormatOptions
	printer *message.Printer
}

// NewConsoleFormatter creates a new console formatter
func NewConsoleFormatter(options FormatOptions) *ConsoleFormatter {
	return &ConsoleFormatter{
		options: options,
		printer: message.NewPrinter(language.English),
	}
}

// FormatStatus formats a one line status for the search flow
func (f *ConsoleFormatter) FormatStatus(s search.State) string {
	switch s.Status {
	case search.StatusIdle:
		return "Enter a search term to begin."
	case search.StatusSearching:
		return fmt.Sprintf("Searching for %q (page %d)...", s.Filters.Query, s.Filters.Page)
	case search.StatusFailed:
		return f.FormatError(s.Error, s.ErrorKind)
	default:
		return f.printer.Sprintf("Found %d results for %q", s.Pagination.TotalResults, s.Filters.Query)
	}
}

// FormatResults formats the current page of results with its pagination
func (f *ConsoleFormatter) FormatResults(s search.State) string {
	return f.FormatRefined(s, s.Items, "")
}

// FormatRefined formats a subset of the current page.
// expression names the filter that produced items and may be empty.
func (f *ConsoleFormatter) FormatRefined(s search.State, items []omdb.Item, expression string) string {
	if s.Status != search.StatusSuccess {
		return f.FormatStatus(s) + "\n"
	}

	var sb strings.Builder

	// Header
	sb.WriteString("\nResult")
	if len(items) != 1 {
		sb.WriteString("s")
	}
	if expression != "" {
		fmt.Fprintf(&sb, " matching %s (%d of %d on this page):\n\n", expression, len(items), len(s.Items))
	} else {
		f.printer.Fprintf(&sb, " for %q (%d of %d):\n\n", s.Filters.Query, len(items), s.Pagination.TotalResults)
	}

	if len(items) == 0 {
		if expression != "" {
			sb.WriteString("No results on this page match the filter.\n")
		} else {
			sb.WriteString("No results on this page.\n")
		}
	}

	// Format each item
	for i, item := range items {
		isLast := i == len(items)-1
		f.formatItem(&sb, indexOf(s.Items, item.ID)+1, item, isLast)

		if !isLast {
			sb.WriteString("│\n")
		}
	}

	if strip := f.FormatPagination(s.Pagination); strip != "" {
		sb.WriteString("\n")
		sb.WriteString(strip)
	}

	return sb.String()
}

// formatItem formats a single result entry
func (f *ConsoleFormatter) formatItem(sb *strings.Builder, number int, item omdb.Item, isLast bool) {
	prefix := "├"
	if isLast {
		prefix = "╰"
	}

	year := item.Year
	if year == "" {
		year = "?"
	}
	fmt.Fprintf(sb, "%s── %2d. %s (%s) [%s]\n", prefix, number, f.bold(item.Title), year, item.Kind.Label())

	if !f.options.ShowDetails {
		return
	}

	indent := "│   "
	if isLast {
		indent = "    "
	}

	fmt.Fprintf(sb, "%sIMDb: %s\n", indent, item.ID)
	if item.HasPoster() {
		fmt.Fprintf(sb, "%sPoster: %s\n", indent, item.PosterURL)
	}
}

// FormatPagination formats the page-number strip.
// Nothing is shown for a single page of results.
func (f *ConsoleFormatter) FormatPagination(p pagination.State) string {
	if p.TotalPages <= 1 {
		return ""
	}

	var sb strings.Builder
	f.printer.Fprintf(&sb, "Showing page %d of %d (%d results)\n", p.CurrentPage, p.TotalPages, p.TotalResults)

	var parts []string
	if p.HasPrev {
		parts = append(parts, "« prev")
	}
	for _, entry := range pagination.Pages(p.CurrentPage, p.TotalPages) {
		switch {
		case entry.Ellipsis:
			parts = append(parts, f.dim("…"))
		case entry.Current:
			parts = append(parts, f.bold(fmt.Sprintf("[%d]", entry.Page)))
		default:
			parts = append(parts, fmt.Sprintf("%d", entry.Page))
		}
	}
	if p.HasNext {
		parts = append(parts, "next »")
	}

	sb.WriteString(strings.Join(parts, " "))
	sb.WriteString("\n")
	return sb.String()
}

// FormatDetailState formats the detail overlay
func (f *ConsoleFormatter) FormatDetailState(s search.DetailState) string {
	switch s.Status {
	case search.DetailLoading:
		return fmt.Sprintf("Loading details for %s...\n", s.ID)
	case search.DetailFailed:
		return f.FormatError(s.Error, s.ErrorKind) + "\nType 'retry' to try again.\n"
	case search.DetailLoaded:
		return f.FormatDetails(s.Record)
	default:
		return ""
	}
}

// FormatDetails formats a full title record; empty fields are skipped
func (f *ConsoleFormatter) FormatDetails(d *omdb.Details) string {
	if d == nil {
		return ""
	}

	var sb strings.Builder
	sb.WriteString("\n")
	fmt.Fprintf(&sb, "%s", f.bold(d.Title))
	if d.Year != "" {
		fmt.Fprintf(&sb, " (%s)", d.Year)
	}
	sb.WriteString("\n")

	badges := []string{d.Kind.Label()}
	for _, badge := range []string{d.Rated, d.Runtime} {
		if badge != "" {
			badges = append(badges, badge)
		}
	}
	if d.IMDbRating != "" {
		badges = append(badges, "⭐ "+d.IMDbRating)
	}
	fmt.Fprintf(&sb, "%s\n", strings.Join(badges, " · "))

	if d.Plot != "" {
		fmt.Fprintf(&sb, "\n%s\n\n", d.Plot)
	}

	fields := []struct {
		label string
		value string
	}{
		{"Director", d.Director},
		{"Writer", d.Writer},
		{"Cast", d.Actors},
		{"Genre", d.Genre},
		{"Released", d.Released},
		{"Country", d.Country},
		{"Language", d.Language},
		{"Seasons", d.TotalSeasons},
		{"Box Office", d.BoxOffice},
		{"Awards", d.Awards},
	}
	for _, field := range fields {
		if field.value != "" {
			fmt.Fprintf(&sb, "%-10s %s\n", field.label+":", field.value)
		}
	}

	if len(d.Ratings) > 0 {
		ratings := make([]string, 0, len(d.Ratings))
		for _, r := range d.Ratings {
			ratings = append(ratings, fmt.Sprintf("%s: %s", r.Source, r.Value))
		}
		fmt.Fprintf(&sb, "%-10s %s\n", "Ratings:", strings.Join(ratings, ", "))
	}

	fmt.Fprintf(&sb, "%-10s %s\n", "IMDb:", d.ID)
	if d.HasPoster() && f.options.ShowDetails {
		fmt.Fprintf(&sb, "%-10s %s\n", "Poster:", d.PosterURL)
	}

	return sb.String()
}

// FormatBatch formats the outcome of a multi-id lookup
func (f *ConsoleFormatter) FormatBatch(result omdb.BatchDetailsResult) string {
	var sb strings.Builder
	for _, d := range result.Successful {
		sb.WriteString(f.FormatDetails(d))
	}
	if len(result.Failed) > 0 {
		fmt.Fprintf(&sb, "\nFailed lookups (%d):\n", len(result.Failed))
		for _, failure := range result.Failed {
			fmt.Fprintf(&sb, "  %s: %s\n", failure.ID, omdb.MessageOf(failure.Err, failure.Err.Error()))
		}
	}
	return sb.String()
}

// FormatError renders a failure. Logical outcomes are informational.
func (f *ConsoleFormatter) FormatError(msg string, kind omdb.ErrorKind) string {
	if kind.Logical() {
		return "ℹ " + msg
	}
	return "✗ " + msg
}

func (f *ConsoleFormatter) bold(s string) string {
	if !f.options.Color {
		return s
	}
	return ansiBold + s + ansiReset
}

func (f *ConsoleFormatter) dim(s string) string {
	if !f.options.Color {
		return s
	}
	return ansiDim + s + ansiReset
}

func indexOf(items []omdb.Item, id string) int {
	for i, item := range items {
		if item.ID == id {
			return i
		}
	}
	return -1
}
