// Package pagination derives page counts, navigation availability and the
// page-number strip shown under a result list.
package pagination

// PageSize is the number of results per page
const PageSize = 10

// MaxVisible is the largest page count rendered without ellipses
const MaxVisible = 7

// State describes where a result list sits within its pages
type State struct {
	CurrentPage  int
	TotalPages   int
	TotalResults int
	HasNext      bool
	HasPrev      bool
}

// Empty returns the state of a list with no results
func Empty() State {
	return Compute(1, 0)
}

// Compute derives the state for currentPage of totalResults using PageSize
func Compute(currentPage, totalResults int) State {
	return ComputeWithSize(currentPage, totalResults, PageSize)
}

// ComputeWithSize derives the state with an explicit page size.
// A non-positive pageSize falls back to PageSize.
func ComputeWithSize(currentPage, totalResults, pageSize int) State {
	if pageSize <= 0 {
		pageSize = PageSize
	}
	if currentPage < 1 {
		currentPage = 1
	}
	if totalResults < 0 {
		totalResults = 0
	}

	totalPages := (totalResults + pageSize - 1) / pageSize

	return State{
		CurrentPage:  currentPage,
		TotalPages:   totalPages,
		TotalResults: totalResults,
		HasNext:      currentPage < totalPages,
		HasPrev:      currentPage > 1,
	}
}

// Contains reports whether page is a valid navigation target
func (s State) Contains(page int) bool {
	return page >= 1 && page <= s.TotalPages
}

// Entry is one slot of the page-number strip
type Entry struct {
	Page     int
	Ellipsis bool
	Current  bool
}

// Clickable reports whether the entry can be used to navigate
func (e Entry) Clickable() bool {
	return !e.Ellipsis
}

// Pages builds the page-number strip for the navigation controls.
//
// Up to MaxVisible pages are all listed. Past that the first and last
// pages and current±1 are shown, with an ellipsis in every gap.
func Pages(currentPage, totalPages int) []Entry {
	if totalPages <= 0 {
		return nil
	}

	var shown []int
	if totalPages <= MaxVisible {
		for p := 1; p <= totalPages; p++ {
			shown = append(shown, p)
		}
	} else {
		shown = append(shown, 1)
		start := max(2, currentPage-1)
		end := min(totalPages-1, currentPage+1)
		for p := start; p <= end; p++ {
			shown = append(shown, p)
		}
		shown = append(shown, totalPages)
	}

	entries := make([]Entry, 0, len(shown)+2)
	prev := 0
	for _, p := range shown {
		if prev != 0 && p-prev > 1 {
			entries = append(entries, Entry{Ellipsis: true})
		}
		entries = append(entries, Entry{Page: p, Current: p == currentPage})
		prev = p
	}

	return entries
}
