package omdb

import (
	"strconv"
	"strings"
)

// PageSize is the fixed number of matches OMDb returns per search page
const PageSize = 10

// notAvailable is the upstream placeholder for missing values
const notAvailable = "N/A"

// MediaType represents the kind of title
type MediaType string

const (
	// MediaTypeAny leaves the search unfiltered
	MediaTypeAny MediaType = ""
	// MediaTypeMovie represents a movie
	MediaTypeMovie MediaType = "movie"
	// MediaTypeSeries represents a TV series
	MediaTypeSeries MediaType = "series"
	// MediaTypeEpisode represents a single episode
	MediaTypeEpisode MediaType = "episode"
)

// ParseMediaType converts user input into a search filter type.
// "any", "all" and the empty string mean no filter.
func ParseMediaType(s string) (MediaType, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "any", "all":
		return MediaTypeAny, true
	case "movie", "movies":
		return MediaTypeMovie, true
	case "series", "tv", "show":
		return MediaTypeSeries, true
	case "episode":
		return MediaTypeEpisode, true
	default:
		return MediaTypeAny, false
	}
}

// IsMovie checks if the media type is a movie
func (mt MediaType) IsMovie() bool {
	return mt == MediaTypeMovie
}

// IsSeries checks if the media type is a series
func (mt MediaType) IsSeries() bool {
	return mt == MediaTypeSeries
}

// Label returns a human readable name for display
func (mt MediaType) Label() string {
	switch mt {
	case MediaTypeMovie:
		return "Movie"
	case MediaTypeSeries:
		return "Series"
	case MediaTypeEpisode:
		return "Episode"
	case MediaTypeAny:
		return "Any"
	default:
		return strings.ToUpper(string(mt[:1])) + string(mt[1:])
	}
}

// SearchParams holds the inputs of a title search
type SearchParams struct {
	Query string
	Type  MediaType
	Year  string
	Page  int
}

// Item is a single search match
type Item struct {
	ID        string
	Title     string
	Year      string
	Kind      MediaType
	PosterURL string
}

// HasPoster checks if the upstream supplied a poster image
func (i *Item) HasPoster() bool {
	return i.PosterURL != ""
}

// StartYear returns the first year of the Year field, or 0.
// Series report ranges such as "2005–2012" or "2019–".
func (i *Item) StartYear() int {
	return startYear(i.Year)
}

// SearchResult is one page of matches plus the overall match count
type SearchResult struct {
	Items        []Item
	TotalResults int
}

// Rating is a score from a single source
type Rating struct {
	Source string `json:"Source"`
	Value  string `json:"Value"`
}

// Details is the full record of a title
type Details struct {
	Item
	Plot         string
	Director     string
	Writer       string
	Actors       string
	Genre        string
	Runtime      string
	Rated        string
	Released     string
	Country      string
	Language     string
	Awards       string
	IMDbRating   string
	IMDbVotes    string
	Metascore    string
	BoxOffice    string
	TotalSeasons string
	Ratings      []Rating
}

// Genres splits the comma separated genre list
func (d *Details) Genres() []string {
	return splitList(d.Genre)
}

// Cast splits the comma separated actor list
func (d *Details) Cast() []string {
	return splitList(d.Actors)
}

// envelope is the part of every OMDb response that signals failure
type envelope struct {
	Response string `json:"Response"`
	Error    string `json:"Error"`
}

// ok reports whether the upstream marked the response successful
func (e envelope) ok() bool {
	return strings.EqualFold(e.Response, "True")
}

// searchResponse represents the response from the search endpoint
type searchResponse struct {
	envelope
	Search       []searchItem `json:"Search"`
	TotalResults string       `json:"totalResults"`
}

// searchItem is the upstream shape of a search match
type searchItem struct {
	ImdbID string `json:"imdbID"`
	Title  string `json:"Title"`
	Year   string `json:"Year"`
	Type   string `json:"Type"`
	Poster string `json:"Poster"`
}

func (s searchItem) toItem() Item {
	return Item{
		ID:        s.ImdbID,
		Title:     s.Title,
		Year:      clean(s.Year),
		Kind:      MediaType(s.Type),
		PosterURL: clean(s.Poster),
	}
}

// detailsResponse represents the response from the id lookup endpoint
type detailsResponse struct {
	envelope
	searchItem
	Plot         string   `json:"Plot"`
	Director     string   `json:"Director"`
	Writer       string   `json:"Writer"`
	Actors       string   `json:"Actors"`
	Genre        string   `json:"Genre"`
	Runtime      string   `json:"Runtime"`
	Rated        string   `json:"Rated"`
	Released     string   `json:"Released"`
	Country      string   `json:"Country"`
	Language     string   `json:"Language"`
	Awards       string   `json:"Awards"`
	ImdbRating   string   `json:"imdbRating"`
	ImdbVotes    string   `json:"imdbVotes"`
	Metascore    string   `json:"Metascore"`
	BoxOffice    string   `json:"BoxOffice"`
	TotalSeasons string   `json:"totalSeasons"`
	Ratings      []Rating `json:"Ratings"`
}

func (d detailsResponse) toDetails() *Details {
	return &Details{
		Item:         d.searchItem.toItem(),
		Plot:         clean(d.Plot),
		Director:     clean(d.Director),
		Writer:       clean(d.Writer),
		Actors:       clean(d.Actors),
		Genre:        clean(d.Genre),
		Runtime:      clean(d.Runtime),
		Rated:        clean(d.Rated),
		Released:     clean(d.Released),
		Country:      clean(d.Country),
		Language:     clean(d.Language),
		Awards:       clean(d.Awards),
		IMDbRating:   clean(d.ImdbRating),
		IMDbVotes:    clean(d.ImdbVotes),
		Metascore:    clean(d.Metascore),
		BoxOffice:    clean(d.BoxOffice),
		TotalSeasons: clean(d.TotalSeasons),
		Ratings:      d.Ratings,
	}
}

// clean maps the upstream "N/A" placeholder to the empty string
func clean(s string) string {
	s = strings.TrimSpace(s)
	if s == notAvailable {
		return ""
	}
	return s
}

func splitList(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func startYear(s string) int {
	end := 0
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == 0 {
		return 0
	}
	year, err := strconv.Atoi(s[:end])
	if err != nil {
		return 0
	}
	return year
}
