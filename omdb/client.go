package omdb

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// connectionProbeID is a stable title used to verify key and reachability
const connectionProbeID = "tt0111161"

// Client represents an OMDb API client
type Client struct {
	baseURL    string
	apiKey     string
	userAgent  string
	httpClient *http.Client
	logger     zerolog.Logger
}

// NewClient creates a new OMDb client.
//
// An empty apiKey is accepted: every call then fails with
// KindMissingCredential without touching the network.
func NewClient(apiKey string, logger zerolog.Logger, opts ...Option) *Client {
	client := &Client{
		baseURL:    DefaultBaseURL,
		apiKey:     strings.TrimSpace(apiKey),
		userAgent:  "reelscout",
		httpClient: &http.Client{Timeout: DefaultTimeout},
		logger:     logger,
	}

	for _, opt := range opts {
		opt(client)
	}

	return client
}

// HasCredential reports whether an API key is configured
func (c *Client) HasCredential() bool {
	return c.apiKey != ""
}

// buildURL assembles the request URL, dropping blank parameters
func (c *Client) buildURL(params map[string]string) string {
	values := url.Values{}
	values.Set("apikey", c.apiKey)
	for key, value := range params {
		if value = strings.TrimSpace(value); value != "" {
			values.Set(key, value)
		}
	}

	sep := "?"
	if strings.Contains(c.baseURL, "?") {
		sep = "&"
	}
	return c.baseURL + sep + values.Encode()
}

// doRequest performs a GET against the endpoint and decodes the JSON body into out
func (c *Client) doRequest(ctx context.Context, params map[string]string, out any) error {
	if !c.HasCredential() {
		return missingCredential()
	}

	requestURL := c.buildURL(params)
	requestID := uuid.NewString()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return &APIError{Kind: KindTransport, Message: "failed to create request", Err: err}
	}
	req.Header.Set("Accept", "application/json")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	c.logger.Debug().
		Str("request_id", requestID).
		Str("url", redactKey(requestURL)).
		Msg("Making OMDb API request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &APIError{Kind: KindTransport, Message: "request failed", Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return &APIError{Kind: KindTransport, StatusCode: resp.StatusCode, Message: "failed to read response body", Err: err}
	}

	c.logger.Debug().
		Str("request_id", requestID).
		Int("status", resp.StatusCode).
		Int("bytes", len(body)).
		Msg("OMDb API response")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := fmt.Sprintf("HTTP error! status: %d", resp.StatusCode)
		var env envelope
		if json.Unmarshal(body, &env) == nil && env.Error != "" {
			msg = env.Error
		}
		return &APIError{Kind: KindTransport, StatusCode: resp.StatusCode, Message: msg}
	}

	if err := json.Unmarshal(body, out); err != nil {
		return &APIError{Kind: KindTransport, StatusCode: resp.StatusCode, Message: "failed to parse response", Err: err}
	}

	return nil
}

// Search runs a title search and returns one page of matches
func (c *Client) Search(ctx context.Context, params SearchParams) (*SearchResult, error) {
	if !c.HasCredential() {
		return nil, missingCredential()
	}

	query := strings.TrimSpace(params.Query)
	if query == "" {
		return nil, &APIError{Kind: KindNoResults, Message: "Please enter a search term"}
	}

	page := params.Page
	if page < 1 {
		page = 1
	}

	var response searchResponse
	err := c.doRequest(ctx, map[string]string{
		"s":    query,
		"type": string(params.Type),
		"y":    params.Year,
		"page": strconv.Itoa(page),
	}, &response)
	if err != nil {
		return nil, err
	}

	if !response.ok() {
		msg := response.Error
		if msg == "" {
			msg = "No movies found"
		}
		return nil, &APIError{Kind: KindNoResults, Message: msg}
	}

	total, err := strconv.Atoi(strings.TrimSpace(response.TotalResults))
	if err != nil || total < 0 {
		return nil, &APIError{
			Kind:    KindTransport,
			Message: fmt.Sprintf("invalid totalResults %q", response.TotalResults),
			Err:     err,
		}
	}

	items := make([]Item, 0, len(response.Search))
	for _, match := range response.Search {
		items = append(items, match.toItem())
	}

	c.logger.Debug().
		Str("query", query).
		Int("page", page).
		Int("count", len(items)).
		Int("total", total).
		Msg("Retrieved search results from OMDb")

	return &SearchResult{Items: items, TotalResults: total}, nil
}

// GetDetails retrieves the full record for a single IMDb id
func (c *Client) GetDetails(ctx context.Context, id string) (*Details, error) {
	if !c.HasCredential() {
		return nil, missingCredential()
	}

	id = strings.TrimSpace(id)
	if id == "" {
		return nil, &APIError{Kind: KindNotFound, Message: "Movie not found"}
	}

	var response detailsResponse
	if err := c.doRequest(ctx, map[string]string{"i": id, "plot": "full"}, &response); err != nil {
		return nil, err
	}

	if !response.ok() {
		msg := response.Error
		if msg == "" {
			msg = "Movie not found"
		}
		return nil, &APIError{Kind: KindNotFound, Message: msg}
	}

	return response.toDetails(), nil
}

// TestConnection verifies the key is accepted and the endpoint reachable
func (c *Client) TestConnection(ctx context.Context) error {
	if _, err := c.GetDetails(ctx, connectionProbeID); err != nil {
		return fmt.Errorf("failed to connect to OMDb: %w", err)
	}
	return nil
}

// redactKey hides the API key when logging a request URL
func redactKey(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	q := u.Query()
	if q.Has("apikey") {
		q.Set("apikey", "REDACTED")
		u.RawQuery = q.Encode()
	}
	return u.String()
}
