package omdb

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"
)

// DefaultBatchConcurrency limits parallel detail lookups
const DefaultBatchConcurrency = 4

// BatchDetailsResult contains the results of a batch lookup, in request order
type BatchDetailsResult struct {
	Requested  int
	Successful []*Details
	Failed     []LookupError
}

// LookupError contains information about a failed detail lookup
type LookupError struct {
	ID  string
	Err error
}

// Error implements the error interface
func (e LookupError) Error() string {
	return fmt.Sprintf("failed to look up %s: %v", e.ID, e.Err)
}

// Unwrap returns the underlying lookup error
func (e LookupError) Unwrap() error {
	return e.Err
}

// GetDetailsBatch fetches several records concurrently.
// Individual failures are collected instead of aborting the batch.
func GetDetailsBatch(ctx context.Context, api API, ids []string) BatchDetailsResult {
	result := BatchDetailsResult{Requested: len(ids)}
	if len(ids) == 0 {
		return result
	}

	details := make([]*Details, len(ids))
	errs := make([]error, len(ids))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(DefaultBatchConcurrency)

	var mu sync.Mutex
	for i, id := range ids {
		g.Go(func() error {
			d, err := api.GetDetails(ctx, id)
			mu.Lock()
			details[i], errs[i] = d, err
			mu.Unlock()
			return nil // keep going on individual errors
		})
	}

	_ = g.Wait()

	for i, id := range ids {
		if errs[i] != nil {
			result.Failed = append(result.Failed, LookupError{ID: id, Err: errs[i]})
			continue
		}
		result.Successful = append(result.Successful, details[i])
	}

	return result
}

// GetDetailsBatch fetches several records concurrently using this client
func (c *Client) GetDetailsBatch(ctx context.Context, ids []string) BatchDetailsResult {
	result := GetDetailsBatch(ctx, c, ids)

	c.logger.Debug().
		Int("requested", result.Requested).
		Int("successful", len(result.Successful)).
		Int("failed", len(result.Failed)).
		Msg("Finished batch detail lookup")

	return result
}
