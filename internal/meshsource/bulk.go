package meshsource

import (
	"context"
	"log"
	"sync"

	"golang.org/x/sync/errgroup"
)

// BulkResult summarizes a bulk download
type BulkResult struct {
	Fetched   []uint64          `json:"fetched"`
	FromCache []uint64          `json:"from_cache"`
	Failed    map[uint64]string `json:"failed,omitempty"`
}

// ProgressFunc is called after each segment completes, with the number
// of segments finished so far and the total requested
type ProgressFunc func(done, total int, segmentID uint64, err error)

// FetchBulk downloads all requested segments with at most workers
// concurrent downloads. Individual failures are collected in the result
// rather than aborting the batch; the returned error is reserved for
// context cancellation.
func (c *Client) FetchBulk(ctx context.Context, segmentIDs []uint64, workers int, progress ProgressFunc) (*BulkResult, error) {
	if workers < 1 {
		workers = 1
	}

	result := &BulkResult{
		Fetched:   make([]uint64, 0, len(segmentIDs)),
		FromCache: make([]uint64, 0),
		Failed:    make(map[uint64]string),
	}

	var mu sync.Mutex
	done := 0

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for _, id := range segmentIDs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			res, err := c.Fetch(ctx, id)

			mu.Lock()
			done++
			n := done
			if err != nil {
				log.Printf("Bulk fetch: segment %d failed: %v", id, err)
				result.Failed[id] = err.Error()
			} else {
				result.Fetched = append(result.Fetched, id)
				if res.FromCache {
					result.FromCache = append(result.FromCache, id)
				}
			}
			mu.Unlock()

			if progress != nil {
				progress(n, len(segmentIDs), id, err)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return result, err
	}
	return result, nil
}
