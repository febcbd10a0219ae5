// Package segmentgraph implements a client for the segmentation-graph
// service.
//
// The segmentation graph tracks proofreading edits for each root segment.
// Every merge operation records the pair of world coordinates that were
// joined; the merge log for a root ID is the list of those pairs. Gap
// healing replays the log against a downloaded mesh to bridge the
// discontinuities left by independently meshed supervoxels.
package segmentgraph

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// MergeEdge is one proofreading merge: the two world coordinates (in
// nanometers) that were joined
type MergeEdge struct {
	A [3]float64 `json:"a"`
	B [3]float64 `json:"b"`
}

// Client talks to the segmentation-graph HTTP API
type Client struct {
	baseURL string
	http    *http.Client
}

// Option configures a Client
type Option func(*Client)

// WithHTTPClient overrides the HTTP client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.http = hc
	}
}

// New creates a segmentation-graph client
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// MergeLog fetches the merge log for a root segment ID
func (c *Client) MergeLog(ctx context.Context, segmentID uint64) ([]MergeEdge, error) {
	url := fmt.Sprintf("%s/segment/%d/merge_log", c.baseURL, segmentID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build merge log request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch merge log for segment %d: %w", segmentID, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("segment %d unknown to segmentation graph", segmentID)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("merge log for segment %d: graph returned %s", segmentID, resp.Status)
	}

	var payload struct {
		Merges []MergeEdge `json:"merges"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode merge log: %w", err)
	}
	return payload.Merges, nil
}
