// Package meshsource implements the mesh-retrieval client.
//
// A Client fetches binary mesh frames for segmentation IDs from a remote
// mesh source and caches them on local disk. A fetch for a segment that
// is already cached is served from disk without a network round trip.
package meshsource

import (
	"context"
	"crypto/sha256"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"neuromesh/internal/codec"
	"neuromesh/internal/domain"
)

// Client retrieves meshes from a segmentation source with disk caching
type Client struct {
	baseURL  string
	cacheDir string
	http     *http.Client
}

// Option configures a Client
type Option func(*Client)

// WithHTTPClient overrides the HTTP client used for downloads
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.http = hc
	}
}

// New creates a mesh source client. The cache directory is created if
// it does not exist.
func New(baseURL, cacheDir string, opts ...Option) (*Client, error) {
	if err := os.MkdirAll(cacheDir, 0755); err != nil {
		return nil, fmt.Errorf("create cache dir: %w", err)
	}
	c := &Client{
		baseURL:  baseURL,
		cacheDir: cacheDir,
		http:     &http.Client{Timeout: 5 * time.Minute},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// CacheDir returns the local cache directory
func (c *Client) CacheDir() string {
	return c.cacheDir
}

// CachePath returns the cache file path for a segment ID
func (c *Client) CachePath(segmentID uint64) string {
	return filepath.Join(c.cacheDir, fmt.Sprintf("%d.nmsh", segmentID))
}

// Result describes a completed fetch
type Result struct {
	Mesh      *domain.Mesh
	Path      string
	Checksum  string
	FromCache bool
}

// Fetch returns the mesh for a segment ID. The cached copy is used when
// present; otherwise the mesh is downloaded, written to the cache
// atomically, and returned.
func (c *Client) Fetch(ctx context.Context, segmentID uint64) (*Result, error) {
	path := c.CachePath(segmentID)

	if mesh, checksum, err := c.readCached(path); err == nil {
		return &Result{Mesh: mesh, Path: path, Checksum: checksum, FromCache: true}, nil
	} else if !os.IsNotExist(err) {
		// A cached file exists but cannot be decoded. Refetch over it.
		os.Remove(path)
	}

	mesh, err := c.download(ctx, segmentID)
	if err != nil {
		return nil, err
	}

	checksum, err := c.writeCache(path, mesh)
	if err != nil {
		return nil, err
	}

	return &Result{Mesh: mesh, Path: path, Checksum: checksum, FromCache: false}, nil
}

// Cached reports whether a segment is present in the cache
func (c *Client) Cached(segmentID uint64) bool {
	_, err := os.Stat(c.CachePath(segmentID))
	return err == nil
}

// Evict removes a segment from the cache. Missing files are not an error.
func (c *Client) Evict(segmentID uint64) error {
	err := os.Remove(c.CachePath(segmentID))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("evict segment %d: %w", segmentID, err)
	}
	return nil
}

func (c *Client) readCached(path string) (*domain.Mesh, string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, "", err
	}
	defer f.Close()

	hash := sha256.New()
	mesh, err := codec.DecodeMesh(io.TeeReader(f, hash))
	if err != nil {
		return nil, "", err
	}
	return mesh, fmt.Sprintf("%x", hash.Sum(nil)), nil
}

func (c *Client) download(ctx context.Context, segmentID uint64) (*domain.Mesh, error) {
	url := fmt.Sprintf("%s/meshes/%d", c.baseURL, segmentID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request for segment %d: %w", segmentID, err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download segment %d: %w", segmentID, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("segment %d not found at source", segmentID)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("download segment %d: source returned %s", segmentID, resp.Status)
	}

	mesh, err := codec.DecodeMesh(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("decode segment %d: %w", segmentID, err)
	}
	if mesh.SegmentID != segmentID {
		return nil, fmt.Errorf("source returned segment %d, requested %d", mesh.SegmentID, segmentID)
	}
	return mesh, nil
}

// writeCache writes the mesh to path via a temp file and rename, so a
// crashed download never leaves a partial frame behind
func (c *Client) writeCache(path string, mesh *domain.Mesh) (string, error) {
	tmp, err := os.CreateTemp(c.cacheDir, ".download-*")
	if err != nil {
		return "", fmt.Errorf("create temp cache file: %w", err)
	}
	defer os.Remove(tmp.Name())

	hash := sha256.New()
	if err := codec.EncodeMesh(io.MultiWriter(tmp, hash), mesh); err != nil {
		tmp.Close()
		return "", fmt.Errorf("write cache file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("close cache file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return "", fmt.Errorf("install cache file: %w", err)
	}
	return fmt.Sprintf("%x", hash.Sum(nil)), nil
}

// Store writes a mesh into the cache under the given file name, used for
// healed meshes and masking output. Returns path and checksum.
func (c *Client) Store(name string, mesh *domain.Mesh) (string, string, error) {
	path := filepath.Join(c.cacheDir, name)
	checksum, err := c.writeCache(path, mesh)
	if err != nil {
		return "", "", err
	}
	return path, checksum, nil
}

// Load decodes a mesh from an arbitrary cache path
func (c *Client) Load(path string) (*domain.Mesh, error) {
	mesh, _, err := c.readCached(path)
	if err != nil {
		return nil, fmt.Errorf("load cached mesh %s: %w", path, err)
	}
	return mesh, nil
}

// Checksum returns the SHA-256 of a cache file
func Checksum(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	hash := sha256.New()
	if _, err := io.Copy(hash, f); err != nil {
		return "", fmt.Errorf("hash %s: %w", path, err)
	}
	return fmt.Sprintf("%x", hash.Sum(nil)), nil
}
