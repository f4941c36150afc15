// Package fetch downloads call report SDF files over HTTP into the data
// directory.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/theirongolddev/dupont/internal/callreport"
)

const (
	requestTimeout     = 2 * time.Minute
	defaultMaxBody     = 64 << 20 // 64 MB; a full call report is a few hundred KB
	defaultConcurrency = 4
	userAgent          = "github.com/theirongolddev/dupont/1.0"
)

var (
	// ErrNotFound indicates the server has no file at the URL.
	ErrNotFound = errors.New("fetch: not found")
	// ErrRateLimited indicates the server rate limit was hit.
	ErrRateLimited = errors.New("fetch: rate limited")
	// ErrTooLarge indicates the body exceeded the size cap.
	ErrTooLarge = errors.New("fetch: response too large")
)

// Client downloads SDF files.
type Client struct {
	http        *http.Client
	maxBody     int64
	concurrency int
	logger      *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithMaxBody caps the number of bytes read per download.
func WithMaxBody(n int64) Option {
	return func(c *Client) { c.maxBody = n }
}

// WithConcurrency limits parallel downloads.
func WithConcurrency(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.concurrency = n
		}
	}
}

// WithLogger sets the structured logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// NewClient creates a download client.
func NewClient(opts ...Option) *Client {
	c := &Client{
		http:        &http.Client{},
		maxBody:     defaultMaxBody,
		concurrency: defaultConcurrency,
		logger:      slog.Default(),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Result describes one completed download.
type Result struct {
	URL     string
	Path    string
	Bytes   int64
	Records int
}

// DownloadAll fetches every URL into dir with bounded concurrency. The
// first failure cancels the remaining downloads. Results keep URL order.
func (c *Client) DownloadAll(ctx context.Context, urls []string, dir string) ([]Result, error) {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("creating data dir: %w", err)
	}

	results := make([]Result, len(urls))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(c.concurrency)

	for i, u := range urls {
		g.Go(func() error {
			r, err := c.Download(ctx, u, dir)
			if err != nil {
				return fmt.Errorf("%s: %w", u, err)
			}
			results[i] = r
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// Download fetches one URL into dir. The body is written to a temporary
// file, checked to parse as an SDF report, then renamed into place.
func (c *Client) Download(ctx context.Context, rawURL, dir string) (Result, error) {
	name, err := FileName(rawURL)
	if err != nil {
		return Result{}, err
	}

	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return Result{}, fmt.Errorf("fetch: creating request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	start := time.Now()
	resp, err := c.http.Do(req) //nolint:gosec // URL is supplied by the user on purpose
	if err != nil {
		return Result{}, fmt.Errorf("fetch: request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	switch resp.StatusCode {
	case http.StatusNotFound:
		return Result{}, ErrNotFound
	case http.StatusTooManyRequests:
		return Result{}, ErrRateLimited
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return Result{}, fmt.Errorf("fetch: unexpected status %d", resp.StatusCode)
	}

	tmp, err := os.CreateTemp(dir, ".fetch-*")
	if err != nil {
		return Result{}, err
	}
	tmpPath := tmp.Name()
	defer func() { _ = os.Remove(tmpPath) }()

	n, err := io.Copy(tmp, io.LimitReader(resp.Body, c.maxBody+1))
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return Result{}, fmt.Errorf("fetch: reading response: %w", err)
	}
	if n > c.maxBody {
		return Result{}, ErrTooLarge
	}

	rs, err := callreport.ParseFile(tmpPath)
	if err != nil {
		return Result{}, err
	}

	dest := filepath.Join(dir, name)
	if err := os.Rename(tmpPath, dest); err != nil {
		return Result{}, err
	}

	c.logger.Info("downloaded call report",
		slog.String("url", rawURL),
		slog.String("path", dest),
		slog.Int64("bytes", n),
		slog.Int("records", rs.Len()),
		slog.Duration("elapsed", time.Since(start)))

	return Result{URL: rawURL, Path: dest, Bytes: n, Records: rs.Len()}, nil
}

// FileName derives the local file name from a URL's last path segment,
// adding an .SDF extension when it has none.
func FileName(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("fetch: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("fetch: unsupported scheme %q", u.Scheme)
	}
	base := path.Base(u.Path)
	if base == "." || base == "/" || base == "" || strings.HasPrefix(base, ".") {
		return "", fmt.Errorf("fetch: no file name in %s", rawURL)
	}
	if path.Ext(base) == "" {
		base += ".SDF"
	}
	return base, nil
}
