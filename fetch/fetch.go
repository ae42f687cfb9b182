// CLAUDE:SUMMARY HTTP collaborator — bounded GET with content-type capture and download-to-temp.
// Package fetch performs the HTTP side of URL inputs: page fetches with a
// short timeout and file downloads spooled to a temp file.
package fetch

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/gabriel-vasile/mimetype"

	"github.com/hazyhaar/annexe/idgen"
)

// Result contains the outcome of a fetch.
type Result struct {
	Body        []byte
	StatusCode  int
	ContentType string
	ContentLen  int64
}

// Config configures the fetcher.
type Config struct {
	// PageTimeout bounds HTML page fetches. Default: 10s.
	PageTimeout time.Duration
	// FileTimeout bounds binary file downloads. Default: 30s.
	FileTimeout time.Duration
	// MaxBytes caps response bodies. Default: 50MB.
	MaxBytes int64
	// UserAgent sent with requests.
	UserAgent string
	// Logger for debug messages.
	Logger *slog.Logger
}

func (c *Config) defaults() {
	if c.PageTimeout <= 0 {
		c.PageTimeout = 10 * time.Second
	}
	if c.FileTimeout <= 0 {
		c.FileTimeout = 30 * time.Second
	}
	if c.MaxBytes <= 0 {
		c.MaxBytes = 50 * 1024 * 1024
	}
	if c.UserAgent == "" {
		c.UserAgent = "annexe/1.0"
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
}

// Fetcher performs HTTP requests.
type Fetcher struct {
	client *http.Client
	cfg    Config
}

// New creates a Fetcher with a redirect cap.
func New(cfg Config) *Fetcher {
	cfg.defaults()
	return &Fetcher{
		client: &http.Client{
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 5 {
					return fmt.Errorf("too many redirects (%d)", len(via))
				}
				return nil
			},
		},
		cfg: cfg,
	}
}

// Page retrieves a URL as an HTML page, bounded by PageTimeout.
func (f *Fetcher) Page(ctx context.Context, url string) (*Result, error) {
	return f.get(ctx, url, f.cfg.PageTimeout)
}

func (f *Fetcher) get(ctx context.Context, url string, timeout time.Duration) (*Result, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("fetch: build request: %w", err)
	}
	req.Header.Set("User-Agent", f.cfg.UserAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch: GET %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("fetch: GET %s: status %d", url, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.cfg.MaxBytes))
	if err != nil {
		return nil, fmt.Errorf("fetch: read body: %w", err)
	}

	ct := resp.Header.Get("Content-Type")
	if ct == "" {
		ct = mimetype.Detect(body).String()
	}

	f.cfg.Logger.Debug("fetched", "url", url, "status", resp.StatusCode, "bytes", len(body))
	return &Result{
		Body:        body,
		StatusCode:  resp.StatusCode,
		ContentType: ct,
		ContentLen:  resp.ContentLength,
	}, nil
}

// Download retrieves a URL bounded by FileTimeout and spools the body to a
// temp file whose extension matches the URL path. The caller owns the file.
func (f *Fetcher) Download(ctx context.Context, url, ext string) (string, *Result, error) {
	res, err := f.get(ctx, url, f.cfg.FileTimeout)
	if err != nil {
		return "", nil, err
	}
	name := filepath.Join(os.TempDir(), "annexe_"+idgen.New()+ext)
	if err := os.WriteFile(name, res.Body, 0o600); err != nil {
		return "", nil, fmt.Errorf("fetch: spool download: %w", err)
	}
	return name, res, nil
}
