// Package release resolves the latest FRS release from the GitHub releases
// API and downloads its assets.
package release

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/Z3rio/frs-manager/internal/logging"
	"github.com/charmbracelet/log"
)

const (
	DefaultEndpoint  = "https://api.github.com/repos/Z3rio/frs-manager/releases/latest"
	DefaultUserAgent = "FRS-Manager"
)

// Client talks to the release endpoint. The zero value is not usable; use
// NewClient.
type Client struct {
	endpoint  string
	userAgent string
	token     string
	http      *http.Client
	logger    *log.Logger
}

type Options struct {
	Endpoint  string
	UserAgent string
	Token     string
	Timeout   time.Duration
	// HTTPClient overrides the default client; Timeout is ignored when set.
	HTTPClient *http.Client
	Logger     *log.Logger
}

func NewClient(opts Options) *Client {
	c := &Client{
		endpoint:  opts.Endpoint,
		userAgent: opts.UserAgent,
		token:     strings.TrimSpace(opts.Token),
		http:      opts.HTTPClient,
		logger:    opts.Logger,
	}
	if c.endpoint == "" {
		c.endpoint = DefaultEndpoint
	}
	if c.userAgent == "" {
		c.userAgent = DefaultUserAgent
	}
	if c.http == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = 5 * time.Minute
		}
		c.http = &http.Client{Timeout: timeout}
	}
	if c.logger == nil {
		c.logger = logging.Discard()
	}
	return c
}

// Resolve fetches the latest release and picks the required artifacts.
// It performs a single request and never retries.
func (c *Client) Resolve(ctx context.Context) (Artifacts, error) {
	m, err := c.fetchManifest(ctx)
	if err != nil {
		return Artifacts{}, err
	}
	c.logger.Debug("fetched release manifest", "id", m.ID, "assets", len(m.Assets))
	return Select(m)
}

func (c *Client) fetchManifest(ctx context.Context) (Manifest, error) {
	req, err := c.newRequest(ctx, c.endpoint)
	if err != nil {
		return Manifest{}, fmt.Errorf("%w: %v", ErrRequest, err)
	}
	req.Header.Set("Accept", "application/vnd.github+json")

	resp, err := c.http.Do(req)
	if err != nil {
		return Manifest{}, fmt.Errorf("%w: %v", ErrRequest, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Manifest{}, fmt.Errorf("%w %d", ErrStatus, resp.StatusCode)
	}

	var m Manifest
	if err := json.NewDecoder(resp.Body).Decode(&m); err != nil {
		return Manifest{}, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	return m, nil
}

// Download streams the asset at url into w and returns the number of bytes
// written.
func (c *Client) Download(ctx context.Context, url string, w io.Writer) (int64, error) {
	req, err := c.newRequest(ctx, url)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrDownload, err)
	}
	req.Header.Set("Accept", "application/octet-stream")

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrDownload, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("%w: status %d", ErrDownload, resp.StatusCode)
	}

	n, err := io.Copy(w, resp.Body)
	if err != nil {
		return n, fmt.Errorf("%w: %v", ErrDownload, err)
	}
	c.logger.Debug("downloaded asset", "url", url, "bytes", n)
	return n, nil
}

func (c *Client) newRequest(ctx context.Context, url string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", c.userAgent)
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	return req, nil
}
