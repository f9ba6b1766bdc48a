// Package flagfetch downloads flag SVGs from the flag-icon-css repository.
package flagfetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/hightemp/flagpic/internal/apperrors"
	"github.com/hightemp/flagpic/internal/config"
	"github.com/hightemp/flagpic/internal/countries"
	"github.com/hightemp/flagpic/internal/fsutil"
	"github.com/hightemp/flagpic/internal/logger"
)

const (
	// MaxRetries for failed requests.
	MaxRetries = 3

	// BaseBackoff for exponential backoff.
	BaseBackoff = 1 * time.Second

	// MaxBackoff for exponential backoff.
	MaxBackoff = 30 * time.Second

	// maxBodySize caps a downloaded flag.
	maxBodySize = 4 << 20
)

// AspectRatio selects one of the two flag sets in the repository.
type AspectRatio string

const (
	// Ratio1x1 is the square flag set.
	Ratio1x1 AspectRatio = "1x1"
	// Ratio4x3 is the 4:3 flag set.
	Ratio4x3 AspectRatio = "4x3"
)

// ParseAspectRatio parses "1x1" or "4x3". An empty string means 1x1.
func ParseAspectRatio(s string) (AspectRatio, error) {
	switch strings.TrimSpace(s) {
	case "1x1", "":
		return Ratio1x1, nil
	case "4x3":
		return Ratio4x3, nil
	default:
		return "", fmt.Errorf("invalid aspect ratio: %s (use 1x1 or 4x3)", s)
	}
}

// DefaultName is the file name template used when the caller gives none.
func (r AspectRatio) DefaultName() string {
	if r == Ratio4x3 {
		return "{code}_4x3"
	}
	return "{code}"
}

// StatusError is a non-200 response.
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.URL)
}

// permanent reports whether retrying cannot help.
func (e *StatusError) permanent() bool {
	return e.StatusCode >= 400 && e.StatusCode < 500 && e.StatusCode != http.StatusTooManyRequests
}

// Client fetches flags over HTTP.
type Client struct {
	httpClient  *http.Client
	baseURL     string
	userAgent   string
	cache       *Cache
	baseBackoff time.Duration
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL points the client at another mirror of the repository.
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = strings.TrimRight(u, "/") }
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.httpClient.Timeout = d
		}
	}
}

// WithCache serves repeated fetches from an on-disk cache.
func WithCache(cache *Cache) Option {
	return func(c *Client) { c.cache = cache }
}

// NewClient creates a new flag client.
func NewClient(opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{
			Timeout: config.DefaultHTTPTimeout,
		},
		baseURL:     config.DefaultRemoteBaseURL,
		userAgent:   config.UserAgent,
		baseBackoff: BaseBackoff,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// FlagURL returns <base>/flags/<ratio>/<code>.svg with the code lower-cased.
func (c *Client) FlagURL(code string, ratio AspectRatio) string {
	return fmt.Sprintf("%s/flags/%s/%s.svg", c.baseURL, ratio, strings.ToLower(code))
}

// FetchRemote downloads the SVG flag for code. Codes outside the ISO 3166 registry
// are rejected with *apperrors.InvalidCodeError before any request is made. A
// missing flag, or a response that is not an SVG document, is reported as
// *apperrors.NotFoundError.
func (c *Client) FetchRemote(ctx context.Context, code string, ratio AspectRatio) ([]byte, error) {
	if !validCode(code) {
		return nil, apperrors.NewInvalidCode(code)
	}
	code = strings.ToLower(code)

	if c.cache != nil {
		if data, ok := c.cache.Get(ratio, code); ok {
			logger.Debug("flag cache hit", "code", code, "ratio", string(ratio))
			return data, nil
		}
	}

	u := c.FlagURL(code, ratio)
	data, err := c.get(ctx, u)
	if err != nil {
		var se *StatusError
		if errors.As(err, &se) && se.StatusCode == http.StatusNotFound {
			return nil, &apperrors.NotFoundError{What: code, Err: err}
		}
		return nil, fmt.Errorf("fetch flag %s: %w", code, err)
	}

	info, err := ParseSVG(data)
	if err != nil {
		return nil, &apperrors.NotFoundError{What: code, Err: err}
	}
	logger.Debug("downloaded flag", "code", code, "ratio", string(ratio), "viewbox", info.ViewBox, "bytes", len(data))

	if c.cache != nil {
		if err := c.cache.Put(ratio, code, data); err != nil {
			logger.WithError(err).Warn("could not cache flag", "code", code)
		}
	}
	return data, nil
}

// Save downloads the flag for code into dir. name is a template in which "{code}"
// is replaced by the lower-case code; the extension comes from the URL. dir must
// already exist. It returns the written path.
func (c *Client) Save(ctx context.Context, code string, ratio AspectRatio, dir, name string) (string, error) {
	if !config.IsDir(dir) {
		return "", &apperrors.InvalidPathError{Path: dir}
	}
	if !validCode(code) {
		return "", apperrors.NewInvalidCode(code)
	}
	if name == "" {
		name = ratio.DefaultName()
	}
	if strings.ContainsAny(name, `/\`) {
		return "", fmt.Errorf("name template %q must not contain path separators", name)
	}

	lower := strings.ToLower(code)
	fileName := strings.ReplaceAll(name, "{code}", lower) + path.Ext(c.FlagURL(lower, ratio))

	data, err := c.FetchRemote(ctx, code, ratio)
	if err != nil {
		return "", err
	}
	if err := fsutil.WriteFileAtomic(dir, fileName, data); err != nil {
		return "", fmt.Errorf("write %s: %w", fileName, err)
	}
	return filepath.Join(dir, fileName), nil
}

// get performs a GET with retries. Client errors other than 429 are not retried.
func (c *Client) get(ctx context.Context, u string) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt <= MaxRetries; attempt++ {
		if attempt > 0 {
			backoff := c.calculateBackoff(attempt)
			logger.Debug("retrying flag download", "url", u, "attempt", attempt, "backoff", backoff, "error", lastErr)
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff):
			}
		}

		body, err := c.doRequest(ctx, u)
		if err == nil {
			return body, nil
		}
		lastErr = err

		// Don't retry on context cancellation
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		var se *StatusError
		if errors.As(err, &se) && se.permanent() {
			return nil, err
		}
	}

	return nil, fmt.Errorf("after %d retries: %w", MaxRetries, lastErr)
}

func (c *Client) doRequest(ctx context.Context, u string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Accept", "image/svg+xml, */*")
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodySize))
		return nil, &StatusError{URL: u, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	return body, nil
}

func (c *Client) calculateBackoff(attempt int) time.Duration {
	backoff := c.baseBackoff * time.Duration(1<<uint(attempt-1))
	if backoff > MaxBackoff {
		backoff = MaxBackoff
	}
	if backoff < 4 {
		return backoff
	}
	// Add jitter (0-25% of backoff)
	jitter := time.Duration(rand.Int63n(int64(backoff / 4)))
	return backoff + jitter
}

func validCode(code string) bool {
	return len(code) == 2 && countries.IsValid(code)
}
