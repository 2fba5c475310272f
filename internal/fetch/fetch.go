// Package fetch retrieves textage source files and decodes them from the
// site's Shift_JIS encoding into UTF-8 text.
package fetch

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/transform"
)

// DefaultBaseURL is where textage serves its score tables.
const DefaultBaseURL = "https://textage.cc/score/"

// DefaultTimeout bounds a single download.
const DefaultTimeout = 30 * time.Second

// ErrNetwork indicates a source file could not be retrieved.
var ErrNetwork = errors.New("fetch failed")

// Fetcher retrieves one named resource as decoded text.
type Fetcher interface {
	Fetch(ctx context.Context, resource string) (string, error)
}

// HTTP fetches resources relative to a base URL.
type HTTP struct {
	BaseURL   string
	UserAgent string
	Client    *http.Client
	Logger    *slog.Logger
}

// NewHTTP returns an HTTP fetcher with its own client. A non-positive timeout
// selects DefaultTimeout; an empty baseURL selects DefaultBaseURL.
func NewHTTP(baseURL string, timeout time.Duration, userAgent string, logger *slog.Logger) *HTTP {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &HTTP{
		BaseURL:   baseURL,
		UserAgent: userAgent,
		Client:    &http.Client{Timeout: timeout},
		Logger:    logger,
	}
}

// Fetch downloads resource and decodes the body from Shift_JIS.
func (h *HTTP) Fetch(ctx context.Context, resource string) (string, error) {
	u, err := url.JoinPath(h.BaseURL, resource)
	if err != nil {
		return "", fmt.Errorf("%w: building URL for %q: %v", ErrNetwork, resource, err)
	}
	h.Logger.Debug("HTTP GET", "url", u)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return "", fmt.Errorf("%w: creating request: %v", ErrNetwork, err)
	}
	if h.UserAgent != "" {
		req.Header.Set("User-Agent", h.UserAgent)
	}

	resp, err := h.Client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: GET %s: %w", ErrNetwork, u, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("%w: GET %s: status %s", ErrNetwork, u, resp.Status)
	}

	text, err := decodeShiftJIS(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%w: reading %s: %w", ErrNetwork, u, err)
	}
	h.Logger.Debug("HTTP GET done", "url", u, "bytes", len(text))
	return text, nil
}

// Dir reads resources from a local mirror of the score directory. Files are
// expected in the site's original encoding.
type Dir struct {
	Root string
}

// Fetch reads Root/resource and decodes it from Shift_JIS.
func (d Dir) Fetch(_ context.Context, resource string) (string, error) {
	path := filepath.Join(d.Root, filepath.FromSlash(resource))
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrNetwork, err)
	}
	text, err := decodeShiftJIS(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("%w: decoding %s: %w", ErrNetwork, path, err)
	}
	return text, nil
}

// DecodeShiftJIS converts Shift_JIS bytes to a UTF-8 string.
func DecodeShiftJIS(b []byte) (string, error) {
	return decodeShiftJIS(bytes.NewReader(b))
}

func decodeShiftJIS(r io.Reader) (string, error) {
	out, err := io.ReadAll(transform.NewReader(r, japanese.ShiftJIS.NewDecoder()))
	if err != nil {
		return "", err
	}
	return string(out), nil
}
