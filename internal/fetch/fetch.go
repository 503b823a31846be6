// Package fetch downloads the images submitted to the query pipeline.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"faceindex/internal/config"
	"faceindex/internal/storage"
)

var (
	// ErrFetch marks any failure to obtain image bytes.
	ErrFetch = errors.New("image fetch failed")
	// ErrTooLarge is returned when an image exceeds the configured size cap.
	ErrTooLarge = errors.New("image exceeds size limit")
)

// Fetcher reads the full content behind an image URL into memory.
type Fetcher interface {
	Fetch(ctx context.Context, rawURL string) ([]byte, error)
}

// HTTPFetcher issues plain GET requests.
type HTTPFetcher struct {
	client   *http.Client
	maxBytes int64
}

// NewHTTPFetcher builds a traced HTTP fetcher. A zero timeout leaves requests
// unbounded; a zero maxBytes disables the size cap.
func NewHTTPFetcher(cfg config.FetchConfig) *HTTPFetcher {
	return &HTTPFetcher{
		client: &http.Client{
			Transport: otelhttp.NewTransport(http.DefaultTransport),
			Timeout:   time.Duration(cfg.TimeoutSec) * time.Second,
		},
		maxBytes: cfg.MaxBytes,
	}
}

// Fetch GETs rawURL and returns the body. Non-2xx responses are failures.
func (f *HTTPFetcher) Fetch(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: build request: %w", ErrFetch, err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFetch, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: unexpected status %d from %s", ErrFetch, resp.StatusCode, req.URL.Host)
	}
	return readAll(resp.Body, f.maxBytes)
}

// ObjectFetcher reads s3://bucket/key locators from an object store.
type ObjectFetcher struct {
	reader   storage.ObjectReader
	maxBytes int64
}

// NewObjectFetcher wraps an ObjectReader.
func NewObjectFetcher(reader storage.ObjectReader, maxBytes int64) *ObjectFetcher {
	return &ObjectFetcher{reader: reader, maxBytes: maxBytes}
}

// Fetch reads the object named by an s3:// URL.
func (f *ObjectFetcher) Fetch(ctx context.Context, rawURL string) ([]byte, error) {
	bucket, key, err := ParseObjectURL(rawURL)
	if err != nil {
		return nil, err
	}

	rc, _, err := f.reader.Get(ctx, bucket, key)
	if err != nil {
		return nil, fmt.Errorf("%w: get object %s/%s: %w", ErrFetch, bucket, key, err)
	}
	defer rc.Close()

	return readAll(rc, f.maxBytes)
}

// ParseObjectURL splits s3://bucket/key into its parts.
func ParseObjectURL(rawURL string) (bucket, key string, err error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", "", fmt.Errorf("%w: parse url: %w", ErrFetch, err)
	}
	if u.Scheme != "s3" {
		return "", "", fmt.Errorf("%w: not an s3 url: %q", ErrFetch, rawURL)
	}
	key = strings.TrimPrefix(u.Path, "/")
	if u.Host == "" || key == "" {
		return "", "", fmt.Errorf("%w: s3 url needs bucket and key: %q", ErrFetch, rawURL)
	}
	return u.Host, key, nil
}

// Router dispatches on URL scheme.
type Router struct {
	byScheme map[string]Fetcher
}

// NewRouter serves http and https with web, and s3 with objects when it is non-nil.
func NewRouter(web Fetcher, objects Fetcher) *Router {
	r := &Router{byScheme: map[string]Fetcher{
		"http":  web,
		"https": web,
	}}
	if objects != nil {
		r.byScheme["s3"] = objects
	}
	return r
}

// Fetch hands rawURL to the fetcher registered for its scheme.
func (r *Router) Fetch(ctx context.Context, rawURL string) ([]byte, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("%w: parse url: %w", ErrFetch, err)
	}
	f, ok := r.byScheme[strings.ToLower(u.Scheme)]
	if !ok {
		return nil, fmt.Errorf("%w: unsupported scheme %q", ErrFetch, u.Scheme)
	}
	return f.Fetch(ctx, rawURL)
}

func readAll(r io.Reader, maxBytes int64) ([]byte, error) {
	if maxBytes <= 0 {
		b, err := io.ReadAll(r)
		if err != nil {
			return nil, fmt.Errorf("%w: read body: %w", ErrFetch, err)
		}
		return b, nil
	}

	b, err := io.ReadAll(io.LimitReader(r, maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %w", ErrFetch, err)
	}
	if int64(len(b)) > maxBytes {
		return nil, fmt.Errorf("%w: %w (%d bytes)", ErrFetch, ErrTooLarge, maxBytes)
	}
	return b, nil
}
