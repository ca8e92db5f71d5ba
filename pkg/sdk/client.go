// Package sdk provides the client-side library for the catalog REST API.
// It supports both a remote HTTP backend and a local embedded store.
package sdk

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/celerix-dev/celerix-catalog/pkg/listview"
)

const maxAttempts = 3

// Client talks to the catalog REST API.
// It implements the CatalogClient interface.
type Client struct {
	baseURL string
	http    *http.Client
	log     *zap.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithLogger sets the logger used for retries and failures.
func WithLogger(log *zap.Logger) Option {
	return func(c *Client) { c.log = log }
}

// Connect returns a client for the API rooted at baseURL, e.g. http://localhost:3000.
func Connect(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse api url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("unsupported api url scheme %q", u.Scheme)
	}

	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 30 * time.Second},
		log:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// FetchCollection GETs /{collection}. Reads are idempotent, so transport
// errors and 5xx answers are retried with backoff.
func (c *Client) FetchCollection(ctx context.Context, collection string) ([]listview.Record, error) {
	path := "/" + url.PathEscape(collection)

	var err error
	for i := range maxAttempts {
		var records []listview.Record
		err = c.do(ctx, http.MethodGet, path, nil, &records)
		if err == nil {
			return records, nil
		}
		if !retryable(err) || ctx.Err() != nil {
			return nil, err
		}

		c.log.Warn("fetch attempt failed",
			zap.String("collection", collection),
			zap.Int("attempt", i+1),
			zap.Error(err))
		if i == maxAttempts-1 {
			break
		}

		// Wait before retrying (linear backoff)
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(time.Duration((i+1)*200) * time.Millisecond):
		}
	}
	return nil, fmt.Errorf("failed after %d attempts: %w", maxAttempts, err)
}

// CreateRecord POSTs rec and returns the stored record.
func (c *Client) CreateRecord(ctx context.Context, collection string, rec listview.Record) (listview.Record, error) {
	var created listview.Record
	if err := c.do(ctx, http.MethodPost, "/"+url.PathEscape(collection), rec, &created); err != nil {
		return nil, err
	}
	return created, nil
}

// UpdateRecord PATCHes the given fields.
func (c *Client) UpdateRecord(ctx context.Context, collection, id string, partial listview.Record) error {
	return c.do(ctx, http.MethodPatch, recordPath(collection, id), partial, nil)
}

// DeleteRecord DELETEs the record.
func (c *Client) DeleteRecord(ctx context.Context, collection, id string) error {
	return c.do(ctx, http.MethodDelete, recordPath(collection, id), nil, nil)
}

func recordPath(collection, id string) string {
	return "/" + url.PathEscape(collection) + "/" + url.PathEscape(id)
}

// Internal helper for one HTTP round trip.
func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		serr := &StatusError{Method: method, Path: path, StatusCode: resp.StatusCode}
		var payload struct {
			Error string `json:"error"`
		}
		if b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096)); len(b) > 0 {
			if json.Unmarshal(b, &payload) == nil {
				serr.Message = payload.Error
			}
		}
		c.log.Debug("catalog api error", zap.Error(serr))
		return serr
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}

func retryable(err error) bool {
	if serr, ok := err.(*StatusError); ok {
		return serr.StatusCode >= 500
	}
	return true
}

// --- Generics Support ---

// Decode converts loaded records into typed rows, e.g. []schema.Product.
func Decode[T any](records []listview.Record) ([]T, error) {
	b, err := json.Marshal(records)
	if err != nil {
		return nil, err
	}
	var out []T
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Fetch loads a collection and decodes it into typed rows.
func Fetch[T any](ctx context.Context, l Loader, collection string) ([]T, error) {
	records, err := l.FetchCollection(ctx, collection)
	if err != nil {
		return nil, err
	}
	return Decode[T](records)
}
