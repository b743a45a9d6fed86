// Package swapi is a client for the remote entity API (SWAPI and compatible
// servers). It returns records of a category as [model.Entity] values in
// source order.
package swapi

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	json "github.com/goccy/go-json"
	"github.com/inovacc/starcards/internal/model"
	"golang.org/x/sync/errgroup"
)

const (
	defaultTimeout     = 30 * time.Second
	defaultConcurrency = 4
	maxBackoff         = 30 * time.Second
	maxErrorBody       = 512
)

// Options configures the client
type Options struct {
	// BaseURL is the API root, e.g. https://swapi.dev/api
	BaseURL string

	// Timeout bounds a single request (default 30s)
	Timeout time.Duration

	// Retries is the number of extra attempts for network errors and 5xx (default 0)
	Retries int

	// Concurrency bounds parallel page fetches (default 4)
	Concurrency int

	// HTTPClient replaces the default client when set
	HTTPClient *http.Client

	Logger *slog.Logger
}

// Client fetches entity lists from the remote API
type Client struct {
	httpClient  *http.Client
	baseURL     string
	retries     int
	concurrency int
	logger      *slog.Logger
	backoff     func(attempt int) time.Duration
}

// New creates a new API client
func New(opts Options) (*Client, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	base := strings.TrimRight(opts.BaseURL, "/")
	if base == "" {
		return nil, fmt.Errorf("API base URL is required")
	}

	if _, err := url.ParseRequestURI(base); err != nil {
		return nil, fmt.Errorf("invalid API base URL %q: %w", opts.BaseURL, err)
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}

		httpClient = &http.Client{Timeout: timeout}
	}

	concurrency := opts.Concurrency
	if concurrency <= 0 {
		concurrency = defaultConcurrency
	}

	logger.Debug("creating API client", slog.String("base_url", base))

	return &Client{
		httpClient:  httpClient,
		baseURL:     base,
		retries:     max(opts.Retries, 0),
		concurrency: concurrency,
		logger:      logger,
		backoff:     exponentialBackoff,
	}, nil
}

// BaseURL returns the API root the client talks to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// page is the paged envelope returned by SWAPI list endpoints
type page struct {
	Count   int              `json:"count"`
	Next    *string          `json:"next"`
	Results []map[string]any `json:"results"`
}

// ListEntities returns every record of category in source order.
// The endpoint may answer with a bare JSON array or with a paged envelope;
// remaining pages of an envelope are fetched concurrently and reassembled
// in page order.
func (c *Client) ListEntities(ctx context.Context, category model.Category) ([]model.Entity, error) {
	first := fmt.Sprintf("%s/%s/", c.baseURL, category)

	body, err := c.get(ctx, first)
	if err != nil {
		return nil, err
	}

	records, env, err := decodeList(body)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", first, err)
	}

	if env != nil && env.Next != nil && *env.Next != "" {
		rest, err := c.fetchRemaining(ctx, env)
		if err != nil {
			return nil, err
		}

		records = append(records, rest...)
	}

	entities := make([]model.Entity, 0, len(records))
	for i, rec := range records {
		e, err := toEntity(category, rec)
		if err != nil {
			return nil, fmt.Errorf("record %d of %s: %w", i, category, err)
		}

		entities = append(entities, e)
	}

	c.logger.Debug("loaded entities",
		slog.String("category", category.String()),
		slog.Int("count", len(entities)),
	)

	return entities, nil
}

// fetchRemaining loads the pages after the first one. When the next link
// carries a page number the pages are fetched in parallel, otherwise the
// next links are followed one by one.
func (c *Client) fetchRemaining(ctx context.Context, first *page) ([]map[string]any, error) {
	urls, ok := pageURLs(*first.Next, first.Count, len(first.Results))
	if !ok {
		return c.followNext(ctx, *first.Next)
	}

	pages := make([][]map[string]any, len(urls))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.concurrency)

	for i, u := range urls {
		g.Go(func() error {
			body, err := c.get(gctx, u)
			if err != nil {
				return err
			}

			records, _, err := decodeList(body)
			if err != nil {
				return fmt.Errorf("failed to decode %s: %w", u, err)
			}

			pages[i] = records

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	var out []map[string]any
	for _, p := range pages {
		out = append(out, p...)
	}

	return out, nil
}

func (c *Client) followNext(ctx context.Context, next string) ([]map[string]any, error) {
	var out []map[string]any

	seen := make(map[string]bool)

	for next != "" {
		if seen[next] {
			return nil, fmt.Errorf("pagination loop at %s", next)
		}

		seen[next] = true

		body, err := c.get(ctx, next)
		if err != nil {
			return nil, err
		}

		records, env, err := decodeList(body)
		if err != nil {
			return nil, fmt.Errorf("failed to decode %s: %w", next, err)
		}

		out = append(out, records...)

		next = ""
		if env != nil && env.Next != nil {
			next = *env.Next
		}
	}

	return out, nil
}

// pageURLs derives the URLs of pages 2..n from the first next link.
func pageURLs(next string, count, pageSize int) ([]string, bool) {
	if count <= 0 || pageSize <= 0 {
		return nil, false
	}

	u, err := url.Parse(next)
	if err != nil {
		return nil, false
	}

	q := u.Query()
	if n, err := strconv.Atoi(q.Get("page")); err != nil || n != 2 {
		return nil, false
	}

	pages := (count + pageSize - 1) / pageSize

	urls := make([]string, 0, pages-1)
	for p := 2; p <= pages; p++ {
		q.Set("page", strconv.Itoa(p))
		u.RawQuery = q.Encode()
		urls = append(urls, u.String())
	}

	return urls, len(urls) > 0
}

// get performs a GET request, retrying network errors and 5xx responses
// when retries are configured.
func (c *Client) get(ctx context.Context, rawURL string) ([]byte, error) {
	var lastErr error

	attempts := c.retries + 1

	for attempt := 0; attempt < attempts; attempt++ {
		if attempt > 0 {
			wait := c.backoff(attempt - 1)

			c.logger.Warn("retrying API request",
				slog.String("url", rawURL),
				slog.Int("attempt", attempt+1),
				slog.Duration("backoff", wait),
				slog.Any("error", lastErr),
			)

			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(wait):
			}
		}

		body, err := c.doRequest(ctx, rawURL)
		if err == nil {
			return body, nil
		}

		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		if !isRetryable(err) {
			return nil, err
		}

		lastErr = err
	}

	var apiErr *APIError
	if errors.As(lastErr, &apiErr) {
		return nil, apiErr
	}

	return nil, &NetworkError{
		Operation: "GET " + rawURL,
		Err:       errors.Unwrap(lastErr),
		Attempts:  attempts,
	}
}

// doRequest performs a single HTTP request to the API
func (c *Client) doRequest(ctx context.Context, rawURL string) ([]byte, error) {
	c.logger.Debug("making API request", slog.String("url", rawURL))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &transportError{err: err}
	}

	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, &APIError{URL: rawURL, StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &transportError{err: err}
	}

	return body, nil
}

// decodeList accepts a bare array of objects or a paged envelope.
func decodeList(body []byte) ([]map[string]any, *page, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return nil, nil, fmt.Errorf("empty response body")
	}

	switch trimmed[0] {
	case '[':
		var records []map[string]any
		if err := json.Unmarshal(trimmed, &records); err != nil {
			return nil, nil, err
		}

		return records, nil, nil
	case '{':
		var env page
		if err := json.Unmarshal(trimmed, &env); err != nil {
			return nil, nil, err
		}

		if env.Results == nil {
			return nil, nil, fmt.Errorf("response object has no results array")
		}

		return env.Results, &env, nil
	}

	return nil, nil, fmt.Errorf("unexpected response starting with %q", trimmed[0])
}

// toEntity converts a decoded record into an Entity. Scalar fields become
// string attributes; null, array and object fields are dropped.
func toEntity(category model.Category, rec map[string]any) (model.Entity, error) {
	name, _ := rec[category.NameField()].(string)
	if name == "" {
		name, _ = rec["name"].(string)
	}

	if name == "" {
		return model.Entity{}, ErrMissingName
	}

	e := model.Entity{
		Name:       name,
		Category:   category,
		Attributes: make(map[string]string, len(rec)),
	}

	for k, v := range rec {
		switch k {
		case "name", "title":
			continue
		case "url":
			e.URL, _ = v.(string)
			continue
		}

		switch val := v.(type) {
		case string:
			e.Attributes[k] = val
		case float64:
			e.Attributes[k] = strconv.FormatFloat(val, 'f', -1, 64)
		case bool:
			e.Attributes[k] = strconv.FormatBool(val)
		}
	}

	return e, nil
}

// exponentialBackoff: 1s, 2s, 4s... capped at 30s
func exponentialBackoff(attempt int) time.Duration {
	// 1<<5 seconds already exceeds the cap; larger shifts overflow
	if attempt >= 5 {
		return maxBackoff
	}

	return min(time.Duration(1<<max(attempt, 0))*time.Second, maxBackoff)
}
