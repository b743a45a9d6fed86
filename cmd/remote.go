package cmd

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/goccy/go-json"
	"github.com/inovacc/starcards/internal/model"
)

// remoteClient talks to a running web server so commands change the same
// store the browser is looking at.
type remoteClient struct {
	baseURL    string
	httpClient *http.Client
}

type remoteResponse struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
}

func newRemoteClient(baseURL string) *remoteClient {
	return &remoteClient{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

func (c *remoteClient) addFavorite(ctx context.Context, name, tag string) (model.Favorite, error) {
	var fav model.Favorite

	err := c.do(ctx, http.MethodPost, "/api/favorites", map[string]string{"name": name, "category": tag}, &fav)

	return fav, err
}

func (c *remoteClient) listFavorites(ctx context.Context) ([]model.Favorite, error) {
	var favs []model.Favorite

	err := c.do(ctx, http.MethodGet, "/api/favorites", nil, &favs)

	return favs, err
}

func (c *remoteClient) removeFavorite(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/favorites/"+url.PathEscape(id), nil, nil)
}

func (c *remoteClient) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader

	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}

		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}

	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to reach web server: %w", err)
	}

	defer func() { _ = resp.Body.Close() }()

	var r remoteResponse
	if err := json.NewDecoder(resp.Body).Decode(&r); err != nil {
		return fmt.Errorf("invalid response from web server (status %d): %w", resp.StatusCode, err)
	}

	if !r.Success {
		return fmt.Errorf("web server: %s", r.Error)
	}

	if out != nil && len(r.Data) > 0 {
		if err := json.Unmarshal(r.Data, out); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return nil
}
