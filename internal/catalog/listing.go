package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"graphpipe/internal/models"
)

const listTimeout = 15 * time.Second

// ListedModel is one entry of the catalog endpoint's /models response.
// Everything beyond the id and the two declared cost fields is opaque
// to us; the go-openai Model type cannot carry the gateway's
// nonstandard cost fields, so the listing is fetched directly.
type ListedModel struct {
	ID             string            `json:"id"`
	Title          string            `json:"title"`
	CostContext    models.CostString `json:"cost_context"`
	CostCompletion models.CostString `json:"cost_completion"`
}

// Lister enumerates the gateway's current models.
type Lister interface {
	ListModels(ctx context.Context) ([]ListedModel, error)
}

// Client fetches the live model list from an OpenAI-compatible gateway.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		baseURL:    baseURL,
		apiKey:     apiKey,
		httpClient: &http.Client{},
	}
}

// ListModels performs GET {base_url}/models with bearer auth.
func (c *Client) ListModels(ctx context.Context) ([]ListedModel, error) {
	ctx, cancel := context.WithTimeout(ctx, listTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/models", nil)
	if err != nil {
		return nil, fmt.Errorf("build models request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch models from %s: %w", c.baseURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch models from %s: unexpected status %d", c.baseURL, resp.StatusCode)
	}

	var payload struct {
		Data []ListedModel `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode models response: %w", err)
	}
	return payload.Data, nil
}
