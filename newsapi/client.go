// Package newsapi is a thin client for the MarketAux news aggregation API,
// used to source finance headlines for batch generation topics.
package newsapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"marketpulse/trace"
)

const defaultBaseURL = "https://api.marketaux.com/v1"

// Article is one news item as returned by MarketAux. Only the fields the
// pipeline consumes are mapped.
type Article struct {
	UUID        string    `json:"uuid"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	URL         string    `json:"url"`
	Source      string    `json:"source"`
	PublishedAt time.Time `json:"published_at"`
}

type newsResponse struct {
	Data []Article `json:"data"`
}

type Client struct {
	httpClient *http.Client
	baseURL    string
	apiToken   string
}

func New(apiToken string) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 15 * time.Second},
		baseURL:    defaultBaseURL,
		apiToken:   apiToken,
	}
}

// NewWithBaseURL overrides the API host. Tests only.
func NewWithBaseURL(apiToken, baseURL string) *Client {
	c := New(apiToken)
	c.baseURL = baseURL
	return c
}

// TopHeadlines fetches up to limit finance headlines, optionally filtered by
// a comma-separated symbol list.
func (c *Client) TopHeadlines(ctx context.Context, symbols string, limit int) ([]Article, error) {
	if limit <= 0 {
		limit = 10
	}

	q := url.Values{}
	q.Set("api_token", c.apiToken)
	q.Set("language", "en")
	q.Set("filter_entities", "true")
	q.Set("limit", strconv.Itoa(limit))
	if symbols != "" {
		q.Set("symbols", symbols)
	}

	endpoint := fmt.Sprintf("%s/news/all?%s", c.baseURL, q.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	requestID, spanID := trace.NextSpanID(ctx)
	req.Header.Set("X-Request-Id", requestID)
	req.Header.Set("X-Span-Id", spanID)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("marketaux: unexpected status %d: %s", resp.StatusCode, body)
	}

	var out newsResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("marketaux: decode response: %w", err)
	}
	return out.Data, nil
}
