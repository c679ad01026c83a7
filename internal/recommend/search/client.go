// Package search wraps the Naver Book Search API, the external collaborator
// that supplies raw candidate books for ranking.
package search

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	errx "github.com/MinseoYoo/page-mind/internal/core/error"
	logx "github.com/MinseoYoo/page-mind/pkg/logger"
)

const (
	searchPath = "/v1/search/book.json"
	maxDisplay = 100
)

type Config struct {
	ClientID     string `envconfig:"NAVER_CLIENT_ID" required:"true"`
	ClientSecret string `envconfig:"NAVER_CLIENT_SECRET" required:"true"`
	BaseURL      string `envconfig:"NAVER_BASE_URL" default:"https://openapi.naver.com"`
	Timeout      int    `envconfig:"NAVER_TIMEOUT_SECONDS" default:"10"`
}

// Item mirrors one book record of the Naver response. Text fields may carry
// inline <b> emphasis markup around matched terms.
type Item struct {
	Title       string `json:"title"`
	Link        string `json:"link"`
	Image       string `json:"image"`
	Author      string `json:"author"`
	Discount    string `json:"discount"`
	Publisher   string `json:"publisher"`
	PubDate     string `json:"pubdate"`
	ISBN        string `json:"isbn"`
	Description string `json:"description"`
}

// Result is one query's result list. Items carry their positions implicitly
// as slice indices; Total is the API's count of all matches, not len(Items).
type Result struct {
	Total   int    `json:"total"`
	Start   int    `json:"start"`
	Display int    `json:"display"`
	Items   []Item `json:"items"`
}

type Client struct {
	cfg  Config
	http *http.Client
}

func NewClient(cfg Config) *Client {
	timeout := time.Duration(cfg.Timeout) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		cfg:  cfg,
		http: &http.Client{Timeout: timeout},
	}
}

// Search runs one keyword query sorted by similarity and returns up to
// display items (capped at the API maximum of 100).
func (c *Client) Search(ctx context.Context, query string, display int) (*Result, error) {
	if query == "" {
		return nil, fmt.Errorf("search query is empty")
	}
	if display <= 0 {
		display = 10
	}
	if display > maxDisplay {
		display = maxDisplay
	}

	params := url.Values{}
	params.Set("query", query)
	params.Set("display", strconv.Itoa(display))
	params.Set("sort", "sim")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.BaseURL+searchPath+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build search request: %w", err)
	}
	req.Header.Set("X-Naver-Client-Id", c.cfg.ClientID)
	req.Header.Set("X-Naver-Client-Secret", c.cfg.ClientSecret)

	resp, err := c.http.Do(req)
	if err != nil {
		logx.Error().Err(err).Str("query", query).Msg("book search request failed")
		return nil, errx.WrapSearch(err, 0)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		logx.Error().Int("status", resp.StatusCode).Str("query", query).Msg("book search returned non-OK status")
		return nil, errx.WrapSearch(fmt.Errorf("unexpected status %d", resp.StatusCode), resp.StatusCode)
	}

	var result Result
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}

	logx.Debug().Str("query", query).Int("items", len(result.Items)).Int("total", result.Total).Msg("book search succeeded")
	return &result, nil
}
