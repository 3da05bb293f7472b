// Package websearch finds pages for a query through SerpAPI and pulls
// readable text out of them. Page text is the concatenation of the
// paragraph elements, which is crude but works well on article-style
// pages.
package websearch

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

const defaultSearchURL = "https://serpapi.com/search.json"

// Result is one organic search hit.
type Result struct {
	Title string `json:"title"`
	URL   string `json:"link"`
}

// Client searches the web and fetches page text.
type Client struct {
	apiKey     string
	searchURL  string
	httpClient *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithSearchURL overrides the SerpAPI endpoint.
func WithSearchURL(u string) Option {
	return func(c *Client) {
		c.searchURL = u
	}
}

// New creates a search client with the given SerpAPI key.
func New(apiKey string, opts ...Option) *Client {
	c := &Client{
		apiKey:    apiKey,
		searchURL: defaultSearchURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type searchResponse struct {
	OrganicResults []Result `json:"organic_results"`
}

// Search returns up to topK organic results for the query.
func (c *Client) Search(ctx context.Context, query string, topK int) ([]Result, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("api_key", c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.searchURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create search request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("search request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("search returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var sr searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&sr); err != nil {
		return nil, fmt.Errorf("failed to decode search response: %w", err)
	}

	results := sr.OrganicResults
	if topK > 0 && len(results) > topK {
		results = results[:topK]
	}
	return results, nil
}

// FetchPage downloads a page and returns its paragraph text joined with
// single spaces. An empty string means the page had no paragraph
// content.
func (c *Client) FetchPage(ctx context.Context, pageURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create page request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to fetch %s: %w", pageURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("fetch of %s returned status %d", pageURL, resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to parse %s: %w", pageURL, err)
	}

	var parts []string
	doc.Find("p").Each(func(_ int, s *goquery.Selection) {
		parts = append(parts, s.Text())
	})
	return strings.Join(parts, " "), nil
}
