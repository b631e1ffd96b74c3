package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"time"
)

const userAgent = "Bookvault/1.0 (https://github.com/avolkau/bookvault)"

// GoogleBooksClient fetches catalog data from the Google Books API.
type GoogleBooksClient struct {
	httpClient  *http.Client
	baseURL     string
	rateLimiter *rateLimiter
}

type rateLimiter struct {
	mu       sync.Mutex
	lastCall time.Time
	interval time.Duration
}

func newRateLimiter(interval time.Duration) *rateLimiter {
	return &rateLimiter{interval: interval}
}

func (r *rateLimiter) wait() {
	r.mu.Lock()
	defer r.mu.Unlock()

	since := time.Since(r.lastCall)
	if since < r.interval {
		time.Sleep(r.interval - since)
	}
	r.lastCall = time.Now()
}

// NewGoogleBooksClient creates a new Google Books API client with a
// polite per-client rate limit.
func NewGoogleBooksClient(baseURL string, timeout time.Duration) *GoogleBooksClient {
	if baseURL == "" {
		baseURL = "https://www.googleapis.com/books/v1"
	}
	if timeout == 0 {
		timeout = 10 * time.Second
	}

	return &GoogleBooksClient{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL:     baseURL,
		rateLimiter: newRateLimiter(time.Second), // 1 request per second
	}
}

// googleVolume mirrors the fields we read from the API response.
type googleVolume struct {
	ID         string `json:"id"`
	VolumeInfo struct {
		Title       string   `json:"title"`
		Authors     []string `json:"authors"`
		Description string   `json:"description"`
		ImageLinks  struct {
			Thumbnail string `json:"thumbnail"`
		} `json:"imageLinks"`
	} `json:"volumeInfo"`
}

type googleSearchResponse struct {
	Items []googleVolume `json:"items"`
}

// Search queries the catalog by free-text query.
func (c *GoogleBooksClient) Search(ctx context.Context, query string) ([]SearchResult, error) {
	if query == "" {
		return nil, fmt.Errorf("query is required")
	}

	c.rateLimiter.wait()

	searchURL := fmt.Sprintf("%s/volumes?q=%s", c.baseURL, url.QueryEscape(query))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, searchURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch search results: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}

	var data googleSearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	results := make([]SearchResult, 0, len(data.Items))
	for _, item := range data.Items {
		results = append(results, SearchResult{
			ID:          item.ID,
			Title:       titleOrUntitled(item.VolumeInfo.Title),
			Authors:     authorsOrEmpty(item.VolumeInfo.Authors),
			Description: item.VolumeInfo.Description,
			CoverURL:    item.VolumeInfo.ImageLinks.Thumbnail,
		})
	}

	return results, nil
}

// FetchVolume retrieves the detail record for a single volume ID.
func (c *GoogleBooksClient) FetchVolume(ctx context.Context, id string) (*Volume, error) {
	if id == "" {
		return nil, fmt.Errorf("volume id is required")
	}

	c.rateLimiter.wait()

	volumeURL := fmt.Sprintf("%s/volumes/%s", c.baseURL, url.PathEscape(id))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, volumeURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch volume: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrVolumeNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}

	var item googleVolume
	if err := json.NewDecoder(resp.Body).Decode(&item); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	// The detail endpoint answers 200 with an error body for some bad
	// IDs; an empty volumeInfo means there is no such record.
	if item.VolumeInfo.Title == "" && item.VolumeInfo.Description == "" && len(item.VolumeInfo.Authors) == 0 {
		return nil, ErrVolumeNotFound
	}

	return &Volume{
		ID:          item.ID,
		Title:       titleOrUntitled(item.VolumeInfo.Title),
		Authors:     authorsOrEmpty(item.VolumeInfo.Authors),
		Description: item.VolumeInfo.Description,
		CoverURL:    item.VolumeInfo.ImageLinks.Thumbnail,
	}, nil
}

func titleOrUntitled(title string) string {
	if title == "" {
		return "Untitled"
	}
	return title
}

func authorsOrEmpty(authors []string) []string {
	if authors == nil {
		return []string{}
	}
	return authors
}
