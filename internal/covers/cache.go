// Package covers caches downloaded book cover images on local disk so
// the API can serve them without re-fetching from the origin on every
// request.
package covers

import (
	"crypto/sha256"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"
)

// Cache handles local caching of book cover images.
type Cache struct {
	cacheDir   string
	httpClient *http.Client
}

// NewCache creates a new cover cache at the specified directory.
func NewCache(cacheDir string) (*Cache, error) {
	if err := os.MkdirAll(cacheDir, 0755); err != nil {
		return nil, fmt.Errorf("create cache dir: %w", err)
	}

	return &Cache{
		cacheDir: cacheDir,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}, nil
}

// GetCover returns the cached cover for a book, fetching and caching it
// on a miss. Returns the path to the cached file.
func (c *Cache) GetCover(bookID uint, coverURL string) (string, error) {
	if coverURL == "" {
		return "", nil
	}

	cachePath := filepath.Join(c.cacheDir, c.coverFilename(bookID, coverURL))

	if _, err := os.Stat(cachePath); err == nil {
		return cachePath, nil
	}

	if err := c.fetchAndCache(coverURL, cachePath); err != nil {
		return "", err
	}

	return cachePath, nil
}

// InvalidateCover removes every cached cover for a book. Called when a
// book's cover URL changes.
func (c *Cache) InvalidateCover(bookID uint) error {
	pattern := filepath.Join(c.cacheDir, fmt.Sprintf("cover_%d_*", bookID))
	matches, err := filepath.Glob(pattern)
	if err != nil {
		return err
	}

	for _, match := range matches {
		if err := os.Remove(match); err != nil && !os.IsNotExist(err) {
			return err
		}
	}

	return nil
}

// Prune removes cached covers older than the retention window. Pruned
// files are simply re-fetched on the next read, so this only trades
// disk for latency.
func (c *Cache) Prune(retention time.Duration) (int, error) {
	matches, err := filepath.Glob(filepath.Join(c.cacheDir, "cover_*"))
	if err != nil {
		return 0, err
	}

	cutoff := time.Now().Add(-retention)
	removed := 0
	for _, match := range matches {
		info, err := os.Stat(match)
		if err != nil {
			continue
		}
		if info.ModTime().Before(cutoff) {
			if err := os.Remove(match); err == nil {
				removed++
			}
		}
	}

	return removed, nil
}

// coverFilename generates a unique filename based on book ID and URL hash.
func (c *Cache) coverFilename(bookID uint, coverURL string) string {
	hash := sha256.Sum256([]byte(coverURL))
	return fmt.Sprintf("cover_%d_%x.jpg", bookID, hash[:8])
}

// fetchAndCache downloads a cover image and saves it to the cache.
func (c *Cache) fetchAndCache(url, cachePath string) error {
	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", "Bookvault/1.0")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("failed to fetch cover: status %d", resp.StatusCode)
	}

	// Temp file in the same directory so the rename is atomic
	tmpFile, err := os.CreateTemp(c.cacheDir, "cover_tmp_")
	if err != nil {
		return err
	}
	tmpPath := tmpFile.Name()
	defer func() {
		tmpFile.Close()
		os.Remove(tmpPath) // Clean up if we didn't rename
	}()

	if _, err = io.Copy(tmpFile, resp.Body); err != nil {
		return err
	}

	tmpFile.Close()

	return os.Rename(tmpPath, cachePath)
}

// CacheDir returns the cache directory path.
func (c *Cache) CacheDir() string {
	return c.cacheDir
}
