package tasks

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/mikestefanello/backlite"

	"github.com/avolkau/bookvault/internal/covers"
	"github.com/avolkau/bookvault/internal/database/books"
)

// FetchCoverTask warms the cover cache for a single book.
type FetchCoverTask struct {
	BookID uint `json:"book_id"`
}

// Config returns the queue configuration for cover prefetch tasks.
func (t FetchCoverTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        "fetch_cover",
		MaxAttempts: 3,
		Backoff:     30 * time.Second,
		Timeout:     time.Minute,
		Retention: &backlite.Retention{
			Duration:   24 * time.Hour,
			OnlyFailed: false,
			Data:       &backlite.RetainData{OnlyFailed: true},
		},
	}
}

// FetchCoverProcessor creates a processor function for FetchCoverTask.
func FetchCoverProcessor(repo *books.Repository, cache *covers.Cache) backlite.QueueProcessor[FetchCoverTask] {
	return func(ctx context.Context, task FetchCoverTask) error {
		book, err := repo.GetAnyByID(task.BookID)
		if err != nil {
			// The book may have been removed before the task ran;
			// nothing to retry.
			log.Printf("[TASK] Skipping cover prefetch for missing book %d", task.BookID)
			return nil
		}

		if book.CoverURL == "" {
			return nil
		}

		if _, err := cache.GetCover(book.ID, book.CoverURL); err != nil {
			return fmt.Errorf("prefetch cover for book %d: %w", book.ID, err)
		}

		log.Printf("[TASK] Prefetched cover for book %d (%s)", book.ID, book.Title)
		return nil
	}
}

// NewFetchCoverQueue creates a backlite queue for cover prefetch tasks.
func NewFetchCoverQueue(repo *books.Repository, cache *covers.Cache) backlite.Queue {
	return backlite.NewQueue(FetchCoverProcessor(repo, cache))
}
