package tasks

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/mikestefanello/backlite"

	"github.com/athenareader/athena/internal/cache"
	"github.com/athenareader/athena/internal/fulltext"
	"github.com/athenareader/athena/internal/metadata"
)

// PrefetchContentTask warms the content cache for a book a user just
// looked up, so the first content request does not pay the full
// resolution latency.
type PrefetchContentTask struct {
	ISBN string `json:"isbn"`
}

// Config returns the queue configuration for content prefetch tasks.
func (t PrefetchContentTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        "prefetch_content",
		MaxAttempts: 2,
		Backoff:     30 * time.Second,
		Timeout:     2 * time.Minute,
		Retention: &backlite.Retention{
			Duration:   24 * time.Hour,
			OnlyFailed: false,
			Data:       &backlite.RetainData{OnlyFailed: true},
		},
	}
}

// PrefetchContentProcessor creates a processor function for
// PrefetchContentTask. Books with no readable edition are not an error;
// the negative result is cached and the task completes.
func PrefetchContentProcessor(resolution *cache.ResolutionCache) backlite.QueueProcessor[PrefetchContentTask] {
	return func(ctx context.Context, task PrefetchContentTask) error {
		if resolution == nil {
			return fmt.Errorf("resolution cache not configured")
		}

		content, err := resolution.GetContent(ctx, task.ISBN)
		if err != nil {
			if errors.Is(err, fulltext.ErrContentUnavailable) || errors.Is(err, metadata.ErrBookNotFound) {
				log.Printf("[TASK] No full text to prefetch for %s", task.ISBN)
				return nil
			}
			return fmt.Errorf("prefetch content %s: %w", task.ISBN, err)
		}

		log.Printf("[TASK] Prefetched full text for %s (%d bytes)", task.ISBN, len(content.Text))
		return nil
	}
}

// NewPrefetchContentQueue creates a backlite queue for content prefetch tasks.
func NewPrefetchContentQueue(resolution *cache.ResolutionCache) backlite.Queue {
	return backlite.NewQueue(PrefetchContentProcessor(resolution))
}
