package indexer

import (
	"context"
	"errors"
	"time"

	"photoframe/internal/logging"
	"photoframe/internal/scanner"
)

// RunNightly performs a non-destructive full scan every day at the
// configured hour until ctx is cancelled.
func (idx *Indexer) RunNightly(ctx context.Context) {
	for {
		next := nextRun(time.Now(), idx.cfg.NightlyHour)
		logging.Debug("Next nightly index at %s", next.Format(time.RFC3339))

		timer := time.NewTimer(time.Until(next))
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}

		logging.Info("Nightly re-index triggered")
		_, err := idx.Index(ctx, scanner.ModeFull, false)
		switch {
		case errors.Is(err, ErrIndexInProgress):
			logging.Info("Skipping nightly index, another run is active")
		case err != nil:
			logging.Error("Nightly re-index failed: %v", err)
		}
	}
}

// nextRun returns the first time strictly after now at hour:00 local time.
func nextRun(now time.Time, hour int) time.Time {
	if hour < 0 || hour > 23 {
		hour = 0
	}
	next := time.Date(now.Year(), now.Month(), now.Day(), hour, 0, 0, 0, now.Location())
	if !next.After(now) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}
