package metrics

import (
	"context"
	"time"

	"photoframe/internal/logging"
)

// StatsProvider reports the sizes the collector publishes as gauges.
type StatsProvider interface {
	Stats() Stats
}

// Stats holds the current library figures.
type Stats struct {
	Photos    int
	CacheSize int
	Dirty     bool
}

// Collector periodically copies StatsProvider figures into gauges.
type Collector struct {
	provider StatsProvider
	interval time.Duration
}

// NewCollector creates a new metrics collector
func NewCollector(provider StatsProvider, interval time.Duration) *Collector {
	return &Collector{
		provider: provider,
		interval: interval,
	}
}

// Run collects immediately and then on every tick until ctx is done.
func (c *Collector) Run(ctx context.Context) {
	c.collect()

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.collect()
		case <-ctx.Done():
			return
		}
	}
}

func (c *Collector) collect() {
	if c.provider == nil {
		return
	}

	stats := c.provider.Stats()

	LibraryPhotos.Set(float64(stats.Photos))
	TextCacheEntries.Set(float64(stats.CacheSize))

	logging.Debug("Metrics collected: photos=%d, cached texts=%d, dirty=%v",
		stats.Photos, stats.CacheSize, stats.Dirty)
}
