package metrics

import (
	"sync"
	"time"

	"playlist-player/internal/logging"
)

// StatsProvider interface for collecting stats
type StatsProvider interface {
	GetStats() Stats
}

// Stats holds the current statistics
type Stats struct {
	Entries              int
	TotalSizeBytes       int64
	TotalDurationSeconds float64
	ActiveIndex          int
	SurfaceClients       int
}

// Collector periodically collects and updates metrics
type Collector struct {
	statsProvider StatsProvider
	interval      time.Duration
	stopChan      chan struct{}
	stopOnce      sync.Once
	done          chan struct{}
}

// NewCollector creates a new metrics collector
func NewCollector(provider StatsProvider, interval time.Duration) *Collector {
	return &Collector{
		statsProvider: provider,
		interval:      interval,
		stopChan:      make(chan struct{}),
		done:          make(chan struct{}),
	}
}

// Start begins the metrics collection loop
func (c *Collector) Start() {
	go c.collectLoop()
}

// Stop stops the metrics collection and waits for the loop to exit.
func (c *Collector) Stop() {
	c.stopOnce.Do(func() { close(c.stopChan) })
	<-c.done
}

func (c *Collector) collectLoop() {
	defer close(c.done)

	// Collect immediately on start
	c.collect()

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.collect()
		case <-c.stopChan:
			return
		}
	}
}

func (c *Collector) collect() {
	if c.statsProvider == nil {
		return
	}

	stats := c.statsProvider.GetStats()

	CatalogEntries.Set(float64(stats.Entries))
	CatalogSizeBytes.Set(float64(stats.TotalSizeBytes))
	CatalogDurationSeconds.Set(stats.TotalDurationSeconds)
	SessionActiveIndex.Set(float64(stats.ActiveIndex))
	SurfaceClients.Set(float64(stats.SurfaceClients))

	logging.Debug("Metrics collected: entries=%d, bytes=%d, active=%d, surfaces=%d",
		stats.Entries, stats.TotalSizeBytes, stats.ActiveIndex, stats.SurfaceClients)
}
