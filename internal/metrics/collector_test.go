package metrics

import (
	"sync"
	"testing"
	"time"
)

type mockStatsProvider struct {
	mu    sync.Mutex
	stats Stats
	calls int
}

func (m *mockStatsProvider) GetStats() Stats {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	return m.stats
}

func (m *mockStatsProvider) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

func TestCollectorCollectsOnStart(t *testing.T) {
	provider := &mockStatsProvider{stats: Stats{
		Entries:              4,
		TotalSizeBytes:       4096,
		TotalDurationSeconds: 120.5,
		ActiveIndex:          2,
		SurfaceClients:       1,
	}}

	c := NewCollector(provider, time.Hour)
	c.Start()
	defer c.Stop()

	deadline := time.Now().Add(2 * time.Second)
	for provider.callCount() == 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if provider.callCount() == 0 {
		t.Fatal("collector never called GetStats")
	}
}

func TestCollectorSetsGauges(t *testing.T) {
	provider := &mockStatsProvider{stats: Stats{
		Entries:              7,
		TotalSizeBytes:       1 << 20,
		TotalDurationSeconds: 42,
		ActiveIndex:          -1,
	}}

	c := NewCollector(provider, time.Hour)
	c.collect()

	tests := []struct {
		name string
		got  float64
		want float64
	}{
		{"entries", gaugeValue(t, CatalogEntries), 7},
		{"size", gaugeValue(t, CatalogSizeBytes), 1 << 20},
		{"duration", gaugeValue(t, CatalogDurationSeconds), 42},
		{"active index", gaugeValue(t, SessionActiveIndex), -1},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("%s = %v, want %v", tt.name, tt.got, tt.want)
		}
	}
}

func TestCollectorNilProvider(t *testing.T) {
	c := NewCollector(nil, time.Hour)
	c.collect()
}

func TestCollectorStopIsIdempotent(t *testing.T) {
	c := NewCollector(&mockStatsProvider{}, 10*time.Millisecond)
	c.Start()
	c.Stop()
	c.Stop()
}
