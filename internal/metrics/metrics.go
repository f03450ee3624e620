// Package metrics is the in-process metrics core: atomic counters and
// fixed-bucket latency histograms, exported to callers as snapshots.
package metrics

import (
	"sync/atomic"
	"time"
)

// MetricID identifies a specific counter or histogram.
type MetricID uint16

const (
	MetricLoginSuccess MetricID = iota
	MetricLoginFailure
	MetricRegisterSuccess
	MetricRegisterFailure
	MetricBootstrapDeduplicated
	MetricBootstrapSkippedNoToken
	MetricBootstrapTokenRejected
	MetricBootstrapConfirmed
	MetricBootstrapCleared
	MetricBootstrapRateLimited
	MetricBootstrapInconclusive
	MetricRefreshSuccess
	MetricRefreshFailure
	MetricRetryAfterRefresh
	MetricLogout
	MetricTeardown
	MetricProfileUpdateSuccess
	MetricProfileUpdateFailure
	MetricPasswordChangeSuccess
	MetricPasswordChangeFailure
	MetricPasswordResetRequest
	MetricPasswordResetConfirmSuccess
	MetricPasswordResetConfirmFailure
	MetricBootstrapLatency

	// MetricIDCount is the number of defined metric IDs.
	MetricIDCount
)

// BucketCount is the fixed number of histogram buckets.
const BucketCount = 8

// BucketBounds are the upper bounds in seconds for each histogram bucket;
// the last bucket is +Inf.
var BucketBounds = [BucketCount]float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 0}

// Config controls whether the metrics core records anything.
type Config struct {
	Enabled       bool
	EnableLatency bool
}

// Metrics holds atomic counters and optional latency histograms. All
// methods are safe for concurrent use; when disabled every operation is a
// no-op.
type Metrics struct {
	enabled bool
	latency bool

	counters   [MetricIDCount]atomic.Uint64
	histograms [MetricIDCount][BucketCount]atomic.Uint64
}

// Snapshot is a point-in-time deep copy of all recorded metrics.
type Snapshot struct {
	Counters   map[MetricID]uint64
	Histograms map[MetricID][]uint64
}

// New creates a metrics core per cfg.
func New(cfg Config) *Metrics {
	return &Metrics{
		enabled: cfg.Enabled,
		latency: cfg.Enabled && cfg.EnableLatency,
	}
}

// Inc increments the counter for id.
func (m *Metrics) Inc(id MetricID) {
	if m == nil || !m.enabled || id >= MetricIDCount {
		return
	}
	m.counters[id].Add(1)
}

// Observe records a latency sample in the histogram for id.
func (m *Metrics) Observe(id MetricID, d time.Duration) {
	if m == nil || !m.latency || id >= MetricIDCount {
		return
	}
	secs := d.Seconds()
	bucket := BucketCount - 1
	for i := 0; i < BucketCount-1; i++ {
		if secs <= BucketBounds[i] {
			bucket = i
			break
		}
	}
	m.histograms[id][bucket].Add(1)
}

// Snapshot deep-copies every non-zero counter and histogram.
func (m *Metrics) Snapshot() Snapshot {
	snap := Snapshot{
		Counters:   map[MetricID]uint64{},
		Histograms: map[MetricID][]uint64{},
	}
	if m == nil || !m.enabled {
		return snap
	}

	for id := MetricID(0); id < MetricIDCount; id++ {
		if v := m.counters[id].Load(); v > 0 {
			snap.Counters[id] = v
		}

		var buckets []uint64
		for i := 0; i < BucketCount; i++ {
			if v := m.histograms[id][i].Load(); v > 0 {
				if buckets == nil {
					buckets = make([]uint64, BucketCount)
				}
				buckets[i] = v
			}
		}
		if buckets != nil {
			snap.Histograms[id] = buckets
		}
	}
	return snap
}
