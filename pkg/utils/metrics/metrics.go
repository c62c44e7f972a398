// Package metrics collects per-operation figures for the gateway and exposes
// them as JSON.
package metrics

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"
)

// MetricType represents the type of metric being collected
type MetricType string

const (
	// TypeLatency represents timing metrics
	TypeLatency MetricType = "latency"
	// TypeCounter represents count-based metrics
	TypeCounter MetricType = "counter"
	// TypeGauge represents current value metrics
	TypeGauge MetricType = "gauge"
)

// Common metric names for consistent tracking
const (
	MetricTwitterAPI  = "twitter_api"
	MetricPollTick    = "poll_tick"
	MetricPollBatches = "poll_batches"
)

// LatencyStats aggregates every duration recorded for one operation, in milliseconds.
type LatencyStats struct {
	Count int64 `json:"count"`
	Last  int64 `json:"last_ms"`
	Max   int64 `json:"max_ms"`
	Total int64 `json:"total_ms"`
}

// MetricValue is a collected metric. Value is an int64 for counters,
// a LatencyStats for latencies and whatever was set for gauges.
type MetricValue struct {
	Type  MetricType `json:"type"`
	Value any        `json:"value"`
}

// MetricsCollector is safe for concurrent use; a single instance is shared by
// the gateway client, the poller and the relay's /metrics route.
type MetricsCollector struct {
	mu        sync.RWMutex
	counters  map[string]int64
	latencies map[string]LatencyStats
	gauges    map[string]any
}

func NewMetricsCollector() *MetricsCollector {
	return &MetricsCollector{
		counters:  make(map[string]int64),
		latencies: make(map[string]LatencyStats),
		gauges:    make(map[string]any),
	}
}

// RecordLatency folds duration into the latency stats of operation.
func (m *MetricsCollector) RecordLatency(operation string, duration time.Duration) {
	ms := duration.Milliseconds()

	m.mu.Lock()
	defer m.mu.Unlock()
	stats := m.latencies[operation]
	stats.Count++
	stats.Last = ms
	stats.Total += ms
	if ms > stats.Max {
		stats.Max = ms
	}
	m.latencies[operation] = stats
}

func (m *MetricsCollector) IncrementCounter(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counters[name]++
}

func (m *MetricsCollector) SetGauge(name string, value any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.gauges[name] = value
}

// TrackCall runs fn, records its latency under operation and bumps the shared
// API counter plus either <operation>_success or <operation>_failure.
func (m *MetricsCollector) TrackCall(operation string, fn func() error) error {
	start := time.Now()
	err := fn()
	m.RecordLatency(operation, time.Since(start))

	m.IncrementCounter(MetricTwitterAPI)
	if err != nil {
		m.IncrementCounter(operation + "_failure")
	} else {
		m.IncrementCounter(operation + "_success")
	}
	return err
}

// GetMetrics returns a snapshot keyed by name plus a _counter, _latency or _gauge suffix.
func (m *MetricsCollector) GetMetrics() map[string]MetricValue {
	m.mu.RLock()
	defer m.mu.RUnlock()

	snapshot := make(map[string]MetricValue, len(m.counters)+len(m.latencies)+len(m.gauges))
	for name, v := range m.counters {
		snapshot[name+"_counter"] = MetricValue{Type: TypeCounter, Value: v}
	}
	for name, v := range m.latencies {
		snapshot[name+"_latency"] = MetricValue{Type: TypeLatency, Value: v}
	}
	for name, v := range m.gauges {
		snapshot[name+"_gauge"] = MetricValue{Type: TypeGauge, Value: v}
	}
	return snapshot
}

func (m *MetricsCollector) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(m.GetMetrics()); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
