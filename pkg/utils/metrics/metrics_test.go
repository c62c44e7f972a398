package metrics

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTrackCall(t *testing.T) {
	m := NewMetricsCollector()

	_ = m.TrackCall("mentions", func() error { return nil })
	_ = m.TrackCall("mentions", func() error { return nil })
	err := m.TrackCall("mentions", func() error { return errors.New("boom") })
	require.Error(t, err)

	got := m.GetMetrics()
	assert.Equal(t, int64(2), got["mentions_success_counter"].Value)
	assert.Equal(t, int64(1), got["mentions_failure_counter"].Value)
	assert.Equal(t, int64(3), got[MetricTwitterAPI+"_counter"].Value)
	assert.Equal(t, TypeLatency, got["mentions_latency"].Type)
}

func TestServeHTTP(t *testing.T) {
	m := NewMetricsCollector()
	m.SetGauge("cursor_mentions", "1234")

	rec := httptest.NewRecorder()
	m.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	var body map[string]MetricValue
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "1234", body["cursor_mentions_gauge"].Value)
}

func TestRecordLatency(t *testing.T) {
	m := NewMetricsCollector()
	m.RecordLatency("reply_public", 30*time.Millisecond)
	m.RecordLatency("reply_public", 90*time.Millisecond)
	m.RecordLatency("reply_public", 10*time.Millisecond)

	stats, ok := m.GetMetrics()["reply_public_latency"].Value.(LatencyStats)
	require.True(t, ok)
	assert.Equal(t, LatencyStats{Count: 3, Last: 10, Max: 90, Total: 130}, stats)
}
