package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	TwitterConsumerKeyKey       = "TWITTER_CONSUMER_KEY"
	TwitterConsumerSecretKey    = "TWITTER_CONSUMER_SECRET"
	TwitterAccessTokenKey       = "TWITTER_ACCESS_TOKEN"
	TwitterAccessTokenSecretKey = "TWITTER_ACCESS_TOKEN_SECRET"
	TwitterAccountIDKey         = "CRM_TWITTER_ACCOUNT_ID"
	TwitterAPIBaseURLKey        = "TWITTER_API_BASE_URL"
	TwitterHTTPTimeoutKey       = "TWITTER_HTTP_TIMEOUT"
	TwitterRequestsPerSecondKey = "TWITTER_REQUESTS_PER_SECOND"
	RelayServerAddrKey          = "RELAY_SERVER_ADDR"
	PollTickRateKey             = "POLL_TICK_RATE"
)

const (
	DefaultAPIBaseURL  = "https://api.twitter.com/1.1/"
	DefaultHTTPTimeout = 15 * time.Second
	DefaultServerAddr  = ":8080"
	DefaultPollTick    = time.Minute
)

func envGetRequired(key string) string {
	value, ok := os.LookupEnv(key)
	if !ok {
		slog.Warn(key + " environment variable not set")
	}
	return strings.TrimSpace(value)
}

func envGetString(key, fallback string) string {
	value, ok := os.LookupEnv(key)
	if !ok || strings.TrimSpace(value) == "" {
		return fallback
	}
	return strings.TrimSpace(value)
}

func envGetDuration(key string, fallback time.Duration) time.Duration {
	value, ok := os.LookupEnv(key)
	if !ok || value == "" {
		return fallback
	}
	d, err := time.ParseDuration(value)
	if err != nil || d <= 0 {
		slog.Warn(key+" environment variable is not a valid positive duration", "value", value)
		return fallback
	}
	return d
}

func envGetFloat(key string, fallback float64) float64 {
	value, ok := os.LookupEnv(key)
	if !ok || value == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil || f < 0 {
		slog.Warn(key+" environment variable is not a valid non-negative number", "value", value)
		return fallback
	}
	return f
}
