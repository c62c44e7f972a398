package server

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/NethermindEth/crm-twitter/pkg/twitter"
	"github.com/NethermindEth/crm-twitter/pkg/utils/logger"
)

func TestFlashReporter_OutsideRequestIsLogged(t *testing.T) {
	var buf bytes.Buffer
	previous := slog.Default()
	logger.SetDefault(logger.Config{Level: slog.LevelDebug, Output: &buf})
	t.Cleanup(func() { slog.SetDefault(previous) })

	FlashReporter.ReportStatus(context.Background(), http.StatusTooManyRequests)

	assert.Contains(t, buf.String(), "level=WARN")
	assert.Contains(t, buf.String(), "status=429")
}

func TestFlash_CollectsPerRequest(t *testing.T) {
	ctx, bag := withFlash(context.Background())

	FlashNotifier.Notify(ctx, twitter.MessageTweetSent)
	FlashReporter.ReportStatus(ctx, http.StatusForbidden)
	FlashNotifier.Notify(context.Background(), twitter.MessageFollow)

	assert.Equal(t, []string{twitter.MessageTweetSent, "error_403"}, bag.list())
}
