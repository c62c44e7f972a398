package server

import (
	"context"
	"log/slog"
	"strconv"
	"sync"

	"github.com/NethermindEth/crm-twitter/pkg/twitter"
)

type flashKey struct{}

// flashBag collects the notifications and reported statuses of one request,
// the way a session flash would for a rendered page.
type flashBag struct {
	mu       sync.Mutex
	messages []string
}

func (b *flashBag) add(message string) {
	b.mu.Lock()
	b.messages = append(b.messages, message)
	b.mu.Unlock()
}

func (b *flashBag) list() []string {
	if b == nil {
		return nil
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.messages...)
}

func withFlash(ctx context.Context) (context.Context, *flashBag) {
	bag := &flashBag{}
	return context.WithValue(ctx, flashKey{}, bag), bag
}

func flashFromContext(ctx context.Context) *flashBag {
	bag, _ := ctx.Value(flashKey{}).(*flashBag)
	return bag
}

// FlashReporter records "error_<status>" in the request's flash bag. Calls
// outside a relay request, such as those made by the poller, are logged.
var FlashReporter twitter.ErrorReporter = twitter.ErrorReporterFunc(func(ctx context.Context, statusCode int) {
	bag := flashFromContext(ctx)
	if bag == nil {
		slog.Warn("twitter call failed outside a relay request", "status", statusCode)
		return
	}
	bag.add("error_" + strconv.Itoa(statusCode))
})

// FlashNotifier records success message keys in the request's flash bag.
var FlashNotifier twitter.Notifier = twitter.NotifierFunc(func(ctx context.Context, key string) {
	if bag := flashFromContext(ctx); bag != nil {
		bag.add(key)
	}
})
