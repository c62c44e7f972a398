// Package poller periodically pulls new mentions and direct messages through a
// twitter.Gateway and hands them to the CRM.
package poller

import (
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/alitto/pond/v2"

	"github.com/NethermindEth/crm-twitter/pkg/twitter"
	"github.com/NethermindEth/crm-twitter/pkg/utils/metrics"
)

// Feed names an inbound stream of the CRM account.
type Feed string

const (
	FeedMentions       Feed = "mentions"
	FeedDirectMessages Feed = "direct_messages"
)

// Feeds lists every feed polled on each tick.
var Feeds = []Feed{FeedMentions, FeedDirectMessages}

const DefaultTickRate = time.Minute

// Handler receives a non-empty batch of items, newest first. Returning an
// error keeps the feed's cursor where it was, so the batch is fetched again.
type Handler func(ctx context.Context, feed Feed, items []twitter.Object) error

// PollerConfig is the configuration for a Poller.
type PollerConfig struct {
	Gateway  twitter.Gateway
	Store    CursorStore
	Handler  Handler
	TickRate time.Duration
	Pool     pond.Pool
	Metrics  *metrics.MetricsCollector
	// SkipBacklog primes empty cursors with the newest ids before the first
	// tick, so items that predate the poller are never delivered.
	SkipBacklog bool
}

type Poller struct {
	gateway     twitter.Gateway
	store       CursorStore
	handler     Handler
	tickRate    time.Duration
	pool        pond.Pool
	metrics     *metrics.MetricsCollector
	skipBacklog bool
}

// NewPoller creates a new Poller, filling in an in-memory store, a two-worker
// pool and the default tick rate where the config leaves them unset.
func NewPoller(config *PollerConfig) (*Poller, error) {
	if config.Gateway == nil {
		return nil, fmt.Errorf("poller: gateway is required")
	}
	if config.Handler == nil {
		return nil, fmt.Errorf("poller: handler is required")
	}

	store := config.Store
	if store == nil {
		store = NewCursorStoreInMemory(nil)
	}
	tickRate := config.TickRate
	if tickRate <= 0 {
		tickRate = DefaultTickRate
	}
	pool := config.Pool
	if pool == nil {
		pool = pond.NewPool(len(Feeds))
	}

	return &Poller{
		gateway:     config.Gateway,
		store:       store,
		handler:     config.Handler,
		tickRate:    tickRate,
		pool:        pool,
		metrics:     config.Metrics,
		skipBacklog: config.SkipBacklog,
	}, nil
}

// Run polls once immediately and then on every tick until ctx is cancelled.
// Failed ticks are logged; only context cancellation stops the loop.
func (p *Poller) Run(ctx context.Context) error {
	slog.Info("starting poller", "tick_rate", p.tickRate)

	if p.skipBacklog {
		if err := p.Prime(ctx); err != nil {
			slog.Error("failed to prime cursors", "error", err)
		}
	}

	if err := p.PollOnce(ctx); err != nil {
		slog.Error("poll failed", "error", err)
	}

	ticker := time.NewTicker(p.tickRate)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := p.PollOnce(ctx); err != nil {
				slog.Error("poll failed", "error", err)
			}
		}
	}
}

// Prime sets every zero cursor to the newest id of its feed.
func (p *Poller) Prime(ctx context.Context) error {
	var empty []Feed
	for _, feed := range Feeds {
		if p.store.GetCursor(feed).IsZero() {
			empty = append(empty, feed)
		}
	}
	if len(empty) == 0 {
		return nil
	}

	group := p.pool.NewGroup()
	for _, feed := range empty {
		group.SubmitErr(func() error {
			newest, err := p.newestID(ctx, feed)
			if err != nil {
				return fmt.Errorf("prime %s: %w", feed, err)
			}
			if newest.IsNone() {
				slog.Debug("feed is empty, nothing to prime", "feed", feed)
				return nil
			}
			p.setCursor(feed, newest)
			return nil
		})
	}
	return group.Wait()
}

// PollOnce fetches every feed concurrently and waits for all of them.
func (p *Poller) PollOnce(ctx context.Context) error {
	if p.metrics != nil {
		p.metrics.IncrementCounter(metrics.MetricPollTick)
	}

	// One failing feed must not skip the others, so errors are collected
	// per slot instead of being returned to the group.
	errs := make([]error, len(Feeds))
	group := p.pool.NewGroup()
	for idx, feed := range Feeds {
		group.Submit(func() {
			errs[idx] = p.pollFeed(ctx, feed)
		})
	}
	if err := group.Wait(); err != nil {
		return err
	}
	return stderrors.Join(errs...)
}

func (p *Poller) pollFeed(ctx context.Context, feed Feed) error {
	since := p.store.GetCursor(feed)

	items, err := p.fetch(ctx, feed, since)
	if err != nil {
		return fmt.Errorf("fetch %s: %w", feed, err)
	}
	if len(items) == 0 {
		slog.Debug("no new items", "feed", feed, "since_id", since)
		return nil
	}

	slog.Info("received new items", "feed", feed, "count", len(items), "since_id", since)
	if p.metrics != nil {
		p.metrics.IncrementCounter(metrics.MetricPollBatches)
	}

	if err := p.handler(ctx, feed, items); err != nil {
		return fmt.Errorf("handle %s: %w", feed, err)
	}

	newest := items[0].IDStr()
	if newest == "" {
		slog.Warn("newest item has no id_str, cursor not advanced", "feed", feed)
		return nil
	}
	p.setCursor(feed, twitter.Cursor(newest))
	return nil
}

func (p *Poller) setCursor(feed Feed, cursor twitter.Cursor) {
	p.store.SetCursor(feed, cursor)
	if p.metrics != nil {
		p.metrics.SetGauge(string(feed)+"_cursor", cursor.String())
	}
	slog.Debug("cursor advanced", "feed", feed, "cursor", cursor)
}

func (p *Poller) fetch(ctx context.Context, feed Feed, since twitter.Cursor) ([]twitter.Object, error) {
	switch feed {
	case FeedMentions:
		return p.gateway.Mentions(ctx, since)
	case FeedDirectMessages:
		return p.gateway.DirectMessages(ctx, since)
	}
	return nil, fmt.Errorf("unknown feed %q", feed)
}

func (p *Poller) newestID(ctx context.Context, feed Feed) (twitter.Cursor, error) {
	switch feed {
	case FeedMentions:
		return p.gateway.NewestMentionID(ctx)
	case FeedDirectMessages:
		return p.gateway.NewestDirectMessageID(ctx)
	}
	return twitter.CursorNone, fmt.Errorf("unknown feed %q", feed)
}
