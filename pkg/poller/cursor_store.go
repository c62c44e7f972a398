package poller

import (
	"sync"

	"github.com/NethermindEth/crm-twitter/pkg/twitter"
)

// CursorStoreReader reads the last processed cursor of a feed.
type CursorStoreReader interface {
	GetCursor(feed Feed) twitter.Cursor
}

// CursorStoreWriter records the last processed cursor of a feed.
type CursorStoreWriter interface {
	SetCursor(feed Feed, cursor twitter.Cursor)
}

// CursorStore persists per-feed cursors between ticks.
type CursorStore interface {
	CursorStoreReader
	CursorStoreWriter
}

// CursorStoreInMemory is a CursorStore that lives as long as the process.
type CursorStoreInMemory struct {
	mu      sync.RWMutex
	cursors map[Feed]twitter.Cursor
}

var _ CursorStore = (*CursorStoreInMemory)(nil)

// NewCursorStoreInMemory creates a store seeded with initial, which may be nil.
func NewCursorStoreInMemory(initial map[Feed]twitter.Cursor) *CursorStoreInMemory {
	cursors := make(map[Feed]twitter.Cursor, len(initial))
	for feed, cursor := range initial {
		cursors[feed] = cursor
	}
	return &CursorStoreInMemory{cursors: cursors}
}

func (s *CursorStoreInMemory) GetCursor(feed Feed) twitter.Cursor {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cursors[feed]
}

func (s *CursorStoreInMemory) SetCursor(feed Feed, cursor twitter.Cursor) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cursors[feed] = cursor
}
