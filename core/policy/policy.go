// Package policy authorizes inbound chat updates before they reach the
// dispatcher.
package policy

import (
	"fmt"
	"sync"
	"time"
)

const (
	freshnessWindow = 5 * time.Minute
	maxSeenIDs      = 10000
	pruneCount      = 1000
)

// Policy restricts processing to the operator chat, drops stale updates, and
// deduplicates update IDs across both messages and button callbacks.
type Policy struct {
	mu        sync.Mutex
	chatID    int64
	seen      map[int64]bool
	seenOrder []int64
}

// New creates a Policy that authorizes only the given operator chat.
func New(chatID int64) *Policy {
	return &Policy{
		chatID: chatID,
		seen:   make(map[int64]bool),
	}
}

// Authorize checks whether an update should be processed.
func (p *Policy) Authorize(chatID int64, updateID int64, timestamp time.Time) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if chatID != p.chatID {
		return fmt.Errorf("unauthorized chat: %d", chatID)
	}

	if time.Since(timestamp) > freshnessWindow {
		return fmt.Errorf("stale update: %v old", time.Since(timestamp).Truncate(time.Second))
	}

	if p.seen[updateID] {
		return fmt.Errorf("duplicate update: %d", updateID)
	}

	// Prune oldest entries if at capacity.
	if len(p.seen) >= maxSeenIDs {
		for i := 0; i < pruneCount && i < len(p.seenOrder); i++ {
			delete(p.seen, p.seenOrder[i])
		}
		p.seenOrder = p.seenOrder[pruneCount:]
	}

	p.seen[updateID] = true
	p.seenOrder = append(p.seenOrder, updateID)

	return nil
}
