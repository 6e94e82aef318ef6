package notify

import (
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/avorobev/fableroom/internal/dependencies/clock"
	"github.com/avorobev/fableroom/internal/model"
)

// Bridge is the process-wide queue of transient user-facing messages.
// Notifications keep insertion order and are never merged, even when
// textually identical.
type Bridge struct {
	clock  clock.Clock
	logger *slog.Logger

	mu     sync.Mutex
	items  []model.Notification
	timers map[string]clock.Timer
}

// New creates a notification bridge
func New(clk clock.Clock, logger *slog.Logger) *Bridge {
	return &Bridge{
		clock:  clk,
		logger: logger,
		timers: make(map[string]clock.Timer),
	}
}

// Add queues a notification and returns its id. A nonzero expiry
// schedules exactly one removal after that duration, unless the
// notification is dismissed earlier.
func (b *Bridge) Add(severity model.Severity, title, message string, expiry time.Duration) string {
	n := model.Notification{
		ID:        uuid.NewString(),
		Severity:  severity,
		Title:     title,
		Message:   message,
		Expiry:    expiry,
		CreatedAt: b.clock.Now(),
	}

	b.mu.Lock()
	b.items = append(b.items, n)
	if expiry > 0 {
		id := n.ID
		b.timers[id] = b.clock.AfterFunc(expiry, func() {
			b.Dismiss(id)
		})
	}
	b.mu.Unlock()

	b.logger.Debug("notification queued",
		slog.String("id", n.ID),
		slog.String("severity", string(severity)),
		slog.String("title", title),
	)
	return n.ID
}

// Dismiss removes a notification by id. Dismissing an unknown id is a no-op.
func (b *Bridge) Dismiss(id string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if t, ok := b.timers[id]; ok {
		t.Stop()
		delete(b.timers, id)
	}
	for i, n := range b.items {
		if n.ID == id {
			b.items = append(b.items[:i], b.items[i+1:]...)
			return
		}
	}
}

// Clear removes all pending notifications and cancels their timers
func (b *Bridge) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()

	for id, t := range b.timers {
		t.Stop()
		delete(b.timers, id)
	}
	b.items = nil
}

// List returns the pending notifications in insertion order
func (b *Bridge) List() []model.Notification {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := make([]model.Notification, len(b.items))
	copy(out, b.items)
	return out
}

// Len returns the number of pending notifications
func (b *Bridge) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.items)
}
