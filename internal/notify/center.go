// Package notify holds per-user transient notifications and fans out state
// events to websocket subscribers. Notifications auto-dismiss after a fixed
// duration; a manual dismiss cancels the timer early.
package notify

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Type classifies a notification for presentation.
type Type string

const (
	TypeInfo    Type = "info"
	TypeSuccess Type = "success"
	TypeWarning Type = "warning"
	TypeError   Type = "error"
)

// Notification is one transient user-facing message.
type Notification struct {
	ID        string    `json:"id"`
	Type      Type      `json:"type"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}

// Event is one entry on a subscriber stream.
type Event struct {
	Kind         string        `json:"kind"` // "notification", "dismiss", "save_status"
	Notification *Notification `json:"notification,omitempty"`
	ID           string        `json:"id,omitempty"`
	SaveStatus   string        `json:"save_status,omitempty"`
}

// Center is the notification hub. All methods are safe for concurrent use.
type Center struct {
	mu           sync.Mutex
	active       map[string][]Notification // userID -> live notifications
	subs         map[string]map[chan Event]struct{}
	dismissAfter time.Duration
	interval     time.Duration
}

// NewCenter creates a notification center. dismissAfter is how long a
// notification stays live without a manual dismiss.
func NewCenter(dismissAfter, sweepInterval time.Duration) *Center {
	if dismissAfter <= 0 {
		dismissAfter = 5 * time.Second
	}
	if sweepInterval <= 0 {
		sweepInterval = time.Second
	}
	return &Center{
		active:       make(map[string][]Notification),
		subs:         make(map[string]map[chan Event]struct{}),
		dismissAfter: dismissAfter,
		interval:     sweepInterval,
	}
}

// Push records a notification for the user and fans it out.
func (c *Center) Push(userID string, typ Type, message string) Notification {
	n := Notification{
		ID:        uuid.NewString(),
		Type:      typ,
		Message:   message,
		CreatedAt: time.Now(),
	}

	c.mu.Lock()
	c.active[userID] = append(c.active[userID], n)
	c.mu.Unlock()

	c.broadcast(userID, Event{Kind: "notification", Notification: &n})
	return n
}

// PushStatus fans out a save-status change without storing anything.
func (c *Center) PushStatus(userID, status string) {
	c.broadcast(userID, Event{Kind: "save_status", SaveStatus: status})
}

// Dismiss removes a live notification early. Dismissing an unknown ID is a
// no-op.
func (c *Center) Dismiss(userID, id string) {
	c.mu.Lock()
	list := c.active[userID]
	for i, n := range list {
		if n.ID == id {
			c.active[userID] = append(list[:i], list[i+1:]...)
			break
		}
	}
	c.mu.Unlock()

	c.broadcast(userID, Event{Kind: "dismiss", ID: id})
}

// Active returns the user's live notifications.
func (c *Center) Active(userID string) []Notification {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Notification(nil), c.active[userID]...)
}

// Subscribe registers a stream for the user's events. The returned cancel
// func must be called when the subscriber goes away.
func (c *Center) Subscribe(userID string) (<-chan Event, func()) {
	ch := make(chan Event, 16)

	c.mu.Lock()
	if c.subs[userID] == nil {
		c.subs[userID] = make(map[chan Event]struct{})
	}
	c.subs[userID][ch] = struct{}{}
	c.mu.Unlock()

	cancel := func() {
		c.mu.Lock()
		delete(c.subs[userID], ch)
		if len(c.subs[userID]) == 0 {
			delete(c.subs, userID)
		}
		c.mu.Unlock()
	}
	return ch, cancel
}

func (c *Center) broadcast(userID string, ev Event) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for ch := range c.subs[userID] {
		select {
		case ch <- ev:
		default:
			// Slow subscriber; drop rather than block a mutation.
		}
	}
}

// Start begins the auto-dismiss sweeper in a goroutine.
func (c *Center) Start(ctx context.Context) {
	go c.run(ctx)
}

// run is the main loop for the auto-dismiss sweeper
func (c *Center) run(ctx context.Context) {
	slog.Info("notification sweeper started", "dismiss_after", c.dismissAfter)

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("notification sweeper stopped")
			return
		case <-ticker.C:
			c.sweep()
		}
	}
}

// sweep dismisses notifications older than the auto-dismiss window.
func (c *Center) sweep() {
	cutoff := time.Now().Add(-c.dismissAfter)

	c.mu.Lock()
	var expired []struct {
		userID string
		id     string
	}
	for userID, list := range c.active {
		kept := list[:0]
		for _, n := range list {
			if n.CreatedAt.Before(cutoff) {
				expired = append(expired, struct {
					userID string
					id     string
				}{userID, n.ID})
				continue
			}
			kept = append(kept, n)
		}
		if len(kept) == 0 {
			delete(c.active, userID)
		} else {
			c.active[userID] = kept
		}
	}
	c.mu.Unlock()

	for _, e := range expired {
		c.broadcast(e.userID, Event{Kind: "dismiss", ID: e.id})
	}
}
