// Package events fans change notifications out to the clients of each user.
// It replaces the periodic re-reads the screens used to do: after every
// mutation the core services publish an Event naming which view is stale.
package events

import (
	"sync"
	"time"
)

type Type string

const (
	RequestsChanged      Type = "requests.changed"
	FriendsChanged       Type = "friends.changed"
	ThoughtsChanged      Type = "thoughts.changed"
	ConversationsChanged Type = "conversations.changed"
)

type Event struct {
	Type      Type   `json:"type"`
	Username  string `json:"username,omitempty"`
	SubjectID string `json:"subjectId,omitempty"`
	Timestamp int64  `json:"timestamp"`
}

// Publisher is what the core services depend on.
type Publisher interface {
	Publish(username string, ev Event)
	Broadcast(ev Event)
}

const subscriberBuffer = 16

// Hub maps usernames to their live subscriptions. A user may hold several
// (one per open tab or device).
type Hub struct {
	mu     sync.RWMutex
	subs   map[string]map[int64]chan Event
	nextID int64
}

func NewHub() *Hub {
	return &Hub{subs: make(map[string]map[int64]chan Event)}
}

// Subscribe returns a channel of events for username and the id to pass
// to Unsubscribe.
func (h *Hub) Subscribe(username string) (int64, <-chan Event) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.subs[username]; !ok {
		h.subs[username] = make(map[int64]chan Event)
	}
	h.nextID++
	id := h.nextID
	ch := make(chan Event, subscriberBuffer)
	h.subs[username][id] = ch
	return id, ch
}

// Unsubscribe closes the subscription's channel. Unknown ids are ignored.
func (h *Hub) Unsubscribe(username string, id int64) {
	h.mu.Lock()
	defer h.mu.Unlock()

	conns, ok := h.subs[username]
	if !ok {
		return
	}
	if ch, ok := conns[id]; ok {
		close(ch)
		delete(conns, id)
	}
	if len(conns) == 0 {
		delete(h.subs, username)
	}
}

// Publish delivers ev to every subscription of username. Delivery never
// blocks: a subscriber whose buffer is full misses the event, which is
// harmless since every event only says "reload this view".
func (h *Hub) Publish(username string, ev Event) {
	if ev.Timestamp == 0 {
		ev.Timestamp = time.Now().UnixMilli()
	}
	if ev.Username == "" {
		ev.Username = username
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, ch := range h.subs[username] {
		select {
		case ch <- ev:
		default:
		}
	}
}

// Broadcast delivers ev to every connected user.
func (h *Hub) Broadcast(ev Event) {
	if ev.Timestamp == 0 {
		ev.Timestamp = time.Now().UnixMilli()
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, conns := range h.subs {
		for _, ch := range conns {
			select {
			case ch <- ev:
			default:
			}
		}
	}
}

// Connected reports how many subscriptions username holds.
func (h *Hub) Connected(username string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs[username])
}

// Discard is a Publisher that drops everything. The offline CLI commands
// use it.
type Discard struct{}

func (Discard) Publish(string, Event) {}
func (Discard) Broadcast(Event)       {}
