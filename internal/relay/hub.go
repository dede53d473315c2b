package relay

import (
	"context"
	"sort"
	"sync"

	"go.uber.org/zap"
)

// SessionChecker reports whether a room name is a persisted session id.
type SessionChecker interface {
	SessionExists(ctx context.Context, sessionID string) (bool, error)
}

// Hub is the membership table of every connected client. It owns no
// goroutine; callers hold no lock while writing to sockets.
type Hub struct {
	mu    sync.RWMutex
	rooms map[string]map[*Client]struct{}

	log     *zap.Logger
	metrics Metrics
	checker SessionChecker
}

type HubOption func(*Hub)

func WithMetrics(m Metrics) HubOption {
	return func(h *Hub) {
		if m != nil {
			h.metrics = m
		}
	}
}

// WithSessionChecker makes joins to unknown sessions a no-op.
func WithSessionChecker(c SessionChecker) HubOption {
	return func(h *Hub) { h.checker = c }
}

func NewHub(log *zap.Logger, opts ...HubOption) *Hub {
	h := &Hub{
		rooms:   make(map[string]map[*Client]struct{}),
		log:     log,
		metrics: nopMetrics{},
	}
	for _, o := range opts {
		o(h)
	}
	return h
}

// Join adds c to room and reports whether it was not a member already.
func (h *Hub) Join(c *Client, room string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	members, ok := h.rooms[room]
	if !ok {
		members = make(map[*Client]struct{})
		h.rooms[room] = members
	}
	if _, ok := members[c]; ok {
		return false
	}
	members[c] = struct{}{}
	c.rooms[room] = struct{}{}
	return true
}

// Leave removes c from room and reports whether it was a member.
func (h *Hub) Leave(c *Client, room string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.leaveLocked(c, room)
}

// LeaveAll removes c from every room and returns the rooms it was in.
func (h *Hub) LeaveAll(c *Client) []string {
	h.mu.Lock()
	defer h.mu.Unlock()

	left := make([]string, 0, len(c.rooms))
	for room := range c.rooms {
		if h.leaveLocked(c, room) {
			left = append(left, room)
		}
	}
	sort.Strings(left)
	return left
}

func (h *Hub) leaveLocked(c *Client, room string) bool {
	members, ok := h.rooms[room]
	if !ok {
		return false
	}
	if _, ok := members[c]; !ok {
		return false
	}
	delete(members, c)
	delete(c.rooms, room)
	if len(members) == 0 {
		delete(h.rooms, room)
	}
	return true
}

// Members returns the connection ids in room, sorted.
func (h *Hub) Members(room string) []string {
	h.mu.RLock()
	defer h.mu.RUnlock()

	ids := make([]string, 0, len(h.rooms[room]))
	for c := range h.rooms[room] {
		ids = append(ids, c.ID())
	}
	sort.Strings(ids)
	return ids
}

func (h *Hub) Rooms() []string {
	h.mu.RLock()
	defer h.mu.RUnlock()

	rooms := make([]string, 0, len(h.rooms))
	for r := range h.rooms {
		rooms = append(rooms, r)
	}
	sort.Strings(rooms)
	return rooms
}

// Broadcast queues frame for every member of room except the sender and
// returns how many peers it was queued for.
func (h *Hub) Broadcast(ctx context.Context, room string, except *Client, event string, frame []byte) int {
	h.mu.RLock()
	targets := make([]*Client, 0, len(h.rooms[room]))
	for c := range h.rooms[room] {
		if c != except {
			targets = append(targets, c)
		}
	}
	h.mu.RUnlock()

	sent := 0
	for _, c := range targets {
		if c.enqueue(ctx, frame) {
			sent++
		}
	}
	h.metrics.Broadcast(ctx, event, sent)
	return sent
}

func (h *Hub) sessionAllowed(ctx context.Context, room string) bool {
	if h.checker == nil {
		return true
	}
	ok, err := h.checker.SessionExists(ctx, room)
	if err != nil {
		h.log.Warn("relay session lookup failed", zap.String("session_id", room), zap.Error(err))
		return false
	}
	return ok
}
