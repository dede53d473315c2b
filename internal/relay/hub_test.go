package relay

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

type countingMetrics struct {
	nopMetrics
	mu      sync.Mutex
	dropped int
	joined  int
}

func (m *countingMetrics) FrameDropped(context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.dropped++
}

func (m *countingMetrics) RoomJoined(context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.joined++
}

func detachedClient(h *Hub, id string, buf int) *Client {
	return newClient(h, nil, Peer{ConnectionID: id}, buf)
}

func TestHub_Membership(t *testing.T) {
	h := NewHub(zap.NewNop())
	a := detachedClient(h, "a", 4)
	b := detachedClient(h, "b", 4)

	assert.True(t, h.Join(a, "S1"))
	assert.False(t, h.Join(a, "S1"), "second join is a no-op")
	assert.True(t, h.Join(b, "S1"))
	assert.True(t, h.Join(a, "S2"))

	assert.Equal(t, []string{"a", "b"}, h.Members("S1"))
	assert.Equal(t, []string{"S1", "S2"}, h.Rooms())

	assert.False(t, h.Leave(b, "S2"), "leaving a room never joined")
	assert.True(t, h.Leave(b, "S1"))
	assert.Equal(t, []string{"a"}, h.Members("S1"))

	assert.Equal(t, []string{"S1", "S2"}, h.LeaveAll(a))
	assert.Empty(t, h.Rooms(), "empty rooms are removed")
	assert.Empty(t, h.LeaveAll(a))
}

func TestHub_BroadcastSkipsSender(t *testing.T) {
	h := NewHub(zap.NewNop())
	a := detachedClient(h, "a", 4)
	b := detachedClient(h, "b", 4)
	c := detachedClient(h, "c", 4)
	h.Join(a, "S1")
	h.Join(b, "S1")
	h.Join(c, "S2")

	n := h.Broadcast(context.Background(), "S1", a, EventCodeUpdate, []byte("frame"))
	assert.Equal(t, 1, n)
	assert.Len(t, a.send, 0)
	assert.Len(t, b.send, 1)
	assert.Len(t, c.send, 0)

	assert.Equal(t, 0, h.Broadcast(context.Background(), "nobody", nil, EventCodeUpdate, []byte("x")))
}

func TestHub_FullQueueDropsFrame(t *testing.T) {
	m := &countingMetrics{}
	h := NewHub(zap.NewNop(), WithMetrics(m))
	slow := detachedClient(h, "slow", 1)
	fast := detachedClient(h, "fast", 8)
	h.Join(slow, "S1")
	h.Join(fast, "S1")

	ctx := context.Background()
	assert.Equal(t, 2, h.Broadcast(ctx, "S1", nil, EventCodeUpdate, []byte("1")))
	assert.Equal(t, 1, h.Broadcast(ctx, "S1", nil, EventCodeUpdate, []byte("2")))

	assert.Equal(t, 1, m.dropped)
	assert.Len(t, fast.send, 2, "a slow peer does not hold back the others")
}

func TestHub_ClosedClientIsSkipped(t *testing.T) {
	h := NewHub(zap.NewNop())
	a := detachedClient(h, "a", 4)
	h.Join(a, "S1")
	a.close()
	a.close()

	assert.Equal(t, 0, h.Broadcast(context.Background(), "S1", nil, EventCodeUpdate, []byte("x")))
}

type stubChecker map[string]bool

func (s stubChecker) SessionExists(_ context.Context, id string) (bool, error) {
	return s[id], nil
}

func TestHub_SessionAllowed(t *testing.T) {
	open := NewHub(zap.NewNop())
	assert.True(t, open.sessionAllowed(context.Background(), "anything"))

	strict := NewHub(zap.NewNop(), WithSessionChecker(stubChecker{"known": true}))
	assert.True(t, strict.sessionAllowed(context.Background(), "known"))
	assert.False(t, strict.sessionAllowed(context.Background(), "unknown"))
}
