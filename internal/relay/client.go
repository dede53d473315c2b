package relay

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10

	defaultSendBuffer      = 256
	defaultMaxMessageBytes = 1 << 20
)

// Client is one websocket connection. rooms is guarded by hub.mu.
type Client struct {
	hub  *Hub
	conn *websocket.Conn
	peer Peer
	log  *zap.Logger

	send      chan []byte
	done      chan struct{}
	closeOnce sync.Once

	rooms map[string]struct{}
}

func newClient(hub *Hub, conn *websocket.Conn, peer Peer, sendBuffer int) *Client {
	if sendBuffer <= 0 {
		sendBuffer = defaultSendBuffer
	}
	if peer.ConnectionID == "" {
		peer.ConnectionID = uuid.NewString()
	}
	return &Client{
		hub:   hub,
		conn:  conn,
		peer:  peer,
		log:   hub.log.With(zap.String("connection_id", peer.ConnectionID)),
		send:  make(chan []byte, sendBuffer),
		done:  make(chan struct{}),
		rooms: make(map[string]struct{}),
	}
}

func (c *Client) ID() string { return c.peer.ConnectionID }

// enqueue never blocks; a full queue drops the frame for this peer only.
func (c *Client) enqueue(ctx context.Context, frame []byte) bool {
	select {
	case <-c.done:
		return false
	default:
	}
	select {
	case c.send <- frame:
		return true
	default:
		c.hub.metrics.FrameDropped(ctx)
		c.log.Warn("relay queue full, dropping frame")
		return false
	}
}

func (c *Client) close() {
	c.closeOnce.Do(func() { close(c.done) })
}

// run blocks until the connection ends, then removes it from every room.
func (c *Client) run(ctx context.Context, maxMessageBytes int64) {
	c.hub.metrics.ConnectionOpened(ctx)
	go c.writePump()
	c.readPump(ctx, maxMessageBytes)

	c.close()
	for _, room := range c.hub.LeaveAll(c) {
		c.announce(ctx, room, EventUserLeft)
	}
	c.hub.metrics.ConnectionClosed(ctx)
	c.log.Debug("relay client disconnected")
}

func (c *Client) readPump(ctx context.Context, maxMessageBytes int64) {
	if maxMessageBytes <= 0 {
		maxMessageBytes = defaultMaxMessageBytes
	}
	c.conn.SetReadLimit(maxMessageBytes)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.log.Warn("relay read failed", zap.Error(err))
			}
			return
		}
		c.handle(ctx, raw)
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case msg := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				c.log.Warn("relay write failed", zap.Error(err))
				c.close()
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.close()
				return
			}
		case <-c.done:
			_ = c.conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(writeWait))
			return
		}
	}
}

// handle dispatches one inbound frame. Nothing is ever written back to the
// sender for a bad frame.
func (c *Client) handle(ctx context.Context, raw []byte) {
	f, err := DecodeFrame(raw)
	if err != nil {
		c.log.Debug("relay dropped malformed frame")
		return
	}

	switch f.Event {
	case EventJoinSession:
		room, ok := SessionIDFrom(f.Data)
		if !ok {
			return
		}
		if !c.hub.sessionAllowed(ctx, room) {
			c.log.Debug("relay join to unknown session dropped", zap.String("session_id", room))
			return
		}
		if c.hub.Join(c, room) {
			c.hub.metrics.RoomJoined(ctx)
			c.log.Debug("relay join", zap.String("session_id", room))
			c.announce(ctx, room, EventUserJoined)
		}
	case EventLeaveSession:
		room, ok := SessionIDFrom(f.Data)
		if !ok {
			return
		}
		if c.hub.Leave(c, room) {
			c.log.Debug("relay leave", zap.String("session_id", room))
			c.announce(ctx, room, EventUserLeft)
		}
	case EventCodeUpdate:
		cu, err := DecodeCodeUpdate(f.Data)
		if err != nil {
			c.log.Debug("relay dropped malformed code update")
			return
		}
		// Forward the received bytes so receivers see exactly what was sent.
		c.hub.Broadcast(ctx, cu.SessionID, c, EventCodeUpdate, raw)
	default:
		c.log.Debug("relay dropped unknown event", zap.String("event", f.Event))
	}
}

func (c *Client) announce(ctx context.Context, room, event string) {
	frame, err := EncodeFrame(event, Presence{SessionID: room, User: c.peer})
	if err != nil {
		c.log.Error("relay encode presence", zap.Error(err))
		return
	}
	c.hub.Broadcast(ctx, room, c, event, frame)
}
