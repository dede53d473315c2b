// Package realtime is the client side of the relay: it keeps one websocket
// open, rejoins rooms after a reconnect and dispatches incoming frames.
package realtime

import (
	"context"
	"errors"
	"net/url"
	"sync"
	"time"

	"github.com/ZIXNRIXZ/Collabhub/internal/relay"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	DefaultAttempts = 5
	DefaultDelay    = time.Second

	writeWait = 10 * time.Second
)

var (
	ErrNotConnected = errors.New("realtime: not connected")
	ErrClosed       = errors.New("realtime: client closed")
)

type Options struct {
	URL   string
	Token string

	// Attempts bounds each reconnect cycle; Delay is the fixed pause between tries.
	Attempts int
	Delay    time.Duration

	Dialer *websocket.Dialer
	Log    *zap.Logger
}

type Client struct {
	opts Options
	log  *zap.Logger

	mu        sync.Mutex
	conn      *websocket.Conn
	connID    string
	joined    map[string]struct{}
	closed    bool
	connected bool

	writeMu sync.Mutex

	onCode   func(sessionID, code string)
	onJoined func(relay.Presence)
	onLeft   func(relay.Presence)

	done     chan struct{}
	doneOnce sync.Once
}

func New(opts Options) *Client {
	if opts.Attempts <= 0 {
		opts.Attempts = DefaultAttempts
	}
	if opts.Delay <= 0 {
		opts.Delay = DefaultDelay
	}
	if opts.Dialer == nil {
		opts.Dialer = websocket.DefaultDialer
	}
	if opts.Log == nil {
		opts.Log = zap.NewNop()
	}
	return &Client{
		opts:   opts,
		log:    opts.Log,
		joined: make(map[string]struct{}),
		done:   make(chan struct{}),
	}
}

// Handlers run on the reader goroutine and must not block for long.

func (c *Client) OnCodeUpdate(fn func(sessionID, code string)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onCode = fn
}

func (c *Client) OnUserJoined(fn func(relay.Presence)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onJoined = fn
}

func (c *Client) OnUserLeft(fn func(relay.Presence)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onLeft = fn
}

func (c *Client) Connected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.connected
}

// ConnectionID is the id the relay assigned to the current connection.
func (c *Client) ConnectionID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.connID
}

// Done is closed once the client is closed or has given up reconnecting.
func (c *Client) Done() <-chan struct{} { return c.done }

// Connect dials with the bounded retry policy and starts reading. ctx bounds
// the whole life of the client, reconnects included.
func (c *Client) Connect(ctx context.Context) error {
	conn, err := c.dialWithRetry(ctx)
	if err != nil {
		return err
	}
	c.attach(conn)
	go c.run(ctx, conn)
	return nil
}

func (c *Client) dialURL() (string, error) {
	u, err := url.Parse(c.opts.URL)
	if err != nil {
		return "", err
	}
	if c.opts.Token != "" {
		q := u.Query()
		q.Set("token", c.opts.Token)
		u.RawQuery = q.Encode()
	}
	return u.String(), nil
}

func (c *Client) dialWithRetry(ctx context.Context) (*websocket.Conn, error) {
	target, err := c.dialURL()
	if err != nil {
		return nil, err
	}

	var lastErr error
	for attempt := 1; attempt <= c.opts.Attempts; attempt++ {
		conn, _, err := c.opts.Dialer.DialContext(ctx, target, nil)
		if err == nil {
			return conn, nil
		}
		lastErr = err
		c.log.Warn("realtime dial failed", zap.Int("attempt", attempt), zap.Error(err))

		if attempt == c.opts.Attempts {
			break
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-c.done:
			return nil, ErrClosed
		case <-time.After(c.opts.Delay):
		}
	}
	return nil, lastErr
}

func (c *Client) attach(conn *websocket.Conn) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		_ = conn.Close()
		return
	}
	c.conn = conn
	c.connected = true
	c.connID = ""
	rooms := make([]string, 0, len(c.joined))
	for r := range c.joined {
		rooms = append(rooms, r)
	}
	c.mu.Unlock()

	// Membership does not survive a reconnect; join again from scratch.
	for _, r := range rooms {
		if err := c.write(conn, relay.EventJoinSession, r); err != nil {
			c.log.Warn("realtime rejoin failed", zap.String("session_id", r), zap.Error(err))
		}
	}
}

func (c *Client) run(ctx context.Context, conn *websocket.Conn) {
	for {
		err := c.readLoop(conn)

		c.mu.Lock()
		c.connected = false
		c.conn = nil
		closed := c.closed
		c.mu.Unlock()
		if closed {
			c.finish()
			return
		}
		c.log.Warn("realtime connection lost", zap.Error(err))

		conn, err = c.dialWithRetry(ctx)
		if err != nil {
			c.log.Error("realtime giving up", zap.Error(err))
			c.finish()
			return
		}
		c.attach(conn)
	}
}

func (c *Client) readLoop(conn *websocket.Conn) error {
	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			return err
		}
		c.dispatch(raw)
	}
}

func (c *Client) dispatch(raw []byte) {
	f, err := relay.DecodeFrame(raw)
	if err != nil {
		c.log.Debug("realtime dropped malformed frame")
		return
	}

	c.mu.Lock()
	onCode, onJoined, onLeft := c.onCode, c.onJoined, c.onLeft
	c.mu.Unlock()

	switch f.Event {
	case relay.EventConnected:
		var hello relay.Connected
		if err := relay.DecodeInto(f.Data, &hello); err == nil {
			c.mu.Lock()
			c.connID = hello.ConnectionID
			c.mu.Unlock()
		}
	case relay.EventCodeUpdate:
		cu, err := relay.DecodeCodeUpdate(f.Data)
		if err != nil || onCode == nil {
			return
		}
		onCode(cu.SessionID, cu.Code)
	case relay.EventUserJoined, relay.EventUserLeft:
		var p relay.Presence
		if err := relay.DecodeInto(f.Data, &p); err != nil {
			return
		}
		if f.Event == relay.EventUserJoined && onJoined != nil {
			onJoined(p)
		}
		if f.Event == relay.EventUserLeft && onLeft != nil {
			onLeft(p)
		}
	}
}

func (c *Client) write(conn *websocket.Conn, event string, payload any) error {
	frame, err := relay.EncodeFrame(event, payload)
	if err != nil {
		return err
	}
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	return conn.WriteMessage(websocket.TextMessage, frame)
}

func (c *Client) send(event string, payload any) error {
	c.mu.Lock()
	conn := c.conn
	c.mu.Unlock()
	if conn == nil {
		return ErrNotConnected
	}
	return c.write(conn, event, payload)
}

// JoinSession remembers the room so it is joined again after a reconnect.
func (c *Client) JoinSession(sessionID string) error {
	c.mu.Lock()
	c.joined[sessionID] = struct{}{}
	c.mu.Unlock()
	return c.send(relay.EventJoinSession, sessionID)
}

func (c *Client) LeaveSession(sessionID string) error {
	c.mu.Lock()
	delete(c.joined, sessionID)
	c.mu.Unlock()
	return c.send(relay.EventLeaveSession, sessionID)
}

func (c *Client) SendCodeUpdate(sessionID, code string) error {
	return c.send(relay.EventCodeUpdate, relay.CodeUpdate{SessionID: sessionID, Code: code})
}

func (c *Client) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	conn := c.conn
	c.mu.Unlock()

	if conn == nil {
		c.finish()
		return nil
	}
	c.writeMu.Lock()
	_ = conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(writeWait))
	c.writeMu.Unlock()
	return conn.Close()
}

func (c *Client) finish() {
	c.doneOnce.Do(func() { close(c.done) })
}
