// Package client implements the consumer half of the gateway protocol: one
// logical chat session kept alive across physical reconnects.
package client

import (
	"encoding/json"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

// State is the connection lifecycle position. Transitions happen in one
// place, under one lock; there are no ad-hoc connecting/disconnecting flags.
type State int

const (
	StateIdle State = iota
	StateConnecting
	StateOpen
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateConnecting:
		return "connecting"
	case StateOpen:
		return "open"
	case StateClosed:
		return "closed"
	}
	return "unknown"
}

const (
	DefaultHandshakeTimeout = 5 * time.Second
	DefaultRetryInterval    = 2 * time.Second
	DefaultMaxRetries       = 5

	defaultEventBuffer = 64
	writeDeadline      = 5 * time.Second
	closeDeadline      = time.Second
)

type Config struct {
	URL      string
	UserID   string
	Nickname string

	HandshakeTimeout time.Duration
	// RetryInterval is the base reconnect delay; the actual delay grows
	// linearly with the attempt count (attempt × interval), not
	// exponentially.
	RetryInterval time.Duration
	MaxRetries    int
	EventBuffer   int
}

// Controller keeps one logical session alive across physical reconnects. It
// replays auth on every new link; room joins are not replayed, the UI
// re-issues them after seeing auth_success.
type Controller struct {
	cfg  Config
	dial func() (*websocket.Conn, error)

	mu         sync.Mutex
	state      State
	conn       *websocket.Conn
	retries    int
	localClose bool
	looping    bool
	stop       chan struct{}

	events chan Event
}

func New(cfg Config) *Controller {
	if cfg.HandshakeTimeout <= 0 {
		cfg.HandshakeTimeout = DefaultHandshakeTimeout
	}
	if cfg.RetryInterval <= 0 {
		cfg.RetryInterval = DefaultRetryInterval
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = DefaultMaxRetries
	}
	if cfg.EventBuffer <= 0 {
		cfg.EventBuffer = defaultEventBuffer
	}

	c := &Controller{
		cfg:    cfg,
		state:  StateIdle,
		events: make(chan Event, cfg.EventBuffer),
	}
	c.dial = func() (*websocket.Conn, error) {
		dialer := websocket.Dialer{HandshakeTimeout: cfg.HandshakeTimeout}
		conn, _, err := dialer.Dial(cfg.URL, nil)
		return conn, err
	}
	return c
}

// Events delivers decoded server frames to the UI layer.
func (c *Controller) Events() <-chan Event {
	return c.events
}

func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Connect starts the session loop. It reports false while an attempt is
// already in flight, the session is open, or a teardown is still winding
// down, so one logical session never holds two physical connections.
func (c *Controller) Connect() bool {
	c.mu.Lock()
	if c.looping || c.state == StateConnecting || c.state == StateOpen {
		c.mu.Unlock()
		return false
	}
	c.looping = true
	c.localClose = false
	c.retries = 0
	c.state = StateConnecting
	c.stop = make(chan struct{})
	c.mu.Unlock()

	go c.run()
	return true
}

// Close tears the session down deliberately. No reconnect follows; a later
// Connect starts a fresh retry budget.
func (c *Controller) Close() {
	c.mu.Lock()
	if c.localClose {
		c.mu.Unlock()
		return
	}
	c.localClose = true
	c.state = StateClosed
	conn := c.conn
	stop := c.stop
	c.mu.Unlock()

	if stop != nil {
		close(stop)
	}
	if conn != nil {
		msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "client closing")
		_ = conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(closeDeadline))
		_ = conn.Close()
	}
	log.Info().Str("module", "client").Msg("session closed")
}

// JoinRoom asks the gateway to add this identity to a room's live set. It
// reports false unless the session is open; intents are not queued across
// reconnects.
func (c *Controller) JoinRoom(roomID string) bool {
	if roomID == "" {
		return false
	}
	return c.write(outFrame{Type: "join_room", UserID: c.cfg.UserID, RoomID: roomID})
}

// LeaveRoom reports false unless the session is open.
func (c *Controller) LeaveRoom(roomID string) bool {
	if roomID == "" {
		return false
	}
	return c.write(outFrame{Type: "leave_room", UserID: c.cfg.UserID, RoomID: roomID})
}

// SendMessage submits one chat message. Content must be non-empty after
// trimming; the persisted id arrives back in the chat_message_sent event.
func (c *Controller) SendMessage(roomID, content string) bool {
	content = strings.TrimSpace(content)
	if roomID == "" || content == "" {
		return false
	}
	return c.write(outFrame{
		Type:    "chat_message",
		UserID:  c.cfg.UserID,
		RoomID:  roomID,
		Content: content,
		User:    &Profile{ID: c.cfg.UserID, Nickname: c.cfg.Nickname},
	})
}

func (c *Controller) run() {
	defer func() {
		c.mu.Lock()
		c.looping = false
		c.mu.Unlock()
	}()

	for {
		clean := c.attempt()

		c.mu.Lock()
		c.conn = nil
		c.state = StateClosed
		stop := clean || c.localClose || c.retries >= c.cfg.MaxRetries
		if !stop {
			c.retries++
		}
		attempt := c.retries
		c.mu.Unlock()

		if stop {
			log.Info().Str("module", "client").Msg("session loop finished")
			return
		}

		delay := time.Duration(attempt) * c.cfg.RetryInterval
		log.Info().Str("module", "client").Int("attempt", attempt).Dur("delay", delay).Msg("reconnecting")
		select {
		case <-time.After(delay):
		case <-c.stop:
			return
		}

		c.mu.Lock()
		if c.localClose {
			c.mu.Unlock()
			return
		}
		c.state = StateConnecting
		c.mu.Unlock()
	}
}

// attempt dials, replays auth and pumps events until the link drops. It
// reports whether the closure was clean: a deliberate local disconnect or a
// normal-closure from the server (eviction by a newer session for this
// identity), neither of which should trigger a reconnect.
func (c *Controller) attempt() bool {
	conn, err := c.dial()
	if err != nil {
		log.Warn().Err(err).Str("module", "client").Msg("connect failed")
		return false
	}

	c.mu.Lock()
	if c.localClose {
		c.mu.Unlock()
		_ = conn.Close()
		return true
	}
	c.conn = conn
	c.state = StateOpen
	c.retries = 0
	c.mu.Unlock()

	// Server session state does not survive reconnects, so auth is
	// replayed on every new link before anything else.
	if !c.write(outFrame{Type: "auth", UserID: c.cfg.UserID}) {
		_ = conn.Close()
		return false
	}
	return c.readLoop(conn)
}

func (c *Controller) readLoop(conn *websocket.Conn) bool {
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			_ = conn.Close()
			if websocket.IsCloseError(err, websocket.CloseNormalClosure) {
				log.Info().Str("module", "client").Msg("link closed normally")
				return true
			}
			log.Warn().Err(err).Str("module", "client").Msg("link lost")
			return false
		}

		var ev Event
		if err := json.Unmarshal(data, &ev); err != nil {
			log.Error().Err(err).Str("module", "client").Msg("bad server frame")
			continue
		}
		c.emit(ev)
	}
}

func (c *Controller) write(v any) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn == nil || c.state != StateOpen {
		return false
	}
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeDeadline))
	if err := c.conn.WriteJSON(v); err != nil {
		log.Warn().Err(err).Str("module", "client").Msg("write failed")
		return false
	}
	return true
}

func (c *Controller) emit(ev Event) {
	select {
	case c.events <- ev:
	default:
		log.Warn().Str("module", "client").Str("type", ev.Type).Msg("event dropped, consumer too slow")
	}
}
