// Package signal terminates gateway websocket connections and routes framed
// protocol messages to the session, room, and chat services.
package signal

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/questhall/questhall/internal/app"
	"github.com/questhall/questhall/internal/core"
	"github.com/questhall/questhall/internal/domain"
)

var ErrBackpressure = errors.New("backpressure")

const (
	sendBuffer    = 32
	writeDeadline = 5 * time.Second
	closeDeadline = time.Second
)

type Controller struct {
	Registry *app.Registry
	Rooms    *app.Rooms
	Chat     *app.Chat

	// ReadLimit caps a single inbound frame; zero keeps the transport default.
	ReadLimit int64
}

func NewController(registry *app.Registry, rooms *app.Rooms, chat *app.Chat) *Controller {
	return &Controller{
		Registry: registry,
		Rooms:    rooms,
		Chat:     chat,
	}
}

// wsConn is one live transport link. userID stays empty until auth succeeds.
type wsConn struct {
	conn *websocket.Conn
	send chan core.Frame

	mu     sync.RWMutex
	closed bool
	userID domain.UserID
}

func (c *wsConn) TrySend(f core.Frame) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return errors.New("connection closed")
	}
	select {
	case c.send <- f:
	default:
		return ErrBackpressure
	}
	return nil
}

// CloseEvicted tells the peer this was a normal closure before teardown, so
// a well-behaved client does not fight the session that replaced it.
func (c *wsConn) CloseEvicted() {
	msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "session replaced")
	_ = c.conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(closeDeadline))
	c.Close()
}

func (c *wsConn) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	close(c.send)
	_ = c.conn.Close()
	c.mu.Unlock()
}

func (c *wsConn) setUser(id domain.UserID) {
	c.mu.Lock()
	c.userID = id
	c.mu.Unlock()
}

func (c *wsConn) user() domain.UserID {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.userID
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Handle upgrades the request and runs the connection until close or error.
func (ctl *Controller) Handle(ctx context.Context, c *gin.Context) {
	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("ws upgrade")
		return
	}
	if ctl.ReadLimit > 0 {
		ws.SetReadLimit(ctl.ReadLimit)
	}
	log.Info().Str("module", "signal").Str("remote", ws.RemoteAddr().String()).Msg("new connection")

	conn := &wsConn{
		conn: ws,
		send: make(chan core.Frame, sendBuffer),
	}

	ctx, cancel := context.WithCancel(ctx)
	go func() {
		defer cancel()
		ctl.writePump(ctx, conn)
	}()
	ctl.readPump(ctx, conn)
	cancel()
}

// teardown is the only place membership is torn down in bulk: the connection
// leaves the registry (if authenticated) and every room it had joined.
func (ctl *Controller) teardown(c *wsConn) {
	if userID := c.user(); userID != "" {
		ctl.Rooms.DropConn(userID, c)
		ctl.Registry.Unregister(userID, c)
	}
	c.Close()
}
