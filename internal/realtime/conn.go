package realtime

import (
	"errors"
	"sync"
	"time"

	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
)

var (
	ErrConnClosed   = errors.New("connection closed")
	ErrSlowConsumer = errors.New("send buffer full")
)

// wsConn is the part of *websocket.Conn the session uses.
type wsConn interface {
	ReadMessage() (messageType int, p []byte, err error)
	WriteMessage(messageType int, data []byte) error
	WriteControl(messageType int, data []byte, deadline time.Time) error
	SetReadLimit(limit int64)
	SetReadDeadline(t time.Time) error
	SetWriteDeadline(t time.Time) error
	SetPongHandler(h func(appData string) error)
	Close() error
}

// Conn is the connection handle stored in the presence registry. Writes go
// through a buffered queue drained by writePump, the only goroutine that
// writes data frames.
type Conn struct {
	id   string
	ws   wsConn
	send chan []byte
	done chan struct{}
	once sync.Once

	writeWait    time.Duration
	pingInterval time.Duration
}

func newConn(ws wsConn, opts Options) *Conn {
	return &Conn{
		id:           uuid.NewString(),
		ws:           ws,
		send:         make(chan []byte, opts.SendBuffer),
		done:         make(chan struct{}),
		writeWait:    opts.WriteWait,
		pingInterval: opts.PingInterval,
	}
}

func (c *Conn) ID() string { return c.id }

func (c *Conn) Done() <-chan struct{} { return c.done }

// Send enqueues a frame. A full buffer means the peer stopped reading, so
// the connection is closed rather than blocking the caller.
func (c *Conn) Send(payload []byte) error {
	select {
	case <-c.done:
		return ErrConnClosed
	default:
	}
	select {
	case c.send <- payload:
		return nil
	case <-c.done:
		return ErrConnClosed
	default:
		c.Close("send buffer full")
		return ErrSlowConsumer
	}
}

// Close sends a close frame and tears the socket down. Safe to call more
// than once and from any goroutine.
func (c *Conn) Close(reason string) {
	c.once.Do(func() {
		close(c.done)
		deadline := time.Now().Add(c.writeWait)
		_ = c.ws.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, reason), deadline)
		_ = c.ws.Close()
	})
}

func (c *Conn) writePump() {
	ticker := time.NewTicker(c.pingInterval)
	defer ticker.Stop()
	for {
		select {
		case <-c.done:
			return
		case msg := <-c.send:
			_ = c.ws.SetWriteDeadline(time.Now().Add(c.writeWait))
			if err := c.ws.WriteMessage(websocket.TextMessage, msg); err != nil {
				c.Close("write failed")
				return
			}
		case <-ticker.C:
			if err := c.ws.WriteControl(websocket.PingMessage, nil, time.Now().Add(c.writeWait)); err != nil {
				c.Close("ping failed")
				return
			}
		}
	}
}
