package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gofiber/websocket/v2"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/fathima-sithara/linkedin-clone-backend/internal/apperr"
	"github.com/fathima-sithara/linkedin-clone-backend/internal/metrics"
	"github.com/fathima-sithara/linkedin-clone-backend/internal/presence"
)

type State int32

const (
	StateConnecting State = iota
	StateAuthenticated
	StateActive
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateAuthenticated:
		return "authenticated"
	case StateActive:
		return "active"
	case StateClosed:
		return "closed"
	}
	return "unknown"
}

type Options struct {
	PingInterval    time.Duration
	PongWait        time.Duration
	WriteWait       time.Duration
	MaxMessageSize  int64
	SendBuffer      int
	QueueSize       int
	EventsPerSecond float64
	EventBurst      int
	Origins         []string
}

func (o Options) withDefaults() Options {
	if o.PingInterval <= 0 {
		o.PingInterval = 25 * time.Second
	}
	if o.PongWait <= 0 {
		o.PongWait = 60 * time.Second
	}
	if o.WriteWait <= 0 {
		o.WriteWait = 10 * time.Second
	}
	if o.MaxMessageSize <= 0 {
		o.MaxMessageSize = 64 * 1024
	}
	if o.SendBuffer <= 0 {
		o.SendBuffer = 256
	}
	if o.QueueSize <= 0 {
		o.QueueSize = 64
	}
	if o.EventsPerSecond <= 0 {
		o.EventsPerSecond = 20
	}
	if o.EventBurst <= 0 {
		o.EventBurst = 2 * int(o.EventsPerSecond)
	}
	return o
}

// Manager owns the lifecycle of every realtime connection.
type Manager struct {
	registry *presence.Registry
	router   *Router
	mirror   PresenceMirror
	metrics  *metrics.Metrics
	log      *zap.Logger
	opts     Options

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu     sync.Mutex
	closed bool
}

// NewManager builds a Manager. mirror and m may be nil.
func NewManager(registry *presence.Registry, router *Router, mirror PresenceMirror, m *metrics.Metrics, log *zap.Logger, opts Options) *Manager {
	ctx, cancel := context.WithCancel(context.Background())
	return &Manager{
		registry: registry,
		router:   router,
		mirror:   mirror,
		metrics:  m,
		log:      log,
		opts:     opts.withDefaults(),
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Serve runs one connection to completion. userID is the identity
// verified during the handshake; an empty id closes the connection before
// any event handling starts. Connections arriving after Shutdown are
// closed immediately.
func (m *Manager) Serve(ws wsConn, userID string) {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		_ = ws.Close()
		return
	}
	m.wg.Add(1)
	m.mu.Unlock()
	defer m.wg.Done()

	s := m.newSession(ws)
	if !s.authenticate(userID) {
		return
	}
	s.activate()
	// Registered after the shutdown sweep took its snapshot.
	if m.ctx.Err() != nil {
		s.teardown("server shutting down")
		return
	}

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		s.conn.writePump()
	}()
	go func() {
		defer wg.Done()
		s.dispatch()
	}()

	s.readPump()
	s.teardown("connection closed")
	wg.Wait()
}

// Shutdown closes every registered connection and waits for their
// sessions to finish or ctx to expire.
func (m *Manager) Shutdown(ctx context.Context) error {
	m.mu.Lock()
	m.closed = true
	m.mu.Unlock()
	m.cancel()
	for _, e := range m.registry.Entries() {
		e.Handle.Close("server shutting down")
	}
	done := make(chan struct{})
	go func() {
		m.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (m *Manager) broadcast(eventType string, payload any, exclude string) {
	frame, err := encode(eventType, payload)
	if err != nil {
		m.log.Error("encode broadcast", zap.String("type", eventType), zap.Error(err))
		return
	}
	for _, e := range m.registry.Entries() {
		if e.UserID == exclude {
			continue
		}
		_ = e.Handle.Send(frame)
	}
}

type session struct {
	m       *Manager
	conn    *Conn
	userID  string
	state   atomic.Int32
	events  chan Envelope
	limiter *rate.Limiter
	once    sync.Once
	log     *zap.Logger
}

func (m *Manager) newSession(ws wsConn) *session {
	s := &session{
		m:       m,
		conn:    newConn(ws, m.opts),
		events:  make(chan Envelope, m.opts.QueueSize),
		limiter: rate.NewLimiter(rate.Limit(m.opts.EventsPerSecond), m.opts.EventBurst),
	}
	s.state.Store(int32(StateConnecting))
	return s
}

func (s *session) State() State { return State(s.state.Load()) }

func (s *session) transition(from, to State) bool {
	return s.state.CompareAndSwap(int32(from), int32(to))
}

func (s *session) authenticate(userID string) bool {
	if userID == "" {
		s.state.Store(int32(StateClosed))
		s.conn.Close("unauthenticated")
		return false
	}
	s.userID = userID
	s.log = s.m.log.With(zap.String("user_id", userID), zap.String("conn_id", s.conn.ID()))
	return s.transition(StateConnecting, StateAuthenticated)
}

// activate registers the connection, then sends the snapshot, then
// announces the user. The snapshot is taken after registration so it always
// contains every user whose userOnline this client could have missed.
func (s *session) activate() {
	m := s.m
	if prev := m.registry.Register(s.userID, s.conn); prev != nil {
		s.log.Info("closing superseded connection", zap.String("stale_conn_id", prev.ID()))
		prev.Close("replaced by a newer connection")
	}
	s.transition(StateAuthenticated, StateActive)

	if frame, err := encode(EventOnlineUsers, m.registry.Snapshot()); err == nil {
		_ = s.conn.Send(frame)
	}
	m.broadcast(EventUserOnline, PresenceChange{UserID: s.userID}, s.userID)

	if m.mirror != nil {
		if err := m.mirror.MarkOnline(m.ctx, s.userID, s.conn.ID()); err != nil {
			s.log.Warn("presence mirror online failed", zap.Error(err))
		}
	}
	m.metrics.ConnectionOpened()
	s.log.Info("realtime connection active")
}

// readPump decodes frames into the event queue until the transport fails.
func (s *session) readPump() {
	defer close(s.events)

	ws := s.conn.ws
	pongWait := s.m.opts.PongWait
	ws.SetReadLimit(s.m.opts.MaxMessageSize)
	_ = ws.SetReadDeadline(time.Now().Add(pongWait))
	ws.SetPongHandler(func(string) error {
		return ws.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		mt, data, err := ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) && s.State() != StateClosed {
				s.log.Debug("realtime read ended", zap.Error(err))
			}
			return
		}
		if mt != websocket.TextMessage {
			continue
		}
		var env Envelope
		if err := json.Unmarshal(data, &env); err != nil || env.Type == "" {
			s.sendError(CodeValidation, "malformed event")
			continue
		}
		s.m.metrics.EventReceived(env.Type)
		// Logout is never throttled.
		if env.Type != EventManualDisconnect && !s.limiter.Allow() {
			s.sendError(CodeRateLimited, "too many events")
			continue
		}
		select {
		case s.events <- env:
		case <-s.conn.Done():
			return
		}
	}
}

// dispatch handles queued events in arrival order while the session is
// active. It exits once readPump closes the queue.
func (s *session) dispatch() {
	for env := range s.events {
		if s.State() != StateActive {
			continue
		}
		switch env.Type {
		case EventTyping:
			var in TypingIn
			if err := json.Unmarshal(env.Payload, &in); err != nil {
				s.sendError(CodeValidation, "invalid typing payload")
				continue
			}
			s.m.router.Typing(s.userID, in)
		case EventSendMessage:
			var in SendMessageIn
			if err := json.Unmarshal(env.Payload, &in); err != nil {
				s.sendError(CodeValidation, "invalid sendMessage payload")
				continue
			}
			if _, err := s.m.router.SendMessage(s.m.ctx, s.userID, in); err != nil {
				if errors.Is(err, apperr.ErrValidation) {
					s.sendError(CodeValidation, apperr.Message(err))
				}
			}
		case EventManualDisconnect:
			s.teardown("manual disconnect")
		default:
			s.sendError(CodeValidation, "unknown event: "+env.Type)
		}
	}
}

func (s *session) sendError(code, msg string) {
	frame, err := encode(EventError, ErrorOut{Code: code, Message: msg})
	if err != nil {
		return
	}
	_ = s.conn.Send(frame)
}

// teardown runs exactly once per session whichever path closes it first.
// userOffline is only announced when this connection still owned the
// registry entry; a superseded connection leaves its replacement alone.
func (s *session) teardown(reason string) {
	s.once.Do(func() {
		prev := State(s.state.Swap(int32(StateClosed)))
		s.conn.Close(reason)
		if prev != StateActive {
			return
		}
		m := s.m
		if m.registry.Release(s.userID, s.conn) {
			m.broadcast(EventUserOffline, PresenceChange{UserID: s.userID}, s.userID)
			if m.mirror != nil {
				ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
				if err := m.mirror.MarkOffline(ctx, s.userID); err != nil {
					s.log.Warn("presence mirror offline failed", zap.Error(err))
				}
				cancel()
			}
		}
		m.metrics.ConnectionClosed()
		s.log.Info("realtime connection closed", zap.String("reason", reason))
	})
}
