// Package gateway owns the WebSocket session to the remote conversational
// gateway: one logical session per process, a send flow and a receive flow
// per established connection, and classified events published to the bus.
package gateway

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/nixdorfer/dialogue/internal/event"
	"github.com/nixdorfer/dialogue/internal/identity"
	"github.com/nixdorfer/dialogue/internal/logging"
	"github.com/nixdorfer/dialogue/pkg/types"
)

// ErrNotConnected is returned by Send when no session is established.
var ErrNotConnected = errors.New("not connected")

// outboundQueueSize is the send-queue capacity. Beyond it, Send blocks the
// caller rather than growing without bound.
const outboundQueueSize = 100

// State is the connection state of the session.
type State int32

const (
	StateDisconnected State = iota
	StateConnecting
	StateConnected
)

// String implements fmt.Stringer.
func (s State) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	default:
		return "disconnected"
	}
}

// Config holds the session's transport parameters.
type Config struct {
	// URL is the gateway WebSocket endpoint.
	URL string
	// Origin and UserAgent are sent on the upgrade request.
	Origin    string
	UserAgent string
	// ClientVersion is reported in X-Client-Version.
	ClientVersion string
	// HandshakeTimeout bounds the upgrade. Zero means 30s.
	HandshakeTimeout time.Duration
}

// Session is the connection session core. At most one live WebSocket
// session exists per Session value; Connect while connecting or connected
// is a no-op. Mutable state is guarded for many readers, few writers.
type Session struct {
	cfg      Config
	identity *identity.Provider
	bus      *event.Bus

	mu       sync.RWMutex
	state    State
	outbound chan []byte
	shutdown chan struct{}
	conn     *websocket.Conn
	closing  *sync.Once
	gen      uint64

	malformed atomic.Int64
}

// NewSession creates a Session. Nothing is dialed until Connect.
func NewSession(cfg Config, id *identity.Provider, bus *event.Bus) *Session {
	if cfg.HandshakeTimeout == 0 {
		cfg.HandshakeTimeout = 30 * time.Second
	}
	return &Session{cfg: cfg, identity: id, bus: bus}
}

// Connect establishes the gateway session and spawns the send and receive
// flows. If a session is already connecting or connected it returns nil
// immediately; rapid repeated triggers never produce duplicate sessions.
// On transport failure the state returns to disconnected and the error is
// returned; the core itself never retries.
func (s *Session) Connect(ctx context.Context) error {
	s.mu.Lock()
	if s.state != StateDisconnected {
		s.mu.Unlock()
		return nil
	}
	s.state = StateConnecting
	s.mu.Unlock()

	header := http.Header{}
	header.Set("Origin", s.cfg.Origin)
	header.Set("User-Agent", s.cfg.UserAgent)
	header.Set("X-Device-ID", s.identity.DeviceID())
	header.Set("X-Client-Version", s.cfg.ClientVersion)
	header.Set("X-Platform", string(types.CurrentPlatform()))

	dialer := websocket.Dialer{
		HandshakeTimeout: s.cfg.HandshakeTimeout,
		// The gateway is pinned by endpoint, not by CA chain: certificate
		// validation is intentionally disabled for this transport. This
		// accepts any certificate the endpoint presents.
		TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
	}

	conn, resp, err := dialer.DialContext(ctx, s.cfg.URL, header)
	if err != nil {
		s.mu.Lock()
		s.state = StateDisconnected
		s.mu.Unlock()
		if resp != nil {
			return fmt.Errorf("failed to connect to gateway (status %d): %w", resp.StatusCode, err)
		}
		return fmt.Errorf("failed to connect to gateway: %w", err)
	}

	s.mu.Lock()
	s.gen++
	gen := s.gen
	outbound := make(chan []byte, outboundQueueSize)
	shutdown := make(chan struct{})
	closing := &sync.Once{}
	s.outbound = outbound
	s.shutdown = shutdown
	s.conn = conn
	s.closing = closing
	s.state = StateConnected
	s.mu.Unlock()

	logging.Info().Str("url", s.cfg.URL).Msg("gateway session established")
	s.bus.PublishSync(event.Event{Type: event.Connected, Data: true})

	go s.writeLoop(gen, conn, outbound, shutdown, closing)
	go s.readLoop(gen, conn, shutdown, closing)

	return nil
}

// writeLoop drains the outbound queue onto the wire in FIFO order, one
// text frame per payload, until shutdown or a write failure.
func (s *Session) writeLoop(gen uint64, conn *websocket.Conn, outbound <-chan []byte, shutdown chan struct{}, closing *sync.Once) {
	for {
		select {
		case payload := <-outbound:
			if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				logging.Debug().Err(err).Msg("gateway write failed")
				s.terminate(gen, conn, shutdown, closing, "")
				return
			}
		case <-shutdown:
			return
		}
	}
}

// readLoop decodes inbound frames into classified events until the
// transport closes. Malformed frames are dropped and counted, never fatal.
func (s *Session) readLoop(gen uint64, conn *websocket.Conn, shutdown chan struct{}, closing *sync.Once) {
	for {
		msgType, data, err := conn.ReadMessage()
		if err != nil {
			errText := ""
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				errText = err.Error()
			}
			s.terminate(gen, conn, shutdown, closing, errText)
			return
		}
		if msgType != websocket.TextMessage {
			continue
		}

		var env types.Envelope
		if err := json.Unmarshal(data, &env); err != nil || env.Type == "" {
			s.malformed.Add(1)
			logging.Debug().Int64("dropped", s.malformed.Load()).Msg("malformed gateway frame dropped")
			continue
		}

		s.bus.PublishSync(Classify(env))
	}
}

// terminate is the single idempotent close routine shared by both flows
// and Disconnect. Exactly once per session it signals shutdown, closes the
// transport, clears the outbound handle, flips state to disconnected, and
// emits the disconnected event. A non-empty errText additionally emits
// connection_error first.
func (s *Session) terminate(gen uint64, conn *websocket.Conn, shutdown chan struct{}, closing *sync.Once, errText string) {
	closing.Do(func() {
		if errText != "" {
			s.bus.PublishSync(event.Event{
				Type: event.ConnectionError,
				Data: event.ConnectionErrorData{Error: errText},
			})
		}

		close(shutdown)
		conn.Close()

		s.mu.Lock()
		// A newer session may already be live; only clear our own.
		if s.gen == gen {
			s.state = StateDisconnected
			s.outbound = nil
			s.shutdown = nil
			s.conn = nil
		}
		s.mu.Unlock()

		logging.Info().Msg("gateway session ended")
		s.bus.PublishSync(event.Event{Type: event.Disconnected, Data: true})
	})
}

// Disconnect tears down the current session, if any. Both flows observe
// the shutdown signal; the disconnected event fires exactly once.
func (s *Session) Disconnect() {
	s.mu.RLock()
	gen, conn, shutdown, closing := s.gen, s.conn, s.shutdown, s.closing
	s.mu.RUnlock()

	if conn == nil {
		return
	}
	s.terminate(gen, conn, shutdown, closing, "")
}

// Send enqueues one dialogue request for delivery. The device id is
// stamped here, not supplied by callers; an empty conversation id is
// omitted from the wire entirely. When the queue is full, Send blocks
// until space frees up or the session ends.
func (s *Session) Send(conversationID, text string) error {
	s.mu.RLock()
	outbound, shutdown := s.outbound, s.shutdown
	s.mu.RUnlock()

	if outbound == nil {
		return ErrNotConnected
	}

	payload, err := json.Marshal(types.DialogueEnvelope{
		Type: "dialogue",
		Data: types.DialogueRequest{
			Request:        text,
			ConversationID: conversationID,
			DeviceID:       s.identity.DeviceID(),
		},
	})
	if err != nil {
		return fmt.Errorf("failed to encode dialogue request: %w", err)
	}

	select {
	case outbound <- payload:
		return nil
	case <-shutdown:
		return ErrNotConnected
	}
}

// IsConnected reports whether a session is currently established.
// Safe to call concurrently with flow mutation at any time.
func (s *Session) IsConnected() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state == StateConnected
}

// CurrentState returns the point-in-time connection state.
func (s *Session) CurrentState() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// MalformedFrames returns how many inbound frames were dropped as
// unparseable. Exposed so the drop policy stays observable.
func (s *Session) MalformedFrames() int64 {
	return s.malformed.Load()
}
