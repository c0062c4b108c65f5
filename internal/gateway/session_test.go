package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nixdorfer/dialogue/internal/event"
	"github.com/nixdorfer/dialogue/internal/identity"
	"github.com/nixdorfer/dialogue/pkg/types"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// testGateway is an in-process stand-in for the remote gateway.
type testGateway struct {
	srv      *httptest.Server
	upgrades atomic.Int64
	conns    chan *websocket.Conn
	headers  chan http.Header
}

func newTestGateway(t *testing.T) *testGateway {
	t.Helper()
	g := &testGateway{
		conns:   make(chan *websocket.Conn, 4),
		headers: make(chan http.Header, 4),
	}
	g.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		g.upgrades.Add(1)
		g.headers <- r.Header.Clone()
		g.conns <- conn
	}))
	t.Cleanup(g.srv.Close)
	return g
}

func (g *testGateway) url() string {
	return "ws" + strings.TrimPrefix(g.srv.URL, "http")
}

// conn waits for the next established server-side connection.
func (g *testGateway) conn(t *testing.T) *websocket.Conn {
	t.Helper()
	select {
	case c := <-g.conns:
		return c
	case <-time.After(2 * time.Second):
		t.Fatal("gateway connection never established")
		return nil
	}
}

func newTestSession(t *testing.T, g *testGateway) (*Session, *event.Bus) {
	t.Helper()
	bus := event.NewBus()
	t.Cleanup(func() { bus.Close() })

	id := identity.NewWithProbes([]identity.Probe{
		{Name: "test", Read: func() (string, bool) { return "test-machine", true }},
	})

	s := NewSession(Config{
		URL:           g.url(),
		Origin:        "https://gateway.test",
		UserAgent:     "dialogue-test",
		ClientVersion: "0.0.1",
	}, id, bus)
	t.Cleanup(s.Disconnect)
	return s, bus
}

// subscribe buffers events of one type on a channel.
func subscribe(t *testing.T, bus *event.Bus, et event.EventType) chan event.Event {
	t.Helper()
	ch := make(chan event.Event, 16)
	unsub := bus.Subscribe(et, func(e event.Event) { ch <- e })
	t.Cleanup(unsub)
	return ch
}

func waitEvent(t *testing.T, ch chan event.Event) event.Event {
	t.Helper()
	select {
	case e := <-ch:
		return e
	case <-time.After(2 * time.Second):
		t.Fatal("event never arrived")
		return event.Event{}
	}
}

func TestConnectEstablishesSession(t *testing.T) {
	g := newTestGateway(t)
	s, bus := newTestSession(t, g)
	connected := subscribe(t, bus, event.Connected)

	assert.False(t, s.IsConnected())

	require.NoError(t, s.Connect(context.Background()))
	assert.True(t, s.IsConnected())
	assert.Equal(t, StateConnected, s.CurrentState())
	waitEvent(t, connected)
}

func TestUpgradeHeaders(t *testing.T) {
	g := newTestGateway(t)
	s, _ := newTestSession(t, g)

	require.NoError(t, s.Connect(context.Background()))
	g.conn(t)

	h := <-g.headers
	assert.Equal(t, "https://gateway.test", h.Get("Origin"))
	assert.Equal(t, "dialogue-test", h.Get("User-Agent"))
	assert.Equal(t, "0.0.1", h.Get("X-Client-Version"))
	assert.NotEmpty(t, h.Get("X-Device-ID"))
	assert.Contains(t, []string{"windows", "macos", "linux"}, h.Get("X-Platform"))
}

func TestConnectIsIdempotent(t *testing.T) {
	g := newTestGateway(t)
	s, _ := newTestSession(t, g)

	require.NoError(t, s.Connect(context.Background()))
	require.NoError(t, s.Connect(context.Background()))
	require.NoError(t, s.Connect(context.Background()))

	// Give any stray dial a moment to land.
	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, int64(1), g.upgrades.Load(), "duplicate connects must not open a second session")
}

func TestConnectFailureLeavesDisconnected(t *testing.T) {
	bus := event.NewBus()
	defer bus.Close()
	id := identity.NewWithProbes(nil)

	s := NewSession(Config{
		URL:              "ws://127.0.0.1:1/ws",
		HandshakeTimeout: 500 * time.Millisecond,
	}, id, bus)

	err := s.Connect(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to connect to gateway")
	assert.False(t, s.IsConnected())

	// The session is reusable after a failed dial.
	g := newTestGateway(t)
	s2, _ := newTestSession(t, g)
	require.NoError(t, s2.Connect(context.Background()))
	assert.True(t, s2.IsConnected())
}

func TestSendWhileDisconnected(t *testing.T) {
	g := newTestGateway(t)
	s, _ := newTestSession(t, g)

	err := s.Send("c1", "hello")
	assert.ErrorIs(t, err, ErrNotConnected)
	assert.Zero(t, g.upgrades.Load())
}

func TestSendFIFOOrder(t *testing.T) {
	g := newTestGateway(t)
	s, _ := newTestSession(t, g)

	require.NoError(t, s.Connect(context.Background()))
	serverConn := g.conn(t)

	const n = 20
	for i := 0; i < n; i++ {
		require.NoError(t, s.Send("c1", string(rune('a'+i))))
	}

	for i := 0; i < n; i++ {
		serverConn.SetReadDeadline(time.Now().Add(2 * time.Second))
		_, data, err := serverConn.ReadMessage()
		require.NoError(t, err)

		var env types.DialogueEnvelope
		require.NoError(t, json.Unmarshal(data, &env))
		assert.Equal(t, "dialogue", env.Type)
		assert.Equal(t, string(rune('a'+i)), env.Data.Request, "frame %d out of order", i)
	}
}

func TestSendStampsDeviceIDAndOmitsEmptyConversation(t *testing.T) {
	g := newTestGateway(t)
	s, _ := newTestSession(t, g)

	require.NoError(t, s.Connect(context.Background()))
	serverConn := g.conn(t)

	require.NoError(t, s.Send("", "hi"))
	serverConn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := serverConn.ReadMessage()
	require.NoError(t, err)
	assert.NotContains(t, string(data), "conversation_id")

	var env types.DialogueEnvelope
	require.NoError(t, json.Unmarshal(data, &env))
	assert.NotEmpty(t, env.Data.DeviceID)

	require.NoError(t, s.Send("c1", "hi"))
	_, data, err = serverConn.ReadMessage()
	require.NoError(t, err)
	assert.Contains(t, string(data), `"conversation_id":"c1"`)
}

func TestInboundFramesClassified(t *testing.T) {
	g := newTestGateway(t)
	s, bus := newTestSession(t, g)
	content := subscribe(t, bus, event.Content)
	fallback := subscribe(t, bus, event.WSMessage)

	require.NoError(t, s.Connect(context.Background()))
	serverConn := g.conn(t)

	require.NoError(t, serverConn.WriteMessage(websocket.TextMessage,
		[]byte(`{"type":"content","data":{"text":"x"}}`)))

	e := waitEvent(t, content)
	payload := e.Data.(event.PayloadData)
	assert.JSONEq(t, `{"text":"x"}`, string(payload.Payload))

	require.NoError(t, serverConn.WriteMessage(websocket.TextMessage,
		[]byte(`{"type":"totally_new","data":{"k":1}}`)))

	e = waitEvent(t, fallback)
	env := e.Data.(event.EnvelopeData).Envelope
	assert.Equal(t, "totally_new", env.Type)
	assert.JSONEq(t, `{"k":1}`, string(env.Data))
}

func TestMalformedFramesDroppedNotFatal(t *testing.T) {
	g := newTestGateway(t)
	s, bus := newTestSession(t, g)
	content := subscribe(t, bus, event.Content)

	require.NoError(t, s.Connect(context.Background()))
	serverConn := g.conn(t)

	require.NoError(t, serverConn.WriteMessage(websocket.TextMessage, []byte(`{broken`)))
	require.NoError(t, serverConn.WriteMessage(websocket.TextMessage,
		[]byte(`{"type":"content","data":{"text":"still alive"}}`)))

	waitEvent(t, content)
	assert.True(t, s.IsConnected())
	assert.Equal(t, int64(1), s.MalformedFrames())
}

func TestRemoteCloseEmitsDisconnectedOnce(t *testing.T) {
	g := newTestGateway(t)
	s, bus := newTestSession(t, g)
	disconnected := subscribe(t, bus, event.Disconnected)

	require.NoError(t, s.Connect(context.Background()))
	serverConn := g.conn(t)

	serverConn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	serverConn.Close()

	waitEvent(t, disconnected)
	assert.False(t, s.IsConnected())

	select {
	case <-disconnected:
		t.Fatal("disconnected emitted more than once")
	case <-time.After(200 * time.Millisecond):
	}

	err := s.Send("c1", "late")
	assert.ErrorIs(t, err, ErrNotConnected)
}

func TestReadErrorEmitsConnectionError(t *testing.T) {
	g := newTestGateway(t)
	s, bus := newTestSession(t, g)
	connErr := subscribe(t, bus, event.ConnectionError)
	disconnected := subscribe(t, bus, event.Disconnected)

	require.NoError(t, s.Connect(context.Background()))
	serverConn := g.conn(t)

	// Abrupt TCP teardown, no close handshake.
	serverConn.UnderlyingConn().Close()

	e := waitEvent(t, connErr)
	assert.NotEmpty(t, e.Data.(event.ConnectionErrorData).Error)
	waitEvent(t, disconnected)
	assert.False(t, s.IsConnected())
}

func TestDisconnectIsImmediateAndIdempotent(t *testing.T) {
	g := newTestGateway(t)
	s, bus := newTestSession(t, g)
	disconnected := subscribe(t, bus, event.Disconnected)

	require.NoError(t, s.Connect(context.Background()))
	g.conn(t)

	s.Disconnect()
	assert.False(t, s.IsConnected(), "never transiently connected after Disconnect returns")
	assert.ErrorIs(t, s.Send("c1", "x"), ErrNotConnected)

	waitEvent(t, disconnected)

	s.Disconnect()
	select {
	case <-disconnected:
		t.Fatal("second Disconnect re-emitted the event")
	case <-time.After(200 * time.Millisecond):
	}
}

func TestReconnectAfterDisconnect(t *testing.T) {
	g := newTestGateway(t)
	s, bus := newTestSession(t, g)
	disconnected := subscribe(t, bus, event.Disconnected)

	require.NoError(t, s.Connect(context.Background()))
	g.conn(t)
	s.Disconnect()
	waitEvent(t, disconnected)

	require.NoError(t, s.Connect(context.Background()))
	serverConn := g.conn(t)
	assert.True(t, s.IsConnected())

	require.NoError(t, s.Send("c1", "after reconnect"))
	serverConn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := serverConn.ReadMessage()
	require.NoError(t, err)
	assert.Contains(t, string(data), "after reconnect")
}
