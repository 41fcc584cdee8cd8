package transport

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Shri333/webtext-frontend/internal/events"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(*http.Request) bool { return true },
}

// pushServer accepts one socket, captures its hello frame, and hands the
// connection to the test for scripted pushes.
type pushServer struct {
	url   string
	conns chan *websocket.Conn
	hello chan events.PushEvent
}

func newPushServer(t *testing.T) *pushServer {
	t.Helper()
	ps := &pushServer{
		conns: make(chan *websocket.Conn, 4),
		hello: make(chan events.PushEvent, 4),
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		var frame events.PushEvent
		if err := conn.ReadJSON(&frame); err != nil {
			conn.Close()
			return
		}
		ps.hello <- frame
		ps.conns <- conn
	}))
	t.Cleanup(srv.Close)
	ps.url = "ws" + strings.TrimPrefix(srv.URL, "http")
	return ps
}

func (ps *pushServer) accept(t *testing.T) *websocket.Conn {
	t.Helper()
	select {
	case conn := <-ps.conns:
		t.Cleanup(func() { conn.Close() })
		return conn
	case <-time.After(2 * time.Second):
		t.Fatal("no connection accepted")
		return nil
	}
}

func TestConnectSendsAuthorizationFrame(t *testing.T) {
	ps := newPushServer(t)
	sock := NewSocket(ps.url, zap.NewNop())
	t.Cleanup(func() { sock.Close() })

	require.NoError(t, sock.Connect(context.Background(), "tok-123"))
	ps.accept(t)

	frame := <-ps.hello
	assert.Equal(t, events.Kind("AUTHORIZATION"), frame.Kind)

	var payload struct {
		Credential string `json:"credential"`
		SocketID   string `json:"socketId"`
	}
	require.NoError(t, json.Unmarshal(frame.Data, &payload))
	assert.Equal(t, "Bearer tok-123", payload.Credential)
	assert.Equal(t, sock.ID(), payload.SocketID)
	assert.NotEmpty(t, sock.ID())
}

func TestEventsDeliveredInOrder(t *testing.T) {
	ps := newPushServer(t)
	sock := NewSocket(ps.url, zap.NewNop())
	t.Cleanup(func() { sock.Close() })

	require.NoError(t, sock.Connect(context.Background(), "tok"))
	conn := ps.accept(t)

	for _, kind := range []string{"USER_CREATED", "MESSAGE_CREATED"} {
		require.NoError(t, conn.WriteJSON(map[string]any{
			"event": kind,
			"data":  map[string]any{"id": "x"},
		}))
	}

	ev := <-sock.Events()
	assert.Equal(t, events.UserCreated, ev.Kind)
	ev = <-sock.Events()
	assert.Equal(t, events.MessageCreated, ev.Kind)
}

func TestCloseEndsEventStream(t *testing.T) {
	ps := newPushServer(t)
	sock := NewSocket(ps.url, zap.NewNop())

	require.NoError(t, sock.Connect(context.Background(), "tok"))
	ps.accept(t)

	ch := sock.Events()
	require.NoError(t, sock.Close())

	select {
	case _, open := <-ch:
		assert.False(t, open)
	case <-time.After(2 * time.Second):
		t.Fatal("event channel not closed")
	}
}

func TestConnectTwiceKeepsFirstConnection(t *testing.T) {
	ps := newPushServer(t)
	sock := NewSocket(ps.url, zap.NewNop())
	t.Cleanup(func() { sock.Close() })

	require.NoError(t, sock.Connect(context.Background(), "tok"))
	ps.accept(t)
	id := sock.ID()

	require.NoError(t, sock.Connect(context.Background(), "tok"))
	assert.Equal(t, id, sock.ID())
}

func TestFreshConnectionGetsFreshID(t *testing.T) {
	ps := newPushServer(t)
	sock := NewSocket(ps.url, zap.NewNop())

	require.NoError(t, sock.Connect(context.Background(), "tok"))
	ps.accept(t)
	first := sock.ID()
	require.NoError(t, sock.Close())

	require.NoError(t, sock.Connect(context.Background(), "tok"))
	t.Cleanup(func() { sock.Close() })
	ps.accept(t)

	assert.NotEqual(t, first, sock.ID())
}
