package transport

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/Shri333/webtext-frontend/internal/events"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// authorizationEvent is the hello frame sent once after dialing. The
// server binds the connection to the session it names, and SocketID lets
// it suppress echoes at the source for operations that ask for that.
const authorizationEvent = "AUTHORIZATION"

type authPayload struct {
	Credential string `json:"credential"`
	SocketID   string `json:"socketId"`
}

// Socket is the websocket push channel. One read loop decodes tagged
// frames into PushEvents; the channel closes when the connection drops.
type Socket struct {
	url    string
	logger *zap.Logger

	mu     sync.Mutex
	conn   *websocket.Conn
	id     string
	events chan events.PushEvent
}

var _ PushChannel = (*Socket)(nil)

func NewSocket(url string, logger *zap.Logger) *Socket {
	return &Socket{url: url, logger: logger}
}

// Connect dials, sends the authorization frame, and starts the read loop.
// A fresh connection gets a fresh id: the server must never confuse two
// lives of the same client.
func (s *Socket) Connect(ctx context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conn != nil {
		return nil
	}

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, s.url, nil)
	if err != nil {
		return fmt.Errorf("dial push channel: %w", err)
	}

	id := uuid.NewString()
	payload, err := json.Marshal(authPayload{Credential: "Bearer " + token, SocketID: id})
	if err != nil {
		conn.Close()
		return fmt.Errorf("encode authorization: %w", err)
	}
	frame := events.PushEvent{Kind: authorizationEvent, Data: payload}
	if err := conn.WriteJSON(frame); err != nil {
		conn.Close()
		return fmt.Errorf("authorize push channel: %w", err)
	}

	s.conn = conn
	s.id = id
	s.events = make(chan events.PushEvent, 16)
	go s.readLoop(conn, s.events)
	return nil
}

func (s *Socket) readLoop(conn *websocket.Conn, out chan<- events.PushEvent) {
	defer close(out)
	for {
		var ev events.PushEvent
		if err := conn.ReadJSON(&ev); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				s.logger.Warn("push channel closed", zap.Error(err))
			}
			return
		}
		out <- ev
	}
}

// Events returns the frame stream of the current connection. Nil before
// Connect.
func (s *Socket) Events() <-chan events.PushEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.events
}

// ID returns the connection identity announced in the hello frame.
func (s *Socket) ID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.id
}

// Close drops the connection. The read loop notices and closes the event
// channel.
func (s *Socket) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conn == nil {
		return nil
	}
	err := s.conn.Close()
	s.conn = nil
	s.id = ""
	return err
}
