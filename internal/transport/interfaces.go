// Package transport is the boundary to the server: parameterless session
// queries, typed mutations, and the persistent push channel. Everything
// above it deals in typed results and sentinel errors; nothing above it
// knows about HTTP or websockets.
package transport

import (
	"context"
	"errors"

	"github.com/Shri333/webtext-frontend/internal/events"
	"github.com/Shri333/webtext-frontend/internal/model"
)

// ErrNotAuthenticated means the credential is no longer accepted. It is
// the one error every caller must treat specially: the only valid response
// is a full session teardown.
var ErrNotAuthenticated = errors.New("transport: not authenticated")

// ErrChatExists is the domain conflict returned when a chat with the same
// final membership already exists. The reconciler recovers from it locally
// by selecting the existing chat; it never reaches the caller as a hard
// failure.
var ErrChatExists = errors.New("transport: chat already exists")

// Queries are the three parameterless reads issued at session start and on
// refresh. Chat and message instants come back absolute; localization
// happens on ingestion.
type Queries interface {
	// CurrentUser returns the session's own user, or nil when the server
	// no longer recognizes the credential.
	CurrentUser(ctx context.Context) (*model.User, error)

	// Users returns the full user roster.
	Users(ctx context.Context) ([]model.User, error)

	// Chats returns the full chat roster with complete message sequences,
	// newest message first.
	Chats(ctx context.Context) ([]model.WireFullChat, error)
}

// CreateMessageInput carries the optional knobs of message creation.
// SocketID lets the server skip echoing the event back to the connection
// that caused it; the merge rules make the echo harmless either way.
type CreateMessageInput struct {
	Text         string
	ChatID       string
	Forwarded    bool
	Notification bool
	SocketID     string
	ReplyToID    string
}

// Mutations are the typed request/response writes. Each returns either the
// confirmed payload or an error; ErrNotAuthenticated is always a possible
// outcome.
type Mutations interface {
	Login(ctx context.Context, username, password string) (string, error)
	Register(ctx context.Context, username, password string) (model.User, error)
	UpdateProfile(ctx context.Context, username, password string) (model.User, error)
	DeleteAccount(ctx context.Context) (model.User, error)

	CreateChat(ctx context.Context, userIDs []string) (model.WireFullChat, error)
	LeaveChat(ctx context.Context, chatID string) (model.WireChat, error)
	RenameChat(ctx context.Context, chatID, name string) (model.WireChat, error)
	ChangeAdmin(ctx context.Context, chatID, userID string) (model.WireChat, error)
	AddUsers(ctx context.Context, chatID string, userIDs []string) (model.WireChat, error)
	RemoveUsers(ctx context.Context, chatID string, userIDs []string) (model.WireChat, error)
	DeleteChat(ctx context.Context, chatID string) (model.WireChat, error)

	CreateMessage(ctx context.Context, in CreateMessageInput) (model.WireMessage, error)
	UpdateMessage(ctx context.Context, messageID, text string) (model.WireMessage, error)
	DeleteMessage(ctx context.Context, messageID string) (model.WireMessage, error)
}

// PushChannel is the persistent connection delivering server-initiated
// events. It is authenticated once, at connect time, by forwarding the
// current credential.
type PushChannel interface {
	// Connect dials and authenticates. The returned channel from Events is
	// closed when the connection drops or Close is called.
	Connect(ctx context.Context, token string) error

	// Events yields decoded push frames in arrival order.
	Events() <-chan events.PushEvent

	// ID identifies this connection to the server, so self-caused events
	// can be suppressed at the source.
	ID() string

	Close() error
}
