// Package events consumes push events from the shared connection and
// applies the same entity-shaped deltas as the mutation reconciler. The
// transport offers no ordering between push delivery and mutation
// confirmation, so every application path relies on the store's idempotent
// merge primitives.
package events

import "encoding/json"

// Kind discriminates the nine push event payload shapes. The sender
// chooses the tag; the payload is never shape-sniffed.
type Kind string

const (
	UserCreated Kind = "USER_CREATED"
	UserUpdated Kind = "USER_UPDATED"
	UserDeleted Kind = "USER_DELETED"

	ChatCreated Kind = "CHAT_CREATED" // payload: full chat with messages
	ChatUpdated Kind = "CHAT_UPDATED" // payload: bare chat (partial view)
	ChatDeleted Kind = "CHAT_DELETED"

	MessageCreated Kind = "MESSAGE_CREATED"
	MessageUpdated Kind = "MESSAGE_UPDATED"
	MessageDeleted Kind = "MESSAGE_DELETED"
)

// PushEvent is one frame off the push channel: an explicit kind tag plus
// the raw payload, decoded by the handler that knows its shape.
type PushEvent struct {
	Kind Kind            `json:"event"`
	Data json.RawMessage `json:"data"`
}
