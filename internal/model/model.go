package model

import (
	"fmt"
	"time"
)

// User is a registered account. ID is the server-issued identity and the
// join key for every relation; Username is mutable and only ever used for
// display.
//
// Why string IDs and not uuid.UUID?
//   - The server issues opaque identifiers over GraphQL, where every ID is
//     a string. The client must treat them as opaque: parsing them into a
//     UUID would bake in a server implementation detail.
//   - Optimistic message placeholders live in a reserved "local-" namespace
//     (see reconcile), which only works with a string-shaped identity.
type User struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

// Reply is the quoted-message stub embedded in a Message. It carries just
// enough of the original to render the quote; it is not a cache entity of
// its own.
type Reply struct {
	ID   string `json:"id"`
	Text string `json:"text"`
	User User   `json:"user"`
}

// Message is a single chat message.
//
// Time is the viewer-local display string ("3:04 PM"), not an instant.
// Instants exist only on the wire (WireMessage); localization happens once,
// on ingestion, and the type split makes double-normalization impossible.
//
// A nil User marks a notification message ("alice renamed this chat to x")
// authored by the system rather than a person.
type Message struct {
	ID        string `json:"id"`
	Text      string `json:"text"`
	Time      string `json:"time"`
	Forwarded bool   `json:"forwarded"`
	ChatID    string `json:"chatId"`
	User      *User  `json:"user"`
	Reply     *Reply `json:"reply"`
}

// IsNotification reports whether the message is a system-authored entry.
func (m *Message) IsNotification() bool {
	return m.User == nil
}

// Chat is a conversation. Admin is never present in Users; Users is unique
// by id. Name is empty for chats whose display name is computed from the
// membership (see FullChat.DisplayName).
//
// LatestMessage mirrors the head of the chat's full message sequence: it is
// nil exactly when the sequence is empty.
type Chat struct {
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	Admin         User     `json:"admin"`
	Users         []User   `json:"users"`
	LatestMessage *Message `json:"message"`
}

// Everyone returns admin plus members, admin first.
func (c *Chat) Everyone() []User {
	all := make([]User, 0, len(c.Users)+1)
	all = append(all, c.Admin)
	all = append(all, c.Users...)
	return all
}

// FullChat is a Chat together with its complete message sequence, ordered
// most-recent-first. The store holds only full chats; a bare Chat arriving
// from a mutation or event is a partial view merged into one.
type FullChat struct {
	Chat
	Messages []Message `json:"messages"`
}

// DisplayName resolves the name shown to viewer: the explicit name when one
// is set, otherwise a name derived from everyone except the viewer.
func (c *FullChat) DisplayName(viewer User) string {
	if c.Name != "" {
		return c.Name
	}
	others := make([]User, 0, len(c.Users)+1)
	for _, u := range c.Everyone() {
		if u.ID != viewer.ID {
			others = append(others, u)
		}
	}
	switch len(others) {
	case 0:
		return viewer.Username
	case 1:
		return others[0].Username
	case 2:
		return fmt.Sprintf("%s and %s", others[0].Username, others[1].Username)
	default:
		return fmt.Sprintf("%s and %d others", others[0].Username, len(others)-1)
	}
}

// Wire shapes below mirror the store shapes but carry absolute instants.
// The transport decodes into these; timefmt turns them into store shapes.

type WireReply struct {
	ID   string `json:"id"`
	Text string `json:"text"`
	User User   `json:"user"`
}

type WireMessage struct {
	ID        string     `json:"id"`
	Text      string     `json:"text"`
	Time      time.Time  `json:"time"`
	Forwarded bool       `json:"forwarded"`
	ChatID    string     `json:"chatId"`
	User      *User      `json:"user"`
	Reply     *WireReply `json:"reply"`
}

type WireChat struct {
	ID            string       `json:"id"`
	Name          string       `json:"name"`
	Admin         User         `json:"admin"`
	Users         []User       `json:"users"`
	LatestMessage *WireMessage `json:"message"`
}

type WireFullChat struct {
	WireChat
	Messages []WireMessage `json:"messages"`
}
