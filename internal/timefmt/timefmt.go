// Package timefmt turns server instants into the viewer's local display
// form. It is the only place a wire time.Time becomes a store time string,
// so every value entering the store is localized exactly once.
package timefmt

import (
	"time"

	"github.com/Shri333/webtext-frontend/internal/model"
)

// Layout is the display form: 12-hour clock, minute precision, no leading
// zero on the hour.
const Layout = "3:04 PM"

// Localize renders an absolute instant in loc. A nil loc falls back to the
// process-local zone.
func Localize(t time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.Local
	}
	return t.In(loc).Format(Layout)
}

// LocalizeMessage converts a wire message into its store shape.
func LocalizeMessage(m model.WireMessage, loc *time.Location) model.Message {
	msg := model.Message{
		ID:        m.ID,
		Text:      m.Text,
		Time:      Localize(m.Time, loc),
		Forwarded: m.Forwarded,
		ChatID:    m.ChatID,
		User:      m.User,
	}
	if m.Reply != nil {
		msg.Reply = &model.Reply{ID: m.Reply.ID, Text: m.Reply.Text, User: m.Reply.User}
	}
	return msg
}

// LocalizeChat converts a wire chat, including its embedded latest message.
func LocalizeChat(c model.WireChat, loc *time.Location) model.Chat {
	chat := model.Chat{
		ID:    c.ID,
		Name:  c.Name,
		Admin: c.Admin,
		Users: c.Users,
	}
	if c.LatestMessage != nil {
		latest := LocalizeMessage(*c.LatestMessage, loc)
		chat.LatestMessage = &latest
	}
	return chat
}

// LocalizeFullChat converts a wire full chat and every message in its
// sequence.
func LocalizeFullChat(c model.WireFullChat, loc *time.Location) model.FullChat {
	full := model.FullChat{Chat: LocalizeChat(c.WireChat, loc)}
	if len(c.Messages) > 0 {
		full.Messages = make([]model.Message, len(c.Messages))
		for i, m := range c.Messages {
			full.Messages[i] = LocalizeMessage(m, loc)
		}
	}
	return full
}
