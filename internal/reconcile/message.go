package reconcile

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/Shri333/webtext-frontend/internal/model"
	"github.com/Shri333/webtext-frontend/internal/timefmt"
	"github.com/Shri333/webtext-frontend/internal/transport"
	"github.com/google/uuid"
)

// MaxMessageLen caps message text, matching the server-side limit so the
// failure is caught before dispatch.
const MaxMessageLen = 150

// ErrMessageTooLong is a pre-dispatch validation failure.
var ErrMessageTooLong = errors.New("reconcile: text must be less than 150 characters")

// placeholderPrefix reserves an identity namespace for optimistic entries.
// Server-issued ids never start with it, so a placeholder can never
// collide with a confirmed record.
const placeholderPrefix = "local-"

func placeholderID() string {
	return placeholderPrefix + uuid.NewString()
}

// IsPlaceholder reports whether an id belongs to the optimistic namespace.
func IsPlaceholder(id string) bool {
	return strings.HasPrefix(id, placeholderPrefix)
}

// SendInput describes one outgoing message. ReplyTo quotes an existing
// message; Forwarded marks a message copied from another chat.
type SendInput struct {
	ChatID    string
	Text      string
	ReplyTo   *model.Message
	Forwarded bool
}

// SendMessage creates a message optimistically: a placeholder with the
// viewer as author and the current instant, written to the head of the
// chat before the server answers. Confirmation swaps the placeholder for
// the authoritative record; the swap is idempotent against the push echo
// of the same creation, whichever arrives first. On any failure other than
// a dead session the placeholder is withdrawn, leaving authoritative state
// untouched.
func (r *Reconciler) SendMessage(ctx context.Context, in SendInput) (model.Message, error) {
	if utf8.RuneCountInString(in.Text) > MaxMessageLen {
		return model.Message{}, ErrMessageTooLong
	}
	viewer, err := r.store.Viewer()
	if err != nil {
		return model.Message{}, fmt.Errorf("send message: %w", err)
	}

	placeholder := model.Message{
		ID:        placeholderID(),
		Text:      in.Text,
		Time:      timefmt.Localize(r.now(), r.loc),
		Forwarded: in.Forwarded,
		ChatID:    in.ChatID,
		User:      &viewer,
	}
	if in.ReplyTo != nil && in.ReplyTo.User != nil {
		placeholder.Reply = &model.Reply{
			ID:   in.ReplyTo.ID,
			Text: in.ReplyTo.Text,
			User: *in.ReplyTo.User,
		}
	}
	r.store.AddMessage(placeholder)

	req := transport.CreateMessageInput{
		Text:      in.Text,
		ChatID:    in.ChatID,
		Forwarded: in.Forwarded,
		SocketID:  r.socketID(),
	}
	if in.ReplyTo != nil {
		req.ReplyToID = in.ReplyTo.ID
	}
	wire, err := r.mutations.CreateMessage(ctx, req)
	if err != nil {
		if errors.Is(err, transport.ErrNotAuthenticated) {
			// Teardown clears the whole store; nothing to withdraw.
			return model.Message{}, r.fail(err)
		}
		r.store.WithdrawMessage(in.ChatID, placeholder.ID)
		return model.Message{}, err
	}

	confirmed := timefmt.LocalizeMessage(wire, r.loc)
	r.store.ConfirmMessage(in.ChatID, placeholder.ID, confirmed)
	return confirmed, nil
}

// ForwardMessage copies an existing message's text into another chat.
func (r *Reconciler) ForwardMessage(ctx context.Context, msg model.Message, toChatID string) (model.Message, error) {
	return r.SendMessage(ctx, SendInput{ChatID: toChatID, Text: msg.Text, Forwarded: true})
}

// EditMessage replaces a message's text in place.
func (r *Reconciler) EditMessage(ctx context.Context, messageID, text string) error {
	if utf8.RuneCountInString(text) > MaxMessageLen {
		return ErrMessageTooLong
	}
	wire, err := r.mutations.UpdateMessage(ctx, messageID, text)
	if err != nil {
		return r.fail(err)
	}
	r.store.UpdateMessage(timefmt.LocalizeMessage(wire, r.loc))
	return nil
}

// RemoveMessage deletes a message. The store repairs the chat's latest
// message if the head was removed.
func (r *Reconciler) RemoveMessage(ctx context.Context, messageID string) error {
	wire, err := r.mutations.DeleteMessage(ctx, messageID)
	if err != nil {
		return r.fail(err)
	}
	r.store.EvictMessage(wire.ChatID, wire.ID)
	return nil
}
