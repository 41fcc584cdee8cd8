package events

import (
	"encoding/json"
	"time"

	"github.com/Shri333/webtext-frontend/internal/model"
	"github.com/Shri333/webtext-frontend/internal/store"
	"github.com/Shri333/webtext-frontend/internal/timefmt"
	"go.uber.org/zap"
)

// Synchronizer owns the default handlers for the nine event kinds. They
// apply the same store primitives as the mutation reconciler, so an action
// this session performed arriving back as a push event merges into the
// record that is already there.
type Synchronizer struct {
	store    *store.Store
	loc      *time.Location
	teardown func()
	logger   *zap.Logger
}

func NewSynchronizer(st *store.Store, loc *time.Location, teardown func(), logger *zap.Logger) *Synchronizer {
	return &Synchronizer{store: st, loc: loc, teardown: teardown, logger: logger}
}

// Bind registers a handler for every kind. Safe to call again within a
// session: already-bound kinds are left alone.
func (s *Synchronizer) Bind(d *Dispatcher) {
	d.Register(UserCreated, s.onUserCreated)
	d.Register(UserUpdated, s.onUserUpdated)
	d.Register(UserDeleted, s.onUserDeleted)
	d.Register(ChatCreated, s.onChatCreated)
	d.Register(ChatUpdated, s.onChatUpdated)
	d.Register(ChatDeleted, s.onChatDeleted)
	d.Register(MessageCreated, s.onMessageCreated)
	d.Register(MessageUpdated, s.onMessageUpdated)
	d.Register(MessageDeleted, s.onMessageDeleted)
}

func (s *Synchronizer) decode(ev PushEvent, out any) bool {
	if err := json.Unmarshal(ev.Data, out); err != nil {
		s.logger.Warn("malformed push payload",
			zap.String("kind", string(ev.Kind)),
			zap.Error(err),
		)
		return false
	}
	return true
}

func (s *Synchronizer) onUserCreated(ev PushEvent) {
	var u model.User
	if s.decode(ev, &u) {
		s.store.AddUser(u)
	}
}

func (s *Synchronizer) onUserUpdated(ev PushEvent) {
	var u model.User
	if s.decode(ev, &u) {
		s.store.UpdateUser(u)
	}
}

// onUserDeleted handles the one event that can end the session: deletion
// of the viewer's own identity is indistinguishable from an invalid
// credential and gets the same full teardown, not a store-only eviction.
func (s *Synchronizer) onUserDeleted(ev PushEvent) {
	var u model.User
	if !s.decode(ev, &u) {
		return
	}
	if viewer, err := s.store.Viewer(); err == nil && viewer.ID == u.ID {
		s.logger.Info("own account deleted, ending session")
		s.teardown()
		return
	}
	s.store.EvictUser(u.ID)
}

func (s *Synchronizer) onChatCreated(ev PushEvent) {
	var wire model.WireFullChat
	if s.decode(ev, &wire) {
		s.store.AddChat(timefmt.LocalizeFullChat(wire, s.loc))
	}
}

func (s *Synchronizer) onChatUpdated(ev PushEvent) {
	var wire model.WireChat
	if s.decode(ev, &wire) {
		s.store.UpdateChat(timefmt.LocalizeChat(wire, s.loc))
	}
}

func (s *Synchronizer) onChatDeleted(ev PushEvent) {
	var wire model.WireChat
	if s.decode(ev, &wire) {
		s.store.EvictChat(wire.ID)
	}
}

func (s *Synchronizer) onMessageCreated(ev PushEvent) {
	var wire model.WireMessage
	if s.decode(ev, &wire) {
		s.store.AddMessage(timefmt.LocalizeMessage(wire, s.loc))
	}
}

func (s *Synchronizer) onMessageUpdated(ev PushEvent) {
	var wire model.WireMessage
	if s.decode(ev, &wire) {
		s.store.UpdateMessage(timefmt.LocalizeMessage(wire, s.loc))
	}
}

func (s *Synchronizer) onMessageDeleted(ev PushEvent) {
	var wire model.WireMessage
	if s.decode(ev, &wire) {
		s.store.EvictMessage(wire.ChatID, wire.ID)
	}
}
