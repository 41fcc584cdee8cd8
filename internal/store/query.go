package store

import "github.com/Shri333/webtext-frontend/internal/model"

// Query merge policy: a freshly fetched root list replaces the previous
// one outright. Appending a refresh onto a stale list would resurrect
// deleted entities; entity fields still merge into existing records so
// identity stays stable across refreshes.

// SetViewer records the current session's user.
func (s *Store) SetViewer(u model.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.viewer = u
	s.viewerSet = true
	s.writeUser(u)
}

// Viewer returns the current session's user.
func (s *Store) Viewer() (model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.viewerSet {
		return model.User{}, ErrNotPopulated
	}
	return s.viewer, nil
}

// ReplaceUsers installs a full user roster.
func (s *Store) ReplaceUsers(users []model.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	roster := make([]string, 0, len(users))
	for _, u := range users {
		s.writeUser(u)
		roster = append(roster, u.ID)
	}
	s.userRoster = roster
	s.usersPopulated = true
	s.collectGarbage()
}

// ReplaceChats installs a full chat roster with message sequences.
func (s *Store) ReplaceChats(chats []model.FullChat) {
	s.mu.Lock()
	defer s.mu.Unlock()
	roster := make([]string, 0, len(chats))
	for _, fc := range chats {
		s.writeFullChat(fc)
		roster = append(roster, fc.ID)
	}
	s.chatRoster = roster
	s.chatsPopulated = true
	s.collectGarbage()
}

// Users returns the roster in server order. The slice and its elements are
// copies: the presentation layer only ever reads snapshots.
func (s *Store) Users() ([]model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.usersPopulated {
		return nil, ErrNotPopulated
	}
	out := make([]model.User, 0, len(s.userRoster))
	for _, id := range s.userRoster {
		if u, ok := s.users[id]; ok {
			out = append(out, *u)
		}
	}
	return out, nil
}

// Chats materializes every chat in roster order.
func (s *Store) Chats() ([]model.FullChat, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.chatsPopulated {
		return nil, ErrNotPopulated
	}
	out := make([]model.FullChat, 0, len(s.chatRoster))
	for _, id := range s.chatRoster {
		if rec, ok := s.chats[id]; ok {
			out = append(out, s.materializeChat(rec))
		}
	}
	return out, nil
}

// Chat materializes a single chat by id.
func (s *Store) Chat(id string) (model.FullChat, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.chats[id]
	if !ok {
		return model.FullChat{}, false
	}
	return s.materializeChat(rec), true
}

// User returns a single user record by id.
func (s *Store) User(id string) (model.User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return model.User{}, false
	}
	return *u, true
}

// materializeChat resolves a normalized record into the denormalized view
// shape. A message author whose record was evicted resolves to nil, which
// the view renders the same way as a notification entry.
func (s *Store) materializeChat(rec *chatRecord) model.FullChat {
	fc := model.FullChat{
		Chat: model.Chat{
			ID:   rec.id,
			Name: rec.name,
		},
	}
	if admin, ok := s.users[rec.adminID]; ok {
		fc.Admin = *admin
	} else {
		fc.Admin = model.User{ID: rec.adminID}
	}
	fc.Users = make([]model.User, 0, len(rec.userIDs))
	for _, uid := range rec.userIDs {
		if u, ok := s.users[uid]; ok {
			fc.Users = append(fc.Users, *u)
		}
	}
	fc.Messages = make([]model.Message, 0, len(rec.messageIDs))
	for _, mid := range rec.messageIDs {
		if m, ok := s.messages[mid]; ok {
			fc.Messages = append(fc.Messages, s.materializeMessage(m))
		}
	}
	if rec.latestID != "" {
		if m, ok := s.messages[rec.latestID]; ok {
			latest := s.materializeMessage(m)
			fc.LatestMessage = &latest
		}
	}
	return fc
}

func (s *Store) materializeMessage(rec *messageRecord) model.Message {
	m := model.Message{
		ID:        rec.id,
		Text:      rec.text,
		Time:      rec.time,
		Forwarded: rec.forwarded,
		ChatID:    rec.chatID,
	}
	if rec.userID != "" {
		if u, ok := s.users[rec.userID]; ok {
			author := *u
			m.User = &author
		}
	}
	if rec.reply != nil {
		r := model.Reply{ID: rec.reply.id, Text: rec.reply.text}
		if u, ok := s.users[rec.reply.userID]; ok {
			r.User = *u
		} else {
			r.User = model.User{ID: rec.reply.userID}
		}
		m.Reply = &r
	}
	return m
}
