// Package store is the normalized entity cache: one canonical record per
// User, Chat, and Message identity, with chats referencing members and
// messages by id rather than holding copies. Query results, mutation
// confirmations, and push events all funnel through the primitives here,
// and every primitive is idempotent (existence check before insert, field
// overwrite on update) because the two network channels give no relative
// ordering guarantee.
package store

import (
	"errors"
	"sync"

	"github.com/Shri333/webtext-frontend/internal/model"
	"go.uber.org/zap"
)

// ErrNotPopulated is returned when a root list is read before the query
// layer has ever populated it. Hitting this is a wiring bug, not a runtime
// condition to recover from.
var ErrNotPopulated = errors.New("store: root list not populated")

// chatRecord is the normalized form of a chat: relations are held as ids
// and resolved against the entity maps when a snapshot is materialized.
type chatRecord struct {
	id         string
	name       string
	adminID    string
	userIDs    []string
	messageIDs []string // most-recent-first
	latestID   string   // "" when the sequence is empty
}

// replyRecord keeps the quoted stub normalized on the author.
type replyRecord struct {
	id     string
	text   string
	userID string
}

type messageRecord struct {
	id        string
	text      string
	time      string
	forwarded bool
	chatID    string
	userID    string // "" = notification message
	reply     *replyRecord
}

// Store owns every entity record for the lifetime of a session. All methods
// are safe for concurrent use; each runs as one short critical section and
// leaves the store fully merged, since a handler on the other channel may
// run immediately after.
type Store struct {
	mu     sync.Mutex
	logger *zap.Logger

	viewer    model.User
	viewerSet bool

	users          map[string]*model.User
	userRoster     []string
	usersPopulated bool

	chats          map[string]*chatRecord
	chatRoster     []string
	chatsPopulated bool

	messages map[string]*messageRecord
}

func New(logger *zap.Logger) *Store {
	return &Store{
		logger:   logger,
		users:    make(map[string]*model.User),
		chats:    make(map[string]*chatRecord),
		messages: make(map[string]*messageRecord),
	}
}

// Clear drops everything. Teardown is always total: a half-reset cache is
// worse than an empty one.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.viewer = model.User{}
	s.viewerSet = false
	s.users = make(map[string]*model.User)
	s.userRoster = nil
	s.usersPopulated = false
	s.chats = make(map[string]*chatRecord)
	s.chatRoster = nil
	s.chatsPopulated = false
	s.messages = make(map[string]*messageRecord)
}

// AddUser appends a user to the roster. Re-delivery of the same creation
// (push echo after a mutation already applied it) is a no-op.
func (s *Store) AddUser(u model.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.usersPopulated {
		s.logger.Warn("add user before roster populated", zap.String("id", u.ID))
		return
	}
	s.writeUser(u)
	for _, id := range s.userRoster {
		if id == u.ID {
			return
		}
	}
	s.userRoster = append(s.userRoster, u.ID)
}

// UpdateUser overwrites the mutable fields of an existing record. The
// rename is visible through every chat membership and message author that
// references the id.
func (s *Store) UpdateUser(u model.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.writeUser(u)
}

// EvictUser removes the record and detaches the id from the roster and
// from every chat's member list. Unreachable leftovers (e.g. messages the
// user authored in chats that also went away) are swept by CollectGarbage.
func (s *Store) EvictUser(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.users, id)
	s.userRoster = removeID(s.userRoster, id)
	for _, rec := range s.chats {
		rec.userIDs = removeID(rec.userIDs, id)
	}
	s.collectGarbage()
}

// AddChat appends a full chat to the roster unless the id is already
// present.
func (s *Store) AddChat(fc model.FullChat) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.chatsPopulated {
		s.logger.Warn("add chat before roster populated", zap.String("id", fc.ID))
		return
	}
	if _, ok := s.chats[fc.ID]; ok {
		s.writeFullChat(fc)
		return
	}
	s.writeFullChat(fc)
	s.chatRoster = append(s.chatRoster, fc.ID)
}

// UpdateChat merges a partial chat (name, admin, membership) into the
// existing full record. The message sequence is untouched: a bare Chat is
// a partial view and must never replace a FullChat's messages.
func (s *Store) UpdateChat(c model.Chat) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.chats[c.ID]
	if !ok {
		s.logger.Debug("update for unknown chat", zap.String("id", c.ID))
		return
	}
	rec.name = c.Name
	s.writeUser(c.Admin)
	rec.adminID = c.Admin.ID
	ids := make([]string, 0, len(c.Users))
	for _, u := range c.Users {
		s.writeUser(u)
		ids = append(ids, u.ID)
	}
	rec.userIDs = ids
}

// EvictChat removes a chat and garbage-collects whatever it alone kept
// reachable.
func (s *Store) EvictChat(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.chats[id]; !ok {
		return
	}
	delete(s.chats, id)
	s.chatRoster = removeID(s.chatRoster, id)
	s.collectGarbage()
}

// AddMessage prepends a message to its chat's sequence and makes it the
// latest. A message whose id is already in the sequence is merged, not
// duplicated — this is what makes a push echo of a locally confirmed write
// harmless. A message for an unknown chat is dropped: the chat may have
// been evicted before the event arrived.
func (s *Store) AddMessage(m model.Message) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.addMessageLocked(m)
}

func (s *Store) addMessageLocked(m model.Message) {
	rec, ok := s.chats[m.ChatID]
	if !ok {
		s.logger.Debug("message for unknown chat", zap.String("chatId", m.ChatID))
		return
	}
	if _, exists := s.messages[m.ID]; exists && containsID(rec.messageIDs, m.ID) {
		s.writeMessage(m)
		return
	}
	s.writeMessage(m)
	rec.messageIDs = append([]string{m.ID}, rec.messageIDs...)
	rec.latestID = m.ID
}

// UpdateMessage merges the mutable text field in place.
func (s *Store) UpdateMessage(m model.Message) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.messages[m.ID]
	if !ok {
		s.logger.Debug("update for unknown message", zap.String("id", m.ID))
		return
	}
	rec.text = m.Text
}

// EvictMessage removes a message from its chat's sequence. When the removed
// message was the latest, the next head (the second-most-recent before the
// delete) takes over, or the latest becomes empty.
func (s *Store) EvictMessage(chatID, messageID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.chats[chatID]
	if !ok || !containsID(rec.messageIDs, messageID) {
		return
	}
	if rec.latestID == messageID {
		rec.latestID = ""
		if len(rec.messageIDs) > 1 {
			rec.latestID = rec.messageIDs[1]
		}
	}
	rec.messageIDs = removeID(rec.messageIDs, messageID)
	delete(s.messages, messageID)
	s.collectGarbage()
}

// ConfirmMessage reconciles an optimistic placeholder with the confirmed
// message. Either arrival order converges to a single record: if the
// confirmed id already entered the sequence (push event won the race) the
// placeholder is simply withdrawn; otherwise the placeholder's slot is
// rewritten to the confirmed message in place, keeping its position at the
// head.
func (s *Store) ConfirmMessage(chatID, placeholderID string, confirmed model.Message) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.chats[chatID]
	if !ok {
		return
	}
	if containsID(rec.messageIDs, confirmed.ID) {
		s.dropMessageLocked(rec, placeholderID)
		s.writeMessage(confirmed)
		return
	}
	if !containsID(rec.messageIDs, placeholderID) {
		// Placeholder already withdrawn; treat as a plain insert.
		s.addMessageLocked(confirmed)
		return
	}
	for i, id := range rec.messageIDs {
		if id == placeholderID {
			rec.messageIDs[i] = confirmed.ID
			break
		}
	}
	if rec.latestID == placeholderID {
		rec.latestID = confirmed.ID
	}
	delete(s.messages, placeholderID)
	s.writeMessage(confirmed)
}

// WithdrawMessage removes an optimistic placeholder after the mutation it
// predicted failed. It is a no-op for ids that already got confirmed.
func (s *Store) WithdrawMessage(chatID, placeholderID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.chats[chatID]
	if !ok {
		return
	}
	s.dropMessageLocked(rec, placeholderID)
}

func (s *Store) dropMessageLocked(rec *chatRecord, id string) {
	if !containsID(rec.messageIDs, id) {
		return
	}
	if rec.latestID == id {
		rec.latestID = ""
		for _, mid := range rec.messageIDs {
			if mid != id {
				rec.latestID = mid
				break
			}
		}
	}
	rec.messageIDs = removeID(rec.messageIDs, id)
	delete(s.messages, id)
}

// CollectGarbage sweeps every record unreachable from the two root lists.
func (s *Store) CollectGarbage() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.collectGarbage()
}

func (s *Store) collectGarbage() {
	liveUsers := make(map[string]bool, len(s.users))
	liveMessages := make(map[string]bool, len(s.messages))
	for _, id := range s.userRoster {
		liveUsers[id] = true
	}
	if s.viewerSet {
		liveUsers[s.viewer.ID] = true
	}
	liveChats := make(map[string]bool, len(s.chatRoster))
	for _, cid := range s.chatRoster {
		rec, ok := s.chats[cid]
		if !ok {
			continue
		}
		liveChats[cid] = true
		liveUsers[rec.adminID] = true
		for _, uid := range rec.userIDs {
			liveUsers[uid] = true
		}
		for _, mid := range rec.messageIDs {
			liveMessages[mid] = true
			if m, ok := s.messages[mid]; ok {
				if m.userID != "" {
					liveUsers[m.userID] = true
				}
				if m.reply != nil {
					liveUsers[m.reply.userID] = true
				}
			}
		}
	}
	for id := range s.chats {
		if !liveChats[id] {
			delete(s.chats, id)
		}
	}
	for id := range s.messages {
		if !liveMessages[id] {
			delete(s.messages, id)
		}
	}
	for id := range s.users {
		if !liveUsers[id] {
			delete(s.users, id)
		}
	}
}

// writeUser merges a user into its canonical record, creating one if
// needed.
func (s *Store) writeUser(u model.User) {
	if u.ID == "" {
		return
	}
	if rec, ok := s.users[u.ID]; ok {
		rec.Username = u.Username
		return
	}
	fresh := u
	s.users[u.ID] = &fresh
}

func (s *Store) writeMessage(m model.Message) {
	rec, ok := s.messages[m.ID]
	if !ok {
		rec = &messageRecord{id: m.ID}
		s.messages[m.ID] = rec
	}
	rec.text = m.Text
	rec.time = m.Time
	rec.forwarded = m.Forwarded
	rec.chatID = m.ChatID
	rec.userID = ""
	if m.User != nil {
		s.writeUser(*m.User)
		rec.userID = m.User.ID
	}
	rec.reply = nil
	if m.Reply != nil {
		s.writeUser(m.Reply.User)
		rec.reply = &replyRecord{id: m.Reply.ID, text: m.Reply.Text, userID: m.Reply.User.ID}
	}
}

// writeFullChat merges a full chat, replacing the member list and message
// sequence with the authoritative one.
func (s *Store) writeFullChat(fc model.FullChat) {
	rec, ok := s.chats[fc.ID]
	if !ok {
		rec = &chatRecord{id: fc.ID}
		s.chats[fc.ID] = rec
	}
	rec.name = fc.Name
	s.writeUser(fc.Admin)
	rec.adminID = fc.Admin.ID
	rec.userIDs = rec.userIDs[:0]
	for _, u := range fc.Users {
		s.writeUser(u)
		rec.userIDs = append(rec.userIDs, u.ID)
	}
	rec.messageIDs = rec.messageIDs[:0]
	for _, m := range fc.Messages {
		s.writeMessage(m)
		rec.messageIDs = append(rec.messageIDs, m.ID)
	}
	rec.latestID = ""
	if len(rec.messageIDs) > 0 {
		rec.latestID = rec.messageIDs[0]
	}
}

func removeID(ids []string, id string) []string {
	out := ids[:0]
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}

func containsID(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
