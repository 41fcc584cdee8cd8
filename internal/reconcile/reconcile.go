// Package reconcile translates the result of every user-initiated write
// into store updates. Message creation additionally predicts its result
// before the server answers (optimistic apply) and converges the
// prediction with the confirmed record without ever showing a duplicate.
//
// Error policy, applied by every operation: a response meaning "session no
// longer valid" triggers the injected teardown — clear credential,
// disconnect push channel, clear store — and is never patched around
// locally. Everything else is returned to the caller with no change to
// authoritative store state.
package reconcile

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/Shri333/webtext-frontend/internal/model"
	"github.com/Shri333/webtext-frontend/internal/store"
	"github.com/Shri333/webtext-frontend/internal/timefmt"
	"github.com/Shri333/webtext-frontend/internal/transport"
	"go.uber.org/zap"
)

// ErrPasswordMismatch is a pre-dispatch validation failure: the
// confirmation field does not repeat the password. It never reaches the
// server or the store.
var ErrPasswordMismatch = errors.New("reconcile: passwords do not match")

// Reconciler applies mutation results to the store.
type Reconciler struct {
	store     *store.Store
	mutations transport.Mutations
	loc       *time.Location
	socketID  func() string
	teardown  func()
	logger    *zap.Logger
	now       func() time.Time
}

func New(
	st *store.Store,
	mutations transport.Mutations,
	loc *time.Location,
	socketID func() string,
	teardown func(),
	logger *zap.Logger,
) *Reconciler {
	return &Reconciler{
		store:     st,
		mutations: mutations,
		loc:       loc,
		socketID:  socketID,
		teardown:  teardown,
		logger:    logger,
		now:       time.Now,
	}
}

// fail funnels every mutation error through the session-invalid check.
func (r *Reconciler) fail(err error) error {
	if errors.Is(err, transport.ErrNotAuthenticated) {
		r.teardown()
	}
	return err
}

// Login exchanges credentials for a token. Persisting it is the session's
// job; nothing in the store changes until bootstrap.
func (r *Reconciler) Login(ctx context.Context, username, password string) (string, error) {
	token, err := r.mutations.Login(ctx, username, password)
	if err != nil {
		return "", err
	}
	return token, nil
}

// Register creates an account. The confirmation check runs before
// dispatch; a mismatch never leaves the client.
func (r *Reconciler) Register(ctx context.Context, username, password, confirm string) (model.User, error) {
	if password != confirm {
		return model.User{}, ErrPasswordMismatch
	}
	u, err := r.mutations.Register(ctx, username, password)
	if err != nil {
		return model.User{}, err
	}
	return u, nil
}

// UpdateProfile changes the viewer's username and password.
func (r *Reconciler) UpdateProfile(ctx context.Context, username, password, confirm string) (model.User, error) {
	if password != confirm {
		return model.User{}, ErrPasswordMismatch
	}
	u, err := r.mutations.UpdateProfile(ctx, username, password)
	if err != nil {
		return model.User{}, r.fail(err)
	}
	r.store.UpdateUser(u)
	return u, nil
}

// DeleteAccount removes the viewer's account. A deleted identity has no
// session left, so success tears down unconditionally.
func (r *Reconciler) DeleteAccount(ctx context.Context) error {
	if _, err := r.mutations.DeleteAccount(ctx); err != nil {
		return r.fail(err)
	}
	r.teardown()
	return nil
}

// CreateChat creates a chat with the viewer as admin. Two chats are the
// same chat when their sorted identity lists [admin, members...] are
// element-wise equal; creating an equivalent chat resolves to the existing
// one instead of producing a duplicate, whether the duplicate is detected
// locally or reported by the server as a conflict.
func (r *Reconciler) CreateChat(ctx context.Context, userIDs []string) (model.FullChat, error) {
	viewer, err := r.store.Viewer()
	if err != nil {
		return model.FullChat{}, fmt.Errorf("create chat: %w", err)
	}
	want := identityKey(viewer.ID, userIDs)

	wire, err := r.mutations.CreateChat(ctx, userIDs)
	if errors.Is(err, transport.ErrChatExists) {
		if existing, ok := r.findEquivalent(want, ""); ok {
			return existing, nil
		}
		return model.FullChat{}, fmt.Errorf("create chat: conflict reported but no equivalent chat cached")
	}
	if err != nil {
		return model.FullChat{}, r.fail(err)
	}

	fc := timefmt.LocalizeFullChat(wire, r.loc)
	if existing, ok := r.findEquivalent(chatIdentityKey(fc.Chat), fc.ID); ok {
		return existing, nil
	}
	r.store.AddChat(fc)
	return fc, nil
}

// LeaveChat removes the viewer from a chat and evicts it locally. A
// departure notification goes out only when members remain to read it.
func (r *Reconciler) LeaveChat(ctx context.Context, chatID string) error {
	viewer, err := r.store.Viewer()
	if err != nil {
		return fmt.Errorf("leave chat: %w", err)
	}
	wire, err := r.mutations.LeaveChat(ctx, chatID)
	if err != nil {
		return r.fail(err)
	}
	r.store.EvictChat(chatID)
	if len(wire.Users) > 0 {
		return r.sendNotification(ctx, chatID, fmt.Sprintf("%s left the chat", viewer.Username))
	}
	return nil
}

// RenameChat sets an explicit chat name.
func (r *Reconciler) RenameChat(ctx context.Context, chatID, name string) error {
	viewer, err := r.store.Viewer()
	if err != nil {
		return fmt.Errorf("rename chat: %w", err)
	}
	wire, err := r.mutations.RenameChat(ctx, chatID, name)
	if err != nil {
		return r.fail(err)
	}
	r.store.UpdateChat(timefmt.LocalizeChat(wire, r.loc))
	text := fmt.Sprintf("%s renamed this chat to %s", viewer.Username, wire.Name)
	return r.sendNotification(ctx, chatID, text)
}

// ChangeAdmin hands the chat to a new admin.
func (r *Reconciler) ChangeAdmin(ctx context.Context, chatID, userID string) error {
	viewer, err := r.store.Viewer()
	if err != nil {
		return fmt.Errorf("change admin: %w", err)
	}
	wire, err := r.mutations.ChangeAdmin(ctx, chatID, userID)
	if err != nil {
		return r.fail(err)
	}
	r.store.UpdateChat(timefmt.LocalizeChat(wire, r.loc))
	text := fmt.Sprintf("%s changed the admin to %s", viewer.Username, wire.Admin.Username)
	return r.sendNotification(ctx, chatID, text)
}

// AddUsers adds members to a chat.
func (r *Reconciler) AddUsers(ctx context.Context, chatID string, userIDs []string) error {
	viewer, err := r.store.Viewer()
	if err != nil {
		return fmt.Errorf("add users: %w", err)
	}
	wire, err := r.mutations.AddUsers(ctx, chatID, userIDs)
	if err != nil {
		return r.fail(err)
	}
	r.store.UpdateChat(timefmt.LocalizeChat(wire, r.loc))

	requested := make(map[string]bool, len(userIDs))
	for _, id := range userIDs {
		requested[id] = true
	}
	added := make([]model.User, 0, len(userIDs))
	for _, u := range wire.Users {
		if requested[u.ID] {
			added = append(added, u)
		}
	}
	return r.sendNotification(ctx, chatID, CreateText("added", added, viewer))
}

// RemoveUsers removes members from a chat. Removing everyone leaves
// nothing to keep: that case is a chat deletion, with no notification.
func (r *Reconciler) RemoveUsers(ctx context.Context, chatID string, userIDs []string) error {
	viewer, err := r.store.Viewer()
	if err != nil {
		return fmt.Errorf("remove users: %w", err)
	}
	before, _ := r.store.Chat(chatID)

	wire, err := r.mutations.RemoveUsers(ctx, chatID, userIDs)
	if err != nil {
		return r.fail(err)
	}
	if len(wire.Users) == 0 {
		r.store.EvictChat(chatID)
		return nil
	}
	r.store.UpdateChat(timefmt.LocalizeChat(wire, r.loc))

	remaining := make(map[string]bool, len(wire.Users))
	for _, u := range wire.Users {
		remaining[u.ID] = true
	}
	removed := make([]model.User, 0, len(userIDs))
	for _, u := range before.Users {
		if !remaining[u.ID] {
			removed = append(removed, u)
		}
	}
	return r.sendNotification(ctx, chatID, CreateText("removed", removed, viewer))
}

// DeleteChat deletes a chat outright (admin only, enforced server-side).
func (r *Reconciler) DeleteChat(ctx context.Context, chatID string) error {
	wire, err := r.mutations.DeleteChat(ctx, chatID)
	if err != nil {
		return r.fail(err)
	}
	r.store.EvictChat(wire.ID)
	return nil
}

// sendNotification writes a system-authored message describing a chat
// change. Delivery failure does not undo the change it describes; only a
// dead session escalates.
func (r *Reconciler) sendNotification(ctx context.Context, chatID, text string) error {
	wire, err := r.mutations.CreateMessage(ctx, transport.CreateMessageInput{
		Text:         text,
		ChatID:       chatID,
		Notification: true,
		SocketID:     r.socketID(),
	})
	if err != nil {
		if errors.Is(err, transport.ErrNotAuthenticated) {
			return r.fail(err)
		}
		r.logger.Warn("send notification", zap.String("chatId", chatID), zap.Error(err))
		return nil
	}
	r.store.AddMessage(timefmt.LocalizeMessage(wire, r.loc))
	return nil
}

// findEquivalent scans the chat roster for a chat whose identity key
// matches, skipping excludeID.
func (r *Reconciler) findEquivalent(key string, excludeID string) (model.FullChat, bool) {
	chats, err := r.store.Chats()
	if err != nil {
		return model.FullChat{}, false
	}
	for _, c := range chats {
		if c.ID == excludeID {
			continue
		}
		if chatIdentityKey(c.Chat) == key {
			return c, true
		}
	}
	return model.FullChat{}, false
}

// identityKey is the order-independent membership fingerprint of a chat:
// the sorted list of admin plus member ids.
func identityKey(adminID string, userIDs []string) string {
	ids := make([]string, 0, len(userIDs)+1)
	ids = append(ids, adminID)
	ids = append(ids, userIDs...)
	sort.Strings(ids)
	key := ""
	for _, id := range ids {
		key += id + "\x00"
	}
	return key
}

func chatIdentityKey(c model.Chat) string {
	ids := make([]string, 0, len(c.Users))
	for _, u := range c.Users {
		ids = append(ids, u.ID)
	}
	return identityKey(c.Admin.ID, ids)
}
