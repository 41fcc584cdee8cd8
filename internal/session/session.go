// Package session ties the core together for the lifetime of one
// authenticated session: bootstrap queries, push channel subscription, and
// the full teardown that logout, credential rejection, and self-deletion
// all share.
package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Shri333/webtext-frontend/internal/auth"
	"github.com/Shri333/webtext-frontend/internal/events"
	"github.com/Shri333/webtext-frontend/internal/model"
	"github.com/Shri333/webtext-frontend/internal/reconcile"
	"github.com/Shri333/webtext-frontend/internal/store"
	"github.com/Shri333/webtext-frontend/internal/timefmt"
	"github.com/Shri333/webtext-frontend/internal/transport"
	"go.uber.org/zap"
)

// Session owns the store's lifecycle. It is constructed once per process;
// Start begins a session and Teardown ends one, always completely — the
// store is never partially reset.
type Session struct {
	queries    transport.Queries
	mutations  transport.Mutations
	push       transport.PushChannel
	store      *store.Store
	keep       *auth.Keep
	dispatcher *events.Dispatcher
	sync       *events.Synchronizer
	reconciler *reconcile.Reconciler
	loc        *time.Location
	logger     *zap.Logger
}

func New(
	queries transport.Queries,
	mutations transport.Mutations,
	push transport.PushChannel,
	st *store.Store,
	keep *auth.Keep,
	loc *time.Location,
	logger *zap.Logger,
) *Session {
	s := &Session{
		queries:   queries,
		mutations: mutations,
		push:      push,
		store:     st,
		keep:      keep,
		loc:       loc,
		logger:    logger,
	}
	s.dispatcher = events.NewDispatcher(logger)
	s.sync = events.NewSynchronizer(st, loc, s.Teardown, logger)
	s.reconciler = reconcile.New(st, mutations, loc, push.ID, s.Teardown, logger)
	return s
}

// Reconciler exposes the mutation reconciler bound to this session.
func (s *Session) Reconciler() *reconcile.Reconciler {
	return s.reconciler
}

// Store exposes the snapshot reads for the presentation layer.
func (s *Session) Store() *store.Store {
	return s.store
}

// Login exchanges credentials for a token, persists it, and starts the
// session.
func (s *Session) Login(ctx context.Context, username, password string) error {
	token, err := s.reconciler.Login(ctx, username, password)
	if err != nil {
		return err
	}
	if err := s.keep.Set(token); err != nil {
		return err
	}
	return s.Start(ctx)
}

// Register creates an account. The new user still has to log in.
func (s *Session) Register(ctx context.Context, username, password, confirm string) (model.User, error) {
	return s.reconciler.Register(ctx, username, password, confirm)
}

// Start bootstraps a session from the persisted credential: the three
// session queries populate the store, then the push channel connects and
// the event handlers bind — exactly once per session, regardless of how
// often Start or Refresh run afterwards.
func (s *Session) Start(ctx context.Context) error {
	token := s.keep.Token()
	if token == "" {
		return transport.ErrNotAuthenticated
	}
	if auth.Expired(token, time.Now()) {
		s.logger.Info("stored credential expired")
		s.Teardown()
		return transport.ErrNotAuthenticated
	}

	if err := s.refresh(ctx); err != nil {
		return err
	}

	if err := s.push.Connect(ctx, token); err != nil {
		return fmt.Errorf("connect push channel: %w", err)
	}
	s.sync.Bind(s.dispatcher)
	go s.pump(s.push.Events())

	viewer, _ := s.store.Viewer()
	s.logger.Info("session started",
		zap.String("userId", viewer.ID),
		zap.String("username", viewer.Username),
	)
	return nil
}

// Refresh re-runs the session queries. The merge policy replaces the root
// lists, so entities deleted while we were away disappear instead of
// lingering.
func (s *Session) Refresh(ctx context.Context) error {
	return s.refresh(ctx)
}

func (s *Session) refresh(ctx context.Context) error {
	me, err := s.queries.CurrentUser(ctx)
	if err != nil {
		return s.failBootstrap(err)
	}
	if me == nil {
		// The server no longer recognizes the credential.
		s.Teardown()
		return transport.ErrNotAuthenticated
	}
	s.store.SetViewer(*me)

	users, err := s.queries.Users(ctx)
	if err != nil {
		return s.failBootstrap(err)
	}
	s.store.ReplaceUsers(users)

	wireChats, err := s.queries.Chats(ctx)
	if err != nil {
		return s.failBootstrap(err)
	}
	chats := make([]model.FullChat, 0, len(wireChats))
	for _, wc := range wireChats {
		chats = append(chats, timefmt.LocalizeFullChat(wc, s.loc))
	}
	s.store.ReplaceChats(chats)
	return nil
}

func (s *Session) failBootstrap(err error) error {
	if errors.Is(err, transport.ErrNotAuthenticated) {
		s.Teardown()
		return err
	}
	return fmt.Errorf("bootstrap session: %w", err)
}

func (s *Session) pump(ch <-chan events.PushEvent) {
	for ev := range ch {
		s.dispatcher.Dispatch(ev)
	}
	s.logger.Debug("push event stream ended")
}

// Logout ends the session on the user's request.
func (s *Session) Logout() {
	s.Teardown()
}

// Teardown ends the session completely: credential, push channel, store,
// and event bindings all go. Invoked by logout, by any session-invalid
// response, and by deletion of the viewer's own account.
func (s *Session) Teardown() {
	if err := s.keep.Clear(); err != nil {
		s.logger.Warn("clear credential", zap.Error(err))
	}
	if err := s.push.Close(); err != nil {
		s.logger.Warn("close push channel", zap.Error(err))
	}
	s.store.Clear()
	s.dispatcher.Reset()
	s.logger.Info("session ended")
}
