package main

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/Shri333/webtext-frontend/internal/auth"
	"github.com/Shri333/webtext-frontend/internal/config"
	"github.com/Shri333/webtext-frontend/internal/observ"
	"github.com/Shri333/webtext-frontend/internal/session"
	"github.com/Shri333/webtext-frontend/internal/store"
	"github.com/Shri333/webtext-frontend/internal/transport"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// app bundles everything a command needs. Built once per invocation.
type app struct {
	cfg     *config.Config
	logger  *zap.Logger
	session *session.Session
	keep    *auth.Keep
}

func buildApp() (*app, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	logger, err := observ.NewLogger(cfg.Env, cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("create logger: %w", err)
	}

	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	keep := auth.NewKeep(cfg.TokenPath)
	if err := keep.Load(); err != nil {
		return nil, err
	}

	client := transport.NewClient(cfg.ServerURL, keep, logger)
	socket := transport.NewSocket(cfg.SocketURL, logger)
	st := store.New(logger)
	sess := session.New(client, client, socket, st, keep, loc, logger)

	return &app{cfg: cfg, logger: logger, session: sess, keep: keep}, nil
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "webtext",
		Short: "WebText chat client",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := buildApp()
			if err != nil {
				return err
			}
			defer a.logger.Sync()

			if err := a.session.Start(cmd.Context()); err != nil {
				if errors.Is(err, transport.ErrNotAuthenticated) {
					return fmt.Errorf("not logged in: run `webtext login` first")
				}
				return err
			}

			chats, err := a.session.Store().Chats()
			if err == nil {
				viewer, _ := a.session.Store().Viewer()
				for _, c := range chats {
					fmt.Printf("%s (%d messages)\n", c.DisplayName(viewer), len(c.Messages))
				}
			}

			// Stay connected until interrupted. Interruption is not a
			// logout; the credential survives for the next run.
			stop := make(chan os.Signal, 1)
			signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
			<-stop
			return nil
		},
	}
	root.AddCommand(newLoginCmd(), newRegisterCmd(), newLogoutCmd())
	return root
}

func newLoginCmd() *cobra.Command {
	var username, password string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and persist the session credential",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := buildApp()
			if err != nil {
				return err
			}
			defer a.logger.Sync()
			if err := a.session.Login(cmd.Context(), username, password); err != nil {
				return err
			}
			viewer, _ := a.session.Store().Viewer()
			fmt.Printf("logged in as %s\n", viewer.Username)
			return nil
		},
	}
	cmd.Flags().StringVarP(&username, "username", "u", "", "username")
	cmd.Flags().StringVarP(&password, "password", "p", "", "password")
	cmd.MarkFlagRequired("username")
	cmd.MarkFlagRequired("password")
	return cmd
}

func newRegisterCmd() *cobra.Command {
	var username, password, confirm string
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create a new account",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := buildApp()
			if err != nil {
				return err
			}
			defer a.logger.Sync()
			u, err := a.session.Register(cmd.Context(), username, password, confirm)
			if err != nil {
				return err
			}
			fmt.Printf("registered %s\n", u.Username)
			return nil
		},
	}
	cmd.Flags().StringVarP(&username, "username", "u", "", "username")
	cmd.Flags().StringVarP(&password, "password", "p", "", "password")
	cmd.Flags().StringVarP(&confirm, "confirm", "c", "", "password confirmation")
	cmd.MarkFlagRequired("username")
	cmd.MarkFlagRequired("password")
	cmd.MarkFlagRequired("confirm")
	return cmd
}

func newLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "End the session and forget the credential",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := buildApp()
			if err != nil {
				return err
			}
			defer a.logger.Sync()
			a.session.Logout()
			fmt.Println("logged out")
			return nil
		},
	}
}
