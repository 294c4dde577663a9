package main

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"graphterm/internal/auth"
	"graphterm/internal/config"
	"graphterm/internal/gateway"
	"graphterm/internal/logging"
	"graphterm/internal/presenter"
	"graphterm/internal/session"
	"graphterm/internal/storage"
	"graphterm/internal/tui"
)

var (
	// Global flags
	verbose    bool
	configPath string
)

// app holds the wired components shared by every subcommand
type app struct {
	cfg      *config.Config
	logger   *zap.Logger
	store    *storage.FileStore
	gateway  *gateway.Client
	sessions *session.Store
	flow     *auth.Flow
}

// newApp loads the config and wires storage, gateway, session and auth
func newApp() (*app, error) {
	var (
		cfg *config.Config
		err error
	)
	if configPath != "" {
		cfg, err = config.Load(configPath)
	} else {
		cfg, err = config.LoadFromDefaultPath()
	}
	if err != nil {
		return nil, err
	}

	logger, err := logging.New(cfg.Log, verbose)
	if err != nil {
		return nil, err
	}

	store := storage.NewFileStore(cfg.Session.Path, storage.WithLogger(logger.Named("storage")))
	gw := gateway.New(cfg.API, gateway.WithLogger(logger.Named("gateway")))
	sessions := session.NewStore(store, gw,
		session.WithWindow(cfg.Session.ValidationWindow),
		session.WithLogger(logger.Named("session")),
	)
	gw.SetInvalidator(sessions)

	return &app{
		cfg:      cfg,
		logger:   logger,
		store:    store,
		gateway:  gw,
		sessions: sessions,
		flow:     auth.NewFlow(gw, sessions, logger.Named("auth")),
	}, nil
}

func (a *app) presenter() *presenter.Service {
	return presenter.NewService(a.gateway, a.sessions, a.cfg.Palette(), a.cfg.Chart,
		presenter.WithLogger(a.logger.Named("presenter")))
}

func (a *app) close() {
	_ = a.logger.Sync()
}

// rootCmd starts the full-screen terminal
var rootCmd = &cobra.Command{
	Use:   config.AppName,
	Short: "Terminal dashboard for the learning platform GraphQL API",
	Long: `graphterm logs into the learning platform, keeps the session token in
~/.config/graphterm/session.yaml and opens a terminal-style dashboard where
graphctl renders your profile, XP and audits.

Run without arguments to start the interactive terminal.`,
	SilenceUsage: true,
	RunE:         runTUI,
}

func runTUI(_ *cobra.Command, _ []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	watcher, err := a.store.Watch()
	if err != nil {
		a.logger.Warn("session watcher unavailable", zap.Error(err))
	} else {
		defer func() { _ = watcher.Stop() }()
	}

	m := tui.NewModel(tui.Options{
		Session:   a.sessions,
		Auth:      a.flow,
		Presenter: a.presenter(),
		Watcher:   watcher,
		Styles:    tui.NewStyles(a.cfg.Palette()),
		Hostname:  a.cfg.Hostname,
		Logger:    a.logger.Named("tui"),
	})

	p := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running program: %w", err)
	}
	return nil
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file (default: search standard locations)")

	loginCmd.Flags().StringVarP(&loginUser, "username", "u", "", "Username (prompted when empty)")

	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(execCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
