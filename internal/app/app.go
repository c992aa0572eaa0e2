package app

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/five82/submatch/internal/config"
	"github.com/five82/submatch/internal/matching"
	"github.com/five82/submatch/internal/prefs"
	"github.com/five82/submatch/internal/state"
	"github.com/five82/submatch/internal/ui"
)

// Options configure the submatch console.
type Options struct {
	Config    config.Config
	PrefsPath string // empty uses default ~/.config/submatch/prefs.toml
	PollEvery time.Duration
	StartTab  string // empty restores the last tab
	Logger    zerolog.Logger
}

// NewClient builds the matching client described by cfg.
func NewClient(cfg config.Config, logger zerolog.Logger) (*matching.Client, error) {
	client, err := matching.NewClient(matching.Options{
		ServerURL: cfg.ServerURL,
		Username:  cfg.Username,
		Password:  cfg.Password,
		Timeout:   cfg.RequestTimeout,
		Logger:    logger,
	})
	if err != nil {
		return nil, fmt.Errorf("init matching client: %w", err)
	}
	return client, nil
}

// Run boots the console and blocks until the user quits or ctx ends. The
// poller and the UI run in one errgroup; whichever stops first stops the
// other.
func Run(ctx context.Context, opts Options) error {
	logger := opts.Logger

	client, err := NewClient(opts.Config, logger)
	if err != nil {
		return err
	}

	userPrefs := prefs.Load(opts.PrefsPath)
	startTab := opts.StartTab
	if startTab == "" {
		startTab = userPrefs.LastTab
	}

	interval := opts.PollEvery
	if interval <= 0 {
		interval = opts.Config.PollInterval
	}

	store := &state.Store{}
	poller := NewPoller(client, store, interval, logger)

	g, gctx := errgroup.WithContext(ctx)
	uiCtx, stopUI := context.WithCancel(gctx)
	pollCtx, stopPolling := context.WithCancel(gctx)

	g.Go(func() error {
		defer stopUI()
		return poller.Run(pollCtx)
	})
	g.Go(func() error {
		defer stopPolling()
		err := ui.Run(uiCtx, ui.Options{
			Store:     store,
			Actions:   client,
			Poller:    poller,
			Prefs:     userPrefs,
			PrefsPath: opts.PrefsPath,
			StartTab:  startTab,
			ServerURL: client.BaseURL(),
			Logger:    logger,
		})
		if err != nil {
			return fmt.Errorf("run ui: %w", err)
		}
		return nil
	})

	logger.Info().
		Str("server", client.BaseURL()).
		Dur("interval", interval).
		Msg("submatch started")

	err = g.Wait()
	logger.Info().Msg("submatch stopped")
	return err
}

// Snapshot performs one fetch and returns the data, for non-interactive use.
func Snapshot(ctx context.Context, cfg config.Config, logger zerolog.Logger) (*matching.Data, error) {
	client, err := NewClient(cfg, logger)
	if err != nil {
		return nil, err
	}
	data, err := client.FetchData(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch matching data: %w", err)
	}
	return data, nil
}
