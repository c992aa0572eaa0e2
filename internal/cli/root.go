// Package cli defines the submatch command line.
package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/five82/submatch/internal/app"
	"github.com/five82/submatch/internal/config"
	"github.com/five82/submatch/internal/logging"
)

// errNotTerminal is returned when the console is started without a terminal.
var errNotTerminal = errors.New("submatch needs an interactive terminal; use 'submatch list' or 'submatch snapshot' in scripts")

// isTerminal checks if the given file is a terminal.
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

type rootOptions struct {
	configPath string
	prefsPath  string
	debug      bool
	pollMS     int
	tab        string
}

// NewRootCmd creates the root command. Without a subcommand it starts the
// interactive console.
func NewRootCmd(version string) *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:           "submatch",
		Short:         "Terminal console for subscription matching",
		Long:          "submatch polls a systems-management server for subscription matching data and shows subscriptions, unmatched products, pins and matcher messages.",
		Version:       version,
		Example:       rootCmdExample,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runConsole(cmd, opts)
		},
	}

	cmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "config file (default ~/.config/submatch/config.toml)")
	cmd.PersistentFlags().BoolVar(&opts.debug, "debug", false, "enable debug logging")
	cmd.Flags().StringVar(&opts.prefsPath, "prefs", "", "preferences file (default ~/.config/submatch/prefs.toml)")
	cmd.Flags().IntVar(&opts.pollMS, "poll", 0, "poll interval in milliseconds (default from config)")
	cmd.Flags().StringVar(&opts.tab, "tab", "", "start tab: subscriptions, unmatched-products, pins or messages")

	cmd.AddCommand(newListCmd(opts), newSnapshotCmd(opts))
	return cmd
}

const rootCmdExample = `  # Open the console
  submatch

  # Open the console on the Pins tab, polling every 10 seconds
  submatch --tab pins --poll 10000

  # Print the second page of unmatched products
  submatch list unmatched-products --page 2

  # Dump the current matching data as YAML
  submatch snapshot --output yaml`

func runConsole(cmd *cobra.Command, opts *rootOptions) error {
	if !isTerminal(os.Stdout) {
		return errNotTerminal
	}

	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// The console owns the terminal, so logs only go to the file.
	logger, closer, err := newLogger(cfg, opts.debug, nil)
	if err != nil {
		return err
	}
	defer func() { _ = closer.Close() }()

	var poll time.Duration
	if opts.pollMS > 0 {
		poll = config.ClampPollInterval(time.Duration(opts.pollMS) * time.Millisecond)
	}

	return app.Run(cmd.Context(), app.Options{
		Config:    cfg,
		PrefsPath: opts.prefsPath,
		PollEvery: poll,
		StartTab:  opts.tab,
		Logger:    logger,
	})
}

// newLogger builds the command logger. console receives human-readable
// lines when debug is set.
func newLogger(cfg config.Config, debug bool, console io.Writer) (zerolog.Logger, io.Closer, error) {
	level := cfg.LogLevel
	if debug {
		level = "debug"
	}
	logOpts := logging.Options{Level: level, File: cfg.LogFile}
	if debug && console != nil {
		logOpts.Console = console
	}
	logger, closer, err := logging.New(logOpts)
	if err != nil {
		return zerolog.Nop(), closer, fmt.Errorf("init logging: %w", err)
	}
	return logger, closer, nil
}

// loadForCommand loads config and a logger for the non-interactive commands.
func loadForCommand(cmd *cobra.Command, opts *rootOptions) (config.Config, zerolog.Logger, io.Closer, error) {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return config.Config{}, zerolog.Nop(), nil, fmt.Errorf("load config: %w", err)
	}
	logger, closer, err := newLogger(cfg, opts.debug, cmd.ErrOrStderr())
	if err != nil {
		return config.Config{}, zerolog.Nop(), nil, err
	}
	return cfg, logger, closer, nil
}
