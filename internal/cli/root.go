// Package cli implements the command-line interface.
package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/hightemp/flagpic/internal/config"
	"github.com/hightemp/flagpic/internal/logger"
)

var (
	// Version information (set at build time)
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
)

// ExitCode constants
const (
	ExitSuccess        = 0
	ExitError          = 1
	ExitInvalidInput   = 2
	ExitConfig         = 3
	ExitNotFound       = 4
	ExitGenerateFailed = 5
)

// exitError carries a process exit code out of a command.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }
func (e *exitError) Unwrap() error { return e.err }

func withExitCode(code int, err error) error {
	return &exitError{code: code, err: err}
}

// options holds the global flags and the configuration they resolve to.
type options struct {
	configPath string
	cacheDir   string
	store      string
	flagsDir   string
	logLevel   string
	logFormat  string
	noCache    bool
	jsonOutput bool

	cfg *config.Config
}

// NewRootCmd builds the command tree.
func NewRootCmd() *cobra.Command {
	opts := &options{}
	var showFlag bool

	cmd := &cobra.Command{
		Use:   "flagpic [code]",
		Short: "Country flags and flag profile pictures by country code",
		Long: `flagpic looks up a two-letter country code and prints the country name
and its most widely spoken language.

Lookup:
  flagpic DE
  flagpic de --flag          # also show the matching flag

Flags come from a local directory of <name>.png files (default assets/flags)
or from the flag-icon-css repository (--store remote).`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.load(cmd)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInfo(cmd, opts, args, showFlag)
		},
	}

	pf := cmd.PersistentFlags()
	pf.StringVar(&opts.configPath, "config", "", "config file (default ./"+config.ConfigFileName+" if present)")
	pf.StringVar(&opts.cacheDir, "cache-dir", config.DefaultCacheDir(), "cache directory path")
	pf.StringVar(&opts.store, "store", config.DefaultStore, "flag store: local or remote")
	pf.StringVar(&opts.flagsDir, "flags-dir", config.DefaultFlagsDir, "directory of <name>.png flags for the local store")
	pf.StringVar(&opts.logLevel, "log-level", "warn", "log level: debug, info, warn, error")
	pf.StringVar(&opts.logFormat, "log-format", "text", "log format: text or json")
	pf.BoolVar(&opts.noCache, "no-cache", false, "do not cache downloaded flags")
	pf.BoolVar(&opts.jsonOutput, "json", false, "output in JSON format")

	cmd.Flags().BoolVar(&showFlag, "flag", false, "also resolve the matching flag")

	cmd.AddCommand(newMatchCmd(opts))
	cmd.AddCommand(newFetchCmd(opts))
	cmd.AddCommand(newGenerateCmd(opts))
	cmd.AddCommand(newVersionCmd())

	return cmd
}

// Execute runs the root command and exits with its status.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := NewRootCmd().ExecuteContext(ctx)
	stop()
	if err == nil {
		return
	}

	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	var ee *exitError
	if errors.As(err, &ee) {
		os.Exit(ee.code)
	}
	os.Exit(ExitError)
}

// load reads the config file, applies flags set on the command line and sets up
// logging.
func (o *options) load(cmd *cobra.Command) error {
	cwd, err := os.Getwd()
	if err != nil {
		return withExitCode(ExitConfig, err)
	}
	cfg, err := config.Load(cwd, o.configPath)
	if err != nil {
		return withExitCode(ExitConfig, err)
	}

	f := cmd.Flags()
	if f.Changed("cache-dir") {
		cfg.CacheDir = o.cacheDir
	}
	if f.Changed("store") {
		cfg.Store = o.store
	}
	if f.Changed("flags-dir") {
		cfg.FlagsDir = o.flagsDir
	}
	if f.Changed("log-level") {
		cfg.Log.Level = o.logLevel
	}
	if f.Changed("log-format") {
		cfg.Log.Format = o.logFormat
	}
	if f.Changed("no-cache") {
		cfg.NoCache = o.noCache
	}
	if err := cfg.Validate(); err != nil {
		return withExitCode(ExitConfig, err)
	}

	if err := logger.InitWriter(cmd.ErrOrStderr(), cfg.Log.Level, cfg.Log.Format); err != nil {
		return withExitCode(ExitConfig, err)
	}
	logger.Debug("configuration loaded", "store", cfg.Store, "flags_dir", cfg.FlagsDir, "cache_dir", cfg.CacheDir)

	o.cfg = cfg
	return nil
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "flagpic %s (commit %s, built %s)\n", Version, Commit, BuildTime)
		},
	}
}
