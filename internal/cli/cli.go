package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/samircd4/bcp-events/internal/browser"
	"github.com/samircd4/bcp-events/internal/config"
	"github.com/samircd4/bcp-events/internal/logger"
)

var (
	flagConfig     string
	flagWindowDays int
	flagDryRun     bool
	flagLoginOnly  bool
	flagSkipPost   bool
	flagVerbose    bool
)

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bcp-events",
		Short: "Sync BCP tabletop events to an event-listing site",
		Long: `Fetches upcoming tabletop gaming events from the Best Coast Pairings API,
deduplicates them against the local event store, and posts each new event
to the configured listing site's add-event form.`,
		SilenceUsage: true,
		RunE:         runSync,
	}

	cmd.Flags().StringVar(&flagConfig, "config", "", "Path to YAML config file (defaults apply if omitted)")
	cmd.Flags().IntVar(&flagWindowDays, "window-days", 0, "Override the fetch window in days")
	cmd.Flags().BoolVar(&flagDryRun, "dry-run", false, "Simulate posting and leave the event store untouched")
	cmd.Flags().BoolVar(&flagLoginOnly, "login", false, "Run only the login ceremony and exit")
	cmd.Flags().BoolVar(&flagSkipPost, "skip-post", false, "Fetch and reconcile without posting")
	cmd.Flags().BoolVar(&flagVerbose, "verbose", false, "Enable debug logging")

	return cmd
}

func runSync(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if flagWindowDays > 0 {
		cfg.WindowDays = flagWindowDays
	}

	closeLog, err := setupLogging(cfg)
	if err != nil {
		return err
	}
	defer closeLog()

	p, err := newPipeline(cfg, flagDryRun)
	if err != nil {
		return err
	}
	defer p.close()

	if flagLoginOnly {
		return p.loginOnly()
	}
	return p.run(flagSkipPost)
}

// setupLogging routes the default logger to stdout and the append-only
// process log file. Returns a closer for the file.
func setupLogging(cfg config.Config) (func(), error) {
	level := logger.LevelInfo
	if flagVerbose {
		level = logger.LevelDebug
	}

	out := io.Writer(os.Stdout)
	closer := func() {}

	if cfg.Files.LogPath != "" {
		f, err := os.OpenFile(cfg.Files.LogPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			return nil, fmt.Errorf("opening log file: %w", err)
		}
		out = io.MultiWriter(os.Stdout, f)
		closer = func() { f.Close() }
	}

	logger.SetDefault(logger.New(level, out))
	return closer, nil
}

// newLauncher picks the automation backend: a real browser for normal
// runs, the recording dry-run engine otherwise.
func newLauncher(cfg config.Config, dryRun bool) (browser.Launcher, error) {
	if dryRun {
		return browser.NewDryRun(), nil
	}
	return browser.NewPlaywright(cfg.Headless)
}
