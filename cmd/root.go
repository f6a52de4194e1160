// Package cmd implements the recur CLI commands.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/theirongolddev/recur/internal/cli"
	"github.com/theirongolddev/recur/internal/config"
	"github.com/theirongolddev/recur/internal/logger"
	"github.com/theirongolddev/recur/internal/model"
	"github.com/theirongolddev/recur/internal/pipeline"
	"github.com/theirongolddev/recur/internal/recurrence"
	"github.com/theirongolddev/recur/internal/store"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var (
	flagInputDir string
	flagDays     int
	flagNoCache  bool
	flagQuiet    bool
	flagStrict   bool
	flagLogLevel string
)

// appConfig is loaded once per invocation before any command runs.
var appConfig = config.DefaultConfig()

var rootCmd = &cobra.Command{
	Use:               "recur",
	Short:             "Find recurring charges in bank statement exports",
	Long:              "Scan a folder of bank CSV exports and report the subscriptions hiding in them.",
	PersistentPreRunE: initCommand,
	RunE:              runDetect,
	SilenceUsage:      true,
}

// Execute is the main entry point called from main.go.
func Execute() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		cancel()
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&flagInputDir, "input", "i", "", "Directory of bank CSV exports (default from config or RECUR_INPUT_DIR)")
	rootCmd.PersistentFlags().IntVarP(&flagDays, "days", "n", 0, "History window in days (0 = all)")
	rootCmd.PersistentFlags().BoolVar(&flagNoCache, "no-cache", false, "Skip SQLite cache, reparse everything")
	rootCmd.PersistentFlags().BoolVarP(&flagQuiet, "quiet", "q", false, "Suppress progress output")
	rootCmd.PersistentFlags().BoolVar(&flagStrict, "strict", false, "Fail when loaded transactions are malformed")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "warn", "Log level: debug, info, warn, error, off")

	addDetectFlags(rootCmd)
}

func initCommand(cmd *cobra.Command, _ []string) error {
	level, err := logger.ParseLevel(flagLogLevel)
	if err != nil {
		return err
	}
	log := logger.New(level)

	cfg, err := config.Load()
	if err != nil {
		log.Warn().Err(err).Str("path", config.Path()).Msg("config unreadable, using defaults")
		cfg = config.DefaultConfig()
	}
	appConfig = cfg

	cmd.SetContext(logger.WithContext(cmd.Context(), log))
	return nil
}

// inputDir resolves the statement directory from the flag, env and config.
func inputDir() (string, error) {
	if flagInputDir != "" {
		return config.ExpandHome(flagInputDir), nil
	}
	if dir := config.GetInputDir(appConfig); dir != "" {
		return dir, nil
	}
	return "", errors.New("no statement directory: pass --input or run `recur setup`")
}

// loadedData is what every detection command starts from.
type loadedData struct {
	Transactions []model.Transaction
	Reviewed     map[string]struct{}
	FileErrors   int
	ParseErrors  int
}

// loadData is the shared data loading path used by all commands.
// Uses SQLite cache when available for fast subsequent runs.
func loadData(ctx context.Context) (*loadedData, error) {
	log := logger.FromContext(ctx)

	dir, err := inputDir()
	if err != nil {
		return nil, err
	}

	if !flagQuiet {
		fmt.Fprintf(os.Stderr, "  Scanning %s...\n", dir)
	}

	progressFn := func(current, total int) {
		if flagQuiet {
			return
		}
		if current%25 == 0 || current == total {
			fmt.Fprintf(os.Stderr, "\r  Parsing [%d/%d]", current, total)
		}
	}

	data := &loadedData{}

	cache, err := store.Open(pipeline.CachePath())
	if err != nil {
		log.Warn().Err(err).Msg("cache unavailable")
		cache = nil
	} else {
		defer cache.Close()
		if keys, err := cache.ReviewedKeys(); err == nil {
			data.Reviewed = keys
		}
	}

	var result *pipeline.LoadResult
	if cache != nil && !flagNoCache {
		cr, err := pipeline.LoadWithCache(ctx, dir, cache, progressFn)
		if err != nil {
			log.Warn().Err(err).Msg("cache error, falling back to full parse")
		} else {
			result = &cr.LoadResult
			if !flagQuiet && cr.TotalFiles > 0 {
				fmt.Fprintf(os.Stderr, "\r  %s cached + %d reparsed (%d accounts)    \n",
					cli.FormatNumber(int64(cr.CacheHits)), cr.Reparsed, cr.AccountCount)
			}
		}
	}

	if result == nil {
		result, err = pipeline.Load(ctx, dir, progressFn)
		if err != nil {
			return nil, err
		}
		if !flagQuiet && result.TotalFiles > 0 {
			fmt.Fprintf(os.Stderr, "\r  Parsed %s transactions across %d accounts    \n",
				cli.FormatNumber(int64(len(result.Transactions))), result.AccountCount)
		}
	}

	data.Transactions = result.Transactions
	data.FileErrors = result.FileErrors
	data.ParseErrors = result.ParseErrors

	if flagDays > 0 {
		data.Transactions = pipeline.FilterByTime(data.Transactions, time.Now().AddDate(0, 0, -flagDays), time.Time{})
	}

	if err := recurrence.Validate(data.Transactions); err != nil {
		if flagStrict {
			return nil, fmt.Errorf("validating transactions: %w", err)
		}
		log.Warn().Err(err).Msg("malformed transactions")
	}

	log.Debug().
		Int("transactions", len(data.Transactions)).
		Int("file_errors", data.FileErrors).
		Int("parse_errors", data.ParseErrors).
		Msg("data loaded")
	return data, nil
}

// detectOptions builds the detection options from config. reviewed keys are
// skipped unless includeReviewed is set.
func detectOptions(data *loadedData, includeReviewed bool) recurrence.Options {
	opts := recurrence.DefaultOptions()
	opts.Workers = appConfig.Detection.Workers
	opts.MaxGroups = appConfig.Detection.MaxGroups
	if !includeReviewed && appConfig.Detection.SkipReviewed && data != nil {
		opts.Skip = data.Reviewed
	}
	return opts
}

func printLoadWarnings(data *loadedData) {
	if data.FileErrors > 0 {
		fmt.Fprintf(os.Stderr, "\n  %d files could not be parsed\n", data.FileErrors)
	}
	if data.ParseErrors > 0 {
		fmt.Fprintf(os.Stderr, "  %d rows skipped as unreadable\n", data.ParseErrors)
	}
}

func currency() string {
	return appConfig.General.Currency
}

// commandLogger returns the logger initCommand attached to cmd.
func commandLogger(cmd *cobra.Command) zerolog.Logger {
	return logger.FromContext(cmd.Context())
}
