package tui

import (
	"context"
	"math"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/theirongolddev/recur/internal/model"
	"github.com/theirongolddev/recur/internal/pipeline"
	"github.com/theirongolddev/recur/internal/store"
)

// DataLoadedMsg is sent when the load and detection pass finishes.
type DataLoadedMsg struct {
	Subscriptions []model.DetectedSubscription
	Amounts       map[string]float64
	FileErrors    int
	LoadTime      time.Duration
	Err           error
}

// ProgressMsg reports file parsing progress.
type ProgressMsg struct {
	Current int
	Total   int
}

type reviewedMsg struct {
	key string
	err error
}

// loadDataCmd starts the load pipeline in a background goroutine. It streams
// ProgressMsg updates and a final DataLoadedMsg through sub.
func loadDataCmd(opts Options, sub chan tea.Msg) tea.Cmd {
	return func() tea.Msg {
		go func() {
			sub <- loadAndDetect(context.Background(), opts, func(current, total int) {
				// Non-blocking so workers are never stalled; the next update catches up.
				select {
				case sub <- ProgressMsg{Current: current, Total: total}:
				default:
				}
			})
		}()

		// Block until the first message (either ProgressMsg or DataLoadedMsg)
		return <-sub
	}
}

// waitForLoadMsg blocks until the next message arrives from the loader goroutine.
func waitForLoadMsg(sub chan tea.Msg) tea.Cmd {
	return func() tea.Msg {
		return <-sub
	}
}

func loadAndDetect(ctx context.Context, opts Options, progressFn pipeline.ProgressFunc) DataLoadedMsg {
	start := time.Now()

	var (
		txns       []model.Transaction
		fileErrors int
		loaded     bool
	)
	detect := opts.Detect

	cache, err := store.Open(pipeline.CachePath())
	if err == nil {
		if !opts.IncludeReviewed {
			if skip, skipErr := cache.ReviewedKeys(); skipErr == nil {
				detect.Skip = skip
			}
		}
		cr, loadErr := pipeline.LoadWithCache(ctx, opts.InputDir, cache, progressFn)
		if loadErr == nil {
			txns, fileErrors, loaded = cr.Transactions, cr.FileErrors, true
		}
		_ = cache.Close()
	}

	if !loaded {
		result, loadErr := pipeline.Load(ctx, opts.InputDir, progressFn)
		if loadErr != nil {
			return DataLoadedMsg{LoadTime: time.Since(start), Err: loadErr}
		}
		txns, fileErrors = result.Transactions, result.FileErrors
	}

	if opts.Days > 0 {
		txns = pipeline.FilterByTime(txns, time.Now().AddDate(0, 0, -opts.Days), time.Time{})
	}

	amounts := make(map[string]float64, len(txns))
	for _, t := range txns {
		amounts[t.ID] = math.Abs(t.Amount)
	}

	return DataLoadedMsg{
		Subscriptions: pipeline.Detect(ctx, txns, detect),
		Amounts:       amounts,
		FileErrors:    fileErrors,
		LoadTime:      time.Since(start),
	}
}

// reviewCmd records key in the reviewed set.
func reviewCmd(key string) tea.Cmd {
	return func() tea.Msg {
		cache, err := store.Open(pipeline.CachePath())
		if err != nil {
			return reviewedMsg{key: key, err: err}
		}
		defer cache.Close()
		return reviewedMsg{key: key, err: cache.MarkReviewed(key, "marked in tui")}
	}
}
