package pipeline

import (
	"context"
	"time"

	"github.com/theirongolddev/recur/internal/logger"
	"github.com/theirongolddev/recur/internal/model"
	"github.com/theirongolddev/recur/internal/recurrence"
)

// Detect runs the recurrence engine over txns and logs how long it took.
func Detect(ctx context.Context, txns []model.Transaction, opts recurrence.Options) []model.DetectedSubscription {
	start := time.Now()
	subs := recurrence.Detect(txns, opts)

	log := logger.FromContext(ctx)
	log.Debug().
		Int("transactions", len(txns)).
		Int("skipped", len(opts.Skip)).
		Int("subscriptions", len(subs)).
		Dur("elapsed", time.Since(start)).
		Msg("detection finished")

	return subs
}
