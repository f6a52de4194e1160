package recurrence

import (
	"errors"
	"fmt"
	"math"

	"github.com/theirongolddev/recur/internal/model"
)

// ErrInvalidTransaction is wrapped by every error Validate reports.
var ErrInvalidTransaction = errors.New("invalid transaction")

// Validate is the opt-in strict check. Detect itself tolerates everything
// reported here: NaN amounts never count as expenses and zero dates simply
// produce large gaps.
func Validate(txns []model.Transaction) error {
	var errs []error
	seen := make(map[string]int, len(txns))

	for i, t := range txns {
		if math.IsNaN(t.Amount) || math.IsInf(t.Amount, 0) {
			errs = append(errs, fmt.Errorf("%w: row %d (%s): amount is %v", ErrInvalidTransaction, i, t.ID, t.Amount))
		}
		if t.Date.IsZero() {
			errs = append(errs, fmt.Errorf("%w: row %d (%s): missing date", ErrInvalidTransaction, i, t.ID))
		}
		if t.ID == "" {
			errs = append(errs, fmt.Errorf("%w: row %d: missing id", ErrInvalidTransaction, i))
			continue
		}
		if prev, dup := seen[t.ID]; dup {
			errs = append(errs, fmt.Errorf("%w: row %d: id %q already used by row %d", ErrInvalidTransaction, i, t.ID, prev))
			continue
		}
		seen[t.ID] = i
	}

	return errors.Join(errs...)
}
