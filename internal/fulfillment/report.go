package fulfillment

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/multierr"

	"github.com/gatecrest/boxoffice-backend/pkg/logger"
)

// ItemResult records the outcome of one inventory movement. Failures on
// one line never abort the others; the batch report collects them for
// the operations log.
type ItemResult struct {
	TierID   uuid.UUID
	TierName string
	Op       string
	Quantity int
	Err      error
}

// BatchReport accumulates per-line inventory outcomes for one event.
type BatchReport struct {
	results []ItemResult
}

// Add records one line outcome.
func (r *BatchReport) Add(result ItemResult) {
	r.results = append(r.results, result)
}

// Failed returns the lines whose movement did not apply.
func (r *BatchReport) Failed() []ItemResult {
	var failed []ItemResult
	for _, res := range r.results {
		if res.Err != nil {
			failed = append(failed, res)
		}
	}
	return failed
}

// Err combines every line failure, or nil when all lines applied.
func (r *BatchReport) Err() error {
	var errs []error
	for _, res := range r.results {
		if res.Err != nil {
			errs = append(errs, fmt.Errorf("%s %d on tier %s (%s): %w",
				res.Op, res.Quantity, res.TierName, res.TierID, res.Err))
		}
	}
	return multierr.Combine(errs...)
}

// Log writes each failed line at warn so operators can correct the
// counts by hand.
func (r *BatchReport) Log(ctx context.Context, logg *logger.Logger) {
	if logg == nil {
		return
	}
	for _, res := range r.Failed() {
		lineCtx := logg.WithFields(ctx, map[string]any{
			"tier_id":   res.TierID.String(),
			"tier_name": res.TierName,
			"op":        res.Op,
			"quantity":  res.Quantity,
			"cause":     res.Err.Error(),
		})
		logg.Warn(lineCtx, "inventory movement needs manual correction")
	}
}
