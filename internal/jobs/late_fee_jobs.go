package jobs

import (
	"context"
	"time"

	"rentdesk-backend/internal/logger"
)

// refreshTimeout bounds one late-fee sweep.
const refreshTimeout = 10 * time.Minute

// RefreshLateFees stores the current late fee on every overdue confirmed booking so that
// listings and reports show the accrued amount without recomputing it.
func (jr *JobRunner) RefreshLateFees() {
	jr.runWithRecovery("RefreshLateFees", func() {
		ctx, cancel := context.WithTimeout(context.Background(), refreshTimeout)
		defer cancel()

		asOf := time.Now().UTC()
		updated, err := jr.bookings.AccrueLateFees(ctx, asOf)
		if err != nil {
			logger.Error("Failed to refresh late fees", "error", err)
			return
		}
		logger.Info("Refreshed accrued late fees", "updated", updated, "as_of", asOf)
	})
}
