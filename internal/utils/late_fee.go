package utils

import (
	"time"

	"github.com/shopspring/decimal"

	"rentdesk-backend/internal/domain"
)

// DaysLate counts the whole days elapsed between the scheduled end and evaluation time.
// A return on or before the scheduled end is never late.
func DaysLate(scheduledEndAt, evaluatedAt time.Time) int {
	if !evaluatedAt.After(scheduledEndAt) {
		return 0
	}
	return int(evaluatedAt.Sub(scheduledEndAt) / dayDuration)
}

// CalculateLateFee returns daysLate * lateFeePerDay rounded to places minor units. The result
// depends on evaluatedAt, so callers that need a stable fee must persist it instead of
// recomputing later.
func CalculateLateFee(scheduledEndAt time.Time, lateFeePerDay decimal.Decimal, evaluatedAt time.Time, places int32) (decimal.Decimal, error) {
	if err := domain.NonNegative("late_fee_per_day", lateFeePerDay); err != nil {
		return decimal.Zero, err
	}
	days := DaysLate(scheduledEndAt, evaluatedAt)
	return RoundMoney(lateFeePerDay.Mul(decimal.NewFromInt(int64(days))), places), nil
}

// BookingLateFee evaluates the late fee of a booking at its actual return, or at now when the
// vehicle is still out.
func BookingLateFee(b *domain.Booking, now time.Time, places int32) (decimal.Decimal, error) {
	return CalculateLateFee(b.Interval.EndAt, b.LateFeePerDay, b.LateFeeReference(now), places)
}
