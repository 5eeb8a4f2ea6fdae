package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "pending"
	BookingStatusConfirmed BookingStatus = "confirmed"
	BookingStatusCancelled BookingStatus = "cancelled"
	BookingStatusCompleted BookingStatus = "completed"
)

// RentalInterval is a requested rental window. EndAt must be strictly after StartAt.
type RentalInterval struct {
	StartAt time.Time `json:"start_date"`
	EndAt   time.Time `json:"end_date"`
}

func (i RentalInterval) Validate() error {
	if !i.EndAt.After(i.StartAt) {
		return &InvalidIntervalError{StartAt: i.StartAt, EndAt: i.EndAt}
	}
	return nil
}

type Booking struct {
	ID         int32          `json:"id"`
	TenantID   int32          `json:"tenant_id"`
	BranchID   int32          `json:"branch_id"`
	CustomerID int32          `json:"customer_id"`
	VehicleID  int32          `json:"vehicle_id"`
	Interval   RentalInterval `json:"interval"`
	// Rates is the vehicle rate card captured when the booking was created.
	// Re-quotes price against this snapshot, never the live vehicle.
	Rates          RateCard        `json:"rates"`
	TotalAmount    decimal.Decimal `json:"total_amount"`
	LateFeePerDay  decimal.Decimal `json:"late_fee_per_day"`
	AccruedLateFee decimal.Decimal `json:"accrued_late_fee"`
	ActualReturnAt *time.Time      `json:"actual_return_at,omitempty"`
	Status         BookingStatus   `json:"status"`
	Version        int32           `json:"-"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// TransitionTo moves the booking to status to. Illegal transitions leave the booking untouched.
func (b *Booking) TransitionTo(to BookingStatus) error {
	if !CanTransitionBooking(b.Status, to) {
		return &IllegalTransitionError{Entity: "booking", From: string(b.Status), To: string(to)}
	}
	b.Status = to
	return nil
}

// LateFeeReference returns the instant late fees are evaluated at: the actual return if the
// vehicle is back, otherwise now.
func (b *Booking) LateFeeReference(now time.Time) time.Time {
	if b.ActualReturnAt != nil {
		return *b.ActualReturnAt
	}
	return now
}

func ParseBookingStatus(s string) (BookingStatus, error) {
	switch st := BookingStatus(s); st {
	case BookingStatusPending, BookingStatusConfirmed, BookingStatusCancelled, BookingStatusCompleted:
		return st, nil
	}
	return "", ErrInvalidStatus
}
