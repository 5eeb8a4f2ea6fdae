package domain

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrNotFound             = errors.New("not found")
	ErrConflict             = errors.New("concurrent update, reload and retry")
	ErrInvalidPaymentMethod = errors.New("invalid payment method")
	ErrInvalidStatus        = errors.New("invalid status")
)

// InvalidIntervalError is returned when a rental interval does not end after it starts.
type InvalidIntervalError struct {
	StartAt time.Time
	EndAt   time.Time
}

func (e *InvalidIntervalError) Error() string {
	return fmt.Sprintf("invalid rental interval: end %s must be after start %s",
		e.EndAt.Format(time.RFC3339), e.StartAt.Format(time.RFC3339))
}

// MissingRateError is returned when no price tier on the rate card can price a duration.
type MissingRateError struct {
	Reason string
}

func (e *MissingRateError) Error() string {
	return "missing rate: " + e.Reason
}

type IllegalTransitionError struct {
	Entity string // "booking" or "payment"
	From   string
	To     string
}

func (e *IllegalTransitionError) Error() string {
	return fmt.Sprintf("illegal %s transition from %q to %q", e.Entity, e.From, e.To)
}

// NegativeAmountError is returned for any supplied or computed monetary value below zero.
type NegativeAmountError struct {
	Field  string
	Amount decimal.Decimal
}

func (e *NegativeAmountError) Error() string {
	return fmt.Sprintf("%s must not be negative, got %s", e.Field, e.Amount.String())
}

// NonNegative returns a NegativeAmountError naming field when amount < 0.
func NonNegative(field string, amount decimal.Decimal) error {
	if amount.IsNegative() {
		return &NegativeAmountError{Field: field, Amount: amount}
	}
	return nil
}
