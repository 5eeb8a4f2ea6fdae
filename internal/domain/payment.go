package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type PaymentMethod string

const (
	PaymentMethodCash         PaymentMethod = "cash"
	PaymentMethodCard         PaymentMethod = "card"
	PaymentMethodBankTransfer PaymentMethod = "bank_transfer"
	PaymentMethodOnline       PaymentMethod = "online"
)

func ParsePaymentMethod(s string) (PaymentMethod, error) {
	switch m := PaymentMethod(s); m {
	case PaymentMethodCash, PaymentMethodCard, PaymentMethodBankTransfer, PaymentMethodOnline:
		return m, nil
	}
	return "", ErrInvalidPaymentMethod
}

type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusCompleted PaymentStatus = "completed"
	PaymentStatusFailed    PaymentStatus = "failed"
	PaymentStatusRefunded  PaymentStatus = "refunded"
)

func ParsePaymentStatus(s string) (PaymentStatus, error) {
	switch st := PaymentStatus(s); st {
	case PaymentStatusPending, PaymentStatusCompleted, PaymentStatusFailed, PaymentStatusRefunded:
		return st, nil
	}
	return "", ErrInvalidStatus
}

type Payment struct {
	ID            int32           `json:"id"`
	BookingID     int32           `json:"booking_id"`
	TenantID      int32           `json:"tenant_id"`
	CustomerID    int32           `json:"customer_id"`
	Amount        decimal.Decimal `json:"amount"`
	Method        PaymentMethod   `json:"payment_method"`
	IsPartial     bool            `json:"is_partial"`
	PartialAmount decimal.Decimal `json:"partial_amount"`
	// IsDeposit, LateFee and PaidAmount are computed when the payment is recorded and
	// never recomputed afterwards.
	IsDeposit    bool            `json:"is_deposit"`
	LateFee      decimal.Decimal `json:"late_fee"`
	PaidAmount   decimal.Decimal `json:"paid_amount"`
	Status       PaymentStatus   `json:"status"`
	SplitDetails *string         `json:"split_details"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// PaymentRequest is one payment event submitted against a booking.
type PaymentRequest struct {
	TenantID      int32
	CustomerID    int32
	BookingID     int32
	Amount        decimal.Decimal
	Method        PaymentMethod
	IsPartial     bool
	PartialAmount decimal.Decimal
	SplitDetails  *string
}

func (p *Payment) TransitionTo(to PaymentStatus) error {
	if !CanTransitionPayment(p.Status, to) {
		return &IllegalTransitionError{Entity: "payment", From: string(p.Status), To: string(to)}
	}
	p.Status = to
	return nil
}

// BalanceSummary is the reconciled paid/outstanding position of one booking.
type BalanceSummary struct {
	BookingID   int32           `json:"booking_id"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	LateFees    decimal.Decimal `json:"late_fees"`
	PaidAmount  decimal.Decimal `json:"paid_amount"`
	Refunded    decimal.Decimal `json:"refunded_amount"`
	// Outstanding is floored at zero; Raw keeps the signed value so overpayment stays visible.
	Outstanding    decimal.Decimal `json:"outstanding_balance"`
	RawOutstanding decimal.Decimal `json:"raw_outstanding_balance"`
	Overpaid       bool            `json:"overpaid"`
}
