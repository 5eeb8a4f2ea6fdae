package utils

import (
	"time"

	"github.com/shopspring/decimal"

	"rentdesk-backend/internal/domain"
)

// RecordPayment computes the payment row for one payment event. The caller persists the
// result as-is; earlier payments on the booking are never recomputed.
//
// paidAmount = lateFee + (partialAmount if the payment is partial with a positive partial
// amount, else amount). isDeposit is derived, never taken from the caller.
func RecordPayment(booking *domain.Booking, req domain.PaymentRequest, lateFee decimal.Decimal, now time.Time) (*domain.Payment, error) {
	if err := domain.NonNegative("amount", req.Amount); err != nil {
		return nil, err
	}
	if err := domain.NonNegative("partial_amount", req.PartialAmount); err != nil {
		return nil, err
	}
	if err := domain.NonNegative("late_fee", lateFee); err != nil {
		return nil, err
	}
	if _, err := domain.ParsePaymentMethod(string(req.Method)); err != nil {
		return nil, err
	}

	principal := req.Amount
	if req.IsPartial && req.PartialAmount.IsPositive() {
		principal = req.PartialAmount
	}
	paid := lateFee.Add(principal)

	return &domain.Payment{
		BookingID:     booking.ID,
		TenantID:      booking.TenantID,
		CustomerID:    req.CustomerID,
		Amount:        req.Amount,
		Method:        req.Method,
		IsPartial:     req.IsPartial,
		PartialAmount: req.PartialAmount,
		IsDeposit:     req.IsPartial || paid.LessThan(booking.TotalAmount),
		LateFee:       lateFee,
		PaidAmount:    paid,
		Status:        domain.PaymentStatusPending,
		SplitDetails:  req.SplitDetails,
		CreatedAt:     now,
		UpdatedAt:     now,
	}, nil
}

// OutstandingBalance reconciles a booking against its payment history. Only completed
// payments count; a refunded payment drops out of the paid sum and the balance rises again.
func OutstandingBalance(booking *domain.Booking, payments []domain.Payment) domain.BalanceSummary {
	s := domain.BalanceSummary{
		BookingID:   booking.ID,
		TotalAmount: booking.TotalAmount,
		LateFees:    decimal.Zero,
		PaidAmount:  decimal.Zero,
		Refunded:    decimal.Zero,
	}
	for _, p := range payments {
		if p.BookingID != booking.ID {
			continue
		}
		switch p.Status {
		case domain.PaymentStatusCompleted:
			s.LateFees = s.LateFees.Add(p.LateFee)
			s.PaidAmount = s.PaidAmount.Add(p.PaidAmount)
		case domain.PaymentStatusRefunded:
			s.Refunded = s.Refunded.Add(p.PaidAmount)
		}
	}

	s.RawOutstanding = s.TotalAmount.Add(s.LateFees).Sub(s.PaidAmount)
	s.Outstanding = decimal.Max(s.RawOutstanding, decimal.Zero)
	s.Overpaid = s.RawOutstanding.IsNegative()
	return s
}
