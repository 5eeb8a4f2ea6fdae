package service

import (
	"context"
	"fmt"

	"rentdesk-backend/internal/domain"
	"rentdesk-backend/internal/logger"
	"rentdesk-backend/internal/repository"
	"rentdesk-backend/internal/utils"
)

type paymentService struct {
	bookingRepo repository.BookingRepository
	paymentRepo repository.PaymentRepository
	billing     Billing
}

func NewPaymentService(bookingRepo repository.BookingRepository, paymentRepo repository.PaymentRepository, billing Billing) PaymentService {
	return &paymentService{
		bookingRepo: bookingRepo,
		paymentRepo: paymentRepo,
		billing:     billing,
	}
}

// SubmitPayment records one payment event against a booking. The late fee is evaluated at the
// booking's actual return, or now while the vehicle is out, and captured on the payment.
func (s *paymentService) SubmitPayment(ctx context.Context, tenantID int32, req domain.PaymentRequest) (*domain.Payment, error) {
	logger.EnterMethod("paymentService.SubmitPayment", "tenantID", tenantID, "bookingID", req.BookingID, "method", req.Method)

	req.TenantID = tenantID
	now := s.billing.now()

	payment, err := s.paymentRepo.RecordWithBookingLock(ctx, tenantID, req.BookingID, func(b *domain.Booking, history []domain.Payment) (*domain.Payment, error) {
		if b.Status == domain.BookingStatusCancelled {
			return nil, &domain.IllegalTransitionError{Entity: "booking", From: string(b.Status), To: "paid"}
		}
		if !req.IsPartial && req.Amount.IsZero() {
			req.Amount = b.TotalAmount
		}
		lateFee, err := utils.BookingLateFee(b, now, s.billing.places())
		if err != nil {
			return nil, err
		}
		p, err := utils.RecordPayment(b, req, lateFee, now)
		if err != nil {
			return nil, err
		}

		before := utils.OutstandingBalance(b, history)
		if before.Overpaid || (before.Outstanding.IsZero() && len(history) > 0) {
			logger.Warn("Payment submitted on a settled booking",
				"bookingID", b.ID, "tenantID", tenantID, "outstanding", before.RawOutstanding.String())
		}
		return p, nil
	})
	if err != nil {
		logger.ExitMethodWithError("paymentService.SubmitPayment", err, "bookingID", req.BookingID)
		return nil, err
	}

	logger.ExitMethod("paymentService.SubmitPayment", "paymentID", payment.ID, "paidAmount", payment.PaidAmount.String(), "isDeposit", payment.IsDeposit)
	return payment, nil
}

func (s *paymentService) UpdatePaymentStatus(ctx context.Context, tenantID, paymentID int32, status domain.PaymentStatus) (*domain.Payment, error) {
	logger.EnterMethod("paymentService.UpdatePaymentStatus", "tenantID", tenantID, "paymentID", paymentID, "to", status)

	if _, err := domain.ParsePaymentStatus(string(status)); err != nil {
		return nil, err
	}
	payment, err := s.paymentRepo.GetByID(ctx, tenantID, paymentID)
	if err != nil {
		logger.ExitMethodWithError("paymentService.UpdatePaymentStatus", err, "paymentID", paymentID)
		return nil, err
	}

	from := payment.Status
	next := *payment
	if err := next.TransitionTo(status); err != nil {
		logger.ExitMethodWithError("paymentService.UpdatePaymentStatus", err, "paymentID", paymentID)
		return nil, err
	}
	ok, err := s.paymentRepo.UpdateStatus(ctx, &next, from)
	if err != nil {
		logger.ExitMethodWithError("paymentService.UpdatePaymentStatus", err, "paymentID", paymentID)
		return nil, err
	}
	if !ok {
		logger.ExitMethodWithError("paymentService.UpdatePaymentStatus", domain.ErrConflict, "paymentID", paymentID)
		return nil, fmt.Errorf("payment %d %s -> %s: %w", paymentID, from, status, domain.ErrConflict)
	}

	logger.Info("Payment status changed", "paymentID", paymentID, "bookingID", next.BookingID, "from", from, "to", status)
	logger.ExitMethod("paymentService.UpdatePaymentStatus", "paymentID", paymentID)
	return &next, nil
}

func (s *paymentService) GetBalance(ctx context.Context, tenantID, bookingID int32) (*domain.BalanceSummary, error) {
	booking, err := s.bookingRepo.GetByID(ctx, tenantID, bookingID)
	if err != nil {
		return nil, err
	}
	payments, err := s.paymentRepo.ListByBooking(ctx, tenantID, bookingID)
	if err != nil {
		return nil, err
	}
	summary := utils.OutstandingBalance(booking, payments)
	return &summary, nil
}

func (s *paymentService) ListPayments(ctx context.Context, tenantID, bookingID int32) ([]domain.Payment, error) {
	if _, err := s.bookingRepo.GetByID(ctx, tenantID, bookingID); err != nil {
		return nil, err
	}
	return s.paymentRepo.ListByBooking(ctx, tenantID, bookingID)
}
