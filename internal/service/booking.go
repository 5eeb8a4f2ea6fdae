package service

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"rentdesk-backend/internal/domain"
	"rentdesk-backend/internal/logger"
	"rentdesk-backend/internal/repository"
	"rentdesk-backend/internal/utils"
)

type bookingService struct {
	vehicleRepo repository.VehicleRepository
	bookingRepo repository.BookingRepository
	billing     Billing
}

func NewBookingService(vehicleRepo repository.VehicleRepository, bookingRepo repository.BookingRepository, billing Billing) BookingService {
	return &bookingService{
		vehicleRepo: vehicleRepo,
		bookingRepo: bookingRepo,
		billing:     billing,
	}
}

func (s *bookingService) Quote(ctx context.Context, tenantID, vehicleID int32, interval domain.RentalInterval) (*Quote, error) {
	logger.EnterMethod("bookingService.Quote", "tenantID", tenantID, "vehicleID", vehicleID)

	vehicle, err := s.vehicleRepo.GetByID(ctx, tenantID, vehicleID)
	if err != nil {
		logger.ExitMethodWithError("bookingService.Quote", err, "vehicleID", vehicleID)
		return nil, err
	}
	q, err := s.quote(vehicle.Rates, interval)
	if err != nil {
		logger.ExitMethodWithError("bookingService.Quote", err, "vehicleID", vehicleID)
		return nil, err
	}
	q.VehicleID = vehicle.ID
	q.LateFeePerDay = s.lateFeePerDay(vehicle)

	logger.ExitMethod("bookingService.Quote", "vehicleID", vehicleID, "total", q.TotalAmount.String())
	return q, nil
}

func (s *bookingService) quote(rates domain.RateCard, interval domain.RentalInterval) (*Quote, error) {
	if err := rates.Validate(); err != nil {
		return nil, err
	}
	d, err := utils.DecomposeDuration(interval)
	if err != nil {
		return nil, err
	}
	breakdown, err := utils.CalculateRentalCostWithBreakdown(rates, d, s.billing.places())
	if err != nil {
		return nil, err
	}
	return &Quote{
		Interval:    interval,
		Duration:    d,
		Breakdown:   breakdown,
		TotalAmount: breakdown.TotalCost,
	}, nil
}

func (s *bookingService) lateFeePerDay(v *domain.Vehicle) decimal.Decimal {
	if v.LateFeePerDay.IsZero() {
		return s.billing.DefaultLateFeePerDay
	}
	return v.LateFeePerDay
}

func (s *bookingService) CreateBooking(ctx context.Context, tenantID int32, req CreateBookingRequest) (*domain.Booking, error) {
	logger.EnterMethod("bookingService.CreateBooking", "tenantID", tenantID, "vehicleID", req.VehicleID, "customerID", req.CustomerID)

	vehicle, err := s.vehicleRepo.GetByID(ctx, tenantID, req.VehicleID)
	if err != nil {
		logger.ExitMethodWithError("bookingService.CreateBooking", err, "vehicleID", req.VehicleID)
		return nil, err
	}
	q, err := s.quote(vehicle.Rates, req.Interval)
	if err != nil {
		logger.ExitMethodWithError("bookingService.CreateBooking", err, "vehicleID", req.VehicleID)
		return nil, err
	}
	lateFee := s.lateFeePerDay(vehicle)
	if err := domain.NonNegative("late_fee_per_day", lateFee); err != nil {
		return nil, err
	}

	branchID := req.BranchID
	if branchID == 0 {
		branchID = vehicle.BranchID
	}
	booking := &domain.Booking{
		TenantID:       tenantID,
		BranchID:       branchID,
		CustomerID:     req.CustomerID,
		VehicleID:      vehicle.ID,
		Interval:       req.Interval,
		Rates:          vehicle.Rates,
		TotalAmount:    q.TotalAmount,
		LateFeePerDay:  lateFee,
		AccruedLateFee: decimal.Zero,
		Status:         domain.BookingStatusPending,
	}
	if err := s.bookingRepo.Create(ctx, booking); err != nil {
		logger.ExitMethodWithError("bookingService.CreateBooking", err, "vehicleID", req.VehicleID)
		return nil, err
	}

	logger.ExitMethod("bookingService.CreateBooking", "bookingID", booking.ID, "total", booking.TotalAmount.String())
	return booking, nil
}

// Requote reprices a pending booking over a new interval using its rate snapshot.
func (s *bookingService) Requote(ctx context.Context, tenantID, bookingID int32, interval domain.RentalInterval) (*domain.Booking, error) {
	logger.EnterMethod("bookingService.Requote", "tenantID", tenantID, "bookingID", bookingID)

	booking, err := s.bookingRepo.GetByID(ctx, tenantID, bookingID)
	if err != nil {
		logger.ExitMethodWithError("bookingService.Requote", err, "bookingID", bookingID)
		return nil, err
	}
	if booking.Status != domain.BookingStatusPending {
		err := &domain.IllegalTransitionError{Entity: "booking", From: string(booking.Status), To: string(domain.BookingStatusPending)}
		logger.ExitMethodWithError("bookingService.Requote", err, "bookingID", bookingID)
		return nil, err
	}
	q, err := s.quote(booking.Rates, interval)
	if err != nil {
		logger.ExitMethodWithError("bookingService.Requote", err, "bookingID", bookingID)
		return nil, err
	}

	updated := *booking
	updated.Interval = interval
	updated.TotalAmount = q.TotalAmount
	ok, err := s.bookingRepo.UpdateQuote(ctx, &updated)
	if err != nil {
		logger.ExitMethodWithError("bookingService.Requote", err, "bookingID", bookingID)
		return nil, err
	}
	if !ok {
		logger.ExitMethodWithError("bookingService.Requote", domain.ErrConflict, "bookingID", bookingID)
		return nil, fmt.Errorf("requote booking %d: %w", bookingID, domain.ErrConflict)
	}

	logger.ExitMethod("bookingService.Requote", "bookingID", bookingID, "total", updated.TotalAmount.String())
	return &updated, nil
}

func (s *bookingService) ConfirmBooking(ctx context.Context, tenantID, bookingID int32) (*domain.Booking, error) {
	return s.transition(ctx, tenantID, bookingID, domain.BookingStatusConfirmed, nil)
}

func (s *bookingService) CancelBooking(ctx context.Context, tenantID, bookingID int32) (*domain.Booking, error) {
	return s.transition(ctx, tenantID, bookingID, domain.BookingStatusCancelled, nil)
}

// CompleteBooking records the vehicle's return and freezes the late fee at that instant.
// A zero actualReturnAt means the vehicle is returned now.
func (s *bookingService) CompleteBooking(ctx context.Context, tenantID, bookingID int32, actualReturnAt time.Time) (*domain.Booking, error) {
	if actualReturnAt.IsZero() {
		actualReturnAt = s.billing.now()
	}
	returned := actualReturnAt.UTC()
	return s.transition(ctx, tenantID, bookingID, domain.BookingStatusCompleted, func(b *domain.Booking) error {
		if returned.Before(b.Interval.StartAt) {
			return &domain.InvalidIntervalError{StartAt: b.Interval.StartAt, EndAt: returned}
		}
		b.ActualReturnAt = &returned
		fee, err := utils.BookingLateFee(b, returned, s.billing.places())
		if err != nil {
			return err
		}
		b.AccruedLateFee = fee
		return nil
	})
}

// transition applies one state-machine step to a copy of the stored booking and persists it
// under the version check. The stored booking is returned unchanged on any failure.
func (s *bookingService) transition(ctx context.Context, tenantID, bookingID int32, to domain.BookingStatus, apply func(*domain.Booking) error) (*domain.Booking, error) {
	method := "bookingService.transition"
	logger.EnterMethod(method, "tenantID", tenantID, "bookingID", bookingID, "to", to)

	booking, err := s.bookingRepo.GetByID(ctx, tenantID, bookingID)
	if err != nil {
		logger.ExitMethodWithError(method, err, "bookingID", bookingID)
		return nil, err
	}

	from := booking.Status
	next := *booking
	if err := next.TransitionTo(to); err != nil {
		logger.ExitMethodWithError(method, err, "bookingID", bookingID)
		return nil, err
	}
	if apply != nil {
		if err := apply(&next); err != nil {
			logger.ExitMethodWithError(method, err, "bookingID", bookingID)
			return nil, err
		}
	}

	ok, err := s.bookingRepo.UpdateStatus(ctx, &next, from)
	if err != nil {
		logger.ExitMethodWithError(method, err, "bookingID", bookingID)
		return nil, err
	}
	if !ok {
		logger.ExitMethodWithError(method, domain.ErrConflict, "bookingID", bookingID)
		return nil, fmt.Errorf("booking %d %s -> %s: %w", bookingID, from, to, domain.ErrConflict)
	}

	logger.Info("Booking status changed", "bookingID", bookingID, "tenantID", tenantID, "from", from, "to", to)
	logger.ExitMethod(method, "bookingID", bookingID)
	return &next, nil
}

func (s *bookingService) GetBooking(ctx context.Context, tenantID, bookingID int32) (*domain.Booking, error) {
	return s.bookingRepo.GetByID(ctx, tenantID, bookingID)
}

func (s *bookingService) ListBookings(ctx context.Context, tenantID int32, status string, page, pageSize int32) ([]domain.Booking, int32, error) {
	if status != "" {
		if _, err := domain.ParseBookingStatus(status); err != nil {
			return nil, 0, err
		}
	}
	return s.bookingRepo.List(ctx, tenantID, status, page, pageSize)
}

// LateFee previews the late fee of a booking at at, or at its actual return once completed.
func (s *bookingService) LateFee(ctx context.Context, tenantID, bookingID int32, at time.Time) (decimal.Decimal, error) {
	booking, err := s.bookingRepo.GetByID(ctx, tenantID, bookingID)
	if err != nil {
		return decimal.Zero, err
	}
	if at.IsZero() {
		at = s.billing.now()
	}
	return utils.BookingLateFee(booking, at, s.billing.places())
}

func (s *bookingService) AccrueLateFees(ctx context.Context, asOf time.Time) (int, error) {
	logger.EnterMethod("bookingService.AccrueLateFees", "asOf", asOf)

	overdue, err := s.bookingRepo.ListOverdue(ctx, asOf)
	if err != nil {
		logger.ExitMethodWithError("bookingService.AccrueLateFees", err)
		return 0, err
	}

	updated := 0
	for i := range overdue {
		b := &overdue[i]
		fee, err := utils.BookingLateFee(b, asOf, s.billing.places())
		if err != nil {
			logger.Warn("Skipping booking with invalid late fee", "bookingID", b.ID, "tenantID", b.TenantID, "error", err)
			continue
		}
		if fee.Equal(b.AccruedLateFee) {
			continue
		}
		ok, err := s.bookingRepo.UpdateAccruedLateFee(ctx, b.ID, fee)
		if err != nil {
			logger.Error("Failed to accrue late fee", "bookingID", b.ID, "tenantID", b.TenantID, "error", err)
			continue
		}
		if !ok {
			// Completed or cancelled after it was listed; its fee is already settled.
			logger.Debug("Skipping booking no longer overdue", "bookingID", b.ID, "tenantID", b.TenantID)
			continue
		}
		updated++
	}

	logger.ExitMethod("bookingService.AccrueLateFees", "overdue", len(overdue), "updated", updated)
	return updated, nil
}
