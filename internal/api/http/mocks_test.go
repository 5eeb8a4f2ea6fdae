package http

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"

	"rentdesk-backend/internal/domain"
	"rentdesk-backend/internal/service"
)

type MockBookingService struct {
	mock.Mock
}

func (m *MockBookingService) Quote(ctx context.Context, tenantID, vehicleID int32, interval domain.RentalInterval) (*service.Quote, error) {
	args := m.Called(ctx, tenantID, vehicleID, interval)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.Quote), args.Error(1)
}

func (m *MockBookingService) CreateBooking(ctx context.Context, tenantID int32, req service.CreateBookingRequest) (*domain.Booking, error) {
	args := m.Called(ctx, tenantID, req)
	return bookingResult(args)
}

func (m *MockBookingService) Requote(ctx context.Context, tenantID, bookingID int32, interval domain.RentalInterval) (*domain.Booking, error) {
	args := m.Called(ctx, tenantID, bookingID, interval)
	return bookingResult(args)
}

func (m *MockBookingService) ConfirmBooking(ctx context.Context, tenantID, bookingID int32) (*domain.Booking, error) {
	args := m.Called(ctx, tenantID, bookingID)
	return bookingResult(args)
}

func (m *MockBookingService) CancelBooking(ctx context.Context, tenantID, bookingID int32) (*domain.Booking, error) {
	args := m.Called(ctx, tenantID, bookingID)
	return bookingResult(args)
}

func (m *MockBookingService) CompleteBooking(ctx context.Context, tenantID, bookingID int32, actualReturnAt time.Time) (*domain.Booking, error) {
	args := m.Called(ctx, tenantID, bookingID, actualReturnAt)
	return bookingResult(args)
}

func (m *MockBookingService) GetBooking(ctx context.Context, tenantID, bookingID int32) (*domain.Booking, error) {
	args := m.Called(ctx, tenantID, bookingID)
	return bookingResult(args)
}

func (m *MockBookingService) ListBookings(ctx context.Context, tenantID int32, status string, page, pageSize int32) ([]domain.Booking, int32, error) {
	args := m.Called(ctx, tenantID, status, page, pageSize)
	return args.Get(0).([]domain.Booking), args.Get(1).(int32), args.Error(2)
}

func (m *MockBookingService) LateFee(ctx context.Context, tenantID, bookingID int32, at time.Time) (decimal.Decimal, error) {
	args := m.Called(ctx, tenantID, bookingID, at)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockBookingService) AccrueLateFees(ctx context.Context, asOf time.Time) (int, error) {
	args := m.Called(ctx, asOf)
	return args.Int(0), args.Error(1)
}

func bookingResult(args mock.Arguments) (*domain.Booking, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

type MockPaymentService struct {
	mock.Mock
}

func (m *MockPaymentService) SubmitPayment(ctx context.Context, tenantID int32, req domain.PaymentRequest) (*domain.Payment, error) {
	args := m.Called(ctx, tenantID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Payment), args.Error(1)
}

func (m *MockPaymentService) UpdatePaymentStatus(ctx context.Context, tenantID, paymentID int32, status domain.PaymentStatus) (*domain.Payment, error) {
	args := m.Called(ctx, tenantID, paymentID, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Payment), args.Error(1)
}

func (m *MockPaymentService) GetBalance(ctx context.Context, tenantID, bookingID int32) (*domain.BalanceSummary, error) {
	args := m.Called(ctx, tenantID, bookingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.BalanceSummary), args.Error(1)
}

func (m *MockPaymentService) ListPayments(ctx context.Context, tenantID, bookingID int32) ([]domain.Payment, error) {
	args := m.Called(ctx, tenantID, bookingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Payment), args.Error(1)
}
