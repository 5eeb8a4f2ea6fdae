package service_test

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"

	"rentdesk-backend/internal/domain"
	"rentdesk-backend/internal/repository"
)

// MockVehicleRepo
type MockVehicleRepo struct {
	mock.Mock
}

func (m *MockVehicleRepo) GetByID(ctx context.Context, tenantID, id int32) (*domain.Vehicle, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Vehicle), args.Error(1)
}

// MockBookingRepo
type MockBookingRepo struct {
	mock.Mock
}

func (m *MockBookingRepo) Create(ctx context.Context, b *domain.Booking) error {
	args := m.Called(ctx, b)
	return args.Error(0)
}
func (m *MockBookingRepo) GetByID(ctx context.Context, tenantID, id int32) (*domain.Booking, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	// Hand out a copy so the service cannot mutate the fixture.
	b := *args.Get(0).(*domain.Booking)
	return &b, args.Error(1)
}
func (m *MockBookingRepo) List(ctx context.Context, tenantID int32, status string, page, pageSize int32) ([]domain.Booking, int32, error) {
	args := m.Called(ctx, tenantID, status, page, pageSize)
	return args.Get(0).([]domain.Booking), args.Get(1).(int32), args.Error(2)
}
func (m *MockBookingRepo) UpdateStatus(ctx context.Context, b *domain.Booking, from domain.BookingStatus) (bool, error) {
	args := m.Called(ctx, b, from)
	return args.Bool(0), args.Error(1)
}
func (m *MockBookingRepo) UpdateQuote(ctx context.Context, b *domain.Booking) (bool, error) {
	args := m.Called(ctx, b)
	return args.Bool(0), args.Error(1)
}
func (m *MockBookingRepo) ListOverdue(ctx context.Context, asOf time.Time) ([]domain.Booking, error) {
	args := m.Called(ctx, asOf)
	return args.Get(0).([]domain.Booking), args.Error(1)
}
func (m *MockBookingRepo) UpdateAccruedLateFee(ctx context.Context, id int32, fee decimal.Decimal) (bool, error) {
	args := m.Called(ctx, id, fee)
	return args.Bool(0), args.Error(1)
}

// MockPaymentRepo runs the builder against the booking and history it is primed with, the way
// the postgres implementation does under its row lock.
type MockPaymentRepo struct {
	mock.Mock
}

func (m *MockPaymentRepo) RecordWithBookingLock(ctx context.Context, tenantID, bookingID int32, build repository.PaymentBuilder) (*domain.Payment, error) {
	args := m.Called(ctx, tenantID, bookingID)
	if err := args.Error(2); err != nil {
		return nil, err
	}
	booking := *args.Get(0).(*domain.Booking)
	p, err := build(&booking, args.Get(1).([]domain.Payment))
	if err != nil {
		return nil, err
	}
	p.ID = 1
	return p, nil
}
func (m *MockPaymentRepo) GetByID(ctx context.Context, tenantID, id int32) (*domain.Payment, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	p := *args.Get(0).(*domain.Payment)
	return &p, args.Error(1)
}
func (m *MockPaymentRepo) UpdateStatus(ctx context.Context, p *domain.Payment, from domain.PaymentStatus) (bool, error) {
	args := m.Called(ctx, p, from)
	return args.Bool(0), args.Error(1)
}
func (m *MockPaymentRepo) ListByBooking(ctx context.Context, tenantID, bookingID int32) ([]domain.Payment, error) {
	args := m.Called(ctx, tenantID, bookingID)
	return args.Get(0).([]domain.Payment), args.Error(1)
}
