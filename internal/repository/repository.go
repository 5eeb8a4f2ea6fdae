package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"rentdesk-backend/internal/domain"
)

type VehicleRepository interface {
	GetByID(ctx context.Context, tenantID, id int32) (*domain.Vehicle, error)
}

type BookingRepository interface {
	Create(ctx context.Context, booking *domain.Booking) error
	GetByID(ctx context.Context, tenantID, id int32) (*domain.Booking, error)
	List(ctx context.Context, tenantID int32, status string, page, pageSize int32) ([]domain.Booking, int32, error)
	// UpdateStatus writes status, actual return and accrued late fee only if the row is
	// still in status from at the booking's version. It reports false on a lost race.
	UpdateStatus(ctx context.Context, booking *domain.Booking, from domain.BookingStatus) (bool, error)
	// UpdateQuote writes a re-quoted interval and total under the same version check.
	UpdateQuote(ctx context.Context, booking *domain.Booking) (bool, error)
	ListOverdue(ctx context.Context, asOf time.Time) ([]domain.Booking, error)
	// UpdateAccruedLateFee stores fee only while the booking is still confirmed and not yet
	// returned. It reports false when the booking moved on since it was listed.
	UpdateAccruedLateFee(ctx context.Context, id int32, fee decimal.Decimal) (bool, error)
}

// PaymentBuilder computes the payment to insert from the locked booking and its history.
type PaymentBuilder func(booking *domain.Booking, history []domain.Payment) (*domain.Payment, error)

type PaymentRepository interface {
	// RecordWithBookingLock serializes payment submissions per booking: the booking row is
	// locked, build runs against it, and the resulting payment is inserted in the same
	// transaction.
	RecordWithBookingLock(ctx context.Context, tenantID, bookingID int32, build PaymentBuilder) (*domain.Payment, error)
	GetByID(ctx context.Context, tenantID, id int32) (*domain.Payment, error)
	UpdateStatus(ctx context.Context, payment *domain.Payment, from domain.PaymentStatus) (bool, error)
	ListByBooking(ctx context.Context, tenantID, bookingID int32) ([]domain.Payment, error)
}
