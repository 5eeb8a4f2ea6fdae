package service

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"rentdesk-backend/internal/domain"
	"rentdesk-backend/internal/utils"
)

// Every method takes an already-authorized tenant ID and scopes all reads and writes by it.

type BookingService interface {
	Quote(ctx context.Context, tenantID, vehicleID int32, interval domain.RentalInterval) (*Quote, error)
	CreateBooking(ctx context.Context, tenantID int32, req CreateBookingRequest) (*domain.Booking, error)
	Requote(ctx context.Context, tenantID, bookingID int32, interval domain.RentalInterval) (*domain.Booking, error)
	ConfirmBooking(ctx context.Context, tenantID, bookingID int32) (*domain.Booking, error)
	CancelBooking(ctx context.Context, tenantID, bookingID int32) (*domain.Booking, error)
	CompleteBooking(ctx context.Context, tenantID, bookingID int32, actualReturnAt time.Time) (*domain.Booking, error)
	GetBooking(ctx context.Context, tenantID, bookingID int32) (*domain.Booking, error)
	ListBookings(ctx context.Context, tenantID int32, status string, page, pageSize int32) ([]domain.Booking, int32, error)
	LateFee(ctx context.Context, tenantID, bookingID int32, at time.Time) (decimal.Decimal, error)
	// AccrueLateFees refreshes accrued_late_fee on every overdue confirmed booking across tenants.
	AccrueLateFees(ctx context.Context, asOf time.Time) (int, error)
}

type PaymentService interface {
	SubmitPayment(ctx context.Context, tenantID int32, req domain.PaymentRequest) (*domain.Payment, error)
	UpdatePaymentStatus(ctx context.Context, tenantID, paymentID int32, status domain.PaymentStatus) (*domain.Payment, error)
	GetBalance(ctx context.Context, tenantID, bookingID int32) (*domain.BalanceSummary, error)
	ListPayments(ctx context.Context, tenantID, bookingID int32) ([]domain.Payment, error)
}

type CreateBookingRequest struct {
	BranchID   int32
	CustomerID int32
	VehicleID  int32
	Interval   domain.RentalInterval
}

// Quote is a priced interval that has not been persisted.
type Quote struct {
	VehicleID     int32                     `json:"vehicle_id"`
	Interval      domain.RentalInterval     `json:"interval"`
	Duration      utils.RentalDuration      `json:"duration"`
	Breakdown     utils.RentalCostBreakdown `json:"breakdown"`
	TotalAmount   decimal.Decimal           `json:"total_amount"`
	LateFeePerDay decimal.Decimal           `json:"late_fee_per_day"`
}

// Billing carries the pricing settings shared by the services.
type Billing struct {
	MinorUnits           int32
	DefaultLateFeePerDay decimal.Decimal
	// Now is the clock used for late-fee evaluation. Defaults to time.Now in UTC.
	Now func() time.Time
}

func (b Billing) now() time.Time {
	if b.Now != nil {
		return b.Now().UTC()
	}
	return time.Now().UTC()
}

func (b Billing) places() int32 {
	if b.MinorUnits < 0 {
		return utils.DefaultPlaces
	}
	return b.MinorUnits
}
