package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"rentdesk-backend/internal/domain"
	"rentdesk-backend/internal/service"
)

var (
	clockNow     = time.Date(2024, 1, 13, 0, 0, 0, 0, time.UTC)
	scheduledEnd = time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)
)

func testBilling() service.Billing {
	return service.Billing{
		MinorUnits:           2,
		DefaultLateFeePerDay: decimal.NewFromInt(25),
		Now:                  func() time.Time { return clockNow },
	}
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func decEq(want string) interface{} {
	return mock.MatchedBy(func(d decimal.Decimal) bool { return d.Equal(dec(want)) })
}

func hours(start time.Time, h int) domain.RentalInterval {
	return domain.RentalInterval{StartAt: start, EndAt: start.Add(time.Duration(h) * time.Hour)}
}

func testVehicle() *domain.Vehicle {
	return &domain.Vehicle{
		ID: 5, TenantID: 7, BranchID: 3, Name: "Corolla",
		Rates:         domain.RateCard{PricePerDay: dec("100"), PricePerHour: dec("20")},
		LateFeePerDay: dec("20"),
	}
}

func confirmedBooking() *domain.Booking {
	return &domain.Booking{
		ID: 9, TenantID: 7, BranchID: 3, CustomerID: 11, VehicleID: 5,
		Interval:       domain.RentalInterval{StartAt: scheduledEnd.Add(-30 * time.Hour), EndAt: scheduledEnd},
		Rates:          domain.RateCard{PricePerDay: dec("100"), PricePerHour: dec("20")},
		TotalAmount:    dec("220"),
		LateFeePerDay:  dec("20"),
		AccruedLateFee: decimal.Zero,
		Status:         domain.BookingStatusConfirmed,
		Version:        2,
	}
}

func TestBookingService_Quote(t *testing.T) {
	vehicleRepo := new(MockVehicleRepo)
	bookingRepo := new(MockBookingRepo)
	svc := service.NewBookingService(vehicleRepo, bookingRepo, testBilling())
	ctx := context.Background()
	start := time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC)

	vehicleRepo.On("GetByID", ctx, int32(7), int32(5)).Return(testVehicle(), nil)

	t.Run("DayPlusHours", func(t *testing.T) {
		q, err := svc.Quote(ctx, 7, 5, hours(start, 30))
		require.NoError(t, err)
		assert.Equal(t, 1, q.Duration.WholeDays)
		assert.Equal(t, 6, q.Duration.RemainderHours)
		assert.True(t, q.TotalAmount.Equal(dec("220")), q.TotalAmount.String())
		assert.True(t, q.LateFeePerDay.Equal(dec("20")))
		assert.Equal(t, int32(5), q.VehicleID)
	})

	t.Run("InvalidInterval", func(t *testing.T) {
		_, err := svc.Quote(ctx, 7, 5, domain.RentalInterval{StartAt: start, EndAt: start})
		var invalid *domain.InvalidIntervalError
		assert.True(t, errors.As(err, &invalid))
	})

	t.Run("SubDayWithoutHourlyRate", func(t *testing.T) {
		dayOnly := testVehicle()
		dayOnly.ID = 6
		dayOnly.Rates.PricePerHour = decimal.Zero
		vehicleRepo.On("GetByID", ctx, int32(7), int32(6)).Return(dayOnly, nil)

		_, err := svc.Quote(ctx, 7, 6, hours(start, 5))
		var missing *domain.MissingRateError
		assert.True(t, errors.As(err, &missing))
	})

	t.Run("VehicleOfOtherTenant", func(t *testing.T) {
		vehicleRepo.On("GetByID", ctx, int32(8), int32(5)).Return(nil, domain.ErrNotFound)

		_, err := svc.Quote(ctx, 8, 5, hours(start, 30))
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestBookingService_CreateBooking(t *testing.T) {
	vehicleRepo := new(MockVehicleRepo)
	bookingRepo := new(MockBookingRepo)
	svc := service.NewBookingService(vehicleRepo, bookingRepo, testBilling())
	ctx := context.Background()
	start := time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC)

	t.Run("Success", func(t *testing.T) {
		vehicleRepo.On("GetByID", ctx, int32(7), int32(5)).Return(testVehicle(), nil).Once()
		bookingRepo.On("Create", ctx, mock.MatchedBy(func(b *domain.Booking) bool {
			return b.Status == domain.BookingStatusPending && b.TotalAmount.Equal(dec("220")) &&
				b.Rates.PricePerDay.Equal(dec("100")) && b.BranchID == 3 && b.TenantID == 7
		})).Run(func(args mock.Arguments) {
			args.Get(1).(*domain.Booking).ID = 9
		}).Return(nil).Once()

		b, err := svc.CreateBooking(ctx, 7, service.CreateBookingRequest{CustomerID: 11, VehicleID: 5, Interval: hours(start, 30)})
		require.NoError(t, err)
		assert.Equal(t, int32(9), b.ID)
		assert.True(t, b.LateFeePerDay.Equal(dec("20")))
		assert.True(t, b.AccruedLateFee.IsZero())
	})

	t.Run("DefaultLateFee", func(t *testing.T) {
		v := testVehicle()
		v.LateFeePerDay = decimal.Zero
		vehicleRepo.On("GetByID", ctx, int32(7), int32(5)).Return(v, nil).Once()
		bookingRepo.On("Create", ctx, mock.AnythingOfType("*domain.Booking")).Return(nil).Once()

		b, err := svc.CreateBooking(ctx, 7, service.CreateBookingRequest{CustomerID: 11, VehicleID: 5, Interval: hours(start, 48)})
		require.NoError(t, err)
		assert.True(t, b.LateFeePerDay.Equal(dec("25")))
		assert.True(t, b.TotalAmount.Equal(dec("200")))
	})

	t.Run("NegativeRateRejected", func(t *testing.T) {
		v := testVehicle()
		v.Rates.PricePerWeek = dec("-1")
		vehicleRepo.On("GetByID", ctx, int32(7), int32(5)).Return(v, nil).Once()

		_, err := svc.CreateBooking(ctx, 7, service.CreateBookingRequest{CustomerID: 11, VehicleID: 5, Interval: hours(start, 30)})
		var negative *domain.NegativeAmountError
		require.True(t, errors.As(err, &negative))
		assert.Equal(t, "price_per_week", negative.Field)
	})

	bookingRepo.AssertExpectations(t)
}

func TestBookingService_Requote(t *testing.T) {
	vehicleRepo := new(MockVehicleRepo)
	bookingRepo := new(MockBookingRepo)
	svc := service.NewBookingService(vehicleRepo, bookingRepo, testBilling())
	ctx := context.Background()

	pending := confirmedBooking()
	pending.Status = domain.BookingStatusPending
	bookingRepo.On("GetByID", ctx, int32(7), int32(9)).Return(pending, nil)

	t.Run("UsesRateSnapshot", func(t *testing.T) {
		next := hours(pending.Interval.StartAt, 9*24)
		bookingRepo.On("UpdateQuote", ctx, mock.MatchedBy(func(b *domain.Booking) bool {
			return b.TotalAmount.Equal(dec("900")) && b.Interval == next
		})).Return(true, nil).Once()

		b, err := svc.Requote(ctx, 7, 9, next)
		require.NoError(t, err)
		assert.True(t, b.TotalAmount.Equal(dec("900")))
	})

	t.Run("LostRace", func(t *testing.T) {
		bookingRepo.On("UpdateQuote", ctx, mock.AnythingOfType("*domain.Booking")).Return(false, nil).Once()

		_, err := svc.Requote(ctx, 7, 9, hours(pending.Interval.StartAt, 48))
		assert.ErrorIs(t, err, domain.ErrConflict)
	})

	t.Run("OnlyWhilePending", func(t *testing.T) {
		bookingRepo.On("GetByID", ctx, int32(7), int32(10)).Return(&domain.Booking{ID: 10, TenantID: 7, Status: domain.BookingStatusConfirmed}, nil)

		_, err := svc.Requote(ctx, 7, 10, hours(pending.Interval.StartAt, 48))
		var illegal *domain.IllegalTransitionError
		assert.True(t, errors.As(err, &illegal))
	})
}

func TestBookingService_Transitions(t *testing.T) {
	ctx := context.Background()

	t.Run("Confirm", func(t *testing.T) {
		bookingRepo := new(MockBookingRepo)
		svc := service.NewBookingService(new(MockVehicleRepo), bookingRepo, testBilling())
		pending := confirmedBooking()
		pending.Status = domain.BookingStatusPending
		bookingRepo.On("GetByID", ctx, int32(7), int32(9)).Return(pending, nil)
		bookingRepo.On("UpdateStatus", ctx, mock.MatchedBy(func(b *domain.Booking) bool {
			return b.Status == domain.BookingStatusConfirmed && b.Version == 2
		}), domain.BookingStatusPending).Return(true, nil)

		b, err := svc.ConfirmBooking(ctx, 7, 9)
		require.NoError(t, err)
		assert.Equal(t, domain.BookingStatusConfirmed, b.Status)
		bookingRepo.AssertExpectations(t)
	})

	t.Run("ConfirmLostRace", func(t *testing.T) {
		bookingRepo := new(MockBookingRepo)
		svc := service.NewBookingService(new(MockVehicleRepo), bookingRepo, testBilling())
		pending := confirmedBooking()
		pending.Status = domain.BookingStatusPending
		bookingRepo.On("GetByID", ctx, int32(7), int32(9)).Return(pending, nil)
		bookingRepo.On("UpdateStatus", ctx, mock.AnythingOfType("*domain.Booking"), domain.BookingStatusPending).Return(false, nil)

		_, err := svc.ConfirmBooking(ctx, 7, 9)
		assert.ErrorIs(t, err, domain.ErrConflict)
	})

	t.Run("CancelCompletedFails", func(t *testing.T) {
		bookingRepo := new(MockBookingRepo)
		svc := service.NewBookingService(new(MockVehicleRepo), bookingRepo, testBilling())
		completed := confirmedBooking()
		completed.Status = domain.BookingStatusCompleted
		bookingRepo.On("GetByID", ctx, int32(7), int32(9)).Return(completed, nil)

		_, err := svc.CancelBooking(ctx, 7, 9)
		var illegal *domain.IllegalTransitionError
		require.True(t, errors.As(err, &illegal))
		assert.Equal(t, "completed", illegal.From)
		assert.Equal(t, domain.BookingStatusCompleted, completed.Status)
		bookingRepo.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("CompleteFreezesLateFee", func(t *testing.T) {
		bookingRepo := new(MockBookingRepo)
		svc := service.NewBookingService(new(MockVehicleRepo), bookingRepo, testBilling())
		bookingRepo.On("GetByID", ctx, int32(7), int32(9)).Return(confirmedBooking(), nil)
		returned := time.Date(2024, 1, 13, 0, 0, 0, 0, time.UTC)
		bookingRepo.On("UpdateStatus", ctx, mock.MatchedBy(func(b *domain.Booking) bool {
			return b.Status == domain.BookingStatusCompleted && b.ActualReturnAt != nil &&
				b.ActualReturnAt.Equal(returned) && b.AccruedLateFee.Equal(dec("60"))
		}), domain.BookingStatusConfirmed).Return(true, nil)

		b, err := svc.CompleteBooking(ctx, 7, 9, returned)
		require.NoError(t, err)
		assert.True(t, b.AccruedLateFee.Equal(dec("60")))
		bookingRepo.AssertExpectations(t)
	})

	t.Run("CompleteDefaultsToNow", func(t *testing.T) {
		bookingRepo := new(MockBookingRepo)
		svc := service.NewBookingService(new(MockVehicleRepo), bookingRepo, testBilling())
		bookingRepo.On("GetByID", ctx, int32(7), int32(9)).Return(confirmedBooking(), nil)
		bookingRepo.On("UpdateStatus", ctx, mock.AnythingOfType("*domain.Booking"), domain.BookingStatusConfirmed).Return(true, nil)

		b, err := svc.CompleteBooking(ctx, 7, 9, time.Time{})
		require.NoError(t, err)
		require.NotNil(t, b.ActualReturnAt)
		assert.Equal(t, clockNow, *b.ActualReturnAt)
	})

	t.Run("CompleteBeforeStartRejected", func(t *testing.T) {
		bookingRepo := new(MockBookingRepo)
		svc := service.NewBookingService(new(MockVehicleRepo), bookingRepo, testBilling())
		b := confirmedBooking()
		bookingRepo.On("GetByID", ctx, int32(7), int32(9)).Return(b, nil)

		_, err := svc.CompleteBooking(ctx, 7, 9, b.Interval.StartAt.Add(-time.Hour))
		var invalid *domain.InvalidIntervalError
		assert.True(t, errors.As(err, &invalid))
	})
}

func TestBookingService_LateFee(t *testing.T) {
	bookingRepo := new(MockBookingRepo)
	svc := service.NewBookingService(new(MockVehicleRepo), bookingRepo, testBilling())
	ctx := context.Background()

	bookingRepo.On("GetByID", ctx, int32(7), int32(9)).Return(confirmedBooking(), nil)

	fee, err := svc.LateFee(ctx, 7, 9, time.Time{})
	require.NoError(t, err)
	assert.True(t, fee.Equal(dec("60")), fee.String())

	fee, err = svc.LateFee(ctx, 7, 9, scheduledEnd)
	require.NoError(t, err)
	assert.True(t, fee.IsZero())

	returned := scheduledEnd.Add(24 * time.Hour)
	completed := confirmedBooking()
	completed.ID = 10
	completed.Status = domain.BookingStatusCompleted
	completed.ActualReturnAt = &returned
	bookingRepo.On("GetByID", ctx, int32(7), int32(10)).Return(completed, nil)

	fee, err = svc.LateFee(ctx, 7, 10, clockNow.Add(240*time.Hour))
	require.NoError(t, err)
	assert.True(t, fee.Equal(dec("20")), fee.String())
}

func TestBookingService_ListBookings(t *testing.T) {
	bookingRepo := new(MockBookingRepo)
	svc := service.NewBookingService(new(MockVehicleRepo), bookingRepo, testBilling())
	ctx := context.Background()

	bookingRepo.On("List", ctx, int32(7), "confirmed", int32(1), int32(20)).Return([]domain.Booking{*confirmedBooking()}, int32(1), nil)

	bookings, count, err := svc.ListBookings(ctx, 7, "confirmed", 1, 20)
	require.NoError(t, err)
	assert.Equal(t, int32(1), count)
	assert.Len(t, bookings, 1)

	_, _, err = svc.ListBookings(ctx, 7, "archived", 1, 20)
	assert.ErrorIs(t, err, domain.ErrInvalidStatus)
}

func TestBookingService_AccrueLateFees(t *testing.T) {
	bookingRepo := new(MockBookingRepo)
	svc := service.NewBookingService(new(MockVehicleRepo), bookingRepo, testBilling())
	ctx := context.Background()

	stale := *confirmedBooking()
	current := *confirmedBooking()
	current.ID = 10
	current.AccruedLateFee = dec("60")
	failing := *confirmedBooking()
	failing.ID = 11
	returnedMeanwhile := *confirmedBooking()
	returnedMeanwhile.ID = 12

	bookingRepo.On("ListOverdue", ctx, clockNow).Return([]domain.Booking{stale, current, failing, returnedMeanwhile}, nil)
	bookingRepo.On("UpdateAccruedLateFee", ctx, int32(9), decEq("60")).Return(true, nil).Once()
	bookingRepo.On("UpdateAccruedLateFee", ctx, int32(11), decEq("60")).Return(false, errors.New("connection reset")).Once()
	// Completed between listing and update: the guarded write touches no row.
	bookingRepo.On("UpdateAccruedLateFee", ctx, int32(12), decEq("60")).Return(false, nil).Once()

	updated, err := svc.AccrueLateFees(ctx, clockNow)
	require.NoError(t, err)
	assert.Equal(t, 1, updated)
	bookingRepo.AssertExpectations(t)
	bookingRepo.AssertNotCalled(t, "UpdateAccruedLateFee", ctx, int32(10), mock.Anything)
}
