package jobs

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"rentdesk-backend/internal/config"
	"rentdesk-backend/internal/service"
)

// stubBookings implements only what the jobs call.
type stubBookings struct {
	service.BookingService
	mock.Mock
}

func (m *stubBookings) AccrueLateFees(ctx context.Context, asOf time.Time) (int, error) {
	args := m.Called(ctx, asOf)
	if fn, ok := args.Get(0).(func()); ok {
		fn()
	}
	return args.Int(1), args.Error(2)
}

func TestRefreshLateFees(t *testing.T) {
	t.Run("UsesCurrentUTCTime", func(t *testing.T) {
		bookings := new(stubBookings)
		before := time.Now().UTC()
		bookings.On("AccrueLateFees", mock.Anything, mock.MatchedBy(func(asOf time.Time) bool {
			return asOf.Location() == time.UTC && !asOf.Before(before)
		})).Return(nil, 3, nil).Once()

		jr := NewJobRunner(bookings, &config.Config{})
		jr.RefreshLateFees()
		bookings.AssertExpectations(t)
	})

	t.Run("ErrorIsLogged", func(t *testing.T) {
		bookings := new(stubBookings)
		bookings.On("AccrueLateFees", mock.Anything, mock.Anything).Return(nil, 0, errors.New("db down")).Once()

		jr := NewJobRunner(bookings, &config.Config{})
		assert.NotPanics(t, jr.RefreshLateFees)
		bookings.AssertExpectations(t)
	})

	t.Run("PanicIsRecovered", func(t *testing.T) {
		bookings := new(stubBookings)
		bookings.On("AccrueLateFees", mock.Anything, mock.Anything).
			Return(func() { panic("boom") }, 0, nil).Once()

		jr := NewJobRunner(bookings, &config.Config{})
		assert.NotPanics(t, jr.RunAllNightlyJobs)
	})
}
