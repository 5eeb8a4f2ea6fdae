package postgres

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"rentdesk-backend/internal/domain"
	"rentdesk-backend/internal/repository"
)

const (
	pqForeignKeyViolation = "23503"
	pqCheckViolation      = "23514"
)

type Store struct {
	db *sql.DB
	repository.VehicleRepository
	repository.BookingRepository
	repository.PaymentRepository
}

func NewStore(db *sql.DB) *Store {
	return &Store{
		db:                db,
		VehicleRepository: NewVehicleRepository(db),
		BookingRepository: NewBookingRepository(db),
		PaymentRepository: NewPaymentRepository(db),
	}
}

func (s *Store) DB() *sql.DB { return s.db }

// mapError converts driver errors into domain sentinels where the caller can act on them.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ErrNotFound
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case pqForeignKeyViolation:
			return fmt.Errorf("%w: %s", domain.ErrNotFound, pqErr.Constraint)
		case pqCheckViolation:
			return fmt.Errorf("constraint %s violated: %w", pqErr.Constraint, err)
		}
	}
	return err
}

// pageOffset computes the offset in int64 so a huge page number yields an empty page
// instead of wrapping to a negative OFFSET.
func pageOffset(page, pageSize int32) (int32, int64) {
	if pageSize <= 0 {
		pageSize = 20
	}
	if page <= 0 {
		page = 1
	}
	return pageSize, (int64(page) - 1) * int64(pageSize)
}
