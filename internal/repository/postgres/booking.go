package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"rentdesk-backend/internal/domain"
	"rentdesk-backend/internal/logger"
	"rentdesk-backend/internal/repository"
)

const bookingColumns = `id, tenant_id, branch_id, customer_id, vehicle_id, start_at, end_at,
	price_per_hour, price_per_day, price_per_week, price_per_month, price_per_year,
	total_amount, late_fee_per_day, accrued_late_fee, actual_return_at, status, version, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBooking(row rowScanner) (*domain.Booking, error) {
	b := &domain.Booking{}
	var actualReturn sql.NullTime
	err := row.Scan(
		&b.ID, &b.TenantID, &b.BranchID, &b.CustomerID, &b.VehicleID, &b.Interval.StartAt, &b.Interval.EndAt,
		&b.Rates.PricePerHour, &b.Rates.PricePerDay, &b.Rates.PricePerWeek, &b.Rates.PricePerMonth, &b.Rates.PricePerYear,
		&b.TotalAmount, &b.LateFeePerDay, &b.AccruedLateFee, &actualReturn, &b.Status, &b.Version, &b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if actualReturn.Valid {
		t := actualReturn.Time
		b.ActualReturnAt = &t
	}
	return b, nil
}

type bookingRepository struct {
	db *sql.DB
}

func NewBookingRepository(db *sql.DB) repository.BookingRepository {
	return &bookingRepository{db: db}
}

func (r *bookingRepository) Create(ctx context.Context, b *domain.Booking) error {
	logger.EnterMethod("bookingRepository.Create", "tenantID", b.TenantID, "vehicleID", b.VehicleID)

	query := `INSERT INTO bookings (tenant_id, branch_id, customer_id, vehicle_id, start_at, end_at,
	              price_per_hour, price_per_day, price_per_week, price_per_month, price_per_year,
	              total_amount, late_fee_per_day, accrued_late_fee, status, version, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18) RETURNING id`
	now := time.Now().UTC()
	err := r.db.QueryRowContext(ctx, query,
		b.TenantID, b.BranchID, b.CustomerID, b.VehicleID, b.Interval.StartAt, b.Interval.EndAt,
		b.Rates.PricePerHour, b.Rates.PricePerDay, b.Rates.PricePerWeek, b.Rates.PricePerMonth, b.Rates.PricePerYear,
		b.TotalAmount, b.LateFeePerDay, b.AccruedLateFee, b.Status, b.Version, now, now,
	).Scan(&b.ID)
	if err != nil {
		logger.ExitMethodWithError("bookingRepository.Create", err, "tenantID", b.TenantID)
		return mapError(err)
	}
	b.CreatedAt, b.UpdatedAt = now, now

	logger.ExitMethod("bookingRepository.Create", "bookingID", b.ID)
	return nil
}

func (r *bookingRepository) GetByID(ctx context.Context, tenantID, id int32) (*domain.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = $1 AND tenant_id = $2`
	b, err := scanBooking(r.db.QueryRowContext(ctx, query, id, tenantID))
	if err != nil {
		return nil, mapError(err)
	}
	return b, nil
}

func (r *bookingRepository) List(ctx context.Context, tenantID int32, status string, page, pageSize int32) ([]domain.Booking, int32, error) {
	limit, offset := pageOffset(page, pageSize)
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE tenant_id = $1`

	args := []interface{}{tenantID}
	argIdx := 2
	if status != "" {
		query += " AND status = $2"
		args = append(args, status)
		argIdx++
	}

	var count int32
	countQuery := "SELECT count(*) FROM (" + query + ") as sub"
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&count); err != nil {
		return nil, 0, err
	}

	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", argIdx, argIdx+1)
	args = append(args, limit, offset)

	logger.DatabaseCall("bookings.list", query, "tenantID", tenantID, "status", status)
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var bookings []domain.Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, 0, err
		}
		bookings = append(bookings, *b)
	}
	return bookings, count, rows.Err()
}

func (r *bookingRepository) UpdateStatus(ctx context.Context, b *domain.Booking, from domain.BookingStatus) (bool, error) {
	logger.EnterMethod("bookingRepository.UpdateStatus", "bookingID", b.ID, "from", from, "to", b.Status)

	query := `UPDATE bookings
	          SET status = $1, actual_return_at = $2, accrued_late_fee = $3, version = version + 1, updated_at = $4
	          WHERE id = $5 AND tenant_id = $6 AND status = $7 AND version = $8`
	now := time.Now().UTC()
	res, err := r.db.ExecContext(ctx, query, b.Status, b.ActualReturnAt, b.AccruedLateFee, now, b.ID, b.TenantID, from, b.Version)
	if err != nil {
		logger.ExitMethodWithError("bookingRepository.UpdateStatus", err, "bookingID", b.ID)
		return false, mapError(err)
	}
	n, err := res.RowsAffected()
	logger.DatabaseResult("bookings.update_status", n, err, "bookingID", b.ID)
	if err != nil || n == 0 {
		return false, err
	}
	b.Version++
	b.UpdatedAt = now
	return true, nil
}

func (r *bookingRepository) UpdateQuote(ctx context.Context, b *domain.Booking) (bool, error) {
	query := `UPDATE bookings
	          SET start_at = $1, end_at = $2, total_amount = $3, version = version + 1, updated_at = $4
	          WHERE id = $5 AND tenant_id = $6 AND version = $7`
	now := time.Now().UTC()
	res, err := r.db.ExecContext(ctx, query, b.Interval.StartAt, b.Interval.EndAt, b.TotalAmount, now, b.ID, b.TenantID, b.Version)
	if err != nil {
		return false, mapError(err)
	}
	n, err := res.RowsAffected()
	if err != nil || n == 0 {
		return false, err
	}
	b.Version++
	b.UpdatedAt = now
	return true, nil
}

// ListOverdue returns confirmed bookings whose scheduled end is before asOf, across tenants.
func (r *bookingRepository) ListOverdue(ctx context.Context, asOf time.Time) ([]domain.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings
	          WHERE status = $1 AND end_at < $2 AND actual_return_at IS NULL
	          ORDER BY end_at`
	logger.DatabaseCall("bookings.list_overdue", query, "asOf", asOf)
	rows, err := r.db.QueryContext(ctx, query, domain.BookingStatusConfirmed, asOf)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var bookings []domain.Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		bookings = append(bookings, *b)
	}
	return bookings, rows.Err()
}

func (r *bookingRepository) UpdateAccruedLateFee(ctx context.Context, id int32, fee decimal.Decimal) (bool, error) {
	query := `UPDATE bookings SET accrued_late_fee = $1, updated_at = $2
	          WHERE id = $3 AND status = $4 AND actual_return_at IS NULL`
	res, err := r.db.ExecContext(ctx, query, fee, time.Now().UTC(), id, domain.BookingStatusConfirmed)
	if err != nil {
		return false, mapError(err)
	}
	n, err := res.RowsAffected()
	logger.DatabaseResult("bookings.update_accrued_late_fee", n, err, "bookingID", id)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
