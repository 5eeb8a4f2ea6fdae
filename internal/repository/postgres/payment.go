package postgres

import (
	"context"
	"database/sql"
	"time"

	"rentdesk-backend/internal/domain"
	"rentdesk-backend/internal/logger"
	"rentdesk-backend/internal/repository"
)

const paymentColumns = `id, booking_id, tenant_id, customer_id, amount, payment_method, is_partial, partial_amount,
	is_deposit, late_fee, paid_amount, status, split_details, created_at, updated_at`

func scanPayment(row rowScanner) (*domain.Payment, error) {
	p := &domain.Payment{}
	var split sql.NullString
	err := row.Scan(
		&p.ID, &p.BookingID, &p.TenantID, &p.CustomerID, &p.Amount, &p.Method, &p.IsPartial, &p.PartialAmount,
		&p.IsDeposit, &p.LateFee, &p.PaidAmount, &p.Status, &split, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if split.Valid {
		s := split.String
		p.SplitDetails = &s
	}
	return p, nil
}

type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

func listPayments(ctx context.Context, q querier, tenantID, bookingID int32) ([]domain.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE booking_id = $1 AND tenant_id = $2 ORDER BY created_at, id`
	rows, err := q.QueryContext(ctx, query, bookingID, tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var payments []domain.Payment
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, err
		}
		payments = append(payments, *p)
	}
	return payments, rows.Err()
}

type paymentRepository struct {
	db *sql.DB
}

func NewPaymentRepository(db *sql.DB) repository.PaymentRepository {
	return &paymentRepository{db: db}
}

func (r *paymentRepository) RecordWithBookingLock(ctx context.Context, tenantID, bookingID int32, build repository.PaymentBuilder) (*domain.Payment, error) {
	logger.EnterMethod("paymentRepository.RecordWithBookingLock", "tenantID", tenantID, "bookingID", bookingID)

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		logger.ExitMethodWithError("paymentRepository.RecordWithBookingLock", err, "bookingID", bookingID)
		return nil, err
	}
	defer tx.Rollback()

	lockQuery := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = $1 AND tenant_id = $2 FOR UPDATE`
	booking, err := scanBooking(tx.QueryRowContext(ctx, lockQuery, bookingID, tenantID))
	if err != nil {
		logger.ExitMethodWithError("paymentRepository.RecordWithBookingLock", err, "bookingID", bookingID)
		return nil, mapError(err)
	}

	history, err := listPayments(ctx, tx, tenantID, bookingID)
	if err != nil {
		logger.ExitMethodWithError("paymentRepository.RecordWithBookingLock", err, "bookingID", bookingID)
		return nil, err
	}

	p, err := build(booking, history)
	if err != nil {
		logger.ExitMethodWithError("paymentRepository.RecordWithBookingLock", err, "bookingID", bookingID)
		return nil, err
	}

	insert := `INSERT INTO payments (booking_id, tenant_id, customer_id, amount, payment_method, is_partial, partial_amount,
	               is_deposit, late_fee, paid_amount, status, split_details, created_at, updated_at)
	           VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14) RETURNING id`
	now := time.Now().UTC()
	err = tx.QueryRowContext(ctx, insert,
		p.BookingID, p.TenantID, p.CustomerID, p.Amount, p.Method, p.IsPartial, p.PartialAmount,
		p.IsDeposit, p.LateFee, p.PaidAmount, p.Status, p.SplitDetails, now, now,
	).Scan(&p.ID)
	if err != nil {
		logger.ExitMethodWithError("paymentRepository.RecordWithBookingLock", err, "bookingID", bookingID)
		return nil, mapError(err)
	}
	p.CreatedAt, p.UpdatedAt = now, now

	if err := tx.Commit(); err != nil {
		logger.ExitMethodWithError("paymentRepository.RecordWithBookingLock", err, "bookingID", bookingID)
		return nil, err
	}

	logger.ExitMethod("paymentRepository.RecordWithBookingLock", "paymentID", p.ID, "paidAmount", p.PaidAmount.String())
	return p, nil
}

func (r *paymentRepository) GetByID(ctx context.Context, tenantID, id int32) (*domain.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE id = $1 AND tenant_id = $2`
	p, err := scanPayment(r.db.QueryRowContext(ctx, query, id, tenantID))
	if err != nil {
		return nil, mapError(err)
	}
	return p, nil
}

func (r *paymentRepository) UpdateStatus(ctx context.Context, p *domain.Payment, from domain.PaymentStatus) (bool, error) {
	logger.EnterMethod("paymentRepository.UpdateStatus", "paymentID", p.ID, "from", from, "to", p.Status)

	query := `UPDATE payments SET status = $1, updated_at = $2 WHERE id = $3 AND tenant_id = $4 AND status = $5`
	now := time.Now().UTC()
	res, err := r.db.ExecContext(ctx, query, p.Status, now, p.ID, p.TenantID, from)
	if err != nil {
		logger.ExitMethodWithError("paymentRepository.UpdateStatus", err, "paymentID", p.ID)
		return false, mapError(err)
	}
	n, err := res.RowsAffected()
	logger.DatabaseResult("payments.update_status", n, err, "paymentID", p.ID)
	if err != nil || n == 0 {
		return false, err
	}
	p.UpdatedAt = now
	return true, nil
}

func (r *paymentRepository) ListByBooking(ctx context.Context, tenantID, bookingID int32) ([]domain.Payment, error) {
	return listPayments(ctx, r.db, tenantID, bookingID)
}
