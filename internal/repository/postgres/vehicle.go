package postgres

import (
	"context"
	"database/sql"

	"rentdesk-backend/internal/domain"
	"rentdesk-backend/internal/logger"
	"rentdesk-backend/internal/repository"
)

type vehicleRepository struct {
	db *sql.DB
}

func NewVehicleRepository(db *sql.DB) repository.VehicleRepository {
	return &vehicleRepository{db: db}
}

func (r *vehicleRepository) GetByID(ctx context.Context, tenantID, id int32) (*domain.Vehicle, error) {
	logger.EnterMethod("vehicleRepository.GetByID", "tenantID", tenantID, "vehicleID", id)

	query := `SELECT id, tenant_id, branch_id, name, COALESCE(plate_number, ''),
	                 price_per_hour, price_per_day, price_per_week, price_per_month, price_per_year, late_fee_per_day
	          FROM vehicles WHERE id = $1 AND tenant_id = $2 AND deleted_at IS NULL`

	v := &domain.Vehicle{}
	err := r.db.QueryRowContext(ctx, query, id, tenantID).Scan(
		&v.ID, &v.TenantID, &v.BranchID, &v.Name, &v.PlateNumber,
		&v.Rates.PricePerHour, &v.Rates.PricePerDay, &v.Rates.PricePerWeek, &v.Rates.PricePerMonth, &v.Rates.PricePerYear,
		&v.LateFeePerDay,
	)
	if err != nil {
		logger.ExitMethodWithError("vehicleRepository.GetByID", err, "vehicleID", id)
		return nil, mapError(err)
	}

	logger.ExitMethod("vehicleRepository.GetByID", "vehicleID", id)
	return v, nil
}
