package domain

import "github.com/shopspring/decimal"

// RateCard holds the per-unit prices of one vehicle. A zero price means the tier is unavailable.
type RateCard struct {
	PricePerHour  decimal.Decimal `json:"price_per_hour"`
	PricePerDay   decimal.Decimal `json:"price_per_day"`
	PricePerWeek  decimal.Decimal `json:"price_per_week"`
	PricePerMonth decimal.Decimal `json:"price_per_month"`
	PricePerYear  decimal.Decimal `json:"price_per_year"`
}

// Validate rejects negative prices.
func (r RateCard) Validate() error {
	fields := []struct {
		name  string
		price decimal.Decimal
	}{
		{"price_per_hour", r.PricePerHour},
		{"price_per_day", r.PricePerDay},
		{"price_per_week", r.PricePerWeek},
		{"price_per_month", r.PricePerMonth},
		{"price_per_year", r.PricePerYear},
	}
	for _, f := range fields {
		if err := NonNegative(f.name, f.price); err != nil {
			return err
		}
	}
	return nil
}

func (r RateCard) HasHourly() bool { return r.PricePerHour.IsPositive() }

func (r RateCard) HasAnyPrice() bool {
	return r.PricePerHour.IsPositive() ||
		r.PricePerDay.IsPositive() ||
		r.PricePerWeek.IsPositive() ||
		r.PricePerMonth.IsPositive() ||
		r.PricePerYear.IsPositive()
}

type Vehicle struct {
	ID            int32           `json:"id"`
	TenantID      int32           `json:"tenant_id"`
	BranchID      int32           `json:"branch_id"`
	Name          string          `json:"name"`
	PlateNumber   string          `json:"plate_number"`
	Rates         RateCard        `json:"rates"`
	LateFeePerDay decimal.Decimal `json:"late_fee_per_day"`
}
