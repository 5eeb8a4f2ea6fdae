package utils

import (
	"time"

	"github.com/shopspring/decimal"

	"rentdesk-backend/internal/domain"
)

const (
	hoursPerDay   = 24
	daysPerWeek   = 7
	daysPerMonth  = 30
	daysPerYear   = 365
	dayDuration   = hoursPerDay * time.Hour
	DefaultPlaces = 2
)

// RentalDuration is a rental interval split into whole days plus billable hours.
type RentalDuration struct {
	WholeDays      int `json:"whole_days"`
	RemainderHours int `json:"remainder_hours"`
}

// RentalCostBreakdown provides detailed cost breakdown
type RentalCostBreakdown struct {
	Years      int             `json:"years"`
	Months     int             `json:"months"`
	Weeks      int             `json:"weeks"`
	Days       int             `json:"days"`
	Hours      int             `json:"hours"`
	YearsCost  decimal.Decimal `json:"years_cost"`
	MonthsCost decimal.Decimal `json:"months_cost"`
	WeeksCost  decimal.Decimal `json:"weeks_cost"`
	DaysCost   decimal.Decimal `json:"days_cost"`
	HoursCost  decimal.Decimal `json:"hours_cost"`
	TotalCost  decimal.Decimal `json:"total_cost"`
}

// DecomposeDuration splits an interval into whole days and a remainder rounded up to the
// next whole hour, so any partial hour of use is billable. A remainder that rounds up to a
// full day carries into WholeDays.
func DecomposeDuration(interval domain.RentalInterval) (RentalDuration, error) {
	if err := interval.Validate(); err != nil {
		return RentalDuration{}, err
	}

	total := interval.EndAt.Sub(interval.StartAt)
	days := int(total / dayDuration)
	rem := total % dayDuration
	hours := int((rem + time.Hour - 1) / time.Hour)

	if hours == hoursPerDay {
		days++
		hours = 0
	}
	return RentalDuration{WholeDays: days, RemainderHours: hours}, nil
}

// CalculateRentalCost prices a duration against a rate card and rounds to cents.
func CalculateRentalCost(rates domain.RateCard, d RentalDuration) (decimal.Decimal, error) {
	b, err := CalculateRentalCostWithBreakdown(rates, d, DefaultPlaces)
	if err != nil {
		return decimal.Zero, err
	}
	return b.TotalCost, nil
}

// CalculateRentalCostWithBreakdown applies the tiers greedily, largest unit first. A tier
// only applies when its price is set. Whatever days remain are charged at the daily rate.
func CalculateRentalCostWithBreakdown(rates domain.RateCard, d RentalDuration, places int32) (RentalCostBreakdown, error) {
	if err := rates.Validate(); err != nil {
		return RentalCostBreakdown{}, err
	}
	if d.WholeDays < 0 || d.RemainderHours < 0 {
		return RentalCostBreakdown{}, &domain.MissingRateError{Reason: "duration must be positive"}
	}

	var b RentalCostBreakdown

	// Pure sub-day rental: only the hourly tier applies.
	if d.WholeDays == 0 {
		if !rates.HasHourly() {
			return RentalCostBreakdown{}, &domain.MissingRateError{Reason: "sub-day rental requires an hourly price"}
		}
		b.Hours = d.RemainderHours
		b.HoursCost = rates.PricePerHour.Mul(decimal.NewFromInt(int64(d.RemainderHours)))
		return finish(b, places)
	}

	remaining := d.WholeDays
	if remaining >= daysPerYear && rates.PricePerYear.IsPositive() {
		b.Years = remaining / daysPerYear
		b.YearsCost = rates.PricePerYear.Mul(decimal.NewFromInt(int64(b.Years)))
		remaining %= daysPerYear
	}
	if remaining >= daysPerMonth && rates.PricePerMonth.IsPositive() {
		b.Months = remaining / daysPerMonth
		b.MonthsCost = rates.PricePerMonth.Mul(decimal.NewFromInt(int64(b.Months)))
		remaining %= daysPerMonth
	}
	if remaining >= daysPerWeek && rates.PricePerWeek.IsPositive() {
		b.Weeks = remaining / daysPerWeek
		b.WeeksCost = rates.PricePerWeek.Mul(decimal.NewFromInt(int64(b.Weeks)))
		remaining %= daysPerWeek
	}
	b.Days = remaining
	b.DaysCost = rates.PricePerDay.Mul(decimal.NewFromInt(int64(remaining)))

	if d.RemainderHours > 0 && rates.HasHourly() {
		b.Hours = d.RemainderHours
		b.HoursCost = rates.PricePerHour.Mul(decimal.NewFromInt(int64(d.RemainderHours)))
	}
	return finish(b, places)
}

func finish(b RentalCostBreakdown, places int32) (RentalCostBreakdown, error) {
	b.TotalCost = RoundMoney(b.YearsCost.Add(b.MonthsCost).Add(b.WeeksCost).Add(b.DaysCost).Add(b.HoursCost), places)
	if !b.TotalCost.IsPositive() {
		// Every unit of the duration fell on a tier the rate card does not offer.
		return RentalCostBreakdown{}, &domain.MissingRateError{Reason: "no price tier on the rate card covers this duration"}
	}
	return b, nil
}

// QuoteInterval decomposes and prices an interval in one step.
func QuoteInterval(rates domain.RateCard, interval domain.RentalInterval, places int32) (RentalCostBreakdown, error) {
	d, err := DecomposeDuration(interval)
	if err != nil {
		return RentalCostBreakdown{}, err
	}
	return CalculateRentalCostWithBreakdown(rates, d, places)
}

// RoundMoney rounds half away from zero to the currency's minor-unit precision.
func RoundMoney(amount decimal.Decimal, places int32) decimal.Decimal {
	return amount.Round(places)
}
