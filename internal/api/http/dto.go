package http

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/shopspring/decimal"

	"rentdesk-backend/internal/domain"
	"rentdesk-backend/internal/utils"
)

const maxBodyBytes = 1 << 20

type intervalRequest struct {
	StartDate string `json:"start_date" validate:"required"`
	EndDate   string `json:"end_date" validate:"required"`
}

func (i intervalRequest) toDomain() (domain.RentalInterval, map[string]string) {
	fields := map[string]string{}
	start, err := utils.ParseTimestamp(i.StartDate)
	if err != nil {
		fields["start_date"] = err.Error()
	}
	end, err := utils.ParseTimestamp(i.EndDate)
	if err != nil {
		fields["end_date"] = err.Error()
	}
	if len(fields) > 0 {
		return domain.RentalInterval{}, fields
	}
	return domain.RentalInterval{StartAt: start, EndAt: end}, nil
}

type quoteRequest struct {
	VehicleID int32 `json:"vehicle_id" validate:"required,gt=0"`
	intervalRequest
}

type createBookingRequest struct {
	VehicleID  int32 `json:"vehicle_id" validate:"required,gt=0"`
	CustomerID int32 `json:"customer_id" validate:"required,gt=0"`
	BranchID   int32 `json:"branch_id" validate:"omitempty,gt=0"`
	intervalRequest
}

type requoteRequest struct {
	intervalRequest
}

type completeBookingRequest struct {
	ActualReturnAt string `json:"actual_return_at"`
}

// submitPaymentRequest deliberately has no is_deposit, paid_amount or late_fee fields: those
// are computed server-side and any client values are dropped during decoding.
type submitPaymentRequest struct {
	BookingID     int32           `json:"booking_id" validate:"required,gt=0"`
	CustomerID    int32           `json:"customer_id" validate:"required,gt=0"`
	Amount        decimal.Decimal `json:"amount"`
	PaymentMethod string          `json:"payment_method" validate:"required,oneof=cash card bank_transfer online"`
	IsPartial     bool            `json:"is_partial"`
	PartialAmount decimal.Decimal `json:"partial_amount"`
	SplitDetails  *string         `json:"split_details" validate:"omitempty,max=2000"`
}

func (p submitPaymentRequest) toDomain() domain.PaymentRequest {
	return domain.PaymentRequest{
		CustomerID:    p.CustomerID,
		BookingID:     p.BookingID,
		Amount:        p.Amount,
		Method:        domain.PaymentMethod(p.PaymentMethod),
		IsPartial:     p.IsPartial,
		PartialAmount: p.PartialAmount,
		SplitDetails:  p.SplitDetails,
	}
}

type updatePaymentStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=completed failed refunded"`
}

type listBookingsResponse struct {
	Bookings []domain.Booking `json:"bookings"`
	Total    int32            `json:"total"`
	Page     int32            `json:"page"`
	PageSize int32            `json:"page_size"`
}

type lateFeeResponse struct {
	BookingID   int32           `json:"booking_id"`
	EvaluatedAt string          `json:"evaluated_at,omitempty"`
	LateFee     decimal.Decimal `json:"late_fee"`
}

type paymentsResponse struct {
	Payments []domain.Payment `json:"payments"`
}

// decodeAndValidate reads a JSON body into dst and runs its validation rules. It writes the
// error response itself and reports false when the request must stop.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", fmt.Sprintf("invalid request body: %v", err))
		return false
	}
	if fields := utils.ValidateStruct(dst); fields != nil {
		writeValidationError(w, fields)
		return false
	}
	return true
}
