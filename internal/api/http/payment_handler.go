package http

import (
	"net/http"

	"rentdesk-backend/internal/domain"
	"rentdesk-backend/internal/service"
)

type PaymentHandler struct {
	paymentSvc service.PaymentService
}

func NewPaymentHandler(paymentSvc service.PaymentService) *PaymentHandler {
	return &PaymentHandler{paymentSvc: paymentSvc}
}

func (h *PaymentHandler) SubmitPayment(w http.ResponseWriter, r *http.Request) {
	tenantID, err := tenantFrom(r)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	var req submitPaymentRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	p, err := h.paymentSvc.SubmitPayment(r.Context(), tenantID, req.toDomain())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

func (h *PaymentHandler) UpdatePaymentStatus(w http.ResponseWriter, r *http.Request) {
	serveEntity(w, r, func(tenantID, paymentID int32) (interface{}, error) {
		var req updatePaymentStatusRequest
		if !decodeAndValidate(w, r, &req) {
			return nil, errResponded
		}
		return h.paymentSvc.UpdatePaymentStatus(r.Context(), tenantID, paymentID, domain.PaymentStatus(req.Status))
	})
}

func (h *PaymentHandler) GetBalance(w http.ResponseWriter, r *http.Request) {
	serveEntity(w, r, func(tenantID, bookingID int32) (interface{}, error) {
		return h.paymentSvc.GetBalance(r.Context(), tenantID, bookingID)
	})
}

func (h *PaymentHandler) ListPayments(w http.ResponseWriter, r *http.Request) {
	serveEntity(w, r, func(tenantID, bookingID int32) (interface{}, error) {
		payments, err := h.paymentSvc.ListPayments(r.Context(), tenantID, bookingID)
		if err != nil {
			return nil, err
		}
		if payments == nil {
			payments = []domain.Payment{}
		}
		return paymentsResponse{Payments: payments}, nil
	})
}
