package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"rentdesk-backend/internal/security"
	"rentdesk-backend/internal/service"
	"rentdesk-backend/internal/utils"
)

type BookingHandler struct {
	bookingSvc service.BookingService
}

func NewBookingHandler(bookingSvc service.BookingService) *BookingHandler {
	return &BookingHandler{bookingSvc: bookingSvc}
}

// tenantFrom returns the tenant resolved by the auth middleware.
func tenantFrom(r *http.Request) (int32, error) {
	p, ok := security.PrincipalFromContext(r.Context())
	if !ok || p.TenantID == 0 {
		return 0, security.ErrUnauthenticated
	}
	return p.TenantID, nil
}

func pathID(r *http.Request, name string) (int32, bool) {
	id, err := strconv.ParseInt(mux.Vars(r)[name], 10, 32)
	if err != nil || id <= 0 {
		return 0, false
	}
	return int32(id), true
}

func (h *BookingHandler) CreateQuote(w http.ResponseWriter, r *http.Request) {
	tenantID, err := tenantFrom(r)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	var req quoteRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	interval, fields := req.toDomain()
	if fields != nil {
		writeValidationError(w, fields)
		return
	}

	q, err := h.bookingSvc.Quote(r.Context(), tenantID, req.VehicleID, interval)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, q)
}

func (h *BookingHandler) CreateBooking(w http.ResponseWriter, r *http.Request) {
	tenantID, err := tenantFrom(r)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	var req createBookingRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	interval, fields := req.toDomain()
	if fields != nil {
		writeValidationError(w, fields)
		return
	}

	b, err := h.bookingSvc.CreateBooking(r.Context(), tenantID, service.CreateBookingRequest{
		BranchID:   req.BranchID,
		CustomerID: req.CustomerID,
		VehicleID:  req.VehicleID,
		Interval:   interval,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, b)
}

func (h *BookingHandler) ListBookings(w http.ResponseWriter, r *http.Request) {
	tenantID, err := tenantFrom(r)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	q := r.URL.Query()
	page := queryInt32(q.Get("page"), 1)
	pageSize := queryInt32(q.Get("page_size"), 20)
	if pageSize > 100 {
		pageSize = 100
	}

	bookings, total, err := h.bookingSvc.ListBookings(r.Context(), tenantID, q.Get("status"), page, pageSize)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, listBookingsResponse{Bookings: bookings, Total: total, Page: page, PageSize: pageSize})
}

func queryInt32(raw string, def int32) int32 {
	v, err := strconv.ParseInt(raw, 10, 32)
	if err != nil || v <= 0 {
		return def
	}
	return int32(v)
}

func (h *BookingHandler) GetBooking(w http.ResponseWriter, r *http.Request) {
	serveEntity(w, r, func(tenantID, bookingID int32) (interface{}, error) {
		return h.bookingSvc.GetBooking(r.Context(), tenantID, bookingID)
	})
}

func (h *BookingHandler) RequoteBooking(w http.ResponseWriter, r *http.Request) {
	var req requoteRequest
	serveEntity(w, r, func(tenantID, bookingID int32) (interface{}, error) {
		if !decodeAndValidate(w, r, &req) {
			return nil, errResponded
		}
		interval, fields := req.toDomain()
		if fields != nil {
			writeValidationError(w, fields)
			return nil, errResponded
		}
		return h.bookingSvc.Requote(r.Context(), tenantID, bookingID, interval)
	})
}

func (h *BookingHandler) ConfirmBooking(w http.ResponseWriter, r *http.Request) {
	serveEntity(w, r, func(tenantID, bookingID int32) (interface{}, error) {
		return h.bookingSvc.ConfirmBooking(r.Context(), tenantID, bookingID)
	})
}

func (h *BookingHandler) CancelBooking(w http.ResponseWriter, r *http.Request) {
	serveEntity(w, r, func(tenantID, bookingID int32) (interface{}, error) {
		return h.bookingSvc.CancelBooking(r.Context(), tenantID, bookingID)
	})
}

func (h *BookingHandler) CompleteBooking(w http.ResponseWriter, r *http.Request) {
	serveEntity(w, r, func(tenantID, bookingID int32) (interface{}, error) {
		var returned time.Time
		var req completeBookingRequest
		// The body is optional; without it the vehicle is returned now.
		if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
			writeError(w, http.StatusBadRequest, "invalid_json", "invalid request body: "+err.Error())
			return nil, errResponded
		}
		if req.ActualReturnAt != "" {
			t, err := utils.ParseTimestamp(req.ActualReturnAt)
			if err != nil {
				writeValidationError(w, map[string]string{"actual_return_at": err.Error()})
				return nil, errResponded
			}
			returned = t
		}
		return h.bookingSvc.CompleteBooking(r.Context(), tenantID, bookingID, returned)
	})
}

func (h *BookingHandler) GetLateFee(w http.ResponseWriter, r *http.Request) {
	serveEntity(w, r, func(tenantID, bookingID int32) (interface{}, error) {
		var at time.Time
		if raw := r.URL.Query().Get("at"); raw != "" {
			t, err := utils.ParseTimestamp(raw)
			if err != nil {
				writeValidationError(w, map[string]string{"at": err.Error()})
				return nil, errResponded
			}
			at = t
		}
		fee, err := h.bookingSvc.LateFee(r.Context(), tenantID, bookingID, at)
		if err != nil {
			return nil, err
		}
		resp := lateFeeResponse{BookingID: bookingID, LateFee: fee}
		if !at.IsZero() {
			resp.EvaluatedAt = at.Format(time.RFC3339)
		}
		return resp, nil
	})
}

// errResponded tells serveEntity that fn already wrote the response.
var errResponded = errors.New("response already written")

// serveEntity resolves the tenant and {id} path variable, runs fn and writes its result.
func serveEntity(w http.ResponseWriter, r *http.Request, fn func(tenantID, id int32) (interface{}, error)) {
	tenantID, err := tenantFrom(r)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	id, ok := pathID(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid_argument", "invalid id")
		return
	}
	result, err := fn(tenantID, id)
	if err == errResponded {
		return
	}
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}
