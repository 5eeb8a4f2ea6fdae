package http

import (
	"net/http"

	"github.com/gorilla/mux"
)

// RouterDeps bundles what the REST surface needs.
type RouterDeps struct {
	Bookings    *BookingHandler
	Payments    *PaymentHandler
	Auth        *AuthMiddleware
	Idempotency func(http.Handler) http.Handler
	// Ready reports whether backing stores are reachable. Nil means always ready.
	Ready func(r *http.Request) error
}

// NewRouter registers every route. Route names key the endpoint security table.
func NewRouter(d RouterDeps) *mux.Router {
	router := mux.NewRouter()
	router.Use(Recover, RequestLogging)

	router.HandleFunc("/healthz", healthz(d.Ready)).Methods(http.MethodGet).Name("Healthz")

	api := router.PathPrefix("/api/v1").Subrouter()
	api.Use(d.Auth.Handler)
	if d.Idempotency != nil {
		api.Use(d.Idempotency)
	}

	api.HandleFunc("/quotes", d.Bookings.CreateQuote).Methods(http.MethodPost).Name("CreateQuote")
	api.HandleFunc("/bookings", d.Bookings.CreateBooking).Methods(http.MethodPost).Name("CreateBooking")
	api.HandleFunc("/bookings", d.Bookings.ListBookings).Methods(http.MethodGet).Name("ListBookings")
	api.HandleFunc("/bookings/{id:[0-9]+}", d.Bookings.GetBooking).Methods(http.MethodGet).Name("GetBooking")
	api.HandleFunc("/bookings/{id:[0-9]+}/dates", d.Bookings.RequoteBooking).Methods(http.MethodPut).Name("RequoteBooking")
	api.HandleFunc("/bookings/{id:[0-9]+}/confirm", d.Bookings.ConfirmBooking).Methods(http.MethodPost).Name("ConfirmBooking")
	api.HandleFunc("/bookings/{id:[0-9]+}/cancel", d.Bookings.CancelBooking).Methods(http.MethodPost).Name("CancelBooking")
	api.HandleFunc("/bookings/{id:[0-9]+}/complete", d.Bookings.CompleteBooking).Methods(http.MethodPost).Name("CompleteBooking")
	api.HandleFunc("/bookings/{id:[0-9]+}/late-fee", d.Bookings.GetLateFee).Methods(http.MethodGet).Name("GetLateFee")
	api.HandleFunc("/bookings/{id:[0-9]+}/balance", d.Payments.GetBalance).Methods(http.MethodGet).Name("GetBalance")
	api.HandleFunc("/bookings/{id:[0-9]+}/payments", d.Payments.ListPayments).Methods(http.MethodGet).Name("ListPayments")
	api.HandleFunc("/payments", d.Payments.SubmitPayment).Methods(http.MethodPost).Name("SubmitPayment")
	api.HandleFunc("/payments/{id:[0-9]+}", d.Payments.UpdatePaymentStatus).Methods(http.MethodPut).Name("UpdatePaymentStatus")

	return router
}

func healthz(ready func(*http.Request) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if ready != nil {
			if err := ready(r); err != nil {
				writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable", "error": err.Error()})
				return
			}
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
