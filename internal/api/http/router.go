package http

import (
	"net/http"

	"github.com/gorilla/mux"
)

// NewRouter wires the API routes. Route names key the security levels in
// config.RouteSecurityConfig. quoteLimiter may be nil to disable rate limiting.
func NewRouter(h *Handler, auth *AuthMiddleware, quoteLimiter func(http.Handler) http.Handler) *mux.Router {
	router := mux.NewRouter()
	router.Use(LoggingMiddleware, auth.Handler)

	router.HandleFunc("/healthz", h.Health).Methods(http.MethodGet).Name("Health")

	api := router.PathPrefix("/api/v1").Subrouter()

	var createQuote http.Handler = http.HandlerFunc(h.CreateQuote)
	if quoteLimiter != nil {
		createQuote = quoteLimiter(createQuote)
	}
	api.Handle("/quotes", createQuote).Methods(http.MethodPost).Name("CreateQuote")
	api.HandleFunc("/credits/convert", h.ConvertCredits).Methods(http.MethodGet).Name("ConvertCredits")

	api.HandleFunc("/bookings", h.CreateBooking).Methods(http.MethodPost).Name("CreateBooking")
	api.HandleFunc("/bookings/{id:[0-9]+}", h.GetBooking).Methods(http.MethodGet).Name("GetBooking")
	api.HandleFunc("/bookings/{id:[0-9]+}/pickup", h.ConfirmPickup).Methods(http.MethodPost).Name("ConfirmPickup")
	api.HandleFunc("/bookings/{id:[0-9]+}/return", h.ConfirmReturn).Methods(http.MethodPost).Name("ConfirmReturn")
	api.HandleFunc("/bookings/{id:[0-9]+}/cancel", h.CancelBooking).Methods(http.MethodPost).Name("CancelBooking")
	api.HandleFunc("/bookings/{id:[0-9]+}/payment", h.MarkBookingPaid).Methods(http.MethodPost).Name("MarkBookingPaid")

	return router
}
