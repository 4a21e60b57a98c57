package http

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"rentshare-backend/internal/booking"
	"rentshare-backend/internal/domain"
	"rentshare-backend/internal/logger"
	"rentshare-backend/internal/pricing"
	"rentshare-backend/internal/service"
)

// HealthCheck reports whether a dependency is reachable.
type HealthCheck func(ctx context.Context) error

type Handler struct {
	quotes   service.QuoteService
	bookings service.BookingService
	checks   map[string]HealthCheck
}

func NewHandler(quotes service.QuoteService, bookings service.BookingService, checks map[string]HealthCheck) *Handler {
	return &Handler{quotes: quotes, bookings: bookings, checks: checks}
}

type createQuoteRequest struct {
	ListingID        int32  `json:"listing_id"`
	StartDate        string `json:"start_date"`
	EndDate          string `json:"end_date"`
	IncludeInsurance bool   `json:"include_insurance"`
	RedeemPoints     int64  `json:"redeem_points"`
}

type quoteResponse struct {
	*domain.Quote
	Receipt string `json:"receipt"`
}

type bookingResponse struct {
	Booking *domain.Booking           `json:"booking"`
	Window  booking.PickupWindowState `json:"window"`
}

func (h *Handler) CreateQuote(w http.ResponseWriter, r *http.Request) {
	var req createQuoteRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err))
		return
	}
	start, err := pricing.ParseDate(req.StartDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	end, err := pricing.ParseDate(req.EndDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	quote, err := h.quotes.CreateQuote(r.Context(), UserIDFromContext(r.Context()), req.ListingID, start, end, req.IncludeInsurance, req.RedeemPoints)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, quoteResponse{Quote: quote, Receipt: pricing.FormatCredited(quote.Pricing)})
}

type conversionResponse struct {
	Points int64   `json:"points"`
	Credit float64 `json:"credit"`
}

func (h *Handler) ConvertCredits(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	pointsParam, creditParam := q.Get("points"), q.Get("credit")
	if (pointsParam == "") == (creditParam == "") {
		writeError(w, http.StatusBadRequest, "exactly one of points or credit is required")
		return
	}

	if pointsParam != "" {
		points, err := strconv.ParseInt(pointsParam, 10, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, "points must be an integer")
			return
		}
		credit, err := h.quotes.ConvertPoints(points)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, conversionResponse{Points: points, Credit: credit})
		return
	}

	credit, err := strconv.ParseFloat(creditParam, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "credit must be a number")
		return
	}
	points, err := h.quotes.ConvertCredit(credit)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, conversionResponse{Points: points, Credit: credit})
}

type createBookingRequest struct {
	QuoteID string `json:"quote_id"`
}

func (h *Handler) CreateBooking(w http.ResponseWriter, r *http.Request) {
	var req createBookingRequest
	if err := decodeJSON(r, &req); err != nil || req.QuoteID == "" {
		writeError(w, http.StatusBadRequest, "quote_id is required")
		return
	}

	b, err := h.bookings.CreateFromQuote(r.Context(), UserIDFromContext(r.Context()), req.QuoteID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, bookingResponse{Booking: b, Window: h.bookings.Window(b)})
}

func (h *Handler) GetBooking(w http.ResponseWriter, r *http.Request) {
	id, ok := bookingID(w, r)
	if !ok {
		return
	}
	b, state, err := h.bookings.GetBooking(r.Context(), UserIDFromContext(r.Context()), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, bookingResponse{Booking: b, Window: state})
}

func (h *Handler) ConfirmPickup(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.bookings.ConfirmPickup)
}

func (h *Handler) ConfirmReturn(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.bookings.ConfirmReturn)
}

func (h *Handler) CancelBooking(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.bookings.Cancel)
}

func (h *Handler) MarkBookingPaid(w http.ResponseWriter, r *http.Request) {
	id, ok := bookingID(w, r)
	if !ok {
		return
	}
	if claims, ok := ClaimsFromContext(r.Context()); ok {
		logger.InfoContext(r.Context(), "Payment callback", "service", claims.Service, "bookingID", id)
	}
	b, err := h.bookings.MarkPaid(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, bookingResponse{Booking: b, Window: h.bookings.Window(b)})
}

func (h *Handler) transition(w http.ResponseWriter, r *http.Request, fn func(ctx context.Context, userID, bookingID int32) (*domain.Booking, error)) {
	id, ok := bookingID(w, r)
	if !ok {
		return
	}
	b, err := fn(r.Context(), UserIDFromContext(r.Context()), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, bookingResponse{Booking: b, Window: h.bookings.Window(b)})
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	status := map[string]string{}
	healthy := true
	for name, check := range h.checks {
		if err := check(ctx); err != nil {
			status[name] = err.Error()
			healthy = false
			continue
		}
		status[name] = "ok"
	}
	if !healthy {
		writeJSON(w, http.StatusServiceUnavailable, status)
		return
	}
	writeJSON(w, http.StatusOK, status)
}

func bookingID(w http.ResponseWriter, r *http.Request) (int32, bool) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 32)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "invalid booking id")
		return 0, false
	}
	return int32(id), true
}
