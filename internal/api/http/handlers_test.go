package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"rentshare-backend/internal/booking"
	"rentshare-backend/internal/domain"
	"rentshare-backend/internal/logger"
	"rentshare-backend/internal/pricing"
	"rentshare-backend/internal/security"
	"rentshare-backend/internal/service"
)

type mockQuoteService struct {
	mock.Mock
}

func (m *mockQuoteService) CreateQuote(ctx context.Context, renterID, listingID int32, start, end time.Time, includeInsurance bool, redeemPoints int64) (*domain.Quote, error) {
	args := m.Called(ctx, renterID, listingID, start, end, includeInsurance, redeemPoints)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Quote), args.Error(1)
}
func (m *mockQuoteService) ConvertPoints(points int64) (float64, error) {
	args := m.Called(points)
	return args.Get(0).(float64), args.Error(1)
}
func (m *mockQuoteService) ConvertCredit(credit float64) (int64, error) {
	args := m.Called(credit)
	return args.Get(0).(int64), args.Error(1)
}

type mockBookingService struct {
	mock.Mock
}

func (m *mockBookingService) result(args mock.Arguments) (*domain.Booking, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}
func (m *mockBookingService) CreateFromQuote(ctx context.Context, renterID int32, quoteID string) (*domain.Booking, error) {
	return m.result(m.Called(ctx, renterID, quoteID))
}
func (m *mockBookingService) MarkPaid(ctx context.Context, bookingID int32) (*domain.Booking, error) {
	return m.result(m.Called(ctx, bookingID))
}
func (m *mockBookingService) GetBooking(ctx context.Context, userID, bookingID int32) (*domain.Booking, booking.PickupWindowState, error) {
	args := m.Called(ctx, userID, bookingID)
	if args.Get(0) == nil {
		return nil, booking.PickupWindowState{}, args.Error(2)
	}
	return args.Get(0).(*domain.Booking), args.Get(1).(booking.PickupWindowState), args.Error(2)
}
func (m *mockBookingService) ConfirmPickup(ctx context.Context, renterID, bookingID int32) (*domain.Booking, error) {
	return m.result(m.Called(ctx, renterID, bookingID))
}
func (m *mockBookingService) ConfirmReturn(ctx context.Context, userID, bookingID int32) (*domain.Booking, error) {
	return m.result(m.Called(ctx, userID, bookingID))
}
func (m *mockBookingService) Cancel(ctx context.Context, userID, bookingID int32) (*domain.Booking, error) {
	return m.result(m.Called(ctx, userID, bookingID))
}
func (m *mockBookingService) ExpireUnpaid(ctx context.Context, bookingID int32) (*domain.Booking, error) {
	return m.result(m.Called(ctx, bookingID))
}
func (m *mockBookingService) Window(b *domain.Booking) booking.PickupWindowState {
	return m.Called(b).Get(0).(booking.PickupWindowState)
}

const testSecret = "handler-test-secret"

type apiFixture struct {
	quotes   *mockQuoteService
	bookings *mockBookingService
	tokens   security.TokenManager
	router   http.Handler
}

func newAPIFixture(t *testing.T, checks map[string]HealthCheck, quoteLimiter func(http.Handler) http.Handler) *apiFixture {
	t.Helper()
	f := &apiFixture{
		quotes:   new(mockQuoteService),
		bookings: new(mockBookingService),
		tokens:   security.NewTokenManager(testSecret),
	}
	f.router = NewRouter(NewHandler(f.quotes, f.bookings, checks), NewAuthMiddleware(f.tokens), quoteLimiter)
	return f
}

func (f *apiFixture) do(t *testing.T, method, path, body, token string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func (f *apiFixture) accessToken(t *testing.T, userID int32) string {
	t.Helper()
	token, err := f.tokens.GenerateAccessToken(userID, "user@example.com")
	require.NoError(t, err)
	return token
}

func TestHealth(t *testing.T) {
	ok := func(context.Context) error { return nil }
	down := func(context.Context) error { return errors.New("connection refused") }

	f := newAPIFixture(t, map[string]HealthCheck{"postgres": ok, "redis": ok}, nil)
	rec := f.do(t, http.MethodGet, "/healthz", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"postgres":"ok","redis":"ok"}`, rec.Body.String())

	f = newAPIFixture(t, map[string]HealthCheck{"postgres": ok, "redis": down}, nil)
	rec = f.do(t, http.MethodGet, "/healthz", "", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "connection refused")
}

func TestAuth(t *testing.T) {
	f := newAPIFixture(t, nil, nil)

	rec := f.do(t, http.MethodGet, "/api/v1/bookings/11", "", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = f.do(t, http.MethodGet, "/api/v1/bookings/11", "", "garbage")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// Access tokens cannot reach the payment callback.
	rec = f.do(t, http.MethodPost, "/api/v1/bookings/11/payment", "", f.accessToken(t, 2))
	assert.Equal(t, http.StatusForbidden, rec.Code)

	// Service tokens cannot act as a user.
	serviceToken, err := f.tokens.GenerateServiceToken("payments")
	require.NoError(t, err)
	rec = f.do(t, http.MethodGet, "/api/v1/bookings/11", "", serviceToken)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestAuth_LogsRejectedTokens(t *testing.T) {
	var buf bytes.Buffer
	logger.InitializeWithWriter(&buf, "info", "text")
	t.Cleanup(func() { logger.Initialize("info", "text") })
	f := newAPIFixture(t, nil, nil)

	f.do(t, http.MethodGet, "/api/v1/bookings/11", "", "garbage")
	assert.Contains(t, buf.String(), "level=WARN")
	assert.Contains(t, buf.String(), "Rejected bearer token")
	assert.Contains(t, buf.String(), "HTTP request")
	assert.Contains(t, buf.String(), "status=401")

	buf.Reset()
	f.do(t, http.MethodPost, "/api/v1/bookings/11/payment", "", f.accessToken(t, 2))
	assert.Contains(t, buf.String(), "Token type not allowed on route")
	assert.Contains(t, buf.String(), "status=403")
}

func TestMarkBookingPaid(t *testing.T) {
	f := newAPIFixture(t, nil, nil)
	paid := &domain.Booking{ID: 11, Status: domain.BookingStatusConfirmed}
	f.bookings.On("MarkPaid", mock.Anything, int32(11)).Return(paid, nil)
	f.bookings.On("Window", paid).Return(booking.PickupWindowState{IsBeforePickupPeriod: true})

	serviceToken, err := f.tokens.GenerateServiceToken("payments")
	require.NoError(t, err)
	rec := f.do(t, http.MethodPost, "/api/v1/bookings/11/payment", "", serviceToken)
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "confirmed", body["booking"]["status"])
	assert.Equal(t, true, body["window"]["is_before_pickup_period"])
}

func TestCreateQuote(t *testing.T) {
	engine := pricing.NewEngine(pricing.DefaultRates())
	breakdown := engine.ComputeBreakdown(pricing.Input{DailyRate: 50, NumberOfDays: 4, IncludeInsurance: true})
	start := time.Date(2026, 10, 20, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 10, 23, 0, 0, 0, 0, time.UTC)

	t.Run("Success", func(t *testing.T) {
		f := newAPIFixture(t, nil, nil)
		quote := &domain.Quote{ID: "q-1", ListingID: 5, RenterID: 2, StartDate: start, EndDate: end, Pricing: pricing.WithoutCredit(breakdown)}
		f.quotes.On("CreateQuote", mock.Anything, int32(2), int32(5), start, end, true, int64(0)).Return(quote, nil)

		rec := f.do(t, http.MethodPost, "/api/v1/quotes",
			`{"listing_id":5,"start_date":"2026-10-20","end_date":"2026-10-23","include_insurance":true}`, f.accessToken(t, 2))
		require.Equal(t, http.StatusCreated, rec.Code)

		var body map[string]any
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, "q-1", body["id"])
		assert.Contains(t, body["receipt"], "$250.00")
		pricingJSON := body["pricing"].(map[string]any)
		assert.Equal(t, 250.0, pricingJSON["total_renter_pays"])
	})

	t.Run("BadDate", func(t *testing.T) {
		f := newAPIFixture(t, nil, nil)
		rec := f.do(t, http.MethodPost, "/api/v1/quotes",
			`{"listing_id":5,"start_date":"10/20/2026","end_date":"2026-10-23"}`, f.accessToken(t, 2))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		f.quotes.AssertNotCalled(t, "CreateQuote")
	})

	t.Run("UnknownField", func(t *testing.T) {
		f := newAPIFixture(t, nil, nil)
		rec := f.do(t, http.MethodPost, "/api/v1/quotes", `{"listing":5}`, f.accessToken(t, 2))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("ServiceRejects", func(t *testing.T) {
		f := newAPIFixture(t, nil, nil)
		f.quotes.On("CreateQuote", mock.Anything, int32(2), int32(5), start, end, false, int64(0)).
			Return(nil, service.ErrInvalidInput)
		rec := f.do(t, http.MethodPost, "/api/v1/quotes",
			`{"listing_id":5,"start_date":"2026-10-20","end_date":"2026-10-23"}`, f.accessToken(t, 2))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestConvertCredits(t *testing.T) {
	f := newAPIFixture(t, nil, nil)
	token := f.accessToken(t, 2)
	f.quotes.On("ConvertPoints", int64(100)).Return(10.0, nil)
	f.quotes.On("ConvertCredit", 12.3).Return(int64(123), nil)

	rec := f.do(t, http.MethodGet, "/api/v1/credits/convert?points=100", "", token)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"points":100,"credit":10}`, rec.Body.String())

	rec = f.do(t, http.MethodGet, "/api/v1/credits/convert?credit=12.3", "", token)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"points":123,"credit":12.3}`, rec.Body.String())

	rec = f.do(t, http.MethodGet, "/api/v1/credits/convert?points=1&credit=2", "", token)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.do(t, http.MethodGet, "/api/v1/credits/convert?points=abc", "", token)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestBookingEndpoints_ErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		method string
		path   string
		body   string
		setup  func(b *mockBookingService)
		status int
	}{
		{"QuoteExpired", http.MethodPost, "/api/v1/bookings", `{"quote_id":"q-1"}`, func(b *mockBookingService) {
			b.On("CreateFromQuote", mock.Anything, int32(2), "q-1").Return(nil, service.ErrQuoteExpired)
		}, http.StatusGone},
		{"MissingQuoteID", http.MethodPost, "/api/v1/bookings", `{}`, func(*mockBookingService) {}, http.StatusBadRequest},
		{"InsufficientPoints", http.MethodPost, "/api/v1/bookings", `{"quote_id":"q-1"}`, func(b *mockBookingService) {
			b.On("CreateFromQuote", mock.Anything, int32(2), "q-1").Return(nil, service.ErrInsufficientPoints)
		}, http.StatusUnprocessableEntity},
		{"NotFound", http.MethodGet, "/api/v1/bookings/11", "", func(b *mockBookingService) {
			b.On("GetBooking", mock.Anything, int32(2), int32(11)).Return(nil, nil, service.ErrNotFound)
		}, http.StatusNotFound},
		{"NotParticipant", http.MethodGet, "/api/v1/bookings/11", "", func(b *mockBookingService) {
			b.On("GetBooking", mock.Anything, int32(2), int32(11)).Return(nil, nil, service.ErrUnauthorized)
		}, http.StatusForbidden},
		{"PickupClosed", http.MethodPost, "/api/v1/bookings/11/pickup", "", func(b *mockBookingService) {
			b.On("ConfirmPickup", mock.Anything, int32(2), int32(11)).Return(nil, service.ErrPickupNotAvailable)
		}, http.StatusConflict},
		{"ReturnClosed", http.MethodPost, "/api/v1/bookings/11/return", "", func(b *mockBookingService) {
			b.On("ConfirmReturn", mock.Anything, int32(2), int32(11)).Return(nil, service.ErrReturnNotAvailable)
		}, http.StatusConflict},
		{"CancelFailsInternally", http.MethodPost, "/api/v1/bookings/11/cancel", "", func(b *mockBookingService) {
			b.On("Cancel", mock.Anything, int32(2), int32(11)).Return(nil, errors.New("db down"))
		}, http.StatusInternalServerError},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			f := newAPIFixture(t, nil, nil)
			tc.setup(f.bookings)
			rec := f.do(t, tc.method, tc.path, tc.body, f.accessToken(t, 2))
			assert.Equal(t, tc.status, rec.Code)
			assert.NotContains(t, rec.Body.String(), "db down")
		})
	}
}

func TestGetBooking(t *testing.T) {
	f := newAPIFixture(t, nil, nil)
	days := 3
	b := &domain.Booking{ID: 11, Status: domain.BookingStatusConfirmed}
	state := booking.PickupWindowState{
		IsWithinPickupPeriod: true,
		CanConfirmPickup:     true,
		ShowPickupButton:     true,
		DaysUntilReturn:      &days,
		PickupButtonText:     booking.ButtonConfirmPickup,
	}
	f.bookings.On("GetBooking", mock.Anything, int32(2), int32(11)).Return(b, state, nil)

	rec := f.do(t, http.MethodGet, "/api/v1/bookings/11", "", f.accessToken(t, 2))
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Booking domain.Booking `json:"booking"`
		Window  map[string]any `json:"window"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, int32(11), body.Booking.ID)
	assert.Equal(t, "Confirm Pickup", body.Window["pickup_button_text"])
	assert.Equal(t, 3.0, body.Window["days_until_return"])
}

func TestConfirmPickup_Success(t *testing.T) {
	f := newAPIFixture(t, nil, nil)
	picked := &domain.Booking{ID: 11, Status: domain.BookingStatusPickedUp}
	f.bookings.On("ConfirmPickup", mock.Anything, int32(2), int32(11)).Return(picked, nil)
	f.bookings.On("Window", picked).Return(booking.PickupWindowState{CanReturn: true, PickupButtonText: booking.ButtonConfirmReturn})

	rec := f.do(t, http.MethodPost, "/api/v1/bookings/11/pickup", "", f.accessToken(t, 2))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"pickup_button_text":"Confirm Return"`)
}

func TestQuoteRateLimit(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	limiterMW, err := NewRateLimiter(client, "2-M", "quotes")
	require.NoError(t, err)

	f := newAPIFixture(t, nil, limiterMW.Handler)
	f.quotes.On("CreateQuote", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(nil, service.ErrNotFound)

	body := `{"listing_id":5,"start_date":"2026-10-20","end_date":"2026-10-23"}`
	renter := f.accessToken(t, 2)
	assert.Equal(t, http.StatusNotFound, f.do(t, http.MethodPost, "/api/v1/quotes", body, renter).Code)
	assert.Equal(t, http.StatusNotFound, f.do(t, http.MethodPost, "/api/v1/quotes", body, renter).Code)
	assert.Equal(t, http.StatusTooManyRequests, f.do(t, http.MethodPost, "/api/v1/quotes", body, renter).Code)

	// Limits are per user.
	assert.Equal(t, http.StatusNotFound, f.do(t, http.MethodPost, "/api/v1/quotes", body, f.accessToken(t, 7)).Code)
}

func TestNewRateLimiter_InvalidRate(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	_, err := NewRateLimiter(client, "lots", "quotes")
	assert.Error(t, err)
}
