package service

import (
	"context"
	"time"

	"rentshare-backend/internal/booking"
	"rentshare-backend/internal/domain"
)

type QuoteService interface {
	CreateQuote(ctx context.Context, renterID, listingID int32, start, end time.Time, includeInsurance bool, redeemPoints int64) (*domain.Quote, error)
	ConvertPoints(points int64) (float64, error)
	ConvertCredit(credit float64) (int64, error)
}

type BookingService interface {
	CreateFromQuote(ctx context.Context, renterID int32, quoteID string) (*domain.Booking, error)
	MarkPaid(ctx context.Context, bookingID int32) (*domain.Booking, error)
	GetBooking(ctx context.Context, userID, bookingID int32) (*domain.Booking, booking.PickupWindowState, error)
	ConfirmPickup(ctx context.Context, renterID, bookingID int32) (*domain.Booking, error)
	ConfirmReturn(ctx context.Context, userID, bookingID int32) (*domain.Booking, error)
	Cancel(ctx context.Context, userID, bookingID int32) (*domain.Booking, error)
	ExpireUnpaid(ctx context.Context, bookingID int32) (*domain.Booking, error)
	// Window evaluates b at the service clock's current instant.
	Window(b *domain.Booking) booking.PickupWindowState
}

type EmailService interface {
	SendBookingRequestNotification(ctx context.Context, ownerEmail, ownerName, renterName, listingTitle string, b *domain.Booking) error
	SendPickupReminder(ctx context.Context, renterEmail, renterName, listingTitle string, b *domain.Booking) error
	SendReturnReminder(ctx context.Context, renterEmail, renterName, listingTitle string, b *domain.Booking) error
	SendBookingCancelledNotification(ctx context.Context, email, name, listingTitle, reason string, b *domain.Booking) error
}

// QuoteStore holds quotes until they are booked or expire.
type QuoteStore interface {
	Put(ctx context.Context, quote *domain.Quote, ttl time.Duration) error
	// Take claims a quote. Once it returns a quote no other caller can.
	Take(ctx context.Context, id string) (*domain.Quote, bool, error)
}
