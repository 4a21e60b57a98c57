package jobs

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"rentshare-backend/internal/booking"
	"rentshare-backend/internal/domain"
)

type MockBookingRepo struct {
	mock.Mock
}

func (m *MockBookingRepo) Create(ctx context.Context, b *domain.Booking) error {
	return m.Called(ctx, b).Error(0)
}
func (m *MockBookingRepo) GetByID(ctx context.Context, id int32) (*domain.Booking, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}
func (m *MockBookingRepo) UpdateStatus(ctx context.Context, b *domain.Booking, from domain.BookingStatus) error {
	return m.Called(ctx, b, from).Error(0)
}
func (m *MockBookingRepo) Cancel(ctx context.Context, b *domain.Booking, from domain.BookingStatus, refund *domain.PointsTransaction) error {
	return m.Called(ctx, b, from, refund).Error(0)
}
func (m *MockBookingRepo) ListByStatus(ctx context.Context, statuses ...domain.BookingStatus) ([]domain.Booking, error) {
	args := m.Called(ctx, statuses)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Booking), args.Error(1)
}
func (m *MockBookingRepo) ListStartingBetween(ctx context.Context, status domain.BookingStatus, from, to time.Time) ([]domain.Booking, error) {
	args := m.Called(ctx, status, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Booking), args.Error(1)
}

type MockListingRepo struct {
	mock.Mock
}

func (m *MockListingRepo) GetByID(ctx context.Context, id int32) (*domain.Listing, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Listing), args.Error(1)
}

type MockUserRepo struct {
	mock.Mock
}

func (m *MockUserRepo) GetByID(ctx context.Context, id int32) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

type MockEmailService struct {
	mock.Mock
}

func (m *MockEmailService) SendBookingRequestNotification(ctx context.Context, ownerEmail, ownerName, renterName, listingTitle string, b *domain.Booking) error {
	return m.Called(ctx, ownerEmail, ownerName, renterName, listingTitle, b).Error(0)
}
func (m *MockEmailService) SendPickupReminder(ctx context.Context, renterEmail, renterName, listingTitle string, b *domain.Booking) error {
	return m.Called(ctx, renterEmail, renterName, listingTitle, b).Error(0)
}
func (m *MockEmailService) SendReturnReminder(ctx context.Context, renterEmail, renterName, listingTitle string, b *domain.Booking) error {
	return m.Called(ctx, renterEmail, renterName, listingTitle, b).Error(0)
}
func (m *MockEmailService) SendBookingCancelledNotification(ctx context.Context, email, name, listingTitle, reason string, b *domain.Booking) error {
	return m.Called(ctx, email, name, listingTitle, reason, b).Error(0)
}

type MockBookingService struct {
	mock.Mock
}

func (m *MockBookingService) result(args mock.Arguments) (*domain.Booking, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}
func (m *MockBookingService) CreateFromQuote(ctx context.Context, renterID int32, quoteID string) (*domain.Booking, error) {
	return m.result(m.Called(ctx, renterID, quoteID))
}
func (m *MockBookingService) MarkPaid(ctx context.Context, bookingID int32) (*domain.Booking, error) {
	return m.result(m.Called(ctx, bookingID))
}
func (m *MockBookingService) GetBooking(ctx context.Context, userID, bookingID int32) (*domain.Booking, booking.PickupWindowState, error) {
	args := m.Called(ctx, userID, bookingID)
	return args.Get(0).(*domain.Booking), args.Get(1).(booking.PickupWindowState), args.Error(2)
}
func (m *MockBookingService) ConfirmPickup(ctx context.Context, renterID, bookingID int32) (*domain.Booking, error) {
	return m.result(m.Called(ctx, renterID, bookingID))
}
func (m *MockBookingService) ConfirmReturn(ctx context.Context, userID, bookingID int32) (*domain.Booking, error) {
	return m.result(m.Called(ctx, userID, bookingID))
}
func (m *MockBookingService) Cancel(ctx context.Context, userID, bookingID int32) (*domain.Booking, error) {
	return m.result(m.Called(ctx, userID, bookingID))
}
func (m *MockBookingService) ExpireUnpaid(ctx context.Context, bookingID int32) (*domain.Booking, error) {
	return m.result(m.Called(ctx, bookingID))
}
func (m *MockBookingService) Window(b *domain.Booking) booking.PickupWindowState {
	return m.Called(b).Get(0).(booking.PickupWindowState)
}
