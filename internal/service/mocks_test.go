package service_test

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"rentshare-backend/internal/domain"
)

type MockBookingRepo struct {
	mock.Mock
}

func (m *MockBookingRepo) Create(ctx context.Context, b *domain.Booking) error {
	args := m.Called(ctx, b)
	return args.Error(0)
}
func (m *MockBookingRepo) GetByID(ctx context.Context, id int32) (*domain.Booking, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}
func (m *MockBookingRepo) UpdateStatus(ctx context.Context, b *domain.Booking, from domain.BookingStatus) error {
	args := m.Called(ctx, b, from)
	return args.Error(0)
}
func (m *MockBookingRepo) Cancel(ctx context.Context, b *domain.Booking, from domain.BookingStatus, refund *domain.PointsTransaction) error {
	args := m.Called(ctx, b, from, refund)
	if args.Error(0) == nil {
		b.Status = domain.BookingStatusCancelled
	}
	return args.Error(0)
}
func (m *MockBookingRepo) ListByStatus(ctx context.Context, statuses ...domain.BookingStatus) ([]domain.Booking, error) {
	args := m.Called(ctx, statuses)
	return args.Get(0).([]domain.Booking), args.Error(1)
}
func (m *MockBookingRepo) ListStartingBetween(ctx context.Context, status domain.BookingStatus, from, to time.Time) ([]domain.Booking, error) {
	args := m.Called(ctx, status, from, to)
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

type MockPointsRepo struct {
	mock.Mock
}

func (m *MockPointsRepo) GetBalance(ctx context.Context, userID int32) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}
func (m *MockPointsRepo) CreateTransaction(ctx context.Context, tx *domain.PointsTransaction) error {
	args := m.Called(ctx, tx)
	return args.Error(0)
}

type MockNotificationRepo struct {
	mock.Mock
}

func (m *MockNotificationRepo) Create(ctx context.Context, n *domain.Notification) error {
	args := m.Called(ctx, n)
	return args.Error(0)
}

type MockQuoteStore struct {
	mock.Mock
}

func (m *MockQuoteStore) Put(ctx context.Context, q *domain.Quote, ttl time.Duration) error {
	args := m.Called(ctx, q, ttl)
	return args.Error(0)
}
func (m *MockQuoteStore) Take(ctx context.Context, id string) (*domain.Quote, bool, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).(*domain.Quote), args.Bool(1), args.Error(2)
}

type MockEmailService struct {
	mock.Mock
}

func (m *MockEmailService) SendBookingRequestNotification(ctx context.Context, ownerEmail, ownerName, renterName, listingTitle string, b *domain.Booking) error {
	args := m.Called(ctx, ownerEmail, ownerName, renterName, listingTitle, b)
	return args.Error(0)
}
func (m *MockEmailService) SendPickupReminder(ctx context.Context, renterEmail, renterName, listingTitle string, b *domain.Booking) error {
	args := m.Called(ctx, renterEmail, renterName, listingTitle, b)
	return args.Error(0)
}
func (m *MockEmailService) SendReturnReminder(ctx context.Context, renterEmail, renterName, listingTitle string, b *domain.Booking) error {
	args := m.Called(ctx, renterEmail, renterName, listingTitle, b)
	return args.Error(0)
}
func (m *MockEmailService) SendBookingCancelledNotification(ctx context.Context, email, name, listingTitle, reason string, b *domain.Booking) error {
	args := m.Called(ctx, email, name, listingTitle, reason, b)
	return args.Error(0)
}
