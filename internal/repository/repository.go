package repository

import (
	"context"
	"errors"
	"time"

	"rentshare-backend/internal/domain"
)

// ErrInsufficientBalance is returned when a points transaction would take a
// user's balance below zero.
var ErrInsufficientBalance = errors.New("insufficient points balance")

// ErrStatusChanged is returned when a booking no longer has the status a
// transition was checked against.
var ErrStatusChanged = errors.New("booking status changed")

type BookingRepository interface {
	Create(ctx context.Context, booking *domain.Booking) error
	GetByID(ctx context.Context, id int32) (*domain.Booking, error)
	// UpdateStatus persists Status, PickedUpAt and ReturnedAt if the stored
	// status is still from, and returns ErrStatusChanged otherwise.
	UpdateStatus(ctx context.Context, booking *domain.Booking, from domain.BookingStatus) error
	// Cancel stores booking as cancelled under the same condition as
	// UpdateStatus and, when refund is not nil, records it in the same
	// database transaction.
	Cancel(ctx context.Context, booking *domain.Booking, from domain.BookingStatus, refund *domain.PointsTransaction) error
	ListByStatus(ctx context.Context, statuses ...domain.BookingStatus) ([]domain.Booking, error)
	// ListStartingBetween returns bookings in status whose start date is in [from, to].
	ListStartingBetween(ctx context.Context, status domain.BookingStatus, from, to time.Time) ([]domain.Booking, error)
}

type ListingRepository interface {
	GetByID(ctx context.Context, id int32) (*domain.Listing, error)
}

type UserRepository interface {
	GetByID(ctx context.Context, id int32) (*domain.User, error)
}

type PointsRepository interface {
	GetBalance(ctx context.Context, userID int32) (int64, error)
	// CreateTransaction records tx and applies tx.Points to the user's balance
	// atomically.
	CreateTransaction(ctx context.Context, tx *domain.PointsTransaction) error
}

type NotificationRepository interface {
	Create(ctx context.Context, notification *domain.Notification) error
}
