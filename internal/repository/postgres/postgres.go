package postgres

import (
	"database/sql"

	"rentshare-backend/internal/repository"

	_ "github.com/lib/pq"
)

type Store struct {
	db *sql.DB
	repository.BookingRepository
	repository.ListingRepository
	repository.UserRepository
	repository.PointsRepository
	repository.NotificationRepository
}

func NewStore(db *sql.DB) *Store {
	return &Store{
		db:                     db,
		BookingRepository:      NewBookingRepository(db),
		ListingRepository:      NewListingRepository(db),
		UserRepository:         NewUserRepository(db),
		PointsRepository:       NewPointsRepository(db),
		NotificationRepository: NewNotificationRepository(db),
	}
}

// DB exposes the underlying handle for health checks.
func (s *Store) DB() *sql.DB {
	return s.db
}
