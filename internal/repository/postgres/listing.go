package postgres

import (
	"context"
	"database/sql"
	"time"

	"rentshare-backend/internal/domain"
	"rentshare-backend/internal/repository"
)

type listingRepository struct {
	db *sql.DB
}

func NewListingRepository(db *sql.DB) repository.ListingRepository {
	return &listingRepository{db: db}
}

func (r *listingRepository) GetByID(ctx context.Context, id int32) (*domain.Listing, error) {
	l := &domain.Listing{}
	query := `SELECT id, owner_id, title, daily_rate, COALESCE(security_deposit, 0), status, created_on FROM listings WHERE id = $1`
	var createdOn time.Time
	err := r.db.QueryRowContext(ctx, query, id).Scan(&l.ID, &l.OwnerID, &l.Title, &l.DailyRate, &l.SecurityDeposit, &l.Status, &createdOn)
	if err != nil {
		return nil, err
	}
	l.CreatedOn = createdOn.Format("2006-01-02")
	return l, nil
}
