package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/lib/pq"

	"rentshare-backend/internal/domain"
	"rentshare-backend/internal/logger"
	"rentshare-backend/internal/repository"
)

const bookingColumns = `id, listing_id, renter_id, owner_id, status, start_date, end_date,
	daily_rate, number_of_days, include_insurance, security_deposit, total_renter_pays, owner_receives,
	credit_applied, points_redeemed, final_total, picked_up_at, returned_at, created_on, updated_on`

type bookingRepository struct {
	db *sql.DB
}

func NewBookingRepository(db *sql.DB) repository.BookingRepository {
	return &bookingRepository{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBooking(row rowScanner) (*domain.Booking, error) {
	b := &domain.Booking{}
	var pickedUpAt, returnedAt sql.NullTime
	err := row.Scan(&b.ID, &b.ListingID, &b.RenterID, &b.OwnerID, &b.Status, &b.StartDate, &b.EndDate,
		&b.DailyRate, &b.NumberOfDays, &b.IncludeInsurance, &b.SecurityDeposit, &b.TotalRenterPays, &b.OwnerReceives,
		&b.CreditApplied, &b.PointsRedeemed, &b.FinalTotal, &pickedUpAt, &returnedAt, &b.CreatedOn, &b.UpdatedOn)
	if err != nil {
		return nil, err
	}
	if pickedUpAt.Valid {
		b.PickedUpAt = &pickedUpAt.Time
	}
	if returnedAt.Valid {
		b.ReturnedAt = &returnedAt.Time
	}
	return b, nil
}

func (r *bookingRepository) Create(ctx context.Context, b *domain.Booking) error {
	query := `INSERT INTO bookings (listing_id, renter_id, owner_id, status, start_date, end_date,
	          daily_rate, number_of_days, include_insurance, security_deposit, total_renter_pays, owner_receives,
	          credit_applied, points_redeemed, final_total, created_on, updated_on)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17) RETURNING id`
	logger.DatabaseCall("INSERT", "bookings", "listingID", b.ListingID, "renterID", b.RenterID)

	now := time.Now()
	b.CreatedOn = now
	b.UpdatedOn = now
	err := r.db.QueryRowContext(ctx, query, b.ListingID, b.RenterID, b.OwnerID, b.Status, b.StartDate, b.EndDate,
		b.DailyRate, b.NumberOfDays, b.IncludeInsurance, b.SecurityDeposit, b.TotalRenterPays, b.OwnerReceives,
		b.CreditApplied, b.PointsRedeemed, b.FinalTotal, b.CreatedOn, b.UpdatedOn).Scan(&b.ID)
	logger.DatabaseResult("INSERT", 1, err, "bookingID", b.ID)
	return err
}

func (r *bookingRepository) GetByID(ctx context.Context, id int32) (*domain.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = $1`
	return scanBooking(r.db.QueryRowContext(ctx, query, id))
}

// execer is satisfied by both *sql.DB and *sql.Tx.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func (r *bookingRepository) UpdateStatus(ctx context.Context, b *domain.Booking, from domain.BookingStatus) error {
	return updateStatus(ctx, r.db, b, from)
}

func (r *bookingRepository) Cancel(ctx context.Context, b *domain.Booking, from domain.BookingStatus, refund *domain.PointsTransaction) error {
	logger.EnterMethod("bookingRepository.Cancel", "bookingID", b.ID, "from", from)

	dbTx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		logger.ExitMethodWithError("bookingRepository.Cancel", err, "reason", "begin")
		return err
	}
	defer dbTx.Rollback()

	b.Status = domain.BookingStatusCancelled
	if err := updateStatus(ctx, dbTx, b, from); err != nil {
		b.Status = from
		logger.ExitMethodWithError("bookingRepository.Cancel", err, "bookingID", b.ID)
		return err
	}
	if refund != nil {
		if err := applyPoints(ctx, dbTx, refund); err != nil {
			b.Status = from
			logger.ExitMethodWithError("bookingRepository.Cancel", err, "bookingID", b.ID, "reason", "refund")
			return err
		}
	}

	if err := dbTx.Commit(); err != nil {
		b.Status = from
		logger.ExitMethodWithError("bookingRepository.Cancel", err, "reason", "commit")
		return err
	}
	logger.ExitMethod("bookingRepository.Cancel", "bookingID", b.ID)
	return nil
}

func updateStatus(ctx context.Context, db execer, b *domain.Booking, from domain.BookingStatus) error {
	query := `UPDATE bookings SET status=$1, picked_up_at=$2, returned_at=$3, updated_on=$4 WHERE id=$5 AND status=$6`
	logger.DatabaseCall("UPDATE", "bookings", "bookingID", b.ID, "from", from, "status", b.Status)

	b.UpdatedOn = time.Now()
	result, err := db.ExecContext(ctx, query, b.Status, b.PickedUpAt, b.ReturnedAt, b.UpdatedOn, b.ID, from)
	if err != nil {
		logger.DatabaseResult("UPDATE", 0, err, "bookingID", b.ID)
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	logger.DatabaseResult("UPDATE", rows, nil, "bookingID", b.ID)
	if rows == 0 {
		return repository.ErrStatusChanged
	}
	return nil
}

func (r *bookingRepository) ListByStatus(ctx context.Context, statuses ...domain.BookingStatus) ([]domain.Booking, error) {
	names := make([]string, len(statuses))
	for i, s := range statuses {
		names[i] = string(s)
	}
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE status = ANY($1) ORDER BY start_date, id`
	return r.list(ctx, query, pq.Array(names))
}

func (r *bookingRepository) ListStartingBetween(ctx context.Context, status domain.BookingStatus, from, to time.Time) ([]domain.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE status = $1 AND start_date BETWEEN $2 AND $3 ORDER BY start_date, id`
	return r.list(ctx, query, status, from, to)
}

func (r *bookingRepository) list(ctx context.Context, query string, args ...any) ([]domain.Booking, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var bookings []domain.Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		bookings = append(bookings, *b)
	}
	return bookings, rows.Err()
}
