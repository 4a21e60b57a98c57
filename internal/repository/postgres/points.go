package postgres

import (
	"context"
	"database/sql"
	"time"

	"rentshare-backend/internal/domain"
	"rentshare-backend/internal/logger"
	"rentshare-backend/internal/repository"
)

type pointsRepository struct {
	db *sql.DB
}

func NewPointsRepository(db *sql.DB) repository.PointsRepository {
	return &pointsRepository{db: db}
}

func (r *pointsRepository) GetBalance(ctx context.Context, userID int32) (int64, error) {
	var balance int64
	query := `SELECT COALESCE(points_balance, 0) FROM users WHERE id = $1`
	err := r.db.QueryRowContext(ctx, query, userID).Scan(&balance)
	return balance, err
}

func (r *pointsRepository) CreateTransaction(ctx context.Context, tx *domain.PointsTransaction) error {
	logger.EnterMethod("pointsRepository.CreateTransaction", "userID", tx.UserID, "points", tx.Points, "type", tx.Type)

	dbTx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		logger.ExitMethodWithError("pointsRepository.CreateTransaction", err, "reason", "begin")
		return err
	}
	defer dbTx.Rollback()

	if err := applyPoints(ctx, dbTx, tx); err != nil {
		logger.ExitMethodWithError("pointsRepository.CreateTransaction", err, "userID", tx.UserID)
		return err
	}

	if err := dbTx.Commit(); err != nil {
		logger.ExitMethodWithError("pointsRepository.CreateTransaction", err, "reason", "commit")
		return err
	}
	logger.ExitMethod("pointsRepository.CreateTransaction", "transactionID", tx.ID)
	return nil
}

// applyPoints moves the user's balance by tx.Points and records tx inside
// dbTx. A debit that would take the balance below zero fails with
// repository.ErrInsufficientBalance.
func applyPoints(ctx context.Context, dbTx *sql.Tx, tx *domain.PointsTransaction) error {
	logger.DatabaseCall("UPDATE", "users", "userID", tx.UserID)
	result, err := dbTx.ExecContext(ctx,
		`UPDATE users SET points_balance = points_balance + $1 WHERE id = $2 AND points_balance + $1 >= 0`,
		tx.Points, tx.UserID)
	if err != nil {
		logger.DatabaseResult("UPDATE", 0, err, "userID", tx.UserID)
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	logger.DatabaseResult("UPDATE", rows, nil, "userID", tx.UserID)
	if rows == 0 {
		return repository.ErrInsufficientBalance
	}

	tx.CreatedOn = time.Now()
	query := `INSERT INTO points_transactions (user_id, points, type, related_booking_id, description, created_on)
	          VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`
	logger.DatabaseCall("INSERT", "points_transactions", "userID", tx.UserID)
	err = dbTx.QueryRowContext(ctx, query, tx.UserID, tx.Points, tx.Type, tx.RelatedBookingID, tx.Description, tx.CreatedOn).Scan(&tx.ID)
	logger.DatabaseResult("INSERT", 1, err, "transactionID", tx.ID)
	return err
}
