package service

import (
	"database/sql"
	"errors"
)

var (
	ErrNotFound           = errors.New("not found")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrInvalidInput       = errors.New("invalid input")
	ErrPickupNotAvailable = errors.New("pickup cannot be confirmed for this booking now")
	ErrReturnNotAvailable = errors.New("return cannot be confirmed for this booking now")
	ErrInvalidTransition  = errors.New("invalid booking status transition")
	ErrInsufficientPoints = errors.New("insufficient points")
	ErrQuoteExpired       = errors.New("quote not found or expired")
)

// notFound maps a missing row onto ErrNotFound and passes other errors through.
func notFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return err
}
