package domain

import "time"

type PointsTransactionType string

const (
	PointsTransactionEarn       PointsTransactionType = "EARN"
	PointsTransactionRedeem     PointsTransactionType = "REDEEM"
	PointsTransactionRefund     PointsTransactionType = "REFUND"
	PointsTransactionAdjustment PointsTransactionType = "ADJUSTMENT"
)

type PointsTransaction struct {
	ID               int32                 `json:"id"`
	UserID           int32                 `json:"user_id"`
	Points           int64                 `json:"points"` // positive for earn/refund, negative for redeem
	Type             PointsTransactionType `json:"type"`
	RelatedBookingID *int32                `json:"related_booking_id,omitempty"`
	Description      string                `json:"description"`
	CreatedOn        time.Time             `json:"created_on"`
}
