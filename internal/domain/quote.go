package domain

import (
	"time"

	"rentshare-backend/internal/pricing"
)

// Quote is a priced, not yet booked rental offer. Quotes are short-lived and
// the booking is created from the quote so the renter pays what they were shown.
type Quote struct {
	ID             string                  `json:"id"`
	ListingID      int32                   `json:"listing_id"`
	OwnerID        int32                   `json:"owner_id"`
	RenterID       int32                   `json:"renter_id"`
	StartDate      time.Time               `json:"start_date"`
	EndDate        time.Time               `json:"end_date"`
	Pricing        pricing.CreditedPricing `json:"pricing"`
	PointsToRedeem int64                   `json:"points_to_redeem"`
	ExpiresAt      time.Time               `json:"expires_at"`
}
