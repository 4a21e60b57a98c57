package domain

import "time"

type BookingStatus string

const (
	BookingStatusPaymentRequired BookingStatus = "payment_required"
	BookingStatusConfirmed       BookingStatus = "confirmed"
	BookingStatusActive          BookingStatus = "active"
	BookingStatusPickedUp        BookingStatus = "picked_up"
	BookingStatusCompleted       BookingStatus = "completed"
	BookingStatusCancelled       BookingStatus = "cancelled"
)

// IsPickedUp reports whether the item is currently with the renter.
func (s BookingStatus) IsPickedUp() bool {
	return s == BookingStatusActive || s == BookingStatusPickedUp
}

type Booking struct {
	ID        int32         `json:"id"`
	ListingID int32         `json:"listing_id"`
	RenterID  int32         `json:"renter_id"`
	OwnerID   int32         `json:"owner_id"`
	Status    BookingStatus `json:"status"`
	StartDate time.Time     `json:"start_date"`
	EndDate   time.Time     `json:"end_date"`

	// Pricing snapshot, captured from the quote at booking time.
	DailyRate        float64 `json:"daily_rate"`
	NumberOfDays     int     `json:"number_of_days"`
	IncludeInsurance bool    `json:"include_insurance"`
	SecurityDeposit  float64 `json:"security_deposit"`
	TotalRenterPays  float64 `json:"total_renter_pays"`
	OwnerReceives    float64 `json:"owner_receives"`
	CreditApplied    float64 `json:"credit_applied"`
	PointsRedeemed   int64   `json:"points_redeemed"`
	FinalTotal       float64 `json:"final_total"`

	PickedUpAt *time.Time `json:"picked_up_at,omitempty"`
	ReturnedAt *time.Time `json:"returned_at,omitempty"`
	CreatedOn  time.Time  `json:"created_on"`
	UpdatedOn  time.Time  `json:"updated_on"`
}

// BasePrice is the pre-fee rental price of the snapshot.
func (b *Booking) BasePrice() float64 {
	return b.DailyRate * float64(b.NumberOfDays)
}
