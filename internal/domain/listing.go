package domain

type ListingStatus string

const (
	ListingStatusAvailable   ListingStatus = "AVAILABLE"
	ListingStatusUnavailable ListingStatus = "UNAVAILABLE"
)

type Listing struct {
	ID              int32         `json:"id"`
	OwnerID         int32         `json:"owner_id"`
	Title           string        `json:"title"`
	DailyRate       float64       `json:"daily_rate"`
	SecurityDeposit float64       `json:"security_deposit"`
	Status          ListingStatus `json:"status"`
	CreatedOn       string        `json:"created_on"`
}
