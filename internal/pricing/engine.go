// Package pricing computes the renter total, platform fees and owner payout
// for a rental, and converts between loyalty points and redeemable credit.
package pricing

import (
	"errors"
	"math"
)

var (
	ErrInvalidDailyRate       = errors.New("daily rate must be greater than zero")
	ErrInvalidNumberOfDays    = errors.New("number of days must be greater than zero")
	ErrInvalidSecurityDeposit = errors.New("security deposit must not be negative")
)

// Rates holds the platform percentages an Engine applies. They are fixed per
// deployment and never supplied by the renter.
type Rates struct {
	ServiceFeeRate   float64 // share of base price added to the renter total
	CommissionRate   float64 // share of base price withheld from the owner payout
	InsuranceRate    float64 // share of the daily rate charged per day when insured
	PointValue       float64 // credit value of a single loyalty point
	CreditCapPercent float64 // largest share of the renter total payable with credit
}

// DefaultRates returns the standard marketplace rates.
func DefaultRates() Rates {
	return Rates{
		ServiceFeeRate:   0.15,
		CommissionRate:   0.20,
		InsuranceRate:    0.10,
		PointValue:       0.10,
		CreditCapPercent: 0.50,
	}
}

// Input describes a rental to be priced.
type Input struct {
	DailyRate        float64 `json:"daily_rate"`
	NumberOfDays     int     `json:"number_of_days"`
	IncludeInsurance bool    `json:"include_insurance"`
	SecurityDeposit  float64 `json:"security_deposit"`
}

// Validate reports the first precondition the engine relies on but does not
// enforce itself.
func (in Input) Validate() error {
	if in.DailyRate <= 0 || math.IsNaN(in.DailyRate) || math.IsInf(in.DailyRate, 0) {
		return ErrInvalidDailyRate
	}
	if in.NumberOfDays <= 0 {
		return ErrInvalidNumberOfDays
	}
	if in.SecurityDeposit < 0 || math.IsNaN(in.SecurityDeposit) {
		return ErrInvalidSecurityDeposit
	}
	return nil
}

// Breakdown is the full cost of a rental for both parties.
//
// TotalRenterPays always equals BasePrice + ServiceFee + Insurance + SecurityDeposit
// and OwnerReceives always equals BasePrice - PlatformCommission.
type Breakdown struct {
	DailyRate          float64 `json:"daily_rate"`
	NumberOfDays       int     `json:"number_of_days"`
	BasePrice          float64 `json:"base_price"`
	ServiceFee         float64 `json:"service_fee"`
	Insurance          float64 `json:"insurance"`
	SecurityDeposit    float64 `json:"security_deposit"`
	TotalRenterPays    float64 `json:"total_renter_pays"`
	PlatformCommission float64 `json:"platform_commission"`
	OwnerReceives      float64 `json:"owner_receives"`
}

// CreditedPricing is a Breakdown with a credit redemption applied.
type CreditedPricing struct {
	Breakdown
	CreditApplied float64 `json:"credit_applied"`
	FinalTotal    float64 `json:"final_total"`
}

// Engine prices rentals with a fixed set of Rates. The zero value is not
// usable; construct one with NewEngine. An Engine holds no mutable state and
// is safe for concurrent use.
type Engine struct {
	rates Rates
}

func NewEngine(rates Rates) *Engine {
	return &Engine{rates: rates}
}

// Rates returns the rates the engine was built with.
func (e *Engine) Rates() Rates {
	return e.rates
}

// ComputeBreakdown prices a rental. Amounts are not rounded; rounding to cents
// happens only when a breakdown is formatted for display.
func (e *Engine) ComputeBreakdown(in Input) Breakdown {
	days := float64(in.NumberOfDays)
	basePrice := in.DailyRate * days
	serviceFee := basePrice * e.rates.ServiceFeeRate

	var insurance float64
	if in.IncludeInsurance {
		insurance = in.DailyRate * e.rates.InsuranceRate * days
	}

	commission := basePrice * e.rates.CommissionRate

	return Breakdown{
		DailyRate:          in.DailyRate,
		NumberOfDays:       in.NumberOfDays,
		BasePrice:          basePrice,
		ServiceFee:         serviceFee,
		Insurance:          insurance,
		SecurityDeposit:    in.SecurityDeposit,
		TotalRenterPays:    basePrice + serviceFee + insurance + in.SecurityDeposit,
		PlatformCommission: commission,
		OwnerReceives:      basePrice - commission,
	}
}

// PointsToCredit converts a loyalty points balance to its cash-equivalent credit.
func (e *Engine) PointsToCredit(points int64) float64 {
	return float64(points) * e.rates.PointValue
}

// microUnits scales a currency amount so that point conversions are done on
// whole numbers.
const microUnits = 1e6

// CreditToPoints returns the number of points a credit amount costs. It always
// rounds up, so a renter never spends fewer points than the credit is worth.
func (e *Engine) CreditToPoints(credit float64) int64 {
	amount := math.Round(credit * microUnits)
	value := math.Round(e.rates.PointValue * microUnits)
	return int64(math.Ceil(amount / value))
}

// MaxApplicableCredit is the largest credit that may be applied to total. The
// engine's CreditCapPercent is used unless capPercent is given.
func (e *Engine) MaxApplicableCredit(total float64, capPercent ...float64) float64 {
	return total * e.capPercent(capPercent)
}

// ApplyCredit redeems up to requested credit against the renter total, bounded
// by MaxApplicableCredit. b is not modified.
func (e *Engine) ApplyCredit(b Breakdown, requested float64, capPercent ...float64) CreditedPricing {
	applied := math.Min(requested, e.MaxApplicableCredit(b.TotalRenterPays, capPercent...))
	return CreditedPricing{
		Breakdown:     b,
		CreditApplied: applied,
		FinalTotal:    math.Max(0, b.TotalRenterPays-applied),
	}
}

// WithoutCredit wraps b as a CreditedPricing with nothing redeemed.
func WithoutCredit(b Breakdown) CreditedPricing {
	return CreditedPricing{Breakdown: b, FinalTotal: b.TotalRenterPays}
}

func (e *Engine) capPercent(override []float64) float64 {
	if len(override) > 0 {
		return override[0]
	}
	return e.rates.CreditCapPercent
}
