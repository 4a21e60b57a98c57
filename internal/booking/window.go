// Package booking derives what a renter can do with a booking right now:
// whether pickup or return can be confirmed, and what the booking screen
// should say about it.
package booking

import (
	"fmt"
	"time"

	"rentshare-backend/internal/domain"
)

const day = 24 * time.Hour

// Record is the part of a booking the pickup window depends on. StartDate
// must not be after EndDate.
type Record struct {
	Status    domain.BookingStatus
	StartDate time.Time
	EndDate   time.Time
}

// RecordOf projects a stored booking onto the fields the window needs.
func RecordOf(b *domain.Booking) Record {
	return Record{Status: b.Status, StartDate: b.StartDate, EndDate: b.EndDate}
}

// ButtonText is the label of the pickup/return action.
type ButtonText int

const (
	ButtonConfirmPickup ButtonText = iota
	ButtonConfirmReturn
	ButtonPickupNotAvailableYet
	ButtonPickupDatePassed
	ButtonCompletePaymentFirst
)

func (b ButtonText) String() string {
	switch b {
	case ButtonConfirmPickup:
		return "Confirm Pickup"
	case ButtonConfirmReturn:
		return "Confirm Return"
	case ButtonPickupNotAvailableYet:
		return "Confirm Pickup (Not Available Yet)"
	case ButtonPickupDatePassed:
		return "Pickup Date Passed"
	case ButtonCompletePaymentFirst:
		return "Complete Payment First"
	default:
		return fmt.Sprintf("ButtonText(%d)", int(b))
	}
}

func (b ButtonText) MarshalText() ([]byte, error) {
	return []byte(b.String()), nil
}

// NoteKind identifies which explanation accompanies the action button.
type NoteKind int

const (
	NoteNone NoteKind = iota
	NoteReturnDue
	NotePickupOpens
	NotePickupMissed
	NoteReturnOverdue
	NotePaymentRequired
)

func (k NoteKind) String() string {
	switch k {
	case NoteNone:
		return "none"
	case NoteReturnDue:
		return "return_due"
	case NotePickupOpens:
		return "pickup_opens"
	case NotePickupMissed:
		return "pickup_missed"
	case NoteReturnOverdue:
		return "return_overdue"
	case NotePaymentRequired:
		return "payment_required"
	default:
		return fmt.Sprintf("NoteKind(%d)", int(k))
	}
}

func (k NoteKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// ButtonNote is the sentence shown under the action button. Text is empty
// when Kind is NoteNone.
type ButtonNote struct {
	Kind NoteKind `json:"kind"`
	Text string   `json:"text,omitempty"`
}

// PickupWindowState describes a booking relative to one instant. Exactly one
// of the three period flags is set.
type PickupWindowState struct {
	IsWithinPickupPeriod bool       `json:"is_within_pickup_period"`
	IsBeforePickupPeriod bool       `json:"is_before_pickup_period"`
	IsAfterPickupPeriod  bool       `json:"is_after_pickup_period"`
	HasBeenPickedUp      bool       `json:"has_been_picked_up"`
	ShowPickupButton     bool       `json:"show_pickup_button"`
	CanConfirmPickup     bool       `json:"can_confirm_pickup"`
	CanReturn            bool       `json:"can_return"`
	DaysUntilPickup      *int       `json:"days_until_pickup"`
	DaysUntilReturn      *int       `json:"days_until_return"`
	PickupButtonText     ButtonText `json:"pickup_button_text"`
	PickupButtonNote     ButtonNote `json:"pickup_button_note"`
}

// Inconsistent reports a state that valid status transitions never produce:
// an item marked as picked up before its rental window has started.
func (s PickupWindowState) Inconsistent() bool {
	return s.HasBeenPickedUp && s.IsBeforePickupPeriod
}

// DateFormatter renders a calendar date for display.
type DateFormatter func(time.Time) string

// FormatLongDate renders dates as "Monday, January 2, 2006".
func FormatLongDate(t time.Time) string {
	return t.Format("Monday, January 2, 2006")
}

// Evaluator computes pickup window states. The zero value formats dates with
// FormatLongDate.
type Evaluator struct {
	FormatDate DateFormatter
}

var defaultEvaluator Evaluator

// Evaluate classifies rec at now using the default date format.
func Evaluate(rec Record, now time.Time) PickupWindowState {
	return defaultEvaluator.Evaluate(rec, now)
}

// Evaluate classifies rec at now. The pickup period runs from the start of
// the start date to the start of the day after the end date, in the
// location of each date. The result depends only on its arguments.
func (e Evaluator) Evaluate(rec Record, now time.Time) PickupWindowState {
	periodStart := startOfDay(rec.StartDate)
	periodEnd := startOfDay(rec.EndDate).AddDate(0, 0, 1)

	before := now.Before(periodStart)
	after := !now.Before(periodEnd)
	within := !before && !after

	var s PickupWindowState
	s.IsBeforePickupPeriod = before
	s.IsWithinPickupPeriod = within
	s.IsAfterPickupPeriod = after

	if before {
		n := ceilDays(periodStart.Sub(now))
		s.DaysUntilPickup = &n
	}
	if within {
		n := ceilDays(periodEnd.Sub(now))
		s.DaysUntilReturn = &n
	}

	confirmed := rec.Status == domain.BookingStatusConfirmed
	s.HasBeenPickedUp = rec.Status.IsPickedUp()
	s.ShowPickupButton = confirmed || rec.Status == domain.BookingStatusPaymentRequired
	s.CanConfirmPickup = within && confirmed && !s.HasBeenPickedUp
	s.CanReturn = within && s.HasBeenPickedUp

	switch {
	case s.HasBeenPickedUp && s.CanReturn:
		s.PickupButtonText = ButtonConfirmReturn
	case before:
		s.PickupButtonText = ButtonPickupNotAvailableYet
	case after && !s.HasBeenPickedUp:
		s.PickupButtonText = ButtonPickupDatePassed
	case within && !confirmed:
		s.PickupButtonText = ButtonCompletePaymentFirst
	default:
		s.PickupButtonText = ButtonConfirmPickup
	}

	s.PickupButtonNote = e.note(s, rec)
	return s
}

func (e Evaluator) note(s PickupWindowState, rec Record) ButtonNote {
	format := e.FormatDate
	if format == nil {
		format = FormatLongDate
	}
	start := format(rec.StartDate)
	end := format(rec.EndDate)

	switch {
	case s.HasBeenPickedUp && s.CanReturn:
		return ButtonNote{
			Kind: NoteReturnDue,
			Text: fmt.Sprintf("Please return the item by %s (%s left).", end, days(*s.DaysUntilReturn)),
		}
	case s.IsBeforePickupPeriod:
		return ButtonNote{
			Kind: NotePickupOpens,
			Text: fmt.Sprintf("Pickup opens on %s (%s from now).", start, days(*s.DaysUntilPickup)),
		}
	case s.IsAfterPickupPeriod && !s.HasBeenPickedUp:
		return ButtonNote{
			Kind: NotePickupMissed,
			Text: fmt.Sprintf("The pickup window closed on %s.", end),
		}
	case s.IsAfterPickupPeriod:
		return ButtonNote{
			Kind: NoteReturnOverdue,
			Text: fmt.Sprintf("The return was due on %s.", end),
		}
	case s.IsWithinPickupPeriod && rec.Status == domain.BookingStatusPaymentRequired:
		return ButtonNote{
			Kind: NotePaymentRequired,
			Text: fmt.Sprintf("Complete payment to pick up by %s.", end),
		}
	}
	return ButtonNote{Kind: NoteNone}
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// ceilDays rounds a positive duration up to whole days.
func ceilDays(d time.Duration) int {
	return int((d + day - 1) / day)
}

func days(n int) string {
	if n == 1 {
		return "1 day"
	}
	return fmt.Sprintf("%d days", n)
}
