package jobs

import (
	"context"

	"rentshare-backend/internal/domain"
	"rentshare-backend/internal/logger"
)

// SendPickupReminders emails renters whose confirmed booking opens for pickup tomorrow
func (jr *JobRunner) SendPickupReminders() {
	jr.runWithRecovery("SendPickupReminders", func(ctx context.Context) {
		today := jr.today()
		bookings, err := jr.repos.Booking.ListStartingBetween(ctx, domain.BookingStatusConfirmed, today, today.AddDate(0, 0, 2))
		if err != nil {
			logger.Error("Failed to list upcoming bookings", "error", err)
			return
		}

		count := 0
		for i := range bookings {
			b := &bookings[i]
			state := jr.services.Booking.Window(b)
			if state.DaysUntilPickup == nil || *state.DaysUntilPickup != 1 {
				continue
			}
			if jr.remind(ctx, b, jr.services.Email.SendPickupReminder) {
				count++
			}
		}

		logger.Info("Pickup reminders sent", "count", count, "candidates", len(bookings))
	})
}

// SendReturnReminders emails renters on the last day of their rental, when
// less than one day of the return window is left.
func (jr *JobRunner) SendReturnReminders() {
	jr.runWithRecovery("SendReturnReminders", func(ctx context.Context) {
		bookings, err := jr.repos.Booking.ListByStatus(ctx, domain.BookingStatusActive, domain.BookingStatusPickedUp)
		if err != nil {
			logger.Error("Failed to list picked up bookings", "error", err)
			return
		}

		count := 0
		for i := range bookings {
			b := &bookings[i]
			state := jr.services.Booking.Window(b)
			if state.DaysUntilReturn == nil || *state.DaysUntilReturn != 1 {
				continue
			}
			if jr.remind(ctx, b, jr.services.Email.SendReturnReminder) {
				count++
			}
		}

		logger.Info("Return reminders sent", "count", count, "candidates", len(bookings))
	})
}

// ExpireUnpaidBookings cancels bookings still awaiting payment after their pickup window closed
func (jr *JobRunner) ExpireUnpaidBookings() {
	jr.runWithRecovery("ExpireUnpaidBookings", func(ctx context.Context) {
		bookings, err := jr.repos.Booking.ListByStatus(ctx, domain.BookingStatusPaymentRequired)
		if err != nil {
			logger.Error("Failed to list unpaid bookings", "error", err)
			return
		}

		count := 0
		for i := range bookings {
			b := &bookings[i]
			if !jr.services.Booking.Window(b).IsAfterPickupPeriod {
				continue
			}
			if _, err := jr.services.Booking.ExpireUnpaid(ctx, b.ID); err != nil {
				logger.Error("Failed to expire unpaid booking", "booking_id", b.ID, "error", err)
				continue
			}
			count++
		}

		logger.Info("Expired unpaid bookings", "count", count)
	})
}

type reminderFunc func(ctx context.Context, renterEmail, renterName, listingTitle string, b *domain.Booking) error

func (jr *JobRunner) remind(ctx context.Context, b *domain.Booking, send reminderFunc) bool {
	renter, err := jr.repos.User.GetByID(ctx, b.RenterID)
	if err != nil {
		logger.Error("Failed to load renter", "booking_id", b.ID, "renter_id", b.RenterID, "error", err)
		return false
	}
	listing, err := jr.repos.Listing.GetByID(ctx, b.ListingID)
	if err != nil {
		logger.Error("Failed to load listing", "booking_id", b.ID, "listing_id", b.ListingID, "error", err)
		return false
	}

	if err := send(ctx, renter.Email, renter.Name, listing.Title, b); err != nil {
		logger.Error("Failed to send reminder email",
			"booking_id", b.ID,
			"renter_id", b.RenterID,
			"email", renter.Email,
			"error", err)
		return false
	}

	logger.Debug("Sent reminder", "booking_id", b.ID, "renter_id", b.RenterID)
	return true
}
