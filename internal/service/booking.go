package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"rentshare-backend/internal/booking"
	"rentshare-backend/internal/domain"
	"rentshare-backend/internal/logger"
	"rentshare-backend/internal/repository"
)

type bookingService struct {
	bookingRepo repository.BookingRepository
	listingRepo repository.ListingRepository
	userRepo    repository.UserRepository
	pointsRepo  repository.PointsRepository
	noteRepo    repository.NotificationRepository
	quotes      QuoteStore
	emailSvc    EmailService
	clock       Clock
	loc         *time.Location
	earnRate    float64
}

func NewBookingService(
	bookingRepo repository.BookingRepository,
	listingRepo repository.ListingRepository,
	userRepo repository.UserRepository,
	pointsRepo repository.PointsRepository,
	noteRepo repository.NotificationRepository,
	quotes QuoteStore,
	emailSvc EmailService,
	clock Clock,
	loc *time.Location,
	earnPointsPerUnit float64,
) BookingService {
	return &bookingService{
		bookingRepo: bookingRepo,
		listingRepo: listingRepo,
		userRepo:    userRepo,
		pointsRepo:  pointsRepo,
		noteRepo:    noteRepo,
		quotes:      quotes,
		emailSvc:    emailSvc,
		clock:       clock,
		loc:         loc,
		earnRate:    earnPointsPerUnit,
	}
}

func (s *bookingService) Window(b *domain.Booking) booking.PickupWindowState {
	rec := booking.RecordOf(b)
	rec.StartDate = civilDate(rec.StartDate, s.loc)
	rec.EndDate = civilDate(rec.EndDate, s.loc)

	state := booking.Evaluate(rec, s.clock.Now())
	if state.Inconsistent() {
		logger.WithBooking(b.ID).Warn("Booking marked picked up before its pickup window", "status", b.Status, "startDate", rec.StartDate)
	}
	return state
}

func (s *bookingService) CreateFromQuote(ctx context.Context, renterID int32, quoteID string) (*domain.Booking, error) {
	logger.EnterMethod("bookingService.CreateFromQuote", "renterID", renterID, "quoteID", quoteID)

	quote, ok, err := s.quotes.Take(ctx, quoteID)
	if err != nil {
		logger.ExitMethodWithError("bookingService.CreateFromQuote", err, "quoteID", quoteID)
		return nil, err
	}
	now := s.clock.Now()
	if !ok || !now.Before(quote.ExpiresAt) {
		return nil, ErrQuoteExpired
	}
	if quote.RenterID != renterID {
		s.restoreQuote(ctx, quote, now)
		return nil, ErrUnauthorized
	}

	p := quote.Pricing
	b := &domain.Booking{
		ListingID:        quote.ListingID,
		RenterID:         quote.RenterID,
		OwnerID:          quote.OwnerID,
		Status:           domain.BookingStatusPaymentRequired,
		StartDate:        quote.StartDate,
		EndDate:          quote.EndDate,
		DailyRate:        p.DailyRate,
		NumberOfDays:     p.NumberOfDays,
		IncludeInsurance: p.Insurance > 0,
		SecurityDeposit:  p.SecurityDeposit,
		TotalRenterPays:  p.TotalRenterPays,
		OwnerReceives:    p.OwnerReceives,
		CreditApplied:    p.CreditApplied,
		PointsRedeemed:   quote.PointsToRedeem,
		FinalTotal:       p.FinalTotal,
	}
	if err := s.bookingRepo.Create(ctx, b); err != nil {
		s.restoreQuote(ctx, quote, now)
		logger.ExitMethodWithError("bookingService.CreateFromQuote", err, "quoteID", quoteID)
		return nil, err
	}

	if b.PointsRedeemed > 0 {
		tx := &domain.PointsTransaction{
			UserID:           renterID,
			Points:           -b.PointsRedeemed,
			Type:             domain.PointsTransactionRedeem,
			RelatedBookingID: &b.ID,
			Description:      fmt.Sprintf("Redeemed for booking #%d", b.ID),
		}
		if err := s.pointsRepo.CreateTransaction(ctx, tx); err != nil {
			// The booking row exists already; void it so it never reaches payment.
			b.Status = domain.BookingStatusCancelled
			if uerr := s.bookingRepo.UpdateStatus(ctx, b, domain.BookingStatusPaymentRequired); uerr != nil {
				logger.WithBooking(b.ID).Error("Failed to void booking after points debit failed", "error", uerr)
			}
			s.restoreQuote(ctx, quote, now)
			logger.ExitMethodWithError("bookingService.CreateFromQuote", err, "bookingID", b.ID)
			if errors.Is(err, repository.ErrInsufficientBalance) {
				return nil, ErrInsufficientPoints
			}
			return nil, err
		}
	}

	s.notifyBookingRequest(ctx, b)

	logger.ExitMethod("bookingService.CreateFromQuote", "bookingID", b.ID)
	return b, nil
}

// restoreQuote puts a claimed quote back for whatever remains of its lifetime.
func (s *bookingService) restoreQuote(ctx context.Context, quote *domain.Quote, now time.Time) {
	ttl := quote.ExpiresAt.Sub(now)
	if ttl <= 0 {
		return
	}
	if err := s.quotes.Put(ctx, quote, ttl); err != nil {
		logger.Warn("Failed to restore quote", "quoteID", quote.ID, "error", err)
	}
}

func (s *bookingService) notifyBookingRequest(ctx context.Context, b *domain.Booking) {
	owner, _ := s.userRepo.GetByID(ctx, b.OwnerID)
	renter, _ := s.userRepo.GetByID(ctx, b.RenterID)
	listing, _ := s.listingRepo.GetByID(ctx, b.ListingID)
	if owner == nil || renter == nil || listing == nil {
		logger.WithBooking(b.ID).Warn("Skipping booking request notification, participant lookup failed")
		return
	}

	if err := s.emailSvc.SendBookingRequestNotification(ctx, owner.Email, owner.Name, renter.Name, listing.Title, b); err != nil {
		logger.WithBooking(b.ID).Error("Failed to send booking request email", "error", err)
	}
	s.notify(ctx, owner.ID, b, "New Booking", fmt.Sprintf("%s booked %s", renter.Name, listing.Title), "BOOKING_REQUEST")
}

func (s *bookingService) notify(ctx context.Context, userID int32, b *domain.Booking, title, message, kind string) {
	n := &domain.Notification{
		UserID:  userID,
		Title:   title,
		Message: message,
		Attributes: map[string]string{
			"type":       kind,
			"booking_id": fmt.Sprintf("%d", b.ID),
		},
	}
	if err := s.noteRepo.Create(ctx, n); err != nil {
		logger.WithBooking(b.ID).Error("Failed to create notification", "userID", userID, "error", err)
	}
}

func (s *bookingService) MarkPaid(ctx context.Context, bookingID int32) (*domain.Booking, error) {
	b, err := s.load(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if b.Status != domain.BookingStatusPaymentRequired {
		return nil, fmt.Errorf("%w: booking is %s", ErrInvalidTransition, b.Status)
	}
	if s.Window(b).IsAfterPickupPeriod {
		return nil, fmt.Errorf("%w: pickup window has closed", ErrInvalidTransition)
	}

	b.Status = domain.BookingStatusConfirmed
	if err := s.save(ctx, b, domain.BookingStatusPaymentRequired); err != nil {
		return nil, err
	}
	logger.WithBooking(b.ID).Info("Booking paid")
	return b, nil
}

func (s *bookingService) GetBooking(ctx context.Context, userID, bookingID int32) (*domain.Booking, booking.PickupWindowState, error) {
	b, err := s.load(ctx, bookingID)
	if err != nil {
		return nil, booking.PickupWindowState{}, err
	}
	if b.RenterID != userID && b.OwnerID != userID {
		return nil, booking.PickupWindowState{}, ErrUnauthorized
	}
	return b, s.Window(b), nil
}

func (s *bookingService) ConfirmPickup(ctx context.Context, renterID, bookingID int32) (*domain.Booking, error) {
	b, err := s.load(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if b.RenterID != renterID {
		return nil, ErrUnauthorized
	}
	if !s.Window(b).CanConfirmPickup {
		return nil, ErrPickupNotAvailable
	}

	from := b.Status
	now := s.clock.Now()
	b.Status = domain.BookingStatusPickedUp
	b.PickedUpAt = &now
	if err := s.save(ctx, b, from); err != nil {
		return nil, err
	}
	s.notify(ctx, b.OwnerID, b, "Item Picked Up", fmt.Sprintf("Booking #%d was picked up", b.ID), "BOOKING_PICKED_UP")
	return b, nil
}

// ConfirmReturn completes a picked up booking. Inside the window either
// party may confirm; once the window has closed only the owner can.
func (s *bookingService) ConfirmReturn(ctx context.Context, userID, bookingID int32) (*domain.Booking, error) {
	b, err := s.load(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if b.RenterID != userID && b.OwnerID != userID {
		return nil, ErrUnauthorized
	}
	state := s.Window(b)
	lateReturn := state.HasBeenPickedUp && state.IsAfterPickupPeriod && userID == b.OwnerID
	if !state.CanReturn && !lateReturn {
		return nil, ErrReturnNotAvailable
	}

	from := b.Status
	now := s.clock.Now()
	b.Status = domain.BookingStatusCompleted
	b.ReturnedAt = &now
	if err := s.save(ctx, b, from); err != nil {
		return nil, err
	}

	if earned := s.earnedPoints(b); earned > 0 {
		tx := &domain.PointsTransaction{
			UserID:           b.RenterID,
			Points:           earned,
			Type:             domain.PointsTransactionEarn,
			RelatedBookingID: &b.ID,
			Description:      fmt.Sprintf("Earned for booking #%d", b.ID),
		}
		if err := s.pointsRepo.CreateTransaction(ctx, tx); err != nil {
			logger.WithBooking(b.ID).Error("Failed to award loyalty points", "points", earned, "error", err)
		}
	}
	s.notify(ctx, b.RenterID, b, "Rental Completed", fmt.Sprintf("Booking #%d is complete", b.ID), "BOOKING_COMPLETED")
	return b, nil
}

func (s *bookingService) earnedPoints(b *domain.Booking) int64 {
	return int64(math.Floor(s.earnRate * b.BasePrice()))
}

func (s *bookingService) Cancel(ctx context.Context, userID, bookingID int32) (*domain.Booking, error) {
	b, err := s.load(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if b.RenterID != userID && b.OwnerID != userID {
		return nil, ErrUnauthorized
	}
	if b.Status != domain.BookingStatusPaymentRequired && b.Status != domain.BookingStatusConfirmed {
		return nil, fmt.Errorf("%w: booking is %s", ErrInvalidTransition, b.Status)
	}

	reason := "the renter cancelled it"
	notifyID := b.OwnerID
	if userID == b.OwnerID {
		reason = "the owner cancelled it"
		notifyID = b.RenterID
	}
	if err := s.cancel(ctx, b, reason); err != nil {
		return nil, err
	}
	s.sendCancellation(ctx, notifyID, b, reason)
	return b, nil
}

func (s *bookingService) ExpireUnpaid(ctx context.Context, bookingID int32) (*domain.Booking, error) {
	b, err := s.load(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if b.Status != domain.BookingStatusPaymentRequired || !s.Window(b).IsAfterPickupPeriod {
		return nil, fmt.Errorf("%w: booking %d is not an expired unpaid booking", ErrInvalidTransition, b.ID)
	}

	reason := "payment was not completed before the pickup window closed"
	if err := s.cancel(ctx, b, reason); err != nil {
		return nil, err
	}
	s.sendCancellation(ctx, b.RenterID, b, reason)
	return b, nil
}

// cancel moves b to cancelled and returns any redeemed points to the renter
// in the same transaction. On failure the stored booking keeps its status.
func (s *bookingService) cancel(ctx context.Context, b *domain.Booking, reason string) error {
	var refund *domain.PointsTransaction
	if b.PointsRedeemed > 0 {
		refund = &domain.PointsTransaction{
			UserID:           b.RenterID,
			Points:           b.PointsRedeemed,
			Type:             domain.PointsTransactionRefund,
			RelatedBookingID: &b.ID,
			Description:      fmt.Sprintf("Refund for cancelled booking #%d", b.ID),
		}
	}

	from := b.Status
	if err := s.bookingRepo.Cancel(ctx, b, from, refund); err != nil {
		if errors.Is(err, repository.ErrStatusChanged) {
			return fmt.Errorf("%w: booking %d is no longer %s", ErrInvalidTransition, b.ID, from)
		}
		logger.WithBooking(b.ID).Error("Failed to cancel booking", "points", b.PointsRedeemed, "error", err)
		return err
	}
	logger.WithBooking(b.ID).Info("Booking cancelled", "reason", reason)
	return nil
}

// save persists a status change made from the given status. It fails with
// ErrInvalidTransition when another request moved the booking first.
func (s *bookingService) save(ctx context.Context, b *domain.Booking, from domain.BookingStatus) error {
	err := s.bookingRepo.UpdateStatus(ctx, b, from)
	if errors.Is(err, repository.ErrStatusChanged) {
		return fmt.Errorf("%w: booking %d is no longer %s", ErrInvalidTransition, b.ID, from)
	}
	return err
}

func (s *bookingService) sendCancellation(ctx context.Context, userID int32, b *domain.Booking, reason string) {
	user, _ := s.userRepo.GetByID(ctx, userID)
	listing, _ := s.listingRepo.GetByID(ctx, b.ListingID)
	if user == nil || listing == nil {
		logger.WithBooking(b.ID).Warn("Skipping cancellation notice, lookup failed", "userID", userID)
		return
	}
	if err := s.emailSvc.SendBookingCancelledNotification(ctx, user.Email, user.Name, listing.Title, reason, b); err != nil {
		logger.WithBooking(b.ID).Error("Failed to send cancellation email", "error", err)
	}
	s.notify(ctx, userID, b, "Booking Cancelled", fmt.Sprintf("Booking for %s was cancelled because %s", listing.Title, reason), "BOOKING_CANCELLED")
}

func (s *bookingService) load(ctx context.Context, bookingID int32) (*domain.Booking, error) {
	b, err := s.bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		return nil, notFound(err)
	}
	return b, nil
}
