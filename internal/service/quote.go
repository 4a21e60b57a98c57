package service

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"

	"rentshare-backend/internal/domain"
	"rentshare-backend/internal/logger"
	"rentshare-backend/internal/pricing"
	"rentshare-backend/internal/repository"
)

type quoteService struct {
	listingRepo repository.ListingRepository
	pointsRepo  repository.PointsRepository
	quotes      QuoteStore
	engine      *pricing.Engine
	clock       Clock
	loc         *time.Location
	ttl         time.Duration
}

func NewQuoteService(
	listingRepo repository.ListingRepository,
	pointsRepo repository.PointsRepository,
	quotes QuoteStore,
	engine *pricing.Engine,
	clock Clock,
	loc *time.Location,
	ttl time.Duration,
) QuoteService {
	return &quoteService{
		listingRepo: listingRepo,
		pointsRepo:  pointsRepo,
		quotes:      quotes,
		engine:      engine,
		clock:       clock,
		loc:         loc,
		ttl:         ttl,
	}
}

func (s *quoteService) CreateQuote(ctx context.Context, renterID, listingID int32, start, end time.Time, includeInsurance bool, redeemPoints int64) (*domain.Quote, error) {
	logger.EnterMethod("quoteService.CreateQuote", "renterID", renterID, "listingID", listingID, "redeemPoints", redeemPoints)

	if redeemPoints < 0 {
		return nil, fmt.Errorf("%w: points to redeem must not be negative", ErrInvalidInput)
	}

	start, end = civilDate(start, s.loc), civilDate(end, s.loc)
	days, err := pricing.RentalDays(start, end)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	now := s.clock.Now()
	if start.Before(civilDate(now.In(s.loc), s.loc)) {
		return nil, fmt.Errorf("%w: start date is in the past", ErrInvalidInput)
	}

	listing, err := s.listingRepo.GetByID(ctx, listingID)
	if err != nil {
		logger.ExitMethodWithError("quoteService.CreateQuote", err, "listingID", listingID)
		return nil, notFound(err)
	}
	if listing.Status != domain.ListingStatusAvailable {
		return nil, fmt.Errorf("%w: listing %d is not available", ErrInvalidInput, listingID)
	}
	if listing.OwnerID == renterID {
		return nil, fmt.Errorf("%w: cannot rent your own listing", ErrInvalidInput)
	}

	in := pricing.Input{
		DailyRate:        listing.DailyRate,
		NumberOfDays:     days,
		IncludeInsurance: includeInsurance,
		SecurityDeposit:  listing.SecurityDeposit,
	}
	if err := in.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	breakdown := s.engine.ComputeBreakdown(in)

	credited := pricing.WithoutCredit(breakdown)
	var pointsUsed int64
	if redeemPoints > 0 {
		balance, err := s.pointsRepo.GetBalance(ctx, renterID)
		if err != nil {
			logger.ExitMethodWithError("quoteService.CreateQuote", err, "renterID", renterID)
			return nil, notFound(err)
		}
		if redeemPoints > balance {
			redeemPoints = balance
		}
		credited = s.engine.ApplyCredit(breakdown, s.engine.PointsToCredit(redeemPoints))
		pointsUsed = min(s.engine.CreditToPoints(credited.CreditApplied), redeemPoints)
	}

	quote := &domain.Quote{
		ID:             uuid.NewString(),
		ListingID:      listing.ID,
		OwnerID:        listing.OwnerID,
		RenterID:       renterID,
		StartDate:      start,
		EndDate:        end,
		Pricing:        credited,
		PointsToRedeem: pointsUsed,
		ExpiresAt:      now.Add(s.ttl),
	}
	if err := s.quotes.Put(ctx, quote, s.ttl); err != nil {
		logger.ExitMethodWithError("quoteService.CreateQuote", err, "quoteID", quote.ID)
		return nil, err
	}

	logger.ExitMethod("quoteService.CreateQuote", "quoteID", quote.ID, "finalTotal", credited.FinalTotal)
	return quote, nil
}

func (s *quoteService) ConvertPoints(points int64) (float64, error) {
	if points < 0 {
		return 0, fmt.Errorf("%w: points must not be negative", ErrInvalidInput)
	}
	return s.engine.PointsToCredit(points), nil
}

func (s *quoteService) ConvertCredit(credit float64) (int64, error) {
	if credit < 0 || math.IsNaN(credit) || math.IsInf(credit, 0) {
		return 0, fmt.Errorf("%w: credit must be a non-negative amount", ErrInvalidInput)
	}
	return s.engine.CreditToPoints(credit), nil
}

// civilDate re-anchors the calendar date of t at midnight in loc.
func civilDate(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}
