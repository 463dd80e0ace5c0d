package report

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/vasiliy-maslov/marketplace-service/internal/apperr"
)

// activeUserWindow is the look-back for monthly active users.
const activeUserWindow = 30 * 24 * time.Hour

type Service interface {
	SellerProfileStats(ctx context.Context, sellerID int64) (*SellerSummary, error)
	DashboardStats(ctx context.Context, userID int64, role, period string) (*SellerDashboard, error)
	BuyerPeriodStats(ctx context.Context, buyerID int64, period string) (*BuyerPeriod, error)
	AdminStats(ctx context.Context, startDate, endDate string) (*AdminStats, error)
}

type service struct {
	repo Repository
	loc  *time.Location
	now  func() time.Time
}

func NewService(repo Repository, loc *time.Location) Service {
	return newService(repo, loc, time.Now)
}

func newService(repo Repository, loc *time.Location, now func() time.Time) *service {
	if loc == nil {
		loc = time.UTC
	}
	return &service{repo: repo, loc: loc, now: now}
}

func (s *service) SellerProfileStats(ctx context.Context, sellerID int64) (*SellerSummary, error) {
	summary, err := s.repo.SellerSummary(ctx, sellerID)
	if err != nil {
		log.Error().Err(err).Int64("seller_id", sellerID).Msg("service: failed to load seller summary")
		return nil, fmt.Errorf("service: failed to load seller summary: %w", err)
	}
	return summary, nil
}

func (s *service) DashboardStats(ctx context.Context, userID int64, role, period string) (*SellerDashboard, error) {
	if userID <= 0 {
		return nil, apperr.New(apperr.ErrInvalidInput, "user_id is required")
	}
	if role == "" {
		role = "seller"
	}
	if role != "seller" {
		return nil, apperr.New(apperr.ErrForbidden, "Dashboard statistics are only available to sellers")
	}

	p := ParseDashboardPeriod(period)
	d, err := s.repo.SellerDashboard(ctx, userID, dashboardWindow(p, s.now(), s.loc))
	if err != nil {
		log.Error().Err(err).Int64("seller_id", userID).Str("period", string(p)).Msg("service: failed to load dashboard")
		return nil, fmt.Errorf("service: failed to load dashboard: %w", err)
	}
	d.Period = p
	return d, nil
}

func (s *service) BuyerPeriodStats(ctx context.Context, buyerID int64, period string) (*BuyerPeriod, error) {
	if buyerID <= 0 {
		return nil, apperr.New(apperr.ErrInvalidInput, "user_id is required")
	}
	p, err := ParseTrendPeriod(period)
	if err != nil {
		return nil, err
	}

	since := s.now().AddDate(0, 0, -p.days())
	stats, err := s.repo.BuyerPeriod(ctx, buyerID, since)
	if err != nil {
		return nil, fmt.Errorf("service: failed to load buyer stats: %w", err)
	}
	return stats, nil
}

func (s *service) AdminStats(ctx context.Context, startDate, endDate string) (*AdminStats, error) {
	w := dateWindow(startDate, endDate, s.loc)
	stats, err := s.repo.AdminStats(ctx, w, s.now().Add(-activeUserWindow))
	if err != nil {
		log.Error().Err(err).Str("start_date", startDate).Str("end_date", endDate).Msg("service: failed to load admin stats")
		return nil, fmt.Errorf("service: failed to load admin stats: %w", err)
	}
	return stats, nil
}
