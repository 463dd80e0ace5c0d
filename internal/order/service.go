package order

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/vasiliy-maslov/marketplace-service/internal/apperr"
)

type Service interface {
	ListOrdersForBuyer(ctx context.Context, buyerID int64) ([]BuyerLine, error)
	ListOrdersForSeller(ctx context.Context, sellerID int64, from, to string) ([]SellerLine, error)
	UpdateOrderItemStatus(ctx context.Context, sellerID, itemID int64, status string) (ItemStatus, error)
}

type service struct {
	repo Repository
	loc  *time.Location
}

// NewService returns a Service reporting times in loc.
func NewService(repo Repository, loc *time.Location) Service {
	if loc == nil {
		loc = time.UTC
	}
	return &service{repo: repo, loc: loc}
}

func (s *service) ListOrdersForBuyer(ctx context.Context, buyerID int64) ([]BuyerLine, error) {
	if buyerID <= 0 {
		return nil, apperr.New(apperr.ErrInvalidInput, "buyer_id is required")
	}

	lines, err := s.repo.ListByBuyer(ctx, buyerID)
	if err != nil {
		return nil, fmt.Errorf("service: failed to list orders of buyer %d: %w", buyerID, err)
	}
	for i := range lines {
		lines[i].OrderedAt = lines[i].OrderedAt.In(s.loc)
	}
	return lines, nil
}

func (s *service) ListOrdersForSeller(ctx context.Context, sellerID int64, from, to string) ([]SellerLine, error) {
	dr := ParseDateRange(from, to, s.loc)

	lines, err := s.repo.ListBySeller(ctx, sellerID, dr)
	if err != nil {
		return nil, fmt.Errorf("service: failed to list orders of seller %d: %w", sellerID, err)
	}
	for i := range lines {
		lines[i].OrderedAt = lines[i].OrderedAt.In(s.loc)
	}
	return lines, nil
}

func (s *service) UpdateOrderItemStatus(ctx context.Context, sellerID, itemID int64, status string) (ItemStatus, error) {
	st, err := ParseItemStatus(status)
	if err != nil {
		return "", err
	}

	if err := s.repo.UpdateItemStatus(ctx, sellerID, itemID, st); err != nil {
		if errors.Is(err, apperr.ErrForbidden) {
			log.Warn().Int64("seller_id", sellerID).Int64("order_item_id", itemID).
				Msg("service: seller tried to update an order item it does not own")
			return "", err
		}
		return "", fmt.Errorf("service: failed to update order item %d: %w", itemID, err)
	}

	log.Info().Int64("order_item_id", itemID).Stringer("status", st).Msg("Order item status updated")
	return st, nil
}
