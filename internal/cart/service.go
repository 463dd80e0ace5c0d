package cart

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/vasiliy-maslov/marketplace-service/internal/apperr"
	"github.com/vasiliy-maslov/marketplace-service/internal/metrics"
)

type Service interface {
	GetCart(ctx context.Context, buyerID int64) (*View, error)
	AddToCart(ctx context.Context, buyerID, productID int64, quantity int) (*Item, error)
	UpdateCartItem(ctx context.Context, itemID int64, quantity int) (*Item, error)
	DeleteCartItem(ctx context.Context, itemID int64) error
	Checkout(ctx context.Context, buyerID int64) (*OrderRef, error)
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

// passthrough reports whether err already carries a client-facing kind.
func passthrough(err error) bool {
	for _, kind := range []error{
		apperr.ErrInvalidInput, apperr.ErrNotFound, apperr.ErrInsufficientStock, apperr.ErrEmptyCart,
	} {
		if errors.Is(err, kind) {
			return true
		}
	}
	return false
}

func (s *service) GetCart(ctx context.Context, buyerID int64) (*View, error) {
	if buyerID <= 0 {
		return nil, apperr.New(apperr.ErrInvalidInput, "buyer_id is required")
	}
	view, err := s.repo.GetView(ctx, buyerID)
	if err != nil {
		log.Error().Err(err).Int64("buyer_id", buyerID).Msg("service: failed to get cart")
		return nil, fmt.Errorf("service: failed to get cart: %w", err)
	}
	return view, nil
}

func (s *service) AddToCart(ctx context.Context, buyerID, productID int64, quantity int) (*Item, error) {
	if buyerID <= 0 || productID <= 0 {
		return nil, apperr.New(apperr.ErrInvalidInput, "buyer_id, product_id and quantity are required")
	}
	if quantity < 1 {
		return nil, ErrInvalidQuantity
	}

	item, err := s.repo.AddItem(ctx, buyerID, productID, quantity)
	if err != nil {
		if passthrough(err) {
			return nil, err
		}
		log.Error().Err(err).Int64("buyer_id", buyerID).Int64("product_id", productID).Msg("service: failed to add to cart")
		return nil, fmt.Errorf("service: failed to add product %d to cart: %w", productID, err)
	}
	return item, nil
}

func (s *service) UpdateCartItem(ctx context.Context, itemID int64, quantity int) (*Item, error) {
	if quantity < 1 {
		return nil, ErrInvalidQuantity
	}

	item, err := s.repo.UpdateItemQuantity(ctx, itemID, quantity)
	if err != nil {
		if passthrough(err) {
			return nil, err
		}
		log.Error().Err(err).Int64("cart_item_id", itemID).Msg("service: failed to update cart item")
		return nil, fmt.Errorf("service: failed to update cart item %d: %w", itemID, err)
	}
	return item, nil
}

func (s *service) DeleteCartItem(ctx context.Context, itemID int64) error {
	if err := s.repo.DeleteItem(ctx, itemID); err != nil {
		if passthrough(err) {
			return err
		}
		return fmt.Errorf("service: failed to delete cart item %d: %w", itemID, err)
	}
	return nil
}

func checkoutResult(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, apperr.ErrEmptyCart):
		return "empty_cart"
	case errors.Is(err, apperr.ErrInsufficientStock):
		return "insufficient_stock"
	case errors.Is(err, apperr.ErrInvalidInput), errors.Is(err, apperr.ErrNotFound):
		return "invalid"
	default:
		return "error"
	}
}

func (s *service) Checkout(ctx context.Context, buyerID int64) (*OrderRef, error) {
	if buyerID <= 0 {
		return nil, apperr.New(apperr.ErrInvalidInput, "buyer_id is required")
	}

	ref, err := s.repo.Checkout(ctx, buyerID)
	metrics.Checkouts.WithLabelValues(checkoutResult(err)).Inc()
	if err != nil {
		var stockErr *InsufficientStockError
		if errors.As(err, &stockErr) {
			log.Warn().Int64("buyer_id", buyerID).Int64("product_id", stockErr.ProductID).
				Msg("service: checkout rejected, insufficient stock")
		}
		if passthrough(err) {
			return nil, err
		}
		log.Error().Err(err).Int64("buyer_id", buyerID).Msg("service: checkout failed")
		return nil, fmt.Errorf("service: checkout failed: %w", err)
	}
	return ref, nil
}
