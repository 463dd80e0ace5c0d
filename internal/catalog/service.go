package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/vasiliy-maslov/marketplace-service/internal/apperr"
	"github.com/vasiliy-maslov/marketplace-service/internal/metrics"
)

var ErrProductNotApproved = apperr.New(apperr.ErrForbidden, "Product is not approved or not available")

type Service interface {
	ListCategories(ctx context.Context) ([]Category, error)
	ListApprovedProducts(ctx context.Context) ([]ProductSummary, error)
	GetProductDetail(ctx context.Context, id int64) (*ProductSummary, error)

	ListSellerProducts(ctx context.Context, sellerID int64) ([]ProductSummary, error)
	CreateProduct(ctx context.Context, sellerID int64, p NewProduct) (*Product, error)
	UpdateProduct(ctx context.Context, sellerID, productID int64, upd ProductUpdate) (*Product, error)
	DeleteProduct(ctx context.Context, sellerID, productID int64) error

	ListForModeration(ctx context.Context, filter ModerationFilter) (*ModerationPage, error)
	SetProductStatus(ctx context.Context, id int64, status string) (ProductStatus, error)
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) ListCategories(ctx context.Context) ([]Category, error) {
	categories, err := s.repo.ListCategories(ctx)
	if err != nil {
		log.Error().Err(err).Msg("service: failed to list categories")
		return nil, fmt.Errorf("service: failed to list categories: %w", err)
	}
	return categories, nil
}

func (s *service) ListApprovedProducts(ctx context.Context) ([]ProductSummary, error) {
	products, err := s.repo.ListApproved(ctx)
	if err != nil {
		log.Error().Err(err).Msg("service: failed to list approved products")
		return nil, fmt.Errorf("service: failed to list products: %w", err)
	}
	return products, nil
}

// GetProductDetail returns an approved product and records the view. A
// product that is not approved is refused without touching its view count.
func (s *service) GetProductDetail(ctx context.Context, id int64) (*ProductSummary, error) {
	p, err := s.repo.GetSummary(ctx, id)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("service: failed to get product %d: %w", id, err)
	}
	if p.Status != StatusApproved {
		return nil, ErrProductNotApproved
	}

	if err := s.repo.RecordView(ctx, id); err != nil {
		log.Error().Err(err).Int64("product_id", id).Msg("service: failed to record product view")
		return nil, fmt.Errorf("service: failed to record view of product %d: %w", id, err)
	}
	metrics.ProductViews.Inc()
	p.ViewCount++

	return p, nil
}

func (s *service) ListSellerProducts(ctx context.Context, sellerID int64) ([]ProductSummary, error) {
	products, err := s.repo.ListBySeller(ctx, sellerID)
	if err != nil {
		log.Error().Err(err).Int64("seller_id", sellerID).Msg("service: failed to list seller products")
		return nil, fmt.Errorf("service: failed to list products of seller %d: %w", sellerID, err)
	}
	return products, nil
}

func (s *service) CreateProduct(ctx context.Context, sellerID int64, np NewProduct) (*Product, error) {
	np.Name = strings.TrimSpace(np.Name)
	if err := np.Validate(); err != nil {
		return nil, err
	}

	p, err := s.repo.Create(ctx, sellerID, np)
	if err != nil {
		if errors.Is(err, apperr.ErrInvalidInput) || errors.Is(err, apperr.ErrNotFound) {
			return nil, err
		}
		log.Error().Err(err).Int64("seller_id", sellerID).Msg("service: failed to create product")
		return nil, fmt.Errorf("service: failed to create product: %w", err)
	}
	return p, nil
}

func (s *service) UpdateProduct(ctx context.Context, sellerID, productID int64, upd ProductUpdate) (*Product, error) {
	if err := upd.validate(); err != nil {
		return nil, err
	}

	p, err := s.repo.Update(ctx, sellerID, productID, upd)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return nil, err
		}
		log.Error().Err(err).Int64("product_id", productID).Msg("service: failed to update product")
		return nil, fmt.Errorf("service: failed to update product %d: %w", productID, err)
	}
	return p, nil
}

func (s *service) DeleteProduct(ctx context.Context, sellerID, productID int64) error {
	if err := s.repo.Delete(ctx, sellerID, productID); err != nil {
		if errors.Is(err, apperr.ErrNotFound) || errors.Is(err, apperr.ErrConflict) {
			return err
		}
		log.Error().Err(err).Int64("product_id", productID).Msg("service: failed to delete product")
		return fmt.Errorf("service: failed to delete product %d: %w", productID, err)
	}
	log.Info().Int64("product_id", productID).Int64("seller_id", sellerID).Msg("Product deleted")
	return nil
}

func (s *service) ListForModeration(ctx context.Context, filter ModerationFilter) (*ModerationPage, error) {
	products, total, err := s.repo.ListByStatus(ctx, filter)
	if err != nil {
		log.Error().Err(err).Stringer("filter", filter).Msg("service: failed to list products for moderation")
		return nil, fmt.Errorf("service: failed to list products: %w", err)
	}
	return &ModerationPage{
		Products:   products,
		Total:      total,
		Page:       filter.Page.Page,
		TotalPages: filter.Page.TotalPages(total),
	}, nil
}

func (s *service) SetProductStatus(ctx context.Context, id int64, status string) (ProductStatus, error) {
	if status == "" {
		return "", apperr.New(apperr.ErrInvalidInput, "status is required")
	}
	st, err := ParseProductStatus(status)
	if err != nil {
		return "", err
	}

	if err := s.repo.SetStatus(ctx, id, st); err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return "", err
		}
		return "", fmt.Errorf("service: failed to set product %d status: %w", id, err)
	}

	log.Info().Int64("product_id", id).Str("status", string(st)).Msg("Product status changed")
	return st, nil
}
