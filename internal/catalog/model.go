package catalog

import (
	"fmt"
	"math"
	"time"

	"github.com/shopspring/decimal"
	"github.com/vasiliy-maslov/marketplace-service/internal/apperr"
	"github.com/vasiliy-maslov/marketplace-service/internal/money"
	"github.com/vasiliy-maslov/marketplace-service/internal/paging"
)

type ProductStatus string

const (
	StatusWaitingForApprove ProductStatus = "waiting_for_approve"
	StatusApproved          ProductStatus = "approved"
	StatusRejected          ProductStatus = "rejected"
	StatusInactive          ProductStatus = "inactive"
)

func (s ProductStatus) Valid() bool {
	switch s {
	case StatusWaitingForApprove, StatusApproved, StatusRejected, StatusInactive:
		return true
	}
	return false
}

func ParseProductStatus(s string) (ProductStatus, error) {
	status := ProductStatus(s)
	if !status.Valid() {
		return "", apperr.Newf(apperr.ErrInvalidInput, "Invalid product status %q", s)
	}
	return status, nil
}

// ParseModerationFilter accepts the statuses an admin can list by. Inactive
// products are the seller's business and are not part of moderation.
func ParseModerationFilter(s string) (ProductStatus, error) {
	if s == "" {
		return StatusWaitingForApprove, nil
	}
	switch status := ProductStatus(s); status {
	case StatusWaitingForApprove, StatusApproved, StatusRejected:
		return status, nil
	}
	return "", apperr.New(apperr.ErrInvalidInput, "Invalid status filter")
}

const (
	UnknownSellerName   = "Shop"
	UnknownCategoryName = "Other"
)

type Category struct {
	ID          int64
	Name        string
	Description string
}

type Product struct {
	ID            int64
	SellerID      int64
	CategoryID    int64
	Name          string
	Description   string
	Price         decimal.Decimal
	StockQuantity int
	ImageURL      string // comma-joined image paths
	Status        ProductStatus
	ViewCount     int
	ViewedAt      time.Time
	CreatedAt     time.Time
	UpdatedAt     *time.Time
}

// ProductSummary is a product joined with its seller and category names.
type ProductSummary struct {
	Product
	SellerName   string
	CategoryName string
}

// NewProduct is what a seller submits. Images are stored paths or URLs.
type NewProduct struct {
	Name          string
	Description   string
	Price         decimal.Decimal
	StockQuantity int
	CategoryID    int64
	Images        []string
}

func (p NewProduct) Validate() error {
	if p.Name == "" {
		return apperr.New(apperr.ErrInvalidInput, "name is required")
	}
	if err := validatePrice(p.Price); err != nil {
		return err
	}
	if err := validateStock(p.StockQuantity); err != nil {
		return err
	}
	if p.CategoryID <= 0 {
		return apperr.New(apperr.ErrInvalidInput, "category_id is required")
	}
	return nil
}

// ProductUpdate is a partial update. Nil fields are left unchanged. An
// unknown category or an invalid status is ignored rather than rejected.
type ProductUpdate struct {
	Name          *string
	Description   *string
	Price         *decimal.Decimal
	StockQuantity *int
	CategoryID    *int64
	Images        *[]string
	Status        *string
}

func (u ProductUpdate) validate() error {
	if u.Price != nil {
		if err := validatePrice(*u.Price); err != nil {
			return err
		}
	}
	if u.StockQuantity != nil {
		if err := validateStock(*u.StockQuantity); err != nil {
			return err
		}
	}
	return nil
}

func validatePrice(price decimal.Decimal) error {
	if price.IsNegative() {
		return apperr.New(apperr.ErrInvalidInput, "price cannot be negative")
	}
	if !money.Fits(price) {
		return apperr.Newf(apperr.ErrInvalidInput, "price cannot exceed %s", money.Max.StringFixed(2))
	}
	return nil
}

func validateStock(stock int) error {
	if stock < 0 {
		return apperr.New(apperr.ErrInvalidInput, "stock_quantity cannot be negative")
	}
	if stock > math.MaxInt32 {
		return apperr.New(apperr.ErrInvalidInput, "stock_quantity is too large")
	}
	return nil
}

type ModerationPage struct {
	Products   []ProductSummary
	Total      int
	Page       int
	TotalPages int
}

type ModerationFilter struct {
	Status ProductStatus
	Page   paging.Params
}

func (f ModerationFilter) String() string {
	return fmt.Sprintf("status=%s page=%d per_page=%d", f.Status, f.Page.Page, f.Page.PerPage)
}
