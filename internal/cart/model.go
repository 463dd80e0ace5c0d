package cart

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/vasiliy-maslov/marketplace-service/internal/apperr"
)

type Item struct {
	ID        int64
	CartID    int64
	ProductID int64
	Quantity  int
	UnitPrice decimal.Decimal
	Subtotal  decimal.Decimal
}

// ItemView is a cart line with the product details the client shows.
type ItemView struct {
	Item
	ProductName string
	ImageURL    string // comma-joined product images
	ShopName    string
}

type View struct {
	Items []ItemView
	Total decimal.Decimal
}

// OrderRef identifies the order a checkout produced.
type OrderRef struct {
	OrderID   int64
	Total     decimal.Decimal
	ItemCount int
	CreatedAt time.Time
}

// InsufficientStockError names the product whose stock cannot cover the
// requested quantity.
type InsufficientStockError struct {
	ProductID   int64
	ProductName string
	Requested   int
	Available   int
}

func (e *InsufficientStockError) Error() string {
	if e.ProductName == "" {
		return "Quantity exceeds available stock"
	}
	return fmt.Sprintf("Not enough stock for product %q", e.ProductName)
}

func (e *InsufficientStockError) Unwrap() error {
	return apperr.ErrInsufficientStock
}

var (
	ErrItemNotFound    = apperr.New(apperr.ErrNotFound, "Cart item not found")
	ErrProductNotFound = apperr.New(apperr.ErrInvalidInput, "Product not found")
	ErrBuyerNotFound   = apperr.New(apperr.ErrNotFound, "Buyer not found")
	ErrNoAddress       = apperr.New(apperr.ErrInvalidInput, "Shipping address is missing")
	ErrEmptyCart       = apperr.New(apperr.ErrEmptyCart, "Cart is empty")
	ErrInvalidQuantity = apperr.New(apperr.ErrInvalidInput, "Quantity must be at least 1")
	ErrAmountTooLarge  = apperr.New(apperr.ErrInvalidInput, "Amount is too large")
)
