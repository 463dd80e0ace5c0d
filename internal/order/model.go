package order

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/vasiliy-maslov/marketplace-service/internal/apperr"
)

type ItemStatus string

const (
	StatusPending   ItemStatus = "pending"
	StatusConfirmed ItemStatus = "confirmed"
	StatusShipping  ItemStatus = "shipping"
	StatusCompleted ItemStatus = "completed"
	StatusCancelled ItemStatus = "cancelled"
)

func (s ItemStatus) String() string {
	return string(s)
}

func (s ItemStatus) Valid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusShipping, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

func ParseItemStatus(s string) (ItemStatus, error) {
	if s == "" {
		return "", apperr.New(apperr.ErrInvalidInput, "status is required")
	}
	status := ItemStatus(s)
	if !status.Valid() {
		return "", apperr.Newf(apperr.ErrInvalidInput, "Invalid order status %q", s)
	}
	return status, nil
}

// DateLayout is how order dates are shown to clients.
const DateLayout = "02/01/2006"

// Code is the human-facing order number, e.g. DH000042.
func Code(orderID int64) string {
	return fmt.Sprintf("DH%06d", orderID)
}

// BuyerLine is one item of one of the buyer's orders.
type BuyerLine struct {
	OrderID     int64
	OrderItemID int64
	ProductID   int64
	ProductName string
	ImageURL    string // comma-joined product images
	ShopName    string
	SellerID    int64
	Quantity    int
	UnitPrice   decimal.Decimal
	Subtotal    decimal.Decimal
	Status      ItemStatus
	OrderedAt   time.Time
}

// SellerLine is one item a seller has to fulfil.
type SellerLine struct {
	OrderID     int64
	OrderItemID int64
	Status      ItemStatus
	OrderedAt   time.Time
	Subtotal    decimal.Decimal
	BuyerName   string
	BuyerPhone  string
	ProductName string
	Quantity    int
	UnitPrice   decimal.Decimal
}

// DateRange bounds orders.created_at as [From, Before). A nil bound is open.
type DateRange struct {
	From   *time.Time
	Before *time.Time
}

// ParseDateRange reads YYYY-MM-DD bounds as whole local days in loc: from
// starts at its local midnight and to covers its whole day, up to the next
// local midnight. Unparsable values are ignored.
func ParseDateRange(from, to string, loc *time.Location) DateRange {
	var r DateRange
	if d, err := time.ParseInLocation(time.DateOnly, from, loc); err == nil {
		r.From = &d
	}
	if d, err := time.ParseInLocation(time.DateOnly, to, loc); err == nil {
		next := d.AddDate(0, 0, 1)
		r.Before = &next
	}
	return r
}
