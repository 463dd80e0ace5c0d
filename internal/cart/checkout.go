package cart

import (
	"sort"

	"github.com/shopspring/decimal"
	"github.com/vasiliy-maslov/marketplace-service/internal/money"
)

func subtotal(quantity int, unitPrice decimal.Decimal) decimal.Decimal {
	return unitPrice.Mul(decimal.NewFromInt(int64(quantity)))
}

// lineSubtotal is subtotal bounded by what a cart or order line can store.
func lineSubtotal(quantity int, unitPrice decimal.Decimal) (decimal.Decimal, error) {
	total := subtotal(quantity, unitPrice)
	if !money.Fits(total) {
		return decimal.Zero, ErrAmountTooLarge
	}
	return total, nil
}

// stockedProduct is the product state a cart mutation is checked against.
type stockedProduct struct {
	ID    int64
	Name  string
	Price decimal.Decimal
	Stock int
}

// planAdd computes the line that results from adding quantity of p. An
// existing line keeps its unit price and grows; a new line snapshots the
// current product price. The resulting quantity must fit in stock.
func planAdd(existing *Item, p stockedProduct, quantity int) (Item, error) {
	line := Item{ProductID: p.ID, Quantity: quantity, UnitPrice: p.Price}
	if existing != nil {
		line = *existing
		line.Quantity += quantity
	}

	if line.Quantity > p.Stock {
		return Item{}, &InsufficientStockError{
			ProductID:   p.ID,
			ProductName: p.Name,
			Requested:   line.Quantity,
			Available:   p.Stock,
		}
	}

	sub, err := lineSubtotal(line.Quantity, line.UnitPrice)
	if err != nil {
		return Item{}, err
	}
	line.Subtotal = sub
	return line, nil
}

// checkoutLine is a cart line joined with the locked product row.
type checkoutLine struct {
	CartItemID  int64
	ProductID   int64
	ProductName string
	SellerID    int64
	Stock       int
	Quantity    int
	UnitPrice   decimal.Decimal
}

type checkoutPlan struct {
	Lines []checkoutLine
	Total decimal.Decimal
}

// planCheckout verifies every line against stock and totals the order. The
// first line (by product id) that cannot be covered fails the whole plan.
func planCheckout(lines []checkoutLine) (checkoutPlan, error) {
	if len(lines) == 0 {
		return checkoutPlan{}, ErrEmptyCart
	}

	sorted := make([]checkoutLine, len(lines))
	copy(sorted, lines)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].ProductID < sorted[j].ProductID })

	total := decimal.Zero
	for _, l := range sorted {
		if l.Quantity > l.Stock {
			return checkoutPlan{}, &InsufficientStockError{
				ProductID:   l.ProductID,
				ProductName: l.ProductName,
				Requested:   l.Quantity,
				Available:   l.Stock,
			}
		}
		sub, err := lineSubtotal(l.Quantity, l.UnitPrice)
		if err != nil {
			return checkoutPlan{}, err
		}
		total = total.Add(sub)
	}
	if !money.Fits(total) {
		return checkoutPlan{}, ErrAmountTooLarge
	}

	return checkoutPlan{Lines: sorted, Total: total}, nil
}
