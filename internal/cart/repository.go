package cart

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"github.com/vasiliy-maslov/marketplace-service/internal/db"
)

type Repository interface {
	GetView(ctx context.Context, buyerID int64) (*View, error)
	AddItem(ctx context.Context, buyerID, productID int64, quantity int) (*Item, error)
	UpdateItemQuantity(ctx context.Context, itemID int64, quantity int) (*Item, error)
	DeleteItem(ctx context.Context, itemID int64) error
	Checkout(ctx context.Context, buyerID int64) (*OrderRef, error)
}

type postgresRepository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Repository {
	return &postgresRepository{db: db}
}

func (r *postgresRepository) GetView(ctx context.Context, buyerID int64) (*View, error) {
	query := `
		SELECT ci.id, ci.cart_id, ci.product_id, ci.quantity, ci.unit_price, ci.subtotal,
		       p.name, COALESCE(p.image_url, ''), COALESCE(s.shop_name, 'Shop')
		FROM carts c
		JOIN cart_items ci ON ci.cart_id = c.id
		JOIN products p ON p.id = ci.product_id
		LEFT JOIN sellers s ON s.id = p.seller_id
		WHERE c.buyer_id = $1
		ORDER BY ci.id
	`
	rows, err := r.db.Query(ctx, query, buyerID)
	if err != nil {
		return nil, fmt.Errorf("repository: failed to query cart of buyer %d: %w", buyerID, err)
	}
	defer rows.Close()

	view := &View{Items: make([]ItemView, 0), Total: decimal.Zero}
	for rows.Next() {
		var iv ItemView
		err := rows.Scan(&iv.ID, &iv.CartID, &iv.ProductID, &iv.Quantity, &iv.UnitPrice, &iv.Subtotal,
			&iv.ProductName, &iv.ImageURL, &iv.ShopName)
		if err != nil {
			return nil, fmt.Errorf("repository: failed to scan cart item: %w", err)
		}
		view.Items = append(view.Items, iv)
		view.Total = view.Total.Add(iv.Subtotal)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repository: failed iterating cart items: %w", err)
	}
	return view, nil
}

func lockProduct(ctx context.Context, tx pgx.Tx, productID int64) (stockedProduct, error) {
	var p stockedProduct
	err := tx.QueryRow(ctx,
		`SELECT id, name, price, stock_quantity FROM products WHERE id = $1 FOR SHARE`, productID).
		Scan(&p.ID, &p.Name, &p.Price, &p.Stock)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return p, ErrProductNotFound
		}
		return p, fmt.Errorf("repository: failed to select product %d: %w", productID, err)
	}
	return p, nil
}

func (r *postgresRepository) AddItem(ctx context.Context, buyerID, productID int64, quantity int) (*Item, error) {
	var added Item
	err := db.WithTx(ctx, r.db, func(tx pgx.Tx) error {
		product, err := lockProduct(ctx, tx, productID)
		if err != nil {
			return err
		}

		var cartID int64
		err = tx.QueryRow(ctx, `
			INSERT INTO carts (buyer_id) VALUES ($1)
			ON CONFLICT (buyer_id) DO UPDATE SET buyer_id = EXCLUDED.buyer_id
			RETURNING id`, buyerID).Scan(&cartID)
		if err != nil {
			if db.IsForeignKeyViolation(err) {
				return ErrBuyerNotFound
			}
			return fmt.Errorf("repository: failed to get cart of buyer %d: %w", buyerID, err)
		}

		var existing *Item
		var it Item
		err = tx.QueryRow(ctx, `
			SELECT id, cart_id, product_id, quantity, unit_price, subtotal
			FROM cart_items
			WHERE cart_id = $1 AND product_id = $2
			FOR UPDATE`, cartID, productID).
			Scan(&it.ID, &it.CartID, &it.ProductID, &it.Quantity, &it.UnitPrice, &it.Subtotal)
		switch {
		case err == nil:
			existing = &it
		case !errors.Is(err, pgx.ErrNoRows):
			return fmt.Errorf("repository: failed to select cart item: %w", err)
		}

		line, err := planAdd(existing, product, quantity)
		if err != nil {
			return err
		}
		line.CartID = cartID

		if existing != nil {
			_, err = tx.Exec(ctx, `UPDATE cart_items SET quantity = $1, subtotal = $2 WHERE id = $3`,
				line.Quantity, line.Subtotal, line.ID)
		} else {
			err = tx.QueryRow(ctx, `
				INSERT INTO cart_items (cart_id, product_id, quantity, unit_price, subtotal)
				VALUES ($1, $2, $3, $4, $5)
				RETURNING id`, line.CartID, line.ProductID, line.Quantity, line.UnitPrice, line.Subtotal).
				Scan(&line.ID)
		}
		if err != nil {
			return fmt.Errorf("repository: failed to save cart item: %w", err)
		}

		added = line
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &added, nil
}

func (r *postgresRepository) UpdateItemQuantity(ctx context.Context, itemID int64, quantity int) (*Item, error) {
	var updated Item
	err := db.WithTx(ctx, r.db, func(tx pgx.Tx) error {
		var (
			it      Item
			product stockedProduct
		)
		err := tx.QueryRow(ctx, `
			SELECT ci.id, ci.cart_id, ci.product_id, ci.unit_price, p.name, p.stock_quantity
			FROM cart_items ci
			JOIN products p ON p.id = ci.product_id
			WHERE ci.id = $1
			FOR UPDATE OF ci`, itemID).
			Scan(&it.ID, &it.CartID, &it.ProductID, &it.UnitPrice, &product.Name, &product.Stock)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return ErrItemNotFound
			}
			return fmt.Errorf("repository: failed to select cart item %d: %w", itemID, err)
		}

		if quantity > product.Stock {
			return &InsufficientStockError{
				ProductID:   it.ProductID,
				ProductName: product.Name,
				Requested:   quantity,
				Available:   product.Stock,
			}
		}

		it.Quantity = quantity
		if it.Subtotal, err = lineSubtotal(quantity, it.UnitPrice); err != nil {
			return err
		}
		_, err = tx.Exec(ctx, `UPDATE cart_items SET quantity = $1, subtotal = $2 WHERE id = $3`,
			it.Quantity, it.Subtotal, it.ID)
		if err != nil {
			return fmt.Errorf("repository: failed to update cart item %d: %w", itemID, err)
		}

		updated = it
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

func (r *postgresRepository) DeleteItem(ctx context.Context, itemID int64) error {
	cmdTag, err := r.db.Exec(ctx, `DELETE FROM cart_items WHERE id = $1`, itemID)
	if err != nil {
		return fmt.Errorf("repository: failed to delete cart item %d: %w", itemID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return ErrItemNotFound
	}
	return nil
}

// Checkout turns the buyer's cart into an order in one transaction. Product
// rows are locked in id order and each decrement is conditional on the
// stock still covering the line.
func (r *postgresRepository) Checkout(ctx context.Context, buyerID int64) (*OrderRef, error) {
	var ref OrderRef
	err := db.WithTx(ctx, r.db, func(tx pgx.Tx) error {
		var address string
		err := tx.QueryRow(ctx, `SELECT address_line FROM buyers WHERE id = $1`, buyerID).Scan(&address)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return ErrBuyerNotFound
			}
			return fmt.Errorf("repository: failed to select buyer %d: %w", buyerID, err)
		}
		if address == "" {
			return ErrNoAddress
		}

		var cartID int64
		err = tx.QueryRow(ctx, `SELECT id FROM carts WHERE buyer_id = $1 FOR UPDATE`, buyerID).Scan(&cartID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return ErrEmptyCart
			}
			return fmt.Errorf("repository: failed to select cart of buyer %d: %w", buyerID, err)
		}

		lines, err := lockCheckoutLines(ctx, tx, cartID)
		if err != nil {
			return err
		}

		plan, err := planCheckout(lines)
		if err != nil {
			return err
		}

		err = tx.QueryRow(ctx, `
			INSERT INTO orders (buyer_id, shipping_address, total_amount)
			VALUES ($1, $2, $3)
			RETURNING id, created_at`, buyerID, address, plan.Total).
			Scan(&ref.OrderID, &ref.CreatedAt)
		if err != nil {
			return fmt.Errorf("repository: failed to insert order: %w", err)
		}

		for _, l := range plan.Lines {
			_, err = tx.Exec(ctx, `
				INSERT INTO order_items (order_id, product_id, seller_id, quantity, unit_price, subtotal, status)
				VALUES ($1, $2, $3, $4, $5, $6, 'pending')`,
				ref.OrderID, l.ProductID, l.SellerID, l.Quantity, l.UnitPrice, subtotal(l.Quantity, l.UnitPrice))
			if err != nil {
				return fmt.Errorf("repository: failed to insert order item for product %d: %w", l.ProductID, err)
			}

			cmdTag, err := tx.Exec(ctx, `
				UPDATE products
				SET stock_quantity = stock_quantity - $1, updated_at = NOW()
				WHERE id = $2 AND stock_quantity >= $1`, l.Quantity, l.ProductID)
			if err != nil {
				return fmt.Errorf("repository: failed to decrement stock of product %d: %w", l.ProductID, err)
			}
			if cmdTag.RowsAffected() == 0 {
				return &InsufficientStockError{ProductID: l.ProductID, ProductName: l.ProductName, Requested: l.Quantity}
			}
		}

		if _, err := tx.Exec(ctx, `DELETE FROM carts WHERE id = $1`, cartID); err != nil {
			return fmt.Errorf("repository: failed to delete cart %d: %w", cartID, err)
		}

		ref.Total = plan.Total
		ref.ItemCount = len(plan.Lines)
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Info().Int64("order_id", ref.OrderID).Int64("buyer_id", buyerID).
		Str("total", ref.Total.StringFixed(2)).Int("items", ref.ItemCount).Msg("Order created from cart")
	return &ref, nil
}

func lockCheckoutLines(ctx context.Context, tx pgx.Tx, cartID int64) ([]checkoutLine, error) {
	rows, err := tx.Query(ctx, `
		SELECT ci.id, ci.product_id, p.name, p.seller_id, p.stock_quantity, ci.quantity, ci.unit_price
		FROM cart_items ci
		JOIN products p ON p.id = ci.product_id
		WHERE ci.cart_id = $1
		ORDER BY p.id
		FOR UPDATE OF p`, cartID)
	if err != nil {
		return nil, fmt.Errorf("repository: failed to lock cart products: %w", err)
	}
	defer rows.Close()

	var lines []checkoutLine
	for rows.Next() {
		var l checkoutLine
		if err := rows.Scan(&l.CartItemID, &l.ProductID, &l.ProductName, &l.SellerID, &l.Stock,
			&l.Quantity, &l.UnitPrice); err != nil {
			return nil, fmt.Errorf("repository: failed to scan cart line: %w", err)
		}
		lines = append(lines, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repository: failed iterating cart lines: %w", err)
	}
	return lines, nil
}
