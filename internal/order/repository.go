package order

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
	"github.com/vasiliy-maslov/marketplace-service/internal/apperr"
)

var ErrNotItemOwner = apperr.New(apperr.ErrForbidden, "Not allowed to update this order item")

type Repository interface {
	ListByBuyer(ctx context.Context, buyerID int64) ([]BuyerLine, error)
	ListBySeller(ctx context.Context, sellerID int64, r DateRange) ([]SellerLine, error)
	UpdateItemStatus(ctx context.Context, sellerID, itemID int64, status ItemStatus) error
}

type postgresRepository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Repository {
	return &postgresRepository{db: db}
}

func (r *postgresRepository) ListByBuyer(ctx context.Context, buyerID int64) ([]BuyerLine, error) {
	query := `
		SELECT o.id, oi.id, p.id, p.name, COALESCE(p.image_url, ''), COALESCE(s.shop_name, 'Shop'),
		       oi.seller_id, oi.quantity, oi.unit_price, oi.subtotal, oi.status, o.created_at
		FROM orders o
		JOIN order_items oi ON oi.order_id = o.id
		JOIN products p ON p.id = oi.product_id
		LEFT JOIN sellers s ON s.id = p.seller_id
		WHERE o.buyer_id = $1
		ORDER BY o.created_at DESC, o.id DESC, oi.id
	`
	rows, err := r.db.Query(ctx, query, buyerID)
	if err != nil {
		log.Error().Err(err).Int64("buyer_id", buyerID).Msg("repository: failed to query buyer orders")
		return nil, fmt.Errorf("repository: failed to query orders of buyer %d: %w", buyerID, err)
	}
	defer rows.Close()

	lines := make([]BuyerLine, 0)
	for rows.Next() {
		var (
			l      BuyerLine
			status string
		)
		err := rows.Scan(&l.OrderID, &l.OrderItemID, &l.ProductID, &l.ProductName, &l.ImageURL, &l.ShopName,
			&l.SellerID, &l.Quantity, &l.UnitPrice, &l.Subtotal, &status, &l.OrderedAt)
		if err != nil {
			return nil, fmt.Errorf("repository: failed to scan order line: %w", err)
		}
		l.Status = ItemStatus(status)
		lines = append(lines, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repository: failed iterating order lines: %w", err)
	}
	return lines, nil
}

func (r *postgresRepository) ListBySeller(ctx context.Context, sellerID int64, dr DateRange) ([]SellerLine, error) {
	query := `
		SELECT o.id, oi.id, oi.status, o.created_at, oi.subtotal,
		       b.full_name, COALESCE(b.phone_number, ''), p.name, oi.quantity, oi.unit_price
		FROM order_items oi
		JOIN orders o ON o.id = oi.order_id
		JOIN buyers b ON b.id = o.buyer_id
		JOIN products p ON p.id = oi.product_id
		WHERE oi.seller_id = $1
		  AND ($2::timestamptz IS NULL OR o.created_at >= $2)
		  AND ($3::timestamptz IS NULL OR o.created_at < $3)
		ORDER BY o.created_at DESC, oi.id
	`
	rows, err := r.db.Query(ctx, query, sellerID, dr.From, dr.Before)
	if err != nil {
		log.Error().Err(err).Int64("seller_id", sellerID).Msg("repository: failed to query seller orders")
		return nil, fmt.Errorf("repository: failed to query orders of seller %d: %w", sellerID, err)
	}
	defer rows.Close()

	lines := make([]SellerLine, 0)
	for rows.Next() {
		var (
			l      SellerLine
			status string
		)
		err := rows.Scan(&l.OrderID, &l.OrderItemID, &status, &l.OrderedAt, &l.Subtotal,
			&l.BuyerName, &l.BuyerPhone, &l.ProductName, &l.Quantity, &l.UnitPrice)
		if err != nil {
			return nil, fmt.Errorf("repository: failed to scan seller order line: %w", err)
		}
		l.Status = ItemStatus(status)
		lines = append(lines, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repository: failed iterating seller order lines: %w", err)
	}
	return lines, nil
}

// UpdateItemStatus overwrites the status of an item the seller owns. An
// item that does not exist or belongs to another seller is refused alike.
func (r *postgresRepository) UpdateItemStatus(ctx context.Context, sellerID, itemID int64, status ItemStatus) error {
	query := `UPDATE order_items SET status = $1::order_item_status WHERE id = $2 AND seller_id = $3`

	cmdTag, err := r.db.Exec(ctx, query, string(status), itemID, sellerID)
	if err != nil {
		log.Error().Err(err).Int64("order_item_id", itemID).Str("status", string(status)).
			Msg("repository: failed to update order item status")
		return fmt.Errorf("repository: failed to update status of order item %d: %w", itemID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return ErrNotItemOwner
	}
	return nil
}
