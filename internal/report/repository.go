// Package report runs the read-only aggregate queries behind the seller
// dashboard, buyer statistics and the admin overview.
package report

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
)

type Repository interface {
	SellerSummary(ctx context.Context, sellerID int64) (*SellerSummary, error)
	SellerDashboard(ctx context.Context, sellerID int64, w Window) (*SellerDashboard, error)
	BuyerPeriod(ctx context.Context, buyerID int64, since time.Time) (*BuyerPeriod, error)
	AdminStats(ctx context.Context, w Window, activeSince time.Time) (*AdminStats, error)
}

type sqlxRepository struct {
	db *sqlx.DB
}

// NewRepository shares the pgx pool with the rest of the service through
// database/sql, so aggregate rows can be scanned into tagged structs.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &sqlxRepository{db: sqlx.NewDb(stdlib.OpenDBFromPool(pool), "pgx")}
}

func (r *sqlxRepository) SellerSummary(ctx context.Context, sellerID int64) (*SellerSummary, error) {
	query := `
		SELECT
			(SELECT COUNT(*) FROM products WHERE seller_id = $1) AS products,
			(SELECT COUNT(*) FROM order_items WHERE seller_id = $1) AS orders,
			(SELECT COUNT(*) FROM order_items WHERE seller_id = $1 AND status = 'completed') AS completed,
			(SELECT COALESCE(SUM(subtotal), 0) FROM order_items WHERE seller_id = $1 AND status = 'completed') AS revenue
	`
	var s SellerSummary
	if err := r.db.GetContext(ctx, &s, query, sellerID); err != nil {
		return nil, fmt.Errorf("repository: failed to compute seller %d summary: %w", sellerID, err)
	}
	return &s, nil
}

func (r *sqlxRepository) SellerDashboard(ctx context.Context, sellerID int64, w Window) (*SellerDashboard, error) {
	query := `
		SELECT
			(SELECT COALESCE(SUM(view_count), 0) FROM products WHERE seller_id = $1) AS views,
			(SELECT COUNT(DISTINCT oi.order_id)
			   FROM order_items oi JOIN orders o ON o.id = oi.order_id
			  WHERE oi.seller_id = $1
			    AND ($2::timestamptz IS NULL OR o.created_at >= $2)
			    AND ($3::timestamptz IS NULL OR o.created_at < $3)) AS new_orders,
			(SELECT COALESCE(SUM(oi.subtotal), 0)
			   FROM order_items oi JOIN orders o ON o.id = oi.order_id
			  WHERE oi.seller_id = $1
			    AND ($2::timestamptz IS NULL OR o.created_at >= $2)
			    AND ($3::timestamptz IS NULL OR o.created_at < $3)) AS revenue
	`
	var d SellerDashboard
	if err := r.db.GetContext(ctx, &d, query, sellerID, w.From, w.To); err != nil {
		return nil, fmt.Errorf("repository: failed to compute seller %d dashboard: %w", sellerID, err)
	}
	return &d, nil
}

func (r *sqlxRepository) BuyerPeriod(ctx context.Context, buyerID int64, since time.Time) (*BuyerPeriod, error) {
	query := `
		SELECT COUNT(*) AS orders, COALESCE(SUM(total_amount), 0) AS revenue
		FROM orders
		WHERE buyer_id = $1 AND created_at >= $2
	`
	var p BuyerPeriod
	if err := r.db.GetContext(ctx, &p, query, buyerID, since); err != nil {
		return nil, fmt.Errorf("repository: failed to compute buyer %d stats: %w", buyerID, err)
	}
	return &p, nil
}

// AdminStats counts an active user once per account: a buyer and a seller
// sharing a numeric id are different users.
func (r *sqlxRepository) AdminStats(ctx context.Context, w Window, activeSince time.Time) (*AdminStats, error) {
	query := `
		SELECT
			(SELECT COALESCE(SUM(total_amount), 0) FROM orders
			  WHERE ($1::timestamptz IS NULL OR created_at >= $1)
			    AND ($2::timestamptz IS NULL OR created_at < $2)) AS gmv,
			(SELECT COUNT(*) FROM (
				SELECT 'buyer' AS kind, buyer_id AS id FROM orders
				 WHERE ($1::timestamptz IS NULL OR created_at >= $1)
				   AND ($2::timestamptz IS NULL OR created_at < $2)
				UNION
				SELECT 'seller', seller_id FROM products
				 WHERE ($1::timestamptz IS NULL OR created_at >= $1)
				   AND ($2::timestamptz IS NULL OR created_at < $2)
			) AS active) AS dau,
			(SELECT COUNT(*) FROM (
				SELECT 'buyer' AS kind, buyer_id AS id FROM orders WHERE created_at >= $3
				UNION
				SELECT 'seller', seller_id FROM products WHERE created_at >= $3
			) AS monthly) AS mau,
			(SELECT COUNT(*) FROM products
			  WHERE status = 'waiting_for_approve'
			    AND ($1::timestamptz IS NULL OR created_at >= $1)
			    AND ($2::timestamptz IS NULL OR created_at < $2)) AS pending_products
	`
	var s AdminStats
	if err := r.db.GetContext(ctx, &s, query, w.From, w.To, activeSince); err != nil {
		return nil, fmt.Errorf("repository: failed to compute admin stats: %w", err)
	}
	return &s, nil
}
