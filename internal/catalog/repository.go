package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
	"github.com/vasiliy-maslov/marketplace-service/internal/apperr"
	"github.com/vasiliy-maslov/marketplace-service/internal/asset"
	"github.com/vasiliy-maslov/marketplace-service/internal/db"
)

var (
	ErrProductNotFound  = apperr.New(apperr.ErrNotFound, "Product not found")
	ErrCategoryNotFound = apperr.New(apperr.ErrInvalidInput, "Category does not exist")
	ErrProductInUse     = apperr.New(apperr.ErrConflict, "Product is referenced by existing orders")
)

type Repository interface {
	ListCategories(ctx context.Context) ([]Category, error)
	CategoryExists(ctx context.Context, id int64) (bool, error)

	ListApproved(ctx context.Context) ([]ProductSummary, error)
	GetSummary(ctx context.Context, id int64) (*ProductSummary, error)
	RecordView(ctx context.Context, id int64) error

	ListBySeller(ctx context.Context, sellerID int64) ([]ProductSummary, error)
	Create(ctx context.Context, sellerID int64, p NewProduct) (*Product, error)
	Update(ctx context.Context, sellerID, productID int64, upd ProductUpdate) (*Product, error)
	Delete(ctx context.Context, sellerID, productID int64) error

	ListByStatus(ctx context.Context, filter ModerationFilter) ([]ProductSummary, int, error)
	SetStatus(ctx context.Context, id int64, status ProductStatus) error
}

type postgresRepository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Repository {
	return &postgresRepository{db: db}
}

func (r *postgresRepository) ListCategories(ctx context.Context) ([]Category, error) {
	rows, err := r.db.Query(ctx, `SELECT id, name, COALESCE(description, '') FROM categories ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("repository: failed to query categories: %w", err)
	}
	defer rows.Close()

	categories := make([]Category, 0)
	for rows.Next() {
		var c Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Description); err != nil {
			return nil, fmt.Errorf("repository: failed to scan category: %w", err)
		}
		categories = append(categories, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repository: failed iterating categories: %w", err)
	}
	return categories, nil
}

func (r *postgresRepository) CategoryExists(ctx context.Context, id int64) (bool, error) {
	return categoryExists(ctx, r.db, id)
}

type queryRower interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func categoryExists(ctx context.Context, q queryRower, id int64) (bool, error) {
	var exists bool
	err := q.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM categories WHERE id = $1)`, id).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("repository: failed to check category %d: %w", id, err)
	}
	return exists, nil
}

// summarySelect joins sellers and categories with LEFT JOIN so a product
// whose relation is gone still lists, with placeholder names.
const summarySelect = `
	SELECT p.id, p.seller_id, p.category_id, p.name, COALESCE(p.description, ''), p.price,
	       p.stock_quantity, COALESCE(p.image_url, ''), p.status, p.view_count, p.viewed_at,
	       p.created_at, p.updated_at,
	       COALESCE(s.shop_name, $1), COALESCE(c.name, $2)
	FROM products p
	LEFT JOIN sellers s ON s.id = p.seller_id
	LEFT JOIN categories c ON c.id = p.category_id
`

func scanSummary(row pgx.Row) (*ProductSummary, error) {
	var (
		ps     ProductSummary
		status string
	)
	err := row.Scan(&ps.ID, &ps.SellerID, &ps.CategoryID, &ps.Name, &ps.Description, &ps.Price,
		&ps.StockQuantity, &ps.ImageURL, &status, &ps.ViewCount, &ps.ViewedAt,
		&ps.CreatedAt, &ps.UpdatedAt,
		&ps.SellerName, &ps.CategoryName)
	if err != nil {
		return nil, err
	}
	ps.Status = ProductStatus(status)
	return &ps, nil
}

func (r *postgresRepository) listSummaries(ctx context.Context, query string, args ...any) ([]ProductSummary, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("repository: failed to query products: %w", err)
	}
	defer rows.Close()

	products := make([]ProductSummary, 0)
	for rows.Next() {
		ps, err := scanSummary(rows)
		if err != nil {
			return nil, fmt.Errorf("repository: failed to scan product: %w", err)
		}
		products = append(products, *ps)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repository: failed iterating products: %w", err)
	}
	return products, nil
}

func (r *postgresRepository) ListApproved(ctx context.Context) ([]ProductSummary, error) {
	query := summarySelect + `WHERE p.status = 'approved' ORDER BY p.id`
	return r.listSummaries(ctx, query, UnknownSellerName, UnknownCategoryName)
}

func (r *postgresRepository) GetSummary(ctx context.Context, id int64) (*ProductSummary, error) {
	query := summarySelect + `WHERE p.id = $3`
	ps, err := scanSummary(r.db.QueryRow(ctx, query, UnknownSellerName, UnknownCategoryName, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("repository: failed to select product %d: %w", id, err)
	}
	return ps, nil
}

func (r *postgresRepository) RecordView(ctx context.Context, id int64) error {
	cmdTag, err := r.db.Exec(ctx,
		`UPDATE products SET view_count = view_count + 1, viewed_at = NOW() WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("repository: failed to record view of product %d: %w", id, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return ErrProductNotFound
	}
	return nil
}

func (r *postgresRepository) ListBySeller(ctx context.Context, sellerID int64) ([]ProductSummary, error) {
	query := summarySelect + `WHERE p.seller_id = $3 ORDER BY p.created_at DESC, p.id DESC`
	return r.listSummaries(ctx, query, UnknownSellerName, UnknownCategoryName, sellerID)
}

func (r *postgresRepository) Create(ctx context.Context, sellerID int64, np NewProduct) (*Product, error) {
	exists, err := r.CategoryExists(ctx, np.CategoryID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, ErrCategoryNotFound
	}

	p := &Product{
		SellerID:      sellerID,
		CategoryID:    np.CategoryID,
		Name:          np.Name,
		Description:   np.Description,
		Price:         np.Price,
		StockQuantity: np.StockQuantity,
		ImageURL:      asset.JoinImages(np.Images),
		Status:        StatusWaitingForApprove,
	}

	query := `
		INSERT INTO products (seller_id, category_id, name, description, price, stock_quantity, image_url, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8::product_status)
		RETURNING id, view_count, viewed_at, created_at
	`
	err = r.db.QueryRow(ctx, query, p.SellerID, p.CategoryID, p.Name, p.Description, p.Price,
		p.StockQuantity, p.ImageURL, string(p.Status)).
		Scan(&p.ID, &p.ViewCount, &p.ViewedAt, &p.CreatedAt)
	if err != nil {
		if db.IsForeignKeyViolation(err) {
			return nil, apperr.Newf(apperr.ErrNotFound, "Seller %d not found", sellerID)
		}
		return nil, fmt.Errorf("repository: failed to insert product: %w", err)
	}

	log.Info().Int64("product_id", p.ID).Int64("seller_id", sellerID).Msg("Product created, waiting for approval")
	return p, nil
}

func (r *postgresRepository) Update(ctx context.Context, sellerID, productID int64, upd ProductUpdate) (*Product, error) {
	var updated *Product
	err := db.WithTx(ctx, r.db, func(tx pgx.Tx) error {
		var (
			p      Product
			status string
		)
		query := `
			SELECT id, seller_id, category_id, name, COALESCE(description, ''), price, stock_quantity,
			       COALESCE(image_url, ''), status, view_count, viewed_at, created_at, updated_at
			FROM products
			WHERE id = $1 AND seller_id = $2
			FOR UPDATE
		`
		err := tx.QueryRow(ctx, query, productID, sellerID).Scan(&p.ID, &p.SellerID, &p.CategoryID, &p.Name,
			&p.Description, &p.Price, &p.StockQuantity, &p.ImageURL, &status, &p.ViewCount, &p.ViewedAt,
			&p.CreatedAt, &p.UpdatedAt)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return ErrProductNotFound
			}
			return fmt.Errorf("repository: failed to lock product %d: %w", productID, err)
		}
		p.Status = ProductStatus(status)

		if upd.CategoryID != nil {
			exists, err := categoryExists(ctx, tx, *upd.CategoryID)
			if err != nil {
				return err
			}
			if exists {
				p.CategoryID = *upd.CategoryID
			}
		}
		if upd.Name != nil {
			p.Name = *upd.Name
		}
		if upd.Description != nil {
			p.Description = *upd.Description
		}
		if upd.Price != nil {
			p.Price = *upd.Price
		}
		if upd.StockQuantity != nil {
			p.StockQuantity = *upd.StockQuantity
		}
		if upd.Images != nil {
			p.ImageURL = asset.JoinImages(*upd.Images)
		}
		if upd.Status != nil {
			if s := ProductStatus(*upd.Status); s.Valid() {
				p.Status = s
			}
		}

		update := `
			UPDATE products
			SET category_id = $1, name = $2, description = $3, price = $4, stock_quantity = $5,
			    image_url = $6, status = $7::product_status, updated_at = NOW()
			WHERE id = $8
			RETURNING updated_at
		`
		err = tx.QueryRow(ctx, update, p.CategoryID, p.Name, p.Description, p.Price, p.StockQuantity,
			p.ImageURL, string(p.Status), p.ID).Scan(&p.UpdatedAt)
		if err != nil {
			return fmt.Errorf("repository: failed to update product %d: %w", p.ID, err)
		}
		updated = &p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (r *postgresRepository) Delete(ctx context.Context, sellerID, productID int64) error {
	cmdTag, err := r.db.Exec(ctx, `DELETE FROM products WHERE id = $1 AND seller_id = $2`, productID, sellerID)
	if err != nil {
		if db.IsForeignKeyViolation(err) {
			return ErrProductInUse
		}
		return fmt.Errorf("repository: failed to delete product %d: %w", productID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return ErrProductNotFound
	}
	return nil
}

func (r *postgresRepository) ListByStatus(ctx context.Context, filter ModerationFilter) ([]ProductSummary, int, error) {
	var total int
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM products WHERE status = $1::product_status`, string(filter.Status)).
		Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("repository: failed to count products: %w", err)
	}

	query := summarySelect + `
		WHERE p.status = $3::product_status
		ORDER BY p.created_at DESC, p.id DESC
		LIMIT $4 OFFSET $5`
	products, err := r.listSummaries(ctx, query, "Unknown", UnknownCategoryName,
		string(filter.Status), filter.Page.Limit(), filter.Page.Offset())
	if err != nil {
		return nil, 0, err
	}
	return products, total, nil
}

func (r *postgresRepository) SetStatus(ctx context.Context, id int64, status ProductStatus) error {
	cmdTag, err := r.db.Exec(ctx,
		`UPDATE products SET status = $1::product_status, updated_at = NOW() WHERE id = $2`, string(status), id)
	if err != nil {
		return fmt.Errorf("repository: failed to set status of product %d: %w", id, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return ErrProductNotFound
	}
	return nil
}
