// Package dbtest connects repository tests to a real PostgreSQL database.
//
// Connection settings come from DB_*_TEST environment variables with
// localhost defaults. When the database cannot be reached, Open returns an
// error and the calling package's tests skip themselves.
package dbtest

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
	"github.com/vasiliy-maslov/marketplace-service/internal/config"
	"github.com/vasiliy-maslov/marketplace-service/internal/db"
)

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// Config returns the test database settings. migrationsDir is relative to the
// calling package's directory.
func Config(migrationsDir string) config.PostgresConfig {
	path, err := filepath.Abs(migrationsDir)
	if err != nil {
		path = migrationsDir
	}
	return config.PostgresConfig{
		Host:            getEnv("DB_HOST_TEST", "localhost"),
		Port:            getEnv("DB_PORT_TEST", "5432"),
		User:            getEnv("DB_USER_TEST", "postgres"),
		Password:        getEnv("DB_PASSWORD_TEST", "postgres"),
		DBName:          getEnv("DB_NAME_TEST", "marketplace_test"),
		SSLMode:         getEnv("DB_SSLMODE_TEST", "disable"),
		MaxConns:        5,
		MinConns:        1,
		MaxConnLifetime: time.Minute,
		MigrationsPath:  path,
	}
}

// Open connects to the test database and applies migrations.
func Open(migrationsDir string) (*pgxpool.Pool, error) {
	cfg := Config(migrationsDir)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	pg, err := db.New(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if err := db.ApplyMigrations(cfg); err != nil {
		pg.Close()
		return nil, err
	}
	return pg.Pool, nil
}

// Main is the body of a repository package's TestMain. It stores the pool in
// *pool (nil when the database is unavailable) and runs the tests.
func Main(m *testing.M, pool **pgxpool.Pool) int {
	p, err := Open("../../migrations")
	if err != nil {
		log.Warn().Err(err).Msg("Test database unavailable, repository tests will be skipped")
	} else {
		*pool = p
		defer p.Close()
	}
	return m.Run()
}

// Require skips t when there is no test database.
func Require(t *testing.T, pool *pgxpool.Pool) {
	t.Helper()
	if pool == nil {
		t.Skip("test database is not available")
	}
}

// Truncate empties the mutable tables. Categories stay seeded.
func Truncate(t *testing.T, pool *pgxpool.Pool) {
	t.Helper()
	tables := []string{
		"cart_items", "carts", "order_items", "orders",
		"products", "buyers", "sellers", "admins",
	}
	query := fmt.Sprintf("TRUNCATE TABLE %s RESTART IDENTITY CASCADE", strings.Join(tables, ", "))
	if _, err := pool.Exec(context.Background(), query); err != nil {
		t.Fatalf("failed to truncate tables: %v", err)
	}
}

// CategoryID returns the id of a seeded category.
func CategoryID(t *testing.T, pool *pgxpool.Pool, name string) int64 {
	t.Helper()
	var id int64
	err := pool.QueryRow(context.Background(), `SELECT id FROM categories WHERE name = $1`, name).Scan(&id)
	if err != nil {
		t.Fatalf("failed to find category %q: %v", name, err)
	}
	return id
}

// InsertSeller creates an active seller and returns its id.
func InsertSeller(t *testing.T, pool *pgxpool.Pool, shopName, email string) int64 {
	t.Helper()
	var id int64
	err := pool.QueryRow(context.Background(),
		`INSERT INTO sellers (shop_name, email, password_hash, is_active) VALUES ($1, $2, 'x', TRUE) RETURNING id`,
		shopName, email).Scan(&id)
	if err != nil {
		t.Fatalf("failed to insert seller: %v", err)
	}
	return id
}

// InsertBuyer creates an active buyer and returns its id.
func InsertBuyer(t *testing.T, pool *pgxpool.Pool, name, email, address string) int64 {
	t.Helper()
	var id int64
	err := pool.QueryRow(context.Background(),
		`INSERT INTO buyers (full_name, email, password_hash, address_line, is_active)
		 VALUES ($1, $2, 'x', $3, TRUE) RETURNING id`,
		name, email, address).Scan(&id)
	if err != nil {
		t.Fatalf("failed to insert buyer: %v", err)
	}
	return id
}

// InsertProduct creates a product and returns its id.
func InsertProduct(t *testing.T, pool *pgxpool.Pool, sellerID, categoryID int64, name, price string, stock int, status string) int64 {
	t.Helper()
	var id int64
	err := pool.QueryRow(context.Background(),
		`INSERT INTO products (seller_id, category_id, name, price, stock_quantity, status)
		 VALUES ($1, $2, $3, $4::numeric, $5, $6::product_status) RETURNING id`,
		sellerID, categoryID, name, price, stock, status).Scan(&id)
	if err != nil {
		t.Fatalf("failed to insert product: %v", err)
	}
	return id
}
