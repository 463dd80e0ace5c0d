// Package app wires configuration, storage and the domain services into one
// process-wide context.
package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/vasiliy-maslov/marketplace-service/internal/account"
	"github.com/vasiliy-maslov/marketplace-service/internal/asset"
	"github.com/vasiliy-maslov/marketplace-service/internal/cart"
	"github.com/vasiliy-maslov/marketplace-service/internal/catalog"
	"github.com/vasiliy-maslov/marketplace-service/internal/config"
	"github.com/vasiliy-maslov/marketplace-service/internal/db"
	handler "github.com/vasiliy-maslov/marketplace-service/internal/handler/http"
	"github.com/vasiliy-maslov/marketplace-service/internal/order"
	"github.com/vasiliy-maslov/marketplace-service/internal/report"
	"github.com/vasiliy-maslov/marketplace-service/internal/storage"
)

type App struct {
	Config   *config.Config
	DB       *db.Postgres
	Storage  storage.Storage
	Assets   asset.Resolver
	Location *time.Location

	Accounts account.Service
	Catalog  catalog.Service
	Carts    cart.Service
	Orders   order.Service
	Reports  report.Service
}

// New connects to PostgreSQL and the upload storage and builds every
// service. Close releases what New opened.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	pg, err := db.New(ctx, cfg.Postgres)
	if err != nil {
		return nil, fmt.Errorf("app: failed to connect to database: %w", err)
	}

	files, err := storage.New(ctx, cfg.Storage)
	if err != nil {
		pg.Close()
		return nil, fmt.Errorf("app: failed to initialize storage: %w", err)
	}

	loc := cfg.Location()
	a := &App{
		Config:   cfg,
		DB:       pg,
		Storage:  files,
		Assets:   asset.NewResolver(cfg.App.PublicURL),
		Location: loc,

		Accounts: account.NewService(account.NewRepository(pg.Pool), account.NewBcryptHasher(), cfg.Admin),
		Catalog:  catalog.NewService(catalog.NewRepository(pg.Pool)),
		Carts:    cart.NewService(cart.NewRepository(pg.Pool)),
		Orders:   order.NewService(order.NewRepository(pg.Pool), loc),
		Reports:  report.NewService(report.NewRepository(pg.Pool), loc),
	}

	log.Info().
		Str("storage", cfg.Storage.Driver).
		Str("time_zone", loc.String()).
		Bool("bootstrap_admin", cfg.Admin.Email != "" && cfg.Admin.Password != "").
		Msg("Application initialized")
	return a, nil
}

func (a *App) Router() http.Handler {
	return handler.NewRouter(handler.Services{
		Accounts: a.Accounts,
		Catalog:  a.Catalog,
		Carts:    a.Carts,
		Orders:   a.Orders,
		Reports:  a.Reports,
		Files:    a.Storage,
	}, handler.RouterConfig{
		Assets:   a.Assets,
		Location: a.Location,
	})
}

func (a *App) Close() {
	a.DB.Close()
}
