package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/vasiliy-maslov/marketplace-service/internal/app"
	"github.com/vasiliy-maslov/marketplace-service/internal/db"
	handler "github.com/vasiliy-maslov/marketplace-service/internal/handler/http"
)

var serveMigrate bool

// marketplace serve
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := boot()
		if err != nil {
			return err
		}
		log.Info().Msg("Marketplace service starting...")

		if serveMigrate {
			if err := db.ApplyMigrations(cfg.Postgres); err != nil {
				return err
			}
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		a, err := app.New(ctx, cfg)
		if err != nil {
			return err
		}
		defer a.Close()

		srv := &http.Server{
			Addr:         ":" + cfg.App.Port,
			Handler:      a.Router(),
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  120 * time.Second,
		}

		errCh := make(chan error, 1)
		go func() {
			log.Info().Str("port", cfg.App.Port).Msg("Starting HTTP server")
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- err
			}
			close(errCh)
		}()

		select {
		case err := <-errCh:
			if err != nil {
				return fmt.Errorf("server failed: %w", err)
			}
		case <-ctx.Done():
		}
		log.Info().Msg("Shutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown failed: %w", err)
		}
		log.Info().Msg("Server stopped")
		return nil
	},
}

// marketplace routes
var routesCmd = &cobra.Command{
	Use:   "routes",
	Short: "List the HTTP routes the server registers",
	RunE: func(cmd *cobra.Command, args []string) error {
		r := handler.NewRouter(handler.Services{}, handler.RouterConfig{})

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 3, ' ', 0)
		fmt.Fprintln(w, "METHOD\tPATH")
		err := chi.Walk(r, func(method, route string, _ http.Handler, _ ...func(http.Handler) http.Handler) error {
			fmt.Fprintf(w, "%s\t%s\n", method, strings.ReplaceAll(route, "/*/", "/"))
			return nil
		})
		if err != nil {
			return err
		}
		return w.Flush()
	},
}

func init() {
	serveCmd.Flags().BoolVar(&serveMigrate, "migrate", false, "apply pending migrations before serving")
}
