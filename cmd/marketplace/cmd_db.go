package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/vasiliy-maslov/marketplace-service/internal/account"
	"github.com/vasiliy-maslov/marketplace-service/internal/db"
)

var rollbackSteps int

// marketplace migrate
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Manage the database schema",
}

// marketplace migrate up
var migrateUpCmd = &cobra.Command{
	Use:   "up",
	Short: "Apply all pending migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := boot()
		if err != nil {
			return err
		}
		return db.ApplyMigrations(cfg.Postgres)
	},
}

// marketplace migrate down --steps N
var migrateDownCmd = &cobra.Command{
	Use:   "down",
	Short: "Roll back the last migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		if rollbackSteps < 1 {
			return fmt.Errorf("--steps must be at least 1")
		}
		cfg, err := boot()
		if err != nil {
			return err
		}
		return db.RollbackMigrations(cfg.Postgres, rollbackSteps)
	},
}

var adminUsername, adminEmail, adminPassword string

// marketplace create-admin
var createAdminCmd = &cobra.Command{
	Use:   "create-admin",
	Short: "Create an administrator account",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := boot()
		if err != nil {
			return err
		}

		pg, err := db.New(cmd.Context(), cfg.Postgres)
		if err != nil {
			return err
		}
		defer pg.Close()

		svc := account.NewService(account.NewRepository(pg.Pool), account.NewBcryptHasher(), cfg.Admin)
		admin, err := svc.CreateAdmin(cmd.Context(), adminUsername, adminEmail, adminPassword)
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Admin %q created with id %d\n", admin.Username, admin.ID)
		return nil
	},
}

func init() {
	migrateDownCmd.Flags().IntVar(&rollbackSteps, "steps", 1, "number of migrations to roll back")
	migrateCmd.AddCommand(migrateUpCmd, migrateDownCmd)

	createAdminCmd.Flags().StringVar(&adminUsername, "username", "", "admin username")
	createAdminCmd.Flags().StringVar(&adminEmail, "email", "", "admin email")
	createAdminCmd.Flags().StringVar(&adminPassword, "password", "", "admin password")
	for _, name := range []string{"username", "email", "password"} {
		_ = createAdminCmd.MarkFlagRequired(name)
	}
}
