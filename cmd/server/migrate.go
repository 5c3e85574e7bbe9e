package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Simplici0/estimator/internal/seed"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending database migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd.Context(), cfg, zap.L())
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.migrate(cmd.Context()); err != nil {
			return err
		}
		cmd.Println("migrations applied")
		return nil
	},
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Create the admin user and starter rates if missing",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd.Context(), cfg, zap.L())
		if err != nil {
			return err
		}
		defer a.Close()

		stats, err := seed.Run(cmd.Context(), a.db, a.rates, seed.Config{
			AdminEmail:    cfg.Admin.Email,
			AdminPassword: cfg.Admin.Password,
		})
		if err != nil {
			return err
		}
		cmd.Printf("seed complete: %d inserts\n", stats.Inserts)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(seedCmd)
}
