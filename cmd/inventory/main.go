// Command inventory administers the inventory database from the shell.
package main

import (
	"fmt"
	"os"

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ovaphlow/pitchfork/service-inventory-go/internal/app"
	"github.com/ovaphlow/pitchfork/service-inventory-go/internal/config"
	"github.com/ovaphlow/pitchfork/service-inventory-go/pkg/database"
	"github.com/ovaphlow/pitchfork/service-inventory-go/pkg/utilities"
)

var (
	configFile string
	jsonOutput bool

	// inv is the application context, opened by PersistentPreRunE.
	inv    *app.App
	db     *sqlx.DB
	logger *zap.Logger
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:               "inventory",
	Short:             "Inventory administers users, locations, items and usages",
	SilenceUsage:      true,
	PersistentPreRunE: openApp,
}

func init() {
	// finalizers run even when RunE fails, unlike PersistentPostRunE
	cobra.OnFinalize(func() {
		if err := closeApp(); err != nil {
			fmt.Fprintln(os.Stderr, "close:", err)
		}
	})

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "output as JSON")

	rootCmd.AddCommand(schemaCmd)
	rootCmd.AddCommand(userCmd)
	rootCmd.AddCommand(locationCmd)
	rootCmd.AddCommand(itemCmd)
}

func openApp(cmd *cobra.Command, args []string) error {
	_ = godotenv.Load()

	cfg, err := config.Load(configFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	lc := cfg.LoggerConfig()
	// keep stdout for command output
	lc.Dev = true
	if logger, err = utilities.Init(lc); err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	if db, err = database.Connect(cfg.DatabaseConfig()); err != nil {
		return err
	}
	inv = app.New(db, logger.Sugar(), cfg.AppOptions())
	if cfg.Database.EnsureSchema {
		return inv.EnsureSchema(cmd.Context())
	}
	return nil
}

func closeApp() error {
	inv = nil
	if logger != nil {
		_ = logger.Sync()
		logger = nil
	}
	if db == nil {
		return nil
	}
	err := db.Close()
	db = nil
	return err
}

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Create missing tables",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := inv.EnsureSchema(cmd.Context()); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "schema ready")
		return nil
	},
}
