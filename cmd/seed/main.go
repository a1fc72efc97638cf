package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"canteen/internal/config"
	"canteen/internal/db"
	"canteen/internal/logger"
	"canteen/internal/repository"
	"canteen/internal/seed"
	"canteen/internal/service"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var (
	fixturesFile string
	resetFirst   bool
)

var rootCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load demo allergens, users and dishes into the canteen database",
	Long: "Seed applies a YAML fixtures document. Without --file the bundled fixtures are used. " +
		"Rows that already exist are skipped, so the command can be rerun safely.",
	SilenceUsage: true,
	RunE:         runSeed,
}

func init() {
	rootCmd.Flags().StringVarP(&fixturesFile, "file", "f", "", "path to a fixtures YAML file")
	rootCmd.Flags().BoolVar(&resetFirst, "reset", false, "drop every table before migrating")
}

func runSeed(cmd *cobra.Command, args []string) error {
	cfg := config.Load()
	if err := logger.Init(logger.Config{Level: cfg.LogLevel}); err != nil {
		return err
	}
	defer logger.Sync()

	fixtures, err := loadFixtures(fixturesFile)
	if err != nil {
		return err
	}

	gormDB, err := db.Open(cfg.DBDriver, cfg.DatabaseDSN)
	if err != nil {
		return err
	}
	if resetFirst || cfg.ResetDB {
		logger.Log.Warn("dropping all tables before seeding")
		if err := db.Reset(gormDB); err != nil {
			return err
		}
	}
	if err := db.Migrate(gormDB); err != nil {
		return err
	}

	store := repository.NewStore(gormDB)
	res, err := seed.New(store, service.NewLedgerService(store)).Run(context.Background(), fixtures)
	if err != nil {
		return err
	}

	logger.Log.Info("seed finished",
		zap.String("driver", cfg.DBDriver),
		zap.Int("created", res.Allergens+res.Users+res.Dishes),
		zap.Int("skipped", res.Skipped),
	)
	return nil
}

func loadFixtures(path string) (*seed.Fixtures, error) {
	if path == "" {
		return seed.Default()
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open fixtures: %w", err)
	}
	defer f.Close()
	return seed.Parse(f)
}
