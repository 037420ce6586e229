package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"vehicle-catalog/core/config"
	"vehicle-catalog/core/database"
	"vehicle-catalog/core/logger"
	"vehicle-catalog/feature/catalog"
	"vehicle-catalog/feature/catalog/models"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// snapshotCmd represents the snapshot command
var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Dump the adapted vehicle catalog as JSON",
	Long: `Loads a full catalog snapshot from the store, runs it through the
same adaptation the server uses, and prints the resulting vehicle views.
Useful to inspect what the storefront would serve.`,
	Run: func(cmd *cobra.Command, args []string) {
		runSnapshot(cmd.Context())
	},
}

func init() {
	RootCmd.AddCommand(snapshotCmd)
}

func runSnapshot(ctx context.Context) {
	cfg, err := config.LoadConfig(".")
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	logg, err := logger.New(&cfg.Log)
	if err != nil {
		fmt.Printf("Failed to create logger: %v\n", err)
		os.Exit(1)
	}

	db, err := database.Connect(cfg.Database)
	if err != nil {
		logg.Fatal("Failed to connect to database", zap.Error(err))
	}

	cars, err := catalog.LoadCars(ctx, db, cfg.Catalog.ActiveOnly)
	if err != nil {
		logg.Fatal("Snapshot load failed", zap.Error(err))
	}

	vehicles := make([]models.Vehicle, 0, len(cars))
	for _, car := range cars {
		view, err := catalog.AdaptCar(car)
		if err != nil {
			logg.Warn("Skipping malformed car record", zap.String("id", car.ID), zap.Error(err))
			continue
		}
		vehicles = append(vehicles, view)
	}

	out, err := json.MarshalIndent(vehicles, "", "  ")
	if err != nil {
		logg.Fatal("Failed to encode snapshot", zap.Error(err))
	}
	fmt.Println(string(out))
}
