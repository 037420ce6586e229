package cmd

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"vehicle-catalog/core/config"
	"vehicle-catalog/core/database"
	"vehicle-catalog/core/livesync"
	"vehicle-catalog/core/livesync/pgfeed"
	"vehicle-catalog/core/loader"
	"vehicle-catalog/core/logger"
	"vehicle-catalog/core/middleware/auth"
	"vehicle-catalog/core/middleware/rayid"
	"vehicle-catalog/core/storage"

	"vehicle-catalog/feature/catalog"
	"vehicle-catalog/feature/catalog/models"
	"vehicle-catalog/feature/media"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/swagger"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// @title Vehicle Catalog API
// @version 1.0
// @description Live, in-memory view of a dealership's vehicle catalog.
// @host localhost:8080
// @BasePath /

// startCmd represents the start command
var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the vehicle catalog server",
	Long:  `Starts the HTTP server, loads the catalog snapshots and subscribes to store change feeds.`,
	Run: func(cmd *cobra.Command, args []string) {
		// 1. Load Configuration
		cfg, err := config.LoadConfig(".")
		if err != nil {
			log.Fatalf("Failed to load configuration: %v", err)
		}

		// 2. Initialize Logger
		logg, err := logger.New(&cfg.Log)
		if err != nil {
			log.Fatalf("Failed to initialize logger: %v", err)
		}
		defer logg.Sync()
		zap.ReplaceGlobals(logg)

		// 3. Connect to the store. The catalog cannot serve without its
		// initial snapshot, so this connection is required.
		db, err := database.Connect(cfg.Database)
		if err != nil {
			logg.Fatal("Failed to connect to database", zap.Error(err))
		}
		logg.Info("Connected to store", zap.String("driver", cfg.Database.Driver))

		// 4. Change feed. Only the postgres driver carries notifications;
		// other drivers serve the startup snapshot until a manual refresh.
		var feed livesync.Feed
		if cfg.Catalog.Watch && cfg.Database.Driver == database.DriverPostgres {
			if err := pgfeed.InstallTriggers(cmd.Context(), db, models.WatchedTables); err != nil {
				logg.Fatal("Failed to install change-feed triggers", zap.Error(err))
			}
			feed = pgfeed.New(cfg.Database.PostgresDSN(), logg)
		} else {
			logg.Warn("Change feed unavailable", zap.String("driver", cfg.Database.Driver))
		}

		// 5. Initialize Fiber App
		app := fiber.New(fiber.Config{
			DisableStartupMessage: true, // We will log our own startup message
		})

		// 6. Initialize Storage (optional: media uploads only)
		var store storage.Client
		if client, err := storage.NewClient(cfg.Storage); err != nil {
			logg.Warn("Optional storage client failed, media uploads disabled", zap.Error(err))
		} else {
			store = client
		}

		// Middleware Registration
		// 1. RayID (Must be first to trace everything)
		app.Use(rayid.New())

		// 2. Logging Middleware (Custom to use Zap + RayID)
		app.Use(func(c *fiber.Ctx) error {
			l := logger.WithRayID(logg, c)
			l.Info("Request started",
				zap.String("method", c.Method()),
				zap.String("path", c.Path()),
				zap.String("ip", c.IP()),
			)
			err := c.Next()
			if err != nil {
				l.Error("Request error", zap.Error(err))
			}
			return err
		})

		// 2.5 Swagger Documentation (Public)
		app.Get("/swagger/*", swagger.HandlerDefault)

		// 3. Auth protects the back-office surface only; storefront reads
		// stay public.
		admin := app.Group("/admin", auth.New(auth.Config{ApiKey: cfg.Server.ApiKey}))

		// 7. Initialize Feature Loader
		mgr := loader.NewManager()

		catalogFeature := catalog.NewFeature(db, feed, logg, cfg.Catalog, admin)
		mgr.Register(catalogFeature)
		mgr.Register(media.NewFeature(store, cfg.Storage, logg, admin))

		if err := mgr.LoadAll(app); err != nil {
			logg.Fatal("Failed to load features", zap.Error(err))
		}

		// 8. Load the catalog snapshots and start the watchers.
		ctx, cancel := context.WithCancel(cmd.Context())
		defer cancel()
		if err := catalogFeature.Start(ctx); err != nil {
			logg.Fatal("Failed to start catalog", zap.Error(err))
		}

		// 9. Start Server
		go func() {
			logg.Info("Starting server", zap.String("port", cfg.Server.Port))
			if err := app.Listen(":" + cfg.Server.Port); err != nil {
				logg.Fatal("Server failed to start", zap.Error(err))
			}
		}()

		// 10. Graceful Shutdown
		c := make(chan os.Signal, 1)
		signal.Notify(c, os.Interrupt, syscall.SIGTERM)
		<-c
		logg.Info("Shutting down server...")
		_ = app.Shutdown()
		cancel()
		if err := catalogFeature.Close(); err != nil {
			logg.Warn("Watcher teardown failed", zap.Error(err))
		}
	},
}

func init() {
	RootCmd.AddCommand(startCmd)
}
