package cmd

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"inventory-server/core/config"
	"inventory-server/core/database"
	"inventory-server/core/loader"
	"inventory-server/core/logger"
	"inventory-server/core/middleware/rayid"
	"inventory-server/core/reconcile"
	"inventory-server/core/storage"

	"inventory-server/feature/inventory"
	"inventory-server/feature/inventory/models"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/swagger"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"

	_ "inventory-server/docs/swagger"
)

// @title Inventory Server API
// @version 1.0
// @description HTTP endpoint for agent inventory submissions.
// @host localhost:8080
// @BasePath /

// startCmd represents the start command
var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the inventory server",
	Long:  `Starts the HTTP server and initializes all enabled features.`,
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

		// 3. Connect to Database
		// Reconciliation cannot run without it, so a failure here is fatal.
		var db *gorm.DB
		if conn, err := database.Connect(cfg.Database); err != nil {
			logg.Fatal("Database connection failed", zap.Error(err))
		} else {
			db = conn
			logg.Info("Connected to inventory database")
		}

		// Sanity check the schema so missing tables surface at startup
		// rather than on the first submission.
		if missing := database.VerifyTables(db, models.Tables()); len(missing) > 0 {
			logg.Warn("Database schema is missing tables", zap.Strings("tables", missing))
		}

		// 4. Initialize Fiber App
		app := fiber.New(fiber.Config{
			DisableStartupMessage: true, // We will log our own startup message
			BodyLimit:             cfg.Server.BodyLimit,
		})

		// 5. Initialize Storage (Optional)
		// Archiving degrades gracefully when no object store is reachable.
		var store storage.Client
		if client, err := storage.NewClient(cfg.Storage); err != nil {
			logg.Warn("Optional storage client failed, archiving disabled", zap.Error(err))
		} else {
			store = client
		}

		// 6. Load Dictionary Rules
		rules, err := reconcile.LoadRulesFile(cfg.Inventory.RulesFile)
		if err != nil {
			logg.Fatal("Failed to load dictionary rules", zap.Error(err))
		}
		if cfg.Inventory.RulesFile != "" {
			logg.Info("Loaded dictionary rules",
				zap.String("file", cfg.Inventory.RulesFile),
				zap.Int("rules", rules.Count()))
		}

		// 7. Initialize Feature Loader
		mgr := loader.NewManager()

		// Register Features
		feat, err := inventory.NewFeature(db, logg, cfg.Inventory, rules, store, cfg.Storage.Bucket)
		if err != nil {
			logg.Fatal("Failed to initialize inventory feature", zap.Error(err))
		}
		mgr.Register(feat)

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

		// 3. Swagger Documentation (Public)
		app.Get("/swagger/*", swagger.HandlerDefault)

		// 8. Load Features
		if err := mgr.LoadAll(app); err != nil {
			logg.Fatal("Failed to load features", zap.Error(err))
		}

		// 9. Start Server
		go func() {
			logg.Info("Starting server", zap.String("port", cfg.Server.Port))
			if err := app.Listen(cfg.Server.Addr()); err != nil {
				logg.Fatal("Server failed to start", zap.Error(err))
			}
		}()

		// 10. Graceful Shutdown
		c := make(chan os.Signal, 1)
		signal.Notify(c, os.Interrupt, syscall.SIGTERM)
		<-c
		logg.Info("Shutting down server...")
		_ = app.Shutdown()
	},
}

func init() {
	RootCmd.AddCommand(startCmd)
}
