package cmd

import (
	"context"
	"log"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/AgbodesiImoagene/coingro-controller/core/coingro"
	"github.com/AgbodesiImoagene/coingro-controller/core/config"
	"github.com/AgbodesiImoagene/coingro-controller/core/database"
	"github.com/AgbodesiImoagene/coingro-controller/core/k8s"
	"github.com/AgbodesiImoagene/coingro-controller/core/loader"
	"github.com/AgbodesiImoagene/coingro-controller/core/logger"
	"github.com/AgbodesiImoagene/coingro-controller/core/middleware/auth"
	"github.com/AgbodesiImoagene/coingro-controller/core/middleware/rayid"
	"github.com/AgbodesiImoagene/coingro-controller/core/storage"
	"github.com/AgbodesiImoagene/coingro-controller/core/version"
	"github.com/AgbodesiImoagene/coingro-controller/core/worker"
	"github.com/AgbodesiImoagene/coingro-controller/feature/bots"
	"github.com/AgbodesiImoagene/coingro-controller/feature/strategies"
)

// startCmd represents the start command
var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the controller",
	Long:  `Starts the reconcile loop and the management API server.`,
	Run: func(cmd *cobra.Command, args []string) {
		// 1. Load Configuration
		cfg, err := config.LoadConfig(".")
		if err != nil {
			log.Fatalf("Failed to load configuration: %v", err)
		}
		if err := cfg.Validate(); err != nil {
			log.Fatalf("Invalid configuration: %v", err)
		}

		// 2. Initialize Logger
		logg, err := logger.New(&cfg.Log)
		if err != nil {
			log.Fatalf("Failed to initialize logger: %v", err)
		}
		defer logg.Sync()
		zap.ReplaceGlobals(logg)

		// 3. Connect to Database
		db, err := database.Connect(cfg.Database)
		if err != nil {
			logg.Fatal("Failed to connect to database", zap.Error(err))
		}

		// 4. Initialize Storage (strategy catalog)
		store, err := storage.NewClient(cfg.Storage)
		if err != nil {
			logg.Fatal("Failed to create storage client", zap.Error(err))
		}

		// 5. Connect to the cluster
		cluster, err := k8s.NewClient(cfg.Kubernetes, &cfg.Coingro)
		if err != nil {
			logg.Fatal("Failed to create kubernetes client", zap.Error(err))
		}

		// 6. Build features
		botClient := coingro.NewClient(&cfg.Coingro)
		botsFeature := bots.NewFeature(db, cluster, botClient, &cfg.Coingro, logg)
		strategiesFeature := strategies.NewFeature(db, store, cfg.Storage.Bucket,
			cfg.Strategies, botsFeature, botClient, logg)
		botsFeature.Orchestrator().AddRefresher(strategiesFeature.Manager())

		if err := botsFeature.Store().AutoMigrate(); err != nil {
			logg.Fatal("Failed to migrate bot tables", zap.Error(err))
		}
		if err := strategiesFeature.Store().AutoMigrate(); err != nil {
			logg.Fatal("Failed to migrate strategy tables", zap.Error(err))
		}

		// 7. Initialize Fiber App
		app := fiber.New(fiber.Config{
			DisableStartupMessage: true, // We log our own startup message
		})

		// RayID first so every log line is traceable.
		app.Use(rayid.New())

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

		if origins := cfg.Server.Origins(); origins != nil {
			app.Use(cors.New(cors.Config{AllowOriginsFunc: func(origin string) bool {
				for _, allowed := range origins {
					if origin == allowed {
						return true
					}
				}
				return false
			}}))
		}

		app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

		api := app.Group("/api/v1")
		api.Get("/ping", func(c *fiber.Ctx) error {
			return c.JSON(fiber.Map{"status": "pong"})
		})
		api.Use(auth.New(auth.Config{ApiKey: cfg.Server.ApiKey}))

		api.Get("/controller_version", func(c *fiber.Ctx) error {
			return c.JSON(fiber.Map{"version": version.Version})
		})
		api.Get("/controller_health", func(c *fiber.Ctx) error {
			sqlDB, err := db.DB()
			if err == nil {
				err = sqlDB.PingContext(c.Context())
			}
			if err != nil {
				return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
					"status": "unhealthy",
					"error":  err.Error(),
				})
			}
			return c.JSON(fiber.Map{"status": "healthy"})
		})
		api.Get("/controller_sysinfo", func(c *fiber.Ctx) error {
			var mem runtime.MemStats
			runtime.ReadMemStats(&mem)
			return c.JSON(fiber.Map{
				"pid":        os.Getpid(),
				"goroutines": runtime.NumGoroutine(),
				"alloc":      mem.Alloc,
				"sys":        mem.Sys,
				"num_gc":     mem.NumGC,
			})
		})

		// 8. Load Features
		// Strategies go first: the catalog is public, while the bots feature
		// installs user auth on every route registered after it.
		mgr := loader.NewManager()
		mgr.Register(strategiesFeature)
		mgr.Register(botsFeature)
		if err := mgr.LoadAll(api); err != nil {
			logg.Fatal("Failed to load features", zap.Error(err))
		}

		// 9. Start the reconcile loop
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		w := worker.New(botsFeature.Orchestrator(), cfg.Internals, logg)
		go w.Run(ctx)

		// 10. Start Server
		if cfg.Server.Enabled {
			go func() {
				logg.Info("Starting server", zap.String("port", cfg.Server.Port))
				if err := app.Listen(":" + cfg.Server.Port); err != nil {
					logg.Fatal("Server failed to start", zap.Error(err))
				}
			}()
		} else {
			logg.Info("API server disabled")
		}

		// 11. Graceful Shutdown
		c := make(chan os.Signal, 1)
		signal.Notify(c, os.Interrupt, syscall.SIGTERM)
		<-c
		logg.Info("Shutting down...")
		cancel()
		if cfg.Server.Enabled {
			_ = app.Shutdown()
		}
	},
}

func init() {
	RootCmd.AddCommand(startCmd)
}
