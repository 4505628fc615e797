package cmd

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"channel-manager/core/loader"
	"channel-manager/core/logger"
	"channel-manager/core/middleware/auth"
	"channel-manager/core/middleware/rayid"
	"channel-manager/feature/channels"
	queuefeature "channel-manager/feature/queue"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/swagger"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	_ "channel-manager/docs/swagger"
)

// @title Channel Manager API
// @version 1.0
// @description API for synchronizing hotel reservations with external travel channels.
// @host localhost:8080
// @BasePath /
// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name X-API-Key

// startCmd represents the start command
var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the channel manager server",
	Long:  `Starts the HTTP server, the queue processor and the scheduled channel syncs.`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		// 1. Wire components
		a, err := newApp(ctx)
		if err != nil {
			log.Fatalf("Failed to initialize: %v", err)
		}
		defer a.Close()
		logg := a.logger

		// 2. Schema
		if err := a.migrate(); err != nil {
			logg.Fatal("Database schema is not usable", zap.Error(err))
		}

		// 3. Background work
		if err := a.processor.Start(ctx); err != nil {
			logg.Fatal("Failed to start queue processor", zap.Error(err))
		}
		defer a.processor.Stop()

		scheduler := channels.NewScheduler(a.channels, a.cfg.Channels.SyncInterval, logg)
		if err := scheduler.Start(ctx); err != nil {
			logg.Fatal("Failed to start channel sync scheduler", zap.Error(err))
		}
		defer scheduler.Stop()

		// 4. HTTP
		app := fiber.New(fiber.Config{
			DisableStartupMessage: true,
		})

		mgr := loader.NewManager()
		mgr.Register(channels.NewFeature(a.channels))
		mgr.Register(queuefeature.NewFeature(queuefeature.NewService(a.queue, a.processor, logg)))

		// RayID first so every later log line carries it
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

		// Swagger stays public
		app.Get("/swagger/*", swagger.HandlerDefault)

		app.Use(auth.New(auth.Config{ApiKey: a.cfg.Server.ApiKey}))
		if !a.cfg.Server.HasApiKey() {
			logg.Warn("SERVER_API_KEY is empty, the API is unprotected")
		}

		if err := mgr.LoadAll(app); err != nil {
			logg.Fatal("Failed to load features", zap.Error(err))
		}

		go func() {
			logg.Info("Starting server", zap.String("addr", a.cfg.Server.Addr()))
			if err := app.Listen(a.cfg.Server.Addr()); err != nil {
				logg.Fatal("Server failed to start", zap.Error(err))
			}
		}()

		// 5. Graceful shutdown
		c := make(chan os.Signal, 1)
		signal.Notify(c, os.Interrupt, syscall.SIGTERM)
		<-c
		logg.Info("Shutting down server...")
		_ = app.Shutdown()
		cancel()
	},
}

func init() {
	RootCmd.AddCommand(startCmd)
}
