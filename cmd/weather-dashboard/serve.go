package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	httpapi "github.com/i474232898/weather-dashboard/internal/api/http"
	"github.com/i474232898/weather-dashboard/internal/scheduler"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and the refresh scheduler",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			return a.serve(cmd.Context())
		},
	}
}

func (a *app) serve(ctx context.Context) error {
	// Scheduler that periodically refreshes tracked locations.
	sched := scheduler.New(a.cfg.Locations, a.cfg.FetchInterval, a.service)
	if err := sched.Start(); err != nil {
		return err
	}
	defer sched.Stop()

	server := fiber.New(fiber.Config{
		AppName:               "weather-dashboard",
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          30 * time.Second,
		ErrorHandler:          httpapi.ErrorHandler,
	})

	// Global middleware
	server.Use(requestid.New(requestid.Config{Generator: uuid.NewString}))
	server.Use(logger.New(logger.Config{
		Format: "${time} ${locals:requestid} ${status} - ${latency} ${method} ${path}\n",
	}))
	server.Use(recover.New())

	server.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":    "ok",
			"service":   "weather-dashboard",
			"providers": a.service.ProviderNames(),
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
	})

	httpapi.RegisterRoutes(server, a.service)

	go func() {
		log.Printf("INFO: listening on :%s", a.cfg.Port)
		if err := server.Listen(":" + a.cfg.Port); err != nil {
			log.Printf("ERROR: fiber server stopped: %v", err)
		}
	}()

	// Wait for termination signal
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()
	log.Println("INFO: shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	return server.ShutdownWithContext(shutdownCtx)
}
