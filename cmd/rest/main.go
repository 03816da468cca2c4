package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"guideline-agent-be/internal/bootstrap"
	"guideline-agent-be/internal/config"
	"guideline-agent-be/internal/server"
	"guideline-agent-be/internal/tracer"
	"guideline-agent-be/pkg/database"
)

const shutdownTimeout = 10 * time.Second

func main() {
	// 1. Load Configuration
	cfg := config.Load()

	// 2. Initialize Tracer
	shutdownTracer := tracer.InitTracer(cfg.Tracing)
	defer func() { _ = shutdownTracer(context.Background()) }()

	// 3. Initialize Database
	gormDB, err := database.NewGormDBFromDSN(cfg.Database.Connection, database.Options{Verbose: cfg.Database.Verbose})
	if err != nil {
		log.Panicf("Unable to connect to GORM DB: %v", err)
	}

	// 4. Bootstrap Dependencies (Container)
	container, err := bootstrap.NewContainer(gormDB, cfg)
	if err != nil {
		log.Panicf("Unable to bootstrap dependencies: %v", err)
	}
	defer container.Close()

	// 5. Start Background Services
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// The usage consumer outlives the signal so records queued during shutdown still land.
	consumerCtx, stopConsumer := context.WithCancel(context.Background())
	defer stopConsumer()

	if err := container.UsageConsumerService.Consume(consumerCtx); err != nil {
		log.Panicf("Unable to start usage consumer: %v", err)
	}
	if err := container.AnalyticsService.Start(ctx); err != nil {
		container.Logger.Warn("MAIN", "Analytics subscriber not started", map[string]interface{}{
			"error": err.Error(),
		})
	}

	// 6. Initialize Server
	srv := server.New(cfg, container)

	go func() {
		if err := srv.Run(); err != nil {
			log.Printf("Server stopped: %v", err)
			stop()
		}
	}()

	<-ctx.Done()
	log.Println("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}
	if !container.WaitForUsage(shutdownTimeout) {
		container.Logger.Warn("MAIN", "Timed out waiting for guideline usage writes", nil)
	}
	stopConsumer()
}
