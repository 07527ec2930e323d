package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"chemviz-client/internal/config"
	"chemviz-client/internal/pkg/logger"
	"chemviz-client/internal/server"
	"chemviz-client/internal/tracer"
)

func main() {
	// 1. Load Configuration
	cfg := config.Load()

	// 2. Logger and Tracer
	appLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.IsProduction())
	defer appLogger.Sync()

	shutdownTracer := tracer.InitTracer(appLogger)
	defer shutdownTracer(context.Background())

	// 3. Initialize Server
	srv := server.New(cfg.Mock.Port, appLogger)

	// 4. Seed demo account
	if cfg.Mock.DemoUser != "" {
		if _, err := srv.SeedUser(context.Background(), cfg.Mock.DemoUser, cfg.Mock.DemoPassword); err != nil {
			log.Fatalf("Failed to seed demo user: %v", err)
		}
		appLogger.Info("MOCKAPI", "Demo user ready", map[string]interface{}{"username": cfg.Mock.DemoUser})
	}

	go func() {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
		<-sig
		_ = srv.Shutdown()
	}()

	// 5. Run Server
	if err := srv.Run(); err != nil {
		log.Fatal(err)
	}
}
