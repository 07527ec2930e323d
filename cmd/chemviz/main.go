package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"chemviz-client/internal/bootstrap"
	"chemviz-client/internal/config"
	"chemviz-client/internal/console"
	"chemviz-client/internal/pkg/logger"
	"chemviz-client/internal/tracer"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 1. Load Configuration
	cfg := config.Load()

	// 2. Logger (file only, the terminal belongs to the console)
	appLogger := logger.NewIsolatedLogger(cfg.App.LogFilePath)
	defer appLogger.Sync()

	// 3. Tracer
	shutdownTracer := tracer.InitTracer(appLogger)
	defer shutdownTracer(context.Background())

	// 4. Bootstrap Dependencies (Container)
	container, err := bootstrap.NewContainer(cfg, appLogger)
	if err != nil {
		log.Fatalf("Failed to build container: %v", err)
	}
	defer container.Close()

	if err := container.Init(ctx); err != nil {
		// A broken token store is not fatal; the user just has to log in again.
		fmt.Fprintf(os.Stderr, "Could not restore session: %v\n", err)
	}

	// 5. Background event log
	if err := container.StartEventLog(ctx); err != nil {
		appLogger.Warn("MAIN", "Event log not started", map[string]interface{}{"error": err.Error()})
	}

	// 6. Run Console
	ui := console.New(console.Deps{
		Session:  container.Session,
		Data:     container.Orchestrator,
		Exporter: container.Exporter,
		Logger:   appLogger,
		ChartDir: cfg.Output.ChartDir,
	}, os.Stdout)

	if err := ui.Run(ctx, os.Stdin); err != nil && ctx.Err() == nil {
		log.Fatalf("Console error: %v", err)
	}
}
