package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/ovaphlow/pitchfork/service-inventory-go/internal/app"
	"github.com/ovaphlow/pitchfork/service-inventory-go/internal/config"
	"github.com/ovaphlow/pitchfork/service-inventory-go/internal/metrics"
	"github.com/ovaphlow/pitchfork/service-inventory-go/internal/router"
	"github.com/ovaphlow/pitchfork/service-inventory-go/pkg/database"
	"github.com/ovaphlow/pitchfork/service-inventory-go/pkg/utilities"
)

func main() {
	configPath := flag.String("config", "", "path to a config file")
	flag.Parse()

	// load .env file if present so os.Getenv picks values from it
	// this is best-effort: if no .env exists, continue (use defaults or real env)
	_ = godotenv.Load()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	lg, err := utilities.Init(cfg.LoggerConfig())
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer lg.Sync()

	sugar := lg.Sugar()
	sugar.Infow("starting service-inventory-go", "driver", cfg.Database.Driver, "addr", cfg.Server.Addr)

	db, err := database.Connect(cfg.DatabaseConfig())
	if err != nil {
		sugar.Fatalf("db connect: %v", err)
	}
	defer db.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a := app.New(db, sugar, cfg.AppOptions())
	if cfg.Database.EnsureSchema {
		if err := a.EnsureSchema(ctx); err != nil {
			sugar.Fatalf("ensure schema: %v", err)
		}
	}

	handler := router.RegisterRoutes(router.Deps{
		App:             a,
		Logger:          sugar,
		Metrics:         metrics.New(),
		IDs:             utilities.NewIDGenerator(cfg.SnowflakeNode),
		DefaultLanguage: cfg.Rules.DefaultLanguage,
	})
	srv := &http.Server{
		Addr:    cfg.Server.Addr,
		Handler: handler,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			sugar.Fatalf("http server failed: %v", err)
		}
	}()
	sugar.Info("service is running; press Ctrl+C to stop")

	<-ctx.Done()

	sugar.Info("shutting down")

	doneCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(doneCtx); err != nil {
		sugar.Warnf("http server shutdown failed: %v", err)
	}
	if err := db.PingContext(doneCtx); err != nil {
		sugar.Warnf("db ping on shutdown failed: %v", err)
	}

	sugar.Info("goodbye")
}
