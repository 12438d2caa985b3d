package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/hongminglow/refer-web/internal/auth"
	"github.com/hongminglow/refer-web/internal/backend"
	"github.com/hongminglow/refer-web/internal/catalog"
	"github.com/hongminglow/refer-web/internal/checkout"
	"github.com/hongminglow/refer-web/internal/config"
	"github.com/hongminglow/refer-web/internal/logging"
	"github.com/hongminglow/refer-web/internal/monitoring"
	"github.com/hongminglow/refer-web/internal/server"
	"github.com/hongminglow/refer-web/internal/session"
	"github.com/hongminglow/refer-web/internal/storage"
	"github.com/hongminglow/refer-web/internal/storage/memory"
	postgres "github.com/hongminglow/refer-web/internal/storage/postgres"
)

func main() {
	loadLocalEnv()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger, err := logging.New(cfg.Production())
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer logger.Sync()

	products, err := catalog.Load(cfg.CatalogPath)
	if err != nil {
		logger.Fatal("load catalog", zap.String("path", cfg.CatalogPath), zap.Error(err))
	}

	ctx := context.Background()
	var orders storage.OrderStore
	if cfg.DatabaseURL != "" {
		pg, err := postgres.NewOrderStore(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.Fatal("init database", zap.Error(err))
		}
		defer pg.Close()
		orders = pg
	} else {
		logger.Warn("DATABASE_URL not set; orders are kept in memory")
		orders = memory.NewOrderStore()
	}

	tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.JWTIssuer, cfg.JWTTTL)
	if !tokens.Verifying() {
		logger.Warn("JWT_SECRET not set; session tokens are decoded without signature checks")
	}

	metrics := monitoring.New()
	srv := server.New(cfg, server.Deps{
		Backend:   backend.NewClient(cfg.APIBaseURL, cfg.APITimeout, logger).Observe(metrics),
		Gate:      session.NewGate(tokens, logger, cfg.CookieSecure),
		Products:  products,
		Orders:    orders,
		Processor: checkout.NewProcessor(orders, cfg.CheckoutWait, logger).Observe(metrics),
		Log:       logger,
		Metrics:   metrics,
	})

	go func() {
		logger.Info("refer web listening", zap.String("addr", cfg.HTTPAddress()))
		if err := srv.Start(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("http server error", zap.Error(err))
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctxShutdown); err != nil {
		logger.Error("graceful shutdown error", zap.Error(err))
	}
}

func loadLocalEnv() {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found; relying on existing environment")
	}
}
