package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/Skotchmaster/laundry_service/internal/config"
	"github.com/Skotchmaster/laundry_service/internal/es"
	"github.com/Skotchmaster/laundry_service/internal/events"
	"github.com/Skotchmaster/laundry_service/internal/handlers"
	"github.com/Skotchmaster/laundry_service/internal/logging"
	"github.com/Skotchmaster/laundry_service/internal/mykafka"
	"github.com/Skotchmaster/laundry_service/internal/pricing"
	"github.com/Skotchmaster/laundry_service/internal/repo"
	"github.com/Skotchmaster/laundry_service/internal/seed"
	"github.com/Skotchmaster/laundry_service/internal/service"
	"github.com/Skotchmaster/laundry_service/internal/service/search"
	httpserver "github.com/Skotchmaster/laundry_service/internal/transport/http"
	"github.com/Skotchmaster/laundry_service/pkg/middleware/csrf"
	loggingmw "github.com/Skotchmaster/laundry_service/pkg/middleware/logging"
	"github.com/Skotchmaster/laundry_service/pkg/tokens"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := logging.New(cfg.LogLevel).With("service", "laundry")
	slog.SetDefault(logger)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	db, err := config.InitDB(ctx, cfg)
	cancel()
	if err != nil {
		log.Fatalf("db init: %v", err)
	}

	r := repo.New(db)
	if cfg.SeedDemo {
		seedCtx := logging.IntoContext(context.Background(), logger)
		if err := seed.Run(seedCtx, r, time.Now()); err != nil {
			log.Fatalf("seed: %v", err)
		}
	}

	var pub events.Publisher
	var prod *mykafka.Producer
	if len(cfg.KafkaBrokers) > 0 {
		prod, err = mykafka.NewProducer(cfg.KafkaBrokers)
		if err != nil {
			log.Fatalf("kafka: %v", err)
		}
		pub = prod
	} else {
		logger.Info("kafka_disabled")
	}

	var indexer service.OrderIndexer
	searchHandler := &handlers.SearchHTTP{}
	if cfg.ESURL != "" {
		esCtx, esCancel := context.WithTimeout(context.Background(), 10*time.Second)
		client, err := es.NewClient(esCtx, es.Config{URL: cfg.ESURL, User: cfg.ESUser, Password: cfg.ESPassword})
		esCancel()
		if err != nil {
			log.Fatalf("elasticsearch: %v", err)
		}
		idx := search.NewOrderIndex(client, cfg.OrderIndex)
		indexer = idx
		searchHandler.Index = idx
	} else {
		logger.Info("search_disabled")
	}

	loc, err := cfg.Location()
	if err != nil {
		log.Fatal(err)
	}

	prices := pricing.NewCalculator(cfg.Prices())
	ledger := service.NewVoucherLedger(r, pub)
	orders := service.NewOrderManager(r, prices, pub, indexer)
	orders.Location = loc

	e := echo.New()
	e.HideBanner = true
	e.Pre(echomw.RemoveTrailingSlash())
	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())
	e.Use(loggingmw.New(loggingmw.Config{Logger: logger, Skipper: loggingmw.SkipPrefixes("/health")}))
	e.Use(csrf.Middleware(csrf.Config{AuthCookie: tokens.AccessCookie, Secure: cfg.SecureCookies}))

	httpserver.Register(e, &httpserver.Deps{
		DB:             db,
		JWTSecret:      cfg.JWTSecret,
		AuthHandler:    &handlers.AuthHTTP{Svc: service.NewAuthService(r, cfg.JWTSecret, cfg.TokenTTL), SecureCookie: cfg.SecureCookies},
		VoucherHandler: &handlers.VoucherHTTP{Ledger: ledger},
		OrderHandler:   &handlers.OrderHTTP{Orders: orders},
		SearchHandler:  searchHandler,
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:           e,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      15 * time.Second,
		ReadHeaderTimeout: 3 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Printf("laundry listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("listen: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	log.Println("shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("server shutdown error: %v", err)
	}

	if sqlDB, err := db.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			log.Printf("db close error: %v", err)
		}
	}

	if prod != nil {
		if err := prod.Close(); err != nil {
			log.Printf("kafka close error: %v", err)
		}
	}

	log.Println("shutdown complete")
}
