package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"papertrail/internal/authz"
	"papertrail/internal/config"
	"papertrail/internal/email/noop"
	"papertrail/internal/email/ses"
	"papertrail/internal/handler"
	"papertrail/internal/metrics"
	"papertrail/internal/port"
	"papertrail/internal/repository/postgres"
	"papertrail/internal/router"
	"papertrail/internal/service"
)

// @title Papertrail Custody API
// @version 1.0
// @description Tracks who holds the physical copy of each registered document.
// @BasePath /api/v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if cfg.Log.Level != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := postgres.NewDB(&cfg.DB)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	// Metrics
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	// Initialize repositories
	custodyRepo := postgres.NewCustodyRepo(db)
	historyRepo := postgres.NewTransferHistoryRepo(db)
	registry := postgres.NewDocumentRegistry(db)
	directory := postgres.NewDirectoryRepo(db)
	tx := postgres.NewCustodyTx(db, cfg.Custody.TxTimeout)

	// Initialize notifier
	var notifier port.CustodyNotifier
	switch cfg.Email.Provider {
	case "ses":
		notifier, err = ses.NewSESSender(cfg.Email.Region, cfg.Email.FromAddress, cfg.Email.FromName, cfg.Email.FrontendURL)
		if err != nil {
			return fmt.Errorf("failed to initialize SES sender: %w", err)
		}
	default:
		notifier = noop.NewNoopSender(cfg.Email.FrontendURL)
	}

	authorizer, err := authz.NewAuthorizer(cfg.Authz.ModelPath, cfg.Authz.PolicyPath)
	if err != nil {
		return fmt.Errorf("failed to load access policy: %w", err)
	}

	// Initialize services
	verifier := service.NewTokenVerifier(cfg.JWT)
	custodySvc := service.NewCustodyService(tx, custodyRepo, historyRepo, registry, directory, notifier, m, cfg.Custody)

	// Initialize handlers
	custodyH := handler.NewCustodyHandler(custodySvc, cfg.Custody.MaxPageSize)
	healthH := handler.NewHealthHandler(db)

	r := router.Setup(
		verifier,
		authorizer,
		cfg.CORS.AllowedOrigins,
		custodyH,
		healthH,
		promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}),
	)

	srv := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("Server starting on %s (rollback mode %s)", cfg.Server.Port, cfg.Custody.RollbackMode)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case sig := <-quit:
		log.Printf("shutdown signal received: %s", sig)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	return nil
}
