package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	_ "github.com/lib/pq"

	"github.com/example/ride-service/internal/config"
	"github.com/example/ride-service/internal/dispatch"
	httpapi "github.com/example/ride-service/internal/http"
	"github.com/example/ride-service/internal/ingest"
	"github.com/example/ride-service/internal/logging"
	"github.com/example/ride-service/internal/notify"
	"github.com/example/ride-service/internal/payments"
	"github.com/example/ride-service/internal/rides"
	"github.com/example/ride-service/internal/routes"
	"github.com/example/ride-service/internal/storage"
)

func main() {
	cfg, err := config.LoadServerConfig()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logger := logging.NewLogger("ride-service", cfg.LogLevel)

	// storage
	var store storage.RideStore
	if cfg.PGDSN != "" {
		if cfg.RunMigrations {
			runMigrations(cfg.PGDSN)
		}
		ps, err := storage.NewPostgresStore(cfg.PGDSN)
		if err != nil {
			logger.Error("postgres unavailable, falling back to memory store", "error", err)
		} else {
			store = ps
		}
	}
	if store == nil {
		store = storage.NewMemoryStore()
		logger.Warn("using in-memory ride store; data will not survive a restart")
	}

	// routing
	resolver := &routes.Resolver{Logger: logger}
	if cfg.MapsAPIKey != "" {
		src, err := routes.NewGoogleSource(cfg.MapsAPIKey, cfg.MapsTimeout)
		if err != nil {
			logger.Error("maps client init failed, quoting will use the estimator", "error", err)
		} else {
			resolver.Source = src
		}
	}
	if cfg.RedisAddr != "" {
		resolver.Cache = routes.NewCache(cfg.RedisAddr, cfg.RedisPassword, cfg.RouteCacheTTL)
	}

	// notifications
	wsreg := dispatch.NewWSRegistry(logger)
	router := &notify.Router{
		Live:          wsreg,
		DriverPhone:   cfg.DriverPhone,
		BusinessPhone: cfg.BusinessPhone,
		Logger:        logger,
	}
	if cfg.TwilioAccountSID != "" {
		router.SMS = notify.NewTwilioSender(cfg.TwilioAccountSID, cfg.TwilioAuthToken, cfg.TwilioFrom)
	} else {
		logger.Warn("twilio not configured; SMS notifications disabled")
	}

	svc := &rides.Service{
		Store:    store,
		Notify:   router,
		Payments: payments.NewStripeClient(),
		Logger:   logger,
	}
	if len(cfg.KafkaBrokers) > 0 {
		producer := ingest.NewAuditProducer(cfg.KafkaBrokers, cfg.KafkaTopic)
		defer producer.Close()
		svc.Audit = producer
	}

	api := httpapi.NewServer(logger, svc, resolver, wsreg, cfg.AdminToken)

	srv := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      api,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info("ride-service listening", "addr", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server stopped", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown", "error", err)
	}
}

// runMigrations applies migrations/001_create_rides.sql when requested.
func runMigrations(dsn string) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		log.Printf("migration db open error: %v", err)
		return
	}
	defer db.Close()
	b, err := os.ReadFile(filepath.Join("migrations", "001_create_rides.sql"))
	if err != nil {
		log.Printf("migration read error: %v", err)
		return
	}
	if _, err := db.Exec(string(b)); err != nil {
		log.Printf("migration exec error: %v", err)
		return
	}
	log.Printf("migration applied: 001_create_rides.sql")
}
