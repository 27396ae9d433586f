package main

import (
	"context"
	"database/sql"
	"net/http"
	"os"
	"os/signal"
	"time"

	_ "github.com/lib/pq"

	"cipherid/internal/audit"
	"cipherid/internal/crypto/cipher"
	"cipherid/internal/crypto/evaluator"
	identityhandler "cipherid/internal/identity/handler"
	identitymetrics "cipherid/internal/identity/metrics"
	identityservice "cipherid/internal/identity/service"
	"cipherid/internal/identity/store/record"
	"cipherid/internal/platform/config"
	"cipherid/internal/platform/httpserver"
	"cipherid/internal/platform/logger"
	"cipherid/internal/platform/metrics"
	platformredis "cipherid/internal/platform/redis"
	"cipherid/internal/platform/token"
	httptransport "cipherid/internal/transport/http"
)

// main wires high-level dependencies, exposes the HTTP router, and keeps the
// server lifecycle small. Business logic lives in internal services packages.
func main() {
	cfg := config.FromEnv()
	log := logger.New()

	masterKey, err := cfg.MasterKey()
	if err != nil {
		log.Error("invalid master key", "error", err.Error())
		os.Exit(1)
	}
	if cfg.MasterKeyHex == "" {
		log.Warn("CIPHERID_MASTER_KEY not set, using development key material")
	}

	c, err := cipher.New(masterKey)
	if err != nil {
		log.Error("failed to initialize cipher", "error", err.Error())
		os.Exit(1)
	}
	oracle := evaluator.NewOracle(c)

	store, db, err := buildStore(cfg)
	if err != nil {
		log.Error("failed to initialize record store", "error", err.Error())
		os.Exit(1)
	}
	if db != nil {
		defer db.Close()
	}

	var checks []httptransport.HealthChecker
	if cfg.RedisURL != "" {
		cache, err := platformredis.New(cfg.RedisURL)
		if err != nil {
			log.Error("failed to connect to redis", "error", err.Error())
			os.Exit(1)
		}
		defer cache.Close()
		store = record.NewCached(store, cache.Client, cfg.RecordCacheTTL, record.WithCacheLogger(log))
		checks = append(checks, cache)
	}

	httpMetrics := metrics.New()
	idMetrics := identitymetrics.New()
	publisher := audit.NewPublisher(audit.NewInMemoryStore())

	svc, err := identityservice.New(store, c, oracle,
		identityservice.WithLogger(log),
		identityservice.WithMetrics(idMetrics),
		identityservice.WithAuditPublisher(publisher),
	)
	if err != nil {
		log.Error("failed to initialize identity service", "error", err.Error())
		os.Exit(1)
	}

	tokens := token.NewService(cfg.AdminJWTKey)
	handler := identityhandler.New(svc, log, httpMetrics, tokens)
	router := httptransport.NewRouter(handler, checks...)

	srv := httpserver.New(cfg.Addr, router)

	log.Info("starting cipherid", "addr", cfg.Addr)

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", "error", err.Error())
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("graceful shutdown failed", "error", err.Error())
		os.Exit(1)
	}
}

// buildStore selects PostgreSQL when configured, else the in-memory store.
func buildStore(cfg config.Server) (record.Store, *sql.DB, error) {
	if cfg.PostgresURL == "" {
		return record.NewInMemoryStore(), nil, nil
	}

	db, err := sql.Open("postgres", cfg.PostgresURL)
	if err != nil {
		return nil, nil, err
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, nil, err
	}
	if _, err := db.Exec(record.Schema); err != nil {
		db.Close()
		return nil, nil, err
	}
	return record.NewPostgres(db), db, nil
}
