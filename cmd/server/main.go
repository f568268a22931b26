package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ponselpos/backend/internal/cache"
	"ponselpos/backend/internal/config"
	"ponselpos/backend/internal/httpapi"
	"ponselpos/backend/internal/remote/postgres"
	"ponselpos/backend/internal/service"
	"ponselpos/backend/internal/store"
	"ponselpos/backend/internal/store/memory"
	"ponselpos/backend/internal/store/sqlite"
	syncpkg "ponselpos/backend/internal/sync"
)

func main() {
	cfg := config.Load()
	if err := validateSecurityConfig(cfg); err != nil {
		log.Fatalf("invalid security configuration: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	closers := make([]func() error, 0, 3)

	var local store.Local
	if cfg.LocalDBPath == "memory" {
		local = memory.New()
		log.Println("local store: in-memory (data is lost on restart)")
	} else {
		db, err := sqlite.New(cfg.LocalDBPath)
		if err != nil {
			log.Fatalf("open local database %s: %v", cfg.LocalDBPath, err)
		}
		local = db
		closers = append(closers, db.Close)
		log.Printf("local store: sqlite (%s)", cfg.LocalDBPath)
	}

	// The terminal runs fine with no replica at all; sync endpoints just
	// report unconfigured.
	var manager *syncpkg.Manager
	if cfg.RemoteDatabaseURL != "" {
		// An unreachable replica is not an error here: the terminal boots
		// offline all the time and the manager's probe loop brings the
		// link up. New only fails on a URL it cannot parse.
		replica, err := postgres.New(ctx, cfg.RemoteDatabaseURL)
		if err != nil {
			log.Fatalf("remote replica: %v", err)
		}
		closers = append(closers, replica.Close)
		engine := syncpkg.NewEngine(local, replica, nil)
		manager = syncpkg.NewManager(engine, replica, time.Duration(cfg.SyncIntervalSeconds)*time.Second, nil)
		log.Println("remote replica: postgres")
	} else {
		log.Println("remote replica: none (standalone terminal)")
	}

	ledgerCache := cache.LedgerCache(cache.NoopLedgerCache{})
	if cfg.RedisAddr != "" {
		redisCache := cache.NewRedisLedgerCache(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err := redisCache.Ping(ctx); err != nil {
			log.Printf("redis unavailable (%v), using noop ledger cache", err)
		} else {
			ledgerCache = redisCache
			closers = append(closers, redisCache.Close)
			log.Println("ledger cache: redis")
		}
	} else {
		log.Println("ledger cache: noop")
	}

	var notifier service.Notifier
	var syncer httpapi.Syncer
	if manager != nil {
		notifier = manager
		syncer = manager
	}
	svc := service.New(local, ledgerCache, notifier, cfg.ShopName)
	auth := httpapi.NewAuthManager(cfg.AuthSecret, time.Duration(cfg.AccessTokenTTLHours)*time.Hour, cfg.DeviceID, cfg.DeviceKeyHash)
	api := httpapi.New(svc, auth, syncer, cfg.AllowedOrigin)

	if manager != nil {
		manager.Start(context.Background())
	}

	server := &http.Server{
		Addr:              cfg.Address(),
		Handler:           api.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Printf("POS terminal backend listening on %s", cfg.Address())
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 8*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown error: %v", err)
	}

	if manager != nil {
		manager.Stop()
	}

	for _, closeFn := range closers {
		if err := closeFn(); err != nil {
			log.Printf("close error: %v", err)
		}
	}

	log.Println("server stopped")
}

func validateSecurityConfig(cfg config.Config) error {
	if len(cfg.AuthSecret) < 32 {
		return fmt.Errorf("AUTH_SECRET must be set and at least 32 characters")
	}
	if cfg.DeviceKeyHash == "" {
		return fmt.Errorf("DEVICE_KEY_HASH must be set; generate one with the hash-device-key tool")
	}
	return nil
}
