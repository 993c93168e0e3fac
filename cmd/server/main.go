package main

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	_ "modernc.org/sqlite"

	emailPkg "gymhub/internal/adapters/email"
	web "gymhub/internal/adapters/http"
	"gymhub/internal/adapters/http/perf"
	"gymhub/internal/adapters/storage"
	accountStore "gymhub/internal/adapters/storage/account"
	branchStore "gymhub/internal/adapters/storage/branch"
	"gymhub/internal/adapters/storage/clientstate"
	productStore "gymhub/internal/adapters/storage/product"
	"gymhub/internal/application/orchestrators"
	"gymhub/internal/config"
)

// version is set at build time via -ldflags "-X main.version=..."
var version = "dev"

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	// WAL mode, foreign keys and busy timeout on every connection
	dsn := cfg.DBPath + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(ON)&_pragma=synchronous(NORMAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)

	if err := db.Ping(); err != nil {
		log.Fatalf("database unreachable: %v", err)
	}
	if err := storage.MigrateDB(db, cfg.DBPath); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	collector := perf.NewCollector(perf.DefaultRingSize)
	timedDB := storage.NewTimedDB(db, collector, cfg.SlowQuery)

	stores := &web.Stores{
		AccountStore: accountStore.NewSQLiteStore(timedDB),
		BranchStore:  branchStore.NewSQLiteStore(timedDB),
		ProductStore: productStore.NewSQLiteStore(timedDB),
	}

	ctx := context.Background()
	if cfg.AdminPass != "" {
		if err := orchestrators.ExecuteSeedAdmin(ctx, stores.AccountStore, cfg.AdminEmail, cfg.AdminPass); err != nil {
			log.Fatalf("failed to seed admin: %v", err)
		}
	}
	if !cfg.IsProduction() {
		if err := orchestrators.ExecuteSeedTestAccounts(ctx, stores.AccountStore); err != nil {
			log.Fatalf("failed to seed test accounts: %v", err)
		}
	}
	if cfg.SeedFixtures {
		if err := orchestrators.ExecuteSeedBranches(ctx, stores.BranchStore); err != nil {
			log.Fatalf("failed to seed branches: %v", err)
		}
		if err := orchestrators.ExecuteSeedProducts(ctx, stores.ProductStore); err != nil {
			log.Fatalf("failed to seed products: %v", err)
		}
	}

	var state clientstate.Store
	switch cfg.StateBackend {
	case config.BackendRedis:
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer rdb.Close()
		if err := rdb.Ping(ctx).Err(); err != nil {
			log.Fatalf("redis unreachable at %s: %v", cfg.Redis.Addr, err)
		}
		state = clientstate.NewRedisStore(rdb, "gymhub:", 0)
	case config.BackendMemory:
		state = clientstate.NewMemoryStore()
	default:
		state = clientstate.NewSQLiteStore(timedDB)
	}
	log.Printf("Client state backend: %s", cfg.StateBackend)

	var sender emailPkg.Sender
	if cfg.Email.ResendKey != "" {
		sender = emailPkg.NewResendSender(cfg.Email.ResendKey, cfg.Email.From)
		log.Println("Email sender configured (Resend)")
	} else {
		sender = emailPkg.NewNoopSender()
		if cfg.IsProduction() {
			log.Println("WARNING: GYMHUB_RESEND_KEY is not set, email delivery is DISABLED in production")
		} else {
			log.Println("Email sender configured (noop, set GYMHUB_RESEND_KEY for real delivery)")
		}
	}

	handler := web.NewMux(stores, collector, web.Options{
		Secure:             cfg.IsProduction(),
		CSRFKey:            cfg.CSRFAuthKey(),
		CookieKey:          cfg.CookieHashKey(),
		TrustedOrigins:     cfg.TrustedOrigins,
		RateLimitPerSecond: cfg.RateLimitRPS,
		SessionTTL:         cfg.SessionTTL,
		SlowRequestMs:      cfg.SlowRequest,
		ClientState:        state,
		EmailSender:        sender,
		BaseURL:            cfg.BaseURL,
	})

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	stop, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()
	go func() {
		<-stop.Done()
		shutdownCtx, done := context.WithTimeout(context.Background(), 10*time.Second)
		defer done()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Printf("Shutdown: %v", err)
		}
	}()

	log.Printf("GymHub %s starting on %s (env=%s, schema=%d)", version, cfg.Addr, cfg.Env, storage.LatestSchemaVersion())
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("Server failed: %v", err)
	}
	log.Println("Server stopped")
}
