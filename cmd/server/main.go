package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/mmynk/billsplit/internal/auth"
	"github.com/mmynk/billsplit/internal/config"
	"github.com/mmynk/billsplit/internal/drafts"
	"github.com/mmynk/billsplit/internal/metrics"
	"github.com/mmynk/billsplit/internal/receipt"
	"github.com/mmynk/billsplit/internal/service"
	"github.com/mmynk/billsplit/internal/storage"
	"github.com/mmynk/billsplit/internal/storage/postgres"
	"github.com/mmynk/billsplit/internal/storage/sqlite"
	"github.com/mmynk/billsplit/pkg/logging"
)

const tokenDuration = 24 * time.Hour

func main() {
	configFile := flag.String("config", "", "optional YAML config file")
	tokenFor := flag.String("token", "", "print a development token for this user ID and exit")
	flag.Parse()

	cfg, err := config.Load(*configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	logging.Setup(cfg.LogLevel, cfg.LogFormat)

	jwtManager := auth.NewJWTManager(cfg.JWTSecretKey, tokenDuration)
	if *tokenFor != "" {
		token, err := jwtManager.Generate(*tokenFor)
		if err != nil {
			slog.Error("Failed to generate token", "error", err)
			os.Exit(1)
		}
		fmt.Println(token)
		return
	}

	if err := run(cfg, jwtManager); err != nil {
		slog.Error("Server failed", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, jwtManager *auth.JWTManager) error {
	slog.Info("Configuration loaded", "config", cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := openStore(ctx, cfg.Storage)
	if err != nil {
		return err
	}
	defer store.Close()

	draftStore, closeDrafts, err := openDrafts(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeDrafts()

	m := metrics.New(prometheus.DefaultRegisterer)

	var scanner service.ReceiptScanner
	if cfg.OCR.APIURL != "" {
		scanner = receipt.NewClient(receipt.Config{
			APIURL:   cfg.OCR.APIURL,
			ClientID: cfg.OCR.ClientID,
			APIKey:   cfg.OCR.APIKey,
			Timeout:  cfg.OCR.Timeout,
		})
		slog.Info("Receipt scanning enabled", "endpoint", cfg.OCR.APIURL)
	}

	router := newRouter(routerConfig{
		jwt:      jwtManager,
		drafts:   service.NewDraftService(draftStore, store, scanner, m),
		bills:    service.NewBillService(store, m),
		metrics:  m,
		gatherer: prometheus.DefaultGatherer,

		maxRequestBytes: cfg.MaxRequestBytes,
	})

	// h2c serves HTTP/2 without TLS for gRPC clients.
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           h2c.NewHandler(router, &http2.Server{}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		slog.Info("Shutting down")
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("Shutdown failed", "error", err)
		}
	}()

	slog.Info("Connect server starting", "address", srv.Addr, "url", fmt.Sprintf("http://localhost%s", srv.Addr))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func openStore(ctx context.Context, cfg config.StorageConfig) (storage.Store, error) {
	switch cfg.Driver {
	case "postgres":
		store, err := postgres.New(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize postgres storage: %w", err)
		}
		slog.Info("Storage initialized", "driver", "postgres")
		return store, nil
	default:
		store, err := sqlite.New(cfg.DBPath)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize sqlite storage: %w", err)
		}
		slog.Info("Storage initialized", "driver", "sqlite", "database", cfg.DBPath)
		return store, nil
	}
}

func openDrafts(ctx context.Context, cfg *config.Config) (drafts.Store, func(), error) {
	if cfg.Drafts.Store != "redis" {
		slog.Info("Drafts kept in memory", "ttl", cfg.Drafts.TTL)
		return drafts.NewMemoryStore(cfg.Drafts.TTL), func() {}, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Address,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	slog.Info("Drafts kept in redis", "address", cfg.Redis.Address, "ttl", cfg.Drafts.TTL)
	closeFn := func() {
		if err := client.Close(); err != nil {
			slog.Warn("Failed to close redis client", "error", err)
		}
	}
	return drafts.NewRedisStore(client, cfg.Drafts.TTL), closeFn, nil
}
