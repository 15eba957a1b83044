package application

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Sheeddhartho/Secura/internal/config"
	"github.com/Sheeddhartho/Secura/internal/database"
	"github.com/Sheeddhartho/Secura/internal/handler"
	"github.com/Sheeddhartho/Secura/internal/notify"
	"github.com/Sheeddhartho/Secura/internal/router"
	"github.com/Sheeddhartho/Secura/internal/service"
	"github.com/Sheeddhartho/Secura/internal/session"
	"github.com/Sheeddhartho/Secura/internal/storage"
	"github.com/Sheeddhartho/Secura/pkg/constants"
)

// API is the HTTP + WebSocket application.
type API struct {
	cfg    *config.Config
	srv    *http.Server
	db     *gorm.DB
	rdb    *redis.Client
	logger *zap.Logger
}

// NewAPI builds the application: validates config, runs migrations,
// opens Postgres and Redis, and wires the core services.
func NewAPI(cfg *config.Config) (*API, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := database.MigrateUp(cfg.DatabaseURL()); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	db, err := database.Open(cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("database: %w", err)
	}

	logger, _ := zap.NewProduction()
	if cfg.AppEnv == "development" {
		logger, _ = zap.NewDevelopment()
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		// No session store means no connection can ever be admitted.
		return nil, fmt.Errorf("redis: %w", err)
	}

	resolver := session.NewResolver(rdb, cfg.Redis.SessionKeyPrefix, logger)

	settingsCache := service.NewSettingsCache(storage.NewSettingsStore(db), logger)

	var notifier service.Notifier
	if cfg.Twilio.AccountSID != "" && cfg.Twilio.AuthToken != "" {
		notifier = notify.NewWhatsApp(notify.Options{
			AccountSID: cfg.Twilio.AccountSID,
			AuthToken:  cfg.Twilio.AuthToken,
			From:       cfg.Twilio.WhatsAppFrom,
			To:         cfg.Twilio.WhatsAppTo,
			BaseURL:    cfg.Twilio.BaseURL,
		}, logger)
	} else {
		logger.Warn("twilio credentials not set; alert notifications disabled")
	}
	engine := service.NewEngine(settingsCache, notifier, logger)

	registry := service.NewRegistry(logger)
	gateway := service.NewGateway(registry, settingsCache,
		cfg.WSReadBufferSize, cfg.WSWriteBufferSize, cfg.WSMaxMessageSize, logger)

	faceHandler := handler.NewFaceHandler(storage.NewFaceStore(db))
	logHandler := handler.NewLogHandler(storage.NewAlertLogStore(db), engine, cfg.LogHistoryLimit, logger)
	settingsHandler := handler.NewSettingsHandler(settingsCache)
	streamWS := handler.NewStreamWSHandler(gateway, resolver, logger)
	health := handler.NewHealthHandler()

	r := router.New(resolver, faceHandler, logHandler, settingsHandler, streamWS, health)

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	return &API{cfg: cfg, srv: srv, db: db, rdb: rdb, logger: logger}, nil
}

// Run starts the HTTP server and blocks until ctx is cancelled; then
// shuts down gracefully.
func (a *API) Run(ctx context.Context) error {
	host := a.cfg.AppHost
	if host == "0.0.0.0" {
		host = "localhost"
	}
	base := "http://" + host + ":" + a.cfg.HTTPPort
	log.Printf("HTTP server listening on %s", a.srv.Addr)
	log.Printf("  Health:    %s%s", base, constants.PathHealth)
	log.Printf("  API:       %s/api", base)
	log.Printf("  WebSocket: ws://%s:%s%s", host, a.cfg.HTTPPort, constants.PathWSStream)

	go func() {
		if err := a.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("http: %v", err)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := a.srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	_ = a.rdb.Close()
	_ = a.logger.Sync()
	return nil
}
