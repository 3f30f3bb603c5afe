package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/Skotchmaster/storefront/internal/config"
	"github.com/Skotchmaster/storefront/internal/httpserver"
	"github.com/Skotchmaster/storefront/internal/mykafka"
	"github.com/Skotchmaster/storefront/internal/repo"
	"github.com/Skotchmaster/storefront/internal/search"
	"github.com/Skotchmaster/storefront/internal/service"
	pkgdb "github.com/Skotchmaster/storefront/pkg/db"
	"github.com/Skotchmaster/storefront/pkg/logging"
	middleware "github.com/Skotchmaster/storefront/pkg/middleware/auth"
	"github.com/Skotchmaster/storefront/pkg/middleware/csrf"
	loggingmw "github.com/Skotchmaster/storefront/pkg/middleware/logging"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := logging.New(cfg.LogLevel).With("service", cfg.ServiceName)
	slog.SetDefault(logger)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	db, err := pkgdb.Open(ctx, cfg.DatabaseDriver, cfg.DatabaseURL)
	cancel()
	if err != nil {
		log.Fatalf("db open: %v", err)
	}
	if err := repo.AutoMigrate(db); err != nil {
		log.Fatalf("db migrate: %v", err)
	}

	store := repo.New(db)

	var events service.EventPublisher
	var prod *mykafka.Producer
	if len(cfg.KafkaBrokers) > 0 {
		tctx, tcancel := context.WithTimeout(context.Background(), 10*time.Second)
		if err := mykafka.EnsureTopics(tctx, cfg.KafkaBrokers[0], service.TopicUsers, service.TopicProducts, service.TopicCarts); err != nil {
			logger.Warn("kafka_topics_error", "error", err)
		}
		tcancel()
		prod = mykafka.NewProducer(cfg.KafkaBrokers)
		events = prod
	} else {
		logger.Info("kafka_disabled")
	}

	catalog := &service.CatalogService{Repo: store, Events: events}
	if cfg.ElasticURL != "" {
		sctx, scancel := context.WithTimeout(context.Background(), 10*time.Second)
		index, err := openIndex(sctx, cfg.ElasticURL, cfg.ElasticUser, cfg.ElasticPassword, cfg.ElasticIndex)
		scancel()
		if err != nil {
			logger.Warn("search_disabled", "error", err)
		} else {
			catalog.Index = index
		}
	}

	e := echo.New()
	e.HideBanner = true
	e.Validator = httpserver.NewRequestValidator()
	e.Pre(echomw.RemoveTrailingSlash())
	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())
	e.Use(loggingmw.RequestLogger(logger))
	if len(cfg.CORSOrigins) > 0 {
		e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
			AllowOrigins:     cfg.CORSOrigins,
			AllowCredentials: true,
		}))
	} else {
		e.Use(echomw.CORS())
	}
	if cfg.CSRFEnabled {
		e.Use(csrf.Middleware(csrf.Config{
			SkipPaths: []string{"/register", "/token", "/token/refresh"},
		}))
	}

	httpserver.Register(e, &httpserver.Deps{
		AuthHandler: &httpserver.AuthHTTP{Svc: &service.AuthService{
			Repo:          store,
			Events:        events,
			JWTSecret:     cfg.JWTAccessSecret,
			RefreshSecret: cfg.JWTRefreshSecret,
			AccessTTL:     cfg.AccessTokenTTL,
			RefreshTTL:    cfg.RefreshTokenTTL,
		}},
		CatalogHandler: &httpserver.CatalogHTTP{Svc: catalog},
		CartHandler:    &httpserver.CartHTTP{Svc: &service.CartService{Repo: store, Events: events}},
		Auth:           middleware.NewAuth(cfg.JWTAccessSecret),
		Ready:          store.Ping,
	})

	srv := &http.Server{
		Addr:              ":" + strconv.Itoa(cfg.ServerPort),
		Handler:           e,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      15 * time.Second,
		ReadHeaderTimeout: 3 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		logger.Info("listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("listen: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	logger.Info("shutting_down")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server_shutdown_error", "error", err)
	}
	if err := pkgdb.Close(db); err != nil {
		logger.Error("db_close_error", "error", err)
	}
	if prod != nil {
		if err := prod.Close(); err != nil {
			logger.Error("kafka_close_error", "error", err)
		}
	}

	logger.Info("stopped")
}

func openIndex(ctx context.Context, url, user, password, name string) (*search.Index, error) {
	client, err := search.NewClient(ctx, search.Config{URL: url, Username: user, Password: password, Index: name})
	if err != nil {
		return nil, err
	}
	index := &search.Index{ES: client, Name: name}
	if err := index.EnsureIndex(ctx); err != nil {
		return nil, err
	}
	return index, nil
}
