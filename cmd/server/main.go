// Command server runs the rental marketplace HTTP API.
//
// Boot order: env file, config, logging, database, tracing, providers,
// router, then an HTTP server with graceful shutdown.
//
// @title        NestHunt Rental API
// @version      1.0
// @description  Property rental marketplace: accounts, listings, rental requests, and payments.
// @BasePath     /api/v1
//
// @securityDefinitions.apikey BearerAuth
// @in                         header
// @name                       Authorization
// @description                Type "Bearer" followed by a space and the access token.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/plugin/opentelemetry/tracing"

	"github.com/nesthunt/go-rental-backend/internal/config"
	"github.com/nesthunt/go-rental-backend/internal/gateway"
	httpapi "github.com/nesthunt/go-rental-backend/internal/http"
	"github.com/nesthunt/go-rental-backend/internal/notify"
	"github.com/nesthunt/go-rental-backend/internal/observability"
	"github.com/nesthunt/go-rental-backend/internal/repo"
	"github.com/nesthunt/go-rental-backend/internal/sysutil"
)

// version is stamped at build time via -ldflags.
var version = "dev"

func main() {
	// .env is optional; real deployments configure via the environment.
	_ = godotenv.Load()

	cfg := config.MustLoad()

	sysutil.SetupLogger(cfg.LogLevel, cfg.LogPretty)
	gin.SetMode(cfg.GinMode)

	appVersion := sysutil.AppVersion(version)

	db, err := repo.OpenSQLite(cfg.DBPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.DBPath).Msg("open database")
	}
	if err := repo.AutoMigrate(db); err != nil {
		log.Fatal().Err(err).Msg("migrate schema")
	}
	if err := db.Use(tracing.NewPlugin(tracing.WithoutMetrics())); err != nil {
		log.Fatal().Err(err).Msg("attach gorm tracing")
	}

	ctx := context.Background()
	shutdownOTel, err := observability.SetupOTel(ctx, cfg.OTEL, appVersion)
	if err != nil {
		log.Fatal().Err(err).Msg("setup tracing")
	}

	gw, err := gateway.NewClient(
		cfg.Gateway.BaseURL,
		cfg.Gateway.Username,
		cfg.Gateway.Password,
		cfg.Gateway.Prefix,
		cfg.Gateway.ReturnURL,
		cfg.Gateway.CancelURL,
		cfg.Gateway.Timeout,
	)
	if err != nil {
		log.Fatal().Err(err).Msg("init payment gateway")
	}
	mailer := notify.NewMailer(cfg.Mail.APIKey, cfg.Mail.FromName, cfg.Mail.FromEmail, cfg.Mail.Sandbox)

	r := gin.New()
	r.Use(gzip.Gzip(gzip.DefaultCompression, gzip.WithExcludedPaths([]string{"/metrics"})))
	httpapi.RegisterRoutes(r, db, gw, mailer, cfg)

	if cfg.SwaggerEnabled {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadTimeout:       cfg.ReadTimeout,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
		MaxHeaderBytes:    cfg.MaxHeaderBytes,
	}

	go func() {
		log.Info().Str("addr", srv.Addr).Str("version", appVersion).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server stopped")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("http shutdown")
	}
	if err := shutdownOTel(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("tracing shutdown")
	}
	log.Info().Msg("bye")
}
