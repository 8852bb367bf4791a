package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/tbourn/go-promo-backend/internal/config"
	httpapi "github.com/tbourn/go-promo-backend/internal/http"
	"github.com/tbourn/go-promo-backend/internal/observability"
	"github.com/tbourn/go-promo-backend/internal/repo"
	"github.com/tbourn/go-promo-backend/internal/services"
)

const shutdownTimeout = 15 * time.Second

func openDB(cfg config.Config) (*gorm.DB, error) {
	db, err := repo.OpenSQLite(cfg.DBPath)
	if err != nil {
		return nil, err
	}
	if err := repo.AutoMigrate(db); err != nil {
		closeDB(db)
		return nil, err
	}
	if cfg.OTEL.Enabled {
		if err := repo.EnableTracing(db); err != nil {
			closeDB(db)
			return nil, err
		}
	}
	return db, nil
}

func closeDB(db *gorm.DB) {
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}

// newArchive returns nil when no S3 endpoint is configured.
func newArchive(cfg config.Config) (services.Archiver, error) {
	if !cfg.S3.Enabled() {
		return nil, nil
	}
	a, err := repo.NewS3Archive(repo.S3Config{
		Endpoint:  cfg.S3.Endpoint,
		Region:    cfg.S3.Region,
		AccessKey: cfg.S3.AccessKey,
		SecretKey: cfg.S3.SecretKey,
		Bucket:    cfg.S3.Bucket,
		UseSSL:    cfg.S3.UseSSL,
	})
	if err != nil {
		return nil, err
	}
	log.Info().Str("endpoint", cfg.S3.Endpoint).Str("bucket", cfg.S3.Bucket).Msg("snapshot archive enabled")
	return a, nil
}

// serve runs the HTTP API until ctx is cancelled, then drains in-flight
// requests and flushes traces.
func serve(ctx context.Context, cfg config.Config) error {
	tel, err := observability.Setup(ctx, cfg.OTEL, version)
	if err != nil {
		return err
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := tel.Shutdown(sctx); err != nil {
			log.Warn().Err(err).Msg("otel shutdown")
		}
	}()

	db, err := openDB(cfg)
	if err != nil {
		return err
	}
	defer closeDB(db)

	archive, err := newArchive(cfg)
	if err != nil {
		return err
	}

	gin.SetMode(cfg.GinMode)
	r := gin.New()
	if err := httpapi.RegisterRoutes(r, db, archive, cfg); err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              net.JoinHostPort("", cfg.Port),
		Handler:           r,
		ReadTimeout:       cfg.ReadTimeout,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
		MaxHeaderBytes:    cfg.MaxHeaderBytes,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().
			Str("addr", srv.Addr).
			Str("version", version).
			Str("base_path", cfg.APIBasePath).
			Bool("tracing", tel.Enabled()).
			Msg("http server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(sctx)
}
