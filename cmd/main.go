package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"library-api/internal/config"
	"library-api/internal/database"
	"library-api/internal/handlers"
	"library-api/internal/logger"
	"library-api/internal/repositories"
	"library-api/internal/services"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		// The logger is configured from cfg, so it does not exist yet.
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(logger.Options{
		Level:  cfg.LogLevel,
		Pretty: cfg.Env == "development",
	})
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.Open(cfg.DB, log)
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.DB.Driver).Msg("failed to connect database")
	}
	defer func() {
		if err := database.Close(db); err != nil {
			log.Error().Err(err).Msg("failed to close database")
		}
	}()

	if cfg.DB.ResetOnStart {
		log.Warn().Msg("DB_RESET_ON_START is set, dropping every table")
	}
	if err := database.Migrate(db, cfg.DB.ResetOnStart); err != nil {
		log.Fatal().Err(err).Msg("failed to migrate schema")
	}

	sqlDB, err := db.DB()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to get generic DB")
	}

	userRepo := repositories.NewUserRepository(db)
	bookRepo := repositories.NewBookRepository(db)
	bookCopyRepo := repositories.NewBookCopyRepository(db)
	borrowRepo := repositories.NewBorrowRepository(db)
	companyRepo := repositories.NewCompanyRepository(db)

	svc := handlers.Services{
		Users:     services.NewUserService(db, userRepo, logger.Component(log, "users")),
		Books:     services.NewBookService(db, bookRepo, bookCopyRepo, logger.Component(log, "books")),
		Borrows:   services.NewBorrowService(db, borrowRepo, logger.Component(log, "borrows")),
		Companies: services.NewCompanyService(db, companyRepo, logger.Component(log, "companies")),
	}

	router := handlers.NewRouter(logger.Component(log, "http"), svc, sqlDB, handlers.RouterOptions{
		AllowOrigins: cfg.CORSAllowOrigins,
	})

	srv := &http.Server{
		Addr:              cfg.ServerAddr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", cfg.ServerAddr).Str("env", cfg.Env).Msg("starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			log.Error().Err(err).Msg("server error")
			return
		}
	case <-ctx.Done():
		log.Info().Msg("shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
	log.Info().Msg("server stopped")
}
