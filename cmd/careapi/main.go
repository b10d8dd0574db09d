package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"github.com/example/care-booking/internal/application"
	"github.com/example/care-booking/internal/config"
	httptransport "github.com/example/care-booking/internal/http"
	"github.com/example/care-booking/internal/persistence/sqlite"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Optional; the process runs on environment defaults without a .env file.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	store, err := sqlite.Open(cfg.SQLiteDSN)
	if err != nil {
		logger.Error("failed to open storage", "error", err)
		os.Exit(1)
	}
	defer func() {
		if cerr := store.Close(); cerr != nil {
			logger.Error("failed to close storage", "error", cerr)
		}
	}()

	if err := store.Migrate(context.Background()); err != nil {
		logger.Error("failed to apply migrations", "error", err)
		os.Exit(1)
	}

	idGenerator := uuid.NewString
	now := time.Now

	workerRepo := sqlite.NewWorkerRepository(store)
	clientRepo := sqlite.NewClientRepository(store)
	bookingRepo := sqlite.NewBookingRepository(store)

	bookingService := application.NewBookingServiceWithLogger(bookingRepo, workerRepo, clientRepo, cfg.MinLeadTime, cfg.ConfirmationWindow, now, logger)
	workerService := application.NewWorkerService(workerRepo, idGenerator, now)
	clientService := application.NewClientService(clientRepo, idGenerator, now)
	searchService := application.NewSearchService(workerRepo, clientRepo, cfg.SearchCacheTTL, now)

	bookingHandler := httptransport.NewBookingHandler(bookingService, logger)
	workerHandler := httptransport.NewWorkerHandler(workerService, searchService, bookingService, logger)
	clientHandler := httptransport.NewClientHandler(clientService, logger)

	router := httptransport.NewRouter(httptransport.RouterConfig{
		Bookings:   bookingHandler,
		Workers:    workerHandler,
		Clients:    clientHandler,
		Middleware: []func(http.Handler) http.Handler{httptransport.RequestLogger(logger)},
	})

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("failed to shutdown server", "error", err)
		}
	}()

	logger.Info("care booking API listening", "addr", server.Addr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("server encountered error", "error", err)
		os.Exit(1)
	}
}
