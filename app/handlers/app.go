package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"

	"github.com/apavering/user-directory/app/dto"
	"github.com/apavering/user-directory/app/logger"
	"github.com/apavering/user-directory/app/metrics"
	dirmw "github.com/apavering/user-directory/app/middleware"
	"github.com/apavering/user-directory/app/services"
	"github.com/apavering/user-directory/app/store"
)

type dbConfig struct {
	dsn          string
	maxOpenConns int
	maxIdleConns int
	maxIdleTime  string
}

type config struct {
	addr string
	db   dbConfig
}

type application struct {
	config      config
	store       store.Storage
	directory   *services.UserDirectory
	db          *sql.DB
	redisClient *redis.Client
	rabbitConn  *amqp.Connection
}

func (app *application) mount() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(dirmw.RequestIDTracing())
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger)
	r.Use(dirmw.Metrics())
	r.Use(middleware.Timeout(60 * time.Second))

	r.Route("/users/v1", func(r chi.Router) {
		r.Get("/health", app.healthCheckHandler)
		r.Get("/metrics", metrics.Handler().ServeHTTP)

		r.Route("/users", func(r chi.Router) {
			r.Post("/", app.createUserHandler)
			r.Post("/bulk", app.bulkCreateUsersHandler)
			r.Get("/", app.listActiveUsersHandler)
			r.Get("/search", app.searchUsersHandler)
			r.Get("/{id}", app.getUserHandler)
			r.Patch("/{id}", app.updateUserHandler)
			r.Delete("/{id}", app.deleteUserHandler)
		})
	})
	return r
}

func (app *application) run(mux http.Handler) error {
	srv := &http.Server{
		Addr:         app.config.addr,
		Handler:      mux,
		WriteTimeout: 30 * time.Second,
		ReadTimeout:  10 * time.Second,
		IdleTimeout:  time.Minute,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM, syscall.SIGINT)

	serverErrors := make(chan error, 1)
	go func() {
		logger.Logger.Info().Str("addr", app.config.addr).Msg("starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrors <- err
		}
	}()

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)
	case sig := <-quit:
		logger.Logger.Info().Str("signal", sig.String()).Msg("shutting down")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Logger.Error().Err(err).Msg("forced shutdown")
		return err
	}

	logger.Logger.Info().Msg("server stopped")
	return nil
}

// writeEnvelope serializes the operation result, mirroring the envelope code
// as the HTTP status.
func writeEnvelope(w http.ResponseWriter, env dto.Envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(env.Code)
	_ = json.NewEncoder(w).Encode(env)
}

// writeInternalError logs the fault and hides it behind a generic envelope.
func writeInternalError(w http.ResponseWriter, r *http.Request, err error) {
	logger.FromContext(r.Context()).Error().Err(err).Msg("request failed")
	writeEnvelope(w, dto.Fail(http.StatusInternalServerError, "Internal server error"))
}
