// Package main runs the proposals HTTP API together with the delivery
// worker pool.
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

	"propostas/internal/config"
	"propostas/internal/handler"
	"propostas/internal/infra"
	"propostas/internal/router"
	"propostas/internal/worker"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	if err := run(); err != nil {
		log.Fatal().Err(err).Msg("propostas: exiting")
	}
}

func configurarLog(env string) {
	zerolog.TimeFieldFormat = time.RFC3339
	if env != "production" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
		return
	}
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	configurarLog(cfg.Env)

	db, err := infra.NewDatabase(cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("postgres: %w", err)
	}
	rdb, err := infra.NewRedis(cfg.RedisURL)
	if err != nil {
		return err
	}
	defer func() {
		if err := rdb.Close(); err != nil {
			log.Warn().Err(err).Msg("redis close")
		}
	}()

	svc, err := router.NovosServicos(cfg, db, rdb)
	if err != nil {
		return fmt.Errorf("wiring: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Delivery shares the API's services; the SMTP breaker also gates retries.
	smtpCB := infra.NewCircuitBreaker(infra.DefaultCBConfig())
	mailer := infra.NewMailer(cfg, smtpCB)
	if !mailer.Configurado() {
		log.Warn().Msg("SMTP_HOST not set: proposal delivery jobs will fail until configured")
	}
	worker.StartWorkerPool(ctx, rdb, &worker.WorkerHandlers{
		Envio: worker.NewEnvioWorker(svc.Documentos, svc.Propostas, mailer),
	}, cfg.WorkerPoolSize)
	worker.StartRetryCron(ctx, worker.RetryCronConfig{
		Fila:   rdb,
		CB:     smtpCB,
		Queues: []string{worker.QueueEnvio},
	})

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      router.New(cfg, svc, handler.DBCheck(db), handler.RedisCheck(rdb)),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second, // PDF rendering happens inside the request
		IdleTimeout:  60 * time.Second,
	}

	errs := make(chan error, 1)
	go func() {
		log.Info().Int("port", cfg.Port).Str("env", cfg.Env).Msg("propostas API listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errs <- err
		}
	}()

	select {
	case err := <-errs:
		return fmt.Errorf("http: %w", err)
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	log.Info().Msg("server exited")
	return nil
}
