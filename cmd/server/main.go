package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"retailpos/internal/config"
	"retailpos/internal/infra"
	"retailpos/internal/repository"
	"retailpos/internal/router"
	"retailpos/internal/service"
	"retailpos/internal/worker"
)

func main() {
	// Structured logger — dev: pretty, prod: JSON
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	db, err := infra.NewDatabase(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}

	rdb, err := infra.NewRedis(cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}

	if err := infra.EnsureSeeded(db); err != nil {
		log.Fatal().Err(err).Msg("failed to seed defaults")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Async workers are wired here (composition root) so the pool has full
	// access to all infrastructure dependencies.
	mailer := infra.NewMailer(cfg)
	dispatcher := worker.NewDispatcher(rdb)
	auditRepo := repository.NewAuditRepository(db)

	pool := worker.NewPool(rdb, cfg.WorkerPoolSize)
	pool.Register(worker.QueueAudit, worker.NewAuditHandler(auditRepo))
	pool.Register(worker.QueueEmail, worker.NewEmailHandler(mailer))
	pool.Start(ctx)

	// Hourly overdue sweep.
	invoiceSvc := service.NewInvoiceService(
		repository.NewInvoiceRepository(db),
		repository.NewOrderRepository(db),
		repository.NewCustomerRepository(db),
		service.NewAuditService(auditRepo, dispatcher),
		infra.NewInvoiceRenderer(cfg.PDFStoragePath),
		dispatcher,
		cfg.InvoicePrefix,
		cfg.InvoiceDueDays,
	)
	worker.StartOverdueCron(ctx, invoiceSvc)

	r := router.New(cfg, db, rdb, dispatcher)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown on SIGINT / SIGTERM
	go func() {
		log.Info().Msgf("retailpos backend listening on :%d", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server…")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("forced shutdown")
	}
	log.Info().Msg("server exited")
}
