package worker

// overdue_cron.go
// Background goroutine that periodically sweeps ISSUED invoices whose due
// date has passed into OVERDUE. The same sweep is exposed over HTTP for
// manual triggering.

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
)

const overdueTickInterval = time.Hour

// OverdueSweeper is the slice of the invoice module the cron needs.
type OverdueSweeper interface {
	CheckOverdue(ctx context.Context) (int, error)
}

// StartOverdueCron launches a background goroutine that ticks hourly and
// runs the overdue sweep. It respects the context for graceful shutdown.
func StartOverdueCron(ctx context.Context, sweeper OverdueSweeper) {
	go func() {
		ticker := time.NewTicker(overdueTickInterval)
		defer ticker.Stop()

		log.Info().Msg("overdue_cron: started")

		for {
			select {
			case <-ctx.Done():
				log.Info().Msg("overdue_cron: shutting down")
				return
			case <-ticker.C:
				moved, err := sweeper.CheckOverdue(ctx)
				if err != nil {
					log.Error().Err(err).Msg("overdue_cron: sweep failed")
					continue
				}
				if moved > 0 {
					log.Info().Int("moved", moved).Msg("overdue_cron: invoices marked overdue")
				}
			}
		}
	}()
}
