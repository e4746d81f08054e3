package maintenance

import (
	"context"
	"log"
	"time"

	"push-campaign-backend/config"
	"push-campaign-backend/internal/store"
)

// Sweeper prunes old clicks, deliveries, and long-inactive subscribers on a
// fixed interval.
type Sweeper struct {
	cfg   *config.RetentionConfig
	store store.Store
}

// NewSweeper creates a new retention sweeper.
func NewSweeper(cfg *config.RetentionConfig, s store.Store) *Sweeper {
	return &Sweeper{cfg: cfg, store: s}
}

// Run starts the sweep loop. It returns when ctx is cancelled.
func (s *Sweeper) Run(ctx context.Context) {
	if !s.cfg.Enabled {
		log.Println("Retention sweeper is disabled. Not starting.")
		return
	}
	log.Println("Starting retention sweeper...")

	s.SweepOnce(ctx)

	timer := time.NewTimer(s.cfg.Interval)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("Retention sweeper shutting down.")
			return
		case <-timer.C:
			s.SweepOnce(ctx)
			timer.Reset(s.cfg.Interval)
		}
	}
}

// SweepOnce performs a single retention pass.
func (s *Sweeper) SweepOnce(ctx context.Context) {
	cutoff := time.Now().UTC().AddDate(0, 0, -s.cfg.MaxAgeDays)
	removed, err := s.store.PruneBefore(ctx, cutoff)
	if err != nil {
		log.Printf("Retention sweep failed: %v", err)
		return
	}
	if removed > 0 {
		log.Printf("Retention sweep removed %d rows older than %s", removed, cutoff.Format(time.RFC3339))
	}
}
