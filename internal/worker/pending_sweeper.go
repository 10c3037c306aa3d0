// Package worker holds background loops that run alongside the HTTP server.
package worker

import (
	"context"
	"log"
	"time"
)

// StaleReclaimer cancels bookings whose payment stayed pending past the TTL.
type StaleReclaimer interface {
	ReclaimStalePending(ctx context.Context, ttl time.Duration) (int, error)
}

// PendingSweeper periodically reclaims stale pending-payment bookings so
// abandoned checkouts cannot hold gateway orders forever.
type PendingSweeper struct {
	reclaimer StaleReclaimer
	interval  time.Duration
	ttl       time.Duration
}

func NewPendingSweeper(reclaimer StaleReclaimer, interval, ttl time.Duration) *PendingSweeper {
	return &PendingSweeper{
		reclaimer: reclaimer,
		interval:  interval,
		ttl:       ttl,
	}
}

// Run sweeps once immediately and then on every tick until ctx is cancelled.
func (s *PendingSweeper) Run(ctx context.Context) {
	log.Printf("pending-payment sweeper started, interval %s, ttl %s", s.interval, s.ttl)

	s.sweep(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("pending-payment sweeper stopped")
			return
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

func (s *PendingSweeper) sweep(ctx context.Context) {
	n, err := s.reclaimer.ReclaimStalePending(ctx, s.ttl)
	if err != nil {
		log.Printf("pending-payment sweep failed: %v", err)
		return
	}
	if n > 0 {
		log.Printf("reclaimed %d stale pending bookings", n)
	}
}
