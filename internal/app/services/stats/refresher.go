// Package stats publishes per-collection supply and proceeds gauges on a
// fixed interval.
package stats

import (
	"context"
	"sync"
	"time"

	"github.com/MintGate-Network/mint_layer/internal/app/metrics"
	"github.com/MintGate-Network/mint_layer/internal/app/storage"
	"github.com/MintGate-Network/mint_layer/internal/app/system"
	"github.com/MintGate-Network/mint_layer/pkg/logger"
)

// Refresher periodically reads collection and treasury state and exports it
// as Prometheus gauges.
type Refresher struct {
	collections storage.CollectionStore
	treasury    storage.TreasuryStore
	interval    time.Duration
	log         *logger.Logger

	mu      sync.Mutex
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	running bool
}

var _ system.Service = (*Refresher)(nil)

// NewRefresher builds a refresher with a 30s interval.
func NewRefresher(collections storage.CollectionStore, treasury storage.TreasuryStore, log *logger.Logger) *Refresher {
	if log == nil {
		log = logger.NewDefault("stats")
	}
	return &Refresher{
		collections: collections,
		treasury:    treasury,
		interval:    30 * time.Second,
		log:         log,
	}
}

// WithInterval overrides the refresh interval. Call before Start.
func (r *Refresher) WithInterval(interval time.Duration) *Refresher {
	if interval > 0 {
		r.interval = interval
	}
	return r
}

func (r *Refresher) Name() string { return "stats-refresher" }

func (r *Refresher) Start(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.running {
		return nil
	}
	runCtx, cancel := context.WithCancel(ctx)
	r.cancel = cancel
	r.running = true

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		ticker := time.NewTicker(r.interval)
		defer ticker.Stop()
		for {
			select {
			case <-runCtx.Done():
				return
			case <-ticker.C:
				r.tick(runCtx)
			}
		}
	}()

	r.log.Info("stats refresher started")
	return nil
}

func (r *Refresher) Stop(ctx context.Context) error {
	r.mu.Lock()
	if !r.running {
		r.mu.Unlock()
		return nil
	}
	cancel := r.cancel
	r.running = false
	r.cancel = nil
	r.mu.Unlock()

	if cancel != nil {
		cancel()
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		r.wg.Wait()
	}()

	select {
	case <-done:
	case <-ctx.Done():
		return ctx.Err()
	}

	return nil
}

func (r *Refresher) tick(ctx context.Context) {
	cols, err := r.collections.ListCollections(ctx)
	if err != nil {
		r.log.WithError(err).Warn("list collections failed")
		return
	}

	for _, col := range cols {
		metrics.SetSupply(col.ID, col.TotalMinted)
		bal, err := r.treasury.GetBalance(ctx, col.ID)
		if err != nil {
			r.log.WithError(err).Warnf("balance for collection %s failed", col.ID)
			continue
		}
		metrics.SetProceeds(col.ID, bal.Proceeds)
	}
}
