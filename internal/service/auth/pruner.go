package auth

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/phrazzld/booking-api/internal/store"
	"github.com/robfig/cron/v3"
)

// Store names reported to the PruneRecorder.
const (
	PruneStoreRefreshTokens = "refresh_tokens"
	PruneStoreRevokedTokens = "revoked_tokens"
)

// PruneRecorder receives the number of records removed per store.
type PruneRecorder interface {
	TokensPruned(store string, n int64)
}

type noopPruneRecorder struct{}

func (noopPruneRecorder) TokensPruned(string, int64) {}

// Pruner periodically removes refresh tokens and revocation records that
// are past their expiry. It deletes only logically dead records.
type Pruner struct {
	refresh  store.RefreshTokenStore
	ledger   store.RevocationLedger
	recorder PruneRecorder
	logger   *slog.Logger
	timeFunc func() time.Time
	cron     *cron.Cron
}

// NewPruner creates a Pruner. recorder may be nil.
func NewPruner(
	refresh store.RefreshTokenStore,
	ledger store.RevocationLedger,
	recorder PruneRecorder,
	logger *slog.Logger,
) *Pruner {
	if recorder == nil {
		recorder = noopPruneRecorder{}
	}
	return &Pruner{
		refresh:  refresh,
		ledger:   ledger,
		recorder: recorder,
		logger:   logger.With("component", "token_pruner"),
		timeFunc: time.Now,
	}
}

// Start schedules pruning using a cron spec such as "@every 1h" or
// "0 * * * *". It returns an error for an invalid schedule.
func (p *Pruner) Start(ctx context.Context, schedule string) error {
	c := cron.New()
	if _, err := c.AddFunc(schedule, func() {
		if _, err := p.PruneOnce(ctx); err != nil {
			p.logger.Error("token pruning failed", "error", err)
		}
	}); err != nil {
		return fmt.Errorf("invalid prune schedule %q: %w", schedule, err)
	}

	c.Start()
	p.cron = c
	p.logger.Info("token pruner started", "schedule", schedule)
	return nil
}

// Stop halts the schedule and waits for a running prune to finish or ctx
// to be done.
func (p *Pruner) Stop(ctx context.Context) {
	if p.cron == nil {
		return
	}
	select {
	case <-p.cron.Stop().Done():
		p.logger.Info("token pruner stopped")
	case <-ctx.Done():
		p.logger.Warn("token pruner stop timed out", "error", ctx.Err())
	}
}

// PruneOnce removes expired records from both stores and returns the total.
// Both stores are attempted even if the first fails.
func (p *Pruner) PruneOnce(ctx context.Context) (int64, error) {
	now := p.timeFunc()
	var total int64
	var firstErr error

	for _, target := range []struct {
		name  string
		prune func(context.Context, time.Time) (int64, error)
	}{
		{PruneStoreRefreshTokens, p.refresh.PruneExpired},
		{PruneStoreRevokedTokens, p.ledger.PruneExpired},
	} {
		n, err := target.prune(ctx, now)
		if err != nil {
			p.logger.Error("failed to prune expired tokens", "store", target.name, "error", err)
			if firstErr == nil {
				firstErr = fmt.Errorf("failed to prune %s: %w", target.name, err)
			}
			continue
		}
		p.recorder.TokensPruned(target.name, n)
		total += n
		if n > 0 {
			p.logger.Info("pruned expired tokens", "store", target.name, "count", n)
		}
	}

	return total, firstErr
}
