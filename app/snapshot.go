package app

import (
	"github.com/openalpha/savings-ledger/metrics"
	savingstypes "github.com/openalpha/savings-ledger/x/savings/types"
)

// LedgerSnapshot summarizes the committed pools
type LedgerSnapshot struct {
	Version          int64             `json:"version"`
	LivePools        uint64            `json:"live_pools"`
	ActiveByLockType map[string]uint64 `json:"active_by_lock_type"`
	SavedByToken     map[string]uint64 `json:"saved_by_token"`
}

// Snapshot walks the committed pools. Stopped pools still count as live.
func (app *App) Snapshot() (LedgerSnapshot, error) {
	app.mu.Lock()
	defer app.mu.Unlock()

	snap := LedgerSnapshot{
		Version:          app.LastVersion(),
		ActiveByLockType: make(map[string]uint64),
		SavedByToken:     make(map[string]uint64),
	}
	ctx := app.QueryContext()
	err := app.SavingsKeeper.IteratePools(ctx, func(pool *savingstypes.SavingPool) bool {
		snap.LivePools++
		snap.ActiveByLockType[pool.LockType.String()]++
		snap.SavedByToken[pool.TokenID] += pool.AmountSaved
		return false
	})
	if err != nil {
		return LedgerSnapshot{}, err
	}
	return snap, nil
}

// RecordSnapshot takes a snapshot and publishes it as ledger gauges on c
func (app *App) RecordSnapshot(c *metrics.Collector) (LedgerSnapshot, error) {
	snap, err := app.Snapshot()
	if err != nil {
		return LedgerSnapshot{}, err
	}
	c.RecordCommit(snap.Version)
	c.RecordLedgerState(snap.LivePools, snap.ActiveByLockType, snap.SavedByToken)
	return snap, nil
}
