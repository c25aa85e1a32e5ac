package app

import (
	savingskeeper "github.com/openalpha/savings-ledger/x/savings/keeper"
)

var _ savingskeeper.Metrics = (*pendingMetrics)(nil)

// pendingMetrics holds keeper notifications until the operation that produced
// them commits. Errors are forwarded at once since a failed operation never
// commits.
type pendingMetrics struct {
	sink   savingskeeper.Metrics
	queued []func(m savingskeeper.Metrics)
}

func newPendingMetrics(sink savingskeeper.Metrics) *pendingMetrics {
	return &pendingMetrics{sink: sink}
}

func (p *pendingMetrics) RecordPoolOpened(tokenID, lockType string, amount uint64) {
	p.queued = append(p.queued, func(m savingskeeper.Metrics) {
		m.RecordPoolOpened(tokenID, lockType, amount)
	})
}

func (p *pendingMetrics) RecordPoolUpdated(tokenID string, amount uint64) {
	p.queued = append(p.queued, func(m savingskeeper.Metrics) {
		m.RecordPoolUpdated(tokenID, amount)
	})
}

func (p *pendingMetrics) RecordPoolWithdrawn(tokenID, lockType string, released, fee uint64) {
	p.queued = append(p.queued, func(m savingskeeper.Metrics) {
		m.RecordPoolWithdrawn(tokenID, lockType, released, fee)
	})
}

func (p *pendingMetrics) RecordOperationError(operation, kind string) {
	p.sink.RecordOperationError(operation, kind)
}

// flush delivers the queued notifications
func (p *pendingMetrics) flush() {
	for _, record := range p.queued {
		record(p.sink)
	}
	p.queued = nil
}

// discard drops the queued notifications
func (p *pendingMetrics) discard() {
	p.queued = nil
}
