package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestRecordPoolLifecycle(t *testing.T) {
	c := NewCollector(prometheus.NewRegistry())

	c.RecordPoolOpened("usdc", "LOCK", 100)
	c.RecordPoolOpened("usdc", "FLEXIBLE", 50)
	c.RecordPoolUpdated("usdc", 25)
	c.RecordPoolWithdrawn("usdc", "LOCK", 97, 3)
	c.RecordPoolWithdrawn("usdc", "FLEXIBLE", 50, 0)

	require.Equal(t, 1.0, testutil.ToFloat64(c.PoolsOpened.WithLabelValues("usdc", "LOCK")))
	require.Equal(t, 1.0, testutil.ToFloat64(c.PoolsWithdrawn.WithLabelValues("usdc", "LOCK", "true")))
	require.Equal(t, 1.0, testutil.ToFloat64(c.PoolsWithdrawn.WithLabelValues("usdc", "FLEXIBLE", "false")))
	require.Equal(t, 175.0, testutil.ToFloat64(c.AmountDeposited.WithLabelValues("usdc")))
	require.Equal(t, 147.0, testutil.ToFloat64(c.AmountReleased.WithLabelValues("usdc")))
	require.Equal(t, 3.0, testutil.ToFloat64(c.FeesCollected.WithLabelValues("usdc")))
}

func TestRecordOperationError(t *testing.T) {
	c := NewCollector(prometheus.NewRegistry())

	c.RecordOperationError("withdraw_pool", "policy")
	c.RecordOperationError("withdraw_pool", "policy")
	c.RecordOperationError("open_pool", "validation")

	require.Equal(t, 2.0, testutil.ToFloat64(c.OperationErrors.WithLabelValues("withdraw_pool", "policy")))
	require.Equal(t, 2, testutil.CollectAndCount(c.OperationErrors))
}

func TestLedgerGauges(t *testing.T) {
	c := NewCollector(prometheus.NewRegistry())

	c.RecordCommit(42)
	c.RecordLedgerState(7, map[string]uint64{"LOCK": 4, "FLEXIBLE": 3}, map[string]uint64{"usdc": 900, "atom": 5})
	c.RecordOperationLatency("commit", 0.7)

	require.Equal(t, 42.0, testutil.ToFloat64(c.CommitHeight))
	require.Equal(t, 7.0, testutil.ToFloat64(c.LivePools))
	require.Equal(t, 4.0, testutil.ToFloat64(c.PoolsActive.WithLabelValues("LOCK")))
	require.Equal(t, 900.0, testutil.ToFloat64(c.AmountSaved.WithLabelValues("usdc")))
	require.Equal(t, 1, testutil.CollectAndCount(c.OperationLatency))

	// a later sample drops labels that no longer have live pools
	c.RecordLedgerState(1, map[string]uint64{"FLEXIBLE": 1}, map[string]uint64{"usdc": 10})
	require.Equal(t, 1, testutil.CollectAndCount(c.PoolsActive))
	require.Equal(t, 1, testutil.CollectAndCount(c.AmountSaved))
}

func TestHandlerFor(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)
	c.RecordPoolOpened("usdc", "STRICTLOCK", 10)

	rec := httptest.NewRecorder()
	HandlerFor(reg).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	require.True(t, strings.Contains(rec.Body.String(), `savings_pools_opened_total{lock_type="STRICTLOCK",token_id="usdc"} 1`))
}

func TestGetCollectorSingleton(t *testing.T) {
	require.Same(t, GetCollector(), GetCollector())
}
