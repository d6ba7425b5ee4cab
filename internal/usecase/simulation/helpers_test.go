package simulation

import (
	"math/rand/v2"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/simaogato/portfoliosim-backend/internal/domain"
	"github.com/simaogato/portfoliosim-backend/internal/usecase/aggregator"
	"github.com/simaogato/portfoliosim-backend/internal/usecase/allocator"
	"github.com/simaogato/portfoliosim-backend/internal/usecase/pricing"
)

var epoch = time.Date(2026, 5, 4, 9, 0, 0, 0, time.UTC)

// steppingClock returns a clock advancing by step on every call
func steppingClock(start time.Time, step time.Duration) func() time.Time {
	var mu sync.Mutex
	cur := start
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		t := cur
		cur = cur.Add(step)
		return t
	}
}

func pct(v float64) *float64 { return &v }

func testRequest() domain.AllocationRequest {
	return domain.AllocationRequest{
		Assets: []domain.AssetRequest{
			{Symbol: "0050.TW", Market: "TW", Percentage: pct(30)},
			{Symbol: "2330.TW", Market: "TW", Percentage: pct(50)},
			{Symbol: "AAPL", Market: "US", Percentage: pct(20)},
		},
		TotalInvestment: 100000,
		RiskPreference:  60,
	}
}

func testAllocation(t *testing.T) *allocator.Allocation {
	t.Helper()
	alloc, err := allocator.NewCalculator(rand.NewPCG(1, 1)).Calculate(testRequest())
	require.NoError(t, err)
	return alloc
}

func newTestSession(t *testing.T) (*Session, *ManualScheduler) {
	t.Helper()
	sched := NewManualScheduler()
	session := NewSession(
		sched,
		aggregator.New(pricing.NewUniformWalk(rand.NewPCG(2, 2))),
		WithClock(steppingClock(epoch, DefaultTickInterval)),
	)
	return session, sched
}

// assertConsistent checks the invariants every snapshot must satisfy
func assertConsistent(t *testing.T, snap domain.SessionSnapshot) {
	t.Helper()

	sum := 0.0
	for _, a := range snap.Assets {
		sum += a.CurrentValue
		assert.Greater(t, a.CurrentPrice, 0.0)
		assert.LessOrEqual(t, len(a.History), domain.HistoryCapacity)
	}
	assert.InDelta(t, sum, snap.Portfolio.CurrentValue, 1e-6)
	assert.LessOrEqual(t, len(snap.Portfolio.History), domain.HistoryCapacity)

	if n := len(snap.Portfolio.History); n > 0 {
		assert.InDelta(t, snap.Portfolio.CurrentValue, snap.Portfolio.History[n-1].Value, 1e-9)
	}
}
