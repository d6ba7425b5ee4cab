package scheduler

import (
	"math/rand/v2"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/simaogato/portfoliosim-backend/internal/domain"
	"github.com/simaogato/portfoliosim-backend/internal/usecase/aggregator"
	"github.com/simaogato/portfoliosim-backend/internal/usecase/allocator"
	"github.com/simaogato/portfoliosim-backend/internal/usecase/pricing"
	"github.com/simaogato/portfoliosim-backend/internal/usecase/simulation"
)

func TestCron_DrivesSessionLifecycle(t *testing.T) {
	if testing.Short() {
		t.Skip("waits on wall clock")
	}

	share := 50.0
	alloc, err := allocator.NewCalculator(rand.NewPCG(3, 3)).Calculate(domain.AllocationRequest{
		Assets: []domain.AssetRequest{
			{Symbol: "2330.TW", Market: "TW", Percentage: &share},
			{Symbol: "AAPL", Market: "US", Percentage: &share},
		},
		TotalInvestment: 10000,
		RiskPreference:  50,
	})
	require.NoError(t, err)

	session := simulation.NewSession(
		NewCron(zerolog.Nop()),
		aggregator.New(pricing.NewUniformWalk(rand.NewPCG(4, 4))),
		simulation.WithInterval(time.Second),
	)
	require.NoError(t, session.Start(alloc))

	require.Eventually(t, func() bool {
		return session.Snapshot().ElapsedTicks >= 1
	}, 4*time.Second, 50*time.Millisecond)

	require.NoError(t, session.Pause())
	paused := session.Snapshot()
	assert.Equal(t, domain.StatusPaused, paused.Status)

	// Long enough for two more ticks had the timer survived the pause
	time.Sleep(2500 * time.Millisecond)

	still := session.Snapshot()
	assert.Equal(t, paused.ElapsedTicks, still.ElapsedTicks)
	assert.Equal(t, paused.Portfolio.CurrentValue, still.Portfolio.CurrentValue)
	assert.Len(t, still.Portfolio.History, len(paused.Portfolio.History))
	for i, a := range still.Assets {
		assert.Equal(t, paused.Assets[i].CurrentPrice, a.CurrentPrice, a.Symbol)
	}

	require.NoError(t, session.Resume())
	require.Eventually(t, func() bool {
		return session.Snapshot().ElapsedTicks > paused.ElapsedTicks
	}, 4*time.Second, 50*time.Millisecond)

	require.NoError(t, session.Reset())
	reset := session.Snapshot()
	assert.Equal(t, domain.StatusTerminated, reset.Status)

	time.Sleep(1500 * time.Millisecond)
	assert.Equal(t, 0, session.Snapshot().ElapsedTicks, "no ticks after reset")
}
