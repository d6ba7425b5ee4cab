package aggregator

import (
	"math"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/simaogato/portfoliosim-backend/internal/domain"
	"github.com/simaogato/portfoliosim-backend/internal/usecase/pricing"
)

// MockSimulator is a mock implementation of pricing.Simulator for testing
type MockSimulator struct {
	mock.Mock
}

func (m *MockSimulator) Next(price float64) float64 {
	args := m.Called(price)
	return args.Get(0).(float64)
}

var t0 = time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

func newPortfolio(t *testing.T) *domain.Portfolio {
	t.Helper()

	a, err := domain.NewAsset("2330.TW", domain.MarketTW, 40, 100, 4000)
	require.NoError(t, err)
	b, err := domain.NewAsset("AAPL", domain.MarketUS, 60, 50, 6000)
	require.NoError(t, err)

	p, err := domain.NewPortfolio([]*domain.Asset{a, b}, 10000)
	require.NoError(t, err)
	return p
}

func TestSeed_RecordsInitialSamples(t *testing.T) {
	p := newPortfolio(t)
	New(new(MockSimulator)).Seed(t0, p)

	require.Equal(t, 1, p.History.Len())
	first, _ := p.History.Latest()
	assert.Equal(t, t0, first.Time)
	assert.InDelta(t, 10000.0, first.Value, 1e-9)

	for _, asset := range p.Assets {
		sample, ok := asset.History.Latest()
		require.True(t, ok)
		assert.Equal(t, asset.InitialPrice(), sample.Price)
		assert.InDelta(t, asset.InvestedAmount(), sample.Value, 1e-9)
	}
}

func TestTick_UsesFreshlyUpdatedPrices(t *testing.T) {
	p := newPortfolio(t)
	sim := new(MockSimulator)
	sim.On("Next", 100.0).Return(102.0).Once() // 2330.TW +2%
	sim.On("Next", 50.0).Return(49.0).Once()   // AAPL -2%

	agg := New(sim)
	agg.Seed(t0, p)
	result := agg.Tick(t0.Add(3*time.Second), p)

	// 4000 × 1.02 + 6000 × 0.98 = 4080 + 5880
	assert.InDelta(t, 9960.0, result.PortfolioValue, 1e-9)
	assert.InDelta(t, 9960.0, p.CurrentValue, 1e-9)
	assert.Empty(t, result.Clamped)

	// The aggregate sample of this tick comes from this tick's asset values
	latest, _ := p.History.Latest()
	assert.Equal(t, t0.Add(3*time.Second), latest.Time)
	assert.InDelta(t, 9960.0, latest.Value, 1e-9)

	tw, _ := p.Asset("2330.TW")
	assert.Equal(t, 102.0, tw.CurrentPrice)
	assert.InDelta(t, 2.0, tw.ChangePct(), 1e-9)
	twLatest, _ := tw.History.Latest()
	assert.Equal(t, 102.0, twLatest.Price)
	assert.InDelta(t, 4080.0, twLatest.Value, 1e-9)

	us, _ := p.Asset("AAPL")
	assert.InDelta(t, -120.0, us.ChangeAbs(), 1e-9)

	sim.AssertExpectations(t)
}

func TestTick_ClampsDegeneratePrices(t *testing.T) {
	p := newPortfolio(t)
	sim := new(MockSimulator)
	sim.On("Next", 100.0).Return(-5.0)
	sim.On("Next", 50.0).Return(math.NaN())

	result := New(sim).Tick(t0, p)

	assert.ElementsMatch(t, []string{"2330.TW", "AAPL"}, result.Clamped)
	for _, asset := range p.Assets {
		assert.Equal(t, pricing.Floor, asset.CurrentPrice)
		assert.Greater(t, asset.CurrentValue(), 0.0)
	}
	assert.InDelta(t, domain.SumValues(p.Assets), p.CurrentValue, 1e-9)
}

func TestTick_ReportsFloorReachedBySimulator(t *testing.T) {
	p := newPortfolio(t)
	agg := New(pricing.SimulatorFunc(func(float64) float64 { return pricing.Floor }))

	first := agg.Tick(t0, p)
	assert.ElementsMatch(t, []string{"2330.TW", "AAPL"}, first.Clamped)

	// Already resting on the floor, nothing new to report
	second := agg.Tick(t0.Add(3*time.Second), p)
	assert.Empty(t, second.Clamped)
}

func TestTick_InvariantsHoldOverManyTicks(t *testing.T) {
	p := newPortfolio(t)
	agg := New(pricing.NewUniformWalk(rand.NewPCG(11, 12)))
	agg.Seed(t0, p)

	initial := p.InitialValue()
	invested := map[string]float64{}
	for _, a := range p.Assets {
		invested[a.Symbol] = a.InvestedAmount()
	}

	for i := 1; i <= 500; i++ {
		prev := map[string]float64{}
		for _, a := range p.Assets {
			prev[a.Symbol] = a.CurrentPrice
		}

		result := agg.Tick(t0.Add(time.Duration(i)*3*time.Second), p)

		// Aggregate consistency
		sum := 0.0
		for _, a := range result.Assets {
			sum += a.CurrentValue()
		}
		require.InDelta(t, sum, p.CurrentValue, 1e-6, "tick %d", i)

		for _, a := range p.Assets {
			// Bounded step and positive price
			require.LessOrEqual(t, math.Abs(a.CurrentPrice-prev[a.Symbol])/prev[a.Symbol], pricing.MaxStep+1e-12)
			require.Greater(t, a.CurrentPrice, 0.0)
			// Bounded history
			require.LessOrEqual(t, a.History.Len(), domain.HistoryCapacity)
			// Immutable invested amount
			require.Equal(t, invested[a.Symbol], a.InvestedAmount())
		}
		require.LessOrEqual(t, p.History.Len(), domain.HistoryCapacity)
		require.Equal(t, initial, p.InitialValue())
	}

	assert.Equal(t, domain.HistoryCapacity, p.History.Len())
}

func TestStats(t *testing.T) {
	tests := []struct {
		name    string
		values  []float64
		samples int
		mean    float64
		vol     float64
	}{
		{name: "empty", values: nil},
		{name: "single sample", values: []float64{100}, samples: 1},
		{name: "one return", values: []float64{100, 110}, samples: 2, mean: 10},
		// returns +10% and -10%: mean 0, sample std dev sqrt(200)
		{name: "two returns", values: []float64{100, 110, 99}, samples: 3, mean: 0, vol: math.Sqrt(200)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			history := make([]domain.ValuePoint, len(tt.values))
			for i, v := range tt.values {
				history[i] = domain.ValuePoint{Time: t0.Add(time.Duration(i) * time.Second), Value: v}
			}

			stats := Stats(history)
			assert.Equal(t, tt.samples, stats.Samples)
			assert.InDelta(t, tt.mean, stats.MeanReturnPct, 1e-9)
			assert.InDelta(t, tt.vol, stats.VolatilityPct, 1e-9)
		})
	}
}
