package allocator

import (
	"fmt"
	"math"
	"math/rand/v2"
	"strings"
	"sync"

	"github.com/shopspring/decimal"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/simaogato/portfoliosim-backend/internal/domain"
)

const (
	// MinInitialPrice and MaxInitialPrice bound the seed price drawn for each asset
	MinInitialPrice = 50.0
	MaxInitialPrice = 150.0
)

var (
	hundred = decimal.NewFromInt(100)
	// percentTolerance is how far custom percentages may sum away from 100
	percentTolerance = decimal.RequireFromString("0.01")
)

// Allocation is a validated initial asset set, ready to be simulated
type Allocation struct {
	Assets         []*domain.Asset
	InitialValue   float64
	RiskPreference float64
}

// Calculator turns allocation requests into initial asset sets.
// All random draws come from the injected source, so a seeded source gives
// reproducible allocations.
type Calculator struct {
	mu     sync.Mutex
	price  distuv.Uniform
	risk   distuv.Uniform
	reward distuv.Uniform
}

// NewCalculator creates a Calculator drawing from src
func NewCalculator(src rand.Source) *Calculator {
	return &Calculator{
		price:  distuv.Uniform{Min: MinInitialPrice, Max: MaxInitialPrice, Src: src},
		risk:   distuv.Uniform{Min: 0.8, Max: 1.2, Src: src},
		reward: distuv.Uniform{Min: 0.9, Max: 1.5, Src: src},
	}
}

// Calculate validates req and builds the initial asset set.
// Logic:
//  1. Custom percentages must sum to 100 (±0.01), otherwise every asset gets 100/n
//  2. InvestedAmount = TotalInvestment × percentage / 100, the last asset takes
//     the remainder so invested amounts add up to TotalInvestment exactly
//  3. Each asset gets a random seed price in [50, 150) and illustrative
//     risk/return scores derived from the risk preference
func (c *Calculator) Calculate(req domain.AllocationRequest) (*Allocation, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	percentages, err := splitPercentages(req)
	if err != nil {
		return nil, err
	}

	amounts, err := investedAmounts(decimal.NewFromFloat(req.TotalInvestment), percentages, req.HasPercentages())
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	assets := make([]*domain.Asset, 0, len(req.Assets))
	for i, item := range req.Assets {
		market, err := domain.ParseMarket(item.Market)
		if err != nil {
			return nil, err
		}

		asset, err := domain.NewAsset(
			strings.TrimSpace(item.Symbol),
			market,
			percentages[i].InexactFloat64(),
			c.price.Rand(),
			amounts[i].InexactFloat64(),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to create asset %s: %w", item.Symbol, err)
		}

		asset.RiskScore, asset.ReturnScore = c.scores(req.RiskPreference)
		assets = append(assets, asset)
	}

	return &Allocation{
		Assets:         assets,
		InitialValue:   req.TotalInvestment,
		RiskPreference: req.RiskPreference,
	}, nil
}

// scores returns heuristic display figures. They are NOT a risk or return
// model and must never drive the simulation:
//
//	risk   = round(riskPreference/100 × 10 × U(0.8, 1.2))
//	return = round(riskPreference/100 × 15 × U(0.9, 1.5))
func (c *Calculator) scores(riskPreference float64) (int, int) {
	weight := riskPreference / 100
	risk := math.Round(weight * 10 * c.risk.Rand())
	reward := math.Round(weight * 15 * c.reward.Rand())
	return int(risk), int(reward)
}

// splitPercentages returns the allocation percentage of every asset
func splitPercentages(req domain.AllocationRequest) ([]decimal.Decimal, error) {
	n := len(req.Assets)
	percentages := make([]decimal.Decimal, n)

	if !req.HasPercentages() {
		even := hundred.Div(decimal.NewFromInt(int64(n)))
		for i := range percentages {
			percentages[i] = even
		}
		return percentages, nil
	}

	sum := decimal.Zero
	for i, item := range req.Assets {
		percentages[i] = decimal.NewFromFloat(*item.Percentage)
		sum = sum.Add(percentages[i])
	}

	if sum.Sub(hundred).Abs().GreaterThan(percentTolerance) {
		return nil, fmt.Errorf("%w: percentages sum to %s, want 100", domain.ErrInvalidAllocation, sum.String())
	}

	return percentages, nil
}

// investedAmounts splits total across the percentages. The last asset gets
// whatever is left so that no fraction of the investment is lost to rounding.
// Percentages that overshoot 100 within tolerance can leave nothing for it,
// which is reported as an invalid allocation.
func investedAmounts(total decimal.Decimal, percentages []decimal.Decimal, custom bool) ([]decimal.Decimal, error) {
	n := len(percentages)
	amounts := make([]decimal.Decimal, n)

	allocated := decimal.Zero
	for i := 0; i < n-1; i++ {
		if custom {
			amounts[i] = total.Mul(percentages[i]).Div(hundred)
		} else {
			amounts[i] = total.Div(decimal.NewFromInt(int64(n)))
		}
		allocated = allocated.Add(amounts[i])
	}
	amounts[n-1] = total.Sub(allocated)
	if !amounts[n-1].IsPositive() {
		return nil, fmt.Errorf("%w: percentages leave %s for the last asset", domain.ErrInvalidAllocation, amounts[n-1].String())
	}

	return amounts, nil
}
