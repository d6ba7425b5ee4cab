package aggregator

import (
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/simaogato/portfoliosim-backend/internal/domain"
	"github.com/simaogato/portfoliosim-backend/internal/usecase/pricing"
)

// Result describes one completed tick
type Result struct {
	Time           time.Time
	Assets         []*domain.Asset // The set the aggregate was computed from
	PortfolioValue float64
	Clamped        []string // Symbols whose step hit the price floor
}

// Aggregator applies price steps to a portfolio and keeps its value figures
// and histories consistent
type Aggregator struct {
	sim pricing.Simulator
}

// New creates an Aggregator stepping prices with sim
func New(sim pricing.Simulator) *Aggregator {
	return &Aggregator{sim: sim}
}

// Seed records the starting sample of every asset and of the portfolio
func (a *Aggregator) Seed(ts time.Time, p *domain.Portfolio) {
	for _, asset := range p.Assets {
		asset.History.Append(domain.PricePoint{
			Time:  ts,
			Price: asset.CurrentPrice,
			Value: asset.CurrentValue(),
		})
	}
	p.CurrentValue = domain.SumValues(p.Assets)
	p.History.Append(domain.ValuePoint{Time: ts, Value: p.CurrentValue})
}

// Tick advances every asset by one price step, then recomputes the
// portfolio value from the assets updated in this same tick.
func (a *Aggregator) Tick(ts time.Time, p *domain.Portfolio) Result {
	updated, clamped := a.advance(ts, p.Assets)

	value := domain.SumValues(updated)
	p.CurrentValue = value
	p.History.Append(domain.ValuePoint{Time: ts, Value: value})

	return Result{
		Time:           ts,
		Assets:         updated,
		PortfolioValue: value,
		Clamped:        clamped,
	}
}

func (a *Aggregator) advance(ts time.Time, assets []*domain.Asset) ([]*domain.Asset, []string) {
	var clamped []string
	for _, asset := range assets {
		next, floored := pricing.Clamp(a.sim.Next(asset.CurrentPrice))
		// Simulators may clamp on their own; landing on the floor counts too
		if floored || (next == pricing.Floor && asset.CurrentPrice != pricing.Floor) {
			clamped = append(clamped, asset.Symbol)
		}

		asset.CurrentPrice = next
		asset.History.Append(domain.PricePoint{
			Time:  ts,
			Price: next,
			Value: asset.CurrentValue(),
		})
	}
	return assets, clamped
}

// Stats summarises tick-to-tick returns over a portfolio history.
// The figures are illustrative only.
func Stats(history []domain.ValuePoint) domain.PortfolioStats {
	stats := domain.PortfolioStats{Samples: len(history)}
	if len(history) < 2 {
		return stats
	}

	returns := make([]float64, 0, len(history)-1)
	for i := 1; i < len(history); i++ {
		prev := history[i-1].Value
		if prev == 0 {
			continue
		}
		returns = append(returns, (history[i].Value-prev)/prev*100)
	}

	if len(returns) > 0 {
		stats.MeanReturnPct = stat.Mean(returns, nil)
	}
	if len(returns) > 1 {
		stats.VolatilityPct = stat.StdDev(returns, nil)
	}
	return stats
}
