package domain

import "fmt"

// Portfolio is the aggregate of all assets of one simulation session.
// InitialValue never changes after creation. CurrentValue is written only by
// the aggregator, always as the sum over the assets of the same tick.
type Portfolio struct {
	Assets       []*Asset // Ordered as requested
	CurrentValue float64
	History      *HistoryBuffer[ValuePoint]

	initialValue float64
	bySymbol     map[string]*Asset
}

// NewPortfolio creates a portfolio from a validated asset set
func NewPortfolio(assets []*Asset, initialValue float64) (*Portfolio, error) {
	if len(assets) == 0 {
		return nil, ErrEmptyPortfolio
	}
	if !positive(initialValue) {
		return nil, ErrInvalidInvestment
	}

	bySymbol := make(map[string]*Asset, len(assets))
	for _, asset := range assets {
		if _, exists := bySymbol[asset.Symbol]; exists {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateSymbol, asset.Symbol)
		}
		bySymbol[asset.Symbol] = asset
	}

	return &Portfolio{
		Assets:       assets,
		CurrentValue: SumValues(assets),
		History:      NewHistoryBuffer[ValuePoint](),
		initialValue: initialValue,
		bySymbol:     bySymbol,
	}, nil
}

// InitialValue returns the total investment the portfolio was created with
func (p *Portfolio) InitialValue() float64 { return p.initialValue }

// Asset looks up a holding by symbol
func (p *Portfolio) Asset(symbol string) (*Asset, bool) {
	a, ok := p.bySymbol[symbol]
	return a, ok
}

// ChangeAbs is CurrentValue - InitialValue
func (p *Portfolio) ChangeAbs() float64 {
	return p.CurrentValue - p.initialValue
}

// ChangePct is ChangeAbs as a percentage of InitialValue
func (p *Portfolio) ChangePct() float64 {
	return p.ChangeAbs() / p.initialValue * 100
}

// SumValues adds up the current value of the given assets
func SumValues(assets []*Asset) float64 {
	total := 0.0
	for _, a := range assets {
		total += a.CurrentValue()
	}
	return total
}
