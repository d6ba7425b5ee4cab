package domain

import (
	"fmt"
	"math"
)

// Asset represents one holding of a simulated portfolio.
// InitialPrice and InvestedAmount are fixed at creation; CurrentPrice is the
// only field the simulation mutates. Value figures are always derived from it.
type Asset struct {
	Symbol               string // Free-form, case preserved
	Market               Market
	AllocationPercentage float64 // (0, 100]
	CurrentPrice         float64

	// Illustrative display figures, not a pricing model
	RiskScore   int
	ReturnScore int

	History *HistoryBuffer[PricePoint]

	initialPrice   float64
	investedAmount float64
}

// NewAsset creates an asset priced at initialPrice with an empty history
func NewAsset(symbol string, market Market, percentage, initialPrice, investedAmount float64) (*Asset, error) {
	a := &Asset{
		Symbol:               symbol,
		Market:               market,
		AllocationPercentage: percentage,
		CurrentPrice:         initialPrice,
		History:              NewHistoryBuffer[PricePoint](),
		initialPrice:         initialPrice,
		investedAmount:       investedAmount,
	}
	if err := a.Validate(); err != nil {
		return nil, err
	}
	return a, nil
}

// Clone returns a deep copy, so simulating the copy leaves a alone
func (a *Asset) Clone() *Asset {
	out := *a
	if a.History != nil {
		out.History = a.History.Clone()
	} else {
		out.History = NewHistoryBuffer[PricePoint]()
	}
	return &out
}

// InitialPrice returns the price the asset was bought at
func (a *Asset) InitialPrice() float64 { return a.initialPrice }

// InvestedAmount returns totalInvestment × AllocationPercentage / 100
func (a *Asset) InvestedAmount() float64 { return a.investedAmount }

// CurrentValue is (CurrentPrice / InitialPrice) × InvestedAmount
func (a *Asset) CurrentValue() float64 {
	return (a.CurrentPrice / a.initialPrice) * a.investedAmount
}

// ChangeAbs is CurrentValue - InvestedAmount
func (a *Asset) ChangeAbs() float64 {
	return a.CurrentValue() - a.investedAmount
}

// ChangePct is ChangeAbs as a percentage of InvestedAmount
func (a *Asset) ChangePct() float64 {
	return a.ChangeAbs() / a.investedAmount * 100
}

// Validate ensures the asset adheres to domain rules
func (a *Asset) Validate() error {
	if a.Symbol == "" {
		return ErrInvalidSymbol
	}
	if a.Market != MarketTW && a.Market != MarketUS {
		return ErrInvalidMarket
	}
	if !(a.AllocationPercentage > 0 && a.AllocationPercentage <= 100) {
		return fmt.Errorf("%w: allocation percentage must be in (0, 100], got %v", ErrInvalidAllocation, a.AllocationPercentage)
	}
	if !positive(a.initialPrice) || !positive(a.CurrentPrice) {
		return ErrDegeneratePrice
	}
	if !positive(a.investedAmount) {
		return ErrInvalidInvestment
	}
	return nil
}

func positive(v float64) bool {
	return v > 0 && !math.IsInf(v, 1)
}
