package domain

import (
	"fmt"
	"strings"
)

// MaxTotalInvestment caps the amount a single allocation may split. Beyond
// it decimal rounding and float conversion stop producing meaningful values.
const MaxTotalInvestment = 1e15

// AllocationRequest is what the allocation form hands to the engine
type AllocationRequest struct {
	Assets          []AssetRequest `json:"assets"`
	TotalInvestment float64        `json:"totalInvestment"`
	RiskPreference  float64        `json:"riskPreference"`
}

// AssetRequest is one requested holding. Percentage is optional; either every
// asset carries one or none does.
type AssetRequest struct {
	Symbol     string   `json:"symbol"`
	Market     string   `json:"market,omitempty"`
	Percentage *float64 `json:"percentage,omitempty"`
}

// HasPercentages reports whether every asset supplies a custom percentage
func (r *AllocationRequest) HasPercentages() bool {
	for _, a := range r.Assets {
		if a.Percentage == nil {
			return false
		}
	}
	return len(r.Assets) > 0
}

// Validate rejects malformed requests at the allocation boundary.
// The percentage sum itself is checked by the allocator.
func (r *AllocationRequest) Validate() error {
	if len(r.Assets) == 0 {
		return ErrEmptyPortfolio
	}

	if !(r.TotalInvestment > 0 && r.TotalInvestment <= MaxTotalInvestment) {
		return ErrInvalidInvestment
	}

	if !(r.RiskPreference >= 0 && r.RiskPreference <= 100) {
		return ErrInvalidRiskPreference
	}

	seen := make(map[string]struct{}, len(r.Assets))
	withPercentage := 0
	for _, a := range r.Assets {
		symbol := strings.TrimSpace(a.Symbol)
		if symbol == "" {
			return ErrInvalidSymbol
		}
		if _, dup := seen[symbol]; dup {
			return fmt.Errorf("%w: %s", ErrDuplicateSymbol, symbol)
		}
		seen[symbol] = struct{}{}

		if _, err := ParseMarket(a.Market); err != nil {
			return err
		}

		if a.Percentage != nil {
			withPercentage++
			p := *a.Percentage
			if !(p > 0 && p <= 100) {
				return fmt.Errorf("%w: percentage for %s must be in (0, 100], got %v", ErrInvalidAllocation, symbol, p)
			}
		}
	}

	if withPercentage != 0 && withPercentage != len(r.Assets) {
		return fmt.Errorf("%w: percentages must be given for every asset or none", ErrInvalidAllocation)
	}

	return nil
}
