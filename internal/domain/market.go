package domain

import (
	"fmt"
	"strings"
)

// Market identifies the exchange an asset is listed on
type Market string

const (
	MarketTW Market = "TW"
	MarketUS Market = "US"
)

// ParseMarket converts a user supplied market code into a Market.
// An empty code defaults to TW, matching the allocation form default.
func ParseMarket(code string) (Market, error) {
	switch strings.ToUpper(strings.TrimSpace(code)) {
	case "", string(MarketTW):
		return MarketTW, nil
	case string(MarketUS):
		return MarketUS, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidMarket, code)
	}
}
