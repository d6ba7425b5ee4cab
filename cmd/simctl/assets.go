package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/simaogato/portfoliosim-backend/internal/domain"
)

// parseAssets reads SYMBOL[:MARKET[:PERCENT]] items separated by commas
func parseAssets(s string) ([]domain.AssetRequest, error) {
	if strings.TrimSpace(s) == "" {
		return nil, fmt.Errorf("no assets given")
	}

	var assets []domain.AssetRequest
	for _, item := range strings.Split(s, ",") {
		parts := strings.Split(strings.TrimSpace(item), ":")
		if len(parts) > 3 {
			return nil, fmt.Errorf("malformed asset %q, want SYMBOL[:MARKET[:PERCENT]]", item)
		}

		asset := domain.AssetRequest{Symbol: parts[0]}
		if len(parts) > 1 {
			asset.Market = parts[1]
		}
		if len(parts) > 2 && parts[2] != "" {
			pct, err := strconv.ParseFloat(parts[2], 64)
			if err != nil {
				return nil, fmt.Errorf("malformed percentage in %q: %w", item, err)
			}
			asset.Percentage = &pct
		}
		assets = append(assets, asset)
	}
	return assets, nil
}
