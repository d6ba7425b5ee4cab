package grpc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/simaogato/portfoliosim-backend/internal/domain"
)

func TestFromStruct(t *testing.T) {
	tests := []struct {
		name    string
		fields  map[string]interface{}
		wantErr bool
	}{
		{
			name: "known fields",
			fields: map[string]interface{}{
				"assets":          []interface{}{map[string]interface{}{"symbol": "AAPL", "market": "US", "percentage": 100.0}},
				"totalInvestment": 1000.0,
				"riskPreference":  50.0,
			},
		},
		{
			name:    "misspelled top level field",
			fields:  map[string]interface{}{"assets": []interface{}{}, "riskPreferance": 50.0},
			wantErr: true,
		},
		{
			name:    "misspelled nested field",
			fields:  map[string]interface{}{"assets": []interface{}{map[string]interface{}{"sym": "AAPL"}}},
			wantErr: true,
		},
		{
			name:    "wrong type",
			fields:  map[string]interface{}{"totalInvestment": "lots"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in, err := structpb.NewStruct(tt.fields)
			require.NoError(t, err)

			var req domain.AllocationRequest
			err = fromStruct(in, &req)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Len(t, req.Assets, 1)
			assert.Equal(t, "AAPL", req.Assets[0].Symbol)
			assert.Equal(t, 1000.0, req.TotalInvestment)
		})
	}
}

func TestStructRoundTripsSnapshot(t *testing.T) {
	snap := domain.SessionSnapshot{
		SessionID:    "abc",
		Status:       domain.StatusRunning,
		ElapsedTicks: 3,
		Assets:       []domain.AssetView{{Symbol: "AAPL", Market: domain.MarketUS, RiskScore: 4}},
		Portfolio:    domain.PortfolioView{InitialValue: 1000, History: []domain.ValuePoint{}},
	}

	out, err := toStruct(snap)
	require.NoError(t, err)

	var got domain.SessionSnapshot
	require.NoError(t, fromStruct(out, &got), "every snapshot field must decode strictly")
	assert.Equal(t, snap.SessionID, got.SessionID)
	assert.Equal(t, 3, got.ElapsedTicks)
	assert.Equal(t, 4, got.Assets[0].RiskScore)
}
