package domain

// SessionSnapshot is the read-only view handed to rendering collaborators.
// It shares no memory with the live session.
type SessionSnapshot struct {
	SessionID      string           `json:"sessionId"`
	Status         SimulationStatus `json:"status"`
	ElapsedTicks   int              `json:"elapsedTicks"`
	ElapsedSeconds float64          `json:"elapsedSeconds"`
	Portfolio      PortfolioView    `json:"portfolio"`
	Assets         []AssetView      `json:"assets"`
}

// PortfolioView is the aggregate part of a snapshot
type PortfolioView struct {
	InitialValue float64        `json:"initialValue"`
	CurrentValue float64        `json:"currentValue"`
	ChangeAbs    float64        `json:"changeAbs"`
	ChangePct    float64        `json:"changePct"`
	Stats        PortfolioStats `json:"stats"`
	History      []ValuePoint   `json:"history"`
}

// AssetView is the per-asset part of a snapshot
type AssetView struct {
	Symbol               string       `json:"symbol"`
	Market               Market       `json:"market"`
	AllocationPercentage float64      `json:"allocationPercentage"`
	InitialPrice         float64      `json:"initialPrice"`
	CurrentPrice         float64      `json:"currentPrice"`
	InvestedAmount       float64      `json:"investedAmount"`
	CurrentValue         float64      `json:"currentValue"`
	ChangeAbs            float64      `json:"changeAbs"`
	ChangePct            float64      `json:"changePct"`
	RiskScore            int          `json:"riskScore"`
	ReturnScore          int          `json:"returnScore"`
	History              []PricePoint `json:"history"`
}

// PortfolioStats are illustrative figures over the retained history
type PortfolioStats struct {
	Samples       int     `json:"samples"`
	MeanReturnPct float64 `json:"meanReturnPct"`
	VolatilityPct float64 `json:"volatilityPct"`
}

// NewPortfolioView copies the current state of p
func NewPortfolioView(p *Portfolio, stats PortfolioStats) PortfolioView {
	return PortfolioView{
		InitialValue: p.InitialValue(),
		CurrentValue: p.CurrentValue,
		ChangeAbs:    p.ChangeAbs(),
		ChangePct:    p.ChangePct(),
		Stats:        stats,
		History:      p.History.Snapshot(),
	}
}

// NewAssetView copies the current state of a
func NewAssetView(a *Asset) AssetView {
	return AssetView{
		Symbol:               a.Symbol,
		Market:               a.Market,
		AllocationPercentage: a.AllocationPercentage,
		InitialPrice:         a.InitialPrice(),
		CurrentPrice:         a.CurrentPrice,
		InvestedAmount:       a.InvestedAmount(),
		CurrentValue:         a.CurrentValue(),
		ChangeAbs:            a.ChangeAbs(),
		ChangePct:            a.ChangePct(),
		RiskScore:            a.RiskScore,
		ReturnScore:          a.ReturnScore,
		History:              a.History.Snapshot(),
	}
}
