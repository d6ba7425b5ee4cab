package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/Rhymond/go-money"

	"github.com/simaogato/portfoliosim-backend/internal/domain"
)

// twd formats an amount for display. Values stay float64 in the engine.
func twd(v float64) string {
	return money.NewFromFloat(v, money.TWD).Display()
}

func renderSnapshot(w io.Writer, snap domain.SessionSnapshot) {
	p := snap.Portfolio
	fmt.Fprintf(w, "session %s  %s  tick %d (%.0fs)\n", snap.SessionID, snap.Status, snap.ElapsedTicks, snap.ElapsedSeconds)
	if len(snap.Assets) == 0 {
		return
	}
	fmt.Fprintf(w, "portfolio %s -> %s  %s (%+.2f%%)\n", twd(p.InitialValue), twd(p.CurrentValue), signed(p.ChangeAbs), p.ChangePct)
	if p.Stats.Samples > 1 {
		fmt.Fprintf(w, "mean tick return %+.3f%%  volatility %.3f%%  over %d samples\n",
			p.Stats.MeanReturnPct, p.Stats.VolatilityPct, p.Stats.Samples)
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "SYMBOL\tMARKET\tALLOC\tPRICE\tVALUE\tCHANGE\tRISK\tRETURN\t")
	for _, a := range snap.Assets {
		fmt.Fprintf(tw, "%s\t%s\t%.2f%%\t%.2f\t%s\t%+.2f%%\t%d\t%d\t\n",
			a.Symbol, a.Market, a.AllocationPercentage, a.CurrentPrice, twd(a.CurrentValue), a.ChangePct, a.RiskScore, a.ReturnScore)
	}
	_ = tw.Flush()
}

func signed(v float64) string {
	if v < 0 {
		return "-" + twd(-v)
	}
	return "+" + twd(v)
}
