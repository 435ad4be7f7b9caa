package models

import "github.com/shopspring/decimal"

// Stats summarizes the trades held by a store.
//
// Fields:
//   - Count: number of captured trades, regardless of status.
//   - Pending / Confirmed: breakdown of Count by status.
//   - TotalVolume: sum of every trade's Total.
//   - AverageSize: TotalVolume / Count, or zero for an empty store.
type Stats struct {
	Count       int             `json:"count" example:"2"`
	Pending     int             `json:"pending" example:"1"`
	Confirmed   int             `json:"confirmed" example:"1"`
	TotalVolume decimal.Decimal `json:"totalVolume" example:"25000"`
	AverageSize decimal.Decimal `json:"averageSize" example:"12500"`
}

// ComputeStats aggregates trades into Stats.
func ComputeStats(trades []Trade) Stats {
	st := Stats{TotalVolume: decimal.Zero, AverageSize: decimal.Zero}
	for _, t := range trades {
		st.Count++
		if t.Pending() {
			st.Pending++
		} else {
			st.Confirmed++
		}
		st.TotalVolume = st.TotalVolume.Add(t.Total)
	}
	if st.Count > 0 {
		st.AverageSize = st.TotalVolume.Div(decimal.NewFromInt(int64(st.Count)))
	}
	return st
}
