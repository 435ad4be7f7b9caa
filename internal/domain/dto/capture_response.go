package dto

import "github.com/guttosm/voicetrade/internal/domain/models"

// CaptureResponse is printed after a successful capture.
// Warning is set when the trade was kept in memory but could not be persisted.
type CaptureResponse struct {
	Trade   models.Trade `json:"trade"`
	Warning string       `json:"warning,omitempty"`
}

// StatsResponse mirrors the summary counters shown next to the trade blotter.
type StatsResponse struct {
	TotalTrades int    `json:"total_trades" example:"2"`
	Pending     int    `json:"pending" example:"1"`
	Confirmed   int    `json:"confirmed" example:"1"`
	TotalVolume string `json:"total_volume" example:"25000.00"`
	AverageSize string `json:"average_size" example:"12500.00"`
}

// NewStatsResponse formats Stats with two decimal places.
func NewStatsResponse(st models.Stats) StatsResponse {
	return StatsResponse{
		TotalTrades: st.Count,
		Pending:     st.Pending,
		Confirmed:   st.Confirmed,
		TotalVolume: st.TotalVolume.StringFixed(2),
		AverageSize: st.AverageSize.StringFixed(2),
	}
}
