package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// TradeType is the side of a voice trade.
type TradeType string

const (
	Buy  TradeType = "BUY"
	Sell TradeType = "SELL"
)

// Valid reports whether t is one of the accepted sides.
func (t TradeType) Valid() bool {
	return t == Buy || t == Sell
}

// Instrument is the asset class a trade was negotiated in.
type Instrument string

const (
	Equity    Instrument = "EQUITY"
	Bond      Instrument = "BOND"
	FX        Instrument = "FX"
	Commodity Instrument = "COMMODITY"
)

// Valid reports whether i is one of the supported asset classes.
func (i Instrument) Valid() bool {
	switch i {
	case Equity, Bond, FX, Commodity:
		return true
	}
	return false
}

// Status is the lifecycle state of a captured trade.
// The only transition is StatusPending -> StatusConfirmed.
type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
)

// TradeTicket holds the strongly typed, normalized values of a validated
// capture request. It is produced by the validation package only.
type TradeTicket struct {
	Type         TradeType
	Instrument   Instrument
	Symbol       string
	Quantity     int64
	Price        decimal.Decimal
	Total        decimal.Decimal
	Counterparty string
	Trader       string
	Notes        string
}

// Trade is a captured voice trade.
//
// Fields:
//   - ID: "VT<n>", assigned by the store from a monotonic counter.
//   - Total: Quantity x Price, computed once at capture time.
//   - Status: pending at creation, confirmed once the confirmation delay elapses.
//   - VoiceTrade: provenance flag, always true for manually captured trades.
//
// The JSON shape is the persisted record format.
type Trade struct {
	ID           string          `json:"id" example:"VT1000"`
	Timestamp    time.Time       `json:"timestamp"`
	Type         TradeType       `json:"type" example:"BUY"`
	Instrument   Instrument      `json:"instrument" example:"EQUITY"`
	Symbol       string          `json:"symbol" example:"AAPL"`
	Quantity     int64           `json:"quantity" example:"100"`
	Price        decimal.Decimal `json:"price" example:"150.50"`
	Total        decimal.Decimal `json:"total" example:"15050"`
	Counterparty string          `json:"counterparty" example:"Goldman Sachs"`
	Trader       string          `json:"trader" example:"John Smith"`
	Notes        string          `json:"notes,omitempty"`
	Status       Status          `json:"status" example:"pending"`
	VoiceTrade   bool            `json:"voiceTrade"`
}

// NewTrade builds a pending trade from a validated ticket.
func NewTrade(id string, ticket TradeTicket, at time.Time) Trade {
	return Trade{
		ID:           id,
		Timestamp:    at,
		Type:         ticket.Type,
		Instrument:   ticket.Instrument,
		Symbol:       ticket.Symbol,
		Quantity:     ticket.Quantity,
		Price:        ticket.Price,
		Total:        ticket.Total,
		Counterparty: ticket.Counterparty,
		Trader:       ticket.Trader,
		Notes:        ticket.Notes,
		Status:       StatusPending,
		VoiceTrade:   true,
	}
}

// Pending reports whether the trade still awaits confirmation.
func (t Trade) Pending() bool {
	return t.Status == StatusPending
}
