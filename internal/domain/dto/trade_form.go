package dto

// TradeForm carries the raw, untyped field values of a capture request,
// as a command line, a desk prompt or a ticket file produced them.
//
// Numbers stay strings here; coercion and every rule check belong to the
// validation package.
type TradeForm struct {
	Type         string `json:"type" example:"BUY"`
	Instrument   string `json:"instrument" example:"EQUITY"`
	Symbol       string `json:"symbol" example:"aapl"`
	Quantity     string `json:"quantity" example:"100"`
	Price        string `json:"price" example:"150.50"`
	Counterparty string `json:"counterparty" example:"Goldman Sachs"`
	Trader       string `json:"trader" example:"John Smith"`
	Notes        string `json:"notes,omitempty" example:"Voice trade from morning call"`
}
