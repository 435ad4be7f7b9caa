package validation

import (
	"math"
	"regexp"
	"strings"

	"github.com/guttosm/voicetrade/internal/domain/dto"
	"github.com/guttosm/voicetrade/internal/domain/models"
	"github.com/shopspring/decimal"
)

// Violation messages, in the order they are reported.
const (
	MsgInvalidType         = "Invalid trade type"
	MsgInvalidInstrument   = "Invalid instrument"
	MsgInvalidSymbol       = "Invalid symbol"
	MsgInvalidQuantity     = "Invalid quantity"
	MsgInvalidPrice        = "Invalid price"
	MsgMissingCounterparty = "Missing counterparty"
	MsgMissingTrader       = "Missing trader name"
	MsgNotionalLimit       = "Trade amount exceeds $1M limit or is invalid"
)

// MaxSymbolLength is the longest accepted ticker symbol.
const MaxSymbolLength = 10

// NotionalLimit is the exclusive upper bound for both price and total notional.
var NotionalLimit = decimal.NewFromInt(1_000_000)

// Result is the outcome of validating a TradeForm.
//
// Fields:
//   - Valid: true iff Errors is empty.
//   - Errors: one message per violated rule, in rule order.
//   - Total: quantity x price when both parsed, nil otherwise.
//   - Ticket: typed, normalized values; set only when Valid.
type Result struct {
	Valid  bool
	Errors []string
	Total  *decimal.Decimal
	Ticket *models.TradeTicket
}

// Validate checks every field of form and the derived notional total.
//
// All rules are evaluated; a failing field never hides the others. The total
// check still runs when quantity or price failed their own rule, and is skipped
// only when one of them cannot be parsed at all.
func Validate(form dto.TradeForm) Result {
	var errs []string

	tradeType := models.TradeType(strings.TrimSpace(form.Type))
	if !tradeType.Valid() {
		errs = append(errs, MsgInvalidType)
	}

	instrument := models.Instrument(strings.TrimSpace(form.Instrument))
	if !instrument.Valid() {
		errs = append(errs, MsgInvalidInstrument)
	}

	symbol := strings.TrimSpace(form.Symbol)
	if n := len([]rune(symbol)); n < 1 || n > MaxSymbolLength {
		errs = append(errs, MsgInvalidSymbol)
	}

	qty, qtyParsed := parseDecimal(form.Quantity)
	if !qtyParsed || !ValidQuantity(qty) {
		errs = append(errs, MsgInvalidQuantity)
	}

	price, priceParsed := parseDecimal(form.Price)
	if !priceParsed || !ValidPrice(price) {
		errs = append(errs, MsgInvalidPrice)
	}

	counterparty := strings.TrimSpace(form.Counterparty)
	if counterparty == "" {
		errs = append(errs, MsgMissingCounterparty)
	}

	trader := strings.TrimSpace(form.Trader)
	if trader == "" {
		errs = append(errs, MsgMissingTrader)
	}

	var total *decimal.Decimal
	if qtyParsed && priceParsed {
		t := CalculateTotal(qty, price)
		total = &t
		if !ValidNotional(t) {
			errs = append(errs, MsgNotionalLimit)
		}
	}

	res := Result{Valid: len(errs) == 0, Errors: errs, Total: total}
	if res.Valid {
		res.Ticket = &models.TradeTicket{
			Type:         tradeType,
			Instrument:   instrument,
			Symbol:       strings.ToUpper(symbol),
			Quantity:     qty.IntPart(),
			Price:        price,
			Total:        *total,
			Counterparty: counterparty,
			Trader:       trader,
			Notes:        strings.TrimSpace(form.Notes),
		}
	}
	return res
}

var maxQuantity = decimal.NewFromInt(math.MaxInt64)

// ValidQuantity reports whether q is a positive whole number that fits in an int64.
func ValidQuantity(q decimal.Decimal) bool {
	return q.IsInteger() && q.IsPositive() && q.LessThanOrEqual(maxQuantity)
}

// ValidPrice reports whether p lies in (0, NotionalLimit).
func ValidPrice(p decimal.Decimal) bool {
	return p.IsPositive() && p.LessThan(NotionalLimit)
}

// ValidNotional reports whether total lies in (0, NotionalLimit).
// A total of exactly one million is rejected.
func ValidNotional(total decimal.Decimal) bool {
	return total.IsPositive() && total.LessThan(NotionalLimit)
}

// CalculateTotal returns the notional quantity x price.
func CalculateTotal(qty, price decimal.Decimal) decimal.Decimal {
	return qty.Mul(price)
}

// plainNumber matches signed decimal notation without an exponent.
var plainNumber = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)$`)

// parseDecimal parses a trimmed numeric string in plain decimal notation.
// Empty input and exponent forms such as "1e5" are unparseable.
func parseDecimal(s string) (decimal.Decimal, bool) {
	s = strings.TrimSpace(s)
	if !plainNumber.MatchString(s) {
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}
