// Package money provides the decimal conversion and rounding conventions
// shared by all tax calculators. Monetary arithmetic never passes through
// binary floating point: values are parsed straight into decimals and stay
// decimals until they are rounded for output.
package money

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// FromAny converts arbitrary caller input into a decimal, falling back to def
// when the value is nil, empty, or unparsable. This is the single
// error-absorbing boundary of the engine: it never fails, so everything
// downstream can assume a valid decimal.
func FromAny(v any, def decimal.Decimal) decimal.Decimal {
	switch val := v.(type) {
	case nil:
		return def
	case decimal.Decimal:
		return val
	case *decimal.Decimal:
		if val == nil {
			return def
		}
		return *val
	case string:
		return fromString(val, def)
	case []byte:
		return fromString(string(val), def)
	case json.Number:
		return fromString(val.String(), def)
	case float64:
		return decimal.NewFromFloat(val)
	case float32:
		return decimal.NewFromFloat32(val)
	case int:
		return decimal.NewFromInt(int64(val))
	case int32:
		return decimal.NewFromInt(int64(val))
	case int64:
		return decimal.NewFromInt(val)
	case uint:
		return decimal.NewFromUint64(uint64(val))
	case uint64:
		return decimal.NewFromUint64(val)
	default:
		return fromString(fmt.Sprint(v), def)
	}
}

func fromString(s string, def decimal.Decimal) decimal.Decimal {
	s = strings.TrimSpace(s)
	if s == "" {
		return def
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return def
	}
	return d
}

// Percent returns amount * rate / 100 exactly, with no intermediate rounding.
func Percent(amount, rate decimal.Decimal) decimal.Decimal {
	return amount.Mul(rate).Div(hundred)
}

// Round2 rounds a monetary value to 2 decimal places. shopspring's Round
// rounds ties away from zero, which for the non-negative amounts handled here
// is round-half-up: .005 becomes .01, never .00.
func Round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// Amount is a lenient JSON wrapper around decimal.Decimal for request and
// response bodies. Decoding accepts numbers, quoted numeric strings, and
// null; anything unparsable decodes to zero rather than failing the request.
// It marshals as an unquoted JSON number with exactly two decimal places,
// so 169 goes out as 169.00 and 18.6 as 18.60.
type Amount struct {
	decimal.Decimal
}

// NewAmount wraps a decimal for JSON output.
func NewAmount(d decimal.Decimal) Amount {
	return Amount{Decimal: d}
}

// UnmarshalJSON implements json.Unmarshaler with garbage-to-zero semantics.
func (a *Amount) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	if s == "" || s == "null" {
		a.Decimal = decimal.Zero
		return nil
	}
	s = strings.TrimSpace(strings.Trim(s, `"`))
	a.Decimal = fromString(s, decimal.Zero)
	return nil
}

// MarshalJSON implements json.Marshaler, emitting an unquoted number fixed to
// two decimal places.
func (a Amount) MarshalJSON() ([]byte, error) {
	return []byte(a.Decimal.StringFixed(2)), nil
}

// Rate is the output counterpart of Amount for percentage rates. Rates are
// not monetary amounts and must keep their full precision: a 9.975 QST rate
// would be corrupted by two-place formatting.
type Rate struct {
	decimal.Decimal
}

// NewRate wraps a decimal rate for JSON output.
func NewRate(d decimal.Decimal) Rate {
	return Rate{Decimal: d}
}

// UnmarshalJSON implements json.Unmarshaler with the same leniency as Amount.
func (r *Rate) UnmarshalJSON(data []byte) error {
	var a Amount
	if err := a.UnmarshalJSON(data); err != nil {
		return err
	}
	r.Decimal = a.Decimal
	return nil
}

// MarshalJSON implements json.Marshaler, emitting an unquoted number at the
// rate's own precision.
func (r Rate) MarshalJSON() ([]byte, error) {
	return []byte(r.Decimal.String()), nil
}
