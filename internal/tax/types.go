// Package tax implements the three sibling calculators behind the tax
// calculation tool: the US/generic itemized sales-tax calculator, the Canada
// calculator layered on top of it, and the aggregate-style VAT calculator.
//
// All three are pure functions of their input structs: no I/O, no shared
// state, safe to call concurrently. Monetary values are exact decimals
// throughout and are rounded to 2 places (half-up) only when a result is
// finalized.
package tax

import (
	"errors"

	"github.com/shopspring/decimal"
)

var oneHundred = decimal.NewFromInt(100)

// Validation failures. Every other malformed input degrades to zero at the
// conversion boundary instead of failing the calculation.
var (
	// ErrShippingRateRequired is returned when shipping is marked taxable
	// with a positive cost but no tax rate.
	ErrShippingRateRequired = errors.New("shipping is marked as taxable but no tax rate provided")

	// ErrVATRateInvalid is returned when the VAT rate is unparsable or
	// outside [0, 100].
	ErrVATRateInvalid = errors.New("vat rate must be a number between 0 and 100")

	// ErrUnknownProvince is returned by the Canada calculator for a province
	// code missing from the tax-structure table.
	ErrUnknownProvince = errors.New("unknown province code")
)

// LineItem is one purchased item. TaxRate is a percentage and is consulted by
// the generic calculator only; the Canada and VAT calculators apply a uniform
// rate instead.
type LineItem struct {
	Price   decimal.Decimal
	TaxRate decimal.Decimal
}

// Discount is a single discount amount. ItemIndex, when >= 1, ties the
// discount to a line item (1-based) for per-item proration in the generic
// calculator; zero means an aggregate discount. Taxable is the legacy
// per-discount override used by the per-item path: nil follows the global
// discount-taxability flag, an explicit false excludes the discount from
// discount-tax lines.
type Discount struct {
	Amount    decimal.Decimal
	ItemIndex int
	Taxable   *bool
}

// BreakdownEntry is one line of the itemized tax disclosure. Entries are
// emitted in computation order — items with their discount lines interleaved,
// shipping last — and that order is part of the contract: consumers display
// it verbatim.
type BreakdownEntry struct {
	Item string
	Tax  decimal.Decimal
}

// VATBreakdownEntry is one line of the VAT disclosure, carrying the net base
// alongside the VAT charged on it.
type VATBreakdownEntry struct {
	Item      string
	NetAmount decimal.Decimal
	VAT       decimal.Decimal
}

// policy identifies one of the four mutually exclusive computation branches
// selected by the (is_sales_before_tax, discount_is_taxable) pair. The cross
// product of those two flags is the entire business-rule surface of the
// discount/tax interaction.
type policy int

const (
	// discountAfterTaxTaxed: tax on the full item price, plus tax on each
	// per-item discount as if it were an additional taxable event.
	discountAfterTaxTaxed policy = iota + 1
	// discountBeforeTaxTaxed: tax on the discounted base, plus tax on the
	// discount itself — the net effect taxes the full price regardless of
	// the reduction.
	discountBeforeTaxTaxed
	// discountAfterTaxUntaxed: tax on the full item price; discounts only
	// reduce the final total and never appear in the breakdown.
	discountAfterTaxUntaxed
	// discountBeforeTaxUntaxed: the discount is folded into the item total
	// up front; tax on the discounted base; no separate discount lines.
	discountBeforeTaxUntaxed
)

func policyFor(salesBeforeTax, discountTaxable bool) policy {
	switch {
	case !salesBeforeTax && discountTaxable:
		return discountAfterTaxTaxed
	case salesBeforeTax && discountTaxable:
		return discountBeforeTaxTaxed
	case !salesBeforeTax && !discountTaxable:
		return discountAfterTaxUntaxed
	default:
		return discountBeforeTaxUntaxed
	}
}
