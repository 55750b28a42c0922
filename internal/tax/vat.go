package tax

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/ledgertools/api/internal/money"
)

// VATInput holds the inputs for the VAT calculation. Unlike the generic
// calculator, VAT operates on aggregate sums: item tax rates and discount
// item indexes are ignored, and a single rate applies to everything.
type VATInput struct {
	VATRate         decimal.Decimal
	Items           []LineItem
	Discounts       []Discount
	ShippingCost    decimal.Decimal
	ShippingTaxable bool
	SalesBeforeTax  bool
	DiscountTaxable bool
}

// VATResult holds the net/VAT/gross breakdown of the VAT calculation. All
// monetary fields are rounded to 2 decimal places.
type VATResult struct {
	ItemTotal      decimal.Decimal
	DiscountTotal  decimal.Decimal
	ShippingCost   decimal.Decimal
	NetAmount      decimal.Decimal
	VATAmount      decimal.Decimal
	GrossAmount    decimal.Decimal
	VATRateApplied decimal.Decimal
	Breakdown      []VATBreakdownEntry
}

// ParseVATRate strictly parses a caller-supplied VAT rate. Unlike every other
// numeric input, an unparsable or out-of-range rate is a hard failure: the
// rate is the single required global parameter of the VAT calculation and
// silently zeroing it would miscalculate every line.
func ParseVATRate(v any) (decimal.Decimal, error) {
	rate := money.FromAny(v, decimal.NewFromInt(-1))
	if rate.IsNegative() || rate.GreaterThan(oneHundred) {
		return decimal.Zero, fmt.Errorf("%w: got %v", ErrVATRateInvalid, v)
	}
	return rate, nil
}

// CalculateVAT computes VAT over aggregate item and discount totals under the
// same four-condition policy matrix as the generic calculator.
//
// The net amount is uniform across all four branches:
// item_total - discount_total + shipping_cost. This is intentionally simpler
// than the generic calculator's fourth branch; see DESIGN.md for the recorded
// asymmetry.
func CalculateVAT(in VATInput) (*VATResult, error) {
	if in.VATRate.IsNegative() || in.VATRate.GreaterThan(oneHundred) {
		return nil, fmt.Errorf("%w: got %s", ErrVATRateInvalid, in.VATRate)
	}

	itemTotal := decimal.Zero
	for _, item := range in.Items {
		itemTotal = itemTotal.Add(item.Price)
	}
	discountTotal := decimal.Zero
	for _, d := range in.Discounts {
		discountTotal = discountTotal.Add(d.Amount)
	}

	// Sales-before-tax shrinks the taxable base by the discount; otherwise
	// VAT is charged on the full item total.
	taxableItems := itemTotal
	if in.SalesBeforeTax {
		taxableItems = itemTotal.Sub(discountTotal)
	}

	vatTotal := decimal.Zero
	var breakdown []VATBreakdownEntry

	if in.VATRate.IsPositive() {
		if taxableItems.IsPositive() {
			v := money.Percent(taxableItems, in.VATRate)
			vatTotal = vatTotal.Add(v)
			breakdown = append(breakdown, VATBreakdownEntry{
				Item:      "Items",
				NetAmount: taxableItems,
				VAT:       v,
			})
		}

		// Taxable discounts accrue VAT as their own line, on top of whatever
		// the item base produced.
		if in.DiscountTaxable && discountTotal.IsPositive() {
			v := money.Percent(discountTotal, in.VATRate)
			vatTotal = vatTotal.Add(v)
			breakdown = append(breakdown, VATBreakdownEntry{
				Item:      "Discounts",
				NetAmount: discountTotal,
				VAT:       v,
			})
		}

		if in.ShippingCost.IsPositive() && in.ShippingTaxable {
			v := money.Percent(in.ShippingCost, in.VATRate)
			vatTotal = vatTotal.Add(v)
			breakdown = append(breakdown, VATBreakdownEntry{
				Item:      "Shipping",
				NetAmount: in.ShippingCost,
				VAT:       v,
			})
		}
	}

	netAmount := itemTotal.Sub(discountTotal).Add(in.ShippingCost)
	grossAmount := netAmount.Add(vatTotal)

	result := &VATResult{
		ItemTotal:      money.Round2(itemTotal),
		DiscountTotal:  money.Round2(discountTotal),
		ShippingCost:   money.Round2(in.ShippingCost),
		NetAmount:      money.Round2(netAmount),
		VATAmount:      money.Round2(vatTotal),
		GrossAmount:    money.Round2(grossAmount),
		VATRateApplied: in.VATRate,
		Breakdown:      roundVATBreakdown(breakdown),
	}
	return result, nil
}

func roundVATBreakdown(entries []VATBreakdownEntry) []VATBreakdownEntry {
	for i := range entries {
		entries[i].NetAmount = money.Round2(entries[i].NetAmount)
		entries[i].VAT = money.Round2(entries[i].VAT)
	}
	return entries
}
