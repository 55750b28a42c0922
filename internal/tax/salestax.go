package tax

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/ledgertools/api/internal/money"
)

// SalesTaxInput holds the inputs for the US/generic sales-tax calculation.
type SalesTaxInput struct {
	Items           []LineItem
	Discounts       []Discount
	ShippingCost    decimal.Decimal
	ShippingTaxable bool
	ShippingTaxRate decimal.Decimal
	SalesBeforeTax  bool
	DiscountTaxable bool
}

// SalesTaxResult holds the output of the US/generic sales-tax calculation.
// All monetary fields are rounded to 2 decimal places.
type SalesTaxResult struct {
	ItemTotal     decimal.Decimal
	DiscountTotal decimal.Decimal
	ShippingCost  decimal.Decimal
	ShippingTax   decimal.Decimal
	TotalTax      decimal.Decimal
	TotalAmount   decimal.Decimal
	Breakdown     []BreakdownEntry
}

// CalculateSalesTax computes per-item sales tax under the four-branch policy
// matrix.
//
// The one hard validation: taxable shipping with a positive cost and a zero
// rate fails with ErrShippingRateRequired. Everything else degrades silently —
// discounts pointing at no line item still count toward the discount total
// but are skipped during per-item proration, and items with a zero or
// negative rate contribute no tax and no breakdown entry.
func CalculateSalesTax(in SalesTaxInput) (*SalesTaxResult, error) {
	if in.ShippingCost.IsPositive() && in.ShippingTaxable && in.ShippingTaxRate.IsZero() {
		return nil, ErrShippingRateRequired
	}

	branch := policyFor(in.SalesBeforeTax, in.DiscountTaxable)

	itemTotal := decimal.Zero
	for _, item := range in.Items {
		itemTotal = itemTotal.Add(item.Price)
	}

	// Discount total unconditionally sums every discount, including those
	// with no matching item index; the policy decides where it is subtracted,
	// never whether it is counted.
	discountTotal := decimal.Zero
	byItem := make(map[int][]Discount)
	for _, d := range in.Discounts {
		discountTotal = discountTotal.Add(d.Amount)
		if d.ItemIndex >= 1 && d.ItemIndex <= len(in.Items) {
			byItem[d.ItemIndex] = append(byItem[d.ItemIndex], d)
		}
	}

	totalTax := decimal.Zero
	var breakdown []BreakdownEntry

	for i, item := range in.Items {
		idx := i + 1

		itemDiscount := decimal.Zero
		for _, d := range byItem[idx] {
			itemDiscount = itemDiscount.Add(d.Amount)
		}

		base := item.Price
		if branch == discountBeforeTaxTaxed || branch == discountBeforeTaxUntaxed {
			base = base.Sub(itemDiscount)
		}

		if item.TaxRate.IsPositive() {
			lineTax := money.Percent(base, item.TaxRate)
			totalTax = totalTax.Add(lineTax)
			breakdown = append(breakdown, BreakdownEntry{
				Item: fmt.Sprintf("Item %d", idx),
				Tax:  lineTax,
			})

			// When discounts are taxable, each per-item discount accrues tax
			// at the item's rate as its own breakdown line.
			if branch == discountAfterTaxTaxed || branch == discountBeforeTaxTaxed {
				for _, d := range byItem[idx] {
					if d.Taxable != nil && !*d.Taxable {
						continue
					}
					discountTax := money.Percent(d.Amount, item.TaxRate)
					totalTax = totalTax.Add(discountTax)
					breakdown = append(breakdown, BreakdownEntry{
						Item: fmt.Sprintf("Discount (Item %d)", idx),
						Tax:  discountTax,
					})
				}
			}
		}
	}

	// Branch 4 folds the discount into the item total before anything else;
	// the final total must not subtract it a second time.
	if branch == discountBeforeTaxUntaxed {
		itemTotal = itemTotal.Sub(discountTotal)
	}

	shippingTax := decimal.Zero
	if in.ShippingCost.IsPositive() && in.ShippingTaxable && in.ShippingTaxRate.IsPositive() {
		shippingTax = money.Percent(in.ShippingCost, in.ShippingTaxRate)
		totalTax = totalTax.Add(shippingTax)
		breakdown = append(breakdown, BreakdownEntry{Item: "Shipping", Tax: shippingTax})
	}

	totalAmount := itemTotal.Add(totalTax).Add(in.ShippingCost)
	if branch != discountBeforeTaxUntaxed {
		totalAmount = totalAmount.Sub(discountTotal)
	}

	if !in.DiscountTaxable {
		breakdown = stripDiscountEntries(breakdown)
	}

	result := &SalesTaxResult{
		ItemTotal:     money.Round2(itemTotal),
		DiscountTotal: money.Round2(discountTotal),
		ShippingCost:  money.Round2(in.ShippingCost),
		ShippingTax:   money.Round2(shippingTax),
		TotalTax:      money.Round2(totalTax),
		TotalAmount:   money.Round2(totalAmount),
		Breakdown:     roundBreakdown(breakdown),
	}
	return result, nil
}

// stripDiscountEntries removes discount lines from the breakdown when
// discounts are not taxable. The filter matches on the label so a future
// per-item path emitting differently shaped discount lines is covered too.
func stripDiscountEntries(entries []BreakdownEntry) []BreakdownEntry {
	filtered := entries[:0]
	for _, e := range entries {
		if strings.Contains(e.Item, "Discount") {
			continue
		}
		filtered = append(filtered, e)
	}
	return filtered
}

func roundBreakdown(entries []BreakdownEntry) []BreakdownEntry {
	for i := range entries {
		entries[i].Tax = money.Round2(entries[i].Tax)
	}
	return entries
}
