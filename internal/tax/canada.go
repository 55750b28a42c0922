package tax

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/ledgertools/api/internal/money"
)

// Canadian tax structures. Which structure a province uses is fixed by the
// lookup table below; the rate values themselves are caller-supplied, since
// they change over time and vary by context.
const (
	TaxStructureHST    = "HST"
	TaxStructureGSTPST = "GST+PST"
	TaxStructureGSTQST = "GST+QST"
	TaxStructureGST    = "GST"
)

var provinceTaxStructures = map[string]string{
	// HST provinces
	"ON": TaxStructureHST,
	"NB": TaxStructureHST,
	"NL": TaxStructureHST,
	"NS": TaxStructureHST,
	"PE": TaxStructureHST,
	// GST + QST
	"QC": TaxStructureGSTQST,
	// GST + PST
	"BC": TaxStructureGSTPST,
	"SK": TaxStructureGSTPST,
	"MB": TaxStructureGSTPST,
	// GST only
	"AB": TaxStructureGST,
	"NT": TaxStructureGST,
	"NU": TaxStructureGST,
	"YT": TaxStructureGST,
}

// CanadaTaxInput holds the inputs for the Canada calculation. ProvincialRate
// is the PST or QST rate depending on the province's structure; HSTRate is
// consulted only for HST provinces. Item tax rates are ignored — the combined
// effective rate is applied uniformly.
type CanadaTaxInput struct {
	Province        string
	GSTRate         decimal.Decimal
	ProvincialRate  decimal.Decimal
	HSTRate         decimal.Decimal
	Items           []LineItem
	Discounts       []Discount
	ShippingCost    decimal.Decimal
	ShippingTaxable bool
	SalesBeforeTax  bool
	DiscountTaxable bool
}

// TaxComponent is one tax type's share of the combined Canadian tax.
type TaxComponent struct {
	Type   string
	Rate   decimal.Decimal
	Amount decimal.Decimal
}

// CanadaTaxResult is the generic result plus the rate composition that
// produced it.
type CanadaTaxResult struct {
	SalesTaxResult

	Province      string
	TaxStructure  string
	EffectiveRate decimal.Decimal
	Components    []TaxComponent
}

// CalculateCanadaTax combines the province's tax components into a single
// effective rate, applies it uniformly to every item and to shipping, and
// delegates to the generic calculator unchanged. The Canada-specific work is
// entirely rate composition, not computation branching.
func CalculateCanadaTax(in CanadaTaxInput) (*CanadaTaxResult, error) {
	province := strings.ToUpper(strings.TrimSpace(in.Province))
	structure, ok := provinceTaxStructures[province]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownProvince, in.Province)
	}

	// Zero or negative component rates contribute nothing and are dropped
	// from the composition, mirroring the zero-rate skip on breakdown lines.
	var components []TaxComponent
	addComponent := func(taxType string, rate decimal.Decimal) {
		if rate.IsPositive() {
			components = append(components, TaxComponent{Type: taxType, Rate: rate})
		}
	}
	switch structure {
	case TaxStructureHST:
		addComponent("HST", in.HSTRate)
	case TaxStructureGSTPST:
		addComponent("GST", in.GSTRate)
		addComponent("PST", in.ProvincialRate)
	case TaxStructureGSTQST:
		addComponent("GST", in.GSTRate)
		addComponent("QST", in.ProvincialRate)
	case TaxStructureGST:
		addComponent("GST", in.GSTRate)
	}

	effectiveRate := decimal.Zero
	for _, c := range components {
		effectiveRate = effectiveRate.Add(c.Rate)
	}

	items := make([]LineItem, len(in.Items))
	for i, item := range in.Items {
		items[i] = LineItem{Price: item.Price, TaxRate: effectiveRate}
	}

	generic, err := CalculateSalesTax(SalesTaxInput{
		Items:           items,
		Discounts:       in.Discounts,
		ShippingCost:    in.ShippingCost,
		ShippingTaxable: in.ShippingTaxable,
		ShippingTaxRate: effectiveRate,
		SalesBeforeTax:  in.SalesBeforeTax,
		DiscountTaxable: in.DiscountTaxable,
	})
	if err != nil {
		return nil, err
	}

	result := &CanadaTaxResult{
		SalesTaxResult: *generic,
		Province:       province,
		TaxStructure:   structure,
		EffectiveRate:  effectiveRate,
		Components:     splitComponents(components, generic.TotalTax, effectiveRate),
	}
	return result, nil
}

// splitComponents apportions the combined tax across tax types by rate share.
// The last component takes the remainder so the parts always sum exactly to
// the rounded total.
func splitComponents(components []TaxComponent, totalTax, effectiveRate decimal.Decimal) []TaxComponent {
	if len(components) == 0 || !effectiveRate.IsPositive() {
		return components
	}

	remaining := totalTax
	for i := range components {
		if i == len(components)-1 {
			components[i].Amount = remaining
			break
		}
		share := money.Round2(totalTax.Mul(components[i].Rate).Div(effectiveRate))
		components[i].Amount = share
		remaining = remaining.Sub(share)
	}
	return components
}
