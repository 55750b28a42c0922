package tax

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

func TestCalculateCanadaTax_Structures(t *testing.T) {
	items := func(t *testing.T) []LineItem {
		return []LineItem{
			{Price: d(t, "100")},
			{Price: d(t, "50")},
		}
	}

	tests := []struct {
		name           string
		province       string
		gst, prov, hst string
		wantStructure  string
		wantEffective  string
		wantTotalTax   string
		wantComponents []struct{ taxType, rate, amount string }
	}{
		{
			name:          "Ontario HST",
			province:      "ON",
			hst:           "13",
			wantStructure: TaxStructureHST,
			wantEffective: "13",
			wantTotalTax:  "19.50", // 13% of 150
			wantComponents: []struct{ taxType, rate, amount string }{
				{"HST", "13", "19.50"},
			},
		},
		{
			name:          "British Columbia GST+PST",
			province:      "BC",
			gst:           "5",
			prov:          "7",
			wantStructure: TaxStructureGSTPST,
			wantEffective: "12",
			wantTotalTax:  "18.00",
			wantComponents: []struct{ taxType, rate, amount string }{
				{"GST", "5", "7.50"},
				{"PST", "7", "10.50"},
			},
		},
		{
			name:          "Quebec GST+QST",
			province:      "QC",
			gst:           "5",
			prov:          "9.975",
			wantStructure: TaxStructureGSTQST,
			wantEffective: "14.975",
			wantTotalTax:  "22.46", // 150 * 14.975% = 22.4625
			wantComponents: []struct{ taxType, rate, amount string }{
				{"GST", "5", "7.50"},
				{"QST", "9.975", "14.96"}, // remainder keeps the sum exact
			},
		},
		{
			name:          "Alberta GST only",
			province:      "AB",
			gst:           "5",
			wantStructure: TaxStructureGST,
			wantEffective: "5",
			wantTotalTax:  "7.50",
			wantComponents: []struct{ taxType, rate, amount string }{
				{"GST", "5", "7.50"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := CanadaTaxInput{
				Province:        tt.province,
				Items:           items(t),
				DiscountTaxable: true,
			}
			if tt.gst != "" {
				in.GSTRate = d(t, tt.gst)
			}
			if tt.prov != "" {
				in.ProvincialRate = d(t, tt.prov)
			}
			if tt.hst != "" {
				in.HSTRate = d(t, tt.hst)
			}

			result, err := CalculateCanadaTax(in)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if result.TaxStructure != tt.wantStructure {
				t.Errorf("structure: want %s, got %s", tt.wantStructure, result.TaxStructure)
			}
			if !result.EffectiveRate.Equal(d(t, tt.wantEffective)) {
				t.Errorf("effective rate: want %s, got %s", tt.wantEffective, result.EffectiveRate)
			}
			if result.TotalTax.StringFixed(2) != tt.wantTotalTax {
				t.Errorf("total tax: want %s, got %s", tt.wantTotalTax, result.TotalTax)
			}

			if len(result.Components) != len(tt.wantComponents) {
				t.Fatalf("components: want %d, got %d (%v)", len(tt.wantComponents), len(result.Components), result.Components)
			}
			componentSum := decimal.Zero
			for i, want := range tt.wantComponents {
				got := result.Components[i]
				if got.Type != want.taxType {
					t.Errorf("component[%d] type: want %s, got %s", i, want.taxType, got.Type)
				}
				if !got.Rate.Equal(d(t, want.rate)) {
					t.Errorf("component[%d] rate: want %s, got %s", i, want.rate, got.Rate)
				}
				if got.Amount.StringFixed(2) != want.amount {
					t.Errorf("component[%d] amount: want %s, got %s", i, want.amount, got.Amount)
				}
				componentSum = componentSum.Add(got.Amount)
			}
			if !componentSum.Equal(result.TotalTax) {
				t.Errorf("component amounts sum to %s, total tax is %s", componentSum, result.TotalTax)
			}
		})
	}
}

func TestCalculateCanadaTax_ShippingUsesEffectiveRate(t *testing.T) {
	result, err := CalculateCanadaTax(CanadaTaxInput{
		Province:        "on", // case-insensitive
		HSTRate:         d(t, "13"),
		Items:           []LineItem{{Price: d(t, "100")}},
		ShippingCost:    d(t, "10"),
		ShippingTaxable: true,
		DiscountTaxable: true,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.ShippingTax.StringFixed(2) != "1.30" {
		t.Errorf("shipping tax: want 1.30, got %s", result.ShippingTax)
	}
	if result.TotalTax.StringFixed(2) != "14.30" {
		t.Errorf("total tax: want 14.30, got %s", result.TotalTax)
	}
	if result.TotalAmount.StringFixed(2) != "124.30" {
		t.Errorf("total amount: want 124.30, got %s", result.TotalAmount)
	}

	last := result.Breakdown[len(result.Breakdown)-1]
	if last.Item != "Shipping" {
		t.Errorf("last breakdown entry: want Shipping, got %q", last.Item)
	}
}

func TestCalculateCanadaTax_DiscountPolicyDelegated(t *testing.T) {
	// Sales-before-tax with a non-taxable discount: the generic calculator's
	// fourth branch applies unchanged under the composed rate.
	result, err := CalculateCanadaTax(CanadaTaxInput{
		Province:       "BC",
		GSTRate:        d(t, "5"),
		ProvincialRate: d(t, "7"),
		Items:          []LineItem{{Price: d(t, "100")}},
		Discounts:      []Discount{{Amount: d(t, "20"), ItemIndex: 1}},
		SalesBeforeTax: true,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.ItemTotal.StringFixed(2) != "80.00" {
		t.Errorf("item total: want 80.00, got %s", result.ItemTotal)
	}
	if result.TotalTax.StringFixed(2) != "9.60" { // 12% of 80
		t.Errorf("total tax: want 9.60, got %s", result.TotalTax)
	}
	if result.TotalAmount.StringFixed(2) != "89.60" {
		t.Errorf("total amount: want 89.60, got %s", result.TotalAmount)
	}
}

func TestCalculateCanadaTax_UnknownProvince(t *testing.T) {
	_, err := CalculateCanadaTax(CanadaTaxInput{
		Province: "ZZ",
		Items:    []LineItem{{Price: d(t, "100")}},
	})
	if !errors.Is(err, ErrUnknownProvince) {
		t.Fatalf("want ErrUnknownProvince, got %v", err)
	}
}

func TestCalculateCanadaTax_ZeroRates(t *testing.T) {
	// All-zero rates: no tax, no components, no breakdown entries.
	result, err := CalculateCanadaTax(CanadaTaxInput{
		Province: "AB",
		Items:    []LineItem{{Price: d(t, "100")}},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !result.TotalTax.IsZero() {
		t.Errorf("total tax: want 0, got %s", result.TotalTax)
	}
	if len(result.Components) != 0 {
		t.Errorf("components: want none, got %v", result.Components)
	}
	if len(result.Breakdown) != 0 {
		t.Errorf("breakdown: want none, got %v", result.Breakdown)
	}
}

func TestCalculateCanadaTax_TaxableShippingZeroRate(t *testing.T) {
	// The generic validation propagates: taxable shipping with a zero
	// effective rate is rejected.
	_, err := CalculateCanadaTax(CanadaTaxInput{
		Province:        "AB",
		Items:           []LineItem{{Price: d(t, "100")}},
		ShippingCost:    d(t, "10"),
		ShippingTaxable: true,
	})
	if !errors.Is(err, ErrShippingRateRequired) {
		t.Fatalf("want ErrShippingRateRequired, got %v", err)
	}
}
