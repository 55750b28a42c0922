package api

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/ledgertools/api/internal/cache"
	"github.com/ledgertools/api/internal/money"
	"github.com/ledgertools/api/internal/tax"
)

// TaxHandler holds dependencies for the tax calculation endpoints.
type TaxHandler struct {
	calcCache *cache.Calculations
	logger    *slog.Logger
}

// NewTaxHandler creates a tax handler. calcCache may be nil, which disables
// response caching.
func NewTaxHandler(calcCache *cache.Calculations, logger *slog.Logger) *TaxHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &TaxHandler{calcCache: calcCache, logger: logger}
}

// RegisterRoutes registers the tax calculation routes on the given mux.
func (h *TaxHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/v1/tax/sales", h.CalculateSales)
	mux.HandleFunc("POST /api/v1/tax/canada", h.CalculateCanada)
	mux.HandleFunc("POST /api/v1/tax/vat", h.CalculateVAT)
}

// --- JSON request types ---

// lineItemJSON is one purchased item as sent by the caller. Both fields
// absorb malformed values to zero via money.Amount.
type lineItemJSON struct {
	Price   money.Amount `json:"price"`
	TaxRate money.Amount `json:"tax_rate"`
}

// discountJSON is one discount. ItemIndex is 1-based; zero or absent means an
// aggregate discount. IsTaxable is the optional per-discount override; absent
// follows the request-level discount_is_taxable flag.
type discountJSON struct {
	Amount    money.Amount `json:"amount"`
	ItemIndex int          `json:"item_index"`
	IsTaxable *bool        `json:"is_taxable"`
}

type salesTaxRequest struct {
	Items           []lineItemJSON `json:"items"`
	Discounts       []discountJSON `json:"discounts"`
	ShippingCost    money.Amount   `json:"shipping_cost"`
	ShippingTaxable bool           `json:"shipping_taxable"`
	ShippingTaxRate money.Amount   `json:"shipping_tax_rate"`
	SalesBeforeTax  bool           `json:"is_sales_before_tax"`
	DiscountTaxable *bool          `json:"discount_is_taxable"`
}

type canadaTaxRequest struct {
	Province        string         `json:"province"`
	GSTRate         money.Amount   `json:"gst_rate"`
	PSTRate         money.Amount   `json:"pst_rate"`
	HSTRate         money.Amount   `json:"hst_rate"`
	Items           []lineItemJSON `json:"items"`
	Discounts       []discountJSON `json:"discounts"`
	ShippingCost    money.Amount   `json:"shipping_cost"`
	ShippingTaxable bool           `json:"shipping_taxable"`
	SalesBeforeTax  bool           `json:"is_sales_before_tax"`
	DiscountTaxable *bool          `json:"discount_is_taxable"`
}

// vatRequest carries the VAT rate as a raw value: unlike every other numeric
// field it must NOT be absorbed to zero on garbage, so it bypasses
// money.Amount and goes through tax.ParseVATRate instead.
type vatRequest struct {
	VATRate         any            `json:"vat_rate"`
	Items           []lineItemJSON `json:"items"`
	Discounts       []discountJSON `json:"discounts"`
	ShippingCost    money.Amount   `json:"shipping_cost"`
	ShippingTaxable bool           `json:"shipping_taxable"`
	SalesBeforeTax  bool           `json:"is_sales_before_tax"`
	DiscountTaxable *bool          `json:"discount_is_taxable"`
}

// --- JSON response types ---

type breakdownJSON struct {
	Item string       `json:"item"`
	Tax  money.Amount `json:"tax"`
}

type salesTaxResponse struct {
	ItemTotal     money.Amount    `json:"item_total"`
	DiscountTotal money.Amount    `json:"discount_total"`
	ShippingCost  money.Amount    `json:"shipping_cost"`
	ShippingTax   money.Amount    `json:"shipping_tax"`
	TotalTax      money.Amount    `json:"total_tax"`
	TotalAmount   money.Amount    `json:"total_amount"`
	TaxBreakdown  []breakdownJSON `json:"tax_breakdown"`
}

type taxComponentJSON struct {
	Type   string       `json:"type"`
	Rate   money.Rate   `json:"rate"`
	Amount money.Amount `json:"amount"`
}

type canadaTaxResponse struct {
	salesTaxResponse

	Province      string             `json:"province"`
	TaxStructure  string             `json:"tax_structure"`
	EffectiveRate money.Rate         `json:"effective_rate"`
	TaxSummary    []taxComponentJSON `json:"tax_summary"`
}

type vatBreakdownJSON struct {
	Item      string       `json:"item"`
	NetAmount money.Amount `json:"net_amount"`
	VAT       money.Amount `json:"vat"`
}

type vatResponse struct {
	ItemTotal      money.Amount       `json:"item_total"`
	DiscountTotal  money.Amount       `json:"discount_total"`
	ShippingCost   money.Amount       `json:"shipping_cost"`
	NetAmount      money.Amount       `json:"net_amount"`
	VATAmount      money.Amount       `json:"vat_amount"`
	GrossAmount    money.Amount       `json:"gross_amount"`
	VATRateApplied money.Rate         `json:"vat_rate_applied"`
	VATBreakdown   []vatBreakdownJSON `json:"vat_breakdown"`
}

// --- Handlers ---

// CalculateSales handles POST /api/v1/tax/sales
func (h *TaxHandler) CalculateSales(w http.ResponseWriter, r *http.Request) {
	body, req, ok := readRequest[salesTaxRequest](w, r)
	if !ok {
		return
	}

	key := cache.Key("sales", body)
	if h.replayCached(w, r, key) {
		return
	}

	result, err := tax.CalculateSalesTax(tax.SalesTaxInput{
		Items:           toLineItems(req.Items),
		Discounts:       toDiscounts(req.Discounts),
		ShippingCost:    req.ShippingCost.Decimal,
		ShippingTaxable: req.ShippingTaxable,
		ShippingTaxRate: req.ShippingTaxRate.Decimal,
		SalesBeforeTax:  req.SalesBeforeTax,
		DiscountTaxable: boolOrTrue(req.DiscountTaxable),
	})
	if err != nil {
		h.writeCalcError(w, r, err)
		return
	}

	resp := toSalesResponse(result)
	h.calcCache.Set(r.Context(), key, resp)
	writeJSON(w, http.StatusOK, resp)
}

// CalculateCanada handles POST /api/v1/tax/canada
func (h *TaxHandler) CalculateCanada(w http.ResponseWriter, r *http.Request) {
	body, req, ok := readRequest[canadaTaxRequest](w, r)
	if !ok {
		return
	}

	key := cache.Key("canada", body)
	if h.replayCached(w, r, key) {
		return
	}

	result, err := tax.CalculateCanadaTax(tax.CanadaTaxInput{
		Province:        req.Province,
		GSTRate:         req.GSTRate.Decimal,
		ProvincialRate:  req.PSTRate.Decimal,
		HSTRate:         req.HSTRate.Decimal,
		Items:           toLineItems(req.Items),
		Discounts:       toDiscounts(req.Discounts),
		ShippingCost:    req.ShippingCost.Decimal,
		ShippingTaxable: req.ShippingTaxable,
		SalesBeforeTax:  req.SalesBeforeTax,
		DiscountTaxable: boolOrTrue(req.DiscountTaxable),
	})
	if err != nil {
		h.writeCalcError(w, r, err)
		return
	}

	summary := make([]taxComponentJSON, len(result.Components))
	for i, c := range result.Components {
		summary[i] = taxComponentJSON{
			Type:   c.Type,
			Rate:   money.NewRate(c.Rate),
			Amount: money.NewAmount(c.Amount),
		}
	}

	resp := canadaTaxResponse{
		salesTaxResponse: toSalesResponse(&result.SalesTaxResult),
		Province:         result.Province,
		TaxStructure:     result.TaxStructure,
		EffectiveRate:    money.NewRate(result.EffectiveRate),
		TaxSummary:       summary,
	}
	h.calcCache.Set(r.Context(), key, resp)
	writeJSON(w, http.StatusOK, resp)
}

// CalculateVAT handles POST /api/v1/tax/vat
func (h *TaxHandler) CalculateVAT(w http.ResponseWriter, r *http.Request) {
	body, req, ok := readRequest[vatRequest](w, r)
	if !ok {
		return
	}

	rate, err := tax.ParseVATRate(req.VATRate)
	if err != nil {
		h.writeCalcError(w, r, err)
		return
	}

	key := cache.Key("vat", body)
	if h.replayCached(w, r, key) {
		return
	}

	result, err := tax.CalculateVAT(tax.VATInput{
		VATRate:         rate,
		Items:           toLineItems(req.Items),
		Discounts:       toDiscounts(req.Discounts),
		ShippingCost:    req.ShippingCost.Decimal,
		ShippingTaxable: req.ShippingTaxable,
		SalesBeforeTax:  req.SalesBeforeTax,
		DiscountTaxable: boolOrTrue(req.DiscountTaxable),
	})
	if err != nil {
		h.writeCalcError(w, r, err)
		return
	}

	breakdown := make([]vatBreakdownJSON, len(result.Breakdown))
	for i, e := range result.Breakdown {
		breakdown[i] = vatBreakdownJSON{
			Item:      e.Item,
			NetAmount: money.NewAmount(e.NetAmount),
			VAT:       money.NewAmount(e.VAT),
		}
	}

	resp := vatResponse{
		ItemTotal:      money.NewAmount(result.ItemTotal),
		DiscountTotal:  money.NewAmount(result.DiscountTotal),
		ShippingCost:   money.NewAmount(result.ShippingCost),
		NetAmount:      money.NewAmount(result.NetAmount),
		VATAmount:      money.NewAmount(result.VATAmount),
		GrossAmount:    money.NewAmount(result.GrossAmount),
		VATRateApplied: money.NewRate(result.VATRateApplied),
		VATBreakdown:   breakdown,
	}
	h.calcCache.Set(r.Context(), key, resp)
	writeJSON(w, http.StatusOK, resp)
}

// --- Helpers ---

// readRequest reads and decodes a calculation request body, returning the raw
// bytes for cache keying. Writes the error response itself on failure.
func readRequest[T any](w http.ResponseWriter, r *http.Request) ([]byte, T, bool) {
	var req T

	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorJSON{Error: "failed to read request body"})
		return nil, req, false
	}

	if err := json.Unmarshal(body, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorJSON{Error: "invalid JSON body"})
		return nil, req, false
	}

	return body, req, true
}

// replayCached serves a previously cached response for this request body, if
// one exists.
func (h *TaxHandler) replayCached(w http.ResponseWriter, r *http.Request, key string) bool {
	var cached json.RawMessage
	if !h.calcCache.Get(r.Context(), key, &cached) {
		return false
	}
	writeRawJSON(w, http.StatusOK, cached)
	return true
}

// writeCalcError maps engine errors to HTTP responses. Every error the
// calculators return is a caller mistake, so anything unrecognized is logged
// and still reported as 400.
func (h *TaxHandler) writeCalcError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, tax.ErrShippingRateRequired),
		errors.Is(err, tax.ErrVATRateInvalid),
		errors.Is(err, tax.ErrUnknownProvince):
		writeJSON(w, http.StatusBadRequest, errorJSON{Error: err.Error()})
	default:
		h.logger.Error("tax calculation failed", "path", r.URL.Path, "error", err)
		writeJSON(w, http.StatusBadRequest, errorJSON{Error: err.Error()})
	}
}

func toLineItems(items []lineItemJSON) []tax.LineItem {
	out := make([]tax.LineItem, len(items))
	for i, it := range items {
		out[i] = tax.LineItem{Price: it.Price.Decimal, TaxRate: it.TaxRate.Decimal}
	}
	return out
}

func toDiscounts(discounts []discountJSON) []tax.Discount {
	out := make([]tax.Discount, len(discounts))
	for i, d := range discounts {
		out[i] = tax.Discount{Amount: d.Amount.Decimal, ItemIndex: d.ItemIndex, Taxable: d.IsTaxable}
	}
	return out
}

func toSalesResponse(res *tax.SalesTaxResult) salesTaxResponse {
	breakdown := make([]breakdownJSON, len(res.Breakdown))
	for i, e := range res.Breakdown {
		breakdown[i] = breakdownJSON{Item: e.Item, Tax: money.NewAmount(e.Tax)}
	}
	return salesTaxResponse{
		ItemTotal:     money.NewAmount(res.ItemTotal),
		DiscountTotal: money.NewAmount(res.DiscountTotal),
		ShippingCost:  money.NewAmount(res.ShippingCost),
		ShippingTax:   money.NewAmount(res.ShippingTax),
		TotalTax:      money.NewAmount(res.TotalTax),
		TotalAmount:   money.NewAmount(res.TotalAmount),
		TaxBreakdown:  breakdown,
	}
}

// boolOrTrue resolves the discount_is_taxable flag, which defaults to true
// when absent.
func boolOrTrue(p *bool) bool {
	if p == nil {
		return true
	}
	return *p
}
