package export

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

// PriceRow is one usable row of an imported price list. SKU or SupplierSKU
// identifies the item; SKU wins when both are set.
type PriceRow struct {
	Row           int             `json:"row"`
	SKU           string          `json:"sku,omitempty"`
	SupplierSKU   string          `json:"supplier_sku,omitempty"`
	PriceFobUSD   decimal.Decimal `json:"price_fob_usd"`
	PriceOriginal decimal.Decimal `json:"price_original"`
	Currency      string          `json:"currency"`
}

// RowError reports a row that was skipped.
type RowError struct {
	Row    int    `json:"row"`
	Reason string `json:"reason"`
}

func buildColumnMap(headers []string) map[string]int {
	cols := make(map[string]int, len(headers))
	for i, h := range headers {
		key := strings.ToLower(strings.TrimSpace(h))
		key = strings.ReplaceAll(key, " ", "_")
		if _, dup := cols[key]; !dup {
			cols[key] = i
		}
	}
	return cols
}

func columnValue(row []string, cols map[string]int, keys ...string) string {
	for _, k := range keys {
		if idx, ok := cols[k]; ok && idx < len(row) {
			if v := strings.TrimSpace(row[idx]); v != "" {
				return v
			}
		}
	}
	return ""
}

// ReadPrices parses the first sheet of a price list. The header row must
// contain sku or supplier_sku, and price or price_fob_usd. Currency
// defaults to USD; a row in another currency needs price_fob_usd. Bad rows
// are returned as RowErrors; only an unreadable workbook or a missing
// header is an error.
func ReadPrices(r io.Reader) ([]PriceRow, []RowError, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, nil, errors.New("workbook has no sheets")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, nil, fmt.Errorf("read sheet %q: %w", sheets[0], err)
	}
	if len(rows) == 0 {
		return nil, nil, fmt.Errorf("sheet %q is empty", sheets[0])
	}

	cols := buildColumnMap(rows[0])
	_, hasSKU := cols["sku"]
	_, hasSupplierSKU := cols["supplier_sku"]
	_, hasPrice := cols["price"]
	_, hasFob := cols["price_fob_usd"]
	if !hasSKU && !hasSupplierSKU {
		return nil, nil, errors.New("header needs a sku or supplier_sku column")
	}
	if !hasPrice && !hasFob {
		return nil, nil, errors.New("header needs a price or price_fob_usd column")
	}

	out := make([]PriceRow, 0, len(rows)-1)
	var bad []RowError
	for i, row := range rows[1:] {
		line := i + 2
		if strings.TrimSpace(strings.Join(row, "")) == "" {
			continue
		}

		pr := PriceRow{
			Row:         line,
			SKU:         columnValue(row, cols, "sku"),
			SupplierSKU: columnValue(row, cols, "supplier_sku"),
			Currency:    strings.ToUpper(columnValue(row, cols, "currency")),
		}
		if pr.SKU == "" && pr.SupplierSKU == "" {
			bad = append(bad, RowError{Row: line, Reason: "missing sku"})
			continue
		}

		if pr.Currency == "" {
			pr.Currency = "USD"
		}
		original, okOriginal, err := parseAmount(columnValue(row, cols, "price"))
		if err != nil {
			bad = append(bad, RowError{Row: line, Reason: err.Error()})
			continue
		}
		fob, okFob, err := parseAmount(columnValue(row, cols, "price_fob_usd"))
		if err != nil {
			bad = append(bad, RowError{Row: line, Reason: err.Error()})
			continue
		}
		switch {
		case okFob && !okOriginal:
			original = fob
		case !okFob && okOriginal && pr.Currency == "USD":
			fob = original
		case !okFob:
			bad = append(bad, RowError{Row: line, Reason: fmt.Sprintf("no USD price for %s row", pr.Currency)})
			continue
		}
		pr.PriceFobUSD = fob
		pr.PriceOriginal = original
		out = append(out, pr)
	}
	return out, bad, nil
}

func parseAmount(raw string) (decimal.Decimal, bool, error) {
	if raw == "" {
		return decimal.Zero, false, nil
	}
	raw = strings.ReplaceAll(raw, ",", "")
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, false, fmt.Errorf("invalid price %q", raw)
	}
	if d.IsNegative() {
		return decimal.Zero, false, fmt.Errorf("negative price %q", raw)
	}
	return d, true, nil
}
