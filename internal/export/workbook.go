// Package export moves quotes and price lists in and out of Excel workbooks.
package export

import (
	"fmt"
	"io"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/Simplici0/importhub/internal/quote"
)

const QuoteSheet = "Quote"

var lineHeaders = []string{"SKU", "Item", "Supplier", "Quantity", "Unit FOB USD", "FOB USD", "CBM", "Weight kg", "Price source"}

func cell(col, row int) string {
	name, _ := excelize.CoordinatesToCellName(col, row)
	return name
}

func num(d decimal.Decimal) float64 {
	return d.InexactFloat64()
}

// QuoteWorkbook lays out a priced quote: one row per line followed by the
// cost summary. The caller owns the returned file and must Close it.
func QuoteWorkbook(d quote.Detail) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName(f.GetSheetName(0), QuoteSheet); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("rename sheet: %w", err)
	}

	title := d.Quote.Title
	if title == "" {
		title = fmt.Sprintf("Quote #%d", d.Quote.ID)
	}
	values := map[string]any{
		"A1": title,
		"A2": "Container",
		"B2": fmt.Sprintf("%s x %d", d.Quote.Config.ContainerType, d.Breakdown.ContainerQty),
		"A3": "Destination",
		"B3": string(d.Quote.Config.Destination),
	}
	if d.Client != nil {
		values["C1"] = d.Client.Name
	}

	const headerRow = 5
	for i, h := range lineHeaders {
		values[cell(i+1, headerRow)] = h
	}

	row := headerRow + 1
	for _, l := range d.Lines {
		in := l.Input
		for i, v := range []any{
			l.SKU,
			l.ItemName,
			l.SupplierName,
			l.Quantity,
			num(in.EffectiveUnitFob()),
			num(in.FobTotal()),
			num(in.CBMTotal()),
			num(in.WeightTotal()),
			l.PriceSource,
		} {
			values[cell(i+1, row)] = v
		}
		row++
	}

	bd := d.Breakdown
	row++
	for _, kv := range []struct {
		label string
		value any
	}{
		{"Total FOB USD", num(bd.TotalFob)},
		{"Total CBM", num(bd.TotalCBM)},
		{"Total weight kg", num(bd.TotalWeight)},
		{"Containers", bd.ContainerQty},
		{"Freight USD", num(bd.FreightTotal)},
		{"Insurance USD", num(bd.InsuranceTotal)},
		{"CIF USD", num(bd.CIFTotal)},
		{"Landed US", num(bd.LandedByDestination.US)},
		{"Landed AR standard", num(bd.LandedByDestination.ARStandard)},
		{"Landed AR simplified", num(bd.LandedByDestination.ARSimplified)},
		{"Landed BR", num(bd.LandedByDestination.BR)},
		{"Landed", num(bd.Landed)},
	} {
		values[cell(1, row)] = kv.label
		values[cell(2, row)] = kv.value
		row++
	}

	for ref, v := range values {
		if err := f.SetCellValue(QuoteSheet, ref, v); err != nil {
			_ = f.Close()
			return nil, fmt.Errorf("set %s: %w", ref, err)
		}
	}
	return f, nil
}

// WriteQuote streams the quote workbook as xlsx.
func WriteQuote(w io.Writer, d quote.Detail) error {
	f, err := QuoteWorkbook(d)
	if err != nil {
		return err
	}
	defer f.Close()

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}
