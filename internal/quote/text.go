package quote

import (
	"fmt"
	"io"
	"strings"

	"github.com/Simplici0/importhub/internal/landed"
)

// WriteText renders a plain-text summary of a priced quote. Amounts are
// rounded to cents for display only.
func WriteText(w io.Writer, d Detail) error {
	var b strings.Builder

	title := d.Quote.Title
	if title == "" {
		title = fmt.Sprintf("Cotización #%d", d.Quote.ID)
	}
	fmt.Fprintf(&b, "%s\n", title)
	if d.Client != nil {
		fmt.Fprintf(&b, "Cliente: %s\n", d.Client.Name)
	}
	fmt.Fprintf(&b, "Landed (%s): %s USD\n\n", d.Quote.Config.Destination, d.Breakdown.Landed.StringFixed(2))

	cfg := d.Quote.Config
	b.WriteString("Supuestos:\n")
	fmt.Fprintf(&b, "- Contenedor: %s x %d\n", cfg.ContainerType, d.Breakdown.ContainerQty)
	fmt.Fprintf(&b, "- Flete por contenedor: %s USD\n", cfg.FreightPerContainerUSD.StringFixed(2))
	fmt.Fprintf(&b, "- Tasa de seguro: %s\n", cfg.InsuranceRate.String())
	fmt.Fprintf(&b, "- Costos fijos: %s USD\n\n", cfg.FixedCostsUSD.StringFixed(2))

	b.WriteString("Líneas:\n")
	for _, l := range d.Lines {
		fmt.Fprintf(&b, "- %s %s x%d @ %s USD (%s)\n", l.SKU, l.ItemName, l.Quantity, l.Input.EffectiveUnitFob().StringFixed(2), l.PriceSource)
	}
	b.WriteString("\n")

	bd := d.Breakdown
	b.WriteString("Totales:\n")
	fmt.Fprintf(&b, "- FOB: %s USD\n", bd.TotalFob.StringFixed(2))
	fmt.Fprintf(&b, "- CBM: %s\n", bd.TotalCBM.StringFixed(3))
	fmt.Fprintf(&b, "- Peso: %s kg\n", bd.TotalWeight.StringFixed(2))
	fmt.Fprintf(&b, "- Flete: %s USD\n", bd.FreightTotal.StringFixed(2))
	fmt.Fprintf(&b, "- Seguro: %s USD\n", bd.InsuranceTotal.StringFixed(2))
	fmt.Fprintf(&b, "- CIF: %s USD\n\n", bd.CIFTotal.StringFixed(2))

	b.WriteString("Landed por destino:\n")
	set := bd.LandedByDestination
	for _, row := range []struct {
		label string
		value string
	}{
		{string(landed.DestinationUS), set.US.StringFixed(2)},
		{"AR (estándar)", set.ARStandard.StringFixed(2)},
		{"AR (simplificado)", set.ARSimplified.StringFixed(2)},
		{string(landed.DestinationBR), set.BR.StringFixed(2)},
	} {
		fmt.Fprintf(&b, "- %s: %s USD\n", row.label, row.value)
	}

	_, err := io.WriteString(w, b.String())
	return err
}
