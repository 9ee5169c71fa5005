package services

import (
	"fmt"
	"strings"

	"gastos/internal/core"
)

// FormatSummary renders an aggregated summary for the given period label.
// Amounts are shown with two decimals and no currency symbol.
func FormatSummary(result core.SummaryResult, periodLabel string) string {
	if result.Count == 0 {
		return "Sin gastos registrados para el periodo " + periodLabel
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Resumen %s:\n\n", periodLabel)
	fmt.Fprintf(&b, "Total gastado: %s\n", core.FormatAmount(result.Total))
	fmt.Fprintf(&b, "Cantidad de gastos: %d\n\n", result.Count)
	b.WriteString("Por categoria:\n")
	for _, c := range result.PerCategory {
		fmt.Fprintf(&b, "- %s: %s\n", c.Name, core.FormatAmount(c.Amount))
	}
	return b.String()
}
