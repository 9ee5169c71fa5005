package services

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"gastos/internal/core"
)

func TestFormatSummaryEmpty(t *testing.T) {
	got := FormatSummary(core.Summarize(nil), "10/07 al 10/07")
	assert.Equal(t, "Sin gastos registrados para el periodo 10/07 al 10/07", got)
}

func TestFormatSummary(t *testing.T) {
	res := core.Summarize([]core.Expense{
		{Category: "Comida", Amount: decimal.NewFromInt(300)},
	})
	got := FormatSummary(res, "10/07 al 10/07")
	assert.Equal(t, "Resumen 10/07 al 10/07:\n\nTotal gastado: 300.00\nCantidad de gastos: 1\n\nPor categoria:\n- Comida: 300.00\n", got)
}
