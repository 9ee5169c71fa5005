package intent

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRegisterExpense(t *testing.T) {
	tests := []struct {
		in       string
		category string
		amount   string
	}{
		{"comida 200", "Comida", "200"},
		{"Netflix 1500", "Netflix", "1500"},
		{"transporte 50.5", "Transporte", "50.5"},
		{"  COMIDA   rapida   12.345  ", "Comida Rapida", "12.345"},
		{"cuota 2 300", "Cuota 2", "300"},
		{"eliminar 5.5", "Eliminar", "5.5"},
		{"cafe 0", "Cafe", "0"},
		{"ñoquis 80", "Ñoquis", "80"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got := Parse(tt.in)
			reg, ok := got.(RegisterExpense)
			require.True(t, ok, "Parse(%q) = %#v", tt.in, got)
			assert.Equal(t, tt.category, reg.Category)
			assert.True(t, reg.Amount.Equal(decimal.RequireFromString(tt.amount)), "amount %s", reg.Amount)
		})
	}
}

func TestParseKeepsSourceText(t *testing.T) {
	got, ok := Parse("  Comida 300 ").(RegisterExpense)
	require.True(t, ok)
	assert.Equal(t, "Comida 300", got.SourceText)
}

func TestParseCommands(t *testing.T) {
	tests := []struct {
		in   string
		want Intent
	}{
		{"eliminar 7", DeleteByID{ID: 7}},
		{"BORRAR 12", DeleteByID{ID: 12}},
		{"borrar ultimo", DeleteLast{}},
		{"Eliminar Último", DeleteLast{}},
		{"mis gastos", ListRecent{Limit: 5}},
		{" Gastos ", ListRecent{Limit: 5}},
		{"ver gastos", ListRecent{Limit: 5}},
		{"ayuda", Help{}},
		{"?", Help{}},
		{"resumen", Summarize{Phrase: ""}},
		{"resumen hoy", Summarize{Phrase: "hoy"}},
		{"Resumen Semana", Summarize{Phrase: "semana"}},
		{"resumen 01-07 al 29-07", Summarize{Phrase: "01-07 al 29-07"}},
		{"resumen 5", Summarize{Phrase: "5"}},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, Parse(tt.in))
		})
	}
}

func TestParseUnrecognized(t *testing.T) {
	for _, in := range []string{
		"",
		"   ",
		"200",
		"hola",
		"comida -5",
		"comida 5,5",
		"eliminar",
		"eliminar todo",
		"eliminar 99999999999999999999",
	} {
		t.Run(in, func(t *testing.T) {
			assert.Equal(t, Unrecognized{}, Parse(in))
		})
	}
}
