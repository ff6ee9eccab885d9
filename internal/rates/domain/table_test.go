package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTable_Convert(t *testing.T) {
	table := DefaultTable()

	tests := []struct {
		name   string
		amount float64
		from   string
		to     string
		want   float64
	}{
		{"same currency is a no-op", 9.99, "USD", "USD", 9.99},
		{"usd to eur", 100, "USD", "EUR", 92},
		{"eur to usd", 92, "EUR", "USD", 100},
		{"gbp to try via usd", 0.79, "GBP", "TRY", 34.5},
		{"unknown source passes through", 42, "XYZ", "USD", 42},
		{"unknown target passes through", 42, "USD", "XYZ", 42},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, table.Convert(tt.amount, tt.from, tt.to), 0.0001)
		})
	}
}

func TestTable_ConvertZeroRate(t *testing.T) {
	table := Table{Base: "USD", Rates: map[string]float64{"USD": 1.0, "BAD": 0}}
	assert.Equal(t, 10.0, table.Convert(10, "BAD", "USD"))
}

func TestSymbol(t *testing.T) {
	assert.Equal(t, "$", Symbol("USD"))
	assert.Equal(t, "€", Symbol("EUR"))
	assert.Equal(t, "£", Symbol("GBP"))
	assert.Equal(t, "₺", Symbol("TRY"))
	assert.Equal(t, "CHF", Symbol("CHF"))
}
