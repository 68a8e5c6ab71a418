package product

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"
)

func TestParsePrice(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    string
		wantErr bool
	}{
		{name: "integer", raw: "5", want: "5"},
		{name: "two decimals", raw: "9.99", want: "9.99"},
		{name: "rounded to cents", raw: "1.005", want: "1.01"},
		{name: "decimal comma", raw: "12,50", want: "12.5"},
		{name: "surrounding spaces", raw: "  3.20 ", want: "3.2"},
		{name: "zero", raw: "0", want: "0"},
		{name: "empty", raw: "", wantErr: true},
		{name: "not a number", raw: "abc", wantErr: true},
		{name: "trailing garbage", raw: "12abc", wantErr: true},
		{name: "negative", raw: "-1", wantErr: true},
		{name: "thousands separator", raw: "1,000.00", wantErr: true},
		{name: "leading fraction", raw: ".5", want: "0.5"},
		{name: "largest", raw: "999999999999.99", want: "999999999999.99"},
		{name: "too large", raw: "1000000000000", wantErr: true},
		{name: "exponent", raw: "1e3", wantErr: true},
		{name: "huge exponent", raw: "1e400", wantErr: true},
		{name: "tiny exponent", raw: "1e-999999999", wantErr: true},
		{name: "plus sign", raw: "+5", wantErr: true},
		{name: "lone dot", raw: ".", wantErr: true},
		{name: "two dots", raw: "1.2.3", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParsePrice(tt.raw)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrInvalidPrice)
				return
			}
			require.NoError(t, err)
			assert.True(t, decimal.RequireFromString(tt.want).Equal(got), "got %s", got)
		})
	}
}

func TestNewDraft(t *testing.T) {
	t.Run("trims name", func(t *testing.T) {
		d, err := NewDraft("  Widget  ", "9.99", " http://img/w.png ")
		require.NoError(t, err)
		assert.Equal(t, "Widget", d.Name)
		assert.Equal(t, "http://img/w.png", d.Imagem)
		assert.Equal(t, "9.99", d.Price.StringFixed(2))
	})

	t.Run("blank name", func(t *testing.T) {
		_, err := NewDraft("   ", "1", "")
		require.ErrorIs(t, err, ErrNameRequired)
	})

	t.Run("price checked before name", func(t *testing.T) {
		_, err := NewDraft("", "nope", "")
		require.ErrorIs(t, err, ErrInvalidPrice)
	})
}

func TestSortByName(t *testing.T) {
	products := []Product{
		{ID: "1", Name: "Éclair"},
		{ID: "2", Name: "banana"},
		{ID: "3", Name: "Damasco"},
		{ID: "4", Name: "abacate"},
	}

	SortByName(products, language.BrazilianPortuguese)

	names := make([]string, len(products))
	for i, p := range products {
		names[i] = p.Name
	}
	assert.Equal(t, []string{"abacate", "banana", "Damasco", "Éclair"}, names)
}
