package catalogmock

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultSeed(t *testing.T) {
	products := DefaultSeed()
	require.NotEmpty(t, products)
	for _, p := range products {
		assert.NotEmpty(t, p.ID)
		assert.NotEmpty(t, p.Name)
		assert.True(t, p.Price.IsPositive(), p.Name)
	}
}

func TestLoadSeedFile(t *testing.T) {
	products, err := LoadSeedFile("testdata/seed.json")
	require.NoError(t, err)
	require.Len(t, products, 2)
	assert.True(t, decimal.RequireFromString("39.9").Equal(products[0].Price), "numeric price")
	assert.True(t, decimal.RequireFromString("149").Equal(products[1].Price), "string price")

	store := NewStore(products)
	listed := store.List()
	assert.Equal(t, "8", listed[0].ID, "unnumbered entries follow the highest seeded id")
	assert.Equal(t, "7", listed[1].ID)

	created := store.Create(Product{Name: "Novo", Price: decimal.NewFromInt(1)})
	assert.Equal(t, "9", created.ID)
}

func TestLoadSeedFile_Errors(t *testing.T) {
	_, err := LoadSeedFile("testdata/missing.json")
	assert.ErrorContains(t, err, "open seed")

	_, err = LoadSeed(strings.NewReader(`{"not":"an array"}`))
	assert.ErrorContains(t, err, "decode seed")
}
