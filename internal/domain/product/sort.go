package product

import (
	"slices"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// SortByName sorts products in place by name using the collation rules of
// the given locale. Products with equal names keep their relative order.
func SortByName(products []Product, tag language.Tag) {
	// Collators are not safe for concurrent use, so each call builds its own.
	c := collate.New(tag)
	slices.SortStableFunc(products, func(a, b Product) int {
		return c.CompareString(a.Name, b.Name)
	})
}
