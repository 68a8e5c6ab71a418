package product

import (
	"strings"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

var (
	// ErrInvalidPrice is returned when a price is not a non-negative number.
	ErrInvalidPrice = errors.New("invalid price")
	// ErrNameRequired is returned when a product name is blank after trimming.
	ErrNameRequired = errors.New("name is required")
)

// Product is a catalog entry as stored by the remote catalog service.
type Product struct {
	// ID is assigned by the catalog service and is never empty for
	// products that have been persisted.
	ID     string
	Name   string
	Price  decimal.Decimal
	Imagem string
}

// Draft is the mutable part of a product, sent on create and update.
type Draft struct {
	Name   string
	Price  decimal.Decimal
	Imagem string
}

// Draft returns the fields of p that a user can edit.
func (p Product) Draft() Draft {
	return Draft{Name: p.Name, Price: p.Price, Imagem: p.Imagem}
}

// NewDraft validates raw form input and builds a Draft. The name is trimmed
// and the price is rounded to two decimal places.
func NewDraft(name, price, imagem string) (Draft, error) {
	p, err := ParsePrice(price)
	if err != nil {
		return Draft{}, err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return Draft{}, ErrNameRequired
	}
	return Draft{
		Name:   name,
		Price:  p,
		Imagem: strings.TrimSpace(imagem),
	}, nil
}

// MaxPrice is the smallest price ParsePrice rejects as too large.
var MaxPrice = decimal.New(1, 12)

// ParsePrice parses a user supplied price: plain digits with an optional
// fraction, below MaxPrice. A single decimal comma is accepted ("9,99")
// since that is how prices are typed in pt-BR.
func ParsePrice(raw string) (decimal.Decimal, error) {
	raw = strings.TrimSpace(raw)
	if strings.Count(raw, ",") == 1 && !strings.Contains(raw, ".") {
		raw = strings.Replace(raw, ",", ".", 1)
	}
	if !isPlainDecimal(raw) {
		return decimal.Zero, ErrInvalidPrice
	}
	p, err := decimal.NewFromString(raw)
	if err != nil || p.GreaterThanOrEqual(MaxPrice) {
		return decimal.Zero, ErrInvalidPrice
	}
	return p.Round(2), nil
}

// isPlainDecimal reports whether s is digits with at most one decimal point,
// ruling out signs and exponents.
func isPlainDecimal(s string) bool {
	var digits int
	var dot bool
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
			digits++
		case r == '.' && !dot:
			dot = true
		default:
			return false
		}
	}
	return digits > 0
}
