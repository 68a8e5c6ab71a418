package catalog

import (
	"strings"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/shopspring/decimal"

	"github.com/xenking/catalog-admin/internal/domain/product"
)

// decodeProducts decodes a JSON array of products.
func decodeProducts(data []byte) ([]product.Product, error) {
	var out []product.Product
	d := jx.DecodeBytes(data)
	if err := d.Arr(func(d *jx.Decoder) error {
		p, err := decodeProduct(d)
		if err != nil {
			return err
		}
		out = append(out, p)
		return nil
	}); err != nil {
		return nil, errors.Wrap(err, "decode products")
	}
	return out, nil
}

// decodeProductBytes decodes a single product object. An empty body yields
// the zero Product.
func decodeProductBytes(data []byte) (product.Product, error) {
	if len(strings.TrimSpace(string(data))) == 0 {
		return product.Product{}, nil
	}
	p, err := decodeProduct(jx.DecodeBytes(data))
	if err != nil {
		return product.Product{}, errors.Wrap(err, "decode product")
	}
	return p, nil
}

// decodeProduct reads one product object. The service is loose about types:
// ids may be numbers and prices may arrive as numeric strings. Unknown
// fields such as createdAt are skipped.
func decodeProduct(d *jx.Decoder) (product.Product, error) {
	var p product.Product
	err := d.ObjBytes(func(d *jx.Decoder, key []byte) error {
		switch string(key) {
		case "id":
			v, err := scalarString(d)
			if err != nil {
				return errors.Wrap(err, "id")
			}
			p.ID = v
		case "name":
			v, err := scalarString(d)
			if err != nil {
				return errors.Wrap(err, "name")
			}
			p.Name = v
		case "imagem":
			v, err := scalarString(d)
			if err != nil {
				return errors.Wrap(err, "imagem")
			}
			p.Imagem = v
		case "price":
			v, err := scalarString(d)
			if err != nil {
				return errors.Wrap(err, "price")
			}
			if v == "" {
				p.Price = decimal.Zero
				return nil
			}
			price, err := decimal.NewFromString(v)
			if err != nil {
				return errors.Wrapf(err, "price %q", v)
			}
			p.Price = price
		default:
			return d.Skip()
		}
		return nil
	})
	return p, err
}

// scalarString reads a string, number or null as its textual form.
func scalarString(d *jx.Decoder) (string, error) {
	switch d.Next() {
	case jx.String:
		return d.Str()
	case jx.Number:
		raw, err := d.Raw()
		if err != nil {
			return "", err
		}
		return strings.TrimSpace(string(raw)), nil
	case jx.Null:
		return "", d.Null()
	default:
		return "", errors.Errorf("unexpected %s", d.Next())
	}
}

// encodeDraft encodes a draft as the body of a create or update request. The
// price is written as its exact decimal text, never through a float.
func encodeDraft(draft product.Draft) []byte {
	var e jx.Encoder
	e.ObjStart()
	e.FieldStart("name")
	e.Str(draft.Name)
	e.FieldStart("price")
	e.RawStr(draft.Price.String())
	e.FieldStart("imagem")
	e.Str(draft.Imagem)
	e.ObjEnd()
	return e.Bytes()
}

// EncodeProducts encodes products as a JSON array in the catalog wire
// format, prices as two-decimal numbers.
func EncodeProducts(products []product.Product) []byte {
	var e jx.Encoder
	e.ArrStart()
	for _, p := range products {
		e.ObjStart()
		e.FieldStart("id")
		e.Str(p.ID)
		e.FieldStart("name")
		e.Str(p.Name)
		e.FieldStart("price")
		e.RawStr(p.Price.StringFixed(2))
		e.FieldStart("imagem")
		e.Str(p.Imagem)
		e.ObjEnd()
	}
	e.ArrEnd()
	return e.Bytes()
}
