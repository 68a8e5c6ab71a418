package catalogmock

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"io"
	"os"

	"github.com/go-faster/errors"
)

//go:embed products.json
var defaultSeed []byte

// DefaultSeed returns the bundled demo catalog.
func DefaultSeed() []Product {
	products, err := LoadSeed(bytes.NewReader(defaultSeed))
	if err != nil {
		panic(err)
	}
	return products
}

// LoadSeed decodes a JSON array of products as served by the catalog.
func LoadSeed(r io.Reader) ([]Product, error) {
	var products []Product
	if err := json.NewDecoder(r).Decode(&products); err != nil {
		return nil, errors.Wrap(err, "decode seed")
	}
	return products, nil
}

// LoadSeedFile reads the seed from path, or the bundled catalog when path is
// empty.
func LoadSeedFile(path string) ([]Product, error) {
	if path == "" {
		return DefaultSeed(), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "open seed")
	}
	defer func() { _ = f.Close() }()
	return LoadSeed(f)
}
