// Package catalogmock is an in-memory stand-in for the remote catalog
// service. It speaks the same REST dialect (mockapi.io style) and is used for
// local development and tests.
package catalogmock

import (
	"slices"
	"strconv"
	"sync"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// ErrNotFound is returned when no product has the requested id.
var ErrNotFound = errors.New("product not found")

// Product is the stored representation, serialised as mockapi does.
type Product struct {
	CreatedAt string          `json:"createdAt"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Imagem    string          `json:"imagem"`
	ID        string          `json:"id"`
}

// Store keeps products in insertion order and assigns sequential ids.
type Store struct {
	mu       sync.Mutex
	products []Product
	nextID   int
	now      func() time.Time
}

// NewStore returns a Store seeded with the given products. Seed entries
// without an id get one assigned.
func NewStore(seed []Product) *Store {
	s := &Store{nextID: 1, now: time.Now}
	for _, p := range seed {
		if n, err := strconv.Atoi(p.ID); err == nil && n >= s.nextID {
			s.nextID = n + 1
		}
	}
	for _, p := range seed {
		if p.ID == "" {
			p.ID = s.allocID()
		}
		if p.CreatedAt == "" {
			p.CreatedAt = s.timestamp()
		}
		s.products = append(s.products, p)
	}
	return s
}

// List returns a copy of all products.
func (s *Store) List() []Product {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.products)
}

// Create stores p under a fresh id.
func (s *Store) Create(p Product) Product {
	s.mu.Lock()
	defer s.mu.Unlock()

	p.ID = s.allocID()
	p.CreatedAt = s.timestamp()
	s.products = append(s.products, p)
	return p
}

// Update replaces the mutable fields of the product with the given id.
func (s *Store) Update(id string, p Product) (Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.index(id)
	if i < 0 {
		return Product{}, ErrNotFound
	}
	cur := &s.products[i]
	cur.Name = p.Name
	cur.Price = p.Price
	cur.Imagem = p.Imagem
	return *cur, nil
}

// Delete removes the product with the given id and returns it.
func (s *Store) Delete(id string) (Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.index(id)
	if i < 0 {
		return Product{}, ErrNotFound
	}
	p := s.products[i]
	s.products = slices.Delete(s.products, i, i+1)
	return p, nil
}

func (s *Store) index(id string) int {
	return slices.IndexFunc(s.products, func(p Product) bool { return p.ID == id })
}

func (s *Store) allocID() string {
	id := strconv.Itoa(s.nextID)
	s.nextID++
	return id
}

func (s *Store) timestamp() string {
	return s.now().UTC().Format("2006-01-02T15:04:05.000Z")
}
