// Package admin holds the admin panel state machine.
//
// Every user interaction is an Event. Reduce folds an event into State and
// returns the Effects to run; a Coordinator runs them against the catalog
// and feeds their outcomes back as further events.
package admin

import (
	"slices"
	"time"

	"github.com/xenking/catalog-admin/internal/domain/product"
)

// Toast is a transient notification.
type Toast struct {
	ID      string
	Message string
	Error   bool
	Expires time.Time
}

// State is the complete UI state of one admin session.
type State struct {
	Products []product.Product
	// Loaded is set once the first list fetch has finished, successfully or not.
	Loaded  bool
	Loading bool
	LoadErr string
	// SyncedAt is the cache load time Products were taken from.
	SyncedAt time.Time

	ProductDialog ProductDialog
	DeleteDialog  DeleteDialog
	Toasts        []Toast
}

// find returns the product with the given id from the current list.
func (s State) find(id string) (product.Product, bool) {
	i := slices.IndexFunc(s.Products, func(p product.Product) bool { return p.ID == id })
	if i < 0 {
		return product.Product{}, false
	}
	return s.Products[i], true
}

func (s State) clone() State {
	s.Products = slices.Clone(s.Products)
	s.Toasts = slices.Clone(s.Toasts)
	return s
}

// pruneToasts drops toasts that expired at or before now.
func (s State) pruneToasts(now time.Time) State {
	s.Toasts = slices.DeleteFunc(slices.Clone(s.Toasts), func(t Toast) bool {
		return !t.Expires.After(now)
	})
	return s
}
