package admin

import (
	"time"

	"github.com/xenking/catalog-admin/internal/catalog"
	"github.com/xenking/catalog-admin/internal/domain/product"
)

// Event is an input to Reduce.
type Event interface {
	event()
}

// Load is sent when the page is viewed. The first one adopts the shared
// snapshot, fetching the list only while the snapshot is empty. Later ones
// pick up a newer shared snapshot if there is one.
type Load struct{}

// Refresh forces a list fetch.
type Refresh struct{}

// OpenProductDialog opens the product dialog in create mode.
type OpenProductDialog struct{}

// Row actions.
const (
	ActionEdit   = "edit"
	ActionDelete = "delete"
)

// RowAction is a click on a table row button.
type RowAction struct {
	Action string
	ID     string
}

// CloseProductDialog dismisses the product dialog.
type CloseProductDialog struct {
	Via Via
}

// CloseDeleteDialog dismisses the delete dialog.
type CloseDeleteDialog struct {
	Via Via
}

// Submit saves the product dialog.
type Submit struct {
	Form ProductForm
}

// ConfirmDelete deletes the delete dialog target.
type ConfirmDelete struct{}

// Loaded reports a successful list fetch.
type Loaded struct {
	Products []product.Product
	At       time.Time
}

// Synced carries the shared snapshot as of At.
type Synced struct {
	Products []product.Product
	At       time.Time
}

// LoadFailed reports a failed list fetch.
type LoadFailed struct {
	Err error
}

// MutationSucceeded reports a successful create, update or delete.
type MutationSucceeded struct {
	Op catalog.Op
}

// MutationFailed reports a failed create, update or delete.
type MutationFailed struct {
	Op  catalog.Op
	Err error
}

func (Load) event()               {}
func (Refresh) event()            {}
func (OpenProductDialog) event()  {}
func (RowAction) event()          {}
func (CloseProductDialog) event() {}
func (CloseDeleteDialog) event()  {}
func (Submit) event()             {}
func (ConfirmDelete) event()      {}
func (Loaded) event()             {}
func (Synced) event()             {}
func (LoadFailed) event()         {}
func (MutationSucceeded) event()  {}
func (MutationFailed) event()     {}

// Effect is work requested by Reduce.
type Effect interface {
	effect()
}

// FetchList reloads the shared cache from the catalog. With PreferSnapshot
// the current snapshot is used instead when one has been loaded.
type FetchList struct {
	PreferSnapshot bool
}

// ReadSnapshot reads the shared cache without calling the catalog.
type ReadSnapshot struct{}

// CreateProduct creates a product from Draft.
type CreateProduct struct {
	Draft product.Draft
}

// UpdateProduct replaces the product ID with Draft.
type UpdateProduct struct {
	ID    string
	Draft product.Draft
}

// DeleteProduct deletes the product ID.
type DeleteProduct struct {
	ID string
}

// ShowToast displays a notification.
type ShowToast struct {
	Message string
	Error   bool
}

func (FetchList) effect()     {}
func (ReadSnapshot) effect()  {}
func (CreateProduct) effect() {}
func (UpdateProduct) effect() {}
func (DeleteProduct) effect() {}
func (ShowToast) effect()     {}
