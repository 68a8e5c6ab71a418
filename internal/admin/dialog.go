package admin

import "github.com/xenking/catalog-admin/internal/domain/product"

// Mode tells whether the product dialog creates a new product or edits an
// existing one.
type Mode string

const (
	ModeCreate Mode = "create"
	ModeEdit   Mode = "edit"
)

// Via names the control that closed a dialog.
type Via string

const (
	ViaClose    Via = "close"
	ViaCancel   Via = "cancel"
	ViaBackdrop Via = "backdrop"
)

// ParseVia maps a form value onto a Via, defaulting to ViaClose.
func ParseVia(s string) Via {
	switch v := Via(s); v {
	case ViaCancel, ViaBackdrop:
		return v
	default:
		return ViaClose
	}
}

// ProductForm holds the raw product dialog inputs.
type ProductForm struct {
	Name   string
	Price  string
	Imagem string
}

// ProductDialog is the create/edit dialog. ID is set only in edit mode.
type ProductDialog struct {
	Open bool
	Mode Mode
	ID   string
	Form ProductForm
}

// OpenFor opens the dialog in edit mode pre-filled from p, or in create mode
// with an empty form when p is nil.
func (ProductDialog) OpenFor(p *product.Product) ProductDialog {
	if p == nil {
		return ProductDialog{Open: true, Mode: ModeCreate}
	}
	return ProductDialog{
		Open: true,
		Mode: ModeEdit,
		ID:   p.ID,
		Form: ProductForm{
			Name:   p.Name,
			Price:  p.Price.StringFixed(2),
			Imagem: p.Imagem,
		},
	}
}

// Close hides the dialog and forgets the form.
func (ProductDialog) Close() ProductDialog {
	return ProductDialog{}
}

// DeleteDialog is the delete confirmation dialog.
type DeleteDialog struct {
	Open       bool
	TargetID   string
	TargetName string
}

// OpenFor asks to confirm deletion of the product with the given id.
func (DeleteDialog) OpenFor(id, name string) DeleteDialog {
	return DeleteDialog{Open: true, TargetID: id, TargetName: name}
}

// Close hides the dialog and clears the target.
func (DeleteDialog) Close() DeleteDialog {
	return DeleteDialog{}
}
