package admin

import (
	"github.com/go-faster/errors"

	"github.com/xenking/catalog-admin/internal/catalog"
	"github.com/xenking/catalog-admin/internal/domain/product"
)

// Toast texts.
const (
	MsgInvalidPrice    = "invalid price"
	MsgNameRequired    = "name is required"
	MsgProductNotFound = "product not found"
	MsgFetchFailed     = "could not fetch products"
	MsgCreated         = "Product added successfully!"
	MsgUpdated         = "Product updated successfully!"
	MsgDeleted         = "Product deleted successfully!"
)

// Reduce applies ev to s. It never performs I/O; the returned effects must
// be run by the caller in order.
func Reduce(s State, ev Event) (State, []Effect) {
	switch ev := ev.(type) {
	case Load:
		if !s.Loaded {
			s.Loading = true
			return s, []Effect{FetchList{PreferSnapshot: true}}
		}
		return s, []Effect{ReadSnapshot{}}
	case Refresh:
		return s, []Effect{FetchList{}}
	case OpenProductDialog:
		s.ProductDialog = s.ProductDialog.OpenFor(nil)
		return s, nil
	case RowAction:
		return reduceRowAction(s, ev)
	case CloseProductDialog:
		s.ProductDialog = s.ProductDialog.Close()
		return s, nil
	case CloseDeleteDialog:
		s.DeleteDialog = s.DeleteDialog.Close()
		return s, nil
	case Submit:
		return reduceSubmit(s, ev)
	case ConfirmDelete:
		if !s.DeleteDialog.Open || s.DeleteDialog.TargetID == "" {
			return s, nil
		}
		return s, []Effect{DeleteProduct{ID: s.DeleteDialog.TargetID}}
	case Loaded:
		s.Products = ev.Products
		s.SyncedAt = ev.At
		s.Loaded = true
		s.Loading = false
		s.LoadErr = ""
		return s, nil
	case Synced:
		if !ev.At.After(s.SyncedAt) {
			return s, nil
		}
		s.Products = ev.Products
		s.SyncedAt = ev.At
		s.LoadErr = ""
		return s, nil
	case LoadFailed:
		s.Loaded = true
		s.Loading = false
		s.LoadErr = MsgFetchFailed
		var fetchErr *catalog.FetchError
		if errors.As(ev.Err, &fetchErr) {
			s.LoadErr = fetchErr.Message()
		}
		return s, nil
	case MutationSucceeded:
		var msg string
		switch ev.Op {
		case catalog.OpDelete:
			msg = MsgDeleted
			s.DeleteDialog = s.DeleteDialog.Close()
		case catalog.OpUpdate:
			msg = MsgUpdated
			s.ProductDialog = s.ProductDialog.Close()
		default:
			msg = MsgCreated
			s.ProductDialog = s.ProductDialog.Close()
		}
		return s, []Effect{FetchList{}, ShowToast{Message: msg}}
	case MutationFailed:
		msg := (&catalog.MutationError{Op: ev.Op}).Message()
		var mutErr *catalog.MutationError
		if errors.As(ev.Err, &mutErr) {
			msg = mutErr.Message()
		}
		return s, []Effect{ShowToast{Message: msg, Error: true}}
	default:
		return s, nil
	}
}

func reduceRowAction(s State, ev RowAction) (State, []Effect) {
	switch ev.Action {
	case ActionEdit, ActionDelete:
	default:
		return s, nil
	}

	p, ok := s.find(ev.ID)
	if !ok {
		return s, []Effect{ShowToast{Message: MsgProductNotFound, Error: true}}
	}
	if ev.Action == ActionEdit {
		s.ProductDialog = s.ProductDialog.OpenFor(&p)
	} else {
		s.DeleteDialog = s.DeleteDialog.OpenFor(p.ID, p.Name)
	}
	return s, nil
}

func reduceSubmit(s State, ev Submit) (State, []Effect) {
	// A submit for a dialog that is already closed is a duplicate of one
	// that succeeded.
	if !s.ProductDialog.Open {
		return s, nil
	}
	s.ProductDialog.Form = ev.Form

	draft, err := product.NewDraft(ev.Form.Name, ev.Form.Price, ev.Form.Imagem)
	switch {
	case errors.Is(err, product.ErrInvalidPrice):
		return s, []Effect{ShowToast{Message: MsgInvalidPrice, Error: true}}
	case errors.Is(err, product.ErrNameRequired):
		return s, []Effect{ShowToast{Message: MsgNameRequired, Error: true}}
	case err != nil:
		return s, []Effect{ShowToast{Message: err.Error(), Error: true}}
	}

	if id := s.ProductDialog.ID; id != "" {
		return s, []Effect{UpdateProduct{ID: id, Draft: draft}}
	}
	return s, []Effect{CreateProduct{Draft: draft}}
}
