package admin

import (
	"testing"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xenking/catalog-admin/internal/catalog"
	"github.com/xenking/catalog-admin/internal/domain/product"
)

func loadedState() State {
	return State{
		Loaded: true,
		Products: []product.Product{
			{ID: "1", Name: "A", Price: decimal.RequireFromString("3"), Imagem: "a.png"},
			{ID: "2", Name: "B", Price: decimal.RequireFromString("5.5"), Imagem: "b.png"},
		},
	}
}

func TestReduce_Load(t *testing.T) {
	s, effects := Reduce(State{}, Load{})
	assert.True(t, s.Loading)
	assert.Equal(t, []Effect{FetchList{PreferSnapshot: true}}, effects)

	s, effects = Reduce(loadedState(), Load{})
	assert.False(t, s.Loading)
	assert.Equal(t, []Effect{ReadSnapshot{}}, effects)
}

func TestReduce_LoadedAndFailed(t *testing.T) {
	at := time.Date(2024, 7, 11, 20, 0, 0, 0, time.UTC)
	products := []product.Product{{ID: "1", Name: "A"}}

	s, effects := Reduce(State{Loading: true, LoadErr: "old"}, Loaded{Products: products, At: at})
	assert.Empty(t, effects)
	assert.True(t, s.Loaded)
	assert.False(t, s.Loading)
	assert.Empty(t, s.LoadErr)
	assert.Equal(t, products, s.Products)
	assert.Equal(t, at, s.SyncedAt)

	s, effects = Reduce(s, LoadFailed{Err: &catalog.FetchError{Status: 500}})
	assert.Empty(t, effects)
	assert.Equal(t, "could not fetch products", s.LoadErr)
	assert.Equal(t, products, s.Products, "old list is kept")

	s, _ = Reduce(State{Loading: true}, LoadFailed{Err: errors.New("boom")})
	assert.Equal(t, MsgFetchFailed, s.LoadErr)
	assert.True(t, s.Loaded)
}

func TestReduce_Synced(t *testing.T) {
	at := time.Date(2024, 7, 11, 20, 0, 0, 0, time.UTC)
	s := loadedState()
	s.SyncedAt = at
	s.LoadErr = "could not fetch products"

	stale, _ := Reduce(s, Synced{Products: nil, At: at})
	assert.Len(t, stale.Products, 2)
	assert.NotEmpty(t, stale.LoadErr)

	fresh, _ := Reduce(s, Synced{Products: []product.Product{{ID: "9", Name: "Z"}}, At: at.Add(time.Second)})
	require.Len(t, fresh.Products, 1)
	assert.Equal(t, "9", fresh.Products[0].ID)
	assert.Empty(t, fresh.LoadErr)
}

func TestReduce_OpenProductDialog(t *testing.T) {
	s := loadedState()
	s.ProductDialog = ProductDialog{Open: true, Mode: ModeEdit, ID: "1", Form: ProductForm{Name: "stale"}}

	s, effects := Reduce(s, OpenProductDialog{})
	assert.Empty(t, effects)
	assert.Equal(t, ProductDialog{Open: true, Mode: ModeCreate}, s.ProductDialog)
}

func TestReduce_RowAction(t *testing.T) {
	t.Run("edit", func(t *testing.T) {
		s, effects := Reduce(loadedState(), RowAction{Action: ActionEdit, ID: "2"})
		assert.Empty(t, effects)
		assert.Equal(t, ProductDialog{
			Open: true,
			Mode: ModeEdit,
			ID:   "2",
			Form: ProductForm{Name: "B", Price: "5.50", Imagem: "b.png"},
		}, s.ProductDialog)
	})

	t.Run("delete", func(t *testing.T) {
		s, effects := Reduce(loadedState(), RowAction{Action: ActionDelete, ID: "1"})
		assert.Empty(t, effects)
		assert.Equal(t, DeleteDialog{Open: true, TargetID: "1", TargetName: "A"}, s.DeleteDialog)
		assert.False(t, s.ProductDialog.Open)
	})

	t.Run("unknown id", func(t *testing.T) {
		s, effects := Reduce(loadedState(), RowAction{Action: ActionEdit, ID: "404"})
		assert.False(t, s.ProductDialog.Open, "must not fall back to create mode")
		assert.Equal(t, []Effect{ShowToast{Message: MsgProductNotFound, Error: true}}, effects)
	})

	t.Run("unknown action", func(t *testing.T) {
		s, effects := Reduce(loadedState(), RowAction{Action: "archive", ID: "1"})
		assert.Empty(t, effects)
		assert.Equal(t, loadedState(), s)
	})
}

func TestReduce_CloseDialogs(t *testing.T) {
	for _, via := range []Via{ViaClose, ViaCancel, ViaBackdrop} {
		t.Run(string(via), func(t *testing.T) {
			s := loadedState()
			s, _ = Reduce(s, RowAction{Action: ActionEdit, ID: "1"})
			require.True(t, s.ProductDialog.Open)

			s, effects := Reduce(s, CloseProductDialog{Via: via})
			assert.Empty(t, effects)
			assert.Equal(t, ProductDialog{}, s.ProductDialog)

			s, _ = Reduce(s, RowAction{Action: ActionDelete, ID: "2"})
			require.True(t, s.DeleteDialog.Open)

			s, effects = Reduce(s, CloseDeleteDialog{Via: via})
			assert.Empty(t, effects)
			assert.Equal(t, DeleteDialog{}, s.DeleteDialog)
			assert.Empty(t, s.DeleteDialog.TargetID)
		})
	}
}

func TestReduce_Submit(t *testing.T) {
	tests := []struct {
		name        string
		dialog      ProductDialog
		form        ProductForm
		wantEffects []Effect
	}{
		{
			name:   "create",
			dialog: ProductDialog{Open: true, Mode: ModeCreate},
			form:   ProductForm{Name: " Widget ", Price: "9,99", Imagem: "u"},
			wantEffects: []Effect{CreateProduct{Draft: product.Draft{
				Name: "Widget", Price: decimal.RequireFromString("9.99"), Imagem: "u",
			}}},
		},
		{
			name:   "update",
			dialog: ProductDialog{Open: true, Mode: ModeEdit, ID: "2"},
			form:   ProductForm{Name: "B", Price: "7", Imagem: ""},
			wantEffects: []Effect{UpdateProduct{ID: "2", Draft: product.Draft{
				Name: "B", Price: decimal.RequireFromString("7"),
			}}},
		},
		{
			name:        "invalid price",
			dialog:      ProductDialog{Open: true, Mode: ModeCreate},
			form:        ProductForm{Name: "Widget", Price: "abc"},
			wantEffects: []Effect{ShowToast{Message: "invalid price", Error: true}},
		},
		{
			name:        "invalid price on update",
			dialog:      ProductDialog{Open: true, Mode: ModeEdit, ID: "2"},
			form:        ProductForm{Name: "B", Price: "-1"},
			wantEffects: []Effect{ShowToast{Message: "invalid price", Error: true}},
		},
		{
			name:        "blank name",
			dialog:      ProductDialog{Open: true, Mode: ModeCreate},
			form:        ProductForm{Name: "  ", Price: "1"},
			wantEffects: []Effect{ShowToast{Message: MsgNameRequired, Error: true}},
		},
		{
			name:        "dialog already closed",
			dialog:      ProductDialog{},
			form:        ProductForm{Name: "Widget", Price: "1"},
			wantEffects: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := loadedState()
			s.ProductDialog = tt.dialog

			s, effects := Reduce(s, Submit{Form: tt.form})
			assert.Equal(t, printable(tt.wantEffects), printable(effects))
			assert.Equal(t, tt.dialog.Open, s.ProductDialog.Open, "dialog stays as it was until the outcome")
			if tt.dialog.Open {
				assert.Equal(t, tt.form, s.ProductDialog.Form, "input is kept")
			}
		})
	}
}

type draftView struct {
	Kind  string
	ID    string
	Name  string
	Price string
}

// printable replaces drafts with their printed form so decimals with
// different internal scale compare equal.
func printable(effects []Effect) []any {
	var out []any
	for _, eff := range effects {
		switch eff := eff.(type) {
		case CreateProduct:
			out = append(out, draftView{Kind: "create", Name: eff.Draft.Name, Price: eff.Draft.Price.String()})
		case UpdateProduct:
			out = append(out, draftView{Kind: "update", ID: eff.ID, Name: eff.Draft.Name, Price: eff.Draft.Price.String()})
		default:
			out = append(out, eff)
		}
	}
	return out
}

func TestReduce_ConfirmDelete(t *testing.T) {
	t.Run("no target", func(t *testing.T) {
		s, effects := Reduce(loadedState(), ConfirmDelete{})
		assert.Empty(t, effects)
		assert.Equal(t, loadedState(), s)
	})

	t.Run("open without id", func(t *testing.T) {
		s := loadedState()
		s.DeleteDialog = DeleteDialog{Open: true}
		_, effects := Reduce(s, ConfirmDelete{})
		assert.Empty(t, effects)
	})

	t.Run("target", func(t *testing.T) {
		s, _ := Reduce(loadedState(), RowAction{Action: ActionDelete, ID: "2"})
		s, effects := Reduce(s, ConfirmDelete{})
		assert.Equal(t, []Effect{DeleteProduct{ID: "2"}}, effects)
		assert.True(t, s.DeleteDialog.Open, "closed only once the delete succeeds")
	})
}

func TestReduce_MutationOutcome(t *testing.T) {
	t.Run("create succeeded", func(t *testing.T) {
		s := loadedState()
		s.ProductDialog = ProductDialog{Open: true, Mode: ModeCreate, Form: ProductForm{Name: "W"}}

		s, effects := Reduce(s, MutationSucceeded{Op: catalog.OpCreate})
		assert.Equal(t, ProductDialog{}, s.ProductDialog)
		assert.Equal(t, []Effect{FetchList{}, ShowToast{Message: MsgCreated}}, effects)
	})

	t.Run("update succeeded", func(t *testing.T) {
		s := loadedState()
		s.ProductDialog = ProductDialog{Open: true, Mode: ModeEdit, ID: "1"}

		s, effects := Reduce(s, MutationSucceeded{Op: catalog.OpUpdate})
		assert.False(t, s.ProductDialog.Open)
		assert.Equal(t, []Effect{FetchList{}, ShowToast{Message: MsgUpdated}}, effects)
	})

	t.Run("delete succeeded", func(t *testing.T) {
		s := loadedState()
		s.DeleteDialog = DeleteDialog{Open: true, TargetID: "1", TargetName: "A"}

		s, effects := Reduce(s, MutationSucceeded{Op: catalog.OpDelete})
		assert.Equal(t, DeleteDialog{}, s.DeleteDialog)
		assert.Equal(t, []Effect{FetchList{}, ShowToast{Message: MsgDeleted}}, effects)
	})

	t.Run("failed", func(t *testing.T) {
		s := loadedState()
		s.ProductDialog = ProductDialog{Open: true, Mode: ModeEdit, ID: "1", Form: ProductForm{Name: "typed"}}

		got, effects := Reduce(s, MutationFailed{
			Op:  catalog.OpUpdate,
			Err: &catalog.MutationError{Op: catalog.OpUpdate, Status: 500},
		})
		assert.Equal(t, s, got)
		assert.Equal(t, []Effect{ShowToast{Message: "failed to update product", Error: true}}, effects)
	})
}

func TestParseVia(t *testing.T) {
	assert.Equal(t, ViaBackdrop, ParseVia("backdrop"))
	assert.Equal(t, ViaCancel, ParseVia("cancel"))
	assert.Equal(t, ViaClose, ParseVia(""))
	assert.Equal(t, ViaClose, ParseVia("anything"))
}
