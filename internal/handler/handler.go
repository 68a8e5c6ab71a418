// Package handler exposes the admin panel over HTTP.
//
// Every interaction is a plain HTML form post. The handler turns it into an
// admin.Event, dispatches it on the session's coordinator and redirects back
// to the page (Post/Redirect/Get).
package handler

import (
	"bytes"
	"net/http"
	"time"

	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/xenking/catalog-admin/internal/admin"
	"github.com/xenking/catalog-admin/internal/catalog"
	"github.com/xenking/catalog-admin/internal/domain/product"
	"github.com/xenking/catalog-admin/internal/view"
)

// Snapshotter provides the shared product snapshot.
type Snapshotter interface {
	Snapshot() []product.Product
	// LoadedAt is zero until the snapshot has been loaded once.
	LoadedAt() time.Time
}

// Handler serves the admin page, its form actions and the JSON snapshot.
type Handler struct {
	sessions *Sessions
	renderer *view.Renderer
	snapshot Snapshotter
	now      func() time.Time
}

// NewHandler constructs a Handler.
func NewHandler(sessions *Sessions, renderer *view.Renderer, snapshot Snapshotter) *Handler {
	return &Handler{
		sessions: sessions,
		renderer: renderer,
		snapshot: snapshot,
		now:      time.Now,
	}
}

// Register mounts the page and its form actions on mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /{$}", h.page)
	mux.HandleFunc("POST /refresh", h.action(func(*http.Request) admin.Event {
		return admin.Refresh{}
	}))
	mux.HandleFunc("POST /products/new", h.action(func(*http.Request) admin.Event {
		return admin.OpenProductDialog{}
	}))
	mux.HandleFunc("POST /products/{id}/edit", h.action(func(r *http.Request) admin.Event {
		return admin.RowAction{Action: admin.ActionEdit, ID: r.PathValue("id")}
	}))
	mux.HandleFunc("POST /products/{id}/delete", h.action(func(r *http.Request) admin.Event {
		return admin.RowAction{Action: admin.ActionDelete, ID: r.PathValue("id")}
	}))
	mux.HandleFunc("POST /dialog/product", h.action(func(r *http.Request) admin.Event {
		return admin.Submit{Form: admin.ProductForm{
			Name:   r.PostFormValue("name"),
			Price:  r.PostFormValue("price"),
			Imagem: r.PostFormValue("imagem"),
		}}
	}))
	mux.HandleFunc("POST /dialog/product/close", h.action(func(r *http.Request) admin.Event {
		return admin.CloseProductDialog{Via: admin.ParseVia(r.PostFormValue("via"))}
	}))
	mux.HandleFunc("POST /dialog/delete/confirm", h.action(func(*http.Request) admin.Event {
		return admin.ConfirmDelete{}
	}))
	mux.HandleFunc("POST /dialog/delete/close", h.action(func(r *http.Request) admin.Event {
		return admin.CloseDeleteDialog{Via: admin.ParseVia(r.PostFormValue("via"))}
	}))
}

// API returns the read-only JSON endpoints, to be mounted under /api/.
func (h *Handler) API() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/products", h.products)
	return mux
}

// maxFormBytes bounds form bodies.
const maxFormBytes = 64 << 10

// action adapts an event constructor to a form post handler.
func (h *Handler) action(decode func(r *http.Request) admin.Event) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxFormBytes)
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Bad Request", http.StatusBadRequest)
			return
		}

		coord := h.sessions.Coordinator(w, r)
		coord.Dispatch(r.Context(), decode(r))
		http.Redirect(w, r, "/", http.StatusSeeOther)
	}
}

func (h *Handler) page(w http.ResponseWriter, r *http.Request) {
	coord := h.sessions.Coordinator(w, r)
	if s := coord.State(); !s.Loaded && h.snapshot.LoadedAt().IsZero() {
		h.streamPage(w, r, coord, s)
		return
	}
	coord.Dispatch(r.Context(), admin.Load{})

	var buf bytes.Buffer
	if err := h.renderer.RenderPage(&buf, pageFromState(coord.State(), h.now())); err != nil {
		zctx.From(r.Context()).Error("Render page", zap.Error(err))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	_, _ = w.Write(buf.Bytes())
}

// streamPage sends the page up to the loading row before the first list
// fetch, then the rest of the page once the fetch is done.
func (h *Handler) streamPage(w http.ResponseWriter, r *http.Request, coord *admin.Coordinator, s admin.State) {
	lg := zctx.From(r.Context())

	head := pageFromState(s, h.now())
	head.Loading = true
	var buf bytes.Buffer
	if err := h.renderer.RenderPageHead(&buf, head); err != nil {
		lg.Error("Render page", zap.Error(err))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	_, _ = w.Write(buf.Bytes())
	if err := http.NewResponseController(w).Flush(); err != nil {
		lg.Debug("Flush page head", zap.Error(err))
	}

	coord.Dispatch(r.Context(), admin.Load{})

	buf.Reset()
	if err := h.renderer.RenderPageTail(&buf, pageFromState(coord.State(), h.now())); err != nil {
		// The status line is already out.
		lg.Error("Render page tail", zap.Error(err))
		return
	}
	_, _ = w.Write(buf.Bytes())
}

func (h *Handler) products(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(catalog.EncodeProducts(h.snapshot.Snapshot()))
}

// pageFromState maps the session state onto the page view model.
func pageFromState(s admin.State, now time.Time) view.Page {
	p := view.Page{
		Products:  s.Products,
		Loading:   s.Loading,
		LoadError: s.LoadErr,
		ProductDialog: view.ProductDialog{
			Open:   s.ProductDialog.Open,
			Mode:   view.ModeCreate,
			Name:   s.ProductDialog.Form.Name,
			Price:  s.ProductDialog.Form.Price,
			Imagem: s.ProductDialog.Form.Imagem,
		},
		DeleteDialog: view.DeleteDialog{
			Open: s.DeleteDialog.Open,
			Name: s.DeleteDialog.TargetName,
		},
	}
	if s.ProductDialog.Mode == admin.ModeEdit {
		p.ProductDialog.Mode = view.ModeEdit
	}
	for _, t := range s.Toasts {
		p.Toasts = append(p.Toasts, view.Toast{
			ID:        t.ID,
			Message:   t.Message,
			Error:     t.Error,
			Remaining: t.Expires.Sub(now),
		})
	}
	return p
}
