// Package view renders the admin panel HTML.
package view

import (
	"embed"
	"html/template"
	"io"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/xenking/catalog-admin/internal/domain/product"
)

//go:embed templates/*.html
var templates embed.FS

// DefaultPlaceholderImage is shown when a product image fails to load.
const DefaultPlaceholderImage = "https://placehold.co/64x64/EEE/31343C?text=Image"

// Options configures a Renderer.
type Options struct {
	Title            string
	Currency         string
	PlaceholderImage string
}

// Renderer turns view models into HTML. It is safe for concurrent use.
type Renderer struct {
	opts Options
	tmpl *template.Template
}

// New parses the embedded templates.
func New(opts Options) (*Renderer, error) {
	if opts.Title == "" {
		opts.Title = "Products"
	}
	if opts.Currency == "" {
		opts.Currency = "R$"
	}
	if opts.PlaceholderImage == "" {
		opts.PlaceholderImage = DefaultPlaceholderImage
	}

	funcs := template.FuncMap{
		"price": func(d decimal.Decimal) string {
			return opts.Currency + " " + d.StringFixed(2)
		},
		"millis": func(d time.Duration) int64 {
			return d.Milliseconds()
		},
	}
	tmpl, err := template.New("view").Funcs(funcs).ParseFS(templates, "templates/*.html")
	if err != nil {
		return nil, errors.Wrap(err, "parse templates")
	}
	return &Renderer{opts: opts, tmpl: tmpl}, nil
}

// Mode tells whether the product dialog creates or edits.
type Mode string

const (
	ModeCreate Mode = "create"
	ModeEdit   Mode = "edit"
)

// ProductDialog is the view model of the create/edit dialog.
type ProductDialog struct {
	Open   bool
	Mode   Mode
	Name   string
	Price  string
	Imagem string
}

// DeleteDialog is the view model of the delete confirmation dialog.
type DeleteDialog struct {
	Open bool
	Name string
}

// Toast is a transient notification. Remaining is how long the page should
// keep showing it.
type Toast struct {
	ID        string
	Message   string
	Error     bool
	Remaining time.Duration
}

// Page is everything shown on the admin page.
type Page struct {
	Products      []product.Product
	Loading       bool
	LoadError     string
	ProductDialog ProductDialog
	DeleteDialog  DeleteDialog
	Toasts        []Toast
}

type tableData struct {
	Products    []product.Product
	Loading     bool
	LoadError   string
	Placeholder string
}

type pageData struct {
	Page
	Title string
	Table tableData
}

// RenderTable writes the table body rows for products: one row per product in
// the given order, or a single placeholder row when there are none.
func (r *Renderer) RenderTable(w io.Writer, products []product.Product) error {
	return r.execute(w, "rows", tableData{
		Products:    products,
		Placeholder: r.opts.PlaceholderImage,
	})
}

// RenderPage writes the full admin document.
func (r *Renderer) RenderPage(w io.Writer, p Page) error {
	return r.execute(w, "page", r.pageData(p))
}

// RenderPageHead writes the document up to the table rows. When p.Loading
// is set it ends with the loading row, which stays visible until the rows
// written by RenderPageTail follow it.
func (r *Renderer) RenderPageHead(w io.Writer, p Page) error {
	return r.execute(w, "page_head", r.pageData(p))
}

// RenderPageTail writes the rest of the document after RenderPageHead.
func (r *Renderer) RenderPageTail(w io.Writer, p Page) error {
	return r.execute(w, "page_tail", r.pageData(p))
}

func (r *Renderer) pageData(p Page) pageData {
	return pageData{
		Page:  p,
		Title: r.opts.Title,
		Table: tableData{
			Products:    p.Products,
			Loading:     p.Loading,
			LoadError:   p.LoadError,
			Placeholder: r.opts.PlaceholderImage,
		},
	}
}

func (r *Renderer) execute(w io.Writer, name string, data any) error {
	if err := r.tmpl.ExecuteTemplate(w, name, data); err != nil {
		return errors.Wrapf(err, "render %s", name)
	}
	return nil
}
