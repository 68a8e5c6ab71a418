package catalogmock

import (
	"strings"

	"github.com/go-faster/errors"
	"github.com/gofiber/fiber/v2"
)

// Handler exposes a Store over the catalog REST routes.
type Handler struct {
	store *Store
}

// NewHandler returns a Handler backed by store.
func NewHandler(store *Store) *Handler {
	return &Handler{store: store}
}

// NewApp builds a fiber app with the catalog routes registered.
func NewApp(store *Store) *fiber.App {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		AppName:               "catalog-mock",
	})
	NewHandler(store).RegisterRoutes(app)
	return app
}

// RegisterRoutes mounts the product collection routes on app.
func (h *Handler) RegisterRoutes(app *fiber.App) {
	app.Get("/products", h.listProducts)
	app.Post("/products", h.createProduct)
	app.Put("/products/:id", h.updateProduct)
	app.Delete("/products/:id", h.deleteProduct)
}

func (h *Handler) listProducts(c *fiber.Ctx) error {
	return c.JSON(h.store.List())
}

func (h *Handler) createProduct(c *fiber.Ctx) error {
	p := new(Product)
	if err := c.BodyParser(p); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}
	if ves := validatePayload(p); len(ves) > 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"errors": ves})
	}
	return c.Status(fiber.StatusCreated).JSON(h.store.Create(*p))
}

func (h *Handler) updateProduct(c *fiber.Ctx) error {
	p := new(Product)
	if err := c.BodyParser(p); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}
	if ves := validatePayload(p); len(ves) > 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"errors": ves})
	}

	updated, err := h.store.Update(c.Params("id"), *p)
	if err != nil {
		return notFound(c, err)
	}
	return c.JSON(updated)
}

func (h *Handler) deleteProduct(c *fiber.Ctx) error {
	deleted, err := h.store.Delete(c.Params("id"))
	if err != nil {
		return notFound(c, err)
	}
	return c.JSON(deleted)
}

func notFound(c *fiber.Ctx, err error) error {
	if errors.Is(err, ErrNotFound) {
		return c.Status(fiber.StatusNotFound).JSON("Not found")
	}
	return err
}

func validatePayload(p *Product) map[string]string {
	errs := map[string]string{}
	p.Name = strings.TrimSpace(p.Name)
	if p.Name == "" {
		errs["name"] = "name is required"
	}
	if p.Price.IsNegative() {
		errs["price"] = "price must be >= 0"
	}
	return errs
}
