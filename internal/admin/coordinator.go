package admin

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/go-faster/sdk/zctx"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
	"go.uber.org/zap"

	"github.com/xenking/catalog-admin/internal/catalog"
	"github.com/xenking/catalog-admin/internal/domain/product"
)

// DefaultToastTTL is how long a toast stays visible.
const DefaultToastTTL = 3 * time.Second

// Catalog performs product mutations.
type Catalog interface {
	Create(ctx context.Context, draft product.Draft) (product.Product, error)
	Update(ctx context.Context, id string, draft product.Draft) (product.Product, error)
	Delete(ctx context.Context, id string) (product.Product, error)
}

// Cache is the shared product snapshot.
type Cache interface {
	Reload(ctx context.Context) ([]product.Product, time.Time, error)
	Invalidate()
	Snapshot() []product.Product
	LoadedAt() time.Time
}

// Options configures a Coordinator.
type Options struct {
	ToastTTL       time.Duration
	TracerProvider trace.TracerProvider
	// Now defaults to time.Now.
	Now func() time.Time
}

// Coordinator owns the State of one session and runs the effects Reduce
// asks for.
//
// Dispatch calls are serialized, so a second submit of the same form waits
// for the first to finish and then finds the dialog already closed. State
// may be read while a dispatch is in flight and shows its intermediate
// steps, such as the loading placeholder.
type Coordinator struct {
	catalog Catalog
	cache   Cache
	ttl     time.Duration
	now     func() time.Time
	tracer  trace.Tracer

	dispatch sync.Mutex

	mu    sync.RWMutex
	state State
}

// NewCoordinator returns a Coordinator with an empty, not yet loaded state.
func NewCoordinator(c Catalog, cache Cache, opts Options) *Coordinator {
	if opts.ToastTTL <= 0 {
		opts.ToastTTL = DefaultToastTTL
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.TracerProvider == nil {
		opts.TracerProvider = noop.NewTracerProvider()
	}
	return &Coordinator{
		catalog: c,
		cache:   cache,
		ttl:     opts.ToastTTL,
		now:     opts.Now,
		tracer:  opts.TracerProvider.Tracer("github.com/xenking/catalog-admin/internal/admin"),
	}
}

// State returns a copy of the current state without expired toasts.
func (c *Coordinator) State() State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state.clone().pruneToasts(c.now())
}

// Dispatch reduces ev and every event produced by running its effects,
// until no effects remain.
func (c *Coordinator) Dispatch(ctx context.Context, ev Event) {
	c.dispatch.Lock()
	defer c.dispatch.Unlock()

	ctx, span := c.tracer.Start(ctx, "admin.Dispatch",
		trace.WithAttributes(attribute.String("admin.event", eventName(ev))),
	)
	defer span.End()

	queue := []Event{ev}
	for len(queue) > 0 {
		ev, queue = queue[0], queue[1:]

		c.mu.Lock()
		next, effects := Reduce(c.state, ev)
		c.state = next
		c.mu.Unlock()

		for _, eff := range effects {
			if out := c.run(ctx, eff); out != nil {
				queue = append(queue, out)
			}
		}
	}
}

func (c *Coordinator) run(ctx context.Context, eff Effect) Event {
	lg := zctx.From(ctx)
	span := trace.SpanFromContext(ctx)

	switch eff := eff.(type) {
	case FetchList:
		if eff.PreferSnapshot {
			if at := c.cache.LoadedAt(); !at.IsZero() {
				return Loaded{Products: c.cache.Snapshot(), At: at}
			}
		}
		products, at, err := c.cache.Reload(ctx)
		if err != nil {
			lg.Error("Load products", zap.Error(err))
			span.RecordError(err)
			span.SetStatus(codes.Error, "load products")
			return LoadFailed{Err: err}
		}
		return Loaded{Products: products, At: at}
	case ReadSnapshot:
		return Synced{Products: c.cache.Snapshot(), At: c.cache.LoadedAt()}
	case CreateProduct:
		_, err := c.catalog.Create(ctx, eff.Draft)
		return c.mutated(ctx, catalog.OpCreate, err)
	case UpdateProduct:
		_, err := c.catalog.Update(ctx, eff.ID, eff.Draft)
		return c.mutated(ctx, catalog.OpUpdate, err)
	case DeleteProduct:
		_, err := c.catalog.Delete(ctx, eff.ID)
		return c.mutated(ctx, catalog.OpDelete, err)
	case ShowToast:
		c.toast(eff)
		return nil
	default:
		lg.Warn("Unknown effect", zap.String("effect", fmt.Sprintf("%T", eff)))
		return nil
	}
}

func (c *Coordinator) mutated(ctx context.Context, op catalog.Op, err error) Event {
	if err != nil {
		zctx.From(ctx).Error("Mutate product", zap.String("op", string(op)), zap.Error(err))
		span := trace.SpanFromContext(ctx)
		span.RecordError(err)
		span.SetStatus(codes.Error, string(op)+" product")
		return MutationFailed{Op: op, Err: err}
	}
	c.cache.Invalidate()
	return MutationSucceeded{Op: op}
}

func (c *Coordinator) toast(eff ShowToast) {
	now := c.now()

	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = c.state.pruneToasts(now)
	c.state.Toasts = append(c.state.Toasts, Toast{
		ID:      uuid.NewString(),
		Message: eff.Message,
		Error:   eff.Error,
		Expires: now.Add(c.ttl),
	})
}

// eventName returns the bare type name of ev, e.g. "Submit".
func eventName(ev Event) string {
	name := fmt.Sprintf("%T", ev)
	if i := strings.LastIndexByte(name, '.'); i >= 0 {
		name = name[i+1:]
	}
	return name
}
