package app

import (
	"context"
	"net/http"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/text/language"

	"github.com/xenking/catalog-admin/internal/admin"
	"github.com/xenking/catalog-admin/internal/cache"
	"github.com/xenking/catalog-admin/internal/catalog"
	"github.com/xenking/catalog-admin/internal/handler"
	"github.com/xenking/catalog-admin/internal/view"
	"github.com/xenking/catalog-admin/pkg/health"
	"github.com/xenking/catalog-admin/pkg/httpmiddleware"
)

const serviceName = "catalog-admin"

// server is the wired dependency graph of the admin panel.
type server struct {
	handler  http.Handler
	health   *health.Health
	sessions *handler.Sessions
	cache    *cache.Cache
}

// newServer builds every dependency and the middleware chain. Background
// work is started by Run.
func newServer(ctx context.Context, m httpmiddleware.Telemetry, cfg *Config) (*server, error) {
	client, err := catalog.NewClient(cfg.Catalog.URL, catalog.Options{
		MeterProvider:  m.MeterProvider(),
		TracerProvider: m.TracerProvider(),
	})
	if err != nil {
		return nil, errors.Wrap(err, "create catalog client")
	}

	locale, err := language.Parse(cfg.UI.Locale)
	if err != nil {
		return nil, errors.Wrap(err, "parse locale")
	}
	products := cache.New(client, locale)

	renderer, err := view.New(view.Options{
		Title:            cfg.UI.Title,
		Currency:         cfg.UI.Currency,
		PlaceholderImage: cfg.UI.PlaceholderImage,
	})
	if err != nil {
		return nil, errors.Wrap(err, "create renderer")
	}

	sessions := handler.NewSessions(handler.SessionConfig{
		Secret: []byte(cfg.Session.Secret),
		TTL:    cfg.Session.TTL,
		Secure: cfg.Session.Secure,
		Max:    cfg.Session.Max,
	}, func() *admin.Coordinator {
		return admin.NewCoordinator(client, products, admin.Options{
			ToastTTL:       cfg.UI.ToastTTL,
			TracerProvider: m.TracerProvider(),
		})
	})
	h := handler.NewHandler(sessions, renderer, products)

	healthSvc := health.New()
	healthSvc.AddLiveness(health.Check{
		Name:    "goroutines",
		Timeout: time.Second,
		Func:    health.GoroutineCountCheck(10000),
	})
	healthSvc.AddLiveness(health.Check{
		Name:    "gc",
		Timeout: time.Second,
		Func:    health.GCMaxPauseCheck(time.Second),
	})
	healthSvc.AddReadiness(health.Check{
		Name:    "catalog",
		Timeout: 5 * time.Second,
		Func:    health.PingCheck(client),
	})

	mux := http.NewServeMux()
	mux.HandleFunc("GET /livez", healthSvc.LiveEndpoint)
	mux.HandleFunc("GET /readyz", healthSvc.ReadyEndpoint)
	mux.Handle("/api/", httpmiddleware.CORS(httpmiddleware.CORSConfig{
		AllowOrigins: cfg.CORS.Origins,
		MaxAge:       86400,
	})(h.API()))
	h.Register(mux)

	routeFinder := httpmiddleware.MakeRouteFinder(mux)
	return &server{
		handler: httpmiddleware.Wrap(mux,
			httpmiddleware.Recovery(),
			httpmiddleware.RequestID(),
			httpmiddleware.InjectLogger(zctx.From(ctx)),
			httpmiddleware.Instrument(serviceName, routeFinder, m),
			httpmiddleware.LogRequests(routeFinder),
			httpmiddleware.Compress(),
			httpmiddleware.RateLimit(ctx, httpmiddleware.RateLimitConfig{
				Max:     cfg.RateLimit.Max,
				Window:  cfg.RateLimit.Window,
				Methods: []string{http.MethodPost},
				KeyFunc: sessions.SessionKey,
			}),
		),
		health:   healthSvc,
		sessions: sessions,
		cache:    products,
	}, nil
}

// Run creates all dependencies, starts the HTTP server, and handles graceful
// shutdown. It is the single wiring point for the application.
func Run(ctx context.Context, lg *zap.Logger, m httpmiddleware.Telemetry, cfg *Config) error {
	lg.Info("Initializing",
		zap.String("addr", cfg.Addr),
		zap.String("catalog", cfg.Catalog.URL),
	)
	ctx = zctx.Base(ctx, lg)

	srv, err := newServer(ctx, m, cfg)
	if err != nil {
		return err
	}

	httpServer := &http.Server{
		ReadHeaderTimeout: time.Second,
		ReadTimeout:       5 * time.Second,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 20,
		Addr:              cfg.Addr,
		Handler:           srv.handler,
	}

	srv.health.Start(ctx, cfg.Catalog.ProbeInterval)
	defer srv.health.Stop()
	srv.health.SetReady(true)

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		// Warm the shared snapshot so the first page view is served from it.
		if _, _, err := srv.cache.Reload(gCtx); err != nil {
			lg.Warn("Initial catalog load failed", zap.Error(err))
		}
		return nil
	})
	g.Go(func() error {
		srv.sessions.Run(gCtx, time.Minute)
		return nil
	})
	g.Go(func() error {
		lg.Info("Server listening", zap.String("addr", cfg.Addr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return errors.Wrap(err, "server")
		}
		return nil
	})
	g.Go(func() error {
		<-gCtx.Done()
		srv.health.SetReady(false)
		if ctx.Err() != nil {
			lg.Info("Readiness set to false, draining", zap.Duration("delay", cfg.Graceful.ReadinessDelay))
			time.Sleep(cfg.Graceful.ReadinessDelay)
		}

		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cfg.Graceful.ShutdownTimeout)
		defer cancel()

		lg.Info("Shutting down server", zap.Duration("timeout", cfg.Graceful.ShutdownTimeout))
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return errors.Wrap(err, "shutdown")
		}
		return nil
	})
	return g.Wait()
}
