// Command catalog-mock serves an in-memory product catalog speaking the same
// REST dialect as the remote catalog, for local development and the
// integration suite.
package main

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/app"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/xenking/catalog-admin/internal/catalogmock"
)

func main() {
	app.Run(func(ctx context.Context, lg *zap.Logger, _ *app.Telemetry) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		seed, err := catalogmock.LoadSeedFile(cfg.SeedFile)
		if err != nil {
			return err
		}
		server := catalogmock.NewApp(catalogmock.NewStore(seed))

		g, gCtx := errgroup.WithContext(ctx)
		g.Go(func() error {
			lg.Info("Catalog listening",
				zap.String("addr", cfg.Addr),
				zap.Int("products", len(seed)),
			)
			if err := server.Listen(cfg.Addr); err != nil {
				return errors.Wrap(err, "listen")
			}
			return nil
		})
		g.Go(func() error {
			<-gCtx.Done()
			lg.Info("Shutting down catalog", zap.Duration("timeout", cfg.ShutdownTimeout))
			return server.ShutdownWithTimeout(cfg.ShutdownTimeout)
		})
		return g.Wait()
	})
}
