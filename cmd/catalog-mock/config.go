package main

import (
	"os"
	"time"

	"github.com/cristalhq/aconfig"
	"github.com/go-faster/errors"
)

// Config configures the catalog stand-in, loadable from environment variables
// (CATALOG_MOCK_ prefix) or flags.
type Config struct {
	Addr            string        `default:"0.0.0.0:3000" usage:"Listen address"`
	SeedFile        string        `usage:"JSON file with the initial products; bundled demo catalog when empty" flag:"seed-file"`
	ShutdownTimeout time.Duration `default:"5s" usage:"Maximum shutdown duration" flag:"shutdown-timeout"`
}

func loadConfig() (*Config, error) {
	var cfg Config
	loader := aconfig.LoaderFor(&cfg, aconfig.Config{
		EnvPrefix: "CATALOG_MOCK",
		SkipFiles: true,
	})
	if err := loader.Load(); err != nil {
		return nil, errors.Wrap(err, "load config")
	}
	if port := os.Getenv("PORT"); port != "" && cfg.Addr == "0.0.0.0:3000" {
		cfg.Addr = "0.0.0.0:" + port
	}
	return &cfg, nil
}
