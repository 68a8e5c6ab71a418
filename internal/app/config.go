package app

import (
	"crypto/rand"
	"os"
	"time"

	"github.com/cristalhq/aconfig"
	"github.com/cristalhq/aconfig/aconfigyaml"
	"github.com/go-faster/errors"
	"github.com/joho/godotenv"
	"golang.org/x/text/language"
)

const defaultAddr = "0.0.0.0:8080"

// Config holds the complete application configuration, loadable from
// environment variables (ADMIN_ prefix), flags, a .env file or YAML config
// files.
type Config struct {
	Addr      string `default:"0.0.0.0:8080" usage:"Admin panel listen address"`
	Catalog   CatalogConfig
	UI        UIConfig
	Session   SessionConfig
	RateLimit RateLimitConfig
	CORS      CORSConfig
	Graceful  GracefulConfig
}

// CatalogConfig points at the remote product catalog.
type CatalogConfig struct {
	URL           string        `usage:"Catalog service base URL (ADMIN_CATALOG_URL)" flag:"catalog-url"`
	ProbeInterval time.Duration `default:"10s" usage:"Interval between catalog readiness probes" flag:"probe-interval"`
}

// UIConfig controls how the page is rendered.
type UIConfig struct {
	Title            string        `default:"Products" usage:"Page title"`
	Locale           string        `default:"pt-BR" usage:"Locale used to sort product names"`
	Currency         string        `default:"R$" usage:"Currency symbol shown before prices"`
	PlaceholderImage string        `usage:"Image shown when a product image fails to load" flag:"placeholder-image"`
	ToastTTL         time.Duration `default:"3s" usage:"How long toasts stay visible" flag:"toast-ttl"`
}

// SessionConfig controls the session cookie.
type SessionConfig struct {
	Secret string        `usage:"HMAC secret signing session cookies; random per process when empty" flag:"session-secret"`
	TTL    time.Duration `default:"12h" usage:"Idle session lifetime" flag:"session-ttl"`
	Secure bool          `default:"false" usage:"Send the session cookie over HTTPS only" flag:"session-secure"`
	Max    int           `default:"10000" usage:"Maximum number of live sessions" flag:"session-max"`
}

// RateLimitConfig controls the fixed window limiter applied to form posts.
type RateLimitConfig struct {
	Max    int           `default:"60" usage:"Max form posts per session per window"`
	Window time.Duration `default:"1m" usage:"Rate limit window duration"`
}

// CORSConfig controls Cross-Origin Resource Sharing headers on /api.
type CORSConfig struct {
	Origins []string `default:"*" usage:"Allowed CORS origins"`
}

// GracefulConfig controls graceful shutdown timing.
type GracefulConfig struct {
	ReadinessDelay  time.Duration `default:"3s"  usage:"Delay after readiness=false before shutdown" flag:"readiness-delay"`
	ShutdownTimeout time.Duration `default:"15s" usage:"Maximum shutdown duration" flag:"shutdown-timeout"`
}

// LoadConfig loads configuration from .env, environment variables and YAML
// config files, and applies platform-specific defaults.
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, errors.Wrap(err, "load .env")
	}

	var cfg Config
	loader := aconfig.LoaderFor(&cfg, aconfig.Config{
		EnvPrefix: "ADMIN",
		Files:     []string{"config.yaml", "/etc/catalog-admin/config.yaml"},
		FileDecoders: map[string]aconfig.FileDecoder{
			".yaml": aconfigyaml.New(),
		},
	})
	if err := loader.Load(); err != nil {
		return nil, errors.Wrap(err, "load config")
	}
	cfg.applyPlatformDefaults()

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if cfg.Session.Secret == "" {
		cfg.Session.Secret = rand.Text()
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.Catalog.URL == "" {
		return errors.New("catalog URL is required: set ADMIN_CATALOG_URL or CATALOG_URL")
	}
	if _, err := language.Parse(c.UI.Locale); err != nil {
		return errors.Wrapf(err, "parse locale %q", c.UI.Locale)
	}
	if c.Catalog.ProbeInterval <= 0 {
		return errors.New("catalog probe interval must be positive")
	}
	if c.RateLimit.Max <= 0 || c.RateLimit.Window <= 0 {
		return errors.New("rate limit max and window must be positive")
	}
	return nil
}

// applyPlatformDefaults maps platform-provided environment variables that use
// standard names like PORT and CATALOG_URL to the ADMIN_-prefixed
// configuration.
func (c *Config) applyPlatformDefaults() {
	if c.Catalog.URL == "" {
		c.Catalog.URL = os.Getenv("CATALOG_URL")
	}
	if port := os.Getenv("PORT"); port != "" && c.Addr == defaultAddr {
		c.Addr = "0.0.0.0:" + port
	}
}
