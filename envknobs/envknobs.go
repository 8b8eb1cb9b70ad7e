package envknobs

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v11"
	"tailscale.com/util/multierr"
)

// Knobs are the settings read from the environment.
type Knobs struct {
	APIKey    string `env:"CHARGIFY_API_KEY"`
	Subdomain string `env:"CHARGIFY_SUBDOMAIN"`
	BaseURL   string `env:"CHARGIFY_BASE_URL"` // overrides Subdomain

	Addr string `env:"WPCHARGIFY_ADDR" envDefault:"localhost:8080"`

	RedisURL    string `env:"REDIS_URL"` // empty means options are kept in memory
	RedisPrefix string `env:"WPCHARGIFY_REDIS_PREFIX" envDefault:"wpchargify:"`

	DBDriver    string `env:"WPCHARGIFY_DB_DRIVER" envDefault:"sqlite3"`
	DatabaseURL string `env:"DATABASE_URL"`

	NonceKey      string        `env:"WPCHARGIFY_NONCE_KEY"`
	NonceMaxAge   time.Duration `env:"WPCHARGIFY_NONCE_MAX_AGE" envDefault:"24h"`
	SecureCookies bool          `env:"WPCHARGIFY_SECURE_COOKIES"`

	CatalogTTL time.Duration `env:"WPCHARGIFY_CATALOG_TTL" envDefault:"5m"`
	HooksFile  string        `env:"WPCHARGIFY_HOOKS_FILE"`
}

// Load reads Knobs from the process environment.
func Load() (Knobs, error) {
	return parse(env.Options{})
}

// LoadFrom reads Knobs from environ instead of the process environment.
func LoadFrom(environ map[string]string) (Knobs, error) {
	return parse(env.Options{Environment: environ})
}

func parse(opts env.Options) (Knobs, error) {
	var k Knobs
	if err := env.ParseWithOptions(&k, opts); err != nil {
		return Knobs{}, err
	}
	if k.DatabaseURL == "" && k.DBDriver == "sqlite3" {
		k.DatabaseURL = filepath.Join(XDGDataHome(), "wpchargify/users.db")
	}
	return k, nil
}

// ValidateRemote reports what is missing to talk to Chargify. The API key
// is not checked; it may come from the keyring.
func (k Knobs) ValidateRemote() error {
	if k.Subdomain == "" && k.BaseURL == "" {
		return errors.New("envknobs: CHARGIFY_SUBDOMAIN or CHARGIFY_BASE_URL must be set")
	}
	return nil
}

// ValidateServe reports every problem that keeps the signup server from
// starting.
func (k Knobs) ValidateServe() error {
	var errs []error
	errs = append(errs, k.ValidateRemote())
	switch k.DBDriver {
	case "sqlite3", "postgres":
	default:
		errs = append(errs, fmt.Errorf("envknobs: WPCHARGIFY_DB_DRIVER %q is not sqlite3 or postgres", k.DBDriver))
	}
	if k.DatabaseURL == "" {
		errs = append(errs, errors.New("envknobs: DATABASE_URL must be set"))
	}
	if len(k.NonceKey) < 32 {
		errs = append(errs, errors.New("envknobs: WPCHARGIFY_NONCE_KEY must be at least 32 bytes"))
	}
	if k.NonceMaxAge < time.Minute {
		errs = append(errs, fmt.Errorf("envknobs: WPCHARGIFY_NONCE_MAX_AGE %v is too short", k.NonceMaxAge))
	}
	return multierr.New(errs...)
}

func XDGDataHome() string {
	if e := os.Getenv("XDG_DATA_HOME"); e != "" {
		return e
	}
	home, err := os.UserHomeDir()
	if err != nil {
		panic(err)
	}
	return filepath.Join(home, ".local/share")
}
