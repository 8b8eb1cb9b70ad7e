package envknobs

import (
	"strings"
	"testing"
	"time"

	"kr.dev/diff"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", "/data")
	k, err := LoadFrom(map[string]string{
		"CHARGIFY_SUBDOMAIN": "acme",
	})
	if err != nil {
		t.Fatal(err)
	}
	diff.Test(t, t.Errorf, k, Knobs{
		Subdomain:   "acme",
		Addr:        "localhost:8080",
		RedisPrefix: "wpchargify:",
		DBDriver:    "sqlite3",
		DatabaseURL: "/data/wpchargify/users.db",
		NonceMaxAge: 24 * time.Hour,
		CatalogTTL:  5 * time.Minute,
	})
}

func TestLoadPostgres(t *testing.T) {
	k, err := LoadFrom(map[string]string{
		"WPCHARGIFY_DB_DRIVER":      "postgres",
		"WPCHARGIFY_NONCE_MAX_AGE":  "1h",
		"WPCHARGIFY_SECURE_COOKIES": "true",
	})
	if err != nil {
		t.Fatal(err)
	}
	diff.Test(t, t.Errorf, k.DatabaseURL, "")
	diff.Test(t, t.Errorf, k.NonceMaxAge, time.Hour)
	diff.Test(t, t.Errorf, k.SecureCookies, true)
}

func TestLoadBadDuration(t *testing.T) {
	_, err := LoadFrom(map[string]string{"WPCHARGIFY_CATALOG_TTL": "soon"})
	if err == nil {
		t.Fatal("expected error")
	}
}

func TestValidateServe(t *testing.T) {
	k := Knobs{
		DBDriver:    "mysql",
		NonceKey:    "short",
		NonceMaxAge: time.Second,
	}
	err := k.ValidateServe()
	if err == nil {
		t.Fatal("expected error")
	}
	msg := err.Error()
	for _, want := range []string{
		"CHARGIFY_SUBDOMAIN",
		"WPCHARGIFY_DB_DRIVER",
		"DATABASE_URL",
		"WPCHARGIFY_NONCE_KEY",
		"WPCHARGIFY_NONCE_MAX_AGE",
	} {
		if !strings.Contains(msg, want) {
			t.Errorf("error does not mention %s: %v", want, msg)
		}
	}

	k = Knobs{
		BaseURL:     "http://localhost:1234",
		DBDriver:    "postgres",
		DatabaseURL: "postgres://localhost/wp",
		NonceKey:    strings.Repeat("k", 32),
		NonceMaxAge: time.Hour,
	}
	if err := k.ValidateServe(); err != nil {
		t.Errorf("ValidateServe = %v; want nil", err)
	}
}
