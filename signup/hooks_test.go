package signup

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/pkevan/wp-chargify/form"
	"kr.dev/diff"
)

const hooksFile = `{
	// used when the signup link names no product
	"default_product": "basic",
	"metafields": {"source": "website",},
}`

func TestLoadHooks(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hooks.hujson")
	if err := os.WriteFile(path, []byte(hooksFile), 0600); err != nil {
		t.Fatal(err)
	}
	h, err := LoadHooks(path)
	if err != nil {
		t.Fatal(err)
	}

	b := newBuilder(t)
	b.Hooks = h
	got := generic(t, build(t, b, submitted(t, form.FirstName, "Jane")).Request)["subscription"].(map[string]any)
	diff.Test(t, t.Errorf, got["product_handle"], "basic")
	diff.Test(t, t.Errorf, got["metafields"], map[string]any{"source": "website"})

	diff.Test(t, t.Errorf, h.DefaultProduct("gold"), "gold")
}

func TestLoadHooksEmpty(t *testing.T) {
	h, err := LoadHooks("")
	if err != nil {
		t.Fatal(err)
	}
	if h.DefaultProduct != nil || h.Metafields != nil {
		t.Errorf("hooks = %+v; want none", h)
	}

	c, err := ParseHooks([]byte(`{"metafields": null}`))
	if err != nil {
		t.Fatal(err)
	}
	if c.Hooks().Metafields != nil {
		t.Error("null metafields produced a hook")
	}
}

func TestParseHooksInvalid(t *testing.T) {
	if _, err := ParseHooks([]byte(`{"default_product": `)); err == nil {
		t.Error("expected error")
	}
	if _, err := LoadHooks(filepath.Join(t.TempDir(), "missing")); err == nil {
		t.Error("expected error for missing file")
	}
}
