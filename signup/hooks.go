package signup

import (
	"encoding/json"
	"os"

	"github.com/tailscale/hujson"
)

// HooksConfig is the site's hooks file. It is HuJSON, so comments and
// trailing commas are allowed:
//
//	{
//		// used when the signup link names no product
//		"default_product": "basic",
//		"metafields": {"source": "website"},
//	}
type HooksConfig struct {
	DefaultProduct string          `json:"default_product"`
	Metafields     json.RawMessage `json:"metafields"`
}

// ParseHooks parses a hooks file.
func ParseHooks(data []byte) (HooksConfig, error) {
	data, err := hujson.Standardize(data)
	if err != nil {
		return HooksConfig{}, err
	}
	var c HooksConfig
	if err := json.Unmarshal(data, &c); err != nil {
		return HooksConfig{}, err
	}
	return c, nil
}

// LoadHooks reads and parses the hooks file at path. An empty path yields
// no hooks.
func LoadHooks(path string) (Hooks, error) {
	if path == "" {
		return Hooks{}, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Hooks{}, err
	}
	c, err := ParseHooks(data)
	if err != nil {
		return Hooks{}, err
	}
	return c.Hooks(), nil
}

// Hooks returns the Hooks configured by c.
func (c HooksConfig) Hooks() Hooks {
	var h Hooks
	if c.DefaultProduct != "" {
		def := c.DefaultProduct
		h.DefaultProduct = func(handle string) string {
			if handle != "" {
				return handle
			}
			return def
		}
	}
	if len(c.Metafields) > 0 && string(c.Metafields) != "null" {
		m := c.Metafields
		h.Metafields = func() any { return m }
	}
	return h
}
