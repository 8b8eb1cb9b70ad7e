package options

import (
	"context"
	"errors"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"kr.dev/diff"
)

type row struct {
	ID     int64  `json:"id"`
	Handle string `json:"handle"`
}

func testStore(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()

	var got []row
	if err := s.Get(ctx, "chargify_products_all", &got); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Get on empty store = %v; want ErrNotFound", err)
	}

	want := []row{{1, "basic"}, {2, "pro"}}
	if err := s.Put(ctx, "chargify_products_all", want); err != nil {
		t.Fatal(err)
	}
	if err := s.Get(ctx, "chargify_products_all", &got); err != nil {
		t.Fatal(err)
	}
	diff.Test(t, t.Errorf, got, want)

	// replace
	if err := s.Put(ctx, "chargify_products_all", want[:1]); err != nil {
		t.Fatal(err)
	}
	got = nil
	if err := s.Get(ctx, "chargify_products_all", &got); err != nil {
		t.Fatal(err)
	}
	diff.Test(t, t.Errorf, got, want[:1])
}

func TestMemory(t *testing.T) {
	testStore(t, &Memory{})
}

func TestRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	s, err := NewRedis("redis://"+mr.Addr(), "wpchargify:")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { s.Close() })

	testStore(t, s)

	if !mr.Exists("wpchargify:chargify_products_all") {
		t.Error("key not stored with prefix")
	}
}

func TestNewRedisBadURL(t *testing.T) {
	if _, err := NewRedis("invalid://url", ""); err == nil {
		t.Error("expected error")
	}
}
