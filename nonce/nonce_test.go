package nonce

import (
	"errors"
	"testing"
)

func TestVerify(t *testing.T) {
	i := New([]byte("0123456789abcdef0123456789abcdef"), 0)
	tok, err := i.Create("signup", "sess-1")
	if err != nil {
		t.Fatal(err)
	}
	if err := i.Verify(tok, "signup", "sess-1"); err != nil {
		t.Errorf("Verify = %v; want nil", err)
	}

	other := New([]byte("fedcba9876543210fedcba9876543210"), 0)
	forged, err := other.Create("signup", "sess-1")
	if err != nil {
		t.Fatal(err)
	}

	cases := []struct {
		name                   string
		token, action, session string
	}{
		{"empty", "", "signup", "sess-1"},
		{"garbage", "not-a-token", "signup", "sess-1"},
		{"other action", tok, "login", "sess-1"},
		{"other session", tok, "signup", "sess-2"},
		{"other key", forged, "signup", "sess-1"},
	}
	for _, tt := range cases {
		t.Run(tt.name, func(t *testing.T) {
			err := i.Verify(tt.token, tt.action, tt.session)
			if !errors.Is(err, ErrInvalid) {
				t.Errorf("Verify = %v; want ErrInvalid", err)
			}
		})
	}
}
