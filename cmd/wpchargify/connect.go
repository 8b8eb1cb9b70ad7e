package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/zalando/go-keyring"
	"golang.org/x/term"
)

func connect(subdomain string) error {
	if subdomain == "" {
		return errors.New("CHARGIFY_SUBDOMAIN must be set to connect")
	}
	fmt.Fprintf(stdout, `To authenticate with Chargify, copy an API key from:

	https://%s.chargify.com/settings#integrations

Chargify API key: `, subdomain)

	defer fmt.Fprintln(stdout)

	key, err := term.ReadPassword(int(os.Stdin.Fd()))
	if err != nil {
		return err
	}

	fmt.Fprint(stdout, strings.Repeat("*", 40))

	if err := setKey(subdomain, key); err != nil {
		return err
	}

	fmt.Fprintf(stdout, `

Success.

The key for %q is saved in your keyring. Try:

	wpchargify families
`, subdomain)
	return nil
}

const keyringService = "wpchargify.chargify.key"

func setKey(subdomain string, data []byte) error {
	key := strings.TrimSpace(string(data))
	if key == "" {
		return errors.New("invalid key: key is empty")
	}
	return keyring.Set(keyringService, subdomain, key)
}

func getKey(subdomain string) (string, error) {
	return keyring.Get(keyringService, subdomain)
}
