package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

//lint:ignore ST1005 this error is not used like normal errors
var errUsage = errors.New(`Usage:

	wpchargify [flags] <command> [arguments]

The commands are:

	serve      run the signup server
	sync       copy the Chargify catalog into the options store
	families   list product families
	products   list products
	product    show a product by id or handle
	customer   show a customer by id
	connect    save a Chargify API key in the system keyring
	version    display the current version
	help       display this help message

The flags are:

	-v         verbose output
	-h         show this message

Environment variables:

	CHARGIFY_SUBDOMAIN

	  The Chargify site, e.g. "acme" for https://acme.chargify.com.

	CHARGIFY_API_KEY

	  Chargify API key. If not set, the key saved by "wpchargify connect"
	  is used.

	CHARGIFY_DEBUG

	  If "1", every Chargify request and response is logged.

Variables are also read from a .env file in the current directory.
`)

var topics = map[string]string{
	"version": `Usage:

	wpchargify version

Print the version of wpchargify.
`,

	"serve": `Usage:

	wpchargify serve [--addr <addr>] [--resync <duration>]

Serve runs the signup server. GET /signup renders the signup form and POST
/signup creates the subscription in Chargify and the matching site user.
Prometheus metrics are served at /metrics.

The default address is $WPCHARGIFY_ADDR, or "localhost:8080".

With --resync, products are synced from Chargify at that interval and the
catalog cache is dropped after each sync. Without REDIS_URL the products are
also synced once at startup, since the in-memory store starts empty.

Environment variables:

	WPCHARGIFY_NONCE_KEY       key for form tokens; at least 32 bytes
	WPCHARGIFY_NONCE_MAX_AGE   lifetime of form tokens (default 24h)
	WPCHARGIFY_SECURE_COOKIES  mark the session cookie Secure
	WPCHARGIFY_DB_DRIVER       sqlite3 (default) or postgres
	DATABASE_URL               user database; defaults to a SQLite file
	                           under $XDG_DATA_HOME/wpchargify
	REDIS_URL                  options store; in memory if unset
	WPCHARGIFY_REDIS_PREFIX    prefix for option keys (default "wpchargify:")
	WPCHARGIFY_CATALOG_TTL     how long catalog lookups are cached (default 5m)
	WPCHARGIFY_HOOKS_FILE      HuJSON file with the default product and
	                           subscription metafields
`,

	"sync": `Usage:

	wpchargify sync [--all]

Sync fetches every product of every product family from Chargify and stores
them in the options store under "chargify_products_all". With --all it also
stores components and the price points of every product and component.

Set REDIS_URL so the server can read what sync stores.
`,

	"families": `Usage:

	wpchargify families

Families lists the product families of the site as:

	ID  HANDLE  NAME
`,

	"products": `Usage:

	wpchargify products [familyID]

Products lists the products of one family, or of every family, as:

	ID  HANDLE  NAME  PRICE_IN_CENTS
`,

	"product": `Usage:

	wpchargify product <id|handle>

Product prints a product as JSON. A numeric argument is taken as an id.
`,

	"customer": `Usage:

	wpchargify customer <id>

Customer prints a customer as JSON.
`,

	"connect": `Usage:

	wpchargify connect

Connect reads a Chargify API key from the terminal and saves it in the
system keyring for $CHARGIFY_SUBDOMAIN.
`,

	"wpchargify": errUsage.Error(),
}

func help(dst io.Writer, cmd string) error {
	switch cmd {
	case "help":
		io.WriteString(dst, errUsage.Error())
		return nil
	case "helpjson":
		data, err := json.MarshalIndent(topics, "", "\t")
		if err != nil {
			return err
		}
		dst.Write(data)
		return nil
	case "":
		return errUsage
	default:
		msg := topics[cmd]
		if msg == "" {
			return fmt.Errorf("unknown help topic %q; Run 'wpchargify help'", cmd)
		}
		io.WriteString(dst, msg)
		return nil
	}
}
