package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/joho/godotenv"
	"github.com/pkevan/wp-chargify/chargify"
	"github.com/pkevan/wp-chargify/envknobs"
	"github.com/pkevan/wp-chargify/options"
	"github.com/pkevan/wp-chargify/version"
	"github.com/sirupsen/logrus"
)

var flagVerbose = flag.Bool("v", false, "verbose output")

var (
	stdout io.Writer = os.Stdout
	stderr io.Writer = os.Stderr
)

var logger = logrus.New()

func vlogf(format string, args ...any) {
	logger.Debugf(format, args...)
}

func main() {
	flag.Usage = func() {
		io.WriteString(stderr, errUsage.Error())
	}
	flag.Parse()

	logger.SetOutput(stderr)
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	if *flagVerbose {
		logger.SetLevel(logrus.DebugLevel)
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		logger.Warnf("loading .env: %v", err)
	}

	args := flag.Args()
	if len(args) == 0 {
		flag.Usage()
		os.Exit(2)
	}
	if err := run(args[0], args[1:]); err != nil {
		if errors.Is(err, errUsage) {
			fmt.Fprintln(stderr, err)
			os.Exit(2)
		}
		fmt.Fprintf(stderr, "wpchargify: %v\n", err)
		os.Exit(1)
	}
}

func run(cmd string, args []string) error {
	ctx := context.Background()
	switch cmd {
	case "help":
		return help(stdout, arg(args, 0))
	case "version":
		fmt.Fprintln(stdout, version.String())
		return nil
	case "connect":
		k, err := knobs()
		if err != nil {
			return err
		}
		return connect(k.Subdomain)
	case "serve":
		k, err := knobs()
		if err != nil {
			return err
		}
		flags := flag.NewFlagSet("serve", flag.ContinueOnError)
		flags.SetOutput(stderr)
		addr := flags.String("addr", k.Addr, "address to listen on")
		resync := flags.Duration("resync", 0, "how often to resync products from Chargify; 0 never")
		if err := flags.Parse(args); err != nil {
			return errUsage
		}
		return serve(ctx, k, *addr, *resync)
	case "sync":
		flags := flag.NewFlagSet("sync", flag.ContinueOnError)
		flags.SetOutput(stderr)
		all := flags.Bool("all", false, "also sync components and price points")
		if err := flags.Parse(args); err != nil {
			return errUsage
		}
		return syncCatalog(ctx, *all)
	case "families":
		c, err := client()
		if err != nil {
			return err
		}
		families, err := c.ProductFamilies(ctx)
		if err != nil {
			return err
		}
		tw := tabwriter.NewWriter(stdout, 0, 2, 2, ' ', 0)
		defer tw.Flush()
		for _, f := range families {
			fmt.Fprintf(tw, "%d\t%s\t%s\n", f.ID, f.Handle, f.Name)
		}
		return nil
	case "products":
		c, err := client()
		if err != nil {
			return err
		}
		var products []chargify.Product
		if len(args) > 0 {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid family id %q", args[0])
			}
			products, err = c.FamilyProducts(ctx, id)
			if err != nil {
				return err
			}
		} else {
			products, err = chargify.SyncProducts(ctx, c, discard{})
			if err != nil {
				return err
			}
		}
		tw := tabwriter.NewWriter(stdout, 0, 2, 2, ' ', 0)
		defer tw.Flush()
		for _, p := range products {
			fmt.Fprintf(tw, "%d\t%s\t%s\t%d\n", p.ID, p.Handle, p.Name, p.PriceInCents)
		}
		return nil
	case "product":
		if len(args) != 1 {
			return errUsage
		}
		c, err := client()
		if err != nil {
			return err
		}
		var p chargify.Product
		if id, perr := strconv.ParseInt(args[0], 10, 64); perr == nil {
			p, err = c.Product(ctx, id)
		} else {
			p, err = c.ProductByHandle(ctx, args[0])
		}
		if err != nil {
			return err
		}
		return printJSON(p)
	case "customer":
		if len(args) != 1 {
			return errUsage
		}
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid customer id %q", args[0])
		}
		c, err := client()
		if err != nil {
			return err
		}
		cust, err := c.Customer(ctx, id)
		if err != nil {
			return err
		}
		return printJSON(cust)
	default:
		return errUsage
	}
}

func syncCatalog(ctx context.Context, all bool) error {
	k, err := knobs()
	if err != nil {
		return err
	}
	c, err := client()
	if err != nil {
		return err
	}
	store, err := openStore(k)
	if err != nil {
		return err
	}
	if _, ok := store.(*options.Memory); ok {
		logger.Warn("REDIS_URL is not set; synced collections will not outlive this process")
	}

	if !all {
		products, err := chargify.SyncProducts(ctx, c, store)
		if err != nil {
			return err
		}
		fmt.Fprintf(stdout, "synced %d products\n", len(products))
		return nil
	}
	cat, err := chargify.SyncCatalog(ctx, c, store)
	if err != nil {
		return err
	}
	fmt.Fprintf(stdout, "synced %d families, %d products, %d product price points, %d components, %d component price points\n",
		len(cat.Families),
		len(cat.Products),
		len(cat.ProductPricePoints),
		len(cat.Components),
		len(cat.ComponentPricePoints),
	)
	return nil
}

var loadedKnobs *envknobs.Knobs

func knobs() (envknobs.Knobs, error) {
	if loadedKnobs == nil {
		k, err := envknobs.Load()
		if err != nil {
			return envknobs.Knobs{}, err
		}
		loadedKnobs = &k
	}
	return *loadedKnobs, nil
}

var chargifyClient *chargify.Client

// client returns a Chargify client configured from the environment. The API
// key falls back to the one saved by "wpchargify connect".
func client() (*chargify.Client, error) {
	if chargifyClient != nil {
		return chargifyClient, nil
	}
	k, err := knobs()
	if err != nil {
		return nil, err
	}
	if err := k.ValidateRemote(); err != nil {
		return nil, err
	}
	key := k.APIKey
	if key == "" {
		key, err = getKey(k.Subdomain)
		if err != nil {
			vlogf("keyring: %v", err)
			return nil, errors.New("no Chargify API key; set CHARGIFY_API_KEY or run `wpchargify connect`")
		}
	}
	chargifyClient = &chargify.Client{
		APIKey:    key,
		Subdomain: k.Subdomain,
		BaseURL:   k.BaseURL,
		Header:    map[string][]string{"User-Agent": {version.UserAgent()}},
		Logf:      logger.WithField("component", "chargify").Infof,
	}
	return chargifyClient, nil
}

func openStore(k envknobs.Knobs) (options.Store, error) {
	if k.RedisURL == "" {
		return &options.Memory{}, nil
	}
	return options.NewRedis(k.RedisURL, k.RedisPrefix)
}

// discard is a chargify.Store that keeps nothing.
type discard struct{}

func (discard) Put(context.Context, string, any) error { return nil }

func printJSON(v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintf(stdout, "%s\n", out)
	return nil
}

func arg(args []string, i int) string {
	if i < len(args) {
		return args[i]
	}
	return ""
}
