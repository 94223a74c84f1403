// Command seed-db loads users, products and a demo cart into the stub
// server's PostgreSQL database.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"

	"github.com/go-faster/errors"
	pgzip "github.com/klauspost/pgzip"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/xenking/kart-storefront/internal/domain/product"
	"github.com/xenking/kart-storefront/internal/domain/session"
	"github.com/xenking/kart-storefront/internal/storage/postgres"
	"github.com/xenking/kart-storefront/internal/stub"
)

// productJSON is one entry of the product feed, in the API's field naming.
type productJSON struct {
	ID          int64           `json:"id"`
	Name        string          `json:"ItemName"`
	Price       decimal.Decimal `json:"price"`
	Stock       int             `json:"stock"`
	Description string          `json:"description"`
	Category    string          `json:"category"`
	File        string          `json:"file"`
}

type options struct {
	databaseURL     string
	productsFile    string
	adminPassword   string
	shopperPassword string
	workers         int
}

func main() {
	var opts options
	flag.StringVar(&opts.databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	flag.StringVar(&opts.productsFile, "products-file", "db/seed/products.json.gz", "product feed, JSON or gzipped JSON")
	flag.StringVar(&opts.adminPassword, "admin-password", "", "password for user admin (or KART_SEED_ADMIN_PASSWORD env)")
	flag.StringVar(&opts.shopperPassword, "shopper-password", "shopper", "password for user shopper")
	flag.IntVar(&opts.workers, "workers", 4, "concurrent product upserts")
	flag.Parse()

	if opts.databaseURL == "" {
		opts.databaseURL = os.Getenv("DATABASE_URL")
	}
	if opts.databaseURL == "" {
		slog.Error("database URL is required: set --database-url or DATABASE_URL")
		os.Exit(1)
	}
	if opts.adminPassword == "" {
		opts.adminPassword = os.Getenv("KART_SEED_ADMIN_PASSWORD")
	}
	if opts.adminPassword == "" {
		slog.Error("admin password is required: set --admin-password or KART_SEED_ADMIN_PASSWORD")
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, opts); err != nil {
		slog.Error("seed failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
	slog.Info("seed completed successfully")
}

func run(ctx context.Context, opts options) error {
	slog.Info("connecting to database")
	pool, err := postgres.NewPool(ctx, opts.databaseURL)
	if err != nil {
		return errors.Wrap(err, "connect to database")
	}
	defer pool.Close()

	slog.Info("running migrations")
	if err := postgres.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}
	store := postgres.NewStore(pool)

	products, err := readProducts(opts.productsFile)
	if err != nil {
		return errors.Wrap(err, "read products")
	}
	if err := seedProducts(ctx, store, products, opts.workers); err != nil {
		return errors.Wrap(err, "seed products")
	}

	shopperID, err := seedUsers(ctx, store, opts)
	if err != nil {
		return errors.Wrap(err, "seed users")
	}

	if err := seedCart(ctx, store, shopperID, products); err != nil {
		return errors.Wrap(err, "seed cart")
	}
	return nil
}

// readProducts decodes the feed, gunzipping it when the name ends in .gz.
func readProducts(path string) ([]product.Product, error) {
	slog.Info("reading products file", slog.String("path", path))

	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "open products file")
	}
	defer func() { _ = f.Close() }()

	var r io.Reader = f
	if strings.HasSuffix(path, ".gz") {
		zr, err := pgzip.NewReader(f)
		if err != nil {
			return nil, errors.Wrap(err, "open gzip stream")
		}
		defer func() { _ = zr.Close() }()
		r = zr
	}

	var feed []productJSON
	if err := json.NewDecoder(r).Decode(&feed); err != nil {
		return nil, errors.Wrap(err, "parse products JSON")
	}

	products := make([]product.Product, len(feed))
	for i, p := range feed {
		products[i] = product.Product{
			ID:          p.ID,
			Name:        p.Name,
			Price:       p.Price,
			Stock:       p.Stock,
			Description: p.Description,
			Category:    p.Category,
			Image:       p.File,
		}
	}
	return products, nil
}

func seedProducts(ctx context.Context, store *postgres.Store, products []product.Product, workers int) error {
	slog.Info("upserting products", slog.Int("count", len(products)))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(max(workers, 1))
	for _, p := range products {
		g.Go(func() error {
			if err := store.UpsertProduct(ctx, p); err != nil {
				return err
			}
			slog.Info("upserted product", slog.Int64("id", p.ID), slog.String("name", p.Name))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	return store.SyncSequences(ctx)
}

// seedUsers creates admin and shopper and returns the shopper's id.
func seedUsers(ctx context.Context, store *postgres.Store, opts options) (int64, error) {
	slog.Info("seeding users")

	accounts := []struct {
		name     string
		role     session.Role
		password string
	}{
		{name: "admin", role: session.RoleAdmin, password: opts.adminPassword},
		{name: "shopper", role: session.RoleUser, password: opts.shopperPassword},
	}

	var shopperID int64
	for _, a := range accounts {
		u, err := stub.NewUser(0, a.name, a.role, a.password)
		if err != nil {
			return 0, err
		}
		id, err := store.UpsertUser(ctx, u)
		if err != nil {
			return 0, err
		}
		if a.role == session.RoleUser {
			shopperID = id
		}
		slog.Info("upserted user", slog.Int64("id", id), slog.String("name", a.name), slog.String("role", string(a.role)))
	}
	return shopperID, nil
}

// seedCart gives the shopper one unit of each of the first two in-stock
// products, unless the cart already has items.
func seedCart(ctx context.Context, store *postgres.Store, userID int64, products []product.Product) error {
	existing, err := store.CartItems(ctx, userID)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		slog.Info("shopper cart already seeded", slog.Int("items", len(existing)))
		return nil
	}

	added := 0
	for _, p := range products {
		if added == 2 {
			break
		}
		if p.Stock < 1 {
			continue
		}
		id, err := store.AddCartItem(ctx, userID, p.ID, 1)
		if err != nil {
			return err
		}
		added++
		slog.Info("added cart item", slog.Int64("id", id), slog.String("product", p.Name))
	}
	return nil
}
