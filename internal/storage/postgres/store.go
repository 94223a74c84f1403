package postgres

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/xenking/kart-storefront/internal/domain/cart"
	"github.com/xenking/kart-storefront/internal/domain/product"
	"github.com/xenking/kart-storefront/internal/domain/session"
	"github.com/xenking/kart-storefront/internal/stub"
)

var _ stub.Store = (*Store)(nil)

// Store implements stub.Store backed by PostgreSQL.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore returns a Store using pool.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

const productColumns = `id, item_name, price, stock, description, category, file`

func (s *Store) Products(ctx context.Context) ([]product.Product, error) {
	rows, err := s.pool.Query(ctx, `SELECT `+productColumns+` FROM products ORDER BY id`)
	if err != nil {
		return nil, errors.Wrap(err, "query products")
	}
	products, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (product.Product, error) {
		var p product.Product
		err := row.Scan(&p.ID, &p.Name, &p.Price, &p.Stock, &p.Description, &p.Category, &p.Image)
		return p, err
	})
	if err != nil {
		return nil, errors.Wrap(err, "scan products")
	}
	return products, nil
}

func (s *Store) DeleteProduct(ctx context.Context, id int64) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return errors.Wrapf(err, "delete product %d", id)
	}
	if tag.RowsAffected() == 0 {
		return product.ErrNotFound
	}
	return nil
}

func (s *Store) UpdateProduct(ctx context.Context, p product.Product) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE products
		SET item_name = $2, price = $3, stock = $4, description = $5, category = $6, file = $7
		WHERE id = $1`,
		p.ID, p.Name, p.Price, p.Stock, p.Description, p.Category, p.Image,
	)
	if err != nil {
		return errors.Wrapf(err, "update product %d", p.ID)
	}
	if tag.RowsAffected() == 0 {
		return product.ErrNotFound
	}
	return nil
}

// UpsertProduct inserts p or replaces the row with the same id.
func (s *Store) UpsertProduct(ctx context.Context, p product.Product) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO products (`+productColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO UPDATE
		SET item_name = EXCLUDED.item_name, price = EXCLUDED.price, stock = EXCLUDED.stock,
		    description = EXCLUDED.description, category = EXCLUDED.category, file = EXCLUDED.file`,
		p.ID, p.Name, p.Price, p.Stock, p.Description, p.Category, p.Image,
	)
	return errors.Wrapf(err, "upsert product %d", p.ID)
}

func (s *Store) CartItems(ctx context.Context, userID int64) ([]cart.LineItem, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT c.id, c.total, c.price, p.item_name, p.file
		FROM cart_items c
		JOIN products p ON p.id = c.product_id
		WHERE c.user_id = $1
		ORDER BY c.id`, userID)
	if err != nil {
		return nil, errors.Wrap(err, "query cart items")
	}
	items, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (cart.LineItem, error) {
		var li cart.LineItem
		err := row.Scan(&li.ID, &li.Quantity, &li.Price, &li.Product.Name, &li.Product.Image)
		return li, err
	})
	if err != nil {
		return nil, errors.Wrap(err, "scan cart items")
	}
	return items, nil
}

func (s *Store) DeleteCartItem(ctx context.Context, userID, id int64) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM cart_items WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return errors.Wrapf(err, "delete cart item %d", id)
	}
	if tag.RowsAffected() == 0 {
		return cart.ErrItemNotFound
	}
	return nil
}

func (s *Store) UpdateCartItem(ctx context.Context, id int64, u cart.Update) error {
	tag, err := s.pool.Exec(ctx, `UPDATE cart_items SET total = $2, price = $3 WHERE id = $1`, id, u.Quantity, u.Price)
	if err != nil {
		return errors.Wrapf(err, "update cart item %d", id)
	}
	if tag.RowsAffected() == 0 {
		return cart.ErrItemNotFound
	}
	return nil
}

// AddCartItem appends a line for productID to the user's cart, priced at
// quantity times the current product price.
func (s *Store) AddCartItem(ctx context.Context, userID, productID int64, quantity int) (int64, error) {
	var id int64
	err := s.pool.QueryRow(ctx, `
		INSERT INTO cart_items (user_id, product_id, total, price)
		SELECT $1, p.id, $3::int, p.price * $3::int FROM products p WHERE p.id = $2
		RETURNING id`, userID, productID, quantity,
	).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, product.ErrNotFound
	}
	if err != nil {
		return 0, errors.Wrapf(err, "add product %d to cart", productID)
	}
	return id, nil
}

func (s *Store) user(ctx context.Context, where string, arg any) (stub.User, error) {
	var (
		u    stub.User
		role string
	)
	err := s.pool.QueryRow(ctx,
		`SELECT id, name, role, password_hash FROM users WHERE `+where, arg,
	).Scan(&u.ID, &u.Name, &role, &u.PasswordHash)
	if errors.Is(err, pgx.ErrNoRows) {
		return stub.User{}, stub.ErrUserNotFound
	}
	if err != nil {
		return stub.User{}, errors.Wrap(err, "query user")
	}
	u.Role = session.Role(role)
	return u, nil
}

func (s *Store) UserByName(ctx context.Context, name string) (stub.User, error) {
	return s.user(ctx, "name = $1", name)
}

func (s *Store) UserByID(ctx context.Context, id int64) (stub.User, error) {
	return s.user(ctx, "id = $1", id)
}

// UpsertUser inserts u or updates the user with the same name, returning
// its id.
func (s *Store) UpsertUser(ctx context.Context, u stub.User) (int64, error) {
	var id int64
	err := s.pool.QueryRow(ctx, `
		INSERT INTO users (name, role, password_hash)
		VALUES ($1, $2, $3)
		ON CONFLICT (name) DO UPDATE
		SET role = EXCLUDED.role, password_hash = EXCLUDED.password_hash
		RETURNING id`, u.Name, string(u.Role), u.PasswordHash,
	).Scan(&id)
	if err != nil {
		return 0, errors.Wrapf(err, "upsert user %s", u.Name)
	}
	return id, nil
}

// SyncSequences moves id sequences past explicitly inserted ids.
func (s *Store) SyncSequences(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
		SELECT setval(pg_get_serial_sequence('products', 'id'), COALESCE(MAX(id), 0) + 1, false) FROM products`)
	return errors.Wrap(err, "sync product sequence")
}
