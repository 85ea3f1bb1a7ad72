package remote

import (
	"context"
	"database/sql"
	"errors"

	"github.com/example/storefront/internal/domain/product"
)

var ErrProductNotFound = errors.New("product not found")

// ProductStore reads the catalog. Products are created out-of-band (Seed is
// for bootstrap and tests); the storefront never mutates them.
type ProductStore struct {
	db *sql.DB
}

func NewProductStore(db *sql.DB) *ProductStore {
	return &ProductStore{db: db}
}

func (s *ProductStore) List(ctx context.Context) ([]product.Product, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, price, description, image, category, subcategory FROM products ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var products []product.Product
	for rows.Next() {
		var p product.Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Price, &p.Description, &p.Image, &p.Category, &p.Subcategory); err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

func (s *ProductStore) Get(ctx context.Context, id string) (*product.Product, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, name, price, description, image, category, subcategory FROM products WHERE id = $1`, id)

	var p product.Product
	err := row.Scan(&p.ID, &p.Name, &p.Price, &p.Description, &p.Image, &p.Category, &p.Subcategory)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	return &p, nil
}

// Seed inserts catalog entries, skipping ids that already exist.
func (s *ProductStore) Seed(ctx context.Context, products []product.Product) error {
	for _, p := range products {
		_, err := s.db.ExecContext(ctx,
			`INSERT INTO products (id, name, price, description, image, category, subcategory)
			 VALUES ($1, $2, $3, $4, $5, $6, $7) ON CONFLICT (id) DO NOTHING`,
			p.ID, p.Name, p.Price, p.Description, p.Image, p.Category, p.Subcategory,
		)
		if err != nil {
			return err
		}
	}
	return nil
}
