package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"agrisense/internal/domain/entity"
	"agrisense/internal/repository"
)

type ProductRepo struct{ db *sql.DB }

func NewProductRepo(db *sql.DB) repository.ProductRepository {
	return &ProductRepo{db: db}
}

const productColumns = `id, name, price, description, quantity, category, created_at, updated_at`

func scanProduct(rows *sql.Rows) (*entity.Product, error) {
	var p entity.Product
	if err := rows.Scan(
		&p.ID, &p.Name, &p.Price, &p.Description, &p.Quantity, &p.Category,
		&p.CreatedAt, &p.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &p, nil
}

func (repo *ProductRepo) Get(ctx context.Context, id int64) (*entity.Product, error) {
	const query = `
SELECT ` + productColumns + `
FROM products
WHERE id = $1
LIMIT 1`
	var p entity.Product
	err := repo.db.QueryRowContext(ctx, query, id).Scan(
		&p.ID, &p.Name, &p.Price, &p.Description, &p.Quantity, &p.Category,
		&p.CreatedAt, &p.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("Get: %w", err)
	}
	return &p, nil
}

func (repo *ProductRepo) List(ctx context.Context, filter repository.ProductFilter) ([]*entity.Product, error) {
	const query = `
SELECT ` + productColumns + `
FROM products
WHERE ($1::text = '' OR category = $1)
AND ($2::boolean = FALSE OR quantity < $3)
ORDER BY id ASC`
	rows, err := repo.db.QueryContext(ctx, query, filter.Category, filter.LowStock, entity.LowStockThreshold)
	if err != nil {
		return nil, fmt.Errorf("List: %w", err)
	}
	defer func() { _ = rows.Close() }()

	products := make([]*entity.Product, 0, 50)
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("List: %w", err)
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

func (repo *ProductRepo) Search(ctx context.Context, kw string) ([]*entity.Product, error) {
	const query = `
SELECT ` + productColumns + `
FROM products
WHERE name        ILIKE $1
OR    description ILIKE $1
OR    category    ILIKE $1
ORDER BY id ASC`
	param := "%" + kw + "%"
	rows, err := repo.db.QueryContext(ctx, query, param)
	if err != nil {
		return nil, fmt.Errorf("Search: %w", err)
	}
	defer func() { _ = rows.Close() }()

	products := make([]*entity.Product, 0, 50)
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("Search: %w", err)
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

func (repo *ProductRepo) Create(ctx context.Context, p *entity.Product) error {
	const query = `
INSERT INTO products (name, price, description, quantity, category)
VALUES ($1, $2, $3, $4, $5)
RETURNING id, created_at, updated_at`
	err := repo.db.QueryRowContext(ctx, query,
		p.Name, p.Price, p.Description, p.Quantity, p.Category,
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("Create: %w", err)
	}
	return nil
}

func (repo *ProductRepo) Update(ctx context.Context, p *entity.Product) error {
	const query = `
UPDATE products SET
       name        = $1,
       price       = $2,
       description = $3,
       quantity    = $4,
       category    = $5,
       updated_at  = now()
WHERE id = $6`
	res, err := repo.db.ExecContext(ctx, query,
		p.Name, p.Price, p.Description, p.Quantity, p.Category, p.ID,
	)
	if err != nil {
		return fmt.Errorf("Update: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("Update: %w", entity.ErrNotFound)
	}
	return nil
}

func (repo *ProductRepo) Delete(ctx context.Context, id int64) error {
	const query = `DELETE FROM products WHERE id = $1`
	res, err := repo.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("Delete: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("Delete: %w", entity.ErrNotFound)
	}
	return nil
}

func (repo *ProductRepo) Count(ctx context.Context) (int64, error) {
	return count(ctx, repo.db, `SELECT COUNT(*) FROM products`)
}
