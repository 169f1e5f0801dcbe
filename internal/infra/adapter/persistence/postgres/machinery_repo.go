package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"agrisense/internal/domain/entity"
	"agrisense/internal/repository"
)

type MachineryRepo struct{ db *sql.DB }

func NewMachineryRepo(db *sql.DB) repository.MachineryRepository {
	return &MachineryRepo{db: db}
}

func (repo *MachineryRepo) Get(ctx context.Context, id int64) (*entity.Machinery, error) {
	const query = `
SELECT id, name, price, description, image_url, created_at
FROM machinery
WHERE id = $1
LIMIT 1`
	var m entity.Machinery
	err := repo.db.QueryRowContext(ctx, query, id).Scan(
		&m.ID, &m.Name, &m.Price, &m.Description, &m.ImageURL, &m.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("Get: %w", err)
	}
	return &m, nil
}

func (repo *MachineryRepo) List(ctx context.Context) ([]*entity.Machinery, error) {
	const query = `
SELECT id, name, price, description, image_url, created_at
FROM machinery
ORDER BY id ASC`
	rows, err := repo.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("List: %w", err)
	}
	defer func() { _ = rows.Close() }()

	items := make([]*entity.Machinery, 0, 50)
	for rows.Next() {
		var m entity.Machinery
		if err := rows.Scan(&m.ID, &m.Name, &m.Price, &m.Description, &m.ImageURL, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("List: %w", err)
		}
		items = append(items, &m)
	}
	return items, rows.Err()
}

func (repo *MachineryRepo) Create(ctx context.Context, m *entity.Machinery) error {
	const query = `
INSERT INTO machinery (name, price, description, image_url)
VALUES ($1, $2, $3, $4)
RETURNING id, created_at`
	err := repo.db.QueryRowContext(ctx, query,
		m.Name, m.Price, m.Description, m.ImageURL,
	).Scan(&m.ID, &m.CreatedAt)
	if err != nil {
		return fmt.Errorf("Create: %w", err)
	}
	return nil
}

func (repo *MachineryRepo) Update(ctx context.Context, m *entity.Machinery) error {
	const query = `
UPDATE machinery SET
       name        = $1,
       price       = $2,
       description = $3,
       image_url   = $4
WHERE id = $5`
	res, err := repo.db.ExecContext(ctx, query,
		m.Name, m.Price, m.Description, m.ImageURL, m.ID,
	)
	if err != nil {
		return fmt.Errorf("Update: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("Update: %w", entity.ErrNotFound)
	}
	return nil
}

func (repo *MachineryRepo) Delete(ctx context.Context, id int64) error {
	const query = `DELETE FROM machinery WHERE id = $1`
	res, err := repo.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("Delete: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("Delete: %w", entity.ErrNotFound)
	}
	return nil
}

func (repo *MachineryRepo) Count(ctx context.Context) (int64, error) {
	return count(ctx, repo.db, `SELECT COUNT(*) FROM machinery`)
}
