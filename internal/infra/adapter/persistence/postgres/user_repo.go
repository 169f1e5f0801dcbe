package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"agrisense/internal/domain/entity"
	"agrisense/internal/repository"
)

type UserRepo struct{ db *sql.DB }

func NewUserRepo(db *sql.DB) repository.UserRepository {
	return &UserRepo{db: db}
}

func (repo *UserRepo) getOne(ctx context.Context, op, where string, arg any) (*entity.User, error) {
	query := `
SELECT id, name, email, phone, location, role, created_at
FROM users
WHERE ` + where + ` = $1
LIMIT 1`
	var u entity.User
	err := repo.db.QueryRowContext(ctx, query, arg).Scan(
		&u.ID, &u.Name, &u.Email, &u.Phone, &u.Location, &u.Role, &u.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &u, nil
}

func (repo *UserRepo) Get(ctx context.Context, id int64) (*entity.User, error) {
	return repo.getOne(ctx, "Get", "id", id)
}

// GetByEmail matches the already-normalized (lowercase) address.
func (repo *UserRepo) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	return repo.getOne(ctx, "GetByEmail", "email", email)
}

func (repo *UserRepo) List(ctx context.Context) ([]*entity.User, error) {
	const query = `
SELECT id, name, email, phone, location, role, created_at
FROM users
ORDER BY id ASC`
	rows, err := repo.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("List: %w", err)
	}
	defer func() { _ = rows.Close() }()

	users := make([]*entity.User, 0, 50)
	for rows.Next() {
		var u entity.User
		if err := rows.Scan(&u.ID, &u.Name, &u.Email, &u.Phone, &u.Location, &u.Role, &u.CreatedAt); err != nil {
			return nil, fmt.Errorf("List: %w", err)
		}
		users = append(users, &u)
	}
	return users, rows.Err()
}

func (repo *UserRepo) Create(ctx context.Context, u *entity.User) error {
	const query = `
INSERT INTO users (name, email, phone, location, role)
VALUES ($1, $2, $3, $4, $5)
RETURNING id, created_at`
	err := repo.db.QueryRowContext(ctx, query,
		u.Name, u.Email, u.Phone, u.Location, u.Role,
	).Scan(&u.ID, &u.CreatedAt)
	if err != nil {
		return wrapWriteErr("Create", err)
	}
	return nil
}

func (repo *UserRepo) Update(ctx context.Context, u *entity.User) error {
	const query = `
UPDATE users SET
       name     = $1,
       email    = $2,
       phone    = $3,
       location = $4,
       role     = $5
WHERE id = $6`
	res, err := repo.db.ExecContext(ctx, query,
		u.Name, u.Email, u.Phone, u.Location, u.Role, u.ID,
	)
	if err != nil {
		return wrapWriteErr("Update", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("Update: %w", entity.ErrNotFound)
	}
	return nil
}

func (repo *UserRepo) Delete(ctx context.Context, id int64) error {
	const query = `DELETE FROM users WHERE id = $1`
	res, err := repo.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("Delete: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("Delete: %w", entity.ErrNotFound)
	}
	return nil
}

func (repo *UserRepo) Count(ctx context.Context) (int64, error) {
	return count(ctx, repo.db, `SELECT COUNT(*) FROM users`)
}
