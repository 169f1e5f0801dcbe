package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"agrisense/internal/domain/entity"
	"agrisense/internal/repository"
)

type VideoRepo struct{ db *sql.DB }

func NewVideoRepo(db *sql.DB) repository.VideoRepository {
	return &VideoRepo{db: db}
}

func scanVideo(rows *sql.Rows) (*entity.Video, error) {
	var v entity.Video
	if err := rows.Scan(&v.ID, &v.Title, &v.YouTubeID, &v.Description, &v.Category, &v.CreatedAt); err != nil {
		return nil, err
	}
	return &v, nil
}

func (repo *VideoRepo) Get(ctx context.Context, id int64) (*entity.Video, error) {
	const query = `
SELECT id, title, youtube_id, description, category, created_at
FROM videos
WHERE id = $1
LIMIT 1`
	var v entity.Video
	err := repo.db.QueryRowContext(ctx, query, id).Scan(
		&v.ID, &v.Title, &v.YouTubeID, &v.Description, &v.Category, &v.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("Get: %w", err)
	}
	return &v, nil
}

func (repo *VideoRepo) List(ctx context.Context) ([]*entity.Video, error) {
	const query = `
SELECT id, title, youtube_id, description, category, created_at
FROM videos
ORDER BY id ASC`
	rows, err := repo.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("List: %w", err)
	}
	defer func() { _ = rows.Close() }()

	videos := make([]*entity.Video, 0, 50)
	for rows.Next() {
		v, err := scanVideo(rows)
		if err != nil {
			return nil, fmt.Errorf("List: %w", err)
		}
		videos = append(videos, v)
	}
	return videos, rows.Err()
}

func (repo *VideoRepo) Search(ctx context.Context, kw string) ([]*entity.Video, error) {
	const query = `
SELECT id, title, youtube_id, description, category, created_at
FROM videos
WHERE title       ILIKE $1
OR    description ILIKE $1
OR    category    ILIKE $1
ORDER BY id ASC`
	rows, err := repo.db.QueryContext(ctx, query, "%"+kw+"%")
	if err != nil {
		return nil, fmt.Errorf("Search: %w", err)
	}
	defer func() { _ = rows.Close() }()

	videos := make([]*entity.Video, 0, 50)
	for rows.Next() {
		v, err := scanVideo(rows)
		if err != nil {
			return nil, fmt.Errorf("Search: %w", err)
		}
		videos = append(videos, v)
	}
	return videos, rows.Err()
}

func (repo *VideoRepo) Create(ctx context.Context, v *entity.Video) error {
	const query = `
INSERT INTO videos (title, youtube_id, description, category)
VALUES ($1, $2, $3, $4)
RETURNING id, created_at`
	err := repo.db.QueryRowContext(ctx, query,
		v.Title, v.YouTubeID, v.Description, v.Category,
	).Scan(&v.ID, &v.CreatedAt)
	if err != nil {
		return fmt.Errorf("Create: %w", err)
	}
	return nil
}

func (repo *VideoRepo) Update(ctx context.Context, v *entity.Video) error {
	const query = `
UPDATE videos SET
       title       = $1,
       youtube_id  = $2,
       description = $3,
       category    = $4
WHERE id = $5`
	res, err := repo.db.ExecContext(ctx, query,
		v.Title, v.YouTubeID, v.Description, v.Category, v.ID,
	)
	if err != nil {
		return fmt.Errorf("Update: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("Update: %w", entity.ErrNotFound)
	}
	return nil
}

func (repo *VideoRepo) Delete(ctx context.Context, id int64) error {
	const query = `DELETE FROM videos WHERE id = $1`
	res, err := repo.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("Delete: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("Delete: %w", entity.ErrNotFound)
	}
	return nil
}

func (repo *VideoRepo) Count(ctx context.Context) (int64, error) {
	return count(ctx, repo.db, `SELECT COUNT(*) FROM videos`)
}
