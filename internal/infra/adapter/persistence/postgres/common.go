package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"agrisense/internal/domain/entity"
)

// uniqueViolation is the PostgreSQL SQLSTATE for unique_violation.
const uniqueViolation = "23505"

// count runs a single-value COUNT query.
func count(ctx context.Context, db *sql.DB, query string, args ...any) (int64, error) {
	var n int64
	if err := db.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("Count: %w", err)
	}
	return n, nil
}

// wrapWriteErr wraps err for op, translating unique violations to entity.ErrDuplicate.
func wrapWriteErr(op string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return fmt.Errorf("%s: %w (%s)", op, entity.ErrDuplicate, pgErr.ConstraintName)
	}
	return fmt.Errorf("%s: %w", op, err)
}
