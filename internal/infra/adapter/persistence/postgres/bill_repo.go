package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"agrisense/internal/domain/entity"
	"agrisense/internal/repository"
)

type BillRepo struct{ db *sql.DB }

func NewBillRepo(db *sql.DB) repository.BillRepository {
	return &BillRepo{db: db}
}

// Create writes the bill and its lines and takes the sold quantities out of
// stock in one transaction. Stock is decremented with a guarded UPDATE so two
// concurrent checkouts can never drive a quantity negative.
func (repo *BillRepo) Create(ctx context.Context, bill *entity.BillReport) (err error) {
	tx, err := repo.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("Create: begin: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	const decrement = `
UPDATE products SET
       quantity   = quantity - $1,
       updated_at = now()
WHERE id = $2 AND quantity >= $1`
	for _, it := range bill.Items {
		res, execErr := tx.ExecContext(ctx, decrement, it.Quantity, it.ProductID)
		if execErr != nil {
			return fmt.Errorf("Create: decrement stock: %w", execErr)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return fmt.Errorf("Create: product %d: %w", it.ProductID, entity.ErrInsufficientStock)
		}
	}

	const insertBill = `
INSERT INTO bills (customer_name, total, created_at)
VALUES ($1, $2, $3)
RETURNING id`
	if err = tx.QueryRowContext(ctx, insertBill,
		bill.CustomerName, bill.Total, bill.CreatedAt,
	).Scan(&bill.ID); err != nil {
		return fmt.Errorf("Create: insert bill: %w", err)
	}

	const insertItem = `
INSERT INTO bill_items (bill_id, product_id, name, price, quantity, line_total)
VALUES ($1, $2, $3, $4, $5, $6)`
	for _, it := range bill.Items {
		if _, err = tx.ExecContext(ctx, insertItem,
			bill.ID, it.ProductID, it.Name, it.Price, it.Quantity, it.LineTotal,
		); err != nil {
			return fmt.Errorf("Create: insert item: %w", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("Create: commit: %w", err)
	}
	return nil
}

func (repo *BillRepo) Get(ctx context.Context, id int64) (*entity.BillReport, error) {
	const query = `
SELECT id, customer_name, total, created_at
FROM bills
WHERE id = $1
LIMIT 1`
	var b entity.BillReport
	err := repo.db.QueryRowContext(ctx, query, id).Scan(&b.ID, &b.CustomerName, &b.Total, &b.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("Get: %w", err)
	}

	const itemsQuery = `
SELECT bill_id, product_id, name, price, quantity, line_total
FROM bill_items
WHERE bill_id = $1
ORDER BY id ASC`
	items, err := repo.loadItems(ctx, itemsQuery, id)
	if err != nil {
		return nil, fmt.Errorf("Get: %w", err)
	}
	b.Items = items[b.ID]
	if b.Items == nil {
		b.Items = []entity.BillItem{}
	}
	return &b, nil
}

// List returns bills newest first with their lines attached.
func (repo *BillRepo) List(ctx context.Context) ([]*entity.BillReport, error) {
	const query = `
SELECT id, customer_name, total, created_at
FROM bills
ORDER BY created_at DESC, id DESC`
	rows, err := repo.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("List: %w", err)
	}
	defer func() { _ = rows.Close() }()

	bills := make([]*entity.BillReport, 0, 50)
	for rows.Next() {
		var b entity.BillReport
		if err := rows.Scan(&b.ID, &b.CustomerName, &b.Total, &b.CreatedAt); err != nil {
			return nil, fmt.Errorf("List: %w", err)
		}
		bills = append(bills, &b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("List: %w", err)
	}
	if len(bills) == 0 {
		return bills, nil
	}

	const itemsQuery = `
SELECT bill_id, product_id, name, price, quantity, line_total
FROM bill_items
ORDER BY bill_id ASC, id ASC`
	items, err := repo.loadItems(ctx, itemsQuery)
	if err != nil {
		return nil, fmt.Errorf("List: %w", err)
	}
	for _, b := range bills {
		b.Items = items[b.ID]
		if b.Items == nil {
			b.Items = []entity.BillItem{}
		}
	}
	return bills, nil
}

func (repo *BillRepo) loadItems(ctx context.Context, query string, args ...any) (map[int64][]entity.BillItem, error) {
	rows, err := repo.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	byBill := make(map[int64][]entity.BillItem)
	for rows.Next() {
		var billID int64
		var it entity.BillItem
		if err := rows.Scan(&billID, &it.ProductID, &it.Name, &it.Price, &it.Quantity, &it.LineTotal); err != nil {
			return nil, err
		}
		byBill[billID] = append(byBill[billID], it)
	}
	return byBill, rows.Err()
}

// Delete removes a bill; its lines go with it through ON DELETE CASCADE.
// Stock is not restored.
func (repo *BillRepo) Delete(ctx context.Context, id int64) error {
	const query = `DELETE FROM bills WHERE id = $1`
	res, err := repo.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("Delete: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("Delete: %w", entity.ErrNotFound)
	}
	return nil
}

func (repo *BillRepo) Count(ctx context.Context) (int64, error) {
	return count(ctx, repo.db, `SELECT COUNT(*) FROM bills`)
}

func (repo *BillRepo) TotalSales(ctx context.Context) (float64, error) {
	const query = `SELECT COALESCE(SUM(total), 0) FROM bills`
	var total float64
	if err := repo.db.QueryRowContext(ctx, query).Scan(&total); err != nil {
		return 0, fmt.Errorf("TotalSales: %w", err)
	}
	return entity.RoundCents(total), nil
}
