package postgres_test

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agrisense/internal/domain/entity"
	"agrisense/internal/infra/adapter/persistence/postgres"
)

func sampleBill(now time.Time) *entity.BillReport {
	return entity.NewBillReport("Kisan Store", []entity.BillItem{
		{ProductID: 1, Name: "Tomato Seeds", Price: 0.1, Quantity: 3},
		{ProductID: 2, Name: "Neem Oil", Price: 12.25, Quantity: 2},
	}, now)
}

func TestBillRepo_Create(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	bill := sampleBill(now)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE products SET`)).
		WithArgs(3, int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE products SET`)).
		WithArgs(2, int64(2)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO bills`)).
		WithArgs("Kisan Store", 24.8, now).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(11))
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO bill_items`)).
		WithArgs(int64(11), int64(1), "Tomato Seeds", 0.1, 3, 0.3).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO bill_items`)).
		WithArgs(int64(11), int64(2), "Neem Oil", 12.25, 2, 24.5).
		WillReturnResult(sqlmock.NewResult(2, 1))
	mock.ExpectCommit()

	require.NoError(t, postgres.NewBillRepo(db).Create(context.Background(), bill))
	assert.Equal(t, int64(11), bill.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBillRepo_Create_InsufficientStockRollsBack(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE products SET`)).
		WithArgs(3, int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE products SET`)).
		WithArgs(2, int64(2)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err = postgres.NewBillRepo(db).Create(context.Background(), sampleBill(time.Now()))
	assert.True(t, errors.Is(err, entity.ErrInsufficientStock), "err=%v", err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBillRepo_Get(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	now := time.Now()
	mock.ExpectQuery(`FROM bills`).
		WithArgs(int64(11)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "customer_name", "total", "created_at"}).
			AddRow(11, "Kisan Store", 24.8, now))
	mock.ExpectQuery(`FROM bill_items`).
		WithArgs(int64(11)).
		WillReturnRows(sqlmock.NewRows([]string{"bill_id", "product_id", "name", "price", "quantity", "line_total"}).
			AddRow(11, 1, "Tomato Seeds", 0.1, 3, 0.3).
			AddRow(11, 2, "Neem Oil", 12.25, 2, 24.5))

	got, err := postgres.NewBillRepo(db).Get(context.Background(), 11)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Len(t, got.Items, 2)
	assert.Equal(t, 24.8, got.Total)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBillRepo_List_AttachesItems(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	now := time.Now()
	mock.ExpectQuery(`FROM bills`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "customer_name", "total", "created_at"}).
			AddRow(2, "B", 5.0, now).
			AddRow(1, "A", 1.0, now.Add(-time.Hour)))
	mock.ExpectQuery(`FROM bill_items`).
		WillReturnRows(sqlmock.NewRows([]string{"bill_id", "product_id", "name", "price", "quantity", "line_total"}).
			AddRow(2, 1, "Seeds", 2.5, 2, 5.0))

	got, err := postgres.NewBillRepo(db).List(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Len(t, got[0].Items, 1)
	assert.NotNil(t, got[1].Items)
	assert.Empty(t, got[1].Items)
}

func TestBillRepo_TotalSales(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT COALESCE(SUM(total), 0) FROM bills`)).
		WillReturnRows(sqlmock.NewRows([]string{"sum"}).AddRow(1234.5))

	total, err := postgres.NewBillRepo(db).TotalSales(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1234.5, total)
}
