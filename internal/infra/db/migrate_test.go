package db

import (
	"database/sql"
	"regexp"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func expectTables(mock sqlmock.Sqlmock) {
	for _, table := range []string{
		"products", "machinery", "videos", "users", "bills", "bill_items", "sensor_readings",
	} {
		mock.ExpectExec("CREATE TABLE IF NOT EXISTS " + table + " ").
			WillReturnResult(sqlmock.NewResult(0, 0))
	}
}

func expectIndexes(mock sqlmock.Sqlmock) {
	for _, idx := range []string{
		"idx_products_category", "idx_products_quantity",
		"idx_bill_items_bill_id", "idx_sensor_readings_recorded_at",
	} {
		mock.ExpectExec("CREATE INDEX IF NOT EXISTS " + idx).
			WillReturnResult(sqlmock.NewResult(0, 0))
	}
}

func TestMigrateUp_Success(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	expectTables(mock)

	// pg_trgm と GIN インデックスはエラーを無視するため期待値なし
	expectIndexes(mock)

	mock.ExpectExec("INSERT INTO products").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err = MigrateUp(db)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMigrateUp_ProductsTableError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS products").
		WillReturnError(sql.ErrConnDone)

	err = MigrateUp(db)
	assert.Equal(t, sql.ErrConnDone, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMigrateUp_SeedError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	expectTables(mock)
	expectIndexes(mock)
	mock.ExpectExec("INSERT INTO products").
		WillReturnError(sql.ErrTxDone)

	err = MigrateUp(db)
	assert.Equal(t, sql.ErrTxDone, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMigrateUp_KeysAreBigint(t *testing.T) {
	var tables []string
	matcher := sqlmock.QueryMatcherFunc(func(expected, actual string) error {
		if strings.Contains(actual, "CREATE TABLE") {
			tables = append(tables, actual)
		}
		return sqlmock.QueryMatcherRegexp.Match(expected, actual)
	})
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(matcher))
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	expectTables(mock)
	expectIndexes(mock)
	mock.ExpectExec("INSERT INTO products").
		WillReturnResult(sqlmock.NewResult(0, 0))
	require.NoError(t, MigrateUp(db))

	// 32bit の SERIAL / INTEGER 参照が残っていないこと
	narrow := regexp.MustCompile(`\sSERIAL\s|_id\s+INTEGER\s`)
	require.Len(t, tables, 7)
	for _, stmt := range tables {
		assert.Regexp(t, `id\s+BIGSERIAL PRIMARY KEY`, stmt)
		assert.NotRegexp(t, narrow, stmt)
	}
}

func TestMigrateDown(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	for _, table := range []string{
		"bill_items", "bills", "sensor_readings", "users", "videos", "machinery", "products",
	} {
		mock.ExpectExec("DROP TABLE IF EXISTS " + table + " CASCADE").
			WillReturnResult(sqlmock.NewResult(0, 0))
	}

	assert.NoError(t, MigrateDown(db))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSeedCatalogSQL_Embedded(t *testing.T) {
	assert.Contains(t, seedCatalogSQL, "INSERT INTO products")
	assert.Contains(t, seedCatalogSQL, "WHERE NOT EXISTS (SELECT 1 FROM videos)")
}
