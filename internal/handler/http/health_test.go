package http

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type pingFunc func(context.Context) error

func (f pingFunc) Ping(ctx context.Context) error { return f(ctx) }

func decodeHealth(t *testing.T, rec *httptest.ResponseRecorder) HealthResponse {
	t.Helper()
	var resp HealthResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	return resp
}

func TestHealthHandler_ServeHTTP(t *testing.T) {
	tests := []struct {
		name           string
		setupMock      func(sqlmock.Sqlmock)
		expectedStatus int
		expectHealthy  bool
	}{
		{
			name:           "healthy database",
			setupMock:      func(mock sqlmock.Sqlmock) { mock.ExpectPing() },
			expectedStatus: http.StatusOK,
			expectHealthy:  true,
		},
		{
			name: "database connection error",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectPing().WillReturnError(sql.ErrConnDone)
			},
			expectedStatus: http.StatusServiceUnavailable,
			expectHealthy:  false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
			require.NoError(t, err)
			defer func() { _ = db.Close() }()
			tt.setupMock(mock)

			handler := &HealthHandler{DB: db, Version: "test-version"}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

			assert.Equal(t, tt.expectedStatus, rec.Code)
			assert.Equal(t, "no-cache, no-store, must-revalidate", rec.Header().Get("Cache-Control"))

			resp := decodeHealth(t, rec)
			if tt.expectHealthy {
				assert.Equal(t, "healthy", resp.Status)
			} else {
				assert.Equal(t, "unhealthy", resp.Status)
				assert.Equal(t, "database unreachable", resp.Checks["database"].Message)
			}
			assert.Equal(t, "test-version", resp.Version)
			assert.NotEmpty(t, resp.Timestamp)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestHealthHandler_NoDatabase(t *testing.T) {
	rec := httptest.NewRecorder()
	(&HealthHandler{}).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	resp := decodeHealth(t, rec)
	assert.Equal(t, "not configured", resp.Checks["database"].Message)
}

func TestHealthHandler_OptionalDependencies(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	defer func() { _ = db.Close() }()
	mock.ExpectPing()

	handler := &HealthHandler{
		DB: db,
		Optional: map[string]Pinger{
			"cart_store": pingFunc(func(context.Context) error { return errors.New("dial tcp: refused") }),
			"mqtt":       pingFunc(func(context.Context) error { return nil }),
		},
		Analyzer: "noop",
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	// 任意の依存先が落ちていても全体は healthy のまま
	assert.Equal(t, http.StatusOK, rec.Code)
	resp := decodeHealth(t, rec)
	assert.Equal(t, "degraded", resp.Checks["cart_store"].Status)
	assert.Equal(t, "healthy", resp.Checks["mqtt"].Status)
	assert.Equal(t, "degraded", resp.Checks["analyzer"].Status)
	assert.NotContains(t, rec.Body.String(), "refused")
}

func TestHealthHandler_PoolStats(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	defer func() { _ = db.Close() }()
	db.SetMaxOpenConns(10)
	mock.ExpectPing()

	rec := httptest.NewRecorder()
	(&HealthHandler{DB: db}).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	resp := decodeHealth(t, rec)
	dbCheck := resp.Checks["database"]
	assert.Equal(t, "healthy", dbCheck.Status)
	assert.EqualValues(t, 10, dbCheck.Details["max_open_connections"])
	assert.Contains(t, dbCheck.Details, "utilization_percent")
}

func TestReadyHandler(t *testing.T) {
	t.Run("ready", func(t *testing.T) {
		db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
		require.NoError(t, err)
		defer func() { _ = db.Close() }()
		mock.ExpectPing()

		rec := httptest.NewRecorder()
		(&ReadyHandler{DB: db}).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "ready", rec.Body.String())
	})

	t.Run("not ready", func(t *testing.T) {
		db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
		require.NoError(t, err)
		defer func() { _ = db.Close() }()
		mock.ExpectPing().WillReturnError(sql.ErrConnDone)

		rec := httptest.NewRecorder()
		(&ReadyHandler{DB: db}).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	})

	t.Run("nil db", func(t *testing.T) {
		rec := httptest.NewRecorder()
		(&ReadyHandler{}).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	})
}

func TestRegisterOps(t *testing.T) {
	mux := http.NewServeMux()
	RegisterOps(mux, &HealthHandler{})

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/live", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "alive", rec.Body.String())

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}
