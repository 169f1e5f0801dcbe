package dashboard_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agrisense/internal/domain/entity"
	"agrisense/internal/observability/metrics"
	"agrisense/internal/repository"
	"agrisense/internal/usecase/dashboard"
)

/* ───────── スタブ実装 ───────── */

// 埋め込んだインターフェースのうち Count / List / TotalSales だけを実装する

type stubProducts struct {
	repository.ProductRepository
	all []*entity.Product
	err error
}

func (s *stubProducts) Count(context.Context) (int64, error) { return int64(len(s.all)), s.err }
func (s *stubProducts) List(_ context.Context, f repository.ProductFilter) ([]*entity.Product, error) {
	if s.err != nil {
		return nil, s.err
	}
	if !f.LowStock {
		return s.all, nil
	}
	var out []*entity.Product
	for _, p := range s.all {
		if p.LowStock() {
			out = append(out, p)
		}
	}
	return out, nil
}

type stubMachinery struct {
	repository.MachineryRepository
	n int64
}

func (s *stubMachinery) Count(context.Context) (int64, error) { return s.n, nil }

type stubVideos struct {
	repository.VideoRepository
	n int64
}

func (s *stubVideos) Count(context.Context) (int64, error) { return s.n, nil }

type stubUsers struct {
	repository.UserRepository
	n   int64
	err error
}

func (s *stubUsers) Count(context.Context) (int64, error) { return s.n, s.err }

type stubBills struct {
	repository.BillRepository
	n     int64
	total float64
}

func (s *stubBills) Count(context.Context) (int64, error)        { return s.n, nil }
func (s *stubBills) TotalSales(context.Context) (float64, error) { return s.total, nil }

func newService() (*dashboard.Service, *stubProducts, *stubUsers) {
	products := &stubProducts{all: []*entity.Product{
		{ID: 1, Name: "Hybrid Tomato Seeds", Category: "Seeds", Quantity: 45},
		{ID: 2, Name: "Neem Oil", Category: "Pesticides", Quantity: 3},
		{ID: 3, Name: "Organic Compost", Category: "Soil", Quantity: 10},
		{ID: 4, Name: "Seaweed Extract", Category: "Supplements", Quantity: 9},
		{ID: 5, Name: "Drip Kit", Category: "Machinery", Quantity: 1},
	}}
	users := &stubUsers{n: 7}
	return &dashboard.Service{
		Products:  products,
		Machinery: &stubMachinery{n: 3},
		Videos:    &stubVideos{n: 6},
		Users:     users,
		Bills:     &stubBills{n: 4, total: 1234.5},
	}, products, users
}

/* ───────── テスト ───────── */

func TestService_Stats(t *testing.T) {
	svc, _, _ := newService()

	st, err := svc.Stats(context.Background())
	require.NoError(t, err)

	want := &dashboard.Stats{
		Products:   5,
		Machinery:  3,
		Videos:     6,
		Users:      7,
		Invoices:   4,
		TotalSales: 1234.5,
		LowStock:   3,
		Inventory: []dashboard.InventoryItem{
			{ID: 1, Name: "Hybrid Tomato Seeds", Category: "Seeds", Quantity: 45, Status: "Stable"},
			{ID: 2, Name: "Neem Oil", Category: "Pesticides", Quantity: 3, Status: "Low Stock"},
			{ID: 3, Name: "Organic Compost", Category: "Soil", Quantity: 10, Status: "Stable"},
			{ID: 4, Name: "Seaweed Extract", Category: "Supplements", Quantity: 9, Status: "Low Stock"},
		},
	}
	if diff := cmp.Diff(want, st); diff != "" {
		t.Errorf("Stats mismatch (-want +got):\n%s", diff)
	}

	assert.Equal(t, 5.0, testutil.ToFloat64(metrics.ProductsTotal))
	assert.Equal(t, 3.0, testutil.ToFloat64(metrics.LowStockProducts))
}

func TestService_Stats_EmptyCatalog(t *testing.T) {
	svc, products, _ := newService()
	products.all = nil

	st, err := svc.Stats(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, st.Inventory)
	assert.Empty(t, st.Inventory)
	assert.Zero(t, st.LowStock)
}

func TestService_Stats_Error(t *testing.T) {
	svc, _, users := newService()
	users.err = errors.New("connection refused")

	_, err := svc.Stats(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "count users")
}
