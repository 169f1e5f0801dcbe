package bill_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agrisense/internal/domain/entity"
	"agrisense/internal/handler/http/bill"
	"agrisense/internal/infra/cartstore"
	"agrisense/internal/repository"
	billUC "agrisense/internal/usecase/bill"
)

/* ───────── スタブ実装 ───────── */

type stubProducts struct{ data map[int64]*entity.Product }

func (s *stubProducts) Get(_ context.Context, id int64) (*entity.Product, error) {
	if p, ok := s.data[id]; ok {
		cp := *p
		return &cp, nil
	}
	return nil, nil
}
func (s *stubProducts) List(context.Context, repository.ProductFilter) ([]*entity.Product, error) {
	return nil, nil
}
func (s *stubProducts) Search(context.Context, string) ([]*entity.Product, error) { return nil, nil }
func (s *stubProducts) Create(context.Context, *entity.Product) error             { return nil }
func (s *stubProducts) Update(context.Context, *entity.Product) error             { return nil }
func (s *stubProducts) Delete(context.Context, int64) error                       { return nil }
func (s *stubProducts) Count(context.Context) (int64, error)                      { return 0, nil }

// stubBills は在庫減算をトランザクション的に模倣する
type stubBills struct {
	products *stubProducts
	data     map[int64]*entity.BillReport
	next     int64
}

func (s *stubBills) Get(_ context.Context, id int64) (*entity.BillReport, error) {
	return s.data[id], nil
}
func (s *stubBills) List(context.Context) ([]*entity.BillReport, error) {
	var out []*entity.BillReport
	for id := int64(1); id <= s.next; id++ {
		if b, ok := s.data[id]; ok {
			out = append(out, b)
		}
	}
	return out, nil
}
func (s *stubBills) Create(_ context.Context, b *entity.BillReport) error {
	for _, it := range b.Items {
		if s.products.data[it.ProductID].Quantity < it.Quantity {
			return entity.ErrInsufficientStock
		}
	}
	for _, it := range b.Items {
		s.products.data[it.ProductID].Quantity -= it.Quantity
	}
	s.next++
	b.ID = s.next
	s.data[b.ID] = b
	return nil
}
func (s *stubBills) Delete(_ context.Context, id int64) error {
	if _, ok := s.data[id]; !ok {
		return entity.ErrNotFound
	}
	delete(s.data, id)
	return nil
}
func (s *stubBills) Count(context.Context) (int64, error) { return int64(len(s.data)), nil }
func (s *stubBills) TotalSales(context.Context) (float64, error) {
	var total float64
	for _, b := range s.data {
		total += b.Total
	}
	return total, nil
}

type fixture struct {
	mux      *http.ServeMux
	carts    *cartstore.Memory
	products *stubProducts
}

func setup() fixture {
	products := &stubProducts{data: map[int64]*entity.Product{
		1: {ID: 1, Name: "Hybrid Corn Seeds", Price: 12.5, Quantity: 12, Category: "Seeds"},
		2: {ID: 2, Name: "Organic Compost", Price: 3.99, Quantity: 40, Category: "Soil"},
	}}
	carts := cartstore.NewMemory(time.Hour)
	svc := &billUC.Service{
		Repo:     &stubBills{products: products, data: map[int64]*entity.BillReport{}},
		Products: products,
		Carts:    carts,
	}
	mux := http.NewServeMux()
	bill.Register(mux, svc)
	return fixture{mux: mux, carts: carts, products: products}
}

func (f fixture) serve(method, target, body string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	f.mux.ServeHTTP(rec, httptest.NewRequest(method, target, strings.NewReader(body)))
	return rec
}

func (f fixture) putCart(t *testing.T, id string, items ...entity.CartItem) {
	t.Helper()
	require.NoError(t, f.carts.Save(context.Background(), &entity.Cart{ID: id, Items: items}))
}

/* ───────── テスト ───────── */

func TestCheckoutHandler(t *testing.T) {
	f := setup()
	f.putCart(t, "c-1",
		entity.CartItem{ProductID: 1, Name: "Hybrid Corn Seeds", Price: 12.5, Quantity: 4},
		entity.CartItem{ProductID: 2, Name: "Organic Compost", Price: 3.99, Quantity: 3},
	)

	rec := f.serve(http.MethodPost, "/cart/c-1/checkout", `{"customerName":"Ravi Kumar"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var got bill.DTO
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
	assert.Equal(t, "Ravi Kumar", got.CustomerName)
	assert.InDelta(t, 61.97, got.Total, 0.001)
	require.Len(t, got.Items, 2)
	assert.InDelta(t, 50.0, got.Items[0].LineTotal, 0.001)
	assert.Equal(t, "/bills/1", rec.Header().Get("Location"))

	assert.Equal(t, 8, f.products.data[1].Quantity)

	// カートは削除済み
	rec = f.serve(http.MethodPost, "/cart/c-1/checkout", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCheckoutHandler_DefaultCustomer(t *testing.T) {
	f := setup()
	f.putCart(t, "c-2", entity.CartItem{ProductID: 2, Name: "Organic Compost", Price: 3.99, Quantity: 1})

	rec := f.serve(http.MethodPost, "/cart/c-2/checkout", "")
	require.Equal(t, http.StatusCreated, rec.Code)

	var got bill.DTO
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
	assert.Equal(t, entity.DefaultCustomerName, got.CustomerName)
}

func TestCheckoutHandler_Errors(t *testing.T) {
	f := setup()
	f.putCart(t, "empty")
	f.putCart(t, "greedy", entity.CartItem{ProductID: 1, Name: "Hybrid Corn Seeds", Price: 12.5, Quantity: 13})

	tests := []struct {
		name   string
		target string
		body   string
		want   int
	}{
		{"TC-1: empty cart", "/cart/empty/checkout", "", http.StatusBadRequest},
		{"TC-2: insufficient stock", "/cart/greedy/checkout", "", http.StatusConflict},
		{"TC-3: unknown cart", "/cart/missing/checkout", "", http.StatusNotFound},
		{"TC-4: malformed body", "/cart/greedy/checkout", "{", http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := f.serve(http.MethodPost, tt.target, tt.body)
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d (body %s)", rec.Code, tt.want, rec.Body.String())
			}
		})
	}
	assert.Equal(t, 12, f.products.data[1].Quantity, "stock untouched")
}

func TestBillReadAndDelete(t *testing.T) {
	f := setup()
	f.putCart(t, "c-3", entity.CartItem{ProductID: 1, Name: "Hybrid Corn Seeds", Price: 12.5, Quantity: 1})
	require.Equal(t, http.StatusCreated, f.serve(http.MethodPost, "/cart/c-3/checkout", "").Code)

	rec := f.serve(http.MethodGet, "/bills", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var list []bill.DTO
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&list))
	assert.Len(t, list, 1)

	assert.Equal(t, http.StatusOK, f.serve(http.MethodGet, "/bills/1", "").Code)
	assert.Equal(t, http.StatusNotFound, f.serve(http.MethodGet, "/bills/2", "").Code)
	assert.Equal(t, http.StatusNoContent, f.serve(http.MethodDelete, "/bills/1", "").Code)
	assert.Equal(t, http.StatusNotFound, f.serve(http.MethodDelete, "/bills/1", "").Code)
}
