package notify

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agrisense/internal/domain/entity"
	"agrisense/internal/handler/http/requestid"
)

/* ───────── スタブ実装 ───────── */

type mockChannel struct {
	name    string
	enabled bool
	err     error
	delay   time.Duration
	panics  bool

	mu         sync.Mutex
	bills      []*entity.BillReport
	lowStock   [][]entity.Product
	requestIDs []string
}

func (m *mockChannel) Name() string    { return m.name }
func (m *mockChannel) IsEnabled() bool { return m.enabled }

func (m *mockChannel) record(ctx context.Context) error {
	if m.panics {
		panic("boom")
	}
	if m.delay > 0 {
		select {
		case <-time.After(m.delay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	m.requestIDs = append(m.requestIDs, requestid.FromContext(ctx))
	return m.err
}

func (m *mockChannel) NotifyBill(ctx context.Context, b *entity.BillReport) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.bills = append(m.bills, b)
	return m.record(ctx)
}

func (m *mockChannel) NotifyLowStock(ctx context.Context, ps []entity.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lowStock = append(m.lowStock, ps)
	return m.record(ctx)
}

func (m *mockChannel) billCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.bills)
}

func shutdown(t *testing.T, svc Service) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, svc.Shutdown(ctx))
}

func sampleBill() *entity.BillReport {
	return &entity.BillReport{ID: 7, CustomerName: "Asha", Total: 21.6, CreatedAt: time.Now()}
}

/* ───────── テスト ───────── */

func TestService_NotifyBill_EnabledChannelsOnly(t *testing.T) {
	discord := &mockChannel{name: "discord", enabled: true}
	slack := &mockChannel{name: "slack", enabled: false}
	svc := NewService([]Channel{discord, slack}, 4)

	require.NoError(t, svc.NotifyBill(context.Background(), sampleBill()))
	shutdown(t, svc)

	assert.Equal(t, 1, discord.billCount())
	assert.Equal(t, 0, slack.billCount())
}

func TestService_NotifyLowStock_AllChannels(t *testing.T) {
	a := &mockChannel{name: "discord", enabled: true}
	b := &mockChannel{name: "slack", enabled: true}
	svc := NewService([]Channel{a, b}, 4)

	products := []entity.Product{{ID: 1, Name: "Neem Oil", Quantity: 3}}
	require.NoError(t, svc.NotifyLowStock(context.Background(), products))

	// 呼び出し側のスライス変更は配信内容に影響しない
	products[0].Name = "changed"
	shutdown(t, svc)

	require.Len(t, a.lowStock, 1)
	require.Len(t, b.lowStock, 1)
	assert.Equal(t, "Neem Oil", a.lowStock[0][0].Name)
}

func TestService_EmptyInputsAreIgnored(t *testing.T) {
	ch := &mockChannel{name: "discord", enabled: true}
	svc := NewService([]Channel{ch}, 1)

	assert.NoError(t, svc.NotifyBill(context.Background(), nil))
	assert.NoError(t, svc.NotifyLowStock(context.Background(), nil))
	shutdown(t, svc)

	assert.Empty(t, ch.bills)
	assert.Empty(t, ch.lowStock)
}

func TestService_PropagatesRequestID(t *testing.T) {
	ch := &mockChannel{name: "discord", enabled: true}
	svc := NewService([]Channel{ch}, 1)

	ctx := requestid.WithRequestID(context.Background(), "req-123")
	require.NoError(t, svc.NotifyBill(ctx, sampleBill()))
	require.NoError(t, svc.NotifyBill(context.Background(), sampleBill()))
	shutdown(t, svc)

	require.Len(t, ch.requestIDs, 2)
	assert.Contains(t, ch.requestIDs, "req-123")
	for _, id := range ch.requestIDs {
		assert.NotEmpty(t, id)
	}
}

func TestService_FailureIsRecorded(t *testing.T) {
	ch := &mockChannel{name: "failing-test", enabled: true, err: errors.New("webhook 500")}
	svc := NewService([]Channel{ch}, 1)

	require.NoError(t, svc.NotifyBill(context.Background(), sampleBill()))
	shutdown(t, svc)

	assert.Equal(t, 1.0, testutil.ToFloat64(deliveriesTotal.WithLabelValues("failing-test", eventBill, outcomeFailed)))
}

func TestService_CircuitBreakerOpens(t *testing.T) {
	ch := &mockChannel{name: "breaker-test", enabled: true, err: errors.New("webhook 500")}
	svc := NewService([]Channel{ch}, 1)

	// WebhookConfig: 3 リクエスト以上かつ失敗率 50% で open
	for range 3 {
		require.NoError(t, svc.NotifyBill(context.Background(), sampleBill()))
		require.Eventually(t, func() bool { return svc.(*service).activeCount() == 0 }, time.Second, 5*time.Millisecond)
	}

	health := svc.GetChannelHealth()
	require.Len(t, health, 1)
	assert.True(t, health[0].CircuitBreakerOpen)

	require.NoError(t, svc.NotifyBill(context.Background(), sampleBill()))
	shutdown(t, svc)

	assert.Equal(t, 3, ch.billCount(), "open breaker skips the channel")
	assert.Equal(t, 1.0, testutil.ToFloat64(dropsTotal.WithLabelValues("breaker-test", dropCircuitOpen)))
	assert.Equal(t, 3.0, testutil.ToFloat64(deliveriesTotal.WithLabelValues("breaker-test", eventBill, outcomeFailed)))
}

func TestService_PanicIsRecovered(t *testing.T) {
	ch := &mockChannel{name: "panicky", enabled: true, panics: true}
	svc := NewService([]Channel{ch}, 1)

	require.NoError(t, svc.NotifyBill(context.Background(), sampleBill()))
	shutdown(t, svc)
}

func TestService_Shutdown(t *testing.T) {
	t.Run("waits for in-flight deliveries", func(t *testing.T) {
		ch := &mockChannel{name: "slow", enabled: true, delay: 50 * time.Millisecond}
		svc := NewService([]Channel{ch}, 1)

		require.NoError(t, svc.NotifyBill(context.Background(), sampleBill()))
		shutdown(t, svc)
		assert.Len(t, ch.requestIDs, 1)
	})

	t.Run("times out", func(t *testing.T) {
		ch := &mockChannel{name: "stuck", enabled: true, delay: time.Minute}
		svc := NewService([]Channel{ch}, 1)
		require.NoError(t, svc.NotifyBill(context.Background(), sampleBill()))

		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
		defer cancel()
		assert.ErrorIs(t, svc.Shutdown(ctx), context.DeadlineExceeded)
	})

	t.Run("drops work after shutdown", func(t *testing.T) {
		ch := &mockChannel{name: "closed", enabled: true}
		svc := NewService([]Channel{ch}, 1)
		shutdown(t, svc)

		require.NoError(t, svc.NotifyBill(context.Background(), sampleBill()))
		time.Sleep(20 * time.Millisecond)
		assert.Equal(t, 0, ch.billCount())
	})

	t.Run("notify racing shutdown", func(t *testing.T) {
		ch := &mockChannel{name: "busy", enabled: true}
		svc := NewService([]Channel{ch}, 4)

		var senders sync.WaitGroup
		for range 4 {
			senders.Add(1)
			go func() {
				defer senders.Done()
				for range 250 {
					_ = svc.NotifyBill(context.Background(), sampleBill())
				}
			}()
		}
		time.Sleep(time.Millisecond)
		shutdown(t, svc)
		delivered := ch.billCount()

		// Shutdown 完了後に受け付けた配信はない
		senders.Wait()
		time.Sleep(20 * time.Millisecond)
		assert.Equal(t, delivered, ch.billCount())
	})
}

func TestService_GetChannelHealth(t *testing.T) {
	svc := NewService([]Channel{
		&mockChannel{name: "discord", enabled: true},
		&mockChannel{name: "slack", enabled: false},
	}, 1)

	health := svc.GetChannelHealth()
	assert.Equal(t, []ChannelHealthStatus{
		{Name: "discord", Enabled: true},
		{Name: "slack", Enabled: false},
	}, health)
}
