package notify

import (
	"context"
	"log/slog"
	"runtime/debug"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"agrisense/internal/domain/entity"
	"agrisense/internal/handler/http/requestid"
	"agrisense/internal/resilience/circuitbreaker"
)

const (
	workerPoolTimeout   = 5 * time.Second  // Timeout for acquiring a worker slot
	notificationTimeout = 30 * time.Second // Timeout for one channel delivery
)

// Event names used in logs and metric labels.
const (
	eventBill     = "bill"
	eventLowStock = "low_stock"
)

// Service dispatches notifications to all enabled channels in background
// goroutines. Notify methods return immediately and never fail the caller;
// delivery failures are logged and counted.
type Service interface {
	NotifyBill(ctx context.Context, bill *entity.BillReport) error
	NotifyLowStock(ctx context.Context, products []entity.Product) error

	// GetChannelHealth returns the circuit breaker state of every channel.
	GetChannelHealth() []ChannelHealthStatus

	// Shutdown stops accepting work and waits for in-flight deliveries
	// until ctx expires.
	Shutdown(ctx context.Context) error
}

// ChannelHealthStatus represents the health status of a notification channel.
type ChannelHealthStatus struct {
	Name               string
	Enabled            bool
	CircuitBreakerOpen bool
}

type service struct {
	channels       []Channel
	workerPool     chan struct{} // Semaphore for limiting concurrent deliveries
	breakers       map[string]*circuitbreaker.CircuitBreaker
	wg             sync.WaitGroup
	mu             sync.Mutex // guards closing and wg.Add
	closing        bool
	inflight       atomic.Int64
	shutdownCtx    context.Context
	shutdownCancel context.CancelFunc
}

// NewService creates a notification service over channels with at most
// maxConcurrent deliveries in flight.
func NewService(channels []Channel, maxConcurrent int) Service {
	if maxConcurrent <= 0 {
		maxConcurrent = 1
	}
	shutdownCtx, shutdownCancel := context.WithCancel(context.Background())

	svc := &service{
		channels:       channels,
		workerPool:     make(chan struct{}, maxConcurrent),
		breakers:       make(map[string]*circuitbreaker.CircuitBreaker, len(channels)),
		shutdownCtx:    shutdownCtx,
		shutdownCancel: shutdownCancel,
	}

	enabled := 0
	for _, ch := range channels {
		svc.breakers[ch.Name()] = circuitbreaker.New(circuitbreaker.WebhookConfig(ch.Name() + "-webhook"))
		if ch.IsEnabled() {
			enabled++
		}
	}
	enabledChannels.Set(float64(enabled))

	return svc
}

func (s *service) NotifyBill(ctx context.Context, bill *entity.BillReport) error {
	if bill == nil {
		slog.Warn("Invalid bill notification input")
		return nil
	}
	s.dispatch(ctx, eventBill, func(ctx context.Context, ch Channel) error {
		return ch.NotifyBill(ctx, bill)
	})
	return nil
}

func (s *service) NotifyLowStock(ctx context.Context, products []entity.Product) error {
	if len(products) == 0 {
		return nil
	}
	// 呼び出し元がスライスを再利用しても影響しないようにコピーする
	snapshot := append([]entity.Product(nil), products...)
	s.dispatch(ctx, eventLowStock, func(ctx context.Context, ch Channel) error {
		return ch.NotifyLowStock(ctx, snapshot)
	})
	return nil
}

func (s *service) dispatch(ctx context.Context, event string, send func(context.Context, Channel) error) {
	requestID := requestid.FromContext(ctx)
	if requestID == "" {
		requestID = uuid.New().String()
	}

	enabled := make([]Channel, 0, len(s.channels))
	for _, ch := range s.channels {
		if ch.IsEnabled() {
			enabled = append(enabled, ch)
		}
	}

	// Shutdown の Wait と wg.Add が競合しないよう、登録までをロック下で行う
	s.mu.Lock()
	if s.closing {
		s.mu.Unlock()
		slog.Warn("Notification dropped: service is shut down", slog.String("event", event))
		return
	}
	s.wg.Add(len(enabled))
	s.inflight.Add(int64(len(enabled)))
	s.mu.Unlock()

	for _, ch := range enabled {
		go s.notifyChannel(requestID, event, ch, send)
	}
}

// notifyChannel delivers one event to one channel.
func (s *service) notifyChannel(requestID, event string, channel Channel, send func(context.Context, Channel) error) {
	defer s.wg.Done()
	defer s.inflight.Add(-1)

	inflightDeliveries.Inc()
	defer inflightDeliveries.Dec()

	defer func() {
		if r := recover(); r != nil {
			slog.Error("Panic in notification channel",
				slog.String("request_id", requestID),
				slog.String("channel", channel.Name()),
				slog.Any("panic", r),
				slog.String("stack", string(debug.Stack())))
		}
	}()

	select {
	case s.workerPool <- struct{}{}:
		defer func() { <-s.workerPool }()
	case <-time.After(workerPoolTimeout):
		slog.Warn("Notification dropped: worker pool full",
			slog.String("request_id", requestID),
			slog.String("channel", channel.Name()))
		observeDrop(channel.Name(), event, dropPoolFull)
		return
	case <-s.shutdownCtx.Done():
		observeDrop(channel.Name(), event, dropShutdown)
		return
	}

	ctx, cancel := context.WithTimeout(s.shutdownCtx, notificationTimeout)
	defer cancel()
	ctx = requestid.WithRequestID(ctx, requestID)

	start := time.Now()

	breaker := s.breakers[channel.Name()]
	err := breaker.Run(func() error { return send(ctx, channel) })
	duration := time.Since(start)

	switch {
	case err == nil:
		observeDelivery(channel.Name(), event, nil, duration)
		slog.Info("Channel notification sent",
			slog.String("request_id", requestID),
			slog.String("channel", channel.Name()),
			slog.String("event", event),
			slog.Duration("send_duration", duration))
	case circuitbreaker.IsRejected(err):
		observeDrop(channel.Name(), event, dropCircuitOpen)
		slog.Warn("Channel temporarily disabled by circuit breaker",
			slog.String("request_id", requestID),
			slog.String("channel", channel.Name()),
			slog.String("event", event))
	default:
		observeDelivery(channel.Name(), event, err, duration)
		slog.Warn("Channel notification failed",
			slog.String("request_id", requestID),
			slog.String("channel", channel.Name()),
			slog.String("event", event),
			slog.Duration("send_duration", duration),
			slog.Any("error", err))
	}
}

func (s *service) GetChannelHealth() []ChannelHealthStatus {
	statuses := make([]ChannelHealthStatus, 0, len(s.channels))
	for _, ch := range s.channels {
		statuses = append(statuses, ChannelHealthStatus{
			Name:               ch.Name(),
			Enabled:            ch.IsEnabled(),
			CircuitBreakerOpen: s.breakers[ch.Name()].IsOpen(),
		})
	}
	return statuses
}

func (s *service) Shutdown(ctx context.Context) error {
	slog.Info("Shutting down notification service")
	s.mu.Lock()
	s.closing = true
	s.mu.Unlock()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.shutdownCancel()
		slog.Info("Notification service shutdown complete")
		return nil
	case <-ctx.Done():
		// 残りの配信を打ち切る
		s.shutdownCancel()
		slog.Warn("Notification service shutdown timeout")
		return ctx.Err()
	}
}
