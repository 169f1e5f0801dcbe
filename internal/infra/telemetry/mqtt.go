// Package telemetry publishes sensor readings to an MQTT broker.
package telemetry

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"agrisense/internal/domain/entity"
	"agrisense/internal/resilience/circuitbreaker"
)

// ErrNotConnected is returned by Publish before Connect succeeds or after
// the connection dropped.
var ErrNotConnected = errors.New("not connected to MQTT broker")

// MQTTPublisher publishes each reading as a JSON message on Config.Topic.
type MQTTPublisher struct {
	cfg     Config
	client  mqtt.Client
	breaker *circuitbreaker.CircuitBreaker
	mu      sync.Mutex
}

// NewMQTT builds a publisher. Call Connect before publishing.
func NewMQTT(cfg Config) *MQTTPublisher {
	opts := mqtt.NewClientOptions()
	opts.AddBroker(cfg.Broker)
	opts.SetClientID(cfg.ClientID)
	opts.SetUsername(cfg.Username)
	opts.SetPassword(cfg.Password)
	opts.SetCleanSession(true)
	opts.SetAutoReconnect(true)
	opts.SetConnectRetry(true)
	opts.SetConnectTimeout(cfg.ConnectTimeout)
	opts.SetOnConnectHandler(func(mqtt.Client) {
		slog.Info("connected to MQTT broker", slog.String("broker", cfg.Broker))
		brokerConnected.Set(1)
	})
	opts.SetConnectionLostHandler(func(_ mqtt.Client, err error) {
		slog.Warn("MQTT connection lost",
			slog.String("broker", cfg.Broker),
			slog.Any("error", err))
		brokerConnected.Set(0)
	})
	return newMQTTWithClient(cfg, mqtt.NewClient(opts))
}

func newMQTTWithClient(cfg Config, client mqtt.Client) *MQTTPublisher {
	return &MQTTPublisher{
		cfg:     cfg,
		client:  client,
		breaker: circuitbreaker.New(circuitbreaker.MQTTConfig()),
	}
}

// Connect dials the broker and waits up to ConnectTimeout.
func (p *MQTTPublisher) Connect(ctx context.Context) error {
	token := p.client.Connect()
	select {
	case <-token.Done():
	case <-ctx.Done():
		return fmt.Errorf("mqtt connect: %w", ctx.Err())
	case <-time.After(p.cfg.ConnectTimeout):
		return errors.New("mqtt connect: timeout")
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("mqtt connect: %w", err)
	}
	return nil
}

type readingPayload struct {
	ID          int64     `json:"id"`
	Temperature float64   `json:"temperature"`
	Humidity    float64   `json:"humidity"`
	Moisture    float64   `json:"moisture"`
	RecordedAt  time.Time `json:"recordedAt"`
}

// Publish sends r through the circuit breaker. When the breaker is open the
// reading is dropped without touching the network.
func (p *MQTTPublisher) Publish(ctx context.Context, r *entity.SensorReading) error {
	payload, err := json.Marshal(readingPayload{
		ID:          r.ID,
		Temperature: r.Temperature,
		Humidity:    r.Humidity,
		Moisture:    r.Moisture,
		RecordedAt:  r.RecordedAt,
	})
	if err != nil {
		return fmt.Errorf("marshal reading: %w", err)
	}

	err = p.breaker.Run(func() error { return p.publish(ctx, payload) })
	switch {
	case err == nil:
		publishedTotal.WithLabelValues("success").Inc()
		return nil
	case circuitbreaker.IsRejected(err):
		publishedTotal.WithLabelValues("dropped").Inc()
		return fmt.Errorf("mqtt publish: %w", err)
	default:
		publishedTotal.WithLabelValues("error").Inc()
		return err
	}
}

func (p *MQTTPublisher) publish(ctx context.Context, payload []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.client.IsConnected() {
		return ErrNotConnected
	}
	token := p.client.Publish(p.cfg.Topic, p.cfg.QoS, p.cfg.Retained, payload)
	select {
	case <-token.Done():
	case <-ctx.Done():
		return fmt.Errorf("mqtt publish: %w", ctx.Err())
	case <-time.After(p.cfg.PublishTimeout):
		return errors.New("mqtt publish: timeout")
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("mqtt publish: %w", err)
	}
	return nil
}

// IsConnected reports whether the broker connection is up.
func (p *MQTTPublisher) IsConnected() bool {
	return p.client.IsConnected()
}

// Close disconnects, allowing 250ms for in-flight work.
func (p *MQTTPublisher) Close() {
	if p.client.IsConnected() {
		p.client.Disconnect(250)
	}
	brokerConnected.Set(0)
}
