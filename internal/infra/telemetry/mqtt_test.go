package telemetry

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agrisense/internal/domain/entity"
)

/* ───────── スタブ実装 ───────── */

type fakeToken struct {
	done chan struct{}
	err  error
}

func completedToken(err error) *fakeToken {
	t := &fakeToken{done: make(chan struct{}), err: err}
	close(t.done)
	return t
}

func (t *fakeToken) Wait() bool                     { <-t.done; return true }
func (t *fakeToken) WaitTimeout(time.Duration) bool { return true }
func (t *fakeToken) Done() <-chan struct{}          { return t.done }
func (t *fakeToken) Error() error                   { return t.err }

type message struct {
	topic    string
	qos      byte
	retained bool
	payload  []byte
}

// mqtt.Client を埋め込み、使うメソッドだけ差し替える
type fakeClient struct {
	mqtt.Client
	connected    bool
	connectErr   error
	publishErr   error
	pending      bool
	published    []message
	disconnected bool
}

func (c *fakeClient) IsConnected() bool { return c.connected }
func (c *fakeClient) Connect() mqtt.Token {
	if c.connectErr == nil {
		c.connected = true
	}
	return completedToken(c.connectErr)
}
func (c *fakeClient) Disconnect(uint) {
	c.connected = false
	c.disconnected = true
}
func (c *fakeClient) Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token {
	if c.pending {
		return &fakeToken{done: make(chan struct{})}
	}
	c.published = append(c.published, message{topic, qos, retained, payload.([]byte)})
	return completedToken(c.publishErr)
}

func testConfig() Config {
	return Config{
		Enabled:        true,
		Broker:         "tcp://broker.local:1883",
		ClientID:       "test",
		Topic:          "farm/sensors",
		QoS:            1,
		Retained:       true,
		ConnectTimeout: time.Second,
		PublishTimeout: 50 * time.Millisecond,
	}
}

func reading() *entity.SensorReading {
	return &entity.SensorReading{
		ID:          3,
		Temperature: 24.3,
		Humidity:    64,
		Moisture:    41.8,
		RecordedAt:  time.Date(2026, 5, 1, 6, 30, 0, 0, time.UTC),
	}
}

/* ───────── テスト ───────── */

func TestMQTTPublisher_Publish(t *testing.T) {
	client := &fakeClient{}
	p := newMQTTWithClient(testConfig(), client)
	require.NoError(t, p.Connect(context.Background()))

	before := testutil.ToFloat64(publishedTotal.WithLabelValues("success"))
	require.NoError(t, p.Publish(context.Background(), reading()))
	assert.Equal(t, before+1, testutil.ToFloat64(publishedTotal.WithLabelValues("success")))

	require.Len(t, client.published, 1)
	msg := client.published[0]
	assert.Equal(t, "farm/sensors", msg.topic)
	assert.Equal(t, byte(1), msg.qos)
	assert.True(t, msg.retained)

	var got map[string]any
	require.NoError(t, json.Unmarshal(msg.payload, &got))
	assert.Equal(t, 24.3, got["temperature"])
	assert.Equal(t, "2026-05-01T06:30:00Z", got["recordedAt"])
}

func TestMQTTPublisher_NotConnected(t *testing.T) {
	p := newMQTTWithClient(testConfig(), &fakeClient{})

	err := p.Publish(context.Background(), reading())
	assert.ErrorIs(t, err, ErrNotConnected)
}

func TestMQTTPublisher_ConnectError(t *testing.T) {
	p := newMQTTWithClient(testConfig(), &fakeClient{connectErr: errors.New("not authorized")})

	err := p.Connect(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not authorized")
	assert.False(t, p.IsConnected())
}

func TestMQTTPublisher_PublishTimeout(t *testing.T) {
	client := &fakeClient{connected: true, pending: true}
	p := newMQTTWithClient(testConfig(), client)

	err := p.Publish(context.Background(), reading())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "timeout")
}

func TestMQTTPublisher_BreakerOpens(t *testing.T) {
	client := &fakeClient{connected: true, publishErr: errors.New("broken pipe")}
	p := newMQTTWithClient(testConfig(), client)

	// MQTTConfig: 10 リクエスト以上かつ失敗率 80% で open
	for range 10 {
		_ = p.Publish(context.Background(), reading())
	}
	sent := len(client.published)

	err := p.Publish(context.Background(), reading())
	require.Error(t, err)
	assert.Equal(t, sent, len(client.published), "open breaker must not reach the client")
}

func TestMQTTPublisher_Close(t *testing.T) {
	client := &fakeClient{connected: true}
	p := newMQTTWithClient(testConfig(), client)

	p.Close()
	assert.True(t, client.disconnected)
	assert.Equal(t, 0.0, testutil.ToFloat64(brokerConnected))
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{name: "valid", mutate: func(*Config) {}},
		{name: "bad scheme", mutate: func(c *Config) { c.Broker = "http://broker:1883" }, wantErr: true},
		{name: "no host", mutate: func(c *Config) { c.Broker = "broker" }, wantErr: true},
		{name: "empty topic", mutate: func(c *Config) { c.Topic = " " }, wantErr: true},
		{name: "wildcard topic", mutate: func(c *Config) { c.Topic = "farm/#" }, wantErr: true},
		{name: "qos 3", mutate: func(c *Config) { c.QoS = 3 }, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestLoadConfig_Disabled(t *testing.T) {
	t.Setenv("MQTT_ENABLED", "false")
	t.Setenv("MQTT_BROKER", "::not a url::")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.False(t, cfg.Enabled)
}

func TestLoadConfig_Enabled(t *testing.T) {
	t.Setenv("MQTT_ENABLED", "true")
	t.Setenv("MQTT_BROKER", "tcp://mosquitto:1883")
	t.Setenv("MQTT_TOPIC", "greenhouse/1")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "greenhouse/1", cfg.Topic)
	assert.Equal(t, "agrisense-worker", cfg.ClientID)
}
