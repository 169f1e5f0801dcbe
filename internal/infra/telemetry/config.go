package telemetry

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	envcfg "agrisense/pkg/config"
)

// Config holds the MQTT publisher settings.
type Config struct {
	Enabled        bool
	Broker         string
	ClientID       string
	Username       string
	Password       string
	Topic          string
	QoS            byte
	Retained       bool
	ConnectTimeout time.Duration
	PublishTimeout time.Duration
}

// LoadConfig reads MQTT_* variables.
//
// Environment variables:
//   - MQTT_ENABLED (default: false)
//   - MQTT_BROKER (default: tcp://localhost:1883)
//   - MQTT_CLIENT_ID (default: agrisense-worker)
//   - MQTT_USERNAME, MQTT_PASSWORD
//   - MQTT_TOPIC (default: agrisense/sensors)
//   - MQTT_QOS (default: 0)
//   - MQTT_RETAINED (default: true)
func LoadConfig() (Config, error) {
	cfg := Config{
		Enabled:        envcfg.GetEnvBool("MQTT_ENABLED", false),
		Broker:         envcfg.GetEnvString("MQTT_BROKER", "tcp://localhost:1883"),
		ClientID:       envcfg.GetEnvString("MQTT_CLIENT_ID", "agrisense-worker"),
		Username:       envcfg.GetEnvString("MQTT_USERNAME", ""),
		Password:       envcfg.GetEnvString("MQTT_PASSWORD", ""),
		Topic:          envcfg.GetEnvString("MQTT_TOPIC", "agrisense/sensors"),
		QoS:            byte(envcfg.GetEnvInt("MQTT_QOS", 0)),
		Retained:       envcfg.GetEnvBool("MQTT_RETAINED", true),
		ConnectTimeout: envcfg.GetEnvDuration("MQTT_CONNECT_TIMEOUT", 30*time.Second),
		PublishTimeout: envcfg.GetEnvDuration("MQTT_PUBLISH_TIMEOUT", 5*time.Second),
	}
	if !cfg.Enabled {
		return cfg, nil
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid MQTT configuration: %w", err)
	}
	return cfg, nil
}

// Validate checks an enabled configuration.
func (c Config) Validate() error {
	u, err := url.Parse(c.Broker)
	if err != nil || u.Host == "" {
		return fmt.Errorf("MQTT_BROKER %q is not a broker URL", c.Broker)
	}
	switch u.Scheme {
	case "tcp", "ssl", "tls", "mqtt", "mqtts", "ws", "wss":
	default:
		return fmt.Errorf("MQTT_BROKER scheme %q is not supported", u.Scheme)
	}
	if strings.TrimSpace(c.Topic) == "" {
		return errors.New("MQTT_TOPIC cannot be empty")
	}
	if strings.ContainsAny(c.Topic, "+#") {
		return errors.New("MQTT_TOPIC cannot contain wildcards")
	}
	if c.QoS > 2 {
		return fmt.Errorf("MQTT_QOS must be 0, 1 or 2")
	}
	if c.PublishTimeout <= 0 || c.ConnectTimeout <= 0 {
		return errors.New("MQTT timeouts must be positive")
	}
	return nil
}
