// Package publish forwards CO2 readings to an MQTT broker.
package publish

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/denisbrodbeck/machineid"
	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"

	"github.com/mklimuk/cm1106/air"
)

const (
	DefaultTopic   = "sensors/cm1106"
	DefaultTimeout = 5 * time.Second
	appID          = "cm1106"
)

var ErrPublishTimeout = errors.New("mqtt publish timed out")

type Config struct {
	// Broker URL, e.g. tcp://localhost:1883
	Broker   string
	Topic    string
	ClientID string
	Encoding Encoding
	QoS      byte
	Retain   bool
	Timeout  time.Duration
	Variant  air.Variant
}

func (c *Config) setDefaults() {
	if c.Topic == "" {
		c.Topic = DefaultTopic
	}
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	if c.Encoding == "" {
		c.Encoding = EncodingJSON
	}
	if c.ClientID == "" {
		c.ClientID = DefaultClientID()
	}
}

// DefaultClientID derives a stable client id from the machine id, or a
// random one if the machine id is not available.
func DefaultClientID() string {
	id, err := machineid.ProtectedID(appID)
	if err != nil {
		slog.Debug("machine id not available, using random client id", "error", err)
		return appID + "-" + uuid.NewString()
	}
	return appID + "-" + id[:12]
}

// MQTT publishes measurements. It implements monitor.Sink.
type MQTT struct {
	client paho.Client
	config Config
}

// NewMQTT connects to the broker.
func NewMQTT(cfg Config) (*MQTT, error) {
	cfg.setDefaults()
	opts := paho.NewClientOptions().
		AddBroker(cfg.Broker).
		SetClientID(cfg.ClientID).
		SetAutoReconnect(true).
		SetConnectTimeout(cfg.Timeout)
	client := paho.NewClient(opts)
	token := client.Connect()
	if !token.WaitTimeout(cfg.Timeout) {
		return nil, fmt.Errorf("could not connect to %s: timeout", cfg.Broker)
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("could not connect to %s: %w", cfg.Broker, err)
	}
	slog.Info("connected to mqtt broker", "broker", cfg.Broker, "client", cfg.ClientID)
	return newMQTT(client, cfg), nil
}

func newMQTT(client paho.Client, cfg Config) *MQTT {
	cfg.setDefaults()
	return &MQTT{client: client, config: cfg}
}

// Handle publishes a single measurement.
func (p *MQTT) Handle(ctx context.Context, m air.Measurement) error {
	payload, err := Encode(p.config.Encoding, NewReading(m, p.config.Variant))
	if err != nil {
		return err
	}
	token := p.client.Publish(p.config.Topic, p.config.QoS, p.config.Retain, payload)
	timeout := p.config.Timeout
	if deadline, ok := ctx.Deadline(); ok {
		timeout = min(timeout, time.Until(deadline))
	}
	if !token.WaitTimeout(timeout) {
		return ErrPublishTimeout
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("could not publish to %s: %w", p.config.Topic, err)
	}
	return nil
}

// Close disconnects from the broker, waiting up to 250ms for in-flight work.
func (p *MQTT) Close() {
	p.client.Disconnect(250)
}
