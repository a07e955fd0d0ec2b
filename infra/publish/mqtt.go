package publish

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"

	"github.com/kilianp07/spotflux/core/model"
	"github.com/kilianp07/spotflux/infra/logger"
)

// Config defines the connection parameters for future-price publication.
// Publication is disabled when Broker is empty.
type Config struct {
	Broker   string `json:"broker"`
	ClientID string `json:"client_id"`
	Username string `json:"username"`
	Password string `json:"password"`
	Topic    string `json:"topic"`
	QoS      byte   `json:"qos"`
	// TimeoutSeconds bounds connect and publish operations.
	TimeoutSeconds int `json:"timeout_seconds"`
}

// Enabled reports whether a broker is configured.
func (c Config) Enabled() bool { return c.Broker != "" }

// SetDefaults applies sane defaults.
func (c *Config) SetDefaults() {
	if c.ClientID == "" {
		c.ClientID = "spotflux"
	}
	if c.Topic == "" {
		c.Topic = "spotflux/future-prices"
	}
	if c.QoS == 0 {
		c.QoS = 1
	}
	if c.TimeoutSeconds <= 0 {
		c.TimeoutSeconds = 10
	}
}

type pahoClient interface {
	Connect() paho.Token
	Publish(topic string, qos byte, retained bool, payload interface{}) paho.Token
	Disconnect(quiesce uint)
}

var newMQTTClient = func(opts *paho.ClientOptions) pahoClient {
	return paho.NewClient(opts)
}

// MQTTPublisher publishes the run's future intervals as one retained JSON
// message, so downstream consumers always see the latest look-ahead.
type MQTTPublisher struct {
	cli     pahoClient
	topic   string
	qos     byte
	timeout time.Duration
	log     logger.Logger
}

// NewMQTTPublisher connects to the broker.
func NewMQTTPublisher(cfg Config) (*MQTTPublisher, error) {
	cfg.SetDefaults()
	opts := paho.NewClientOptions().AddBroker(cfg.Broker).SetClientID(cfg.ClientID)
	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
		opts.SetPassword(cfg.Password)
	}

	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	c := newMQTTClient(opts)
	token := c.Connect()
	if !token.WaitTimeout(timeout) {
		return nil, fmt.Errorf("connect to %s: timeout", cfg.Broker)
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("connect to %s: %w", cfg.Broker, err)
	}

	return &MQTTPublisher{
		cli:     c,
		topic:   cfg.Topic,
		qos:     cfg.QoS,
		timeout: timeout,
		log:     logger.New("mqtt-publisher"),
	}, nil
}

// PublishFuturePrices sends the intervals as a retained JSON array.
func (p *MQTTPublisher) PublishFuturePrices(ctx context.Context, prices []model.SpotPrice) error {
	payload, err := json.Marshal(prices)
	if err != nil {
		return fmt.Errorf("marshal future prices: %w", err)
	}

	token := p.cli.Publish(p.topic, p.qos, true, payload)
	if !token.WaitTimeout(p.timeout) {
		return fmt.Errorf("publish to %s: timeout", p.topic)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("publish to %s: %w", p.topic, err)
	}
	p.log.Infof("published %d future prices to %s", len(prices), p.topic)
	return nil
}

// Close disconnects from the broker.
func (p *MQTTPublisher) Close() { p.cli.Disconnect(250) }
