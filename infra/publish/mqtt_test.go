package publish

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/spotflux/core/model"
)

type fakeToken struct{ err error }

func (t *fakeToken) Wait() bool                     { return true }
func (t *fakeToken) WaitTimeout(time.Duration) bool { return true }
func (t *fakeToken) Done() <-chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}
func (t *fakeToken) Error() error { return t.err }

type fakeClient struct {
	connectErr error
	publishErr error

	topic    string
	qos      byte
	retained bool
	payload  []byte
}

func (c *fakeClient) Connect() paho.Token { return &fakeToken{err: c.connectErr} }

func (c *fakeClient) Publish(topic string, qos byte, retained bool, payload interface{}) paho.Token {
	c.topic = topic
	c.qos = qos
	c.retained = retained
	c.payload = payload.([]byte)
	return &fakeToken{err: c.publishErr}
}

func (c *fakeClient) Disconnect(uint) {}

func withFakeClient(t *testing.T, fake *fakeClient) {
	t.Helper()
	orig := newMQTTClient
	newMQTTClient = func(*paho.ClientOptions) pahoClient { return fake }
	t.Cleanup(func() { newMQTTClient = orig })
}

func TestPublishFuturePricesRetainedJSON(t *testing.T) {
	fake := &fakeClient{}
	withFakeClient(t, fake)

	pub, err := NewMQTTPublisher(Config{Broker: "tcp://localhost:1883"})
	require.NoError(t, err)
	defer pub.Close()

	from := time.Date(2024, 1, 1, 20, 0, 0, 0, time.UTC)
	prices := []model.SpotPrice{{ID: "id-1", Source: "entso-e", From: from, Till: from.Add(time.Hour), MarketPrice: 0.05}}
	require.NoError(t, pub.PublishFuturePrices(context.Background(), prices))

	assert.Equal(t, "spotflux/future-prices", fake.topic)
	assert.Equal(t, byte(1), fake.qos)
	assert.True(t, fake.retained)

	var got []model.SpotPrice
	require.NoError(t, json.Unmarshal(fake.payload, &got))
	require.Len(t, got, 1)
	assert.Equal(t, "id-1", got[0].ID)
}

func TestNewMQTTPublisherConnectError(t *testing.T) {
	withFakeClient(t, &fakeClient{connectErr: errors.New("refused")})
	_, err := NewMQTTPublisher(Config{Broker: "tcp://localhost:1883"})
	assert.Error(t, err)
}

func TestPublishFuturePricesError(t *testing.T) {
	fake := &fakeClient{publishErr: errors.New("broker gone")}
	withFakeClient(t, fake)

	pub, err := NewMQTTPublisher(Config{Broker: "tcp://localhost:1883"})
	require.NoError(t, err)
	assert.Error(t, pub.PublishFuturePrices(context.Background(), nil))
}

func TestConfigEnabled(t *testing.T) {
	assert.False(t, Config{}.Enabled())
	assert.True(t, Config{Broker: "tcp://localhost:1883"}.Enabled())
}
