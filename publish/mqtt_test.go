package publish

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/fxamacker/cbor/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mklimuk/cm1106/air"
)

type fakeToken struct {
	paho.Token
	done bool
	err  error
}

func (t *fakeToken) Wait() bool                       { return t.done }
func (t *fakeToken) WaitTimeout(_ time.Duration) bool { return t.done }
func (t *fakeToken) Error() error                     { return t.err }

type published struct {
	topic   string
	qos     byte
	retain  bool
	payload []byte
}

type fakeClient struct {
	paho.Client
	token *fakeToken
	sent  []published
}

func (c *fakeClient) Publish(topic string, qos byte, retained bool, payload interface{}) paho.Token {
	c.sent = append(c.sent, published{topic, qos, retained, payload.([]byte)})
	return c.token
}

var sampleTime = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func TestMQTT_HandleJSON(t *testing.T) {
	client := &fakeClient{token: &fakeToken{done: true}}
	p := newMQTT(client, Config{ClientID: "test", Topic: "home/co2", Retain: true, QoS: 1})

	err := p.Handle(context.Background(), air.Measurement{CO2: 415, Status: air.StatusNormal, Time: sampleTime})
	require.NoError(t, err)
	require.Len(t, client.sent, 1)
	assert.Equal(t, "home/co2", client.sent[0].topic)
	assert.Equal(t, byte(1), client.sent[0].qos)
	assert.True(t, client.sent[0].retain)

	var r Reading
	require.NoError(t, json.Unmarshal(client.sent[0].payload, &r))
	assert.Equal(t, Reading{CO2: 415, Status: 1, StatusText: "normal operation", Time: sampleTime}, r)
}

func TestMQTT_HandleCBOR(t *testing.T) {
	client := &fakeClient{token: &fakeToken{done: true}}
	p := newMQTT(client, Config{ClientID: "test", Encoding: EncodingCBOR, Variant: air.VariantCM1107})

	err := p.Handle(context.Background(), air.Measurement{CO2: 5000, Status: air.StatusCM1107OverRange, Time: sampleTime})
	require.NoError(t, err)
	require.Len(t, client.sent, 1)
	assert.Equal(t, DefaultTopic, client.sent[0].topic)

	var raw map[int]interface{}
	require.NoError(t, cbor.Unmarshal(client.sent[0].payload, &raw))
	assert.EqualValues(t, 5000, raw[1])
	assert.EqualValues(t, 2, raw[2])
	assert.Equal(t, "over measurement range", raw[3])
}

func TestMQTT_HandleErrors(t *testing.T) {
	brokerErr := errors.New("not connected")
	client := &fakeClient{token: &fakeToken{done: true, err: brokerErr}}
	p := newMQTT(client, Config{ClientID: "test"})
	err := p.Handle(context.Background(), air.Measurement{CO2: 400})
	assert.ErrorIs(t, err, brokerErr)

	client = &fakeClient{token: &fakeToken{done: false}}
	p = newMQTT(client, Config{ClientID: "test"})
	err = p.Handle(context.Background(), air.Measurement{CO2: 400})
	assert.ErrorIs(t, err, ErrPublishTimeout)
}

func TestParseEncoding(t *testing.T) {
	enc, err := ParseEncoding("CBOR")
	require.NoError(t, err)
	assert.Equal(t, EncodingCBOR, enc)

	enc, err = ParseEncoding("")
	require.NoError(t, err)
	assert.Equal(t, EncodingJSON, enc)

	_, err = ParseEncoding("xml")
	assert.Error(t, err)

	_, err = Encode("xml", Reading{})
	assert.Error(t, err)
}

func TestDefaultClientID(t *testing.T) {
	id := DefaultClientID()
	assert.Greater(t, len(id), len(appID)+1)
	assert.Equal(t, appID+"-", id[:len(appID)+1])
}
