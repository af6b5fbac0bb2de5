package mqtt

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/json"
	"encoding/pem"
	"fmt"
	"math/big"
	"os"
	"testing"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/arbitrage/core/factory"
	"github.com/kilianp07/arbitrage/core/model"
	"github.com/kilianp07/arbitrage/core/publisher"
)

type published struct {
	topic   string
	qos     byte
	retain  bool
	payload []byte
}

// mockClient implements pahoClient for tests.
type mockClient struct {
	opts        *paho.ClientOptions
	published   []published
	publishErrs []error
	connectErr  error
	connected   bool
}

func (m *mockClient) IsConnected() bool { return m.connected }

func (m *mockClient) Connect() paho.Token {
	if m.connectErr != nil {
		return &dummyToken{err: m.connectErr}
	}
	m.connected = true
	return &dummyToken{}
}

func (m *mockClient) Disconnect(uint) { m.connected = false }

func (m *mockClient) Publish(topic string, qos byte, retained bool, payload interface{}) paho.Token {
	b, _ := payload.([]byte)
	m.published = append(m.published, published{topic: topic, qos: qos, retain: retained, payload: b})
	if len(m.publishErrs) > 0 {
		err := m.publishErrs[0]
		m.publishErrs = m.publishErrs[1:]
		return &dummyToken{err: err}
	}
	return &dummyToken{}
}

type dummyToken struct{ err error }

func (d *dummyToken) Wait() bool                     { return true }
func (d *dummyToken) WaitTimeout(time.Duration) bool { return true }
func (d *dummyToken) Done() <-chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}
func (d *dummyToken) Error() error { return d.err }

func useMock(t *testing.T, mc *mockClient) {
	t.Helper()
	prev := newMQTTClient
	newMQTTClient = func(o *paho.ClientOptions) pahoClient { mc.opts = o; return mc }
	t.Cleanup(func() { newMQTTClient = prev })
}

func sampleResult() model.WindowResult {
	return model.WindowResult{
		RunID:      "run-1",
		Index:      4,
		Length:     4,
		Profit:     12,
		Buys:       1,
		Sells:      1,
		Schedule:   model.Schedule{model.ActionBuy, model.ActionNone, model.ActionSell, model.ActionNone},
		Transcript: []model.SlotRecord{{Price: 1, Action: model.ActionBuy, Capacity: 40}},
	}
}

func TestPublisher_Publish(t *testing.T) {
	mc := &mockClient{}
	useMock(t, mc)

	p, err := NewPublisher(Config{Broker: "tcp://localhost:1883", ClientID: "id", TopicPrefix: "site/", QoS: 1, Retain: true})
	require.NoError(t, err)
	require.NoError(t, p.Publish(context.Background(), sampleResult()))

	require.Len(t, mc.published, 1)
	msg := mc.published[0]
	assert.Equal(t, "site/window/4", msg.topic)
	assert.Equal(t, byte(1), msg.qos)
	assert.True(t, msg.retain)

	var got map[string]any
	require.NoError(t, json.Unmarshal(msg.payload, &got))
	assert.Equal(t, "run-1", got["run_id"])
	assert.Equal(t, []any{"BUY", "NONE", "SELL", "NONE"}, got["schedule"])
	assert.NotContains(t, got, "transcript")

	require.NoError(t, p.Close())
	assert.False(t, mc.connected)
}

func TestPublisher_IncludeTranscript(t *testing.T) {
	mc := &mockClient{}
	useMock(t, mc)

	p, err := NewPublisher(Config{Broker: "tcp://localhost:1883", IncludeTranscript: true})
	require.NoError(t, err)
	require.NoError(t, p.Publish(context.Background(), sampleResult()))

	require.Len(t, mc.published, 1)
	assert.Equal(t, "arbitrage/window/4", mc.published[0].topic)
	var got model.WindowResult
	require.NoError(t, json.Unmarshal(mc.published[0].payload, &got))
	assert.Len(t, got.Transcript, 1)
	assert.Equal(t, model.ActionBuy, got.Transcript[0].Action)
}

func TestPublisher_Retry(t *testing.T) {
	mc := &mockClient{publishErrs: []error{fmt.Errorf("net fail"), nil}}
	useMock(t, mc)

	p, err := NewPublisher(Config{Broker: "tcp://localhost:1883", MaxRetries: 1, BackoffMS: 1})
	require.NoError(t, err)
	require.NoError(t, p.Publish(context.Background(), sampleResult()))
	assert.Len(t, mc.published, 2)
}

func TestPublisher_RetryExhausted(t *testing.T) {
	fail := fmt.Errorf("net fail")
	mc := &mockClient{publishErrs: []error{fail, fail, fail}}
	useMock(t, mc)

	p, err := NewPublisher(Config{Broker: "tcp://localhost:1883", MaxRetries: 2, BackoffMS: 1})
	require.NoError(t, err)
	err = p.Publish(context.Background(), sampleResult())
	require.ErrorIs(t, err, fail)
	assert.Len(t, mc.published, 3)
}

func TestPublisher_CancelledDuringBackoff(t *testing.T) {
	fail := fmt.Errorf("net fail")
	mc := &mockClient{publishErrs: []error{fail, fail}}
	useMock(t, mc)

	p, err := NewPublisher(Config{Broker: "tcp://localhost:1883", MaxRetries: 1, BackoffMS: 60000})
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err = p.Publish(ctx, sampleResult())
	require.ErrorIs(t, err, context.Canceled)
	assert.Len(t, mc.published, 1)
}

func TestNewPublisher_ConnectError(t *testing.T) {
	mc := &mockClient{connectErr: fmt.Errorf("refused")}
	useMock(t, mc)

	_, err := NewPublisher(Config{Broker: "tcp://localhost:1883"})
	assert.EqualError(t, err, "refused")
}

func TestNewPublisher_InvalidConfig(t *testing.T) {
	_, err := NewPublisher(Config{})
	assert.Error(t, err)
	_, err = NewPublisher(Config{Broker: "tcp://x:1883", QoS: 3})
	assert.Error(t, err)
}

func TestLWTConfigured(t *testing.T) {
	mc := &mockClient{}
	useMock(t, mc)

	p, err := NewPublisher(Config{Broker: "tcp://localhost:1883", ClientID: "id", LWTTopic: "lwt", LWTPayload: "bye", LWTQoS: 1})
	require.NoError(t, err)
	require.True(t, mc.opts.WillEnabled)
	assert.Equal(t, "lwt", mc.opts.WillTopic)
	assert.Equal(t, "bye", string(mc.opts.WillPayload))
	require.NoError(t, p.Close())
	assert.Empty(t, mc.published)
}

func TestRegisteredAsMQTT(t *testing.T) {
	mc := &mockClient{}
	useMock(t, mc)

	p, err := publisher.New(factory.ModuleConfig{Type: "mqtt", Conf: map[string]any{
		"broker":       "tcp://localhost:1883",
		"topic_prefix": "plant",
		"qos":          "2",
	}})
	require.NoError(t, err)
	mp, ok := p.(*Publisher)
	require.True(t, ok)
	assert.Equal(t, byte(2), mp.qos)
	assert.Equal(t, "plant/window/0", mp.Topic(0))
}

func TestNewClientOptionsAuth(t *testing.T) {
	opts, err := NewClientOptions(Config{Broker: "tcp://localhost:1883", ClientID: "id", Username: "u", Password: "p"})
	require.NoError(t, err)
	assert.Equal(t, "u", opts.Username)
	assert.Equal(t, "p", opts.Password)

	opts, err = NewClientOptions(Config{Broker: "tcp://localhost:1883", AuthMethod: "certificate", Username: "u"})
	require.NoError(t, err)
	assert.Empty(t, opts.Username)
}

// generateCert writes a self-signed certificate, its key and a CA bundle.
func generateCert(t *testing.T) (certFile, keyFile, caFile string) {
	t.Helper()
	priv, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	tmpl := x509.Certificate{SerialNumber: big.NewInt(1), Subject: pkix.Name{CommonName: "test"}, NotBefore: time.Now(), NotAfter: time.Now().Add(time.Hour)}
	der, err := x509.CreateCertificate(rand.Reader, &tmpl, &tmpl, &priv.PublicKey, priv)
	require.NoError(t, err)
	certPEM := pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: der})
	keyPEM := pem.EncodeToMemory(&pem.Block{Type: "RSA PRIVATE KEY", Bytes: x509.MarshalPKCS1PrivateKey(priv)})

	dir := t.TempDir()
	certFile = dir + "/cert.pem"
	keyFile = dir + "/key.pem"
	caFile = dir + "/ca.pem"
	require.NoError(t, os.WriteFile(certFile, certPEM, 0o600))
	require.NoError(t, os.WriteFile(keyFile, keyPEM, 0o600))
	require.NoError(t, os.WriteFile(caFile, certPEM, 0o600))
	return
}

func TestLoadTLSConfig(t *testing.T) {
	cert, key, ca := generateCert(t)
	cfg := Config{UseTLS: true, ClientCert: cert, ClientKey: key, CABundle: ca}
	tlsCfg, err := cfg.LoadTLSConfig()
	require.NoError(t, err)
	assert.NotEmpty(t, tlsCfg.Certificates)
	assert.NotNil(t, tlsCfg.RootCAs)

	_, err = Config{UseTLS: true}.LoadTLSConfig()
	assert.Error(t, err)
}
