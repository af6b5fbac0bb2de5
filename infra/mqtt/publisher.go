package mqtt

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"

	"github.com/kilianp07/arbitrage/core/factory"
	"github.com/kilianp07/arbitrage/core/model"
	"github.com/kilianp07/arbitrage/core/publisher"
	"github.com/kilianp07/arbitrage/infra/logger"
)

const (
	defaultTopicPrefix = "arbitrage"
	defaultMaxRetries  = 3
	defaultBackoff     = 100 * time.Millisecond
)

func init() {
	_ = publisher.Register("mqtt", func(conf map[string]any) (publisher.ResultPublisher, error) {
		var c Config
		if err := factory.Decode(conf, &c); err != nil {
			return nil, err
		}
		p, err := NewPublisher(c)
		if err != nil {
			return nil, err
		}
		return p, nil
	})
}

// Publisher sends every window result as JSON to
// <topic_prefix>/window/<index>.
type Publisher struct {
	cli        pahoClient
	prefix     string
	qos        byte
	retain     bool
	transcript bool
	maxRetries int
	backoff    time.Duration
	log        logger.Logger
}

// NewPublisher connects to the broker described by cfg.
func NewPublisher(cfg Config) (*Publisher, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	opts, err := NewClientOptions(cfg)
	if err != nil {
		return nil, err
	}
	log := logger.New("mqtt_publisher")
	p := &Publisher{
		prefix:     strings.TrimSuffix(cfg.TopicPrefix, "/"),
		qos:        cfg.QoS,
		retain:     cfg.Retain,
		transcript: cfg.IncludeTranscript,
		maxRetries: cfg.MaxRetries,
		backoff:    time.Duration(cfg.BackoffMS) * time.Millisecond,
		log:        log,
	}
	if p.prefix == "" {
		p.prefix = defaultTopicPrefix
	}
	if p.maxRetries == 0 {
		p.maxRetries = defaultMaxRetries
	}
	if p.backoff == 0 {
		p.backoff = defaultBackoff
	}

	opts.OnConnect = func(paho.Client) {
		log.Infof("MQTT connected to %s", cfg.Broker)
	}
	opts.OnConnectionLost = func(_ paho.Client, err error) {
		log.Errorf("connection lost: %v", err)
	}
	opts.OnReconnecting = func(_ paho.Client, _ *paho.ClientOptions) {
		log.Warnf("reconnecting to MQTT broker")
	}
	c := newMQTTClient(opts)
	if token := c.Connect(); token.Wait() && token.Error() != nil {
		return nil, token.Error()
	}
	p.cli = c
	return p, nil
}

// Topic returns the topic a window result is published on.
func (p *Publisher) Topic(window int) string {
	return fmt.Sprintf("%s/window/%d", p.prefix, window)
}

// Publish sends res, retrying with exponential backoff until the retry
// budget is spent or ctx is done.
func (p *Publisher) Publish(ctx context.Context, res model.WindowResult) error {
	if !p.transcript {
		res.Transcript = nil
	}
	payload, err := json.Marshal(res)
	if err != nil {
		return err
	}
	topic := p.Topic(res.Index)

	var publishErr error
	for attempt := 0; attempt <= p.maxRetries; attempt++ {
		token := p.cli.Publish(topic, p.qos, p.retain, payload)
		token.Wait()
		publishErr = token.Error()
		if publishErr == nil {
			p.log.Debugf("published window %d to %s", res.Index, topic)
			return nil
		}
		p.log.Errorf("publish attempt %d failed: %v", attempt+1, publishErr)
		if attempt == p.maxRetries {
			break
		}
		timer := time.NewTimer(p.backoff * time.Duration(1<<attempt))
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
	return fmt.Errorf("publish %s: %w", topic, publishErr)
}

// Close gracefully closes the MQTT connection.
func (p *Publisher) Close() error {
	if p.cli != nil && p.cli.IsConnected() {
		p.cli.Disconnect(250)
	}
	return nil
}
