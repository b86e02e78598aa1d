package mqtt

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/goccy/go-json"

	"github.com/ebitech02/WanderWise/internal/config"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

const publishTimeout = 5 * time.Second

// Publisher sends invalidation messages to the topic the servers subscribe
// to. It is meant for short-lived use, such as a CLI invocation.
type Publisher struct {
	client mqtt.Client
	topic  string
	logger *slog.Logger
}

func NewPublisher(cfg config.Config, logger *slog.Logger) *Publisher {
	if logger == nil {
		logger = slog.Default()
	}
	opts := mqtt.NewClientOptions()
	opts.AddBroker(fmt.Sprintf("tcp://%s:%d", cfg.MQTTBroker, cfg.MQTTPort))
	opts.SetClientID(cfg.MQTTClientID + "-publisher")
	opts.SetCleanSession(true)
	opts.SetConnectTimeout(publishTimeout)

	return &Publisher{
		client: mqtt.NewClient(opts),
		topic:  cfg.MQTTTopic,
		logger: logger.With("component", "mqtt"),
	}
}

func (p *Publisher) Connect(ctx context.Context) error {
	token := p.client.Connect()
	select {
	case <-token.Done():
		if err := token.Error(); err != nil {
			return fmt.Errorf("mqtt connect: %w", err)
		}
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Publish validates msg and sends it with QoS 1.
func (p *Publisher) Publish(ctx context.Context, msg Invalidation) error {
	if err := msg.Validate(); err != nil {
		return fmt.Errorf("invalid invalidation: %w", err)
	}
	if !p.client.IsConnected() {
		return fmt.Errorf("mqtt publisher not connected")
	}

	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal invalidation: %w", err)
	}

	token := p.client.Publish(p.topic, 1, false, data)
	select {
	case <-token.Done():
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(publishTimeout):
		return fmt.Errorf("publish timeout for topic %s", p.topic)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("publish invalidation: %w", err)
	}

	p.logger.Info("published invalidation", "topic", p.topic, "country", msg.Country, "all", msg.All)
	return nil
}

func (p *Publisher) Disconnect() {
	p.client.Disconnect(250)
}
