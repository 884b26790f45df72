package mqtt

import (
	"context"
	"fmt"
	"strings"

	paho "github.com/eclipse/paho.mqtt.golang"
	"go.uber.org/zap"

	"github.com/smukkama/smartclass/internal/protocol"
)

const qosAtLeastOnce = 1

// Publisher forwards controller events to the broker under
// <prefix>/<kind>, e.g. classroom/room-7/reading
type Publisher struct {
	client paho.Client
	prefix string
	logger *zap.Logger
}

// NewPublisher creates a publisher. topicPattern may contain {device_id}.
func NewPublisher(client paho.Client, topicPattern, deviceID string, logger *zap.Logger) *Publisher {
	return &Publisher{
		client: client,
		prefix: strings.TrimSuffix(formatTopic(topicPattern, deviceID), "/"),
		logger: logger,
	}
}

func (p *Publisher) Name() string {
	return "mqtt"
}

// Send publishes ev at QoS 1. Readings are retained.
func (p *Publisher) Send(ctx context.Context, ev *protocol.Event) error {
	payload, err := protocol.EncodeEvent(ev)
	if err != nil {
		return err
	}

	topic := p.Topic(ev.Kind)
	retained := ev.Kind == protocol.EventReading

	token := p.client.Publish(topic, qosAtLeastOnce, retained, payload)
	if !waitToken(ctx, token) {
		return fmt.Errorf("failed to publish to %s: %w", topic, ctx.Err())
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("failed to publish to %s: %w", topic, err)
	}

	p.logger.Debug("published event", zap.String("topic", topic), zap.String("event_id", ev.ID))
	return nil
}

// Topic returns the topic events of kind are published to
func (p *Publisher) Topic(kind protocol.EventKind) string {
	return p.prefix + "/" + string(kind)
}

func waitToken(ctx context.Context, token paho.Token) bool {
	select {
	case <-token.Done():
		return true
	case <-ctx.Done():
		return false
	}
}

func formatTopic(topicPattern, deviceID string) string {
	return strings.ReplaceAll(topicPattern, "{device_id}", deviceID)
}
