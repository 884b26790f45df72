package relay

import (
	"context"
	"fmt"

	"github.com/smukkama/smartclass/internal/protocol"
)

// EventPublisher is satisfied by queue.Producer
type EventPublisher interface {
	PublishEvent(ctx context.Context, ev *protocol.Event) error
	Topic() string
}

// KafkaSink writes every event to the events topic and additionally
// copies alert transitions to the alerts topic the notifier consumes
type KafkaSink struct {
	events EventPublisher
	alerts EventPublisher
}

func NewKafkaSink(events, alerts EventPublisher) *KafkaSink {
	return &KafkaSink{events: events, alerts: alerts}
}

func (k *KafkaSink) Name() string {
	return "kafka"
}

func (k *KafkaSink) Send(ctx context.Context, ev *protocol.Event) error {
	if err := k.events.PublishEvent(ctx, ev); err != nil {
		return fmt.Errorf("%s: %w", k.events.Topic(), err)
	}

	if k.alerts == nil || (ev.Kind != protocol.EventAlert && ev.Kind != protocol.EventAlertCleared) {
		return nil
	}
	if err := k.alerts.PublishEvent(ctx, ev); err != nil {
		return fmt.Errorf("%s: %w", k.alerts.Topic(), err)
	}
	return nil
}
