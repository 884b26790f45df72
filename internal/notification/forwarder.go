package notification

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/smukkama/smartclass/internal/protocol"
	"github.com/smukkama/smartclass/internal/queue"
)

const maxAttempts = 3

// Notifier delivers one event to people
type Notifier interface {
	Name() string
	Send(ctx context.Context, ev *protocol.Event) error
}

// Forwarder consumes the alerts topic and hands every alert to each
// notifier. A message is committed once every notifier succeeded or ran
// out of attempts.
type Forwarder struct {
	source     queue.MessageSource
	notifiers  []Notifier
	logger     *zap.Logger
	retryDelay time.Duration
}

func NewForwarder(source queue.MessageSource, logger *zap.Logger, notifiers ...Notifier) *Forwarder {
	return &Forwarder{
		source:     source,
		notifiers:  notifiers,
		logger:     logger,
		retryDelay: 2 * time.Second,
	}
}

// Run blocks until ctx is cancelled
func (f *Forwarder) Run(ctx context.Context) error {
	for {
		msg, err := f.source.Consume(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			f.logger.Warn("failed to consume message", zap.Error(err))
			if !f.sleep(ctx) {
				return nil
			}
			continue
		}

		ev, err := protocol.DecodeEvent(msg.Value)
		if err != nil {
			f.logger.Warn("dropping undecodable alert", zap.Int64("offset", msg.Offset), zap.Error(err))
		} else {
			f.notify(ctx, ev)
		}

		if err := f.source.Commit(ctx, msg); err != nil {
			f.logger.Error("failed to commit offset", zap.Int64("offset", msg.Offset), zap.Error(err))
		}
	}
}

func (f *Forwarder) notify(ctx context.Context, ev *protocol.Event) {
	for _, n := range f.notifiers {
		var err error
		for attempt := 1; attempt <= maxAttempts; attempt++ {
			if err = n.Send(ctx, ev); err == nil {
				break
			}
			f.logger.Warn("notification attempt failed",
				zap.String("notifier", n.Name()),
				zap.Int("attempt", attempt),
				zap.Error(err),
			)
			if attempt < maxAttempts && !f.sleep(ctx) {
				return
			}
		}
		if err != nil {
			f.logger.Error("giving up on notification",
				zap.String("notifier", n.Name()),
				zap.String("event_id", ev.ID),
				zap.String("device_id", ev.DeviceID),
			)
		}
	}
}

func (f *Forwarder) sleep(ctx context.Context) bool {
	select {
	case <-time.After(f.retryDelay):
		return true
	case <-ctx.Done():
		return false
	}
}
