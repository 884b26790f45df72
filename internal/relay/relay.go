package relay

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/smukkama/smartclass/internal/protocol"
)

// Sink receives controller events outside the control loop
type Sink interface {
	Name() string
	Send(ctx context.Context, ev *protocol.Event) error
}

// Stats counts deliveries for one sink
type Stats struct {
	Sent   uint64 `json:"sent"`
	Failed uint64 `json:"failed"`
}

// Relay drains the controller outbox into every configured sink. A failing
// sink is logged and counted; it never holds up the others for longer than
// the per-sink timeout.
type Relay struct {
	sinks   []Sink
	timeout time.Duration
	logger  *zap.Logger

	mu    sync.Mutex
	stats map[string]*Stats
}

// New creates a relay. timeout bounds each Send call.
func New(timeout time.Duration, logger *zap.Logger, sinks ...Sink) *Relay {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	stats := make(map[string]*Stats, len(sinks))
	for _, s := range sinks {
		stats[s.Name()] = &Stats{}
	}
	return &Relay{
		sinks:   sinks,
		timeout: timeout,
		logger:  logger,
		stats:   stats,
	}
}

// Run forwards events until ctx is cancelled or events is closed. Events
// still buffered at cancellation are delivered before returning.
func (r *Relay) Run(ctx context.Context, events <-chan *protocol.Event) {
	for {
		select {
		case ev, ok := <-events:
			if !ok {
				return
			}
			r.deliver(ctx, ev)
		case <-ctx.Done():
			r.drain(events)
			return
		}
	}
}

func (r *Relay) drain(events <-chan *protocol.Event) {
	ctx := context.Background()
	for {
		select {
		case ev, ok := <-events:
			if !ok {
				return
			}
			r.deliver(ctx, ev)
		default:
			return
		}
	}
}

func (r *Relay) deliver(ctx context.Context, ev *protocol.Event) {
	for _, sink := range r.sinks {
		sendCtx, cancel := context.WithTimeout(ctx, r.timeout)
		err := sink.Send(sendCtx, ev)
		cancel()

		r.record(sink.Name(), err)
		if err != nil {
			r.logger.Warn("failed to relay event",
				zap.String("sink", sink.Name()),
				zap.String("kind", string(ev.Kind)),
				zap.String("event_id", ev.ID),
				zap.Error(err),
			)
		}
	}
}

func (r *Relay) record(name string, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s := r.stats[name]
	if err != nil {
		s.Failed++
		return
	}
	s.Sent++
}

// Stats returns a copy of the per-sink counters
func (r *Relay) Stats() map[string]Stats {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(map[string]Stats, len(r.stats))
	for name, s := range r.stats {
		out[name] = *s
	}
	return out
}
