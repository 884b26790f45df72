package alarming

import (
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/smukkama/smartclass/internal/classify"
)

// DefaultHold is how long a metric must stay in Danger before alerting
const DefaultHold = 10 * time.Second

// Latch debounces Danger readings per metric. It is owned by the scheduler
// loop and is not safe for concurrent use.
type Latch struct {
	hold   time.Duration
	states map[string]*AlarmState
	logger *zap.Logger
}

// NewLatch creates a latch with every metric CLEAR
func NewLatch(hold time.Duration, logger *zap.Logger) *Latch {
	if hold < 0 {
		hold = 0
	}
	return &Latch{
		hold:   hold,
		states: make(map[string]*AlarmState),
		logger: logger,
	}
}

// Observe feeds one classification and returns the alerts it raised or cleared
func (l *Latch) Observe(res classify.Result, now time.Time) []Transition {
	breaches := make(map[string]classify.Violation)
	for _, v := range res.Violations {
		if v.Level == classify.Danger {
			breaches[v.Metric] = v
		}
	}

	var out []Transition
	for metric, v := range breaches {
		if t, ok := l.handleBreach(metric, v, now); ok {
			out = append(out, t)
		}
	}
	for metric, state := range l.states {
		if _, breached := breaches[metric]; breached {
			continue
		}
		if t, ok := l.handleNoBreach(metric, state, now); ok {
			out = append(out, t)
		}
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Metric < out[j].Metric })
	return out
}

func (l *Latch) handleBreach(metric string, v classify.Violation, now time.Time) (Transition, bool) {
	state, ok := l.states[metric]
	if !ok {
		// New breach detected
		state = &AlarmState{
			Status:          AlarmStatePending,
			BreachStartTime: now,
		}
		l.states[metric] = state
	}

	state.LastChecked = now
	state.BreachValue = v.Value
	state.Text = v.Text

	if state.Status != AlarmStatePending || now.Sub(state.BreachStartTime) < l.hold {
		return Transition{}, false
	}

	state.Status = AlarmStateActive
	l.logger.Warn("alert raised",
		zap.String("metric", metric),
		zap.Float64("value", v.Value),
		zap.Duration("held", now.Sub(state.BreachStartTime)),
	)
	return Transition{
		Type:        AlertRaised,
		Metric:      metric,
		Value:       v.Value,
		Text:        v.Text,
		BreachStart: state.BreachStartTime,
		At:          now,
	}, true
}

func (l *Latch) handleNoBreach(metric string, state *AlarmState, now time.Time) (Transition, bool) {
	delete(l.states, metric)

	if state.Status != AlarmStateActive {
		// Breach ended before the alert fired
		return Transition{}, false
	}

	l.logger.Info("alert cleared", zap.String("metric", metric))
	return Transition{
		Type:        AlertCleared,
		Metric:      metric,
		Value:       state.BreachValue,
		Text:        state.Text,
		BreachStart: state.BreachStartTime,
		At:          now,
	}, true
}

// State returns the latch state of metric, CLEAR if untracked
func (l *Latch) State(metric string) AlarmState {
	if state, ok := l.states[metric]; ok {
		return *state
	}
	return AlarmState{Status: AlarmStateClear}
}

// Active lists metrics currently ALARMING, sorted
func (l *Latch) Active() []string {
	var metrics []string
	for metric, state := range l.states {
		if state.Status == AlarmStateActive {
			metrics = append(metrics, metric)
		}
	}
	sort.Strings(metrics)
	return metrics
}
