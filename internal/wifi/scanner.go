package wifi

import (
	"fmt"
	"time"

	"go.uber.org/zap"
)

// DefaultTimeout bounds how long a scan may stay in progress
const DefaultTimeout = 20 * time.Second

// Phase is the tag of the scan state
type Phase int

const (
	Idle Phase = iota
	InProgress
	Ready
)

func (p Phase) String() string {
	switch p {
	case Idle:
		return "idle"
	case InProgress:
		return "scanning"
	case Ready:
		return "ready"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}

// Network is one visible access point
type Network struct {
	SSID string `json:"ssid"`
	RSSI int    `json:"rssi"`
}

// Status is what a poll observes. StartedAt is set while InProgress and
// Networks while Ready.
type Status struct {
	Phase     Phase
	StartedAt time.Time
	Networks  []Network
}

// Radio is an asynchronous scanner. StartScan must return immediately;
// ScanResult reports done=true once results or an error are available.
type Radio interface {
	StartScan() error
	ScanResult() (networks []Network, done bool, err error)
}

var (
	ErrScanFailed = &ScanError{"wifi scan failed"}
)

// ScanError represents a failed scan
type ScanError struct {
	msg string
}

func (e *ScanError) Error() string {
	return e.msg
}

// Scanner is the scan state machine. It is owned by the scheduler loop and
// is not safe for concurrent use.
type Scanner struct {
	radio   Radio
	timeout time.Duration
	logger  *zap.Logger

	state   Status
	failure error
}

// NewScanner creates an idle scanner
func NewScanner(radio Radio, timeout time.Duration, logger *zap.Logger) *Scanner {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Scanner{
		radio:   radio,
		timeout: timeout,
		logger:  logger,
	}
}

// Start begins a scan unless one is already running. It returns true when a
// new scan was started.
func (s *Scanner) Start(now time.Time) bool {
	if s.state.Phase == InProgress {
		return false
	}

	s.failure = nil
	if err := s.radio.StartScan(); err != nil {
		s.logger.Warn("failed to start wifi scan", zap.Error(err))
		s.state = Status{Phase: Idle}
		s.failure = fmt.Errorf("%w: %v", ErrScanFailed, err)
		return false
	}

	s.state = Status{Phase: InProgress, StartedAt: now}
	s.logger.Debug("wifi scan started")
	return true
}

// Poll advances the machine and reports its state. A failure is returned
// exactly once, after which the scanner is idle.
func (s *Scanner) Poll(now time.Time) (Status, error) {
	if s.state.Phase == InProgress {
		s.advance(now)
	}

	if s.failure != nil {
		err := s.failure
		s.failure = nil
		return Status{Phase: Idle}, err
	}
	return s.snapshot(), nil
}

// CheckTimeout fails a scan that has been running too long. It returns true
// when the scan was abandoned.
func (s *Scanner) CheckTimeout(now time.Time) bool {
	if s.state.Phase != InProgress || now.Sub(s.state.StartedAt) < s.timeout {
		return false
	}

	s.logger.Warn("wifi scan timed out", zap.Duration("timeout", s.timeout))
	s.state = Status{Phase: Idle}
	s.failure = fmt.Errorf("%w: timed out after %s", ErrScanFailed, s.timeout)
	return true
}

// Reset drops results, pending failures and abandons any running scan
func (s *Scanner) Reset() {
	s.state = Status{Phase: Idle}
	s.failure = nil
}

// Phase returns the current tag without advancing
func (s *Scanner) Phase() Phase {
	return s.state.Phase
}

// Deadline returns when the running scan times out
func (s *Scanner) Deadline() (time.Time, bool) {
	if s.state.Phase != InProgress {
		return time.Time{}, false
	}
	return s.state.StartedAt.Add(s.timeout), true
}

func (s *Scanner) advance(now time.Time) {
	networks, done, err := s.radio.ScanResult()
	switch {
	case done && err != nil:
		s.logger.Warn("wifi scan failed", zap.Error(err))
		s.state = Status{Phase: Idle}
		s.failure = fmt.Errorf("%w: %v", ErrScanFailed, err)
	case done:
		s.logger.Debug("wifi scan finished", zap.Int("networks", len(networks)))
		s.state = Status{Phase: Ready, Networks: dedupe(networks)}
	default:
		s.CheckTimeout(now)
	}
}

func (s *Scanner) snapshot() Status {
	st := s.state
	if st.Networks != nil {
		st.Networks = append([]Network(nil), st.Networks...)
	}
	return st
}

// dedupe drops hidden networks and repeated SSIDs, keeping the strongest
func dedupe(networks []Network) []Network {
	out := make([]Network, 0, len(networks))
	index := make(map[string]int, len(networks))
	for _, n := range networks {
		if n.SSID == "" {
			continue
		}
		if i, ok := index[n.SSID]; ok {
			if n.RSSI > out[i].RSSI {
				out[i] = n
			}
			continue
		}
		index[n.SSID] = len(out)
		out = append(out, n)
	}
	return out
}

// SSIDs lists network names in scan order
func SSIDs(networks []Network) []string {
	names := make([]string, len(networks))
	for i, n := range networks {
		names[i] = n.SSID
	}
	return names
}
