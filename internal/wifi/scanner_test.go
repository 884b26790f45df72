package wifi

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeRadio struct {
	starts   int
	startErr error
	networks []Network
	done     bool
	err      error
}

func (r *fakeRadio) StartScan() error {
	r.starts++
	return r.startErr
}

func (r *fakeRadio) ScanResult() ([]Network, bool, error) {
	return r.networks, r.done, r.err
}

var t0 = time.Date(2026, 3, 2, 11, 0, 0, 0, time.UTC)

func newTestScanner(r *fakeRadio) *Scanner {
	return NewScanner(r, 20*time.Second, zap.NewNop())
}

func TestScanner_SingleUnderlyingScan(t *testing.T) {
	r := &fakeRadio{}
	s := newTestScanner(r)

	assert.True(t, s.Start(t0))
	for i := 0; i < 5; i++ {
		assert.False(t, s.Start(t0.Add(time.Duration(i)*time.Second)))
		st, err := s.Poll(t0.Add(time.Duration(i) * time.Second))
		require.NoError(t, err)
		assert.Equal(t, InProgress, st.Phase)
		assert.Equal(t, t0, st.StartedAt)
	}
	assert.Equal(t, 1, r.starts)
}

func TestScanner_ReadyListIsStable(t *testing.T) {
	r := &fakeRadio{}
	s := newTestScanner(r)
	s.Start(t0)

	r.done = true
	r.networks = []Network{{"Sekolah", -40}, {"", -50}, {"Guru", -70}, {"Sekolah", -30}}

	first, err := s.Poll(t0.Add(3 * time.Second))
	require.NoError(t, err)
	assert.Equal(t, Ready, first.Phase)
	assert.Equal(t, []Network{{"Sekolah", -30}, {"Guru", -70}}, first.Networks)

	r.networks = nil
	r.done = false
	for i := 0; i < 3; i++ {
		again, err := s.Poll(t0.Add(time.Minute))
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestScanner_FailureReportedOnce(t *testing.T) {
	r := &fakeRadio{}
	s := newTestScanner(r)
	s.Start(t0)

	r.done = true
	r.err = errors.New("radio busy")

	_, err := s.Poll(t0.Add(time.Second))
	assert.True(t, errors.Is(err, ErrScanFailed))

	st, err := s.Poll(t0.Add(2 * time.Second))
	require.NoError(t, err)
	assert.Equal(t, Idle, st.Phase)
}

func TestScanner_StartError(t *testing.T) {
	r := &fakeRadio{startErr: errors.New("wifi off")}
	s := newTestScanner(r)

	assert.False(t, s.Start(t0))
	assert.Equal(t, Idle, s.Phase())

	_, err := s.Poll(t0)
	assert.True(t, errors.Is(err, ErrScanFailed))
	_, err = s.Poll(t0)
	assert.NoError(t, err)
}

func TestScanner_Timeout(t *testing.T) {
	r := &fakeRadio{}
	s := newTestScanner(r)
	s.Start(t0)

	deadline, ok := s.Deadline()
	require.True(t, ok)
	assert.Equal(t, t0.Add(20*time.Second), deadline)

	assert.False(t, s.CheckTimeout(t0.Add(19*time.Second)))
	assert.True(t, s.CheckTimeout(t0.Add(20*time.Second)))
	assert.Equal(t, Idle, s.Phase())

	_, err := s.Poll(t0.Add(21 * time.Second))
	assert.True(t, errors.Is(err, ErrScanFailed))
}

func TestScanner_PollTimesOut(t *testing.T) {
	r := &fakeRadio{}
	s := newTestScanner(r)
	s.Start(t0)

	_, err := s.Poll(t0.Add(25 * time.Second))
	assert.True(t, errors.Is(err, ErrScanFailed))
}

func TestScanner_Reset(t *testing.T) {
	r := &fakeRadio{done: true, networks: []Network{{"Lab", -60}}}
	s := newTestScanner(r)
	s.Start(t0)
	st, _ := s.Poll(t0)
	require.Equal(t, Ready, st.Phase)

	s.Reset()
	st, err := s.Poll(t0)
	require.NoError(t, err)
	assert.Equal(t, Idle, st.Phase)
	assert.Nil(t, st.Networks)

	// a new scan can start from Ready or Idle
	assert.True(t, s.Start(t0.Add(time.Second)))
	assert.Equal(t, 2, r.starts)
}

func TestScanner_PollReturnsCopy(t *testing.T) {
	r := &fakeRadio{done: true, networks: []Network{{"Lab", -60}}}
	s := newTestScanner(r)
	s.Start(t0)

	st, _ := s.Poll(t0)
	st.Networks[0].SSID = "changed"

	again, _ := s.Poll(t0)
	assert.Equal(t, "Lab", again.Networks[0].SSID)
}

func TestSSIDs(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, SSIDs([]Network{{"a", 0}, {"b", 0}}))
	assert.Empty(t, SSIDs(nil))
}
