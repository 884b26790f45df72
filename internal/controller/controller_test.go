package controller

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/smukkama/smartclass/internal/actuator"
	"github.com/smukkama/smartclass/internal/classify"
	"github.com/smukkama/smartclass/internal/melody"
	"github.com/smukkama/smartclass/internal/protocol"
	"github.com/smukkama/smartclass/internal/sensor"
	"github.com/smukkama/smartclass/internal/songs"
	"github.com/smukkama/smartclass/internal/wifi"
)

func cmd(token string, kv ...string) protocol.Command {
	args := make(map[string]string)
	for i := 0; i+1 < len(kv); i += 2 {
		args[kv[i]] = kv[i+1]
	}
	return NewCommand(token, args)
}

func TestNew_RequiresDevices(t *testing.T) {
	_, err := New(Devices{}, Options{}, zap.NewNop())
	assert.Error(t, err)
}

func TestNew_PublishesInitialStatus(t *testing.T) {
	r := newRig(t, nil, Options{})
	st := r.c.Status()
	require.NotNil(t, st)
	assert.False(t, st.HasReading)
	assert.Equal(t, "Waiting for sensors", *st.Data(r.c.Capabilities()).Mood)
	assert.Equal(t, 25, r.c.Capabilities().SongCatalogSize)
}

func TestPass_SamplesOnSchedule(t *testing.T) {
	r := newRig(t, nil, Options{SampleInterval: 2 * time.Second})

	r.c.Pass(context.Background(), t0)
	st := r.c.Status()
	require.True(t, st.HasReading)
	assert.Equal(t, classify.Normal, st.Result.Label)
	assert.Equal(t, []string{"reading"}, drain(r.c))

	// not due yet
	r.sampler.snap.Temperature = 35
	r.c.Pass(context.Background(), t0.Add(time.Second))
	assert.Equal(t, 24.0, r.c.Status().Snapshot.Temperature)
	assert.Empty(t, drain(r.c))

	r.c.Pass(context.Background(), t0.Add(2*time.Second))
	st = r.c.Status()
	assert.Equal(t, 35.0, st.Snapshot.Temperature)
	assert.NotEqual(t, classify.Normal, st.Result.Label)
	assert.Len(t, r.c.History(), 2)
}

func TestPass_AutoFanHysteresis(t *testing.T) {
	r := newRig(t, nil, Options{SampleInterval: time.Second, FanHysteresis: 1})
	now := t0

	step := func(temp float64) actuator.State {
		r.sampler.snap.Temperature = temp
		r.c.Pass(context.Background(), now)
		now = now.Add(time.Second)
		return r.c.Status().Actuators
	}

	assert.False(t, step(24).Fan)
	assert.True(t, step(31).Fan)
	assert.True(t, r.pins.levels[actuator.PinFan])
	assert.True(t, step(29.5).Fan, "inside the hysteresis band the fan stays on")
	assert.False(t, step(28.5).Fan)
	assert.False(t, r.pins.levels[actuator.PinFan])
}

func TestPass_ManualModeLeavesFanAlone(t *testing.T) {
	r := newRig(t, nil, Options{SampleInterval: time.Second})
	require.NoError(t, r.c.Dispatch(cmd("ai_toggle"), t0).Err)

	r.sampler.snap.Temperature = 33
	r.c.Pass(context.Background(), t0)
	st := r.c.Status()
	assert.False(t, st.Actuators.Fan)
	assert.Equal(t, "AI: manual mode", st.Data(r.c.Capabilities()).AIStatus)
}

func TestPass_SensorFaultKeepsLastSnapshot(t *testing.T) {
	r := newRig(t, nil, Options{SampleInterval: time.Second})
	r.c.Pass(context.Background(), t0)

	r.sampler.err = sensor.NewFault("dht11")
	r.c.Pass(context.Background(), t0.Add(time.Second))

	st := r.c.Status()
	assert.True(t, st.Stale)
	assert.Equal(t, 24.0, st.Snapshot.Temperature)
	data := st.Data(r.c.Capabilities())
	assert.True(t, data.Stale)
	assert.Equal(t, "AI: sensor offline, showing last reading", data.AIStatus)
	assert.Len(t, r.c.History(), 1)

	r.sampler.err = nil
	r.c.Pass(context.Background(), t0.Add(2*time.Second))
	assert.False(t, r.c.Status().Stale)
}

func TestDispatch_Errors(t *testing.T) {
	r := newRig(t, nil, Options{})
	before := r.c.bank.State()

	tests := []struct {
		name string
		cmd  protocol.Command
		want error
	}{
		{"unknown token", cmd("dance"), ErrUnknownCommand},
		{"empty token", cmd(""), ErrUnknownCommand},
		{"bell without bell", cmd("bell_toggle"), actuator.ErrUnknownActuator},
		{"song id not a number", cmd("music_play", "id", "abc"), ErrBadArgument},
		{"song outside catalog", cmd("music_play", "id", "25"), melody.ErrUnknownSong},
		{"negative song", cmd("music_play", "id", "-1"), melody.ErrUnknownSong},
		{"tone without freq", cmd("tone"), ErrBadArgument},
		{"negative tone", cmd("tone", "freq", "-440"), ErrBadArgument},
		{"tone not a number", cmd("tone", "freq", "loud"), ErrBadArgument},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reply := r.c.Dispatch(tt.cmd, t0)
			assert.True(t, errors.Is(reply.Err, tt.want), "got %v", reply.Err)
			assert.Equal(t, before, r.c.bank.State())
			assert.False(t, r.c.player.Playback().Playing)
		})
	}
}

func TestDispatch_TogglesAreInvolutions(t *testing.T) {
	r := newRig(t, nil, Options{HasBell: true})
	for _, token := range []string{"fan_toggle", "lamp_toggle", "ai_toggle", "bell_toggle"} {
		before := r.c.bank.State()
		require.NoError(t, r.c.Dispatch(cmd(token), t0).Err)
		assert.NotEqual(t, before, r.c.bank.State(), token)
		require.NoError(t, r.c.Dispatch(cmd(token), t0).Err)
		assert.Equal(t, before, r.c.bank.State(), token)
	}
}

func TestDispatch_MusicDefaultsToFirstSong(t *testing.T) {
	r := newRig(t, nil, Options{})
	require.NoError(t, r.c.Dispatch(cmd("music_play"), t0).Err)

	pb := r.c.player.Playback()
	assert.True(t, pb.Playing)
	assert.Equal(t, 0, pb.SongID)
	assert.Equal(t, songs.E5, r.buzzer.last())

	require.NoError(t, r.c.Dispatch(cmd("music_stop"), t0).Err)
	assert.False(t, r.c.player.Playback().Playing)
	assert.Equal(t, 0, r.buzzer.last())
}

func TestDispatch_Tone(t *testing.T) {
	r := newRig(t, nil, Options{})
	require.NoError(t, r.c.Dispatch(cmd("music_play", "id", "3"), t0).Err)
	require.NoError(t, r.c.Dispatch(cmd("tone", "freq", "440"), t0).Err)

	assert.Equal(t, []int{440}, r.buzzer.tones)
	assert.False(t, r.c.player.Playback().Playing)
}

func TestPass_SongCompletesWithSilence(t *testing.T) {
	r := newRig(t, nil, Options{SampleInterval: time.Hour})
	r.c.Pass(context.Background(), t0)
	require.NoError(t, r.c.Dispatch(cmd("music_play", "id", "7"), t0).Err)

	song, _ := songs.Base().Song(7)
	require.True(t, r.c.player.Playback().Playing)
	now := t0
	for i := 0; i < 100000 && r.c.player.Playback().Playing; i++ {
		now = now.Add(10 * time.Millisecond)
		r.c.Pass(context.Background(), now)
	}

	st := r.c.Status()
	assert.False(t, st.Playing)
	assert.Equal(t, 0, st.SongID)
	assert.Empty(t, st.SongName)
	assert.Equal(t, melody.Playback{}, r.c.player.Playback())
	assert.Equal(t, 0, r.buzzer.last())
	// one emit per note plus the closing silence
	assert.Len(t, r.buzzer.emitted, len(song.Notes)+1)
}

func TestPass_ServesOneRequestPerPass(t *testing.T) {
	r := newRig(t, nil, Options{})
	first := request{ctx: context.Background(), cmd: cmd("fan_toggle"), reply: make(chan Reply, 1)}
	second := request{ctx: context.Background(), cmd: cmd("lamp_toggle"), reply: make(chan Reply, 1)}
	r.c.inbox <- first
	r.c.inbox <- second

	r.c.Pass(context.Background(), t0)
	assert.True(t, r.c.Status().Actuators.Fan)
	assert.False(t, r.c.Status().Actuators.Lamp)
	assert.Len(t, first.reply, 1)
	assert.Len(t, second.reply, 0)

	r.c.Pass(context.Background(), t0.Add(time.Millisecond))
	assert.True(t, r.c.Status().Actuators.Lamp)
}

func TestScan_Flow(t *testing.T) {
	r := newRig(t, nil, Options{ScanTimeout: 20 * time.Second})

	require.NoError(t, r.c.Dispatch(cmd("scan_start"), t0).Err)
	require.NoError(t, r.c.Dispatch(cmd("scan_start"), t0.Add(time.Second)).Err)
	assert.Equal(t, 1, r.radio.starts)

	reply := r.c.Dispatch(cmd("scan_poll"), t0.Add(time.Second))
	require.NoError(t, reply.Err)
	assert.Equal(t, wifi.InProgress, reply.Scan.Phase)

	r.radio.done = true
	r.radio.networks = []wifi.Network{{SSID: "Sekolah", RSSI: -40}}
	for i := 0; i < 3; i++ {
		reply = r.c.Dispatch(cmd("scan_poll"), t0.Add(2*time.Second))
		require.NoError(t, reply.Err)
		assert.Equal(t, wifi.Ready, reply.Scan.Phase)
		assert.Equal(t, []string{"Sekolah"}, wifi.SSIDs(reply.Scan.Networks))
	}
	assert.False(t, r.c.timers.Pending(timerScan))

	require.NoError(t, r.c.Dispatch(cmd("scan_reset"), t0.Add(3*time.Second)).Err)
	reply = r.c.Dispatch(cmd("scan_poll"), t0.Add(3*time.Second))
	assert.Equal(t, wifi.Idle, reply.Scan.Phase)
}

func TestScan_TimeoutFiresFromTimer(t *testing.T) {
	r := newRig(t, nil, Options{ScanTimeout: 5 * time.Second, SampleInterval: time.Hour})
	require.NoError(t, r.c.Dispatch(cmd("scan_start"), t0).Err)
	assert.True(t, r.c.timers.Pending(timerScan))

	r.c.Pass(context.Background(), t0.Add(5*time.Second))
	assert.Equal(t, wifi.Idle, r.c.Status().Scan)

	reply := r.c.Dispatch(cmd("scan_poll"), t0.Add(6*time.Second))
	assert.True(t, errors.Is(reply.Err, wifi.ErrScanFailed))
	reply = r.c.Dispatch(cmd("scan_poll"), t0.Add(7*time.Second))
	assert.NoError(t, reply.Err)
}

func TestAlerts_RaisedAndCleared(t *testing.T) {
	r := newRig(t, nil, Options{HasSmoke: true, AlertHold: 2 * time.Second, SampleInterval: time.Second})
	r.sampler.snap.Smoke = 2500

	r.c.Pass(context.Background(), t0)
	assert.Equal(t, []string{"reading"}, drain(r.c))
	// base catalog has no stinger song, so a quick tone sounds
	assert.Equal(t, []int{2000}, r.buzzer.tones)

	r.c.Pass(context.Background(), t0.Add(time.Second))
	assert.Equal(t, []string{"reading"}, drain(r.c))

	r.c.Pass(context.Background(), t0.Add(2*time.Second))
	assert.Equal(t, []string{"reading", "alert"}, drain(r.c))
	assert.Equal(t, []string{"smoke"}, r.c.Status().Alerts)

	r.sampler.snap.Smoke = 200
	r.c.Pass(context.Background(), t0.Add(3*time.Second))
	assert.Equal(t, []string{"reading", "alert_cleared"}, drain(r.c))
	assert.Len(t, r.buzzer.tones, 1, "stinger only on entering danger")
}

func TestAlerts_StingerSongWithExtendedCatalog(t *testing.T) {
	r := newRig(t, songs.Extended(), Options{SampleInterval: time.Second})
	r.sampler.snap.Temperature = 40

	r.c.Pass(context.Background(), t0)
	st := r.c.Status()
	assert.True(t, st.Playing)
	assert.Equal(t, songs.AlertStinger, st.SongID)
	assert.Empty(t, r.buzzer.tones)
}

func TestBell_RingsWhenEnabled(t *testing.T) {
	r := newRig(t, songs.Extended(), Options{HasBell: true, Bells: schoolBells(t), SampleInterval: time.Hour})
	assert.Equal(t, time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC), r.c.Status().NextBell)

	require.NoError(t, r.c.Dispatch(cmd("bell_toggle"), t0).Err)
	r.c.Pass(context.Background(), t0.Add(time.Minute))

	st := r.c.Status()
	assert.True(t, st.Playing)
	assert.Equal(t, songs.BellLessonStart, st.SongID)
	assert.Equal(t, time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC), st.NextBell)
}

func TestBell_SilentWhenAutoOff(t *testing.T) {
	r := newRig(t, songs.Extended(), Options{HasBell: true, Bells: schoolBells(t), SampleInterval: time.Hour})
	r.c.Pass(context.Background(), t0.Add(time.Minute))
	assert.False(t, r.c.Status().Playing)
	assert.True(t, r.c.timers.Pending(timerBell))
}

func TestConfigChanged_EmitsRedactedEvent(t *testing.T) {
	r := newRig(t, nil, Options{})
	reply := r.c.Dispatch(cmd("config_changed", "ssid", "Lab", "id", "42"), t0)
	require.NoError(t, reply.Err)

	ev := <-r.c.Events()
	assert.Equal(t, protocol.EventConfigChanged, ev.Kind)
	payload, err := ev.Config()
	require.NoError(t, err)
	assert.Equal(t, "Lab", payload.Settings.SSID)
	assert.Equal(t, "42", payload.Settings.ChatID)
	assert.Empty(t, payload.Settings.BotToken)
}

func TestOutbox_DropsWhenFull(t *testing.T) {
	r := newRig(t, nil, Options{OutboxSize: 1, SampleInterval: time.Second})
	r.c.Pass(context.Background(), t0)
	r.c.Pass(context.Background(), t0.Add(time.Second))
	r.c.Pass(context.Background(), t0.Add(2*time.Second))

	assert.Equal(t, uint64(2), r.c.Dropped())
	assert.Len(t, drain(r.c), 1)
}

func TestStatus_DataVariants(t *testing.T) {
	r := newRig(t, nil, Options{HasSmoke: true, HasBell: true, Terminology: protocol.TermHealth})
	r.c.Pass(context.Background(), t0)

	d := r.c.Status().Data(r.c.Capabilities())
	require.NotNil(t, d.Smoke)
	assert.Equal(t, 150, *d.Smoke)
	require.NotNil(t, d.Health)
	assert.Equal(t, "Comfortable", *d.Health)
	assert.Nil(t, d.Mood)
	require.NotNil(t, d.Auto)
	assert.True(t, *d.Auto)
	assert.True(t, d.AI)
	require.NotNil(t, d.Bell)
	assert.Equal(t, "07:59:00", d.Time)

	plain := newRig(t, nil, Options{})
	plain.c.Pass(context.Background(), t0)
	d = plain.c.Status().Data(plain.c.Capabilities())
	assert.Nil(t, d.Smoke)
	assert.Nil(t, d.Bell)
	assert.Nil(t, d.Auto)
	require.NotNil(t, d.Mood)
}

func TestRun_SubmitEndToEnd(t *testing.T) {
	r := newRig(t, nil, Options{SampleInterval: time.Hour, Clock: time.Now})
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- r.c.Run(ctx) }()

	reply, err := r.c.Submit(ctx, cmd("fan_toggle"))
	require.NoError(t, err)
	require.NoError(t, reply.Err)
	require.Eventually(t, func() bool {
		return r.c.Status().Actuators.Fan
	}, time.Second, 5*time.Millisecond)

	reply, err = r.c.Submit(ctx, cmd("warp_drive"))
	require.NoError(t, err)
	assert.True(t, errors.Is(reply.Err, ErrUnknownCommand))

	cancel()
	require.NoError(t, <-done)
	assert.Equal(t, 0, r.buzzer.last(), "buzzer silenced once Run returns")

	_, err = r.c.Submit(context.Background(), cmd("fan_toggle"))
	assert.True(t, errors.Is(err, ErrStopped))
}

func TestSubmit_ContextTimeout(t *testing.T) {
	r := newRig(t, nil, Options{InboxSize: 1})
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := r.c.Submit(ctx, cmd("fan_toggle"))
	assert.True(t, errors.Is(err, context.DeadlineExceeded))

	// the queued command was abandoned and must not run late
	require.Len(t, r.c.inbox, 1)
	r.c.Pass(context.Background(), t0)
	assert.Empty(t, r.c.inbox)
	assert.False(t, r.c.Status().Actuators.Fan)
}
