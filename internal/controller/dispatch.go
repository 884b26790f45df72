package controller

import (
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/smukkama/smartclass/internal/actuator"
	"github.com/smukkama/smartclass/internal/protocol"
	"github.com/smukkama/smartclass/internal/wifi"
)

const maxToneFreq = 20000

var (
	ErrUnknownCommand = &CommandError{"unknown command"}
	ErrBadArgument    = &CommandError{"bad argument"}
	ErrStopped        = &CommandError{"controller is stopped"}
)

// CommandError represents a rejected command
type CommandError struct {
	msg string
}

func (e *CommandError) Error() string {
	return e.msg
}

// NewCommand builds a command from the do= token and its query arguments
func NewCommand(token string, args map[string]string) protocol.Command {
	return protocol.Command{Type: protocol.CommandType(token), Args: args}
}

// Dispatch applies one command. It must only be called from the loop
// goroutine (or from tests driving Pass directly). A rejected command leaves
// all state unchanged.
func (c *Controller) Dispatch(cmd protocol.Command, now time.Time) Reply {
	var reply Reply

	switch cmd.Type {
	case protocol.CmdFanToggle:
		_, reply.Err = c.bank.Toggle(actuator.Fan)
	case protocol.CmdLampToggle:
		_, reply.Err = c.bank.Toggle(actuator.Lamp)
	case protocol.CmdAIToggle:
		_, reply.Err = c.bank.Toggle(actuator.AIAuto)
	case protocol.CmdBellToggle:
		_, reply.Err = c.bank.Toggle(actuator.BellAuto)

	case protocol.CmdMusicPlay:
		id, err := intArg(cmd.Args, "id", 0, true)
		if err != nil {
			reply.Err = err
			break
		}
		reply.Err = c.player.Play(id, now)

	case protocol.CmdMusicStop:
		c.player.Stop()

	case protocol.CmdTone:
		freq, err := intArg(cmd.Args, "freq", 0, false)
		if err != nil {
			reply.Err = err
			break
		}
		if freq < 1 || freq > maxToneFreq {
			reply.Err = fmt.Errorf("%w: freq %d outside 1-%d Hz", ErrBadArgument, freq, maxToneFreq)
			break
		}
		c.player.Tone(freq)

	case protocol.CmdScanStart:
		if c.scanner.Start(now) {
			c.armScanTimeout()
		}

	case protocol.CmdScanPoll:
		st, err := c.scanner.Poll(now)
		if st.Phase != wifi.InProgress {
			c.timers.Cancel(timerScan)
		}
		reply.Scan = &st
		reply.Err = err

	case protocol.CmdScanReset:
		c.scanner.Reset()
		c.timers.Cancel(timerScan)

	case protocol.CmdConfigChanged:
		settings := protocol.Settings{
			SSID:    cmd.Args["ssid"],
			ChatID:  cmd.Args["id"],
			SavedAt: now,
		}
		c.emit(protocol.EventConfigChanged, now, protocol.ConfigPayload{Settings: settings})

	default:
		reply.Err = fmt.Errorf("%w: %q", ErrUnknownCommand, cmd.Type)
	}

	if reply.Err != nil {
		c.logger.Debug("command rejected", zap.String("command", string(cmd.Type)), zap.Error(reply.Err))
	}
	return reply
}

func (c *Controller) armScanTimeout() {
	if deadline, ok := c.scanner.Deadline(); ok {
		c.timers.Schedule(timerScan, deadline)
	}
}

// intArg reads a decimal argument. Missing arguments yield def when optional.
func intArg(args map[string]string, key string, def int, optional bool) (int, error) {
	raw, ok := args[key]
	if !ok || raw == "" {
		if optional {
			return def, nil
		}
		return 0, fmt.Errorf("%w: %s is required", ErrBadArgument, key)
	}

	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: %s=%q is not a number", ErrBadArgument, key, raw)
	}
	return v, nil
}
