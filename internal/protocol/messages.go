package protocol

import (
	"encoding/json"
	"time"
)

// CommandType is the value of the do= query parameter
type CommandType string

const (
	CmdFanToggle     CommandType = "fan_toggle"
	CmdLampToggle    CommandType = "lamp_toggle"
	CmdAIToggle      CommandType = "ai_toggle"
	CmdBellToggle    CommandType = "bell_toggle"
	CmdMusicPlay     CommandType = "music_play"
	CmdMusicStop     CommandType = "music_stop"
	CmdTone          CommandType = "tone"
	CmdScanStart     CommandType = "scan_start"
	CmdScanPoll      CommandType = "scan_poll"
	CmdScanReset     CommandType = "scan_reset"
	CmdConfigChanged CommandType = "config_changed"
)

// Command is one parsed request for the controller
type Command struct {
	Type CommandType
	Args map[string]string
}

// Reply bodies for /cmd
const (
	ReplyOK      = "OK"
	ReplyIgnored = "IGNORED"
)

// Terminology variants for the classification key
const (
	TermMood   = "mood"
	TermHealth = "health"
)

// Data is the /data document. Optional keys depend on the device variant.
type Data struct {
	Temperature float64 `json:"t"`
	Humidity    float64 `json:"h"`
	Gas         int     `json:"gas"`
	Sound       float64 `json:"db"`
	Smoke       *int    `json:"mq2,omitempty"`
	Mood        *string `json:"mood,omitempty"`
	Health      *string `json:"health,omitempty"`
	AI          bool    `json:"ai"`
	Auto        *bool   `json:"auto,omitempty"`
	AIStatus    string  `json:"ai_stat"`
	Level       string  `json:"level"`
	Fan         bool    `json:"fan"`
	Lamp        bool    `json:"lamp"`
	Bell        *bool   `json:"bell,omitempty"`
	Playing     bool    `json:"playing"`
	Song        string  `json:"song,omitempty"`
	Stale       bool    `json:"stale"`
	Time        string  `json:"time"`
}

// ClockFormat is the layout of Data.Time
const ClockFormat = "15:04:05"

// Scan status markers
const (
	ScanStatusScanning = "scanning"
	ScanStatusFailed   = "failed"
	ScanStatusIdle     = "idle"
)

// ScanStatus is the /scan body when no network list is available
type ScanStatus struct {
	Status string `json:"status"`
}

// EncodeScanNetworks encodes a ready scan as a plain array of SSIDs
func EncodeScanNetworks(ssids []string) ([]byte, error) {
	if ssids == nil {
		ssids = []string{}
	}
	return json.Marshal(ssids)
}

// EncodeScanStatus encodes a status marker
func EncodeScanStatus(status string) ([]byte, error) {
	return json.Marshal(ScanStatus{Status: status})
}

// SongEntry is one /songs item
type SongEntry struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// Settings is the /save form after normalisation. SSID is the manual entry
// when given, otherwise the one picked from the scan list.
type Settings struct {
	SSID     string    `json:"ssid"`
	Password string    `json:"pass,omitempty"`
	BotToken string    `json:"bot,omitempty"`
	ChatID   string    `json:"id"`
	SavedAt  time.Time `json:"saved_at"`
}

// Redacted drops secrets so the settings can travel in events and logs
func (s Settings) Redacted() Settings {
	s.Password = ""
	s.BotToken = ""
	return s
}

// EncodeMessage encodes a message to JSON
func EncodeMessage(msg interface{}) ([]byte, error) {
	return json.Marshal(msg)
}
