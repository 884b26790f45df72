package server

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/smukkama/smartclass/internal/controller"
	"github.com/smukkama/smartclass/internal/protocol"
	"github.com/smukkama/smartclass/internal/wifi"
)

const csvTimeFormat = "2006-01-02 15:04:05"

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(dashboard)
}

func (s *Server) handleData(w http.ResponseWriter, r *http.Request) {
	data := s.ctrl.Status().Data(s.ctrl.Capabilities())
	w.Header().Set("Cache-Control", "no-store")
	writeJSON(w, http.StatusOK, data)
}

// handleCommand answers OK or IGNORED. A rejected command changes nothing,
// so the dashboard only needs to refresh /data.
func (s *Server) handleCommand(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	token := query.Get("do")

	args := make(map[string]string, len(query))
	for key := range query {
		if key != "do" {
			args[key] = query.Get(key)
		}
	}

	// config_changed is raised by /save only
	if protocol.CommandType(token) == protocol.CmdConfigChanged {
		writeText(w, http.StatusOK, protocol.ReplyIgnored)
		return
	}

	reply, err := s.submit(r.Context(), controller.NewCommand(token, args))
	if err != nil {
		s.unavailable(w, token, err)
		return
	}
	if reply.Err != nil {
		writeText(w, http.StatusOK, protocol.ReplyIgnored)
		return
	}
	writeText(w, http.StatusOK, protocol.ReplyOK)
}

// handleScan polls the scanner and starts a scan when it is idle. fresh=1
// drops a previous result first.
func (s *Server) handleScan(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if r.URL.Query().Get("fresh") == "1" {
		if _, err := s.submit(ctx, controller.NewCommand(string(protocol.CmdScanReset), nil)); err != nil {
			s.unavailable(w, string(protocol.CmdScanReset), err)
			return
		}
	}

	reply, err := s.submit(ctx, controller.NewCommand(string(protocol.CmdScanPoll), nil))
	if err != nil {
		s.unavailable(w, string(protocol.CmdScanPoll), err)
		return
	}

	var body []byte
	switch {
	case errors.Is(reply.Err, wifi.ErrScanFailed):
		body, err = protocol.EncodeScanStatus(protocol.ScanStatusFailed)
	case reply.Scan != nil && reply.Scan.Phase == wifi.Ready:
		body, err = protocol.EncodeScanNetworks(wifi.SSIDs(reply.Scan.Networks))
	case reply.Scan != nil && reply.Scan.Phase == wifi.Idle:
		if _, err := s.submit(ctx, controller.NewCommand(string(protocol.CmdScanStart), nil)); err != nil {
			s.unavailable(w, string(protocol.CmdScanStart), err)
			return
		}
		body, err = protocol.EncodeScanStatus(protocol.ScanStatusScanning)
	default:
		body, err = protocol.EncodeScanStatus(protocol.ScanStatusScanning)
	}
	if err != nil {
		s.logger.Error("failed to encode scan reply", zap.Error(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.Write(body)
}

func (s *Server) handleSave(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}

	ssid := strings.TrimSpace(r.PostForm.Get("ssid_manual"))
	if ssid == "" {
		ssid = strings.TrimSpace(r.PostForm.Get("ssid"))
	}
	if ssid == "" {
		http.Error(w, "ssid is required", http.StatusBadRequest)
		return
	}

	saved := protocol.Settings{
		SSID:     ssid,
		Password: r.PostForm.Get("pass"),
		BotToken: strings.TrimSpace(r.PostForm.Get("bot")),
		ChatID:   strings.TrimSpace(r.PostForm.Get("id")),
		SavedAt:  s.now(),
	}
	if err := s.store.Save(r.Context(), saved); err != nil {
		s.logger.Error("failed to save settings", zap.Error(err))
		http.Error(w, "failed to save settings", http.StatusInternalServerError)
		return
	}

	args := map[string]string{"ssid": saved.SSID, "id": saved.ChatID}
	reply, err := s.submit(r.Context(), controller.NewCommand(string(protocol.CmdConfigChanged), args))
	if err == nil {
		err = reply.Err
	}
	if err != nil {
		s.logger.Warn("settings saved but controller was not notified", zap.Error(err))
	}

	s.logger.Info("settings saved", zap.String("ssid", saved.SSID), zap.Bool("telegram", saved.BotToken != ""))

	restart := s.config.RestartOnSave && s.onSave != nil
	msg := "Settings saved."
	if restart {
		msg = "Settings saved. Restarting..."
	}
	writeText(w, http.StatusOK, msg)

	if restart {
		s.onSave()
	}
}

func (s *Server) handleCSV(w http.ResponseWriter, r *http.Request) {
	records := s.ctrl.History()
	hasSmoke := s.ctrl.Capabilities().HasSmoke

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="classroom-log.csv"`)

	cw := csv.NewWriter(w)
	header := []string{"time", "temperature", "humidity", "gas", "sound"}
	if hasSmoke {
		header = append(header, "smoke")
	}
	header = append(header, "level", "mood", "fan", "lamp")
	cw.Write(header)

	for _, rec := range records {
		row := []string{
			rec.Snapshot.Timestamp.Format(csvTimeFormat),
			strconv.FormatFloat(rec.Snapshot.Temperature, 'f', 1, 64),
			strconv.FormatFloat(rec.Snapshot.Humidity, 'f', 0, 64),
			strconv.Itoa(rec.Snapshot.Gas),
			strconv.FormatFloat(rec.Snapshot.Sound, 'f', 1, 64),
		}
		if hasSmoke {
			row = append(row, strconv.Itoa(rec.Snapshot.Smoke))
		}
		row = append(row,
			rec.Level.String(),
			rec.Mood,
			strconv.FormatBool(rec.Fan),
			strconv.FormatBool(rec.Lamp),
		)
		cw.Write(row)
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		s.logger.Warn("failed to write csv export", zap.Error(err))
	}
}

func (s *Server) handleSongs(w http.ResponseWriter, r *http.Request) {
	entries := s.catalog.List()
	list := make([]protocol.SongEntry, 0, len(entries))
	for _, e := range entries {
		list = append(list, protocol.SongEntry{ID: e.ID, Name: e.Name})
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) submit(ctx context.Context, cmd protocol.Command) (controller.Reply, error) {
	ctx, cancel := context.WithTimeout(ctx, s.commandTimeout())
	defer cancel()
	return s.ctrl.Submit(ctx, cmd)
}

func (s *Server) commandTimeout() time.Duration {
	if s.config.CommandTimeout <= 0 {
		return 2 * time.Second
	}
	return s.config.CommandTimeout
}

func (s *Server) unavailable(w http.ResponseWriter, token string, err error) {
	s.logger.Warn("controller did not take command", zap.String("command", token), zap.Error(err))
	http.Error(w, "controller busy", http.StatusServiceUnavailable)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	data, err := json.Marshal(v)
	if err != nil {
		http.Error(w, fmt.Sprintf("failed to encode response: %v", err), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(data)
}

func writeText(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	w.Write([]byte(body))
}
