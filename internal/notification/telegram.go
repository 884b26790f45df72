package notification

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/smukkama/smartclass/internal/protocol"
	"github.com/smukkama/smartclass/internal/settings"
	"github.com/smukkama/smartclass/pkg/config"
)

// SettingsLookup returns the settings saved from a device's dashboard
type SettingsLookup func(ctx context.Context, deviceID string) (protocol.Settings, error)

// StoreLookup adapts a single-device store
func StoreLookup(store settings.Store) SettingsLookup {
	return func(ctx context.Context, _ string) (protocol.Settings, error) {
		return store.Load(ctx)
	}
}

// TelegramNotifier posts alert transitions to a Telegram chat. The bot
// token and chat id saved through the dashboard win over the configured
// ones.
type TelegramNotifier struct {
	config *config.TelegramConfig
	lookup SettingsLookup
	client *http.Client
	logger *zap.Logger
}

// NewTelegramNotifier creates a notifier. lookup may be nil.
func NewTelegramNotifier(cfg *config.TelegramConfig, lookup SettingsLookup, logger *zap.Logger) *TelegramNotifier {
	return &TelegramNotifier{
		config: cfg,
		lookup: lookup,
		client: &http.Client{Timeout: 10 * time.Second},
		logger: logger,
	}
}

func (t *TelegramNotifier) Name() string {
	return "telegram"
}

type sendMessageRequest struct {
	ChatID string `json:"chat_id"`
	Text   string `json:"text"`
}

type sendMessageResponse struct {
	OK          bool   `json:"ok"`
	Description string `json:"description"`
}

// Send posts alert and alert_cleared events. Other kinds are ignored.
func (t *TelegramNotifier) Send(ctx context.Context, ev *protocol.Event) error {
	if !isAlert(ev) {
		return nil
	}

	p, err := ev.Alert()
	if err != nil {
		return err
	}

	token, chatID := t.credentials(ctx, ev.DeviceID)
	if token == "" || chatID == "" {
		t.logger.Debug("telegram not configured, skipping alert", zap.String("device_id", ev.DeviceID))
		return nil
	}

	body, err := json.Marshal(sendMessageRequest{ChatID: chatID, Text: messageText(ev, p)})
	if err != nil {
		return err
	}

	endpoint := fmt.Sprintf("%s/bot%s/sendMessage", strings.TrimSuffix(t.config.APIBase, "/"), token)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.client.Do(req)
	if err != nil {
		// the url carries the bot token
		var urlErr *url.Error
		if errors.As(err, &urlErr) {
			err = urlErr.Err
		}
		return fmt.Errorf("failed to reach telegram: %w", err)
	}
	defer resp.Body.Close()

	var result sendMessageResponse
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	_ = json.Unmarshal(raw, &result)
	if resp.StatusCode != http.StatusOK || !result.OK {
		return fmt.Errorf("telegram rejected message: %d %s", resp.StatusCode, result.Description)
	}

	t.logger.Info("telegram alert sent",
		zap.String("device_id", ev.DeviceID),
		zap.String("kind", string(ev.Kind)),
		zap.String("metric", p.Metric),
	)
	return nil
}

func (t *TelegramNotifier) credentials(ctx context.Context, deviceID string) (string, string) {
	token, chatID := t.config.BotToken, t.config.ChatID
	if t.lookup == nil {
		return token, chatID
	}

	saved, err := t.lookup(ctx, deviceID)
	if err != nil {
		if !errors.Is(err, settings.ErrNotFound) {
			t.logger.Warn("failed to load saved settings, using configured bot", zap.Error(err))
		}
		return token, chatID
	}
	if saved.BotToken != "" {
		token = saved.BotToken
	}
	if saved.ChatID != "" {
		chatID = saved.ChatID
	}
	return token, chatID
}

func messageText(ev *protocol.Event, p *protocol.AlertPayload) string {
	if ev.Kind == protocol.EventAlertCleared {
		return fmt.Sprintf("✅ [%s] %s is back to normal (%s)", ev.DeviceID, p.Metric, ev.At.Format("15:04"))
	}
	return fmt.Sprintf("🚨 [%s] %s\n%s = %g since %s", ev.DeviceID, p.Text, p.Metric, p.Value, p.BreachStart.Format("15:04"))
}
