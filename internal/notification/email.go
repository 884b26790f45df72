package notification

import (
	"bytes"
	"context"
	"fmt"
	"net/smtp"
	"strings"
	"text/template"
	"time"

	"go.uber.org/zap"

	"github.com/smukkama/smartclass/internal/protocol"
	"github.com/smukkama/smartclass/pkg/config"
)

var (
	raisedTemplate = template.Must(template.New("raised").Parse(`
Classroom Alert
===============

Classroom: {{.DeviceID}}
Metric: {{.Metric}}
Value: {{.Value}}
Since: {{.Since}}

{{.Text}}

Please check the room.

---
Smart Classroom Monitor
`))

	clearedTemplate = template.Must(template.New("cleared").Parse(`
Classroom Alert Cleared
=======================

Classroom: {{.DeviceID}}
Metric: {{.Metric}}
Cleared at: {{.At}}

The {{.Metric}} reading has returned to a safe level.

---
Smart Classroom Monitor
`))
)

type alertView struct {
	DeviceID string
	Metric   string
	Value    float64
	Text     string
	Since    string
	At       string
}

type sendMailFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// EmailNotifier mails alert transitions to the school administrator
type EmailNotifier struct {
	config   *config.SMTPConfig
	logger   *zap.Logger
	sendMail sendMailFunc
}

// NewEmailNotifier creates a new email notifier
func NewEmailNotifier(cfg *config.SMTPConfig, logger *zap.Logger) *EmailNotifier {
	return &EmailNotifier{config: cfg, logger: logger, sendMail: smtp.SendMail}
}

func (e *EmailNotifier) Name() string {
	return "email"
}

// Configured reports whether SMTP credentials are present
func (e *EmailNotifier) Configured() bool {
	return e.config.Username != "" && e.config.Password != ""
}

// Send mails alert and alert_cleared events. Other kinds are ignored.
func (e *EmailNotifier) Send(ctx context.Context, ev *protocol.Event) error {
	if !isAlert(ev) {
		return nil
	}

	subject, body, err := e.render(ev)
	if err != nil {
		return fmt.Errorf("failed to render email: %w", err)
	}

	if !e.Configured() {
		e.logger.Info("SMTP not configured, skipping email", zap.String("subject", subject))
		return nil
	}

	var msg strings.Builder
	fmt.Fprintf(&msg, "From: %s\r\n", e.config.From)
	fmt.Fprintf(&msg, "To: %s\r\n", e.config.To)
	fmt.Fprintf(&msg, "Subject: %s\r\n", subject)
	fmt.Fprintf(&msg, "Date: %s\r\n", time.Now().Format(time.RFC1123Z))
	msg.WriteString("Content-Type: text/plain; charset=UTF-8\r\n\r\n")
	msg.WriteString(body)

	auth := smtp.PlainAuth("", e.config.Username, e.config.Password, e.config.Host)
	addr := fmt.Sprintf("%s:%d", e.config.Host, e.config.Port)
	if err := e.sendMail(addr, auth, e.config.From, []string{e.config.To}, []byte(msg.String())); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	e.logger.Info("email sent", zap.String("subject", subject))
	return nil
}

func (e *EmailNotifier) render(ev *protocol.Event) (string, string, error) {
	p, err := ev.Alert()
	if err != nil {
		return "", "", err
	}

	view := alertView{
		DeviceID: ev.DeviceID,
		Metric:   p.Metric,
		Value:    p.Value,
		Text:     p.Text,
		Since:    p.BreachStart.Format(time.RFC1123),
		At:       ev.At.Format(time.RFC1123),
	}

	tmpl := raisedTemplate
	subject := fmt.Sprintf("🚨 Classroom alert - %s: %s", ev.DeviceID, p.Metric)
	if ev.Kind == protocol.EventAlertCleared {
		tmpl = clearedTemplate
		subject = fmt.Sprintf("✅ Classroom alert cleared - %s: %s", ev.DeviceID, p.Metric)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, view); err != nil {
		return "", "", err
	}
	return subject, buf.String(), nil
}

func isAlert(ev *protocol.Event) bool {
	return ev.Kind == protocol.EventAlert || ev.Kind == protocol.EventAlertCleared
}
