// Package notify dispatches alert notifications through the Twilio
// WhatsApp gateway. Best-effort by design: no retry, errors surface only
// to the caller's log.
package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

const defaultBaseURL = "https://api.twilio.com/2010-04-01"

// Options configures the Twilio WhatsApp client.
type Options struct {
	AccountSID string
	AuthToken  string
	From       string // whatsapp:+... sender
	To         string // whatsapp:+... recipient
	BaseURL    string // override for tests; defaults to the Twilio API
}

// WhatsApp sends alert messages via the Twilio Messages API.
type WhatsApp struct {
	http       *resty.Client
	accountSID string
	from       string
	to         string
	log        *zap.Logger
}

// NewWhatsApp creates the client. Credentials are assumed validated by
// config; an unreachable gateway only shows up per send.
func NewWhatsApp(opts Options, log *zap.Logger) *WhatsApp {
	base := opts.BaseURL
	if base == "" {
		base = defaultBaseURL
	}
	client := resty.New().
		SetBaseURL(base).
		SetBasicAuth(opts.AccountSID, opts.AuthToken).
		SetTimeout(10 * time.Second)
	return &WhatsApp{
		http:       client,
		accountSID: opts.AccountSID,
		from:       opts.From,
		to:         opts.To,
		log:        log,
	}
}

// SendAlert posts one WhatsApp message for a detected subject.
func (w *WhatsApp) SendAlert(ctx context.Context, tenantID, subjectName string, at time.Time) error {
	body := fmt.Sprintf("🚨 ALERT: Person named '%s' was detected at %s.",
		subjectName, at.Format("3:04:05 PM"))
	resp, err := w.http.R().
		SetContext(ctx).
		SetFormData(map[string]string{
			"Body": body,
			"From": w.from,
			"To":   w.to,
		}).
		Post("/Accounts/" + w.accountSID + "/Messages.json")
	if err != nil {
		return fmt.Errorf("twilio: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("twilio: unexpected status %s", resp.Status())
	}
	w.log.Info("whatsapp alert sent",
		zap.String("tenant_id", tenantID),
		zap.String("subject", subjectName))
	return nil
}
