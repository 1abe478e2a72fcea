// Package mailer sends enquiry confirmation emails over SMTP. Like event
// publishing, mail is best-effort and never blocks the enquiry flow.
package mailer

import (
	"fmt"
	"html"
	"strings"

	"github.com/stem-for-society/enquiry-api/config"
	"github.com/stem-for-society/enquiry-api/internal/models"
	"github.com/stem-for-society/enquiry-api/pkg/logger"
	"go.uber.org/zap"
	"gopkg.in/gomail.v2"
)

// Mailer sends transactional mail. A disabled Mailer swallows all sends.
type Mailer struct {
	dialer  *gomail.Dialer
	from    string
	enabled bool
}

// New creates a Mailer from config. When mail is disabled it becomes a no-op.
func New(cfg config.MailConfig) *Mailer {
	if !cfg.Enabled {
		logger.Info("Mailer disabled")
		return &Mailer{}
	}
	return &Mailer{
		dialer:  gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		from:    cfg.From,
		enabled: true,
	}
}

// SendEnquiryConfirmation acknowledges a paid enquiry. Errors are logged and
// swallowed.
func (m *Mailer) SendEnquiryConfirmation(p *models.EnquiryPayload, orderID string) {
	if !m.enabled || p.Email == "" {
		return
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", p.Email)
	msg.SetHeader("Subject", fmt.Sprintf("Enquiry received: %s", p.ServiceInterest))
	msg.SetBody("text/html", confirmationBody(p, orderID))

	if err := m.dialer.DialAndSend(msg); err != nil {
		logger.Error("Failed to send confirmation email",
			zap.String("order_id", orderID),
			zap.Error(err))
		return
	}

	logger.Info("Confirmation email sent",
		zap.String("order_id", orderID))
}

func confirmationBody(p *models.EnquiryPayload, orderID string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "<p>Dear %s,</p>", html.EscapeString(p.Name))
	fmt.Fprintf(&b, "<p>Thank you for your enquiry about <strong>%s</strong>. ", html.EscapeString(string(p.ServiceInterest)))
	b.WriteString("Our team will reach out within one working day.</p>")
	fmt.Fprintf(&b, "<p>Payment reference: %s</p>", html.EscapeString(orderID))
	if p.SelectedDate != nil {
		fmt.Fprintf(&b, "<p>Preferred date: %s</p>", html.EscapeString(*p.SelectedDate))
	}
	b.WriteString("<p>— STEM for Society</p>")
	return b.String()
}
