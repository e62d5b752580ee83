package services

import (
	"fmt"
	"net/smtp"
	"strings"
	"text/template"

	"github.com/sirupsen/logrus"

	"butchery-pos-api/internal/models"
)

// SMTPConfig holds SMTP configuration for the day-close summary mail
type SMTPConfig struct {
	Host       string
	Port       int
	Username   string
	Password   string
	FromEmail  string
	FromName   string
	Recipients []string
}

// DayCloseNotifier emails the reconciliation summary to the configured
// recipients after a successful close.
type DayCloseNotifier struct {
	smtpConfig *SMTPConfig
	tmpl       *template.Template
	logger     *logrus.Logger
}

// NewDayCloseNotifier creates a new notifier. Returns nil when SMTP is not
// configured; callers treat a nil notifier as "mail disabled".
func NewDayCloseNotifier(smtpConfig *SMTPConfig, logger *logrus.Logger) *DayCloseNotifier {
	if smtpConfig == nil || smtpConfig.Host == "" || len(smtpConfig.Recipients) == 0 {
		return nil
	}

	return &DayCloseNotifier{
		smtpConfig: smtpConfig,
		tmpl:       template.Must(template.New("day_close").Parse(dayCloseTemplate)),
		logger:     logger,
	}
}

// Notify sends the reconciliation summary mail
func (n *DayCloseNotifier) Notify(record *models.ReconciliationRecord) error {
	body, err := n.render(record)
	if err != nil {
		return fmt.Errorf("failed to render day-close summary: %w", err)
	}

	subject := fmt.Sprintf("Day close summary %s", record.DateKey)
	if err := n.send(subject, body); err != nil {
		return fmt.Errorf("failed to send day-close summary: %w", err)
	}

	n.logger.WithFields(logrus.Fields{
		"date":       record.DateKey,
		"recipients": len(n.smtpConfig.Recipients),
	}).Info("Day-close summary mail sent")

	return nil
}

func (n *DayCloseNotifier) render(record *models.ReconciliationRecord) (string, error) {
	variancePercent := "n/a"
	if record.VariancePercent != nil {
		variancePercent = fmt.Sprintf("%.2f%%", *record.VariancePercent)
	}

	var buf strings.Builder
	err := n.tmpl.Execute(&buf, map[string]interface{}{
		"Record":          record,
		"VariancePercent": variancePercent,
	})
	if err != nil {
		return "", err
	}
	return buf.String(), nil
}

func (n *DayCloseNotifier) send(subject, body string) error {
	from := fmt.Sprintf("%s <%s>", n.smtpConfig.FromName, n.smtpConfig.FromEmail)

	msg := fmt.Sprintf("From: %s\r\n", from)
	msg += fmt.Sprintf("To: %s\r\n", strings.Join(n.smtpConfig.Recipients, ", "))
	msg += fmt.Sprintf("Subject: %s\r\n", subject)
	msg += "MIME-Version: 1.0\r\n"
	msg += "Content-Type: text/plain; charset=UTF-8\r\n"
	msg += "\r\n"
	msg += body

	addr := fmt.Sprintf("%s:%d", n.smtpConfig.Host, n.smtpConfig.Port)

	var auth smtp.Auth
	if n.smtpConfig.Username != "" && n.smtpConfig.Password != "" {
		auth = smtp.PlainAuth("", n.smtpConfig.Username, n.smtpConfig.Password, n.smtpConfig.Host)
	}

	return smtp.SendMail(addr, auth, n.smtpConfig.FromEmail, n.smtpConfig.Recipients, []byte(msg))
}

const dayCloseTemplate = `Day close summary for {{.Record.DateKey}}

Closed by: {{.Record.ClosedBy}}

Orders:   {{.Record.OrderCount}} ({{printf "%.2f" .Record.OrderRevenue}} revenue)
Expenses: {{.Record.ExpenseCount}} ({{printf "%.2f" .Record.ExpenseTotal}})

Payment breakdown:
  Cash:   {{printf "%.2f" .Record.Breakdown.Cash}}
  M-Pesa: {{printf "%.2f" .Record.Breakdown.Mpesa}}
  Card:   {{printf "%.2f" .Record.Breakdown.Card}}
  Credit: {{printf "%.2f" .Record.Breakdown.Credit}}

Expected cash: {{printf "%.2f" .Record.ExpectedCash}}
Counted cash:  {{printf "%.2f" .Record.ActualCash}}
Variance:      {{printf "%.2f" .Record.Variance}} ({{.VariancePercent}})
{{- if .Record.Notes}}

Notes: {{.Record.Notes}}
{{- end}}
`
