package email

import (
	"bytes"
	"fmt"
	"html/template"
	"net/smtp"
	"strings"

	"github.com/sangkips/fiscal-pos/internal/domain/entity"
	"github.com/sangkips/fiscal-pos/internal/domain/enum"
	"github.com/shopspring/decimal"
)

// EmailConfig holds SMTP configuration
type EmailConfig struct {
	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	FromName     string
	FromEmail    string
	ZReportTo    []string
}

// EmailService handles email sending
type EmailService struct {
	config EmailConfig
	send   func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

// NewEmailService creates a new email service
func NewEmailService(config EmailConfig) *EmailService {
	return &EmailService{config: config, send: smtp.SendMail}
}

// SendZReport mails the Z reading summary to the configured recipients
func (s *EmailService) SendZReport(reading *entity.FiscalReading) error {
	if len(s.config.ZReportTo) == 0 {
		return nil
	}

	htmlContent, err := renderZReport(reading)
	if err != nil {
		return fmt.Errorf("failed to render email template: %w", err)
	}

	subject := fmt.Sprintf("Z Reading #%d - %s - %s", reading.ZCounter, reading.BusinessDate, reading.Header.Name)
	if reading.Mode == enum.ModeTraining {
		subject = "[TRAINING] " + subject
	}
	message := s.buildHTMLEmail(s.config.ZReportTo, subject, htmlContent)

	return s.sendEmail(s.config.ZReportTo, message)
}

// sendEmail sends an email using SMTP
func (s *EmailService) sendEmail(to []string, message []byte) error {
	addr := fmt.Sprintf("%s:%d", s.config.SMTPHost, s.config.SMTPPort)

	var auth smtp.Auth
	if s.config.SMTPUsername != "" {
		auth = smtp.PlainAuth("", s.config.SMTPUsername, s.config.SMTPPassword, s.config.SMTPHost)
	}

	if err := s.send(addr, auth, s.config.FromEmail, to, message); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	return nil
}

// buildHTMLEmail builds an HTML email message
func (s *EmailService) buildHTMLEmail(to []string, subject, htmlBody string) []byte {
	headers := fmt.Sprintf(
		"From: %s <%s>\r\n"+
			"To: %s\r\n"+
			"Subject: %s\r\n"+
			"MIME-Version: 1.0\r\n"+
			"Content-Type: text/html; charset=\"UTF-8\"\r\n"+
			"\r\n",
		s.config.FromName,
		s.config.FromEmail,
		strings.Join(to, ", "),
		subject,
	)

	return []byte(headers + htmlBody)
}

// renderZReport renders the Z reading summary template
func renderZReport(reading *entity.FiscalReading) (string, error) {
	tmpl, err := template.New("z_report").Funcs(template.FuncMap{
		"amount": func(d decimal.Decimal) string { return d.StringFixed(2) },
	}).Parse(zReportTemplate)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, reading); err != nil {
		return "", err
	}

	return buf.String(), nil
}

// zReportTemplate is the HTML template for Z reading emails
const zReportTemplate = `
<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <title>Z Reading</title>
</head>
<body style="margin: 0; padding: 0; font-family: 'Courier New', monospace; background-color: #f4f7fa;">
    <table role="presentation" style="max-width: 480px; margin: 24px auto; background-color: #ffffff; border-collapse: collapse;">
        <tr>
            <td colspan="2" style="padding: 16px; text-align: center;">
                <strong>{{.Header.Name}}</strong><br>
                {{.Header.Address}}<br>
                TIN {{.Header.TIN}} MIN {{.Header.MIN}}
            </td>
        </tr>
        <tr><td style="padding: 4px 16px;">Business Date</td><td style="padding: 4px 16px; text-align: right;">{{.BusinessDate}}</td></tr>
        <tr><td style="padding: 4px 16px;">Z Counter</td><td style="padding: 4px 16px; text-align: right;">{{.ZCounter}}</td></tr>
        <tr><td style="padding: 4px 16px;">Reset Counter</td><td style="padding: 4px 16px; text-align: right;">{{.ResetCounter}}</td></tr>
        <tr><td style="padding: 4px 16px;">Invoices</td><td style="padding: 4px 16px; text-align: right;">{{.BeginInvoiceNo}} - {{.EndInvoiceNo}}</td></tr>
        <tr><td style="padding: 4px 16px;">Transactions</td><td style="padding: 4px 16px; text-align: right;">{{.TransactionCount}}</td></tr>
        <tr><td style="padding: 4px 16px;">Gross Sales</td><td style="padding: 4px 16px; text-align: right;">{{amount .GrossSales}}</td></tr>
        <tr><td style="padding: 4px 16px;">Discounts</td><td style="padding: 4px 16px; text-align: right;">{{amount .Discounts.Total.Amount}}</td></tr>
        <tr><td style="padding: 4px 16px;">Voids ({{.VoidCount}})</td><td style="padding: 4px 16px; text-align: right;">{{amount .VoidAmount}}</td></tr>
        <tr><td style="padding: 4px 16px;">Refunds ({{.RefundCount}})</td><td style="padding: 4px 16px; text-align: right;">{{amount .RefundAmount}}</td></tr>
        <tr><td style="padding: 4px 16px;"><strong>Net Sales</strong></td><td style="padding: 4px 16px; text-align: right;"><strong>{{amount .NetSales}}</strong></td></tr>
        <tr><td style="padding: 4px 16px;">VATable Sales</td><td style="padding: 4px 16px; text-align: right;">{{amount .VATableSales}}</td></tr>
        <tr><td style="padding: 4px 16px;">VAT Amount</td><td style="padding: 4px 16px; text-align: right;">{{amount .VATAmount}}</td></tr>
        <tr><td style="padding: 4px 16px;">VAT-Exempt Sales</td><td style="padding: 4px 16px; text-align: right;">{{amount .VATExemptSales}}</td></tr>
        <tr><td style="padding: 4px 16px;">Zero-Rated Sales</td><td style="padding: 4px 16px; text-align: right;">{{amount .ZeroRatedSales}}</td></tr>
        {{range .Payments}}
        <tr><td style="padding: 4px 16px;">{{.Type}}</td><td style="padding: 4px 16px; text-align: right;">{{amount .Amount}}</td></tr>
        {{end}}
        <tr><td style="padding: 4px 16px;">Accumulated (before)</td><td style="padding: 4px 16px; text-align: right;">{{amount .AccumulatedBefore}}</td></tr>
        <tr><td style="padding: 4px 16px 16px 16px;">Accumulated (after)</td><td style="padding: 4px 16px 16px 16px; text-align: right;">{{amount .AccumulatedAfter}}</td></tr>
    </table>
</body>
</html>
`
