package email

import (
	"net/smtp"
	"strings"
	"testing"

	"github.com/sangkips/fiscal-pos/internal/domain/entity"
	"github.com/sangkips/fiscal-pos/internal/domain/enum"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSendZReport(t *testing.T) {
	var gotAddr, gotFrom string
	var gotTo []string
	var gotMsg []byte

	svc := NewEmailService(EmailConfig{
		SMTPHost:  "mail.local",
		SMTPPort:  25,
		FromName:  "Fiscal POS",
		FromEmail: "pos@example.com",
		ZReportTo: []string{"owner@example.com", "acct@example.com"},
	})
	svc.send = func(addr string, a smtp.Auth, from string, to []string, msg []byte) error {
		gotAddr, gotFrom, gotTo, gotMsg = addr, from, to, msg
		assert.Nil(t, a)
		return nil
	}

	reading := &entity.FiscalReading{
		Type:         entity.ReadingZ,
		Mode:         enum.ModeTraining,
		Header:       entity.BusinessHeader{Name: "Test Diner"},
		BusinessDate: "2026-03-10",
		ZCounter:     4,
		GrossSales:   decimal.RequireFromString("185"),
		NetSales:     decimal.RequireFromString("185"),
		Payments:     []entity.PaymentLine{{Type: "CASH", Amount: decimal.RequireFromString("185")}},
	}
	require.NoError(t, svc.SendZReport(reading))

	assert.Equal(t, "mail.local:25", gotAddr)
	assert.Equal(t, "pos@example.com", gotFrom)
	assert.Equal(t, []string{"owner@example.com", "acct@example.com"}, gotTo)

	msg := string(gotMsg)
	assert.Contains(t, msg, "Subject: [TRAINING] Z Reading #4 - 2026-03-10 - Test Diner")
	assert.Contains(t, msg, "To: owner@example.com, acct@example.com")
	assert.Contains(t, msg, "185.00")
	assert.True(t, strings.Contains(msg, "CASH"))
}

func TestSendZReport_NoRecipients(t *testing.T) {
	svc := NewEmailService(EmailConfig{SMTPHost: "mail.local"})
	svc.send = func(string, smtp.Auth, string, []string, []byte) error {
		t.Fatal("no mail expected")
		return nil
	}
	assert.NoError(t, svc.SendZReport(&entity.FiscalReading{}))
}
