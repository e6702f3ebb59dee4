package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/fiscal-pos/internal/domain/enum"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Account codes written on ledger rows
const (
	AccountSales           = "4000-SALES"
	AccountCash            = "1000-CASH"
	AccountOtherPayments   = "1100-OTHER-PAYMENTS"
	AccountDiscounts       = "4100-DISCOUNTS"
	AccountSeniorPWD       = "4110-SENIOR-PWD"
	AccountSalesReturns    = "4200-RETURNS"
	AccountVoidedSales     = "4300-VOIDS"
	AccountSeniorPWDUnpost = "4111-SENIOR-PWD-UNPOST"
)

// LedgerEntry is an append-only journal row. Rows are never updated or deleted;
// corrections are posted as reversal rows referencing the original.
type LedgerEntry struct {
	ID              uuid.UUID            `gorm:"type:uuid;primary_key" json:"id"`
	EntryType       enum.LedgerEntryType `gorm:"size:16;not null;index" json:"entry_type"`
	OrderID         uuid.UUID            `gorm:"type:uuid;not null;index" json:"order_id"`
	Mode            enum.Mode            `gorm:"size:16;not null;index" json:"mode"`
	InvoiceNo       int64                `gorm:"not null;index" json:"invoice_no"`
	LineNo          int                  `gorm:"not null" json:"line_no"`
	AccountCode     string               `gorm:"size:32;not null" json:"account_code"`
	ItemRefID       *uuid.UUID           `gorm:"type:uuid" json:"item_ref_id,omitempty"`
	Description     string               `gorm:"size:255;not null" json:"description"`
	Quantity        decimal.Decimal      `gorm:"type:decimal(14,2);not null;default:0" json:"quantity"`
	UnitPrice       decimal.Decimal      `gorm:"type:decimal(14,2);not null;default:0" json:"unit_price"`
	Debit           decimal.Decimal      `gorm:"type:decimal(14,2);not null;default:0" json:"debit"`
	Credit          decimal.Decimal      `gorm:"type:decimal(14,2);not null;default:0" json:"credit"`
	VATableSales    decimal.Decimal      `gorm:"type:decimal(14,2);not null;default:0" json:"vatable_sales"`
	VATAmount       decimal.Decimal      `gorm:"type:decimal(14,2);not null;default:0" json:"vat_amount"`
	VATExemptSales  decimal.Decimal      `gorm:"type:decimal(14,2);not null;default:0" json:"vat_exempt_sales"`
	DiscountAmount  decimal.Decimal      `gorm:"type:decimal(14,2);not null;default:0" json:"discount_amount"`
	PaymentType     string               `gorm:"size:64" json:"payment_type,omitempty"`
	ReferenceNo     string               `gorm:"size:128" json:"reference_no,omitempty"`
	BeneficiaryName string               `gorm:"size:255" json:"beneficiary_name,omitempty"`
	BeneficiaryIDNo string               `gorm:"size:64" json:"beneficiary_id_no,omitempty"`
	ReversesID      *uuid.UUID           `gorm:"type:uuid;uniqueIndex" json:"reverses_id,omitempty"`
	Reason          string               `gorm:"size:255" json:"reason,omitempty"`
	CashierID       uuid.UUID            `gorm:"type:uuid;not null" json:"cashier_id"`
	PostedBy        uuid.UUID            `gorm:"type:uuid;not null" json:"posted_by"`
	PostedAt        time.Time            `gorm:"not null;index" json:"posted_at"`
}

// BeforeCreate generates a UUID before creating a new ledger row
func (l *LedgerEntry) BeforeCreate(tx *gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the LedgerEntry model
func (LedgerEntry) TableName() string {
	return "ledger_entries"
}

// IsReversal reports whether the row compensates an earlier row
func (l *LedgerEntry) IsReversal() bool {
	return l.ReversesID != nil
}

// Reverse builds the compensating row for l. Amounts are negated and the
// original is referenced; the original row is left untouched. An empty
// account keeps the original account code.
func (l *LedgerEntry) Reverse(postedBy uuid.UUID, reason, account string, at time.Time) LedgerEntry {
	id := l.ID
	r := *l
	r.ID = uuid.New()
	r.EntryType = enum.LedgerEntryReversal
	if account != "" {
		r.AccountCode = account
	}
	r.Quantity = l.Quantity.Neg()
	r.Debit = l.Debit.Neg()
	r.Credit = l.Credit.Neg()
	r.VATableSales = l.VATableSales.Neg()
	r.VATAmount = l.VATAmount.Neg()
	r.VATExemptSales = l.VATExemptSales.Neg()
	r.DiscountAmount = l.DiscountAmount.Neg()
	r.ReversesID = &id
	r.Reason = reason
	r.PostedBy = postedBy
	r.PostedAt = at
	return r
}
