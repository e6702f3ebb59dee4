package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/fiscal-pos/internal/domain/enum"
	"github.com/shopspring/decimal"
)

// ReadingType distinguishes shift (X) from end-of-day (Z) readings
type ReadingType string

const (
	ReadingX ReadingType = "X"
	ReadingZ ReadingType = "Z"
)

// DiscountLine is one row of the discount summary
type DiscountLine struct {
	Count  int64           `json:"count"`
	Amount decimal.Decimal `json:"amount"`
}

// DiscountSummary groups discount totals by type
type DiscountSummary struct {
	Senior DiscountLine `json:"senior"`
	PWD    DiscountLine `json:"pwd"`
	Promo  DiscountLine `json:"promo"`
	Coupon DiscountLine `json:"coupon"`
	Other  DiscountLine `json:"other"`
	Total  DecimalTotal `json:"total"`
}

// DecimalTotal wraps a single amount so the summary serializes uniformly
type DecimalTotal struct {
	Amount decimal.Decimal `json:"amount"`
}

// PaymentLine is one row of the payment breakdown
type PaymentLine struct {
	Type   string          `json:"type"`
	Amount decimal.Decimal `json:"amount"`
}

// FiscalReading is the structured X or Z reading document. Formatting to
// text or paper is done elsewhere.
type FiscalReading struct {
	Type        ReadingType    `json:"type"`
	Mode        enum.Mode      `json:"mode"`
	Header      BusinessHeader `json:"header"`
	GeneratedAt time.Time      `json:"generated_at"`
	PeriodStart time.Time      `json:"period_start"`
	PeriodEnd   time.Time      `json:"period_end"`

	BusinessDate string     `json:"business_date,omitempty"`
	SessionID    *uuid.UUID `json:"session_id,omitempty"`
	CashierName  string     `json:"cashier_name,omitempty"`

	ResetCounter     int64 `json:"reset_counter"`
	ZCounter         int64 `json:"z_counter"`
	BeginInvoiceNo   int64 `json:"begin_invoice_no"`
	EndInvoiceNo     int64 `json:"end_invoice_no"`
	TransactionCount int64 `json:"transaction_count"`

	GrossSales     decimal.Decimal `json:"gross_sales"`
	Discounts      DiscountSummary `json:"discounts"`
	VoidCount      int64           `json:"void_count"`
	VoidAmount     decimal.Decimal `json:"void_amount"`
	RefundCount    int64           `json:"refund_count"`
	RefundAmount   decimal.Decimal `json:"refund_amount"`
	NetSales       decimal.Decimal `json:"net_sales"`
	VATableSales   decimal.Decimal `json:"vatable_sales"`
	VATAmount      decimal.Decimal `json:"vat_amount"`
	VATExemptSales decimal.Decimal `json:"vat_exempt_sales"`
	ZeroRatedSales decimal.Decimal `json:"zero_rated_sales"`

	Payments         []PaymentLine   `json:"payments"`
	WithdrawalCount  int64           `json:"withdrawal_count"`
	WithdrawalAmount decimal.Decimal `json:"withdrawal_amount"`
	OpeningFund      decimal.Decimal `json:"opening_fund"`
	ExpectedCash     decimal.Decimal `json:"expected_cash"`
	DeclaredCash     *decimal.Decimal `json:"declared_cash,omitempty"`
	ShortOver        *decimal.Decimal `json:"short_over,omitempty"`

	AccumulatedBefore decimal.Decimal `json:"accumulated_before"`
	AccumulatedAfter  decimal.Decimal `json:"accumulated_after"`
}

// Clone returns a copy that shares no slices or pointers with r
func (r *FiscalReading) Clone() *FiscalReading {
	if r == nil {
		return nil
	}
	c := *r
	c.Payments = append([]PaymentLine(nil), r.Payments...)
	if r.SessionID != nil {
		id := *r.SessionID
		c.SessionID = &id
	}
	if r.DeclaredCash != nil {
		v := *r.DeclaredCash
		c.DeclaredCash = &v
	}
	if r.ShortOver != nil {
		v := *r.ShortOver
		c.ShortOver = &v
	}
	return &c
}
