package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/fiscal-pos/internal/domain/enum"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// CashPaymentType is the payment-breakdown key for the cash line
const CashPaymentType = "CASH"

// InvoiceCounter holds the last issued invoice number for one mode
type InvoiceCounter struct {
	Mode          enum.Mode `gorm:"size:16;primaryKey" json:"mode"`
	LastInvoiceNo int64     `gorm:"not null;default:0" json:"last_invoice_no"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// TableName returns the table name for the InvoiceCounter model
func (InvoiceCounter) TableName() string {
	return "invoice_counters"
}

// PaymentBreakdown maps payment type to the amount applied to sales
type PaymentBreakdown map[string]decimal.Decimal

// Add accumulates amount under paymentType
func (p PaymentBreakdown) Add(paymentType string, amount decimal.Decimal) {
	p[paymentType] = p[paymentType].Add(amount)
}

// FiscalTotals are running totals for a fiscal period (business day or shift)
type FiscalTotals struct {
	BeginInvoiceNo   int64            `gorm:"default:0" json:"begin_invoice_no"`
	EndInvoiceNo     int64            `gorm:"default:0" json:"end_invoice_no"`
	TransactionCount int64            `gorm:"default:0" json:"transaction_count"`
	GrossSales       decimal.Decimal  `gorm:"type:decimal(16,2);default:0" json:"gross_sales"`
	DiscountTotal    decimal.Decimal  `gorm:"type:decimal(16,2);default:0" json:"discount_total"`
	VATableSales     decimal.Decimal  `gorm:"type:decimal(16,2);default:0" json:"vatable_sales"`
	VATAmount        decimal.Decimal  `gorm:"type:decimal(16,2);default:0" json:"vat_amount"`
	VATExemptSales   decimal.Decimal  `gorm:"type:decimal(16,2);default:0" json:"vat_exempt_sales"`
	ZeroRatedSales   decimal.Decimal  `gorm:"type:decimal(16,2);default:0" json:"zero_rated_sales"`
	SeniorDiscount   decimal.Decimal  `gorm:"type:decimal(16,2);default:0" json:"senior_discount"`
	SeniorCount      int64            `gorm:"default:0" json:"senior_count"`
	PWDDiscount      decimal.Decimal  `gorm:"type:decimal(16,2);default:0" json:"pwd_discount"`
	PWDCount         int64            `gorm:"default:0" json:"pwd_count"`
	PromoDiscount    decimal.Decimal  `gorm:"type:decimal(16,2);default:0" json:"promo_discount"`
	PromoCount       int64            `gorm:"default:0" json:"promo_count"`
	CouponDiscount   decimal.Decimal  `gorm:"type:decimal(16,2);default:0" json:"coupon_discount"`
	CouponCount      int64            `gorm:"default:0" json:"coupon_count"`
	OtherDiscount    decimal.Decimal  `gorm:"type:decimal(16,2);default:0" json:"other_discount"`
	OtherCount       int64            `gorm:"default:0" json:"other_count"`
	CashSales        decimal.Decimal  `gorm:"type:decimal(16,2);default:0" json:"cash_sales"`
	CashReturned     decimal.Decimal  `gorm:"type:decimal(16,2);default:0" json:"cash_returned"`
	VoidCount        int64            `gorm:"default:0" json:"void_count"`
	VoidAmount       decimal.Decimal  `gorm:"type:decimal(16,2);default:0" json:"void_amount"`
	RefundCount      int64            `gorm:"default:0" json:"refund_count"`
	RefundAmount     decimal.Decimal  `gorm:"type:decimal(16,2);default:0" json:"refund_amount"`
	WithdrawalCount  int64            `gorm:"default:0" json:"withdrawal_count"`
	WithdrawalAmount decimal.Decimal  `gorm:"type:decimal(16,2);default:0" json:"withdrawal_amount"`
	Payments         PaymentBreakdown `gorm:"type:text;serializer:json" json:"payments"`
}

// NetSales is gross sales less discounts, voids and refunds
func (t *FiscalTotals) NetSales() decimal.Decimal {
	return t.GrossSales.Sub(t.DiscountTotal).Sub(t.VoidAmount).Sub(t.RefundAmount)
}

// Apply adds a finalized order to the running totals
func (t *FiscalTotals) Apply(o *Order) {
	if t.BeginInvoiceNo == 0 || o.InvoiceNo < t.BeginInvoiceNo {
		t.BeginInvoiceNo = o.InvoiceNo
	}
	if o.InvoiceNo > t.EndInvoiceNo {
		t.EndInvoiceNo = o.InvoiceNo
	}
	t.TransactionCount++

	// Coupon value is realized as negative placeholder lines inside Total,
	// so gross adds it back and reports it as a discount.
	t.GrossSales = t.GrossSales.Add(o.Total).Add(o.CouponAmount)
	t.DiscountTotal = t.DiscountTotal.Add(o.DiscountAmount).Add(o.CouponAmount)
	t.VATableSales = t.VATableSales.Add(o.VATableSales)
	t.VATAmount = t.VATAmount.Add(o.VATAmount)
	t.VATExemptSales = t.VATExemptSales.Add(o.VATExemptSales)
	t.ZeroRatedSales = t.ZeroRatedSales.Add(o.ZeroRatedSales)

	switch o.DiscountKind {
	case enum.DiscountKindSeniorPWD:
		t.SeniorDiscount = t.SeniorDiscount.Add(o.SeniorDiscount)
		t.PWDDiscount = t.PWDDiscount.Add(o.PWDDiscount)
		for _, b := range o.Beneficiaries {
			if b.Type == enum.BeneficiaryPWD {
				t.PWDCount++
			} else {
				t.SeniorCount++
			}
		}
	case enum.DiscountKindPromo:
		t.PromoDiscount = t.PromoDiscount.Add(o.DiscountAmount)
		t.PromoCount++
	case enum.DiscountKindOther:
		t.OtherDiscount = t.OtherDiscount.Add(o.DiscountAmount)
		t.OtherCount++
	}
	if o.CouponAmount.IsPositive() {
		t.CouponCount++
	}
	t.CouponDiscount = t.CouponDiscount.Add(o.CouponAmount)

	if t.Payments == nil {
		t.Payments = PaymentBreakdown{}
	}
	for _, line := range AppliedTenders(o) {
		t.Payments.Add(line.PaymentType, line.Amount)
		if line.Kind == enum.TenderKindCash {
			t.CashSales = t.CashSales.Add(line.Amount)
		}
	}
}

// ApplyVoid records a post-hoc void of a finalized order
func (t *FiscalTotals) ApplyVoid(o *Order) {
	t.VoidCount++
	t.VoidAmount = t.VoidAmount.Add(o.AmountDue)
	t.CashReturned = t.CashReturned.Add(appliedCash(o))
}

// ApplyRefund records a post-hoc refund of a finalized order
func (t *FiscalTotals) ApplyRefund(o *Order) {
	t.RefundCount++
	t.RefundAmount = t.RefundAmount.Add(o.AmountDue)
	t.CashReturned = t.CashReturned.Add(appliedCash(o))
}

// ApplyWithdrawal records a cash pull-out
func (t *FiscalTotals) ApplyWithdrawal(w *CashWithdrawal) {
	t.WithdrawalCount++
	t.WithdrawalAmount = t.WithdrawalAmount.Add(w.Amount)
}

// ExpectedCash is the cash that should be in the drawer given an opening fund
func (t *FiscalTotals) ExpectedCash(openingFund decimal.Decimal) decimal.Decimal {
	return openingFund.Add(t.CashSales).Sub(t.CashReturned).Sub(t.WithdrawalAmount)
}

// AppliedTenders returns the tender lines reduced to the amounts that settle
// the sale. Any excess over AmountDue (change, or cash kept on a fully
// discounted order) comes off the cash line first.
func AppliedTenders(o *Order) []TenderLine {
	tendered := decimal.Zero
	for _, line := range o.Tenders {
		tendered = tendered.Add(line.Amount)
	}
	excess := tendered.Sub(o.AmountDue)

	lines := append([]TenderLine(nil), o.Tenders...)
	for _, cashFirst := range []bool{true, false} {
		for i := len(lines) - 1; i >= 0 && excess.IsPositive(); i-- {
			if (lines[i].Kind == enum.TenderKindCash) != cashFirst {
				continue
			}
			cut := decimal.Min(excess, lines[i].Amount)
			lines[i].Amount = lines[i].Amount.Sub(cut)
			excess = excess.Sub(cut)
		}
	}

	applied := lines[:0]
	for _, line := range lines {
		if line.Amount.IsPositive() {
			applied = append(applied, line)
		}
	}
	return applied
}

func appliedCash(o *Order) decimal.Decimal {
	total := decimal.Zero
	for _, line := range AppliedTenders(o) {
		if line.Kind == enum.TenderKindCash {
			total = total.Add(line.Amount)
		}
	}
	return total
}

// FiscalState holds the persistent fiscal counters of one mode plus the
// running totals of the open business day
type FiscalState struct {
	Mode             enum.Mode       `gorm:"size:16;primaryKey" json:"mode"`
	ResetCounter     int64           `gorm:"not null;default:0" json:"reset_counter"`
	ZCounter         int64           `gorm:"not null;default:0" json:"z_counter"`
	AccumulatedSales decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0" json:"accumulated_sales"`
	LastZDate        string          `gorm:"size:10" json:"last_z_date,omitempty"`
	LastZAt          *time.Time      `json:"last_z_at,omitempty"`
	DayOpenedAt      time.Time       `json:"day_opened_at"`
	FiscalTotals     `gorm:"embedded"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// TableName returns the table name for the FiscalState model
func (FiscalState) TableName() string {
	return "fiscal_states"
}

// Clone returns a copy that shares nothing with s
func (s *FiscalState) Clone() *FiscalState {
	c := *s
	c.Payments = PaymentBreakdown{}
	for k, v := range s.Payments {
		c.Payments[k] = v
	}
	if s.LastZAt != nil {
		t := *s.LastZAt
		c.LastZAt = &t
	}
	return &c
}

// CashWithdrawal is cash pulled out of the drawer during a shift
type CashWithdrawal struct {
	ID         uuid.UUID       `gorm:"type:uuid;primary_key" json:"id"`
	Mode       enum.Mode       `gorm:"size:16;not null;index" json:"mode"`
	SessionID  *uuid.UUID      `gorm:"type:uuid;index" json:"session_id,omitempty"`
	Amount     decimal.Decimal `gorm:"type:decimal(14,2);not null" json:"amount"`
	Reason     string          `gorm:"size:255;not null" json:"reason"`
	CashierID  uuid.UUID       `gorm:"type:uuid;not null" json:"cashier_id"`
	ApprovedBy uuid.UUID       `gorm:"type:uuid;not null" json:"approved_by"`
	CreatedAt  time.Time       `gorm:"index" json:"created_at"`
}

// BeforeCreate generates a UUID before creating a new withdrawal
func (w *CashWithdrawal) BeforeCreate(tx *gorm.DB) error {
	if w.ID == uuid.Nil {
		w.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the CashWithdrawal model
func (CashWithdrawal) TableName() string {
	return "cash_withdrawals"
}

// ZReading is a persisted end-of-day closing
type ZReading struct {
	ID           uuid.UUID      `gorm:"type:uuid;primary_key" json:"id"`
	Mode         enum.Mode      `gorm:"size:16;not null;uniqueIndex:idx_z_mode_counter,priority:1;uniqueIndex:idx_z_mode_date,priority:1" json:"mode"`
	ZCounter     int64          `gorm:"not null;uniqueIndex:idx_z_mode_counter,priority:2" json:"z_counter"`
	BusinessDate string         `gorm:"size:10;not null;uniqueIndex:idx_z_mode_date,priority:2" json:"business_date"`
	Document     *FiscalReading `gorm:"type:text;serializer:json" json:"document"`
	GeneratedBy  uuid.UUID      `gorm:"type:uuid;not null" json:"generated_by"`
	CreatedAt    time.Time      `json:"created_at"`
}

// BeforeCreate generates a UUID before creating a new Z reading
func (z *ZReading) BeforeCreate(tx *gorm.DB) error {
	if z.ID == uuid.Nil {
		z.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the ZReading model
func (ZReading) TableName() string {
	return "z_readings"
}

// BuildTotals recomputes running totals from finalized orders and
// withdrawals; used for shift-scoped X readings
func BuildTotals(orders []Order, withdrawals []CashWithdrawal) FiscalTotals {
	t := FiscalTotals{Payments: PaymentBreakdown{}}
	for i := range orders {
		o := &orders[i]
		t.Apply(o)
		switch o.Status {
		case enum.OrderStatusCancelled:
			t.ApplyVoid(o)
		case enum.OrderStatusReturned:
			t.ApplyRefund(o)
		}
	}
	for i := range withdrawals {
		t.ApplyWithdrawal(&withdrawals[i])
	}
	return t
}
