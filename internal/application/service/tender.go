package service

import (
	"strings"

	"github.com/sangkips/fiscal-pos/internal/domain/entity"
	"github.com/sangkips/fiscal-pos/internal/domain/enum"
	"github.com/sangkips/fiscal-pos/pkg/apperror"
	"github.com/sangkips/fiscal-pos/pkg/money"
	"github.com/shopspring/decimal"
)

// AlternativePayment is a non-cash tender line such as a card or e-wallet
type AlternativePayment struct {
	PaymentType string          `json:"payment_type"`
	Amount      decimal.Decimal `json:"amount"`
	ReferenceNo string          `json:"reference_no,omitempty"`
}

// Tender is the cash line plus zero or more alternative payments
type Tender struct {
	Cash         decimal.Decimal      `json:"cash"`
	Alternatives []AlternativePayment `json:"alternatives"`
}

// TenderSummary is what the cashier sees at the tender screen
type TenderSummary struct {
	AmountDue  decimal.Decimal `json:"amount_due"`
	Tendered   decimal.Decimal `json:"tendered"`
	Change     decimal.Decimal `json:"change"`
	Balance    decimal.Decimal `json:"balance"`
	Sufficient bool            `json:"sufficient"`
}

// SetCash replaces the cash line
func (t *Tender) SetCash(amount decimal.Decimal) error {
	if amount.IsNegative() {
		return apperror.NewFieldError("cash", "cash amount cannot be negative")
	}
	t.Cash = money.Round(amount)
	return nil
}

// AddAlternative appends a non-cash line. When amountDue is positive the
// alternatives together may not exceed it; change is only given from cash.
func (t *Tender) AddAlternative(p AlternativePayment, amountDue decimal.Decimal) error {
	p.PaymentType = strings.TrimSpace(p.PaymentType)
	if p.PaymentType == "" {
		return apperror.NewFieldError("payment_type", "payment type is required")
	}
	if strings.EqualFold(p.PaymentType, entity.CashPaymentType) {
		return apperror.NewFieldError("payment_type", "use the cash line for cash payments")
	}
	if !p.Amount.IsPositive() {
		return apperror.NewFieldError("amount", "amount must be greater than zero")
	}
	p.Amount = money.Round(p.Amount)
	if amountDue.IsPositive() && t.alternativeTotal().Add(p.Amount).GreaterThan(money.Round(amountDue)) {
		return apperror.NewFieldError("amount", "alternative payments cannot exceed the amount due")
	}
	t.Alternatives = append(t.Alternatives, p)
	return nil
}

// CheckAlternatives rejects alternatives that exceed a positive amount due
func (t *Tender) CheckAlternatives(amountDue decimal.Decimal) error {
	if amountDue.IsPositive() && t.alternativeTotal().GreaterThan(money.Round(amountDue)) {
		return apperror.NewFieldError("alternatives", "alternative payments cannot exceed the amount due")
	}
	return nil
}

// Clear removes every tender line
func (t *Tender) Clear() {
	t.Cash = decimal.Zero
	t.Alternatives = nil
}

// ApplyExactAmount sets cash to the amount due and drops alternatives
func (t *Tender) ApplyExactAmount(amountDue decimal.Decimal) {
	t.Cash = money.Round(money.NonNegative(amountDue))
	t.Alternatives = nil
}

// IsEmpty reports whether no tender has been entered
func (t *Tender) IsEmpty() bool {
	return t.Cash.IsZero() && len(t.Alternatives) == 0
}

// Total is cash plus all alternatives
func (t *Tender) Total() decimal.Decimal {
	return t.Cash.Add(t.alternativeTotal())
}

func (t *Tender) alternativeTotal() decimal.Decimal {
	total := decimal.Zero
	for _, p := range t.Alternatives {
		total = total.Add(p.Amount)
	}
	return total
}

// Clone returns a copy that shares no slices with t
func (t *Tender) Clone() Tender {
	return Tender{Cash: t.Cash, Alternatives: append([]AlternativePayment(nil), t.Alternatives...)}
}

// Reconcile derives amount due and change from a computation
func (t *Tender) Reconcile(c Computation) TenderSummary {
	settled := c.Settle()
	s := TenderSummary{
		AmountDue: settled.AmountDue,
		Tendered:  money.Round(t.Total()),
	}
	s.Sufficient = s.Tendered.GreaterThanOrEqual(s.AmountDue)
	s.Balance = money.NonNegative(s.AmountDue.Sub(s.Tendered))
	if !settled.FullyDiscounted {
		s.Change = money.NonNegative(s.Tendered.Sub(s.AmountDue))
	}
	return s
}

// Lines converts the tender into order tender lines, cash first
func (t *Tender) Lines() []entity.TenderLine {
	lines := make([]entity.TenderLine, 0, len(t.Alternatives)+1)
	if t.Cash.IsPositive() {
		lines = append(lines, entity.TenderLine{
			LineNo:      1,
			Kind:        enum.TenderKindCash,
			PaymentType: entity.CashPaymentType,
			Amount:      t.Cash,
		})
	}
	for _, p := range t.Alternatives {
		lines = append(lines, entity.TenderLine{
			LineNo:      len(lines) + 1,
			Kind:        enum.TenderKindAlternative,
			PaymentType: strings.ToUpper(p.PaymentType),
			Amount:      p.Amount,
			ReferenceNo: p.ReferenceNo,
		})
	}
	return lines
}
