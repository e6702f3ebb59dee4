package service

import (
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/fiscal-pos/internal/domain/entity"
	"github.com/sangkips/fiscal-pos/pkg/money"
	"github.com/shopspring/decimal"
)

// readingScope is everything a reading needs besides the totals
type readingScope struct {
	Type         entity.ReadingType
	Header       entity.BusinessHeader
	State        *entity.FiscalState
	Totals       *entity.FiscalTotals
	PeriodStart  time.Time
	PeriodEnd    time.Time
	BusinessDate string
	SessionID    *uuid.UUID
	CashierName  string
	OpeningFund  decimal.Decimal
	DeclaredCash *decimal.Decimal
}

// buildReading renders fiscal totals into a reading document. Accumulated
// sales always refer to the whole business day of the mode.
func buildReading(scope readingScope) *entity.FiscalReading {
	t := scope.Totals
	st := scope.State

	r := &entity.FiscalReading{
		Type:         scope.Type,
		Mode:         st.Mode,
		Header:       scope.Header,
		GeneratedAt:  scope.PeriodEnd,
		PeriodStart:  scope.PeriodStart,
		PeriodEnd:    scope.PeriodEnd,
		BusinessDate: scope.BusinessDate,
		SessionID:    scope.SessionID,
		CashierName:  scope.CashierName,

		ResetCounter:     st.ResetCounter,
		ZCounter:         st.ZCounter,
		BeginInvoiceNo:   t.BeginInvoiceNo,
		EndInvoiceNo:     t.EndInvoiceNo,
		TransactionCount: t.TransactionCount,

		GrossSales: money.Round(t.GrossSales),
		Discounts: entity.DiscountSummary{
			Senior: entity.DiscountLine{Count: t.SeniorCount, Amount: money.Round(t.SeniorDiscount)},
			PWD:    entity.DiscountLine{Count: t.PWDCount, Amount: money.Round(t.PWDDiscount)},
			Promo:  entity.DiscountLine{Count: t.PromoCount, Amount: money.Round(t.PromoDiscount)},
			Coupon: entity.DiscountLine{Count: t.CouponCount, Amount: money.Round(t.CouponDiscount)},
			Other:  entity.DiscountLine{Count: t.OtherCount, Amount: money.Round(t.OtherDiscount)},
			Total:  entity.DecimalTotal{Amount: money.Round(t.DiscountTotal)},
		},
		VoidCount:      t.VoidCount,
		VoidAmount:     money.Round(t.VoidAmount),
		RefundCount:    t.RefundCount,
		RefundAmount:   money.Round(t.RefundAmount),
		NetSales:       money.Round(t.NetSales()),
		VATableSales:   money.Round(t.VATableSales),
		VATAmount:      money.Round(t.VATAmount),
		VATExemptSales: money.Round(t.VATExemptSales),
		ZeroRatedSales: money.Round(t.ZeroRatedSales),

		Payments:         paymentLines(t.Payments),
		WithdrawalCount:  t.WithdrawalCount,
		WithdrawalAmount: money.Round(t.WithdrawalAmount),
		OpeningFund:      money.Round(scope.OpeningFund),
		ExpectedCash:     money.Round(t.ExpectedCash(scope.OpeningFund)),

		AccumulatedBefore: money.Round(st.AccumulatedSales),
		AccumulatedAfter:  money.Round(st.AccumulatedSales.Add(st.NetSales())),
	}
	if scope.DeclaredCash != nil {
		declared := money.Round(*scope.DeclaredCash)
		shortOver := declared.Sub(r.ExpectedCash)
		r.DeclaredCash = &declared
		r.ShortOver = &shortOver
	}
	return r
}

// paymentLines lists cash first, then the other payment types alphabetically
func paymentLines(p entity.PaymentBreakdown) []entity.PaymentLine {
	lines := make([]entity.PaymentLine, 0, len(p))
	for k, v := range p {
		lines = append(lines, entity.PaymentLine{Type: k, Amount: money.Round(v)})
	}
	sort.Slice(lines, func(i, j int) bool {
		ci, cj := lines[i].Type == entity.CashPaymentType, lines[j].Type == entity.CashPaymentType
		if ci != cj {
			return ci
		}
		return lines[i].Type < lines[j].Type
	})
	return lines
}
