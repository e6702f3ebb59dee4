package service

import (
	"github.com/sangkips/fiscal-pos/internal/domain/entity"
	"github.com/sangkips/fiscal-pos/internal/domain/enum"
	"github.com/sangkips/fiscal-pos/pkg/money"
	"github.com/shopspring/decimal"
)

// DiscountPolicy holds the configurable rates used by ComputeDiscount
type DiscountPolicy struct {
	VATRate  decimal.Decimal
	OtherCap decimal.Decimal
}

// DefaultDiscountPolicy returns the statutory defaults
func DefaultDiscountPolicy() DiscountPolicy {
	return DiscountPolicy{
		VATRate:  money.DefaultVATRate,
		OtherCap: money.DefaultOtherDiscountCap,
	}
}

// Computation is the full discount and VAT breakdown of an order. Figures
// are unrounded; call Settle before persisting or displaying them.
type Computation struct {
	Total           decimal.Decimal `json:"total"`
	DiscountAmount  decimal.Decimal `json:"discount_amount"`
	SeniorAmount    decimal.Decimal `json:"senior_amount"`
	PWDAmount       decimal.Decimal `json:"pwd_amount"`
	CouponAmount    decimal.Decimal `json:"coupon_amount"`
	VATExemptSales  decimal.Decimal `json:"vat_exempt_sales"`
	VATableSales    decimal.Decimal `json:"vatable_sales"`
	VATAmount       decimal.Decimal `json:"vat_amount"`
	ZeroRatedSales  decimal.Decimal `json:"zero_rated_sales"`
	AmountDue       decimal.Decimal `json:"amount_due"`
	FullyDiscounted bool            `json:"fully_discounted"`
}

// taxBuckets is gross sales split by tax treatment
type taxBuckets struct {
	vatable   decimal.Decimal
	exempt    decimal.Decimal
	zeroRated decimal.Decimal
}

func (b *taxBuckets) add(taxType enum.TaxType, amount decimal.Decimal) {
	switch taxType {
	case enum.TaxTypeExempt:
		b.exempt = b.exempt.Add(amount)
	case enum.TaxTypeZeroRated:
		b.zeroRated = b.zeroRated.Add(amount)
	default:
		b.vatable = b.vatable.Add(amount)
	}
}

// ComputeDiscount applies class to order. It is a pure function of its
// inputs; callers re-run it whenever the order or the class changes.
func ComputeDiscount(order *entity.Order, class entity.DiscountClass, policy DiscountPolicy) Computation {
	total := order.GrossTotal()
	c := Computation{
		Total:        total,
		CouponAmount: couponValue(order),
	}

	switch d := entity.DiscountOrNone(class).(type) {
	case entity.Promo:
		discount := d.Amount
		if d.IsPercent() {
			discount = money.Percent(total, d.Percent)
		}
		if discount.GreaterThanOrEqual(total) {
			discount = money.NonNegative(total)
			c.FullyDiscounted = true
		}
		c.DiscountAmount = discount
		if c.FullyDiscounted {
			break
		}
		c.apportion(bucketsOf(order, nil), discount, policy.VATRate)

	case entity.SeniorOrPWD:
		discounted := func(e *entity.OrderEntry, it entity.EntryItem) bool {
			return (e.IsSenior || e.IsPWD) && it.Kind != enum.ItemKindAddOn
		}
		for i := range order.Entries {
			e := &order.Entries[i]
			if !e.IsSenior && !e.IsPWD {
				continue
			}
			portion := e.SubtotalOf(func(it entity.EntryItem) bool { return it.Kind != enum.ItemKindAddOn })
			if e.IsPWD {
				c.PWDAmount = c.PWDAmount.Add(portion)
			} else {
				c.SeniorAmount = c.SeniorAmount.Add(portion)
			}
		}
		c.DiscountAmount = money.Min(c.SeniorAmount.Add(c.PWDAmount), money.NonNegative(total))
		rest := bucketsOf(order, discounted)
		c.apportion(rest, decimal.Zero, policy.VATRate)
		c.VATExemptSales = c.VATExemptSales.Add(c.DiscountAmount)

	case entity.Other:
		base := decimal.Zero
		flagged := false
		for i := range order.Entries {
			if order.Entries[i].IsDiscountPercent {
				flagged = true
				base = base.Add(order.Entries[i].Subtotal())
			}
		}
		if !flagged && !d.EntryScoped {
			base = total
		}
		base = money.Min(money.NonNegative(base), policy.OtherCap)
		c.DiscountAmount = money.Min(money.Round(money.Percent(base, d.Percent)), money.NonNegative(total))
		c.apportion(bucketsOf(order, nil), c.DiscountAmount, policy.VATRate)

	default:
		// None and Coupon: coupon value already sits inside the total as
		// negative placeholder lines.
		c.apportion(bucketsOf(order, nil), decimal.Zero, policy.VATRate)
	}

	c.AmountDue = money.NonNegative(total.Sub(c.DiscountAmount))
	return c
}

// apportion takes discount off the VATable bucket first, then exempt, then
// zero-rated, and splits VAT out of what remains VATable
func (c *Computation) apportion(b taxBuckets, discount, rate decimal.Decimal) {
	remaining := discount
	take := func(bucket decimal.Decimal) decimal.Decimal {
		bucket = money.NonNegative(bucket)
		cut := money.Min(bucket, remaining)
		remaining = remaining.Sub(cut)
		return bucket.Sub(cut)
	}
	vatable := take(b.vatable)
	c.VATExemptSales = take(b.exempt)
	c.ZeroRatedSales = take(b.zeroRated)
	c.VATableSales, c.VATAmount = money.SplitVAT(vatable, rate)
}

// bucketsOf sums gross per tax treatment, skipping items matched by exclude
func bucketsOf(order *entity.Order, exclude func(*entity.OrderEntry, entity.EntryItem) bool) taxBuckets {
	var b taxBuckets
	for i := range order.Entries {
		e := &order.Entries[i]
		qty := decimal.NewFromInt(int64(e.Quantity))
		for _, it := range e.Items {
			if it.IsPlaceholder() && e.CouponCode == "" {
				continue
			}
			if exclude != nil && exclude(e, it) {
				continue
			}
			b.add(it.TaxType, it.UnitPrice.Mul(qty))
		}
	}
	return b
}

// couponValue is the absolute value of coupon placeholder lines
func couponValue(order *entity.Order) decimal.Decimal {
	total := decimal.Zero
	for i := range order.Entries {
		e := &order.Entries[i]
		if e.CouponCode == "" {
			continue
		}
		total = total.Add(e.SubtotalOf(func(it entity.EntryItem) bool { return it.IsPlaceholder() }))
	}
	return total.Abs()
}

// Settle rounds every figure to cents. AmountDue stays exactly
// Total − DiscountAmount and VATableSales + VATAmount stays equal to the
// rounded VATable gross.
func (c Computation) Settle() Computation {
	out := c
	out.Total = money.Round(c.Total)
	out.DiscountAmount = money.Round(c.DiscountAmount)
	out.SeniorAmount = money.Round(c.SeniorAmount)
	out.PWDAmount = money.Round(c.PWDAmount)
	out.CouponAmount = money.Round(c.CouponAmount)
	out.VATExemptSales = money.Round(c.VATExemptSales)
	out.ZeroRatedSales = money.Round(c.ZeroRatedSales)
	gross := money.Round(c.VATableSales.Add(c.VATAmount))
	out.VATableSales = money.Round(c.VATableSales)
	out.VATAmount = gross.Sub(out.VATableSales)
	out.AmountDue = money.NonNegative(out.Total.Sub(out.DiscountAmount))
	return out
}

// ApplyTo copies the settled figures onto the order snapshot
func (c Computation) ApplyTo(o *entity.Order) {
	s := c.Settle()
	o.Total = s.Total
	o.DiscountAmount = s.DiscountAmount
	o.SeniorDiscount = s.SeniorAmount
	o.PWDDiscount = s.PWDAmount
	o.CouponAmount = s.CouponAmount
	o.VATExemptSales = s.VATExemptSales
	o.VATableSales = s.VATableSales
	o.VATAmount = s.VATAmount
	o.ZeroRatedSales = s.ZeroRatedSales
	o.AmountDue = s.AmountDue
}
