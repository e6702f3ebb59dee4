package entity

import (
	"github.com/sangkips/fiscal-pos/internal/domain/enum"
	"github.com/shopspring/decimal"
)

// DiscountClass is the single discount active on an order. The set of
// implementations is closed; see NoDiscount, SeniorOrPWD, Promo, Coupon and Other.
type DiscountClass interface {
	Kind() enum.DiscountKind
	isDiscountClass()
}

// NoDiscount is the default class
type NoDiscount struct{}

// SeniorOrPWD applies the statutory senior citizen / PWD discount to flagged entries
type SeniorOrPWD struct {
	Beneficiaries []DiscountBeneficiary
}

// Promo is a promo code worth a flat Amount, or Percent of the total when Percent is set
type Promo struct {
	Code    string
	Amount  decimal.Decimal
	Percent decimal.Decimal
}

// Coupon covers ItemQuantity base-item units through placeholder lines
type Coupon struct {
	Code         string
	ItemQuantity int
}

// Other is a manual percent discount on flagged entries, or on the whole
// order when it was applied without entries. An entry-scoped discount never
// widens to the whole order.
type Other struct {
	Percent     decimal.Decimal
	EntryScoped bool
}

func (NoDiscount) Kind() enum.DiscountKind  { return enum.DiscountKindNone }
func (SeniorOrPWD) Kind() enum.DiscountKind { return enum.DiscountKindSeniorPWD }
func (Promo) Kind() enum.DiscountKind       { return enum.DiscountKindPromo }
func (Coupon) Kind() enum.DiscountKind      { return enum.DiscountKindCoupon }
func (Other) Kind() enum.DiscountKind       { return enum.DiscountKindOther }

func (NoDiscount) isDiscountClass()  {}
func (SeniorOrPWD) isDiscountClass() {}
func (Promo) isDiscountClass()       {}
func (Coupon) isDiscountClass()      {}
func (Other) isDiscountClass()       {}

// IsPercent reports whether the promo is percent based
func (p Promo) IsPercent() bool {
	return p.Percent.IsPositive()
}

// Count returns the number of beneficiaries of each type
func (s SeniorOrPWD) Count() (seniors, pwds int) {
	for _, b := range s.Beneficiaries {
		if b.Type == enum.BeneficiaryPWD {
			pwds++
		} else {
			seniors++
		}
	}
	return seniors, pwds
}

// DiscountOrNone returns d, or NoDiscount when d is nil
func DiscountOrNone(d DiscountClass) DiscountClass {
	if d == nil {
		return NoDiscount{}
	}
	return d
}
