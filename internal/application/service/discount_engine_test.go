package service

import (
	"testing"

	"github.com/sangkips/fiscal-pos/internal/domain/entity"
	"github.com/sangkips/fiscal-pos/internal/domain/enum"
	"github.com/sangkips/fiscal-pos/pkg/money"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeDiscount_NoneSplitsVAT(t *testing.T) {
	totals := []string{"0.01", "1.00", "99.99", "112.00", "565.00", "1234.56", "10000.03"}
	policy := DefaultDiscountPolicy()

	for _, total := range totals {
		t.Run(total, func(t *testing.T) {
			order := orderOf(entry(1, 1, item(enum.ItemKindMenu, "Meal", total)))
			c := ComputeDiscount(order, entity.NoDiscount{}, policy).Settle()

			assert.Equal(t, total, fixed(c.Total))
			assert.Equal(t, total, fixed(c.VATableSales.Add(c.VATAmount)))
			assert.Equal(t, total, fixed(c.AmountDue))
			assert.True(t, c.DiscountAmount.IsZero())
		})
	}
}

func TestComputeDiscount_Scenario565(t *testing.T) {
	order := orderOf(
		entry(1, 1, item(enum.ItemKindMenu, "Chicken Meal", "150.00"), item(enum.ItemKindDrink, "Iced Tea", "35.00")),
		entry(2, 2, item(enum.ItemKindMenu, "Burger Meal", "120.00"), item(enum.ItemKindAddOn, "Fries", "45.00"), item(enum.ItemKindDrink, "Soda", "25.00")),
	)

	c := ComputeDiscount(order, nil, DefaultDiscountPolicy()).Settle()

	assert.Equal(t, "565.00", fixed(c.Total))
	assert.Equal(t, "565.00", fixed(c.AmountDue))
	assert.Equal(t, "504.46", fixed(c.VATableSales))
	assert.Equal(t, "60.54", fixed(c.VATAmount))
}

func TestComputeDiscount_Promo(t *testing.T) {
	tests := []struct {
		name      string
		promo     entity.Promo
		wantDisc  string
		wantDue   string
		wantVAT   string
		wantFully bool
	}{
		{"flat", entity.Promo{Code: "LESS50", Amount: money.MustNew("50")}, "50.00", "150.00", "16.07", false},
		{"percent", entity.Promo{Code: "HALF", Percent: money.MustNew("50")}, "100.00", "100.00", "10.71", false},
		{"exactly total", entity.Promo{Code: "FULL", Amount: money.MustNew("200")}, "200.00", "0.00", "0.00", true},
		{"above total", entity.Promo{Code: "FREEMEAL", Amount: money.MustNew("1000")}, "200.00", "0.00", "0.00", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			order := orderOf(entry(1, 2, item(enum.ItemKindMenu, "Spaghetti", "100.00")))
			c := ComputeDiscount(order, tt.promo, DefaultDiscountPolicy()).Settle()

			assert.Equal(t, tt.wantDisc, fixed(c.DiscountAmount))
			assert.Equal(t, tt.wantDue, fixed(c.AmountDue))
			assert.Equal(t, tt.wantVAT, fixed(c.VATAmount))
			assert.Equal(t, tt.wantFully, c.FullyDiscounted)
			assert.True(t, c.VATExemptSales.IsZero())
		})
	}
}

func TestComputeDiscount_OtherCapped(t *testing.T) {
	order := orderOf(entry(1, 1, item(enum.ItemKindMenu, "Catering Tray", "1000.00")))

	c := ComputeDiscount(order, entity.Other{Percent: money.MustNew("20")}, DefaultDiscountPolicy()).Settle()

	assert.Equal(t, "100.00", fixed(c.DiscountAmount))
	assert.Equal(t, "900.00", fixed(c.AmountDue))
	assert.Equal(t, "900.00", fixed(c.VATableSales.Add(c.VATAmount)))
}

func TestComputeDiscount_OtherFlaggedEntriesOnly(t *testing.T) {
	flagged := entry(1, 1, item(enum.ItemKindMenu, "Chicken Meal", "200.00"))
	flagged.IsDiscountPercent = true
	order := orderOf(flagged, entry(2, 1, item(enum.ItemKindMenu, "Platter", "800.00")))

	c := ComputeDiscount(order, entity.Other{Percent: money.MustNew("10")}, DefaultDiscountPolicy()).Settle()

	assert.Equal(t, "20.00", fixed(c.DiscountAmount))
	assert.Equal(t, "980.00", fixed(c.AmountDue))
}

func TestComputeDiscount_EntryScopedOtherNeverWidens(t *testing.T) {
	order := orderOf(entry(1, 1, item(enum.ItemKindMenu, "Platter", "800.00")))

	c := ComputeDiscount(order, entity.Other{Percent: money.MustNew("10"), EntryScoped: true}, DefaultDiscountPolicy()).Settle()

	assert.True(t, c.DiscountAmount.IsZero())
	assert.Equal(t, "800.00", fixed(c.AmountDue))
}

func TestComputeDiscount_SeniorScenario(t *testing.T) {
	eligible := entry(1, 1, item(enum.ItemKindMenu, "Family Meal", "300.00"))
	eligible.IsSenior = true
	order := orderOf(eligible, entry(2, 1, item(enum.ItemKindMenu, "Family Meal", "300.00")))
	class := entity.SeniorOrPWD{Beneficiaries: []entity.DiscountBeneficiary{{Type: enum.BeneficiarySenior, Name: "Lola Basyang", IDNumber: "SC-1", EntryNo: 1}}}

	c := ComputeDiscount(order, class, DefaultDiscountPolicy()).Settle()

	assert.Equal(t, "600.00", fixed(c.Total))
	assert.Equal(t, "300.00", fixed(c.DiscountAmount))
	assert.Equal(t, "300.00", fixed(c.SeniorAmount))
	assert.Equal(t, "300.00", fixed(c.VATExemptSales))
	assert.Equal(t, "267.86", fixed(c.VATableSales))
	assert.Equal(t, "32.14", fixed(c.VATAmount))
	assert.Equal(t, "300.00", fixed(c.AmountDue))
}

func TestComputeDiscount_SeniorKeepsAddOnTaxable(t *testing.T) {
	eligible := entry(1, 1, item(enum.ItemKindMenu, "Burger Meal", "120.00"), item(enum.ItemKindAddOn, "Fries", "45.00"))
	eligible.IsPWD = true
	order := orderOf(eligible)

	c := ComputeDiscount(order, entity.SeniorOrPWD{}, DefaultDiscountPolicy()).Settle()

	assert.Equal(t, "120.00", fixed(c.DiscountAmount))
	assert.Equal(t, "120.00", fixed(c.PWDAmount))
	assert.True(t, c.SeniorAmount.IsZero())
	assert.Equal(t, "45.00", fixed(c.VATableSales.Add(c.VATAmount)))
	assert.Equal(t, "45.00", fixed(c.AmountDue))
}

func TestComputeDiscount_CouponPlaceholders(t *testing.T) {
	tagged := entry(1, 1, item(enum.ItemKindMenu, "Chicken Meal", "150.00"), item(enum.ItemKindDrink, "Iced Tea", "35.00"), placeholder("-150.00"))
	tagged.CouponCode = "FREECHICKEN"
	order := orderOf(tagged, entry(2, 1, item(enum.ItemKindMenu, "Spaghetti", "95.00")))

	c := ComputeDiscount(order, entity.Coupon{Code: "FREECHICKEN", ItemQuantity: 1}, DefaultDiscountPolicy()).Settle()

	assert.Equal(t, "130.00", fixed(c.Total))
	assert.Equal(t, "150.00", fixed(c.CouponAmount))
	assert.True(t, c.DiscountAmount.IsZero())
	assert.Equal(t, "130.00", fixed(c.AmountDue))
}

func TestComputeDiscount_PlaceholderIgnoredWithoutCoupon(t *testing.T) {
	order := orderOf(entry(1, 1, item(enum.ItemKindMenu, "Chicken Meal", "150.00"), placeholder("-150.00")))

	c := ComputeDiscount(order, nil, DefaultDiscountPolicy())

	assert.Equal(t, "150.00", fixed(c.Total))
	assert.True(t, c.CouponAmount.IsZero())
}

func TestComputeDiscount_ExemptItems(t *testing.T) {
	order := orderOf(entry(1, 1, item(enum.ItemKindMenu, "Chicken Meal", "112.00"), exemptItem(enum.ItemKindAddOn, "Plain Rice", "25.00")))

	c := ComputeDiscount(order, nil, DefaultDiscountPolicy()).Settle()

	assert.Equal(t, "100.00", fixed(c.VATableSales))
	assert.Equal(t, "12.00", fixed(c.VATAmount))
	assert.Equal(t, "25.00", fixed(c.VATExemptSales))
	assert.Equal(t, "137.00", fixed(c.AmountDue))
}

func TestComputeDiscount_NeverExceedsTotal(t *testing.T) {
	classes := []entity.DiscountClass{
		entity.NoDiscount{},
		entity.Promo{Amount: money.MustNew("75")},
		entity.Promo{Amount: money.MustNew("5000")},
		entity.Promo{Percent: money.MustNew("150")},
		entity.Other{Percent: money.MustNew("100")},
		entity.Other{Percent: money.MustNew("20")},
		entity.SeniorOrPWD{},
	}
	for _, class := range classes {
		senior := entry(1, 3, item(enum.ItemKindMenu, "Meal", "33.33"), item(enum.ItemKindAddOn, "Fries", "10.00"))
		senior.IsSenior = true
		order := orderOf(senior, entry(2, 1, item(enum.ItemKindMenu, "Soup", "12.50")))

		c := ComputeDiscount(order, class, DefaultDiscountPolicy()).Settle()

		require.False(t, c.DiscountAmount.GreaterThan(c.Total), "%T discount over total", class)
		require.Equal(t, fixed(money.NonNegative(c.Total.Sub(c.DiscountAmount))), fixed(c.AmountDue), "%T", class)
	}
}

func TestComputation_ApplyTo(t *testing.T) {
	order := orderOf(entry(1, 1, item(enum.ItemKindMenu, "Meal", "565.00")))
	ComputeDiscount(order, nil, DefaultDiscountPolicy()).ApplyTo(order)

	assert.Equal(t, "565.00", fixed(order.AmountDue))
	assert.Equal(t, "504.46", fixed(order.VATableSales))
	assert.Equal(t, "60.54", fixed(order.VATAmount))
}
