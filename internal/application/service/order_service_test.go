package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/fiscal-pos/internal/domain/entity"
	"github.com/sangkips/fiscal-pos/internal/domain/enum"
	"github.com/sangkips/fiscal-pos/pkg/apperror"
	"github.com/sangkips/fiscal-pos/pkg/logger"
	"github.com/sangkips/fiscal-pos/pkg/money"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrderService_AddEntryMergesIdenticalEntries(t *testing.T) {
	h := newHarness(t)
	sid := h.open(t, h.cashier, enum.ModeLive)

	h.add(t, h.cashier, sid, 1, "M-CHK", "D-CLA")
	snap := h.add(t, h.cashier, sid, 1, "M-CHK", "D-CLA")

	require.Len(t, snap.Order.Entries, 1)
	assert.Equal(t, 2, snap.Order.Entries[0].Quantity)
	assert.Equal(t, "370.00", fixed(snap.Computation.Total))
	assert.Equal(t, enum.OrderStatusPending, snap.Order.Status)
	assert.Equal(t, sid, snap.Order.SessionID)
}

func TestOrderService_AddEntryValidation(t *testing.T) {
	h := newHarness(t)
	sid := h.open(t, h.cashier, enum.ModeLive)
	missing := uuid.New()

	tests := []struct {
		name  string
		input *AddEntryInput
		field string
	}{
		{"zero quantity", &AddEntryInput{MenuItemID: h.items["M-CHK"], Quantity: 0}, "quantity"},
		{"drink as menu item", &AddEntryInput{MenuItemID: h.items["D-CLA"], Quantity: 1}, "menu_item_id"},
		{"unknown item", &AddEntryInput{MenuItemID: missing, Quantity: 1}, "menu_item_id"},
		{"add-on as drink", &AddEntryInput{MenuItemID: h.items["M-CHK"], DrinkID: ptr(h.items["A-FRS"]), Quantity: 1}, "drink_id"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := h.orders.AddEntry(context.Background(), h.cashier, sid, tt.input)
			require.Error(t, err)
			assert.True(t, apperror.IsKind(err, apperror.KindValidation))
			appErr := apperror.GetAppError(err)
			require.NotEmpty(t, appErr.Errors)
			assert.Equal(t, tt.field, appErr.Errors[0].Field)
		})
	}

	snap, err := h.orders.GetSession(context.Background(), h.cashier, sid)
	require.NoError(t, err)
	assert.Nil(t, snap.Order)
}

func TestOrderService_SessionOwnership(t *testing.T) {
	h := newHarness(t)
	sid := h.open(t, h.cashier, enum.ModeLive)
	other := Actor{ID: uuid.New(), Name: "Other", Roles: []string{entity.RoleCashier}}

	_, err := h.orders.AddEntry(context.Background(), other, sid, &AddEntryInput{MenuItemID: h.items["M-SPG"], Quantity: 1})
	require.Error(t, err)
	assert.True(t, apperror.IsKind(err, apperror.KindForbidden))

	_, err = h.orders.GetSession(context.Background(), h.cashier, uuid.New())
	assert.True(t, apperror.IsKind(err, apperror.KindNotFound))
}

func TestOrderService_SessionLifecycle(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	sid := h.open(t, h.cashier, enum.ModeLive)

	_, err := h.orders.OpenSession(ctx, h.cashier, &OpenSessionInput{Mode: enum.ModeLive})
	assert.True(t, apperror.IsKind(err, apperror.KindState), "second open session in the same mode")

	// A training session alongside the live one is allowed
	h.open(t, h.cashier, enum.ModeTraining)

	h.add(t, h.cashier, sid, 1, "M-SPG")
	_, err = h.orders.CloseSession(ctx, h.cashier, sid)
	assert.True(t, apperror.IsKind(err, apperror.KindState), "close with a pending order")

	_, err = h.orders.VoidEntry(ctx, h.cashier, &h.manager, sid, 1, "customer left")
	require.NoError(t, err)

	snap, err := h.orders.CloseSession(ctx, h.cashier, sid)
	require.NoError(t, err)
	assert.NotNil(t, snap.ClosedAt)

	_, err = h.orders.AddEntry(ctx, h.cashier, sid, &AddEntryInput{MenuItemID: h.items["M-SPG"], Quantity: 1})
	assert.True(t, apperror.IsKind(err, apperror.KindState))
}

func TestOrderService_OpenSessionLicense(t *testing.T) {
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	tests := []struct {
		name      string
		expiresAt time.Time
		wantErr   bool
		warning   string
	}{
		{"valid", now.AddDate(0, 6, 0), false, ""},
		{"warning window", now.Add(36 * time.Hour), false, "Terminal license expires in 2 day(s)"},
		{"expired", now.Add(-time.Hour), true, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)
			expires := tt.expiresAt
			h.orders.license = NewLicenseChecker(&expires, 7)
			h.orders.now = func() time.Time { return now }

			snap, err := h.orders.OpenSession(context.Background(), h.cashier, &OpenSessionInput{Mode: enum.ModeLive})
			if tt.wantErr {
				assert.True(t, apperror.IsKind(err, apperror.KindState))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.warning, snap.LicenseWarning)
		})
	}
}

func TestOrderService_VoidEntryRequiresManager(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	sid := h.open(t, h.cashier, enum.ModeLive)
	h.add(t, h.cashier, sid, 1, "M-CHK", "D-CLA")
	h.add(t, h.cashier, sid, 1, "M-SPG")

	_, err := h.orders.VoidEntry(ctx, h.cashier, &h.cashier, sid, 1, "wrong item")
	assert.True(t, errors.Is(err, apperror.ErrManagerRequired))
	_, err = h.orders.VoidEntry(ctx, h.cashier, nil, sid, 1, "wrong item")
	assert.True(t, errors.Is(err, apperror.ErrManagerRequired))

	snap, err := h.orders.VoidEntry(ctx, h.cashier, &h.manager, sid, 1, "wrong item")
	require.NoError(t, err)
	require.Len(t, snap.Order.Entries, 1)
	assert.Equal(t, 2, snap.Order.Entries[0].EntryNo)
	assert.True(t, snap.Order.HasVoidedItems)
	assert.Equal(t, "95.00", fixed(snap.Computation.Total))
	assert.Equal(t, []string{"void_entry"}, h.audit.actions())

	_, err = h.orders.VoidEntry(ctx, h.cashier, &h.manager, sid, 1, "again")
	assert.True(t, apperror.IsKind(err, apperror.KindNotFound))
}

func TestOrderService_SeniorDiscountSplitsEntry(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	sid := h.open(t, h.cashier, enum.ModeLive)
	h.add(t, h.cashier, sid, 2, "M-CHK", "D-CLA")

	snap, err := h.orders.ApplySeniorDiscount(ctx, h.cashier, sid, []BeneficiaryInput{
		{Type: enum.BeneficiarySenior, Name: "Lola Basyang", IDNumber: "SC-1001", EntryNo: 1},
	})
	require.NoError(t, err)

	require.Len(t, snap.Order.Entries, 2)
	assert.Equal(t, 1, snap.Order.Entries[0].Quantity)
	assert.False(t, snap.Order.Entries[0].IsSenior)
	assert.Equal(t, 1, snap.Order.Entries[1].Quantity)
	assert.True(t, snap.Order.Entries[1].IsSenior)
	assert.Equal(t, enum.DiscountKindSeniorPWD, snap.DiscountKind)

	c := snap.Computation
	assert.Equal(t, "370.00", fixed(c.Total))
	assert.Equal(t, "185.00", fixed(c.DiscountAmount))
	assert.Equal(t, "185.00", fixed(c.VATExemptSales))
	assert.Equal(t, "165.18", fixed(c.VATableSales))
	assert.Equal(t, "19.82", fixed(c.VATAmount))
	assert.Equal(t, "185.00", fixed(c.AmountDue))

	// Discounted entries are locked; the other entry is still editable
	_, err = h.orders.EditEntryQuantity(ctx, h.cashier, sid, 2, 3, nil)
	assert.True(t, apperror.IsKind(err, apperror.KindState))
	snap, err = h.orders.EditEntryQuantity(ctx, h.cashier, sid, 1, 2, nil)
	require.NoError(t, err)
	assert.Equal(t, "555.00", fixed(snap.Computation.Total))
}

func TestOrderService_DiscountOrderingRules(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	sid := h.open(t, h.cashier, enum.ModeLive)
	h.add(t, h.cashier, sid, 1, "M-CHK", "D-CLA")

	_, err := h.orders.ApplySeniorDiscount(ctx, h.cashier, sid, []BeneficiaryInput{
		{Type: enum.BeneficiaryPWD, Name: "Juan Dela Cruz", IDNumber: "PWD-77", EntryNo: 1},
	})
	require.NoError(t, err)

	_, err = h.orders.ApplyPromo(ctx, h.cashier, sid, "LESS50")
	assert.True(t, apperror.IsKind(err, apperror.KindState), "promo on top of senior/PWD")

	_, err = h.orders.ClearDiscount(ctx, h.cashier, sid)
	require.NoError(t, err)

	_, err = h.orders.SetCash(ctx, h.cashier, sid, money.MustNew("200"))
	require.NoError(t, err)
	_, err = h.orders.ApplyPromo(ctx, h.cashier, sid, "LESS50")
	assert.True(t, apperror.IsKind(err, apperror.KindState), "discount change after tender")

	_, err = h.orders.ClearTender(ctx, h.cashier, sid)
	require.NoError(t, err)
	snap, err := h.orders.ApplyPromo(ctx, h.cashier, sid, "less50")
	require.NoError(t, err)
	assert.Equal(t, "50.00", fixed(snap.Computation.DiscountAmount))
	assert.Equal(t, "135.00", fixed(snap.Computation.AmountDue))

	_, err = h.orders.ApplyPromo(ctx, h.cashier, sid, "NOPE")
	assert.True(t, apperror.IsKind(err, apperror.KindNotFound))
}

func TestOrderService_Coupon(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	sid := h.open(t, h.cashier, enum.ModeLive)
	h.add(t, h.cashier, sid, 2, "M-CHK", "D-CLA")

	_, err := h.orders.ApplyCoupon(ctx, h.cashier, sid, "bogo", 3)
	assert.True(t, apperror.IsKind(err, apperror.KindValidation), "more units than ordered")

	snap, err := h.orders.ApplyCoupon(ctx, h.cashier, sid, "bogo", 1)
	require.NoError(t, err)
	require.Len(t, snap.Order.Entries, 2)
	covered := snap.Order.Entry(2)
	require.NotNil(t, covered)
	assert.Equal(t, "BOGO", covered.CouponCode)
	assert.NotNil(t, covered.Item(enum.ItemKindPlaceholder))

	assert.Equal(t, "220.00", fixed(snap.Computation.Total))
	assert.Equal(t, "150.00", fixed(snap.Computation.CouponAmount))
	assert.Equal(t, "220.00", fixed(snap.Computation.AmountDue))

	_, err = h.orders.ApplyCoupon(ctx, h.cashier, sid, "OTHER", 1)
	assert.True(t, apperror.IsKind(err, apperror.KindState))

	snap, err = h.orders.ClearDiscount(ctx, h.cashier, sid)
	require.NoError(t, err)
	assert.Equal(t, "370.00", fixed(snap.Computation.Total))
	assert.Equal(t, enum.DiscountKindNone, snap.DiscountKind)
}

func TestOrderService_OtherDiscount(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	sid := h.open(t, h.cashier, enum.ModeLive)
	h.add(t, h.cashier, sid, 1, "M-SPG")
	h.add(t, h.cashier, sid, 1, "M-RCE")

	_, err := h.orders.ApplyOtherDiscount(ctx, h.cashier, sid, money.MustNew("120"), nil)
	assert.True(t, apperror.IsKind(err, apperror.KindValidation))

	snap, err := h.orders.ApplyOtherDiscount(ctx, h.cashier, sid, money.MustNew("20"), []int{1})
	require.NoError(t, err)
	assert.Equal(t, "19.00", fixed(snap.Computation.DiscountAmount))
	assert.Equal(t, "101.00", fixed(snap.Computation.AmountDue))
}

func TestOrderService_VoidingScopedEntryDropsOtherDiscount(t *testing.T) {
	tests := []struct {
		name     string
		entryNos []int
		kind     enum.DiscountKind
		discount string
		due      string
	}{
		{"entry scoped", []int{2}, enum.DiscountKindNone, "0.00", "95.00"},
		{"whole order", nil, enum.DiscountKindOther, "19.00", "76.00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)
			ctx := context.Background()
			sid := h.open(t, h.cashier, enum.ModeLive)
			h.add(t, h.cashier, sid, 1, "M-SPG")
			h.add(t, h.cashier, sid, 1, "M-RCE")

			_, err := h.orders.ApplyOtherDiscount(ctx, h.cashier, sid, money.MustNew("20"), tt.entryNos)
			require.NoError(t, err)

			snap, err := h.orders.VoidEntry(ctx, h.cashier, &h.manager, sid, 2, "wrong item")
			require.NoError(t, err)
			assert.Equal(t, tt.kind, snap.DiscountKind)
			assert.Equal(t, tt.discount, fixed(snap.Computation.DiscountAmount))
			assert.Equal(t, tt.due, fixed(snap.Computation.AmountDue))
		})
	}
}

func TestOrderService_EntryChangesRequireClearedTender(t *testing.T) {
	tests := []struct {
		name   string
		change func(h *harness, sid uuid.UUID) error
	}{
		{"void", func(h *harness, sid uuid.UUID) error {
			_, err := h.orders.VoidEntry(context.Background(), h.cashier, &h.manager, sid, 1, "wrong item")
			return err
		}},
		{"edit quantity", func(h *harness, sid uuid.UUID) error {
			_, err := h.orders.EditEntryQuantity(context.Background(), h.cashier, sid, 1, 1, nil)
			return err
		}},
		{"edit price", func(h *harness, sid uuid.UUID) error {
			_, err := h.orders.EditEntryQuantity(context.Background(), h.cashier, sid, 1, 2, ptr(money.MustNew("10")))
			return err
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)
			ctx := context.Background()
			sid := h.open(t, h.cashier, enum.ModeLive)
			h.add(t, h.cashier, sid, 2, "M-BRG", "D-SDA", "A-FRS")

			before, err := h.orders.AddAlternativePayment(ctx, h.cashier, sid, AlternativePayment{PaymentType: "gcash", Amount: money.MustNew("400"), ReferenceNo: "GC-9"})
			require.NoError(t, err)

			err = tt.change(h, sid)
			require.Error(t, err)
			assert.True(t, apperror.IsKind(err, apperror.KindState))

			after, err := h.orders.GetSession(ctx, h.cashier, sid)
			require.NoError(t, err)
			assert.Equal(t, fixed(before.Computation.AmountDue), fixed(after.Computation.AmountDue))
			require.Len(t, after.Order.Entries, 1)
			assert.Equal(t, 2, after.Order.Entries[0].Quantity)

			_, err = h.orders.ClearTender(ctx, h.cashier, sid)
			require.NoError(t, err)
			require.NoError(t, tt.change(h, sid))
		})
	}
}

func TestOrderService_Tender(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	sid := h.open(t, h.cashier, enum.ModeLive)
	h.add(t, h.cashier, sid, 1, "M-BRG", "D-SDA", "A-FRS")

	_, err := h.orders.AddAlternativePayment(ctx, h.cashier, sid, AlternativePayment{PaymentType: "gcash", Amount: money.MustNew("300")})
	assert.True(t, apperror.IsKind(err, apperror.KindValidation), "alternatives above the amount due")

	_, err = h.orders.AddAlternativePayment(ctx, h.cashier, sid, AlternativePayment{PaymentType: "gcash", Amount: money.MustNew("100"), ReferenceNo: "GC-1"})
	require.NoError(t, err)
	snap, err := h.orders.SetCash(ctx, h.cashier, sid, money.MustNew("200"))
	require.NoError(t, err)

	assert.Equal(t, "205.00", fixed(snap.Summary.AmountDue))
	assert.Equal(t, "300.00", fixed(snap.Summary.Tendered))
	assert.Equal(t, "95.00", fixed(snap.Summary.Change))
	assert.True(t, snap.Summary.Sufficient)

	snap, err = h.orders.ApplyExactAmount(ctx, h.cashier, sid)
	require.NoError(t, err)
	assert.Equal(t, "205.00", fixed(snap.Tender.Cash))
	assert.Empty(t, snap.Tender.Alternatives)
	assert.Equal(t, "0.00", fixed(snap.Summary.Change))
}

func TestOrderService_FailedOperationLeavesSessionUntouched(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	sid := h.open(t, h.cashier, enum.ModeLive)
	before := h.add(t, h.cashier, sid, 2, "M-CHK", "D-CLA")

	// Second beneficiary references a missing entry, so the first must not stick
	_, err := h.orders.ApplySeniorDiscount(ctx, h.cashier, sid, []BeneficiaryInput{
		{Type: enum.BeneficiarySenior, Name: "A", IDNumber: "1", EntryNo: 1},
		{Type: enum.BeneficiarySenior, Name: "B", IDNumber: "2", EntryNo: 9},
	})
	require.Error(t, err)

	after, err := h.orders.GetSession(ctx, h.cashier, sid)
	require.NoError(t, err)
	assert.Equal(t, len(before.Order.Entries), len(after.Order.Entries))
	assert.False(t, after.Order.HasDiscountedEntries())
	assert.Equal(t, enum.DiscountKindNone, after.DiscountKind)
}

func TestLoggerAuditSink(t *testing.T) {
	sink := NewLoggerAuditSink(logger.Nop())
	assert.NotPanics(t, func() {
		sink.Record(context.Background(), AuditEvent{Action: "void_entry", Actor: uuid.New(), Amount: money.MustNew("10")})
	})
}

func ptr[T any](v T) *T {
	return &v
}
