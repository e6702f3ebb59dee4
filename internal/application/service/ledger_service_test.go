package service

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/sangkips/fiscal-pos/internal/domain/entity"
	"github.com/sangkips/fiscal-pos/internal/domain/enum"
	"github.com/sangkips/fiscal-pos/pkg/apperror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seniorOrder(t *testing.T, h *harness) *entity.Order {
	t.Helper()
	ctx := context.Background()
	sid := h.open(t, h.cashier, enum.ModeLive)
	h.add(t, h.cashier, sid, 2, "M-CHK", "D-CLA")
	_, err := h.orders.ApplySeniorDiscount(ctx, h.cashier, sid, []BeneficiaryInput{
		{Type: enum.BeneficiaryPWD, Name: "Juan Dela Cruz", IDNumber: "PWD-77", EntryNo: 1},
	})
	require.NoError(t, err)
	_, err = h.orders.ApplyExactAmount(ctx, h.cashier, sid)
	require.NoError(t, err)
	order, err := h.checkout.Finalize(ctx, h.cashier, sid)
	require.NoError(t, err)
	return order
}

func rowOfType(t *testing.T, rows []entity.LedgerEntry, entryType enum.LedgerEntryType) entity.LedgerEntry {
	t.Helper()
	for _, r := range rows {
		if r.EntryType == entryType {
			return r
		}
	}
	t.Fatalf("no %s row", entryType)
	return entity.LedgerEntry{}
}

func TestLedgerService_UnpostBeneficiary(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	order := seniorOrder(t, h)

	rows, err := h.ledger.ListByOrder(ctx, order.ID)
	require.NoError(t, err)
	original := rowOfType(t, rows, enum.LedgerEntrySeniorPWD)

	_, err = h.ledger.UnpostBeneficiary(ctx, &h.cashier, original.ID, "wrong ID")
	assert.True(t, errors.Is(err, apperror.ErrManagerRequired))
	_, err = h.ledger.UnpostBeneficiary(ctx, &h.manager, original.ID, " ")
	assert.True(t, apperror.IsKind(err, apperror.KindValidation))

	reversal, err := h.ledger.UnpostBeneficiary(ctx, &h.manager, original.ID, "wrong ID")
	require.NoError(t, err)
	require.NotNil(t, reversal.ReversesID)
	assert.Equal(t, original.ID, *reversal.ReversesID)
	assert.Equal(t, enum.LedgerEntryReversal, reversal.EntryType)
	assert.Equal(t, entity.AccountSeniorPWDUnpost, reversal.AccountCode)
	assert.Equal(t, "-185.00", fixed(reversal.Debit))
	assert.Equal(t, h.manager.ID, reversal.PostedBy)

	_, err = h.ledger.UnpostBeneficiary(ctx, &h.manager, original.ID, "again")
	assert.True(t, apperror.IsKind(err, apperror.KindState))

	// The original row is still there, unchanged
	after, err := h.ledger.ListByOrder(ctx, order.ID)
	require.NoError(t, err)
	assert.Len(t, after, len(rows)+1)
	kept := rowOfType(t, after, enum.LedgerEntrySeniorPWD)
	assert.Equal(t, original.ID, kept.ID)
	assert.Equal(t, "185.00", fixed(kept.Debit))
	assert.Contains(t, h.audit.actions(), "unpost_beneficiary")
}

func TestLedgerService_UnpostRejectsOtherRows(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	order := seniorOrder(t, h)

	rows, err := h.ledger.ListByOrder(ctx, order.ID)
	require.NoError(t, err)
	item := rowOfType(t, rows, enum.LedgerEntryItem)

	_, err = h.ledger.UnpostBeneficiary(ctx, &h.manager, item.ID, "nope")
	assert.True(t, apperror.IsKind(err, apperror.KindState))
}

func TestLedgerService_VoidOrder(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	sid := h.open(t, h.cashier, enum.ModeLive)
	order := h.sell(t, h.cashier, sid)

	_, err := h.ledger.VoidOrder(ctx, h.cashier, &h.cashier, order.ID, "duplicate")
	assert.True(t, errors.Is(err, apperror.ErrManagerRequired))

	voided, err := h.ledger.VoidOrder(ctx, h.cashier, &h.manager, order.ID, "duplicate")
	require.NoError(t, err)
	assert.Equal(t, enum.OrderStatusCancelled, voided.Status)
	assert.Equal(t, order.InvoiceNo, voided.InvoiceNo)

	rows, err := h.ledger.ListByOrder(ctx, order.ID)
	require.NoError(t, err)
	assert.Len(t, rows, 8)
	debits, credits := balance(rows)
	assert.Equal(t, "0.00", debits)
	assert.Equal(t, "0.00", credits)

	var voidRows int
	for _, r := range rows {
		if r.AccountCode == entity.AccountVoidedSales {
			voidRows++
		}
	}
	assert.Equal(t, 2, voidRows)

	state, err := h.store.Fiscal().GetState(ctx, enum.ModeLive)
	require.NoError(t, err)
	assert.Equal(t, int64(1), state.VoidCount)
	assert.Equal(t, "185.00", fixed(state.VoidAmount))
	assert.Equal(t, "185.00", fixed(state.CashReturned))

	_, err = h.ledger.VoidOrder(ctx, h.cashier, &h.manager, order.ID, "again")
	assert.True(t, apperror.IsKind(err, apperror.KindState))
	_, err = h.ledger.RefundOrder(ctx, h.cashier, &h.manager, order.ID, "again")
	assert.True(t, apperror.IsKind(err, apperror.KindState))
}

func TestLedgerService_RefundSkipsUnpostedRows(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	order := seniorOrder(t, h)

	rows, err := h.ledger.ListByOrder(ctx, order.ID)
	require.NoError(t, err)
	senior := rowOfType(t, rows, enum.LedgerEntrySeniorPWD)
	_, err = h.ledger.UnpostBeneficiary(ctx, &h.manager, senior.ID, "wrong ID")
	require.NoError(t, err)

	refunded, err := h.ledger.RefundOrder(ctx, h.cashier, &h.manager, order.ID, "cold food")
	require.NoError(t, err)
	assert.Equal(t, enum.OrderStatusReturned, refunded.Status)

	after, err := h.ledger.ListByOrder(ctx, order.ID)
	require.NoError(t, err)
	// every original row has exactly one reversal
	assert.Len(t, after, 2*len(rows))

	state, err := h.store.Fiscal().GetState(ctx, enum.ModeLive)
	require.NoError(t, err)
	assert.Equal(t, int64(1), state.RefundCount)
}

func TestLedgerService_UnknownOrder(t *testing.T) {
	h := newHarness(t)
	_, err := h.ledger.VoidOrder(context.Background(), h.cashier, &h.manager, uuid.New(), "x")
	assert.True(t, apperror.IsKind(err, apperror.KindNotFound))
}
