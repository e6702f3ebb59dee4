package service

import (
	"context"
	"sort"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/sangkips/fiscal-pos/internal/domain/entity"
	"github.com/sangkips/fiscal-pos/internal/domain/enum"
	"github.com/sangkips/fiscal-pos/internal/domain/repository"
	"github.com/sangkips/fiscal-pos/pkg/apperror"
	"github.com/sangkips/fiscal-pos/pkg/money"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckout_FinalizeScenario(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	sid := h.open(t, h.cashier, enum.ModeLive)
	h.add(t, h.cashier, sid, 1, "M-CHK", "D-CLA")
	h.add(t, h.cashier, sid, 1, "M-BRG", "D-SDA", "A-FRS")
	_, err := h.orders.SetCash(ctx, h.cashier, sid, money.MustNew("400"))
	require.NoError(t, err)

	order, err := h.checkout.Finalize(ctx, h.cashier, sid)
	require.NoError(t, err)

	assert.Equal(t, int64(1), order.InvoiceNo)
	assert.Equal(t, enum.OrderStatusComplete, order.Status)
	assert.NotNil(t, order.FinalizedAt)
	assert.Equal(t, "390.00", fixed(order.Total))
	assert.Equal(t, "390.00", fixed(order.AmountDue))
	assert.Equal(t, "400.00", fixed(order.Tendered))
	assert.Equal(t, "10.00", fixed(order.Change))
	assert.Equal(t, "390.00", fixed(order.VATableSales.Add(order.VATAmount)))
	require.Len(t, order.Tenders, 1)
	assert.Equal(t, entity.CashPaymentType, order.Tenders[0].PaymentType)

	// Session is ready for the next customer
	snap, err := h.orders.GetSession(ctx, h.cashier, sid)
	require.NoError(t, err)
	assert.Nil(t, snap.Order)
	assert.True(t, snap.Tender.IsEmpty())

	rows, err := h.ledger.ListByOrder(ctx, order.ID)
	require.NoError(t, err)
	// 5 item rows, 1 tender row, 1 totals row
	assert.Len(t, rows, 7)
	debits, credits := balance(rows)
	assert.Equal(t, credits, debits)
	assert.Equal(t, "390.00", credits)

	stored, err := h.checkout.GetOrderByInvoice(ctx, enum.ModeLive, 1)
	require.NoError(t, err)
	assert.Equal(t, order.ID, stored.ID)
}

func TestCheckout_SequentialInvoiceNumbers(t *testing.T) {
	h := newHarness(t)
	sid := h.open(t, h.cashier, enum.ModeLive)

	const n = 6
	got := make([]int64, 0, n)
	for i := 0; i < n; i++ {
		got = append(got, h.sell(t, h.cashier, sid).InvoiceNo)
	}
	assert.Equal(t, []int64{1, 2, 3, 4, 5, 6}, got)
}

func TestCheckout_ConcurrentFinalizeAllocatesDistinctNumbers(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	const n = 8
	cashiers := make([]Actor, n)
	sessions := make([]uuid.UUID, n)
	for i := range cashiers {
		cashiers[i] = Actor{ID: uuid.New(), Name: "Cashier", Roles: []string{entity.RoleCashier}}
		sessions[i] = h.open(t, cashiers[i], enum.ModeLive)
		h.add(t, cashiers[i], sessions[i], 1, "M-SPG")
		_, err := h.orders.ApplyExactAmount(ctx, cashiers[i], sessions[i])
		require.NoError(t, err)
	}

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		invoices []int64
		errs     []error
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			order, err := h.checkout.Finalize(ctx, cashiers[i], sessions[i])
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				errs = append(errs, err)
				return
			}
			invoices = append(invoices, order.InvoiceNo)
		}(i)
	}
	wg.Wait()

	require.Empty(t, errs)
	sort.Slice(invoices, func(i, j int) bool { return invoices[i] < invoices[j] })
	assert.Equal(t, []int64{1, 2, 3, 4, 5, 6, 7, 8}, invoices)
}

func TestCheckout_InsufficientTender(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	sid := h.open(t, h.cashier, enum.ModeLive)
	h.add(t, h.cashier, sid, 1, "M-CHK", "D-CLA")
	_, err := h.orders.SetCash(ctx, h.cashier, sid, money.MustNew("100"))
	require.NoError(t, err)

	_, err = h.checkout.Finalize(ctx, h.cashier, sid)
	require.Error(t, err)
	assert.True(t, apperror.IsKind(err, apperror.KindInsufficientTender))

	snap, err := h.orders.GetSession(ctx, h.cashier, sid)
	require.NoError(t, err)
	require.NotNil(t, snap.Order)
	assert.Equal(t, "85.00", fixed(snap.Summary.Balance))

	_, err = h.orders.ApplyExactAmount(ctx, h.cashier, sid)
	require.NoError(t, err)
	order, err := h.checkout.Finalize(ctx, h.cashier, sid)
	require.NoError(t, err)
	assert.Equal(t, int64(1), order.InvoiceNo)
}

func TestCheckout_MissingRequiredComponent(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	sid := h.open(t, h.cashier, enum.ModeLive)
	h.add(t, h.cashier, sid, 1, "M-BRG", "D-SDA")
	_, err := h.orders.ApplyExactAmount(ctx, h.cashier, sid)
	require.NoError(t, err)

	_, err = h.checkout.Finalize(ctx, h.cashier, sid)
	require.Error(t, err)
	assert.True(t, apperror.IsKind(err, apperror.KindValidation))
	appErr := apperror.GetAppError(err)
	require.Len(t, appErr.Errors, 1)
	assert.Equal(t, "entries.1", appErr.Errors[0].Field)
	assert.Equal(t, "Burger Meal requires an add-on", appErr.Errors[0].Message)
}

func TestCheckout_LedgerFailureCommitsNothing(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	sid := h.open(t, h.cashier, enum.ModeLive)
	h.add(t, h.cashier, sid, 1, "M-CHK", "D-CLA")
	_, err := h.orders.ApplyExactAmount(ctx, h.cashier, sid)
	require.NoError(t, err)

	// Two item rows, one tender row, then the totals row last
	h.store.InjectLedgerFailure(4)
	_, err = h.checkout.Finalize(ctx, h.cashier, sid)
	require.Error(t, err)
	assert.True(t, apperror.IsKind(err, apperror.KindPersistence))

	rows, total, err := h.ledger.List(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, rows)
	assert.Zero(t, total)
	_, count, err := h.checkout.ListOrders(ctx, nil)
	require.NoError(t, err)
	assert.Zero(t, count)
	state, err := h.store.Fiscal().GetState(ctx, enum.ModeLive)
	require.NoError(t, err)
	assert.Zero(t, state.TransactionCount)

	// The retry gets the number the failed attempt did not consume
	order, err := h.checkout.Finalize(ctx, h.cashier, sid)
	require.NoError(t, err)
	assert.Equal(t, int64(1), order.InvoiceNo)
	rows, err = h.ledger.ListByOrder(ctx, order.ID)
	require.NoError(t, err)
	assert.Len(t, rows, 4)
}

func TestCheckout_TrainingNumbersAreSeparate(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	live := h.open(t, h.cashier, enum.ModeLive)
	training := h.open(t, h.cashier, enum.ModeTraining)

	assert.Equal(t, int64(1), h.sell(t, h.cashier, live).InvoiceNo)
	trainingOrder := h.sell(t, h.cashier, training)
	assert.Equal(t, int64(1), trainingOrder.InvoiceNo)
	assert.Equal(t, enum.ModeTraining, trainingOrder.Mode)
	assert.Equal(t, int64(2), h.sell(t, h.cashier, live).InvoiceNo)

	liveState, err := h.store.Fiscal().GetState(ctx, enum.ModeLive)
	require.NoError(t, err)
	trainingState, err := h.store.Fiscal().GetState(ctx, enum.ModeTraining)
	require.NoError(t, err)
	assert.Equal(t, int64(2), liveState.TransactionCount)
	assert.Equal(t, int64(1), trainingState.TransactionCount)

	mode := enum.ModeTraining
	_, count, err := h.checkout.ListOrders(ctx, &repository.OrderFilterParams{Mode: &mode})
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestCheckout_FullPromoKeepsNoChange(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	sid := h.open(t, h.cashier, enum.ModeLive)
	h.add(t, h.cashier, sid, 1, "M-CHK", "D-CLA")
	_, err := h.orders.ApplyPromo(ctx, h.cashier, sid, "FREEMEAL")
	require.NoError(t, err)
	_, err = h.orders.SetCash(ctx, h.cashier, sid, money.MustNew("500"))
	require.NoError(t, err)

	order, err := h.checkout.Finalize(ctx, h.cashier, sid)
	require.NoError(t, err)
	assert.Equal(t, "0.00", fixed(order.AmountDue))
	assert.Equal(t, "0.00", fixed(order.Change))
	assert.Equal(t, "185.00", fixed(order.DiscountAmount))
	assert.Equal(t, "0.00", fixed(order.VATAmount))
	assert.Equal(t, enum.DiscountKindPromo, order.DiscountKind)
	assert.Equal(t, "FREEMEAL", order.DiscountCode)

	rows, err := h.ledger.ListByOrder(ctx, order.ID)
	require.NoError(t, err)
	debits, credits := balance(rows)
	assert.Equal(t, credits, debits)
}

func TestCheckout_SeniorOrderLedger(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	sid := h.open(t, h.cashier, enum.ModeLive)
	h.add(t, h.cashier, sid, 2, "M-CHK", "D-CLA")
	_, err := h.orders.ApplySeniorDiscount(ctx, h.cashier, sid, []BeneficiaryInput{
		{Type: enum.BeneficiarySenior, Name: "Lola Basyang", IDNumber: "SC-1001", EntryNo: 1},
	})
	require.NoError(t, err)
	_, err = h.orders.ApplyExactAmount(ctx, h.cashier, sid)
	require.NoError(t, err)

	order, err := h.checkout.Finalize(ctx, h.cashier, sid)
	require.NoError(t, err)
	require.Len(t, order.Beneficiaries, 1)
	assert.Equal(t, "185.00", fixed(order.Beneficiaries[0].Amount))
	assert.Equal(t, "185.00", fixed(order.SeniorDiscount))

	rows, err := h.ledger.ListByOrder(ctx, order.ID)
	require.NoError(t, err)
	var seniorRows []entity.LedgerEntry
	for _, r := range rows {
		if r.EntryType == enum.LedgerEntrySeniorPWD {
			seniorRows = append(seniorRows, r)
		}
	}
	require.Len(t, seniorRows, 1)
	assert.Equal(t, "Lola Basyang", seniorRows[0].BeneficiaryName)
	assert.Equal(t, "SC-1001", seniorRows[0].BeneficiaryIDNo)
	debits, credits := balance(rows)
	assert.Equal(t, "370.00", credits)
	assert.Equal(t, credits, debits)
}
