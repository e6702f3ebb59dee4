package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/fiscal-pos/internal/domain/entity"
	"github.com/sangkips/fiscal-pos/internal/domain/enum"
	"github.com/sangkips/fiscal-pos/internal/domain/repository"
	"github.com/sangkips/fiscal-pos/pkg/apperror"
	"github.com/sangkips/fiscal-pos/pkg/logger"
	"github.com/sangkips/fiscal-pos/pkg/money"
	"github.com/sangkips/fiscal-pos/pkg/pagination"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFiscalService_XReadingIsReadOnly(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	sid := h.open(t, h.cashier, enum.ModeLive)
	h.sell(t, h.cashier, sid)

	first, err := h.fiscal.XReading(ctx, h.cashier, &XReadingInput{Mode: enum.ModeLive})
	require.NoError(t, err)
	second, err := h.fiscal.XReading(ctx, h.cashier, &XReadingInput{Mode: enum.ModeLive})
	require.NoError(t, err)

	for _, r := range []*entity.FiscalReading{first, second} {
		assert.Equal(t, entity.ReadingX, r.Type)
		assert.Equal(t, int64(1), r.TransactionCount)
		assert.Equal(t, int64(1), r.BeginInvoiceNo)
		assert.Equal(t, int64(1), r.EndInvoiceNo)
		assert.Equal(t, "185.00", fixed(r.GrossSales))
		assert.Equal(t, "185.00", fixed(r.NetSales))
		assert.Equal(t, int64(0), r.ZCounter)
		assert.Equal(t, "Test Diner", r.Header.Name)
	}

	state, err := h.store.Fiscal().GetState(ctx, enum.ModeLive)
	require.NoError(t, err)
	assert.Equal(t, int64(0), state.ZCounter)
	assert.Equal(t, int64(1), state.TransactionCount)
}

func TestFiscalService_ShiftReadingWithWithdrawal(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	sid := h.open(t, h.cashier, enum.ModeLive)
	h.sell(t, h.cashier, sid)

	// Another cashier's sale stays out of this shift
	other := Actor{ID: uuid.New(), Name: "Other", Roles: []string{entity.RoleCashier}}
	h.sell(t, other, h.open(t, other, enum.ModeLive))

	_, err := h.fiscal.RecordWithdrawal(ctx, h.cashier, &h.manager, &WithdrawalInput{
		Mode:      enum.ModeLive,
		SessionID: &sid,
		Amount:    money.MustNew("200"),
		Reason:    "bank deposit",
	})
	require.NoError(t, err)

	declared := money.MustNew("980")
	r, err := h.fiscal.XReading(ctx, h.cashier, &XReadingInput{Mode: enum.ModeLive, SessionID: &sid, DeclaredCash: &declared})
	require.NoError(t, err)

	assert.Equal(t, int64(1), r.TransactionCount)
	assert.Equal(t, "Ana Cruz", r.CashierName)
	assert.Equal(t, "1000.00", fixed(r.OpeningFund))
	assert.Equal(t, int64(1), r.WithdrawalCount)
	assert.Equal(t, "200.00", fixed(r.WithdrawalAmount))
	assert.Equal(t, "985.00", fixed(r.ExpectedCash))
	require.NotNil(t, r.ShortOver)
	assert.Equal(t, "-5.00", fixed(*r.ShortOver))
	require.Len(t, r.Payments, 1)
	assert.Equal(t, entity.CashPaymentType, r.Payments[0].Type)
	assert.Equal(t, "185.00", fixed(r.Payments[0].Amount))

	// Accumulated figures cover the whole day
	assert.Equal(t, "370.00", fixed(r.AccumulatedAfter))

	_, err = h.fiscal.XReading(ctx, other, &XReadingInput{Mode: enum.ModeLive, SessionID: &sid})
	assert.True(t, apperror.IsKind(err, apperror.KindForbidden))
	_, err = h.fiscal.XReading(ctx, h.manager, &XReadingInput{Mode: enum.ModeLive, SessionID: &sid})
	assert.NoError(t, err)
}

// gatedFiscal holds snapshot reads until released so callers overlap
type gatedFiscal struct {
	repository.FiscalRepository
	entered chan struct{}
	release chan struct{}
}

func newGatedFiscal(inner repository.FiscalRepository) *gatedFiscal {
	return &gatedFiscal{FiscalRepository: inner, entered: make(chan struct{}, 16), release: make(chan struct{})}
}

func (g *gatedFiscal) Snapshot(ctx context.Context, mode enum.Mode, shift *repository.ShiftFilter) (*repository.Snapshot, error) {
	g.entered <- struct{}{}
	<-g.release
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return g.FiscalRepository.Snapshot(ctx, mode, shift)
}

func (h *harness) gatedFiscalService(gate *gatedFiscal) *FiscalService {
	return NewFiscalService(gate, h.sessions, entity.BusinessHeader{Name: "Test Diner"}, time.UTC, nil, h.audit, logger.Nop())
}

func TestFiscalService_XReadingSurvivesCancelledCaller(t *testing.T) {
	h := newHarness(t)
	h.sell(t, h.cashier, h.open(t, h.cashier, enum.ModeLive))
	gate := newGatedFiscal(h.store.Fiscal())
	svc := h.gatedFiscalService(gate)

	ctx, cancel := context.WithCancel(context.Background())
	type result struct {
		reading *entity.FiscalReading
		err     error
	}
	first := make(chan result, 1)
	go func() {
		r, err := svc.XReading(ctx, h.cashier, &XReadingInput{Mode: enum.ModeLive})
		first <- result{r, err}
	}()
	<-gate.entered

	second := make(chan result, 1)
	go func() {
		r, err := svc.XReading(context.Background(), h.manager, &XReadingInput{Mode: enum.ModeLive})
		second <- result{r, err}
	}()

	cancel()
	close(gate.release)

	for _, ch := range []chan result{first, second} {
		res := <-ch
		require.NoError(t, res.err)
		assert.Equal(t, "185.00", fixed(res.reading.GrossSales))
	}
}

func TestFiscalService_ConcurrentXReadingsAreIndependent(t *testing.T) {
	h := newHarness(t)
	sid := h.open(t, h.cashier, enum.ModeLive)
	h.sell(t, h.cashier, sid)
	gate := newGatedFiscal(h.store.Fiscal())
	svc := h.gatedFiscalService(gate)

	const callers = 4
	declared := money.MustNew("1200")
	readings := make([]*entity.FiscalReading, callers)
	errs := make([]error, callers)

	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			readings[i], errs[i] = svc.XReading(context.Background(), h.cashier, &XReadingInput{Mode: enum.ModeLive, SessionID: &sid, DeclaredCash: &declared})
		}(i)
	}
	<-gate.entered
	close(gate.release)
	wg.Wait()

	for i := range errs {
		require.NoError(t, errs[i])
		require.Len(t, readings[i].Payments, 1)
		require.NotNil(t, readings[i].ShortOver)
	}

	readings[0].Payments[0].Amount = money.MustNew("1")
	*readings[0].ShortOver = money.MustNew("999")
	*readings[0].SessionID = uuid.Nil

	for _, r := range readings[1:] {
		assert.Equal(t, "185.00", fixed(r.Payments[0].Amount))
		assert.Equal(t, "15.00", fixed(*r.ShortOver))
		assert.Equal(t, sid, *r.SessionID)
	}
}

func TestFiscalService_ZReadingOncePerDay(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	day := time.Date(2026, 3, 10, 20, 0, 0, 0, time.UTC)
	h.fiscal.now = func() time.Time { return day }

	sid := h.open(t, h.cashier, enum.ModeLive)
	h.sell(t, h.cashier, sid)

	_, err := h.fiscal.ZReading(ctx, &h.cashier, enum.ModeLive, nil)
	assert.True(t, errors.Is(err, apperror.ErrManagerRequired))

	z, err := h.fiscal.ZReading(ctx, &h.manager, enum.ModeLive, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(1), z.ZCounter)
	assert.Equal(t, "2026-03-10", z.BusinessDate)
	require.NotNil(t, z.Document)
	assert.Equal(t, entity.ReadingZ, z.Document.Type)
	assert.Equal(t, int64(1), z.Document.ZCounter)
	assert.Equal(t, "0.00", fixed(z.Document.AccumulatedBefore))
	assert.Equal(t, "185.00", fixed(z.Document.AccumulatedAfter))
	assert.Len(t, h.mailer.sent, 1)

	state, err := h.store.Fiscal().GetState(ctx, enum.ModeLive)
	require.NoError(t, err)
	assert.Equal(t, int64(1), state.ZCounter)
	assert.Equal(t, "185.00", fixed(state.AccumulatedSales))
	assert.Zero(t, state.TransactionCount)
	assert.True(t, state.GrossSales.IsZero())

	_, err = h.fiscal.ZReading(ctx, &h.manager, enum.ModeLive, nil)
	assert.True(t, apperror.IsKind(err, apperror.KindState))
	state, err = h.store.Fiscal().GetState(ctx, enum.ModeLive)
	require.NoError(t, err)
	assert.Equal(t, int64(1), state.ZCounter, "a rejected Z reading must not advance the counter")

	// Training has its own counters
	tz, err := h.fiscal.ZReading(ctx, &h.manager, enum.ModeTraining, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(1), tz.ZCounter)

	// Invoice numbers continue across days; the next day closes with Z 2
	assert.Equal(t, int64(2), h.sell(t, h.cashier, sid).InvoiceNo)
	h.fiscal.now = func() time.Time { return day.AddDate(0, 0, 1) }
	next, err := h.fiscal.ZReading(ctx, &h.manager, enum.ModeLive, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(2), next.ZCounter)
	assert.Equal(t, int64(2), next.Document.BeginInvoiceNo)
	assert.Equal(t, "370.00", fixed(next.Document.AccumulatedAfter))

	readings, total, err := h.fiscal.ListZReadings(ctx, enum.ModeLive, &pagination.PaginationParams{Page: 1, PerPage: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Equal(t, next.ID, readings[0].ID)

	got, err := h.fiscal.GetZReading(ctx, z.ID)
	require.NoError(t, err)
	assert.Equal(t, z.ZCounter, got.ZCounter)
	_, err = h.fiscal.GetZReading(ctx, uuid.New())
	assert.True(t, apperror.IsKind(err, apperror.KindNotFound))
}

func TestFiscalService_RecordWithdrawalValidation(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	_, err := h.fiscal.RecordWithdrawal(ctx, h.cashier, nil, &WithdrawalInput{Mode: enum.ModeLive, Amount: money.MustNew("10"), Reason: "x"})
	assert.True(t, errors.Is(err, apperror.ErrManagerRequired))

	_, err = h.fiscal.RecordWithdrawal(ctx, h.cashier, &h.manager, &WithdrawalInput{Mode: enum.ModeLive})
	require.Error(t, err)
	assert.True(t, apperror.IsKind(err, apperror.KindValidation))
	assert.Len(t, apperror.GetAppError(err).Errors, 2)
}

func TestFiscalService_ResetAccumulated(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	sid := h.open(t, h.cashier, enum.ModeLive)
	h.sell(t, h.cashier, sid)
	_, err := h.fiscal.ZReading(ctx, &h.manager, enum.ModeLive, nil)
	require.NoError(t, err)

	_, err = h.fiscal.ResetAccumulated(ctx, &h.cashier, enum.ModeLive, "new machine")
	assert.True(t, errors.Is(err, apperror.ErrManagerRequired))

	state, err := h.fiscal.ResetAccumulated(ctx, &h.manager, enum.ModeLive, "new machine")
	require.NoError(t, err)
	assert.Equal(t, int64(1), state.ResetCounter)
	assert.True(t, state.AccumulatedSales.IsZero())
	assert.Equal(t, int64(1), state.ZCounter)
	assert.Contains(t, h.audit.actions(), "reset_accumulated")
}

func TestFiscalService_Status(t *testing.T) {
	h := newHarness(t)
	states, err := h.fiscal.Status(context.Background())
	require.NoError(t, err)
	require.Len(t, states, 2)
	assert.Equal(t, enum.ModeLive, states[0].Mode)
	assert.Equal(t, enum.ModeTraining, states[1].Mode)
}

func TestPaymentLines_CashFirst(t *testing.T) {
	lines := paymentLines(entity.PaymentBreakdown{
		"MAYA":                 money.MustNew("10"),
		entity.CashPaymentType: money.MustNew("20"),
		"GCASH":                money.MustNew("30"),
	})
	require.Len(t, lines, 3)
	assert.Equal(t, []string{"CASH", "GCASH", "MAYA"}, []string{lines[0].Type, lines[1].Type, lines[2].Type})
}
