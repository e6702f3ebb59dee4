package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/fiscal-pos/internal/domain/entity"
	"github.com/sangkips/fiscal-pos/internal/domain/enum"
	"github.com/sangkips/fiscal-pos/internal/infrastructure/memory"
	"github.com/sangkips/fiscal-pos/internal/infrastructure/seed"
	"github.com/sangkips/fiscal-pos/pkg/logger"
	"github.com/sangkips/fiscal-pos/pkg/money"
	"github.com/stretchr/testify/require"
)

type recordingAudit struct {
	mu     sync.Mutex
	events []AuditEvent
}

func (a *recordingAudit) Record(ctx context.Context, e AuditEvent) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.events = append(a.events, e)
}

func (a *recordingAudit) actions() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]string, 0, len(a.events))
	for _, e := range a.events {
		out = append(out, e.Action)
	}
	return out
}

type recordingMailer struct {
	mu   sync.Mutex
	sent []*entity.FiscalReading
}

func (m *recordingMailer) SendZReport(r *entity.FiscalReading) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, r)
	return nil
}

type harness struct {
	store    *memory.Store
	sessions *SessionStore
	orders   *OrderService
	checkout *CheckoutService
	ledger   *LedgerService
	fiscal   *FiscalService
	audit    *recordingAudit
	mailer   *recordingMailer
	cashier  Actor
	manager  Actor
	items    map[string]uuid.UUID
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	ctx := context.Background()

	h := &harness{
		store:    memory.New(),
		sessions: NewSessionStore(),
		audit:    &recordingAudit{},
		mailer:   &recordingMailer{},
		cashier:  Actor{ID: uuid.New(), Name: "Ana Cruz", Roles: []string{entity.RoleCashier}},
		manager:  Actor{ID: uuid.New(), Name: "Ben Reyes", Roles: []string{entity.RoleManager}},
		items:    map[string]uuid.UUID{},
	}
	for _, item := range seed.Catalog() {
		item := item
		require.NoError(t, h.store.Catalog().Create(ctx, &item))
		h.items[item.Code] = item.ID
	}
	for _, promo := range seed.Promos() {
		promo := promo
		require.NoError(t, h.store.Promos().Create(ctx, &promo))
	}

	log := logger.Nop()
	policy := DefaultDiscountPolicy()
	h.orders = NewOrderService(h.sessions, h.store.Catalog(), h.store.Promos(), nil, h.audit, policy, log)
	h.checkout = NewCheckoutService(h.sessions, h.store.Checkout(), h.store.Orders(), policy, log)
	h.ledger = NewLedgerService(h.store.Ledger(), h.store.Checkout(), h.audit, log)
	h.fiscal = NewFiscalService(h.store.Fiscal(), h.sessions, entity.BusinessHeader{Name: "Test Diner", TIN: "000-000-000-000"}, time.UTC, h.mailer, h.audit, log)
	return h
}

func (h *harness) open(t *testing.T, actor Actor, mode enum.Mode) uuid.UUID {
	t.Helper()
	snap, err := h.orders.OpenSession(context.Background(), actor, &OpenSessionInput{Mode: mode, OpeningFund: money.MustNew("1000")})
	require.NoError(t, err)
	return snap.ID
}

func (h *harness) add(t *testing.T, actor Actor, sessionID uuid.UUID, qty int, codes ...string) *SessionSnapshot {
	t.Helper()
	input := &AddEntryInput{MenuItemID: h.items[codes[0]], Quantity: qty}
	for _, code := range codes[1:] {
		id := h.items[code]
		switch code[0] {
		case 'D':
			input.DrinkID = &id
		case 'A':
			input.AddOnID = &id
		}
	}
	snap, err := h.orders.AddEntry(context.Background(), actor, sessionID, input)
	require.NoError(t, err)
	return snap
}

// sell rings up one Chicken Meal with Iced Tea (185.00) and pays it exactly
func (h *harness) sell(t *testing.T, actor Actor, sessionID uuid.UUID) *entity.Order {
	t.Helper()
	ctx := context.Background()
	h.add(t, actor, sessionID, 1, "M-CHK", "D-CLA")
	_, err := h.orders.ApplyExactAmount(ctx, actor, sessionID)
	require.NoError(t, err)
	order, err := h.checkout.Finalize(ctx, actor, sessionID)
	require.NoError(t, err)
	return order
}

func balance(rows []entity.LedgerEntry) (debits, credits string) {
	d, c := money.Zero, money.Zero
	for _, r := range rows {
		d = d.Add(r.Debit)
		c = c.Add(r.Credit)
	}
	return fixed(d), fixed(c)
}
