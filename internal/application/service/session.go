package service

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/fiscal-pos/internal/domain/entity"
	"github.com/sangkips/fiscal-pos/internal/domain/enum"
	"github.com/sangkips/fiscal-pos/pkg/apperror"
	"github.com/sangkips/fiscal-pos/pkg/logger"
	"github.com/shopspring/decimal"
)

// Actor is the authenticated operator performing an operation
type Actor struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Roles []string  `json:"roles"`
}

// ActorFromUser builds an Actor from a loaded user
func ActorFromUser(u *entity.User) Actor {
	return Actor{ID: u.ID, Name: u.FullName(), Roles: u.GetRoleNames()}
}

// IsManager reports whether the actor may authorize manager-only operations
func (a Actor) IsManager() bool {
	for _, r := range a.Roles {
		if r == entity.RoleManager || r == entity.RoleAdmin {
			return true
		}
	}
	return false
}

// requireManager returns ErrManagerRequired unless a is a manager
func requireManager(a *Actor) error {
	if a == nil || a.ID == uuid.Nil || !a.IsManager() {
		return apperror.ErrManagerRequired
	}
	return nil
}

// AuditEvent is one audited action
type AuditEvent struct {
	Action     string
	Actor      uuid.UUID
	ApprovedBy uuid.UUID
	Mode       enum.Mode
	OrderID    uuid.UUID
	EntryNo    int
	Amount     decimal.Decimal
	Reason     string
}

// AuditSink receives voids, unposts, resets and other audited actions
type AuditSink interface {
	Record(ctx context.Context, event AuditEvent)
}

// LoggerAuditSink writes audit events as structured log records
type LoggerAuditSink struct {
	log *logger.Logger
}

// NewLoggerAuditSink creates an audit sink backed by log
func NewLoggerAuditSink(log *logger.Logger) *LoggerAuditSink {
	return &LoggerAuditSink{log: log.WithComponent("audit")}
}

// Record implements AuditSink
func (s *LoggerAuditSink) Record(ctx context.Context, e AuditEvent) {
	args := []any{"actor_id", e.Actor.String(), "mode", string(e.Mode)}
	if e.ApprovedBy != uuid.Nil {
		args = append(args, "approved_by", e.ApprovedBy.String())
	}
	if e.OrderID != uuid.Nil {
		args = append(args, "order_id", e.OrderID.String())
	}
	if e.EntryNo > 0 {
		args = append(args, "entry_no", e.EntryNo)
	}
	if !e.Amount.IsZero() {
		args = append(args, "amount", e.Amount.StringFixed(2))
	}
	if e.Reason != "" {
		args = append(args, "reason", e.Reason)
	}
	s.log.Audit(ctx, e.Action, args...)
}

// Session is a cashier shift on one terminal. It owns at most one pending order.
type Session struct {
	ID             uuid.UUID
	CashierID      uuid.UUID
	CashierName    string
	Mode           enum.Mode
	OpeningFund    decimal.Decimal
	OpenedAt       time.Time
	ClosedAt       *time.Time
	LicenseWarning string

	mu    sync.Mutex
	state sessionState
}

// sessionState is the mutable part of a session. Operations work on a clone
// and swap it in only on success.
type sessionState struct {
	Order    *entity.Order
	Discount entity.DiscountClass
	Tender   Tender
}

func (st *sessionState) clone() sessionState {
	return sessionState{
		Order:    st.Order.Clone(),
		Discount: cloneDiscount(st.Discount),
		Tender:   st.Tender.Clone(),
	}
}

func cloneDiscount(d entity.DiscountClass) entity.DiscountClass {
	if s, ok := d.(entity.SeniorOrPWD); ok {
		s.Beneficiaries = append([]entity.DiscountBeneficiary(nil), s.Beneficiaries...)
		return s
	}
	return entity.DiscountOrNone(d)
}

// SessionSnapshot is a read-only copy of a session for presentation
type SessionSnapshot struct {
	ID             uuid.UUID            `json:"id"`
	CashierID      uuid.UUID            `json:"cashier_id"`
	CashierName    string               `json:"cashier_name"`
	Mode           enum.Mode            `json:"mode"`
	OpeningFund    decimal.Decimal      `json:"opening_fund"`
	OpenedAt       time.Time            `json:"opened_at"`
	ClosedAt       *time.Time           `json:"closed_at,omitempty"`
	LicenseWarning string               `json:"license_warning,omitempty"`
	Order          *entity.Order        `json:"order,omitempty"`
	Discount       entity.DiscountClass `json:"discount"`
	DiscountKind   enum.DiscountKind    `json:"discount_kind"`
	Tender         Tender               `json:"tender"`
	Computation    *Computation         `json:"computation,omitempty"`
	Summary        *TenderSummary       `json:"summary,omitempty"`
}

// SessionStore keeps open sessions in memory
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[uuid.UUID]*Session
}

// NewSessionStore creates an empty session store
func NewSessionStore() *SessionStore {
	return &SessionStore{sessions: make(map[uuid.UUID]*Session)}
}

// Add registers a session
func (s *SessionStore) Add(sess *Session) {
	s.mu.Lock()
	s.sessions[sess.ID] = sess
	s.mu.Unlock()
}

// Get returns the session with id, or nil
func (s *SessionStore) Get(id uuid.UUID) *Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sessions[id]
}

// OpenFor returns the actor's open session in mode, or nil
func (s *SessionStore) OpenFor(cashierID uuid.UUID, mode enum.Mode) *Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, sess := range s.sessions {
		if sess.CashierID == cashierID && sess.Mode == mode && sess.ClosedAt == nil {
			return sess
		}
	}
	return nil
}

// owned resolves id and checks that actor owns it
func (s *SessionStore) owned(id uuid.UUID, actor Actor) (*Session, error) {
	sess := s.Get(id)
	if sess == nil {
		return nil, apperror.NewNotFoundError("Session")
	}
	if sess.CashierID != actor.ID {
		return nil, apperror.NewForbiddenError("Session belongs to another cashier")
	}
	return sess, nil
}

// Mutate runs fn on a clone of the session state under the session lock and
// keeps the result only if fn succeeds
func (s *SessionStore) Mutate(id uuid.UUID, actor Actor, policy DiscountPolicy, fn func(sess *Session, st *sessionState) error) (*SessionSnapshot, error) {
	sess, err := s.owned(id, actor)
	if err != nil {
		return nil, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	if sess.ClosedAt != nil {
		return nil, apperror.NewStateError("Session is closed")
	}
	next := sess.state.clone()
	if err := fn(sess, &next); err != nil {
		return nil, err
	}
	sess.state = next
	return sess.snapshotLocked(policy), nil
}

// Snapshot copies the session, computing totals with policy when an order is open
func (sess *Session) Snapshot(policy DiscountPolicy) *SessionSnapshot {
	sess.mu.Lock()
	defer sess.mu.Unlock()
	return sess.snapshotLocked(policy)
}

func (sess *Session) snapshotLocked(policy DiscountPolicy) *SessionSnapshot {
	st := sess.state.clone()
	snap := &SessionSnapshot{
		ID:             sess.ID,
		CashierID:      sess.CashierID,
		CashierName:    sess.CashierName,
		Mode:           sess.Mode,
		OpeningFund:    sess.OpeningFund,
		OpenedAt:       sess.OpenedAt,
		ClosedAt:       sess.ClosedAt,
		LicenseWarning: sess.LicenseWarning,
		Order:          st.Order,
		Discount:       st.Discount,
		DiscountKind:   st.Discount.Kind(),
		Tender:         st.Tender,
	}
	if st.Order != nil {
		c := ComputeDiscount(st.Order, st.Discount, policy)
		summary := st.Tender.Reconcile(c)
		settled := c.Settle()
		snap.Computation = &settled
		snap.Summary = &summary
	}
	return snap
}
