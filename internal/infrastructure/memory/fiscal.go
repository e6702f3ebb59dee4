package memory

import (
	"context"
	"sort"

	"github.com/google/uuid"
	"github.com/sangkips/fiscal-pos/internal/domain/entity"
	"github.com/sangkips/fiscal-pos/internal/domain/enum"
	domainRepo "github.com/sangkips/fiscal-pos/internal/domain/repository"
	"github.com/sangkips/fiscal-pos/pkg/apperror"
	"github.com/sangkips/fiscal-pos/pkg/pagination"
)

type fiscalRepository struct {
	s *Store
}

func (r *fiscalRepository) GetState(ctx context.Context, mode enum.Mode) (*entity.FiscalState, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	st, ok := r.s.states[mode]
	if !ok {
		return nil, nil
	}
	return st.Clone(), nil
}

func (r *fiscalRepository) Snapshot(ctx context.Context, mode enum.Mode, shift *domainRepo.ShiftFilter) (*domainRepo.Snapshot, error) {
	s := r.s
	s.mu.RLock()
	defer s.mu.RUnlock()

	st, ok := s.states[mode]
	if !ok {
		return nil, apperror.NewNotFoundError("Fiscal state")
	}
	snap := &domainRepo.Snapshot{State: st.Clone(), At: s.now()}
	if shift == nil {
		return snap, nil
	}

	since := shift.Since
	orders := s.filterOrders(&domainRepo.OrderFilterParams{
		Mode:      &mode,
		SessionID: shift.SessionID,
		CashierID: shift.CashierID,
		StartDate: &since,
	})
	sort.Slice(orders, func(i, j int) bool { return orders[i].InvoiceNo < orders[j].InvoiceNo })

	withdrawals := make([]entity.CashWithdrawal, 0)
	for _, w := range s.withdrawals {
		if w.Mode != mode || w.CreatedAt.Before(since) {
			continue
		}
		if shift.SessionID != nil && (w.SessionID == nil || *w.SessionID != *shift.SessionID) {
			continue
		}
		if shift.CashierID != nil && w.CashierID != *shift.CashierID {
			continue
		}
		withdrawals = append(withdrawals, w)
	}
	totals := entity.BuildTotals(orders, withdrawals)
	snap.Shift = &totals
	return snap, nil
}

func (r *fiscalRepository) UpdateState(ctx context.Context, mode enum.Mode, fn func(state *entity.FiscalState) error) (*entity.FiscalState, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()

	st, ok := s.states[mode]
	if !ok {
		return nil, apperror.NewNotFoundError("Fiscal state")
	}
	next := st.Clone()
	if err := fn(next); err != nil {
		return nil, err
	}
	next.UpdatedAt = s.now()
	s.states[mode] = next
	return next.Clone(), nil
}

func (r *fiscalRepository) CloseDay(ctx context.Context, mode enum.Mode, fn func(state *entity.FiscalState) (*entity.ZReading, error)) (*entity.ZReading, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()

	st, ok := s.states[mode]
	if !ok {
		return nil, apperror.NewNotFoundError("Fiscal state")
	}
	next := st.Clone()
	z, err := fn(next)
	if err != nil {
		return nil, err
	}
	for _, existing := range s.zReadings {
		if existing.Mode != mode {
			continue
		}
		if existing.BusinessDate == z.BusinessDate {
			return nil, apperror.NewStateError("Z reading already generated for " + z.BusinessDate)
		}
		if existing.ZCounter == z.ZCounter {
			return nil, apperror.NewStateError("Z counter already used")
		}
	}
	if z.ID == uuid.Nil {
		z.ID = uuid.New()
	}
	z.CreatedAt = s.now()
	next.UpdatedAt = z.CreatedAt
	s.zReadings = append(s.zReadings, *z)
	s.states[mode] = next
	out := *z
	return &out, nil
}

func (r *fiscalRepository) RecordWithdrawal(ctx context.Context, w *entity.CashWithdrawal) (*entity.FiscalState, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()

	st, ok := s.states[w.Mode]
	if !ok {
		return nil, apperror.NewNotFoundError("Fiscal state")
	}
	if w.ID == uuid.Nil {
		w.ID = uuid.New()
	}
	w.CreatedAt = s.now()
	next := st.Clone()
	next.ApplyWithdrawal(w)
	next.UpdatedAt = w.CreatedAt
	s.withdrawals = append(s.withdrawals, *w)
	s.states[w.Mode] = next
	return next.Clone(), nil
}

// ListZReadings returns the mode's Z readings, latest first
func (r *fiscalRepository) ListZReadings(ctx context.Context, mode enum.Mode, params *pagination.PaginationParams) ([]entity.ZReading, int64, error) {
	r.s.mu.RLock()
	readings := make([]entity.ZReading, 0)
	for i := len(r.s.zReadings) - 1; i >= 0; i-- {
		if r.s.zReadings[i].Mode == mode {
			readings = append(readings, r.s.zReadings[i])
		}
	}
	r.s.mu.RUnlock()
	return pagination.Window(readings, params), int64(len(readings)), nil
}

func (r *fiscalRepository) GetZReading(ctx context.Context, id uuid.UUID) (*entity.ZReading, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, z := range r.s.zReadings {
		if z.ID == id {
			out := z
			return &out, nil
		}
	}
	return nil, nil
}
