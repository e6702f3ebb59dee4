package memory

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/sangkips/fiscal-pos/internal/domain/entity"
	domainRepo "github.com/sangkips/fiscal-pos/internal/domain/repository"
	"github.com/sangkips/fiscal-pos/pkg/apperror"
	"github.com/sangkips/fiscal-pos/pkg/pagination"
)

type ledgerRepository struct {
	s *Store
}

func (r *ledgerRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.LedgerEntry, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	if i := r.s.ledgerIndex(id); i >= 0 {
		row := r.s.ledger[i]
		return &row, nil
	}
	return nil, nil
}

func (r *ledgerRepository) ListByOrder(ctx context.Context, orderID uuid.UUID) ([]entity.LedgerEntry, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	rows := make([]entity.LedgerEntry, 0)
	for _, row := range r.s.ledger {
		if row.OrderID == orderID {
			rows = append(rows, row)
		}
	}
	return rows, nil
}

// List returns matching rows newest first
func (r *ledgerRepository) List(ctx context.Context, params *domainRepo.LedgerFilterParams) ([]entity.LedgerEntry, int64, error) {
	r.s.mu.RLock()
	rows := make([]entity.LedgerEntry, 0)
	for i := len(r.s.ledger) - 1; i >= 0; i-- {
		if params.Matches(&r.s.ledger[i]) {
			rows = append(rows, r.s.ledger[i])
		}
	}
	r.s.mu.RUnlock()

	var page *pagination.PaginationParams
	if params != nil {
		page = params.Pagination
	}
	return pagination.Window(rows, page), int64(len(rows)), nil
}

func (r *ledgerRepository) AppendReversal(ctx context.Context, originalID uuid.UUID, build domainRepo.ReversalFunc) (*entity.LedgerEntry, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.ledgerIndex(originalID)
	if i < 0 {
		return nil, apperror.NewNotFoundError("Ledger row")
	}
	if _, done := s.reversedBy[originalID]; done {
		return nil, apperror.NewStateError("Ledger row already reversed")
	}
	original := s.ledger[i]
	row, err := build(&original)
	if err != nil {
		return nil, err
	}
	if row.ReversesID == nil || *row.ReversesID != originalID {
		return nil, apperror.NewPersistenceError("Failed to post reversal", fmt.Errorf("row does not reference %s", originalID))
	}
	if row.ID == uuid.Nil {
		row.ID = uuid.New()
	}
	s.ledger = append(s.ledger, *row)
	s.reversedBy[originalID] = row.ID
	out := *row
	return &out, nil
}

// ledgerIndex returns the position of the row with id, or -1; callers hold mu
func (s *Store) ledgerIndex(id uuid.UUID) int {
	for i := range s.ledger {
		if s.ledger[i].ID == id {
			return i
		}
	}
	return -1
}
