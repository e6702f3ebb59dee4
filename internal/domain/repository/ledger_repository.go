package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/sangkips/fiscal-pos/internal/domain/entity"
	"github.com/sangkips/fiscal-pos/internal/domain/enum"
	"github.com/sangkips/fiscal-pos/pkg/pagination"
)

// ReversalFunc builds the compensating row for original
type ReversalFunc func(original *entity.LedgerEntry) (*entity.LedgerEntry, error)

// LedgerRepository defines the interface for the append-only ledger
type LedgerRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*entity.LedgerEntry, error)
	ListByOrder(ctx context.Context, orderID uuid.UUID) ([]entity.LedgerEntry, error)
	List(ctx context.Context, params *LedgerFilterParams) ([]entity.LedgerEntry, int64, error)
	// AppendReversal inserts the row returned by build. A row that already
	// has a reversal is rejected with a state error.
	AppendReversal(ctx context.Context, originalID uuid.UUID, build ReversalFunc) (*entity.LedgerEntry, error)
}

// LedgerFilterParams contains filtering parameters for ledger queries
type LedgerFilterParams struct {
	Pagination *pagination.PaginationParams
	Mode       *enum.Mode
	EntryType  *enum.LedgerEntryType
	InvoiceNo  *int64
}

// Matches reports whether row passes the filter
func (p *LedgerFilterParams) Matches(row *entity.LedgerEntry) bool {
	if p == nil {
		return true
	}
	if p.Mode != nil && row.Mode != *p.Mode {
		return false
	}
	if p.EntryType != nil && row.EntryType != *p.EntryType {
		return false
	}
	if p.InvoiceNo != nil && row.InvoiceNo != *p.InvoiceNo {
		return false
	}
	return true
}
