package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/fiscal-pos/internal/domain/entity"
	"github.com/sangkips/fiscal-pos/internal/domain/enum"
	"github.com/sangkips/fiscal-pos/pkg/pagination"
)

// OrderRepository reads finalized orders. Orders are written only through
// CheckoutRepository.
type OrderRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Order, error)
	GetByInvoiceNo(ctx context.Context, mode enum.Mode, invoiceNo int64) (*entity.Order, error)
	List(ctx context.Context, params *OrderFilterParams) ([]entity.Order, int64, error)
}

// OrderFilterParams contains filtering parameters for order queries
type OrderFilterParams struct {
	Pagination *pagination.PaginationParams
	Mode       *enum.Mode
	Status     *enum.OrderStatus
	CashierID  *uuid.UUID
	SessionID  *uuid.UUID
	StartDate  *time.Time
	EndDate    *time.Time
}

// Matches reports whether o passes the filter; used by stores that filter in memory
func (p *OrderFilterParams) Matches(o *entity.Order) bool {
	if p == nil {
		return true
	}
	if p.Mode != nil && o.Mode != *p.Mode {
		return false
	}
	if p.Status != nil && o.Status != *p.Status {
		return false
	}
	if p.CashierID != nil && o.CashierID != *p.CashierID {
		return false
	}
	if p.SessionID != nil && o.SessionID != *p.SessionID {
		return false
	}
	if o.FinalizedAt != nil {
		if p.StartDate != nil && o.FinalizedAt.Before(*p.StartDate) {
			return false
		}
		if p.EndDate != nil && o.FinalizedAt.After(*p.EndDate) {
			return false
		}
	}
	return true
}
