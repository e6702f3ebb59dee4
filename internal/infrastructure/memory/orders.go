package memory

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/sangkips/fiscal-pos/internal/domain/entity"
	"github.com/sangkips/fiscal-pos/internal/domain/enum"
	domainRepo "github.com/sangkips/fiscal-pos/internal/domain/repository"
	"github.com/sangkips/fiscal-pos/pkg/apperror"
	"github.com/sangkips/fiscal-pos/pkg/pagination"
)

type orderRepository struct {
	s *Store
}

func (r *orderRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Order, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	o, ok := r.s.orders[id]
	if !ok {
		return nil, nil
	}
	return o.Clone(), nil
}

func (r *orderRepository) GetByInvoiceNo(ctx context.Context, mode enum.Mode, invoiceNo int64) (*entity.Order, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	id, ok := r.s.invoices[mode][invoiceNo]
	if !ok {
		return nil, nil
	}
	return r.s.orders[id].Clone(), nil
}

func (r *orderRepository) List(ctx context.Context, params *domainRepo.OrderFilterParams) ([]entity.Order, int64, error) {
	r.s.mu.RLock()
	orders := r.s.filterOrders(params)
	r.s.mu.RUnlock()

	sort.Slice(orders, func(i, j int) bool {
		return orders[i].FinalizedAt.After(*orders[j].FinalizedAt)
	})
	var page *pagination.PaginationParams
	if params != nil {
		page = params.Pagination
	}
	return pagination.Window(orders, page), int64(len(orders)), nil
}

// filterOrders returns copies of matching orders; callers hold mu
func (s *Store) filterOrders(params *domainRepo.OrderFilterParams) []entity.Order {
	orders := make([]entity.Order, 0)
	for _, o := range s.orders {
		if params.Matches(o) {
			orders = append(orders, *o.Clone())
		}
	}
	return orders
}

type checkoutRepository struct {
	s *Store
}

func (r *checkoutRepository) Finalize(ctx context.Context, mode enum.Mode, build domainRepo.FinalizeFunc) (*entity.Order, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.counters[mode]
	for no := range s.invoices[mode] {
		if no > next {
			next = no
		}
	}
	next++

	batch, err := build(next)
	if err != nil {
		return nil, err
	}
	order := batch.Order.Clone()
	if order.Mode != mode || order.InvoiceNo != next {
		return nil, apperror.NewPersistenceError("Failed to finalize order", fmt.Errorf("batch carries invoice %s/%d, allocated %s/%d", order.Mode, order.InvoiceNo, mode, next))
	}
	if _, taken := s.invoices[mode][next]; taken {
		return nil, apperror.NewAllocationConflictError(fmt.Errorf("invoice %d already issued in %s mode", next, mode))
	}
	if _, exists := s.orders[order.ID]; exists {
		return nil, apperror.NewAllocationConflictError(fmt.Errorf("order %s already finalized", order.ID))
	}

	// Stage every write; nothing is visible until all of them succeed.
	assignOrderIDs(order)
	staged := make([]entity.LedgerEntry, 0, len(batch.Ledger))
	for i, row := range batch.Ledger {
		if s.failOnLedgerRow == i+1 {
			s.failOnLedgerRow = 0
			return nil, apperror.NewPersistenceError("Failed to post ledger", errInjected)
		}
		if row.ID == uuid.Nil {
			row.ID = uuid.New()
		}
		staged = append(staged, row)
	}
	state := s.states[mode].Clone()
	state.Apply(order)
	state.UpdatedAt = s.now()

	s.orders[order.ID] = order
	s.invoices[mode][next] = order.ID
	s.counters[mode] = next
	s.ledger = append(s.ledger, staged...)
	s.states[mode] = state
	return order.Clone(), nil
}

func (r *checkoutRepository) Compensate(ctx context.Context, orderID uuid.UUID, build domainRepo.CompensateFunc) (*entity.Order, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.orders[orderID]
	if !ok {
		return nil, apperror.NewNotFoundError("Order")
	}
	posted := make([]entity.LedgerEntry, 0)
	for _, row := range s.ledger {
		if row.OrderID == orderID {
			posted = append(posted, row)
		}
	}

	comp, err := build(stored.Clone(), posted)
	if err != nil {
		return nil, err
	}
	seen := map[uuid.UUID]bool{}
	staged := make([]entity.LedgerEntry, 0, len(comp.Reversals))
	for _, row := range comp.Reversals {
		if row.ReversesID == nil {
			return nil, apperror.NewPersistenceError("Failed to post reversal", fmt.Errorf("reversal row %q has no original", row.Description))
		}
		if _, done := s.reversedBy[*row.ReversesID]; done || seen[*row.ReversesID] {
			return nil, apperror.NewStateError("Ledger row already reversed")
		}
		seen[*row.ReversesID] = true
		if row.ID == uuid.Nil {
			row.ID = uuid.New()
		}
		staged = append(staged, row)
	}

	order := stored.Clone()
	order.Status = comp.Status
	order.UpdatedAt = s.now()
	state := s.states[order.Mode].Clone()
	switch comp.Status {
	case enum.OrderStatusCancelled:
		state.ApplyVoid(order)
	case enum.OrderStatusReturned:
		state.ApplyRefund(order)
	}
	state.UpdatedAt = order.UpdatedAt

	for _, row := range staged {
		s.reversedBy[*row.ReversesID] = row.ID
	}
	s.ledger = append(s.ledger, staged...)
	s.orders[orderID] = order
	s.states[order.Mode] = state
	return order.Clone(), nil
}

// assignOrderIDs fills the keys gorm would set in BeforeCreate
func assignOrderIDs(o *entity.Order) {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	for i := range o.Entries {
		e := &o.Entries[i]
		if e.ID == uuid.Nil {
			e.ID = uuid.New()
		}
		e.OrderID = o.ID
		for j := range e.Items {
			if e.Items[j].ID == uuid.Nil {
				e.Items[j].ID = uuid.New()
			}
			e.Items[j].EntryID = e.ID
		}
	}
	for i := range o.Tenders {
		if o.Tenders[i].ID == uuid.Nil {
			o.Tenders[i].ID = uuid.New()
		}
		o.Tenders[i].OrderID = o.ID
	}
	for i := range o.Beneficiaries {
		if o.Beneficiaries[i].ID == uuid.Nil {
			o.Beneficiaries[i].ID = uuid.New()
		}
		o.Beneficiaries[i].OrderID = o.ID
	}
}
