package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/fiscal-pos/internal/domain/entity"
	"github.com/sangkips/fiscal-pos/internal/domain/enum"
	domainRepo "github.com/sangkips/fiscal-pos/internal/domain/repository"
	"github.com/sangkips/fiscal-pos/pkg/apperror"
	"gorm.io/gorm"
)

type checkoutRepository struct {
	db *gorm.DB
}

// NewCheckoutRepository creates a new checkout repository
func NewCheckoutRepository(db *gorm.DB) domainRepo.CheckoutRepository {
	return &checkoutRepository{db: db}
}

func (r *checkoutRepository) Finalize(ctx context.Context, mode enum.Mode, build domainRepo.FinalizeFunc) (*entity.Order, error) {
	var order *entity.Order
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var counter entity.InvoiceCounter
		if err := tx.Scopes(forUpdate).First(&counter, "mode = ?", mode).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperror.NewNotFoundError("Invoice counter")
			}
			return err
		}

		// The counter can lag a restored database; never reuse a persisted number.
		var maxIssued int64
		if err := tx.Model(&entity.Order{}).
			Where("mode = ?", mode).
			Select("COALESCE(MAX(invoice_no), 0)").
			Scan(&maxIssued).Error; err != nil {
			return err
		}
		next := max(counter.LastInvoiceNo, maxIssued) + 1

		batch, err := build(next)
		if err != nil {
			return err
		}
		order = batch.Order
		if order.Mode != mode || order.InvoiceNo != next {
			return apperror.NewPersistenceError("Failed to finalize order",
				fmt.Errorf("batch carries invoice %s/%d, allocated %s/%d", order.Mode, order.InvoiceNo, mode, next))
		}

		if err := tx.Create(order).Error; err != nil {
			return err
		}
		if len(batch.Ledger) > 0 {
			if err := tx.Create(&batch.Ledger).Error; err != nil {
				return err
			}
		}

		if err := tx.Model(&counter).Updates(map[string]interface{}{
			"last_invoice_no": next,
			"updated_at":      time.Now(),
		}).Error; err != nil {
			return err
		}

		return r.applyState(tx, mode, func(state *entity.FiscalState) {
			state.Apply(order)
		})
	})
	if err != nil {
		return nil, writeError("Failed to finalize order", err)
	}
	return order, nil
}

func (r *checkoutRepository) Compensate(ctx context.Context, orderID uuid.UUID, build domainRepo.CompensateFunc) (*entity.Order, error) {
	var order entity.Order
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Scopes(forUpdate).First(&order, "id = ?", orderID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperror.NewNotFoundError("Order")
			}
			return err
		}
		if err := preloadOrder(tx).First(&order, "id = ?", orderID).Error; err != nil {
			return err
		}

		var posted []entity.LedgerEntry
		if err := tx.Where("order_id = ?", orderID).Order("posted_at ASC, line_no ASC").Find(&posted).Error; err != nil {
			return err
		}

		comp, err := build(order.Clone(), posted)
		if err != nil {
			return err
		}

		reversed := make(map[uuid.UUID]bool, len(posted))
		for i := range posted {
			if posted[i].IsReversal() {
				reversed[*posted[i].ReversesID] = true
			}
		}
		for _, row := range comp.Reversals {
			if row.ReversesID == nil {
				return apperror.NewPersistenceError("Failed to post reversal", fmt.Errorf("reversal row %q has no original", row.Description))
			}
			if reversed[*row.ReversesID] {
				return apperror.NewStateError("Ledger row already reversed")
			}
			reversed[*row.ReversesID] = true
		}
		if len(comp.Reversals) > 0 {
			if err := tx.Create(&comp.Reversals).Error; err != nil {
				if isUniqueViolation(err) {
					return apperror.NewStateError("Ledger row already reversed")
				}
				return err
			}
		}

		order.Status = comp.Status
		order.UpdatedAt = time.Now()
		if err := tx.Model(&entity.Order{}).Where("id = ?", orderID).Updates(map[string]interface{}{
			"status":     order.Status,
			"updated_at": order.UpdatedAt,
		}).Error; err != nil {
			return err
		}

		return r.applyState(tx, order.Mode, func(state *entity.FiscalState) {
			switch comp.Status {
			case enum.OrderStatusCancelled:
				state.ApplyVoid(&order)
			case enum.OrderStatusReturned:
				state.ApplyRefund(&order)
			}
		})
	})
	if err != nil {
		return nil, writeError("Failed to compensate order", err)
	}
	return &order, nil
}

// applyState locks the mode's fiscal state, mutates it and saves it inside tx
func (r *checkoutRepository) applyState(tx *gorm.DB, mode enum.Mode, fn func(state *entity.FiscalState)) error {
	var state entity.FiscalState
	if err := tx.Scopes(forUpdate).First(&state, "mode = ?", mode).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperror.NewNotFoundError("Fiscal state")
		}
		return err
	}
	if state.Payments == nil {
		state.Payments = entity.PaymentBreakdown{}
	}
	fn(&state)
	state.UpdatedAt = time.Now()
	return tx.Save(&state).Error
}

// writeError keeps domain errors and classifies driver errors
func writeError(message string, err error) error {
	if apperror.IsAppError(err) {
		return err
	}
	if isUniqueViolation(err) {
		return apperror.NewAllocationConflictError(err)
	}
	return apperror.NewPersistenceError(message, err)
}
