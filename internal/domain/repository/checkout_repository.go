package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/sangkips/fiscal-pos/internal/domain/entity"
	"github.com/sangkips/fiscal-pos/internal/domain/enum"
)

// FinalizeBatch is everything written by one finalize
type FinalizeBatch struct {
	Order  *entity.Order
	Ledger []entity.LedgerEntry
}

// FinalizeFunc builds the batch for an allocated invoice number. It runs
// while the mode's counter is locked and must not block.
type FinalizeFunc func(invoiceNo int64) (*FinalizeBatch, error)

// Compensation is the outcome of a post-hoc void or refund
type Compensation struct {
	Status    enum.OrderStatus
	Reversals []entity.LedgerEntry
}

// CompensateFunc builds the reversal rows for a finalized order and the rows already posted for it
type CompensateFunc func(order *entity.Order, posted []entity.LedgerEntry) (*Compensation, error)

// CheckoutRepository is the single atomic unit behind invoice allocation.
//
// Finalize locks the mode's invoice counter, allocates
// max(counter, max persisted invoice number) + 1, inserts the order and its
// ledger rows, advances the counter and the fiscal running totals, and
// commits. Any error rolls everything back so the number is not consumed.
// A unique violation on (mode, invoice_no) surfaces as an allocation conflict.
type CheckoutRepository interface {
	Finalize(ctx context.Context, mode enum.Mode, build FinalizeFunc) (*entity.Order, error)
	Compensate(ctx context.Context, orderID uuid.UUID, build CompensateFunc) (*entity.Order, error)
}
