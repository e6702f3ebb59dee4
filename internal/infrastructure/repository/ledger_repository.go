package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/sangkips/fiscal-pos/internal/domain/entity"
	domainRepo "github.com/sangkips/fiscal-pos/internal/domain/repository"
	"github.com/sangkips/fiscal-pos/pkg/apperror"
	"gorm.io/gorm"
)

type ledgerRepository struct {
	db *gorm.DB
}

// NewLedgerRepository creates a new ledger repository. Rows are only ever inserted.
func NewLedgerRepository(db *gorm.DB) domainRepo.LedgerRepository {
	return &ledgerRepository{db: db}
}

func (r *ledgerRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.LedgerEntry, error) {
	var row entity.LedgerEntry
	err := r.db.WithContext(ctx).First(&row, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &row, err
}

func (r *ledgerRepository) ListByOrder(ctx context.Context, orderID uuid.UUID) ([]entity.LedgerEntry, error) {
	var rows []entity.LedgerEntry
	err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("posted_at ASC, line_no ASC").
		Find(&rows).Error
	return rows, err
}

func (r *ledgerRepository) List(ctx context.Context, params *domainRepo.LedgerFilterParams) ([]entity.LedgerEntry, int64, error) {
	var rows []entity.LedgerEntry
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.LedgerEntry{})
	if params != nil {
		query = query.Scopes(ModeScope(params.Mode))
		if params.EntryType != nil {
			query = query.Where("entry_type = ?", *params.EntryType)
		}
		if params.InvoiceNo != nil {
			query = query.Where("invoice_no = ?", *params.InvoiceNo)
		}
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if params != nil {
		query = query.Scopes(Paginate(params.Pagination))
	}
	err := query.Order("posted_at DESC, line_no DESC").Find(&rows).Error
	return rows, total, err
}

func (r *ledgerRepository) AppendReversal(ctx context.Context, originalID uuid.UUID, build domainRepo.ReversalFunc) (*entity.LedgerEntry, error) {
	var reversal *entity.LedgerEntry
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var original entity.LedgerEntry
		if err := tx.Scopes(forUpdate).First(&original, "id = ?", originalID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperror.NewNotFoundError("Ledger row")
			}
			return err
		}

		var existing int64
		if err := tx.Model(&entity.LedgerEntry{}).Where("reverses_id = ?", originalID).Count(&existing).Error; err != nil {
			return err
		}
		if existing > 0 {
			return apperror.NewStateError("Ledger row already reversed")
		}

		row, err := build(&original)
		if err != nil {
			return err
		}
		if row.ReversesID == nil || *row.ReversesID != originalID {
			return apperror.NewPersistenceError("Failed to post reversal", fmt.Errorf("row does not reference %s", originalID))
		}
		if err := tx.Create(row).Error; err != nil {
			if isUniqueViolation(err) {
				return apperror.NewStateError("Ledger row already reversed")
			}
			return err
		}
		reversal = row
		return nil
	})
	if err != nil {
		return nil, writeError("Failed to post reversal", err)
	}
	return reversal, nil
}
