package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/fiscal-pos/internal/domain/entity"
	"github.com/sangkips/fiscal-pos/internal/domain/enum"
	domainRepo "github.com/sangkips/fiscal-pos/internal/domain/repository"
	"github.com/sangkips/fiscal-pos/pkg/apperror"
	"github.com/sangkips/fiscal-pos/pkg/pagination"
	"gorm.io/gorm"
)

type fiscalRepository struct {
	db *gorm.DB
}

// NewFiscalRepository creates a new fiscal repository
func NewFiscalRepository(db *gorm.DB) domainRepo.FiscalRepository {
	return &fiscalRepository{db: db}
}

func (r *fiscalRepository) GetState(ctx context.Context, mode enum.Mode) (*entity.FiscalState, error) {
	var state entity.FiscalState
	err := r.db.WithContext(ctx).First(&state, "mode = ?", mode).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &state, err
}

func (r *fiscalRepository) Snapshot(ctx context.Context, mode enum.Mode, shift *domainRepo.ShiftFilter) (*domainRepo.Snapshot, error) {
	snap := &domainRepo.Snapshot{}
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		state, err := lockState(tx.Scopes(forShare), mode)
		if err != nil {
			return err
		}
		snap.State = state
		snap.At = time.Now()
		if shift == nil {
			return nil
		}

		var orders []entity.Order
		if err := tx.Scopes(orderFilter(&domainRepo.OrderFilterParams{
			Mode:      &mode,
			SessionID: shift.SessionID,
			CashierID: shift.CashierID,
			StartDate: &shift.Since,
		})).
			Preload("Tenders").
			Preload("Beneficiaries").
			Order("invoice_no ASC").
			Find(&orders).Error; err != nil {
			return err
		}

		query := tx.Scopes(ModeScope(&mode)).Where("created_at >= ?", shift.Since)
		if shift.SessionID != nil {
			query = query.Where("session_id = ?", *shift.SessionID)
		}
		if shift.CashierID != nil {
			query = query.Where("cashier_id = ?", *shift.CashierID)
		}
		var withdrawals []entity.CashWithdrawal
		if err := query.Order("created_at ASC").Find(&withdrawals).Error; err != nil {
			return err
		}

		totals := entity.BuildTotals(orders, withdrawals)
		snap.Shift = &totals
		return nil
	})
	if err != nil {
		return nil, err
	}
	return snap, nil
}

func (r *fiscalRepository) UpdateState(ctx context.Context, mode enum.Mode, fn func(state *entity.FiscalState) error) (*entity.FiscalState, error) {
	var state *entity.FiscalState
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		state, err = lockState(tx.Scopes(forUpdate), mode)
		if err != nil {
			return err
		}
		if err := fn(state); err != nil {
			return err
		}
		state.UpdatedAt = time.Now()
		return tx.Save(state).Error
	})
	if err != nil {
		return nil, err
	}
	return state, nil
}

func (r *fiscalRepository) CloseDay(ctx context.Context, mode enum.Mode, fn func(state *entity.FiscalState) (*entity.ZReading, error)) (*entity.ZReading, error) {
	var z *entity.ZReading
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		state, err := lockState(tx.Scopes(forUpdate), mode)
		if err != nil {
			return err
		}
		z, err = fn(state)
		if err != nil {
			return err
		}

		var existing entity.ZReading
		err = tx.Scopes(ModeScope(&mode)).
			Where("business_date = ? OR z_counter = ?", z.BusinessDate, z.ZCounter).
			First(&existing).Error
		switch {
		case err == nil && existing.BusinessDate == z.BusinessDate:
			return apperror.NewStateError("Z reading already generated for " + z.BusinessDate)
		case err == nil:
			return apperror.NewStateError("Z counter already used")
		case !errors.Is(err, gorm.ErrRecordNotFound):
			return err
		}

		if err := tx.Create(z).Error; err != nil {
			if isUniqueViolation(err) {
				return apperror.NewStateError("Z reading already generated for " + z.BusinessDate)
			}
			return err
		}
		state.UpdatedAt = z.CreatedAt
		return tx.Save(state).Error
	})
	if err != nil {
		return nil, err
	}
	return z, nil
}

func (r *fiscalRepository) RecordWithdrawal(ctx context.Context, w *entity.CashWithdrawal) (*entity.FiscalState, error) {
	var state *entity.FiscalState
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		state, err = lockState(tx.Scopes(forUpdate), w.Mode)
		if err != nil {
			return err
		}
		if err := tx.Create(w).Error; err != nil {
			return err
		}
		state.ApplyWithdrawal(w)
		state.UpdatedAt = w.CreatedAt
		return tx.Save(state).Error
	})
	if err != nil {
		return nil, err
	}
	return state, nil
}

func (r *fiscalRepository) ListZReadings(ctx context.Context, mode enum.Mode, params *pagination.PaginationParams) ([]entity.ZReading, int64, error) {
	var readings []entity.ZReading
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.ZReading{}).Scopes(ModeScope(&mode))
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := query.Scopes(Paginate(params)).Order("z_counter DESC").Find(&readings).Error
	return readings, total, err
}

func (r *fiscalRepository) GetZReading(ctx context.Context, id uuid.UUID) (*entity.ZReading, error) {
	var z entity.ZReading
	err := r.db.WithContext(ctx).First(&z, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &z, err
}

// lockState reads the mode's state through a locking query
func lockState(db *gorm.DB, mode enum.Mode) (*entity.FiscalState, error) {
	var state entity.FiscalState
	if err := db.First(&state, "mode = ?", mode).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NewNotFoundError("Fiscal state")
		}
		return nil, err
	}
	if state.Payments == nil {
		state.Payments = entity.PaymentBreakdown{}
	}
	return &state, nil
}
