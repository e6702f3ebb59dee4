package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/sangkips/fiscal-pos/internal/domain/entity"
	"github.com/sangkips/fiscal-pos/internal/domain/enum"
	domainRepo "github.com/sangkips/fiscal-pos/internal/domain/repository"
	"gorm.io/gorm"
)

type orderRepository struct {
	db *gorm.DB
}

// NewOrderRepository creates a new order repository
func NewOrderRepository(db *gorm.DB) domainRepo.OrderRepository {
	return &orderRepository{db: db}
}

// preloadOrder loads everything a receipt needs
func preloadOrder(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Entries", func(db *gorm.DB) *gorm.DB { return db.Order("entry_no ASC") }).
		Preload("Entries.Items").
		Preload("Tenders", func(db *gorm.DB) *gorm.DB { return db.Order("line_no ASC") }).
		Preload("Beneficiaries")
}

func (r *orderRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Order, error) {
	var order entity.Order
	err := preloadOrder(r.db.WithContext(ctx)).First(&order, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &order, err
}

func (r *orderRepository) GetByInvoiceNo(ctx context.Context, mode enum.Mode, invoiceNo int64) (*entity.Order, error) {
	var order entity.Order
	err := preloadOrder(r.db.WithContext(ctx)).
		Scopes(ModeScope(&mode)).
		First(&order, "invoice_no = ?", invoiceNo).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &order, err
}

func (r *orderRepository) List(ctx context.Context, params *domainRepo.OrderFilterParams) ([]entity.Order, int64, error) {
	var orders []entity.Order
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.Order{}).Scopes(orderFilter(params))
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if params != nil {
		query = query.Scopes(Paginate(params.Pagination))
	}
	err := query.
		Preload("Tenders", func(db *gorm.DB) *gorm.DB { return db.Order("line_no ASC") }).
		Order("finalized_at DESC").
		Find(&orders).Error
	return orders, total, err
}

// orderFilter turns the filter params into WHERE clauses
func orderFilter(params *domainRepo.OrderFilterParams) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if params == nil {
			return db
		}
		db = db.Scopes(ModeScope(params.Mode), DateRangeScope("finalized_at", params.StartDate, params.EndDate))
		if params.Status != nil {
			db = db.Where("status = ?", *params.Status)
		}
		if params.CashierID != nil {
			db = db.Where("cashier_id = ?", *params.CashierID)
		}
		if params.SessionID != nil {
			db = db.Where("session_id = ?", *params.SessionID)
		}
		return db
	}
}
