package repository

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/sangkips/fiscal-pos/internal/domain/entity"
	domainRepo "github.com/sangkips/fiscal-pos/internal/domain/repository"
	"github.com/sangkips/fiscal-pos/pkg/apperror"
	"gorm.io/gorm"
)

type catalogRepository struct {
	db *gorm.DB
}

// NewCatalogRepository creates a new catalog repository
func NewCatalogRepository(db *gorm.DB) domainRepo.CatalogRepository {
	return &catalogRepository{db: db}
}

func (r *catalogRepository) Create(ctx context.Context, item *entity.CatalogItem) error {
	// Select("*") so an inactive item is not overwritten by the column default
	err := r.db.WithContext(ctx).Select("*").Create(item).Error
	if isUniqueViolation(err) {
		return apperror.NewConflictError("Catalog code already exists")
	}
	return err
}

func (r *catalogRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.CatalogItem, error) {
	var item entity.CatalogItem
	err := r.db.WithContext(ctx).First(&item, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &item, err
}

func (r *catalogRepository) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]entity.CatalogItem, error) {
	var items []entity.CatalogItem
	if len(ids) == 0 {
		return items, nil
	}
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&items).Error
	return items, err
}

func (r *catalogRepository) Update(ctx context.Context, item *entity.CatalogItem) error {
	result := r.db.WithContext(ctx).Model(item).Select("*").Omit("created_at").Updates(item)
	if result.Error != nil {
		if isUniqueViolation(result.Error) {
			return apperror.NewConflictError("Catalog code already exists")
		}
		return result.Error
	}
	if result.RowsAffected == 0 {
		return apperror.NewNotFoundError("Catalog item")
	}
	return nil
}

func (r *catalogRepository) List(ctx context.Context, params *domainRepo.CatalogFilterParams) ([]entity.CatalogItem, error) {
	var items []entity.CatalogItem

	query := r.db.WithContext(ctx).Model(&entity.CatalogItem{})
	if params != nil {
		if params.Kind != nil {
			query = query.Where("kind = ?", *params.Kind)
		}
		if params.ActiveOnly {
			query = query.Where("is_active = ?", true)
		}
		if params.Search != "" {
			query = query.Where("name ILIKE ?", "%"+params.Search+"%")
		}
	}

	err := query.Order("code ASC").Find(&items).Error
	return items, err
}

type promoRepository struct {
	db *gorm.DB
}

// NewPromoRepository creates a new promo code repository
func NewPromoRepository(db *gorm.DB) domainRepo.PromoRepository {
	return &promoRepository{db: db}
}

func (r *promoRepository) Create(ctx context.Context, promo *entity.PromoCode) error {
	promo.Code = strings.ToUpper(promo.Code)
	err := r.db.WithContext(ctx).Select("*").Create(promo).Error
	if isUniqueViolation(err) {
		return apperror.NewConflictError("Promo code already exists")
	}
	return err
}

func (r *promoRepository) GetByCode(ctx context.Context, code string) (*entity.PromoCode, error) {
	var promo entity.PromoCode
	err := r.db.WithContext(ctx).First(&promo, "code = ?", strings.ToUpper(code)).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &promo, err
}

func (r *promoRepository) Update(ctx context.Context, promo *entity.PromoCode) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing entity.PromoCode
		if err := tx.Scopes(forUpdate).First(&existing, "code = ?", strings.ToUpper(promo.Code)).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperror.NewNotFoundError("Promo code")
			}
			return err
		}
		promo.ID = existing.ID
		promo.Code = existing.Code
		promo.CreatedAt = existing.CreatedAt
		return tx.Save(promo).Error
	})
}

func (r *promoRepository) List(ctx context.Context) ([]entity.PromoCode, error) {
	var promos []entity.PromoCode
	err := r.db.WithContext(ctx).Order("code ASC").Find(&promos).Error
	return promos, err
}
