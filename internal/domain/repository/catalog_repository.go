package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/sangkips/fiscal-pos/internal/domain/entity"
	"github.com/sangkips/fiscal-pos/internal/domain/enum"
)

// CatalogRepository defines the interface for catalog item data operations
type CatalogRepository interface {
	Create(ctx context.Context, item *entity.CatalogItem) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.CatalogItem, error)
	GetByIDs(ctx context.Context, ids []uuid.UUID) ([]entity.CatalogItem, error)
	Update(ctx context.Context, item *entity.CatalogItem) error
	List(ctx context.Context, params *CatalogFilterParams) ([]entity.CatalogItem, error)
}

// CatalogFilterParams contains filtering parameters for catalog queries
type CatalogFilterParams struct {
	Kind       *enum.ItemKind
	Search     string
	ActiveOnly bool
}

// PromoRepository defines the interface for promo code data operations
type PromoRepository interface {
	Create(ctx context.Context, promo *entity.PromoCode) error
	GetByCode(ctx context.Context, code string) (*entity.PromoCode, error)
	Update(ctx context.Context, promo *entity.PromoCode) error
	List(ctx context.Context) ([]entity.PromoCode, error)
}
