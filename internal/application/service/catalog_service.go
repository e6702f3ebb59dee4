package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/fiscal-pos/internal/domain/entity"
	"github.com/sangkips/fiscal-pos/internal/domain/enum"
	"github.com/sangkips/fiscal-pos/internal/domain/repository"
	"github.com/sangkips/fiscal-pos/pkg/apperror"
	"github.com/sangkips/fiscal-pos/pkg/money"
	"github.com/shopspring/decimal"
)

// CatalogService handles menu items, drinks, add-ons and promo codes.
// Price changes never touch open orders: entries copy the price when added.
type CatalogService struct {
	catalogRepo repository.CatalogRepository
	promoRepo   repository.PromoRepository
}

// NewCatalogService creates a new catalog service
func NewCatalogService(catalogRepo repository.CatalogRepository, promoRepo repository.PromoRepository) *CatalogService {
	return &CatalogService{
		catalogRepo: catalogRepo,
		promoRepo:   promoRepo,
	}
}

// ListItems returns catalog items, optionally filtered by kind and search term
func (s *CatalogService) ListItems(ctx context.Context, params *repository.CatalogFilterParams) ([]entity.CatalogItem, error) {
	if params == nil {
		params = &repository.CatalogFilterParams{}
	}
	if params.Kind != nil && !params.Kind.Valid() {
		return nil, apperror.NewFieldError("kind", "kind must be menu, drink or add_on")
	}
	items, err := s.catalogRepo.List(ctx, params)
	if err != nil {
		return nil, apperror.NewPersistenceError("Failed to list catalog", err)
	}
	return items, nil
}

// GetItem returns a catalog item by ID
func (s *CatalogService) GetItem(ctx context.Context, id uuid.UUID) (*entity.CatalogItem, error) {
	item, err := s.catalogRepo.GetByID(ctx, id)
	if err != nil {
		return nil, apperror.NewPersistenceError("Failed to load catalog item", err)
	}
	if item == nil {
		return nil, apperror.NewNotFoundError("Catalog item")
	}
	return item, nil
}

// CatalogItemInput represents the create/update catalog item input
type CatalogItemInput struct {
	Code          string
	Name          string
	Kind          enum.ItemKind
	Price         decimal.Decimal
	TaxType       enum.TaxType
	RequiresDrink bool
	RequiresAddOn bool
	IsActive      *bool
}

func (in *CatalogItemInput) validate() error {
	var fieldErrors []apperror.FieldError
	if strings.TrimSpace(in.Code) == "" {
		fieldErrors = append(fieldErrors, apperror.FieldError{Field: "code", Message: "code is required"})
	}
	if strings.TrimSpace(in.Name) == "" {
		fieldErrors = append(fieldErrors, apperror.FieldError{Field: "name", Message: "name is required"})
	}
	if !in.Kind.Valid() || in.Kind == enum.ItemKindPlaceholder {
		fieldErrors = append(fieldErrors, apperror.FieldError{Field: "kind", Message: "kind must be menu, drink or add_on"})
	}
	if in.Price.IsNegative() {
		fieldErrors = append(fieldErrors, apperror.FieldError{Field: "price", Message: "price cannot be negative"})
	}
	if in.TaxType < enum.TaxTypeVATable || in.TaxType > enum.TaxTypeZeroRated {
		fieldErrors = append(fieldErrors, apperror.FieldError{Field: "tax_type", Message: "tax type is invalid"})
	}
	if in.Kind != enum.ItemKindMenu && (in.RequiresDrink || in.RequiresAddOn) {
		fieldErrors = append(fieldErrors, apperror.FieldError{Field: "kind", Message: "only menu items can require a drink or add-on"})
	}
	if len(fieldErrors) > 0 {
		return apperror.NewValidationError(fieldErrors)
	}
	return nil
}

func (in *CatalogItemInput) apply(item *entity.CatalogItem) {
	item.Code = strings.ToUpper(strings.TrimSpace(in.Code))
	item.Name = strings.TrimSpace(in.Name)
	item.Kind = in.Kind
	item.Price = money.Round(in.Price)
	item.TaxType = in.TaxType
	item.RequiresDrink = in.RequiresDrink
	item.RequiresAddOn = in.RequiresAddOn
	if in.IsActive != nil {
		item.IsActive = *in.IsActive
	}
}

// CreateItem creates a new catalog item
func (s *CatalogService) CreateItem(ctx context.Context, input *CatalogItemInput) (*entity.CatalogItem, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}
	item := &entity.CatalogItem{IsActive: true}
	input.apply(item)
	if err := s.catalogRepo.Create(ctx, item); err != nil {
		if apperror.IsAppError(err) {
			return nil, err
		}
		return nil, apperror.NewPersistenceError("Failed to create catalog item", err)
	}
	return item, nil
}

// UpdateItem updates a catalog item
func (s *CatalogService) UpdateItem(ctx context.Context, id uuid.UUID, input *CatalogItemInput) (*entity.CatalogItem, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}
	item, err := s.GetItem(ctx, id)
	if err != nil {
		return nil, err
	}
	input.apply(item)
	if err := s.catalogRepo.Update(ctx, item); err != nil {
		if apperror.IsAppError(err) {
			return nil, err
		}
		return nil, apperror.NewPersistenceError("Failed to update catalog item", err)
	}
	return item, nil
}

// ListPromos returns every promo code
func (s *CatalogService) ListPromos(ctx context.Context) ([]entity.PromoCode, error) {
	promos, err := s.promoRepo.List(ctx)
	if err != nil {
		return nil, apperror.NewPersistenceError("Failed to list promos", err)
	}
	return promos, nil
}

// PromoInput represents the create/update promo input. Exactly one of
// Amount and Percent must be positive.
type PromoInput struct {
	Code      string
	Name      string
	Amount    decimal.Decimal
	Percent   decimal.Decimal
	ValidFrom *time.Time
	ValidTo   *time.Time
	IsActive  *bool
}

func (in *PromoInput) validate() error {
	var fieldErrors []apperror.FieldError
	if strings.TrimSpace(in.Code) == "" {
		fieldErrors = append(fieldErrors, apperror.FieldError{Field: "code", Message: "code is required"})
	}
	if strings.TrimSpace(in.Name) == "" {
		fieldErrors = append(fieldErrors, apperror.FieldError{Field: "name", Message: "name is required"})
	}
	if in.Amount.IsPositive() == in.Percent.IsPositive() || in.Amount.IsNegative() || in.Percent.IsNegative() {
		fieldErrors = append(fieldErrors, apperror.FieldError{Field: "amount", Message: "set either a fixed amount or a percent"})
	}
	if in.Percent.GreaterThan(decimal.NewFromInt(100)) {
		fieldErrors = append(fieldErrors, apperror.FieldError{Field: "percent", Message: "percent cannot exceed 100"})
	}
	if in.ValidFrom != nil && in.ValidTo != nil && in.ValidTo.Before(*in.ValidFrom) {
		fieldErrors = append(fieldErrors, apperror.FieldError{Field: "valid_to", Message: "valid_to must not be before valid_from"})
	}
	if len(fieldErrors) > 0 {
		return apperror.NewValidationError(fieldErrors)
	}
	return nil
}

// SavePromo creates the promo or replaces the one with the same code
func (s *CatalogService) SavePromo(ctx context.Context, input *PromoInput) (*entity.PromoCode, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}
	promo := &entity.PromoCode{
		Code:      strings.ToUpper(strings.TrimSpace(input.Code)),
		Name:      strings.TrimSpace(input.Name),
		Amount:    money.Round(input.Amount),
		Percent:   input.Percent,
		ValidFrom: input.ValidFrom,
		ValidTo:   input.ValidTo,
		IsActive:  input.IsActive == nil || *input.IsActive,
	}

	existing, err := s.promoRepo.GetByCode(ctx, promo.Code)
	if err != nil {
		return nil, apperror.NewPersistenceError("Failed to load promo", err)
	}
	if existing == nil {
		err = s.promoRepo.Create(ctx, promo)
	} else {
		err = s.promoRepo.Update(ctx, promo)
	}
	if err != nil {
		if apperror.IsAppError(err) {
			return nil, err
		}
		return nil, apperror.NewPersistenceError("Failed to save promo", err)
	}
	return promo, nil
}
