package memory

import (
	"context"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/sangkips/fiscal-pos/internal/domain/entity"
	domainRepo "github.com/sangkips/fiscal-pos/internal/domain/repository"
	"github.com/sangkips/fiscal-pos/pkg/apperror"
)

type catalogRepository struct {
	s *Store
}

func (r *catalogRepository) Create(ctx context.Context, item *entity.CatalogItem) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.catalog {
		if strings.EqualFold(existing.Code, item.Code) {
			return apperror.NewConflictError("Catalog code already exists")
		}
	}
	if item.ID == uuid.Nil {
		item.ID = uuid.New()
	}
	item.CreatedAt = r.s.now()
	item.UpdatedAt = item.CreatedAt
	r.s.catalog[item.ID] = *item
	return nil
}

func (r *catalogRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.CatalogItem, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	item, ok := r.s.catalog[id]
	if !ok {
		return nil, nil
	}
	return &item, nil
}

func (r *catalogRepository) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]entity.CatalogItem, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	items := make([]entity.CatalogItem, 0, len(ids))
	for _, id := range ids {
		if item, ok := r.s.catalog[id]; ok {
			items = append(items, item)
		}
	}
	return items, nil
}

func (r *catalogRepository) Update(ctx context.Context, item *entity.CatalogItem) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	existing, ok := r.s.catalog[item.ID]
	if !ok {
		return apperror.NewNotFoundError("Catalog item")
	}
	item.CreatedAt = existing.CreatedAt
	item.UpdatedAt = r.s.now()
	r.s.catalog[item.ID] = *item
	return nil
}

func (r *catalogRepository) List(ctx context.Context, params *domainRepo.CatalogFilterParams) ([]entity.CatalogItem, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	items := make([]entity.CatalogItem, 0, len(r.s.catalog))
	for _, item := range r.s.catalog {
		if params != nil {
			if params.Kind != nil && item.Kind != *params.Kind {
				continue
			}
			if params.ActiveOnly && !item.IsActive {
				continue
			}
			if params.Search != "" && !strings.Contains(strings.ToLower(item.Name), strings.ToLower(params.Search)) {
				continue
			}
		}
		items = append(items, item)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].Code < items[j].Code })
	return items, nil
}

type promoRepository struct {
	s *Store
}

func (r *promoRepository) Create(ctx context.Context, promo *entity.PromoCode) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	key := strings.ToUpper(promo.Code)
	if _, exists := r.s.promos[key]; exists {
		return apperror.NewConflictError("Promo code already exists")
	}
	if promo.ID == uuid.Nil {
		promo.ID = uuid.New()
	}
	promo.CreatedAt = r.s.now()
	promo.UpdatedAt = promo.CreatedAt
	r.s.promos[key] = *promo
	return nil
}

func (r *promoRepository) GetByCode(ctx context.Context, code string) (*entity.PromoCode, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	promo, ok := r.s.promos[strings.ToUpper(code)]
	if !ok {
		return nil, nil
	}
	return &promo, nil
}

func (r *promoRepository) Update(ctx context.Context, promo *entity.PromoCode) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	key := strings.ToUpper(promo.Code)
	existing, ok := r.s.promos[key]
	if !ok {
		return apperror.NewNotFoundError("Promo code")
	}
	promo.ID = existing.ID
	promo.CreatedAt = existing.CreatedAt
	promo.UpdatedAt = r.s.now()
	r.s.promos[key] = *promo
	return nil
}

func (r *promoRepository) List(ctx context.Context) ([]entity.PromoCode, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	promos := make([]entity.PromoCode, 0, len(r.s.promos))
	for _, p := range r.s.promos {
		promos = append(promos, p)
	}
	sort.Slice(promos, func(i, j int) bool { return promos[i].Code < promos[j].Code })
	return promos, nil
}
