package service

import (
	"context"
	"testing"

	"github.com/sangkips/fiscal-pos/internal/domain/enum"
	"github.com/sangkips/fiscal-pos/internal/domain/repository"
	"github.com/sangkips/fiscal-pos/pkg/apperror"
	"github.com/sangkips/fiscal-pos/pkg/money"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalogService_CreateItemValidation(t *testing.T) {
	h := newHarness(t)
	svc := NewCatalogService(h.store.Catalog(), h.store.Promos())

	tests := []struct {
		name  string
		input CatalogItemInput
		field string
	}{
		{"missing code", CatalogItemInput{Name: "Pie", Kind: enum.ItemKindMenu, Price: money.MustNew("10")}, "code"},
		{"placeholder kind", CatalogItemInput{Code: "X", Name: "Pie", Kind: enum.ItemKindPlaceholder, Price: money.MustNew("10")}, "kind"},
		{"negative price", CatalogItemInput{Code: "X", Name: "Pie", Kind: enum.ItemKindMenu, Price: money.MustNew("-1")}, "price"},
		{"drink requiring add-on", CatalogItemInput{Code: "X", Name: "Cola", Kind: enum.ItemKindDrink, Price: money.MustNew("10"), RequiresAddOn: true}, "kind"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CreateItem(context.Background(), &tt.input)
			require.Error(t, err)
			assert.True(t, apperror.IsKind(err, apperror.KindValidation))
			assert.Equal(t, tt.field, apperror.GetAppError(err).Errors[0].Field)
		})
	}
}

func TestCatalogService_PriceChangeKeepsOpenOrders(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	svc := NewCatalogService(h.store.Catalog(), h.store.Promos())

	sid := h.open(t, h.cashier, enum.ModeLive)
	h.add(t, h.cashier, sid, 1, "M-SPG")

	item, err := svc.GetItem(ctx, h.items["M-SPG"])
	require.NoError(t, err)
	_, err = svc.UpdateItem(ctx, item.ID, &CatalogItemInput{
		Code:    item.Code,
		Name:    item.Name,
		Kind:    item.Kind,
		Price:   money.MustNew("199.999"),
		TaxType: item.TaxType,
	})
	require.NoError(t, err)

	updated, err := svc.GetItem(ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, "200.00", fixed(updated.Price))

	snap, err := h.orders.GetSession(ctx, h.cashier, sid)
	require.NoError(t, err)
	assert.Equal(t, fixed(item.Price), fixed(snap.Computation.Total))
}

func TestCatalogService_ListItemsByKind(t *testing.T) {
	h := newHarness(t)
	svc := NewCatalogService(h.store.Catalog(), h.store.Promos())

	kind := enum.ItemKindDrink
	drinks, err := svc.ListItems(context.Background(), &repository.CatalogFilterParams{Kind: &kind})
	require.NoError(t, err)
	require.NotEmpty(t, drinks)
	for _, d := range drinks {
		assert.Equal(t, enum.ItemKindDrink, d.Kind)
	}

	bad := enum.ItemKind("snack")
	_, err = svc.ListItems(context.Background(), &repository.CatalogFilterParams{Kind: &bad})
	assert.True(t, apperror.IsKind(err, apperror.KindValidation))
}

func TestCatalogService_SavePromo(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	svc := NewCatalogService(h.store.Catalog(), h.store.Promos())

	_, err := svc.SavePromo(ctx, &PromoInput{Code: "BOTH", Name: "Both", Amount: money.MustNew("10"), Percent: money.MustNew("5")})
	assert.True(t, apperror.IsKind(err, apperror.KindValidation))

	promo, err := svc.SavePromo(ctx, &PromoInput{Code: "tenoff", Name: "Ten off", Amount: money.MustNew("10")})
	require.NoError(t, err)
	assert.Equal(t, "TENOFF", promo.Code)
	assert.True(t, promo.IsActive)

	inactive := false
	_, err = svc.SavePromo(ctx, &PromoInput{Code: "TENOFF", Name: "Ten off", Amount: money.MustNew("10"), IsActive: &inactive})
	require.NoError(t, err)

	sid := h.open(t, h.cashier, enum.ModeLive)
	h.add(t, h.cashier, sid, 1, "M-SPG")
	_, err = h.orders.ApplyPromo(ctx, h.cashier, sid, "tenoff")
	assert.True(t, apperror.IsKind(err, apperror.KindState))
}
