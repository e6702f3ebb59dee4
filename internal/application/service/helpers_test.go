package service

import (
	"github.com/google/uuid"
	"github.com/sangkips/fiscal-pos/internal/domain/entity"
	"github.com/sangkips/fiscal-pos/internal/domain/enum"
	"github.com/sangkips/fiscal-pos/pkg/money"
)

func item(kind enum.ItemKind, name, price string) entity.EntryItem {
	id := uuid.New()
	return entity.EntryItem{Kind: kind, RefID: &id, Name: name, UnitPrice: money.MustNew(price)}
}

func exemptItem(kind enum.ItemKind, name, price string) entity.EntryItem {
	it := item(kind, name, price)
	it.TaxType = enum.TaxTypeExempt
	return it
}

func placeholder(price string) entity.EntryItem {
	return entity.EntryItem{Kind: enum.ItemKindPlaceholder, Name: "Coupon", UnitPrice: money.MustNew(price)}
}

func entry(no, qty int, items ...entity.EntryItem) entity.OrderEntry {
	return entity.OrderEntry{EntryNo: no, Quantity: qty, Items: items}
}

func orderOf(entries ...entity.OrderEntry) *entity.Order {
	return &entity.Order{ID: uuid.New(), Mode: enum.ModeLive, OrderType: enum.OrderTypeDineIn, Entries: entries}
}

func fixed(d interface{ StringFixed(int32) string }) string {
	return d.StringFixed(2)
}
