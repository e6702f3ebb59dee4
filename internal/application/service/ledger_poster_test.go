package service

import (
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/fiscal-pos/internal/domain/entity"
	"github.com/sangkips/fiscal-pos/internal/domain/enum"
	"github.com/sangkips/fiscal-pos/pkg/apperror"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func posterItem(kind enum.ItemKind, name, price string) entity.EntryItem {
	ref := uuid.New()
	return entity.EntryItem{Kind: kind, RefID: &ref, Name: name, UnitPrice: decimal.RequireFromString(price)}
}

func posterOrder() *entity.Order {
	return &entity.Order{
		ID:        uuid.New(),
		Mode:      enum.ModeLive,
		InvoiceNo: 7,
		CashierID: uuid.New(),
		AmountDue: decimal.NewFromInt(565),
		Entries: []entity.OrderEntry{{
			EntryNo:  1,
			Quantity: 1,
			Items: []entity.EntryItem{
				posterItem(enum.ItemKindMenu, "Family Meal", "500"),
				posterItem(enum.ItemKindDrink, "Iced Tea Pitcher", "65"),
			},
		}},
		Tenders: []entity.TenderLine{
			{LineNo: 1, Kind: enum.TenderKindCash, PaymentType: "Cash", Amount: decimal.NewFromInt(600)},
		},
	}
}

func TestBuildLedgerRows_CashSale(t *testing.T) {
	o := posterOrder()
	rows := BuildLedgerRows(o, o.CashierID, time.Now())

	require.Len(t, rows, 4)
	assert.Equal(t, enum.LedgerEntryItem, rows[0].EntryType)
	assert.True(t, rows[0].Credit.Equal(decimal.NewFromInt(500)))
	assert.True(t, rows[1].Credit.Equal(decimal.NewFromInt(65)))

	// change comes out of the cash line
	assert.Equal(t, enum.LedgerEntryTender, rows[2].EntryType)
	assert.Equal(t, entity.AccountCash, rows[2].AccountCode)
	assert.True(t, rows[2].Debit.Equal(decimal.NewFromInt(565)))

	assert.Equal(t, enum.LedgerEntryTotals, rows[3].EntryType)
	for i, r := range rows {
		assert.Equal(t, i+1, r.LineNo)
		assert.Equal(t, int64(7), r.InvoiceNo)
	}
	assert.NoError(t, ValidateLedgerRows(rows))
}

func TestBuildLedgerRows_SeniorBeneficiary(t *testing.T) {
	o := &entity.Order{
		ID:             uuid.New(),
		Mode:           enum.ModeLive,
		InvoiceNo:      3,
		CashierID:      uuid.New(),
		DiscountKind:   enum.DiscountKindSeniorPWD,
		DiscountAmount: decimal.NewFromInt(300),
		VATExemptSales: decimal.NewFromInt(300),
		AmountDue:      decimal.NewFromInt(300),
		Entries: []entity.OrderEntry{
			{EntryNo: 1, Quantity: 1, IsSenior: true, Items: []entity.EntryItem{posterItem(enum.ItemKindMenu, "Chicken Meal", "300")}},
			{EntryNo: 2, Quantity: 1, Items: []entity.EntryItem{posterItem(enum.ItemKindMenu, "Chicken Meal", "300")}},
		},
		Tenders: []entity.TenderLine{
			{LineNo: 1, Kind: enum.TenderKindCash, PaymentType: "Cash", Amount: decimal.NewFromInt(300)},
		},
		Beneficiaries: []entity.DiscountBeneficiary{
			{Type: enum.BeneficiarySenior, Name: "Lola Basyang", IDNumber: "SC-001", EntryNo: 1, Amount: decimal.NewFromInt(300)},
		},
	}

	rows := BuildLedgerRows(o, o.CashierID, time.Now())
	require.Len(t, rows, 5)

	last := rows[4]
	assert.Equal(t, enum.LedgerEntrySeniorPWD, last.EntryType)
	assert.Equal(t, "Lola Basyang", last.BeneficiaryName)
	assert.True(t, last.Debit.Equal(decimal.NewFromInt(300)))
	assert.True(t, rows[3].Debit.IsZero())
	assert.NoError(t, ValidateLedgerRows(rows))
}

func TestValidateLedgerRows(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(rows []entity.LedgerEntry) []entity.LedgerEntry
	}{
		{"empty batch", func([]entity.LedgerEntry) []entity.LedgerEntry { return nil }},
		{"unbalanced", func(rows []entity.LedgerEntry) []entity.LedgerEntry {
			rows[0].Credit = decimal.NewFromInt(499)
			return rows
		}},
		{"negative amount", func(rows []entity.LedgerEntry) []entity.LedgerEntry {
			rows[3].VATAmount = decimal.NewFromInt(-1)
			return rows
		}},
		{"missing poster", func(rows []entity.LedgerEntry) []entity.LedgerEntry {
			rows[1].PostedBy = uuid.Nil
			return rows
		}},
		{"missing invoice", func(rows []entity.LedgerEntry) []entity.LedgerEntry {
			rows[2].InvoiceNo = 0
			return rows
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := posterOrder()
			rows := tt.mutate(BuildLedgerRows(o, o.CashierID, time.Now()))

			err := ValidateLedgerRows(rows)
			require.Error(t, err)
			var appErr *apperror.AppError
			require.True(t, errors.As(err, &appErr))
			assert.Equal(t, http.StatusUnprocessableEntity, appErr.Code)
		})
	}
}
