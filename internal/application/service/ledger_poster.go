package service

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/fiscal-pos/internal/domain/entity"
	"github.com/sangkips/fiscal-pos/internal/domain/enum"
	"github.com/sangkips/fiscal-pos/pkg/apperror"
	"github.com/sangkips/fiscal-pos/pkg/money"
	"github.com/shopspring/decimal"
)

// BuildLedgerRows turns a finalized order into its journal rows: one per sold
// sub-item, one per tender line, one totals row and one per beneficiary.
// Credits to sales always equal the debits to tender and discount accounts.
func BuildLedgerRows(o *entity.Order, postedBy uuid.UUID, at time.Time) []entity.LedgerEntry {
	rows := make([]entity.LedgerEntry, 0, len(o.Entries)*3+len(o.Tenders)+len(o.Beneficiaries)+1)
	row := func(entryType enum.LedgerEntryType, account, description string) entity.LedgerEntry {
		return entity.LedgerEntry{
			EntryType:   entryType,
			OrderID:     o.ID,
			Mode:        o.Mode,
			InvoiceNo:   o.InvoiceNo,
			LineNo:      len(rows) + 1,
			AccountCode: account,
			Description: description,
			CashierID:   o.CashierID,
			PostedBy:    postedBy,
			PostedAt:    at,
		}
	}

	entries := append([]entity.OrderEntry(nil), o.Entries...)
	sortEntries(entries)
	for i := range entries {
		e := &entries[i]
		qty := decimal.NewFromInt(int64(e.Quantity))
		for _, it := range e.Items {
			if it.IsPlaceholder() && e.CouponCode == "" {
				continue
			}
			amount := money.Round(it.UnitPrice.Mul(qty))
			var r entity.LedgerEntry
			if it.IsPlaceholder() {
				r = row(enum.LedgerEntryItem, entity.AccountDiscounts, it.Name)
				r.Debit = amount.Abs()
				r.UnitPrice = it.UnitPrice.Abs()
				r.DiscountAmount = amount.Abs()
			} else {
				r = row(enum.LedgerEntryItem, entity.AccountSales, it.Name)
				r.Credit = amount
				r.UnitPrice = it.UnitPrice
				r.ItemRefID = it.RefID
			}
			r.Quantity = qty
			rows = append(rows, r)
		}
	}

	applied := make(map[int]decimal.Decimal, len(o.Tenders))
	for _, line := range entity.AppliedTenders(o) {
		applied[line.LineNo] = line.Amount
	}
	for _, line := range o.Tenders {
		account := entity.AccountOtherPayments
		if line.Kind == enum.TenderKindCash {
			account = entity.AccountCash
		}
		r := row(enum.LedgerEntryTender, account, "Payment "+line.PaymentType)
		r.Debit = money.Round(applied[line.LineNo])
		r.PaymentType = line.PaymentType
		r.ReferenceNo = line.ReferenceNo
		rows = append(rows, r)
	}

	beneficiaryTotal := decimal.Zero
	for _, b := range o.Beneficiaries {
		beneficiaryTotal = beneficiaryTotal.Add(b.Amount)
	}

	totals := row(enum.LedgerEntryTotals, entity.AccountDiscounts, fmt.Sprintf("Invoice %d totals", o.InvoiceNo))
	totals.Debit = o.DiscountAmount.Sub(beneficiaryTotal)
	totals.VATableSales = o.VATableSales
	totals.VATAmount = o.VATAmount
	totals.VATExemptSales = o.VATExemptSales
	totals.DiscountAmount = o.DiscountAmount
	rows = append(rows, totals)

	for _, b := range o.Beneficiaries {
		label := "Senior citizen discount"
		if b.Type == enum.BeneficiaryPWD {
			label = "PWD discount"
		}
		r := row(enum.LedgerEntrySeniorPWD, entity.AccountSeniorPWD, label)
		r.Debit = b.Amount
		r.DiscountAmount = b.Amount
		r.VATExemptSales = b.Amount
		r.BeneficiaryName = b.Name
		r.BeneficiaryIDNo = b.IDNumber
		rows = append(rows, r)
	}
	return rows
}

func sortEntries(entries []entity.OrderEntry) {
	o := entity.Order{Entries: entries}
	o.SortEntries()
}

// ValidateLedgerRows checks a batch before it is posted. Any problem rejects
// the whole batch.
func ValidateLedgerRows(rows []entity.LedgerEntry) error {
	if len(rows) == 0 {
		return apperror.NewFieldError("ledger", "no ledger rows to post")
	}

	var fieldErrors []apperror.FieldError
	fail := func(i int, field, msg string) {
		fieldErrors = append(fieldErrors, apperror.FieldError{Field: fmt.Sprintf("ledger.%d.%s", i+1, field), Message: msg})
	}

	debits, credits := decimal.Zero, decimal.Zero
	for i := range rows {
		r := &rows[i]
		if !r.EntryType.Valid() {
			fail(i, "entry_type", "invalid entry type")
		}
		if r.OrderID == uuid.Nil {
			fail(i, "order_id", "order is required")
		}
		if !r.Mode.Valid() {
			fail(i, "mode", "invalid mode")
		}
		if r.InvoiceNo <= 0 {
			fail(i, "invoice_no", "invoice number is required")
		}
		if r.AccountCode == "" {
			fail(i, "account_code", "account code is required")
		}
		if r.Description == "" {
			fail(i, "description", "description is required")
		}
		if r.PostedBy == uuid.Nil {
			fail(i, "posted_by", "poster is required")
		}
		if !r.IsReversal() {
			amounts := []struct {
				field string
				value decimal.Decimal
			}{
				{"quantity", r.Quantity},
				{"debit", r.Debit},
				{"credit", r.Credit},
				{"vatable_sales", r.VATableSales},
				{"vat_amount", r.VATAmount},
				{"vat_exempt_sales", r.VATExemptSales},
				{"discount_amount", r.DiscountAmount},
			}
			for _, a := range amounts {
				if a.value.IsNegative() {
					fail(i, a.field, "amount cannot be negative")
				}
			}
		}
		debits = debits.Add(r.Debit)
		credits = credits.Add(r.Credit)
	}
	if !debits.Equal(credits) {
		fieldErrors = append(fieldErrors, apperror.FieldError{
			Field:   "ledger",
			Message: fmt.Sprintf("debits %s do not equal credits %s", money.Format(debits), money.Format(credits)),
		})
	}
	if len(fieldErrors) > 0 {
		return apperror.NewValidationError(fieldErrors)
	}
	return nil
}
