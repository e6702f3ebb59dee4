package entity

import (
	"sort"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/fiscal-pos/internal/domain/enum"
	"github.com/sangkips/fiscal-pos/pkg/apperror"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Order represents a sales order. It lives in the cashier session while
// pending and is persisted only when finalized.
type Order struct {
	ID             uuid.UUID         `gorm:"type:uuid;primary_key" json:"id"`
	SessionID      uuid.UUID         `gorm:"type:uuid;index" json:"session_id"`
	Mode           enum.Mode         `gorm:"size:16;not null;uniqueIndex:idx_orders_mode_invoice,priority:1" json:"mode"`
	InvoiceNo      int64             `gorm:"not null;uniqueIndex:idx_orders_mode_invoice,priority:2" json:"invoice_no"`
	OrderType      enum.OrderType    `gorm:"size:16;not null" json:"order_type"`
	Status         enum.OrderStatus  `gorm:"default:0;index" json:"status"`
	CashierID      uuid.UUID         `gorm:"type:uuid;not null;index" json:"cashier_id"`
	CashierName    string            `gorm:"size:255" json:"cashier_name"`
	HasVoidedItems bool              `gorm:"default:false" json:"has_voided_items"`
	DiscountKind   enum.DiscountKind `gorm:"size:16;default:'none'" json:"discount_kind"`
	DiscountCode   string            `gorm:"size:64" json:"discount_code,omitempty"`
	DiscountRate   decimal.Decimal   `gorm:"type:decimal(7,2);default:0" json:"discount_rate"`

	// Totals snapshot, rounded at finalize
	Total          decimal.Decimal `gorm:"type:decimal(14,2);not null;default:0" json:"total"`
	DiscountAmount decimal.Decimal `gorm:"type:decimal(14,2);not null;default:0" json:"discount_amount"`
	SeniorDiscount decimal.Decimal `gorm:"type:decimal(14,2);not null;default:0" json:"senior_discount"`
	PWDDiscount    decimal.Decimal `gorm:"type:decimal(14,2);not null;default:0" json:"pwd_discount"`
	CouponAmount   decimal.Decimal `gorm:"type:decimal(14,2);not null;default:0" json:"coupon_amount"`
	VATExemptSales decimal.Decimal `gorm:"type:decimal(14,2);not null;default:0" json:"vat_exempt_sales"`
	VATableSales   decimal.Decimal `gorm:"type:decimal(14,2);not null;default:0" json:"vatable_sales"`
	VATAmount      decimal.Decimal `gorm:"type:decimal(14,2);not null;default:0" json:"vat_amount"`
	ZeroRatedSales decimal.Decimal `gorm:"type:decimal(14,2);not null;default:0" json:"zero_rated_sales"`
	AmountDue      decimal.Decimal `gorm:"type:decimal(14,2);not null;default:0" json:"amount_due"`
	Tendered       decimal.Decimal `gorm:"type:decimal(14,2);not null;default:0" json:"tendered"`
	Change         decimal.Decimal `gorm:"type:decimal(14,2);not null;default:0" json:"change"`

	CreatedAt   time.Time  `json:"created_at"`
	FinalizedAt *time.Time `gorm:"index" json:"finalized_at,omitempty"`
	UpdatedAt   time.Time  `json:"updated_at"`

	// Relationships
	Entries       []OrderEntry          `gorm:"foreignKey:OrderID" json:"entries"`
	Tenders       []TenderLine          `gorm:"foreignKey:OrderID" json:"tenders,omitempty"`
	Beneficiaries []DiscountBeneficiary `gorm:"foreignKey:OrderID" json:"beneficiaries,omitempty"`
}

// BeforeCreate generates a UUID before creating a new order
func (o *Order) BeforeCreate(tx *gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the Order model
func (Order) TableName() string {
	return "orders"
}

// IsFinalized reports whether an invoice number has been assigned
func (o *Order) IsFinalized() bool {
	return o.InvoiceNo > 0
}

// GrossTotal sums every entry's subtotal. Placeholder lines only count on coupon entries.
func (o *Order) GrossTotal() decimal.Decimal {
	total := decimal.Zero
	for i := range o.Entries {
		total = total.Add(o.Entries[i].Subtotal())
	}
	return total
}

// Entry returns the entry with the given number, or nil
func (o *Order) Entry(entryNo int) *OrderEntry {
	for i := range o.Entries {
		if o.Entries[i].EntryNo == entryNo {
			return &o.Entries[i]
		}
	}
	return nil
}

// NextEntryNo returns one past the highest entry number in use
func (o *Order) NextEntryNo() int {
	next := 1
	for i := range o.Entries {
		if o.Entries[i].EntryNo >= next {
			next = o.Entries[i].EntryNo + 1
		}
	}
	return next
}

// RemoveEntry drops an entry and reports whether it existed
func (o *Order) RemoveEntry(entryNo int) bool {
	for i := range o.Entries {
		if o.Entries[i].EntryNo == entryNo {
			o.Entries = append(o.Entries[:i], o.Entries[i+1:]...)
			return true
		}
	}
	return false
}

// HasDiscountedEntries reports whether any entry carries a discount flag
func (o *Order) HasDiscountedEntries() bool {
	for i := range o.Entries {
		if o.Entries[i].HasDiscount() {
			return true
		}
	}
	return false
}

// ValidateForFinalize checks that every entry is complete enough to be sold
func (o *Order) ValidateForFinalize() error {
	if len(o.Entries) == 0 {
		return apperror.NewFieldError("entries", "order has no entries")
	}
	var fields []apperror.FieldError
	for i := range o.Entries {
		e := &o.Entries[i]
		menu := e.Item(enum.ItemKindMenu)
		if menu == nil {
			fields = append(fields, apperror.FieldError{Field: entryField(e.EntryNo), Message: "entry has no menu item"})
			continue
		}
		if menu.RequiresDrink && e.Item(enum.ItemKindDrink) == nil {
			fields = append(fields, apperror.FieldError{Field: entryField(e.EntryNo), Message: menu.Name + " requires a drink"})
		}
		if menu.RequiresAddOn && e.Item(enum.ItemKindAddOn) == nil {
			fields = append(fields, apperror.FieldError{Field: entryField(e.EntryNo), Message: menu.Name + " requires an add-on"})
		}
	}
	if len(fields) > 0 {
		return apperror.NewValidationError(fields)
	}
	return nil
}

func entryField(no int) string {
	return "entries." + strconv.Itoa(no)
}

// SortEntries orders entries by entry number
func (o *Order) SortEntries() {
	sort.Slice(o.Entries, func(i, j int) bool { return o.Entries[i].EntryNo < o.Entries[j].EntryNo })
}

// Clone returns a deep copy so callers can mutate without touching the original
func (o *Order) Clone() *Order {
	if o == nil {
		return nil
	}
	c := *o
	if o.FinalizedAt != nil {
		t := *o.FinalizedAt
		c.FinalizedAt = &t
	}
	c.Entries = make([]OrderEntry, len(o.Entries))
	for i := range o.Entries {
		c.Entries[i] = o.Entries[i].Clone()
	}
	c.Tenders = append([]TenderLine(nil), o.Tenders...)
	c.Beneficiaries = append([]DiscountBeneficiary(nil), o.Beneficiaries...)
	return &c
}

// OrderEntry is one "add to order" action: a menu item with an optional drink and add-on
type OrderEntry struct {
	ID                uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	OrderID           uuid.UUID `gorm:"type:uuid;not null;index;uniqueIndex:idx_entries_order_no,priority:1" json:"order_id"`
	EntryNo           int       `gorm:"not null;uniqueIndex:idx_entries_order_no,priority:2" json:"entry_no"`
	Quantity          int       `gorm:"not null" json:"quantity"`
	IsDiscountPercent bool      `gorm:"default:false" json:"is_discount_percent"`
	IsSenior          bool      `gorm:"default:false" json:"is_senior"`
	IsPWD             bool      `gorm:"default:false" json:"is_pwd"`
	CouponCode        string    `gorm:"size:64" json:"coupon_code,omitempty"`
	CreatedAt         time.Time `json:"created_at"`

	Items []EntryItem `gorm:"foreignKey:EntryID" json:"items"`
}

// BeforeCreate generates a UUID before creating a new entry
func (e *OrderEntry) BeforeCreate(tx *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the OrderEntry model
func (OrderEntry) TableName() string {
	return "order_entries"
}

// HasDiscount reports whether any discount flag or coupon is attached
func (e *OrderEntry) HasDiscount() bool {
	return e.IsDiscountPercent || e.IsSenior || e.IsPWD || e.CouponCode != ""
}

// IsEnableEdit reports whether quantity or price may still be edited
func (e *OrderEntry) IsEnableEdit() bool {
	return !e.HasDiscount()
}

// UnitTotal is the per-unit price of the entry
func (e *OrderEntry) UnitTotal() decimal.Decimal {
	total := decimal.Zero
	for _, it := range e.Items {
		if it.IsPlaceholder() && e.CouponCode == "" {
			continue
		}
		total = total.Add(it.UnitPrice)
	}
	return total
}

// Subtotal is UnitTotal × Quantity
func (e *OrderEntry) Subtotal() decimal.Decimal {
	return e.UnitTotal().Mul(decimal.NewFromInt(int64(e.Quantity)))
}

// SubtotalOf sums items matching the predicate, times quantity
func (e *OrderEntry) SubtotalOf(match func(EntryItem) bool) decimal.Decimal {
	total := decimal.Zero
	for _, it := range e.Items {
		if it.IsPlaceholder() && e.CouponCode == "" {
			continue
		}
		if match(it) {
			total = total.Add(it.UnitPrice)
		}
	}
	return total.Mul(decimal.NewFromInt(int64(e.Quantity)))
}

// Item returns the first sub-item of the given kind, or nil
func (e *OrderEntry) Item(kind enum.ItemKind) *EntryItem {
	for i := range e.Items {
		if e.Items[i].Kind == kind {
			return &e.Items[i]
		}
	}
	return nil
}

// SameRefs reports whether two entries reference the same catalog items
func (e *OrderEntry) SameRefs(other *OrderEntry) bool {
	for _, kind := range []enum.ItemKind{enum.ItemKindMenu, enum.ItemKindDrink, enum.ItemKindAddOn, enum.ItemKindPlaceholder} {
		a, b := e.Item(kind), other.Item(kind)
		if (a == nil) != (b == nil) {
			return false
		}
		if a != nil && (!sameRef(a.RefID, b.RefID) || !a.UnitPrice.Equal(b.UnitPrice)) {
			return false
		}
	}
	return true
}

func sameRef(a, b *uuid.UUID) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

// Clone returns a deep copy of the entry
func (e OrderEntry) Clone() OrderEntry {
	e.Items = append([]EntryItem(nil), e.Items...)
	for i := range e.Items {
		if e.Items[i].RefID != nil {
			id := *e.Items[i].RefID
			e.Items[i].RefID = &id
		}
	}
	return e
}

// EntryItem is one sub-item of an entry. A nil RefID marks a discount-only placeholder line.
type EntryItem struct {
	ID        uuid.UUID       `gorm:"type:uuid;primary_key" json:"id"`
	EntryID   uuid.UUID       `gorm:"type:uuid;not null;index" json:"entry_id"`
	Kind      enum.ItemKind   `gorm:"size:16;not null" json:"kind"`
	RefID     *uuid.UUID      `gorm:"type:uuid" json:"ref_id,omitempty"`
	Code      string          `gorm:"size:64" json:"code,omitempty"`
	Name      string          `gorm:"size:255;not null" json:"name"`
	UnitPrice decimal.Decimal `gorm:"type:decimal(14,2);not null" json:"unit_price"`
	TaxType   enum.TaxType    `gorm:"default:0" json:"tax_type"`

	// Copied from the catalog while the order is pending; not persisted
	RequiresDrink bool `gorm:"-" json:"-"`
	RequiresAddOn bool `gorm:"-" json:"-"`
}

// BeforeCreate generates a UUID before creating a new entry item
func (i *EntryItem) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the EntryItem model
func (EntryItem) TableName() string {
	return "order_entry_items"
}

// IsPlaceholder reports whether the item has no catalog reference
func (i EntryItem) IsPlaceholder() bool {
	return i.RefID == nil
}

// TenderLine is the cash line or one alternative payment
type TenderLine struct {
	ID          uuid.UUID       `gorm:"type:uuid;primary_key" json:"id"`
	OrderID     uuid.UUID       `gorm:"type:uuid;not null;index" json:"order_id"`
	LineNo      int             `gorm:"not null" json:"line_no"`
	Kind        enum.TenderKind `gorm:"size:16;not null" json:"kind"`
	PaymentType string          `gorm:"size:64;not null" json:"payment_type"`
	Amount      decimal.Decimal `gorm:"type:decimal(14,2);not null" json:"amount"`
	ReferenceNo string          `gorm:"size:128" json:"reference_no,omitempty"`
}

// BeforeCreate generates a UUID before creating a new tender line
func (t *TenderLine) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the TenderLine model
func (TenderLine) TableName() string {
	return "order_tenders"
}

// DiscountBeneficiary is a senior citizen or PWD claiming the statutory discount
type DiscountBeneficiary struct {
	ID       uuid.UUID            `gorm:"type:uuid;primary_key" json:"id"`
	OrderID  uuid.UUID            `gorm:"type:uuid;not null;index" json:"order_id"`
	Type     enum.BeneficiaryType `gorm:"size:16;not null" json:"type"`
	Name     string               `gorm:"size:255;not null" json:"name"`
	IDNumber string               `gorm:"size:64;not null" json:"id_number"`
	EntryNo  int                  `json:"entry_no"`
	Amount   decimal.Decimal      `gorm:"type:decimal(14,2);not null;default:0" json:"amount"`
}

// BeforeCreate generates a UUID before creating a new beneficiary
func (b *DiscountBeneficiary) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the DiscountBeneficiary model
func (DiscountBeneficiary) TableName() string {
	return "order_beneficiaries"
}
