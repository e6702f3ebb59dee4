package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/fiscal-pos/internal/domain/enum"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// CatalogItem is a sellable menu item, drink or add-on
type CatalogItem struct {
	ID            uuid.UUID       `gorm:"type:uuid;primary_key" json:"id"`
	Code          string          `gorm:"size:64;unique;not null" json:"code"`
	Name          string          `gorm:"size:255;not null" json:"name"`
	Kind          enum.ItemKind   `gorm:"size:16;not null;index" json:"kind"`
	Price         decimal.Decimal `gorm:"type:decimal(14,2);not null" json:"price"`
	TaxType       enum.TaxType    `gorm:"default:0" json:"tax_type"`
	RequiresDrink bool            `gorm:"default:false" json:"requires_drink"`
	RequiresAddOn bool            `gorm:"default:false" json:"requires_add_on"`
	IsActive      bool            `gorm:"default:true" json:"is_active"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
	DeletedAt     gorm.DeletedAt  `gorm:"index" json:"-"`
}

// BeforeCreate generates a UUID before creating a new catalog item
func (c *CatalogItem) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the CatalogItem model
func (CatalogItem) TableName() string {
	return "catalog_items"
}

// ToEntryItem copies the item's current price into an order sub-item
func (c *CatalogItem) ToEntryItem() EntryItem {
	id := c.ID
	return EntryItem{
		Kind:      c.Kind,
		RefID:     &id,
		Code:      c.Code,
		Name:      c.Name,
		UnitPrice: c.Price,
		TaxType:   c.TaxType,

		RequiresDrink: c.RequiresDrink,
		RequiresAddOn: c.RequiresAddOn,
	}
}

// PromoCode is a promo redeemable at the tender screen
type PromoCode struct {
	ID        uuid.UUID       `gorm:"type:uuid;primary_key" json:"id"`
	Code      string          `gorm:"size:64;unique;not null" json:"code"`
	Name      string          `gorm:"size:255;not null" json:"name"`
	Amount    decimal.Decimal `gorm:"type:decimal(14,2);default:0" json:"amount"`
	Percent   decimal.Decimal `gorm:"type:decimal(7,2);default:0" json:"percent"`
	ValidFrom *time.Time      `json:"valid_from,omitempty"`
	ValidTo   *time.Time      `json:"valid_to,omitempty"`
	IsActive  bool            `gorm:"default:true" json:"is_active"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// BeforeCreate generates a UUID before creating a new promo
func (p *PromoCode) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the PromoCode model
func (PromoCode) TableName() string {
	return "promo_codes"
}

// IsRedeemableAt reports whether the promo is active and inside its validity window
func (p *PromoCode) IsRedeemableAt(t time.Time) bool {
	if !p.IsActive {
		return false
	}
	if p.ValidFrom != nil && t.Before(*p.ValidFrom) {
		return false
	}
	if p.ValidTo != nil && t.After(*p.ValidTo) {
		return false
	}
	return true
}

// Class converts the promo into the discount class applied to an order
func (p *PromoCode) Class() Promo {
	return Promo{Code: p.Code, Amount: p.Amount, Percent: p.Percent}
}
