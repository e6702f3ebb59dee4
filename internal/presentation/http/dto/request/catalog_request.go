package request

import (
	"time"

	"github.com/shopspring/decimal"
)

// CatalogItemRequest creates or replaces a catalog item
type CatalogItemRequest struct {
	Code          string           `json:"code" binding:"required,max=50"`
	Name          string           `json:"name" binding:"required,max=255"`
	Kind          string           `json:"kind" binding:"required,oneof=menu drink add_on"`
	Price         *decimal.Decimal `json:"price" binding:"required"`
	TaxType       string           `json:"tax_type" binding:"omitempty,oneof=VATable Exempt ZeroRated"`
	RequiresDrink bool             `json:"requires_drink"`
	RequiresAddOn bool             `json:"requires_add_on"`
	IsActive      *bool            `json:"is_active"`
}

// PromoRequest creates or updates a promo code. Exactly one of amount and
// percent is set.
type PromoRequest struct {
	Code      string           `json:"code" binding:"required,max=50"`
	Name      string           `json:"name" binding:"required,max=255"`
	Amount    *decimal.Decimal `json:"amount"`
	Percent   *decimal.Decimal `json:"percent"`
	ValidFrom *time.Time       `json:"valid_from"`
	ValidTo   *time.Time       `json:"valid_to"`
	IsActive  *bool            `json:"is_active"`
}
