package request

import (
	"github.com/shopspring/decimal"
)

// OpenSessionRequest opens a cashier session in live or training mode
type OpenSessionRequest struct {
	Mode        string           `json:"mode" binding:"required,oneof=live training"`
	OpeningFund *decimal.Decimal `json:"opening_fund"`
}

// AddEntryRequest adds a menu item with its drink and add-on
type AddEntryRequest struct {
	MenuItemID string  `json:"menu_item_id" binding:"required,uuid"`
	DrinkID    *string `json:"drink_id" binding:"omitempty,uuid"`
	AddOnID    *string `json:"add_on_id" binding:"omitempty,uuid"`
	Quantity   int     `json:"quantity" binding:"required,min=1"`
}

// EditEntryRequest changes the quantity of an entry and optionally its
// open price
type EditEntryRequest struct {
	Quantity int              `json:"quantity" binding:"required,min=1"`
	Price    *decimal.Decimal `json:"price"`
}

// VoidEntryRequest removes an entry from the open order
type VoidEntryRequest struct {
	Reason string `json:"reason" binding:"required,max=255"`
}

// OrderTypeRequest sets dine-in, take-out or delivery
type OrderTypeRequest struct {
	OrderType string `json:"order_type" binding:"required,oneof=dine_in take_out delivery"`
}

// BeneficiaryRequest is one senior citizen or PWD card holder
type BeneficiaryRequest struct {
	Type     string `json:"type" binding:"required,oneof=senior pwd"`
	Name     string `json:"name" binding:"required,max=255"`
	IDNumber string `json:"id_number" binding:"required,max=100"`
	EntryNo  int    `json:"entry_no" binding:"required,min=1"`
}

// SeniorDiscountRequest applies the senior citizen / PWD discount
type SeniorDiscountRequest struct {
	Beneficiaries []BeneficiaryRequest `json:"beneficiaries" binding:"required,min=1,dive"`
}

// PromoCodeRequest applies a promo code
type PromoCodeRequest struct {
	Code string `json:"code" binding:"required,max=50"`
}

// CouponRequest applies a coupon against the placeholder entries
type CouponRequest struct {
	Code         string `json:"code" binding:"required,max=50"`
	ItemQuantity int    `json:"item_quantity" binding:"required,min=1"`
}

// OtherDiscountRequest applies a percentage discount to selected entries, or to
// the whole order when no entries are given
type OtherDiscountRequest struct {
	Percent  *decimal.Decimal `json:"percent" binding:"required"`
	EntryNos []int            `json:"entry_nos" binding:"omitempty,dive,min=1"`
}

// CashRequest sets the cash tendered
type CashRequest struct {
	Amount *decimal.Decimal `json:"amount" binding:"required"`
}

// PaymentRequest adds a card, e-wallet or other non-cash payment
type PaymentRequest struct {
	PaymentType string           `json:"payment_type" binding:"required,max=50"`
	Amount      *decimal.Decimal `json:"amount" binding:"required"`
	ReferenceNo string           `json:"reference_no" binding:"max=100"`
}
