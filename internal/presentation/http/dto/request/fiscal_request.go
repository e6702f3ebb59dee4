package request

import (
	"github.com/shopspring/decimal"
)

// XReadingRequest takes an X reading for a shift or the open business day
type XReadingRequest struct {
	Mode         string           `json:"mode" binding:"required,oneof=live training"`
	SessionID    *string          `json:"session_id" binding:"omitempty,uuid"`
	DeclaredCash *decimal.Decimal `json:"declared_cash"`
	Print        bool             `json:"print"`
}

// ZReadingRequest closes the business day
type ZReadingRequest struct {
	Mode         string           `json:"mode" binding:"required,oneof=live training"`
	DeclaredCash *decimal.Decimal `json:"declared_cash"`
	Print        bool             `json:"print"`
}

// WithdrawalRequest records cash taken out of the drawer
type WithdrawalRequest struct {
	Mode      string           `json:"mode" binding:"required,oneof=live training"`
	SessionID *string          `json:"session_id" binding:"omitempty,uuid"`
	Amount    *decimal.Decimal `json:"amount" binding:"required"`
	Reason    string           `json:"reason" binding:"required,max=255"`
}

// ResetCounterRequest resets the accumulated grand total of a mode
type ResetCounterRequest struct {
	Mode   string `json:"mode" binding:"required,oneof=live training"`
	Reason string `json:"reason" binding:"required,max=255"`
}
