package enum

import (
	"database/sql/driver"
	"encoding/json"
)

// DiscountKind tags the discount class applied to an order
type DiscountKind string

const (
	DiscountKindNone      DiscountKind = "none"
	DiscountKindSeniorPWD DiscountKind = "senior_pwd"
	DiscountKindPromo     DiscountKind = "promo"
	DiscountKindCoupon    DiscountKind = "coupon"
	DiscountKindOther     DiscountKind = "other"
)

func (d DiscountKind) String() string {
	return string(d)
}

// Valid reports whether d is a known value
func (d DiscountKind) Valid() bool {
	switch d {
	case DiscountKindNone, DiscountKindSeniorPWD, DiscountKindPromo, DiscountKindCoupon, DiscountKindOther:
		return true
	}
	return false
}

func (d DiscountKind) MarshalJSON() ([]byte, error) {
	return json.Marshal(string(d))
}

func (d *DiscountKind) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return err
	}
	*d = DiscountKind(str)
	return nil
}

func (d DiscountKind) Value() (driver.Value, error) {
	return string(d), nil
}

func (d *DiscountKind) Scan(value interface{}) error {
	if value == nil {
		*d = DiscountKindNone
		return nil
	}
	switch v := value.(type) {
	case string:
		*d = DiscountKind(v)
	case []byte:
		*d = DiscountKind(string(v))
	}
	return nil
}
