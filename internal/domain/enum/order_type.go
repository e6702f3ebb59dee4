package enum

import (
	"database/sql/driver"
	"encoding/json"
)

// OrderType represents how the order is served
type OrderType string

const (
	OrderTypeDineIn   OrderType = "dine_in"
	OrderTypeTakeOut  OrderType = "take_out"
	OrderTypeDelivery OrderType = "delivery"
)

func (o OrderType) String() string {
	return string(o)
}

// Valid reports whether o is a known value
func (o OrderType) Valid() bool {
	switch o {
	case OrderTypeDineIn, OrderTypeTakeOut, OrderTypeDelivery:
		return true
	}
	return false
}

func (o OrderType) MarshalJSON() ([]byte, error) {
	return json.Marshal(string(o))
}

func (o *OrderType) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return err
	}
	*o = OrderType(str)
	return nil
}

func (o OrderType) Value() (driver.Value, error) {
	return string(o), nil
}

func (o *OrderType) Scan(value interface{}) error {
	if value == nil {
		*o = OrderTypeDineIn
		return nil
	}
	switch v := value.(type) {
	case string:
		*o = OrderType(v)
	case []byte:
		*o = OrderType(string(v))
	}
	return nil
}
