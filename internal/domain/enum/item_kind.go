package enum

import (
	"database/sql/driver"
	"encoding/json"
)

// ItemKind identifies a sub-item within an order entry
type ItemKind string

const (
	ItemKindMenu        ItemKind = "menu"
	ItemKindDrink       ItemKind = "drink"
	ItemKindAddOn       ItemKind = "add_on"
	ItemKindPlaceholder ItemKind = "placeholder"
)

func (i ItemKind) String() string {
	return string(i)
}

// Valid reports whether i is a known value
func (i ItemKind) Valid() bool {
	switch i {
	case ItemKindMenu, ItemKindDrink, ItemKindAddOn, ItemKindPlaceholder:
		return true
	}
	return false
}

func (i ItemKind) MarshalJSON() ([]byte, error) {
	return json.Marshal(string(i))
}

func (i *ItemKind) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return err
	}
	*i = ItemKind(str)
	return nil
}

func (i ItemKind) Value() (driver.Value, error) {
	return string(i), nil
}

func (i *ItemKind) Scan(value interface{}) error {
	if value == nil {
		*i = ItemKindMenu
		return nil
	}
	switch v := value.(type) {
	case string:
		*i = ItemKind(v)
	case []byte:
		*i = ItemKind(string(v))
	}
	return nil
}
