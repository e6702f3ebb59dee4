package enum

import (
	"database/sql/driver"
	"encoding/json"
)

// TaxType is the VAT treatment of a catalog item
type TaxType int

const (
	TaxTypeVATable   TaxType = 0
	TaxTypeExempt    TaxType = 1
	TaxTypeZeroRated TaxType = 2
)

func (t TaxType) String() string {
	names := [...]string{"VATable", "Exempt", "ZeroRated"}
	if int(t) < 0 || int(t) >= len(names) {
		return "VATable"
	}
	return names[t]
}

func (t TaxType) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

func (t *TaxType) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		var i int
		if err := json.Unmarshal(data, &i); err != nil {
			return err
		}
		*t = TaxType(i)
		return nil
	}
	switch str {
	case "Exempt":
		*t = TaxTypeExempt
	case "ZeroRated":
		*t = TaxTypeZeroRated
	default:
		*t = TaxTypeVATable
	}
	return nil
}

func (t TaxType) Value() (driver.Value, error) {
	return int64(t), nil
}

func (t *TaxType) Scan(value interface{}) error {
	if value == nil {
		*t = TaxTypeVATable
		return nil
	}
	switch v := value.(type) {
	case int64:
		*t = TaxType(v)
	case int32:
		*t = TaxType(v)
	case int:
		*t = TaxType(v)
	}
	return nil
}
