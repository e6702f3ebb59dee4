package enum

import (
	"database/sql/driver"
	"encoding/json"
)

// TenderKind distinguishes the cash line from alternative payments
type TenderKind string

const (
	TenderKindCash        TenderKind = "cash"
	TenderKindAlternative TenderKind = "alternative"
)

func (t TenderKind) String() string {
	return string(t)
}

// Valid reports whether t is a known value
func (t TenderKind) Valid() bool {
	switch t {
	case TenderKindCash, TenderKindAlternative:
		return true
	}
	return false
}

func (t TenderKind) MarshalJSON() ([]byte, error) {
	return json.Marshal(string(t))
}

func (t *TenderKind) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return err
	}
	*t = TenderKind(str)
	return nil
}

func (t TenderKind) Value() (driver.Value, error) {
	return string(t), nil
}

func (t *TenderKind) Scan(value interface{}) error {
	if value == nil {
		*t = TenderKindCash
		return nil
	}
	switch v := value.(type) {
	case string:
		*t = TenderKind(v)
	case []byte:
		*t = TenderKind(string(v))
	}
	return nil
}
