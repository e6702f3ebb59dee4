package enum

import (
	"database/sql/driver"
	"encoding/json"
)

// BeneficiaryType is the statutory discount category of a beneficiary
type BeneficiaryType string

const (
	BeneficiarySenior BeneficiaryType = "senior"
	BeneficiaryPWD    BeneficiaryType = "pwd"
)

func (b BeneficiaryType) String() string {
	return string(b)
}

// Valid reports whether b is a known value
func (b BeneficiaryType) Valid() bool {
	switch b {
	case BeneficiarySenior, BeneficiaryPWD:
		return true
	}
	return false
}

func (b BeneficiaryType) MarshalJSON() ([]byte, error) {
	return json.Marshal(string(b))
}

func (b *BeneficiaryType) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return err
	}
	*b = BeneficiaryType(str)
	return nil
}

func (b BeneficiaryType) Value() (driver.Value, error) {
	return string(b), nil
}

func (b *BeneficiaryType) Scan(value interface{}) error {
	if value == nil {
		*b = BeneficiarySenior
		return nil
	}
	switch v := value.(type) {
	case string:
		*b = BeneficiaryType(v)
	case []byte:
		*b = BeneficiaryType(string(v))
	}
	return nil
}
