package enum

import (
	"database/sql/driver"
	"encoding/json"
)

// LedgerEntryType is the journal purpose of a ledger row
type LedgerEntryType string

const (
	LedgerEntryItem      LedgerEntryType = "item"
	LedgerEntryTender    LedgerEntryType = "tender"
	LedgerEntryTotals    LedgerEntryType = "totals"
	LedgerEntrySeniorPWD LedgerEntryType = "senior_pwd"
	LedgerEntryReversal  LedgerEntryType = "reversal"
)

func (l LedgerEntryType) String() string {
	return string(l)
}

// Valid reports whether l is a known value
func (l LedgerEntryType) Valid() bool {
	switch l {
	case LedgerEntryItem, LedgerEntryTender, LedgerEntryTotals, LedgerEntrySeniorPWD, LedgerEntryReversal:
		return true
	}
	return false
}

func (l LedgerEntryType) MarshalJSON() ([]byte, error) {
	return json.Marshal(string(l))
}

func (l *LedgerEntryType) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return err
	}
	*l = LedgerEntryType(str)
	return nil
}

func (l LedgerEntryType) Value() (driver.Value, error) {
	return string(l), nil
}

func (l *LedgerEntryType) Scan(value interface{}) error {
	if value == nil {
		*l = LedgerEntryItem
		return nil
	}
	switch v := value.(type) {
	case string:
		*l = LedgerEntryType(v)
	case []byte:
		*l = LedgerEntryType(string(v))
	}
	return nil
}
