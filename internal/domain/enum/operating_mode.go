package enum

import (
	"database/sql/driver"
	"encoding/json"
)

// Mode is the operating mode; each mode has its own invoice sequence and fiscal counters
type Mode string

const (
	ModeLive     Mode = "live"
	ModeTraining Mode = "training"
)

func (m Mode) String() string {
	return string(m)
}

// Valid reports whether m is a known value
func (m Mode) Valid() bool {
	switch m {
	case ModeLive, ModeTraining:
		return true
	}
	return false
}

func (m Mode) MarshalJSON() ([]byte, error) {
	return json.Marshal(string(m))
}

func (m *Mode) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return err
	}
	*m = Mode(str)
	return nil
}

func (m Mode) Value() (driver.Value, error) {
	return string(m), nil
}

func (m *Mode) Scan(value interface{}) error {
	if value == nil {
		*m = ModeLive
		return nil
	}
	switch v := value.(type) {
	case string:
		*m = Mode(v)
	case []byte:
		*m = Mode(string(v))
	}
	return nil
}
