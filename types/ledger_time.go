package types

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// LedgerLayout is the on-disk timestamp format for ledger rows. It carries no
// zone; values are read back in the local zone.
const LedgerLayout = "2006-01-02 15:04:05"

// LedgerTime stores a naive, second-precision timestamp as text so every
// driver sees the same "YYYY-MM-DD HH:MM:SS" column.
type LedgerTime struct {
	time.Time
}

func NewLedgerTime(t time.Time) LedgerTime {
	return LedgerTime{Time: t.Truncate(time.Second)}
}

func ParseLedgerTime(s string) (LedgerTime, error) {
	t, err := time.ParseInLocation(LedgerLayout, s, time.Local)
	if err != nil {
		return LedgerTime{}, err
	}
	return LedgerTime{Time: t}, nil
}

// Month returns the calendar month key, e.g. "2024-03".
func (t LedgerTime) Month() string {
	return t.Format("2006-01")
}

func (t LedgerTime) String() string {
	return t.Format(LedgerLayout)
}

func (LedgerTime) GormDataType() string {
	return "string"
}

func (t LedgerTime) Value() (driver.Value, error) {
	return t.Format(LedgerLayout), nil
}

func (t *LedgerTime) Scan(value interface{}) error {
	switch v := value.(type) {
	case string:
		return t.scanString(v)
	case []byte:
		return t.scanString(string(v))
	case time.Time:
		// Some drivers hand back DATETIME columns already parsed.
		t.Time = time.Date(v.Year(), v.Month(), v.Day(), v.Hour(), v.Minute(), v.Second(), 0, time.Local)
		return nil
	case nil:
		t.Time = time.Time{}
		return nil
	default:
		return fmt.Errorf("cannot convert %T to LedgerTime", value)
	}
}

func (t *LedgerTime) scanString(s string) error {
	parsed, err := ParseLedgerTime(s)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

func (t LedgerTime) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

func (t *LedgerTime) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	return t.scanString(s)
}
