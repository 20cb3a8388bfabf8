package dbtime

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Tod is a wall-clock time of day stored in a Postgres TIME column.
// All values share the date 0000-01-01 UTC so Before/After/Equal compare times only.
type Tod struct{ time.Time }

// From keeps HH:mm:ss of t and drops the date and zone.
func From(t time.Time) Tod {
	return Tod{
		Time: time.Date(0, 1, 1, t.Hour(), t.Minute(), t.Second(), 0, time.UTC),
	}
}

func At(hour, minute, second int) Tod {
	return Tod{Time: time.Date(0, 1, 1, hour, minute, second, 0, time.UTC)}
}

// EndOfDay is the last representable second of a day.
var EndOfDay = At(23, 59, 59)

// Parse reads "HH:mm" or "HH:mm:ss".
func Parse(s string) (Tod, error) {
	var tt Tod
	return tt, tt.parse(s)
}

func MustParse(s string) Tod {
	t, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return t
}

// Scan accepts time.Time or "HH:MM[:SS]".
func (t *Tod) Scan(v any) error {
	switch x := v.(type) {
	case time.Time:
		*t = From(x)
		return nil
	case []byte:
		return t.parse(string(x))
	case string:
		return t.parse(x)
	case nil:
		t.Time = time.Time{}
		return nil
	default:
		return fmt.Errorf("tod: unsupported Scan type %T", v)
	}
}

func (t *Tod) parse(s string) error {
	s = strings.TrimSpace(s)
	if len(s) == 5 { // "HH:MM"
		s += ":00"
	}
	if i := strings.IndexByte(s, '.'); i > 0 {
		s = s[:i]
	}
	tt, err := time.Parse("15:04:05", s)
	if err != nil {
		return fmt.Errorf("tod: invalid time %q", s)
	}
	*t = From(tt)
	return nil
}

// Value sends "HH:MM:SS" for Postgres TIME.
func (t Tod) Value() (driver.Value, error) {
	return t.Format("15:04:05"), nil
}

func (t Tod) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.Format("15:04:05"))
}

func (t *Tod) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	return t.parse(s)
}

// String renders HH:MM.
func (t Tod) String() string { return t.Format("15:04") }

// Minutes since midnight, seconds included as a fraction.
func (t Tod) Minutes() float64 {
	return float64(t.Hour()*60+t.Minute()) + float64(t.Second())/60
}

// AddMinutes may roll past midnight; the result then compares after every same-day Tod.
func (t Tod) AddMinutes(m int) Tod {
	return Tod{Time: t.Time.Add(time.Duration(m) * time.Minute)}
}

// SameMinute compares hours and minutes only.
func (t Tod) SameMinute(o Tod) bool {
	return t.Hour() == o.Hour() && t.Minute() == o.Minute()
}

func MinTod(a, b Tod) Tod {
	if b.Before(a.Time) {
		return b
	}
	return a
}

// Span is the number of minutes from start to end; zero or negative when end is not after start.
func Span(start, end Tod) float64 {
	return end.Sub(start.Time).Minutes()
}
