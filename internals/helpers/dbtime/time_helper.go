package dbtime

import (
	"sync"
	"time"
)

// Clock returns the current instant. Implementations must return UTC.
type Clock interface {
	Now() time.Time
}

type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now().UTC() }

// FixedClock always returns the same instant. Used by job replays and tests.
type FixedClock struct{ At time.Time }

func (f FixedClock) Now() time.Time { return f.At.UTC() }

// Zone pairs a clock with the factory's local time zone.
type Zone struct {
	Clock Clock
	Loc   *time.Location
}

var (
	mu          sync.RWMutex
	defaultZone = Zone{Clock: SystemClock{}, Loc: time.UTC}
)

// SetDefault installs the process-wide zone. Called once at startup.
func SetDefault(z Zone) {
	mu.Lock()
	defer mu.Unlock()
	if z.Clock == nil {
		z.Clock = SystemClock{}
	}
	if z.Loc == nil {
		z.Loc = time.UTC
	}
	defaultZone = z
}

func Default() Zone {
	mu.RLock()
	defer mu.RUnlock()
	return defaultZone
}

// Moment is one reading of the clock, split into the views the ledger stores.
type Moment struct {
	UTC   time.Time // *_actual columns
	Local time.Time
	Date  time.Time // local calendar date, midnight UTC
	Time  Tod       // local wall-clock time of day
}

func (z Zone) Now() Moment {
	return z.At(z.Clock.Now())
}

// At splits an arbitrary instant the same way Now does.
func (z Zone) At(t time.Time) Moment {
	loc := z.Loc
	if loc == nil {
		loc = time.UTC
	}
	local := t.In(loc)
	return Moment{
		UTC:   t.UTC(),
		Local: local,
		Date:  DateOf(local),
		Time:  From(local),
	}
}

// Today is the local calendar date.
func (z Zone) Today() time.Time { return z.Now().Date }

// DateOf drops the time of day, keeping the calendar date of t in its own location.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDate reads "YYYY-MM-DD".
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, err
	}
	return DateOf(t), nil
}

// Combine builds the instant of date+tod in loc.
func Combine(date time.Time, tod Tod, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	y, m, d := date.Date()
	return time.Date(y, m, d, tod.Hour(), tod.Minute(), tod.Second(), 0, loc)
}

func SameDate(a, b time.Time) bool {
	return DateOf(a).Equal(DateOf(b))
}
