package timeclock

import (
	"time"
)

// Wire formats shared by every ledger store. These match the original
// desktop client's database rows, so existing data reads back cleanly.
const (
	dateLayout = "01/02/2006" // MM/DD/YYYY
	timeLayout = "03:04 PM"   // hh:mm AM/PM, minute precision
)

// =============================================================================
// TIME OF DAY - Wall-clock minute within a day
// =============================================================================

// TimeOfDay is a wall-clock time at minute precision. Punch pairing and
// accrual arithmetic all happen on this type; the AM/PM string form only
// exists at the storage and display boundary.
type TimeOfDay struct {
	Hour   int // 0-23
	Minute int // 0-59
}

func NewTimeOfDay(hour, minute int) TimeOfDay {
	return TimeOfDay{Hour: hour, Minute: minute}
}

// TimeOfDayOf truncates a time.Time to its wall-clock minute.
func TimeOfDayOf(t time.Time) TimeOfDay {
	return TimeOfDay{Hour: t.Hour(), Minute: t.Minute()}
}

// ParseTimeOfDay parses the "hh:mm AM/PM" wire form.
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return TimeOfDay{}, err
	}
	return TimeOfDay{Hour: t.Hour(), Minute: t.Minute()}, nil
}

// String renders the "hh:mm AM/PM" wire form.
func (t TimeOfDay) String() string {
	return time.Date(2000, time.January, 1, t.Hour, t.Minute, 0, 0, time.UTC).Format(timeLayout)
}

// MinutesSinceMidnight returns the time as whole minutes from 00:00.
func (t TimeOfDay) MinutesSinceMidnight() int {
	return t.Hour*60 + t.Minute
}

func (t TimeOfDay) Before(other TimeOfDay) bool {
	return t.MinutesSinceMidnight() < other.MinutesSinceMidnight()
}

// MinutesBetween returns to - from in whole minutes. The result is
// negative when from is later than to; callers clamp where the domain
// requires it.
func MinutesBetween(from, to TimeOfDay) int {
	return to.MinutesSinceMidnight() - from.MinutesSinceMidnight()
}

// =============================================================================
// DATE - Opaque calendar date (the reconciliation partition key)
// =============================================================================

// Date is a calendar date compared as a value, never as a formatted
// string. Day-rollover detection and partition keys both go through
// this type.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

func NewDate(year int, month time.Month, day int) Date {
	return Date{Year: year, Month: month, Day: day}
}

// DateOf truncates a time.Time to its calendar date.
func DateOf(t time.Time) Date {
	return Date{Year: t.Year(), Month: t.Month(), Day: t.Day()}
}

// ParseDate parses the MM/DD/YYYY wire form.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return Date{}, err
	}
	return DateOf(t), nil
}

// String renders the MM/DD/YYYY wire form.
func (d Date) String() string {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC).Format(dateLayout)
}

func (d Date) Equal(other Date) bool {
	return d == other
}

func (d Date) Before(other Date) bool {
	if d.Year != other.Year {
		return d.Year < other.Year
	}
	if d.Month != other.Month {
		return d.Month < other.Month
	}
	return d.Day < other.Day
}

func (d Date) IsZero() bool {
	return d == Date{}
}
