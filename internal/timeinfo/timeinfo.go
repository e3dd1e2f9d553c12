// Package timeinfo implements the civil local date-time type used for
// business-day math: minute resolution for scheduling, second resolution for
// timestamps, plus the Canadian half-month period helper (spec §3).
package timeinfo

import (
	"fmt"
	"time"
)

// Unit selects the granularity for Floor.
type Unit int

const (
	UnitSecond Unit = iota
	UnitMinute
	UnitHour
	UnitDay
)

// TimeInfo wraps time.Time, local to the configured business timezone.
type TimeInfo struct {
	t time.Time
}

// New wraps an existing time.Time.
func New(t time.Time) TimeInfo { return TimeInfo{t: t} }

// Now returns the current local TimeInfo.
func Now() TimeInfo { return TimeInfo{t: time.Now()} }

// Zero reports whether this TimeInfo was never set.
func (ti TimeInfo) Zero() bool { return ti.t.IsZero() }

// Time returns the underlying time.Time.
func (ti TimeInfo) Time() time.Time { return ti.t }

// Before/After/Equal delegate to time.Time for ordering comparisons.
func (ti TimeInfo) Before(o TimeInfo) bool { return ti.t.Before(o.t) }
func (ti TimeInfo) After(o TimeInfo) bool  { return ti.t.After(o.t) }
func (ti TimeInfo) Equal(o TimeInfo) bool  { return ti.t.Equal(o.t) }

// Floor truncates ti down to the given unit boundary in its own location.
func (ti TimeInfo) Floor(u Unit) TimeInfo {
	t := ti.t
	switch u {
	case UnitSecond:
		return TimeInfo{t.Truncate(time.Second)}
	case UnitMinute:
		return TimeInfo{time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), 0, 0, t.Location())}
	case UnitHour:
		return TimeInfo{time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), 0, 0, 0, t.Location())}
	case UnitDay:
		return TimeInfo{time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())}
	default:
		return ti
	}
}

// WeekDay returns the ISO-ish weekday with Sunday == 0, matching the
// original C++ WeekDay() convention.
func (ti TimeInfo) WeekDay() int {
	return int(ti.t.Weekday())
}

// MinutesSinceMidnight returns the minute-of-day component, used for
// schedule/period boundary math.
func (ti TimeInfo) MinutesSinceMidnight() int {
	return ti.t.Hour()*60 + ti.t.Minute()
}

// AddMinutes returns ti shifted by n minutes.
func (ti TimeInfo) AddMinutes(n int) TimeInfo {
	return TimeInfo{ti.t.Add(time.Duration(n) * time.Minute)}
}

// AddDays returns ti shifted by n days.
func (ti TimeInfo) AddDays(n int) TimeInfo {
	return TimeInfo{ti.t.AddDate(0, 0, n)}
}

// HalfMonthJump implements the Canadian half-month period rule: given day
// n (1-based, within the month), the period boundary is day a if n <= a,
// otherwise day b of the same month, with b clamped to the month's last
// day; if n is past b, it is day a of the next month. a and b are
// typically 15 and the last day of month.
func (ti TimeInfo) HalfMonthJump(n, a, b int) TimeInfo {
	t := ti.t
	lastDay := time.Date(t.Year(), t.Month()+1, 0, 0, 0, 0, 0, t.Location()).Day()
	if b > lastDay {
		b = lastDay
	}

	day := n
	switch {
	case day <= a:
		return TimeInfo{time.Date(t.Year(), t.Month(), a, 0, 0, 0, 0, t.Location())}
	case day <= b:
		return TimeInfo{time.Date(t.Year(), t.Month(), b, 0, 0, 0, 0, t.Location())}
	default:
		next := time.Date(t.Year(), t.Month()+1, 1, 0, 0, 0, 0, t.Location())
		return TimeInfo{next}.HalfMonthJump(1, a, b)
	}
}

// OvertimeWeek resolves the [start, end) 7-day overtime week containing ref,
// given wageWeekStart expressed as minutes-since-Sunday-midnight (0..10079).
// This resolves the Open Question in spec §9: start is the most recent
// wage-week boundary at or before ref; end is exactly 7 days later. The
// boundary is first placed in ref's Sunday-based week; if that puts it
// after ref (ref falls earlier in the week than wageWeekStart) it is backed
// up by 7 days.
func OvertimeWeek(ref TimeInfo, wageWeekStart int) (start, end TimeInfo, err error) {
	if wageWeekStart < 0 || wageWeekStart >= 7*24*60 {
		return TimeInfo{}, TimeInfo{}, fmt.Errorf("%w: wage_week_start out of range", errOvertimeBounds)
	}

	t := ref.t
	sunday := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	sunday = sunday.AddDate(0, 0, -int(sunday.Weekday()))

	boundary := sunday.Add(time.Duration(wageWeekStart) * time.Minute)
	if boundary.After(t) {
		boundary = boundary.AddDate(0, 0, -7)
	}

	s := TimeInfo{boundary}
	e := s.AddDays(7)

	if !(s.Before(ref) || s.Equal(ref)) {
		return TimeInfo{}, TimeInfo{}, fmt.Errorf("%w: start wrong", errOvertimeBounds)
	}
	if !ref.Before(e) {
		return TimeInfo{}, TimeInfo{}, fmt.Errorf("%w: end wrong", errOvertimeBounds)
	}
	return s, e, nil
}
