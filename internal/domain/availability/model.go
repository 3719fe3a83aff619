package availability

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"
)

// Domain errors
var (
	ErrInvalidDate = errors.New("availability date must be YYYY-MM-DD")
)

// Date is a calendar day with no time-of-day and no time zone.
// INVARIANT: a valid Date always names a real Gregorian day
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// FromTime extracts the calendar day of t as seen in loc.
// PRE: loc is non-nil
// POST: Returns the year/month/day fields of t.In(loc); never reads the UTC day
func FromTime(t time.Time, loc *time.Location) Date {
	y, m, d := t.In(loc).Date()
	return Date{Year: y, Month: m, Day: d}
}

// Today returns the current calendar day in loc.
func Today(loc *time.Location) Date {
	return FromTime(time.Now(), loc)
}

// Parse reads the canonical YYYY-MM-DD form.
// PRE: none
// POST: Returns ErrInvalidDate for anything that is not a real calendar day
func Parse(s string) (Date, error) {
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return Date{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	y, m, d := t.Date()
	return Date{Year: y, Month: m, Day: d}, nil
}

// String returns the canonical YYYY-MM-DD form used for storage and the wire.
func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

// Display returns the human-readable form shown to users, e.g. "Mar 20, 2024".
func (d Date) Display() string {
	return fmt.Sprintf("%s %d, %d", d.Month.String()[:3], d.Day, d.Year)
}

// IsZero reports whether d is the zero Date.
func (d Date) IsZero() bool {
	return d == Date{}
}

// Before reports whether d is strictly earlier than other.
func (d Date) Before(other Date) bool {
	if d.Year != other.Year {
		return d.Year < other.Year
	}
	if d.Month != other.Month {
		return d.Month < other.Month
	}
	return d.Day < other.Day
}

// AddDays returns the calendar day n days after d (n may be negative).
func (d Date) AddDays(n int) Date {
	t := time.Date(d.Year, d.Month, d.Day+n, 12, 0, 0, 0, time.UTC)
	y, m, day := t.Date()
	return Date{Year: y, Month: m, Day: day}
}

// Weekday returns the day of the week d falls on.
func (d Date) Weekday() time.Weekday {
	return time.Date(d.Year, d.Month, d.Day, 12, 0, 0, 0, time.UTC).Weekday()
}

// FirstOfMonth returns the first day of d's month.
func (d Date) FirstOfMonth() Date {
	return Date{Year: d.Year, Month: d.Month, Day: 1}
}

// AddMonths returns the first day of the month n months after d's month.
func (d Date) AddMonths(n int) Date {
	t := time.Date(d.Year, d.Month+time.Month(n), 1, 12, 0, 0, 0, time.UTC)
	return Date{Year: t.Year(), Month: t.Month(), Day: 1}
}

// DaysInMonth returns the number of days in d's month.
func (d Date) DaysInMonth() int {
	return time.Date(d.Year, d.Month+1, 0, 12, 0, 0, 0, time.UTC).Day()
}

// MarshalText implements encoding.TextMarshaler with the canonical form.
func (d Date) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler with the canonical form.
func (d *Date) UnmarshalText(b []byte) error {
	parsed, err := Parse(string(b))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Set is a set of calendar days. The zero value is empty and ready to use.
// INVARIANT: no duplicates; iteration through Sorted is ascending
type Set struct {
	days map[Date]struct{}
}

// NewSet builds a set from dates, collapsing duplicates.
func NewSet(dates ...Date) Set {
	var s Set
	for _, d := range dates {
		s.Add(d)
	}
	return s
}

// ParseSet builds a set from canonical date strings.
// PRE: none
// POST: Returns ErrInvalidDate on the first unparsable entry
func ParseSet(values []string) (Set, error) {
	var s Set
	for _, v := range values {
		d, err := Parse(v)
		if err != nil {
			return Set{}, err
		}
		s.Add(d)
	}
	return s, nil
}

// Add inserts d.
func (s *Set) Add(d Date) {
	if s.days == nil {
		s.days = make(map[Date]struct{})
	}
	s.days[d] = struct{}{}
}

// Toggle removes d when present and adds it otherwise.
// POST: Contains(d) is flipped; toggling twice restores the original set
func (s *Set) Toggle(d Date) {
	if s.Contains(d) {
		delete(s.days, d)
		return
	}
	s.Add(d)
}

// Contains reports membership.
func (s Set) Contains(d Date) bool {
	_, ok := s.days[d]
	return ok
}

// Len returns the number of days in the set.
func (s Set) Len() int {
	return len(s.days)
}

// Sorted returns the days in ascending order.
func (s Set) Sorted() []Date {
	out := make([]Date, 0, len(s.days))
	for d := range s.days {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Before(out[j]) })
	return out
}

// Strings returns the canonical strings in ascending order.
func (s Set) Strings() []string {
	sorted := s.Sorted()
	out := make([]string, len(sorted))
	for i, d := range sorted {
		out[i] = d.String()
	}
	return out
}

// MarshalJSON encodes the set as a sorted JSON array of YYYY-MM-DD strings.
func (s Set) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Strings())
}

// UnmarshalJSON decodes a JSON array of YYYY-MM-DD strings.
func (s *Set) UnmarshalJSON(b []byte) error {
	var values []string
	if err := json.Unmarshal(b, &values); err != nil {
		return err
	}
	parsed, err := ParseSet(values)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}
