package projections

import (
	"fmt"
	"time"

	"volunteerdesk/internal/domain/availability"
)

// CalendarDay is one cell of the month grid. Cells outside the month are blank.
type CalendarDay struct {
	Date     string // YYYY-MM-DD; empty for blank cells
	Day      int
	InMonth  bool
	Disabled bool // before today
	Selected bool
	Today    bool
}

// SelectedDate is a chosen date with its display label.
type SelectedDate struct {
	Value string
	Label string
}

// SignupCalendar is the read model for the availability picker.
type SignupCalendar struct {
	Title     string // "March 2024"
	Month     string // "2024-03"
	PrevMonth string
	NextMonth string
	CanPrev   bool // false when the shown month is the current month
	Weekdays  []string
	Weeks     [][]CalendarDay
	Selected  []SelectedDate
}

var weekdayLabels = []string{"Su", "Mo", "Tu", "We", "Th", "Fr", "Sa"}

// ParseMonth reads a "YYYY-MM" value, falling back to fallback's month.
func ParseMonth(s string, fallback availability.Date) availability.Date {
	t, err := time.Parse("2006-01", s)
	if err != nil {
		return fallback.FirstOfMonth()
	}
	return availability.Date{Year: t.Year(), Month: t.Month(), Day: 1}
}

// BuildSignupCalendar lays out month as Sunday-first weeks.
// PRE: today is the current day in the display time zone
// POST: Every week has 7 cells; days before today are disabled; months before today's are not shown
func BuildSignupCalendar(month, today availability.Date, selected availability.Set) SignupCalendar {
	first := month.FirstOfMonth()
	if first.Before(today.FirstOfMonth()) {
		first = today.FirstOfMonth()
	}

	cal := SignupCalendar{
		Title:     fmt.Sprintf("%s %d", first.Month, first.Year),
		Month:     monthValue(first),
		PrevMonth: monthValue(first.AddMonths(-1)),
		NextMonth: monthValue(first.AddMonths(1)),
		CanPrev:   today.FirstOfMonth().Before(first),
		Weekdays:  weekdayLabels,
	}

	week := make([]CalendarDay, int(first.Weekday()))
	for day := 1; day <= first.DaysInMonth(); day++ {
		d := availability.Date{Year: first.Year, Month: first.Month, Day: day}
		week = append(week, CalendarDay{
			Date:     d.String(),
			Day:      day,
			InMonth:  true,
			Disabled: d.Before(today),
			Selected: selected.Contains(d),
			Today:    d == today,
		})
		if len(week) == 7 {
			cal.Weeks = append(cal.Weeks, week)
			week = make([]CalendarDay, 0, 7)
		}
	}
	if len(week) > 0 {
		for len(week) < 7 {
			week = append(week, CalendarDay{})
		}
		cal.Weeks = append(cal.Weeks, week)
	}

	for _, d := range selected.Sorted() {
		cal.Selected = append(cal.Selected, SelectedDate{Value: d.String(), Label: d.Display()})
	}
	return cal
}

func monthValue(d availability.Date) string {
	return fmt.Sprintf("%04d-%02d", d.Year, int(d.Month))
}
