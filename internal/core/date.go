package core

import (
	"time"
)

// Day is an ISO calendar date (YYYY-MM-DD) with no time component.
// ISO date strings sort lexicographically in chronological order, so
// range checks are plain string comparisons.
type Day string

const dayLayout = "2006-01-02"

func (d Day) Validate() error {
	if _, err := time.Parse(dayLayout, string(d)); err != nil {
		return ErrInvalidDate
	}
	return nil
}

// Time returns the day at midnight UTC. Invalid days yield the zero time.
func (d Day) Time() time.Time {
	t, err := time.Parse(dayLayout, string(d))
	if err != nil {
		return time.Time{}
	}
	return t
}

// AddDays returns the day shifted by n calendar days.
func (d Day) AddDays(n int) Day {
	return Day(d.Time().AddDate(0, 0, n).Format(dayLayout))
}

func (d Day) Before(other Day) bool { return d < other }

func (d Day) After(other Day) bool { return d > other }

// DayOf truncates t to its local calendar date.
func DayOf(t time.Time) Day {
	return Day(t.Format(dayLayout))
}

// Today is the local calendar date at evaluation time.
func Today() Day {
	return DayOf(time.Now())
}

// WeekStart returns the most recent Monday on or before d, treating
// Sunday as day 7 of the week.
func (d Day) WeekStart() Day {
	t := d.Time()
	weekday := int(t.Weekday())
	if weekday == 0 {
		weekday = 7
	}
	return d.AddDays(1 - weekday)
}

// MonthStart returns the first calendar day of d's month.
func (d Day) MonthStart() Day {
	t := d.Time()
	return DayOf(time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC))
}
