package status

import "time"

// Clock provides the current time. Inject a fixed clock in tests.
type Clock interface {
	Now() time.Time
}

type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

// FixedClock always reports the same instant.
type FixedClock struct {
	T time.Time
}

func (c FixedClock) Now() time.Time { return c.T }

// Calendar does day-granularity arithmetic in a single timezone.
type Calendar struct {
	loc *time.Location
}

func NewCalendar(loc *time.Location) Calendar {
	if loc == nil {
		loc = time.UTC
	}
	return Calendar{loc: loc}
}

func (c Calendar) Location() *time.Location {
	if c.loc == nil {
		return time.UTC
	}
	return c.loc
}

// Today returns the calendar date of now.
func (c Calendar) Today(now time.Time) Date {
	return DateOf(now, c.Location())
}

// DaysBetween returns whole calendar days from the date of a to the date of b.
// Time of day is ignored: 23:59 and 00:01 the next day are one day apart.
func (c Calendar) DaysBetween(a, b time.Time) int {
	return DateOf(a, c.Location()).DaysUntil(DateOf(b, c.Location()))
}

// SameDay reports whether a and b fall on the same calendar day.
func (c Calendar) SameDay(a, b time.Time) bool {
	return DateOf(a, c.Location()) == DateOf(b, c.Location())
}
