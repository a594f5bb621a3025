package status

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2024-01-26")
	require.NoError(t, err)
	assert.Equal(t, Date{Year: 2024, Month: time.January, Day: 26}, d)
	assert.Equal(t, "2024-01-26", d.String())

	for _, bad := range []string{"", "26/01/2024", "2024-13-01", "2024-02-30", "yesterday"} {
		_, err := ParseDate(bad)
		assert.ErrorIs(t, err, ErrInvalidDate, bad)
	}
}

func TestDateAddDays(t *testing.T) {
	d := Date{Year: 2024, Month: time.January, Day: 1}
	assert.Equal(t, "2024-01-26", d.AddDays(25).String())
	assert.Equal(t, "2023-12-31", d.AddDays(-1).String())

	leap := Date{Year: 2024, Month: time.February, Day: 28}
	assert.Equal(t, "2024-02-29", leap.AddDays(1).String())
	assert.Equal(t, "2024-03-01", leap.AddDays(2).String())
}

func TestDateDaysUntil(t *testing.T) {
	a := Date{Year: 2024, Month: time.January, Day: 20}
	b := Date{Year: 2024, Month: time.January, Day: 26}
	assert.Equal(t, 6, a.DaysUntil(b))
	assert.Equal(t, -6, b.DaysUntil(a))
	assert.Equal(t, 0, a.DaysUntil(a))
	assert.True(t, a.Before(b))
	assert.False(t, b.Before(a))
}

func TestCalendarDaysBetweenIgnoresTimeOfDay(t *testing.T) {
	cal := NewCalendar(time.UTC)

	morning := time.Date(2024, 3, 15, 0, 0, 1, 0, time.UTC)
	night := time.Date(2024, 3, 15, 23, 59, 59, 0, time.UTC)
	assert.Equal(t, 0, cal.DaysBetween(morning, night))
	assert.Equal(t, 0, cal.DaysBetween(night, morning))
	assert.Equal(t, 0, cal.DaysBetween(night, night))
	assert.True(t, cal.SameDay(morning, night))

	beforeMidnight := time.Date(2024, 3, 15, 23, 59, 0, 0, time.UTC)
	afterMidnight := time.Date(2024, 3, 16, 0, 1, 0, 0, time.UTC)
	assert.Equal(t, 1, cal.DaysBetween(beforeMidnight, afterMidnight))
	assert.Equal(t, -1, cal.DaysBetween(afterMidnight, beforeMidnight))
	assert.False(t, cal.SameDay(beforeMidnight, afterMidnight))
}

func TestCalendarDaysBetweenAntisymmetric(t *testing.T) {
	cal := NewCalendar(time.UTC)
	base := time.Date(2024, 1, 1, 7, 30, 0, 0, time.UTC)
	for _, offset := range []time.Duration{25 * time.Hour, 72 * time.Hour, 400 * 24 * time.Hour, -36 * time.Hour} {
		other := base.Add(offset)
		assert.Equal(t, -cal.DaysBetween(base, other), cal.DaysBetween(other, base))
	}
}

func TestCalendarUsesConfiguredZone(t *testing.T) {
	plus3 := time.FixedZone("UTC+3", 3*60*60)
	a := time.Date(2024, 1, 1, 22, 30, 0, 0, time.UTC) // 01:30 on Jan 2 in UTC+3
	b := time.Date(2024, 1, 2, 10, 0, 0, 0, time.UTC)

	assert.Equal(t, 1, NewCalendar(time.UTC).DaysBetween(a, b))
	assert.Equal(t, 0, NewCalendar(plus3).DaysBetween(a, b))
	assert.Equal(t, "2024-01-02", NewCalendar(plus3).Today(a).String())
}

func TestDateJSON(t *testing.T) {
	var payload struct {
		Due  Date  `json:"due"`
		Next *Date `json:"next"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"due":"2024-05-01","next":null}`), &payload))
	assert.Equal(t, "2024-05-01", payload.Due.String())
	assert.Nil(t, payload.Next)

	out, err := json.Marshal(payload.Due)
	require.NoError(t, err)
	assert.JSONEq(t, `"2024-05-01"`, string(out))

	assert.ErrorIs(t, json.Unmarshal([]byte(`{"due":"05/01/2024"}`), &payload), ErrInvalidDate)
}
