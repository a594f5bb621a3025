package assistant

import (
	"time"

	"github.com/nestgirl/nestgirl-backend/internal/status"
)

type signStart struct {
	month time.Month
	day   int
	sign  string
}

// Ordered by start date; a date before the first entry belongs to Capricorn.
var zodiacStarts = []signStart{
	{time.January, 20, "aquarius"},
	{time.February, 19, "pisces"},
	{time.March, 21, "aries"},
	{time.April, 20, "taurus"},
	{time.May, 21, "gemini"},
	{time.June, 21, "cancer"},
	{time.July, 23, "leo"},
	{time.August, 23, "virgo"},
	{time.September, 23, "libra"},
	{time.October, 23, "scorpio"},
	{time.November, 22, "sagittarius"},
	{time.December, 22, "capricorn"},
}

// ZodiacSign returns the western zodiac sign for a birth date, or "" when unknown.
func ZodiacSign(birth status.Date) string {
	if birth.IsZero() {
		return ""
	}
	sign := "capricorn"
	for _, s := range zodiacStarts {
		if birth.Month > s.month || (birth.Month == s.month && birth.Day >= s.day) {
			sign = s.sign
		}
	}
	return sign
}
