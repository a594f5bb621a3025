package status

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	engine = NewEngine(time.UTC)
	// D is the reference "now" for derivation tests: 2024-03-15 10:00 UTC.
	dayD = time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC)
)

func dateD(offset int) *Date {
	d := DateOf(dayD, time.UTC).AddDays(offset)
	return &d
}

func baseProfile() Profile {
	return NewProfile(MaritalMarried, MotherhoodNotPregnant, Date{Year: 1995, Month: time.May, Day: 10})
}

func TestDerivePostpartumWinsOverPregnancy(t *testing.T) {
	p := baseProfile()
	p.MotherhoodStatus = MotherhoodPregnant
	p.ExpectedDueDate = dateD(10)
	p.IsPostpartum = true
	p.PostpartumStartTimestamp = timePtr(dayD.AddDate(0, 0, -4))
	p.IsPeriodActive = true
	p.PeriodStartTimestamp = timePtr(dayD)

	got := engine.Derive(p, dayD)
	assert.Equal(t, KindPostpartum, got.Kind)
	assert.Equal(t, 5, got.DayCount)
	assert.Equal(t, ActionRecoveryEnded, got.Action)
	assert.NotEmpty(t, got.ActionLabel)
}

func TestDerivePregnancyCountdown(t *testing.T) {
	p := baseProfile()
	p.MotherhoodStatus = MotherhoodPregnant
	p.ExpectedDueDate = dateD(10)

	got := engine.Derive(p, dayD)
	assert.Equal(t, KindPregnant, got.Kind)
	assert.Equal(t, 10, got.DayCount)
	assert.Equal(t, 9, got.PregnancyMonth)
	assert.Equal(t, ActionBirth, got.Action)
	assert.Equal(t, "10 days until your due date", got.Title)
}

func TestDerivePregnancyMonth(t *testing.T) {
	tests := []struct {
		name      string
		dueOffset int
		month     int
	}{
		{"conception today", PregnancyDays, 1},
		{"before estimated conception", PregnancyDays + 20, 1},
		{"74 days in", 200, 3},
		{"61 days in", PregnancyDays - 61, 2},
		{"62 days in", PregnancyDays - 62, 3},
		{"due today", 0, 9},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := baseProfile()
			p.MotherhoodStatus = MotherhoodPregnant
			p.ExpectedDueDate = dateD(tt.dueOffset)

			got := engine.Derive(p, dayD)
			require.Equal(t, KindPregnant, got.Kind)
			assert.Equal(t, tt.month, got.PregnancyMonth)
		})
	}
}

func TestDeriveOverduePregnancy(t *testing.T) {
	p := baseProfile()
	p.MotherhoodStatus = MotherhoodPregnant
	p.ExpectedDueDate = dateD(-3)

	got := engine.Derive(p, dayD)
	assert.Equal(t, KindPregnantLate, got.Kind)
	assert.Equal(t, 3, got.DayCount)
	assert.Equal(t, ActionBirth, got.Action)
}

func TestDerivePregnantWithoutDueDateFallsThrough(t *testing.T) {
	p := baseProfile()
	p.MotherhoodStatus = MotherhoodPregnant
	p.NextPeriodDate = dateD(5)

	got := engine.Derive(p, dayD)
	assert.Equal(t, KindWaiting, got.Kind)
	assert.Equal(t, 5, got.DayCount)
}

func TestDeriveActivePeriod(t *testing.T) {
	p := baseProfile()
	p.IsPeriodActive = true
	p.PeriodStartTimestamp = timePtr(time.Date(2024, 3, 13, 23, 50, 0, 0, time.UTC))
	p.NextPeriodDate = dateD(-20)

	got := engine.Derive(p, dayD)
	assert.Equal(t, KindPeriodActive, got.Kind)
	assert.Equal(t, 3, got.DayCount)
	require.NotNil(t, got.PeriodDaysLeft)
	assert.Equal(t, 3, *got.PeriodDaysLeft)
	assert.Equal(t, ActionPeriodEnded, got.Action)
}

func TestDeriveActivePeriodDaysLeftNeverNegative(t *testing.T) {
	p := baseProfile()
	p.IsPeriodActive = true
	p.PeriodStartTimestamp = timePtr(dayD.AddDate(0, 0, -9))

	got := engine.Derive(p, dayD)
	assert.Equal(t, 10, got.DayCount)
	require.NotNil(t, got.PeriodDaysLeft)
	assert.Equal(t, 0, *got.PeriodDaysLeft)
}

func TestDeriveActivePeriodAcrossMidnight(t *testing.T) {
	p := baseProfile()
	p.IsPeriodActive = true
	p.PeriodStartTimestamp = timePtr(time.Date(2024, 3, 14, 23, 59, 0, 0, time.UTC))

	got := engine.Derive(p, time.Date(2024, 3, 15, 0, 1, 0, 0, time.UTC))
	assert.Equal(t, 2, got.DayCount)

	got = engine.Derive(p, time.Date(2024, 3, 14, 23, 59, 59, 0, time.UTC))
	assert.Equal(t, 1, got.DayCount)
}

func TestDeriveLatePeriod(t *testing.T) {
	p := baseProfile()
	p.NextPeriodDate = dateD(-1)

	got := engine.Derive(p, dayD)
	assert.Equal(t, KindLate, got.Kind)
	assert.Equal(t, 1, got.DayCount)
	assert.Equal(t, ActionPeriodStarted, got.Action)
	assert.Equal(t, "Period late by 1 day", got.Title)
}

func TestDerivePeriodDueToday(t *testing.T) {
	p := baseProfile()
	p.NextPeriodDate = dateD(0)

	got := engine.Derive(p, dayD)
	assert.Equal(t, KindLate, got.Kind)
	assert.Equal(t, 0, got.DayCount)
	assert.Equal(t, "Your period is due today", got.Title)
}

func TestDeriveWaitingAndFertileWindow(t *testing.T) {
	tests := []struct {
		diff    int
		fertile bool
	}{
		{1, false},
		{11, false},
		{12, true},
		{14, true},
		{16, true},
		{17, false},
		{25, false},
	}
	for _, tt := range tests {
		p := baseProfile()
		p.NextPeriodDate = dateD(tt.diff)

		got := engine.Derive(p, dayD)
		assert.Equal(t, KindWaiting, got.Kind)
		assert.Equal(t, tt.diff, got.DayCount)
		assert.Equal(t, tt.fertile, got.FertileWindow, "diff %d", tt.diff)
		require.NotNil(t, got.NextPeriodDate)
		assert.Equal(t, *p.NextPeriodDate, *got.NextPeriodDate)
	}
}

func TestDeriveNone(t *testing.T) {
	got := engine.Derive(Profile{}, dayD)
	assert.Equal(t, KindNone, got.Kind)
	assert.Equal(t, 0, got.DayCount)
	assert.Equal(t, ActionPeriodStarted, got.Action)

	// A period flag without its anchor degrades instead of failing.
	p := baseProfile()
	p.IsPeriodActive = true
	assert.Equal(t, KindNone, engine.Derive(p, dayD).Kind)
}

func TestDerivePostpartumFlagAloneWins(t *testing.T) {
	p := baseProfile()
	p.MotherhoodStatus = MotherhoodPregnant
	p.ExpectedDueDate = dateD(10)
	p.IsPostpartum = true

	got := engine.Derive(p, dayD)
	assert.Equal(t, KindPostpartum, got.Kind)
	assert.Equal(t, 1, got.DayCount)
	assert.Equal(t, ActionRecoveryEnded, got.Action)
}

func TestDeriveIsStable(t *testing.T) {
	p := baseProfile()
	p.NextPeriodDate = dateD(7)
	first := engine.Derive(p, dayD)
	for i := 0; i < 60; i++ {
		assert.Equal(t, first, engine.Derive(p, dayD.Add(time.Duration(i)*time.Second)))
	}
}
