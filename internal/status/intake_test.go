package status

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var intakeNow = time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)

func yes() *bool { return boolPtr(true) }
func no() *bool  { return boolPtr(false) }

func TestAge(t *testing.T) {
	today := Date{Year: 2024, Month: time.March, Day: 15}
	assert.Equal(t, 40, Age(Date{Year: 1984, Month: time.March, Day: 15}, today))
	assert.Equal(t, 39, Age(Date{Year: 1984, Month: time.March, Day: 16}, today))
	assert.Equal(t, 39, Age(Date{Year: 1984, Month: time.December, Day: 1}, today))
	assert.Equal(t, 40, Age(Date{Year: 1984, Month: time.January, Day: 31}, today))
}

func TestBranch(t *testing.T) {
	pregnant := NewProfile(MaritalMarried, MotherhoodPregnant, Date{Year: 1970, Month: time.January, Day: 1})
	assert.Equal(t, BranchPregnancy, engine.Branch(pregnant, intakeNow))

	over40 := NewProfile(MaritalMarried, MotherhoodMother, Date{Year: 1980, Month: time.January, Day: 1})
	assert.Equal(t, BranchGate, engine.Branch(over40, intakeNow))

	// 41 by year subtraction, 40 by birthday: stays on the cycle branch.
	nearBoundary := NewProfile(MaritalSingle, MotherhoodNone, Date{Year: 1983, Month: time.June, Day: 1})
	assert.Equal(t, BranchCycle, engine.Branch(nearBoundary, intakeNow))

	young := NewProfile(MaritalSingle, MotherhoodNone, Date{Year: 2000, Month: time.January, Day: 1})
	assert.Equal(t, BranchCycle, engine.Branch(young, intakeNow))
}

func TestIntakePregnancy(t *testing.T) {
	p := NewProfile(MaritalMarried, MotherhoodPregnant, Date{Year: 1994, Month: time.February, Day: 3})

	_, err := engine.Intake(p, IntakeAnswers{}, intakeNow)
	assert.ErrorIs(t, err, ErrDueDateRequired)

	_, err = engine.Intake(p, IntakeAnswers{ExpectedDueDate: "next spring"}, intakeNow)
	assert.ErrorIs(t, err, ErrInvalidDate)

	_, err = engine.Intake(p, IntakeAnswers{ExpectedDueDate: "2024-08-01", BabySex: "twins"}, intakeNow)
	assert.ErrorIs(t, err, ErrInvalidBabySex)

	next, err := engine.Intake(p, IntakeAnswers{ExpectedDueDate: "2024-08-01"}, intakeNow)
	require.NoError(t, err)
	require.NotNil(t, next.ExpectedDueDate)
	assert.Equal(t, "2024-08-01", next.ExpectedDueDate.String())
	assert.Equal(t, BabyNotYet, next.BabySex)
	assert.Nil(t, next.NextPeriodDate)
	require.NotNil(t, next.IntakeCompletedAt)

	got := engine.Derive(next, intakeNow)
	assert.Equal(t, KindPregnant, got.Kind)
	assert.Equal(t, 139, got.DayCount)
}

func TestIntakeOver40NoLongerGetsPeriod(t *testing.T) {
	p := NewProfile(MaritalMarried, MotherhoodMother, Date{Year: 1972, Month: time.October, Day: 9})

	_, err := engine.Intake(p, IntakeAnswers{LastPeriodEndDate: "2024-03-01"}, intakeNow)
	assert.ErrorIs(t, err, ErrPeriodGateRequired)

	next, err := engine.Intake(p, IntakeAnswers{StillGetsPeriod: no(), LastPeriodEndDate: "2024-03-01"}, intakeNow)
	require.NoError(t, err)
	require.NotNil(t, next.StillGetsPeriod)
	assert.False(t, *next.StillGetsPeriod)
	assert.Nil(t, next.NextPeriodDate)
	assert.Nil(t, next.LastPeriodEndDate)
	assert.True(t, next.IntakeDone())
	assert.Equal(t, KindNone, engine.Derive(next, intakeNow).Kind)
}

func TestIntakeOver40StillGetsPeriod(t *testing.T) {
	p := NewProfile(MaritalMarried, MotherhoodMother, Date{Year: 1972, Month: time.October, Day: 9})

	_, err := engine.Intake(p, IntakeAnswers{StillGetsPeriod: yes()}, intakeNow)
	assert.ErrorIs(t, err, ErrLastPeriodRequired)

	next, err := engine.Intake(p, IntakeAnswers{StillGetsPeriod: yes(), LastPeriodEndDate: "2024-03-01"}, intakeNow)
	require.NoError(t, err)
	require.NotNil(t, next.NextPeriodDate)
	assert.Equal(t, "2024-03-26", next.NextPeriodDate.String())
	require.NotNil(t, next.StillGetsPeriod)
	assert.True(t, *next.StillGetsPeriod)
}

func TestIntakeCycle(t *testing.T) {
	p := NewProfile(MaritalSingle, MotherhoodNone, Date{Year: 2001, Month: time.April, Day: 20})

	_, err := engine.Intake(p, IntakeAnswers{Symptoms: "back pain"}, intakeNow)
	assert.ErrorIs(t, err, ErrLastPeriodRequired)

	_, err = engine.Intake(p, IntakeAnswers{LastPeriodEndDate: "2024/03/01"}, intakeNow)
	assert.ErrorIs(t, err, ErrInvalidDate)

	next, err := engine.Intake(p, IntakeAnswers{LastPeriodEndDate: " 2024-03-01 ", Symptoms: " back pain "}, intakeNow)
	require.NoError(t, err)
	assert.Equal(t, "2024-03-26", next.NextPeriodDate.String())
	assert.Equal(t, "2024-03-01", next.LastPeriodEndDate.String())
	assert.Equal(t, "back pain", next.PeriodIssues)
	assert.Nil(t, next.StillGetsPeriod)
}

func TestIntakeFailureLeavesProfileUnchanged(t *testing.T) {
	p := NewProfile(MaritalSingle, MotherhoodNone, Date{Year: 2001, Month: time.April, Day: 20})
	got, err := engine.Intake(p, IntakeAnswers{LastPeriodEndDate: "bad"}, intakeNow)
	require.Error(t, err)
	assert.Equal(t, p, got)
	assert.Nil(t, got.NextPeriodDate)
	assert.False(t, got.IntakeDone())
}

func TestIntakeRunsOnce(t *testing.T) {
	p := NewProfile(MaritalSingle, MotherhoodNone, Date{Year: 2001, Month: time.April, Day: 20})
	p, err := engine.Intake(p, IntakeAnswers{LastPeriodEndDate: "2024-03-01"}, intakeNow)
	require.NoError(t, err)

	_, err = engine.Intake(p, IntakeAnswers{LastPeriodEndDate: "2024-03-10"}, intakeNow)
	assert.ErrorIs(t, err, ErrIntakeCompleted)
}

func TestIntakeRequiresBirthDate(t *testing.T) {
	_, err := engine.Intake(Profile{MotherhoodStatus: MotherhoodNone}, IntakeAnswers{LastPeriodEndDate: "2024-03-01"}, intakeNow)
	assert.ErrorIs(t, err, ErrBirthDateRequired)
}
