package status

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrIntakeCompleted    = errors.New("intake has already been completed")
	ErrBirthDateRequired  = errors.New("birth date is required before intake")
	ErrDueDateRequired    = errors.New("expected due date is required")
	ErrPeriodGateRequired = errors.New("please tell us whether you still get your period")
	ErrLastPeriodRequired = errors.New("last period end date is required")
	ErrInvalidBabySex     = errors.New("baby sex must be boy, girl or not_yet")
)

// MenopauseGateAge is the age above which intake asks whether periods still occur.
const MenopauseGateAge = 40

// IntakeBranch names the set of questions a user is asked.
type IntakeBranch string

const (
	BranchPregnancy IntakeBranch = "pregnancy"
	BranchGate      IntakeBranch = "menopause_gate"
	BranchCycle     IntakeBranch = "cycle"
)

// IntakeAnswers carries raw survey answers. Dates are YYYY-MM-DD strings and are
// parsed here, before any profile field changes.
type IntakeAnswers struct {
	ExpectedDueDate   string  `json:"expected_due_date"`
	BabySex           BabySex `json:"baby_sex"`
	StillGetsPeriod   *bool   `json:"still_gets_period"`
	LastPeriodEndDate string  `json:"last_period_end_date"`
	Symptoms          string  `json:"symptoms"`
}

// Age returns completed years between birth and today.
func Age(birth, today Date) int {
	age := today.Year - birth.Year
	if today.Month < birth.Month || (today.Month == birth.Month && today.Day < birth.Day) {
		age--
	}
	return age
}

// Branch returns which questions apply to p at now.
func (e Engine) Branch(p Profile, now time.Time) IntakeBranch {
	if p.MotherhoodStatus == MotherhoodPregnant {
		return BranchPregnancy
	}
	if Age(p.BirthDate, e.cal.Today(now)) > MenopauseGateAge {
		return BranchGate
	}
	return BranchCycle
}

// Intake validates answers for p's branch and returns the seeded profile.
// Nothing is changed when validation fails.
func (e Engine) Intake(p Profile, a IntakeAnswers, now time.Time) (Profile, error) {
	if p.IntakeDone() {
		return p, ErrIntakeCompleted
	}
	if p.BirthDate.IsZero() {
		return p, ErrBirthDateRequired
	}

	next := p
	switch e.Branch(p, now) {
	case BranchPregnancy:
		if strings.TrimSpace(a.ExpectedDueDate) == "" {
			return p, ErrDueDateRequired
		}
		due, err := ParseDate(strings.TrimSpace(a.ExpectedDueDate))
		if err != nil {
			return p, fmt.Errorf("expected due date: %w", err)
		}
		sex := a.BabySex
		if sex == "" {
			sex = BabyNotYet
		}
		if !sex.Valid() {
			return p, ErrInvalidBabySex
		}
		next.ExpectedDueDate = datePtr(due)
		next.BabySex = sex

	case BranchGate:
		if a.StillGetsPeriod == nil {
			return p, ErrPeriodGateRequired
		}
		next.StillGetsPeriod = boolPtr(*a.StillGetsPeriod)
		if !*a.StillGetsPeriod {
			break
		}
		if err := seedCycle(&next, a); err != nil {
			return p, err
		}

	default:
		if err := seedCycle(&next, a); err != nil {
			return p, err
		}
	}

	next.IntakeCompletedAt = timePtr(now)
	return next, nil
}

func seedCycle(p *Profile, a IntakeAnswers) error {
	raw := strings.TrimSpace(a.LastPeriodEndDate)
	if raw == "" {
		return ErrLastPeriodRequired
	}
	end, err := ParseDate(raw)
	if err != nil {
		return fmt.Errorf("last period end date: %w", err)
	}
	p.LastPeriodEndDate = datePtr(end)
	p.NextPeriodDate = datePtr(end.AddDays(CycleOffsetDays))
	p.PeriodIssues = strings.TrimSpace(a.Symptoms)
	return nil
}
