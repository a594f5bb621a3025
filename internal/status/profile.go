package status

import "time"

type MaritalStatus string

const (
	MaritalSingle  MaritalStatus = "single"
	MaritalMarried MaritalStatus = "married"
)

func (m MaritalStatus) Valid() bool {
	return m == MaritalSingle || m == MaritalMarried
}

type MotherhoodStatus string

const (
	MotherhoodNone        MotherhoodStatus = "none"
	MotherhoodPregnant    MotherhoodStatus = "pregnant"
	MotherhoodNotPregnant MotherhoodStatus = "not_pregnant"
	MotherhoodMother      MotherhoodStatus = "mother"
)

func (m MotherhoodStatus) Valid() bool {
	switch m {
	case MotherhoodNone, MotherhoodPregnant, MotherhoodNotPregnant, MotherhoodMother:
		return true
	}
	return false
}

type BabySex string

const (
	BabyBoy    BabySex = "boy"
	BabyGirl   BabySex = "girl"
	BabyNotYet BabySex = "not_yet"
)

func (b BabySex) Valid() bool {
	return b == BabyBoy || b == BabyGirl || b == BabyNotYet
}

// Profile is a user's self-reported reproductive state and anchor dates.
// Transitions return a new Profile and never write through the pointer fields of
// the input, so a Profile can be shared freely.
type Profile struct {
	MaritalStatus    MaritalStatus    `json:"marital_status"`
	MotherhoodStatus MotherhoodStatus `json:"motherhood_status"`
	BirthDate        Date             `json:"birth_date"`

	IsPeriodActive       bool       `json:"is_period_active"`
	PeriodStartTimestamp *time.Time `json:"period_start_timestamp,omitempty"`
	NextPeriodDate       *Date      `json:"next_period_date,omitempty"`
	LastPeriodEndDate    *Date      `json:"last_period_end_date,omitempty"`
	PeriodIssues         string     `json:"period_issues,omitempty"`
	StillGetsPeriod      *bool      `json:"still_gets_period,omitempty"`

	IsPostpartum             bool       `json:"is_postpartum"`
	PostpartumStartTimestamp *time.Time `json:"postpartum_start_timestamp,omitempty"`

	ExpectedDueDate *Date   `json:"expected_due_date,omitempty"`
	BabySex         BabySex `json:"baby_sex,omitempty"`

	IntakeCompletedAt *time.Time `json:"intake_completed_at,omitempty"`
	Version           int        `json:"version"`
}

// NewProfile returns the profile created at signup, before intake.
func NewProfile(marital MaritalStatus, motherhood MotherhoodStatus, birthDate Date) Profile {
	return Profile{
		MaritalStatus:    marital,
		MotherhoodStatus: motherhood,
		BirthDate:        birthDate,
	}
}

func (p Profile) IntakeDone() bool {
	return p.IntakeCompletedAt != nil
}

func datePtr(d Date) *Date { return &d }

func timePtr(t time.Time) *time.Time { return &t }

func boolPtr(b bool) *bool { return &b }
