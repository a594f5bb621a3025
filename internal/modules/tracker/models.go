package tracker

import (
	"time"

	"github.com/google/uuid"
	"github.com/nestgirl/nestgirl-backend/internal/status"
	"gorm.io/gorm"
)

// ProfileRecord is the stored form of status.Profile. Day-granularity fields are
// `date` columns holding UTC midnight; instants are timestamps.
type ProfileRecord struct {
	ID     uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex" json:"user_id"`

	MaritalStatus    string     `gorm:"size:10;not null;default:'single'" json:"marital_status"`
	MotherhoodStatus string     `gorm:"size:20;not null;default:'none'" json:"motherhood_status"`
	BirthDate        *time.Time `gorm:"type:date" json:"birth_date"`

	IsPeriodActive    bool       `gorm:"default:false" json:"is_period_active"`
	PeriodStartAt     *time.Time `json:"period_start_at"`
	NextPeriodDate    *time.Time `gorm:"type:date" json:"next_period_date"`
	LastPeriodEndDate *time.Time `gorm:"type:date" json:"last_period_end_date"`
	PeriodIssues      string     `gorm:"type:text" json:"period_issues"`
	StillGetsPeriod   *bool      `json:"still_gets_period"`

	IsPostpartum      bool       `gorm:"default:false" json:"is_postpartum"`
	PostpartumStartAt *time.Time `json:"postpartum_start_at"`

	ExpectedDueDate *time.Time `gorm:"type:date" json:"expected_due_date"`
	BabySex         string     `gorm:"size:10" json:"baby_sex"`

	IntakeCompletedAt *time.Time `json:"intake_completed_at"`
	Version           int        `gorm:"not null;default:0" json:"version"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (r *ProfileRecord) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

func (ProfileRecord) TableName() string {
	return "status_profiles"
}

func toRecord(userID uuid.UUID, p status.Profile) ProfileRecord {
	return ProfileRecord{
		UserID:            userID,
		MaritalStatus:     string(p.MaritalStatus),
		MotherhoodStatus:  string(p.MotherhoodStatus),
		BirthDate:         dateColumn(&p.BirthDate),
		IsPeriodActive:    p.IsPeriodActive,
		PeriodStartAt:     utc(p.PeriodStartTimestamp),
		NextPeriodDate:    dateColumn(p.NextPeriodDate),
		LastPeriodEndDate: dateColumn(p.LastPeriodEndDate),
		PeriodIssues:      p.PeriodIssues,
		StillGetsPeriod:   p.StillGetsPeriod,
		IsPostpartum:      p.IsPostpartum,
		PostpartumStartAt: utc(p.PostpartumStartTimestamp),
		ExpectedDueDate:   dateColumn(p.ExpectedDueDate),
		BabySex:           string(p.BabySex),
		IntakeCompletedAt: utc(p.IntakeCompletedAt),
		Version:           p.Version,
	}
}

func (r ProfileRecord) toProfile() status.Profile {
	p := status.Profile{
		MaritalStatus:            status.MaritalStatus(r.MaritalStatus),
		MotherhoodStatus:         status.MotherhoodStatus(r.MotherhoodStatus),
		IsPeriodActive:           r.IsPeriodActive,
		PeriodStartTimestamp:     r.PeriodStartAt,
		NextPeriodDate:           dateValue(r.NextPeriodDate),
		LastPeriodEndDate:        dateValue(r.LastPeriodEndDate),
		PeriodIssues:             r.PeriodIssues,
		StillGetsPeriod:          r.StillGetsPeriod,
		IsPostpartum:             r.IsPostpartum,
		PostpartumStartTimestamp: r.PostpartumStartAt,
		ExpectedDueDate:          dateValue(r.ExpectedDueDate),
		BabySex:                  status.BabySex(r.BabySex),
		IntakeCompletedAt:        r.IntakeCompletedAt,
		Version:                  r.Version,
	}
	if d := dateValue(r.BirthDate); d != nil {
		p.BirthDate = *d
	}
	// Rows written before the iff rules were enforced may carry a stale timestamp.
	if !p.IsPeriodActive {
		p.PeriodStartTimestamp = nil
	}
	if !p.IsPostpartum {
		p.PostpartumStartTimestamp = nil
	}
	return p
}

func dateColumn(d *status.Date) *time.Time {
	if d == nil || d.IsZero() {
		return nil
	}
	t := d.In(time.UTC)
	return &t
}

func dateValue(t *time.Time) *status.Date {
	if t == nil || t.IsZero() {
		return nil
	}
	// Drivers return date columns as midnight; read the wall date without shifting zones.
	y, m, d := t.Date()
	return &status.Date{Year: y, Month: m, Day: d}
}

func utc(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}
