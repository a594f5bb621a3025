package status

import (
	"fmt"
	"math"
	"time"
)

// Kind is the status currently driving the dashboard.
type Kind string

const (
	KindPregnant     Kind = "pregnant"
	KindPregnantLate Kind = "pregnant_late"
	KindPostpartum   Kind = "postpartum"
	KindPeriodActive Kind = "period_active"
	KindLate         Kind = "late"
	KindWaiting      Kind = "waiting"
	KindNone         Kind = "none"
)

func (k Kind) Valid() bool {
	switch k {
	case KindPregnant, KindPregnantLate, KindPostpartum, KindPeriodActive, KindLate, KindWaiting, KindNone:
		return true
	}
	return false
}

// Action is the single transition offered for a Kind.
type Action string

const (
	ActionBirth         Action = "birth"
	ActionRecoveryEnded Action = "recovery_ended"
	ActionPeriodEnded   Action = "period_ended"
	ActionPeriodStarted Action = "period_started"
)

// ActionFor returns the action offered while k is displayed.
func ActionFor(k Kind) Action {
	switch k {
	case KindPregnant, KindPregnantLate:
		return ActionBirth
	case KindPostpartum:
		return ActionRecoveryEnded
	case KindPeriodActive:
		return ActionPeriodEnded
	default:
		return ActionPeriodStarted
	}
}

const (
	// PregnancyDays is the assumed span from conception to due date.
	PregnancyDays = 274
	// PeriodLengthDays is the assumed length of a period.
	PeriodLengthDays = 6
	// CycleOffsetDays is added to a period's end to predict the next one.
	CycleOffsetDays = 25

	fertileWindowMin = 12
	fertileWindowMax = 16
	daysPerMonth     = 30.5
)

// Derived is the status shown to the user at one instant. It is recomputed on
// every request and never stored.
type Derived struct {
	Kind        Kind   `json:"kind"`
	Title       string `json:"title"`
	Subtitle    string `json:"subtitle"`
	Action      Action `json:"action"`
	ActionLabel string `json:"action_label"`
	DayCount    int    `json:"day_count"`

	PregnancyMonth int   `json:"pregnancy_month,omitempty"`
	PeriodDaysLeft *int  `json:"period_days_left,omitempty"`
	FertileWindow  bool  `json:"fertile_window,omitempty"`
	NextPeriodDate *Date `json:"next_period_date,omitempty"`
}

// Engine derives and advances status profiles. It holds no mutable state.
type Engine struct {
	cal Calendar
}

func NewEngine(loc *time.Location) Engine {
	return Engine{cal: NewCalendar(loc)}
}

func (e Engine) Calendar() Calendar { return e.cal }

// Derive evaluates p at now. The first matching branch wins: postpartum shadows
// pregnancy, which shadows period tracking. Incomplete profiles yield KindNone.
func (e Engine) Derive(p Profile, now time.Time) Derived {
	today := e.cal.Today(now)

	if p.IsPostpartum {
		// a flag without its start time reads as the first day
		day := 1
		if p.PostpartumStartTimestamp != nil {
			day = e.cal.DaysBetween(*p.PostpartumStartTimestamp, now) + 1
		}
		return withAction(Derived{
			Kind:     KindPostpartum,
			DayCount: day,
			Title:    fmt.Sprintf("Postpartum day %d", day),
			Subtitle: "Rest, hydrate and let your body recover",
		})
	}

	if p.MotherhoodStatus == MotherhoodPregnant && p.ExpectedDueDate != nil {
		due := *p.ExpectedDueDate
		remaining := today.DaysUntil(due)
		if remaining >= 0 {
			month := pregnancyMonth(due.AddDays(-PregnancyDays).DaysUntil(today))
			return withAction(Derived{
				Kind:           KindPregnant,
				DayCount:       remaining,
				PregnancyMonth: month,
				Title:          countdown(remaining, "until your due date", "Your due date is today"),
				Subtitle:       fmt.Sprintf("Month %d of your pregnancy", month),
			})
		}
		overdue := -remaining
		return withAction(Derived{
			Kind:     KindPregnantLate,
			DayCount: overdue,
			Title:    fmt.Sprintf("%s past your due date", plural(overdue)),
			Subtitle: "Your baby could arrive any day now",
		})
	}

	if p.IsPeriodActive && p.PeriodStartTimestamp != nil {
		day := e.cal.DaysBetween(*p.PeriodStartTimestamp, now) + 1
		left := PeriodLengthDays - day
		if left < 0 {
			left = 0
		}
		sub := "Should end soon"
		if left > 0 {
			sub = fmt.Sprintf("About %s left", plural(left))
		}
		return withAction(Derived{
			Kind:           KindPeriodActive,
			DayCount:       day,
			PeriodDaysLeft: &left,
			Title:          fmt.Sprintf("Period day %d", day),
			Subtitle:       sub,
		})
	}

	if p.NextPeriodDate != nil {
		next := *p.NextPeriodDate
		diff := today.DaysUntil(next)
		if diff <= 0 {
			late := -diff
			title := "Your period is due today"
			if late > 0 {
				title = fmt.Sprintf("Period late by %s", plural(late))
			}
			return withAction(Derived{
				Kind:           KindLate,
				DayCount:       late,
				Title:          title,
				Subtitle:       "Expected on " + next.String(),
				NextPeriodDate: datePtr(next),
			})
		}
		fertile := diff >= fertileWindowMin && diff <= fertileWindowMax
		sub := "Expected on " + next.String()
		if fertile {
			sub = "You are in your fertile window"
		}
		return withAction(Derived{
			Kind:           KindWaiting,
			DayCount:       diff,
			FertileWindow:  fertile,
			Title:          countdown(diff, "until your period", "Your period is due today"),
			Subtitle:       sub,
			NextPeriodDate: datePtr(next),
		})
	}

	return withAction(Derived{
		Kind:     KindNone,
		Title:    "Track your cycle",
		Subtitle: "Log your period to get predictions",
	})
}

var actionLabels = map[Action]string{
	ActionBirth:         "My baby has arrived",
	ActionRecoveryEnded: "My recovery has ended",
	ActionPeriodEnded:   "My period ended",
	ActionPeriodStarted: "My period started",
}

func withAction(d Derived) Derived {
	d.Action = ActionFor(d.Kind)
	d.ActionLabel = actionLabels[d.Action]
	return d
}

func pregnancyMonth(elapsed int) int {
	if elapsed < 1 {
		elapsed = 1
	}
	if elapsed > PregnancyDays {
		elapsed = PregnancyDays
	}
	month := int(math.Ceil(float64(elapsed) / daysPerMonth))
	if month < 1 {
		return 1
	}
	if month > 9 {
		return 9
	}
	return month
}

func countdown(n int, suffix, zero string) string {
	if n == 0 {
		return zero
	}
	return plural(n) + " " + suffix
}

func plural(n int) string {
	if n == 1 {
		return "1 day"
	}
	return fmt.Sprintf("%d days", n)
}
