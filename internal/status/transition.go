package status

import "time"

// Apply advances p in response to the user acknowledging the action offered for
// kind. It returns a new profile; p is left untouched. Apply is not idempotent:
// results depend on now.
func (e Engine) Apply(p Profile, kind Kind, now time.Time) Profile {
	next := p

	switch kind {
	case KindPregnant, KindPregnantLate:
		next.MotherhoodStatus = MotherhoodMother
		next.IsPostpartum = true
		next.PostpartumStartTimestamp = timePtr(now)
		next.IsPeriodActive = false
		next.PeriodStartTimestamp = nil
		next.ExpectedDueDate = nil

	case KindPostpartum:
		next.IsPostpartum = false
		next.PostpartumStartTimestamp = nil
		next.IsPeriodActive = true
		next.PeriodStartTimestamp = timePtr(now)
		next.MotherhoodStatus = MotherhoodMother

	case KindPeriodActive:
		today := e.cal.Today(now)
		next.IsPeriodActive = false
		next.PeriodStartTimestamp = nil
		next.LastPeriodEndDate = datePtr(today)
		next.NextPeriodDate = datePtr(today.AddDays(CycleOffsetDays))

	default:
		next.IsPeriodActive = true
		next.PeriodStartTimestamp = timePtr(now)
		next.IsPostpartum = false
		next.PostpartumStartTimestamp = nil
		if next.MotherhoodStatus == MotherhoodPregnant {
			next.MotherhoodStatus = MotherhoodNotPregnant
		}
	}

	return next
}
