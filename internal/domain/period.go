package domain

// Period is one of the three daily check-in slots.
type Period string

const (
	PeriodMorning Period = "morning"
	PeriodDay     Period = "day"
	PeriodEvening Period = "evening"
)

// Periods lists the slots in schedule order: the i-th notification time of a
// profile belongs to Periods[i].
var Periods = []Period{PeriodMorning, PeriodDay, PeriodEvening}

// ParsePeriod returns the period for s, or false if s is not a known slot.
// "afternoon" is accepted as a legacy alias for the day slot.
func ParsePeriod(s string) (Period, bool) {
	switch Period(s) {
	case PeriodMorning, PeriodDay, PeriodEvening:
		return Period(s), true
	}
	if s == "afternoon" {
		return PeriodDay, true
	}
	return "", false
}

func (p Period) Valid() bool {
	_, ok := ParsePeriod(string(p))
	return ok
}
