package okr

import "time"

// Warning levels for approaching or missed target dates.
const (
	WarnRed    = "red"
	WarnYellow = "yellow"
	WarnNone   = ""
)

// Outline classes combine due-date state with progress thresholds.
const (
	OutlineOverdueRed    = "overdue-red"
	OutlineOverdueYellow = "overdue-yellow"
	OutlineOnTrackBlue   = "on-track-blue"
	OutlineCompleteGreen = "complete-green"
	OutlineNone          = ""
)

// checkinOverdueDays: a check-in this many days old (or older) is overdue.
const checkinOverdueDays = 8

// dateWarningWindowDays: targets due within this many days turn yellow.
const dateWarningWindowDays = 7

func parseDay(value string) (time.Time, bool) {
	t, err := time.Parse(DayFormat, value)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

func truncateDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func daysUntil(today, target time.Time) int {
	return int(truncateDay(target).Sub(truncateDay(today)).Hours() / 24)
}

// DateWarning classifies a target date against today: red once the date has
// passed, yellow when it falls within the next seven days (inclusive),
// otherwise no warning. An empty or unparsable date never warns.
func DateWarning(today time.Time, targetDate string) string {
	target, ok := parseDay(targetDate)
	if !ok {
		return WarnNone
	}
	days := daysUntil(today, target)
	if days < 0 {
		return WarnRed
	}
	if days <= dateWarningWindowDays {
		return WarnYellow
	}
	return WarnNone
}

// CheckinOverdue reports whether the last check-in is eight or more days
// old. A missing check-in date is never overdue.
func CheckinOverdue(today time.Time, lastCheckin string) bool {
	checkin, ok := parseDay(lastCheckin)
	if !ok {
		return false
	}
	return daysUntil(checkin, today) >= checkinOverdueDays
}

// ObjectiveOutline maps an objective's progress and target date to one of
// four mutually exclusive outline classes, or none. Without a target date
// there is no outline regardless of progress.
func ObjectiveOutline(today time.Time, progress int, targetDate string) string {
	target, ok := parseDay(targetDate)
	if !ok {
		return OutlineNone
	}
	pastDue := daysUntil(today, target) < 0
	switch {
	case pastDue && progress < 70:
		return OutlineOverdueRed
	case pastDue:
		return OutlineOverdueYellow
	case progress >= 100:
		return OutlineCompleteGreen
	case progress >= 70:
		return OutlineOnTrackBlue
	default:
		return OutlineNone
	}
}
