package okr

import "time"

var statusLabels = map[string]string{
	StatusOnTrack:  "On track",
	StatusOffTrack: "Off track",
	StatusAtRisk:   "At risk",
}

// KeyResultView is the per-key-result presentation contract.
type KeyResultView struct {
	KeyResult        KeyResult `json:"keyResult"`
	Progress         int       `json:"progress"`
	StatusLabel      string    `json:"statusLabel"`
	ConfidenceLabel  string    `json:"confidenceLabel"`
	DateWarningClass string    `json:"dateWarningClass"`
	CheckinOverdue   bool      `json:"checkinOverdue"`
}

// ObjectiveView is the per-objective presentation contract.
type ObjectiveView struct {
	Objective        Objective       `json:"objective"`
	Progress         int             `json:"progress"`
	OutlineClass     string          `json:"outlineClass"`
	DateWarningClass string          `json:"dateWarningClass"`
	CheckinOverdue   bool            `json:"checkinOverdue"`
	KeyResults       []KeyResultView `json:"krViewModels"`
}

// BuildObjectiveView derives the presentation model for one objective as of
// the given day.
func BuildObjectiveView(today time.Time, obj Objective) ObjectiveView {
	progress := ObjectiveProgress(obj)
	krViews := make([]KeyResultView, 0, len(obj.KeyResults))
	for _, kr := range obj.KeyResults {
		krViews = append(krViews, KeyResultView{
			KeyResult:        kr,
			Progress:         KeyResultProgress(kr),
			StatusLabel:      statusLabels[kr.Status],
			ConfidenceLabel:  kr.Confidence + " confidence",
			DateWarningClass: DateWarning(today, kr.TargetDate),
			CheckinOverdue:   CheckinOverdue(today, kr.LastCheckin),
		})
	}
	return ObjectiveView{
		Objective:        obj,
		Progress:         progress,
		OutlineClass:     ObjectiveOutline(today, progress, obj.TargetDate),
		DateWarningClass: DateWarning(today, obj.TargetDate),
		CheckinOverdue:   CheckinOverdue(today, obj.LastCheckin),
		KeyResults:       krViews,
	}
}

// Views derives presentation models for every objective in order.
func (d *Document) Views(today time.Time) []ObjectiveView {
	views := make([]ObjectiveView, 0, len(d.Objectives))
	for _, obj := range d.Objectives {
		views = append(views, BuildObjectiveView(today, obj))
	}
	return views
}
