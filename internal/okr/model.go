// Package okr holds the goal-tracking engine: the document model, progress
// and weight computation, the capped audit history, and trend aggregation.
// Everything in this package is pure in-memory state; persistence and
// presentation live elsewhere.
package okr

import "time"

const (
	GroupPersonal = "Personal"
	GroupTeam     = "Team"
	GroupCompany  = "Company"
)

const (
	StatusOnTrack  = "on-track"
	StatusOffTrack = "off-track"
	StatusAtRisk   = "at-risk"
)

const (
	ConfidenceLow    = "Low"
	ConfidenceMedium = "Medium"
	ConfidenceHigh   = "High"
)

// DayFormat is the layout for all calendar-date fields (start/target/check-in).
const DayFormat = "2006-01-02"

type KeyResult struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Target      float64 `json:"target"`
	Current     float64 `json:"current"`
	Weight      int     `json:"weight"`
	Status      string  `json:"status"`
	Confidence  string  `json:"confidence"`
	StartDate   string  `json:"startDate,omitempty"`
	TargetDate  string  `json:"targetDate,omitempty"`
	LastCheckin string  `json:"lastCheckin,omitempty"`
	Evidence    string  `json:"evidence,omitempty"`
	Comments    string  `json:"comments,omitempty"`
	CreatedAt   string  `json:"createdAt"`
}

type Objective struct {
	ID          string      `json:"id"`
	Group       string      `json:"group"`
	Year        int         `json:"year"`
	Quarter     int         `json:"quarter"`
	Title       string      `json:"title"`
	Purpose     string      `json:"purpose,omitempty"`
	StartDate   string      `json:"startDate,omitempty"`
	TargetDate  string      `json:"targetDate,omitempty"`
	Weight      int         `json:"weight"`
	LastCheckin string      `json:"lastCheckin,omitempty"`
	CreatedAt   string      `json:"createdAt"`
	KeyResults  []KeyResult `json:"keyResults"`
}

const (
	EntryCreated  = "created"
	EntryUpdated  = "updated"
	EntryProgress = "progress"
	EntryDeleted  = "deleted"
	EntrySnapshot = "progress-snapshot"
)

const (
	ItemObjective = "objective"
	ItemKeyResult = "keyresult"
	ItemSystem    = "system"
)

// HistoryEntry is one immutable audit record. Changes holds field-level
// {from,to} pairs for updates, marker payloads for create/delete/progress,
// and the full captured state for progress-snapshot entries.
type HistoryEntry struct {
	ID        string         `json:"id"`
	Timestamp time.Time      `json:"timestamp"`
	Type      string         `json:"type"`
	ItemType  string         `json:"itemType"`
	ItemID    string         `json:"itemId"`
	ItemTitle string         `json:"itemTitle"`
	Changes   map[string]any `json:"changes"`
	Group     string         `json:"group,omitempty"`
}

// Document is the root aggregate: ordered objectives plus the newest-first
// history log. The engine owns it exclusively; stores only ever load and
// save it whole.
type Document struct {
	Objectives []Objective    `json:"objectives"`
	History    []HistoryEntry `json:"history"`
}

// Normalize fills entity defaults and repairs out-of-range values in one
// pass at the load/create boundary, so read paths never need per-site
// fallbacks. A document written by the baseline schema (no confidence, no
// history) normalizes cleanly.
func Normalize(doc *Document) {
	if doc.Objectives == nil {
		doc.Objectives = []Objective{}
	}
	if doc.History == nil {
		doc.History = []HistoryEntry{}
	}
	for i := range doc.Objectives {
		normalizeObjective(&doc.Objectives[i])
	}
	if len(doc.History) > historyCap {
		doc.History = doc.History[:historyCap]
	}
}

func normalizeObjective(obj *Objective) {
	if obj.Group != GroupPersonal && obj.Group != GroupTeam && obj.Group != GroupCompany {
		obj.Group = GroupPersonal
	}
	if obj.Quarter < 1 || obj.Quarter > 4 {
		obj.Quarter = quarterOf(time.Now())
	}
	obj.Weight = clampWeight(obj.Weight)
	if obj.KeyResults == nil {
		obj.KeyResults = []KeyResult{}
	}
	for i := range obj.KeyResults {
		normalizeKeyResult(&obj.KeyResults[i])
	}
}

func normalizeKeyResult(kr *KeyResult) {
	if kr.Status != StatusOnTrack && kr.Status != StatusOffTrack && kr.Status != StatusAtRisk {
		kr.Status = StatusOnTrack
	}
	if kr.Confidence != ConfidenceLow && kr.Confidence != ConfidenceMedium && kr.Confidence != ConfidenceHigh {
		kr.Confidence = ConfidenceMedium
	}
	kr.Weight = clampWeight(kr.Weight)
	if kr.Target < 0 {
		kr.Target = 0
	}
	kr.Current = clampCurrent(kr.Current, kr.Target)
}

func clampWeight(w int) int {
	if w < 0 {
		return 0
	}
	if w > 100 {
		return 100
	}
	return w
}

// clampCurrent pins current into [0,target]. A non-positive target leaves no
// room above zero, so current collapses to 0 rather than drifting past an
// unset target.
func clampCurrent(current, target float64) float64 {
	if target < 0 {
		target = 0
	}
	if current < 0 {
		return 0
	}
	if current > target {
		return target
	}
	return current
}

func quarterOf(t time.Time) int {
	return (int(t.Month())-1)/3 + 1
}

func (d *Document) objective(id string) *Objective {
	for i := range d.Objectives {
		if d.Objectives[i].ID == id {
			return &d.Objectives[i]
		}
	}
	return nil
}

func (o *Objective) keyResult(id string) *KeyResult {
	for i := range o.KeyResults {
		if o.KeyResults[i].ID == id {
			return &o.KeyResults[i]
		}
	}
	return nil
}
