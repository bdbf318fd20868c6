package okr

import (
	"strconv"
	"time"

	"northstar/api/internal/util"
)

// ObjectiveInput carries the form-supplied fields of an objective edit.
// Nil pointers mean "not supplied"; only supplied fields are applied.
type ObjectiveInput struct {
	Title       *string
	Purpose     *string
	Group       *string
	Year        *int
	Quarter     *int
	StartDate   *string
	TargetDate  *string
	Weight      *int
	LastCheckin *string
}

// KeyResultInput carries the form-supplied fields of a key-result edit.
type KeyResultInput struct {
	Title       *string
	Target      *float64
	Current     *float64
	Weight      *int
	Status      *string
	Confidence  *string
	StartDate   *string
	TargetDate  *string
	LastCheckin *string
	Evidence    *string
	Comments    *string
}

// Engine is the state container for one document. Every operation mutates
// the held document in place: balancing weights, diffing for the audit log,
// and recording a progress snapshot in a single synchronous pass. The
// engine holds no locks; callers serialize mutating calls.
type Engine struct {
	doc   *Document
	now   func() time.Time
	newID func(string) string
}

// NewEngine wraps a document, normalizing it once at the boundary.
func NewEngine(doc *Document) *Engine {
	if doc == nil {
		doc = &Document{}
	}
	Normalize(doc)
	return &Engine{doc: doc, now: time.Now, newID: util.NewID}
}

// Document exposes the engine's state for persistence and derived reads.
func (e *Engine) Document() *Document {
	return e.doc
}

func (e *Engine) today() string {
	return e.now().Format(DayFormat)
}

func (e *Engine) logEntry(entryType, itemType, itemID, itemTitle string, changes map[string]any, group string) {
	e.doc.appendHistory(HistoryEntry{
		ID:        e.newID("hist"),
		Timestamp: e.now(),
		Type:      entryType,
		ItemType:  itemType,
		ItemID:    itemID,
		ItemTitle: itemTitle,
		Changes:   changes,
		Group:     group,
	})
}

// recordSnapshot captures the progress of every objective as a
// progress-snapshot entry. Skipped when the document holds no objectives.
// Same-day snapshots append a new entry rather than updating in place.
func (e *Engine) recordSnapshot() {
	if len(e.doc.Objectives) == 0 {
		return
	}
	e.logEntry(EntrySnapshot, ItemSystem, "system", "Progress snapshot",
		map[string]any{"objectives": buildSnapshot(e.doc)}, "all")
}

// AddObjective creates an objective with defaults, equal-balances all
// objective weights, logs the creation, and snapshots.
func (e *Engine) AddObjective(input ObjectiveInput) Objective {
	now := e.now()
	obj := Objective{
		ID:        e.newID("obj"),
		Group:     GroupPersonal,
		Year:      now.Year(),
		Quarter:   quarterOf(now),
		CreatedAt: now.Format(DayFormat),
	}
	applyObjectiveInput(&obj, input)
	normalizeObjective(&obj)
	e.doc.Objectives = append(e.doc.Objectives, obj)
	e.doc.BalanceObjectives()

	created := e.doc.Objectives[len(e.doc.Objectives)-1]
	e.logEntry(EntryCreated, ItemObjective, created.ID, created.Title,
		map[string]any{"created": true}, created.Group)
	e.recordSnapshot()
	return created
}

// UpdateObjective applies the supplied fields to an existing objective. A
// changed weight triggers a manual-set rebalance across the siblings; the
// siblings' balancing fallout is not logged, only the edited objective's
// diff. Unknown ids and no-op edits change and log nothing.
func (e *Engine) UpdateObjective(id string, input ObjectiveInput) bool {
	obj := e.doc.objective(id)
	if obj == nil {
		return false
	}
	old := *obj
	applyObjectiveInput(obj, input)
	normalizeObjective(obj)
	if input.Weight != nil && obj.Weight != old.Weight {
		e.doc.RebalanceObjectives(e.objectiveIndex(id), obj.Weight)
	}
	changes := DiffObjective(old, *obj)
	if len(changes) == 0 {
		return true
	}
	e.logEntry(EntryUpdated, ItemObjective, obj.ID, obj.Title, changes, obj.Group)
	e.recordSnapshot()
	return true
}

// DeleteObjective removes an objective and all its key results, logging
// only the objective's deletion, then equal-balances the survivors.
func (e *Engine) DeleteObjective(id string) bool {
	idx := e.objectiveIndex(id)
	if idx < 0 {
		return false
	}
	removed := e.doc.Objectives[idx]
	e.doc.Objectives = append(e.doc.Objectives[:idx], e.doc.Objectives[idx+1:]...)
	e.doc.BalanceObjectives()
	e.logEntry(EntryDeleted, ItemObjective, removed.ID, removed.Title,
		map[string]any{"deleted": true}, removed.Group)
	e.recordSnapshot()
	return true
}

// AddKeyResult creates a key result under an objective, equal-balances the
// objective's key-result weights, logs, and snapshots.
func (e *Engine) AddKeyResult(objectiveID string, input KeyResultInput) (KeyResult, bool) {
	obj := e.doc.objective(objectiveID)
	if obj == nil {
		return KeyResult{}, false
	}
	kr := KeyResult{
		ID:         e.newID("kr"),
		Status:     StatusOnTrack,
		Confidence: ConfidenceMedium,
		CreatedAt:  e.today(),
	}
	applyKeyResultInput(&kr, input)
	normalizeKeyResult(&kr)
	obj.KeyResults = append(obj.KeyResults, kr)
	obj.BalanceKeyResults()

	created := obj.KeyResults[len(obj.KeyResults)-1]
	e.logEntry(EntryCreated, ItemKeyResult, created.ID, created.Title,
		map[string]any{"created": true}, obj.Group)
	e.recordSnapshot()
	return created, true
}

// UpdateKeyResult applies the supplied fields to a key result, keeping
// current clamped into [0,target] and rebalancing sibling weights when the
// weight was directly edited.
func (e *Engine) UpdateKeyResult(objectiveID, krID string, input KeyResultInput) bool {
	obj := e.doc.objective(objectiveID)
	if obj == nil {
		return false
	}
	kr := obj.keyResult(krID)
	if kr == nil {
		return false
	}
	old := *kr
	applyKeyResultInput(kr, input)
	normalizeKeyResult(kr)
	if input.Weight != nil && kr.Weight != old.Weight {
		obj.RebalanceKeyResults(e.keyResultIndex(obj, krID), kr.Weight)
	}
	changes := DiffKeyResult(old, *kr)
	if len(changes) == 0 {
		return true
	}
	e.logEntry(EntryUpdated, ItemKeyResult, kr.ID, kr.Title, changes, obj.Group)
	e.recordSnapshot()
	return true
}

// DeleteKeyResult removes a key result and equal-balances its siblings.
func (e *Engine) DeleteKeyResult(objectiveID, krID string) bool {
	obj := e.doc.objective(objectiveID)
	if obj == nil {
		return false
	}
	idx := e.keyResultIndex(obj, krID)
	if idx < 0 {
		return false
	}
	removed := obj.KeyResults[idx]
	obj.KeyResults = append(obj.KeyResults[:idx], obj.KeyResults[idx+1:]...)
	obj.BalanceKeyResults()
	e.logEntry(EntryDeleted, ItemKeyResult, removed.ID, removed.Title,
		map[string]any{"deleted": true}, obj.Group)
	e.recordSnapshot()
	return true
}

// AdjustKeyResultProgress moves a key result's current value by delta,
// clamped into [0,target]. A change logs a progress entry whose from/to
// are formatted "<current>/<target> (<pct>%)"; a clamped-out no-op logs
// nothing.
func (e *Engine) AdjustKeyResultProgress(objectiveID, krID string, delta float64) bool {
	obj := e.doc.objective(objectiveID)
	if obj == nil {
		return false
	}
	kr := obj.keyResult(krID)
	if kr == nil {
		return false
	}
	before := *kr
	kr.Current = clampCurrent(kr.Current+delta, kr.Target)
	if kr.Current == before.Current {
		return true
	}
	e.logEntry(EntryProgress, ItemKeyResult, kr.ID, kr.Title, map[string]any{
		"progress": map[string]any{
			"from":  formatProgress(before),
			"to":    formatProgress(*kr),
			"delta": kr.Current - before.Current,
		},
	}, obj.Group)
	e.recordSnapshot()
	return true
}

// BalanceAll equal-balances objective weights and, per objective, key
// result weights. Balancing fallout is not logged, but the pass records a
// snapshot like any other mutation.
func (e *Engine) BalanceAll() {
	e.doc.BalanceObjectives()
	for i := range e.doc.Objectives {
		e.doc.Objectives[i].BalanceKeyResults()
	}
	e.recordSnapshot()
}

func (e *Engine) objectiveIndex(id string) int {
	for i := range e.doc.Objectives {
		if e.doc.Objectives[i].ID == id {
			return i
		}
	}
	return -1
}

func (e *Engine) keyResultIndex(obj *Objective, id string) int {
	for i := range obj.KeyResults {
		if obj.KeyResults[i].ID == id {
			return i
		}
	}
	return -1
}

func applyObjectiveInput(obj *Objective, input ObjectiveInput) {
	if input.Title != nil {
		obj.Title = *input.Title
	}
	if input.Purpose != nil {
		obj.Purpose = *input.Purpose
	}
	if input.Group != nil {
		obj.Group = *input.Group
	}
	if input.Year != nil {
		obj.Year = *input.Year
	}
	if input.Quarter != nil {
		obj.Quarter = *input.Quarter
	}
	if input.StartDate != nil {
		obj.StartDate = *input.StartDate
	}
	if input.TargetDate != nil {
		obj.TargetDate = *input.TargetDate
	}
	if input.Weight != nil {
		obj.Weight = *input.Weight
	}
	if input.LastCheckin != nil {
		obj.LastCheckin = *input.LastCheckin
	}
}

func applyKeyResultInput(kr *KeyResult, input KeyResultInput) {
	if input.Title != nil {
		kr.Title = *input.Title
	}
	if input.Target != nil {
		kr.Target = *input.Target
	}
	if input.Current != nil {
		kr.Current = *input.Current
	}
	if input.Weight != nil {
		kr.Weight = *input.Weight
	}
	if input.Status != nil {
		kr.Status = *input.Status
	}
	if input.Confidence != nil {
		kr.Confidence = *input.Confidence
	}
	if input.StartDate != nil {
		kr.StartDate = *input.StartDate
	}
	if input.TargetDate != nil {
		kr.TargetDate = *input.TargetDate
	}
	if input.LastCheckin != nil {
		kr.LastCheckin = *input.LastCheckin
	}
	if input.Evidence != nil {
		kr.Evidence = *input.Evidence
	}
	if input.Comments != nil {
		kr.Comments = *input.Comments
	}
}

func formatProgress(kr KeyResult) string {
	return formatNumber(kr.Current) + "/" + formatNumber(kr.Target) +
		" (" + strconv.Itoa(KeyResultProgress(kr)) + "%)"
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
