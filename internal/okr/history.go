package okr

// historyCap bounds the audit log; the oldest entries fall off first.
const historyCap = 1000

var objectiveTrackedFields = []string{
	"title", "purpose", "group", "year", "quarter",
	"startDate", "targetDate", "weight", "lastCheckin",
}

var keyResultTrackedFields = []string{
	"title", "target", "current", "weight", "status", "confidence",
	"startDate", "targetDate", "lastCheckin", "evidence", "comments",
}

func objectiveFields(o Objective) map[string]any {
	return map[string]any{
		"title":       o.Title,
		"purpose":     o.Purpose,
		"group":       o.Group,
		"year":        o.Year,
		"quarter":     o.Quarter,
		"startDate":   o.StartDate,
		"targetDate":  o.TargetDate,
		"weight":      o.Weight,
		"lastCheckin": o.LastCheckin,
	}
}

func keyResultFields(kr KeyResult) map[string]any {
	return map[string]any{
		"title":       kr.Title,
		"target":      kr.Target,
		"current":     kr.Current,
		"weight":      kr.Weight,
		"status":      kr.Status,
		"confidence":  kr.Confidence,
		"startDate":   kr.StartDate,
		"targetDate":  kr.TargetDate,
		"lastCheckin": kr.LastCheckin,
		"evidence":    kr.Evidence,
		"comments":    kr.Comments,
	}
}

// diffFields collects {from,to} pairs for every tracked field whose value
// changed. Field values are plain comparable scalars; zero-value strings
// stand in for fields that were never set. An unchanged entity yields an
// empty map, which callers treat as "log nothing".
func diffFields(old, new map[string]any, fields []string) map[string]any {
	changes := map[string]any{}
	for _, field := range fields {
		from, to := old[field], new[field]
		if from == to {
			continue
		}
		changes[field] = map[string]any{"from": from, "to": to}
	}
	return changes
}

// DiffObjective returns the tracked-field changes between two objective
// states.
func DiffObjective(old, new Objective) map[string]any {
	return diffFields(objectiveFields(old), objectiveFields(new), objectiveTrackedFields)
}

// DiffKeyResult returns the tracked-field changes between two key-result
// states.
func DiffKeyResult(old, new KeyResult) map[string]any {
	return diffFields(keyResultFields(old), keyResultFields(new), keyResultTrackedFields)
}

// appendHistory inserts an entry at the front of the newest-first log and
// evicts past the cap. Eviction is by array position, not by timestamp, so
// clock skew between entries cannot reorder what gets dropped.
func (d *Document) appendHistory(entry HistoryEntry) {
	d.History = append([]HistoryEntry{entry}, d.History...)
	if len(d.History) > historyCap {
		d.History = d.History[:historyCap]
	}
}

// FilterHistory returns the entries matching the optional itemType and
// group selectors, preserving newest-first order. Empty selectors match
// everything.
func (d *Document) FilterHistory(itemType, group string) []HistoryEntry {
	entries := make([]HistoryEntry, 0, len(d.History))
	for _, entry := range d.History {
		if itemType != "" && entry.ItemType != itemType {
			continue
		}
		if group != "" && entry.Group != group {
			continue
		}
		entries = append(entries, entry)
	}
	return entries
}
