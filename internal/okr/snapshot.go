package okr

import "encoding/json"

// SnapshotKeyResult is the captured state of one key result at snapshot
// time.
type SnapshotKeyResult struct {
	ID       string  `json:"id"`
	Title    string  `json:"title"`
	Progress int     `json:"progress"`
	Current  float64 `json:"current"`
	Target   float64 `json:"target"`
}

// SnapshotObjective is the captured state of one objective at snapshot
// time.
type SnapshotObjective struct {
	ID         string              `json:"id"`
	Title      string              `json:"title"`
	Group      string              `json:"group"`
	Progress   int                 `json:"progress"`
	KeyResults []SnapshotKeyResult `json:"keyResults"`
}

func buildSnapshot(doc *Document) []SnapshotObjective {
	captured := make([]SnapshotObjective, 0, len(doc.Objectives))
	for _, obj := range doc.Objectives {
		krs := make([]SnapshotKeyResult, 0, len(obj.KeyResults))
		for _, kr := range obj.KeyResults {
			krs = append(krs, SnapshotKeyResult{
				ID:       kr.ID,
				Title:    kr.Title,
				Progress: KeyResultProgress(kr),
				Current:  kr.Current,
				Target:   kr.Target,
			})
		}
		captured = append(captured, SnapshotObjective{
			ID:         obj.ID,
			Title:      obj.Title,
			Group:      obj.Group,
			Progress:   ObjectiveProgress(obj),
			KeyResults: krs,
		})
	}
	return captured
}

// decodeSnapshot extracts the captured objectives from a progress-snapshot
// entry. The payload may be the typed slice (freshly recorded) or generic
// JSON maps (after a load round-trip), so it goes through a marshal hop
// either way. Non-snapshot or malformed entries yield nothing.
func decodeSnapshot(entry HistoryEntry) []SnapshotObjective {
	if entry.Type != EntrySnapshot {
		return nil
	}
	payload, ok := entry.Changes["objectives"]
	if !ok {
		return nil
	}
	if captured, ok := payload.([]SnapshotObjective); ok {
		return captured
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil
	}
	var captured []SnapshotObjective
	if err := json.Unmarshal(raw, &captured); err != nil {
		return nil
	}
	return captured
}
