package okr

import (
	"math"
	"time"
)

// TrendPoint is one point in a progress time series. Count is how many
// surviving objectives contributed to the value.
type TrendPoint struct {
	Timestamp time.Time `json:"timestamp"`
	Value     int       `json:"value"`
	Count     int       `json:"count"`
}

// ObjectiveSeries is one objective's progress over time.
type ObjectiveSeries struct {
	ObjectiveID string       `json:"objectiveId"`
	Title       string       `json:"title"`
	Group       string       `json:"group"`
	Points      []TrendPoint `json:"points"`
}

// snapshotEntries returns the recorded snapshots oldest-first. History is
// stored newest-first, so this walks it back to front.
func (d *Document) snapshotEntries() []HistoryEntry {
	entries := make([]HistoryEntry, 0)
	for i := len(d.History) - 1; i >= 0; i-- {
		if d.History[i].Type == EntrySnapshot {
			entries = append(entries, d.History[i])
		}
	}
	return entries
}

// GroupedTrend builds one chronological point series per group that has at
// least one live objective. Captured objectives whose id no longer exists
// drop out retroactively; group membership follows the live objective, so
// a regrouped objective moves its whole history with it. Snapshots with no
// surviving member of a group contribute no point to that group's series.
func (d *Document) GroupedTrend() map[string][]TrendPoint {
	liveGroup := make(map[string]string, len(d.Objectives))
	groups := make(map[string]bool)
	for _, obj := range d.Objectives {
		liveGroup[obj.ID] = obj.Group
		groups[obj.Group] = true
	}
	if len(groups) == 0 {
		return map[string][]TrendPoint{}
	}

	series := make(map[string][]TrendPoint, len(groups))
	for group := range groups {
		series[group] = []TrendPoint{}
	}
	for _, entry := range d.snapshotEntries() {
		sums := make(map[string]int)
		counts := make(map[string]int)
		for _, captured := range decodeSnapshot(entry) {
			group, alive := liveGroup[captured.ID]
			if !alive {
				continue
			}
			sums[group] += captured.Progress
			counts[group]++
		}
		for group := range groups {
			if counts[group] == 0 {
				continue
			}
			value := int(math.Round(float64(sums[group]) / float64(counts[group])))
			series[group] = append(series[group], TrendPoint{
				Timestamp: entry.Timestamp,
				Value:     value,
				Count:     counts[group],
			})
		}
	}
	return series
}

// IndividualTrend builds one chronological series per surviving objective,
// optionally narrowed to a group and/or a single objective id. Series order
// follows the live objective order.
func (d *Document) IndividualTrend(group, objectiveID string) []ObjectiveSeries {
	result := make([]ObjectiveSeries, 0)
	index := make(map[string]int)
	for _, obj := range d.Objectives {
		if group != "" && obj.Group != group {
			continue
		}
		if objectiveID != "" && obj.ID != objectiveID {
			continue
		}
		index[obj.ID] = len(result)
		result = append(result, ObjectiveSeries{
			ObjectiveID: obj.ID,
			Title:       obj.Title,
			Group:       obj.Group,
			Points:      []TrendPoint{},
		})
	}
	if len(result) == 0 {
		return result
	}
	for _, entry := range d.snapshotEntries() {
		for _, captured := range decodeSnapshot(entry) {
			i, ok := index[captured.ID]
			if !ok {
				continue
			}
			result[i].Points = append(result[i].Points, TrendPoint{
				Timestamp: entry.Timestamp,
				Value:     captured.Progress,
				Count:     1,
			})
		}
	}
	return result
}
