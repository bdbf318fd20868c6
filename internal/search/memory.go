package search

import (
	"strings"

	"northstar/api/internal/okr"
)

// Memory is the fallback searcher used when Meilisearch is not configured or
// down. It scans the live document, which is small enough that a substring
// scan is fine.
type Memory struct {
	source func() *okr.Document
}

// NewMemory creates a fallback searcher over a document source. The source is
// called per query so results always reflect the current document.
func NewMemory(source func() *okr.Document) *Memory {
	return &Memory{source: source}
}

func (m *Memory) Healthy() bool {
	return true
}

func (m *Memory) Search(q Query) ([]Result, int, error) {
	doc := m.source()
	if doc == nil {
		return nil, 0, nil
	}

	needle := strings.ToLower(strings.TrimSpace(q.Text))
	objectives, keyResults := RecordsFromDocument(doc)

	var matches []Result
	if q.FilterType == "" || q.FilterType == ResultObjective {
		for _, rec := range objectives {
			if q.FilterGroup != "" && rec.Group != q.FilterGroup {
				continue
			}
			if needle != "" && !containsFold(needle, rec.Title, rec.Purpose) {
				continue
			}
			matches = append(matches, Result{
				Type:        ResultObjective,
				ID:          rec.ID,
				Title:       rec.Title,
				Snippet:     rec.Purpose,
				ObjectiveID: rec.ID,
				Group:       rec.Group,
			})
		}
	}
	if q.FilterType == "" || q.FilterType == ResultKeyResult {
		for _, rec := range keyResults {
			if q.FilterGroup != "" && rec.Group != q.FilterGroup {
				continue
			}
			if needle != "" && !containsFold(needle, rec.Title, rec.Evidence, rec.Comments) {
				continue
			}
			matches = append(matches, Result{
				Type:        ResultKeyResult,
				ID:          rec.ID,
				Title:       rec.Title,
				Snippet:     firstNonBlank(rec.Evidence, rec.Comments),
				ObjectiveID: rec.ObjectiveID,
				Group:       rec.Group,
			})
		}
	}

	total := len(matches)
	matches = page(matches, q.Offset, q.Limit)
	return matches, total, nil
}

func containsFold(needle string, haystacks ...string) bool {
	for _, h := range haystacks {
		if strings.Contains(strings.ToLower(h), needle) {
			return true
		}
	}
	return false
}

func page(results []Result, offset, limit int) []Result {
	if limit <= 0 {
		limit = 20
	}
	if offset >= len(results) {
		return nil
	}
	results = results[offset:]
	if len(results) > limit {
		results = results[:limit]
	}
	return results
}

// RecordsFromDocument flattens a document into index records.
func RecordsFromDocument(doc *okr.Document) ([]ObjectiveRecord, []KeyResultRecord) {
	var objectives []ObjectiveRecord
	var keyResults []KeyResultRecord
	for _, obj := range doc.Objectives {
		objectives = append(objectives, ObjectiveRecord{
			ID:      obj.ID,
			Title:   obj.Title,
			Purpose: obj.Purpose,
			Group:   obj.Group,
			Year:    obj.Year,
			Quarter: obj.Quarter,
		})
		for _, kr := range obj.KeyResults {
			keyResults = append(keyResults, KeyResultRecord{
				ID:          kr.ID,
				Title:       kr.Title,
				Evidence:    kr.Evidence,
				Comments:    kr.Comments,
				ObjectiveID: obj.ID,
				Group:       obj.Group,
				Status:      kr.Status,
			})
		}
	}
	return objectives, keyResults
}
