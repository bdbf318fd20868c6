package search

import (
	"testing"

	"northstar/api/internal/okr"
)

func testDocument() *okr.Document {
	return &okr.Document{Objectives: []okr.Objective{
		{
			ID:      "obj_1",
			Title:   "Grow revenue",
			Purpose: "Hit the annual plan",
			Group:   okr.GroupCompany,
			KeyResults: []okr.KeyResult{
				{ID: "kr_1", Title: "Close enterprise deals", Evidence: "pipeline review"},
				{ID: "kr_2", Title: "Reduce churn", Comments: "revenue retention push"},
			},
		},
		{
			ID:    "obj_2",
			Title: "Learn Spanish",
			Group: okr.GroupPersonal,
		},
	}}
}

func newTestMemory() *Memory {
	doc := testDocument()
	return NewMemory(func() *okr.Document { return doc })
}

func TestMemorySearchMatchesTitleAndNestedFields(t *testing.T) {
	m := newTestMemory()

	results, total, err := m.Search(Query{Text: "revenue"})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if total != 2 {
		t.Fatalf("expected 2 hits, got %d: %+v", total, results)
	}
	var gotObjective, gotKeyResult bool
	for _, r := range results {
		switch r.ID {
		case "obj_1":
			gotObjective = true
			if r.ObjectiveID != "obj_1" || r.Snippet != "Hit the annual plan" {
				t.Fatalf("unexpected objective result: %+v", r)
			}
		case "kr_2":
			gotKeyResult = true
			if r.ObjectiveID != "obj_1" || r.Group != okr.GroupCompany {
				t.Fatalf("key result should carry parent objective id and group: %+v", r)
			}
		}
	}
	if !gotObjective || !gotKeyResult {
		t.Fatalf("expected obj_1 and kr_2, got %+v", results)
	}
}

func TestMemorySearchIsCaseInsensitive(t *testing.T) {
	_, total, err := newTestMemory().Search(Query{Text: "SPANISH"})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if total != 1 {
		t.Fatalf("expected 1 hit, got %d", total)
	}
}

func TestMemorySearchFilters(t *testing.T) {
	m := newTestMemory()

	results, _, err := m.Search(Query{Text: "revenue", FilterType: ResultKeyResult})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(results) != 1 || results[0].ID != "kr_2" {
		t.Fatalf("type filter failed: %+v", results)
	}

	results, _, err = m.Search(Query{FilterGroup: okr.GroupPersonal})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(results) != 1 || results[0].ID != "obj_2" {
		t.Fatalf("group filter failed: %+v", results)
	}
}

func TestMemorySearchPaging(t *testing.T) {
	m := newTestMemory()

	results, total, err := m.Search(Query{Limit: 1})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if total != 4 || len(results) != 1 {
		t.Fatalf("expected total 4 with 1 page item, got total=%d len=%d", total, len(results))
	}

	results, _, err = m.Search(Query{Offset: 10})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(results) != 0 {
		t.Fatalf("offset beyond results should return nothing, got %+v", results)
	}
}

func TestMemorySearchSeesDocumentUpdates(t *testing.T) {
	doc := testDocument()
	m := NewMemory(func() *okr.Document { return doc })

	doc.Objectives = append(doc.Objectives, okr.Objective{
		ID: "obj_3", Title: "Ship billing revamp", Group: okr.GroupTeam,
	})
	_, total, err := m.Search(Query{Text: "billing"})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if total != 1 {
		t.Fatalf("expected new objective to be searchable, got %d hits", total)
	}
}

func TestServiceFallsBackWithoutMeili(t *testing.T) {
	svc := NewService(nil, newTestMemory())
	resp := svc.Search(Query{Text: "nothing matches this"})
	if resp.Results == nil {
		t.Fatalf("results must never be nil")
	}
	if resp.Total != 0 {
		t.Fatalf("expected no hits, got %d", resp.Total)
	}
	if resp.Query != "nothing matches this" {
		t.Fatalf("response should echo the query, got %q", resp.Query)
	}
}
