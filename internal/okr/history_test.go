package okr

import (
	"fmt"
	"testing"
	"time"
)

func TestDiffObjectiveReportsOnlyChangedFields(t *testing.T) {
	old := Objective{Title: "Ship v2", Purpose: "", Group: GroupTeam, Year: 2026, Quarter: 1, Weight: 50}
	new := old
	new.Title = "Ship v2.1"
	new.Weight = 60

	changes := DiffObjective(old, new)
	if len(changes) != 2 {
		t.Fatalf("expected 2 changed fields, got %d: %v", len(changes), changes)
	}
	title, ok := changes["title"].(map[string]any)
	if !ok {
		t.Fatalf("title change missing: %v", changes)
	}
	if title["from"] != "Ship v2" || title["to"] != "Ship v2.1" {
		t.Fatalf("unexpected title diff: %v", title)
	}
	if _, ok := changes["weight"]; !ok {
		t.Fatalf("weight change missing: %v", changes)
	}
}

func TestDiffObjectiveNoChanges(t *testing.T) {
	obj := Objective{Title: "Ship v2", Group: GroupTeam}
	if changes := DiffObjective(obj, obj); len(changes) != 0 {
		t.Fatalf("expected empty diff, got %v", changes)
	}
}

func TestDiffKeyResultTreatsAbsentTextAsEmpty(t *testing.T) {
	old := KeyResult{Title: "NPS", Target: 10, Status: StatusOnTrack, Confidence: ConfidenceMedium}
	new := old
	new.Evidence = "survey results attached"

	changes := DiffKeyResult(old, new)
	if len(changes) != 1 {
		t.Fatalf("expected 1 changed field, got %v", changes)
	}
	evidence := changes["evidence"].(map[string]any)
	if evidence["from"] != "" || evidence["to"] != "survey results attached" {
		t.Fatalf("unexpected evidence diff: %v", evidence)
	}
}

func TestAppendHistoryNewestFirst(t *testing.T) {
	doc := &Document{}
	doc.appendHistory(HistoryEntry{ID: "first"})
	doc.appendHistory(HistoryEntry{ID: "second"})
	if doc.History[0].ID != "second" || doc.History[1].ID != "first" {
		t.Fatalf("expected newest-first order, got %v", doc.History)
	}
}

func TestAppendHistoryEvictsOldestBeyondCap(t *testing.T) {
	doc := &Document{}
	for i := 0; i < historyCap+25; i++ {
		doc.appendHistory(HistoryEntry{ID: fmt.Sprintf("e%d", i)})
	}
	if len(doc.History) != historyCap {
		t.Fatalf("history length %d, want %d", len(doc.History), historyCap)
	}
	if doc.History[0].ID != fmt.Sprintf("e%d", historyCap+24) {
		t.Fatalf("newest entry lost: %s", doc.History[0].ID)
	}
	// the 25 oldest appends must be gone
	if doc.History[len(doc.History)-1].ID != "e25" {
		t.Fatalf("expected oldest surviving entry e25, got %s", doc.History[len(doc.History)-1].ID)
	}
}

func TestAppendHistoryEvictionIgnoresTimestampSkew(t *testing.T) {
	doc := &Document{}
	// an entry with a future timestamp appended early must still be evicted
	// first: position, not clock, decides.
	doc.appendHistory(HistoryEntry{ID: "skewed", Timestamp: time.Now().Add(48 * time.Hour)})
	for i := 0; i < historyCap; i++ {
		doc.appendHistory(HistoryEntry{ID: fmt.Sprintf("e%d", i), Timestamp: time.Now()})
	}
	if len(doc.History) != historyCap {
		t.Fatalf("history length %d, want %d", len(doc.History), historyCap)
	}
	for _, entry := range doc.History {
		if entry.ID == "skewed" {
			t.Fatalf("skewed entry should have been evicted by position")
		}
	}
}

func TestFilterHistory(t *testing.T) {
	doc := &Document{}
	doc.appendHistory(HistoryEntry{ID: "1", ItemType: ItemObjective, Group: GroupTeam})
	doc.appendHistory(HistoryEntry{ID: "2", ItemType: ItemKeyResult, Group: GroupTeam})
	doc.appendHistory(HistoryEntry{ID: "3", ItemType: ItemObjective, Group: GroupPersonal})
	doc.appendHistory(HistoryEntry{ID: "4", ItemType: ItemSystem, Group: "all"})

	all := doc.FilterHistory("", "")
	if len(all) != 4 {
		t.Fatalf("expected 4 entries unfiltered, got %d", len(all))
	}
	objectives := doc.FilterHistory(ItemObjective, "")
	if len(objectives) != 2 {
		t.Fatalf("expected 2 objective entries, got %d", len(objectives))
	}
	team := doc.FilterHistory("", GroupTeam)
	if len(team) != 2 {
		t.Fatalf("expected 2 team entries, got %d", len(team))
	}
	teamObjectives := doc.FilterHistory(ItemObjective, GroupTeam)
	if len(teamObjectives) != 1 || teamObjectives[0].ID != "1" {
		t.Fatalf("expected single team objective entry, got %v", teamObjectives)
	}
}
