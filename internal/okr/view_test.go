package okr

import (
	"testing"
	"time"
)

func TestBuildObjectiveView(t *testing.T) {
	today := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	obj := Objective{
		ID:         "obj_1",
		Title:      "Grow revenue",
		Group:      GroupTeam,
		TargetDate: "2026-04-30",
		KeyResults: []KeyResult{
			{
				ID:          "kr_1",
				Title:       "Signups",
				Target:      100,
				Current:     80,
				Status:      StatusAtRisk,
				Confidence:  ConfidenceHigh,
				TargetDate:  "2026-03-12",
				LastCheckin: "2026-02-20",
			},
		},
	}

	view := BuildObjectiveView(today, obj)
	if view.Progress != 80 {
		t.Fatalf("expected progress 80, got %d", view.Progress)
	}
	if view.OutlineClass != OutlineOnTrackBlue {
		t.Fatalf("expected on-track-blue outline, got %q", view.OutlineClass)
	}
	if len(view.KeyResults) != 1 {
		t.Fatalf("expected 1 key result view, got %d", len(view.KeyResults))
	}
	krView := view.KeyResults[0]
	if krView.Progress != 80 {
		t.Fatalf("expected kr progress 80, got %d", krView.Progress)
	}
	if krView.StatusLabel != "At risk" {
		t.Fatalf("unexpected status label %q", krView.StatusLabel)
	}
	if krView.ConfidenceLabel != "High confidence" {
		t.Fatalf("unexpected confidence label %q", krView.ConfidenceLabel)
	}
	if krView.DateWarningClass != WarnYellow {
		t.Fatalf("kr due in 2 days should warn yellow, got %q", krView.DateWarningClass)
	}
	if !krView.CheckinOverdue {
		t.Fatalf("check-in 18 days old should be overdue")
	}
}

func TestViewsPreserveObjectiveOrder(t *testing.T) {
	doc := &Document{Objectives: []Objective{
		{ID: "b", Title: "Second"},
		{ID: "a", Title: "First"},
	}}
	views := doc.Views(time.Now())
	if len(views) != 2 || views[0].Objective.ID != "b" || views[1].Objective.ID != "a" {
		t.Fatalf("view order must follow document order: %v", views)
	}
}
