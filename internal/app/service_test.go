package app

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"

	"northstar/api/internal/okr"
	"northstar/api/internal/search"
	"northstar/api/internal/store"
	"northstar/api/internal/trendcache"
)

type fakeStore struct {
	loadFunc func(ctx context.Context) (*okr.Document, error)
	saveFunc func(ctx context.Context, doc *okr.Document) error
	saves    int
}

func (f *fakeStore) Load(ctx context.Context) (*okr.Document, error) {
	if f.loadFunc != nil {
		return f.loadFunc(ctx)
	}
	return store.DecodeDocument(nil), nil
}

func (f *fakeStore) Save(ctx context.Context, doc *okr.Document) error {
	f.saves++
	if f.saveFunc != nil {
		return f.saveFunc(ctx, doc)
	}
	return nil
}

func newTestService(t *testing.T, fs *fakeStore) *Service {
	t.Helper()
	svc := NewService(fs, Options{})
	if err := svc.Bootstrap(context.Background()); err != nil {
		t.Fatalf("bootstrap: %v", err)
	}
	return svc
}

func strPtr(s string) *string   { return &s }
func numPtr(v float64) *float64 { return &v }

func TestCreateObjectivePersistsAndReturnsView(t *testing.T) {
	fs := &fakeStore{}
	svc := newTestService(t, fs)

	payload, err := svc.CreateObjective(context.Background(), okr.ObjectiveInput{
		Title: strPtr("Grow revenue"),
		Group: strPtr(okr.GroupTeam),
	})
	if err != nil {
		t.Fatalf("create objective: %v", err)
	}
	if fs.saves != 1 {
		t.Fatalf("expected 1 save, got %d", fs.saves)
	}
	view, ok := payload["objective"].(okr.ObjectiveView)
	if !ok {
		t.Fatalf("payload missing objective view: %+v", payload)
	}
	if view.Objective.Title != "Grow revenue" || view.Objective.Weight != 100 {
		t.Fatalf("unexpected created objective: %+v", view.Objective)
	}
}

func TestCreateObjectiveRequiresTitle(t *testing.T) {
	svc := newTestService(t, &fakeStore{})

	_, err := svc.CreateObjective(context.Background(), okr.ObjectiveInput{})
	var domainErr *DomainError
	if !errors.As(err, &domainErr) || domainErr.Status != http.StatusUnprocessableEntity {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestUpdateUnknownObjectiveIsNotFound(t *testing.T) {
	svc := newTestService(t, &fakeStore{})

	_, err := svc.UpdateObjective(context.Background(), "obj_missing", okr.ObjectiveInput{Title: strPtr("x")})
	var domainErr *DomainError
	if !errors.As(err, &domainErr) || domainErr.Status != http.StatusNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestSaveErrorSurfacesToCaller(t *testing.T) {
	fs := &fakeStore{saveFunc: func(context.Context, *okr.Document) error {
		return errors.New("disk full")
	}}
	svc := newTestService(t, fs)

	_, err := svc.CreateObjective(context.Background(), okr.ObjectiveInput{Title: strPtr("x")})
	if err == nil {
		t.Fatal("expected save error to surface")
	}
}

func TestAdjustProgressRoundTrip(t *testing.T) {
	fs := &fakeStore{}
	svc := newTestService(t, fs)
	ctx := context.Background()

	created, err := svc.CreateObjective(ctx, okr.ObjectiveInput{Title: strPtr("Ship it")})
	if err != nil {
		t.Fatalf("create objective: %v", err)
	}
	objID := created["objective"].(okr.ObjectiveView).Objective.ID

	krPayload, err := svc.CreateKeyResult(ctx, objID, okr.KeyResultInput{
		Title:  strPtr("Signups"),
		Target: numPtr(100),
	})
	if err != nil {
		t.Fatalf("create key result: %v", err)
	}
	krID := krPayload["keyResult"].(okr.KeyResult).ID

	payload, err := svc.AdjustProgress(ctx, objID, krID, 40)
	if err != nil {
		t.Fatalf("adjust progress: %v", err)
	}
	view := payload["objective"].(okr.ObjectiveView)
	if view.Progress != 40 {
		t.Fatalf("expected progress 40, got %d", view.Progress)
	}
	if fs.saves != 3 {
		t.Fatalf("expected 3 saves, got %d", fs.saves)
	}
}

func TestDeleteObjectiveRebalancesSurvivors(t *testing.T) {
	svc := newTestService(t, &fakeStore{})
	ctx := context.Background()

	var ids []string
	for _, title := range []string{"A", "B", "C"} {
		payload, err := svc.CreateObjective(ctx, okr.ObjectiveInput{Title: strPtr(title)})
		if err != nil {
			t.Fatalf("create %s: %v", title, err)
		}
		ids = append(ids, payload["objective"].(okr.ObjectiveView).Objective.ID)
	}

	if err := svc.DeleteObjective(ctx, ids[0]); err != nil {
		t.Fatalf("delete: %v", err)
	}

	overview, err := svc.Overview(ctx)
	if err != nil {
		t.Fatalf("overview: %v", err)
	}
	views := overview["objectives"].([]okr.ObjectiveView)
	if len(views) != 2 {
		t.Fatalf("expected 2 objectives, got %d", len(views))
	}
	if views[0].Objective.Weight+views[1].Objective.Weight != 100 {
		t.Fatalf("weights not rebalanced: %d + %d", views[0].Objective.Weight, views[1].Objective.Weight)
	}
}

func TestHistoryFilterPassthrough(t *testing.T) {
	svc := newTestService(t, &fakeStore{})
	ctx := context.Background()

	if _, err := svc.CreateObjective(ctx, okr.ObjectiveInput{Title: strPtr("A"), Group: strPtr(okr.GroupTeam)}); err != nil {
		t.Fatalf("create: %v", err)
	}

	entries := svc.History(okr.ItemObjective, okr.GroupTeam)["history"].([]okr.HistoryEntry)
	if len(entries) != 1 || entries[0].Type != okr.EntryCreated {
		t.Fatalf("unexpected filtered history: %+v", entries)
	}
	if got := svc.History(okr.ItemObjective, okr.GroupCompany)["history"].([]okr.HistoryEntry); len(got) != 0 {
		t.Fatalf("group filter leaked entries: %+v", got)
	}
}

func TestGroupedTrendUsesAndInvalidatesCache(t *testing.T) {
	mr := miniredis.RunT(t)
	cache, err := trendcache.NewCache("redis://" + mr.Addr())
	if err != nil {
		t.Fatalf("cache: %v", err)
	}

	fs := &fakeStore{}
	svc := NewService(fs, Options{Cache: cache})
	defer svc.Close()
	ctx := context.Background()
	if err := svc.Bootstrap(ctx); err != nil {
		t.Fatalf("bootstrap: %v", err)
	}

	if _, err := svc.CreateObjective(ctx, okr.ObjectiveInput{Title: strPtr("A"), Group: strPtr(okr.GroupTeam)}); err != nil {
		t.Fatalf("create: %v", err)
	}

	first, err := svc.GroupedTrend(ctx)
	if err != nil {
		t.Fatalf("grouped trend: %v", err)
	}
	if len(first[okr.GroupTeam]) != 1 {
		t.Fatalf("expected one snapshot point, got %+v", first)
	}

	if !mr.Exists("trend:grouped") {
		t.Fatal("trend was not cached")
	}

	// Another mutation must drop the cached value.
	if _, err := svc.CreateObjective(ctx, okr.ObjectiveInput{Title: strPtr("B"), Group: strPtr(okr.GroupTeam)}); err != nil {
		t.Fatalf("create: %v", err)
	}
	if mr.Exists("trend:grouped") {
		t.Fatal("cache survived a mutation")
	}

	second, err := svc.GroupedTrend(ctx)
	if err != nil {
		t.Fatalf("grouped trend: %v", err)
	}
	if len(second[okr.GroupTeam]) != 2 {
		t.Fatalf("expected two snapshot points after second mutation, got %+v", second)
	}
}

func TestSearchUnconfiguredIsUnavailable(t *testing.T) {
	svc := newTestService(t, &fakeStore{})
	_, err := svc.Search(search.Query{Text: "x"})
	var domainErr *DomainError
	if !errors.As(err, &domainErr) || domainErr.Status != http.StatusServiceUnavailable {
		t.Fatalf("expected unavailable, got %v", err)
	}
}

func TestCurrentDocumentReflectsMutations(t *testing.T) {
	svc := newTestService(t, &fakeStore{})
	ctx := context.Background()

	if _, err := svc.CreateObjective(ctx, okr.ObjectiveInput{Title: strPtr("A")}); err != nil {
		t.Fatalf("create: %v", err)
	}
	doc := svc.CurrentDocument()
	if len(doc.Objectives) != 1 || doc.Objectives[0].Title != "A" {
		t.Fatalf("live document out of sync: %+v", doc.Objectives)
	}
	if doc.Objectives[0].CreatedAt != time.Now().Format(okr.DayFormat) {
		t.Fatalf("createdAt not defaulted to today: %q", doc.Objectives[0].CreatedAt)
	}
}
