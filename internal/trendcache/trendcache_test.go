package trendcache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"

	"northstar/api/internal/okr"
)

func setupTestCache(t *testing.T) (*Cache, *miniredis.Miniredis) {
	s := miniredis.RunT(t)
	cache, err := NewCache("redis://" + s.Addr())
	if err != nil {
		t.Fatalf("failed to create cache: %v", err)
	}
	return cache, s
}

func sampleGrouped() map[string][]okr.TrendPoint {
	return map[string][]okr.TrendPoint{
		okr.GroupTeam: {
			{Timestamp: time.Date(2026, 2, 10, 9, 0, 0, 0, time.UTC), Value: 40, Count: 2},
			{Timestamp: time.Date(2026, 2, 11, 9, 0, 0, 0, time.UTC), Value: 55, Count: 2},
		},
	}
}

func TestGroupedRoundTrip(t *testing.T) {
	cache, s := setupTestCache(t)
	defer cache.Close()
	defer s.Close()

	ctx := context.Background()
	if _, found, err := cache.GetGrouped(ctx); err != nil || found {
		t.Fatalf("expected cold miss, found=%v err=%v", found, err)
	}

	if err := cache.SetGrouped(ctx, sampleGrouped()); err != nil {
		t.Fatalf("set grouped: %v", err)
	}

	trend, found, err := cache.GetGrouped(ctx)
	if err != nil || !found {
		t.Fatalf("expected hit, found=%v err=%v", found, err)
	}
	points := trend[okr.GroupTeam]
	if len(points) != 2 || points[1].Value != 55 || points[1].Count != 2 {
		t.Fatalf("unexpected cached trend: %+v", trend)
	}
}

func TestIndividualKeysAreIndependent(t *testing.T) {
	cache, s := setupTestCache(t)
	defer cache.Close()
	defer s.Close()

	ctx := context.Background()
	series := []okr.ObjectiveSeries{{ObjectiveID: "obj_1", Title: "Grow revenue", Group: okr.GroupTeam}}
	if err := cache.SetIndividual(ctx, okr.GroupTeam, "obj_1", series); err != nil {
		t.Fatalf("set individual: %v", err)
	}

	if _, found, err := cache.GetIndividual(ctx, okr.GroupTeam, ""); err != nil || found {
		t.Fatalf("different filter must miss, found=%v err=%v", found, err)
	}

	got, found, err := cache.GetIndividual(ctx, okr.GroupTeam, "obj_1")
	if err != nil || !found {
		t.Fatalf("expected hit, found=%v err=%v", found, err)
	}
	if len(got) != 1 || got[0].ObjectiveID != "obj_1" {
		t.Fatalf("unexpected cached series: %+v", got)
	}
}

func TestInvalidateDropsAllTrendKeys(t *testing.T) {
	cache, s := setupTestCache(t)
	defer cache.Close()
	defer s.Close()

	ctx := context.Background()
	if err := cache.SetGrouped(ctx, sampleGrouped()); err != nil {
		t.Fatalf("set grouped: %v", err)
	}
	if err := cache.SetIndividual(ctx, "", "", nil); err != nil {
		t.Fatalf("set individual: %v", err)
	}

	if err := cache.Invalidate(ctx); err != nil {
		t.Fatalf("invalidate: %v", err)
	}

	if _, found, _ := cache.GetGrouped(ctx); found {
		t.Fatal("grouped trend survived invalidation")
	}
	if _, found, _ := cache.GetIndividual(ctx, "", ""); found {
		t.Fatal("individual trend survived invalidation")
	}
}

func TestInvalidateEmptyCacheIsNoop(t *testing.T) {
	cache, s := setupTestCache(t)
	defer cache.Close()
	defer s.Close()

	if err := cache.Invalidate(context.Background()); err != nil {
		t.Fatalf("invalidate on empty cache: %v", err)
	}
}

func TestEntriesExpire(t *testing.T) {
	cache, s := setupTestCache(t)
	defer cache.Close()
	defer s.Close()

	ctx := context.Background()
	if err := cache.SetGrouped(ctx, sampleGrouped()); err != nil {
		t.Fatalf("set grouped: %v", err)
	}

	s.FastForward(defaultTTL + time.Second)

	if _, found, err := cache.GetGrouped(ctx); err != nil || found {
		t.Fatalf("expected expiry miss, found=%v err=%v", found, err)
	}
}
