package repo

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/tbourn/go-promo-backend/internal/domain"
)

func TestContentHash_Stable(t *testing.T) {
	a := ContentHash([]byte(`[{"source":"coto"}]`))
	b := ContentHash([]byte(`[{"source":"coto"}]`))
	if a != b || len(a) != 64 {
		t.Fatalf("unexpected hashes %q / %q", a, b)
	}
	if a == ContentHash([]byte(`[]`)) {
		t.Fatalf("different payloads must hash differently")
	}
}

func TestCreateSnapshot_Persists(t *testing.T) {
	db := newTestDB(t, allModels()...)
	ctx := context.Background()

	s, err := CreateSnapshot(ctx, db, "coto", []byte(`[]`), 0)
	if err != nil {
		t.Fatalf("CreateSnapshot: %v", err)
	}
	if s.ID == "" || s.Source != "coto" || s.ContentHash != ContentHash([]byte(`[]`)) || s.CreatedAt.IsZero() {
		t.Fatalf("unexpected snapshot: %+v", s)
	}

	// Same content may be stored again (A -> B -> A is a real change).
	again, err := CreateSnapshot(ctx, db, "coto", []byte(`[]`), 0)
	if err != nil || again.ID == s.ID {
		t.Fatalf("second CreateSnapshot: got=%+v err=%v", again, err)
	}

	var got domain.Snapshot
	if err := db.First(&got, "id = ?", s.ID).Error; err != nil || got.Payload != "[]" {
		t.Fatalf("readback: got=%+v err=%v", got, err)
	}
}

func TestCreateSnapshot_Error_NoTable(t *testing.T) {
	db := newTestDB(t /* no migrations */)
	if s, err := CreateSnapshot(context.Background(), db, "coto", []byte(`[]`), 0); err == nil || s != nil {
		t.Fatalf("expected error creating without table, got s=%v err=%v", s, err)
	}
}

func TestLatestAndPreviousSnapshot(t *testing.T) {
	db := newTestDB(t, allModels()...)
	ctx := context.Background()

	if _, err := LatestSnapshot(ctx, db, "coto"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("want ErrNotFound on empty store, got %v", err)
	}

	t1 := time.Date(2025, 4, 1, 10, 0, 0, 0, time.UTC)
	seedSnapshot(t, db, "s1", "coto", "h1", t1)
	seedSnapshot(t, db, "s2", "coto", "h2", t1.Add(time.Hour))
	seedSnapshot(t, db, "s3", "dia", "h3", t1.Add(2*time.Hour))

	latest, err := LatestSnapshot(ctx, db, "coto")
	if err != nil || latest.ID != "s2" {
		t.Fatalf("LatestSnapshot: got=%+v err=%v", latest, err)
	}
	prev, err := PreviousSnapshot(ctx, db, "coto", latest.CreatedAt)
	if err != nil || prev.ID != "s1" {
		t.Fatalf("PreviousSnapshot: got=%+v err=%v", prev, err)
	}
	if _, err := PreviousSnapshot(ctx, db, "coto", t1); !errors.Is(err, ErrNotFound) {
		t.Fatalf("want ErrNotFound before first snapshot, got %v", err)
	}
}

func TestGetSnapshot_ScopedToSource(t *testing.T) {
	db := newTestDB(t, allModels()...)
	ctx := context.Background()
	seedSnapshot(t, db, "s1", "coto", "h1", time.Now().UTC())

	if s, err := GetSnapshot(ctx, db, "coto", "s1"); err != nil || s.ID != "s1" {
		t.Fatalf("GetSnapshot: got=%+v err=%v", s, err)
	}
	if _, err := GetSnapshot(ctx, db, "dia", "s1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("want ErrNotFound for other source, got %v", err)
	}
}

func TestListSnapshotsPage_OrderAndCount(t *testing.T) {
	db := newTestDB(t, allModels()...)
	ctx := context.Background()
	base := time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)
	for i, id := range []string{"s1", "s2", "s3"} {
		seedSnapshot(t, db, id, "coto", id, base.Add(time.Duration(i)*time.Hour))
	}

	total, err := CountSnapshots(ctx, db, "coto")
	if err != nil || total != 3 {
		t.Fatalf("CountSnapshots: %d %v", total, err)
	}

	page, err := ListSnapshotsPage(ctx, db, "coto", 1, 2)
	if err != nil {
		t.Fatalf("ListSnapshotsPage: %v", err)
	}
	if len(page) != 2 || page[0].ID != "s2" || page[1].ID != "s1" {
		t.Fatalf("unexpected page: %+v", page)
	}
	if page[0].Payload != "" {
		t.Fatalf("payload should not be loaded in listings")
	}
}

func TestSnapshotKeys_RoundTripInOrder(t *testing.T) {
	db := newTestDB(t, allModels()...)
	ctx := context.Background()
	seedSnapshot(t, db, "s1", "coto", "h1", time.Now().UTC())

	keys := []string{"coto-porcentaje-15-0425-0426", "coto-porcentaje-20-0425-0426"}
	dateless := []string{"coto-porcentaje-15", "coto-porcentaje-20"}
	if err := CreateSnapshotKeys(ctx, db, "s1", keys, dateless); err != nil {
		t.Fatalf("CreateSnapshotKeys: %v", err)
	}
	if err := CreateSnapshotKeys(ctx, db, "s1", nil, nil); err != nil {
		t.Fatalf("CreateSnapshotKeys(empty): %v", err)
	}

	got, err := SnapshotKeys(ctx, db, "s1")
	if err != nil {
		t.Fatalf("SnapshotKeys: %v", err)
	}
	if len(got) != 2 || got[0] != keys[0] || got[1] != keys[1] {
		t.Fatalf("unexpected keys: %v", got)
	}

	var row domain.SnapshotKey
	if err := db.Where("snapshot_id = ? AND position = 1", "s1").First(&row).Error; err != nil {
		t.Fatalf("load key row: %v", err)
	}
	if row.DatelessKey != "coto-porcentaje-20" {
		t.Fatalf("dateless key = %q", row.DatelessKey)
	}
}

func TestRecentKeySets_OldestFirst(t *testing.T) {
	db := newTestDB(t, allModels()...)
	ctx := context.Background()

	sets, err := RecentKeySets(ctx, db, "coto", 5)
	if err != nil || len(sets) != 0 {
		t.Fatalf("empty store: sets=%v err=%v", sets, err)
	}

	base := time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)
	for i, id := range []string{"s1", "s2", "s3"} {
		seedSnapshot(t, db, id, "coto", id, base.Add(time.Duration(i)*time.Hour))
		if err := CreateSnapshotKeys(ctx, db, id, []string{id + "-a", id + "-b"}, nil); err != nil {
			t.Fatalf("keys %s: %v", id, err)
		}
	}
	seedSnapshot(t, db, "s4", "coto", "s4", base.Add(4*time.Hour)) // no keys

	sets, err = RecentKeySets(ctx, db, "coto", 3)
	if err != nil {
		t.Fatalf("RecentKeySets: %v", err)
	}
	if len(sets) != 3 {
		t.Fatalf("want 3 sets, got %d", len(sets))
	}
	if sets[0][0] != "s2-a" || sets[1][1] != "s3-b" || len(sets[2]) != 0 {
		t.Fatalf("unexpected sets: %v", sets)
	}
}

func TestDiffReports_CreateAndList(t *testing.T) {
	db := newTestDB(t, allModels()...)
	ctx := context.Background()
	base := time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)
	seedSnapshot(t, db, "s1", "coto", "h1", base)
	seedSnapshot(t, db, "s2", "coto", "h2", base.Add(time.Hour))

	prev := "s1"
	for _, r := range []*domain.DiffReport{
		{Source: "coto", SnapshotID: "s1", Added: 2, TotalNew: 2},
		{Source: "coto", SnapshotID: "s2", PreviousSnapshotID: &prev, Removed: 1, TotalNew: 1, TotalOld: 2},
	} {
		if err := CreateDiffReport(ctx, db, r); err != nil {
			t.Fatalf("CreateDiffReport: %v", err)
		}
		if r.ID == "" || r.CreatedAt.IsZero() {
			t.Fatalf("ID/CreatedAt not assigned: %+v", r)
		}
	}

	got, err := ListDiffReports(ctx, db, "coto", 10)
	if err != nil {
		t.Fatalf("ListDiffReports: %v", err)
	}
	if len(got) != 2 || got[0].SnapshotID != "s2" || got[0].PreviousSnapshotID == nil || *got[0].PreviousSnapshotID != "s1" {
		t.Fatalf("unexpected reports: %+v", got)
	}

	dup := &domain.DiffReport{Source: "coto", SnapshotID: "s2"}
	if err := CreateDiffReport(ctx, db, dup); !errors.Is(err, ErrDuplicate) {
		t.Fatalf("want ErrDuplicate for second report of s2, got %v", err)
	}

	limited, err := ListDiffReports(ctx, db, "coto", 1)
	if err != nil || len(limited) != 1 {
		t.Fatalf("limit not applied: %v %v", limited, err)
	}
}
