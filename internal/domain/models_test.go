package domain

import (
	"testing"
	"time"

	sqlite "github.com/glebarez/sqlite" // pure-Go SQLite (no CGO)
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newDomainDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	// Enforce FKs so cascades actually execute.
	db.Exec("PRAGMA foreign_keys=ON;")
	return db
}

func TestTableNames(t *testing.T) {
	if (Snapshot{}).TableName() != "snapshots" {
		t.Fatalf("Snapshot.TableName() = %q", (Snapshot{}).TableName())
	}
	if (SnapshotKey{}).TableName() != "snapshot_keys" {
		t.Fatalf("SnapshotKey.TableName() = %q", (SnapshotKey{}).TableName())
	}
	if (DiffReport{}).TableName() != "diff_reports" {
		t.Fatalf("DiffReport.TableName() = %q", (DiffReport{}).TableName())
	}
}

func TestMigrations_Indexes_AndCascades(t *testing.T) {
	db := newDomainDB(t)

	if err := db.AutoMigrate(&Snapshot{}, &SnapshotKey{}, &DiffReport{}); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	m := db.Migrator()

	for _, tbl := range []any{&Snapshot{}, &SnapshotKey{}, &DiffReport{}} {
		if !m.HasTable(tbl) {
			t.Fatalf("expected table for %T to exist", tbl)
		}
	}
	if !m.HasIndex(&Snapshot{}, "idx_source_created") {
		t.Fatalf("expected index idx_source_created on snapshots")
	}
	if !m.HasIndex(&Snapshot{}, "idx_source_hash") {
		t.Fatalf("expected index idx_source_hash on snapshots")
	}
	if !m.HasIndex(&SnapshotKey{}, "ux_snapshot_pos") {
		t.Fatalf("expected unique index ux_snapshot_pos on snapshot_keys")
	}

	now := time.Now().UTC()
	snap := &Snapshot{ID: "s1", Source: "coto", ContentHash: "h", DiscountCount: 2, Payload: "[]", CreatedAt: now}
	if err := db.Create(snap).Error; err != nil {
		t.Fatalf("insert snapshot: %v", err)
	}
	for i, k := range []string{"coto-porcentaje-15-0425-0426", "coto-porcentaje-20-0425-0426"} {
		sk := &SnapshotKey{SnapshotID: "s1", Position: i, Key: k, DatelessKey: "coto-porcentaje-15"}
		if err := db.Create(sk).Error; err != nil {
			t.Fatalf("insert key %d: %v", i, err)
		}
	}
	if err := db.Create(&DiffReport{ID: "r1", Source: "coto", SnapshotID: "s1", Added: 2, TotalNew: 2}).Error; err != nil {
		t.Fatalf("insert report: %v", err)
	}

	// Same position twice violates ux_snapshot_pos.
	if err := db.Create(&SnapshotKey{SnapshotID: "s1", Position: 0, Key: "x", DatelessKey: "x"}).Error; err == nil {
		t.Fatalf("expected unique violation on (snapshot_id, position)")
	}
	// A second report for the same snapshot violates the unique index.
	if err := db.Create(&DiffReport{ID: "r2", Source: "coto", SnapshotID: "s1"}).Error; err == nil {
		t.Fatalf("expected unique violation on diff_reports.snapshot_id")
	}

	if err := db.Delete(&Snapshot{}, "id = ?", "s1").Error; err != nil {
		t.Fatalf("delete snapshot: %v", err)
	}
	var keys, reports int64
	db.Model(&SnapshotKey{}).Count(&keys)
	db.Model(&DiffReport{}).Count(&reports)
	if keys != 0 || reports != 0 {
		t.Fatalf("cascade failed: keys=%d reports=%d", keys, reports)
	}
}
