// Package domain defines the persistence models for scraped promotion batches.
// These types are mapped with GORM and form the data layer of the snapshot
// store: every ingest of a merchant's batch produces one Snapshot, one
// SnapshotKey per discount, and one DiffReport against the prior snapshot.
package domain

import (
	"time"
)

// Snapshot is one stored batch of discounts for a source (merchant).
//
// Fields:
//   - ID: UUID primary key (char(36)).
//   - Source: canonical merchant identifier ("coto", "carrefour"...).
//   - ContentHash: sha256 of Payload; a batch identical to the source's
//     latest snapshot is detected by hash instead of stored twice.
//   - DiscountCount: number of discounts in Payload.
//   - Payload: the batch as a JSON array (source of truth; keys are derived).
//   - CreatedAt: ingest timestamp (UTC).
type Snapshot struct {
	ID            string    `json:"id"             gorm:"type:char(36);primaryKey"`
	Source        string    `json:"source"         gorm:"type:varchar(64);not null;index:idx_source_created,priority:1;index:idx_source_hash,priority:1"`
	ContentHash   string    `json:"content_hash"   gorm:"type:char(64);not null;index:idx_source_hash,priority:2"`
	DiscountCount int       `json:"discount_count" gorm:"not null"`
	Payload       string    `json:"-"              gorm:"type:text;not null"`
	CreatedAt     time.Time `json:"created_at"     gorm:"index:idx_source_created,priority:2"`
}

// TableName returns the database table name for Snapshot.
func (Snapshot) TableName() string { return "snapshots" }

// SnapshotKey is the unique key computed for one discount of a snapshot,
// kept for history/stability analysis. Position is the discount's index in
// the batch.
type SnapshotKey struct {
	ID          uint   `json:"-"            gorm:"primaryKey;autoIncrement"`
	SnapshotID  string `json:"snapshot_id"  gorm:"type:char(36);not null;uniqueIndex:ux_snapshot_pos,priority:1"`
	Position    int    `json:"position"     gorm:"not null;uniqueIndex:ux_snapshot_pos,priority:2"`
	Key         string `json:"key"          gorm:"type:varchar(96);not null;index"`
	DatelessKey string `json:"dateless_key" gorm:"type:varchar(96);not null"`

	Snapshot Snapshot `json:"-" gorm:"foreignKey:SnapshotID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for SnapshotKey.
func (SnapshotKey) TableName() string { return "snapshot_keys" }

// DiffReport records the outcome of comparing a snapshot with the one before
// it. PreviousSnapshotID is nil for a source's first snapshot.
type DiffReport struct {
	ID                 string    `json:"id"                             gorm:"type:char(36);primaryKey"`
	Source             string    `json:"source"                         gorm:"type:varchar(64);not null;index"`
	SnapshotID         string    `json:"snapshot_id"                    gorm:"type:char(36);not null;uniqueIndex"`
	PreviousSnapshotID *string   `json:"previous_snapshot_id,omitempty" gorm:"type:char(36)"`
	Added              int       `json:"added"                          gorm:"not null"`
	Removed            int       `json:"removed"                        gorm:"not null"`
	ValidityChanged    int       `json:"validity_changed"               gorm:"not null"`
	TotalNew           int       `json:"total_new"                      gorm:"not null"`
	TotalOld           int       `json:"total_old"                      gorm:"not null"`
	Summary            string    `json:"summary"                        gorm:"type:text"`
	CreatedAt          time.Time `json:"created_at"`

	Snapshot Snapshot `json:"-" gorm:"foreignKey:SnapshotID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for DiffReport.
func (DiffReport) TableName() string { return "diff_reports" }
