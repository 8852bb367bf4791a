// Package repo implements the data persistence layer for promotion snapshots,
// backed by GORM. This file provides repository functions for the Snapshot,
// SnapshotKey and DiffReport models.
//
// All functions are context-aware and accept a *gorm.DB handle, making them
// safe for use within transactions. They follow the "thin repository"
// approach: no business logic, only persistence and query composition.
//
// Error semantics:
//   - When a snapshot is not found, functions return ErrNotFound.
//   - Recording a second diff report for the same snapshot returns
//     ErrDuplicate.
//   - Other DB errors are propagated unchanged.
package repo

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tbourn/go-promo-backend/internal/domain"
)

// ErrNotFound is returned when a requested record does not exist.
// It aliases gorm.ErrRecordNotFound so callers can use either.
var ErrNotFound = gorm.ErrRecordNotFound

// ErrDuplicate indicates a unique constraint violation, e.g. a snapshot that
// already has a diff report.
var ErrDuplicate = errors.New("duplicate")

// ContentHash returns the hex sha256 of a serialized batch.
func ContentHash(payload []byte) string {
	sum := sha256.Sum256(payload)
	return hex.EncodeToString(sum[:])
}

// CreateSnapshot stores payload as the newest snapshot of source. The ID is a
// random UUID and CreatedAt is set to UTC now.
func CreateSnapshot(ctx context.Context, db *gorm.DB, source string, payload []byte, count int) (*domain.Snapshot, error) {
	s := &domain.Snapshot{
		ID:            uuid.NewString(),
		Source:        source,
		ContentHash:   ContentHash(payload),
		DiscountCount: count,
		Payload:       string(payload),
		CreatedAt:     time.Now().UTC(),
	}
	if err := db.WithContext(ctx).Create(s).Error; err != nil {
		return nil, err
	}
	return s, nil
}

// LatestSnapshot returns the most recent snapshot of source, or ErrNotFound.
func LatestSnapshot(ctx context.Context, db *gorm.DB, source string) (*domain.Snapshot, error) {
	var s domain.Snapshot
	err := db.WithContext(ctx).
		Where("source = ?", source).
		Order("created_at desc").
		First(&s).Error
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// PreviousSnapshot returns the newest snapshot of source created strictly
// before the given time, or ErrNotFound.
func PreviousSnapshot(ctx context.Context, db *gorm.DB, source string, before time.Time) (*domain.Snapshot, error) {
	var s domain.Snapshot
	err := db.WithContext(ctx).
		Where("source = ? AND created_at < ?", source, before).
		Order("created_at desc").
		First(&s).Error
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// GetSnapshot fetches a snapshot by ID scoped to source.
func GetSnapshot(ctx context.Context, db *gorm.DB, source, id string) (*domain.Snapshot, error) {
	var s domain.Snapshot
	err := db.WithContext(ctx).
		Where("id = ? AND source = ?", id, source).
		First(&s).Error
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// CountSnapshots returns the number of snapshots stored for source.
func CountSnapshots(ctx context.Context, db *gorm.DB, source string) (int64, error) {
	var total int64
	err := db.WithContext(ctx).
		Model(&domain.Snapshot{}).
		Where("source = ?", source).
		Count(&total).Error
	return total, err
}

// ListSnapshotsPage returns a page of snapshots for source, newest first.
// Payloads are not loaded.
func ListSnapshotsPage(ctx context.Context, db *gorm.DB, source string, offset, limit int) ([]domain.Snapshot, error) {
	var out []domain.Snapshot
	err := db.WithContext(ctx).
		Omit("payload").
		Where("source = ?", source).
		Order("created_at desc").
		Offset(offset).
		Limit(limit).
		Find(&out).Error
	return out, err
}

// CreateSnapshotKeys stores the unique and dateless key of every discount of
// a snapshot. keys and dateless are index-aligned with the batch.
func CreateSnapshotKeys(ctx context.Context, db *gorm.DB, snapshotID string, keys, dateless []string) error {
	if len(keys) == 0 {
		return nil
	}
	rows := make([]domain.SnapshotKey, len(keys))
	for i, k := range keys {
		rows[i] = domain.SnapshotKey{SnapshotID: snapshotID, Position: i, Key: k}
		if i < len(dateless) {
			rows[i].DatelessKey = dateless[i]
		}
	}
	return db.WithContext(ctx).CreateInBatches(rows, 200).Error
}

// SnapshotKeys returns the keys of a snapshot in batch order.
func SnapshotKeys(ctx context.Context, db *gorm.DB, snapshotID string) ([]string, error) {
	var out []string
	err := db.WithContext(ctx).
		Model(&domain.SnapshotKey{}).
		Where("snapshot_id = ?", snapshotID).
		Order("position asc").
		Pluck("key", &out).Error
	return out, err
}

// RecentKeySets returns the key sets of the last n snapshots of source,
// oldest first.
func RecentKeySets(ctx context.Context, db *gorm.DB, source string, n int) ([][]string, error) {
	var ids []string
	err := db.WithContext(ctx).
		Model(&domain.Snapshot{}).
		Where("source = ?", source).
		Order("created_at desc").
		Limit(n).
		Pluck("id", &ids).Error
	if err != nil || len(ids) == 0 {
		return [][]string{}, err
	}

	var rows []domain.SnapshotKey
	err = db.WithContext(ctx).
		Where("snapshot_id IN ?", ids).
		Order("position asc").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	bySnapshot := make(map[string][]string, len(ids))
	for _, r := range rows {
		bySnapshot[r.SnapshotID] = append(bySnapshot[r.SnapshotID], r.Key)
	}
	out := make([][]string, 0, len(ids))
	for i := len(ids) - 1; i >= 0; i-- {
		ks := bySnapshot[ids[i]]
		if ks == nil {
			ks = []string{}
		}
		out = append(out, ks)
	}
	return out, nil
}

// CreateDiffReport inserts r, assigning its ID and CreatedAt. A snapshot has
// at most one report; a second one returns ErrDuplicate.
func CreateDiffReport(ctx context.Context, db *gorm.DB, r *domain.DiffReport) error {
	r.ID = uuid.NewString()
	r.CreatedAt = time.Now().UTC()
	if err := db.WithContext(ctx).Create(r).Error; err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		return err
	}
	return nil
}

// ListDiffReports returns up to limit reports for source, newest first.
func ListDiffReports(ctx context.Context, db *gorm.DB, source string, limit int) ([]domain.DiffReport, error) {
	var out []domain.DiffReport
	err := db.WithContext(ctx).
		Where("source = ?", source).
		Order("created_at desc").
		Limit(limit).
		Find(&out).Error
	return out, err
}

// glebarez/sqlite often returns plain-text errors for UNIQUE violations.
func isUniqueViolation(err error) bool {
	low := strings.ToLower(err.Error())
	return errors.Is(err, gorm.ErrDuplicatedKey) ||
		strings.Contains(low, "unique constraint failed") ||
		strings.Contains(low, "constraint failed: unique")
}
