// Package repo implements the data persistence layer for promotion snapshots,
// backed by GORM. This file provides small aggregate queries used for
// conditional responses (ETag generation) in the HTTP layer.
package repo

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/tbourn/go-promo-backend/internal/domain"
)

// SnapshotsStats returns the number of snapshots stored for source and the
// newest CreatedAt among them. When the source has none, count is 0 and
// maxCreatedAt is nil.
func SnapshotsStats(ctx context.Context, db *gorm.DB, source string) (count int64, maxCreatedAt *time.Time, err error) {
	q := db.WithContext(ctx).Model(&domain.Snapshot{}).Where("source = ?", source)

	if err = q.Count(&count).Error; err != nil {
		return 0, nil, err
	}
	if count == 0 {
		return 0, nil, nil
	}

	// Avoid MAX() -> TEXT in SQLite.
	var row struct {
		CreatedAt time.Time
	}
	if err = q.Select("created_at").Order("created_at DESC").Limit(1).Scan(&row).Error; err != nil {
		return 0, nil, err
	}
	return count, &row.CreatedAt, nil
}
