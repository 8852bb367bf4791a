// Package services – SnapshotService
//
// SnapshotService stores each scraped batch of a source as a snapshot and
// diffs it against the previous one. An ingest persists the snapshot, its
// keys and the diff report atomically, then optionally archives the batch and
// diff to object storage. Decoded batches are kept in an LRU cache keyed by
// snapshot ID so consecutive ingests do not re-decode the previous payload.
//
// Observability: public methods are OpenTelemetry-instrumented with the
// source and snapshot identifiers as span attributes.
package services

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/tbourn/go-promo-backend/internal/analysis"
	"github.com/tbourn/go-promo-backend/internal/diff"
	"github.com/tbourn/go-promo-backend/internal/domain"
	"github.com/tbourn/go-promo-backend/internal/keys"
	"github.com/tbourn/go-promo-backend/internal/repo"
)

const (
	defaultCacheSize = 64
	defaultRuns      = 10
	maxRuns          = 100
	defaultReports   = 20
)

// Archiver publishes an ingested batch and its diff. repo.S3Archive
// implements it.
type Archiver interface {
	Archive(ctx context.Context, source string, at time.Time, batch, diff []byte) error
}

// IngestResult is the outcome of SnapshotService.Ingest. When Duplicate is
// true the batch matched the latest snapshot and nothing was stored;
// Snapshot is that existing snapshot.
type IngestResult struct {
	Snapshot     *domain.Snapshot    `json:"snapshot"`
	Keys         []string            `json:"keys"`
	Diff         diff.EnhancedResult `json:"diff"`
	Notification string              `json:"notification"`
	Duplicate    bool                `json:"duplicate"`
}

// SnapshotDetail is a stored snapshot with its decoded batch and keys.
// PreviousID links to the snapshot it was diffed against, if any.
type SnapshotDetail struct {
	Snapshot   *domain.Snapshot  `json:"snapshot"`
	PreviousID *string           `json:"previous_id,omitempty"`
	Discounts  []domain.Discount `json:"discounts"`
	Keys       []string          `json:"keys"`
}

// SnapshotService coordinates snapshot persistence and diffing.
type SnapshotService struct {
	DB *gorm.DB
	// Archive is optional; nil disables archiving.
	Archive Archiver
	// MaxBatch caps discounts per ingest; 0 disables the cap.
	MaxBatch int

	cache *lru.Cache[string, []domain.Discount]
}

// NewSnapshotService constructs a SnapshotService with an LRU cache of
// cacheSize decoded batches (a non-positive size uses the default).
func NewSnapshotService(db *gorm.DB, archive Archiver, maxBatch, cacheSize int) (*SnapshotService, error) {
	if cacheSize <= 0 {
		cacheSize = defaultCacheSize
	}
	cache, err := lru.New[string, []domain.Discount](cacheSize)
	if err != nil {
		return nil, err
	}
	return &SnapshotService{DB: db, Archive: archive, MaxBatch: maxBatch, cache: cache}, nil
}

// NormalizeSource trims and lowercases a source identifier.
func NormalizeSource(source string) string {
	return strings.ToLower(strings.TrimSpace(source))
}

// Ingest stores discounts as the newest snapshot of source and diffs it
// against the previous one. A source without history reports every discount
// as added.
func (s *SnapshotService) Ingest(ctx context.Context, source string, discounts []domain.Discount) (*IngestResult, error) {
	tr := otel.Tracer("services/SnapshotService")
	ctx, span := tr.Start(ctx, "Ingest",
		trace.WithAttributes(
			attribute.String("source", source),
			attribute.Int("batch.size", len(discounts)),
		),
	)
	defer span.End()

	source = NormalizeSource(source)
	if source == "" {
		return nil, ErrEmptySource
	}
	if s.MaxBatch > 0 && len(discounts) > s.MaxBatch {
		return nil, ErrTooManyDiscounts
	}
	if discounts == nil {
		discounts = []domain.Discount{}
	}

	payload, err := json.Marshal(discounts)
	if err != nil {
		return nil, err
	}

	latest, err := repo.LatestSnapshot(ctx, s.DB, source)
	switch {
	case errors.Is(err, repo.ErrNotFound):
		latest = nil
	case err != nil:
		ingests.WithLabelValues("error").Inc()
		return nil, err
	}

	if latest != nil && latest.ContentHash == repo.ContentHash(payload) {
		ingests.WithLabelValues("duplicate").Inc()
		span.SetAttributes(attribute.Bool("ingest.duplicate", true))
		ks, err := repo.SnapshotKeys(ctx, s.DB, latest.ID)
		if err != nil {
			return nil, err
		}
		return &IngestResult{
			Snapshot:  latest,
			Keys:      ks,
			Diff:      diff.CalculateEnhanced(discounts, discounts),
			Duplicate: true,
		}, nil
	}

	previous := []domain.Discount{}
	if latest != nil {
		if previous, err = s.batch(latest); err != nil {
			ingests.WithLabelValues("error").Inc()
			return nil, err
		}
	}

	result := diff.CalculateEnhanced(previous, discounts)
	notification := diff.FormatNotification(source, result)
	uniqueKeys, collisions := keys.BuildUniqueKeysWithStats(discounts)
	dateless := keys.BuildDatelessKeys(discounts)

	var snap *domain.Snapshot
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		created, err := repo.CreateSnapshot(ctx, tx, source, payload, len(discounts))
		if err != nil {
			return err
		}
		if err := repo.CreateSnapshotKeys(ctx, tx, created.ID, uniqueKeys, dateless); err != nil {
			return err
		}
		report := &domain.DiffReport{
			Source:          source,
			SnapshotID:      created.ID,
			Added:           len(result.Added),
			Removed:         len(result.Removed),
			ValidityChanged: len(result.ValidityChanged),
			TotalNew:        result.TotalNew,
			TotalOld:        result.TotalOld,
			Summary:         notification,
		}
		if latest != nil {
			report.PreviousSnapshotID = &latest.ID
		}
		if err := repo.CreateDiffReport(ctx, tx, report); err != nil {
			return err
		}
		snap = created
		return nil
	})
	if err != nil {
		ingests.WithLabelValues("error").Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, "ingest failed")
		return nil, err
	}

	s.cache.Add(snap.ID, discounts)
	ingests.WithLabelValues("stored").Inc()
	observeKeys(len(uniqueKeys), collisions)
	observeDiff(len(result.Added), len(result.Removed), len(result.ValidityChanged))
	span.SetAttributes(attribute.String("snapshot.id", snap.ID))

	s.archive(ctx, source, snap, payload, result)

	return &IngestResult{
		Snapshot:     snap,
		Keys:         uniqueKeys,
		Diff:         result,
		Notification: notification,
	}, nil
}

// archive publishes the batch and diff. Failures are logged, not returned:
// the snapshot is already committed.
func (s *SnapshotService) archive(ctx context.Context, source string, snap *domain.Snapshot, payload []byte, result diff.EnhancedResult) {
	if s.Archive == nil {
		return
	}
	diffJSON, err := json.Marshal(result.Result)
	if err != nil {
		log.Warn().Err(err).Str("snapshot_id", snap.ID).Msg("encode diff for archive")
		diffJSON = nil
	}
	if err := s.Archive.Archive(ctx, source, snap.CreatedAt, payload, diffJSON); err != nil {
		log.Warn().Err(err).Str("source", source).Str("snapshot_id", snap.ID).Msg("archive snapshot failed")
	}
}

// batch returns the decoded discounts of snap, through the cache.
func (s *SnapshotService) batch(snap *domain.Snapshot) ([]domain.Discount, error) {
	if cached, ok := s.cache.Get(snap.ID); ok {
		return cached, nil
	}
	out, err := domain.DecodeDiscounts([]byte(snap.Payload))
	if err != nil {
		return nil, err
	}
	s.cache.Add(snap.ID, out)
	return out, nil
}

// History returns a page of snapshots for source, newest first, and the
// total count. Invalid page/pageSize fall back to 1/20.
func (s *SnapshotService) History(ctx context.Context, source string, page, pageSize int) ([]domain.Snapshot, int64, error) {
	tr := otel.Tracer("services/SnapshotService")
	ctx, span := tr.Start(ctx, "History",
		trace.WithAttributes(
			attribute.String("source", source),
			attribute.Int("page", page),
			attribute.Int("page_size", pageSize),
		),
	)
	defer span.End()

	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}
	offset := (page - 1) * pageSize
	source = NormalizeSource(source)

	total, err := repo.CountSnapshots(ctx, s.DB, source)
	if err != nil {
		return nil, 0, err
	}
	if total == 0 {
		return []domain.Snapshot{}, 0, nil
	}
	items, err := repo.ListSnapshotsPage(ctx, s.DB, source, offset, pageSize)
	return items, total, err
}

// Snapshot returns one snapshot of source with its batch and keys.
func (s *SnapshotService) Snapshot(ctx context.Context, source, id string) (*SnapshotDetail, error) {
	tr := otel.Tracer("services/SnapshotService")
	ctx, span := tr.Start(ctx, "Snapshot",
		trace.WithAttributes(
			attribute.String("source", source),
			attribute.String("snapshot.id", id),
		),
	)
	defer span.End()

	snap, err := repo.GetSnapshot(ctx, s.DB, NormalizeSource(source), id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrSnapshotNotFound
		}
		return nil, err
	}
	discounts, err := s.batch(snap)
	if err != nil {
		return nil, err
	}
	ks, err := repo.SnapshotKeys(ctx, s.DB, snap.ID)
	if err != nil {
		return nil, err
	}
	detail := &SnapshotDetail{Snapshot: snap, Discounts: discounts, Keys: ks}

	prev, err := repo.PreviousSnapshot(ctx, s.DB, snap.Source, snap.CreatedAt)
	switch {
	case err == nil:
		detail.PreviousID = &prev.ID
	case !errors.Is(err, repo.ErrNotFound):
		return nil, err
	}
	return detail, nil
}

// Stability measures key churn across the last runs snapshots of source.
// runs is clamped to [2, 100]; 0 uses 10.
func (s *SnapshotService) Stability(ctx context.Context, source string, runs int) (analysis.StabilityReport, error) {
	tr := otel.Tracer("services/SnapshotService")
	ctx, span := tr.Start(ctx, "Stability",
		trace.WithAttributes(
			attribute.String("source", source),
			attribute.Int("runs", runs),
		),
	)
	defer span.End()

	switch {
	case runs == 0:
		runs = defaultRuns
	case runs < 2:
		runs = 2
	case runs > maxRuns:
		runs = maxRuns
	}

	sets, err := repo.RecentKeySets(ctx, s.DB, NormalizeSource(source), runs)
	if err != nil {
		return analysis.StabilityReport{}, err
	}
	return analysis.Stability(sets), nil
}

// Reports returns up to limit diff reports for source, newest first.
func (s *SnapshotService) Reports(ctx context.Context, source string, limit int) ([]domain.DiffReport, error) {
	tr := otel.Tracer("services/SnapshotService")
	ctx, span := tr.Start(ctx, "Reports",
		trace.WithAttributes(attribute.String("source", source)),
	)
	defer span.End()

	if limit <= 0 {
		limit = defaultReports
	}
	return repo.ListDiffReports(ctx, s.DB, NormalizeSource(source), limit)
}

// Stats returns the snapshot count and newest CreatedAt for source, used to
// derive ETags.
func (s *SnapshotService) Stats(ctx context.Context, source string) (int64, *time.Time, error) {
	return repo.SnapshotsStats(ctx, s.DB, NormalizeSource(source))
}
