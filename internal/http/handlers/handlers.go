package handlers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-promo-backend/internal/analysis"
	"github.com/tbourn/go-promo-backend/internal/diff"
	"github.com/tbourn/go-promo-backend/internal/domain"
	"github.com/tbourn/go-promo-backend/internal/keys"
	"github.com/tbourn/go-promo-backend/internal/services"
)

// KeyService is the stateless key API consumed by the handlers.
type KeyService interface {
	BuildKeys(ctx context.Context, discounts []domain.Discount) ([]string, int, error)
	Validate(ctx context.Context, ks []string) []services.KeyValidation
	Parse(ctx context.Context, key string) (keys.ParsedKey, error)
	Diff(ctx context.Context, source string, previous, current []domain.Discount) (diff.EnhancedResult, string, error)
	Analyze(ctx context.Context, discounts []domain.Discount) (analysis.Report, error)
}

// SnapshotService is the per-source snapshot history consumed by the handlers.
type SnapshotService interface {
	Ingest(ctx context.Context, source string, discounts []domain.Discount) (*services.IngestResult, error)
	History(ctx context.Context, source string, page, pageSize int) ([]domain.Snapshot, int64, error)
	Snapshot(ctx context.Context, source, id string) (*services.SnapshotDetail, error)
	Stability(ctx context.Context, source string, runs int) (analysis.StabilityReport, error)
	Reports(ctx context.Context, source string, limit int) ([]domain.DiffReport, error)
	Stats(ctx context.Context, source string) (int64, *time.Time, error)
}

// Handlers groups the API endpoints.
type Handlers struct {
	keySvc  KeyService
	snapSvc SnapshotService
}

// New binds the handlers to their services.
func New(keySvc KeyService, snapSvc SnapshotService) *Handlers {
	return &Handlers{keySvc: keySvc, snapSvc: snapSvc}
}

// readDiscounts decodes a batch body, either a bare array or
// {"discounts": [...]}. Malformed JSON is reported as domain.ErrInvalidBatch.
func readDiscounts(c *gin.Context) ([]domain.Discount, error) {
	b, err := io.ReadAll(c.Request.Body)
	if err != nil {
		return nil, err
	}
	out, err := domain.DecodeDiscounts(b)
	if err != nil && !errors.Is(err, domain.ErrInvalidBatch) {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidBatch, err)
	}
	return out, err
}

// bindJSON binds a JSON request body and writes the error response itself.
func bindJSON(c *gin.Context, dst any) bool {
	err := c.ShouldBindJSON(dst)
	if err == nil {
		return true
	}
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		failErr(c, err, ErrCodeBadRequest)
		return false
	}
	fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
	return false
}
