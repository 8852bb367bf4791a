// Per-source snapshot endpoints:
//   - POST /sources/{source}/snapshots        (ingest a scraped batch)
//   - GET  /sources/{source}/snapshots        (history, paginated, ETag)
//   - GET  /sources/{source}/snapshots/{id}   (one snapshot with batch and keys)
//   - GET  /sources/{source}/reports          (recent diff reports)
//   - GET  /sources/{source}/stability        (key churn across runs)
package handlers

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/tbourn/go-promo-backend/internal/domain"
	"github.com/tbourn/go-promo-backend/internal/http/middleware"
	"github.com/tbourn/go-promo-backend/internal/services"
	"github.com/tbourn/go-promo-backend/internal/utils"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
	maxReports      = 100
)

// Pagination carries pagination metadata for list responses.
type Pagination struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
	HasNext    bool  `json:"has_next"`
}

// ListSnapshotsResponse wraps a page of snapshots. Payloads are omitted.
type ListSnapshotsResponse struct {
	Snapshots  []domain.Snapshot `json:"snapshots"`
	Pagination Pagination        `json:"pagination"`
}

// ListReportsResponse wraps the newest diff reports of a source.
type ListReportsResponse struct {
	Reports []domain.DiffReport `json:"reports"`
}

func sourceParam(c *gin.Context) string {
	return services.NormalizeSource(c.Param("source"))
}

// IngestSnapshot godoc
// @ID          ingestSnapshot
// @Summary     Ingest a scraped batch
// @Description Stores the batch as the newest snapshot of the source and diffs it against the previous one.
// @Description A batch identical to the latest snapshot is not stored and returns 200 with duplicate=true.
// @Tags        Snapshots
// @Accept      json
// @Produce     json
// @Param       source  path      string             true  "Source (retailer) identifier"  example(carrefour)
// @Param       body    body      []domain.Discount  true  "Discount batch (array or {\"discounts\": [...]})"
// @Success     201     {object}  services.IngestResult
// @Success     200     {object}  services.IngestResult  "Duplicate of latest snapshot"
// @Failure     400     {object}  handlers.ErrorResponse  "Malformed batch, bad source or too many discounts"
// @Failure     413     {object}  handlers.ErrorResponse  "Body too large"
// @Failure     500     {object}  handlers.ErrorResponse  "Internal error"
// @Router      /sources/{source}/snapshots [post]
func (h *Handlers) IngestSnapshot(c *gin.Context) {
	discounts, err := readDiscounts(c)
	if err != nil {
		failErr(c, err, ErrCodeIngestFailed)
		return
	}
	res, err := h.snapSvc.Ingest(c.Request.Context(), c.Param("source"), discounts)
	if err != nil {
		failErr(c, err, ErrCodeIngestFailed)
		return
	}

	lg := middleware.LoggerFrom(c)
	if res.Duplicate {
		lg.Info().Str("snapshot_id", res.Snapshot.ID).Msg("duplicate batch ignored")
		ok(c, http.StatusOK, res)
		return
	}
	lg.Info().
		Str("snapshot_id", res.Snapshot.ID).
		Int("added", len(res.Diff.Added)).
		Int("removed", len(res.Diff.Removed)).
		Int("validity_changed", len(res.Diff.ValidityChanged)).
		Msg("snapshot ingested")
	c.Header("Location", fmt.Sprintf("%s/%s", strings.TrimSuffix(c.Request.URL.Path, "/"), res.Snapshot.ID))
	ok(c, http.StatusCreated, res)
}

// ListSnapshots godoc
// @ID          listSnapshots
// @Summary     List snapshots of a source (paginated)
// @Description Newest first. Supports weak ETag via If-None-Match and may return 304.
// @Tags        Snapshots
// @Produce     json
// @Param       source         path    string  true   "Source identifier"  example(carrefour)
// @Param       If-None-Match  header  string  false  "Return 304 if ETag matches"
// @Param       page           query   int     false  "Page number"     minimum(1) default(1)
// @Param       page_size      query   int     false  "Items per page"  minimum(1) maximum(100) default(20)
// @Success     200  {object} handlers.ListSnapshotsResponse
// @Header      200  {string} ETag  "Weak ETag for current result"
// @Success     304  {string} string "Not Modified"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /sources/{source}/snapshots [get]
func (h *Handlers) ListSnapshots(c *gin.Context) {
	ctx := c.Request.Context()
	source := sourceParam(c)
	page, pageSize := utils.Page(c.Query("page"), c.Query("page_size"), defaultPageSize, maxPageSize)

	// ETag pre-check is best effort; a stats failure just skips it.
	if count, newest, err := h.snapSvc.Stats(ctx, source); err == nil {
		var ts int64
		if newest != nil {
			ts = newest.UnixNano()
		}
		etag := fmt.Sprintf(`W/"snapshots:%s:%d:%d:%d:%d"`, source, count, ts, page, pageSize)
		c.Header("ETag", etag)
		if inm := c.GetHeader("If-None-Match"); inm != "" && inm == etag {
			c.Status(http.StatusNotModified)
			return
		}
	}

	items, total, err := h.snapSvc.History(ctx, source, page, pageSize)
	if err != nil {
		failErr(c, err, ErrCodeListFailed)
		return
	}
	totalPages := utils.TotalPages(total, pageSize)
	ok(c, http.StatusOK, ListSnapshotsResponse{
		Snapshots: items,
		Pagination: Pagination{
			Page:       page,
			PageSize:   pageSize,
			Total:      total,
			TotalPages: totalPages,
			HasNext:    page < totalPages,
		},
	})
}

// GetSnapshot godoc
// @ID          getSnapshot
// @Summary     Get one snapshot
// @Description Returns the snapshot with its decoded discounts and generated keys.
// @Tags        Snapshots
// @Produce     json
// @Param       source  path      string  true  "Source identifier"      example(carrefour)
// @Param       id      path      string  true  "Snapshot ID (UUID)"     format(uuid)
// @Success     200     {object}  services.SnapshotDetail
// @Failure     400     {object}  handlers.ErrorResponse  "Bad ID"
// @Failure     404     {object}  handlers.ErrorResponse  "Snapshot not found"
// @Failure     500     {object}  handlers.ErrorResponse  "Internal error"
// @Router      /sources/{source}/snapshots/{id} [get]
func (h *Handlers) GetSnapshot(c *gin.Context) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "snapshot id must be a UUID")
		return
	}
	detail, err := h.snapSvc.Snapshot(c.Request.Context(), c.Param("source"), id)
	if err != nil {
		failErr(c, err, ErrCodeInternal)
		return
	}
	ok(c, http.StatusOK, detail)
}

// ListReports godoc
// @ID          listReports
// @Summary     Recent diff reports of a source
// @Tags        Snapshots
// @Produce     json
// @Param       source  path      string  true   "Source identifier"  example(carrefour)
// @Param       limit   query     int     false  "Max reports"  minimum(1) maximum(100) default(20)
// @Success     200     {object}  handlers.ListReportsResponse
// @Failure     500     {object}  handlers.ErrorResponse  "Internal error"
// @Router      /sources/{source}/reports [get]
func (h *Handlers) ListReports(c *gin.Context) {
	limit := utils.Clamp(utils.AtoiDefault(c.Query("limit"), defaultPageSize), 1, maxReports)
	reports, err := h.snapSvc.Reports(c.Request.Context(), sourceParam(c), limit)
	if err != nil {
		failErr(c, err, ErrCodeListFailed)
		return
	}
	if reports == nil {
		reports = []domain.DiffReport{}
	}
	ok(c, http.StatusOK, ListReportsResponse{Reports: reports})
}

// Stability godoc
// @ID          keyStability
// @Summary     Key stability across runs
// @Description Measures how many keys survive between consecutive snapshots of the source.
// @Tags        Analysis
// @Produce     json
// @Param       source  path      string  true   "Source identifier"  example(carrefour)
// @Param       runs    query     int     false  "Snapshots to compare"  minimum(2) maximum(100) default(10)
// @Success     200     {object}  analysis.StabilityReport
// @Failure     500     {object}  handlers.ErrorResponse  "Internal error"
// @Router      /sources/{source}/stability [get]
func (h *Handlers) Stability(c *gin.Context) {
	report, err := h.snapSvc.Stability(c.Request.Context(), sourceParam(c), utils.AtoiDefault(c.Query("runs"), 0))
	if err != nil {
		failErr(c, err, ErrCodeInternal)
		return
	}
	ok(c, http.StatusOK, report)
}
