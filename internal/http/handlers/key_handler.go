// Stateless key endpoints:
//   - POST /keys            (build keys for a batch)
//   - POST /keys/validate   (check key format)
//   - GET  /keys/{key}      (decompose a key)
//   - POST /diff            (compare two batches)
//   - POST /analysis        (uniqueness and length diagnostics)
package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-promo-backend/internal/domain"
	"github.com/tbourn/go-promo-backend/internal/services"
)

// BuildKeysResponse lists one key per input discount, in input order.
type BuildKeysResponse struct {
	Keys []string `json:"keys"`
	// Collisions counts keys that received a numeric suffix.
	Collisions int `json:"collisions" example:"1"`
}

// ValidateKeysRequest is the payload of POST /keys/validate.
type ValidateKeysRequest struct {
	Keys []string `json:"keys" binding:"required" example:"coto-porcentaje-15-0425-0426"`
}

// ValidateKeysResponse reports validity per key, in request order.
type ValidateKeysResponse struct {
	Results []services.KeyValidation `json:"results"`
	Valid   int                      `json:"valid"`
	Invalid int                      `json:"invalid"`
}

// DiffRequest is the payload of POST /diff.
type DiffRequest struct {
	// Source labels the notification text; defaults to the first discount's source.
	Source   string            `json:"source" example:"carrefour"`
	Previous []domain.Discount `json:"previous"`
	Current  []domain.Discount `json:"current"`
	// Enhanced adds per-key summaries and the underlying discounts.
	Enhanced bool `json:"enhanced"`
}

// DiffResponse carries diff.Result, or diff.EnhancedResult when requested.
type DiffResponse struct {
	Diff         any    `json:"diff"`
	HasChanges   bool   `json:"has_changes"`
	Notification string `json:"notification"`
}

// BuildKeys godoc
// @ID          buildKeys
// @Summary     Build unique keys for a batch
// @Description Returns one key per discount in input order. Equal base keys get -1, -2 ... suffixes.
// @Tags        Keys
// @Accept      json
// @Produce     json
// @Param       body  body      []domain.Discount  true  "Discount batch (array or {\"discounts\": [...]})"
// @Success     200   {object}  handlers.BuildKeysResponse
// @Failure     400   {object}  handlers.ErrorResponse  "Malformed batch or too many discounts"
// @Failure     413   {object}  handlers.ErrorResponse  "Body too large"
// @Router      /keys [post]
func (h *Handlers) BuildKeys(c *gin.Context) {
	discounts, err := readDiscounts(c)
	if err != nil {
		failErr(c, err, ErrCodeInternal)
		return
	}
	ks, collisions, err := h.keySvc.BuildKeys(c.Request.Context(), discounts)
	if err != nil {
		failErr(c, err, ErrCodeInternal)
		return
	}
	if ks == nil {
		ks = []string{}
	}
	ok(c, http.StatusOK, BuildKeysResponse{Keys: ks, Collisions: collisions})
}

// ValidateKeys godoc
// @ID          validateKeys
// @Summary     Validate key format
// @Tags        Keys
// @Accept      json
// @Produce     json
// @Param       body  body      handlers.ValidateKeysRequest  true  "Keys to check"
// @Success     200   {object}  handlers.ValidateKeysResponse
// @Failure     400   {object}  handlers.ErrorResponse  "Bad request"
// @Router      /keys/validate [post]
func (h *Handlers) ValidateKeys(c *gin.Context) {
	var req ValidateKeysRequest
	if !bindJSON(c, &req) {
		return
	}
	results := h.keySvc.Validate(c.Request.Context(), req.Keys)
	resp := ValidateKeysResponse{Results: results}
	for _, r := range results {
		if r.Valid {
			resp.Valid++
		} else {
			resp.Invalid++
		}
	}
	ok(c, http.StatusOK, resp)
}

// ParseKey godoc
// @ID          parseKey
// @Summary     Decompose a key
// @Description Splits a valid key into source, discount type, date range and additional parts.
// @Tags        Keys
// @Produce     json
// @Param       key  path      string  true  "Promotion key"  example(coto-porcentaje-15-0425-0426)
// @Success     200  {object}  keys.ParsedKey
// @Failure     400  {object}  handlers.ErrorResponse  "Invalid key"
// @Router      /keys/{key} [get]
func (h *Handlers) ParseKey(c *gin.Context) {
	parsed, err := h.keySvc.Parse(c.Request.Context(), strings.TrimSpace(c.Param("key")))
	if err != nil {
		failErr(c, err, ErrCodeInternal)
		return
	}
	ok(c, http.StatusOK, parsed)
}

// Diff godoc
// @ID          diffBatches
// @Summary     Compare two batches
// @Description Classifies keys as added, removed or validity-changed and renders the notification text.
// @Tags        Diff
// @Accept      json
// @Produce     json
// @Param       body  body      handlers.DiffRequest  true  "Previous and current batches"
// @Success     200   {object}  handlers.DiffResponse
// @Failure     400   {object}  handlers.ErrorResponse  "Bad request"
// @Failure     413   {object}  handlers.ErrorResponse  "Body too large"
// @Router      /diff [post]
func (h *Handlers) Diff(c *gin.Context) {
	var req DiffRequest
	if !bindJSON(c, &req) {
		return
	}
	source := strings.TrimSpace(req.Source)
	if source == "" {
		source = firstSource(req.Current, req.Previous)
	}

	res, note, err := h.keySvc.Diff(c.Request.Context(), source, req.Previous, req.Current)
	if err != nil {
		failErr(c, err, ErrCodeInternal)
		return
	}
	resp := DiffResponse{HasChanges: res.HasChanges(), Notification: note}
	if req.Enhanced {
		resp.Diff = res
	} else {
		resp.Diff = res.Result
	}
	ok(c, http.StatusOK, resp)
}

// Analyze godoc
// @ID          analyzeBatch
// @Summary     Analyze key quality of a batch
// @Description Reports base-key uniqueness (overall and per source) and key length statistics.
// @Tags        Analysis
// @Accept      json
// @Produce     json
// @Param       body  body      []domain.Discount  true  "Discount batch (array or {\"discounts\": [...]})"
// @Success     200   {object}  analysis.Report
// @Failure     400   {object}  handlers.ErrorResponse  "Malformed batch"
// @Failure     413   {object}  handlers.ErrorResponse  "Body too large"
// @Router      /analysis [post]
func (h *Handlers) Analyze(c *gin.Context) {
	discounts, err := readDiscounts(c)
	if err != nil {
		failErr(c, err, ErrCodeInternal)
		return
	}
	report, err := h.keySvc.Analyze(c.Request.Context(), discounts)
	if err != nil {
		failErr(c, err, ErrCodeInternal)
		return
	}
	ok(c, http.StatusOK, report)
}

func firstSource(batches ...[]domain.Discount) string {
	for _, b := range batches {
		for _, d := range b {
			if s := strings.TrimSpace(d.Source); s != "" {
				return s
			}
		}
	}
	return ""
}
