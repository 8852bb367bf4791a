package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-promo-backend/internal/domain"
	"github.com/tbourn/go-promo-backend/internal/services"
)

// Error codes. Clients branch on these, so never rename one.
const (
	ErrCodeBadRequest       = "bad_request"
	ErrCodeNotFound         = "not_found"
	ErrCodeRateLimited      = "too_many_requests"
	ErrCodeInternal         = "internal_error"
	ErrCodeMethodNotAllowed = "method_not_allowed"
	ErrCodePayloadTooLarge  = "payload_too_large"

	ErrCodeInvalidBatch     = "invalid_batch"
	ErrCodeTooManyDiscounts = "too_many_discounts"
	ErrCodeInvalidKey       = "invalid_key"
	ErrCodeInvalidSource    = "invalid_source"
	ErrCodeIngestFailed     = "ingest_failed"
	ErrCodeListFailed       = "list_failed"
)

// failErr maps a service or decoding error to a status and code. fallback is
// the code used for unexpected (5xx) failures.
func failErr(c *gin.Context, err error, fallback string) {
	var tooLarge *http.MaxBytesError
	switch {
	case errors.As(err, &tooLarge):
		fail(c, http.StatusRequestEntityTooLarge, ErrCodePayloadTooLarge, "request body too large")
	case errors.Is(err, domain.ErrInvalidBatch):
		fail(c, http.StatusBadRequest, ErrCodeInvalidBatch, "body must be a discount array or {\"discounts\": [...]}")
	case errors.Is(err, services.ErrTooManyDiscounts):
		fail(c, http.StatusBadRequest, ErrCodeTooManyDiscounts, err.Error())
	case errors.Is(err, services.ErrEmptySource):
		fail(c, http.StatusBadRequest, ErrCodeInvalidSource, err.Error())
	case errors.Is(err, services.ErrInvalidKey):
		fail(c, http.StatusBadRequest, ErrCodeInvalidKey, "key is not valid")
	case errors.Is(err, services.ErrSnapshotNotFound):
		fail(c, http.StatusNotFound, ErrCodeNotFound, "snapshot not found")
	default:
		fail(c, http.StatusInternalServerError, fallback, err.Error())
	}
}
