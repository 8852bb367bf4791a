package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/tbourn/go-promo-backend/internal/domain"
	"github.com/tbourn/go-promo-backend/internal/http/middleware"
	"github.com/tbourn/go-promo-backend/internal/services"
)

func Test_fail_500_LogsAndBody(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()

	var buf bytes.Buffer
	logger := zerolog.New(&buf)
	r.Use(middleware.RequestID(), func(c *gin.Context) {
		c.Set("logger", &logger)
		c.Next()
	})
	r.GET("/boom", func(c *gin.Context) {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, "kaboom")
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/boom", nil)
	req.Header.Set("X-Request-ID", "rid-500")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status=%d", w.Code)
	}
	var resp ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("json: %v", err)
	}
	if resp.RequestID != "rid-500" || resp.Code != ErrCodeInternal || resp.Message != "kaboom" {
		t.Fatalf("unexpected body: %+v", resp)
	}
	if !strings.Contains(buf.String(), `"level":"error"`) {
		t.Fatalf("expected error log, got: %s", buf.String())
	}
}

func Test_Fail_4xx_NotLogged(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()

	var buf bytes.Buffer
	logger := zerolog.New(&buf)
	r.Use(func(c *gin.Context) {
		c.Header("X-Request-ID", "rid-404")
		c.Set("logger", &logger)
		c.Next()
	})
	r.GET("/nf", func(c *gin.Context) { Fail(c, http.StatusNotFound, ErrCodeNotFound, "nope") })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/nf", nil))

	var resp ErrorResponse
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if w.Code != http.StatusNotFound || resp.Code != ErrCodeNotFound || resp.RequestID != "rid-404" {
		t.Fatalf("unexpected: %d %+v", w.Code, resp)
	}
	if buf.Len() != 0 {
		t.Fatalf("4xx should not log: %s", buf.String())
	}
}

func Test_failErr_Mapping(t *testing.T) {
	gin.SetMode(gin.TestMode)

	cases := []struct {
		err    error
		status int
		code   string
	}{
		{&http.MaxBytesError{Limit: 10}, http.StatusRequestEntityTooLarge, ErrCodePayloadTooLarge},
		{fmt.Errorf("%w: eof", domain.ErrInvalidBatch), http.StatusBadRequest, ErrCodeInvalidBatch},
		{services.ErrTooManyDiscounts, http.StatusBadRequest, ErrCodeTooManyDiscounts},
		{services.ErrEmptySource, http.StatusBadRequest, ErrCodeInvalidSource},
		{services.ErrInvalidKey, http.StatusBadRequest, ErrCodeInvalidKey},
		{fmt.Errorf("get: %w", services.ErrSnapshotNotFound), http.StatusNotFound, ErrCodeNotFound},
		{errors.New("disk full"), http.StatusInternalServerError, ErrCodeIngestFailed},
	}
	for _, tc := range cases {
		t.Run(tc.code, func(t *testing.T) {
			r := gin.New()
			r.GET("/", func(c *gin.Context) { failErr(c, tc.err, ErrCodeIngestFailed) })
			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

			var resp ErrorResponse
			if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
				t.Fatalf("json: %v", err)
			}
			if w.Code != tc.status || resp.Code != tc.code {
				t.Fatalf("got %d/%s; want %d/%s", w.Code, resp.Code, tc.status, tc.code)
			}
		})
	}
}
