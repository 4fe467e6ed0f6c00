package errors

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"albumsvc/internal/infrastructure"
	"albumsvc/internal/shared/testutil"
)

func decodeProblem(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	return body
}

func TestNewErrorHandler(t *testing.T) {
	for _, includeStack := range []bool{true, false} {
		logger, _ := testutil.NewTestLogger(t)

		handler := NewErrorHandler(logger, includeStack)

		require.NotNil(t, handler)
		assert.Equal(t, includeStack, handler.includeStack)
		assert.NotNil(t, handler.logger)
	}
}

func TestErrorHandler_HandleError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantType   string
		wantTitle  string
		wantLevel  slog.Level
	}{
		{
			name:       "handle nil error",
			err:        nil,
			wantStatus: 0,
		},
		{
			name:       "handle context deadline exceeded",
			err:        context.DeadlineExceeded,
			wantStatus: http.StatusGatewayTimeout,
			wantType:   TypeTimeout,
			wantTitle:  "Request Timeout",
			wantLevel:  slog.LevelError,
		},
		{
			name:       "handle wrapped context canceled",
			err:        fmt.Errorf("query: %w", context.Canceled),
			wantStatus: http.StatusGatewayTimeout,
			wantType:   TypeTimeout,
			wantTitle:  "Request Timeout",
			wantLevel:  slog.LevelError,
		},
		{
			name:       "handle APIError",
			err:        ErrInvalidRequest,
			wantStatus: http.StatusBadRequest,
			wantType:   TypeInvalidRequest,
			wantTitle:  "Bad Request",
			wantLevel:  slog.LevelWarn,
		},
		{
			name:       "handle oversized body",
			err:        &http.MaxBytesError{Limit: 10},
			wantStatus: http.StatusRequestEntityTooLarge,
			wantType:   TypePayloadTooLarge,
			wantTitle:  "Request Entity Too Large",
			wantLevel:  slog.LevelWarn,
		},
		{
			name:       "handle generic error",
			err:        fmt.Errorf("something went wrong"),
			wantStatus: http.StatusInternalServerError,
			wantType:   TypeInternal,
			wantTitle:  "Internal Server Error",
			wantLevel:  slog.LevelError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, logHandler := testutil.NewTestLogger(t)
			handler := NewErrorHandler(logger, false)

			w := httptest.NewRecorder()
			r := httptest.NewRequest(http.MethodGet, "/test", nil)
			r = r.WithContext(infrastructure.WithTraceID(r.Context(), "test-request-id"))

			handler.HandleError(w, r, tt.err)

			if tt.err == nil {
				assert.Equal(t, 0, logHandler.Count())
				assert.Zero(t, w.Body.Len())
				return
			}

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

			problem := decodeProblem(t, w)
			assert.Equal(t, tt.wantType, problem["type"])
			assert.Equal(t, tt.wantTitle, problem["title"])
			assert.Equal(t, float64(tt.wantStatus), problem["status"])
			assert.Equal(t, "test-request-id", problem["trace_id"])
			assert.NotContains(t, problem, "stack")

			testutil.AssertLogContains(t, logHandler, tt.wantLevel, "request failed")
		})
	}
}

func TestErrorHandler_GenericErrorHidesDetail(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)
	handler := NewErrorHandler(logger, false)

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/db/total_rows", nil)
	handler.HandleError(w, r, fmt.Errorf("sql: database is closed"))

	assert.NotContains(t, w.Body.String(), "database is closed")
}

func TestErrorHandler_apiErrorToProblem(t *testing.T) {
	tests := []struct {
		name       string
		apiError   *APIError
		wantStatus int
		wantType   string
		wantTitle  string
	}{
		{
			name:       "validation error",
			apiError:   ErrValidation("id", "id must be an integer"),
			wantStatus: http.StatusBadRequest,
			wantType:   TypeValidation,
			wantTitle:  "Bad Request",
		},
		{
			name:       "not found error",
			apiError:   ErrNotFound,
			wantStatus: http.StatusNotFound,
			wantType:   TypeNotFound,
			wantTitle:  "Not Found",
		},
		{
			name:       "rate limit error",
			apiError:   ErrRateLimitExceeded,
			wantStatus: http.StatusTooManyRequests,
			wantType:   TypeRateLimit,
			wantTitle:  "Too Many Requests",
		},
		{
			name:       "service unavailable error",
			apiError:   ServiceUnavailableWithError("album store", fmt.Errorf("connection refused")),
			wantStatus: http.StatusServiceUnavailable,
			wantType:   TypeServiceDown,
			wantTitle:  "Service Unavailable",
		},
		{
			name:       "unknown code falls back to internal",
			apiError:   New(http.StatusTeapot, "TEAPOT", "short and stout"),
			wantStatus: http.StatusTeapot,
			wantType:   TypeInternal,
			wantTitle:  "I'm a teapot",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, _ := testutil.NewTestLogger(t)
			handler := NewErrorHandler(logger, false)

			r := httptest.NewRequest(http.MethodGet, "/test", nil)
			problem := handler.apiErrorToProblem(tt.apiError, r)

			assert.Equal(t, tt.wantStatus, problem.Status)
			assert.Equal(t, tt.wantType, problem.Type)
			assert.Equal(t, tt.wantTitle, problem.Title)
			assert.Equal(t, tt.apiError.Message, problem.Detail)
			assert.Equal(t, "/test", problem.Instance)
			assert.Equal(t, tt.apiError.ErrorCode, problem.Extensions["error_code"])
			if tt.apiError.Details != nil {
				assert.Equal(t, tt.apiError.Details, problem.Extensions["details"])
			}
		})
	}
}

func TestErrorHandler_HandlePanic(t *testing.T) {
	tests := []struct {
		name         string
		recovered    interface{}
		includeStack bool
	}{
		{"string panic with stack", "something went wrong", true},
		{"error panic without stack", fmt.Errorf("error occurred"), false},
		{"integer panic", 42, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, logHandler := testutil.NewTestLogger(t)
			handler := NewErrorHandler(logger, tt.includeStack)

			w := httptest.NewRecorder()
			r := httptest.NewRequest(http.MethodGet, "/test", nil)
			r = r.WithContext(infrastructure.WithTraceID(r.Context(), "test-request-id"))

			handler.HandlePanic(w, r, tt.recovered)

			assert.Equal(t, http.StatusInternalServerError, w.Code)

			problem := decodeProblem(t, w)
			assert.Equal(t, TypeInternal, problem["type"])
			assert.Equal(t, "An unexpected error occurred", problem["detail"])
			assert.Equal(t, "test-request-id", problem["trace_id"])

			if tt.includeStack {
				assert.Equal(t, fmt.Sprintf("%v", tt.recovered), problem["panic"])
				assert.True(t, strings.Contains(problem["stack"].(string), "goroutine"))
			} else {
				assert.NotContains(t, problem, "panic")
				assert.NotContains(t, problem, "stack")
			}

			testutil.AssertLogContains(t, logHandler, slog.LevelError, "panic recovered")
		})
	}
}
