package utils

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKindOf(t *testing.T) {
	assert.Equal(t, KindInvalidInput, KindOf(NewInvalidInput("empty question")))
	assert.Equal(t, KindProviderUnavailable, KindOf(WrapProvider("embed failed", errors.New("boom"))))
	assert.Equal(t, KindStorageUnavailable, KindOf(WrapStorage("insert failed", errors.New("boom"))))

	assert.Equal(t, ErrorKind(""), KindOf(errors.New("plain")))
	assert.Equal(t, ErrorKind(""), KindOf(nil))
}

func TestKindOfSurvivesWrapping(t *testing.T) {
	inner := WrapStorage("vector search failed", errors.New("server selection timeout"))
	wrapped := fmt.Errorf("handling request: %w", inner)

	assert.Equal(t, KindStorageUnavailable, KindOf(wrapped))
}

func TestAppErrorMessage(t *testing.T) {
	withCause := WrapProvider("chat model call failed", errors.New("429 too many requests"))
	assert.Equal(t, "chat model call failed: 429 too many requests", withCause.Error())
	assert.EqualError(t, errors.Unwrap(withCause), "429 too many requests")

	bare := NewInvalidInput("file must be a PDF")
	assert.Equal(t, "file must be a PDF", bare.Error())
	assert.Nil(t, errors.Unwrap(bare))
}

type timeoutErr struct{}

func (timeoutErr) Error() string   { return "dial tcp: i/o timeout" }
func (timeoutErr) Timeout() bool   { return true }
func (timeoutErr) Temporary() bool { return true }

func TestClassifyProviderError(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, ""},
		{"deadline", context.DeadlineExceeded, "timeout"},
		{"net timeout", timeoutErr{}, "timeout"},
		{"connection reset", errors.New("connection reset by peer"), "timeout"},
		{"http 429", errors.New("429 Too Many Requests"), "quota"},
		{"quota message", errors.New("insufficient quota for this model"), "quota"},
		{"rate limit message", errors.New("Rate limit reached"), "quota"},
		{"anything else", errors.New("model not found"), "provider"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ClassifyProviderError(tc.err))
		})
	}
}

func performWithError(err error) *httptest.ResponseRecorder {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	RespondWithAppError(c, err)
	return w
}

func TestRespondWithAppErrorStatuses(t *testing.T) {
	cases := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"invalid input", NewInvalidInput("question must not be empty"), http.StatusBadRequest, "invalid_input"},
		{"provider outage", WrapProvider("embed failed", errors.New("quota")), http.StatusServiceUnavailable, "provider_unavailable"},
		{"storage outage", WrapStorage("insert failed", errors.New("down")), http.StatusServiceUnavailable, "storage_unavailable"},
		{"not found", &AppError{Kind: KindNotFound, Message: "no such document"}, http.StatusNotFound, "not_found"},
		{"unclassified", errors.New("surprise"), http.StatusInternalServerError, "internal_error"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := performWithError(tc.err)
			assert.Equal(t, tc.wantStatus, w.Code)

			var body ErrorResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, tc.wantCode, body.ErrorCode)
			assert.NotEmpty(t, body.Message)
		})
	}
}

func TestRespondWithAppErrorProviderCategory(t *testing.T) {
	w := performWithError(WrapProvider("chat model call failed", errors.New("429 Too Many Requests")))

	var body ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))

	details, ok := body.Details.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "quota", details["category"])
}
