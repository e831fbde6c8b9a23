package crud

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestKindStatus(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{ErrNotFound, http.StatusNotFound},
		{ErrForbidden, http.StatusForbidden},
		{ErrUnauthorized, http.StatusUnauthorized},
		{ErrUnsupportedMediaType, http.StatusUnsupportedMediaType},
		{InvalidSortSpec(errors.New("x")), http.StatusBadRequest},
		{InvalidFilterSpec(errors.New("x")), http.StatusBadRequest},
		{InvalidFieldSpec(errors.New("x")), http.StatusBadRequest},
		{UnchangeableField("id"), http.StatusBadRequest},
		{Conflict(errors.New("dup")), http.StatusConflict},
		{DBValue("title"), http.StatusInternalServerError},
		{errors.New("plain"), http.StatusInternalServerError},
		{fmt.Errorf("wrapped: %w", ErrNotFound), http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			assert.Equal(t, tt.want, StatusOf(tt.err))
		})
	}
}

func TestErrorIsMatchesKind(t *testing.T) {
	err := &Error{Kind: KindNotFound, Err: sql.ErrNoRows}
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.True(t, errors.Is(err, sql.ErrNoRows))
	assert.False(t, errors.Is(err, ErrForbidden))
	assert.Equal(t, "not found: sql: no rows in result set", err.Error())
	assert.Equal(t, "unchangeable field id", UnchangeableField("id").Error())
}

func TestWriteErrorClientError(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPut, "/users/1", nil)

	WriteError(rec, req, UnchangeableField("id"))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "application/json; charset=utf-8", rec.Header().Get("Content-Type"))
	var body ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 400, body.Error)
	assert.Equal(t, "id", body.Field)
}

func TestWriteErrorValidation(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/users", nil)

	WriteError(rec, req, &Error{Kind: KindValidation, Fields: map[string][]string{"username": {"email"}}})

	assert.JSONEq(t,
		`{"error":400,"message":"validation failed","validation_error":{"username":["email"]}}`,
		rec.Body.String())
}

func TestWriteErrorServerErrorIsLogged(t *testing.T) {
	core, logs := observer.New(zap.ErrorLevel)
	ctx := WithRequestID(WithLogger(t.Context(), zap.New(core)), "req-1")
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/posts", nil).WithContext(ctx)

	WriteError(rec, req, errors.New("connection refused"))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "connection refused")
	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, "request failed", entry.Message)
	assert.Equal(t, "req-1", entry.ContextMap()["request_id"])
}
