package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/conduit-lang/crudkit/pkg/crud"
)

func TestChainOrder(t *testing.T) {
	var order []string
	mark := func(name string) Middleware {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				next.ServeHTTP(w, r)
			})
		}
	}

	chain := NewChain(mark("first")).Use(mark("second"))
	extended := chain.Append(mark("third"))
	handler := extended.Then(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		order = append(order, "handler")
	}))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, []string{"first", "second", "third", "handler"}, order)
	assert.Len(t, chain.Handlers(), 2)
}

func TestRequestID(t *testing.T) {
	var fromContext string
	handler := RequestID()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fromContext = crud.RequestIDFrom(r.Context())
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.NotEmpty(t, fromContext)
	assert.Equal(t, fromContext, rec.Header().Get("X-Request-ID"))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "custom-request-id")
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, "custom-request-id", fromContext)
	assert.Equal(t, "custom-request-id", rec.Header().Get("X-Request-ID"))
}

func TestLogging(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	handler := NewChain(RequestIDWithConfig(RequestIDConfig{
		HeaderName: "X-Request-ID",
		Generator:  func() string { return "req-1" },
	}), Logging(zap.New(core))).Then(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		crud.LoggerFrom(r.Context()).Info("inside")
		w.WriteHeader(http.StatusNotFound)
	}))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/posts/1", nil))

	entries := logs.AllUntimed()
	require.Len(t, entries, 2)
	assert.Equal(t, "inside", entries[0].Message)
	assert.Equal(t, "req-1", entries[0].ContextMap()["request_id"])

	assert.Equal(t, zapcore.WarnLevel, entries[1].Level)
	fields := entries[1].ContextMap()
	assert.Equal(t, int64(http.StatusNotFound), fields["status"])
	assert.Equal(t, "/posts/1", fields["path"])
}

func TestLoggingSkipPaths(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	handler := LoggingWithConfig(LoggingConfig{
		Logger:    zap.New(core),
		SkipPaths: []string{"/healthz"},
	})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Zero(t, logs.Len())
}

func TestRecovery(t *testing.T) {
	core, logs := observer.New(zapcore.ErrorLevel)
	handler := NewChain(Logging(zap.New(core)), Recovery()).Then(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	var body crud.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, http.StatusInternalServerError, body.Error)
	assert.NotContains(t, rec.Body.String(), "boom")
	assert.Equal(t, 1, logs.FilterMessage("panic recovered").Len())
}

func TestHeaderSubject(t *testing.T) {
	var subject *crud.Subject
	handler := HeaderSubject(DefaultHeaderConfig())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		subject, _ = crud.SubjectFrom(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Subject", "alice")
	req.Header.Set("X-Roles", "admin, editor,")
	handler.ServeHTTP(httptest.NewRecorder(), req)
	require.NotNil(t, subject)
	assert.Equal(t, "alice", subject.ID)
	assert.Equal(t, []string{"admin", "editor"}, subject.Roles)

	subject = nil
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Nil(t, subject)
}

func TestBearerSubject(t *testing.T) {
	secret := []byte("test-secret")
	var subject *crud.Subject
	handler := BearerSubject(BearerConfig{Secret: secret})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		subject, _ = crud.SubjectFrom(r.Context())
	}))

	token, err := IssueToken(secret, &crud.Subject{ID: "bob", Roles: []string{"author"}}, time.Hour)
	require.NoError(t, err)

	t.Run("valid token", func(t *testing.T) {
		subject = nil
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
		require.NotNil(t, subject)
		assert.Equal(t, "bob", subject.ID)
		assert.True(t, subject.HasRole("author"))
	})

	t.Run("anonymous", func(t *testing.T) {
		subject = nil
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Nil(t, subject)
	})

	cases := map[string]string{
		"wrong scheme":  "Basic " + token,
		"empty token":   "Bearer ",
		"bad signature": "Bearer " + mustToken(t, []byte("other"), time.Hour),
		"expired":       "Bearer " + mustToken(t, secret, -time.Hour),
	}
	for name, header := range cases {
		t.Run(name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.Header.Set("Authorization", header)
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
		})
	}
}

func mustToken(t *testing.T, secret []byte, ttl time.Duration) string {
	t.Helper()
	token, err := IssueToken(secret, &crud.Subject{ID: "bob"}, ttl)
	require.NoError(t, err)
	return token
}
