package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"retailpos/internal/core/apperror"
	appctx "retailpos/internal/core/context"
	"retailpos/internal/infrastructure/storage/postgres"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeValidator map[string]*appctx.UserContext

func (f fakeValidator) ValidateToken(token string) (*appctx.UserContext, error) {
	if u, ok := f[token]; ok {
		return u, nil
	}
	return nil, errors.New("bad token")
}

var tokens = fakeValidator{
	"admin-token":  {UserID: "0190c0de-0000-7000-8000-000000000001", Role: appctx.RoleAdmin},
	"seller-token": {UserID: "0190c0de-0000-7000-8000-000000000002", Role: appctx.RoleSeller},
}

func newEngine(mw ...gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	r.Use(Recovery(), Trace(), Logger(nil), ErrorHandler())
	r.Use(mw...)
	return r
}

func do(r http.Handler, method, path, token string, body string, headers ...string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestAuth(t *testing.T) {
	r := newEngine(Auth(tokens))
	r.GET("/me", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user": appctx.GetUserID(c.Request.Context()), "role": c.GetString("role")})
	})

	tests := []struct {
		name       string
		header     string
		wantStatus int
	}{
		{"missing header", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic abc", http.StatusUnauthorized},
		{"bad token", "Bearer nope", http.StatusUnauthorized},
		{"valid", "bearer seller-token", http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(r, http.MethodGet, "/me", "", "", "Authorization", tt.header)
			assert.Equal(t, tt.wantStatus, w.Code)
			if tt.wantStatus == http.StatusUnauthorized {
				assert.Equal(t, apperror.CodeUnauthorized, decode(t, w)["code"])
			} else {
				assert.Equal(t, appctx.RoleSeller, decode(t, w)["role"])
			}
		})
	}
}

func TestRequireAdmin(t *testing.T) {
	r := newEngine(Auth(tokens))
	r.GET("/admin", RequireAdmin(), func(c *gin.Context) { c.Status(http.StatusNoContent) })
	r.GET("/staff", RequireRole(appctx.RoleSeller), func(c *gin.Context) { c.Status(http.StatusNoContent) })

	w := do(r, http.MethodGet, "/admin", "seller-token", "")
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, apperror.CodeForbidden, decode(t, w)["code"])

	assert.Equal(t, http.StatusNoContent, do(r, http.MethodGet, "/admin", "admin-token", "").Code)
	assert.Equal(t, http.StatusNoContent, do(r, http.MethodGet, "/staff", "admin-token", "").Code)
	assert.Equal(t, http.StatusNoContent, do(r, http.MethodGet, "/staff", "seller-token", "").Code)
}

func TestErrorHandler(t *testing.T) {
	r := newEngine()
	r.GET("/missing", func(c *gin.Context) {
		_ = c.Error(apperror.NewNotFound("product", "CAM-1"))
	})
	r.GET("/boom", func(c *gin.Context) {
		_ = c.Error(apperror.NewInternal(errors.New("connection refused")))
	})
	r.GET("/plain", func(c *gin.Context) {
		_ = c.Error(errors.New("raw failure"))
	})

	w := do(r, http.MethodGet, "/missing", "", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, apperror.CodeNotFound, decode(t, w)["code"])

	for _, path := range []string{"/boom", "/plain"} {
		w = do(r, http.MethodGet, path, "", "", HeaderRequestID, "req-42")
		assert.Equal(t, http.StatusInternalServerError, w.Code)
		body := decode(t, w)
		assert.Equal(t, "Internal server error", body["message"])
		assert.Equal(t, "req-42", body["details"].(map[string]any)["request_id"])
		assert.NotContains(t, w.Body.String(), "refused")
		assert.NotContains(t, w.Body.String(), "raw failure")
	}
}

func TestRecovery(t *testing.T) {
	r := newEngine()
	r.GET("/panic", func(c *gin.Context) { panic("nil map") })

	w := do(r, http.MethodGet, "/panic", "", "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, apperror.CodeInternal, decode(t, w)["code"])
	assert.NotEmpty(t, w.Header().Get(HeaderRequestID))
}

func TestTrace_KeepsIncomingIDs(t *testing.T) {
	r := newEngine()
	r.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, appctx.GetTrace(c.Request.Context()).TraceID)
	})

	w := do(r, http.MethodGet, "/", "", "", HeaderTraceID, "trace-1", HeaderRequestID, "req-1")
	assert.Equal(t, "trace-1", w.Body.String())
	assert.Equal(t, "req-1", w.Header().Get(HeaderRequestID))
}

type fakeIdemStore struct {
	acquired   []string
	replay     *postgres.IdempotencyReplay
	acquireErr error
	completed  map[string]int
	failed     map[string]int
	released   []string
}

func newFakeIdemStore() *fakeIdemStore {
	return &fakeIdemStore{completed: map[string]int{}, failed: map[string]int{}}
}

func (f *fakeIdemStore) AcquireKey(_ context.Context, key, _, _, _ string) (*postgres.IdempotencyReplay, error) {
	f.acquired = append(f.acquired, key)
	return f.replay, f.acquireErr
}

func (f *fakeIdemStore) CompleteKey(_ context.Context, key string, status int, _ string, _ any) error {
	f.completed[key] = status
	return nil
}

func (f *fakeIdemStore) FailKey(_ context.Context, key string, status int, _ string, _ any) error {
	f.failed[key] = status
	return nil
}

func (f *fakeIdemStore) ReleaseKey(_ context.Context, key string) error {
	f.released = append(f.released, key)
	return nil
}

func TestIdempotency(t *testing.T) {
	store := newFakeIdemStore()
	r := newEngine(Auth(tokens), Idempotency(store))
	r.POST("/sales", func(c *gin.Context) {
		CompleteIdempotency(c, http.StatusCreated, "application/json", gin.H{"id": "s1"})
		c.JSON(http.StatusCreated, gin.H{"id": "s1"})
	})
	r.POST("/bad", func(c *gin.Context) {
		_ = c.Error(apperror.NewValidation("quantity must be positive"))
	})
	r.POST("/down", func(c *gin.Context) {
		_ = c.Error(errors.New("db down"))
	})
	key := "0190c0de-0000-7000-8000-000000000002:k1"

	t.Run("no header passes through", func(t *testing.T) {
		w := do(r, http.MethodPost, "/sales", "seller-token", `{}`)
		assert.Equal(t, http.StatusCreated, w.Code)
		assert.Empty(t, store.acquired)
	})

	t.Run("first request completes key", func(t *testing.T) {
		w := do(r, http.MethodPost, "/sales", "seller-token", `{"q":1}`, HeaderIdempotencyKey, "k1")
		assert.Equal(t, http.StatusCreated, w.Code)
		assert.Equal(t, []string{key}, store.acquired)
		assert.Equal(t, http.StatusCreated, store.completed[key])
	})

	t.Run("client error is stored", func(t *testing.T) {
		w := do(r, http.MethodPost, "/bad", "seller-token", `{}`, HeaderIdempotencyKey, "k1")
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, http.StatusBadRequest, store.failed[key])
	})

	t.Run("server error releases key", func(t *testing.T) {
		w := do(r, http.MethodPost, "/down", "seller-token", `{}`, HeaderIdempotencyKey, "k1")
		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.Equal(t, []string{key}, store.released)
	})

	t.Run("replay", func(t *testing.T) {
		store.replay = &postgres.IdempotencyReplay{StatusCode: http.StatusCreated, ContentType: "application/json", Body: []byte(`{"id":"s1"}`)}
		defer func() { store.replay = nil }()

		w := do(r, http.MethodPost, "/sales", "seller-token", `{"q":1}`, HeaderIdempotencyKey, "k1")
		assert.Equal(t, http.StatusCreated, w.Code)
		assert.Equal(t, "true", w.Header().Get("Idempotent-Replayed"))
		assert.JSONEq(t, `{"id":"s1"}`, w.Body.String())
	})

	t.Run("busy key", func(t *testing.T) {
		store.acquireErr = apperror.NewIdempotencyConflict("k1")
		defer func() { store.acquireErr = nil }()

		w := do(r, http.MethodPost, "/sales", "seller-token", `{}`, HeaderIdempotencyKey, "k1")
		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Equal(t, apperror.CodeIdempotency, decode(t, w)["code"])
	})

	t.Run("key too long", func(t *testing.T) {
		w := do(r, http.MethodPost, "/sales", "seller-token", `{}`, HeaderIdempotencyKey, strings.Repeat("x", maxIdempotencyKeyLength+1))
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}
