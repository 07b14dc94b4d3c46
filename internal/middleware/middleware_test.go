package middleware

import (
	"context"
	"ctlab_backend/internal/repository"
	"ctlab_backend/internal/testutil"
	"ctlab_backend/internal/util"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeAuth struct {
	claims *util.Claims
	err    error
}

func (f *fakeAuth) Authenticate(_ context.Context, token string) (*util.Claims, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.claims, nil
}

func decode(t *testing.T, w *httptest.ResponseRecorder) util.Response {
	t.Helper()
	var resp util.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestAuthMiddleware(t *testing.T) {
	tests := []struct {
		name     string
		header   string
		auth     *fakeAuth
		wantCode int
		wantKind util.ErrorKind
	}{
		{"missing header", "", &fakeAuth{}, http.StatusUnauthorized, util.KindUnauthorized},
		{"no bearer prefix", "Token abc", &fakeAuth{}, http.StatusUnauthorized, util.KindUnauthorized},
		{"empty token", "Bearer ", &fakeAuth{}, http.StatusUnauthorized, util.KindUnauthorized},
		{"expired", "Bearer abc", &fakeAuth{err: util.ErrTokenExpired}, http.StatusUnauthorized, util.KindTokenExpired},
		{"invalid", "Bearer abc", &fakeAuth{err: util.ErrTokenInvalid}, http.StatusUnauthorized, util.KindTokenInvalid},
		{"store failure", "Bearer abc", &fakeAuth{err: errors.New("redis down")}, http.StatusInternalServerError, util.KindInternal},
		{"valid", "Bearer abc", &fakeAuth{claims: &util.Claims{UserID: 7}}, http.StatusOK, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := gin.New()
			router.GET("/me", AuthMiddleware(tt.auth), func(c *gin.Context) {
				claims := util.GetUserFromContext(c)
				util.Success(c, gin.H{"user_id": claims.UserID, "token": c.GetString(util.ContextTokenKey)})
			})

			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.wantCode, w.Code)
			resp := decode(t, w)
			assert.Equal(t, tt.wantKind, resp.Error)
			if tt.wantCode == http.StatusOK {
				assert.Equal(t, map[string]interface{}{"user_id": float64(7), "token": "abc"}, resp.Data)
			}
			assert.NotContains(t, w.Body.String(), "redis down")
		})
	}
}

type idempotencyHarness struct {
	router *gin.Engine
	calls  atomic.Int32
	status atomic.Int32
}

func newIdempotencyHarness(t *testing.T) *idempotencyHarness {
	rdb, _ := testutil.NewRedis(t)
	store := repository.NewIdempotencyRepository(rdb, time.Minute)

	h := &idempotencyHarness{router: gin.New()}
	h.status.Store(http.StatusOK)
	withUser := func(c *gin.Context) {
		if id := c.GetHeader("X-User"); id != "" {
			c.Set(util.ContextUserKey, &util.Claims{UserID: uint(len(id))})
		}
		c.Next()
	}
	h.router.POST("/submit", withUser, Idempotency(store), func(c *gin.Context) {
		n := h.calls.Add(1)
		status := int(h.status.Load())
		if status >= http.StatusInternalServerError {
			util.InternalServerError(c)
			return
		}
		util.Success(c, gin.H{"call": n})
	})
	return h
}

func (h *idempotencyHarness) post(user, key string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/submit", strings.NewReader(`{}`))
	if user != "" {
		req.Header.Set("X-User", user)
	}
	if key != "" {
		req.Header.Set(util.HeaderIdempotencyKey, key)
	}
	w := httptest.NewRecorder()
	h.router.ServeHTTP(w, req)
	return w
}

func TestIdempotency_ReplaysFirstResponse(t *testing.T) {
	h := newIdempotencyHarness(t)

	first := h.post("a", "key-1")
	require.Equal(t, http.StatusOK, first.Code)
	assert.Empty(t, first.Header().Get(util.HeaderIdempotentReplayed))

	second := h.post("a", "key-1")
	require.Equal(t, http.StatusOK, second.Code)
	assert.Equal(t, "true", second.Header().Get(util.HeaderIdempotentReplayed))
	assert.JSONEq(t, first.Body.String(), second.Body.String())
	assert.EqualValues(t, 1, h.calls.Load())

	// a different key or a different user is a new request
	h.post("a", "key-2")
	h.post("bb", "key-1")
	assert.EqualValues(t, 3, h.calls.Load())
}

func TestIdempotency_WithoutKeyAlwaysRuns(t *testing.T) {
	h := newIdempotencyHarness(t)

	h.post("a", "")
	h.post("a", "")
	assert.EqualValues(t, 2, h.calls.Load())
}

func TestIdempotency_ServerErrorReleasesKey(t *testing.T) {
	h := newIdempotencyHarness(t)

	h.status.Store(http.StatusInternalServerError)
	w := h.post("a", "retry")
	assert.Equal(t, http.StatusInternalServerError, w.Code)

	h.status.Store(http.StatusOK)
	w = h.post("a", "retry")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Header().Get(util.HeaderIdempotentReplayed))
	assert.EqualValues(t, 2, h.calls.Load())
}

func TestIdempotency_RejectsBadRequests(t *testing.T) {
	h := newIdempotencyHarness(t)

	w := h.post("a", strings.Repeat("k", util.MaxIdempotencyKeyLength+1))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = h.post("", "key")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Zero(t, h.calls.Load())
}

func TestIdempotency_PendingKeyConflicts(t *testing.T) {
	rdb, _ := testutil.NewRedis(t)
	store := repository.NewIdempotencyRepository(rdb, time.Minute)

	router := gin.New()
	router.POST("/submit", func(c *gin.Context) {
		c.Set(util.ContextUserKey, &util.Claims{UserID: 1})
		c.Next()
	}, Idempotency(store), func(c *gin.Context) {
		util.Success(c, nil)
	})

	ok, err := store.Reserve(context.Background(), "idem:1:/submit:busy")
	require.NoError(t, err)
	require.True(t, ok)

	req := httptest.NewRequest(http.MethodPost, "/submit", nil)
	req.Header.Set(util.HeaderIdempotencyKey, "busy")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, util.KindConflict, decode(t, w).Error)
}

func TestIdempotency_StoreDownFailsOpen(t *testing.T) {
	rdb, mr := testutil.NewRedis(t)
	store := repository.NewIdempotencyRepository(rdb, time.Minute)
	mr.Close()

	var calls int
	router := gin.New()
	router.POST("/submit", func(c *gin.Context) {
		c.Set(util.ContextUserKey, &util.Claims{UserID: 1})
		c.Next()
	}, Idempotency(store), func(c *gin.Context) {
		calls++
		util.Success(c, nil)
	})

	req := httptest.NewRequest(http.MethodPost, "/submit", nil)
	req.Header.Set(util.HeaderIdempotencyKey, "k")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, calls)
}

func TestIdempotency_PanicReleasesKey(t *testing.T) {
	rdb, _ := testutil.NewRedis(t)
	store := repository.NewIdempotencyRepository(rdb, time.Minute)

	var calls int
	router := gin.New()
	router.Use(gin.CustomRecovery(func(c *gin.Context, _ any) {
		util.InternalServerError(c)
		c.Abort()
	}))
	router.POST("/submit", func(c *gin.Context) {
		c.Set(util.ContextUserKey, &util.Claims{UserID: 1})
		c.Next()
	}, Idempotency(store), func(c *gin.Context) {
		calls++
		if calls == 1 {
			panic("handler failed")
		}
		util.Success(c, nil)
	})

	send := func() *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/submit", nil)
		req.Header.Set(util.HeaderIdempotencyKey, "crash")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	w := send()
	assert.Equal(t, http.StatusInternalServerError, w.Code)

	_, pending, err := store.Load(context.Background(), "idem:1:/submit:crash")
	require.NoError(t, err)
	assert.False(t, pending)

	w = send()
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Header().Get(util.HeaderIdempotentReplayed))
	assert.Equal(t, 2, calls)
}
