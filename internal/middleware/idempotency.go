package middleware

import (
	"bytes"
	"context"
	"ctlab_backend/internal/repository"
	"ctlab_backend/internal/util"
	"ctlab_backend/pkg/logger"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// IdempotencyStore is the key store behind Idempotency.
type IdempotencyStore interface {
	Load(ctx context.Context, key string) (*repository.StoredResponse, bool, error)
	Reserve(ctx context.Context, key string) (bool, error)
	Save(ctx context.Context, key string, resp *repository.StoredResponse) error
	Release(ctx context.Context, key string) error
}

type bodyRecorder struct {
	gin.ResponseWriter
	body bytes.Buffer
}

func (w *bodyRecorder) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

func (w *bodyRecorder) WriteString(s string) (int, error) {
	w.body.WriteString(s)
	return w.ResponseWriter.WriteString(s)
}

// Idempotency replays the first response for a repeated Idempotency-Key from the same user.
// Requests without the header pass through. Must run after AuthMiddleware.
// If the store is unreachable the request is served without deduplication.
func Idempotency(store IdempotencyStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.GetHeader(util.HeaderIdempotencyKey)
		if key == "" {
			c.Next()
			return
		}
		if len(key) > util.MaxIdempotencyKeyLength {
			util.BadRequest(c, fmt.Sprintf("%s must be at most %d characters", util.HeaderIdempotencyKey, util.MaxIdempotencyKeyLength))
			c.Abort()
			return
		}

		claims := util.GetUserFromContext(c)
		if claims == nil {
			util.Unauthorized(c)
			c.Abort()
			return
		}

		ctx := c.Request.Context()
		storeKey := fmt.Sprintf("idem:%d:%s:%s", claims.UserID, c.Request.URL.Path, key)

		if replayed := replay(c, store, storeKey); replayed {
			return
		}

		reserved, err := store.Reserve(ctx, storeKey)
		if err != nil {
			logger.Log.Warn("Idempotency store unavailable", zap.Error(err))
			c.Next()
			return
		}
		if !reserved {
			// lost the race to a concurrent request with the same key
			if replay(c, store, storeKey) {
				return
			}
			util.Abort(c, util.ErrSubmissionInFlight)
			return
		}

		recorder := &bodyRecorder{ResponseWriter: c.Writer}
		c.Writer = recorder
		defer func() {
			// a panicking handler must not leave the key pending until it expires
			if r := recover(); r != nil {
				if err := store.Release(context.WithoutCancel(ctx), storeKey); err != nil {
					logger.Log.Warn("Failed to release idempotency key", zap.Error(err))
				}
				panic(r)
			}
		}()
		c.Next()

		// the request context may be cancelled by now
		bg := context.WithoutCancel(ctx)
		status := recorder.Status()
		if status >= http.StatusInternalServerError {
			if err := store.Release(bg, storeKey); err != nil {
				logger.Log.Warn("Failed to release idempotency key", zap.Error(err))
			}
			return
		}
		resp := &repository.StoredResponse{
			Status:      status,
			ContentType: recorder.Header().Get("Content-Type"),
			Body:        recorder.body.Bytes(),
		}
		if err := store.Save(bg, storeKey, resp); err != nil {
			logger.Log.Warn("Failed to store idempotent response", zap.Error(err))
		}
	}
}

// replay writes the stored response, or a conflict while the first request runs.
func replay(c *gin.Context, store IdempotencyStore, key string) bool {
	stored, pending, err := store.Load(c.Request.Context(), key)
	if err != nil {
		logger.Log.Warn("Idempotency store unavailable", zap.Error(err))
		return false
	}
	if pending {
		util.Abort(c, util.ErrSubmissionInFlight)
		return true
	}
	if stored == nil {
		return false
	}

	c.Header(util.HeaderIdempotentReplayed, "true")
	c.Data(stored.Status, stored.ContentType, stored.Body)
	c.Abort()
	return true
}
