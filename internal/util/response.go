package util

import (
	"ctlab_backend/pkg/logger"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Response is the envelope every endpoint answers with.
type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Error   ErrorKind   `json:"error,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Code:    http.StatusOK,
		Message: "success",
		Data:    data,
	})
}

func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, Response{
		Code:    http.StatusCreated,
		Message: "created",
		Data:    data,
	})
}

func Error(c *gin.Context, code int, kind ErrorKind, message string) {
	c.JSON(code, Response{
		Code:    code,
		Message: message,
		Error:   kind,
	})
}

func Unauthorized(c *gin.Context) {
	Error(c, http.StatusUnauthorized, KindUnauthorized, ErrMissingIdentity.Message)
}

func BadRequest(c *gin.Context, message string) {
	Error(c, http.StatusBadRequest, KindInvalidInput, message)
}

func NotFound(c *gin.Context) {
	Error(c, http.StatusNotFound, KindNotFound, "resource not found")
}

func InternalServerError(c *gin.Context) {
	Error(c, http.StatusInternalServerError, KindInternal, "internal server error")
}

// Fail writes err as a response. Unknown errors become a 500 and are never echoed back.
func Fail(c *gin.Context, err error) {
	var appErr *AppError
	if !errors.As(err, &appErr) {
		LogInternalError(c, err)
		return
	}

	status := appErr.Status()
	if status >= http.StatusInternalServerError {
		logger.Log.Error("request failed",
			zap.String("path", c.FullPath()),
			zap.String("kind", string(appErr.Kind)),
			zap.Error(err),
		)
	}
	Error(c, status, appErr.Kind, appErr.Message)
}

// Abort is Fail for middleware; the handler chain stops.
func Abort(c *gin.Context, err error) {
	Fail(c, err)
	c.Abort()
}

func LogInternalError(c *gin.Context, err error) {
	logger.Log.Error("Internal server error", zap.String("path", c.FullPath()), zap.Error(err))
	InternalServerError(c)
}
