package util

import (
	"ctlab_backend/internal/model"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseID(t *testing.T) {
	id, err := ParseID(" 42 ")
	require.NoError(t, err)
	assert.EqualValues(t, 42, id)

	for _, in := range []string{"", "0", "-1", "abc", "1.5", "99999999999"} {
		_, err := ParseID(in)
		assert.ErrorIs(t, err, ErrInvalidLessonID, in)
	}
}

func TestRound2(t *testing.T) {
	assert.Equal(t, 66.67, Round2(200.0/3))
	assert.Equal(t, 33.33, Round2(100.0/3))
	assert.Equal(t, 100.0, Round2(100))
}

func TestErrorKinds(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, StatusOf(KindInvalidInput))
	assert.Equal(t, http.StatusUnauthorized, StatusOf(KindTokenExpired))
	assert.Equal(t, http.StatusForbidden, StatusOf(KindPrerequisiteNotMet))
	assert.Equal(t, http.StatusNotFound, StatusOf(KindNotFound))
	assert.Equal(t, http.StatusConflict, StatusOf(KindConflict))
	assert.Equal(t, http.StatusInternalServerError, StatusOf(KindDatabase))

	wrapped := WrapError(KindPrerequisiteNotMet, ErrLessonLocked.Message, errors.New("cause"))
	assert.ErrorIs(t, wrapped, ErrLessonLocked)
	assert.NotErrorIs(t, wrapped, ErrLessonNotFound)
	assert.Equal(t, KindInternal, KindOf(errors.New("plain")))
}

func TestJWT(t *testing.T) {
	user := &model.User{BaseModel: model.BaseModel{ID: 5}, Email: "a@b.c"}

	token, claims, err := GenerateJWT(user, "secret", time.Hour)
	require.NoError(t, err)
	assert.NotEmpty(t, claims.ID)

	parsed, err := ParseJWT(token, "secret")
	require.NoError(t, err)
	assert.EqualValues(t, 5, parsed.UserID)
	assert.Equal(t, claims.ID, parsed.ID)

	_, err = ParseJWT(token, "other")
	assert.ErrorIs(t, err, ErrTokenInvalid)

	expired, _, err := GenerateJWT(user, "secret", -time.Second)
	require.NoError(t, err)
	_, err = ParseJWT(expired, "secret")
	assert.ErrorIs(t, err, ErrTokenExpired)

	_, err = ParseJWT("not.a.token", "secret")
	assert.Equal(t, KindTokenInvalid, KindOf(err))
}

func TestFailHidesInternalCause(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		err      error
		wantCode int
		wantKind ErrorKind
	}{
		{ErrLessonLocked, http.StatusForbidden, KindPrerequisiteNotMet},
		{DatabaseError("failed to save quiz result", errors.New("pq: connection refused")), http.StatusInternalServerError, KindDatabase},
		{errors.New("pq: connection refused"), http.StatusInternalServerError, KindInternal},
	}
	for _, tt := range tests {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		Fail(c, tt.err)

		assert.Equal(t, tt.wantCode, w.Code)
		var resp Response
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, tt.wantCode, resp.Code)
		assert.Equal(t, tt.wantKind, resp.Error)
		assert.NotContains(t, w.Body.String(), "connection refused")
	}
}
