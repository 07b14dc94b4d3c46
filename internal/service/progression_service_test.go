package service

import (
	"context"
	"ctlab_backend/internal/model"
	"ctlab_backend/internal/util"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryStore struct {
	mu        sync.Mutex
	lessons   []model.Lesson
	results   []model.QuizResult
	appendErr error
	listErr   error
}

func (m *memoryStore) ListLessons(context.Context) ([]model.Lesson, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.listErr != nil {
		return nil, m.listErr
	}
	return append([]model.Lesson(nil), m.lessons...), nil
}

func (m *memoryStore) ListResults(_ context.Context, userID uint) ([]model.QuizResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.QuizResult
	for _, r := range m.results {
		if r.UserID == userID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *memoryStore) AppendResult(_ context.Context, result *model.QuizResult) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.appendErr != nil {
		return m.appendErr
	}
	result.ID = uint(len(m.results) + 1)
	m.results = append(m.results, *result)
	return nil
}

func newTestProgression(lessons ...model.Lesson) (*ProgressionService, *memoryStore) {
	store := &memoryStore{lessons: lessons}
	svc := NewProgressionService(store)
	svc.Now = func() time.Time { return time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC) }
	return svc, store
}

func TestSubmitQuizResult_RecordsAttempt(t *testing.T) {
	svc, store := newTestProgression(lesson(1, 1), lesson(2, 2))
	ctx := context.Background()

	res, err := svc.SubmitQuizResult(ctx, 1, 1, 45)
	require.NoError(t, err)
	assert.Equal(t, uint(1), res.LessonID)
	assert.Equal(t, 45.0, res.CurrentScore)
	assert.Equal(t, 45.0, res.BestScore)
	assert.False(t, res.Passed)
	assert.Equal(t, StatusAttempted, res.LessonStatus)
	assert.Equal(t, 1, res.Attempts)
	require.NotNil(t, res.NextLessonID)
	assert.Equal(t, uint(2), *res.NextLessonID)
	assert.Equal(t, StatusLocked, res.NextLessonStatus)
	assert.Equal(t, svc.Now(), res.CompletedAt)

	res, err = svc.SubmitQuizResult(ctx, 1, 1, 75)
	require.NoError(t, err)
	assert.True(t, res.Passed)
	assert.Equal(t, StatusCompleted, res.LessonStatus)
	assert.Equal(t, StatusUnlocked, res.NextLessonStatus)

	res, err = svc.SubmitQuizResult(ctx, 1, 1, 10)
	require.NoError(t, err)
	assert.False(t, res.Passed)
	assert.Equal(t, 75.0, res.BestScore)
	assert.Equal(t, StatusCompleted, res.LessonStatus)
	assert.Equal(t, 3, res.Attempts)

	assert.Len(t, store.results, 3)
}

func TestSubmitQuizResult_BestScoreNeverDecreases(t *testing.T) {
	svc, store := newTestProgression(lesson(1, 1))
	ctx := context.Background()

	best := -1.0
	for i, score := range []float64{30, 80, 20, 80, 0, 100, 55} {
		res, err := svc.SubmitQuizResult(ctx, 1, 1, score)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, res.BestScore, best)
		assert.Equal(t, i+1, res.Attempts)
		assert.Len(t, store.results, i+1)
		best = res.BestScore
	}
	assert.Equal(t, 100.0, best)
}

func TestSubmitQuizResult_LastLessonHasNoNext(t *testing.T) {
	svc, _ := newTestProgression(lesson(1, 1))

	res, err := svc.SubmitQuizResult(context.Background(), 1, 1, 90)
	require.NoError(t, err)
	assert.Nil(t, res.NextLessonID)
	assert.Empty(t, res.NextLessonStatus)
}

func TestSubmitQuizResult_Validation(t *testing.T) {
	svc, store := newTestProgression(lesson(1, 1), lesson(2, 2))
	ctx := context.Background()

	_, err := svc.SubmitQuizResult(ctx, 1, 1, -1)
	assert.ErrorIs(t, err, util.ErrInvalidScore)
	_, err = svc.SubmitQuizResult(ctx, 1, 1, 101)
	assert.ErrorIs(t, err, util.ErrInvalidScore)

	_, err = svc.SubmitQuizResult(ctx, 1, 999, 50)
	assert.ErrorIs(t, err, util.ErrLessonNotFound)
	assert.Equal(t, util.KindNotFound, util.KindOf(err))

	_, err = svc.SubmitQuizResult(ctx, 1, 0, 50)
	assert.ErrorIs(t, err, util.ErrInvalidLessonID)

	_, err = svc.SubmitQuizResult(ctx, 0, 1, 50)
	assert.Equal(t, util.KindUnauthorized, util.KindOf(err))

	assert.Empty(t, store.results)

	_, err = svc.SubmitQuizResult(ctx, 1, 1, 0)
	assert.NoError(t, err)
	_, err = svc.SubmitQuizResult(ctx, 1, 1, 100)
	assert.NoError(t, err)
	assert.Len(t, store.results, 2)
}

func TestSubmitQuizResult_LockedLessonAcceptsAttempts(t *testing.T) {
	svc, store := newTestProgression(lesson(1, 1), lesson(2, 2))
	ctx := context.Background()

	res, err := svc.SubmitQuizResult(ctx, 1, 2, 0)
	require.NoError(t, err)
	assert.Equal(t, StatusLocked, res.LessonStatus)
	assert.Equal(t, 1, res.Attempts)
	assert.False(t, res.Passed)

	res, err = svc.SubmitQuizResult(ctx, 1, 2, 100)
	require.NoError(t, err)
	assert.Equal(t, StatusLocked, res.LessonStatus)
	assert.Equal(t, 2, res.Attempts)
	assert.Equal(t, 100.0, res.BestScore)
	assert.True(t, res.Passed)
	assert.Len(t, store.results, 2)

	progress, err := svc.LessonStatuses(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, []LessonStatus{StatusUnlocked, StatusLocked}, statuses(progress))
	assert.Equal(t, 2, progress[1].Attempts)

	// passing the first lesson reveals the earlier attempts as completion
	_, err = svc.SubmitQuizResult(ctx, 1, 1, 60)
	require.NoError(t, err)
	progress, err = svc.LessonStatuses(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, []LessonStatus{StatusCompleted, StatusCompleted}, statuses(progress))
}

func TestSubmitQuizResult_StoreFailure(t *testing.T) {
	svc, store := newTestProgression(lesson(1, 1))
	store.appendErr = errors.New("connection reset")

	_, err := svc.SubmitQuizResult(context.Background(), 1, 1, 50)
	require.Error(t, err)
	assert.Equal(t, util.KindDatabase, util.KindOf(err))

	var appErr *util.AppError
	require.ErrorAs(t, err, &appErr)
	assert.NotContains(t, appErr.Message, "connection reset")
}

func TestSnapshot_ListFailure(t *testing.T) {
	svc, store := newTestProgression(lesson(1, 1))
	store.listErr = errors.New("boom")

	_, err := svc.LessonStatuses(context.Background(), 1)
	assert.Equal(t, util.KindDatabase, util.KindOf(err))
}

func TestSubmitQuizResult_UsersAreIndependent(t *testing.T) {
	svc, _ := newTestProgression(lesson(1, 1), lesson(2, 2))
	ctx := context.Background()

	_, err := svc.SubmitQuizResult(ctx, 1, 1, 90)
	require.NoError(t, err)

	progress, err := svc.LessonStatuses(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, []LessonStatus{StatusUnlocked, StatusLocked}, statuses(progress))
}

func TestSubmitQuizResult_ConcurrentAppends(t *testing.T) {
	svc, store := newTestProgression(lesson(1, 1))
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(score float64) {
			defer wg.Done()
			_, err := svc.SubmitQuizResult(ctx, 1, 1, score)
			assert.NoError(t, err)
		}(float64(i * 5))
	}
	wg.Wait()

	progress, err := svc.LessonStatuses(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 20, progress[0].Attempts)
	assert.Equal(t, 95.0, *progress[0].BestScore)
	assert.Len(t, store.results, 20)
}

func TestRequireUnlocked(t *testing.T) {
	svc, _ := newTestProgression(lesson(1, 1), lesson(2, 2))
	ctx := context.Background()

	snap, i, err := svc.RequireUnlocked(ctx, 1, 1)
	require.NoError(t, err)
	assert.Equal(t, 0, i)
	assert.Equal(t, uint(1), snap.Lessons[i].ID)

	_, _, err = svc.RequireUnlocked(ctx, 1, 2)
	assert.ErrorIs(t, err, util.ErrLessonLocked)
	assert.Equal(t, util.KindPrerequisiteNotMet, util.KindOf(err))

	_, i, err = svc.Locate(ctx, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, 1, i)
	_, _, err = svc.Locate(ctx, 1, 999)
	assert.ErrorIs(t, err, util.ErrLessonNotFound)
}
