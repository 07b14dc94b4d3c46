package service

import (
	"context"
	"ctlab_backend/internal/model"
	"ctlab_backend/internal/util"
	"ctlab_backend/pkg/logger"
	"ctlab_backend/pkg/monitoring"
	"ctlab_backend/pkg/tracing"
	"sort"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
	"gorm.io/datatypes"
)

// ProgressStore is the persistence the progression rules read from and append to.
type ProgressStore interface {
	ListLessons(ctx context.Context) ([]model.Lesson, error)
	ListResults(ctx context.Context, userID uint) ([]model.QuizResult, error)
	AppendResult(ctx context.Context, result *model.QuizResult) error
}

// ProgressSnapshot pairs the ordered lessons with one user's progress on each, index for index.
type ProgressSnapshot struct {
	Lessons  []model.Lesson
	Progress []LessonProgress
}

// Index returns the position of lessonID in the sequence, or -1.
func (s *ProgressSnapshot) Index(lessonID uint) int {
	for i := range s.Lessons {
		if s.Lessons[i].ID == lessonID {
			return i
		}
	}
	return -1
}

func (s *ProgressSnapshot) ProgressOf(lessonID uint) (LessonProgress, bool) {
	i := s.Index(lessonID)
	if i < 0 {
		return LessonProgress{}, false
	}
	return s.Progress[i], true
}

// SubmissionResult reports the lesson standing after a recorded attempt.
type SubmissionResult struct {
	LessonID         uint         `json:"lesson_id"`
	CurrentScore     float64      `json:"current_score"`
	BestScore        float64      `json:"best_score"`
	Passed           bool         `json:"passed"`
	LessonStatus     LessonStatus `json:"lesson_status"`
	Attempts         int          `json:"attempts"`
	NextLessonID     *uint        `json:"next_lesson_id,omitempty"`
	NextLessonStatus LessonStatus `json:"next_lesson_status,omitempty"`
	CompletedAt      time.Time    `json:"completed_at"`
}

type ProgressionService struct {
	Store ProgressStore
	Now   func() time.Time
}

func NewProgressionService(store ProgressStore) *ProgressionService {
	return &ProgressionService{Store: store, Now: time.Now}
}

// Snapshot reads the lessons and the user's attempts and derives every lesson status.
func (s *ProgressionService) Snapshot(ctx context.Context, userID uint) (*ProgressSnapshot, error) {
	if userID == 0 {
		return nil, util.ErrMissingIdentity
	}

	lessons, err := s.Store.ListLessons(ctx)
	if err != nil {
		return nil, util.DatabaseError("failed to fetch lessons", err)
	}
	results, err := s.Store.ListResults(ctx, userID)
	if err != nil {
		return nil, util.DatabaseError("failed to fetch quiz results", err)
	}

	sort.SliceStable(lessons, func(i, j int) bool {
		return lessons[i].OrderNumber < lessons[j].OrderNumber
	})
	return &ProgressSnapshot{
		Lessons:  lessons,
		Progress: ComputeLessonStatuses(lessons, results),
	}, nil
}

func (s *ProgressionService) LessonStatuses(ctx context.Context, userID uint) ([]LessonProgress, error) {
	snap, err := s.Snapshot(ctx, userID)
	if err != nil {
		return nil, err
	}
	return snap.Progress, nil
}

// Locate returns the snapshot and the lesson's index, failing with NotFound for unknown lessons.
// It does not look at the lock state.
func (s *ProgressionService) Locate(ctx context.Context, userID, lessonID uint) (*ProgressSnapshot, int, error) {
	if lessonID == 0 {
		return nil, -1, util.ErrInvalidLessonID
	}
	snap, err := s.Snapshot(ctx, userID)
	if err != nil {
		return nil, -1, err
	}
	i := snap.Index(lessonID)
	if i < 0 {
		return nil, -1, util.ErrLessonNotFound
	}
	return snap, i, nil
}

// RequireUnlocked fails with NotFound for unknown lessons and PrerequisiteNotMet for locked ones.
// Only reads of lesson content and quizzes are gated; submissions are not.
func (s *ProgressionService) RequireUnlocked(ctx context.Context, userID, lessonID uint) (*ProgressSnapshot, int, error) {
	snap, i, err := s.Locate(ctx, userID, lessonID)
	if err != nil {
		return nil, -1, err
	}
	if snap.Progress[i].Locked() {
		return nil, -1, util.ErrLessonLocked
	}
	return snap, i, nil
}

// SubmitQuizResult records a self-scored attempt.
func (s *ProgressionService) SubmitQuizResult(ctx context.Context, userID, lessonID uint, score float64) (*SubmissionResult, error) {
	return s.RecordAttempt(ctx, userID, lessonID, score, nil)
}

// RecordAttempt appends exactly one attempt and reports the standing recomputed from a fresh read.
// Every call is a new attempt; duplicate requests are filtered before reaching here.
// Attempts on a locked lesson are stored and reported with the lesson still locked.
func (s *ProgressionService) RecordAttempt(ctx context.Context, userID, lessonID uint, score float64, answers datatypes.JSON) (*SubmissionResult, error) {
	ctx, span := tracing.Tracer().Start(ctx, "progression.RecordAttempt")
	defer span.End()
	span.SetAttributes(
		attribute.Int64("user.id", int64(userID)),
		attribute.Int64("lesson.id", int64(lessonID)),
		attribute.Float64("quiz.score", score),
	)

	result, err := s.recordAttempt(ctx, userID, lessonID, score, answers)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, string(util.KindOf(err)))
		return nil, err
	}
	span.SetAttributes(attribute.String("lesson.status", string(result.LessonStatus)))
	return result, nil
}

func (s *ProgressionService) recordAttempt(ctx context.Context, userID, lessonID uint, score float64, answers datatypes.JSON) (*SubmissionResult, error) {
	if userID == 0 {
		return nil, util.ErrMissingIdentity
	}
	if lessonID == 0 {
		return nil, util.ErrInvalidLessonID
	}
	if err := ValidateScore(score); err != nil {
		return nil, err
	}

	before, i, err := s.Locate(ctx, userID, lessonID)
	if err != nil {
		return nil, err
	}
	wasCompleted := before.Progress[i].Status == StatusCompleted

	attempt := &model.QuizResult{
		UserID:      userID,
		LessonID:    lessonID,
		Score:       score,
		Answers:     answers,
		CompletedAt: s.Now().UTC(),
	}
	if err := s.Store.AppendResult(ctx, attempt); err != nil {
		return nil, util.DatabaseError("failed to save quiz result", err)
	}

	after, err := s.Snapshot(ctx, userID)
	if err != nil {
		return nil, err
	}
	j := after.Index(lessonID)
	if j < 0 {
		// lesson removed between the insert and the read
		return nil, util.ErrLessonNotFound
	}
	current := after.Progress[j]

	result := &SubmissionResult{
		LessonID:     lessonID,
		CurrentScore: score,
		Passed:       score >= PassingScore,
		LessonStatus: current.Status,
		Attempts:     current.Attempts,
		CompletedAt:  attempt.CompletedAt,
	}
	if current.BestScore != nil {
		result.BestScore = *current.BestScore
	}
	if j+1 < len(after.Lessons) {
		next := after.Progress[j+1]
		result.NextLessonID = &next.LessonID
		result.NextLessonStatus = next.Status
	}

	monitoring.RecordSubmission(result.Passed, !wasCompleted && current.Status == StatusCompleted)
	logger.Log.Info("Quiz attempt recorded",
		zap.Uint("user_id", userID),
		zap.Uint("lesson_id", lessonID),
		zap.Float64("score", score),
		zap.String("status", string(current.Status)),
		zap.Int("attempts", current.Attempts),
	)
	return result, nil
}
