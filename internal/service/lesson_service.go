package service

import (
	"context"
	"ctlab_backend/internal/model"
	"ctlab_backend/internal/repository"
	"ctlab_backend/internal/util"
	"errors"
	"time"

	"gorm.io/gorm"
)

type LessonSummary struct {
	ID            uint         `json:"id"`
	OrderNumber   int          `json:"order_number"`
	Title         string       `json:"title"`
	Description   string       `json:"description"`
	Level         string       `json:"level"`
	Duration      string       `json:"duration"`
	Prerequisites []string     `json:"prerequisites"`
	Status        LessonStatus `json:"status"`
	BestScore     *float64     `json:"best_score"`
	Attempts      int          `json:"attempts"`
	LastAttempt   *time.Time   `json:"last_attempt"`
}

type LessonDetail struct {
	LessonSummary
	LearningObjectives []string                 `json:"learning_objectives"`
	Topics             []model.LessonTopic      `json:"topics"`
	KeyConcepts        []model.LessonKeyConcept `json:"key_concepts"`
	QuizCompleted      bool                     `json:"quiz_completed"`
	TotalQuestions     int                      `json:"total_questions"`
}

type LessonService struct {
	Progression *ProgressionService
	LessonRepo  *repository.LessonRepository
	QuizRepo    *repository.QuizRepository
}

func NewLessonService(progression *ProgressionService, lessonRepo *repository.LessonRepository, quizRepo *repository.QuizRepository) *LessonService {
	return &LessonService{
		Progression: progression,
		LessonRepo:  lessonRepo,
		QuizRepo:    quizRepo,
	}
}

// ListLessons returns every lesson in order with the user's status on it.
func (s *LessonService) ListLessons(ctx context.Context, userID uint) ([]LessonSummary, error) {
	snap, err := s.Progression.Snapshot(ctx, userID)
	if err != nil {
		return nil, err
	}

	summaries := make([]LessonSummary, len(snap.Lessons))
	for i := range snap.Lessons {
		summaries[i] = newLessonSummary(&snap.Lessons[i], snap.Progress[i])
	}
	return summaries, nil
}

func (s *LessonService) GetLesson(ctx context.Context, userID, lessonID uint) (*LessonDetail, error) {
	snap, i, err := s.Progression.RequireUnlocked(ctx, userID, lessonID)
	if err != nil {
		return nil, err
	}

	lesson, err := s.LessonRepo.FindDetail(ctx, lessonID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrLessonNotFound
		}
		return nil, util.DatabaseError("failed to fetch lesson details", err)
	}

	total, err := s.QuizRepo.CountByLesson(ctx, lessonID)
	if err != nil {
		return nil, util.DatabaseError("failed to count quiz questions", err)
	}

	progress := snap.Progress[i]
	objectives := make([]string, len(lesson.Objectives))
	for j, o := range lesson.Objectives {
		objectives[j] = o.Objective
	}

	detail := &LessonDetail{
		LessonSummary:      newLessonSummary(lesson, progress),
		LearningObjectives: objectives,
		Topics:             nonNil(lesson.Topics),
		KeyConcepts:        nonNil(lesson.KeyConcepts),
		QuizCompleted:      progress.Passed(),
		TotalQuestions:     total,
	}
	return detail, nil
}

func newLessonSummary(lesson *model.Lesson, progress LessonProgress) LessonSummary {
	prerequisites := make([]string, len(lesson.Prerequisites))
	for i, p := range lesson.Prerequisites {
		prerequisites[i] = p.Prerequisite
	}
	return LessonSummary{
		ID:            lesson.ID,
		OrderNumber:   lesson.OrderNumber,
		Title:         lesson.Title,
		Description:   lesson.Description,
		Level:         lesson.Level,
		Duration:      lesson.Duration,
		Prerequisites: prerequisites,
		Status:        progress.Status,
		BestScore:     progress.BestScore,
		Attempts:      progress.Attempts,
		LastAttempt:   progress.LastAttempt,
	}
}

// nonNil keeps empty lists as [] in JSON.
func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
