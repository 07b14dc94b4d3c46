package service

import (
	"ctlab_backend/internal/model"
	"ctlab_backend/internal/util"
	"math"
	"sort"
	"time"
)

type LessonStatus string

const (
	StatusLocked    LessonStatus = "locked"
	StatusUnlocked  LessonStatus = "unlocked"
	StatusAttempted LessonStatus = "attempted"
	StatusCompleted LessonStatus = "completed"

	// quizzes report an unlocked lesson as available
	StatusAvailable LessonStatus = "available"
)

// PassingScore is the best score that completes a lesson and unlocks the next one.
const PassingScore = 60.0

// LessonProgress is one user's derived standing on one lesson. It is never stored.
type LessonProgress struct {
	LessonID    uint         `json:"lesson_id"`
	OrderNumber int          `json:"order_number"`
	Status      LessonStatus `json:"status"`
	BestScore   *float64     `json:"best_score"`
	Attempts    int          `json:"attempts"`
	LastAttempt *time.Time   `json:"last_attempt"`
}

func (p LessonProgress) Locked() bool {
	return p.Status == StatusLocked
}

func (p LessonProgress) Passed() bool {
	return p.BestScore != nil && *p.BestScore >= PassingScore
}

type attemptStats struct {
	count int
	best  float64
	last  time.Time
}

// ComputeLessonStatuses derives the status of every lesson from the user's attempts.
// Lessons are evaluated in ascending order_number; a lesson's predecessor is the lesson
// before it in that sequence, whatever its id. The first lesson is always open.
// The result follows order_number order. Attempts on unknown lessons are ignored.
func ComputeLessonStatuses(lessons []model.Lesson, attempts []model.QuizResult) []LessonProgress {
	order := make([]int, len(lessons))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return lessons[order[a]].OrderNumber < lessons[order[b]].OrderNumber
	})

	stats := make(map[uint]*attemptStats, len(lessons))
	for _, a := range attempts {
		s, ok := stats[a.LessonID]
		if !ok {
			stats[a.LessonID] = &attemptStats{count: 1, best: a.Score, last: a.CompletedAt}
			continue
		}
		s.count++
		if a.Score > s.best {
			s.best = a.Score
		}
		if a.CompletedAt.After(s.last) {
			s.last = a.CompletedAt
		}
	}

	progress := make([]LessonProgress, 0, len(lessons))
	for i, idx := range order {
		lesson := lessons[idx]
		p := LessonProgress{
			LessonID:    lesson.ID,
			OrderNumber: lesson.OrderNumber,
		}
		if s, ok := stats[lesson.ID]; ok {
			best, last := s.best, s.last
			p.BestScore = &best
			p.Attempts = s.count
			p.LastAttempt = &last
		}

		unlocked := i == 0 || progress[i-1].Passed()
		p.Status = statusOf(unlocked, p)
		progress = append(progress, p)
	}
	return progress
}

func statusOf(unlocked bool, p LessonProgress) LessonStatus {
	switch {
	case !unlocked:
		return StatusLocked
	case p.Attempts == 0:
		return StatusUnlocked
	case p.Passed():
		return StatusCompleted
	default:
		return StatusAttempted
	}
}

// QuizStatus maps a lesson status to the name quizzes use for it.
func QuizStatus(s LessonStatus) LessonStatus {
	if s == StatusUnlocked {
		return StatusAvailable
	}
	return s
}

// ValidateScore accepts finite scores in [0, 100].
func ValidateScore(score float64) error {
	if math.IsNaN(score) || math.IsInf(score, 0) || score < 0 || score > 100 {
		return util.ErrInvalidScore
	}
	return nil
}
