package model

import (
	"time"

	"gorm.io/datatypes"
)

// QuizResult is one quiz attempt. Rows are only ever inserted.
type QuizResult struct {
	ID          uint           `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID      uint           `gorm:"index:idx_quiz_results_user_lesson;not null" json:"user_id"`
	LessonID    uint           `gorm:"index:idx_quiz_results_user_lesson;not null" json:"lesson_id"`
	Score       float64        `gorm:"not null;check:chk_quiz_results_score,score >= 0 AND score <= 100" json:"score"`
	Answers     datatypes.JSON `json:"answers,omitempty"`
	CompletedAt time.Time      `gorm:"not null;index" json:"completed_at"`
}

func (QuizResult) TableName() string {
	return "quiz_results"
}
