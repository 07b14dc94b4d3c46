package model

import (
	"time"

	"gorm.io/gorm"
)

// swagger:model
type BaseModel struct {
	ID        uint           `gorm:"primaryKey;autoIncrement" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// TimedModel is BaseModel without soft delete, for curriculum content that is replaced on import.
type TimedModel struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`
}

// AllModels lists every table in migration order.
func AllModels() []interface{} {
	return []interface{}{
		&User{},
		&Lesson{},
		&LessonObjective{},
		&LessonPrerequisite{},
		&LessonTopic{},
		&LessonKeyConcept{},
		&QuizQuestion{},
		&QuizOption{},
		&QuizResult{},
	}
}
