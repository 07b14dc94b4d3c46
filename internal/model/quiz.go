package model

type QuestionType string

const (
	MultipleChoice QuestionType = "multiple_choice"
	TrueFalse      QuestionType = "true_false"
)

// QuizQuestion is one question of a lesson's quiz.
type QuizQuestion struct {
	TimedModel
	LessonID       uint         `gorm:"uniqueIndex:idx_quiz_lesson_number;not null" json:"lesson_id"`
	QuestionNumber int          `gorm:"uniqueIndex:idx_quiz_lesson_number;not null" json:"question_number"`
	QuestionText   string       `gorm:"type:text;not null" json:"question_text"`
	Type           QuestionType `gorm:"size:20;not null;default:'multiple_choice'" json:"type"`
	Options        []QuizOption `gorm:"foreignKey:QuizID;constraint:OnDelete:CASCADE" json:"options"`
}

func (QuizQuestion) TableName() string {
	return "quizzes"
}

type QuizOption struct {
	ID        uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	QuizID    uint   `gorm:"index;not null" json:"-"`
	Text      string `gorm:"type:text;not null" json:"text"`
	IsCorrect bool   `gorm:"not null;default:false" json:"-"`
	Position  int    `gorm:"not null;default:0" json:"-"`
}

func (QuizOption) TableName() string {
	return "quiz_options"
}
