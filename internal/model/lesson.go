package model

// swagger:model Lesson
type Lesson struct {
	TimedModel
	OrderNumber int    `gorm:"uniqueIndex;not null" json:"order_number"`
	Title       string `gorm:"size:200;not null" json:"title"`
	Description string `gorm:"type:text" json:"description"`
	Level       string `gorm:"size:50" json:"level"`
	Duration    string `gorm:"size:50" json:"duration"`

	Objectives    []LessonObjective    `gorm:"foreignKey:LessonID;constraint:OnDelete:CASCADE" json:"-"`
	Prerequisites []LessonPrerequisite `gorm:"foreignKey:LessonID;constraint:OnDelete:CASCADE" json:"-"`
	Topics        []LessonTopic        `gorm:"foreignKey:LessonID;constraint:OnDelete:CASCADE" json:"-"`
	KeyConcepts   []LessonKeyConcept   `gorm:"foreignKey:LessonID;constraint:OnDelete:CASCADE" json:"-"`
	Questions     []QuizQuestion       `gorm:"foreignKey:LessonID;constraint:OnDelete:CASCADE" json:"-"`
}

func (Lesson) TableName() string {
	return "lessons"
}

type LessonObjective struct {
	ID        uint   `gorm:"primaryKey;autoIncrement" json:"-"`
	LessonID  uint   `gorm:"index;not null" json:"-"`
	Objective string `gorm:"type:text;not null" json:"objective"`
	Position  int    `gorm:"not null;default:0" json:"-"`
}

func (LessonObjective) TableName() string {
	return "lesson_objectives"
}

type LessonPrerequisite struct {
	ID           uint   `gorm:"primaryKey;autoIncrement" json:"-"`
	LessonID     uint   `gorm:"index;not null" json:"-"`
	Prerequisite string `gorm:"type:text;not null" json:"prerequisite"`
	Position     int    `gorm:"not null;default:0" json:"-"`
}

func (LessonPrerequisite) TableName() string {
	return "lesson_prerequisites"
}

type LessonTopic struct {
	ID          uint   `gorm:"primaryKey;autoIncrement" json:"-"`
	LessonID    uint   `gorm:"index;not null" json:"-"`
	Title       string `gorm:"size:200;not null" json:"title"`
	Description string `gorm:"type:text" json:"description"`
	Icon        string `gorm:"size:100" json:"icon"`
	Position    int    `gorm:"not null;default:0" json:"-"`
}

func (LessonTopic) TableName() string {
	return "lesson_topics"
}

type LessonKeyConcept struct {
	ID          uint   `gorm:"primaryKey;autoIncrement" json:"-"`
	LessonID    uint   `gorm:"index;not null" json:"-"`
	Title       string `gorm:"size:200;not null" json:"title"`
	Description string `gorm:"type:text" json:"description"`
	Example     string `gorm:"type:text" json:"example"`
	Position    int    `gorm:"not null;default:0" json:"-"`
}

func (LessonKeyConcept) TableName() string {
	return "lesson_key_concepts"
}
