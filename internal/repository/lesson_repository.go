package repository

import (
	"context"
	"ctlab_backend/internal/model"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type LessonRepository struct {
	DB *gorm.DB
}

func NewLessonRepository(db *gorm.DB) *LessonRepository {
	return &LessonRepository{DB: db}
}

func byPosition(db *gorm.DB) *gorm.DB {
	return db.Order("position ASC")
}

// FindDetail loads a lesson with all of its content children.
func (r *LessonRepository) FindDetail(ctx context.Context, id uint) (*model.Lesson, error) {
	var lesson model.Lesson
	err := r.DB.WithContext(ctx).
		Preload("Objectives", byPosition).
		Preload("Prerequisites", byPosition).
		Preload("Topics", byPosition).
		Preload("KeyConcepts", byPosition).
		First(&lesson, id).Error
	if err != nil {
		return nil, err
	}
	return &lesson, nil
}

func (r *LessonRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.DB.WithContext(ctx).Model(&model.Lesson{}).Count(&count).Error
	return count, err
}

// ImportLessons upserts lessons by order_number in one transaction, replacing their content
// and questions. Quiz results keep pointing at the same lesson ids.
func (r *LessonRepository) ImportLessons(ctx context.Context, lessons []model.Lesson) (created, updated int, err error) {
	err = r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		created, updated = 0, 0
		for i := range lessons {
			isNew, err := importLesson(tx, &lessons[i])
			if err != nil {
				return err
			}
			if isNew {
				created++
			} else {
				updated++
			}
		}
		return nil
	})
	return created, updated, err
}

func importLesson(tx *gorm.DB, in *model.Lesson) (bool, error) {
	var existing model.Lesson
	err := tx.Where("order_number = ?", in.OrderNumber).First(&existing).Error
	isNew := errors.Is(err, gorm.ErrRecordNotFound)
	if err != nil && !isNew {
		return false, err
	}

	objectives, prerequisites := in.Objectives, in.Prerequisites
	topics, concepts, questions := in.Topics, in.KeyConcepts, in.Questions
	in.Objectives, in.Prerequisites, in.Topics, in.KeyConcepts, in.Questions = nil, nil, nil, nil, nil

	if isNew {
		if err := tx.Omit(clause.Associations).Create(in).Error; err != nil {
			return false, err
		}
	} else {
		in.ID = existing.ID
		in.CreatedAt = existing.CreatedAt
		if err := tx.Model(&existing).Select("title", "description", "level", "duration").Updates(in).Error; err != nil {
			return false, err
		}
		if err := clearLessonContent(tx, existing.ID); err != nil {
			return false, err
		}
	}

	for i := range objectives {
		objectives[i].LessonID = in.ID
	}
	for i := range prerequisites {
		prerequisites[i].LessonID = in.ID
	}
	for i := range topics {
		topics[i].LessonID = in.ID
	}
	for i := range concepts {
		concepts[i].LessonID = in.ID
	}
	for i := range questions {
		questions[i].LessonID = in.ID
	}

	if err := createAll(tx, objectives, prerequisites, topics, concepts); err != nil {
		return false, err
	}
	if len(questions) > 0 {
		// options are created through the association
		if err := tx.Create(&questions).Error; err != nil {
			return false, err
		}
	}

	in.Objectives, in.Prerequisites, in.Topics, in.KeyConcepts, in.Questions = objectives, prerequisites, topics, concepts, questions
	return isNew, nil
}

func clearLessonContent(tx *gorm.DB, lessonID uint) error {
	quizIDs := tx.Model(&model.QuizQuestion{}).Select("id").Where("lesson_id = ?", lessonID)
	if err := tx.Where("quiz_id IN (?)", quizIDs).Delete(&model.QuizOption{}).Error; err != nil {
		return err
	}
	for _, m := range []interface{}{
		&model.QuizQuestion{},
		&model.LessonObjective{},
		&model.LessonPrerequisite{},
		&model.LessonTopic{},
		&model.LessonKeyConcept{},
	} {
		if err := tx.Where("lesson_id = ?", lessonID).Delete(m).Error; err != nil {
			return err
		}
	}
	return nil
}

func createAll(tx *gorm.DB, objectives []model.LessonObjective, prerequisites []model.LessonPrerequisite, topics []model.LessonTopic, concepts []model.LessonKeyConcept) error {
	if len(objectives) > 0 {
		if err := tx.Create(&objectives).Error; err != nil {
			return err
		}
	}
	if len(prerequisites) > 0 {
		if err := tx.Create(&prerequisites).Error; err != nil {
			return err
		}
	}
	if len(topics) > 0 {
		if err := tx.Create(&topics).Error; err != nil {
			return err
		}
	}
	if len(concepts) > 0 {
		if err := tx.Create(&concepts).Error; err != nil {
			return err
		}
	}
	return nil
}
