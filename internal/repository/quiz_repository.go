package repository

import (
	"context"
	"ctlab_backend/internal/model"

	"gorm.io/gorm"
)

type QuizRepository struct {
	DB *gorm.DB
}

func NewQuizRepository(db *gorm.DB) *QuizRepository {
	return &QuizRepository{DB: db}
}

// FindQuestionsByLesson returns the lesson's questions by question number, options preloaded.
func (r *QuizRepository) FindQuestionsByLesson(ctx context.Context, lessonID uint) ([]model.QuizQuestion, error) {
	var questions []model.QuizQuestion
	err := r.DB.WithContext(ctx).
		Preload("Options", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC, id ASC")
		}).
		Where("lesson_id = ?", lessonID).
		Order("question_number ASC").
		Find(&questions).Error
	return questions, err
}

func (r *QuizRepository) CountByLesson(ctx context.Context, lessonID uint) (int, error) {
	var count int64
	err := r.DB.WithContext(ctx).Model(&model.QuizQuestion{}).Where("lesson_id = ?", lessonID).Count(&count).Error
	return int(count), err
}

// CountAllByLesson maps lesson id to its question count. Lessons without questions are absent.
func (r *QuizRepository) CountAllByLesson(ctx context.Context) (map[uint]int, error) {
	var rows []struct {
		LessonID uint
		Total    int
	}
	err := r.DB.WithContext(ctx).
		Model(&model.QuizQuestion{}).
		Select("lesson_id, COUNT(*) AS total").
		Group("lesson_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[uint]int, len(rows))
	for _, row := range rows {
		counts[row.LessonID] = row.Total
	}
	return counts, nil
}
