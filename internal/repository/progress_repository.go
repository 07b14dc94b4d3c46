package repository

import (
	"context"
	"ctlab_backend/internal/model"

	"gorm.io/gorm"
)

// ProgressRepository reads the lesson sequence and the attempt history the progression rules run on.
type ProgressRepository struct {
	DB *gorm.DB
}

func NewProgressRepository(db *gorm.DB) *ProgressRepository {
	return &ProgressRepository{DB: db}
}

// ListLessons returns every lesson ordered by order_number, prerequisites preloaded.
func (r *ProgressRepository) ListLessons(ctx context.Context) ([]model.Lesson, error) {
	var lessons []model.Lesson
	err := r.DB.WithContext(ctx).
		Preload("Prerequisites", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		Order("order_number ASC").
		Find(&lessons).Error
	return lessons, err
}

func (r *ProgressRepository) ListResults(ctx context.Context, userID uint) ([]model.QuizResult, error) {
	var results []model.QuizResult
	err := r.DB.WithContext(ctx).
		Select("id", "user_id", "lesson_id", "score", "completed_at").
		Where("user_id = ?", userID).
		Order("completed_at ASC, id ASC").
		Find(&results).Error
	return results, err
}

// AppendResult inserts one attempt. Results are never updated or deleted.
func (r *ProgressRepository) AppendResult(ctx context.Context, result *model.QuizResult) error {
	return r.DB.WithContext(ctx).Create(result).Error
}
