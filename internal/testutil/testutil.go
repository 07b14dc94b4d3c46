// Package testutil builds throwaway databases and redis servers for tests.
package testutil

import (
	"ctlab_backend/internal/config"
	"ctlab_backend/internal/model"
	"ctlab_backend/pkg/database"
	"fmt"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const JWTSecret = "test-secret-that-is-long-enough-for-release"

// Config returns a test-mode config pointing at nothing; tests pass their own connections.
func Config() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{Port: "0", Mode: "test"},
		Database: config.DatabaseConfig{
			Driver: "sqlite",
		},
		JWT: config.JWTConfig{
			Secret:     JWTSecret,
			ExpireTime: time.Hour,
		},
		Storage: config.StorageConfig{Type: "local"},
		Quiz: config.QuizConfig{
			EstimatedMinutes: 15,
			IdempotencyTTL:   time.Minute,
		},
	}
}

// NewDB opens a private in-memory sqlite database with the schema migrated.
func NewDB(t testing.TB) *gorm.DB {
	t.Helper()

	db, err := database.InitDB(&config.DatabaseConfig{
		Driver:      "sqlite",
		Path:        fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString()),
		AutoMigrate: true,
	})
	require.NoError(t, err)

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

// NewRedis starts a miniredis server and returns a client for it.
func NewRedis(t testing.TB) (*redis.Client, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })
	return rdb, mr
}

// SeedLesson creates a lesson with the given number of questions. Every question has two
// options and the first one is correct.
func SeedLesson(t testing.TB, db *gorm.DB, order, questions int) *model.Lesson {
	t.Helper()

	lesson := &model.Lesson{
		OrderNumber: order,
		Title:       fmt.Sprintf("Lesson %d", order),
		Description: fmt.Sprintf("Description of lesson %d", order),
		Level:       "Beginner",
		Duration:    "20 min",
		Prerequisites: []model.LessonPrerequisite{
			{Prerequisite: "None", Position: 0},
		},
		Objectives: []model.LessonObjective{
			{Objective: fmt.Sprintf("Objective of lesson %d", order), Position: 0},
		},
	}
	for i := 1; i <= questions; i++ {
		lesson.Questions = append(lesson.Questions, model.QuizQuestion{
			QuestionNumber: i,
			QuestionText:   fmt.Sprintf("Question %d of lesson %d", i, order),
			Type:           model.MultipleChoice,
			Options: []model.QuizOption{
				{Text: "right", IsCorrect: true, Position: 0},
				{Text: "wrong", IsCorrect: false, Position: 1},
			},
		})
	}
	require.NoError(t, db.Create(lesson).Error)
	return lesson
}

// SeedResult inserts an attempt directly.
func SeedResult(t testing.TB, db *gorm.DB, userID, lessonID uint, score float64) {
	t.Helper()
	require.NoError(t, db.Create(&model.QuizResult{
		UserID:      userID,
		LessonID:    lessonID,
		Score:       score,
		CompletedAt: time.Now().UTC(),
	}).Error)
}
