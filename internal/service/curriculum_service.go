package service

import (
	"context"
	"ctlab_backend/internal/curriculum"
	"ctlab_backend/internal/repository"
	"ctlab_backend/internal/util"
	"ctlab_backend/pkg/logger"

	"go.uber.org/zap"
)

// ImportResult counts what an import did. Total is the number of lessons stored afterwards.
type ImportResult struct {
	Lessons   int   `json:"lessons"`
	Created   int   `json:"created"`
	Updated   int   `json:"updated"`
	Questions int   `json:"questions"`
	Total     int64 `json:"total"`
}

// CurriculumService loads lesson catalogs into the database.
type CurriculumService struct {
	LessonRepo *repository.LessonRepository
	Source     curriculum.Source
}

func NewCurriculumService(lessonRepo *repository.LessonRepository, source curriculum.Source) *CurriculumService {
	return &CurriculumService{LessonRepo: lessonRepo, Source: source}
}

// ImportFile loads the named catalog from the configured source and imports it.
func (s *CurriculumService) ImportFile(ctx context.Context, name string) (*ImportResult, error) {
	catalog, err := curriculum.Load(ctx, s.Source, name)
	if err != nil {
		return nil, util.WrapError(util.KindInvalidInput, "failed to load catalog", err)
	}
	return s.Import(ctx, catalog)
}

// Import upserts every lesson of a validated catalog in one transaction. Existing lessons keep
// their ids, so recorded quiz results stay attached.
func (s *CurriculumService) Import(ctx context.Context, catalog *curriculum.Catalog) (*ImportResult, error) {
	lessons := catalog.Models()
	created, updated, err := s.LessonRepo.ImportLessons(ctx, lessons)
	if err != nil {
		return nil, util.DatabaseError("failed to import curriculum", err)
	}

	result := &ImportResult{Lessons: len(lessons), Created: created, Updated: updated}
	for _, l := range lessons {
		result.Questions += len(l.Questions)
	}
	if result.Total, err = s.LessonRepo.Count(ctx); err != nil {
		return nil, util.DatabaseError("failed to count lessons", err)
	}
	logger.Log.Info("Curriculum imported",
		zap.Int("lessons", result.Lessons),
		zap.Int("created", created),
		zap.Int("updated", updated),
		zap.Int("questions", result.Questions),
		zap.Int64("total", result.Total),
	)
	return result, nil
}
