package service

import (
	"context"
	"ctlab_backend/internal/curriculum"
	"ctlab_backend/internal/model"
	"ctlab_backend/internal/repository"
	"ctlab_backend/internal/testutil"
	"ctlab_backend/internal/util"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const catalogV1 = `
lessons:
  - order_number: 1
    title: Decomposition
    questions:
      - text: Q1
        options: [{text: a, correct: true}, {text: b}]
      - text: Q2
        options: [{text: a}, {text: b, correct: true}]
  - order_number: 2
    title: Patterns
    questions:
      - text: Q1
        options: [{text: a, correct: true}, {text: b}]
`

const catalogV2 = `
lessons:
  - order_number: 1
    title: Decomposition, revised
    questions:
      - text: Only question
        options: [{text: a, correct: true}, {text: b}]
  - order_number: 2
    title: Patterns
  - order_number: 3
    title: Abstraction
`

func TestCurriculumService_ImportFile(t *testing.T) {
	db := testutil.NewDB(t)
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "v1.yaml"), []byte(catalogV1), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "v2.yaml"), []byte(catalogV2), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bad.yaml"), []byte("lessons: []\n"), 0o644))

	svc := NewCurriculumService(repository.NewLessonRepository(db), &curriculum.FileSource{Root: dir})
	ctx := context.Background()

	res, err := svc.ImportFile(ctx, "v1.yaml")
	require.NoError(t, err)
	assert.Equal(t, &ImportResult{Lessons: 2, Created: 2, Questions: 3, Total: 2}, res)

	var first model.Lesson
	require.NoError(t, db.Where("order_number = ?", 1).First(&first).Error)
	testutil.SeedResult(t, db, 1, first.ID, 100)

	res, err = svc.ImportFile(ctx, "v2.yaml")
	require.NoError(t, err)
	assert.Equal(t, &ImportResult{Lessons: 3, Created: 1, Updated: 2, Questions: 1, Total: 3}, res)

	progression := NewProgressionService(repository.NewProgressRepository(db))
	statuses, err := progression.LessonStatuses(ctx, 1)
	require.NoError(t, err)
	require.Len(t, statuses, 3)
	assert.Equal(t, first.ID, statuses[0].LessonID)
	assert.Equal(t, StatusCompleted, statuses[0].Status)
	assert.Equal(t, StatusUnlocked, statuses[1].Status)
	assert.Equal(t, StatusLocked, statuses[2].Status)

	_, err = svc.ImportFile(ctx, "bad.yaml")
	assert.Equal(t, util.KindInvalidInput, util.KindOf(err))
	_, err = svc.ImportFile(ctx, "missing.yaml")
	assert.Equal(t, util.KindInvalidInput, util.KindOf(err))
}
