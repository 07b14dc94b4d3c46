package service

import (
	"context"
	"ctlab_backend/internal/model"
	"ctlab_backend/internal/repository"
	"ctlab_backend/internal/testutil"
	"ctlab_backend/internal/util"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type quizFixture struct {
	db      *gorm.DB
	quiz    *QuizService
	lessons *LessonService
	first   *model.Lesson
	second  *model.Lesson
}

func newQuizFixture(t *testing.T) *quizFixture {
	db := testutil.NewDB(t)
	first := testutil.SeedLesson(t, db, 1, 3)
	second := testutil.SeedLesson(t, db, 2, 2)

	progression := NewProgressionService(repository.NewProgressRepository(db))
	quizRepo := repository.NewQuizRepository(db)
	return &quizFixture{
		db:      db,
		quiz:    NewQuizService(progression, quizRepo, testutil.Config()),
		lessons: NewLessonService(progression, repository.NewLessonRepository(db), quizRepo),
		first:   first,
		second:  second,
	}
}

func TestScoreAnswers(t *testing.T) {
	questions := []model.QuizQuestion{
		{TimedModel: model.TimedModel{ID: 1}, Options: []model.QuizOption{{ID: 10, IsCorrect: true}, {ID: 11}}},
		{TimedModel: model.TimedModel{ID: 2}, Options: []model.QuizOption{{ID: 20}, {ID: 21, IsCorrect: true}}},
		{TimedModel: model.TimedModel{ID: 3}, Options: []model.QuizOption{{ID: 30, IsCorrect: true}, {ID: 31}}},
	}

	score, err := ScoreAnswers(questions, map[uint]uint{1: 10, 2: 21, 3: 31})
	require.NoError(t, err)
	assert.Equal(t, 66.67, score)

	score, err = ScoreAnswers(questions, map[uint]uint{1: 10, 2: 21, 3: 30})
	require.NoError(t, err)
	assert.Equal(t, 100.0, score)

	// unanswered questions count as wrong
	score, err = ScoreAnswers(questions, map[uint]uint{1: 10})
	require.NoError(t, err)
	assert.Equal(t, 33.33, score)

	score, err = ScoreAnswers(questions, nil)
	require.NoError(t, err)
	assert.Zero(t, score)

	_, err = ScoreAnswers(questions, map[uint]uint{99: 10})
	assert.Equal(t, util.KindInvalidInput, util.KindOf(err))

	_, err = ScoreAnswers(questions, map[uint]uint{1: 20})
	assert.Equal(t, util.KindInvalidInput, util.KindOf(err))

	_, err = ScoreAnswers(nil, map[uint]uint{1: 10})
	assert.ErrorIs(t, err, util.ErrQuizNotFound)
}

func TestGetQuiz_HidesAnswerKey(t *testing.T) {
	f := newQuizFixture(t)

	quiz, err := f.quiz.GetQuiz(context.Background(), 1, f.first.ID)
	require.NoError(t, err)
	assert.Equal(t, f.first.Title, quiz.LessonTitle)
	assert.Equal(t, StatusAvailable, quiz.Status)
	require.Len(t, quiz.Questions, 3)
	assert.Equal(t, 1, quiz.Questions[0].QuestionNumber)
	require.Len(t, quiz.Questions[0].Options, 2)

	raw, err := json.Marshal(quiz)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "is_correct")
	assert.NotContains(t, string(raw), "IsCorrect")
}

func TestGetQuiz_LockedAndMissing(t *testing.T) {
	f := newQuizFixture(t)
	ctx := context.Background()

	_, err := f.quiz.GetQuiz(ctx, 1, f.second.ID)
	assert.ErrorIs(t, err, util.ErrLessonLocked)

	_, err = f.quiz.GetQuiz(ctx, 1, 999)
	assert.ErrorIs(t, err, util.ErrLessonNotFound)
}

func TestGetQuiz_LessonWithoutQuestions(t *testing.T) {
	db := testutil.NewDB(t)
	l := testutil.SeedLesson(t, db, 1, 0)

	progression := NewProgressionService(repository.NewProgressRepository(db))
	svc := NewQuizService(progression, repository.NewQuizRepository(db), testutil.Config())

	_, err := svc.GetQuiz(context.Background(), 1, l.ID)
	assert.ErrorIs(t, err, util.ErrQuizNotFound)
}

func TestSubmitAnswers_ScoresOnServer(t *testing.T) {
	f := newQuizFixture(t)
	ctx := context.Background()

	var questions []model.QuizQuestion
	require.NoError(t, f.db.Preload("Options").Where("lesson_id = ?", f.first.ID).Order("question_number").Find(&questions).Error)
	require.Len(t, questions, 3)

	answers := map[uint]uint{
		questions[0].ID: questions[0].Options[0].ID,
		questions[1].ID: questions[1].Options[0].ID,
		questions[2].ID: questions[2].Options[1].ID,
	}
	res, err := f.quiz.SubmitAnswers(ctx, 7, f.first.ID, answers)
	require.NoError(t, err)
	assert.Equal(t, 66.67, res.CurrentScore)
	assert.True(t, res.Passed)
	assert.Equal(t, StatusCompleted, res.LessonStatus)
	assert.Equal(t, StatusUnlocked, res.NextLessonStatus)

	var stored model.QuizResult
	require.NoError(t, f.db.Where("user_id = ?", 7).First(&stored).Error)
	assert.Equal(t, 66.67, stored.Score)

	var decoded map[string]uint
	require.NoError(t, json.Unmarshal(stored.Answers, &decoded))
	assert.Len(t, decoded, 3)
}

func TestSubmitAnswers_RejectsForeignQuestion(t *testing.T) {
	f := newQuizFixture(t)

	var other model.QuizQuestion
	require.NoError(t, f.db.Preload("Options").Where("lesson_id = ?", f.second.ID).First(&other).Error)

	_, err := f.quiz.SubmitAnswers(context.Background(), 1, f.first.ID, map[uint]uint{other.ID: other.Options[0].ID})
	assert.Equal(t, util.KindInvalidInput, util.KindOf(err))

	var count int64
	require.NoError(t, f.db.Model(&model.QuizResult{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestSubmitAnswers_LockedLessonIsRecorded(t *testing.T) {
	f := newQuizFixture(t)
	ctx := context.Background()

	var questions []model.QuizQuestion
	require.NoError(t, f.db.Preload("Options").Where("lesson_id = ?", f.second.ID).Order("question_number").Find(&questions).Error)
	require.Len(t, questions, 2)

	res, err := f.quiz.SubmitAnswers(ctx, 1, f.second.ID, map[uint]uint{questions[0].ID: questions[0].Options[0].ID})
	require.NoError(t, err)
	assert.Equal(t, 50.0, res.CurrentScore)
	assert.Equal(t, StatusLocked, res.LessonStatus)
	assert.Equal(t, 1, res.Attempts)

	_, err = f.quiz.SubmitAnswers(ctx, 1, 999, map[uint]uint{})
	assert.ErrorIs(t, err, util.ErrLessonNotFound)
}

func TestListQuizzes(t *testing.T) {
	f := newQuizFixture(t)
	ctx := context.Background()
	testutil.SeedResult(t, f.db, 1, f.first.ID, 40)

	quizzes, err := f.quiz.ListQuizzes(ctx, 1)
	require.NoError(t, err)
	require.Len(t, quizzes, 2)

	assert.Equal(t, f.first.ID, quizzes[0].LessonID)
	assert.Equal(t, StatusAttempted, quizzes[0].Status)
	assert.Equal(t, 3, quizzes[0].TotalQuestions)
	assert.Equal(t, 1, quizzes[0].Attempts)
	assert.Equal(t, "15", quizzes[0].EstimatedTime)
	require.NotNil(t, quizzes[0].BestScore)
	assert.Equal(t, 40.0, *quizzes[0].BestScore)

	assert.Equal(t, StatusLocked, quizzes[1].Status)
	assert.Equal(t, 2, quizzes[1].TotalQuestions)
	assert.Nil(t, quizzes[1].BestScore)

	other, err := f.quiz.ListQuizzes(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, StatusAvailable, other[0].Status)
}

func TestLessonService(t *testing.T) {
	f := newQuizFixture(t)
	ctx := context.Background()

	lessons, err := f.lessons.ListLessons(ctx, 1)
	require.NoError(t, err)
	require.Len(t, lessons, 2)
	assert.Equal(t, []string{"None"}, lessons[0].Prerequisites)
	assert.Equal(t, StatusUnlocked, lessons[0].Status)
	assert.Equal(t, StatusLocked, lessons[1].Status)

	detail, err := f.lessons.GetLesson(ctx, 1, f.first.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, detail.TotalQuestions)
	assert.False(t, detail.QuizCompleted)
	assert.Len(t, detail.LearningObjectives, 1)
	assert.NotNil(t, detail.Topics)
	assert.NotNil(t, detail.KeyConcepts)

	_, err = f.lessons.GetLesson(ctx, 1, f.second.ID)
	assert.ErrorIs(t, err, util.ErrLessonLocked)

	testutil.SeedResult(t, f.db, 1, f.first.ID, 60)
	detail, err = f.lessons.GetLesson(ctx, 1, f.first.ID)
	require.NoError(t, err)
	assert.True(t, detail.QuizCompleted)
	assert.Equal(t, StatusCompleted, detail.Status)

	detail, err = f.lessons.GetLesson(ctx, 1, f.second.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusUnlocked, detail.Status)
}
