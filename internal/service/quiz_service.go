package service

import (
	"context"
	"ctlab_backend/internal/config"
	"ctlab_backend/internal/model"
	"ctlab_backend/internal/repository"
	"ctlab_backend/internal/util"
	"encoding/json"
	"strconv"
	"time"

	"gorm.io/datatypes"
)

type QuizSummary struct {
	LessonID       uint         `json:"lesson_id"`
	LessonTitle    string       `json:"lesson_title"`
	OrderNumber    int          `json:"order_number"`
	TotalQuestions int          `json:"total_questions"`
	Status         LessonStatus `json:"status"`
	BestScore      *float64     `json:"best_score"`
	Attempts       int          `json:"attempts"`
	LastAttempt    *time.Time   `json:"last_attempt"`
	EstimatedTime  string       `json:"estimated_time"`
}

// QuizView is a quiz as served for taking it. It carries no answer key.
type QuizView struct {
	LessonID    uint           `json:"lesson_id"`
	LessonTitle string         `json:"lesson_title"`
	Status      LessonStatus   `json:"status"`
	Questions   []QuestionView `json:"questions"`
}

type QuestionView struct {
	ID             uint               `json:"id"`
	QuestionNumber int                `json:"question_number"`
	QuestionText   string             `json:"question_text"`
	Type           model.QuestionType `json:"type"`
	Options        []OptionView       `json:"options"`
}

type OptionView struct {
	ID   uint   `json:"id"`
	Text string `json:"text"`
}

type QuizService struct {
	Progression *ProgressionService
	QuizRepo    *repository.QuizRepository
	Cfg         *config.Config
}

func NewQuizService(progression *ProgressionService, quizRepo *repository.QuizRepository, cfg *config.Config) *QuizService {
	return &QuizService{
		Progression: progression,
		QuizRepo:    quizRepo,
		Cfg:         cfg,
	}
}

func (s *QuizService) ListQuizzes(ctx context.Context, userID uint) ([]QuizSummary, error) {
	snap, err := s.Progression.Snapshot(ctx, userID)
	if err != nil {
		return nil, err
	}
	counts, err := s.QuizRepo.CountAllByLesson(ctx)
	if err != nil {
		return nil, util.DatabaseError("failed to count quiz questions", err)
	}

	estimated := strconv.Itoa(s.Cfg.Quiz.EstimatedMinutes)
	quizzes := make([]QuizSummary, len(snap.Lessons))
	for i, lesson := range snap.Lessons {
		p := snap.Progress[i]
		quizzes[i] = QuizSummary{
			LessonID:       lesson.ID,
			LessonTitle:    lesson.Title,
			OrderNumber:    lesson.OrderNumber,
			TotalQuestions: counts[lesson.ID],
			Status:         QuizStatus(p.Status),
			BestScore:      p.BestScore,
			Attempts:       p.Attempts,
			LastAttempt:    p.LastAttempt,
			EstimatedTime:  estimated,
		}
	}
	return quizzes, nil
}

// GetQuiz serves the lesson's questions when the lesson is open to the user.
func (s *QuizService) GetQuiz(ctx context.Context, userID, lessonID uint) (*QuizView, error) {
	snap, i, err := s.Progression.RequireUnlocked(ctx, userID, lessonID)
	if err != nil {
		return nil, err
	}

	questions, err := s.loadQuestions(ctx, lessonID)
	if err != nil {
		return nil, err
	}

	view := &QuizView{
		LessonID:    lessonID,
		LessonTitle: snap.Lessons[i].Title,
		Status:      QuizStatus(snap.Progress[i].Status),
		Questions:   make([]QuestionView, len(questions)),
	}
	for j, q := range questions {
		options := make([]OptionView, len(q.Options))
		for k, o := range q.Options {
			options[k] = OptionView{ID: o.ID, Text: o.Text}
		}
		view.Questions[j] = QuestionView{
			ID:             q.ID,
			QuestionNumber: q.QuestionNumber,
			QuestionText:   q.QuestionText,
			Type:           q.Type,
			Options:        options,
		}
	}
	return view, nil
}

// SubmitScore records a score computed by the client.
func (s *QuizService) SubmitScore(ctx context.Context, userID, lessonID uint, score float64) (*SubmissionResult, error) {
	return s.Progression.SubmitQuizResult(ctx, userID, lessonID, score)
}

// SubmitAnswers scores the answers (question id to option id) against the answer key and records
// the attempt. Unanswered questions count as wrong.
func (s *QuizService) SubmitAnswers(ctx context.Context, userID, lessonID uint, answers map[uint]uint) (*SubmissionResult, error) {
	if _, _, err := s.Progression.Locate(ctx, userID, lessonID); err != nil {
		return nil, err
	}

	questions, err := s.loadQuestions(ctx, lessonID)
	if err != nil {
		return nil, err
	}

	score, err := ScoreAnswers(questions, answers)
	if err != nil {
		return nil, err
	}

	raw, err := json.Marshal(answers)
	if err != nil {
		return nil, util.WrapError(util.KindInternal, "failed to encode answers", err)
	}
	return s.Progression.RecordAttempt(ctx, userID, lessonID, score, datatypes.JSON(raw))
}

func (s *QuizService) loadQuestions(ctx context.Context, lessonID uint) ([]model.QuizQuestion, error) {
	questions, err := s.QuizRepo.FindQuestionsByLesson(ctx, lessonID)
	if err != nil {
		return nil, util.DatabaseError("failed to fetch quiz questions", err)
	}
	if len(questions) == 0 {
		return nil, util.ErrQuizNotFound
	}
	return questions, nil
}

// ScoreAnswers returns correct / total * 100 rounded to two decimals.
// Answers naming a question or option outside the quiz are rejected.
func ScoreAnswers(questions []model.QuizQuestion, answers map[uint]uint) (float64, error) {
	if len(questions) == 0 {
		return 0, util.ErrQuizNotFound
	}

	byID := make(map[uint]*model.QuizQuestion, len(questions))
	for i := range questions {
		byID[questions[i].ID] = &questions[i]
	}

	correct := 0
	for questionID, optionID := range answers {
		q, ok := byID[questionID]
		if !ok {
			return 0, util.NewError(util.KindInvalidInput, "answer references a question outside this quiz")
		}
		var chosen *model.QuizOption
		for i := range q.Options {
			if q.Options[i].ID == optionID {
				chosen = &q.Options[i]
				break
			}
		}
		if chosen == nil {
			return 0, util.NewError(util.KindInvalidInput, "answer references an option outside its question")
		}
		if chosen.IsCorrect {
			correct++
		}
	}

	return util.Round2(float64(correct) / float64(len(questions)) * 100), nil
}
