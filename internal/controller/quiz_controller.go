package controller

import (
	"ctlab_backend/internal/service"
	"ctlab_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type QuizController struct {
	QuizService *service.QuizService
}

func NewQuizController(quizService *service.QuizService) *QuizController {
	return &QuizController{QuizService: quizService}
}

// SubmitScoreRequest carries a score the client computed.
// swagger:model SubmitScoreRequest
type SubmitScoreRequest struct {
	Score *float64 `json:"score" binding:"required"`
}

// SubmitAnswersRequest maps question id to the chosen option id.
// swagger:model SubmitAnswersRequest
type SubmitAnswersRequest struct {
	Answers map[uint]uint `json:"answers" binding:"required"`
}

// ListQuizzes godoc
// @Summary List quizzes
// @Description One entry per lesson with status locked, available, attempted or completed
// @Tags quiz
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=[]service.QuizSummary}
// @Failure 401 {object} util.Response
// @Router /api/quiz [get]
func (c *QuizController) ListQuizzes(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	quizzes, err := c.QuizService.ListQuizzes(ctx.Request.Context(), claims.UserID)
	if err != nil {
		util.Fail(ctx, err)
		return
	}
	util.Success(ctx, quizzes)
}

// GetQuiz godoc
// @Summary Quiz for a lesson
// @Description Questions and options, without the answer key
// @Tags quiz
// @Produce json
// @Security ApiKeyAuth
// @Param lessonId path int true "lesson id"
// @Success 200 {object} util.Response{data=service.QuizView}
// @Failure 400 {object} util.Response
// @Failure 403 {object} util.Response "previous lesson not passed"
// @Failure 404 {object} util.Response
// @Router /api/quiz/{lessonId} [get]
func (c *QuizController) GetQuiz(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	lessonID, err := util.ParseID(ctx.Param("lessonId"))
	if err != nil {
		util.Fail(ctx, err)
		return
	}

	quiz, err := c.QuizService.GetQuiz(ctx.Request.Context(), claims.UserID, lessonID)
	if err != nil {
		util.Fail(ctx, err)
		return
	}
	util.Success(ctx, quiz)
}

// SubmitScore godoc
// @Summary Submit a quiz score
// @Description Records one attempt. Send an Idempotency-Key header to make retries safe.
// @Tags quiz
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param lessonId path int true "lesson id"
// @Param Idempotency-Key header string false "client generated key"
// @Param body body SubmitScoreRequest true "score between 0 and 100"
// @Success 200 {object} util.Response{data=service.SubmissionResult}
// @Failure 400 {object} util.Response
// @Failure 404 {object} util.Response
// @Failure 409 {object} util.Response "same key still in flight"
// @Router /api/quiz/{lessonId}/submit [post]
func (c *QuizController) SubmitScore(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	lessonID, err := util.ParseID(ctx.Param("lessonId"))
	if err != nil {
		util.Fail(ctx, err)
		return
	}

	var req SubmitScoreRequest
	if err := ctx.ShouldBindJSON(&req); err != nil || req.Score == nil {
		util.Fail(ctx, util.ErrInvalidScore)
		return
	}

	result, err := c.QuizService.SubmitScore(ctx.Request.Context(), claims.UserID, lessonID, *req.Score)
	if err != nil {
		util.Fail(ctx, err)
		return
	}
	util.Success(ctx, result)
}

// SubmitAnswers godoc
// @Summary Submit quiz answers
// @Description Scores the answers on the server and records one attempt
// @Tags quiz
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param lessonId path int true "lesson id"
// @Param Idempotency-Key header string false "client generated key"
// @Param body body SubmitAnswersRequest true "question id to option id"
// @Success 200 {object} util.Response{data=service.SubmissionResult}
// @Failure 400 {object} util.Response
// @Failure 404 {object} util.Response
// @Router /api/quiz/{lessonId}/answers [post]
func (c *QuizController) SubmitAnswers(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	lessonID, err := util.ParseID(ctx.Param("lessonId"))
	if err != nil {
		util.Fail(ctx, err)
		return
	}

	var req SubmitAnswersRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, "answers must map question ids to option ids")
		return
	}

	result, err := c.QuizService.SubmitAnswers(ctx.Request.Context(), claims.UserID, lessonID, req.Answers)
	if err != nil {
		util.Fail(ctx, err)
		return
	}
	util.Success(ctx, result)
}
