package controller

import (
	"ctlab_backend/internal/service"
	"ctlab_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type LessonController struct {
	LessonService *service.LessonService
}

func NewLessonController(lessonService *service.LessonService) *LessonController {
	return &LessonController{LessonService: lessonService}
}

// ListLessons godoc
// @Summary List lessons
// @Description All lessons in order with the user's status, best score and attempts
// @Tags lesson
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=[]service.LessonSummary}
// @Failure 401 {object} util.Response
// @Router /api/lesson [get]
func (c *LessonController) ListLessons(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	lessons, err := c.LessonService.ListLessons(ctx.Request.Context(), claims.UserID)
	if err != nil {
		util.Fail(ctx, err)
		return
	}
	util.Success(ctx, lessons)
}

// GetLesson godoc
// @Summary Lesson detail
// @Tags lesson
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "lesson id"
// @Success 200 {object} util.Response{data=service.LessonDetail}
// @Failure 400 {object} util.Response
// @Failure 403 {object} util.Response "previous lesson not passed"
// @Failure 404 {object} util.Response
// @Router /api/lesson/{id} [get]
func (c *LessonController) GetLesson(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	lessonID, err := util.ParseID(ctx.Param("id"))
	if err != nil {
		util.Fail(ctx, err)
		return
	}

	lesson, err := c.LessonService.GetLesson(ctx.Request.Context(), claims.UserID, lessonID)
	if err != nil {
		util.Fail(ctx, err)
		return
	}
	util.Success(ctx, lesson)
}
