package app

import (
	"ctlab_backend/docs"
	"ctlab_backend/internal/middleware"
	"ctlab_backend/internal/util"
	"ctlab_backend/pkg/monitoring"
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, repos *repositories) {
	docs.SwaggerInfo.BasePath = "/"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	router.GET("/metrics", monitoring.PrometheusHandler())
	router.GET("/health", c.health.HealthCheck)

	router.NoRoute(func(ctx *gin.Context) {
		util.Error(ctx, http.StatusNotFound, util.KindNotFound, "route not found")
	})

	a.registerPublicRoutes(router, c)

	authGroup := router.Group("/api")
	authGroup.Use(middleware.AuthMiddleware(a.Services.Auth))
	{
		a.registerUserRoutes(authGroup, c)
		a.registerLessonRoutes(authGroup, c)
		a.registerQuizRoutes(authGroup, c, repos)
	}
}

func (a *App) registerPublicRoutes(router *gin.Engine, c *controllers) {
	public := router.Group("/api")
	{
		public.GET("/health", c.health.HealthCheck)
		public.POST("/auth/register", c.auth.Register)
		public.POST("/auth/login", c.auth.Login)
	}
}

func (a *App) registerUserRoutes(group *gin.RouterGroup, c *controllers) {
	auth := group.Group("/auth")
	{
		auth.POST("/logout", c.auth.Logout)
		auth.GET("/profile", c.auth.GetProfile)
		auth.PUT("/update-password", c.auth.UpdatePassword)
		auth.PUT("/theme", c.auth.UpdateTheme)
	}
}

func (a *App) registerLessonRoutes(group *gin.RouterGroup, c *controllers) {
	lesson := group.Group("/lesson")
	{
		lesson.GET("", c.lesson.ListLessons)
		lesson.GET("/:id", c.lesson.GetLesson)
	}
}

func (a *App) registerQuizRoutes(group *gin.RouterGroup, c *controllers, repos *repositories) {
	quiz := group.Group("/quiz")
	{
		quiz.GET("", c.quiz.ListQuizzes)
		quiz.GET("/:lessonId", c.quiz.GetQuiz)

		idempotent := middleware.Idempotency(repos.idempotency)
		quiz.POST("/:lessonId/submit", idempotent, c.quiz.SubmitScore)
		quiz.POST("/:lessonId/answers", idempotent, c.quiz.SubmitAnswers)
	}
}
