package app

import (
	"context"
	"ctlab_backend/internal/config"
	"ctlab_backend/internal/controller"
	"ctlab_backend/internal/curriculum"
	"ctlab_backend/internal/repository"
	"ctlab_backend/internal/service"
	"ctlab_backend/pkg/configwatcher"
	"ctlab_backend/pkg/database"
	"ctlab_backend/pkg/logger"
	"ctlab_backend/pkg/monitoring"
	"ctlab_backend/pkg/security"
	"ctlab_backend/pkg/tracing"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type App struct {
	Config   *config.Config
	Router   *gin.Engine
	DB       *gorm.DB
	Redis    *redis.Client
	Services *Services

	tracerProvider  *sdktrace.TracerProvider
	configCallbacks []func(*config.Config)
}

type repositories struct {
	user        *repository.UserRepository
	progress    *repository.ProgressRepository
	lesson      *repository.LessonRepository
	quiz        *repository.QuizRepository
	session     *repository.SessionRepository
	idempotency *repository.IdempotencyRepository
}

type Services struct {
	Progression *service.ProgressionService
	Auth        *service.AuthService
	User        *service.UserService
	Lesson      *service.LessonService
	Quiz        *service.QuizService
	Curriculum  *service.CurriculumService
}

type controllers struct {
	auth   *controller.AuthController
	lesson *controller.LessonController
	quiz   *controller.QuizController
	health *controller.HealthController
}

func (a *App) RegisterConfigCallback(callback func(*config.Config)) {
	a.configCallbacks = append(a.configCallbacks, callback)
}

func (a *App) initRepositories(db *gorm.DB, rdb *redis.Client, cfg *config.Config) *repositories {
	return &repositories{
		user:        repository.NewUserRepository(db),
		progress:    repository.NewProgressRepository(db),
		lesson:      repository.NewLessonRepository(db),
		quiz:        repository.NewQuizRepository(db),
		session:     repository.NewSessionRepository(rdb),
		idempotency: repository.NewIdempotencyRepository(rdb, cfg.Quiz.IdempotencyTTL),
	}
}

func (a *App) initServices(repos *repositories, cfg *config.Config) (*Services, error) {
	s := &Services{}

	source, err := curriculum.NewSource(&cfg.Storage)
	if err != nil {
		return nil, fmt.Errorf("curriculum source: %w", err)
	}

	s.Progression = service.NewProgressionService(repos.progress)
	s.Auth = service.NewAuthService(repos.user, repos.session, cfg)
	s.User = service.NewUserService(repos.user, s.Progression)
	s.Lesson = service.NewLessonService(s.Progression, repos.lesson, repos.quiz)
	s.Quiz = service.NewQuizService(s.Progression, repos.quiz, cfg)
	s.Curriculum = service.NewCurriculumService(repos.lesson, source)

	return s, nil
}

func (a *App) initControllers(s *Services, db *gorm.DB, rdb *redis.Client) *controllers {
	return &controllers{
		auth:   controller.NewAuthController(s.Auth, s.User),
		lesson: controller.NewLessonController(s.Lesson),
		quiz:   controller.NewQuizController(s.Quiz),
		health: controller.NewHealthController(db, rdb),
	}
}

func (a *App) setupMiddlewares(router *gin.Engine, cfg *config.Config) {
	router.Use(gin.Recovery())
	if !cfg.IsRelease() {
		router.Use(gin.Logger())
	}
	router.Use(security.Secure())

	if cfg.Tracing.Enabled {
		router.Use(tracing.GinMiddleware())
	}

	router.Use(monitoring.MetricsMiddleware())
}

// New wires repositories, services, controllers and routes around open connections.
func New(cfg *config.Config, db *gorm.DB, rdb *redis.Client) (*App, error) {
	app := &App{
		Config: cfg,
		DB:     db,
		Redis:  rdb,
	}

	repos := app.initRepositories(db, rdb, cfg)
	services, err := app.initServices(repos, cfg)
	if err != nil {
		return nil, err
	}
	app.Services = services
	controllers := app.initControllers(services, db, rdb)

	monitoring.Init()

	router := gin.New()
	app.Router = router

	app.setupMiddlewares(router, cfg)
	app.registerRoutes(router, controllers, repos)

	app.RegisterConfigCallback(func(newCfg *config.Config) {
		logger.SetLevel(newCfg)
		logger.Log.Info("Log level updated", zap.String("level", logger.Level().String()))
	})

	return app, nil
}

// NewApp opens the database, redis and tracing described by cfg and builds the App.
func NewApp(cfg *config.Config) (*App, error) {
	gin.SetMode(cfg.Server.Mode)

	db, err := database.InitDB(&cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("initialize database: %w", err)
	}

	rdb, err := database.InitRedis(&cfg.Redis)
	if err != nil {
		return nil, fmt.Errorf("initialize redis: %w", err)
	}

	app, err := New(cfg, db, rdb)
	if err != nil {
		return nil, err
	}

	if cfg.Tracing.Enabled {
		tp, err := tracing.InitTracer(cfg.Tracing.ServiceName, cfg.Tracing.CollectorEndpoint)
		if err != nil {
			return nil, fmt.Errorf("initialize tracing: %w", err)
		}
		app.tracerProvider = tp
	}

	return app, nil
}

func (a *App) watchConfig(ctx context.Context) {
	if a.Config.File == "" {
		return
	}
	go func() {
		err := configwatcher.WatchConfig(ctx, a.Config.File, func(newCfg *config.Config) {
			for _, callback := range a.configCallbacks {
				callback(newCfg)
			}
		})
		if err != nil {
			logger.Log.Error("Config watcher stopped", zap.Error(err))
		}
	}()
}

// Run serves until SIGINT or SIGTERM, then shuts down gracefully.
func (a *App) Run() error {
	srv := &http.Server{
		Addr:              ":" + a.Config.Server.Port,
		Handler:           a.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a.watchConfig(ctx)

	errCh := make(chan error, 1)
	go func() {
		logger.Log.Info("Server running", zap.String("port", a.Config.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("listen: %w", err)
		}
	case <-ctx.Done():
	}
	logger.Log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	a.Close(shutdownCtx)
	logger.Log.Info("Server exiting")
	return nil
}

// Close releases tracing, redis and database resources.
func (a *App) Close(ctx context.Context) {
	if a.tracerProvider != nil {
		if err := a.tracerProvider.Shutdown(ctx); err != nil {
			logger.Log.Error("Failed to shutdown tracer provider", zap.Error(err))
		}
	}
	if a.Redis != nil {
		if err := a.Redis.Close(); err != nil {
			logger.Log.Error("Failed to close redis", zap.Error(err))
		}
	}
	if sqlDB, err := a.DB.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			logger.Log.Error("Failed to close database", zap.Error(err))
		}
	}
}
