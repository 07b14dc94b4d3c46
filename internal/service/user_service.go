package service

import (
	"context"
	"ctlab_backend/internal/repository"
	"ctlab_backend/internal/util"
	"errors"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type UpdatePasswordInput struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required,min=8,max=72"`
}

type UpdateThemeInput struct {
	Theme string `json:"theme" binding:"required"`
}

type ProgressSummary struct {
	TotalLessons     int      `json:"total_lessons"`
	CompletedLessons int      `json:"completed_lessons"`
	Attempts         int      `json:"attempts"`
	AverageBestScore *float64 `json:"average_best_score"`
}

type Profile struct {
	User     *UserView       `json:"user"`
	Progress ProgressSummary `json:"progress"`
}

type UserService struct {
	UserRepo    *repository.UserRepository
	Progression *ProgressionService
}

func NewUserService(userRepo *repository.UserRepository, progression *ProgressionService) *UserService {
	return &UserService{
		UserRepo:    userRepo,
		Progression: progression,
	}
}

func (s *UserService) GetProfile(ctx context.Context, userID uint) (*Profile, error) {
	user, err := s.UserRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, userLookupError(err)
	}

	progress, err := s.Progression.LessonStatuses(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &Profile{
		User:     NewUserView(user),
		Progress: SummarizeProgress(progress),
	}, nil
}

// SummarizeProgress averages best scores over the lessons the user has attempted.
func SummarizeProgress(progress []LessonProgress) ProgressSummary {
	summary := ProgressSummary{TotalLessons: len(progress)}
	var sum float64
	var scored int
	for _, p := range progress {
		summary.Attempts += p.Attempts
		if p.Status == StatusCompleted {
			summary.CompletedLessons++
		}
		if p.BestScore != nil {
			sum += *p.BestScore
			scored++
		}
	}
	if scored > 0 {
		avg := util.Round2(sum / float64(scored))
		summary.AverageBestScore = &avg
	}
	return summary
}

func (s *UserService) UpdateTheme(ctx context.Context, userID uint, theme string) error {
	if theme != util.ThemeLight && theme != util.ThemeDark {
		return util.ErrInvalidTheme
	}
	if err := s.UserRepo.UpdateTheme(ctx, userID, theme); err != nil {
		return userLookupError(err)
	}
	return nil
}

func (s *UserService) UpdatePassword(ctx context.Context, userID uint, in UpdatePasswordInput) error {
	if len(in.NewPassword) < 8 {
		return util.NewError(util.KindInvalidInput, "password must be at least 8 characters")
	}

	user, err := s.UserRepo.FindByID(ctx, userID)
	if err != nil {
		return userLookupError(err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(in.CurrentPassword)); err != nil {
		return util.ErrWrongPassword
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(in.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return util.WrapError(util.KindInternal, "failed to hash password", err)
	}
	if err := s.UserRepo.UpdatePassword(ctx, userID, string(hashed)); err != nil {
		return userLookupError(err)
	}
	return nil
}

func userLookupError(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return util.ErrUserNotFound
	}
	return util.DatabaseError("failed to access user", err)
}
