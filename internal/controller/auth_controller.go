package controller

import (
	"ctlab_backend/internal/service"
	"ctlab_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type AuthController struct {
	AuthService *service.AuthService
	UserService *service.UserService
}

func NewAuthController(authService *service.AuthService, userService *service.UserService) *AuthController {
	return &AuthController{
		AuthService: authService,
		UserService: userService,
	}
}

// Register godoc
// @Summary Register a new user
// @Tags auth
// @Accept json
// @Produce json
// @Param body body service.RegisterInput true "registration"
// @Success 201 {object} util.Response{data=service.UserView}
// @Failure 400 {object} util.Response
// @Failure 409 {object} util.Response
// @Router /api/auth/register [post]
func (c *AuthController) Register(ctx *gin.Context) {
	var req service.RegisterInput
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	user, err := c.AuthService.Register(ctx.Request.Context(), req)
	if err != nil {
		util.Fail(ctx, err)
		return
	}

	util.Created(ctx, user)
}

// Login godoc
// @Summary Log in
// @Description Returns a bearer token and the user
// @Tags auth
// @Accept json
// @Produce json
// @Param body body service.LoginInput true "credentials"
// @Success 200 {object} util.Response{data=service.LoginResult}
// @Failure 400 {object} util.Response
// @Failure 401 {object} util.Response
// @Router /api/auth/login [post]
func (c *AuthController) Login(ctx *gin.Context) {
	var req service.LoginInput
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	result, err := c.AuthService.Login(ctx.Request.Context(), req)
	if err != nil {
		util.Fail(ctx, err)
		return
	}

	util.Success(ctx, result)
}

// Logout godoc
// @Summary Log out
// @Description Revokes the current token
// @Tags auth
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response
// @Failure 401 {object} util.Response
// @Router /api/auth/logout [post]
func (c *AuthController) Logout(ctx *gin.Context) {
	if err := c.AuthService.Logout(ctx.Request.Context(), util.GetUserFromContext(ctx)); err != nil {
		util.Fail(ctx, err)
		return
	}
	util.Success(ctx, nil)
}

// GetProfile godoc
// @Summary Current user profile
// @Description The user and a summary of lesson progress
// @Tags auth
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=service.Profile}
// @Failure 401 {object} util.Response
// @Router /api/auth/profile [get]
func (c *AuthController) GetProfile(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	profile, err := c.UserService.GetProfile(ctx.Request.Context(), claims.UserID)
	if err != nil {
		util.Fail(ctx, err)
		return
	}
	util.Success(ctx, profile)
}

// UpdatePassword godoc
// @Summary Change password
// @Tags auth
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param body body service.UpdatePasswordInput true "passwords"
// @Success 200 {object} util.Response
// @Failure 400 {object} util.Response
// @Failure 401 {object} util.Response
// @Router /api/auth/update-password [put]
func (c *AuthController) UpdatePassword(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	var req service.UpdatePasswordInput
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	if err := c.UserService.UpdatePassword(ctx.Request.Context(), claims.UserID, req); err != nil {
		util.Fail(ctx, err)
		return
	}
	util.Success(ctx, nil)
}

// UpdateTheme godoc
// @Summary Set theme preference
// @Tags auth
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param body body service.UpdateThemeInput true "light or dark"
// @Success 200 {object} util.Response
// @Failure 400 {object} util.Response
// @Router /api/auth/theme [put]
func (c *AuthController) UpdateTheme(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	var req service.UpdateThemeInput
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	if err := c.UserService.UpdateTheme(ctx.Request.Context(), claims.UserID, req.Theme); err != nil {
		util.Fail(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"theme": req.Theme})
}
