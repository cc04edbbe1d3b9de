package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"toolboard/middleware"
	"toolboard/services"
	"toolboard/utils"
)

const tokenLifetime = 24 * time.Hour

// AuthController handles admin panel login.
type AuthController struct {
	users *services.UserService
}

func NewAuthController(users *services.UserService) *AuthController {
	return &AuthController{users: users}
}

// Login verifies email + password and issues a JWT. A successful login
// also stamps last_active, which feeds the active-user dashboard count.
func (a *AuthController) Login(ctx *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40050, "invalid request payload")
		return
	}

	user, err := a.users.GetByEmail(ctx, req.Email)
	if err != nil || user.PasswordHash == "" || !utils.CheckPassword(user.PasswordHash, req.Password) {
		utils.Error(ctx, http.StatusUnauthorized, 40150, "invalid credentials")
		return
	}

	token, err := utils.GenerateToken(user.ID, user.Email, user.Role, tokenLifetime)
	if err != nil {
		utils.Sugar.Errorf("token generation failed: %v", err)
		utils.Error(ctx, http.StatusInternalServerError, 50050, "failed to issue token")
		return
	}

	if touched, err := a.users.TouchLastActive(ctx, user.ID); err == nil {
		user = touched
	}

	utils.Success(ctx, gin.H{"token": token, "user": user})
}

// Me returns the authenticated user.
func (a *AuthController) Me(ctx *gin.Context) {
	userID := ctx.GetString(middleware.ContextUserIDKey)
	user, err := a.users.Get(ctx, userID)
	if err != nil {
		serviceError(ctx, err)
		return
	}
	utils.Success(ctx, gin.H{"user": user})
}
