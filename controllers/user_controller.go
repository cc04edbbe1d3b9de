package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"toolboard/services"
	"toolboard/utils"
)

// UserController exposes CRUD for admin panel members.
type UserController struct {
	users *services.UserService
}

func NewUserController(users *services.UserService) *UserController {
	return &UserController{users: users}
}

// ListUsers returns all users, newest first.
func (u *UserController) ListUsers(ctx *gin.Context) {
	users, err := u.users.List(ctx)
	if err != nil {
		serviceError(ctx, err)
		return
	}
	utils.Success(ctx, gin.H{"users": users})
}

// CreateUser inserts a new user.
func (u *UserController) CreateUser(ctx *gin.Context) {
	var req services.UserInput
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40030, "invalid request payload")
		return
	}

	user, err := u.users.Create(ctx, req)
	if err != nil {
		serviceError(ctx, err)
		return
	}
	utils.Success(ctx, gin.H{"user": user})
}

// UpdateUser applies a partial update.
func (u *UserController) UpdateUser(ctx *gin.Context) {
	var req services.UserUpdate
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40031, "invalid request payload")
		return
	}

	user, err := u.users.Update(ctx, ctx.Param("id"), req)
	if err != nil {
		serviceError(ctx, err)
		return
	}
	utils.Success(ctx, gin.H{"user": user})
}

// DeleteUser removes a user.
func (u *UserController) DeleteUser(ctx *gin.Context) {
	if err := u.users.Delete(ctx, ctx.Param("id")); err != nil {
		serviceError(ctx, err)
		return
	}
	utils.Success(ctx, nil)
}

// TouchActive stamps the user's last_active to now.
func (u *UserController) TouchActive(ctx *gin.Context) {
	user, err := u.users.TouchLastActive(ctx, ctx.Param("id"))
	if err != nil {
		serviceError(ctx, err)
		return
	}
	utils.Success(ctx, gin.H{"user": user})
}
