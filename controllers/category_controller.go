package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"toolboard/services"
	"toolboard/utils"
)

// CategoryController exposes CRUD for link categories.
type CategoryController struct {
	categories *services.CategoryService
}

func NewCategoryController(categories *services.CategoryService) *CategoryController {
	return &CategoryController{categories: categories}
}

// ListCategories returns all categories, name ascending.
func (c *CategoryController) ListCategories(ctx *gin.Context) {
	cats, err := c.categories.List(ctx)
	if err != nil {
		serviceError(ctx, err)
		return
	}
	utils.Success(ctx, gin.H{"categories": cats})
}

// CreateCategory inserts a new category.
func (c *CategoryController) CreateCategory(ctx *gin.Context) {
	var req struct {
		Name string `json:"name" binding:"required"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40020, "invalid request payload")
		return
	}

	cat, err := c.categories.Create(ctx, req.Name)
	if err != nil {
		serviceError(ctx, err)
		return
	}
	utils.Success(ctx, gin.H{"category": cat})
}

// UpdateCategory renames a category. Links keep the old name.
func (c *CategoryController) UpdateCategory(ctx *gin.Context) {
	var req struct {
		Name string `json:"name" binding:"required"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40021, "invalid request payload")
		return
	}

	cat, err := c.categories.Update(ctx, ctx.Param("id"), req.Name)
	if err != nil {
		serviceError(ctx, err)
		return
	}
	utils.Success(ctx, gin.H{"category": cat})
}

// DeleteCategory removes a category unless links still reference it.
func (c *CategoryController) DeleteCategory(ctx *gin.Context) {
	if err := c.categories.Delete(ctx, ctx.Param("id")); err != nil {
		serviceError(ctx, err)
		return
	}
	utils.Success(ctx, nil)
}
