package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"toolboard/middleware"
	"toolboard/services"
	"toolboard/utils"
)

// LinkController exposes CRUD and click tracking for automation links.
type LinkController struct {
	links *services.LinkService
}

func NewLinkController(links *services.LinkService) *LinkController {
	return &LinkController{links: links}
}

// ListLinks returns all links, newest first.
func (l *LinkController) ListLinks(ctx *gin.Context) {
	links, err := l.links.List(ctx)
	if err != nil {
		serviceError(ctx, err)
		return
	}
	utils.Success(ctx, gin.H{"links": links})
}

// GetLink returns one link by id.
func (l *LinkController) GetLink(ctx *gin.Context) {
	link, err := l.links.Get(ctx, ctx.Param("id"))
	if err != nil {
		serviceError(ctx, err)
		return
	}
	utils.Success(ctx, gin.H{"link": link})
}

// CreateLink inserts a new link.
func (l *LinkController) CreateLink(ctx *gin.Context) {
	var req services.LinkInput
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40010, "invalid request payload")
		return
	}

	link, err := l.links.Create(ctx, req)
	if err != nil {
		serviceError(ctx, err)
		return
	}

	utils.InvalidateByPrefix("cache:stats:")
	utils.Success(ctx, gin.H{"link": link})
}

// UpdateLink applies a partial update.
func (l *LinkController) UpdateLink(ctx *gin.Context) {
	var req services.LinkUpdate
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40011, "invalid request payload")
		return
	}

	link, err := l.links.Update(ctx, ctx.Param("id"), req)
	if err != nil {
		serviceError(ctx, err)
		return
	}
	utils.Success(ctx, gin.H{"link": link})
}

// DeleteLink removes a link and its analytics rows.
func (l *LinkController) DeleteLink(ctx *gin.Context) {
	if err := l.links.Delete(ctx, ctx.Param("id")); err != nil {
		serviceError(ctx, err)
		return
	}

	utils.InvalidateByPrefix("cache:stats:")
	utils.Success(ctx, nil)
}

// Click records a click on a link and returns the updated counters. The
// session token comes from the visitor cookie; no authentication is
// involved.
func (l *LinkController) Click(ctx *gin.Context) {
	sessionID := ctx.GetString(middleware.ContextSessionKey)
	userAgent := ctx.Request.UserAgent()

	link, err := l.links.RecordClick(ctx, ctx.Param("id"), sessionID, userAgent)
	if err != nil {
		serviceError(ctx, err)
		return
	}

	utils.InvalidateByPrefix("cache:stats:")
	utils.Success(ctx, gin.H{"link": link})
}
