package controllers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"toolboard/services"
	"toolboard/utils"
)

const dashboardCacheKey = "cache:stats:dashboard"

// StatsController serves dashboard rollups and raw click analytics.
type StatsController struct {
	analytics *services.AnalyticsService
}

func NewStatsController(analytics *services.AnalyticsService) *StatsController {
	return &StatsController{analytics: analytics}
}

// Dashboard returns the aggregate dashboard stats. The payload is cached
// briefly in Redis and invalidated by click and link mutations.
func (s *StatsController) Dashboard(ctx *gin.Context) {
	if b, ok := utils.CacheGetBytes(dashboardCacheKey); ok {
		ctx.Data(http.StatusOK, "application/json", b)
		return
	}

	stats, err := s.analytics.DashboardStats(ctx)
	if err != nil {
		serviceError(ctx, err)
		return
	}

	wrapper := utils.JSONResponse{Code: 0, Message: "success", Data: gin.H{"stats": stats}}
	if b, err := json.Marshal(wrapper); err == nil {
		utils.CacheSetBytes(dashboardCacheKey, b, time.Minute)
	}

	utils.Success(ctx, gin.H{"stats": stats})
}

// Clicks lists raw click analytics rows, optionally filtered by link id and
// clicked_at range (RFC 3339).
func (s *StatsController) Clicks(ctx *gin.Context) {
	filter := services.ClickFilter{LinkID: ctx.Query("link_id")}

	if v := ctx.Query("start"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			utils.Error(ctx, http.StatusBadRequest, 40040, "invalid start time")
			return
		}
		filter.From = &t
	}
	if v := ctx.Query("end"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			utils.Error(ctx, http.StatusBadRequest, 40041, "invalid end time")
			return
		}
		filter.To = &t
	}

	clicks, err := s.analytics.ClickAnalytics(ctx, filter)
	if err != nil {
		serviceError(ctx, err)
		return
	}
	utils.Success(ctx, gin.H{"clicks": clicks})
}
