package services

import (
	"context"
	"math"
	"time"

	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"toolboard/models"
)

// activeWindow is the trailing window a user must have been active in to
// count towards the dashboard's active-user figure.
const activeWindow = 24 * time.Hour

// DashboardStats is the admin dashboard rollup. It is recomputed from
// scratch on every invalidation; no rolling aggregate is maintained.
type DashboardStats struct {
	TotalClicks      int64 `json:"total_clicks"`
	UniqueVisitors   int64 `json:"unique_visitors"`
	TotalLinks       int64 `json:"total_links"`
	ActiveUsers      int64 `json:"active_users"`
	AverageClickRate int64 `json:"average_click_rate"`
}

// ClickFilter narrows a raw click-analytics listing.
type ClickFilter struct {
	LinkID string
	From   *time.Time
	To     *time.Time
}

// AnalyticsService computes click analytics rollups.
type AnalyticsService struct {
	db *gorm.DB
}

func NewAnalyticsService(db *gorm.DB) *AnalyticsService {
	return &AnalyticsService{db: db}
}

// DashboardStats runs the independent aggregate reads concurrently. The
// reads are not a snapshot; eventual consistency between them is fine.
func (s *AnalyticsService) DashboardStats(ctx context.Context) (DashboardStats, error) {
	var totalClicks, uniqueVisitors, totalLinks, activeUsers int64

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return s.db.WithContext(ctx).Model(&models.ClickAnalytic{}).
			Count(&totalClicks).Error
	})
	g.Go(func() error {
		return s.db.WithContext(ctx).Model(&models.ClickAnalytic{}).
			Where("session_id IS NOT NULL AND session_id <> ''").
			Distinct("session_id").Count(&uniqueVisitors).Error
	})
	g.Go(func() error {
		return s.db.WithContext(ctx).Model(&models.AutomationLink{}).
			Count(&totalLinks).Error
	})
	g.Go(func() error {
		return s.db.WithContext(ctx).Model(&models.User{}).
			Where("last_active >= ?", time.Now().Add(-activeWindow)).
			Count(&activeUsers).Error
	})
	if err := g.Wait(); err != nil {
		return DashboardStats{}, backendErr("dashboard stats", err)
	}

	// Rate rounds half away from zero: 10 clicks over 4 links is 3.
	var rate int64
	if totalLinks > 0 {
		rate = int64(math.Round(float64(totalClicks) / float64(totalLinks)))
	}

	return DashboardStats{
		TotalClicks:      totalClicks,
		UniqueVisitors:   uniqueVisitors,
		TotalLinks:       totalLinks,
		ActiveUsers:      activeUsers,
		AverageClickRate: rate,
	}, nil
}

// ClickAnalytics lists raw click rows, newest first, optionally narrowed by
// link and clicked_at range.
func (s *AnalyticsService) ClickAnalytics(ctx context.Context, f ClickFilter) ([]models.ClickAnalytic, error) {
	query := s.db.WithContext(ctx).Order("clicked_at DESC")
	if f.LinkID != "" {
		query = query.Where("link_id = ?", f.LinkID)
	}
	if f.From != nil {
		query = query.Where("clicked_at >= ?", *f.From)
	}
	if f.To != nil {
		query = query.Where("clicked_at <= ?", *f.To)
	}

	var clicks []models.ClickAnalytic
	if err := query.Find(&clicks).Error; err != nil {
		return nil, backendErr("list click analytics", err)
	}
	return clicks, nil
}
