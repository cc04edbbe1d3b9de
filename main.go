package main

import (
	"context"

	"toolboard/config"
	"toolboard/controllers"
	"toolboard/models"
	"toolboard/realtime"
	"toolboard/routes"
	"toolboard/services"
	"toolboard/utils"
)

func main() {
	cfg := config.Load()

	if err := utils.InitLogger(cfg); err != nil {
		panic(err)
	}
	defer utils.Logger.Sync()

	db := config.InitDatabase(
		&models.AutomationLink{},
		&models.Category{},
		&models.User{},
		&models.ClickAnalytic{},
	)

	var bus realtime.Bus
	if utils.RedisAvailable() {
		bus = realtime.NewRedisBus(utils.GetRedis())
	} else {
		utils.Sugar.Warn("redis unreachable, change events stay in-process")
		bus = realtime.NewMemoryBus()
	}

	linkSvc := services.NewLinkService(db, bus)
	categorySvc := services.NewCategoryService(db, bus)
	userSvc := services.NewUserService(db, bus)
	analyticsSvc := services.NewAnalyticsService(db)

	ctx := context.Background()
	if err := userSvc.EnsureAdmin(ctx, cfg.AdminEmail, cfg.AdminPassword); err != nil {
		utils.Sugar.Errorf("admin seeding failed: %v", err)
	}

	ping := services.PingBackend(db)
	links := realtime.NewCollection[models.AutomationLink](realtime.TableLinks, bus, ping, linkSvc.List, true)
	categories := realtime.NewCollection[models.Category](realtime.TableCategories, bus, ping, categorySvc.List, false)
	users := realtime.NewCollection[models.User](realtime.TableUsers, bus, ping, userSvc.List, true)
	stats := realtime.NewFeed(bus, ping, analyticsSvc.DashboardStats,
		realtime.TableClickAnalytics, realtime.TableLinks)

	links.Start(ctx)
	categories.Start(ctx)
	users.Start(ctx)
	stats.Start(ctx)
	defer func() {
		links.Stop()
		categories.Stop()
		users.Stop()
		stats.Stop()
	}()

	live := controllers.NewLiveController(bus, links, categories, users, stats)

	r := routes.SetupRouter(
		controllers.NewAuthController(userSvc),
		controllers.NewLinkController(linkSvc),
		controllers.NewCategoryController(categorySvc),
		controllers.NewUserController(userSvc),
		controllers.NewStatsController(analyticsSvc),
		live,
	)

	if err := utils.GraceServer(":"+cfg.AppPort, r); err != nil {
		utils.Sugar.Fatalf("server error: %v", err)
	}
}
