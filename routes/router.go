package routes

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"toolboard/config"
	"toolboard/controllers"
	"toolboard/middleware"
	"toolboard/utils"
)

// SetupRouter wires middleware and the API surface.
func SetupRouter(
	auth *controllers.AuthController,
	links *controllers.LinkController,
	categories *controllers.CategoryController,
	users *controllers.UserController,
	stats *controllers.StatsController,
	live *controllers.LiveController,
) *gin.Engine {
	cfg := config.Get()
	gin.SetMode(cfg.GinMode)

	r := gin.New()
	r.Use(utils.RequestLogger(), utils.Recovery())

	corsCfg := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) == 1 && cfg.AllowedOrigins[0] == "*" {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = cfg.AllowedOrigins
	}
	corsCfg.AllowHeaders = append(corsCfg.AllowHeaders, "Authorization")
	r.Use(cors.New(corsCfg))

	r.Use(middleware.Session())

	r.GET("/health", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api/v1")

	authGroup := api.Group("/auth")
	{
		authGroup.POST("/login", auth.Login)
		authGroup.GET("/me", middleware.AuthRequired(), auth.Me)
	}

	linkGroup := api.Group("/links")
	{
		linkGroup.GET("", links.ListLinks)
		linkGroup.GET("/:id", links.GetLink)
		linkGroup.POST("/:id/click", middleware.ClickRateLimit(), links.Click)

		admin := linkGroup.Group("", middleware.AuthRequired(), middleware.AdminRequired())
		admin.POST("", links.CreateLink)
		admin.PUT("/:id", links.UpdateLink)
		admin.DELETE("/:id", links.DeleteLink)
	}

	categoryGroup := api.Group("/categories")
	{
		categoryGroup.GET("", categories.ListCategories)

		admin := categoryGroup.Group("", middleware.AuthRequired(), middleware.AdminRequired())
		admin.POST("", categories.CreateCategory)
		admin.PUT("/:id", categories.UpdateCategory)
		admin.DELETE("/:id", categories.DeleteCategory)
	}

	userGroup := api.Group("/users", middleware.AuthRequired(), middleware.AdminRequired())
	{
		userGroup.GET("", users.ListUsers)
		userGroup.POST("", users.CreateUser)
		userGroup.PUT("/:id", users.UpdateUser)
		userGroup.DELETE("/:id", users.DeleteUser)
		userGroup.POST("/:id/touch", users.TouchActive)
	}

	statsGroup := api.Group("/stats", middleware.AuthRequired())
	{
		statsGroup.GET("/dashboard", stats.Dashboard)
		statsGroup.GET("/clicks", stats.Clicks)
	}

	liveGroup := api.Group("/live")
	{
		liveGroup.GET("/links", live.Links)
		liveGroup.GET("/categories", live.Categories)

		admin := liveGroup.Group("", middleware.AuthRequired(), middleware.AdminRequired())
		admin.GET("/users", live.Users)
		admin.GET("/stats", live.Stats)
		admin.POST("/refetch", live.Refetch)
	}

	api.GET("/events", live.Events)

	return r
}
