package app

import (
	"roboquest_backend/internal/middleware"
	"roboquest_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers) {
	router.GET("/metrics", monitoring.PrometheusHandler())

	api := router.Group("/api")
	authMW := middleware.AuthMiddleware(a.services.auth)

	// 1. 公共路由(无需登录)
	a.registerPublicRoutes(api, c)

	// 2. 需要登录的路由
	authGroup := api.Group("")
	authGroup.Use(authMW)
	a.registerLearnerRoutes(authGroup, c)

	// 3. 管理员内容管理
	admin := api.Group("/content")
	admin.Use(authMW, middleware.AdminOnly())
	{
		admin.POST("/upload", c.content.UploadContent)
		admin.PUT("/:id", c.content.UpdateContent)
		admin.DELETE("/:id", c.content.DeleteContent)
		admin.POST("/:id/thumbnail", c.content.UploadThumbnail)
	}
}

func (a *App) registerPublicRoutes(api *gin.RouterGroup, c *controllers) {
	api.GET("/health", c.health.HealthCheck)

	auth := api.Group("/auth")
	{
		auth.POST("/signup", c.auth.Signup)
		auth.POST("/login", c.auth.Login)
	}

	api.GET("/content", c.content.ListTutorials)
	api.GET("/our-content", c.content.ListOurContent)
	api.POST("/content/:id/view", c.content.RecordView)

	api.GET("/courses", c.course.ListCourses)
	api.GET("/course/:id", c.course.GetCourse)

	api.GET("/projects", c.project.ListProjects)
	api.GET("/project/:id", c.project.GetProject)

	api.GET("/leaderboard", c.leaderboard.GetLeaderboard)
}

func (a *App) registerLearnerRoutes(group *gin.RouterGroup, c *controllers) {
	user := group.Group("/user")
	{
		user.GET("/progress", c.user.GetProgress)
		user.PUT("/profile", c.user.UpdateProfile)
		user.PUT("/settings", c.user.UpdateSettings)
		user.GET("/achievements", c.user.GetAchievements)
	}

	group.POST("/tutorial/:id/complete", c.content.CompleteTutorial)
	group.POST("/course/:courseId/module/:moduleId/complete", c.course.CompleteModule)
	group.POST("/project/:id/complete", c.project.CompleteProject)
}
