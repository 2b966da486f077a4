package main

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"booklib-backend/internal/shared/middleware"
	"booklib-backend/pkg/container"
)

func SetupRouter(c *container.Container) *gin.Engine {
	router := gin.New()

	// Global middlewares
	router.Use(
		middleware.Recovery(),
		middleware.RequestID(),
		middleware.Logger(),
		middleware.CORS(),
	)

	v1 := router.Group("/api/v1")
	{
		v1.GET("/health", healthCheckHandler(c))

		setupBookRoutes(v1, c)
		setupCommentRoutes(v1, c)
		setupSavedRoutes(v1, c)
		setupAdminRoutes(v1, c)
	}

	return router
}

// Book routes: catalog reads plus the per-book write surfaces.
func setupBookRoutes(v1 *gin.RouterGroup, c *container.Container) {
	auth := middleware.AuthMiddleware(c.Config.JWT.Secret)

	books := v1.Group("/books")
	{
		books.GET("", c.BookHandler.ListBooks)
		books.GET("/:id", c.BookHandler.GetBook)
		books.GET("/:id/stats", c.BookHandler.GetStats)

		books.GET("/:id/ratings", c.RatingHandler.ListBookRatings)
		books.POST("/:id/ratings", auth, c.RatingHandler.Rate)
		books.DELETE("/:id/ratings", auth, c.RatingHandler.Unrate)

		books.GET("/:id/comments", c.CommentHandler.ListBookComments)
		books.POST("/:id/comments", auth, c.CommentHandler.CreateComment)

		books.POST("/:id/save", auth, c.SavedHandler.Save)
		books.PUT("/:id/save", auth, c.SavedHandler.UpdateSaveStatus)
		books.DELETE("/:id/save", auth, c.SavedHandler.Unsave)
	}
}

// Comment routes addressed by comment id.
func setupCommentRoutes(v1 *gin.RouterGroup, c *container.Container) {
	comments := v1.Group("/comments")
	comments.Use(middleware.AuthMiddleware(c.Config.JWT.Secret))
	{
		comments.PUT("/:id", c.CommentHandler.EditComment)
		comments.DELETE("/:id", c.CommentHandler.DeleteComment)
		comments.PUT("/:id/like", c.CommentHandler.ToggleLike)
	}
}

func setupSavedRoutes(v1 *gin.RouterGroup, c *container.Container) {
	me := v1.Group("/me")
	me.Use(middleware.AuthMiddleware(c.Config.JWT.Secret))
	{
		me.GET("/saved", c.SavedHandler.ListSaved)
	}
}

func setupAdminRoutes(v1 *gin.RouterGroup, c *container.Container) {
	admin := v1.Group("/admin")
	admin.Use(
		middleware.AuthMiddleware(c.Config.JWT.Secret),
		middleware.AdminMiddleware(),
	)
	{
		admin.PUT("/comments/:id/status", c.CommentHandler.ModerateComment)
	}
}

func healthCheckHandler(c *container.Container) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		checkCtx, cancel := context.WithTimeout(ctx.Request.Context(), 5*time.Second)
		defer cancel()

		dbStatus := "ok"
		if err := c.DB.HealthCheck(checkCtx); err != nil {
			dbStatus = "down"
		}

		cacheStatus := "ok"
		if err := c.Cache.Ping(checkCtx); err != nil {
			cacheStatus = "down"
		}

		status := http.StatusOK
		if dbStatus != "ok" || cacheStatus != "ok" {
			status = http.StatusServiceUnavailable
		}

		ctx.JSON(status, gin.H{
			"status":   "up",
			"version":  c.Config.App.Version,
			"database": dbStatus,
			"cache":    cacheStatus,
		})
	}
}
