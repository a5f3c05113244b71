package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/user/watchbase/internal/handler"
)

// RegisterRoutes 注册所有路由
func RegisterRoutes(r *gin.Engine, h *handler.Handler) {
	// 健康检查
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api")
	{
		// ==================== 片库 ====================
		library := api.Group("/library")
		{
			library.POST("/query", h.QueryLibrary)
			library.POST("", h.UpsertLibraryEntry)
			library.GET("/counts", h.LibraryCounts)
			library.GET("/:id", h.GetLibraryEntry)
			library.DELETE("/:id", h.DeleteLibraryEntry)
			library.PUT("/:id/category", h.SetCategory)
			library.PUT("/:id/rating", h.SetRating)
			library.PUT("/:id/dates", h.SetDates)
			library.GET("/:id/seasons/:season/episodes", h.ListSeasonEpisodes)
		}

		// ==================== 观看状态切换（本地+远端对账） ====================
		watch := api.Group("/watch")
		{
			watch.POST("/movies/:id", h.ToggleMovieWatched)
			watch.GET("/movies/:id", h.MovieWatchStatus)
			watch.POST("/shows/:id/episodes", h.ToggleEpisodesWatched)
			watch.POST("/shows/:id/season", h.ToggleSeasonWatched)
			watch.POST("/favorites/:id", h.ToggleFavorite)
		}

		// ==================== 远端快照 ====================
		sync := api.Group("/sync")
		{
			sync.POST("/:collection", h.SyncCollection)
			sync.GET("/:collection", h.ListSnapshot)
		}

		// ==================== 目录服务 ====================
		catalog := api.Group("/catalog")
		{
			catalog.GET("/search", h.CatalogSearch)
			catalog.GET("/:id", h.CatalogDetail)
			catalog.GET("/:id/seasons", h.CatalogSeasons)
			catalog.GET("/:id/seasons/:season/episodes", h.CatalogEpisodes)
			catalog.DELETE("/cache", h.ClearCatalogCache)
		}

		// ==================== 批量导入 ====================
		api.POST("/import", h.BulkImport)
	}
}
