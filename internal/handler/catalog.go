package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/user/watchbase/internal/model"
	"github.com/user/watchbase/internal/utils"
)

// CatalogDetail 目录详情（读穿缓存：本地有就用本地，没有才去远端抓）
func (h *Handler) CatalogDetail(c *gin.Context) {
	catalogID, err := strconv.Atoi(c.Param("id"))
	if err != nil || catalogID <= 0 {
		utils.BadRequest(c, "目录 ID 不合法")
		return
	}
	itemType := c.DefaultQuery("type", model.ItemTypeMovie)
	if itemType != model.ItemTypeMovie && itemType != model.ItemTypeShow {
		utils.BadRequest(c, "条目类型不合法")
		return
	}

	detail, err := h.TMDB.GetDetail(c.Request.Context(), catalogID, itemType)
	if err != nil {
		utils.Error(c, 502, "获取目录详情失败")
		return
	}
	utils.Success(c, detail)
}

// CatalogSearch 目录搜索
func (h *Handler) CatalogSearch(c *gin.Context) {
	query := c.Query("q")
	if query == "" {
		utils.BadRequest(c, "搜索词不能为空")
		return
	}
	itemType := c.DefaultQuery("type", model.ItemTypeMovie)
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))

	results, err := h.TMDB.Search(c.Request.Context(), itemType, query, page)
	if err != nil {
		utils.Error(c, 502, "目录搜索失败")
		return
	}
	utils.Success(c, results)
}

// CatalogSeasons 缓存里某部剧的季号列表
func (h *Handler) CatalogSeasons(c *gin.Context) {
	catalogID, err := strconv.Atoi(c.Param("id"))
	if err != nil || catalogID <= 0 {
		utils.BadRequest(c, "目录 ID 不合法")
		return
	}
	seasons, err := h.Repos.CatalogCache.SeasonsFor(catalogID)
	if err != nil {
		utils.InternalServerError(c, "查询季列表失败")
		return
	}
	utils.Success(c, seasons)
}

// CatalogEpisodes 缓存里某季的集号列表
func (h *Handler) CatalogEpisodes(c *gin.Context) {
	catalogID, err := strconv.Atoi(c.Param("id"))
	if err != nil || catalogID <= 0 {
		utils.BadRequest(c, "目录 ID 不合法")
		return
	}
	season, err := strconv.Atoi(c.Param("season"))
	if err != nil || season < 0 {
		utils.BadRequest(c, "季号不合法")
		return
	}
	episodes, err := h.Repos.CatalogCache.EpisodesFor(catalogID, season)
	if err != nil {
		utils.InternalServerError(c, "查询集列表失败")
		return
	}
	utils.Success(c, episodes)
}

// ClearCatalogCache 清空目录缓存（显式操作，平时缓存只增不删）
func (h *Handler) ClearCatalogCache(c *gin.Context) {
	if err := h.Repos.CatalogCache.Clear(); err != nil {
		utils.InternalServerError(c, "清空缓存失败")
		return
	}
	utils.CacheClear()
	utils.SuccessWithMessage(c, "缓存已清空", nil)
}
