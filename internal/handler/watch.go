package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/user/watchbase/internal/utils"
)

type toggleMovieRequest struct {
	Watched bool `json:"watched"`
}

// ToggleMovieWatched 切换一部电影的已看状态
// 远端失败时本地不动，错误原样带给前端提示
func (h *Handler) ToggleMovieWatched(c *gin.Context) {
	catalogID, err := strconv.Atoi(c.Param("id"))
	if err != nil || catalogID <= 0 {
		utils.BadRequest(c, "目录 ID 不合法")
		return
	}
	var req toggleMovieRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "请求不合法")
		return
	}
	if err := h.Reconcile.ToggleMovie(c.Request.Context(), catalogID, req.Watched); err != nil {
		respondStorageError(c, err)
		return
	}
	utils.SuccessWithMessage(c, "状态已同步", nil)
}

type toggleEpisodesRequest struct {
	Season   int   `json:"season"`
	Episodes []int `json:"episodes" binding:"required,min=1"`
	Watched  bool  `json:"watched"`
}

// ToggleEpisodesWatched 切换若干集的已看状态
func (h *Handler) ToggleEpisodesWatched(c *gin.Context) {
	catalogID, err := strconv.Atoi(c.Param("id"))
	if err != nil || catalogID <= 0 {
		utils.BadRequest(c, "目录 ID 不合法")
		return
	}
	var req toggleEpisodesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "请求不合法")
		return
	}
	if err := h.Reconcile.ToggleEpisodes(c.Request.Context(), catalogID, req.Season, req.Episodes, req.Watched); err != nil {
		respondStorageError(c, err)
		return
	}
	utils.SuccessWithMessage(c, "状态已同步", nil)
}

// ToggleSeasonWatched 整季切换
// 逐集独立提交，中途失败返回已完成的集数（部分成功）
func (h *Handler) ToggleSeasonWatched(c *gin.Context) {
	catalogID, err := strconv.Atoi(c.Param("id"))
	if err != nil || catalogID <= 0 {
		utils.BadRequest(c, "目录 ID 不合法")
		return
	}
	var req toggleEpisodesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "请求不合法")
		return
	}
	done, err := h.Reconcile.ToggleSeason(c.Request.Context(), catalogID, req.Season, req.Episodes, req.Watched)
	if err != nil {
		utils.Error(c, 500, "整季切换部分失败，已完成 "+strconv.Itoa(done)+" 集")
		return
	}
	utils.Success(c, gin.H{"done": done})
}

type toggleFavoriteRequest struct {
	Favorite bool `json:"favorite"`
}

// ToggleFavorite 切换收藏状态（仅 tmdb 供应商支持）
func (h *Handler) ToggleFavorite(c *gin.Context) {
	catalogID, isMovie, ok := parseEntryKey(c)
	if !ok {
		return
	}
	var req toggleFavoriteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "请求不合法")
		return
	}
	if err := h.Reconcile.ToggleFavorite(c.Request.Context(), catalogID, isMovie, req.Favorite); err != nil {
		respondStorageError(c, err)
		return
	}
	utils.SuccessWithMessage(c, "收藏已同步", nil)
}

// MovieWatchStatus 查询一部电影的本地/远端状态
func (h *Handler) MovieWatchStatus(c *gin.Context) {
	catalogID, err := strconv.Atoi(c.Param("id"))
	if err != nil || catalogID <= 0 {
		utils.BadRequest(c, "目录 ID 不合法")
		return
	}
	status, err := h.Reconcile.MovieStatus(catalogID)
	if err != nil {
		utils.InternalServerError(c, "查询状态失败")
		return
	}
	utils.Success(c, status)
}
