package handler

import (
	"errors"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/user/watchbase/internal/model"
	"github.com/user/watchbase/internal/repository"
	"github.com/user/watchbase/internal/utils"
)

// parseEntryKey 从路径和查询参数里取 (catalogID, isMovie)
func parseEntryKey(c *gin.Context) (int, bool, bool) {
	catalogID, err := strconv.Atoi(c.Param("id"))
	if err != nil || catalogID <= 0 {
		utils.BadRequest(c, "目录 ID 不合法")
		return 0, false, false
	}
	isMovie := c.DefaultQuery("is_movie", "true") != "false"
	return catalogID, isMovie, true
}

// QueryLibrary 按条件查询片库
func (h *Handler) QueryLibrary(c *gin.Context) {
	var filter repository.QueryFilter
	if err := c.ShouldBindJSON(&filter); err != nil {
		utils.BadRequest(c, "查询条件不合法")
		return
	}
	entries, err := h.Repos.Library.Query(filter)
	if err != nil {
		utils.InternalServerError(c, "查询片库失败")
		return
	}
	utils.Success(c, entries)
}

// UpsertLibraryEntry 添加或整体更新片库条目
func (h *Handler) UpsertLibraryEntry(c *gin.Context) {
	var entry model.LibraryEntry
	if err := c.ShouldBindJSON(&entry); err != nil {
		utils.BadRequest(c, "条目数据不合法")
		return
	}
	if entry.CatalogID <= 0 {
		utils.BadRequest(c, "目录 ID 不合法")
		return
	}
	if entry.Category == "" {
		entry.Category = model.CategoryPlanToWatch
	}
	if !model.IsValidCategory(entry.Category) {
		utils.BadRequest(c, "观看状态不合法")
		return
	}
	if err := h.Repos.Library.Upsert(&entry); err != nil {
		utils.InternalServerError(c, "保存条目失败")
		return
	}
	utils.Success(c, entry)
}

// GetLibraryEntry 查询单个条目
func (h *Handler) GetLibraryEntry(c *gin.Context) {
	catalogID, isMovie, ok := parseEntryKey(c)
	if !ok {
		return
	}
	entry, err := h.Repos.Library.Get(catalogID, isMovie)
	if err != nil {
		utils.InternalServerError(c, "查询条目失败")
		return
	}
	if entry == nil {
		utils.NotFound(c, "")
		return
	}
	utils.Success(c, entry)
}

// DeleteLibraryEntry 删除条目（级联删除剧集记录）
func (h *Handler) DeleteLibraryEntry(c *gin.Context) {
	catalogID, isMovie, ok := parseEntryKey(c)
	if !ok {
		return
	}
	if err := h.Repos.Library.Delete(catalogID, isMovie); err != nil {
		utils.InternalServerError(c, "删除条目失败")
		return
	}
	utils.SuccessWithMessage(c, "已删除", nil)
}

type setCategoryRequest struct {
	Category string `json:"category" binding:"required"`
}

// SetCategory 只改观看状态
// tmdb 模式下"想看"状态会镜像到远端想看列表
func (h *Handler) SetCategory(c *gin.Context) {
	catalogID, isMovie, ok := parseEntryKey(c)
	if !ok {
		return
	}
	var req setCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil || !model.IsValidCategory(req.Category) {
		utils.BadRequest(c, "观看状态不合法")
		return
	}
	if err := h.Reconcile.ChangeCategory(c.Request.Context(), catalogID, isMovie, req.Category); err != nil {
		respondStorageError(c, err)
		return
	}
	utils.SuccessWithMessage(c, "状态已更新", nil)
}

type setDatesRequest struct {
	StartDate  string `json:"start_date"`
	FinishDate string `json:"finish_date"`
}

// SetDates 更新个人开始/看完日期，空串表示清除
func (h *Handler) SetDates(c *gin.Context) {
	catalogID, isMovie, ok := parseEntryKey(c)
	if !ok {
		return
	}
	var req setDatesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "请求不合法")
		return
	}
	for _, d := range []string{req.StartDate, req.FinishDate} {
		if d == "" {
			continue
		}
		if _, err := time.Parse("2006-01-02", d); err != nil {
			utils.BadRequest(c, "日期格式应为 YYYY-MM-DD")
			return
		}
	}
	if err := h.Repos.Library.SetDates(catalogID, isMovie, req.StartDate, req.FinishDate); err != nil {
		utils.InternalServerError(c, "更新日期失败")
		return
	}
	utils.SuccessWithMessage(c, "日期已更新", nil)
}

type setRatingRequest struct {
	Rating *float64 `json:"rating"`
}

// SetRating 更新个人评分（传 null 清除）
func (h *Handler) SetRating(c *gin.Context) {
	catalogID, isMovie, ok := parseEntryKey(c)
	if !ok {
		return
	}
	var req setRatingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "评分不合法")
		return
	}
	if err := h.Repos.Library.SetRating(catalogID, isMovie, req.Rating); err != nil {
		utils.InternalServerError(c, "更新评分失败")
		return
	}
	utils.SuccessWithMessage(c, "评分已更新", nil)
}

// LibraryCounts 各观看状态条目数
func (h *Handler) LibraryCounts(c *gin.Context) {
	counts, err := h.Repos.Library.CountByCategory()
	if err != nil {
		utils.InternalServerError(c, "统计失败")
		return
	}
	utils.Success(c, counts)
}

// ListSeasonEpisodes 某季的已看剧集记录
func (h *Handler) ListSeasonEpisodes(c *gin.Context) {
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
	episodes, err := h.Repos.Episode.ListBySeason(catalogID, season)
	if err != nil {
		utils.InternalServerError(c, "查询剧集记录失败")
		return
	}
	utils.Success(c, episodes)
}

// respondStorageError 按错误分类回状态码
func respondStorageError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, model.ErrValidation):
		utils.BadRequest(c, err.Error())
	case errors.Is(err, model.ErrNotFound):
		utils.NotFound(c, err.Error())
	default:
		utils.InternalServerError(c, err.Error())
	}
}
