package handler

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/user/watchbase/internal/model"
	"github.com/user/watchbase/internal/utils"
)

// SyncCollection 触发一个集合的快照同步
// 整个集合全有或全无：中途失败不落盘，上次的好数据保持原样
func (h *Handler) SyncCollection(c *gin.Context) {
	collection := c.Param("collection")
	provider := c.DefaultQuery("provider", h.Config.SyncProvider)
	if provider == model.ProviderLocal {
		utils.BadRequest(c, "未配置远端同步供应商")
		return
	}

	count, err := h.Importer.ImportCollection(c.Request.Context(), provider, collection)
	if err != nil {
		if errors.Is(err, model.ErrValidation) {
			utils.BadRequest(c, err.Error())
			return
		}
		utils.Error(c, 502, "同步集合 "+collection+" 失败")
		return
	}
	utils.Success(c, gin.H{"collection": collection, "count": count})
}

// ListSnapshot 读取一个集合分区的本地快照
func (h *Handler) ListSnapshot(c *gin.Context) {
	collection := c.Param("collection")
	if !model.IsValidCollection(collection) {
		utils.BadRequest(c, "未知的集合")
		return
	}
	provider := c.DefaultQuery("provider", h.Config.SyncProvider)

	rows, err := h.Repos.Snapshot.ListCollection(provider, collection)
	if err != nil {
		utils.InternalServerError(c, "查询快照失败")
		return
	}
	utils.Success(c, rows)
}
