package handler

import (
	"encoding/json"
	"errors"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
	"github.com/user/watchbase/internal/model"
	"github.com/user/watchbase/internal/utils"
)

// BulkImport 批量文本导入
// multipart 上传：file 是数据文件，mapping 是 JSON 格式的列映射
// 客户端断开连接视为取消：不再启动新行、在途行写完，返回部分进度
func (h *Handler) BulkImport(c *gin.Context) {
	mappingJSON := c.PostForm("mapping")
	if mappingJSON == "" {
		utils.BadRequest(c, "缺少列映射")
		return
	}
	var mapping model.ImportMapping
	if err := json.Unmarshal([]byte(mappingJSON), &mapping); err != nil {
		utils.BadRequest(c, "列映射不是合法的 JSON")
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		utils.BadRequest(c, "缺少导入文件")
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		utils.BadRequest(c, "无法读取导入文件")
		return
	}
	defer file.Close()

	report, err := h.BulkImp.Run(c.Request.Context(), file, &mapping, func(done, total int) {
		if done%100 == 0 || done == total {
			log.WithFields(log.Fields{"done": done, "total": total}).Info("[导入] 进度")
		}
	})
	if err != nil {
		if errors.Is(err, model.ErrValidation) || errors.Is(err, model.ErrParse) {
			utils.BadRequest(c, err.Error())
			return
		}
		// 取消等情况：带着部分进度返回
		utils.SuccessWithMessage(c, "导入中断", report)
		return
	}
	utils.Success(c, report)
}
