package handler

import (
	"bytes"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"parley/internal/export"
	"parley/internal/model"
)

// Export 导出过滤后的全部会话, 格式为 json 或 csv
// 存储出错时导出空集而不是报错
// @Summary      导出会话
// @Description  以 json 或 csv 下载过滤后的完整会话历史
// @Tags         导出
// @Produce      json
// @Param        format     path      string  true   "导出格式 (json/csv)"
// @Param        query      query     string  false  "标题或消息内容关键字"
// @Param        date_from  query     string  false  "起始日期 YYYY-MM-DD"
// @Param        date_to    query     string  false  "结束日期 YYYY-MM-DD"
// @Success      200  {file}    file
// @Failure      400  {object}  model.ErrorResponse
// @Router       /api/v1/export/{format} [get]
func (h *ChatHandler) Export(c *gin.Context) {
	if h.unavailable(c) {
		return
	}

	format := c.Param("format")
	if format != "json" && format != "csv" {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{
			Code:    40003,
			Message: "Unsupported export format",
			Detail:  format,
		})
		return
	}

	f, _ := filterFromQuery(c)
	chats, err := h.svc.Export(c.Request.Context(), f)
	if err != nil {
		log.Error().Err(err).Msg("failed to load chats for export")
		chats = nil
	}

	filename := export.Filename(format)
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)

	switch format {
	case "json":
		data, err := export.JSON(chats)
		if err != nil {
			c.JSON(http.StatusInternalServerError, model.ErrorResponse{
				Code:    50002,
				Message: "Failed to render export",
				Detail:  err.Error(),
			})
			return
		}
		c.Data(http.StatusOK, "application/json", data)
	case "csv":
		var buf bytes.Buffer
		if err := export.CSV(&buf, chats); err != nil {
			c.JSON(http.StatusInternalServerError, model.ErrorResponse{
				Code:    50002,
				Message: "Failed to render export",
				Detail:  err.Error(),
			})
			return
		}
		c.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
	}
}
